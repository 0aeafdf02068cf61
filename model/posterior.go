package model

import (
	"math"
	"sort"

	"github.com/bobonovski/gohdp/util"
)

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}

// emissionRatios returns, for every dish id, the predictive weight of
// vocabulary id v under that dish. The reserved slot removes its own beta
// pseudo count, inactive ids stay zero.
func (s *State) emissionRatios(v uint32) []float64 {
	f := make([]float64, len(s.wordTotal))
	f[NewDish] = (s.wordCount[NewDish].Get(v) - s.beta) / s.wordTotal[NewDish]
	for _, id := range s.dishes.Active()[1:] {
		f[id] = s.wordCount[id].Get(v) / s.wordTotal[id]
	}
	return f
}

// tablePosterior returns the active tables of document j and the
// probability of seating a word with emission ratios f at each of them.
func (s *State) tablePosterior(j int, f []float64) ([]TableID, []float64) {
	d := s.doc(j)
	tables := d.tableIDs()
	p := make([]float64, len(tables))
	for i := 1; i < len(tables); i += 1 {
		t := tables[i]
		p[i] = float64(d.count[t]) * f[d.dish[t]]
	}

	m := make([]float64, len(s.tableCount))
	for k, c := range s.tableCount {
		m[k] = float64(c)
	}
	V := float64(s.vocabSize)
	p[0] = s.alpha * (s.gamma/V + util.Dot(f, m)) / (s.gamma + float64(s.totalTables))

	util.Normalize(p)
	s.mustBeProbability(p, j, -1, "table posterior")
	return tables, p
}

// newTableDishPosterior returns the active dishes and the probability
// that a freshly opened table serves each of them.
func (s *State) newTableDishPosterior(f []float64) ([]DishID, []float64) {
	dishes := s.Dishes()
	p := make([]float64, len(dishes))
	for i := 1; i < len(dishes); i += 1 {
		k := dishes[i]
		p[i] = float64(s.tableCount[k]) * f[k]
	}
	p[0] = s.gamma / float64(s.vocabSize)

	util.Normalize(p)
	s.mustBeProbability(p, -1, -1, "new table dish posterior")
	return dishes, p
}

// reseatDishPosterior returns the active dishes and the collapsed
// posterior of serving each of them at table t of document j, all words
// of the table moving together. leaveDish must have been called first.
func (s *State) reseatDishPosterior(j int, t TableID) ([]DishID, []float64) {
	d := s.checkTable(j, t)
	dishes := s.Dishes()
	old := d.dish[t]
	n := float64(d.count[t])

	logp := make([]float64, len(dishes))
	for i := 1; i < len(dishes); i += 1 {
		k := dishes[i]
		nk := s.wordTotal[k]
		if k == old {
			nk -= n
		}
		if !(nk > 0) {
			violation(j, int(t), int(k), "non-positive word total %v", nk)
		}
		logp[i] = math.Log(float64(s.tableCount[k])) + lgamma(nk) - lgamma(nk+n)
	}
	Vb := float64(s.vocabSize) * s.beta
	logp[0] = math.Log(s.gamma) + lgamma(Vb) - lgamma(Vb+n)

	for _, v := range sortedWords(d.wordCount[t]) {
		c := float64(d.wordCount[t][v])
		if c == 0 {
			continue
		}
		for i := 1; i < len(dishes); i += 1 {
			k := dishes[i]
			nkv := s.wordCount[k].Get(v)
			if k == old {
				nkv -= c
			}
			if !(nkv > 0) {
				violation(j, int(t), int(k), "non-positive count %v for vocabulary id %d", nkv, v)
			}
			logp[i] += lgamma(nkv+c) - lgamma(nkv)
		}
		logp[0] += lgamma(s.beta+c) - lgamma(s.beta)
	}

	for i, lp := range logp {
		if math.IsNaN(lp) || math.IsInf(lp, 0) {
			violation(j, int(t), int(dishes[i]), "non-finite log posterior %v", lp)
		}
	}

	p := util.SoftmaxLog(logp)
	s.mustBeProbability(p, j, int(t), "reseat dish posterior")
	return dishes, p
}

func (s *State) mustBeProbability(p []float64, j, t int, name string) {
	if !util.ValidProbability(p) {
		violation(j, t, -1, "%s is not a probability vector: %v", name, p)
	}
}

func sortedWords(m map[uint32]int) []uint32 {
	words := make([]uint32, 0, len(m))
	for v := range m {
		words = append(words, v)
	}
	sort.Slice(words, func(a, b int) bool { return words[a] < words[b] })
	return words
}
