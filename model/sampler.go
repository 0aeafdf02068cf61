package model

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Categorical draws an index from a probability vector.
type Categorical interface {
	Sample(p []float64) int
}

// CategoricalSampler draws from a single seeded PCG stream, one uniform
// per call, so equal seeds replay equal sweeps.
type CategoricalSampler struct {
	src rand.Source
}

func NewCategoricalSampler(seed uint64) *CategoricalSampler {
	return &CategoricalSampler{
		src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
	}
}

func (c *CategoricalSampler) Sample(p []float64) int {
	return int(distuv.NewCategorical(p, c.src).Rand())
}

// Sweep runs one Gibbs iteration: every word of every document picks a
// table, then every table of every document picks a dish. Both phases go
// document by document in order, which keeps runs with the same seed
// identical.
func (s *State) Sweep() {
	for j, d := range s.docs {
		for i := range d.words {
			s.sampleTable(j, i)
		}
	}
	for j, d := range s.docs {
		for _, t := range d.tableIDs()[1:] {
			s.sampleDish(j, t)
		}
	}
}

func (s *State) sampleTable(j, i int) {
	s.detach(j, i)
	v := s.docs[j].words[i]
	f := s.emissionRatios(v)

	tables, pt := s.tablePosterior(j, f)
	t := tables[s.rng.Sample(pt)]
	if t.IsNew() {
		dishes, pk := s.newTableDishPosterior(f)
		k := dishes[s.rng.Sample(pk)]
		if k.IsNew() {
			k = s.createDish()
		}
		t = s.createTable(j, k)
	}
	s.attach(j, t, i)
}

func (s *State) sampleDish(j int, t TableID) {
	s.leaveDish(j, t)
	dishes, pk := s.reseatDishPosterior(j, t)
	k := dishes[s.rng.Sample(pk)]
	if k.IsNew() {
		k = s.createDish()
	}
	s.reseat(j, t, k)
}
