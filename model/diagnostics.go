package model

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/bobonovski/gohdp/util"
)

// TopicWordDistribution returns, for every active dish in id order, the
// probability of each vocabulary id under that dish.
func (s *State) TopicWordDistribution() []map[uint32]float64 {
	dishes := s.Dishes()[1:]
	phi := make([]map[uint32]float64, 0, len(dishes))
	for _, k := range dishes {
		total := s.wordTotal[k]
		dist := make(map[uint32]float64, s.vocabSize)
		for v := uint32(0); v < uint32(s.vocabSize); v += 1 {
			if s.wordCount[k].Contains(v) {
				dist[v] = s.wordCount[k].Get(v) / total
			} else {
				dist[v] = s.beta / total
			}
		}
		phi = append(phi, dist)
	}
	return phi
}

// DocTopicDistribution returns, for every document, a probability vector
// laid out like Dishes(): position 0 is the mass left for a new dish.
func (s *State) DocTopicDistribution() [][]float64 {
	dishes := s.Dishes()
	pos := make([]int, len(s.tableCount))
	prior := make([]float64, len(dishes))
	for i, k := range dishes {
		pos[k] = i
		if k.IsNew() {
			prior[i] = s.gamma
		} else {
			prior[i] = float64(s.tableCount[k])
		}
	}
	floats.Scale(s.alpha/floats.Sum(prior), prior)

	theta := make([][]float64, len(s.docs))
	for j, d := range s.docs {
		p := make([]float64, len(prior))
		copy(p, prior)
		for _, t := range d.tableIDs()[1:] {
			k := d.dish[t]
			if k.IsNew() {
				continue
			}
			p[pos[k]] += float64(d.count[t])
		}
		theta[j] = util.Normalize(p)
	}
	return theta
}

// training log-likelihood under the current point estimates and the
// number of words it covers
func (s *State) logLikelihood() (float64, int) {
	// empty row for the new dish slot keeps phi aligned with theta
	phi := append([]map[uint32]float64{{}}, s.TopicWordDistribution()...)
	theta := s.DocTopicDistribution()

	ll := 0.0
	n := 0
	for j, d := range s.docs {
		for _, v := range d.words {
			prob := 0.0
			for i, p := range theta[j] {
				prob += p * phi[i][v]
			}
			ll += math.Log(prob)
		}
		n += len(d.words)
	}
	return ll, n
}

// Perplexity is computed on the training words themselves. It is +Inf
// until every word has been seated once.
func (s *State) Perplexity() float64 {
	ll, n := s.logLikelihood()
	if n == 0 {
		return math.Inf(1)
	}
	return math.Exp(-ll / float64(n))
}

func (s *State) LogLikelihood() float64 {
	ll, _ := s.logLikelihood()
	return ll
}
