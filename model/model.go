package model

import (
	"fmt"

	"github.com/bobonovski/gohdp/corpus"
	"github.com/bobonovski/gohdp/matrix"
)

var constructors = make(map[string]ModelCtor)

// the common interface topic model samplers should follow
type Model interface {
	// train model for iter iteration
	Train(iter int)
	// run a single sampling iteration
	Sweep()
	// number of topics currently in use
	NumTopics() int
	// perplexity of the training words
	Perplexity() float64
	// log-likelihood of the training words
	LogLikelihood() float64
	// get word-topic distribution
	Phi() *matrix.Float64Matrix
	// get doc-topic distribution
	Theta() *matrix.Float64Matrix
	// serialize posterior document topic distribution
	SaveTheta(fn string) error
	// serialize posterior word topic distribution
	SavePhi(fn string) error
	// serialize table and dish assignments
	SaveAssignments(fn string) error
	// restore table and dish assignments
	LoadAssignments(fn string) error
}

// new samplers should register themselves using this function
func Register(modelType string, m ModelCtor) {
	constructors[modelType] = m
}

type ModelCtor func(dat *corpus.Corpus, cfg Config) (Model, error)

func GetModel(modelType string) (ModelCtor, error) {
	if _, ok := constructors[modelType]; !ok {
		return nil, fmt.Errorf("model %s not registered", modelType)
	}
	return constructors[modelType], nil
}
