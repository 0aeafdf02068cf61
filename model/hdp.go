package model

import (
	"errors"
	"io"

	"github.com/cheggaaa/pb/v3"
	log "github.com/golang/glog"

	"github.com/bobonovski/gohdp/corpus"
	"github.com/bobonovski/gohdp/matrix"
	"github.com/bobonovski/gohdp/sstable"
)

func init() {
	Register("hdp", NewHDP)
}

var ErrNoTopics = errors.New("hdp: no active topics")

// HDP is the hierarchical Dirichlet process topic model trained with the
// Chinese restaurant franchise Gibbs sampler.
type HDP struct {
	data  *corpus.Corpus
	cfg   Config
	state *State
}

// NewHDP creates a HDP instance over dat. The vocabulary size of the
// corpus is used unless cfg overrides it.
func NewHDP(dat *corpus.Corpus, cfg Config) (Model, error) {
	return newHDP(dat, cfg)
}

func newHDP(dat *corpus.Corpus, cfg Config) (*HDP, error) {
	if dat == nil {
		return nil, configError("nil corpus")
	}
	if cfg.VocabSize == 0 {
		cfg.VocabSize = int(dat.VocabSize)
	}
	state, err := NewState(dat.Words(), cfg, nil)
	if err != nil {
		return nil, err
	}
	return &HDP{
		data:  dat,
		cfg:   cfg,
		state: state,
	}, nil
}

func (this *HDP) State() *State {
	return this.state
}

func (this *HDP) Train(iter int) {
	bar := pb.New(iter)
	if !this.cfg.Progress {
		bar.SetWriter(io.Discard)
	}
	bar.Start()
	defer bar.Finish()

	for iterIdx := 0; iterIdx < iter; iterIdx += 1 {
		this.state.Sweep()
		bar.Increment()

		if this.cfg.LogEvery > 0 && (iterIdx+1)%this.cfg.LogEvery == 0 {
			log.Infof("iter %5d, topics %4d, tables %6d, perplexity %f",
				iterIdx+1, this.state.NumTopics(), this.state.TotalTables(), this.state.Perplexity())
		}
	}
}

func (this *HDP) Sweep() {
	this.state.Sweep()
}

func (this *HDP) NumTopics() int {
	return this.state.NumTopics()
}

func (this *HDP) Perplexity() float64 {
	return this.state.Perplexity()
}

func (this *HDP) LogLikelihood() float64 {
	return this.state.LogLikelihood()
}

// compute the posterior point estimation of word-topic mixture, rows are
// vocabulary ids and columns active topics in id order; nil when no topic
// is active yet
func (this *HDP) Phi() *matrix.Float64Matrix {
	dists := this.state.TopicWordDistribution()
	if len(dists) == 0 {
		return nil
	}
	V := uint32(this.state.VocabSize())
	phi := matrix.NewFloat64Matrix(V, uint32(len(dists)))
	for k, dist := range dists {
		for v := uint32(0); v < V; v += 1 {
			phi.Set(v, uint32(k), dist[v])
		}
	}
	return phi
}

// compute the posterior point estimation of document-topic mixture,
// column 0 is the mass reserved for an unseen topic
func (this *HDP) Theta() *matrix.Float64Matrix {
	dists := this.state.DocTopicDistribution()
	theta := matrix.NewFloat64Matrix(uint32(len(dists)), uint32(len(dists[0])))
	for d, dist := range dists {
		theta.SetRow(uint32(d), dist)
	}
	return theta
}

// serialize word-topic distribution
func (this *HDP) SavePhi(fn string) error {
	phi := this.Phi()
	if phi == nil {
		return ErrNoTopics
	}
	return sstable.Float64Serialize(phi, fn+".phi")
}

// serialize document-topic distribution
func (this *HDP) SaveTheta(fn string) error {
	return sstable.Float64Serialize(this.Theta(), fn+".theta")
}

// serialize table and dish assignments
func (this *HDP) SaveAssignments(fn string) error {
	return sstable.AssignmentSerialize(this.state.TableAssignments(),
		this.state.DishVectors(), fn+".assign")
}

// deserialize table and dish assignments and rebuild the sampler state
// from them; the random stream restarts from the configured seed
func (this *HDP) LoadAssignments(fn string) error {
	tables, dishes, err := sstable.AssignmentDeserialize(fn + ".assign")
	if err != nil {
		return err
	}
	state, err := NewStateFromAssignments(this.data.Words(), this.cfg, tables, dishes, nil)
	if err != nil {
		return err
	}
	this.state = state
	return nil
}
