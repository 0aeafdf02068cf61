package main

import (
	"flag"
	"os"

	log "github.com/golang/glog"

	"github.com/bobonovski/gohdp/corpus"
	"github.com/bobonovski/gohdp/model"
)

var (
	input      = flag.String("input_file", "", "input training file in LDA-C format, optionally gzipped")
	configFile = flag.String("config", "", "YAML file with sampler settings")
	topicModel = flag.String("model", "hdp", "model type")
	alpha      = flag.Float64("alpha", 0.2, "document level concentration")
	beta       = flag.Float64("beta", 0.01, "topic-word pseudo count")
	gamma      = flag.Float64("gamma", 0.5, "corpus level concentration")
	seed       = flag.Uint64("seed", 0, "seed of the random stream")
	iteration  = flag.Int("iter", 100, "number of iteration")
	logEvery   = flag.Int("log_every", 10, "log perplexity every n iterations")
	progress   = flag.Bool("progress", false, "show a progress bar")
	output     = flag.String("output", "", "prefix of the output files, nothing is saved when empty")
	resume     = flag.String("resume", "", "prefix of saved assignments to start from")
)

func main() {
	flag.Parse()
	defer log.Flush()

	cfg := model.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = model.LoadConfig(*configFile); err != nil {
			log.Exitf("load config: %v", err)
		}
	}
	// explicitly set flags win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "alpha":
			cfg.Alpha = *alpha
		case "beta":
			cfg.Beta = *beta
		case "gamma":
			cfg.Gamma = *gamma
		case "seed":
			cfg.Seed = *seed
		case "iter":
			cfg.Iterations = *iteration
		case "log_every":
			cfg.LogEvery = *logEvery
		case "progress":
			cfg.Progress = *progress
		}
	})

	// read training data
	data := &corpus.Corpus{}
	if err := data.Load(*input); err != nil {
		log.Exitf("load corpus: %v", err)
	}

	// init model
	ctor, err := model.GetModel(*topicModel)
	if err != nil {
		log.Exitf("%v", err)
	}
	m, err := ctor(data, cfg)
	if err != nil {
		log.Exitf("init model: %v", err)
	}
	if *resume != "" {
		if err := m.LoadAssignments(*resume); err != nil {
			log.Exitf("resume: %v", err)
		}
	}

	m.Train(cfg.Iterations)
	log.Infof("topics %d, perplexity %f, log-likelihood %f",
		m.NumTopics(), m.Perplexity(), m.LogLikelihood())

	if *output == "" {
		return
	}
	for _, save := range []func(string) error{m.SavePhi, m.SaveTheta, m.SaveAssignments} {
		if err := save(*output); err != nil {
			log.Errorf("save %s: %v", *output, err)
			log.Flush()
			os.Exit(1)
		}
	}
}
