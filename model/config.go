package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the sampler hyperparameters and the training loop settings.
type Config struct {
	Alpha float64 `yaml:"alpha"` // document level concentration
	Beta  float64 `yaml:"beta"`  // topic-word pseudo count
	Gamma float64 `yaml:"gamma"` // corpus level concentration
	// vocabulary size, taken from the corpus when zero
	VocabSize  int    `yaml:"vocab_size"`
	Seed       uint64 `yaml:"seed"`
	Iterations int    `yaml:"iterations"`
	LogEvery   int    `yaml:"log_every"`
	Progress   bool   `yaml:"progress"`
}

func DefaultConfig() Config {
	return Config{
		Alpha:      0.2,
		Beta:       0.01,
		Gamma:      0.5,
		Seed:       0,
		Iterations: 100,
		LogEvery:   10,
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig.
func LoadConfig(fn string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(fn)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config %s: %w", fn, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if !(c.Alpha > 0) {
		return configError("alpha must be positive, got %v", c.Alpha)
	}
	if !(c.Beta > 0) {
		return configError("beta must be positive, got %v", c.Beta)
	}
	if !(c.Gamma > 0) {
		return configError("gamma must be positive, got %v", c.Gamma)
	}
	if c.VocabSize < 0 {
		return configError("vocab_size must not be negative, got %d", c.VocabSize)
	}
	if c.Iterations < 0 {
		return configError("iterations must not be negative, got %d", c.Iterations)
	}
	return nil
}
