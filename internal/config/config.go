// Package config holds the explicit run configuration of a training job.
//
// Everything that would otherwise be process-wide state (worker count, loss epsilon, seeds)
// lives in a Config value that is loaded from YAML and handed to the components that need it.
//
// Example file:
//
//	seed: 1
//	workers: 4
//	loss: mse
//	train:
//	  epochs: 5000
//	  batch_size: 1
//	  logs: true
//	optimizer:
//	  name: sgd
//	  lr: 0.5
//	  momentum: 0.9
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/seqnet/internal/loss"
	"github.com/born-ml/seqnet/internal/nn"
	"github.com/born-ml/seqnet/internal/optim"
	"github.com/born-ml/seqnet/internal/parallel"
)

// Config is the complete configuration of a training run.
type Config struct {
	Seed        int64     `yaml:"seed"`         // shuffle seed
	Workers     int       `yaml:"workers"`      // worker goroutines for conv, pooling and evaluation
	MinChunk    int       `yaml:"min_chunk"`    // minimum work items per goroutine
	Loss        string    `yaml:"loss"`         // loss name, see loss.Names
	LossEpsilon float64   `yaml:"loss_epsilon"` // epsilon added inside the logarithmic losses
	Train       Train     `yaml:"train"`
	Optimizer   Optimizer `yaml:"optimizer"`
}

// Train configures the training engine.
type Train struct {
	Epochs           int  `yaml:"epochs"`
	BatchSize        int  `yaml:"batch_size"`
	History          bool `yaml:"history"`
	Logs             bool `yaml:"logs"`
	AverageGradients bool `yaml:"average_gradients"`
}

// Optimizer selects and configures the optimizer.
type Optimizer struct {
	Name     string  `yaml:"name"`
	LR       float64 `yaml:"lr"`
	Momentum float64 `yaml:"momentum"`
	Nesterov bool    `yaml:"nesterov"`
	Beta1    float64 `yaml:"beta1"`
	Beta2    float64 `yaml:"beta2"`
	Rho      float64 `yaml:"rho"`
	Epsilon  float64 `yaml:"epsilon"`
}

// Default returns the configuration of the XOR example: per-sample SGD with momentum on
// the mean squared error, single-threaded.
func Default() Config {
	return Config{
		Seed:        1,
		Workers:     1,
		MinChunk:    1,
		Loss:        loss.NameMSE,
		LossEpsilon: loss.DefaultEpsilon,
		Train: Train{
			Epochs:    5000,
			BatchSize: 1,
			History:   true,
		},
		Optimizer: Optimizer{
			Name:     optim.NameSGD,
			LR:       0.5,
			Momentum: 0.9,
		},
	}
}

// Load reads a YAML file on top of Default.
func Load(path string) (Config, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "config")
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrapf(nn.ErrInvalidConfig, "config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return errors.Wrapf(nn.ErrInvalidConfig, "config: workers must be at least 1, got %d", c.Workers)
	}
	if c.MinChunk < 1 {
		return errors.Wrapf(nn.ErrInvalidConfig, "config: min_chunk must be at least 1, got %d", c.MinChunk)
	}
	if c.LossEpsilon <= 0 {
		return errors.Wrapf(nn.ErrInvalidConfig, "config: loss_epsilon must be positive, got %g", c.LossEpsilon)
	}
	if _, err := loss.ByName(c.Loss, c.LossEpsilon); err != nil {
		return errors.Wrap(err, "config")
	}
	if c.Train.Epochs < 1 {
		return errors.Wrapf(nn.ErrInvalidConfig, "config: epochs must be positive, got %d", c.Train.Epochs)
	}
	if c.Train.BatchSize < 1 {
		return errors.Wrapf(nn.ErrInvalidConfig, "config: batch_size must be positive, got %d", c.Train.BatchSize)
	}
	opt, err := c.NewOptimizer()
	if err != nil {
		return errors.Wrap(err, "config")
	}
	// Binding no parameters only checks the hyperparameters.
	if err := opt.Build(nil); err != nil {
		return errors.Wrap(err, "config")
	}
	return nil
}

// Parallel returns the worker configuration.
func (c Config) Parallel() parallel.Config {
	cfg, err := parallel.New(c.Workers, c.MinChunk)
	if err != nil {
		return parallel.Sequential()
	}
	return cfg
}

// NewLoss creates the configured loss.
func (c Config) NewLoss() (loss.Loss, error) {
	return loss.ByName(c.Loss, c.LossEpsilon)
}

// NewOptimizer creates the configured, unbound optimizer.
func (c Config) NewOptimizer() (optim.Optimizer, error) {
	o := c.Optimizer
	return optim.ByName(o.Name, optim.Config{
		LR:       o.LR,
		Momentum: o.Momentum,
		Nesterov: o.Nesterov,
		Beta1:    o.Beta1,
		Beta2:    o.Beta2,
		Rho:      o.Rho,
		Eps:      o.Epsilon,
	})
}
