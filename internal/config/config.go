package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/lqrgain/internal/lqr"
	"github.com/san-kum/lqrgain/internal/model"
)

const (
	DefaultModel     = "cartpole"
	DefaultMethod    = "hamiltonian"
	DefaultTolerance = 1e-10
	DefaultMaxIter   = 50
)

type Config struct {
	Model   string        `yaml:"model" json:"model"`
	Params  ParamsConfig  `yaml:"params" json:"params"`
	Weights WeightsConfig `yaml:"weights" json:"weights"`
	Solver  SolverConfig  `yaml:"solver" json:"solver"`
}

type ParamsConfig struct {
	Gravity  float64 `yaml:"gravity" json:"gravity"`
	Length   float64 `yaml:"length" json:"length"`
	CartMass float64 `yaml:"cart_mass" json:"cart_mass"`
	PoleMass float64 `yaml:"pole_mass" json:"pole_mass"`
	Friction float64 `yaml:"friction" json:"friction"`
}

// WeightsConfig holds the diagonals of Q and R.
type WeightsConfig struct {
	Q []float64 `yaml:"q" json:"q"`
	R []float64 `yaml:"r" json:"r"`
}

type SolverConfig struct {
	Method    string  `yaml:"method" json:"method"`
	Tolerance float64 `yaml:"tolerance" json:"tolerance"`
	MaxIter   int     `yaml:"max_iter" json:"max_iter"`
}

func DefaultConfig() *Config {
	w := model.DefaultWeights()
	return &Config{
		Model: DefaultModel,
		Params: ParamsConfig{
			Gravity:  model.DefaultGravity,
			Length:   model.DefaultLength,
			CartMass: model.DefaultCartMass,
			PoleMass: model.DefaultPoleMass,
			Friction: model.DefaultFriction,
		},
		Weights: WeightsConfig{
			Q: w.Q,
			R: w.R,
		},
		Solver: SolverConfig{
			Method:    DefaultMethod,
			Tolerance: DefaultTolerance,
			MaxIter:   DefaultMaxIter,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Model != DefaultModel {
		return nil, fmt.Errorf("unsupported model %q in %s", cfg.Model, path)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy so presets are never modified through a caller.
func (c *Config) Clone() *Config {
	out := *c
	out.Weights.Q = append([]float64(nil), c.Weights.Q...)
	out.Weights.R = append([]float64(nil), c.Weights.R...)
	return &out
}

func (c *Config) CartPole() *model.CartPole {
	return &model.CartPole{
		Gravity:  c.Params.Gravity,
		Length:   c.Params.Length,
		CartMass: c.Params.CartMass,
		PoleMass: c.Params.PoleMass,
		Friction: c.Params.Friction,
	}
}

func (c *Config) CostWeights() model.Weights {
	return model.Weights{
		Q: append([]float64(nil), c.Weights.Q...),
		R: append([]float64(nil), c.Weights.R...),
	}
}

func (c *Config) SolverOptions() (lqr.Options, error) {
	method, err := lqr.ParseMethod(c.Solver.Method)
	if err != nil {
		return lqr.Options{}, err
	}
	return lqr.Options{
		Method:    method,
		Tolerance: c.Solver.Tolerance,
		MaxIter:   c.Solver.MaxIter,
	}, nil
}
