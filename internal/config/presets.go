package config

import "sort"

// Presets are named variations of the reference cart-pole design.
var Presets = map[string]*Config{
	"reference": DefaultConfig(),
	"heavy-cart": withParams(func(p *ParamsConfig) {
		p.CartMass = 2.0
	}),
	"long-pole": withParams(func(p *ParamsConfig) {
		p.Length = 2.0
	}),
	"frictionless": withParams(func(p *ParamsConfig) {
		p.Friction = 0
	}),
	"gentle":     withWeights(WeightsConfig{Q: []float64{100, 20, 1, 1}, R: []float64{10}}),
	"aggressive": withWeights(WeightsConfig{Q: []float64{100, 20, 1, 1}, R: []float64{0.1}}),
	"upright":    withWeights(WeightsConfig{Q: []float64{10, 1, 100, 20}, R: []float64{1}}),
}

func withParams(mutate func(*ParamsConfig)) *Config {
	cfg := DefaultConfig()
	mutate(&cfg.Params)
	return cfg
}

func withWeights(w WeightsConfig) *Config {
	cfg := DefaultConfig()
	cfg.Weights = w
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
