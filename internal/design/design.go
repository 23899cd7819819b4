// Package design runs a complete cart-pole LQR design from a configuration:
// model assembly, Riccati solve and gain computation, in that order.
package design

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/lqrgain/internal/config"
	"github.com/san-kum/lqrgain/internal/lqr"
	"github.com/san-kum/lqrgain/internal/model"
)

// Outcome is a solved design together with the inputs that produced it.
type Outcome struct {
	Config  *config.Config
	Problem lqr.Problem
	Result  *lqr.Result
}

func Run(cfg *config.Config) (*Outcome, error) {
	opts, err := cfg.SolverOptions()
	if err != nil {
		return nil, err
	}
	prob, err := Assemble(cfg.CartPole(), cfg.CostWeights())
	if err != nil {
		return nil, err
	}
	res, err := lqr.Solve(prob, opts)
	if err != nil {
		return nil, err
	}
	return &Outcome{Config: cfg, Problem: prob, Result: res}, nil
}

// Assemble builds A, B, Q and R for the cart-pole.
func Assemble(cp *model.CartPole, w model.Weights) (lqr.Problem, error) {
	a, b, err := cp.Linearize()
	if err != nil {
		return lqr.Problem{}, fmt.Errorf("assemble model: %w", err)
	}
	q, r, err := w.Matrices(cp.StateDim(), cp.ControlDim())
	if err != nil {
		return lqr.Problem{}, fmt.Errorf("assemble cost: %w", err)
	}
	return lqr.Problem{A: a, B: b, Q: q, R: r}, nil
}

// SweepPoint is one re-solved design with R scaled by Scale.
type SweepPoint struct {
	Scale     float64
	R         []float64
	Gain      []float64
	GainNorm  float64
	Authority float64 // K·B, the loop gain seen by the input
	Margin    float64
}

// Sweep re-solves the design once per scale factor applied to R. Every
// factor must be positive.
func Sweep(cfg *config.Config, scales []float64) ([]SweepPoint, error) {
	opts, err := cfg.SolverOptions()
	if err != nil {
		return nil, err
	}
	base := cfg.CostWeights()
	cp := cfg.CartPole()

	points := make([]SweepPoint, 0, len(scales))
	for _, s := range scales {
		if !(s > 0) || math.IsInf(s, 0) {
			return nil, fmt.Errorf("sweep: scale must be positive and finite, got %g", s)
		}
		w := base.ScaleR(s)
		prob, err := Assemble(cp, w)
		if err != nil {
			return nil, err
		}
		res, err := lqr.Solve(prob, opts)
		if err != nil {
			return nil, fmt.Errorf("sweep at scale %g: %w", s, err)
		}

		var kb mat.Dense
		kb.Mul(res.K, prob.B)
		points = append(points, SweepPoint{
			Scale:     s,
			R:         w.R,
			Gain:      res.GainRow(0),
			GainNorm:  mat.Norm(res.K, 2),
			Authority: mat.Trace(&kb),
			Margin:    res.Margin(),
		})
	}
	return points, nil
}

// LogScales returns count factors spaced logarithmically from lo to hi.
func LogScales(lo, hi float64, count int) []float64 {
	if count < 2 {
		return []float64{lo}
	}
	out := make([]float64, count)
	step := (math.Log10(hi) - math.Log10(lo)) / float64(count-1)
	for i := range out {
		out[i] = math.Pow(10, math.Log10(lo)+step*float64(i))
	}
	return out
}
