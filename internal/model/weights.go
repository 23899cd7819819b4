package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Weights are the diagonals of the LQR cost matrices Q (state) and R (input).
type Weights struct {
	Q []float64
	R []float64
}

func DefaultWeights() Weights {
	return Weights{
		Q: []float64{100, 20, 1, 1},
		R: []float64{1},
	}
}

// ScaleR returns a copy of w with every input weight multiplied by factor.
func (w Weights) ScaleR(factor float64) Weights {
	out := Weights{
		Q: append([]float64(nil), w.Q...),
		R: make([]float64, len(w.R)),
	}
	for i, v := range w.R {
		out.R[i] = v * factor
	}
	return out
}

// Matrices builds diagonal Q (n x n) and R (m x m).
func (w Weights) Matrices(n, m int) (*mat.Dense, *mat.Dense, error) {
	if len(w.Q) != n {
		return nil, nil, fmt.Errorf("%w: q has %d entries, state has %d", ErrWeightShape, len(w.Q), n)
	}
	if len(w.R) != m {
		return nil, nil, fmt.Errorf("%w: r has %d entries, control has %d", ErrWeightShape, len(w.R), m)
	}
	for i, v := range w.Q {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, fmt.Errorf("%w: q[%d] = %g", ErrWeightValue, i, v)
		}
	}
	for i, v := range w.R {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, fmt.Errorf("%w: r[%d] = %g", ErrWeightValue, i, v)
		}
	}

	q := mat.NewDense(n, n, nil)
	for i, v := range w.Q {
		q.Set(i, i, v)
	}
	r := mat.NewDense(m, m, nil)
	for i, v := range w.R {
		r.Set(i, i, v)
	}
	return q, r, nil
}
