package lqr

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// polishTrigger is the relative residual above which a Hamiltonian
	// solution is polished with Newton steps.
	polishTrigger = 1e-12
	// residualTol is the largest relative residual accepted as a solution.
	residualTol   = 1e-8
	polishMaxIter = 30
)

// refineNewton runs Newton-Kleinman iterations from a stabilizing p0 until
// the relative change in P drops to tol.
func refineNewton(a, b, q, r mat.Matrix, p0 *mat.Dense, tol float64, maxIter int) (*mat.Dense, int, error) {
	p := p0
	for it := 1; it <= maxIter; it++ {
		next, err := kleinmanStep(a, b, q, r, p)
		if err != nil {
			return nil, it, err
		}
		change := relativeChange(next, p)
		p = next
		if change <= tol {
			return p, it, nil
		}
	}
	return nil, maxIter, fmt.Errorf("%w after %d iterations", ErrNoConvergence, maxIter)
}

// polish improves a stabilizing p whose relative residual exceeds
// polishTrigger. Iteration stops once the change in P stops shrinking, which
// is the rounding floor; the result must then meet residualTol.
func polish(a, b, q, r mat.Matrix, p *mat.Dense) (*mat.Dense, error) {
	rel, err := RelativeResidual(a, b, q, r, p)
	if err != nil {
		return nil, err
	}
	if rel <= polishTrigger {
		return p, nil
	}

	prevChange := math.Inf(1)
	for it := 0; it < polishMaxIter; it++ {
		next, err := kleinmanStep(a, b, q, r, p)
		if err != nil {
			return nil, err
		}
		change := relativeChange(next, p)
		if change >= prevChange {
			break
		}
		p, prevChange = next, change
		if change <= polishTrigger {
			break
		}
	}

	return p, checkResidual(a, b, q, r, p)
}

// checkResidual returns ErrResidual when p does not satisfy the CARE to
// residualTol.
func checkResidual(a, b, q, r, p mat.Matrix) error {
	rel, err := RelativeResidual(a, b, q, r, p)
	if err != nil {
		return err
	}
	if !(rel <= residualTol) {
		return fmt.Errorf("%w: relative residual %.3g exceeds %.0e", ErrResidual, rel, residualTol)
	}
	return nil
}

// kleinmanStep solves (A-BK)ᵗX + X(A-BK) + Q + KᵗRK = 0 for K = R⁻¹BᵗP.
func kleinmanStep(a, b, q, r mat.Matrix, p *mat.Dense) (*mat.Dense, error) {
	k, err := Gain(r, b, p)
	if err != nil {
		return nil, err
	}

	var rk, ktrk, rhs mat.Dense
	rk.Mul(r, k)
	ktrk.Mul(k.T(), &rk)
	rhs.Add(q, &ktrk)

	return SolveLyapunov(ClosedLoop(a, b, k), &rhs)
}

func relativeChange(next, prev mat.Matrix) float64 {
	var diff mat.Dense
	diff.Sub(next, prev)
	return mat.Norm(&diff, 2) / math.Max(1, mat.Norm(next, 2))
}

// SolveLyapunov returns the symmetric X with AᵗX + XA + M = 0, using the
// Kronecker form (Aᵗ⊗I + I⊗Aᵗ)·vec(X) = -vec(M) on row-major vec.
func SolveLyapunov(a, m mat.Matrix) (*mat.Dense, error) {
	n, nc := a.Dims()
	if n != nc {
		return nil, fmt.Errorf("%w: A is %dx%d", ErrDimensionMismatch, n, nc)
	}
	if mr, mc := m.Dims(); mr != n || mc != n {
		return nil, fmt.Errorf("%w: M is %dx%d, want %dx%d", ErrDimensionMismatch, mr, mc, n, n)
	}

	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	eye := mat.NewDiagDense(n, ones)

	var left, right, op mat.Dense
	left.Kronecker(a.T(), eye)
	right.Kronecker(eye, a.T())
	op.Add(&left, &right)

	rhs := mat.NewVecDense(n*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			rhs.SetVec(i*n+j, -m.At(i, j))
		}
	}

	var x mat.VecDense
	if err := x.SolveVec(&op, rhs); err != nil {
		return nil, fmt.Errorf("%w: lyapunov operator is singular (%v)", ErrNotStabilizable, err)
	}

	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, x.AtVec(i*n+j))
		}
	}
	return symmetrize(out), nil
}
