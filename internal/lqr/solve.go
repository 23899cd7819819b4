package lqr

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

type Method string

const (
	MethodHamiltonian Method = "hamiltonian"
	MethodNewton      Method = "newton"
)

func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case "", MethodHamiltonian:
		return MethodHamiltonian, nil
	case MethodNewton:
		return MethodNewton, nil
	}
	return "", fmt.Errorf("%w: %q (available: %s, %s)", ErrUnknownMethod, s, MethodHamiltonian, MethodNewton)
}

type Options struct {
	Method Method
	// Tolerance is the relative change in P at which Newton refinement stops.
	Tolerance float64
	MaxIter   int
}

func DefaultOptions() Options {
	return Options{
		Method:    MethodHamiltonian,
		Tolerance: 1e-10,
		MaxIter:   50,
	}
}

// Problem holds the matrices of an infinite-horizon LQR design.
type Problem struct {
	A *mat.Dense
	B *mat.Dense
	Q *mat.Dense
	R *mat.Dense
}

// Validate checks shapes, symmetry and definiteness of the cost matrices.
func (p Problem) Validate() error {
	if p.A == nil || p.B == nil || p.Q == nil || p.R == nil {
		return fmt.Errorf("%w: nil matrix", ErrDimensionMismatch)
	}
	if _, _, err := checkDims(p.A, p.B, p.Q, p.R); err != nil {
		return err
	}

	for _, c := range []struct {
		name string
		m    *mat.Dense
	}{{"Q", p.Q}, {"R", p.R}} {
		if d := Asymmetry(c.m); d > 1e-10*math.Max(1, mat.Norm(c.m, 2)) {
			return fmt.Errorf("%w: ‖%s - %sᵗ‖ = %g", ErrAsymmetricCost, c.name, c.name, d)
		}
	}

	var rInv mat.Dense
	if err := rInv.Inverse(p.R); err != nil {
		return fmt.Errorf("%w: %v", ErrSingularCost, err)
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(toSym(p.R)); !ok {
		return fmt.Errorf("%w: R is not positive definite", ErrIndefiniteCost)
	}

	var es mat.EigenSym
	if ok := es.Factorize(toSym(p.Q), false); !ok {
		return ErrEigenFailed
	}
	minEig := math.Inf(1)
	for _, v := range es.Values(nil) {
		minEig = math.Min(minEig, v)
	}
	if minEig < -1e-10*math.Max(1, mat.Norm(p.Q, 2)) {
		return fmt.Errorf("%w: Q has eigenvalue %g", ErrIndefiniteCost, minEig)
	}
	return nil
}

type Result struct {
	P          *mat.Dense
	K          *mat.Dense
	ClosedLoop []complex128
	Residual   float64
	// RelResidual is Residual scaled by the norms of the Riccati terms.
	RelResidual float64
	Iterations  int
	Method      Method
}

// GainRow returns row i of K, the gains of control input i.
func (r *Result) GainRow(i int) []float64 {
	return mat.Row(nil, i, r.K)
}

func (r *Result) Stable() bool {
	return IsStable(r.ClosedLoop)
}

func (r *Result) Margin() float64 {
	return StabilityMargin(r.ClosedLoop)
}

// Solve validates the problem, solves the CARE and derives the gain.
func Solve(prob Problem, opts Options) (*Result, error) {
	method, err := ParseMethod(string(opts.Method))
	if err != nil {
		return nil, &SolveError{Stage: "options", Wrapped: err}
	}
	if err := prob.Validate(); err != nil {
		return nil, &SolveError{Stage: "validate", Wrapped: err}
	}

	p, err := SolveCARE(prob.A, prob.B, prob.Q, prob.R)
	if err != nil {
		stage := "care"
		if errors.Is(err, ErrResidual) {
			stage = "residual"
		}
		return nil, &SolveError{Stage: stage, Wrapped: err}
	}

	iters := 0
	if method == MethodNewton {
		tol, maxIter := opts.Tolerance, opts.MaxIter
		if tol <= 0 {
			tol = DefaultOptions().Tolerance
		}
		if maxIter <= 0 {
			maxIter = DefaultOptions().MaxIter
		}
		p, iters, err = refineNewton(prob.A, prob.B, prob.Q, prob.R, p, tol, maxIter)
		if err != nil {
			return nil, &SolveError{Stage: "newton", Wrapped: err}
		}
		if err := checkResidual(prob.A, prob.B, prob.Q, prob.R, p); err != nil {
			return nil, &SolveError{Stage: "residual", Wrapped: err}
		}
	}

	k, err := Gain(prob.R, prob.B, p)
	if err != nil {
		return nil, &SolveError{Stage: "gain", Wrapped: err}
	}

	poles, err := Eigenvalues(ClosedLoop(prob.A, prob.B, k))
	if err != nil {
		return nil, &SolveError{Stage: "closed-loop", Wrapped: err}
	}
	if !IsStable(poles) {
		err := fmt.Errorf("%w: closed-loop spectral abscissa is %g", ErrNotStabilizable, -StabilityMargin(poles))
		return nil, &SolveError{Stage: "closed-loop", Wrapped: err}
	}

	residual, err := Residual(prob.A, prob.B, prob.Q, prob.R, p)
	if err != nil {
		return nil, &SolveError{Stage: "residual", Wrapped: err}
	}
	relResidual, err := RelativeResidual(prob.A, prob.B, prob.Q, prob.R, p)
	if err != nil {
		return nil, &SolveError{Stage: "residual", Wrapped: err}
	}

	return &Result{
		P:           p,
		K:           k,
		ClosedLoop:  poles,
		Residual:    residual,
		RelResidual: relResidual,
		Iterations:  iters,
		Method:      method,
	}, nil
}

func toSym(m mat.Matrix) *mat.SymDense {
	n, _ := m.Dims()
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.SetSym(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
		}
	}
	return s
}
