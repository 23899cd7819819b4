package lqr

import "errors"

// Domain errors for LQR design.
var (
	// ErrDimensionMismatch indicates A, B, Q and R do not have compatible shapes.
	ErrDimensionMismatch = errors.New("lqr: dimension mismatch between system and cost matrices")

	// ErrAsymmetricCost indicates Q or R is not symmetric.
	ErrAsymmetricCost = errors.New("lqr: cost matrix is not symmetric")

	// ErrIndefiniteCost indicates Q is not positive semi-definite or R is not positive definite.
	ErrIndefiniteCost = errors.New("lqr: cost matrix has wrong definiteness")

	// ErrSingularCost indicates the input cost R cannot be inverted.
	ErrSingularCost = errors.New("lqr: singular cost matrix R")

	// ErrNotStabilizable indicates no stabilizing Riccati solution exists for (A, B).
	ErrNotStabilizable = errors.New("lqr: (A, B) is not stabilizable")

	// ErrNoStabilizingSolution indicates a Hamiltonian eigenvalue on the
	// imaginary axis: a mode that is uncontrollable or unobservable through Q.
	ErrNoStabilizingSolution = errors.New("lqr: no stabilizing solution")

	// ErrResidual indicates a Riccati solution that does not satisfy the
	// equation to working accuracy.
	ErrResidual = errors.New("lqr: riccati residual above tolerance")

	// ErrEigenFailed indicates the eigendecomposition did not converge.
	ErrEigenFailed = errors.New("lqr: eigendecomposition failed")

	// ErrNoConvergence indicates Newton-Kleinman iteration hit its iteration limit.
	ErrNoConvergence = errors.New("lqr: newton iteration did not converge")

	// ErrUnknownMethod indicates an unsupported solver method name.
	ErrUnknownMethod = errors.New("lqr: unknown solver method")
)

// SolveError wraps an error with the design stage that produced it.
type SolveError struct {
	Stage   string
	Wrapped error
}

func (e *SolveError) Error() string {
	return e.Stage + ": " + e.Wrapped.Error()
}

func (e *SolveError) Unwrap() error {
	return e.Wrapped
}
