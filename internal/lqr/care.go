package lqr

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

const (
	// axisTol is the relative distance |Re λ|/|λ| below which a Hamiltonian
	// eigenvalue is treated as marginal.
	axisTol = 1e-9
	eps     = 2.220446049250313e-16
	// sqrtEps bounds the relative closed-loop spectral abscissa treated as
	// marginal.
	sqrtEps = 1.4901161193847656e-08
)

// SolveCARE returns the stabilizing solution P of
//
//	AᵗP + PA - PBR⁻¹BᵗP + Q = 0
//
// so that A - BR⁻¹BᵗP has all eigenvalues in the open left half plane.
// The solution is read off the stable invariant subspace [U1; U2] of the
// Hamiltonian matrix as P = U2·U1⁻¹ and polished with Newton-Kleinman steps
// when badly scaled weights leave a residual. ErrResidual is returned if the
// result still misses the equation.
func SolveCARE(a, b, q, r mat.Matrix) (*mat.Dense, error) {
	n, _, err := checkDims(a, b, q, r)
	if err != nil {
		return nil, err
	}

	var rInv mat.Dense
	if err := rInv.Inverse(r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularCost, err)
	}
	if err := checkAxisModes(a, q); err != nil {
		return nil, err
	}

	var br, g mat.Dense
	br.Mul(b, &rInv)
	g.Mul(&br, b.T())

	h := hamiltonian(a, &g, q)
	basis, err := stableSubspace(h, n)
	if err != nil {
		return nil, err
	}

	u1 := basis.Slice(0, n, 0, n)
	u2 := basis.Slice(n, 2*n, 0, n)
	var u1Inv mat.Dense
	if err := u1Inv.Inverse(u1); err != nil {
		return nil, fmt.Errorf("%w: stable subspace is not a graph over the state space (%v)", ErrNotStabilizable, err)
	}
	var p mat.Dense
	p.Mul(u2, &u1Inv)
	sol := symmetrize(&p)

	if !isFinite(sol) {
		return nil, fmt.Errorf("%w: riccati solution is not finite", ErrNotStabilizable)
	}
	if err := checkStabilizing(a, b, r, sol); err != nil {
		return nil, err
	}
	return polish(a, b, q, r, sol)
}

// checkAxisModes rejects an eigenvalue of A on the imaginary axis whose
// eigenvector v has vᴴQv = 0. Such a mode stays on the axis under any
// feedback that is optimal for Q.
func checkAxisModes(a, q mat.Matrix) error {
	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenRight); !ok {
		return ErrEigenFailed
	}
	vals := eig.Values(nil)
	var vecs mat.CDense
	eig.VectorsTo(&vecs)

	n := len(vals)
	floor := 1000 * eps * mat.Norm(a, math.Inf(1))
	qTol := 100 * eps * mat.Norm(q, math.Inf(1))
	for k, v := range vals {
		if math.Abs(real(v)) > math.Max(axisTol*cmplx.Abs(v), floor) {
			continue
		}
		var cost, norm float64
		for i := 0; i < n; i++ {
			zi := vecs.At(i, k)
			norm += real(zi)*real(zi) + imag(zi)*imag(zi)
			for j := 0; j < n; j++ {
				cost += real(cmplx.Conj(zi) * complex(q.At(i, j), 0) * vecs.At(j, k))
			}
		}
		if cost <= qTol*norm {
			return fmt.Errorf("%w: mode %v on the imaginary axis carries no state cost (not stabilizable or not detectable)", ErrNoStabilizingSolution, v)
		}
	}
	return nil
}

// hamiltonian builds [[A, -G], [-Q, -Aᵗ]] with G = BR⁻¹Bᵗ.
func hamiltonian(a, g, q mat.Matrix) *mat.Dense {
	n, _ := a.Dims()
	h := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			h.Set(i, j, a.At(i, j))
			h.Set(i, j+n, -g.At(i, j))
			h.Set(i+n, j, -q.At(i, j))
			h.Set(i+n, j+n, -a.At(j, i))
		}
	}
	return h
}

// stableSubspace returns a real 2n x n basis of the invariant subspace of h
// belonging to its eigenvalues with negative real part. A complex pair
// contributes the real and imaginary parts of one eigenvector.
func stableSubspace(h *mat.Dense, n int) (*mat.Dense, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(h, mat.EigenRight); !ok {
		return nil, ErrEigenFailed
	}
	vals := eig.Values(nil)
	var vecs mat.CDense
	eig.VectorsTo(&vecs)

	// a zero eigenvalue in a 2x2 Jordan block moves by about √(eps‖H‖)
	floor := 10 * math.Sqrt(eps*mat.Norm(h, math.Inf(1)))
	basis := mat.NewDense(2*n, n, nil)
	col := 0
	for k, v := range vals {
		re, im := real(v), imag(v)
		if math.Abs(re) <= math.Max(axisTol*cmplx.Abs(v), floor) {
			return nil, fmt.Errorf("%w: hamiltonian eigenvalue %v on the imaginary axis (not stabilizable or not detectable)", ErrNoStabilizingSolution, v)
		}
		// conjugate partners with negative imaginary part span the same real subspace
		if re > 0 || im < 0 {
			continue
		}
		width := 1
		if im > 0 {
			width = 2
		}
		if col+width > n {
			return nil, fmt.Errorf("%w: more than %d stable hamiltonian eigenvalues", ErrNotStabilizable, n)
		}
		for i := 0; i < 2*n; i++ {
			z := vecs.At(i, k)
			basis.Set(i, col, real(z))
			if width == 2 {
				basis.Set(i, col+1, imag(z))
			}
		}
		col += width
	}
	if col != n {
		return nil, fmt.Errorf("%w: found %d stable hamiltonian eigenvalues, need %d", ErrNotStabilizable, col, n)
	}
	return basis, nil
}

func checkStabilizing(a, b, r mat.Matrix, p *mat.Dense) error {
	k, err := Gain(r, b, p)
	if err != nil {
		return err
	}
	vals, err := Eigenvalues(ClosedLoop(a, b, k))
	if err != nil {
		return err
	}

	radius := 0.0
	for _, v := range vals {
		radius = math.Max(radius, cmplx.Abs(v))
	}
	abscissa := -StabilityMargin(vals)
	band := sqrtEps * math.Max(1, radius)
	switch {
	case math.IsNaN(abscissa) || abscissa > band:
		return fmt.Errorf("%w: closed-loop spectral abscissa is %g", ErrNotStabilizable, abscissa)
	case abscissa >= -band:
		return fmt.Errorf("%w: closed-loop eigenvalue on the imaginary axis (not stabilizable or not detectable)", ErrNoStabilizingSolution)
	}
	return nil
}

// checkDims returns the state and input dimensions of a CARE problem.
func checkDims(a, b, q, r mat.Matrix) (n, m int, err error) {
	n, nc := a.Dims()
	if n == 0 || n != nc {
		return 0, 0, fmt.Errorf("%w: A is %dx%d", ErrDimensionMismatch, n, nc)
	}
	br, m := b.Dims()
	if br != n || m == 0 {
		return 0, 0, fmt.Errorf("%w: B is %dx%d, want %dxm", ErrDimensionMismatch, br, m, n)
	}
	if qr, qc := q.Dims(); qr != n || qc != n {
		return 0, 0, fmt.Errorf("%w: Q is %dx%d, want %dx%d", ErrDimensionMismatch, qr, qc, n, n)
	}
	if rr, rc := r.Dims(); rr != m || rc != m {
		return 0, 0, fmt.Errorf("%w: R is %dx%d, want %dx%d", ErrDimensionMismatch, rr, rc, m, m)
	}
	return n, m, nil
}

func symmetrize(m mat.Matrix) *mat.Dense {
	var s mat.Dense
	s.Add(m, m.T())
	s.Scale(0.5, &s)
	return &s
}

func isFinite(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
