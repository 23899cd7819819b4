package lqr

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Gain returns K = R⁻¹·(Bᵗ·P).
func Gain(r, b, p mat.Matrix) (*mat.Dense, error) {
	n, m := b.Dims()
	if rr, rc := r.Dims(); rr != m || rc != m {
		return nil, fmt.Errorf("%w: R is %dx%d, B is %dx%d", ErrDimensionMismatch, rr, rc, n, m)
	}
	if pr, pc := p.Dims(); pr != n || pc != n {
		return nil, fmt.Errorf("%w: P is %dx%d, B is %dx%d", ErrDimensionMismatch, pr, pc, n, m)
	}

	var rInv mat.Dense
	if err := rInv.Inverse(r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularCost, err)
	}

	var btp, k mat.Dense
	btp.Mul(b.T(), p)
	k.Mul(&rInv, &btp)
	return &k, nil
}

// ClosedLoop returns A - BK.
func ClosedLoop(a, b, k mat.Matrix) *mat.Dense {
	var bk, acl mat.Dense
	bk.Mul(b, k)
	acl.Sub(a, &bk)
	return &acl
}
