package lqr

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Residual returns the Frobenius norm of AᵗP + PA - PBR⁻¹BᵗP + Q.
func Residual(a, b, q, r, p mat.Matrix) (float64, error) {
	res, _, err := riccatiTerms(a, b, q, r, p)
	if err != nil {
		return 0, err
	}
	return res, nil
}

// RelativeResidual returns Residual divided by the summed norms of the four
// Riccati terms, so that the value does not grow with the scale of Q or R.
func RelativeResidual(a, b, q, r, p mat.Matrix) (float64, error) {
	res, scale, err := riccatiTerms(a, b, q, r, p)
	if err != nil {
		return 0, err
	}
	if scale == 0 {
		return res, nil
	}
	return res / scale, nil
}

func riccatiTerms(a, b, q, r, p mat.Matrix) (res, scale float64, err error) {
	k, err := Gain(r, b, p)
	if err != nil {
		return 0, 0, err
	}

	var atp, pa, pb, pbk, sum mat.Dense
	atp.Mul(a.T(), p)
	pa.Mul(p, a)
	pb.Mul(p, b)
	pbk.Mul(&pb, k)

	sum.Add(&atp, &pa)
	sum.Sub(&sum, &pbk)
	sum.Add(&sum, q)

	scale = mat.Norm(&atp, 2) + mat.Norm(&pa, 2) + mat.Norm(&pbk, 2) + mat.Norm(q, 2)
	return mat.Norm(&sum, 2), scale, nil
}

// Eigenvalues returns the eigenvalues of a square matrix.
func Eigenvalues(m mat.Matrix) ([]complex128, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(m, mat.EigenNone); !ok {
		return nil, ErrEigenFailed
	}
	return eig.Values(nil), nil
}

// IsStable reports whether every eigenvalue has a strictly negative real part.
func IsStable(vals []complex128) bool {
	for _, v := range vals {
		if !(real(v) < 0) {
			return false
		}
	}
	return len(vals) > 0
}

// StabilityMargin returns -max Re(λ). Positive means stable.
func StabilityMargin(vals []complex128) float64 {
	maxRe := math.Inf(-1)
	for _, v := range vals {
		maxRe = math.Max(maxRe, real(v))
	}
	return -maxRe
}

// Asymmetry returns the Frobenius norm of M - Mᵗ.
func Asymmetry(m mat.Matrix) float64 {
	var d mat.Dense
	d.Sub(m, m.T())
	return mat.Norm(&d, 2)
}
