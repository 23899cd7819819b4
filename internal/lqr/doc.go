// Package lqr designs infinite-horizon continuous-time Linear Quadratic
// Regulators.
//
// Given a linear system dx/dt = Ax + Bu and the cost
//
//	J = ∫ (xᵗQx + uᵗRu) dt
//
// the optimal law is u = -Kx with K = R⁻¹BᵗP, where P is the stabilizing
// solution of the continuous-time algebraic Riccati equation (CARE)
//
//	AᵗP + PA - PBR⁻¹BᵗP + Q = 0
//
// # Usage
//
//	res, err := lqr.Solve(lqr.Problem{A: a, B: b, Q: q, R: r}, lqr.DefaultOptions())
//	k := res.GainRow(0)
//
// [SolveCARE] uses the stable invariant subspace of the Hamiltonian matrix.
// [MethodNewton] additionally polishes that solution with Newton-Kleinman
// iterations.
package lqr
