// Package model assembles the linear state-space model and the quadratic cost
// used for LQR design of an inverted pendulum on a cart.
//
// The state vector is ordered as
//
//	x = [cart position, cart velocity, pole angle, pole angular velocity]
//
// and the single control input is the horizontal force on the cart.
//
// # Usage
//
//	cp := model.NewCartPole()
//	a, b, err := cp.Linearize()
//	q, r, err := model.DefaultWeights().Matrices(cp.StateDim(), cp.ControlDim())
package model
