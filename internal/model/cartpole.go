package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	DefaultGravity  = 9.81
	DefaultLength   = 1.0
	DefaultCartMass = 0.5
	DefaultPoleMass = 0.3
	DefaultFriction = 0.01
)

// CartPole holds the physical constants of the pendulum-on-cart plant.
// Friction is the coefficient coupling cart and pendulum motion.
type CartPole struct {
	Gravity  float64
	Length   float64
	CartMass float64
	PoleMass float64
	Friction float64
}

func NewCartPole() *CartPole {
	return &CartPole{
		Gravity:  DefaultGravity,
		Length:   DefaultLength,
		CartMass: DefaultCartMass,
		PoleMass: DefaultPoleMass,
		Friction: DefaultFriction,
	}
}

func (c *CartPole) StateDim() int {
	return 4
}

func (c *CartPole) ControlDim() int {
	return 1
}

// Validate reports the first constant that would make Linearize divide by
// zero or produce a non-finite entry.
func (c *CartPole) Validate() error {
	checks := []struct {
		name     string
		value    float64
		positive bool
	}{
		{"gravity", c.Gravity, false},
		{"length", c.Length, true},
		{"cart mass", c.CartMass, true},
		{"pole mass", c.PoleMass, false},
		{"friction", c.Friction, false},
	}
	for _, ck := range checks {
		if math.IsNaN(ck.value) || math.IsInf(ck.value, 0) {
			return fmt.Errorf("%w: %s is %v", ErrParameterBounds, ck.name, ck.value)
		}
		if ck.positive && ck.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrParameterBounds, ck.name, ck.value)
		}
		if !ck.positive && ck.value < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %g", ErrParameterBounds, ck.name, ck.value)
		}
	}
	return nil
}

// Linearize returns the state matrix A (4x4) and input matrix B (4x1) of the
// cart-pole about the upright equilibrium.
func (c *CartPole) Linearize() (*mat.Dense, *mat.Dense, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	g := c.Gravity
	l := c.Length
	bigM := c.CartMass
	m := c.PoleMass
	mu := c.Friction

	a22 := -mu * (bigM + m) * g / (2 * bigM)
	a23 := -m * g / (2 * bigM)
	a42 := mu * (bigM + m) * g / (2 * bigM * l)
	a43 := (2*bigM*g + m*g) / (2 * bigM * l)

	a := mat.NewDense(4, 4, []float64{
		0, 1, 0, 0,
		0, a22, a23, 0,
		0, 0, 0, 1,
		0, a42, a43, 0,
	})
	b := mat.NewDense(4, 1, []float64{
		0,
		1 / (2 * bigM),
		0,
		-1 / (2 * bigM * l),
	})
	return a, b, nil
}
