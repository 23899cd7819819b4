package model

import (
	"errors"
	"math"
	"testing"
)

func TestLinearizeReference(t *testing.T) {
	cp := NewCartPole()
	a, b, err := cp.Linearize()
	if err != nil {
		t.Fatalf("linearize failed: %v", err)
	}

	g, l, bigM, m, mu := 9.81, 1.0, 0.5, 0.3, 0.01
	want := map[[2]int]float64{
		{0, 1}: 1,
		{1, 1}: -mu * (bigM + m) * g / 2 / bigM,
		{1, 2}: -m * g / 2 / bigM,
		{2, 3}: 1,
		{3, 1}: mu * (bigM + m) * g / 2 / bigM / l,
		{3, 2}: (2*bigM*g + m*g) / 2 / bigM / l,
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			exp := want[[2]int{i, j}]
			if got := a.At(i, j); math.Abs(got-exp) > 1e-12 {
				t.Errorf("A[%d][%d] = %f, expected %f", i, j, got, exp)
			}
		}
	}

	wantB := []float64{0, 1.0, 0, -1.0}
	for i, exp := range wantB {
		if got := b.At(i, 0); math.Abs(got-exp) > 1e-12 {
			t.Errorf("B[%d] = %f, expected %f", i, got, exp)
		}
	}
}

func TestLinearizeDims(t *testing.T) {
	cp := NewCartPole()
	a, b, err := cp.Linearize()
	if err != nil {
		t.Fatal(err)
	}
	if r, c := a.Dims(); r != cp.StateDim() || c != cp.StateDim() {
		t.Errorf("A is %dx%d", r, c)
	}
	if r, c := b.Dims(); r != cp.StateDim() || c != cp.ControlDim() {
		t.Errorf("B is %dx%d", r, c)
	}
}

func TestLinearizeDegenerate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CartPole)
	}{
		{"zero cart mass", func(c *CartPole) { c.CartMass = 0 }},
		{"zero length", func(c *CartPole) { c.Length = 0 }},
		{"negative length", func(c *CartPole) { c.Length = -1 }},
		{"negative pole mass", func(c *CartPole) { c.PoleMass = -0.1 }},
		{"nan gravity", func(c *CartPole) { c.Gravity = math.NaN() }},
		{"inf friction", func(c *CartPole) { c.Friction = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := NewCartPole()
			tt.mutate(cp)
			a, b, err := cp.Linearize()
			if !errors.Is(err, ErrParameterBounds) {
				t.Fatalf("expected ErrParameterBounds, got %v", err)
			}
			if a != nil || b != nil {
				t.Error("expected nil matrices on error")
			}
		})
	}
}

func TestFrictionlessCoupling(t *testing.T) {
	cp := NewCartPole()
	cp.Friction = 0
	a, _, err := cp.Linearize()
	if err != nil {
		t.Fatal(err)
	}
	if a.At(1, 1) != 0 || a.At(3, 1) != 0 {
		t.Errorf("expected zero friction terms, got a22=%f a42=%f", a.At(1, 1), a.At(3, 1))
	}
}

func TestWeightsMatrices(t *testing.T) {
	q, r, err := DefaultWeights().Matrices(4, 1)
	if err != nil {
		t.Fatalf("matrices failed: %v", err)
	}
	diag := []float64{100, 20, 1, 1}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			exp := 0.0
			if i == j {
				exp = diag[i]
			}
			if q.At(i, j) != exp {
				t.Errorf("Q[%d][%d] = %f, expected %f", i, j, q.At(i, j), exp)
			}
		}
	}
	if r.At(0, 0) != 1 {
		t.Errorf("R = %f, expected 1", r.At(0, 0))
	}
}

func TestWeightsErrors(t *testing.T) {
	tests := []struct {
		name string
		w    Weights
		want error
	}{
		{"short q", Weights{Q: []float64{1, 1}, R: []float64{1}}, ErrWeightShape},
		{"long r", Weights{Q: []float64{1, 1, 1, 1}, R: []float64{1, 1}}, ErrWeightShape},
		{"negative q", Weights{Q: []float64{1, -1, 1, 1}, R: []float64{1}}, ErrWeightValue},
		{"zero r", Weights{Q: []float64{1, 1, 1, 1}, R: []float64{0}}, ErrWeightValue},
	}
	for _, tt := range tests {
		if _, _, err := tt.w.Matrices(4, 1); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestScaleR(t *testing.T) {
	w := DefaultWeights()
	s := w.ScaleR(10)
	if s.R[0] != 10 {
		t.Errorf("expected scaled r 10, got %f", s.R[0])
	}
	if w.R[0] != 1 {
		t.Error("ScaleR must not modify the receiver")
	}
}
