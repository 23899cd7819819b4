package model

import "errors"

var (
	// ErrParameterBounds indicates a physical constant that would make the
	// linearization undefined (zero mass, zero length, NaN, ...).
	ErrParameterBounds = errors.New("model: parameter out of valid bounds")

	// ErrWeightShape indicates a cost diagonal whose length does not match the
	// state or control dimension.
	ErrWeightShape = errors.New("model: cost weight dimension mismatch")

	// ErrWeightValue indicates a negative state weight or a non-positive input weight.
	ErrWeightValue = errors.New("model: cost weight out of valid bounds")
)
