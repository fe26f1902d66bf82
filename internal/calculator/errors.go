package calculator

import "errors"

var (
	// ErrUnknownShippingMode is returned when a shipping mode name is not recognised.
	ErrUnknownShippingMode = errors.New("unknown shipping mode")
	// ErrUnknownWeightUnit is returned when a weight unit name is not recognised.
	ErrUnknownWeightUnit = errors.New("unknown weight unit")
	// ErrUnknownDimensionUnit is returned when a dimension unit name is not recognised.
	ErrUnknownDimensionUnit = errors.New("unknown dimension unit")
	// ErrUnknownField is returned when a measurement field name is not recognised.
	ErrUnknownField = errors.New("unknown measurement field")
	// ErrInvalidMeasure is returned when a raw measurement does not match the accepted decimal format.
	ErrInvalidMeasure = errors.New("measurement must be a non-negative decimal with at most 3 fractional digits")
)
