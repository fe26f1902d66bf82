package calculator

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// measurePattern accepts optional digits without a redundant leading zero,
// an optional decimal point and at most three fractional digits.
var measurePattern = regexp.MustCompile(`^(0|[1-9][0-9]*)?(\.[0-9]{0,3})?$`)

// ParseMeasure converts raw user input into a measurement. Empty input and a
// bare "." are valid and produce an unset value.
func ParseMeasure(raw string) (decimal.NullDecimal, error) {
	raw = strings.TrimSpace(raw)
	if !measurePattern.MatchString(raw) {
		return decimal.NullDecimal{}, ErrInvalidMeasure
	}
	if raw == "" || raw == "." {
		return decimal.NullDecimal{}, nil
	}
	if strings.HasPrefix(raw, ".") {
		raw = "0" + raw
	}
	raw = strings.TrimSuffix(raw, ".")

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, ErrInvalidMeasure
	}
	return decimal.NewNullDecimal(d), nil
}

// IsValidMeasure reports whether raw would be accepted by ParseMeasure.
func IsValidMeasure(raw string) bool {
	return measurePattern.MatchString(strings.TrimSpace(raw))
}

// Normalize converts a row's entered measurements to kilograms and centimeters.
// International courier dimensions are rounded up to whole centimeters.
func Normalize(row BoxRow, cfg Config) Normalized {
	return Normalized{
		WeightKg:  weightToKg(row.Weight, cfg.WeightUnit),
		LengthCm:  dimensionToCm(row.Length, cfg.DimensionUnit, cfg.ShippingMode),
		BreadthCm: dimensionToCm(row.Breadth, cfg.DimensionUnit, cfg.ShippingMode),
		HeightCm:  dimensionToCm(row.Height, cfg.DimensionUnit, cfg.ShippingMode),
	}
}

func weightToKg(v decimal.NullDecimal, unit WeightUnit) decimal.NullDecimal {
	if !v.Valid {
		return v
	}
	if unit == Grams {
		return decimal.NewNullDecimal(v.Decimal.Div(gramsPerKilogram))
	}
	return v
}

func dimensionToCm(v decimal.NullDecimal, unit DimensionUnit, mode ShippingMode) decimal.NullDecimal {
	if !v.Valid {
		return v
	}
	cm := v.Decimal.Mul(unit.CentimetersPer())
	if mode.AppliesCourierRounding() {
		cm = cm.Ceil()
	}
	return decimal.NewNullDecimal(cm)
}

// ConvertWeight expresses v, given in from, in the unit to.
func ConvertWeight(v decimal.Decimal, from, to WeightUnit) decimal.Decimal {
	if from == to {
		return v
	}
	if from == Grams {
		return v.Div(gramsPerKilogram)
	}
	return v.Mul(gramsPerKilogram)
}

// ConvertDimension expresses v, given in from, in the unit to.
func ConvertDimension(v decimal.Decimal, from, to DimensionUnit) decimal.Decimal {
	if from == to {
		return v
	}
	return v.Mul(from.CentimetersPer()).Div(to.CentimetersPer())
}
