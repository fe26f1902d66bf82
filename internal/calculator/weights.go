package calculator

import "github.com/shopspring/decimal"

const (
	weightPlaces = 3
	girthPlaces  = 0
)

var two = decimal.NewFromInt(2)

// VolumetricWeight returns (l*b*h)/divisor rounded to 3 places, or unset when
// any dimension is missing or the result is not positive.
func VolumetricWeight(n Normalized, mode ShippingMode) decimal.NullDecimal {
	if !n.LengthCm.Valid || !n.BreadthCm.Valid || !n.HeightCm.Valid {
		return decimal.NullDecimal{}
	}
	s := mode.spec()
	volume := n.LengthCm.Decimal.Mul(n.BreadthCm.Decimal).Mul(n.HeightCm.Decimal)
	w := volume.Mul(decimal.NewFromInt(s.divisorDen)).DivRound(decimal.NewFromInt(s.divisorNum), weightPlaces)
	return positiveOrUnset(w)
}

// Girth returns the longest side plus twice the sum of the other two, rounded
// to a whole number. Only modes with a girth policy report it.
func Girth(n Normalized, mode ShippingMode) decimal.NullDecimal {
	if !mode.HasGirth() {
		return decimal.NullDecimal{}
	}
	if !n.LengthCm.Valid || !n.BreadthCm.Valid || !n.HeightCm.Valid {
		return decimal.NullDecimal{}
	}
	l, b, h := n.LengthCm.Decimal, n.BreadthCm.Decimal, n.HeightCm.Decimal
	maxSide := decimal.Max(l, b, h)
	others := l.Add(b).Add(h).Sub(maxSide)
	return positiveOrUnset(maxSide.Add(others.Mul(two)).Round(girthPlaces))
}

// ChargeableWeight is the greater of actual and volumetric weight. Courier
// rounding lifts it to the next half kilogram; other modes keep 3 places.
func ChargeableWeight(weightKg, volumetric decimal.NullDecimal, mode ShippingMode) decimal.NullDecimal {
	w := ChargeableWeightRaw(weightKg, volumetric)
	if mode.AppliesCourierRounding() {
		w = w.Mul(two).Ceil().Div(two)
	} else {
		w = w.Round(weightPlaces)
	}
	return positiveOrUnset(w)
}

// ChargeableWeightRaw is the chargeable weight before any mode rounding.
func ChargeableWeightRaw(weightKg, volumetric decimal.NullDecimal) decimal.Decimal {
	return decimal.Max(valueOrZero(weightKg), valueOrZero(volumetric))
}

func positiveOrUnset(d decimal.Decimal) decimal.NullDecimal {
	if !d.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func valueOrZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
