package calculator

import "github.com/shopspring/decimal"

// Aggregate sums each row's derived values weighted by its quantity.
// Unset values contribute nothing.
func Aggregate(rows []BoxRow, mode ShippingMode) Totals {
	actual, volumetric, chargeable := decimal.Zero, decimal.Zero, decimal.Zero
	for _, row := range rows {
		qty := decimal.NewFromInt(int64(row.Quantity))
		actual = actual.Add(valueOrZero(row.ActualWeight).Mul(qty))
		volumetric = volumetric.Add(valueOrZero(row.VolumetricWeight).Mul(qty))
		chargeable = chargeable.Add(valueOrZero(row.ChargeableWeight).Mul(qty))
	}

	totals := Totals{
		ActualWeight:     actual.Round(weightPlaces),
		ChargeableWeight: chargeable.Round(weightPlaces),
		ChargeableUnit:   mode.ChargeableUnit(),
	}
	if !mode.SuppressesVolumetricTotal() {
		totals.VolumetricWeight = decimal.NewNullDecimal(volumetric.Round(weightPlaces))
	}
	return totals
}
