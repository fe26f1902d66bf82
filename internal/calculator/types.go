package calculator

import "github.com/shopspring/decimal"

// ShippingMode selects the divisor and rounding policy applied to a shipment.
type ShippingMode int

const (
	DomesticAir ShippingMode = iota
	DomesticSurface
	DomesticCargo
	InternationalCourier
	InternationalAirFreight
	InternationalSeaFreight
)

// WeightUnit is the unit the caller enters box weights in.
type WeightUnit int

const (
	Kilograms WeightUnit = iota
	Grams
)

// DimensionUnit is the unit the caller enters box dimensions in.
type DimensionUnit int

const (
	Centimeters DimensionUnit = iota
	Inches
	Feet
	Meters
)

// Field identifies one of the user-entered measurements of a row.
type Field int

const (
	FieldWeight Field = iota
	FieldLength
	FieldBreadth
	FieldHeight
)

// Config holds the selections shared by every row of a shipment.
type Config struct {
	ShippingMode  ShippingMode
	WeightUnit    WeightUnit
	DimensionUnit DimensionUnit
	TotalBoxCount int
}

// DefaultConfig returns a single-box domestic air shipment measured in kg and cm.
func DefaultConfig() Config {
	return Config{
		ShippingMode:  DomesticAir,
		WeightUnit:    Kilograms,
		DimensionUnit: Centimeters,
		TotalBoxCount: 1,
	}
}

// BoxRow is one line of the shipment. Weight and dimensions are kept exactly
// as entered, in the selected units; the remaining fields are derived.
type BoxRow struct {
	Quantity int
	Weight   decimal.NullDecimal
	Length   decimal.NullDecimal
	Breadth  decimal.NullDecimal
	Height   decimal.NullDecimal

	ActualWeight     decimal.NullDecimal
	VolumetricWeight decimal.NullDecimal
	Girth            decimal.NullDecimal
	ChargeableWeight decimal.NullDecimal
}

// NewRow returns a row representing one box with no measurements entered.
func NewRow() BoxRow {
	return BoxRow{Quantity: 1}
}

// Totals are the quantity-weighted sums over all rows.
// VolumetricWeight is unset for modes that suppress the volumetric total.
type Totals struct {
	ActualWeight     decimal.Decimal
	VolumetricWeight decimal.NullDecimal
	ChargeableWeight decimal.Decimal
	ChargeableUnit   string
}

// Normalized holds a row's measurements converted to kilograms and centimeters.
type Normalized struct {
	WeightKg  decimal.NullDecimal
	LengthCm  decimal.NullDecimal
	BreadthCm decimal.NullDecimal
	HeightCm  decimal.NullDecimal
}

// QuantityEdit describes a user change to one row's quantity.
type QuantityEdit struct {
	Index    int
	Quantity int
}
