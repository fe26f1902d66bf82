package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// modeSpec is the per-mode policy. The divisor is kept as a fraction so that
// domestic cargo (27000/7) is exact.
type modeSpec struct {
	name                      string
	divisorNum                int64
	divisorDen                int64
	appliesCourierRounding    bool
	hasGirth                  bool
	suppressesVolumetricTotal bool
	chargeableUnit            string
}

var modeSpecs = map[ShippingMode]modeSpec{
	DomesticAir:             {name: "domestic_air", divisorNum: 5000, divisorDen: 1, chargeableUnit: "Kgs"},
	DomesticSurface:         {name: "domestic_surface", divisorNum: 4750, divisorDen: 1, chargeableUnit: "Kgs"},
	DomesticCargo:           {name: "domestic_cargo", divisorNum: 27000, divisorDen: 7, chargeableUnit: "Kgs"},
	InternationalCourier:    {name: "international_courier", divisorNum: 5000, divisorDen: 1, appliesCourierRounding: true, hasGirth: true, chargeableUnit: "Kgs"},
	InternationalAirFreight: {name: "international_air_freight", divisorNum: 6000, divisorDen: 1, chargeableUnit: "Kgs"},
	InternationalSeaFreight: {name: "international_sea_freight", divisorNum: 1_000_000, divisorDen: 1, suppressesVolumetricTotal: true, chargeableUnit: "CBM"},
}

// ShippingModes lists every supported mode in declaration order.
func ShippingModes() []ShippingMode {
	return []ShippingMode{
		DomesticAir,
		DomesticSurface,
		DomesticCargo,
		InternationalCourier,
		InternationalAirFreight,
		InternationalSeaFreight,
	}
}

func (m ShippingMode) spec() modeSpec {
	s, ok := modeSpecs[m]
	if !ok {
		panic(fmt.Sprintf("calculator: no policy registered for shipping mode %d", int(m)))
	}
	return s
}

func (m ShippingMode) String() string {
	if s, ok := modeSpecs[m]; ok {
		return s.name
	}
	return fmt.Sprintf("ShippingMode(%d)", int(m))
}

// Valid reports whether m is one of the registered modes.
func (m ShippingMode) Valid() bool {
	_, ok := modeSpecs[m]
	return ok
}

// Divisor returns the volumetric divisor for the mode.
func (m ShippingMode) Divisor() decimal.Decimal {
	s := m.spec()
	return decimal.NewFromInt(s.divisorNum).DivRound(decimal.NewFromInt(s.divisorDen), 3)
}

func (m ShippingMode) AppliesCourierRounding() bool { return m.spec().appliesCourierRounding }

func (m ShippingMode) HasGirth() bool { return m.spec().hasGirth }

func (m ShippingMode) SuppressesVolumetricTotal() bool { return m.spec().suppressesVolumetricTotal }

// ChargeableUnit is the display label consumers attach to chargeable totals.
func (m ShippingMode) ChargeableUnit() string { return m.spec().chargeableUnit }

// ParseShippingMode resolves a wire name such as "international_courier".
func ParseShippingMode(raw string) (ShippingMode, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for _, m := range ShippingModes() {
		if modeSpecs[m].name == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownShippingMode, raw)
}

var weightUnitNames = map[WeightUnit]string{
	Kilograms: "kg",
	Grams:     "g",
}

// gramsPerKilogram is applied iff the weight unit is grams.
var gramsPerKilogram = decimal.NewFromInt(1000)

func (u WeightUnit) String() string {
	if name, ok := weightUnitNames[u]; ok {
		return name
	}
	return fmt.Sprintf("WeightUnit(%d)", int(u))
}

func (u WeightUnit) Valid() bool {
	_, ok := weightUnitNames[u]
	return ok
}

// ParseWeightUnit resolves "kg" or "g".
func ParseWeightUnit(raw string) (WeightUnit, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for u, n := range weightUnitNames {
		if n == name {
			return u, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWeightUnit, raw)
}

var dimensionUnits = map[DimensionUnit]struct {
	name     string
	cmFactor decimal.Decimal
}{
	Centimeters: {name: "cm", cmFactor: decimal.NewFromInt(1)},
	Inches:      {name: "in", cmFactor: decimal.RequireFromString("2.54")},
	Feet:        {name: "ft", cmFactor: decimal.RequireFromString("30.48")},
	Meters:      {name: "m", cmFactor: decimal.NewFromInt(100)},
}

// DimensionUnits lists every supported dimension unit.
func DimensionUnits() []DimensionUnit {
	return []DimensionUnit{Centimeters, Inches, Feet, Meters}
}

// WeightUnits lists every supported weight unit.
func WeightUnits() []WeightUnit {
	return []WeightUnit{Kilograms, Grams}
}

func (u DimensionUnit) String() string {
	if d, ok := dimensionUnits[u]; ok {
		return d.name
	}
	return fmt.Sprintf("DimensionUnit(%d)", int(u))
}

func (u DimensionUnit) Valid() bool {
	_, ok := dimensionUnits[u]
	return ok
}

// CentimetersPer returns how many centimeters one unit of u represents.
func (u DimensionUnit) CentimetersPer() decimal.Decimal {
	d, ok := dimensionUnits[u]
	if !ok {
		panic(fmt.Sprintf("calculator: no factor registered for dimension unit %d", int(u)))
	}
	return d.cmFactor
}

// ParseDimensionUnit resolves "cm", "in", "ft" or "m".
func ParseDimensionUnit(raw string) (DimensionUnit, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for u, d := range dimensionUnits {
		if d.name == name {
			return u, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDimensionUnit, raw)
}

var fieldNames = map[Field]string{
	FieldWeight:  "weight",
	FieldLength:  "length",
	FieldBreadth: "breadth",
	FieldHeight:  "height",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// ParseField resolves a measurement field name.
func ParseField(raw string) (Field, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for f, n := range fieldNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, raw)
}
