package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eugenenazirov/chargeable-weight/internal/calculator"
)

// rawInput keeps a user-entered value exactly as typed. It decodes from a JSON
// string or number; null decodes to the empty string.
type rawInput string

func (r *rawInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = rawInput(s)
	case len(data) > 0 && (data[0] == '-' || (data[0] >= '0' && data[0] <= '9')):
		*r = rawInput(data)
	default:
		return fmt.Errorf("expected string or number, got %s", data)
	}
	return nil
}

type rowRequest struct {
	Quantity int      `json:"quantity"`
	Weight   rawInput `json:"weight" validate:"measure"`
	Length   rawInput `json:"length" validate:"measure"`
	Breadth  rawInput `json:"breadth" validate:"measure"`
	Height   rawInput `json:"height" validate:"measure"`
}

type calculateRequest struct {
	ShippingMode  string       `json:"shippingMode"`
	WeightUnit    string       `json:"weightUnit"`
	DimensionUnit string       `json:"dimensionUnit"`
	TotalBoxCount int          `json:"totalBoxCount"`
	Rows          []rowRequest `json:"rows" validate:"dive"`
}

type selectionRequest struct {
	ShippingMode  string `json:"shippingMode"`
	WeightUnit    string `json:"weightUnit"`
	DimensionUnit string `json:"dimensionUnit"`
}

type createSessionRequest struct {
	selectionRequest
	TotalBoxCount int `json:"totalBoxCount" validate:"gte=0"`
}

type boxCountRequest struct {
	TotalBoxCount rawInput `json:"totalBoxCount"`
}

type rowPatchRequest struct {
	Quantity *int      `json:"quantity"`
	Weight   *rawInput `json:"weight"`
	Length   *rawInput `json:"length"`
	Breadth  *rawInput `json:"breadth"`
	Height   *rawInput `json:"height"`
}

func (p rowPatchRequest) measurements() []struct {
	field calculator.Field
	raw   *rawInput
} {
	return []struct {
		field calculator.Field
		raw   *rawInput
	}{
		{calculator.FieldWeight, p.Weight},
		{calculator.FieldLength, p.Length},
		{calculator.FieldBreadth, p.Breadth},
		{calculator.FieldHeight, p.Height},
	}
}

const (
	weightPlaces = 3
	girthPlaces  = 0
)

// fixedDecimal encodes a derived figure as a string with a fixed number of
// fractional digits, or null when unset.
type fixedDecimal struct {
	value  decimal.NullDecimal
	places int32
}

func weightFigure(v decimal.NullDecimal) fixedDecimal {
	return fixedDecimal{value: v, places: weightPlaces}
}

func (f fixedDecimal) MarshalJSON() ([]byte, error) {
	if !f.value.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.value.Decimal.StringFixed(f.places))
}

type rowResponse struct {
	Quantity         int                 `json:"quantity"`
	Weight           decimal.NullDecimal `json:"weight"`
	Length           decimal.NullDecimal `json:"length"`
	Breadth          decimal.NullDecimal `json:"breadth"`
	Height           decimal.NullDecimal `json:"height"`
	ActualWeight     fixedDecimal        `json:"actualWeight"`
	VolumetricWeight fixedDecimal        `json:"volumetricWeight"`
	Girth            fixedDecimal        `json:"girth"`
	ChargeableWeight fixedDecimal        `json:"chargeableWeight"`
}

type totalsResponse struct {
	ActualWeight     fixedDecimal `json:"actualWeightTotal"`
	VolumetricWeight fixedDecimal `json:"volumetricWeightTotal"`
	ChargeableWeight fixedDecimal `json:"chargeableWeightTotal"`
	ChargeableUnit   string       `json:"chargeableUnit"`
}

type shipmentResponse struct {
	SessionID     string         `json:"sessionId,omitempty"`
	ShippingMode  string         `json:"shippingMode"`
	WeightUnit    string         `json:"weightUnit"`
	DimensionUnit string         `json:"dimensionUnit"`
	TotalBoxCount int            `json:"totalBoxCount"`
	Rows          []rowResponse  `json:"rows"`
	Totals        totalsResponse `json:"totals"`
	Rejected      []string       `json:"rejected,omitempty"`
}

type modeResponse struct {
	Name                      string  `json:"name"`
	Divisor                   float64 `json:"divisor"`
	AppliesCourierRounding    bool    `json:"appliesCourierRounding"`
	HasGirth                  bool    `json:"hasGirth"`
	SuppressesVolumetricTotal bool    `json:"suppressesVolumetricTotal"`
	ChargeableUnit            string  `json:"chargeableUnit"`
}

type unitResponse struct {
	Name   string  `json:"name"`
	Factor float64 `json:"factor"`
}

type modesResponse struct {
	ShippingModes  []modeResponse `json:"shippingModes"`
	WeightUnits    []unitResponse `json:"weightUnits"`
	DimensionUnits []unitResponse `json:"dimensionUnits"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Sessions  int       `json:"sessions"`
}

type errorResponse struct {
	Error      string            `json:"error"`
	Details    string            `json:"details,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
}

func toShipmentResponse(res calculator.Result) shipmentResponse {
	rows := make([]rowResponse, len(res.Rows))
	for i, row := range res.Rows {
		rows[i] = rowResponse{
			Quantity:         row.Quantity,
			Weight:           row.Weight,
			Length:           row.Length,
			Breadth:          row.Breadth,
			Height:           row.Height,
			ActualWeight:     weightFigure(row.ActualWeight),
			VolumetricWeight: weightFigure(row.VolumetricWeight),
			Girth:            fixedDecimal{value: row.Girth, places: girthPlaces},
			ChargeableWeight: weightFigure(row.ChargeableWeight),
		}
	}
	return shipmentResponse{
		ShippingMode:  res.Config.ShippingMode.String(),
		WeightUnit:    res.Config.WeightUnit.String(),
		DimensionUnit: res.Config.DimensionUnit.String(),
		TotalBoxCount: res.Config.TotalBoxCount,
		Rows:          rows,
		Totals: totalsResponse{
			ActualWeight:     weightFigure(decimal.NewNullDecimal(res.Totals.ActualWeight)),
			VolumetricWeight: weightFigure(res.Totals.VolumetricWeight),
			ChargeableWeight: weightFigure(decimal.NewNullDecimal(res.Totals.ChargeableWeight)),
			ChargeableUnit:   res.Totals.ChargeableUnit,
		},
	}
}

func buildModesResponse() modesResponse {
	resp := modesResponse{}
	for _, m := range calculator.ShippingModes() {
		divisor, _ := m.Divisor().Float64()
		resp.ShippingModes = append(resp.ShippingModes, modeResponse{
			Name:                      m.String(),
			Divisor:                   divisor,
			AppliesCourierRounding:    m.AppliesCourierRounding(),
			HasGirth:                  m.HasGirth(),
			SuppressesVolumetricTotal: m.SuppressesVolumetricTotal(),
			ChargeableUnit:            m.ChargeableUnit(),
		})
	}
	for _, u := range calculator.WeightUnits() {
		factor, _ := calculator.ConvertWeight(decimal.NewFromInt(1), u, calculator.Kilograms).Float64()
		resp.WeightUnits = append(resp.WeightUnits, unitResponse{Name: u.String(), Factor: factor})
	}
	for _, u := range calculator.DimensionUnits() {
		factor, _ := u.CentimetersPer().Float64()
		resp.DimensionUnits = append(resp.DimensionUnits, unitResponse{Name: u.String(), Factor: factor})
	}
	return resp
}
