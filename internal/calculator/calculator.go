package calculator

// Result is a fully derived shipment.
type Result struct {
	Config Config
	Rows   []BoxRow
	Totals Totals
}

// Calculator describes the behaviour required from a chargeable weight calculator.
type Calculator interface {
	Calculate(cfg Config, rows []BoxRow) Result
}

type weightCalculator struct{}

// New creates a stateless Calculator.
func New() Calculator {
	return &weightCalculator{}
}

// Calculate fits rows to the declared box count and derives every figure.
// A count below 1 resets the shipment to a single empty row.
func (c *weightCalculator) Calculate(cfg Config, rows []BoxRow) Result {
	rows = Redistribute(rows, cfg.TotalBoxCount, nil)
	cfg.TotalBoxCount = SumQuantities(rows)
	rows, totals := Recompute(cfg, rows)
	return Result{Config: cfg, Rows: rows, Totals: totals}
}

// Recompute derives every row and the shipment totals from scratch. The input
// slice is not modified.
func Recompute(cfg Config, rows []BoxRow) ([]BoxRow, Totals) {
	out := make([]BoxRow, len(rows))
	for i, row := range rows {
		out[i] = DeriveRow(row, cfg)
	}
	return out, Aggregate(out, cfg.ShippingMode)
}

// DeriveRow fills the derived fields of a single row.
func DeriveRow(row BoxRow, cfg Config) BoxRow {
	n := Normalize(row, cfg)
	row.ActualWeight = n.WeightKg
	row.VolumetricWeight = VolumetricWeight(n, cfg.ShippingMode)
	row.Girth = Girth(n, cfg.ShippingMode)
	row.ChargeableWeight = ChargeableWeight(n.WeightKg, row.VolumetricWeight, cfg.ShippingMode)
	return row
}
