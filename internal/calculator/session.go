package calculator

import (
	"strconv"
	"strings"
)

// Session owns one shipment being edited. Every mutation runs to completion,
// leaving rows and totals consistent with the configuration. A Session is not
// safe for concurrent use.
type Session struct {
	cfg    Config
	rows   []BoxRow
	totals Totals
}

// NewSession starts a session with one empty row per declared box.
func NewSession(cfg Config) *Session {
	if cfg.TotalBoxCount < 1 {
		cfg.TotalBoxCount = 1
	}
	s := &Session{cfg: cfg}
	s.rows = Redistribute(nil, cfg.TotalBoxCount, nil)
	s.recomputeAll()
	return s
}

// Snapshot returns a copy of the session state that the caller may keep.
func (s *Session) Snapshot() Result {
	rows := make([]BoxRow, len(s.rows))
	copy(rows, s.rows)
	return Result{Config: s.cfg, Rows: rows, Totals: s.totals}
}

// Config returns the current selections.
func (s *Session) Config() Config {
	return s.cfg
}

// RowCount returns the number of rows currently held.
func (s *Session) RowCount() int {
	return len(s.rows)
}

func (s *Session) SetShippingMode(m ShippingMode) {
	if !m.Valid() {
		return
	}
	s.cfg.ShippingMode = m
	s.recomputeAll()
}

func (s *Session) SetWeightUnit(u WeightUnit) {
	if !u.Valid() {
		return
	}
	s.cfg.WeightUnit = u
	s.recomputeAll()
}

func (s *Session) SetDimensionUnit(u DimensionUnit) {
	if !u.Valid() {
		return
	}
	s.cfg.DimensionUnit = u
	s.recomputeAll()
}

// SetBoxCount resizes the shipment to n boxes, keeping earlier rows' quantities
// where possible. A count below 1 resets to a single empty row.
func (s *Session) SetBoxCount(n int) {
	if n < 1 {
		s.reset()
		return
	}
	s.cfg.TotalBoxCount = n
	s.rows = Redistribute(s.rows, n, nil)
	s.aggregate()
}

// FinalizeBoxCount applies a raw box count as entered. Empty, malformed or
// non-positive input resets to a single empty row.
func (s *Session) FinalizeBoxCount(raw string) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		s.reset()
		return
	}
	s.SetBoxCount(n)
}

// SetQuantity changes the quantity of row i and repacks the rows against the
// declared box count. Out-of-range indices are ignored.
func (s *Session) SetQuantity(i, n int) {
	if i < 0 || i >= len(s.rows) {
		return
	}
	s.rows = Redistribute(s.rows, s.cfg.TotalBoxCount, &QuantityEdit{Index: i, Quantity: n})
	s.aggregate()
}

// SetMeasurement stores raw input for one field of row i. Malformed input is
// rejected and the previous value kept; the return value reports acceptance.
func (s *Session) SetMeasurement(i int, f Field, raw string) bool {
	if i < 0 || i >= len(s.rows) {
		return false
	}
	v, err := ParseMeasure(raw)
	if err != nil {
		return false
	}

	row := s.rows[i]
	switch f {
	case FieldWeight:
		row.Weight = v
	case FieldLength:
		row.Length = v
	case FieldBreadth:
		row.Breadth = v
	case FieldHeight:
		row.Height = v
	default:
		return false
	}
	s.rows[i] = DeriveRow(row, s.cfg)
	s.aggregate()
	return true
}

func (s *Session) reset() {
	s.cfg.TotalBoxCount = 1
	s.rows = []BoxRow{NewRow()}
	s.recomputeAll()
}

func (s *Session) recomputeAll() {
	s.rows, s.totals = Recompute(s.cfg, s.rows)
}

func (s *Session) aggregate() {
	s.totals = Aggregate(s.rows, s.cfg.ShippingMode)
}
