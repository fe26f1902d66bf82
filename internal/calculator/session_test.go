package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_NewSessionCreatesRowPerBox(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.TotalBoxCount = 3
	snap := NewSession(cfg).Snapshot()

	assert.Equal(t, []int{1, 1, 1}, quantities(snap.Rows))
	assert.True(t, snap.Totals.ChargeableWeight.IsZero())
	require.True(t, snap.Totals.VolumetricWeight.Valid)
}

func TestSession_MeasurementEditsRecomputeTotals(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.TotalBoxCount = 3
	s := NewSession(cfg)
	s.SetQuantity(0, 2)

	require.True(t, s.SetMeasurement(0, FieldWeight, "1"))
	require.True(t, s.SetMeasurement(0, FieldLength, "10"))
	require.True(t, s.SetMeasurement(0, FieldBreadth, "10"))
	require.True(t, s.SetMeasurement(0, FieldHeight, "10"))
	require.True(t, s.SetMeasurement(1, FieldWeight, "0.1"))
	require.True(t, s.SetMeasurement(1, FieldLength, "20"))
	require.True(t, s.SetMeasurement(1, FieldBreadth, "20"))
	require.True(t, s.SetMeasurement(1, FieldHeight, "20"))

	snap := s.Snapshot()
	assert.Equal(t, []int{2, 1}, quantities(snap.Rows))
	assert.True(t, snap.Totals.ActualWeight.Equal(decimal.RequireFromString("2.1")), snap.Totals.ActualWeight.String())
	assertDecimal(t, "2", snap.Totals.VolumetricWeight)
	assert.True(t, snap.Totals.ChargeableWeight.Equal(decimal.RequireFromString("3.6")), snap.Totals.ChargeableWeight.String())
}

func TestSession_MalformedMeasurementKeepsPriorValue(t *testing.T) {
	t.Parallel()

	s := NewSession(DefaultConfig())
	require.True(t, s.SetMeasurement(0, FieldWeight, "2.5"))

	assert.False(t, s.SetMeasurement(0, FieldWeight, "2.5555"))
	assert.False(t, s.SetMeasurement(0, FieldWeight, "02"))
	assert.False(t, s.SetMeasurement(4, FieldWeight, "1"))
	assert.False(t, s.SetMeasurement(0, Field(42), "1"))

	assertDecimal(t, "2.5", s.Snapshot().Rows[0].Weight)

	require.True(t, s.SetMeasurement(0, FieldWeight, ""))
	assert.False(t, s.Snapshot().Rows[0].Weight.Valid)
}

func TestSession_ModeAndUnitChangesRecomputeAllRows(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.TotalBoxCount = 2
	s := NewSession(cfg)
	for i := 0; i < 2; i++ {
		s.SetMeasurement(i, FieldWeight, "800")
		s.SetMeasurement(i, FieldLength, "10")
		s.SetMeasurement(i, FieldBreadth, "10")
		s.SetMeasurement(i, FieldHeight, "10")
	}
	assert.True(t, s.Snapshot().Totals.ChargeableWeight.Equal(decimal.NewFromInt(1600)))

	s.SetWeightUnit(Grams)
	assert.True(t, s.Snapshot().Totals.ChargeableWeight.Equal(decimal.RequireFromString("1.6")))

	s.SetShippingMode(InternationalCourier)
	snap := s.Snapshot()
	for _, row := range snap.Rows {
		assertDecimal(t, "1", row.ChargeableWeight)
		assertDecimal(t, "50", row.Girth)
	}
	assert.True(t, snap.Totals.ChargeableWeight.Equal(decimal.NewFromInt(2)))

	s.SetDimensionUnit(Meters)
	snap = s.Snapshot()
	assertDecimal(t, "200000", snap.Rows[0].VolumetricWeight)
	assertDecimal(t, "10", snap.Rows[0].Length, "entered value is preserved across unit changes")

	s.SetShippingMode(ShippingMode(99))
	assert.Equal(t, InternationalCourier, s.Config().ShippingMode)
}

func TestSession_BoxCountChanges(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.TotalBoxCount = 3
	s := NewSession(cfg)
	s.SetQuantity(0, 2)
	require.Equal(t, []int{2, 1}, quantities(s.Snapshot().Rows))

	s.SetBoxCount(1)
	assert.Equal(t, []int{1}, quantities(s.Snapshot().Rows))
	assert.Equal(t, 1, s.Config().TotalBoxCount)

	s.FinalizeBoxCount("4")
	assert.Equal(t, []int{1, 1, 1, 1}, quantities(s.Snapshot().Rows))

	for _, raw := range []string{"", "0", "-3", "abc"} {
		s.SetMeasurement(0, FieldWeight, "5")
		s.FinalizeBoxCount(raw)
		snap := s.Snapshot()
		assert.Equal(t, 1, snap.Config.TotalBoxCount, "raw %q", raw)
		require.Len(t, snap.Rows, 1)
		assert.False(t, snap.Rows[0].Weight.Valid, "raw %q resets to an empty row", raw)
		s.FinalizeBoxCount("4")
	}
}

func TestSession_SetQuantityIgnoresOutOfRange(t *testing.T) {
	t.Parallel()

	s := NewSession(DefaultConfig())
	s.SetQuantity(3, 5)
	s.SetQuantity(-1, 5)
	assert.Equal(t, []int{1}, quantities(s.Snapshot().Rows))
}

func TestSession_SnapshotIsIndependent(t *testing.T) {
	t.Parallel()

	s := NewSession(DefaultConfig())
	snap := s.Snapshot()
	snap.Rows[0].Quantity = 7

	assert.Equal(t, 1, s.Snapshot().Rows[0].Quantity)
}
