package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quantities(rows []BoxRow) []int {
	out := make([]int, len(rows))
	for i, row := range rows {
		out[i] = row.Quantity
	}
	return out
}

func rowsWithQuantities(qtys ...int) []BoxRow {
	rows := make([]BoxRow, len(qtys))
	for i, q := range qtys {
		rows[i] = BoxRow{Quantity: q}
	}
	return rows
}

func TestRedistribute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rows  []BoxRow
		total int
		edit  *QuantityEdit
		want  []int
	}{
		{name: "ShrinkDropsTrailingRows", rows: rowsWithQuantities(2, 1), total: 1, want: []int{1}},
		{name: "GrowPadsWithSingleBoxes", rows: rowsWithQuantities(2, 1), total: 5, want: []int{2, 1, 1, 1}},
		{name: "SameTotalUnchanged", rows: rowsWithQuantities(2, 1), total: 3, want: []int{2, 1}},
		{name: "TruncatesMiddleRow", rows: rowsWithQuantities(2, 3, 4), total: 4, want: []int{2, 2}},
		{name: "EmptyRowsPadded", rows: nil, total: 3, want: []int{1, 1, 1}},
		{name: "NonPositiveTotalResets", rows: rowsWithQuantities(2, 1), total: 0, want: []int{1}},
		{name: "NegativeTotalResets", rows: rowsWithQuantities(2, 1), total: -4, want: []int{1}},
		{name: "EditAbsorbsFollowingRows", rows: rowsWithQuantities(1, 1, 1), total: 3, edit: &QuantityEdit{Index: 0, Quantity: 3}, want: []int{3}},
		{name: "EditShrinkPadsTail", rows: rowsWithQuantities(3), total: 3, edit: &QuantityEdit{Index: 0, Quantity: 1}, want: []int{1, 1, 1}},
		{name: "EditMiddleRowCapped", rows: rowsWithQuantities(1, 1, 1), total: 3, edit: &QuantityEdit{Index: 1, Quantity: 5}, want: []int{1, 2}},
		{name: "EditBelowOneClamped", rows: rowsWithQuantities(2, 1), total: 3, edit: &QuantityEdit{Index: 0, Quantity: 0}, want: []int{1, 1, 1}},
		{name: "EditLastRowGrowsIntoPadding", rows: rowsWithQuantities(1, 1, 2), total: 4, edit: &QuantityEdit{Index: 2, Quantity: 1}, want: []int{1, 1, 1, 1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Redistribute(tc.rows, tc.total, tc.edit)
			assert.Equal(t, tc.want, quantities(got))
		})
	}
}

func TestRedistribute_SumMatchesTotal(t *testing.T) {
	t.Parallel()

	layouts := [][]int{nil, {1}, {5}, {2, 1}, {1, 2, 3, 4}, {10, 1, 1}}
	for _, layout := range layouts {
		for total := 1; total <= 12; total++ {
			rows := Redistribute(rowsWithQuantities(layout...), total, nil)
			require.Equal(t, total, SumQuantities(rows), "layout %v total %d", layout, total)

			for idx := range rows {
				for qty := -1; qty <= total+2; qty++ {
					edited := Redistribute(rows, total, &QuantityEdit{Index: idx, Quantity: qty})
					require.Equal(t, total, SumQuantities(edited),
						"layout %v total %d edit %d=%d", layout, total, idx, qty)
				}
			}
		}
	}
}

func TestRedistribute_KeepsMeasurementsAndInput(t *testing.T) {
	t.Parallel()

	rows := []BoxRow{
		box(t, 2, "4", "10", "10", "10"),
		box(t, 2, "9", "20", "20", "20"),
	}
	got := Redistribute(rows, 3, nil)

	require.Len(t, got, 2)
	assert.True(t, got[0].Weight.Decimal.Equal(rows[0].Weight.Decimal))
	assert.True(t, got[1].Weight.Decimal.Equal(rows[1].Weight.Decimal))
	assert.Equal(t, []int{2, 1}, quantities(got))
	assert.Equal(t, []int{2, 2}, quantities(rows), "input rows must not be modified")
}
