package calculator

// Redistribute packs row quantities left to right so that they sum to total.
// Each row keeps min(quantity, remaining capacity); once capacity runs out the
// remaining rows are dropped, and leftover capacity is filled with new
// single-box rows. When edit is non-nil the edited row uses the new quantity
// instead of its current one. Quantities below 1 are treated as 1, and a total
// below 1 collapses the shipment to one empty row.
//
// The input slice is never modified.
func Redistribute(rows []BoxRow, total int, edit *QuantityEdit) []BoxRow {
	if total < 1 {
		return []BoxRow{NewRow()}
	}

	out := make([]BoxRow, 0, min(len(rows), total))
	remaining := total
	for i, row := range rows {
		if remaining == 0 {
			break
		}
		qty := row.Quantity
		if edit != nil && edit.Index == i {
			qty = edit.Quantity
		}
		qty = min(max(qty, 1), remaining)

		row.Quantity = qty
		out = append(out, row)
		remaining -= qty
	}
	for ; remaining > 0; remaining-- {
		out = append(out, NewRow())
	}
	return out
}

// SumQuantities returns the number of physical boxes the rows represent.
func SumQuantities(rows []BoxRow) int {
	sum := 0
	for _, row := range rows {
		sum += row.Quantity
	}
	return sum
}
