package hierarchy

import "github.com/shopspring/decimal"

// Totals is the aggregated rollup for one folder.
type Totals struct {
	Allocated      decimal.Decimal
	Spent          decimal.Decimal
	EffectiveSpent decimal.Decimal
	ItemCount      int
}

// EffectiveSpentFunc supplies the effective spent figure for a node:
// the spent amount after partial-payment, refund, and credit
// adjustments. It is computed by the expense tracking collaborator;
// the engine treats it as an opaque number.
type EffectiveSpentFunc func(Node) decimal.Decimal

// FolderTotals sums allocated, spent, and effective spent over the
// DIRECT children of the given folder. Nested sub-folders contribute
// their own (zero) amounts, not their subtree totals: a folder's
// displayed total must equal exactly what a user gets by adding up the
// rows visible at that one level. Callers wanting deeper rollups
// recurse explicitly over child folders.
//
// A nil effective function falls back to each child's own Spent. An
// unknown folder ID yields zero totals.
func (s *Snapshot) FolderTotals(folderID string, effective EffectiveSpentFunc) Totals {
	t := Totals{
		Allocated:      decimal.Zero,
		Spent:          decimal.Zero,
		EffectiveSpent: decimal.Zero,
	}
	for _, child := range s.Children(folderID) {
		t.ItemCount++
		if child.IsFolder {
			continue
		}
		t.Allocated = t.Allocated.Add(child.Allocated)
		t.Spent = t.Spent.Add(child.Spent)
		if effective != nil {
			t.EffectiveSpent = t.EffectiveSpent.Add(effective(child))
		} else {
			t.EffectiveSpent = t.EffectiveSpent.Add(child.Spent)
		}
	}
	return t
}

// PercentSpent returns effective spent as a percentage of the
// allocated amount. A zero allocation reads as 0% spent, never NaN or
// a division fault.
func (t Totals) PercentSpent() float64 {
	if t.Allocated.IsZero() {
		return 0
	}
	pct, _ := t.EffectiveSpent.Div(t.Allocated).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}
