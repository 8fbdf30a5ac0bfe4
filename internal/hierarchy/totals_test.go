package hierarchy

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFolderTotals(t *testing.T) {
	t.Run("direct_children_only", func(t *testing.T) {
		s := testTree()

		// wedding's direct children are the venue folder (no own
		// amounts) and the flowers item. Catering is a grandchild and
		// must not leak into wedding's totals.
		got := s.FolderTotals("wedding", nil)
		if !got.Allocated.Equal(decimal.NewFromInt(1200)) {
			t.Errorf("expected allocated 1200, got %s", got.Allocated)
		}
		if !got.Spent.Equal(decimal.NewFromInt(200)) {
			t.Errorf("expected spent 200, got %s", got.Spent)
		}
		if got.ItemCount != 2 {
			t.Errorf("expected 2 direct children, got %d", got.ItemCount)
		}
	})

	t.Run("grandchild_change_does_not_leak", func(t *testing.T) {
		s := NewSnapshot([]Node{
			{ID: "f", Name: "F", IsFolder: true},
			{ID: "c", ParentID: strPtr("f"), Name: "C", Allocated: decimal.NewFromInt(100)},
			{ID: "sub", ParentID: strPtr("f"), Name: "Sub", IsFolder: true},
			{ID: "g", ParentID: strPtr("sub"), Name: "G", Allocated: decimal.NewFromInt(999)},
		})

		// g's amount belongs to sub's rollup, not f's.
		if got := s.FolderTotals("f", nil); !got.Allocated.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected allocated 100, got %s", got.Allocated)
		}
		if got := s.FolderTotals("sub", nil); !got.Allocated.Equal(decimal.NewFromInt(999)) {
			t.Errorf("expected allocated 999, got %s", got.Allocated)
		}
	})

	t.Run("effective_spent_callback", func(t *testing.T) {
		s := testTree()

		// Simulate a 500 refund on catering supplied by the expense
		// collaborator.
		effective := func(n Node) decimal.Decimal {
			if n.ID == "catering" {
				return decimal.NewFromInt(2500)
			}
			return n.Spent
		}

		got := s.FolderTotals("venue", effective)
		if !got.Spent.Equal(decimal.NewFromInt(3000)) {
			t.Errorf("expected raw spent 3000, got %s", got.Spent)
		}
		if !got.EffectiveSpent.Equal(decimal.NewFromInt(2500)) {
			t.Errorf("expected effective spent 2500, got %s", got.EffectiveSpent)
		}
	})

	t.Run("empty_folder", func(t *testing.T) {
		s := testTree()
		got := s.FolderTotals("honeymoon", nil)
		if !got.Allocated.IsZero() || !got.Spent.IsZero() || got.ItemCount != 0 {
			t.Errorf("expected zero totals for empty folder, got %+v", got)
		}
	})

	t.Run("unknown_folder", func(t *testing.T) {
		s := testTree()
		if got := s.FolderTotals("missing", nil); !got.Allocated.IsZero() {
			t.Errorf("expected zero totals for unknown folder, got %+v", got)
		}
	})
}

func TestPercentSpent(t *testing.T) {
	t.Run("zero_budget_is_zero_percent", func(t *testing.T) {
		tot := Totals{Allocated: decimal.Zero, EffectiveSpent: decimal.NewFromInt(100)}
		if pct := tot.PercentSpent(); pct != 0 {
			t.Errorf("expected 0%% for zero budget, got %f", pct)
		}
	})

	t.Run("ratio", func(t *testing.T) {
		tot := Totals{Allocated: decimal.NewFromInt(5000), EffectiveSpent: decimal.NewFromInt(3000)}
		if pct := tot.PercentSpent(); pct != 60 {
			t.Errorf("expected 60%%, got %f", pct)
		}
	})
}

// TestScenario walks the end-to-end example: Root -> Venue -> Catering
// with 5000 allocated and 3000 spent.
func TestScenario(t *testing.T) {
	s := NewSnapshot([]Node{
		{ID: "root", Name: "Root", IsFolder: true},
		{ID: "venue", ParentID: strPtr("root"), Name: "Venue", IsFolder: true},
		{ID: "catering", ParentID: strPtr("venue"), Name: "Catering", Allocated: decimal.NewFromInt(5000), Spent: decimal.NewFromInt(3000)},
	})

	tot := s.FolderTotals("venue", nil)
	if !tot.Allocated.Equal(decimal.NewFromInt(5000)) || !tot.Spent.Equal(decimal.NewFromInt(3000)) || !tot.EffectiveSpent.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("unexpected totals: %+v", tot)
	}

	if err := s.ValidateMove("venue", strPtr("catering")); err != ErrCircularReference {
		t.Errorf("expected ErrCircularReference, got %v", err)
	}
	if err := s.ValidateMove("catering", nil); err != nil {
		t.Errorf("expected valid move to root, got %v", err)
	}
}
