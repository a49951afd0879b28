package billing

import "testing"

func TestAllocateSiblingDiscount(t *testing.T) {
	const rate = 0.9

	t.Run("single child unchanged", func(t *testing.T) {
		items := []LineItem{{StudentID: "a", Amount: 100}}
		got := AllocateSiblingDiscount(items, rate)
		if got[0].Amount != 100 {
			t.Errorf("Amount = %v, want 100", got[0].Amount)
		}
	})

	t.Run("discount targets order by id not amount", func(t *testing.T) {
		// second child has the lower amount but the higher ID; the
		// discount still lands on it
		items := []LineItem{
			{StudentID: "a", Amount: 100},
			{StudentID: "b", Amount: 80},
		}
		got := AllocateSiblingDiscount(items, rate)
		if got[0].Amount != 100 {
			t.Errorf("first child Amount = %v, want 100", got[0].Amount)
		}
		if got[1].Amount != 80*rate {
			t.Errorf("second child Amount = %v, want %v", got[1].Amount, 80*rate)
		}
	})

	t.Run("input order does not matter", func(t *testing.T) {
		items := []LineItem{
			{StudentID: "b", Amount: 80},
			{StudentID: "a", Amount: 100},
		}
		got := AllocateSiblingDiscount(items, rate)
		if got[1].Amount != 100 {
			t.Errorf("lowest-id child Amount = %v, want 100", got[1].Amount)
		}
		if got[0].Amount != 80*rate {
			t.Errorf("sibling Amount = %v, want %v", got[0].Amount, 80*rate)
		}
	})

	t.Run("three children", func(t *testing.T) {
		items := []LineItem{
			{StudentID: "a", Amount: 100},
			{StudentID: "b", Amount: 100},
			{StudentID: "c", Amount: 100},
		}
		got := AllocateSiblingDiscount(items, rate)
		if got[0].Amount != 100 {
			t.Errorf("first child Amount = %v, want 100", got[0].Amount)
		}
		for _, item := range got[1:] {
			if item.Amount != 100*rate {
				t.Errorf("sibling %s Amount = %v, want %v", item.StudentID, item.Amount, 100*rate)
			}
		}
	})
}

func TestAdjust(t *testing.T) {
	const (
		staffRate   = 0.8
		prepaidRate = 0.95
	)

	tests := []struct {
		name       string
		amount     float64
		isStaff    bool
		paidInFull bool
		want       float64
	}{
		{name: "no discounts", amount: 200, want: 200},
		{name: "staff only", amount: 200, isStaff: true, want: 160},
		{name: "paid in full only", amount: 200, paidInFull: true, want: 190},
		{name: "staff and paid in full compound", amount: 200, isStaff: true, paidInFull: true, want: 152},
		{name: "zero stays zero", amount: 0, isStaff: true, paidInFull: true, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Adjust(tt.amount, tt.isStaff, tt.paidInFull, staffRate, prepaidRate); got != tt.want {
				t.Errorf("Adjust() = %v, want %v", got, tt.want)
			}
		})
	}
}
