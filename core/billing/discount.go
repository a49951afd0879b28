package billing

import "sort"

// AllocateSiblingDiscount applies the family discount to one family's line
// items. The items must be the family's complete roster. Children are
// ordered by ascending student ID; the first pays full price and every
// other child's amount is multiplied by rate. The ordering is arbitrary but
// stable, so repeated runs always discount the same children.
//
// Single-child families are returned unchanged. Amounts are not rounded
// here.
func AllocateSiblingDiscount(items []LineItem, rate float64) []LineItem {
	if len(items) < 2 {
		return items
	}
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return items[idx[a]].StudentID < items[idx[b]].StudentID
	})
	for _, i := range idx[1:] {
		items[i].Amount *= rate
	}
	return items
}

// Adjust applies the staff discount then the prepayment discount on top of
// the sibling-discounted amount. The order is fixed; swapping it changes
// cents after rounding. Both rates are in [0, 1] so the result is never
// negative.
func Adjust(amount float64, isStaff, paidInFull bool, staffRate, prepaidRate float64) float64 {
	if isStaff {
		amount *= staffRate
	}
	if paidInFull {
		amount *= prepaidRate
	}
	return amount
}
