package finance

import (
	"sort"

	"prospect/internal/core"

	"github.com/shopspring/decimal"
)

// CategoryShare is one category's slice of the monthly expense run-rate.
type CategoryShare struct {
	Category string          `json:"category"`
	Monthly  decimal.Decimal `json:"monthly"`
	Percent  decimal.Decimal `json:"percent"`
}

// RankCategories orders categories by monthly-equivalent spend, highest
// first. Ties keep the order in which categories first appear in expenses.
// Percentages are relative to the total run-rate and are zero when it is.
func RankCategories(expenses []core.Expense) []CategoryShare {
	order, totals := categoryTotals(expenses)

	total := decimal.Zero
	for _, name := range order {
		total = total.Add(totals[name])
	}

	shares := make([]CategoryShare, 0, len(order))
	for _, name := range order {
		share := CategoryShare{Category: name, Monthly: totals[name], Percent: decimal.Zero}
		if total.IsPositive() {
			share.Percent = share.Monthly.Div(total).Mul(hundred)
		}
		shares = append(shares, share)
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Monthly.GreaterThan(shares[j].Monthly)
	})
	return shares
}

// TopCategories returns at most n entries of RankCategories. n <= 0 means
// no limit.
func TopCategories(expenses []core.Expense, n int) []CategoryShare {
	shares := RankCategories(expenses)
	if n > 0 && len(shares) > n {
		shares = shares[:n]
	}
	return shares
}
