package finance

import (
	"sort"
	"time"

	"prospect/internal/core"
)

// MonthlyBucket holds what a single calendar month of a projected year
// carries: contract value recognized at signing, the amount collected
// against those contracts, and the expenses attributed to the month.
type MonthlyBucket struct {
	ContractValue core.Money
	Collected     core.Money
	Expense       core.Money
}

// Net is collected minus expense for the bucket.
func (b MonthlyBucket) Net() core.Money {
	return b.Collected.Sub(b.Expense)
}

func (b MonthlyBucket) isEmpty() bool {
	return b.ContractValue.IsZero() && b.Collected.IsZero() && b.Expense.IsZero()
}

// YearSeries is a projected year, index 0 is January.
type YearSeries [12]MonthlyBucket

// Bucket returns the bucket for month m.
func (s *YearSeries) Bucket(m time.Month) *MonthlyBucket {
	return &s[m-1]
}

// HasData reports whether any bucket carries a nonzero value. Callers use it
// to pick an empty-state rendering; the series itself is always 12 long.
func (s YearSeries) HasData() bool {
	for _, b := range s {
		if !b.isEmpty() {
			return true
		}
	}
	return false
}

// Totals sums every bucket of the year.
func (s YearSeries) Totals() MonthlyBucket {
	var t MonthlyBucket
	for _, b := range s {
		t.ContractValue = t.ContractValue.Add(b.ContractValue)
		t.Collected = t.Collected.Add(b.Collected)
		t.Expense = t.Expense.Add(b.Expense)
	}
	return t
}

// Project builds the monthly series of year.
//
// A non-cancelled contract contributes its full amount and paid amount to
// its start month, and only when it started in year: revenue is recognized
// at signing, never spread across months or carried into other years.
// Expenses are placed according to their recurrence rule.
func Project(contracts []core.Contract, expenses []core.Expense, year int) YearSeries {
	var series YearSeries

	for _, c := range contracts {
		if effectiveStatus(c.Status) == core.StatusCancelled {
			continue
		}
		if c.StartDate.IsEmpty() || c.StartDate.Year() != year {
			continue
		}
		b := series.Bucket(c.StartDate.Time.Month())
		b.ContractValue = b.ContractValue.Add(nonNegative(c.Amount))
		b.Collected = b.Collected.Add(nonNegative(c.PaidAmount))
	}

	for _, e := range expenses {
		amount := nonNegative(e.Amount)
		for _, m := range RuleFor(effectiveRecurrence(e.Recurrence)).ExpenseMonths(e.Date, year) {
			b := series.Bucket(m)
			b.Expense = b.Expense.Add(amount)
		}
	}

	return series
}

// YearsWithData lists, in ascending order, every year from the earliest
// record up to max(through, latest record year) whose projection has data.
// Recurring expenses keep later years populated, so through lets a caller
// extend navigation up to e.g. the current year.
func YearsWithData(contracts []core.Contract, expenses []core.Expense, through int) []int {
	seen := map[int]struct{}{}
	for _, c := range contracts {
		if !c.StartDate.IsEmpty() && effectiveStatus(c.Status) != core.StatusCancelled {
			seen[c.StartDate.Year()] = struct{}{}
		}
	}
	for _, e := range expenses {
		if !e.Date.IsEmpty() {
			seen[e.Date.Year()] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return []int{}
	}

	starts := make([]int, 0, len(seen))
	for y := range seen {
		starts = append(starts, y)
	}
	sort.Ints(starts)

	last := starts[len(starts)-1]
	if through > last {
		last = through
	}

	years := []int{}
	for y := starts[0]; y <= last; y++ {
		if Project(contracts, expenses, y).HasData() {
			years = append(years, y)
		}
	}
	return years
}
