// Package finance turns contract and expense collections into a financial
// summary and a per-year monthly time series.
//
// This file implements the per-recurrence rules. Each cadence has its own
// rule that knows how to prorate an amount down to a monthly equivalent and
// which months of a given year a recurring expense lands in.
package finance

import (
	"time"

	"prospect/internal/core"

	"github.com/shopspring/decimal"
)

// RecurrenceRule encapsulates the cadence-specific behaviour of a record.
type RecurrenceRule interface {
	// MonthlyEquivalent prorates an amount billed once per period down to a
	// per-month figure. One-time amounts are not a rate and yield zero.
	MonthlyEquivalent(amount decimal.Decimal) decimal.Decimal

	// ExpenseMonths returns the months of year in which an expense that
	// started on start is attributed its full amount.
	ExpenseMonths(start core.Date, year int) []time.Month
}

var (
	three  = decimal.NewFromInt(3)
	twelve = decimal.NewFromInt(12)
)

var quarterStarts = []time.Month{time.January, time.April, time.July, time.October}

// OneTimeRule is the rule for records that are billed once.
type OneTimeRule struct{}

func (OneTimeRule) MonthlyEquivalent(decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

// ExpenseMonths places the amount in the month it was incurred, only in
// that exact year.
func (OneTimeRule) ExpenseMonths(start core.Date, year int) []time.Month {
	if start.IsEmpty() || start.Year() != year {
		return nil
	}
	return []time.Month{start.Time.Month()}
}

// MonthlyRule is the rule for records billed every month.
type MonthlyRule struct{}

func (MonthlyRule) MonthlyEquivalent(amount decimal.Decimal) decimal.Decimal {
	return amount
}

// ExpenseMonths covers the whole year when the expense was already running
// on January 1st, and the start month onward in its first year.
func (MonthlyRule) ExpenseMonths(start core.Date, year int) []time.Month {
	from, ok := firstMonth(start, year)
	if !ok {
		return nil
	}
	months := make([]time.Month, 0, 12)
	for m := from; m <= time.December; m++ {
		months = append(months, m)
	}
	return months
}

// QuarterlyRule is the rule for records billed every three months.
type QuarterlyRule struct{}

func (QuarterlyRule) MonthlyEquivalent(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(three)
}

// ExpenseMonths lands on the fixed quarter starts (Jan, Apr, Jul, Oct) that
// fall on or after the start month.
func (QuarterlyRule) ExpenseMonths(start core.Date, year int) []time.Month {
	from, ok := firstMonth(start, year)
	if !ok {
		return nil
	}
	months := make([]time.Month, 0, len(quarterStarts))
	for _, m := range quarterStarts {
		if m >= from {
			months = append(months, m)
		}
	}
	return months
}

// YearlyRule is the rule for records billed once a year.
type YearlyRule struct{}

func (YearlyRule) MonthlyEquivalent(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(twelve)
}

// ExpenseMonths lands once per year in the anniversary month, from the
// start year onward.
func (YearlyRule) ExpenseMonths(start core.Date, year int) []time.Month {
	if start.IsEmpty() || start.Year() > year {
		return nil
	}
	return []time.Month{start.Time.Month()}
}

// firstMonth returns the first month of year in which a recurring record
// that began on start is running. Records starting after year never run.
func firstMonth(start core.Date, year int) (time.Month, bool) {
	switch {
	case start.IsEmpty(), start.Year() > year:
		return 0, false
	case start.Year() < year:
		return time.January, true
	default:
		return start.Time.Month(), true
	}
}

// recurrenceRules maps cadences to their rules.
var recurrenceRules = map[core.Recurrence]RecurrenceRule{
	core.OneTime:   OneTimeRule{},
	core.Monthly:   MonthlyRule{},
	core.Quarterly: QuarterlyRule{},
	core.Yearly:    YearlyRule{},
}

// RuleFor returns the rule for r. Unknown cadences are treated as one-time,
// so they are never prorated into a run-rate.
func RuleFor(r core.Recurrence) RecurrenceRule {
	if rule, ok := recurrenceRules[r]; ok {
		return rule
	}
	return OneTimeRule{}
}

// MonthlyEquivalent prorates amount according to r.
func MonthlyEquivalent(amount core.Money, r core.Recurrence) decimal.Decimal {
	return RuleFor(r).MonthlyEquivalent(amount.Decimal())
}
