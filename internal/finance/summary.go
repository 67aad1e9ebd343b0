package finance

import (
	"prospect/internal/core"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summary is the aggregate financial picture of a set of contracts and
// expenses. Monetary figures are in currency units; run-rates are per month
// unless the name says otherwise.
type Summary struct {
	RecurringMonthly   decimal.Decimal `json:"recurringMonthly"`
	RecurringYearly    decimal.Decimal `json:"recurringYearly"`
	OneTimeTotal       decimal.Decimal `json:"oneTimeTotal"`
	TotalPaid          decimal.Decimal `json:"totalPaid"`
	TotalUnpaid        decimal.Decimal `json:"totalUnpaid"`
	TotalContractValue decimal.Decimal `json:"totalContractValue"`

	MonthlyExpenses decimal.Decimal `json:"monthlyExpenses"`
	YearlyExpenses  decimal.Decimal `json:"yearlyExpenses"`
	TotalExpenses   decimal.Decimal `json:"totalExpenses"`

	RecurringMonthlyProfit decimal.Decimal `json:"recurringMonthlyProfit"`
	RecurringYearlyProfit  decimal.Decimal `json:"recurringYearlyProfit"`
	ProfitMargin           decimal.Decimal `json:"profitMargin"`

	ActiveContracts    int `json:"activeContracts"`
	CompletedContracts int `json:"completedContracts"`
	OneTimeContracts   int `json:"oneTimeContracts"`
	RecurringContracts int `json:"recurringContracts"`

	ExpensesByCategory map[string]decimal.Decimal `json:"expensesByCategory"`
}

// Summarize reduces contracts and expenses to a Summary. It never fails:
// records are expected to be normalized already, and anything that still
// looks malformed contributes nothing rather than aborting the aggregate.
// The result does not depend on the order of either slice.
func Summarize(contracts []core.Contract, expenses []core.Expense) Summary {
	s := Summary{
		RecurringMonthly:   decimal.Zero,
		OneTimeTotal:       decimal.Zero,
		TotalPaid:          decimal.Zero,
		TotalUnpaid:        decimal.Zero,
		TotalContractValue: decimal.Zero,
		TotalExpenses:      decimal.Zero,
		ProfitMargin:       decimal.Zero,
	}

	for _, c := range contracts {
		status := effectiveStatus(c.Status)
		if status == core.StatusCancelled {
			continue
		}
		recurrence := effectiveRecurrence(c.Recurrence)
		amount := nonNegative(c.Amount)
		paid := nonNegative(c.PaidAmount)

		switch status {
		case core.StatusActive:
			s.ActiveContracts++
		case core.StatusCompleted:
			s.CompletedContracts++
		}

		if recurrence == core.OneTime {
			s.OneTimeContracts++
			s.OneTimeTotal = s.OneTimeTotal.Add(amount.Decimal())
		} else if status == core.StatusActive {
			// Completed recurring contracts no longer contribute to the run-rate.
			s.RecurringContracts++
			s.RecurringMonthly = s.RecurringMonthly.Add(MonthlyEquivalent(amount, recurrence))
		}

		s.TotalContractValue = s.TotalContractValue.Add(amount.Decimal())
		s.TotalPaid = s.TotalPaid.Add(paid.Decimal())
		if outstanding := amount.Sub(paid); outstanding.Cents > 0 {
			s.TotalUnpaid = s.TotalUnpaid.Add(outstanding.Decimal())
		}
	}

	for _, e := range expenses {
		s.TotalExpenses = s.TotalExpenses.Add(nonNegative(e.Amount).Decimal())
	}

	order, byCategory := categoryTotals(expenses)
	s.ExpensesByCategory = byCategory
	s.MonthlyExpenses = decimal.Zero
	for _, name := range order {
		s.MonthlyExpenses = s.MonthlyExpenses.Add(byCategory[name])
	}

	s.RecurringYearly = s.RecurringMonthly.Mul(twelve)
	s.YearlyExpenses = s.MonthlyExpenses.Mul(twelve)
	s.RecurringMonthlyProfit = s.RecurringMonthly.Sub(s.MonthlyExpenses)
	s.RecurringYearlyProfit = s.RecurringMonthlyProfit.Mul(twelve)
	if s.RecurringMonthly.IsPositive() {
		s.ProfitMargin = s.RecurringMonthlyProfit.Div(s.RecurringMonthly).Mul(hundred)
	}

	return s
}

// categoryTotals groups the monthly-equivalent of every recurring expense by
// category. order lists categories in first-seen input order.
func categoryTotals(expenses []core.Expense) (order []string, totals map[string]decimal.Decimal) {
	totals = make(map[string]decimal.Decimal)
	for _, e := range expenses {
		recurrence := effectiveRecurrence(e.Recurrence)
		if !recurrence.IsRecurring() {
			continue
		}
		monthly := MonthlyEquivalent(nonNegative(e.Amount), recurrence)
		current, seen := totals[e.Category]
		if !seen {
			order = append(order, e.Category)
			current = decimal.Zero
		}
		totals[e.Category] = current.Add(monthly)
	}
	return order, totals
}

func effectiveStatus(s core.ContractStatus) core.ContractStatus {
	if s.IsValid() {
		return s
	}
	return core.StatusActive
}

func effectiveRecurrence(r core.Recurrence) core.Recurrence {
	if r.IsValid() {
		return r
	}
	return core.OneTime
}

func nonNegative(m core.Money) core.Money {
	if m.Cents < 0 {
		return core.Money{}
	}
	return m
}
