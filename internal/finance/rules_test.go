package finance

import (
	"testing"
	"time"

	"prospect/internal/core"

	"github.com/shopspring/decimal"
)

func TestMonthlyEquivalent(t *testing.T) {
	tests := []struct {
		name       string
		amount     core.Money
		recurrence core.Recurrence
		want       string
	}{
		{"monthly is unchanged", core.Money{Cents: 50000}, core.Monthly, "500"},
		{"quarterly divides by three", core.Money{Cents: 30000}, core.Quarterly, "100"},
		{"yearly divides by twelve", core.Money{Cents: 120000}, core.Yearly, "100"},
		{"one time is not a rate", core.Money{Cents: 99900}, core.OneTime, "0"},
		{"unknown cadence is not prorated", core.Money{Cents: 99900}, "weekly", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyEquivalent(tt.amount, tt.recurrence)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("MonthlyEquivalent() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExpenseMonths(t *testing.T) {
	start := core.NewDate(2024, 8, 31)

	tests := []struct {
		name string
		rule RecurrenceRule
		year int
		want []time.Month
	}{
		{"one time in its year", OneTimeRule{}, 2024, []time.Month{time.August}},
		{"one time other year", OneTimeRule{}, 2025, nil},
		{"monthly first year", MonthlyRule{}, 2024, []time.Month{time.August, time.September, time.October, time.November, time.December}},
		{"monthly before start", MonthlyRule{}, 2023, nil},
		{"quarterly first year", QuarterlyRule{}, 2024, []time.Month{time.October}},
		{"quarterly later year", QuarterlyRule{}, 2025, []time.Month{time.January, time.April, time.July, time.October}},
		{"yearly anniversary", YearlyRule{}, 2027, []time.Month{time.August}},
		{"yearly before start", YearlyRule{}, 2023, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rule.ExpenseMonths(start, tt.year)
			if len(got) != len(tt.want) {
				t.Fatalf("ExpenseMonths() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("ExpenseMonths() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestRuleFor(t *testing.T) {
	if _, ok := RuleFor(core.Quarterly).(QuarterlyRule); !ok {
		t.Errorf("RuleFor(quarterly) should be QuarterlyRule")
	}
	if _, ok := RuleFor("fortnightly").(OneTimeRule); !ok {
		t.Errorf("unknown cadences should fall back to OneTimeRule")
	}
}
