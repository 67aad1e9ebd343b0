package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LooseAmount decodes a monetary value that may arrive as a JSON number,
// a decimal string ("12,50" or "12.50") or null. Anything unparseable,
// negative or out of range leaves the amount unset.
type LooseAmount struct {
	Money Money
	Valid bool
}

// Amount returns a set LooseAmount holding m.
func Amount(m Money) LooseAmount {
	return LooseAmount{Money: m, Valid: true}
}

func (a *LooseAmount) UnmarshalJSON(data []byte) error {
	*a = LooseAmount{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if cents, err := ParseAmountText(s); err == nil {
			*a = LooseAmount{Money: Money{Cents: cents}, Valid: true}
		}
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil || d.IsNegative() {
		return nil
	}
	if m, ok := MoneyFromDecimal(d); ok {
		*a = LooseAmount{Money: m, Valid: true}
	}
	return nil
}

func (a LooseAmount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(a.Money.Decimal().StringFixed(2)), nil
}

// OrZero returns the amount, or zero when unset.
func (a LooseAmount) OrZero() Money {
	if !a.Valid || a.Money.Cents < 0 {
		return Money{}
	}
	return a.Money
}

// ContractRecord is a contract as it arrives from outside: any field may be
// missing or malformed. Normalize turns it into a fully populated Contract.
type ContractRecord struct {
	ID         string      `json:"id,omitempty"`
	Client     string      `json:"client,omitempty"`
	Amount     LooseAmount `json:"amount"`
	Recurrence *string     `json:"recurrence,omitempty"`
	Status     *string     `json:"status,omitempty"`
	PaidAmount LooseAmount `json:"paid_amount"`
	StartDate  *string     `json:"start_date,omitempty"`
}

// ExpenseRecord is the loosely shaped counterpart of Expense.
type ExpenseRecord struct {
	ID          string      `json:"id,omitempty"`
	Description string      `json:"description,omitempty"`
	Amount      LooseAmount `json:"amount"`
	Recurrence  *string     `json:"recurrence,omitempty"`
	Category    *string     `json:"category,omitempty"`
	Date        *string     `json:"date,omitempty"`
}

// Normalize substitutes safe defaults for every missing or unrecognized
// field: zero amounts, one_time recurrence, active status, absent date.
func (r ContractRecord) Normalize() Contract {
	return Contract{
		ID:         strings.TrimSpace(r.ID),
		Client:     strings.TrimSpace(r.Client),
		Amount:     r.Amount.OrZero(),
		Recurrence: recurrenceOrDefault(r.Recurrence),
		Status:     statusOrDefault(r.Status),
		PaidAmount: r.PaidAmount.OrZero(),
		StartDate:  dateOrAbsent(r.StartDate),
	}
}

func (r ExpenseRecord) Normalize() Expense {
	category := ""
	if r.Category != nil {
		category = strings.TrimSpace(*r.Category)
	}
	return Expense{
		ID:          strings.TrimSpace(r.ID),
		Description: strings.TrimSpace(r.Description),
		Amount:      r.Amount.OrZero(),
		Recurrence:  recurrenceOrDefault(r.Recurrence),
		Category:    category,
		Date:        dateOrAbsent(r.Date),
	}
}

// NormalizeContracts normalizes a batch, preserving order.
func NormalizeContracts(in []ContractRecord) []Contract {
	out := make([]Contract, len(in))
	for i, r := range in {
		out[i] = r.Normalize()
	}
	return out
}

func NormalizeExpenses(in []ExpenseRecord) []Expense {
	out := make([]Expense, len(in))
	for i, r := range in {
		out[i] = r.Normalize()
	}
	return out
}

func recurrenceOrDefault(s *string) Recurrence {
	if s == nil {
		return OneTime
	}
	if r, ok := ParseRecurrence(*s); ok {
		return r
	}
	return OneTime
}

func statusOrDefault(s *string) ContractStatus {
	if s == nil {
		return StatusActive
	}
	if st, ok := ParseContractStatus(*s); ok {
		return st
	}
	return StatusActive
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01",
	"02/01/2006",
}

// ParseLooseDate accepts the date layouts seen in seed files and
// spreadsheets. Month-only values resolve to the first of the month.
func ParseLooseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), int(t.Month()), t.Day()), true
		}
	}
	return Date{}, false
}

func dateOrAbsent(s *string) Date {
	if s == nil {
		return Date{}
	}
	d, _ := ParseLooseDate(*s)
	return d
}
