package core

import (
	"errors"
	"strings"
	"time"
)

const (
	OneTime   Recurrence = "one_time"
	Monthly   Recurrence = "monthly"
	Quarterly Recurrence = "quarterly"
	Yearly    Recurrence = "yearly"
)

const (
	StatusActive    ContractStatus = "active"
	StatusCompleted ContractStatus = "completed"
	StatusCancelled ContractStatus = "cancelled"
)

type (
	// Recurrence is the billing cadence of a contract or expense.
	Recurrence string

	// ContractStatus is the lifecycle state of a contract.
	ContractStatus string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Contract is a (possibly recurring) revenue commitment with a client.
	// For recurring contracts Amount is billed once per period.
	Contract struct {
		ID         string
		Client     string
		Amount     Money
		Recurrence Recurrence
		Status     ContractStatus
		PaidAmount Money
		StartDate  Date // zero when unknown
	}

	// Expense is a recurring or one-time operating cost. For recurring
	// expenses Date is when the obligation began.
	Expense struct {
		ID          string
		Description string
		Amount      Money
		Recurrence  Recurrence
		Category    string
		Date        Date
	}
)

var (
	ErrInvalidDay        = errors.New("invalid day")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidRecurrence = errors.New("invalid recurrence")
	ErrInvalidStatus     = errors.New("invalid contract status")
	ErrInvalidTransition = errors.New("invalid contract status transition")
	ErrEmptyDescription  = errors.New("empty description")
	ErrEmptyClient       = errors.New("empty client")
	ErrEmptyCategory     = errors.New("empty category")
)

// ParseRecurrence maps a loosely formatted label onto a Recurrence.
func ParseRecurrence(s string) (Recurrence, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "one_time", "one-time", "onetime", "once":
		return OneTime, true
	case "monthly":
		return Monthly, true
	case "quarterly":
		return Quarterly, true
	case "yearly", "annual", "annually":
		return Yearly, true
	}
	return "", false
}

// IsValid reports whether r is one of the known cadences.
func (r Recurrence) IsValid() bool {
	switch r {
	case OneTime, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

// IsRecurring is true for every cadence except one_time.
func (r Recurrence) IsRecurring() bool {
	return r == Monthly || r == Quarterly || r == Yearly
}

func ParseContractStatus(s string) (ContractStatus, bool) {
	switch st := ContractStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusActive, StatusCompleted, StatusCancelled:
		return st, true
	}
	return "", false
}

func (s ContractStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a contract in status s may move to next.
// Only active contracts change state; cancelled ones are never resurrected.
func (s ContractStatus) CanTransitionTo(next ContractStatus) bool {
	if s == next {
		return true
	}
	return s == StatusActive && (next == StatusCompleted || next == StatusCancelled)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsEmpty returns true if the date is zero (absent).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c Contract) Validate() error {
	if strings.TrimSpace(c.Client) == "" {
		return ErrEmptyClient
	}
	if len(c.Client) > 200 {
		return errors.New("client too long (max 200 characters)")
	}
	if err := c.Amount.Validate(); err != nil {
		return err
	}
	if c.PaidAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !c.Recurrence.IsValid() {
		return ErrInvalidRecurrence
	}
	if !c.Status.IsValid() {
		return ErrInvalidStatus
	}
	if !c.StartDate.IsEmpty() {
		if err := c.StartDate.Validate(); err != nil {
			return errors.New("invalid start date: " + err.Error())
		}
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Recurrence.IsValid() {
		return ErrInvalidRecurrence
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}
