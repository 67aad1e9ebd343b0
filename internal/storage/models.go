package storage

import (
	"database/sql"
)

type Contract struct {
	ID          string
	Client      string
	AmountCents int64
	Recurrence  string
	Status      string
	PaidCents   int64
	StartDate   sql.NullString
}

type Expense struct {
	ID          string
	Description string
	AmountCents int64
	Recurrence  string
	Category    string
	Date        sql.NullString
}
