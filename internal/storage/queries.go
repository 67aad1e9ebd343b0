package storage

import (
	"context"
	"database/sql"
)

const listContracts = `-- name: ListContracts :many
SELECT id, client, amount_cents, recurrence, status, paid_cents, start_date
FROM contracts
ORDER BY rowid
`

func (q *Queries) ListContracts(ctx context.Context) ([]Contract, error) {
	rows, err := q.db.QueryContext(ctx, listContracts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Contract
	for rows.Next() {
		var i Contract
		if err := rows.Scan(
			&i.ID,
			&i.Client,
			&i.AmountCents,
			&i.Recurrence,
			&i.Status,
			&i.PaidCents,
			&i.StartDate,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getContract = `-- name: GetContract :one
SELECT id, client, amount_cents, recurrence, status, paid_cents, start_date
FROM contracts
WHERE id = ?
`

func (q *Queries) GetContract(ctx context.Context, id string) (Contract, error) {
	row := q.db.QueryRowContext(ctx, getContract, id)
	var i Contract
	err := row.Scan(
		&i.ID,
		&i.Client,
		&i.AmountCents,
		&i.Recurrence,
		&i.Status,
		&i.PaidCents,
		&i.StartDate,
	)
	return i, err
}

const upsertContract = `-- name: UpsertContract :exec
INSERT INTO contracts (id, client, amount_cents, recurrence, status, paid_cents, start_date)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    client = excluded.client,
    amount_cents = excluded.amount_cents,
    recurrence = excluded.recurrence,
    status = excluded.status,
    paid_cents = excluded.paid_cents,
    start_date = excluded.start_date,
    updated_at = CURRENT_TIMESTAMP
`

type UpsertContractParams struct {
	ID          string
	Client      string
	AmountCents int64
	Recurrence  string
	Status      string
	PaidCents   int64
	StartDate   sql.NullString
}

func (q *Queries) UpsertContract(ctx context.Context, arg UpsertContractParams) error {
	_, err := q.db.ExecContext(ctx, upsertContract,
		arg.ID,
		arg.Client,
		arg.AmountCents,
		arg.Recurrence,
		arg.Status,
		arg.PaidCents,
		arg.StartDate,
	)
	return err
}

const deleteContract = `-- name: DeleteContract :execrows
DELETE FROM contracts WHERE id = ?
`

func (q *Queries) DeleteContract(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteContract, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listExpenses = `-- name: ListExpenses :many
SELECT id, description, amount_cents, recurrence, category, date
FROM expenses
ORDER BY rowid
`

func (q *Queries) ListExpenses(ctx context.Context) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var i Expense
		if err := rows.Scan(
			&i.ID,
			&i.Description,
			&i.AmountCents,
			&i.Recurrence,
			&i.Category,
			&i.Date,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertExpense = `-- name: UpsertExpense :exec
INSERT INTO expenses (id, description, amount_cents, recurrence, category, date)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    description = excluded.description,
    amount_cents = excluded.amount_cents,
    recurrence = excluded.recurrence,
    category = excluded.category,
    date = excluded.date,
    updated_at = CURRENT_TIMESTAMP
`

type UpsertExpenseParams struct {
	ID          string
	Description string
	AmountCents int64
	Recurrence  string
	Category    string
	Date        sql.NullString
}

func (q *Queries) UpsertExpense(ctx context.Context, arg UpsertExpenseParams) error {
	_, err := q.db.ExecContext(ctx, upsertExpense,
		arg.ID,
		arg.Description,
		arg.AmountCents,
		arg.Recurrence,
		arg.Category,
		arg.Date,
	)
	return err
}

const deleteExpense = `-- name: DeleteExpense :execrows
DELETE FROM expenses WHERE id = ?
`

func (q *Queries) DeleteExpense(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
