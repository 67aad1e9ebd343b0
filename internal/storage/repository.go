package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"prospect/internal/core"
	"prospect/internal/records"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

var _ records.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries

	// updateMu serializes read-modify-write transactions of this process;
	// immediate transactions keep other processes out.
	updateMu sync.Mutex
}

// dsn opens transactions with a write lock up front and waits on a busy
// database instead of failing.
func dsn(dbPath string) string {
	return dbPath + "?_txlock=immediate&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListContracts(ctx context.Context) ([]core.Contract, error) {
	rows, err := r.queries.ListContracts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	out := make([]core.Contract, 0, len(rows))
	for _, row := range rows {
		out = append(out, contractFromRow(row))
	}
	return out, nil
}

func (r *SQLiteRepository) GetContract(ctx context.Context, id string) (core.Contract, error) {
	row, err := r.queries.GetContract(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Contract{}, fmt.Errorf("contract %s: %w", id, records.ErrNotFound)
	}
	if err != nil {
		return core.Contract{}, fmt.Errorf("get contract %s: %w", id, err)
	}
	return contractFromRow(row), nil
}

func (r *SQLiteRepository) SaveContract(ctx context.Context, c core.Contract) error {
	if c.ID == "" {
		return fmt.Errorf("save contract: missing id")
	}
	if err := r.queries.UpsertContract(ctx, contractParams(c)); err != nil {
		return fmt.Errorf("save contract %s: %w", c.ID, err)
	}

	slog.DebugContext(ctx, "Contract saved to SQLite",
		"contract_id", c.ID,
		"client", c.Client,
		"amount_cents", c.Amount.Cents,
		"status", c.Status)
	return nil
}

// UpdateContract runs fn on the stored contract inside a transaction.
func (r *SQLiteRepository) UpdateContract(ctx context.Context, id string, fn func(*core.Contract) error) (core.Contract, error) {
	r.updateMu.Lock()
	defer r.updateMu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Contract{}, fmt.Errorf("begin update of contract %s: %w", id, err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	row, err := q.GetContract(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Contract{}, fmt.Errorf("contract %s: %w", id, records.ErrNotFound)
	}
	if err != nil {
		return core.Contract{}, fmt.Errorf("get contract %s: %w", id, err)
	}

	c := contractFromRow(row)
	if err := fn(&c); err != nil {
		return core.Contract{}, err
	}
	c.ID = id
	if err := q.UpsertContract(ctx, contractParams(c)); err != nil {
		return core.Contract{}, fmt.Errorf("save contract %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return core.Contract{}, fmt.Errorf("commit update of contract %s: %w", id, err)
	}

	slog.DebugContext(ctx, "Contract updated in SQLite",
		"contract_id", id,
		"paid_cents", c.PaidAmount.Cents,
		"status", c.Status)
	return c, nil
}

func (r *SQLiteRepository) DeleteContract(ctx context.Context, id string) error {
	n, err := r.queries.DeleteContract(ctx, id)
	if err != nil {
		return fmt.Errorf("delete contract %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("contract %s: %w", id, records.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.queries.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		out = append(out, expenseFromRow(row))
	}
	return out, nil
}

func (r *SQLiteRepository) SaveExpense(ctx context.Context, e core.Expense) error {
	if e.ID == "" {
		return fmt.Errorf("save expense: missing id")
	}
	err := r.queries.UpsertExpense(ctx, UpsertExpenseParams{
		ID:          e.ID,
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		Recurrence:  string(e.Recurrence),
		Category:    e.Category,
		Date:        nullDate(e.Date),
	})
	if err != nil {
		return fmt.Errorf("save expense %s: %w", e.ID, err)
	}

	slog.DebugContext(ctx, "Expense saved to SQLite",
		"expense_id", e.ID,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"category", e.Category)
	return nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	n, err := r.queries.DeleteExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", id, records.ErrNotFound)
	}
	return nil
}

// Rows go back through the normalization boundary so values written by
// other tools (unknown enums, odd date formats) degrade the same way
// seed files do.
func contractFromRow(row Contract) core.Contract {
	return core.ContractRecord{
		ID:         row.ID,
		Client:     row.Client,
		Amount:     looseCents(row.AmountCents),
		Recurrence: &row.Recurrence,
		Status:     &row.Status,
		PaidAmount: looseCents(row.PaidCents),
		StartDate:  nullableString(row.StartDate),
	}.Normalize()
}

func expenseFromRow(row Expense) core.Expense {
	return core.ExpenseRecord{
		ID:          row.ID,
		Description: row.Description,
		Amount:      looseCents(row.AmountCents),
		Recurrence:  &row.Recurrence,
		Category:    &row.Category,
		Date:        nullableString(row.Date),
	}.Normalize()
}

func contractParams(c core.Contract) UpsertContractParams {
	return UpsertContractParams{
		ID:          c.ID,
		Client:      c.Client,
		AmountCents: c.Amount.Cents,
		Recurrence:  string(c.Recurrence),
		Status:      string(c.Status),
		PaidCents:   c.PaidAmount.Cents,
		StartDate:   nullDate(c.StartDate),
	}
}

func looseCents(cents int64) core.LooseAmount {
	return core.Amount(core.Money{Cents: cents})
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullDate(d core.Date) sql.NullString {
	if d.IsEmpty() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Format(dateLayout), Valid: true}
}
