// Package records defines the ports through which contracts and expenses
// are read from and written to a backing store.
package records

import (
	"context"
	"errors"

	"prospect/internal/core"
)

// ErrNotFound is returned when a record with the requested ID does not exist.
var ErrNotFound = errors.New("record not found")

// Ports for outbound adapters.
type (
	ContractReader interface {
		// ListContracts returns every stored contract, cancelled ones included.
		ListContracts(ctx context.Context) ([]core.Contract, error)
	}

	ExpenseReader interface {
		ListExpenses(ctx context.Context) ([]core.Expense, error)
	}

	// ContractWriter persists contracts. SaveContract inserts or replaces by ID.
	ContractWriter interface {
		GetContract(ctx context.Context, id string) (core.Contract, error)
		SaveContract(ctx context.Context, c core.Contract) error
		// UpdateContract loads the contract, applies fn to it and stores the
		// result as one atomic step. Nothing is written when fn fails, and
		// its error is returned unchanged.
		UpdateContract(ctx context.Context, id string, fn func(*core.Contract) error) (core.Contract, error)
		DeleteContract(ctx context.Context, id string) error
	}

	ExpenseWriter interface {
		SaveExpense(ctx context.Context, e core.Expense) error
		DeleteExpense(ctx context.Context, id string) error
	}

	// Source is a read-only provider of both record kinds.
	Source interface {
		ContractReader
		ExpenseReader
	}

	// Store is a full read-write backend.
	Store interface {
		Source
		ContractWriter
		ExpenseWriter
	}
)
