package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"prospect/internal/core"
	"prospect/internal/records"
)

var _ records.Store = (*Store)(nil)

// Store keeps records in insertion order behind a mutex.
type Store struct {
	mu        sync.Mutex
	contracts []core.Contract
	expenses  []core.Expense
}

func New(contracts []core.Contract, expenses []core.Expense) *Store {
	s := &Store{}
	s.contracts = append(s.contracts, contracts...)
	s.expenses = append(s.expenses, expenses...)
	assignMissingIDs(s.contracts, s.expenses)
	return s
}

// NewFromFiles seeds the store from contracts.json and expenses.json in
// base. Each file holds an array of loosely shaped records; missing files
// leave the store empty and unreadable ones are logged and skipped.
func NewFromFiles(base string) *Store {
	var contractRecs []core.ContractRecord
	var expenseRecs []core.ExpenseRecord
	readJSON(filepath.Join(base, "contracts.json"), &contractRecs)
	readJSON(filepath.Join(base, "expenses.json"), &expenseRecs)
	return New(core.NormalizeContracts(contractRecs), core.NormalizeExpenses(expenseRecs))
}

func (s *Store) ListContracts(_ context.Context) ([]core.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Contract(nil), s.contracts...), nil
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.expenses...), nil
}

func (s *Store) GetContract(_ context.Context, id string) (core.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.contracts {
		if c.ID == id {
			return c, nil
		}
	}
	return core.Contract{}, fmt.Errorf("contract %s: %w", id, records.ErrNotFound)
}

func (s *Store) SaveContract(_ context.Context, c core.Contract) error {
	if c.ID == "" {
		return fmt.Errorf("save contract: missing id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.contracts {
		if s.contracts[i].ID == c.ID {
			s.contracts[i] = c
			return nil
		}
	}
	s.contracts = append(s.contracts, c)
	return nil
}

func (s *Store) UpdateContract(_ context.Context, id string, fn func(*core.Contract) error) (core.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.contracts {
		if s.contracts[i].ID != id {
			continue
		}
		c := s.contracts[i]
		if err := fn(&c); err != nil {
			return core.Contract{}, err
		}
		c.ID = id
		s.contracts[i] = c
		return c, nil
	}
	return core.Contract{}, fmt.Errorf("contract %s: %w", id, records.ErrNotFound)
}

func (s *Store) DeleteContract(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.contracts {
		if s.contracts[i].ID == id {
			s.contracts = append(s.contracts[:i], s.contracts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("contract %s: %w", id, records.ErrNotFound)
}

func (s *Store) SaveExpense(_ context.Context, e core.Expense) error {
	if e.ID == "" {
		return fmt.Errorf("save expense: missing id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == e.ID {
			s.expenses[i] = e
			return nil
		}
	}
	s.expenses = append(s.expenses, e)
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("expense %s: %w", id, records.ErrNotFound)
}

func readJSON(path string, dst any) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read seed file", "path", path, "error", err)
		}
		return
	}
	if err := json.Unmarshal(data, dst); err != nil {
		slog.Warn("Failed to parse seed file", "path", path, "error", err)
	}
}

// assignMissingIDs gives seeded records without an ID a synthetic one so
// they can be addressed by the write operations.
func assignMissingIDs(contracts []core.Contract, expenses []core.Expense) {
	for i := range contracts {
		if contracts[i].ID == "" {
			contracts[i].ID = fmt.Sprintf("mem:c%d", i+1)
		}
	}
	for i := range expenses {
		if expenses[i].ID == "" {
			expenses[i].ID = fmt.Sprintf("mem:e%d", i+1)
		}
	}
}
