package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"prospect/internal/amqp"
	"prospect/internal/core"
	"prospect/internal/records"

	"github.com/google/uuid"
)

var (
	// ErrValidation wraps every input error a write operation rejects.
	ErrValidation = errors.New("validation failed")
	// ErrContractCancelled is returned when paying a cancelled contract.
	ErrContractCancelled = errors.New("contract is cancelled")
)

// importNamespace seeds deterministic IDs for imported rows so that
// re-running an import overwrites instead of duplicating.
var importNamespace = uuid.MustParse("5b0e3f0a-6c57-4a53-9b7e-2f1f4c8e7d21")

// ChangePublisher announces record writes to other instances.
type ChangePublisher interface {
	PublishRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error
}

// Invalidator drops derived state after a write.
type Invalidator interface {
	Invalidate()
}

// RecordService validates and persists contracts and expenses.
type RecordService struct {
	store     records.Store
	derived   Invalidator
	publisher ChangePublisher
}

// NewRecordService wires a store with the caches to invalidate after
// writes. publisher may be nil when no broker is configured.
func NewRecordService(store records.Store, derived Invalidator, publisher ChangePublisher) *RecordService {
	return &RecordService{store: store, derived: derived, publisher: publisher}
}

func (s *RecordService) ListContracts(ctx context.Context) ([]core.Contract, error) {
	return s.store.ListContracts(ctx)
}

func (s *RecordService) GetContract(ctx context.Context, id string) (core.Contract, error) {
	return s.store.GetContract(ctx, id)
}

func (s *RecordService) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx)
}

// CreateContract assigns an ID and defaults, validates and stores c.
func (s *RecordService) CreateContract(ctx context.Context, c core.Contract) (core.Contract, error) {
	c.ID = uuid.NewString()
	if c.Recurrence == "" {
		c.Recurrence = core.OneTime
	}
	if c.Status == "" {
		c.Status = core.StatusActive
	}
	if err := c.Validate(); err != nil {
		return core.Contract{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.store.SaveContract(ctx, c); err != nil {
		return core.Contract{}, fmt.Errorf("save contract: %w", err)
	}

	slog.InfoContext(ctx, "Contract created",
		"contract_id", c.ID,
		"client", c.Client,
		"amount_cents", c.Amount.Cents,
		"recurrence", c.Recurrence)
	s.afterWrite(ctx, amqp.KindContract, c.ID, amqp.OpUpsert)
	return c, nil
}

// RecordPayment adds amount to the paid total of a contract. The check
// and the update happen atomically in the store, so concurrent payments
// all count and a cancelled contract never takes one.
func (s *RecordService) RecordPayment(ctx context.Context, id string, amount core.Money) (core.Contract, error) {
	if err := amount.Validate(); err != nil {
		return core.Contract{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	c, err := s.store.UpdateContract(ctx, id, func(c *core.Contract) error {
		if c.Status == core.StatusCancelled {
			return fmt.Errorf("record payment on %s: %w", id, ErrContractCancelled)
		}
		paid, ok := c.PaidAmount.CheckedAdd(amount)
		if !ok {
			return fmt.Errorf("%w: paid total of %s would overflow: %w", ErrValidation, id, core.ErrInvalidAmount)
		}
		c.PaidAmount = paid
		return nil
	})
	if err != nil {
		return core.Contract{}, err
	}

	slog.InfoContext(ctx, "Payment recorded",
		"contract_id", id,
		"amount_cents", amount.Cents,
		"paid_cents", c.PaidAmount.Cents)
	s.afterWrite(ctx, amqp.KindContract, id, amqp.OpUpsert)
	return c, nil
}

// SetContractStatus moves a contract along its lifecycle.
func (s *RecordService) SetContractStatus(ctx context.Context, id string, next core.ContractStatus) (core.Contract, error) {
	if !next.IsValid() {
		return core.Contract{}, fmt.Errorf("%w: %w", ErrValidation, core.ErrInvalidStatus)
	}
	var prev core.ContractStatus
	c, err := s.store.UpdateContract(ctx, id, func(c *core.Contract) error {
		prev = c.Status
		if !c.Status.CanTransitionTo(next) {
			return fmt.Errorf("%s -> %s: %w", c.Status, next, core.ErrInvalidTransition)
		}
		c.Status = next
		return nil
	})
	if err != nil {
		return core.Contract{}, err
	}
	if prev == next {
		return c, nil
	}

	slog.InfoContext(ctx, "Contract status changed",
		"contract_id", id,
		"from", prev,
		"to", next)
	s.afterWrite(ctx, amqp.KindContract, id, amqp.OpUpsert)
	return c, nil
}

// CreateExpense assigns an ID, validates and stores e.
func (s *RecordService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = uuid.NewString()
	if e.Recurrence == "" {
		e.Recurrence = core.OneTime
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.store.SaveExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense created",
		"expense_id", e.ID,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"category", e.Category)
	s.afterWrite(ctx, amqp.KindExpense, e.ID, amqp.OpUpsert)
	return e, nil
}

func (s *RecordService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense deleted", "expense_id", id)
	s.afterWrite(ctx, amqp.KindExpense, id, amqp.OpDelete)
	return nil
}

// ImportResult counts the records written and removed by Import.
type ImportResult struct {
	Contracts        int
	Expenses         int
	RemovedContracts int
	RemovedExpenses  int
}

// Import makes the records of source match contracts and expenses.
// Records are stored as they come, without validation, since the engine
// tolerates malformed values. A record that carries its own ID keeps a
// stable identity across imports; others are keyed by position. Records
// from an earlier import of the same source that are no longer present
// are removed.
func (s *RecordService) Import(ctx context.Context, source string, contracts []core.Contract, expenses []core.Expense) (ImportResult, error) {
	var res ImportResult
	prefix := importPrefix(source)

	keep := make(map[string]bool, len(contracts)+len(expenses))
	for i, c := range contracts {
		c.ID = importID(source, "contract", c.ID, i)
		if err := s.store.SaveContract(ctx, c); err != nil {
			return res, fmt.Errorf("import contract %d: %w", i+1, err)
		}
		keep[c.ID] = true
		res.Contracts++
	}
	for i, e := range expenses {
		e.ID = importID(source, "expense", e.ID, i)
		if err := s.store.SaveExpense(ctx, e); err != nil {
			return res, fmt.Errorf("import expense %d: %w", i+1, err)
		}
		keep[e.ID] = true
		res.Expenses++
	}

	stored, err := s.store.ListContracts(ctx)
	if err != nil {
		return res, fmt.Errorf("list contracts for pruning: %w", err)
	}
	for _, c := range stored {
		if strings.HasPrefix(c.ID, prefix) && !keep[c.ID] {
			if err := s.store.DeleteContract(ctx, c.ID); err != nil && !errors.Is(err, records.ErrNotFound) {
				return res, fmt.Errorf("remove stale contract %s: %w", c.ID, err)
			}
			res.RemovedContracts++
		}
	}
	storedExpenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return res, fmt.Errorf("list expenses for pruning: %w", err)
	}
	for _, e := range storedExpenses {
		if strings.HasPrefix(e.ID, prefix) && !keep[e.ID] {
			if err := s.store.DeleteExpense(ctx, e.ID); err != nil && !errors.Is(err, records.ErrNotFound) {
				return res, fmt.Errorf("remove stale expense %s: %w", e.ID, err)
			}
			res.RemovedExpenses++
		}
	}

	if res.Contracts+res.RemovedContracts > 0 {
		s.afterWrite(ctx, amqp.KindContract, "import:"+source, amqp.OpUpsert)
	}
	if res.Expenses+res.RemovedExpenses > 0 {
		s.afterWrite(ctx, amqp.KindExpense, "import:"+source, amqp.OpUpsert)
	}
	slog.InfoContext(ctx, "Records imported",
		"source", source,
		"contracts", res.Contracts,
		"expenses", res.Expenses,
		"removed_contracts", res.RemovedContracts,
		"removed_expenses", res.RemovedExpenses)
	return res, nil
}

// importPrefix tags every ID imported from source so a later import can
// find what it wrote before.
func importPrefix(source string) string {
	return "import-" + uuid.NewSHA1(importNamespace, []byte(source)).String()[:8] + "-"
}

// importID derives a record ID from its source key, or from its position
// when the source row carries none.
func importID(source, kind, key string, index int) string {
	if key = strings.TrimSpace(key); key != "" {
		key = "key:" + key
	} else {
		key = "row:" + strconv.Itoa(index)
	}
	return importPrefix(source) + uuid.NewSHA1(importNamespace, []byte(source+"/"+kind+"/"+key)).String()
}

// afterWrite invalidates local caches and notifies other instances. A
// failed publish is logged, never returned: the write already succeeded.
func (s *RecordService) afterWrite(ctx context.Context, kind, id, op string) {
	if s.derived != nil {
		s.derived.Invalidate()
	}
	if s.publisher == nil {
		slog.DebugContext(ctx, "No change publisher configured, skipping notification", "record_id", id)
		return
	}
	if err := s.publisher.PublishRecordChanged(ctx, amqp.NewRecordChangedMessage(kind, id, op)); err != nil {
		slog.WarnContext(ctx, "Failed to publish record change",
			"kind", kind,
			"record_id", id,
			"error", err)
	}
}
