package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"prospect/internal/core"
	"prospect/internal/records"
)

func TestMemoryStoreSaveAndList(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil)

	c := core.Contract{ID: "c1", Client: "Acme", Amount: core.Money{Cents: 100}, Recurrence: core.Monthly, Status: core.StatusActive}
	if err := s.SaveContract(ctx, c); err != nil {
		t.Fatalf("save contract: %v", err)
	}
	c.PaidAmount = core.Money{Cents: 50}
	if err := s.SaveContract(ctx, c); err != nil {
		t.Fatalf("replace contract: %v", err)
	}
	contracts, _ := s.ListContracts(ctx)
	if len(contracts) != 1 || contracts[0].PaidAmount.Cents != 50 {
		t.Fatalf("unexpected contracts: %+v", contracts)
	}

	got, err := s.GetContract(ctx, "c1")
	if err != nil || got.Client != "Acme" {
		t.Fatalf("get contract: %+v err=%v", got, err)
	}
	if _, err := s.GetContract(ctx, "nope"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	for _, id := range []string{"e1", "e2"} {
		if err := s.SaveExpense(ctx, core.Expense{ID: id, Amount: core.Money{Cents: 10}}); err != nil {
			t.Fatalf("save expense: %v", err)
		}
	}
	if err := s.DeleteExpense(ctx, "e1"); err != nil {
		t.Fatalf("delete expense: %v", err)
	}
	if err := s.DeleteExpense(ctx, "e1"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	expenses, _ := s.ListExpenses(ctx)
	if len(expenses) != 1 || expenses[0].ID != "e2" {
		t.Fatalf("unexpected expenses: %+v", expenses)
	}
}

func TestMemoryStoreListReturnsCopy(t *testing.T) {
	s := New([]core.Contract{{ID: "c1", Client: "A"}}, nil)
	list, _ := s.ListContracts(context.Background())
	list[0].Client = "mutated"
	again, _ := s.ListContracts(context.Background())
	if again[0].Client != "A" {
		t.Fatalf("store was mutated through returned slice")
	}
}

func TestNewFromFilesSeedsAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	// No files -> empty store
	s := NewFromFiles(dir)
	contracts, _ := s.ListContracts(context.Background())
	if len(contracts) != 0 {
		t.Fatalf("expected empty store when files missing")
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("contracts.json", `[
		{"client":"Acme","amount":500,"recurrence":"monthly","paid_amount":500,"start_date":"2024-03-01"},
		{"client":"Globex","amount":"2000","status":"bogus"}
	]`)
	mustWrite("expenses.json", `[{"description":"IDE","amount":1200,"recurrence":"yearly","category":"software","date":"2024-01-01"}]`)

	s = NewFromFiles(dir)
	contracts, _ = s.ListContracts(context.Background())
	if len(contracts) != 2 {
		t.Fatalf("expected 2 contracts, got %d", len(contracts))
	}
	if contracts[0].ID != "mem:c1" || contracts[0].Recurrence != core.Monthly {
		t.Fatalf("unexpected first contract: %+v", contracts[0])
	}
	if contracts[1].Status != core.StatusActive || contracts[1].Amount.Cents != 200000 {
		t.Fatalf("unexpected second contract: %+v", contracts[1])
	}
	expenses, _ := s.ListExpenses(context.Background())
	if len(expenses) != 1 || expenses[0].Category != "software" || expenses[0].ID != "mem:e1" {
		t.Fatalf("unexpected expenses: %+v", expenses)
	}
}

func TestMemoryStoreUpdateContract(t *testing.T) {
	ctx := context.Background()
	s := New([]core.Contract{{ID: "c1", Client: "Acme", Amount: core.Money{Cents: 1000}}}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpdateContract(ctx, "c1", func(c *core.Contract) error {
				c.PaidAmount = c.PaidAmount.Add(core.Money{Cents: 10})
				return nil
			})
			if err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()
	got, _ := s.GetContract(ctx, "c1")
	if got.PaidAmount.Cents != 1000 {
		t.Fatalf("paid = %d, want 1000", got.PaidAmount.Cents)
	}

	boom := errors.New("boom")
	if _, err := s.UpdateContract(ctx, "c1", func(c *core.Contract) error {
		c.Client = "changed"
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if got, _ := s.GetContract(ctx, "c1"); got.Client != "Acme" {
		t.Fatalf("failed update was written: %+v", got)
	}
	if _, err := s.UpdateContract(ctx, "nope", func(*core.Contract) error { return nil }); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.DeleteContract(ctx, "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteContract(ctx, "c1"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
