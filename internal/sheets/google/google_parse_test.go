package google

import (
	"testing"

	"prospect/internal/core"
)

func TestParseContracts(t *testing.T) {
	values := [][]interface{}{
		{"Client", "Amount", "Recurrence", "Status", "Paid", "Start"},
		{"Acme", 1500.0, "Monthly", "active", 1500.0, "2024-03-01"},
		{"Globex", "€ 2.000,50", "", "", "", ""},
		{},
		{"", "", "", "", "", ""},
		{"Initech", -10.0, "fortnightly", "paused", "abc", 45352.0},
	}

	recs, err := parseContracts(values)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}

	got := core.NormalizeContracts(recs)
	want := []core.Contract{
		{Client: "Acme", Amount: core.Money{Cents: 150000}, Recurrence: core.Monthly, Status: core.StatusActive, PaidAmount: core.Money{Cents: 150000}, StartDate: core.NewDate(2024, 3, 1)},
		{Client: "Globex", Amount: core.Money{Cents: 200050}, Recurrence: core.OneTime, Status: core.StatusActive},
		{Client: "Initech", Recurrence: core.OneTime, Status: core.StatusActive, StartDate: core.NewDate(2024, 3, 1)},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d:\n got  %+v\n want %+v", i, got[i], want[i])
		}
	}
}

func TestParseContracts_HeaderAliasesAndOrder(t *testing.T) {
	values := [][]interface{}{
		{"start date", "customer", "VALUE"},
		{"2023-11", "Acme", "99.90"},
	}
	recs, err := parseContracts(values)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	c := recs[0].Normalize()
	if c.Client != "Acme" || c.Amount.Cents != 9990 || c.StartDate != core.NewDate(2023, 11, 1) {
		t.Errorf("unexpected contract %+v", c)
	}
}

func TestParseExpenses(t *testing.T) {
	values := [][]interface{}{
		{"Date", "Description", "Amount", "Category", "Recurrence"},
		{"2024-01-15", "IDE license", 1200.0, "software", "yearly"},
		{"15/02/2024", "Laptop", "1999,99", "hardware"},
	}

	recs, err := parseExpenses(values)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	got := core.NormalizeExpenses(recs)
	if len(got) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(got))
	}
	if got[0].Recurrence != core.Yearly || got[0].Amount.Cents != 120000 || got[0].Category != "software" {
		t.Errorf("unexpected first expense %+v", got[0])
	}
	if got[1].Recurrence != core.OneTime || got[1].Amount.Cents != 199999 || got[1].Date != core.NewDate(2024, 2, 15) {
		t.Errorf("unexpected second expense %+v", got[1])
	}
}

func TestParse_IDColumn(t *testing.T) {
	contracts, err := parseContracts([][]interface{}{
		{"Ref", "Client", "Amount"},
		{" C-7 ", "Acme", 10.0},
		{"", "Globex", 20.0},
	})
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if contracts[0].ID != "C-7" || contracts[1].ID != "" {
		t.Errorf("unexpected contract ids %q %q", contracts[0].ID, contracts[1].ID)
	}

	expenses, err := parseExpenses([][]interface{}{
		{"ID", "Description", "Amount"},
		{"E-1", "IDE", 5.0},
	})
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if expenses[0].ID != "E-1" {
		t.Errorf("unexpected expense id %q", expenses[0].ID)
	}
}

func TestParse_MissingAmountColumn(t *testing.T) {
	if _, err := parseContracts([][]interface{}{{"Client", "Status"}}); err == nil {
		t.Error("expected error for contracts without Amount column")
	}
	if _, err := parseExpenses([][]interface{}{{"Description"}}); err == nil {
		t.Error("expected error for expenses without Amount column")
	}
}

func TestParse_Empty(t *testing.T) {
	recs, err := parseExpenses(nil)
	if err != nil || len(recs) != 0 {
		t.Errorf("expected no records, got %v err=%v", recs, err)
	}
}

func TestCellAmount(t *testing.T) {
	tests := []struct {
		name  string
		in    interface{}
		cents int64
		valid bool
	}{
		{"float", 12.345, 1235, true},
		{"zero float", 0.0, 0, true},
		{"negative float", -1.0, 0, false},
		{"comma string", "12,50", 1250, true},
		{"euro prefix", "€12.50", 1250, true},
		{"grouped euro", "€ 1.200,50", 120050, true},
		{"grouped suffix", "1.200,50 €", 120050, true},
		{"grouped english", "1,200.50", 120050, true},
		{"space grouped", "1 200,50", 120050, true},
		{"repeated grouping", "1.234.567", 123456700, true},
		{"negative string", "-5", 0, false},
		{"huge float", 1e30, 0, false},
		{"garbage", "twelve", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cellAmount(tt.in)
			if got.Valid != tt.valid || got.Money.Cents != tt.cents {
				t.Errorf("cellAmount(%v) = %+v, want cents=%d valid=%v", tt.in, got, tt.cents, tt.valid)
			}
		})
	}
}

func TestCellDateSerial(t *testing.T) {
	// 45292 is 2024-01-01 in spreadsheet serial days
	s := cellDate(45292.0)
	if s == nil || *s != "2024-01-01" {
		t.Fatalf("unexpected date %v", s)
	}
	if cellDate(0.0) != nil || cellDate("") != nil || cellDate(nil) != nil {
		t.Error("empty cells should yield nil")
	}
}
