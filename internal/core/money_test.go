package core

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyFromFloat(t *testing.T) {
	cases := []struct {
		in  float64
		out int64
	}{
		{12.5, 1250},
		{0.005, 1}, // half-up
		{1200, 120000},
		{-3, 0},
		{0, 0},
	}
	for _, tc := range cases {
		if got := MoneyFromFloat(tc.in); got.Cents != tc.out {
			t.Fatalf("%v: expected %d, got %d", tc.in, tc.out, got.Cents)
		}
	}
}

func TestMoneyDecimal(t *testing.T) {
	if got := (Money{Cents: 12345}).Decimal().String(); got != "123.45" {
		t.Fatalf("expected 123.45, got %s", got)
	}
	if got := (Money{Cents: 100}).Add(Money{Cents: 50}).Sub(Money{Cents: 30}); got.Cents != 120 {
		t.Fatalf("expected 120, got %d", got.Cents)
	}
}

func TestParseAmountText(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"€ 1.200,50", 120050, true},
		{"1.200,50 €", 120050, true},
		{"1,200.50", 120050, true},
		{"1 200,50", 120050, true},
		{"1\u00a0200,50", 120050, true},
		{"1.234.567", 123456700, true},
		{"1,234,567", 123456700, true},
		{"12,5", 1250, true},
		{"12.5", 1250, true},
		{"€12", 1200, true},
		{"1.2.3,4,5", 0, false},
		{"-5", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmountText(tc.in)
		if tc.ok && (err != nil || got != tc.out) {
			t.Fatalf("%q: expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q: expected error, got %d", tc.in, got)
		}
	}
}

func TestMoneyFromDecimalBounds(t *testing.T) {
	m, ok := MoneyFromDecimal(decimal.RequireFromString("12.345"))
	if !ok || m.Cents != 1235 {
		t.Fatalf("expected 1235, got %d ok=%v", m.Cents, ok)
	}
	// would wrap to a small positive amount without the bound
	if m, ok := MoneyFromDecimal(decimal.RequireFromString("184467440737095517.16")); ok {
		t.Fatalf("expected overflow, got %d", m.Cents)
	}
	if _, ok := MoneyFromDecimal(decimal.RequireFromString("-184467440737095517.16")); ok {
		t.Fatalf("expected overflow for large negative amount")
	}
}

func TestMoneyCheckedAdd(t *testing.T) {
	if got, ok := (Money{Cents: 100}).CheckedAdd(Money{Cents: 50}); !ok || got.Cents != 150 {
		t.Fatalf("expected 150, got %d ok=%v", got.Cents, ok)
	}
	if _, ok := (Money{Cents: math.MaxInt64 - 10}).CheckedAdd(Money{Cents: 11}); ok {
		t.Fatalf("expected overflow")
	}
	if _, ok := (Money{Cents: math.MinInt64 + 10}).CheckedAdd(Money{Cents: -11}); ok {
		t.Fatalf("expected underflow")
	}
}
