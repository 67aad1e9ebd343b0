package google

import (
	"fmt"
	"math"
	"strings"
	"time"

	"prospect/internal/core"

	"github.com/shopspring/decimal"
)

// Accepted header spellings per field, matched case-insensitively.
var (
	contractColumns = map[string][]string{
		"id":         {"ID", "Ref", "Reference"},
		"client":     {"Client", "Customer"},
		"amount":     {"Amount", "Value"},
		"recurrence": {"Recurrence", "Billing"},
		"status":     {"Status"},
		"paid":       {"Paid", "Paid Amount"},
		"start":      {"Start", "Start Date"},
	}
	expenseColumns = map[string][]string{
		"id":          {"ID", "Ref", "Reference"},
		"description": {"Description"},
		"amount":      {"Amount"},
		"recurrence":  {"Recurrence"},
		"category":    {"Category"},
		"date":        {"Date"},
	}
)

// sheetsEpoch is day zero of spreadsheet serial dates.
var sheetsEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

type columns map[string]int

func locateColumns(header []string, spec map[string][]string) columns {
	cols := columns{}
	for field, names := range spec {
		cols[field] = -1
		for _, n := range names {
			if i := indexOf(header, n); i >= 0 {
				cols[field] = i
				break
			}
		}
	}
	return cols
}

func (c columns) cell(row []interface{}, field string) interface{} {
	i, ok := c[field]
	if !ok || i < 0 || i >= len(row) {
		return nil
	}
	return row[i]
}

func parseContracts(values [][]interface{}) ([]core.ContractRecord, error) {
	if len(values) == 0 {
		return nil, nil
	}
	cols := locateColumns(toStrings(values[0]), contractColumns)
	if cols["amount"] < 0 {
		return nil, fmt.Errorf("missing Amount column; got headers=%v", toStrings(values[0]))
	}

	var out []core.ContractRecord
	for _, row := range values[1:] {
		if isBlank(row) {
			continue
		}
		out = append(out, core.ContractRecord{
			ID:         cellString(cols.cell(row, "id")),
			Client:     cellString(cols.cell(row, "client")),
			Amount:     cellAmount(cols.cell(row, "amount")),
			Recurrence: cellOptional(cols.cell(row, "recurrence")),
			Status:     cellOptional(cols.cell(row, "status")),
			PaidAmount: cellAmount(cols.cell(row, "paid")),
			StartDate:  cellDate(cols.cell(row, "start")),
		})
	}
	return out, nil
}

func parseExpenses(values [][]interface{}) ([]core.ExpenseRecord, error) {
	if len(values) == 0 {
		return nil, nil
	}
	cols := locateColumns(toStrings(values[0]), expenseColumns)
	if cols["amount"] < 0 {
		return nil, fmt.Errorf("missing Amount column; got headers=%v", toStrings(values[0]))
	}

	var out []core.ExpenseRecord
	for _, row := range values[1:] {
		if isBlank(row) {
			continue
		}
		out = append(out, core.ExpenseRecord{
			ID:          cellString(cols.cell(row, "id")),
			Description: cellString(cols.cell(row, "description")),
			Amount:      cellAmount(cols.cell(row, "amount")),
			Recurrence:  cellOptional(cols.cell(row, "recurrence")),
			Category:    cellOptional(cols.cell(row, "category")),
			Date:        cellDate(cols.cell(row, "date")),
		})
	}
	return out, nil
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func cellOptional(v interface{}) *string {
	s := cellString(v)
	if s == "" {
		return nil
	}
	return &s
}

// cellAmount accepts unformatted numbers and text such as "€ 1.200,50".
// Negative, out of range or unreadable values stay unset.
func cellAmount(v interface{}) core.LooseAmount {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
			return core.LooseAmount{}
		}
		m, ok := core.MoneyFromDecimal(decimal.NewFromFloat(x))
		if !ok {
			return core.LooseAmount{}
		}
		return core.Amount(m)
	case string:
		cents, err := core.ParseAmountText(x)
		if err != nil {
			return core.LooseAmount{}
		}
		return core.Amount(core.Money{Cents: cents})
	}
	return core.LooseAmount{}
}

// cellDate returns a date string for the loose parser. Serial numbers are
// converted; text is passed through.
func cellDate(v interface{}) *string {
	if f, ok := v.(float64); ok {
		if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		s := sheetsEpoch.AddDate(0, 0, int(f)).Format("2006-01-02")
		return &s
	}
	return cellOptional(v)
}

func isBlank(row []interface{}) bool {
	for _, v := range row {
		if cellString(v) != "" {
			return false
		}
	}
	return true
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}
