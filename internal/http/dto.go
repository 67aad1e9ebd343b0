package http

import (
	"time"

	"prospect/internal/core"
	"prospect/internal/finance"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type createContractRequest struct {
	Client     string          `json:"client"`
	Amount     decimal.Decimal `json:"amount"`
	Recurrence string          `json:"recurrence"`
	Status     string          `json:"status"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	StartDate  string          `json:"start_date"`
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type createExpenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Recurrence  string          `json:"recurrence"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
}

type contractResponse struct {
	ID         string          `json:"id"`
	Client     string          `json:"client"`
	Amount     decimal.Decimal `json:"amount"`
	Recurrence string          `json:"recurrence"`
	Status     string          `json:"status"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	StartDate  string          `json:"start_date,omitempty"`
}

type expenseResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Recurrence  string          `json:"recurrence"`
	Category    string          `json:"category"`
	Date        string          `json:"date,omitempty"`
}

type bucketResponse struct {
	Month         int             `json:"month"`
	ContractValue decimal.Decimal `json:"contract_value"`
	Collected     decimal.Decimal `json:"collected"`
	Expense       decimal.Decimal `json:"expense"`
	Net           decimal.Decimal `json:"net"`
}

type seriesResponse struct {
	Year    int              `json:"year"`
	HasData bool             `json:"has_data"`
	Buckets []bucketResponse `json:"buckets"`
	Totals  bucketResponse   `json:"totals"`
}

type yearsResponse struct {
	Years []int `json:"years"`
}

type categoriesResponse struct {
	Categories []finance.CategoryShare `json:"categories"`
}

func formatDate(d core.Date) string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format(dateLayout)
}

func toContractResponse(c core.Contract) contractResponse {
	return contractResponse{
		ID:         c.ID,
		Client:     c.Client,
		Amount:     c.Amount.Decimal(),
		Recurrence: string(c.Recurrence),
		Status:     string(c.Status),
		PaidAmount: c.PaidAmount.Decimal(),
		StartDate:  formatDate(c.StartDate),
	}
}

func toContractResponses(in []core.Contract) []contractResponse {
	out := make([]contractResponse, 0, len(in))
	for _, c := range in {
		out = append(out, toContractResponse(c))
	}
	return out
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount.Decimal(),
		Recurrence:  string(e.Recurrence),
		Category:    e.Category,
		Date:        formatDate(e.Date),
	}
}

func toExpenseResponses(in []core.Expense) []expenseResponse {
	out := make([]expenseResponse, 0, len(in))
	for _, e := range in {
		out = append(out, toExpenseResponse(e))
	}
	return out
}

func toBucketResponse(month int, b finance.MonthlyBucket) bucketResponse {
	return bucketResponse{
		Month:         month,
		ContractValue: b.ContractValue.Decimal(),
		Collected:     b.Collected.Decimal(),
		Expense:       b.Expense.Decimal(),
		Net:           b.Net().Decimal(),
	}
}

func toSeriesResponse(year int, s finance.YearSeries) seriesResponse {
	resp := seriesResponse{
		Year:    year,
		HasData: s.HasData(),
		Buckets: make([]bucketResponse, 0, len(s)),
		Totals:  toBucketResponse(0, s.Totals()),
	}
	for i, b := range s {
		resp.Buckets = append(resp.Buckets, toBucketResponse(int(time.January)+i, b))
	}
	return resp
}
