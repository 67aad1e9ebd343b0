package http

import (
	"fmt"
	"net/http"

	"prospect/internal/core"
	applog "prospect/internal/log"
	"prospect/internal/services"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			writeError(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.finance.Summary(r.Context())
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(r, s.now().Year())
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	series, err := s.finance.Series(r.Context(), year)
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toSeriesResponse(year, series))
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	years, err := s.finance.Years(r.Context(), s.now().Year())
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, yearsResponse{Years: years})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	top, err := parseTop(r)
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	shares, err := s.finance.Categories(r.Context(), top)
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: shares})
}

func (s *Server) handleListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := s.records.ListContracts(r.Context())
	if err != nil {
		s.fail(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, toContractResponses(contracts))
}

func (s *Server) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	var req createContractRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, applog.OpCreate, err)
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		s.fail(w, r, applog.OpCreate, err)
		return
	}
	amount, err := toMoney("amount", req.Amount)
	if err != nil {
		s.fail(w, r, applog.OpCreate, err)
		return
	}
	paid, err := toMoney("paid_amount", req.PaidAmount)
	if err != nil {
		s.fail(w, r, applog.OpCreate, err)
		return
	}
	c := core.Contract{
		Client:     sanitizeInput(req.Client),
		Amount:     amount,
		Recurrence: core.Recurrence(normalizeEnum(req.Recurrence)),
		Status:     core.ContractStatus(normalizeEnum(req.Status)),
		PaidAmount: paid,
		StartDate:  start,
	}
	created, err := s.records.CreateContract(r.Context(), c)
	if err != nil {
		s.fail(w, r, applog.OpCreate, err)
		return
	}
	w.Header().Set("Location", "/api/contracts/"+created.ID)
	writeJSON(w, http.StatusCreated, toContractResponse(created))
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, applog.OpPayment, err)
		return
	}
	amount, err := toMoney("amount", req.Amount)
	if err != nil {
		s.fail(w, r, applog.OpPayment, err)
		return
	}
	updated, err := s.records.RecordPayment(r.Context(), r.PathValue("id"), amount)
	if err != nil {
		s.fail(w, r, applog.OpPayment, err)
		return
	}
	writeJSON(w, http.StatusOK, toContractResponse(updated))
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, applog.OpUpdate, err)
		return
	}
	next, ok := core.ParseContractStatus(req.Status)
	if !ok {
		s.fail(w, r, applog.OpUpdate, fmt.Errorf("%w: %w", services.ErrValidation, core.ErrInvalidStatus))
		return
	}
	updated, err := s.records.SetContractStatus(r.Context(), r.PathValue("id"), next)
	if err != nil {
		s.fail(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, toContractResponse(updated))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.records.ListExpenses(r.Context())
	if err != nil {
		s.fail(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponses(expenses))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, applog.OpCreate, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		s.fail(w, r, applog.OpCreate, err)
		return
	}
	amount, err := toMoney("amount", req.Amount)
	if err != nil {
		s.fail(w, r, applog.OpCreate, err)
		return
	}
	e := core.Expense{
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Recurrence:  core.Recurrence(normalizeEnum(req.Recurrence)),
		Category:    sanitizeInput(req.Category),
		Date:        date,
	}
	created, err := s.records.CreateExpense(r.Context(), e)
	if err != nil {
		s.fail(w, r, applog.OpCreate, err)
		return
	}
	w.Header().Set("Location", "/api/expenses/"+created.ID)
	writeJSON(w, http.StatusCreated, toExpenseResponse(created))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.records.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, applog.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
