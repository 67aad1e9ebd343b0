package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"prospect/internal/core"
	applog "prospect/internal/log"
	"prospect/internal/records"
	"prospect/internal/services"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// errorStatus maps domain errors to HTTP status codes and log error types.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, records.ErrNotFound):
		return http.StatusNotFound, applog.ErrorTypeNotFound
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, applog.ErrorTypeValidation
	case errors.Is(err, services.ErrValidation):
		return http.StatusUnprocessableEntity, applog.ErrorTypeValidation
	case errors.Is(err, core.ErrInvalidTransition), errors.Is(err, services.ErrContractCancelled):
		return http.StatusConflict, applog.ErrorTypeConflict
	default:
		return http.StatusInternalServerError, applog.ErrorTypeInternal
	}
}

// fail writes the error envelope for err. Server errors are logged with
// their cause and answered with a generic message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, errType := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.httpLog.LogError(r.Context(), "Request failed", err, errType, op,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")))
		writeError(w, status, http.StatusText(status))
		return
	}
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Request rejected",
		applog.FieldOperation, op,
		applog.FieldErrorType, errType,
		applog.FieldError, err)
	writeError(w, status, err.Error())
}
