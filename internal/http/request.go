package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"prospect/internal/core"
	"prospect/internal/services"

	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// decodeJSON reads exactly one JSON object into dst, rejecting unknown
// fields and oversized bodies.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %w", errBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: body must hold a single JSON object", errBadRequest)
	}
	return nil
}

// parseYear reads ?year=, defaulting to fallback when absent.
func parseYear(r *http.Request, fallback int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("year"))
	if v == "" {
		return fallback, nil
	}
	year, err := strconv.Atoi(v)
	if err != nil || year < 1900 || year > 3000 {
		return 0, fmt.Errorf("%w: year must be between 1900 and 3000", errBadRequest)
	}
	return year, nil
}

// parseTop reads ?top=. Zero means no limit.
func parseTop(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("top"))
	if v == "" {
		return 0, nil
	}
	top, err := strconv.Atoi(v)
	if err != nil || top < 0 {
		return 0, fmt.Errorf("%w: top must be a non-negative integer", errBadRequest)
	}
	return top, nil
}

// toMoney converts a currency amount to cents, rounding half away from
// zero. Amounts too large to store are rejected as invalid.
func toMoney(field string, d decimal.Decimal) (core.Money, error) {
	m, ok := core.MoneyFromDecimal(d)
	if !ok {
		return core.Money{}, fmt.Errorf("%w: %s out of range: %w", services.ErrValidation, field, core.ErrInvalidAmount)
	}
	return m, nil
}

// parseDate accepts an empty string as "no date".
func parseDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, nil
	}
	d, ok := core.ParseLooseDate(s)
	if !ok {
		return core.Date{}, fmt.Errorf("%w: invalid date %q", errBadRequest, s)
	}
	return d, nil
}

// sanitizeInput trims s and removes control characters other than tab,
// newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

func normalizeEnum(s string) string {
	return strings.ToLower(sanitizeInput(s))
}
