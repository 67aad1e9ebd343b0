package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"prospect/internal/core"
	"prospect/internal/records/memory"
	"prospect/internal/services"
)

var fixedNow = func() time.Time { return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC) }

func newTestServer(t *testing.T, opts Options) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New(nil, nil)
	fin := services.NewFinanceService(store, 16, time.Minute)
	recs := services.NewRecordService(store, fin, nil)
	if opts.Now == nil {
		opts.Now = fixedNow
	}
	s := NewServer(opts, recs, fin)
	t.Cleanup(func() { s.rateLimiter.stop() })
	return s, store
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	s.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	if rr := do(t, s, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rr.Code)
	}
	if rr := do(t, s, http.MethodGet, "/readyz", ""); rr.Code != http.StatusOK {
		t.Fatalf("readyz = %d", rr.Code)
	}

	down, _ := newTestServer(t, Options{Ready: func(context.Context) error { return errors.New("db gone") }})
	if rr := do(t, down, http.MethodGet, "/readyz", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with failing check = %d", rr.Code)
	}
}

func TestMiddlewareHeaders(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	rr := do(t, s, http.MethodGet, "/healthz", "")
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("missing security headers: %v", rr.Header())
	}
	if rr.Header().Get(requestIDHeader) == "" {
		t.Errorf("missing request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want caller's", got)
	}
}

func TestContractLifecycle(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	rr := do(t, s, http.MethodPost, "/api/contracts",
		`{"client":"Acme","amount":"1000","recurrence":"Monthly","start_date":"2024-03-01"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rr.Code, rr.Body)
	}
	created := decode[contractResponse](t, rr)
	if created.ID == "" || created.Status != "active" || created.Recurrence != "monthly" {
		t.Fatalf("unexpected contract: %+v", created)
	}
	if !created.Amount.Equal(core.Money{Cents: 100000}.Decimal()) {
		t.Fatalf("amount = %s", created.Amount)
	}

	rr = do(t, s, http.MethodPost, "/api/contracts/"+created.ID+"/payments", `{"amount":400.5}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("payment = %d %s", rr.Code, rr.Body)
	}
	if paid := decode[contractResponse](t, rr).PaidAmount; paid.String() != "400.5" {
		t.Fatalf("paid = %s", paid)
	}

	rr = do(t, s, http.MethodPost, "/api/contracts/"+created.ID+"/status", `{"status":"cancelled"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d %s", rr.Code, rr.Body)
	}

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"pay cancelled", "/api/contracts/" + created.ID + "/payments", `{"amount":1}`, http.StatusConflict},
		{"resurrect", "/api/contracts/" + created.ID + "/status", `{"status":"active"}`, http.StatusConflict},
		{"unknown status", "/api/contracts/" + created.ID + "/status", `{"status":"paused"}`, http.StatusUnprocessableEntity},
		{"missing contract", "/api/contracts/nope/payments", `{"amount":1}`, http.StatusNotFound},
		{"zero payment", "/api/contracts/nope/payments", `{"amount":0}`, http.StatusUnprocessableEntity},
		{"payment beyond int64 cents", "/api/contracts/" + created.ID + "/payments", `{"amount":184467440737095517.16}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := do(t, s, http.MethodPost, tt.path, tt.body); rr.Code != tt.want {
				t.Errorf("got %d, want %d (%s)", rr.Code, tt.want, rr.Body)
			}
		})
	}

	rr = do(t, s, http.MethodGet, "/api/contracts", "")
	if list := decode[[]contractResponse](t, rr); len(list) != 1 || list[0].Status != "cancelled" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestCreateValidation(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"malformed json", "/api/contracts", `{"client":`, http.StatusBadRequest},
		{"unknown field", "/api/contracts", `{"client":"A","amount":1,"bogus":true}`, http.StatusBadRequest},
		{"trailing data", "/api/contracts", `{"client":"A","amount":1}{}`, http.StatusBadRequest},
		{"bad date", "/api/contracts", `{"client":"A","amount":1,"start_date":"someday"}`, http.StatusBadRequest},
		{"empty client", "/api/contracts", `{"client":"  ","amount":1}`, http.StatusUnprocessableEntity},
		{"negative amount", "/api/contracts", `{"client":"A","amount":-5}`, http.StatusUnprocessableEntity},
		{"amount beyond int64 cents", "/api/contracts", `{"client":"A","amount":184467440737095517.16}`, http.StatusUnprocessableEntity},
		{"paid beyond int64 cents", "/api/contracts", `{"client":"A","amount":1,"paid_amount":"1e30"}`, http.StatusUnprocessableEntity},
		{"expense amount beyond int64 cents", "/api/expenses", `{"description":"x","amount":184467440737095517.16,"category":"c","date":"2024-01-01"}`, http.StatusUnprocessableEntity},
		{"bad recurrence", "/api/contracts", `{"client":"A","amount":1,"recurrence":"weekly"}`, http.StatusUnprocessableEntity},
		{"expense without date", "/api/expenses", `{"description":"IDE","amount":10}`, http.StatusUnprocessableEntity},
		{"expense without description", "/api/expenses", `{"amount":10,"date":"2024-01-01"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, s, http.MethodPost, tt.path, tt.body)
			if rr.Code != tt.want {
				t.Fatalf("got %d, want %d (%s)", rr.Code, tt.want, rr.Body)
			}
			if e := decode[errorResponse](t, rr); e.Error == "" {
				t.Errorf("missing error message")
			}
		})
	}
}

func TestExpensesAndDerivedViews(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	for _, body := range []string{
		`{"description":"IDE","amount":"1200","recurrence":"yearly","category":"software","date":"2024-01-10"}`,
		`{"description":"Hosting","amount":50,"recurrence":"monthly","category":"infra","date":"2024-04-01"}`,
		`{"description":"Laptop","amount":900,"category":"hardware","date":"2024-06-20"}`,
	} {
		if rr := do(t, s, http.MethodPost, "/api/expenses", body); rr.Code != http.StatusCreated {
			t.Fatalf("create expense = %d %s", rr.Code, rr.Body)
		}
	}

	rr := do(t, s, http.MethodGet, "/api/series?year=2024", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("series = %d", rr.Code)
	}
	series := decode[seriesResponse](t, rr)
	if series.Year != 2024 || !series.HasData || len(series.Buckets) != 12 {
		t.Fatalf("unexpected series: %+v", series)
	}
	if jan := series.Buckets[0]; jan.Month != 1 || jan.Expense.String() != "1200" {
		t.Errorf("january = %+v", jan)
	}
	if jun := series.Buckets[5]; jun.Expense.String() != "950" || jun.Net.String() != "-950" {
		t.Errorf("june = %+v", jun)
	}

	// default year comes from the server clock
	if def := decode[seriesResponse](t, do(t, s, http.MethodGet, "/api/series", "")); def.Year != 2024 {
		t.Errorf("default year = %d", def.Year)
	}
	if rr := do(t, s, http.MethodGet, "/api/series?year=abc", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("bad year = %d", rr.Code)
	}
	if empty := decode[seriesResponse](t, do(t, s, http.MethodGet, "/api/series?year=2023", "")); empty.HasData {
		t.Errorf("2023 should have no data")
	}

	cats := decode[categoriesResponse](t, do(t, s, http.MethodGet, "/api/categories?top=1", ""))
	if len(cats.Categories) != 1 || cats.Categories[0].Category != "software" {
		t.Errorf("top categories = %+v", cats.Categories)
	}
	if rr := do(t, s, http.MethodGet, "/api/categories?top=-1", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("negative top = %d", rr.Code)
	}

	years := decode[yearsResponse](t, do(t, s, http.MethodGet, "/api/years", ""))
	if len(years.Years) != 1 || years.Years[0] != 2024 {
		t.Errorf("years = %v", years.Years)
	}

	rr = do(t, s, http.MethodGet, "/api/summary", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary = %d", rr.Code)
	}
	var summary map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &summary); err != nil {
		t.Fatalf("summary json: %v", err)
	}
	if summary["monthlyExpenses"] != "150" {
		t.Errorf("monthlyExpenses = %v", summary["monthlyExpenses"])
	}
}

func TestDeleteExpense(t *testing.T) {
	s, store := newTestServer(t, Options{})
	if err := store.SaveExpense(context.Background(), core.Expense{ID: "e1", Description: "x", Amount: core.Money{Cents: 100}}); err != nil {
		t.Fatal(err)
	}

	if rr := do(t, s, http.MethodDelete, "/api/expenses/e1", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", rr.Code)
	}
	if rr := do(t, s, http.MethodDelete, "/api/expenses/e1", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete = %d", rr.Code)
	}
	if list := decode[[]expenseResponse](t, do(t, s, http.MethodGet, "/api/expenses", "")); len(list) != 0 {
		t.Fatalf("expenses = %+v", list)
	}
}

func TestWriteRateLimit(t *testing.T) {
	s, _ := newTestServer(t, Options{WriteLimit: 2, WriteWindow: time.Minute})

	body := `{"client":"A","amount":1}`
	for i := 0; i < 2; i++ {
		if rr := do(t, s, http.MethodPost, "/api/contracts", body); rr.Code != http.StatusCreated {
			t.Fatalf("request %d = %d", i, rr.Code)
		}
	}
	rr := do(t, s, http.MethodPost, "/api/contracts", body)
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") != "60" {
		t.Fatalf("third write = %d retry=%q", rr.Code, rr.Header().Get("Retry-After"))
	}
	// reads are never limited
	if rr := do(t, s, http.MethodGet, "/api/contracts", ""); rr.Code != http.StatusOK {
		t.Fatalf("read after limit = %d", rr.Code)
	}
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(1, time.Minute)
	defer rl.stop()
	rl.now = func() time.Time { return now }
	metrics := &securityMetrics{}

	if !rl.allow("1.2.3.4", metrics) {
		t.Fatal("first request denied")
	}
	if rl.allow("1.2.3.4", metrics) {
		t.Fatal("second request allowed")
	}
	if !rl.allow("5.6.7.8", metrics) {
		t.Fatal("other client denied")
	}
	now = now.Add(time.Minute)
	if !rl.allow("1.2.3.4", metrics) {
		t.Fatal("request in new window denied")
	}
	if metrics.rateLimitHits != 1 {
		t.Fatalf("rateLimitHits = %d", metrics.rateLimitHits)
	}

	now = now.Add(11 * time.Minute)
	rl.cleanupStaleEntries()
	if len(rl.clients) != 0 {
		t.Fatalf("stale clients kept: %d", len(rl.clients))
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"direct", "203.0.113.9:1234", "", "203.0.113.9"},
		{"untrusted forwarder ignored", "203.0.113.9:1234", "1.1.1.1", "203.0.113.9"},
		{"trusted proxy", "10.0.0.2:80", "198.51.100.7, 10.0.0.2", "198.51.100.7"},
		{"garbage header", "10.0.0.2:80", "not-an-ip", "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := extractClientIP(r); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsSuspicious(t *testing.T) {
	m := &securityMetrics{}
	for _, path := range []string{"/.env", "/api/../etc/passwd", "/wp-admin/"} {
		if !isSuspicious(httptest.NewRequest(http.MethodGet, path, nil), m) {
			t.Errorf("%s not flagged", path)
		}
	}
	if isSuspicious(httptest.NewRequest(http.MethodGet, "/api/summary", nil), m) {
		t.Errorf("normal path flagged")
	}
	if m.suspiciousRequests != 3 {
		t.Errorf("suspiciousRequests = %d", m.suspiciousRequests)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  a\x00b\tc\n "); got != "ab\tc" {
		t.Errorf("got %q", got)
	}
}
