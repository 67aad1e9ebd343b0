// Package http exposes the finance engine and record writes as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"prospect/internal/core"
	"prospect/internal/finance"
	applog "prospect/internal/log"
)

// RecordAPI is the write side used by the handlers.
type RecordAPI interface {
	ListContracts(ctx context.Context) ([]core.Contract, error)
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	CreateContract(ctx context.Context, c core.Contract) (core.Contract, error)
	RecordPayment(ctx context.Context, id string, amount core.Money) (core.Contract, error)
	SetContractStatus(ctx context.Context, id string, next core.ContractStatus) (core.Contract, error)
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
}

// FinanceAPI serves derived figures.
type FinanceAPI interface {
	Summary(ctx context.Context) (finance.Summary, error)
	Series(ctx context.Context, year int) (finance.YearSeries, error)
	Years(ctx context.Context, through int) ([]int, error)
	Categories(ctx context.Context, top int) ([]finance.CategoryShare, error)
}

// Options configures a Server. Zero values fall back to defaults.
type Options struct {
	Addr string
	// WriteLimit is the number of write requests a client may issue per
	// WriteWindow.
	WriteLimit  int
	WriteWindow time.Duration
	Logger      *applog.Logger
	// Ready reports backend health for /readyz. Nil means always ready.
	Ready func(ctx context.Context) error
	// Now is the clock used for default years. Nil means time.Now.
	Now func() time.Time
}

type Server struct {
	http.Server
	records     RecordAPI
	finance     FinanceAPI
	ready       func(ctx context.Context) error
	now         func() time.Time
	logger      *applog.Logger
	httpLog     *applog.StructuredLogger
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, records RecordAPI, fin FinanceAPI) *Server {
	if opts.WriteLimit <= 0 {
		opts.WriteLimit = 60
	}
	if opts.WriteWindow <= 0 {
		opts.WriteWindow = time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = applog.FromContext(context.Background())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		records:     records,
		finance:     fin,
		ready:       opts.Ready,
		now:         opts.Now,
		logger:      logger,
		httpLog:     applog.NewStructuredLogger(logger),
		rateLimiter: newRateLimiter(opts.WriteLimit, opts.WriteWindow),
		metrics:     &securityMetrics{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/series", s.handleSeries)
	mux.HandleFunc("GET /api/years", s.handleYears)
	mux.HandleFunc("GET /api/categories", s.handleCategories)

	mux.HandleFunc("GET /api/contracts", s.handleListContracts)
	mux.HandleFunc("POST /api/contracts", s.handleCreateContract)
	mux.HandleFunc("POST /api/contracts/{id}/payments", s.handleRecordPayment)
	mux.HandleFunc("POST /api/contracts/{id}/status", s.handleSetStatus)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
