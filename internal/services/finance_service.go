package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"prospect/internal/amqp"
	"prospect/internal/cache"
	"prospect/internal/core"
	"prospect/internal/finance"
	"prospect/internal/records"

	"golang.org/x/sync/errgroup"
)

const summaryKey = "summary"

// FinanceService serves engine results over the current store contents.
// Results are memoized until Invalidate is called or the TTL elapses.
// Returned values are shared with the cache and must not be mutated.
type FinanceService struct {
	source records.Source

	summaries  *cache.LRUCache[finance.Summary]
	series     *cache.LRUCache[finance.YearSeries]
	categories *cache.LRUCache[[]finance.CategoryShare]
	years      *cache.LRUCache[[]int]

	// mu guards generation and orders cache fills against Invalidate. A
	// computation started before an invalidation is never stored.
	mu         sync.Mutex
	generation uint64
}

func NewFinanceService(source records.Source, cacheSize int, ttl time.Duration) *FinanceService {
	return &FinanceService{
		source:     source,
		summaries:  cache.NewLRUCache[finance.Summary](1, ttl),
		series:     cache.NewLRUCache[finance.YearSeries](cacheSize, ttl),
		categories: cache.NewLRUCache[[]finance.CategoryShare](1, ttl),
		years:      cache.NewLRUCache[[]int](cacheSize, ttl),
	}
}

// Cleaners exposes the underlying caches for a cache.Janitor.
func (s *FinanceService) Cleaners() []cache.Cleaner {
	return []cache.Cleaner{s.summaries, s.series, s.categories, s.years}
}

func (s *FinanceService) Summary(ctx context.Context) (finance.Summary, error) {
	if v, ok := s.summaries.Get(summaryKey); ok {
		return v, nil
	}
	gen := s.currentGeneration()
	contracts, expenses, err := s.load(ctx)
	if err != nil {
		return finance.Summary{}, err
	}
	v := finance.Summarize(contracts, expenses)
	s.fill(gen, func() { s.summaries.Set(summaryKey, v) })
	return v, nil
}

func (s *FinanceService) Series(ctx context.Context, year int) (finance.YearSeries, error) {
	key := strconv.Itoa(year)
	if v, ok := s.series.Get(key); ok {
		return v, nil
	}
	gen := s.currentGeneration()
	contracts, expenses, err := s.load(ctx)
	if err != nil {
		return finance.YearSeries{}, err
	}
	v := finance.Project(contracts, expenses, year)
	s.fill(gen, func() { s.series.Set(key, v) })
	return v, nil
}

// Categories returns the ranked recurring spend per category. top <= 0
// returns every category.
func (s *FinanceService) Categories(ctx context.Context, top int) ([]finance.CategoryShare, error) {
	ranked, ok := s.categories.Get(summaryKey)
	if !ok {
		gen := s.currentGeneration()
		_, expenses, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		ranked = finance.RankCategories(expenses)
		s.fill(gen, func() { s.categories.Set(summaryKey, ranked) })
	}
	if top > 0 && top < len(ranked) {
		ranked = ranked[:top]
	}
	return append([]finance.CategoryShare(nil), ranked...), nil
}

// Years lists the years with projected activity up to through.
func (s *FinanceService) Years(ctx context.Context, through int) ([]int, error) {
	key := strconv.Itoa(through)
	if v, ok := s.years.Get(key); ok {
		return v, nil
	}
	gen := s.currentGeneration()
	contracts, expenses, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	v := finance.YearsWithData(contracts, expenses, through)
	s.fill(gen, func() { s.years.Set(key, v) })
	return v, nil
}

// Invalidate drops every memoized result.
func (s *FinanceService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.summaries.Purge()
	s.series.Purge()
	s.categories.Purge()
	s.years.Purge()
}

func (s *FinanceService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// fill runs set only if no invalidation happened since gen was read.
func (s *FinanceService) fill(gen uint64, set func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		set()
	}
}

// HandleRecordChanged is the consumer callback for change notifications
// published by other instances.
func (s *FinanceService) HandleRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error {
	slog.DebugContext(ctx, "Invalidating finance cache",
		"kind", msg.Kind,
		"record_id", msg.ID,
		"op", msg.Op)
	s.Invalidate()
	return nil
}

func (s *FinanceService) load(ctx context.Context) ([]core.Contract, []core.Expense, error) {
	var (
		contracts []core.Contract
		expenses  []core.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contracts, err = s.source.ListContracts(gctx)
		if err != nil {
			return fmt.Errorf("list contracts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		expenses, err = s.source.ListExpenses(gctx)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return contracts, expenses, nil
}
