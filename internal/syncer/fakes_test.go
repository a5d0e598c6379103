package syncer_test

import (
	"context"
	"errors"
	"nregastats/internal/models"
	"nregastats/internal/pkg/datagov"
	"nregastats/internal/store"
	"sync"
)

var errUpstream = errors.New("upstream unavailable")

type fakeFetcher struct {
	mu      sync.Mutex
	records map[datagov.Period][]datagov.RawRecord
	errs    map[datagov.Period]error
	calls   []datagov.Period
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		records: make(map[datagov.Period][]datagov.RawRecord),
		errs:    make(map[datagov.Period]error),
	}
}

func (f *fakeFetcher) FetchStatePeriod(_ context.Context, _ string, p datagov.Period) ([]datagov.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p)
	if err := f.errs[p]; err != nil {
		return nil, err
	}
	return f.records[p], nil
}

func (f *fakeFetcher) Calls() []datagov.Period {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]datagov.Period(nil), f.calls...)
}

// hookedStore lets a test intercept upserts on top of an in-memory store.
type hookedStore struct {
	*store.Memory
	beforeUpsert func(p *models.MonthlyPerformance) error
}

func (s *hookedStore) UpsertPerformance(ctx context.Context, p *models.MonthlyPerformance) (*models.MonthlyPerformance, error) {
	if s.beforeUpsert != nil {
		if err := s.beforeUpsert(p); err != nil {
			return nil, err
		}
	}
	return s.Memory.UpsertPerformance(ctx, p)
}
