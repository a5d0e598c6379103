package store

import (
	"cmp"
	"context"
	"nregastats/internal/models"
	"slices"
	"sync"
	"time"
)

type periodKey struct {
	regionID    uint
	month, year int
}

// Memory is a mutex-guarded in-process Store.
type Memory struct {
	mu sync.RWMutex

	now func() time.Time

	regions      []models.Region
	regionByCode map[string]int

	performances []models.MonthlyPerformance
	byPeriod     map[periodKey]int

	runs []models.SyncRun
}

func NewMemory() *Memory {
	return &Memory{
		now:          time.Now,
		regionByCode: make(map[string]int),
		byPeriod:     make(map[periodKey]int),
	}
}

func (m *Memory) FindRegionByCode(_ context.Context, code string) (*models.Region, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.regionByCode[code]
	if !ok {
		return nil, ErrNotFound
	}
	r := m.regions[i]
	return &r, nil
}

func (m *Memory) CreateRegion(ctx context.Context, r *models.Region) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if i, ok := m.regionByCode[r.Code]; ok {
		*r = m.regions[i]
		return nil
	}

	now := m.now()
	r.ID = uint(len(m.regions) + 1)
	r.CreatedAt, r.UpdatedAt = now, now
	m.regionByCode[r.Code] = len(m.regions)
	m.regions = append(m.regions, *r)
	return nil
}

func (m *Memory) SaveRegion(ctx context.Context, r *models.Region) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	i, ok := m.regionByCode[r.Code]
	if !ok {
		m.mu.Unlock()
		return m.CreateRegion(ctx, r)
	}
	defer m.mu.Unlock()

	stored := &m.regions[i]
	stored.NameEn = r.NameEn
	stored.NameHi = r.NameHi
	stored.State = r.State
	stored.Latitude = r.Latitude
	stored.Longitude = r.Longitude
	stored.UpdatedAt = m.now()
	*r = *stored
	return nil
}

func (m *Memory) UpsertPerformance(ctx context.Context, p *models.MonthlyPerformance) (*models.MonthlyPerformance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := periodKey{regionID: p.RegionID, month: p.Month, year: p.Year}
	row := *p
	row.Region = nil

	if i, ok := m.byPeriod[key]; ok {
		row.ID = m.performances[i].ID
		row.CreatedAt = m.performances[i].CreatedAt
		m.performances[i] = row
		return &row, nil
	}

	row.ID = uint(len(m.performances) + 1)
	row.CreatedAt = m.now()
	m.byPeriod[key] = len(m.performances)
	m.performances = append(m.performances, row)
	return &row, nil
}

func (m *Memory) CreateSyncRun(ctx context.Context, run *models.SyncRun) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	run.ID = uint(len(m.runs) + 1)
	m.runs = append(m.runs, *run)
	return nil
}

func (m *Memory) RecentSyncRuns(_ context.Context, limit int) ([]models.SyncRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := slices.Clone(m.runs)
	slices.SortStableFunc(out, func(a, b models.SyncRun) int {
		if c := b.SyncDate.Compare(a.SyncDate); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) ListRegionsWithLatest(_ context.Context, state string) ([]RegionWithLatest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	latest := make(map[uint]models.MonthlyPerformance)
	for _, p := range m.performances {
		if cur, ok := latest[p.RegionID]; !ok || cur.Before(p) {
			latest[p.RegionID] = p
		}
	}

	var out []RegionWithLatest
	for _, r := range m.regions {
		if r.State != state {
			continue
		}
		item := RegionWithLatest{Region: r}
		if p, ok := latest[r.ID]; ok {
			item.Latest = &p
		}
		out = append(out, item)
	}
	slices.SortStableFunc(out, func(a, b RegionWithLatest) int {
		return cmp.Compare(a.Region.NameEn, b.Region.NameEn)
	})
	return out, nil
}

func (m *Memory) RecentPerformance(_ context.Context, regionID uint, n int) ([]models.MonthlyPerformance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.MonthlyPerformance
	for _, p := range m.performances {
		if p.RegionID == regionID {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, newestFirst)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (m *Memory) StatePerformance(_ context.Context, state string) ([]models.MonthlyPerformance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inState := make(map[uint]bool)
	for _, r := range m.regions {
		if r.State == state {
			inState[r.ID] = true
		}
	}

	var out []models.MonthlyPerformance
	for _, p := range m.performances {
		if inState[p.RegionID] {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, newestFirst)
	return out, nil
}

func (m *Memory) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := Stats{
		Regions:      int64(len(m.regions)),
		Performances: int64(len(m.performances)),
	}
	for i := range m.runs {
		run := m.runs[i]
		if st.LastSync == nil || !run.SyncDate.Before(st.LastSync.SyncDate) {
			st.LastSync = &run
		}
	}
	return st, nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}
