// Package syncer drives ingestion passes from the upstream dataset into the store.
//
// A pass moves through Fetching, Normalizing, Persisting and Logged and ends
// Completed or Failed. Records are processed one at a time; a failing record
// is recorded and the pass carries on. Every invocation writes exactly one
// SyncRun, including invocations that fail or run out of time.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"nregastats/internal/logging"
	"nregastats/internal/metrics"
	"nregastats/internal/models"
	"nregastats/internal/normalize"
	"nregastats/internal/pkg/datagov"
	"nregastats/internal/pkg/retry"
	"nregastats/internal/registry"
	"nregastats/internal/store"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultMonthsBack    = 12
	defaultBackfillDelay = 2 * time.Second
	runWriteTimeout      = 5 * time.Second
)

type Mode string

const (
	ModeCurrent    Mode = "current"
	ModeHistorical Mode = "historical"
)

type Phase string

const (
	PhaseFetching    Phase = "fetching"
	PhaseNormalizing Phase = "normalizing"
	PhasePersisting  Phase = "persisting"
	PhaseLogged      Phase = "logged"
	PhaseCompleted   Phase = "completed"
	PhaseFailed      Phase = "failed"
)

// Fetcher is the upstream read used by a pass.
type Fetcher interface {
	FetchStatePeriod(ctx context.Context, state string, p datagov.Period) ([]datagov.RawRecord, error)
}

// Store is the persistence needed by a pass.
type Store interface {
	FindRegionByCode(ctx context.Context, code string) (*models.Region, error)
	CreateRegion(ctx context.Context, r *models.Region) error
	UpsertPerformance(ctx context.Context, p *models.MonthlyPerformance) (*models.MonthlyPerformance, error)
	CreateSyncRun(ctx context.Context, run *models.SyncRun) error
	RecentSyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error)
}

type Config struct {
	State         string // upstream state_name filter, e.g. HARYANA
	StateDisplay  string // state stored on lazily created regions, e.g. Haryana
	BackfillDelay time.Duration

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

type Options struct {
	UseMockData bool
}

type BackfillOptions struct {
	MonthsBack  int
	UseMockData bool
}

// Result is what a caller sees of a current-period pass.
type Result struct {
	RunID           string            `json:"runId"`
	Success         bool              `json:"success"`
	Status          models.SyncStatus `json:"status"`
	RecordsSynced   int               `json:"recordsSynced"`
	Errors          []string          `json:"errors"`
	DurationSeconds int               `json:"durationSeconds"`
}

type Syncer struct {
	cfg        Config
	fetcher    Fetcher
	store      Store
	registry   registry.Lookup
	normalizer normalize.Normalizer
}

func New(cfg Config, fetcher Fetcher, s Store, reg registry.Lookup) *Syncer {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = retry.SleepContext
	}
	if cfg.BackfillDelay < 0 {
		cfg.BackfillDelay = defaultBackfillDelay
	}
	if cfg.StateDisplay == "" {
		cfg.StateDisplay = cfg.State
	}

	return &Syncer{
		cfg:        cfg,
		fetcher:    fetcher,
		store:      s,
		registry:   reg,
		normalizer: normalize.Normalizer{Now: cfg.Now},
	}
}

// run is the mutable state of one invocation.
type run struct {
	id      string
	mode    Mode
	phase   Phase
	started time.Time
	synced  int
	errs    []error
	fatal   error
	log     zerolog.Logger
}

func (s *Syncer) newRun(mode Mode) *run {
	id := uuid.NewString()
	return &run{
		id:      id,
		mode:    mode,
		started: s.cfg.Now(),
		log:     logging.With().Str("run_id", id).Str("mode", string(mode)).Logger(),
	}
}

func (r *run) enter(p Phase) {
	r.phase = p
	r.log.Debug().Str("phase", string(p)).Msg("sync phase")
}

func (r *run) recordError(err error) {
	r.errs = append(r.errs, err)

	var unknown *UnknownRegionError
	var aborted *AbortedError
	switch {
	case errors.As(err, &unknown):
		metrics.RecordErrors.WithLabelValues("unknown_region").Inc()
	case errors.As(err, &aborted):
		metrics.RecordErrors.WithLabelValues("aborted").Inc()
	case errors.As(err, new(*PersistenceError)):
		metrics.RecordErrors.WithLabelValues("persistence").Inc()
	}
}

func (r *run) status() models.SyncStatus {
	switch {
	case r.fatal != nil:
		return models.SyncStatusFailed
	case len(r.errs) == 0:
		return models.SyncStatusSuccess
	case r.synced > 0:
		return models.SyncStatusPartial
	default:
		return models.SyncStatusFailed
	}
}

func (r *run) messages() []string {
	out := make([]string, 0, len(r.errs)+1)
	if r.fatal != nil {
		out = append(out, r.fatal.Error())
	}
	for _, err := range r.errs {
		out = append(out, err.Error())
	}
	return out
}

// SyncCurrent runs one pass for the current month. It never returns an error;
// failures are reported in the Result and in the SyncRun it writes.
func (s *Syncer) SyncCurrent(ctx context.Context, opts Options) Result {
	r := s.newRun(ModeCurrent)
	period := datagov.PeriodOf(r.started)

	r.log.Info().Stringer("period", period).Bool("mock", opts.UseMockData).Msg("sync started")

	if err := s.syncPeriod(ctx, r, period, opts.UseMockData); err != nil {
		r.fatal = err
	}

	return s.finish(ctx, r)
}

// Backfill runs a pass for each of the trailing MonthsBack periods, newest
// first, waiting BackfillDelay between periods. A failing period is logged
// and skipped. One summary SyncRun is written. The only error returned is the
// context's, when the caller's deadline cut the backfill short.
func (s *Syncer) Backfill(ctx context.Context, opts BackfillOptions) error {
	monthsBack := opts.MonthsBack
	if monthsBack <= 0 {
		monthsBack = defaultMonthsBack
	}

	r := s.newRun(ModeHistorical)
	current := datagov.PeriodOf(r.started)

	r.log.Info().Int("months_back", monthsBack).Bool("mock", opts.UseMockData).Msg("backfill started")

	var stopErr error
	for i := range monthsBack {
		if i > 0 {
			if err := s.cfg.Sleep(ctx, s.cfg.BackfillDelay); err != nil {
				stopErr = err
				break
			}
		}

		period := current.MonthsBefore(i)
		before := r.synced

		err := s.syncPeriod(ctx, r, period, opts.UseMockData)
		if err != nil {
			r.recordError(err)
			r.log.Warn().Err(err).Int("month", period.Month).Int("year", period.Year).Msg("backfill period failed, continuing")
		} else {
			r.log.Info().Int("month", period.Month).Int("year", period.Year).Int("records", r.synced-before).Msg("backfill period synced")
		}

		if ctx.Err() != nil {
			stopErr = ctx.Err()
			break
		}
	}

	if stopErr != nil {
		r.recordError(fmt.Errorf("backfill stopped early: %w", stopErr))
	}

	s.finish(ctx, r)
	return stopErr
}

// RecentRuns returns the latest n SyncRun entries, newest first.
func (s *Syncer) RecentRuns(ctx context.Context, n int) ([]models.SyncRun, error) {
	return s.store.RecentSyncRuns(ctx, n)
}

// syncPeriod fetches, normalizes and persists one period. Only a fetch failure
// is returned; per-record failures are accumulated on r.
func (s *Syncer) syncPeriod(ctx context.Context, r *run, period datagov.Period, useMock bool) error {
	r.enter(PhaseFetching)

	var raws []datagov.RawRecord
	if useMock {
		raws = datagov.GenerateMock(s.registry.List(), s.cfg.State, period)
	} else {
		var err error
		raws, err = s.fetcher.FetchStatePeriod(ctx, s.cfg.State, period)
		if err != nil {
			return &FatalSyncError{Period: period, Err: err}
		}
	}
	r.log.Info().Stringer("period", period).Int("records", len(raws)).Msg("records fetched")

	r.enter(PhaseNormalizing)
	records := make([]normalize.Record, 0, len(raws))
	for _, raw := range raws {
		rec := s.normalizer.Normalize(raw, period)
		for _, issue := range rec.Issues {
			r.log.Warn().Str("region_code", rec.RegionCode).Str("issue", issue.String()).Msg("record normalized with default")
		}
		records = append(records, rec)
	}

	r.enter(PhasePersisting)
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			r.recordError(&AbortedError{Remaining: len(records) - i, Err: err})
			r.log.Warn().Err(err).Int("remaining", len(records)-i).Msg("sync deadline reached, abandoning remaining records")
			break
		}

		if err := s.persist(ctx, rec); err != nil {
			r.recordError(err)
			r.log.Warn().Err(err).Str("region_code", rec.RegionCode).Int("month", rec.Period.Month).Int("year", rec.Period.Year).Msg("record failed")
			continue
		}

		r.synced++
		metrics.RecordsSynced.Inc()
	}

	return nil
}

// persist resolves or lazily creates the region, then upserts the record.
func (s *Syncer) persist(ctx context.Context, rec normalize.Record) error {
	region, err := s.store.FindRegionByCode(ctx, rec.RegionCode)
	if errors.Is(err, store.ErrNotFound) {
		region, err = s.createRegion(ctx, rec.RegionCode)
	}
	if err != nil {
		var unknown *UnknownRegionError
		if errors.As(err, &unknown) {
			return err
		}
		return &PersistenceError{Code: rec.RegionCode, Period: rec.Period, Err: err}
	}

	row := models.MonthlyPerformance{
		RegionID:            region.ID,
		Month:               rec.Period.Month,
		Year:                rec.Period.Year,
		JobCardsIssued:      rec.JobCardsIssued,
		PersonsWorked:       rec.PersonsWorked,
		PersonDaysGenerated: rec.PersonDaysGenerated,
		AvgWage:             rec.AvgWage,
		WorksCompleted:      rec.WorksCompleted,
		WorksOngoing:        rec.WorksOngoing,
		Expenditure:         rec.Expenditure,
		BudgetUtilization:   &rec.BudgetUtilization,
		LastUpdated:         s.cfg.Now(),
	}

	if _, err := s.store.UpsertPerformance(ctx, &row); err != nil {
		return &PersistenceError{Code: rec.RegionCode, Period: rec.Period, Err: err}
	}
	return nil
}

func (s *Syncer) createRegion(ctx context.Context, code string) (*models.Region, error) {
	entry, ok := s.registry.FindByCode(code)
	if !ok {
		return nil, &UnknownRegionError{Code: code}
	}

	lat, lon := entry.Lat, entry.Lon
	region := &models.Region{
		Code:      entry.Code,
		NameEn:    entry.NameEn,
		NameHi:    entry.NameHi,
		State:     s.cfg.StateDisplay,
		Latitude:  &lat,
		Longitude: &lon,
	}
	if err := s.store.CreateRegion(ctx, region); err != nil {
		return nil, err
	}

	logging.Info().Str("region_code", code).Msg("region created from registry")
	return region, nil
}

// finish writes the SyncRun and builds the Result. The write uses a context
// detached from ctx so a pass that ran out of time is still logged.
func (s *Syncer) finish(ctx context.Context, r *run) Result {
	duration := s.cfg.Now().Sub(r.started)
	status := r.status()
	msgs := r.messages()

	r.enter(PhaseLogged)

	entry := &models.SyncRun{
		RunID:           r.id,
		Mode:            string(r.mode),
		Status:          status,
		RecordsSynced:   r.synced,
		DurationSeconds: int(duration.Seconds()),
		SyncDate:        r.started,
	}
	if len(msgs) > 0 {
		joined := strings.Join(msgs, "\n")
		entry.Errors = &joined
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), runWriteTimeout)
	defer cancel()
	if err := s.store.CreateSyncRun(writeCtx, entry); err != nil {
		r.log.Error().Err(err).Msg("failed to write sync run")
	}

	metrics.SyncRuns.WithLabelValues(string(r.mode), string(status)).Inc()
	metrics.SyncDuration.WithLabelValues(string(r.mode)).Observe(duration.Seconds())
	if status == models.SyncStatusSuccess {
		metrics.LastSuccessfulSync.Set(float64(s.cfg.Now().Unix()))
	}

	if r.fatal != nil {
		r.enter(PhaseFailed)
		r.log.Error().Err(r.fatal).Int("duration_seconds", entry.DurationSeconds).Msg("sync failed")
	} else {
		r.enter(PhaseCompleted)
		r.log.Info().
			Str("status", string(status)).
			Int("records_synced", r.synced).
			Int("errors", len(r.errs)).
			Int("duration_seconds", entry.DurationSeconds).
			Msg("sync completed")
	}

	return Result{
		RunID:           r.id,
		Success:         len(msgs) == 0,
		Status:          status,
		RecordsSynced:   r.synced,
		Errors:          msgs,
		DurationSeconds: entry.DurationSeconds,
	}
}
