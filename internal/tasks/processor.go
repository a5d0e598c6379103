package tasks

import (
	"context"
	"errors"
	"fmt"
	"nregastats/internal/logging"
	"nregastats/internal/models"
	"nregastats/internal/syncer"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

// Syncer is the part of *syncer.Syncer the handlers drive.
type Syncer interface {
	SyncCurrent(ctx context.Context, opts syncer.Options) syncer.Result
	Backfill(ctx context.Context, opts syncer.BackfillOptions) error
}

// TaskProcessor holds dependencies for our task handlers
type TaskProcessor struct {
	syncer Syncer
}

func NewTaskProcessor(s Syncer) *TaskProcessor {
	return &TaskProcessor{syncer: s}
}

// Register mounts every handler on mux.
func (p *TaskProcessor) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeTaskSyncCurrent, p.HandleSyncCurrentTask)
	mux.HandleFunc(TypeTaskSyncHistorical, p.HandleSyncHistoricalTask)
}

// HandleSyncCurrentTask runs one current-period sync. The outcome is already
// recorded as a SyncRun, so a failed sync is not handed back to asynq for retry:
// the next scheduled run is the retry.
func (p *TaskProcessor) HandleSyncCurrentTask(ctx context.Context, t *asynq.Task) error {
	var payload SyncCurrentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	res := p.syncer.SyncCurrent(ctx, syncer.Options{UseMockData: payload.UseMockData})

	ev := logging.Info()
	if res.Status == models.SyncStatusFailed {
		ev = logging.Error()
	}
	ev.Str("task", t.Type()).
		Str("run_id", res.RunID).
		Str("status", string(res.Status)).
		Int("records_synced", res.RecordsSynced).
		Int("errors", len(res.Errors)).
		Msg("sync task finished")

	return nil
}

func (p *TaskProcessor) HandleSyncHistoricalTask(ctx context.Context, t *asynq.Task) error {
	var payload SyncHistoricalPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	err := p.syncer.Backfill(ctx, syncer.BackfillOptions{MonthsBack: payload.MonthsBack, UseMockData: payload.UseMockData})
	switch {
	case err == nil:
		logging.Info().Str("task", t.Type()).Int("months_back", payload.MonthsBack).Msg("backfill task finished")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		logging.Warn().Err(err).Str("task", t.Type()).Msg("backfill task cut short")
	default:
		return err
	}

	return nil
}
