package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"nregastats/internal/logging"
	"nregastats/internal/models"
	"nregastats/internal/syncer"
	"nregastats/internal/tasks"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

// Syncer is what the sync endpoints trigger.
type Syncer interface {
	SyncCurrent(ctx context.Context, opts syncer.Options) syncer.Result
	Backfill(ctx context.Context, opts syncer.BackfillOptions) error
	RecentRuns(ctx context.Context, n int) ([]models.SyncRun, error)
}

// Enqueuer hands tasks to the worker queue. *asynq.Client satisfies it.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type SyncController struct {
	Syncer  Syncer
	Queue   Enqueuer      // optional, enables async requests
	Timeout time.Duration // upper bound for one triggered sync
}

type SyncRequest struct {
	Type        string `json:"type" binding:"omitempty,oneof=current historical"`
	UseMockData bool   `json:"useMockData"`
	MonthsBack  int    `json:"monthsBack" binding:"omitempty,gte=1,lte=120"`
	Async       bool   `json:"async"`
}

// TriggerSync runs a sync inline and reports its outcome, or queues it when async is set.
// An empty body means a live current-period sync.
func (sc *SyncController) TriggerSync(c *gin.Context) {
	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid sync request", "message": err.Error()})
		return
	}
	if req.Type == "" {
		req.Type = string(syncer.ModeCurrent)
	}
	if req.MonthsBack == 0 {
		req.MonthsBack = 12
	}

	if req.Async {
		sc.enqueue(c, req)
		return
	}

	ctx := c.Request.Context()
	if budget := sc.budget(req); budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	logging.Info().Str("type", req.Type).Bool("mock", req.UseMockData).Msg("sync triggered over http")

	if req.Type == string(syncer.ModeHistorical) {
		if err := sc.Syncer.Backfill(ctx, syncer.BackfillOptions{MonthsBack: req.MonthsBack, UseMockData: req.UseMockData}); err != nil {
			c.JSON(http.StatusOK, gin.H{
				"success": false,
				"message": fmt.Sprintf("Historical data sync stopped early: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": fmt.Sprintf("Historical data sync completed for %d months", req.MonthsBack),
		})
		return
	}

	res := sc.Syncer.SyncCurrent(ctx, syncer.Options{UseMockData: req.UseMockData})
	c.JSON(http.StatusOK, res)
}

// budget is the time allowed for req; a backfill gets one Timeout per period.
func (sc *SyncController) budget(req SyncRequest) time.Duration {
	if req.Type == string(syncer.ModeHistorical) {
		return sc.Timeout * time.Duration(req.MonthsBack)
	}
	return sc.Timeout
}

func (sc *SyncController) enqueue(c *gin.Context, req SyncRequest) {
	if sc.Queue == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Async sync is not available"})
		return
	}

	var task *asynq.Task
	var err error
	if req.Type == string(syncer.ModeHistorical) {
		task, err = tasks.NewSyncHistoricalTask(req.MonthsBack, req.UseMockData)
	} else {
		task, err = tasks.NewSyncCurrentTask(req.UseMockData)
	}
	if err != nil {
		logging.Error().Err(err).Msg("failed to create sync task")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": errSomethingWentWrong})
		return
	}

	var opts []asynq.Option
	if budget := sc.budget(req); budget > 0 {
		opts = append(opts, asynq.Timeout(budget))
	}
	info, err := sc.Queue.EnqueueContext(c.Request.Context(), task, opts...)
	if err != nil {
		logging.Error().Err(err).Str("task", task.Type()).Msg("failed to enqueue sync task")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": errSomethingWentWrong})
		return
	}

	logging.Info().Str("task", task.Type()).Str("task_id", info.ID).Msg("sync task enqueued")
	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Sync queued",
		"taskId":  info.ID,
		"queue":   info.Queue,
	})
}

// Usage describes how to trigger a sync.
func (sc *SyncController) Usage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Use POST to trigger sync",
		"endpoints": gin.H{
			"current":    `POST /api/v1/sync { "type": "current", "useMockData": false }`,
			"historical": `POST /api/v1/sync { "type": "historical", "monthsBack": 12, "useMockData": false }`,
		},
	})
}

// GetLogs returns the most recent sync runs
func (sc *SyncController) GetLogs(c *gin.Context) {
	limit := getIntWithDefault(c, "limit", 10, 100)

	runs, err := sc.Syncer.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		logging.Error().Err(err).Msg("failed to get sync runs")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": errSomethingWentWrong})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"logs":    runs,
	})
}
