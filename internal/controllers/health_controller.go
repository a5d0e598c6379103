package controllers

import (
	"context"
	"net/http"
	"nregastats/internal/logging"
	"nregastats/internal/store"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthStore interface {
	Ping(ctx context.Context) error
	Stats(ctx context.Context) (store.Stats, error)
}

// UpstreamChecker reports whether the upstream API is reachable.
type UpstreamChecker interface {
	CheckHealth(ctx context.Context) bool
}

type HealthController struct {
	Store    HealthStore
	Upstream UpstreamChecker // optional
	Now      func() time.Time
}

// GetHealth reports database connectivity and pipeline stats
func (hc *HealthController) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now
	if hc.Now != nil {
		now = hc.Now
	}
	timestamp := now().UTC().Format(time.RFC3339)

	stats, err := hc.stats(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"timestamp": timestamp,
			"error":     "Database connection failed",
		})
		return
	}

	summary := gin.H{
		"districts":          stats.Regions,
		"performanceRecords": stats.Performances,
		"lastSync":           nil,
		"lastSyncStatus":     nil,
	}
	if stats.LastSync != nil {
		summary["lastSync"] = stats.LastSync.SyncDate
		summary["lastSyncStatus"] = stats.LastSync.Status
	}

	body := gin.H{
		"status":    "healthy",
		"timestamp": timestamp,
		"database":  "connected",
		"stats":     summary,
	}
	if hc.Upstream != nil && c.Query("upstream") == "true" {
		body["upstream"] = hc.Upstream.CheckHealth(ctx)
	}

	c.JSON(http.StatusOK, body)
}

func (hc *HealthController) stats(ctx context.Context) (store.Stats, error) {
	if err := hc.Store.Ping(ctx); err != nil {
		return store.Stats{}, err
	}
	return hc.Store.Stats(ctx)
}
