// Package store persists regions, monthly performance rows and sync runs.
//
// Gorm is the postgres-backed implementation used by the binaries. Memory
// keeps the same semantics in process and backs tests and database-less runs.
package store

import (
	"context"
	"errors"
	"nregastats/internal/models"
)

var ErrNotFound = errors.New("record not found")

// RegionWithLatest pairs a region with its most recent performance row, if any.
type RegionWithLatest struct {
	Region models.Region
	Latest *models.MonthlyPerformance
}

type Stats struct {
	Regions      int64
	Performances int64
	LastSync     *models.SyncRun
}

type Store interface {
	FindRegionByCode(ctx context.Context, code string) (*models.Region, error)
	// CreateRegion inserts r. If a region with the same code already exists, r
	// is filled from the stored row instead.
	CreateRegion(ctx context.Context, r *models.Region) error
	// SaveRegion inserts r or corrects the names and location of the stored region with its code.
	SaveRegion(ctx context.Context, r *models.Region) error
	// UpsertPerformance converges the row keyed by (RegionID, Month, Year) to p
	// and returns the persisted row.
	UpsertPerformance(ctx context.Context, p *models.MonthlyPerformance) (*models.MonthlyPerformance, error)

	CreateSyncRun(ctx context.Context, run *models.SyncRun) error
	RecentSyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error)

	ListRegionsWithLatest(ctx context.Context, state string) ([]RegionWithLatest, error)
	// RecentPerformance returns up to n rows for the region, newest first.
	RecentPerformance(ctx context.Context, regionID uint, n int) ([]models.MonthlyPerformance, error)
	// StatePerformance returns every row of every region in state, newest period first.
	StatePerformance(ctx context.Context, state string) ([]models.MonthlyPerformance, error)
	Stats(ctx context.Context) (Stats, error)
	Ping(ctx context.Context) error
}

var (
	_ Store = (*Gorm)(nil)
	_ Store = (*Memory)(nil)
)

func newestFirst(a, b models.MonthlyPerformance) int {
	switch {
	case b.Before(a):
		return -1
	case a.Before(b):
		return 1
	default:
		return int(a.RegionID) - int(b.RegionID)
	}
}
