package controllers

import (
	"context"
	"errors"
	"net/http"
	"nregastats/internal/analytics"
	"nregastats/internal/logging"
	"nregastats/internal/models"
	"nregastats/internal/store"

	"github.com/gin-gonic/gin"
)

const compareWindow = 6

type RegionStore interface {
	FindRegionByCode(ctx context.Context, code string) (*models.Region, error)
	ListRegionsWithLatest(ctx context.Context, state string) ([]store.RegionWithLatest, error)
	RecentPerformance(ctx context.Context, regionID uint, n int) ([]models.MonthlyPerformance, error)
	StatePerformance(ctx context.Context, state string) ([]models.MonthlyPerformance, error)
}

type RegionController struct {
	Store RegionStore
	State string // display state, e.g. Haryana
}

type regionSummary struct {
	Code       string                     `json:"code"`
	NameEn     string                     `json:"nameEn"`
	NameHi     string                     `json:"nameHi"`
	State      string                     `json:"state"`
	Latitude   *float64                   `json:"latitude"`
	Longitude  *float64                   `json:"longitude"`
	LatestData *models.MonthlyPerformance `json:"latestData"`
}

func summarize(r models.Region, latest *models.MonthlyPerformance) regionSummary {
	return regionSummary{
		Code:       r.Code,
		NameEn:     r.NameEn,
		NameHi:     r.NameHi,
		State:      r.State,
		Latitude:   r.Latitude,
		Longitude:  r.Longitude,
		LatestData: latest,
	}
}

// GetRegions lists every region of the state with its latest row
func (rc *RegionController) GetRegions(c *gin.Context) {
	regions, err := rc.Store.ListRegionsWithLatest(c.Request.Context(), rc.State)
	if err != nil {
		logging.Error().Err(err).Msg("failed to list regions")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": errSomethingWentWrong})
		return
	}

	data := make([]regionSummary, 0, len(regions))
	for _, r := range regions {
		data = append(data, summarize(r.Region, r.Latest))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"count":   len(data),
	})
}

// GetRegion returns the recent performance of one region with derived metrics and trends
func (rc *RegionController) GetRegion(c *gin.Context) {
	region, ok := rc.findRegion(c)
	if !ok {
		return
	}

	months := getIntWithDefault(c, "months", 12, 120)
	rows, err := rc.Store.RecentPerformance(c.Request.Context(), region.ID, months)
	if err != nil {
		logging.Error().Err(err).Str("region_code", region.Code).Msg("failed to get performance")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": errSomethingWentWrong})
		return
	}

	var metrics *analytics.Metrics
	var trends map[analytics.Metric]analytics.Trend
	if len(rows) > 0 {
		var previous *models.MonthlyPerformance
		if len(rows) > 1 {
			previous = &rows[1]
		}
		m := analytics.PerformanceMetrics(rows[0], previous)
		metrics = &m
		trends = analytics.KeyTrends(rows)
	}

	if rows == nil {
		rows = []models.MonthlyPerformance{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"district":    summarize(*region, nil),
			"performance": rows,
			"metrics":     metrics,
			"trends":      trends,
		},
	})
}

// CompareRegion ranks one region against the rest of the state
func (rc *RegionController) CompareRegion(c *gin.Context) {
	region, ok := rc.findRegion(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	regionRows, err := rc.Store.RecentPerformance(ctx, region.ID, compareWindow)
	if err != nil {
		logging.Error().Err(err).Str("region_code", region.Code).Msg("failed to get performance")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": errSomethingWentWrong})
		return
	}

	allRows, err := rc.Store.StatePerformance(ctx, rc.State)
	if err != nil {
		logging.Error().Err(err).Msg("failed to get state performance")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": errSomethingWentWrong})
		return
	}

	listed, err := rc.Store.ListRegionsWithLatest(ctx, rc.State)
	if err != nil {
		logging.Error().Err(err).Msg("failed to list regions")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": errSomethingWentWrong})
		return
	}

	regions := make([]models.Region, 0, len(listed))
	latest := make(map[uint]models.MonthlyPerformance, len(listed))
	for _, r := range listed {
		regions = append(regions, r.Region)
		if r.Latest != nil {
			latest[r.Region.ID] = *r.Latest
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"district": gin.H{
				"code":   region.Code,
				"nameEn": region.NameEn,
				"nameHi": region.NameHi,
			},
			"comparisons":    analytics.KeyComparisons(regionRows, allRows),
			"rankings":       analytics.LatestRanking(regions, latest),
			"totalDistricts": len(regions),
		},
	})
}

func (rc *RegionController) findRegion(c *gin.Context) (*models.Region, bool) {
	code := c.Param("code")

	region, err := rc.Store.FindRegionByCode(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "District not found"})
			return nil, false
		}

		logging.Error().Err(err).Str("region_code", code).Msg("failed to get region")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": errSomethingWentWrong})
		return nil, false
	}
	return region, true
}
