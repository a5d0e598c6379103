package store

import (
	"context"
	"errors"
	"fmt"
	"nregastats/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var performanceColumns = []string{
	"job_cards_issued",
	"persons_worked",
	"person_days_generated",
	"avg_wage",
	"works_completed",
	"works_ongoing",
	"expenditure",
	"budget_utilization",
	"last_updated",
}

type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) FindRegionByCode(ctx context.Context, code string) (*models.Region, error) {
	region, err := gorm.G[models.Region](s.db).Where("code = ?", code).First(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find region %s: %w", code, err)
	}
	return &region, nil
}

func (s *Gorm) CreateRegion(ctx context.Context, r *models.Region) error {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(r)
	if res.Error != nil {
		return fmt.Errorf("failed to create region %s: %w", r.Code, res.Error)
	}

	if res.RowsAffected == 0 {
		// another writer created it first
		existing, err := s.FindRegionByCode(ctx, r.Code)
		if err != nil {
			return err
		}
		*r = *existing
	}
	return nil
}

func (s *Gorm) SaveRegion(ctx context.Context, r *models.Region) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name_en", "name_hi", "state", "latitude", "longitude", "updated_at"}),
		}).
		Create(r).Error
	if err != nil {
		return fmt.Errorf("failed to save region %s: %w", r.Code, err)
	}

	saved, err := s.FindRegionByCode(ctx, r.Code)
	if err != nil {
		return err
	}
	*r = *saved
	return nil
}

func (s *Gorm) UpsertPerformance(ctx context.Context, p *models.MonthlyPerformance) (*models.MonthlyPerformance, error) {
	row := *p
	row.ID = 0
	row.Region = nil

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "region_id"}, {Name: "month"}, {Name: "year"}},
			DoUpdates: clause.AssignmentColumns(performanceColumns),
		}).
		Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert performance %d/%d for region %d: %w", p.Month, p.Year, p.RegionID, err)
	}

	saved, err := gorm.G[models.MonthlyPerformance](s.db).
		Where("region_id = ? AND month = ? AND year = ?", p.RegionID, p.Month, p.Year).
		First(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reload performance %d/%d for region %d: %w", p.Month, p.Year, p.RegionID, err)
	}
	return &saved, nil
}

func (s *Gorm) CreateSyncRun(ctx context.Context, run *models.SyncRun) error {
	if err := gorm.G[models.SyncRun](s.db).Create(ctx, run); err != nil {
		return fmt.Errorf("failed to create sync run: %w", err)
	}
	return nil
}

func (s *Gorm) RecentSyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	runs, err := gorm.G[models.SyncRun](s.db).Order("sync_date DESC, id DESC").Limit(limit).Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	return runs, nil
}

func (s *Gorm) ListRegionsWithLatest(ctx context.Context, state string) ([]RegionWithLatest, error) {
	regions, err := gorm.G[models.Region](s.db).Where("state = ?", state).Order("name_en").Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}

	var latest []models.MonthlyPerformance
	err = s.db.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (p.region_id) p.*
		FROM monthly_performances p
		JOIN regions r ON r.id = p.region_id
		WHERE r.state = ?
		ORDER BY p.region_id, p.year DESC, p.month DESC`, state).
		Scan(&latest).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load latest performance: %w", err)
	}

	byRegion := make(map[uint]models.MonthlyPerformance, len(latest))
	for _, p := range latest {
		byRegion[p.RegionID] = p
	}

	out := make([]RegionWithLatest, 0, len(regions))
	for _, r := range regions {
		item := RegionWithLatest{Region: r}
		if p, ok := byRegion[r.ID]; ok {
			item.Latest = &p
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *Gorm) RecentPerformance(ctx context.Context, regionID uint, n int) ([]models.MonthlyPerformance, error) {
	rows, err := gorm.G[models.MonthlyPerformance](s.db).
		Where("region_id = ?", regionID).
		Order("year DESC, month DESC").
		Limit(n).
		Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load performance for region %d: %w", regionID, err)
	}
	return rows, nil
}

func (s *Gorm) StatePerformance(ctx context.Context, state string) ([]models.MonthlyPerformance, error) {
	var rows []models.MonthlyPerformance
	err := s.db.WithContext(ctx).
		Joins("JOIN regions ON regions.id = monthly_performances.region_id").
		Where("regions.state = ?", state).
		Order("monthly_performances.year DESC, monthly_performances.month DESC, monthly_performances.region_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load performance for state %s: %w", state, err)
	}
	return rows, nil
}

func (s *Gorm) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var err error

	if st.Regions, err = gorm.G[models.Region](s.db).Count(ctx, "id"); err != nil {
		return st, fmt.Errorf("failed to count regions: %w", err)
	}
	if st.Performances, err = gorm.G[models.MonthlyPerformance](s.db).Count(ctx, "id"); err != nil {
		return st, fmt.Errorf("failed to count performance rows: %w", err)
	}

	run, err := gorm.G[models.SyncRun](s.db).Order("sync_date DESC, id DESC").First(ctx)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return st, fmt.Errorf("failed to load last sync run: %w", err)
	default:
		st.LastSync = &run
	}

	return st, nil
}

func (s *Gorm) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
