package testhelpers

import (
	"fmt"
	"nregastats/internal/db"
	"nregastats/internal/models"
	"nregastats/internal/pkg/datagov"
	"os"
	"time"

	g "github.com/onsi/gomega"
	"gorm.io/gorm"
)

// ConnectTestDB opens and migrates DATABASE_URL. It returns nil when no
// database is configured or reachable so callers can Skip.
func ConnectTestDB() *gorm.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil
	}

	conn, err := db.InitDB(dsn)
	if err != nil {
		return nil
	}
	if err := db.Migrate(conn); err != nil {
		return nil
	}
	return conn
}

func CleanupDB(db *gorm.DB) {
	var tables []string

	err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error
	g.Expect(err).NotTo(g.HaveOccurred())

	if len(tables) == 0 {
		return
	}

	for _, table := range tables {
		if table == "spatial_ref_sys" || table == "schema_migrations" {
			continue
		}

		query := fmt.Sprintf("TRUNCATE TABLE \"%s\" RESTART IDENTITY CASCADE", table)
		err := db.Exec(query).Error
		g.Expect(err).NotTo(g.HaveOccurred(), "Failed to truncate table: "+table)
	}
}

// RawRecord builds an upstream record for code in period p with plausible values.
func RawRecord(code string, p datagov.Period) datagov.RawRecord {
	return datagov.RawRecord{
		DistrictCode:         datagov.StringField(code),
		DistrictName:         datagov.StringField("District " + code),
		StateName:            datagov.StringField("HARYANA"),
		Month:                datagov.StringField(p.MonthName()),
		FinYear:              datagov.StringField(p.FinYear()),
		JobCardsIssued:       datagov.StringField("20000"),
		IndividualsWorked:    datagov.StringField("12000"),
		PersonDays:           datagov.StringField("250000"),
		AverageWage:          datagov.StringField("245.5"),
		CompletedWorks:       datagov.StringField("300"),
		OngoingWorks:         datagov.StringField("120"),
		TotalExpenditure:     datagov.StringField("8000000"),
		ApprovedLabourBudget: datagov.StringField("10000000"),
	}
}

func Int64(v int64) *int64 { return &v }

func Float64(v float64) *float64 { return &v }

// Performance builds a stored row for regionID in month/year.
func Performance(regionID uint, month, year int, jobCards, personsWorked, personDays int64, budgetUtilization float64) models.MonthlyPerformance {
	return models.MonthlyPerformance{
		RegionID:            regionID,
		Month:               month,
		Year:                year,
		JobCardsIssued:      Int64(jobCards),
		PersonsWorked:       Int64(personsWorked),
		PersonDaysGenerated: Int64(personDays),
		BudgetUtilization:   Float64(budgetUtilization),
		LastUpdated:         time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
	}
}
