package models

import "time"

// MonthlyPerformance holds one region's scheme statistics for a (month, year) period.
// At most one row exists per (RegionID, Month, Year).
type MonthlyPerformance struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	RegionID uint `gorm:"not null;uniqueIndex:idx_performance_period,priority:1" json:"regionId"`
	Month    int  `gorm:"not null;uniqueIndex:idx_performance_period,priority:2" json:"month"`
	Year     int  `gorm:"not null;uniqueIndex:idx_performance_period,priority:3" json:"year"`

	JobCardsIssued      *int64   `json:"jobCardsIssued"`
	PersonsWorked       *int64   `json:"personsWorked"`
	PersonDaysGenerated *int64   `json:"personDaysGenerated"`
	AvgWage             *float64 `json:"avgWage"`
	WorksCompleted      *int64   `json:"worksCompleted"`
	WorksOngoing        *int64   `json:"worksOngoing"`
	Expenditure         *float64 `json:"expenditure"`
	BudgetUtilization   *float64 `json:"budgetUtilization"`

	LastUpdated time.Time `gorm:"not null" json:"lastUpdated"`
	CreatedAt   time.Time `json:"createdAt"`

	Region *Region `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}

// TableName keeps the table name stable regardless of gorm's pluralisation rules.
func (MonthlyPerformance) TableName() string {
	return "monthly_performances"
}

// Before reports whether p is chronologically earlier than other.
func (p MonthlyPerformance) Before(other MonthlyPerformance) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}
