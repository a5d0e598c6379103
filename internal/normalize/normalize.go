// Package normalize turns loosely typed upstream records into canonical
// per-period records.
//
// The upstream dataset mixes JSON numbers and numeric strings, encodes the
// month as an English name and the year as a financial-year range. Every
// lossy default applied here is reported in Record.Issues.
package normalize

import (
	"fmt"
	"math"
	"nregastats/internal/pkg/datagov"
	"regexp"
	"strconv"
	"time"
)

var finYearPattern = regexp.MustCompile(`^(\d{4})-`)

// Record is the canonical shape of one region's statistics for one period.
// Nil numeric fields were absent or null upstream.
type Record struct {
	RegionCode string
	RegionName string
	Period     datagov.Period

	JobCardsIssued      *int64
	PersonsWorked       *int64
	PersonDaysGenerated *int64
	AvgWage             *float64
	WorksCompleted      *int64
	WorksOngoing        *int64
	Expenditure         *float64
	ApprovedBudget      *float64

	// BudgetUtilization is derived as Expenditure / ApprovedBudget * 100, or 0
	// when there is no positive approved budget.
	BudgetUtilization float64

	Issues []Issue
}

// Issue records a field that could not be read and the default used instead.
type Issue struct {
	Field   string
	Value   string
	Default string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: unreadable value %q, using %s", i.Field, i.Value, i.Default)
}

// Normalizer holds the clock used when the year cannot be read.
type Normalizer struct {
	Now func() time.Time
}

func New() Normalizer {
	return Normalizer{Now: time.Now}
}

// Normalize maps raw onto a Record. fallback supplies the period when the
// record carries no month or year of its own.
func (n Normalizer) Normalize(raw datagov.RawRecord, fallback datagov.Period) Record {
	rec := Record{
		RegionCode: raw.DistrictCode.String(),
		RegionName: raw.DistrictName.String(),
	}

	rec.Period.Month = n.month(raw.Month, fallback.Month, &rec)
	rec.Period.Year = n.year(raw.FinYear, fallback.Year, &rec)

	rec.JobCardsIssued = intField("Total_No_of_JobCards_issued", raw.JobCardsIssued, &rec)
	rec.PersonsWorked = intField("Total_Individuals_Worked", raw.IndividualsWorked, &rec)
	rec.PersonDaysGenerated = intField("Persondays_of_Central_Liability_so_far", raw.PersonDays, &rec)
	rec.AvgWage = floatField("Average_Wage_rate_per_day_per_person", raw.AverageWage, &rec)
	rec.WorksCompleted = intField("Number_of_Completed_Works", raw.CompletedWorks, &rec)
	rec.WorksOngoing = intField("Number_of_Ongoing_Works", raw.OngoingWorks, &rec)
	rec.Expenditure = floatField("Total_Exp", raw.TotalExpenditure, &rec)
	rec.ApprovedBudget = floatField("Approved_Labour_Budget", raw.ApprovedLabourBudget, &rec)

	rec.BudgetUtilization = BudgetUtilization(rec.Expenditure, rec.ApprovedBudget)

	return rec
}

// BudgetUtilization is expenditure as a percentage of the approved budget.
func BudgetUtilization(expenditure, approved *float64) float64 {
	if approved == nil || *approved <= 0 {
		return 0
	}
	var spent float64
	if expenditure != nil {
		spent = *expenditure
	}
	return spent / *approved * 100
}

func (n Normalizer) month(f datagov.Field, fallback int, rec *Record) int {
	switch f.Kind {
	case datagov.FieldNumber:
		if v, err := strconv.Atoi(f.String()); err == nil && v >= 1 && v <= 12 {
			return v
		}
	case datagov.FieldString:
		if v, ok := datagov.MonthNumber(f.String()); ok {
			return v
		}
	default:
		return fallback
	}

	// an unreadable month cannot be told apart from a real January record
	rec.Issues = append(rec.Issues, Issue{Field: "month", Value: f.Raw, Default: "1"})
	return 1
}

func (n Normalizer) year(f datagov.Field, fallback int, rec *Record) int {
	switch f.Kind {
	case datagov.FieldNumber:
		if v, err := strconv.Atoi(f.String()); err == nil && v > 0 {
			return v
		}
	case datagov.FieldString:
		if m := finYearPattern.FindStringSubmatch(f.String()); m != nil {
			v, _ := strconv.Atoi(m[1])
			return v
		}
	default:
		return fallback
	}

	now := n.now().Year()
	rec.Issues = append(rec.Issues, Issue{Field: "fin_year", Value: f.Raw, Default: strconv.Itoa(now)})
	return now
}

func (n Normalizer) now() time.Time {
	if n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

// intField reads whole numbers. Fractional values are truncated.
func intField(name string, f datagov.Field, rec *Record) *int64 {
	if !f.Present() {
		return nil
	}
	s := f.String()
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &v
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		t := int64(v)
		return &t
	}

	rec.Issues = append(rec.Issues, Issue{Field: name, Value: f.Raw, Default: "0"})
	var zero int64
	return &zero
}

func floatField(name string, f datagov.Field, rec *Record) *float64 {
	if !f.Present() {
		return nil
	}
	if v, err := strconv.ParseFloat(f.String(), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return &v
	}

	rec.Issues = append(rec.Issues, Issue{Field: name, Value: f.Raw, Default: "0"})
	var zero float64
	return &zero
}
