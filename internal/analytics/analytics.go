// Package analytics derives scores, ratings, trends and rankings from stored
// monthly performance rows. Every function is pure.
package analytics

import (
	"math"
	"nregastats/internal/models"
	"slices"
)

// Efficiency score weights.
const (
	WeightBudgetUtilization = 0.30
	WeightEmploymentRate    = 0.25
	WeightPersonDays        = 0.25
	WeightCompletionRate    = 0.20

	// IdealPersonDaysPerWorker is 100 days a year spread over 12 months.
	IdealPersonDaysPerWorker = 8.33

	trendThreshold = 5.0
)

type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

type Rating string

const (
	RatingGood             Rating = "good"
	RatingAverage          Rating = "average"
	RatingNeedsImprovement Rating = "needs_improvement"
)

type Metrics struct {
	EmploymentRate   float64   `json:"employmentRate"`
	UtilizationScore float64   `json:"utilizationScore"`
	EfficiencyScore  int       `json:"efficiencyScore"`
	TrendDirection   Direction `json:"trendDirection"`
	Rating           Rating    `json:"performanceRating"`
}

type Trend struct {
	Direction     Direction `json:"trend"`
	ChangePercent float64   `json:"changePercent"`
	Values        []float64 `json:"values,omitempty"`
}

type Comparison struct {
	RegionValue          float64 `json:"districtValue"`
	StateAverage         float64 `json:"stateAverage"`
	PercentageDifference float64 `json:"percentageDifference"`
	IsAboveAverage       bool    `json:"isAboveAverage"`
	Rank                 int     `json:"ranking"` // 1-based, 0 when the region has no rows
	TotalRegions         int     `json:"totalDistricts"`
}

func value[T int64 | float64](v *T) float64 {
	if v == nil {
		return 0
	}
	return float64(*v)
}

// EmploymentRate is persons worked per job card issued, as a percentage.
// It is 0 when no job cards were issued.
func EmploymentRate(p models.MonthlyPerformance) float64 {
	cards := value(p.JobCardsIssued)
	if cards == 0 {
		return 0
	}
	return value(p.PersonsWorked) / cards * 100
}

// EfficiencyScore is the rounded weighted sum of the budget utilization,
// employment rate, person-days per worker and works completion sub-scores.
// Each sub-score is clamped to [0, 100], so the score is too.
func EfficiencyScore(p models.MonthlyPerformance) int {
	budget := clamp(value(p.BudgetUtilization))

	employment := clamp(EmploymentRate(p))

	var personDays float64
	if workers := value(p.PersonsWorked); workers != 0 {
		personDays = clamp(value(p.PersonDaysGenerated) / workers / IdealPersonDaysPerWorker * 100)
	}

	var completion float64
	completed := value(p.WorksCompleted)
	if total := completed + value(p.WorksOngoing); total > 0 {
		completion = clamp(completed / total * 100)
	}

	score := budget*WeightBudgetUtilization +
		employment*WeightEmploymentRate +
		personDays*WeightPersonDays +
		completion*WeightCompletionRate

	return int(math.Round(score))
}

// RatingFor classifies a score together with the budget utilization it came from.
func RatingFor(efficiency int, budgetUtilization float64) Rating {
	switch {
	case efficiency >= 75 && budgetUtilization >= 80:
		return RatingGood
	case efficiency < 50 || budgetUtilization < 60:
		return RatingNeedsImprovement
	default:
		return RatingAverage
	}
}

// PerformanceMetrics summarizes current, comparing its efficiency with previous when given.
func PerformanceMetrics(current models.MonthlyPerformance, previous *models.MonthlyPerformance) Metrics {
	score := EfficiencyScore(current)
	utilization := value(current.BudgetUtilization)

	dir := DirectionStable
	if previous != nil {
		prev := EfficiencyScore(*previous)
		switch {
		case score > prev+trendThreshold:
			dir = DirectionUp
		case score < prev-trendThreshold:
			dir = DirectionDown
		}
	}

	return Metrics{
		EmploymentRate:   EmploymentRate(current),
		UtilizationScore: utilization,
		EfficiencyScore:  score,
		TrendDirection:   dir,
		Rating:           RatingFor(score, utilization),
	}
}

// TrendOf measures the change of m from the earliest to the latest row.
// A zero starting value is reported as a 0% change.
func TrendOf(rows []models.MonthlyPerformance, m Metric) Trend {
	if len(rows) < 2 {
		return Trend{Direction: DirectionStable}
	}

	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b models.MonthlyPerformance) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		default:
			return 0
		}
	})

	values := make([]float64, len(sorted))
	for i, r := range sorted {
		values[i] = m.Value(r)
	}

	first, last := values[0], values[len(values)-1]
	var change float64
	if first != 0 {
		change = (last - first) / first * 100
	}

	dir := DirectionStable
	switch {
	case change > trendThreshold:
		dir = DirectionUp
	case change < -trendThreshold:
		dir = DirectionDown
	}

	return Trend{Direction: dir, ChangePercent: round1(change), Values: values}
}

// Compare places a region's rows against every region's rows for metric m.
// The state average is taken over all rows, not per region. Regions are
// ranked by their own average, highest first; ties keep first-seen order.
func Compare(regionRows []models.MonthlyPerformance, m Metric, allRows []models.MonthlyPerformance) Comparison {
	regionValue := average(regionRows, m)
	stateAverage := average(allRows, m)

	var diff float64
	if stateAverage != 0 {
		diff = (regionValue - stateAverage) / stateAverage * 100
	}

	ranking := rankRegions(allRows, m)

	rank := 0
	if len(regionRows) > 0 {
		id := regionRows[0].RegionID
		for i, r := range ranking {
			if r.regionID == id {
				rank = i + 1
				break
			}
		}
	}

	return Comparison{
		RegionValue:          regionValue,
		StateAverage:         stateAverage,
		PercentageDifference: round1(diff),
		IsAboveAverage:       regionValue >= stateAverage,
		Rank:                 rank,
		TotalRegions:         len(ranking),
	}
}

type regionAverage struct {
	regionID uint
	avg      float64
}

func rankRegions(rows []models.MonthlyPerformance, m Metric) []regionAverage {
	var order []uint
	groups := make(map[uint][]models.MonthlyPerformance)
	for _, r := range rows {
		if _, seen := groups[r.RegionID]; !seen {
			order = append(order, r.RegionID)
		}
		groups[r.RegionID] = append(groups[r.RegionID], r)
	}

	out := make([]regionAverage, 0, len(order))
	for _, id := range order {
		out = append(out, regionAverage{regionID: id, avg: average(groups[id], m)})
	}
	slices.SortStableFunc(out, func(a, b regionAverage) int {
		switch {
		case a.avg > b.avg:
			return -1
		case a.avg < b.avg:
			return 1
		default:
			return 0
		}
	})
	return out
}

// average counts missing values as zero.
func average(rows []models.MonthlyPerformance, m Metric) float64 {
	if len(rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rows {
		sum += m.Value(r)
	}
	return sum / float64(len(rows))
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
