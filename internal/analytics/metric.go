package analytics

import (
	"fmt"
	"nregastats/internal/models"
)

// Metric names a numeric column of MonthlyPerformance.
type Metric string

const (
	MetricJobCardsIssued      Metric = "jobCardsIssued"
	MetricPersonsWorked       Metric = "personsWorked"
	MetricPersonDaysGenerated Metric = "personDaysGenerated"
	MetricAvgWage             Metric = "avgWage"
	MetricWorksCompleted      Metric = "worksCompleted"
	MetricWorksOngoing        Metric = "worksOngoing"
	MetricExpenditure         Metric = "expenditure"
	MetricBudgetUtilization   Metric = "budgetUtilization"
)

var (
	// TrendMetrics are reported on the region detail view.
	TrendMetrics = []Metric{MetricPersonsWorked, MetricExpenditure, MetricWorksCompleted, MetricBudgetUtilization}
	// ComparisonMetrics are reported on the region comparison view.
	ComparisonMetrics = []Metric{MetricPersonsWorked, MetricExpenditure, MetricWorksCompleted, MetricBudgetUtilization, MetricPersonDaysGenerated}
)

func ParseMetric(s string) (Metric, error) {
	m := Metric(s)
	switch m {
	case MetricJobCardsIssued, MetricPersonsWorked, MetricPersonDaysGenerated, MetricAvgWage,
		MetricWorksCompleted, MetricWorksOngoing, MetricExpenditure, MetricBudgetUtilization:
		return m, nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Value reads the metric from p; missing values read as 0.
func (m Metric) Value(p models.MonthlyPerformance) float64 {
	switch m {
	case MetricJobCardsIssued:
		return value(p.JobCardsIssued)
	case MetricPersonsWorked:
		return value(p.PersonsWorked)
	case MetricPersonDaysGenerated:
		return value(p.PersonDaysGenerated)
	case MetricAvgWage:
		return value(p.AvgWage)
	case MetricWorksCompleted:
		return value(p.WorksCompleted)
	case MetricWorksOngoing:
		return value(p.WorksOngoing)
	case MetricExpenditure:
		return value(p.Expenditure)
	case MetricBudgetUtilization:
		return value(p.BudgetUtilization)
	default:
		return 0
	}
}

// KeyTrends computes the trend of every TrendMetric over rows.
func KeyTrends(rows []models.MonthlyPerformance) map[Metric]Trend {
	out := make(map[Metric]Trend, len(TrendMetrics))
	for _, m := range TrendMetrics {
		out[m] = TrendOf(rows, m)
	}
	return out
}

// KeyComparisons compares the region on every ComparisonMetric.
func KeyComparisons(regionRows, allRows []models.MonthlyPerformance) map[Metric]Comparison {
	out := make(map[Metric]Comparison, len(ComparisonMetrics))
	for _, m := range ComparisonMetrics {
		out[m] = Compare(regionRows, m, allRows)
	}
	return out
}
