package analytics

import (
	"nregastats/internal/models"
	"slices"
)

type RankedRegion struct {
	Code              string  `json:"code"`
	NameEn            string  `json:"nameEn"`
	NameHi            string  `json:"nameHi"`
	PersonsWorked     float64 `json:"personsWorked"`
	Expenditure       float64 `json:"expenditure"`
	BudgetUtilization float64 `json:"budgetUtilization"`
}

// LatestRanking orders the regions that have a latest row by persons worked,
// highest first. latest is keyed by region ID.
func LatestRanking(regions []models.Region, latest map[uint]models.MonthlyPerformance) []RankedRegion {
	out := make([]RankedRegion, 0, len(latest))
	for _, r := range regions {
		p, ok := latest[r.ID]
		if !ok {
			continue
		}
		out = append(out, RankedRegion{
			Code:              r.Code,
			NameEn:            r.NameEn,
			NameHi:            r.NameHi,
			PersonsWorked:     value(p.PersonsWorked),
			Expenditure:       value(p.Expenditure),
			BudgetUtilization: value(p.BudgetUtilization),
		})
	}

	slices.SortStableFunc(out, func(a, b RankedRegion) int {
		switch {
		case a.PersonsWorked > b.PersonsWorked:
			return -1
		case a.PersonsWorked < b.PersonsWorked:
			return 1
		default:
			return 0
		}
	})
	return out
}
