package datagov

import (
	"hash/fnv"
	"math/rand/v2"
	"nregastats/internal/registry"
)

// GenerateMock returns one synthetic record per registry entry for period p.
// Values are pseudo-random but stable for a given (code, period), and fall in
// the ranges of real district data.
func GenerateMock(entries []registry.Entry, state string, p Period) []RawRecord {
	records := make([]RawRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, mockRecord(e, state, p))
	}
	return records
}

func mockRecord(e registry.Entry, state string, p Period) RawRecord {
	r := rand.New(rand.NewPCG(seed(e.Code, p), uint64(p.Year)<<8|uint64(p.Month)))

	between := func(lo, hi int) int { return lo + r.IntN(hi-lo) }

	expenditure := between(2_000_000, 12_000_000)
	utilization := between(60, 100) // percent
	approved := float64(expenditure) * 100 / float64(utilization)

	return RawRecord{
		DistrictCode:         StringField(e.Code),
		DistrictName:         StringField(e.NameEn),
		StateName:            StringField(state),
		Month:                NumberField(p.Month),
		FinYear:              NumberField(p.Year),
		JobCardsIssued:       NumberField(between(10_000, 60_000)),
		IndividualsWorked:    NumberField(between(5_000, 35_000)),
		PersonDays:           NumberField(between(100_000, 600_000)),
		AverageWage:          NumberField(between(200, 300)),
		CompletedWorks:       NumberField(between(100, 600)),
		OngoingWorks:         NumberField(between(50, 350)),
		TotalExpenditure:     NumberField(expenditure),
		ApprovedLabourBudget: NumberField(approved),
	}
}

func seed(code string, p Period) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(code))
	_, _ = h.Write([]byte(p.String()))
	return h.Sum64()
}
