package analytics_test

import (
	"math/rand/v2"
	"nregastats/internal/analytics"
	"nregastats/internal/models"
	"nregastats/internal/testhelpers"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func row(regionID uint, month, year int) models.MonthlyPerformance {
	return models.MonthlyPerformance{RegionID: regionID, Month: month, Year: year}
}

func withPersons(p models.MonthlyPerformance, n int64) models.MonthlyPerformance {
	p.PersonsWorked = testhelpers.Int64(n)
	return p
}

var _ = Describe("EfficiencyScore", func() {
	It("weights the four sub-scores", func() {
		// 80*0.30 + 50*0.25 + 100*0.25 (16.66 days, capped) + 75*0.20 = 76.5
		p := models.MonthlyPerformance{
			BudgetUtilization:   testhelpers.Float64(80),
			JobCardsIssued:      testhelpers.Int64(1000),
			PersonsWorked:       testhelpers.Int64(500),
			PersonDaysGenerated: testhelpers.Int64(8330),
			WorksCompleted:      testhelpers.Int64(30),
			WorksOngoing:        testhelpers.Int64(10),
		}
		Expect(analytics.EfficiencyScore(p)).To(Equal(77))
	})

	It("is zero for an empty row", func() {
		Expect(analytics.EfficiencyScore(models.MonthlyPerformance{})).To(BeZero())
	})

	It("caps the employment rate at one hundred", func() {
		p := models.MonthlyPerformance{
			JobCardsIssued: testhelpers.Int64(10),
			PersonsWorked:  testhelpers.Int64(1000),
		}
		// employment 100 * 0.25, person days 0
		Expect(analytics.EfficiencyScore(p)).To(Equal(25))
	})

	It("stays within 0 and 100 for any input", func() {
		r := rand.New(rand.NewPCG(1, 2))
		n := func() *int64 { return testhelpers.Int64(r.Int64N(2_000_000) - 100_000) }
		f := func() *float64 { return testhelpers.Float64(r.Float64()*400 - 100) }

		for range 2000 {
			p := models.MonthlyPerformance{
				JobCardsIssued:      n(),
				PersonsWorked:       n(),
				PersonDaysGenerated: n(),
				WorksCompleted:      n(),
				WorksOngoing:        n(),
				BudgetUtilization:   f(),
			}
			score := analytics.EfficiencyScore(p)
			Expect(score).To(BeNumerically(">=", 0))
			Expect(score).To(BeNumerically("<=", 100))
		}
	})
})

var _ = Describe("EmploymentRate", func() {
	It("is zero when no job cards were issued", func() {
		p := models.MonthlyPerformance{JobCardsIssued: testhelpers.Int64(0), PersonsWorked: testhelpers.Int64(40)}
		Expect(analytics.EmploymentRate(p)).To(BeZero())
		Expect(analytics.EmploymentRate(models.MonthlyPerformance{PersonsWorked: testhelpers.Int64(40)})).To(BeZero())
	})

	It("is not capped", func() {
		p := models.MonthlyPerformance{JobCardsIssued: testhelpers.Int64(100), PersonsWorked: testhelpers.Int64(150)}
		Expect(analytics.EmploymentRate(p)).To(Equal(150.0))
	})
})

var _ = Describe("RatingFor", func() {
	DescribeTable("classifies score and utilization",
		func(score int, utilization float64, want analytics.Rating) {
			Expect(analytics.RatingFor(score, utilization)).To(Equal(want))
		},
		Entry("good", 75, 80.0, analytics.RatingGood),
		Entry("high score, modest utilization", 80, 70.0, analytics.RatingAverage),
		Entry("low score", 49, 95.0, analytics.RatingNeedsImprovement),
		Entry("low utilization", 90, 59.9, analytics.RatingNeedsImprovement),
		Entry("middle", 60, 65.0, analytics.RatingAverage),
	)
})

var _ = Describe("PerformanceMetrics", func() {
	good := models.MonthlyPerformance{
		BudgetUtilization:   testhelpers.Float64(90),
		JobCardsIssued:      testhelpers.Int64(100),
		PersonsWorked:       testhelpers.Int64(90),
		PersonDaysGenerated: testhelpers.Int64(900),
		WorksCompleted:      testhelpers.Int64(90),
		WorksOngoing:        testhelpers.Int64(10),
	}
	weak := models.MonthlyPerformance{
		BudgetUtilization: testhelpers.Float64(40),
		JobCardsIssued:    testhelpers.Int64(100),
		PersonsWorked:     testhelpers.Int64(20),
	}

	It("is stable without a previous period", func() {
		m := analytics.PerformanceMetrics(good, nil)
		Expect(m.TrendDirection).To(Equal(analytics.DirectionStable))
		Expect(m.Rating).To(Equal(analytics.RatingGood))
		Expect(m.EmploymentRate).To(Equal(90.0))
		Expect(m.UtilizationScore).To(Equal(90.0))
	})

	It("compares efficiency against the previous period", func() {
		Expect(analytics.PerformanceMetrics(good, &weak).TrendDirection).To(Equal(analytics.DirectionUp))
		Expect(analytics.PerformanceMetrics(weak, &good).TrendDirection).To(Equal(analytics.DirectionDown))
		Expect(analytics.PerformanceMetrics(good, &good).TrendDirection).To(Equal(analytics.DirectionStable))
	})
})

var _ = Describe("TrendOf", func() {
	It("reports a doubling as up 100%", func() {
		rows := []models.MonthlyPerformance{
			withPersons(row(1, 3, 2025), 2000),
			withPersons(row(1, 1, 2025), 1000),
			withPersons(row(1, 2, 2025), 1500),
		}

		t := analytics.TrendOf(rows, analytics.MetricPersonsWorked)
		Expect(t.Direction).To(Equal(analytics.DirectionUp))
		Expect(t.ChangePercent).To(Equal(100.0))
		Expect(t.Values).To(Equal([]float64{1000, 1500, 2000}))
	})

	It("sorts across years", func() {
		rows := []models.MonthlyPerformance{
			withPersons(row(1, 1, 2025), 900),
			withPersons(row(1, 12, 2024), 1000),
		}

		t := analytics.TrendOf(rows, analytics.MetricPersonsWorked)
		Expect(t.Direction).To(Equal(analytics.DirectionDown))
		Expect(t.ChangePercent).To(Equal(-10.0))
	})

	It("treats changes within 5% as stable and rounds to one decimal", func() {
		rows := []models.MonthlyPerformance{
			withPersons(row(1, 1, 2025), 3000),
			withPersons(row(1, 2, 2025), 3101),
		}

		t := analytics.TrendOf(rows, analytics.MetricPersonsWorked)
		Expect(t.Direction).To(Equal(analytics.DirectionStable))
		Expect(t.ChangePercent).To(Equal(3.4))
	})

	It("reports 0% when the first value is zero", func() {
		rows := []models.MonthlyPerformance{
			withPersons(row(1, 1, 2025), 0),
			withPersons(row(1, 2, 2025), 500),
		}

		t := analytics.TrendOf(rows, analytics.MetricPersonsWorked)
		Expect(t.ChangePercent).To(BeZero())
		Expect(t.Direction).To(Equal(analytics.DirectionStable))
	})

	It("is stable with fewer than two periods", func() {
		t := analytics.TrendOf([]models.MonthlyPerformance{withPersons(row(1, 1, 2025), 10)}, analytics.MetricPersonsWorked)
		Expect(t).To(Equal(analytics.Trend{Direction: analytics.DirectionStable}))
	})
})

var _ = Describe("Compare", func() {
	// A averages 300, B 100, C 200
	all := []models.MonthlyPerformance{
		withPersons(row(1, 1, 2025), 300),
		withPersons(row(2, 1, 2025), 100),
		withPersons(row(3, 1, 2025), 150),
		withPersons(row(3, 2, 2025), 250),
	}
	regionRows := func(id uint) []models.MonthlyPerformance {
		var out []models.MonthlyPerformance
		for _, r := range all {
			if r.RegionID == id {
				out = append(out, r)
			}
		}
		return out
	}

	It("ranks regions by their own average", func() {
		c := analytics.Compare(regionRows(3), analytics.MetricPersonsWorked, all)
		Expect(c.RegionValue).To(Equal(200.0))
		Expect(c.Rank).To(Equal(2))
		Expect(c.TotalRegions).To(Equal(3))

		Expect(analytics.Compare(regionRows(1), analytics.MetricPersonsWorked, all).Rank).To(Equal(1))
		Expect(analytics.Compare(regionRows(2), analytics.MetricPersonsWorked, all).Rank).To(Equal(3))
	})

	It("averages the state over rows rather than regions", func() {
		c := analytics.Compare(regionRows(1), analytics.MetricPersonsWorked, all)
		Expect(c.StateAverage).To(Equal(200.0))
		Expect(c.PercentageDifference).To(Equal(50.0))
		Expect(c.IsAboveAverage).To(BeTrue())

		c = analytics.Compare(regionRows(2), analytics.MetricPersonsWorked, all)
		Expect(c.PercentageDifference).To(Equal(-50.0))
		Expect(c.IsAboveAverage).To(BeFalse())
	})

	It("keeps first-seen order on ties", func() {
		tied := []models.MonthlyPerformance{
			withPersons(row(7, 1, 2025), 100),
			withPersons(row(4, 1, 2025), 100),
		}
		Expect(analytics.Compare(tied[1:], analytics.MetricPersonsWorked, tied).Rank).To(Equal(2))
		Expect(analytics.Compare(tied[:1], analytics.MetricPersonsWorked, tied).Rank).To(Equal(1))
	})

	It("counts missing values as zero and survives a zero average", func() {
		empty := []models.MonthlyPerformance{row(1, 1, 2025), row(2, 1, 2025)}
		c := analytics.Compare(empty[:1], analytics.MetricExpenditure, empty)
		Expect(c.StateAverage).To(BeZero())
		Expect(c.PercentageDifference).To(BeZero())
		Expect(c.IsAboveAverage).To(BeTrue())
	})

	It("ranks a region without rows as zero", func() {
		c := analytics.Compare(nil, analytics.MetricPersonsWorked, all)
		Expect(c.Rank).To(BeZero())
		Expect(c.RegionValue).To(BeZero())
	})
})

var _ = Describe("KeyTrends and KeyComparisons", func() {
	It("covers the reported metrics", func() {
		rows := []models.MonthlyPerformance{
			testhelpers.Performance(1, 1, 2025, 100, 50, 400, 60),
			testhelpers.Performance(1, 2, 2025, 100, 100, 400, 70),
		}

		trends := analytics.KeyTrends(rows)
		Expect(trends).To(HaveLen(4))
		Expect(trends[analytics.MetricPersonsWorked].ChangePercent).To(Equal(100.0))
		Expect(trends[analytics.MetricBudgetUtilization].ChangePercent).To(Equal(16.7))

		comparisons := analytics.KeyComparisons(rows, rows)
		Expect(comparisons).To(HaveLen(5))
		Expect(comparisons).To(HaveKey(analytics.MetricPersonDaysGenerated))
		Expect(comparisons[analytics.MetricPersonsWorked].Rank).To(Equal(1))
	})
})

var _ = Describe("LatestRanking", func() {
	It("orders regions with data by persons worked", func() {
		regions := []models.Region{
			{ID: 1, Code: "1201", NameEn: "Ambala"},
			{ID: 2, Code: "1213", NameEn: "Bhiwani"},
			{ID: 3, Code: "1209", NameEn: "Faridabad"},
		}
		latest := map[uint]models.MonthlyPerformance{
			1: withPersons(row(1, 1, 2025), 10),
			3: withPersons(row(3, 1, 2025), 30),
		}

		ranked := analytics.LatestRanking(regions, latest)
		Expect(ranked).To(HaveLen(2))
		Expect(ranked[0].Code).To(Equal("1209"))
		Expect(ranked[1].Code).To(Equal("1201"))
		Expect(ranked[1].Expenditure).To(BeZero())
	})
})

var _ = Describe("ParseMetric", func() {
	It("accepts known columns only", func() {
		m, err := analytics.ParseMetric("expenditure")
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(Equal(analytics.MetricExpenditure))

		_, err = analytics.ParseMetric("salary")
		Expect(err).To(HaveOccurred())
	})
})
