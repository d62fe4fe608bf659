package calculation

import (
	"testing"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/pkg/dateutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTimeline(t *testing.T) Timeline {
	t.Helper()
	tl, err := NewTimeline(domain.PlanSettings{PlanStart: "2026-01", PlanEnd: "2030-12", InflationRate: dec(0.03)})
	require.NoError(t, err)
	return tl
}

func TestNewTimelineErrors(t *testing.T) {
	_, err := NewTimeline(domain.PlanSettings{PlanStart: "2026-13", PlanEnd: "2030-12"})
	assert.Error(t, err)

	_, err = NewTimeline(domain.PlanSettings{PlanStart: "2030-01", PlanEnd: "2026-12"})
	assert.Error(t, err)
}

func TestWindowOccurrence(t *testing.T) {
	tl := testTimeline(t)

	tests := []struct {
		name     string
		start    string
		end      string
		freq     domain.Frequency
		prorate  bool
		at       string
		fires    bool
		fraction float64
	}{
		{"monthly inside window", "start", "end", domain.FrequencyMonthly, false, "2027-05", true, 1},
		{"monthly before start", "2027-06", "end", domain.FrequencyMonthly, false, "2027-05", false, 0},
		{"monthly after end", "", "2027-04", domain.FrequencyMonthly, false, "2027-05", false, 0},
		{"annual fires in start month", "2026-03", "end", domain.FrequencyAnnual, false, "2028-03", true, 1},
		{"annual skips other months", "2026-03", "end", domain.FrequencyAnnual, false, "2028-04", false, 0},
		{"prorated annual fires monthly", "start", "end", domain.FrequencyAnnual, true, "2028-04", true, 1.0 / 12},
		{"one time at start", "2027-02", "end", domain.FrequencyOneTime, false, "2027-02", true, 1},
		{"one time only once", "2027-02", "end", domain.FrequencyOneTime, false, "2028-02", false, 0},
		{"empty frequency is monthly", "start", "end", "", false, "2029-09", true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := tl.Resolve(tt.start, tt.end, tt.freq)
			require.NoError(t, err)
			w.ProrateAnnual = tt.prorate

			fires, frac := w.Occurrence(dateutil.MustParseYearMonth(tt.at))
			assert.Equal(t, tt.fires, fires)
			assert.InDelta(t, tt.fraction, frac.InexactFloat64(), 1e-9)
		})
	}
}

func TestResolveInvalidToken(t *testing.T) {
	_, err := testTimeline(t).Resolve("soon", "end", domain.FrequencyMonthly)
	assert.Error(t, err)
}

func TestChangeMultiplier(t *testing.T) {
	inflation := dec(0.03)

	tests := []struct {
		name     string
		cot      domain.ChangeOverTime
		rate     float64
		years    int
		expected float64
	}{
		{"fixed", domain.ChangeFixed, 0.10, 5, 1},
		{"increase", domain.ChangeIncrease, 0.10, 2, 1.21},
		{"decrease", domain.ChangeDecrease, 0.10, 2, 0.81},
		{"match inflation", domain.ChangeMatchInflation, 0, 1, 1.03},
		{"inflation plus", domain.ChangeInflationPlus, 0.02, 2, 1.05 * 1.05},
		{"inflation minus", domain.ChangeInflationMinus, 0.01, 1, 1.02},
		{"first plan year", domain.ChangeIncrease, 0.10, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ChangeMultiplier(tt.cot, decPtr(tt.rate), inflation, tt.years)
			assert.InDelta(t, tt.expected, m.InexactFloat64(), 1e-9)
		})
	}
}

func TestAmountAtUsesCalendarYearsElapsed(t *testing.T) {
	tl := testTimeline(t)
	base := dec(1000)

	assertMoney(t, 1000, tl.AmountAt(base, domain.ChangeMatchInflation, nil, dateutil.MustParseYearMonth("2026-12")))
	assertMoney(t, 1030, tl.AmountAt(base, domain.ChangeMatchInflation, nil, dateutil.MustParseYearMonth("2027-01")))
	assertMoney(t, 1060.90, tl.AmountAt(base, domain.ChangeMatchInflation, nil, dateutil.MustParseYearMonth("2028-06")))
}

func TestOwnerAges(t *testing.T) {
	ages := OwnerAges{PrimaryMonths: 660, SpouseMonths: 600, HasSpouse: true}
	assert.Equal(t, 600, ages.Months(domain.OwnerSpouse))
	assert.Equal(t, 660, ages.Months(domain.OwnerJoint))
	assert.InDelta(t, 55.0, ages.Years(domain.OwnerPrimary), 1e-9)

	single := OwnerAges{PrimaryMonths: 660, SpouseMonths: 600}
	assert.Equal(t, 660, single.Months(domain.OwnerSpouse), "spouse falls back to primary without one")
}
