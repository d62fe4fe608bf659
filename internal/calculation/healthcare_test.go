package calculation

import (
	"testing"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/pkg/dateutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHealthcare() domain.Healthcare {
	return domain.Healthcare{
		PreMedicare: []domain.PreMedicareCoverage{
			{Owner: domain.OwnerPrimary, MonthlyPremium: dec(800), AnnualOutOfPocket: dec(2400), StartDate: "start", EndDate: "end"},
		},
		PostMedicare: []domain.PostMedicareCoverage{
			{
				Owner:                    domain.OwnerPrimary,
				PartBMonthlyPremium:      dec(185),
				SupplementMonthlyPremium: dec(150),
				PartDMonthlyPremium:      dec(40),
				AnnualOutOfPocket:        dec(1200),
			},
		},
		IRMAA: domain.IRMAASettings{Enabled: true, LookbackYears: 2},
	}
}

func TestHealthcareModelSwitchesAt65(t *testing.T) {
	tl := Timeline{Start: dateutil.MustParseYearMonth("2026-01"), End: dateutil.MustParseYearMonth("2040-12"), InflationRate: decimal.Zero}
	hm, err := NewHealthcareModel(testHealthcare(), tl)
	require.NoError(t, err)
	taxes := NewTaxCalculator(domain.TaxSettings{}, decimal.Zero)
	at := dateutil.MustParseYearMonth("2030-06")

	tests := []struct {
		name   string
		months int
		magi   map[int]decimal.Decimal
		total  float64
		irmaa  float64
	}{
		{"pre-Medicare just before 65", 65*12 - 1, nil, 1000, 0},
		{"post-Medicare at 65 without history", 65 * 12, nil, 475, 0},
		{"post-Medicare with lookback MAGI", 66 * 12, map[int]decimal.Decimal{2028: dec(150000)}, 475 + 185 + 33, 218},
		{"lookback uses the configured year only", 66 * 12, map[int]decimal.Decimal{2029: dec(900000)}, 475, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost, err := hm.MonthlyCost(at, OwnerAges{PrimaryMonths: tt.months}, domain.FilingSingle, taxes, tt.magi)
			require.NoError(t, err)
			assertMoney(t, tt.total, cost.Total)
			assertMoney(t, tt.irmaa, cost.IRMAA)
		})
	}
}

func TestHealthcareModelDisabledIRMAA(t *testing.T) {
	hc := testHealthcare()
	hc.IRMAA.Enabled = false
	tl := Timeline{Start: dateutil.MustParseYearMonth("2026-01"), End: dateutil.MustParseYearMonth("2040-12")}
	hm, err := NewHealthcareModel(hc, tl)
	require.NoError(t, err)

	cost, err := hm.MonthlyCost(dateutil.MustParseYearMonth("2030-01"), OwnerAges{PrimaryMonths: 70 * 12}, domain.FilingSingle,
		NewTaxCalculator(domain.TaxSettings{}, decimal.Zero), map[int]decimal.Decimal{2028: dec(900000)})
	require.NoError(t, err)
	assert.True(t, cost.IRMAA.IsZero())
}
