package calculation

import (
	"testing"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTaxCalculator() *TaxCalculator {
	return NewTaxCalculator(domain.TaxSettings{}, dec(0.025))
}

// TestFederalIncomeTax checks progressive evaluation against the base-year schedules
func TestFederalIncomeTax(t *testing.T) {
	tc := newTestTaxCalculator()

	tests := []struct {
		name     string
		taxable  float64
		status   domain.FilingStatus
		expected float64
	}{
		{"zero income", 0, domain.FilingSingle, 0},
		{"first bracket only", 10000, domain.FilingSingle, 1000},
		{"single through 22%", 100000, domain.FilingSingle, 16914},
		{"joint through 22%", 100000, domain.FilingMarriedJointly, 11828},
		{"surviving spouse uses joint schedule", 100000, domain.FilingQualifyingSurvivingSpouse, 11828},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax, err := tc.FederalIncomeTax(dec(tt.taxable), tt.status, 2026)
			require.NoError(t, err)
			assertMoney(t, tt.expected, tax)
		})
	}
}

func TestIndexFactor(t *testing.T) {
	tc := newTestTaxCalculator()
	assertMoney(t, 15000, mustDeduction(t, tc, 2026))
	assertMoney(t, 15375, mustDeduction(t, tc, 2027))
	assertMoney(t, 15000, mustDeduction(t, tc, 2020), "years before the base year are not deflated")

	pinned := NewTaxCalculator(domain.TaxSettings{UseCurrentBrackets: true, BracketYear: 2026}, dec(0.025))
	assertMoney(t, 15000, mustDeduction(t, pinned, 2035))

	override := NewTaxCalculator(domain.TaxSettings{StandardDeductionOverride: decPtr(20000)}, dec(0.025))
	assertMoney(t, 20000, mustDeduction(t, override, 2030))
}

func mustDeduction(t *testing.T, tc *TaxCalculator, year int) decimal.Decimal {
	t.Helper()
	d, err := tc.StandardDeduction(domain.FilingSingle, year)
	require.NoError(t, err)
	return d
}

func TestCapitalGainsTax(t *testing.T) {
	tc := newTestTaxCalculator()

	tests := []struct {
		name            string
		gains           float64
		ordinaryTaxable float64
		expected        float64
	}{
		{"no gains", 0, 50000, 0},
		{"entirely in zero band", 10000, 20000, 0},
		{"straddles zero and 15% bands", 20000, 40000, 1747.50},
		{"straddles 15% and 20% bands", 10000, 530000, 1830},
		{"entirely above top ceiling", 10000, 600000, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax, err := tc.CapitalGainsTax(dec(tt.gains), dec(tt.ordinaryTaxable), domain.FilingSingle, 2026)
			require.NoError(t, err)
			assertMoney(t, tt.expected, tax)
		})
	}
}

func TestNIITAndAMT(t *testing.T) {
	tc := newTestTaxCalculator()

	niit, err := tc.NIIT(dec(50000), dec(220000), domain.FilingSingle, 2026)
	require.NoError(t, err)
	assertMoney(t, 760, niit)

	niit, err = tc.NIIT(dec(50000), dec(150000), domain.FilingSingle, 2026)
	require.NoError(t, err)
	assert.True(t, niit.IsZero(), "AGI under the threshold owes no NIIT")

	tmt, err := tc.TentativeMinimumTax(dec(300000), dec(15000), domain.FilingSingle, 2026)
	require.NoError(t, err)
	assertMoney(t, 51194, tmt)
}

func TestStateIncomeTax(t *testing.T) {
	tc := newTestTaxCalculator()

	tests := []struct {
		name     string
		state    string
		status   domain.FilingStatus
		taxable  float64
		expected float64
	}{
		{"no income tax state", "TX", domain.FilingSingle, 100000, 0},
		{"flat rate state", "PA", domain.FilingSingle, 100000, 3070},
		{"lowercase code", "pa", domain.FilingSingle, 100000, 3070},
		{"unknown state", "ZZ", domain.FilingSingle, 100000, 0},
		{"california single", "CA", domain.FilingSingle, 50000, 1577.56},
		{"california joint doubles thresholds", "CA", domain.FilingMarriedJointly, 50000, 784.88},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertMoney(t, tt.expected, tc.StateIncomeTax(dec(tt.taxable), tt.state, tt.status, 2026))
		})
	}
}

func TestFICA(t *testing.T) {
	tc := newTestTaxCalculator()

	tests := []struct {
		name         string
		wages        float64
		ownerYTD     float64
		householdYTD float64
		expected     float64
	}{
		{"under wage base", 10000, 0, 0, 765},
		{"crosses wage base", 10000, 175000, 175000, 455},
		{"above wage base", 10000, 190000, 195000, 145 + 45},
		{"crosses additional medicare threshold", 10000, 0, 195000, 620 + 145 + 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tc.FICA(dec(tt.wages), dec(tt.ownerYTD), dec(tt.householdYTD), domain.FilingSingle, 2026)
			require.NoError(t, err)
			assertMoney(t, tt.expected, f.Total())
		})
	}
}

func TestIRMAASurcharge(t *testing.T) {
	tc := newTestTaxCalculator()

	tests := []struct {
		name   string
		magi   float64
		status domain.FilingStatus
		partB  float64
		partD  float64
	}{
		{"at first threshold", 106000, domain.FilingSingle, 0, 0},
		{"third tier", 150000, domain.FilingSingle, 185, 33},
		{"top tier", 900000, domain.FilingSingle, 444, 82},
		{"joint second tier", 250000, domain.FilingMarriedJointly, 74, 13},
		{"separate jumps to high tier", 120000, domain.FilingMarriedSeparately, 407, 71},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, d, err := tc.IRMAASurcharge(dec(tt.magi), tt.status, 2026)
			require.NoError(t, err)
			assertMoney(t, tt.partB, b)
			assertMoney(t, tt.partD, d)
		})
	}
}

func TestCalculate(t *testing.T) {
	base := YearIncomeSummary{Year: 2026, FilingStatus: domain.FilingSingle, State: "TX", OrdinaryIncome: dec(115000)}

	t.Run("standard deduction", func(t *testing.T) {
		res, err := newTestTaxCalculator().Calculate(base)
		require.NoError(t, err)
		assertMoney(t, 15000, res.DeductionUsed)
		assertMoney(t, 100000, res.TaxableOrdinaryIncome)
		assertMoney(t, 16914, res.FederalIncomeTax)
		assertMoney(t, 16914, res.TotalTax)
	})

	t.Run("itemized deduction wins when larger", func(t *testing.T) {
		s := base
		s.ItemizedDeductions = dec(20000)
		res, err := newTestTaxCalculator().Calculate(s)
		require.NoError(t, err)
		assertMoney(t, 20000, res.DeductionUsed)
		assertMoney(t, 15814, res.FederalIncomeTax)
	})

	t.Run("penalty is added to total", func(t *testing.T) {
		s := base
		s.EarlyWithdrawalPenalty = dec(1000)
		res, err := newTestTaxCalculator().Calculate(s)
		require.NoError(t, err)
		assertMoney(t, 1000, res.EarlyWithdrawalPenalty)
		assertMoney(t, 17914, res.TotalTax)
	})

	t.Run("federal override rate", func(t *testing.T) {
		tc := NewTaxCalculator(domain.TaxSettings{FederalEffectiveRateOverride: decPtr(0.2)}, decimal.Zero)
		res, err := tc.Calculate(base)
		require.NoError(t, err)
		assertMoney(t, 20000, res.FederalIncomeTax)
	})

	t.Run("capital gains stack on ordinary income", func(t *testing.T) {
		s := base
		s.OrdinaryIncome = dec(55000)
		s.CapitalGains = dec(20000)
		res, err := newTestTaxCalculator().Calculate(s)
		require.NoError(t, err)
		assertMoney(t, 1747.50, res.CapitalGainsTax)
		assertMoney(t, 75000, res.AGI)
	})

	t.Run("unknown filing status", func(t *testing.T) {
		s := base
		s.FilingStatus = "married_filing_whenever"
		_, err := newTestTaxCalculator().Calculate(s)
		assert.ErrorIs(t, err, ErrUnknownFilingStatus)
	})
}

func TestBracketCeiling(t *testing.T) {
	tc := newTestTaxCalculator()

	rate, err := ParseBracketRate("22%")
	require.NoError(t, err)
	assert.True(t, rate.Equal(dec(0.22)))

	ceiling, ok, err := tc.BracketCeiling(domain.FilingSingle, 2026, rate)
	require.NoError(t, err)
	assert.True(t, ok)
	assertMoney(t, 103350, ceiling)

	_, ok, err = tc.BracketCeiling(domain.FilingSingle, 2026, dec(0.37))
	require.NoError(t, err)
	assert.False(t, ok, "top bracket has no ceiling")

	_, err = ParseBracketRate("twenty")
	assert.Error(t, err)
}
