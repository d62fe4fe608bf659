package calculation

import (
	"testing"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/pkg/dateutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func decPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

// assertMoney compares amounts to the cent
func assertMoney(t *testing.T, expected float64, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, expected, actual.InexactFloat64(), 0.01, msgAndArgs...)
}

// testPlan is a single-person plan with one cash account and no cash flows
func testPlan() *domain.Plan {
	return &domain.Plan{
		Name: "test",
		People: domain.People{
			Primary: domain.Person{Name: "Alex", Birthday: "1970-01", State: "TX"},
		},
		FilingStatus: domain.FilingSingle,
		Accounts: []domain.Account{
			{Name: "Checking", Type: domain.AccountCash, Owner: domain.OwnerPrimary, Balance: dec(50000)},
		},
		WithdrawalStrategy: domain.WithdrawalStrategy{RMDSatisfiedFirst: true},
		RMDs:               domain.RMDSettings{RMDStartAge: 73},
		TaxSettings: domain.TaxSettings{
			BracketYear:        2026,
			ItemizedDeductions: domain.ItemizedDeductions{SALTCap: dec(10000)},
		},
		PlanSettings: domain.PlanSettings{
			PlanStart:                   "2026-01",
			PlanEnd:                     "2026-12",
			InflationRate:               decimal.Zero,
			DefaultDividendTaxTreatment: domain.DividendCapitalGains,
		},
	}
}

// newTestMonth opens a month against st outside of an engine run
func newTestMonth(st *SimulationState, at string, ages OwnerAges) *monthContext {
	ym := dateutil.MustParseYearMonth(at)
	return &monthContext{
		at:    ym,
		ages:  ages,
		month: &domain.MonthResult{Year: ym.Year, Month: ym.Month},
		year:  newYearLedger(ym.Year, st),
		paid:  make(map[string]decimal.Decimal),
	}
}

func yearsOld(years int) OwnerAges {
	return OwnerAges{PrimaryMonths: years * 12}
}
