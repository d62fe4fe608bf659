package calculation

import (
	"testing"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rothPlan(conversions ...domain.RothConversion) *domain.Plan {
	plan := testPlan()
	plan.Accounts = append(plan.Accounts,
		domain.Account{Name: "IRA", Type: domain.AccountTraditionalIRA, Owner: domain.OwnerPrimary, Balance: dec(50000)},
		domain.Account{Name: "Roth", Type: domain.AccountRothIRA, Owner: domain.OwnerPrimary},
	)
	plan.RothConversions = conversions
	return plan
}

func TestRothConversionFillToBracket(t *testing.T) {
	fill := domain.RothConversion{Name: "Fill 22", FromAccount: "IRA", ToAccount: "Roth", StartDate: "start", EndDate: "end", FillToBracket: "22%"}

	tests := []struct {
		name     string
		month    string
		ytd      float64
		expected float64
	}{
		{"december fills remaining room", "2026-12", 100000, 3350},
		{"november does nothing", "2026-11", 100000, 0},
		{"no room above ceiling", "2026-12", 110000, 0},
		{"capped by source balance", "2026-12", 0, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewCashFlowEngine(rothPlan(fill))
			require.NoError(t, err)
			st := NewSimulationState(e.plan)
			mc := newTestMonth(st, tt.month, yearsOld(56))
			mc.year.ordinaryIncome = dec(tt.ytd)

			require.NoError(t, e.applyRothConversions(st, mc))
			assertMoney(t, tt.expected, mc.month.RothConversions)
			assertMoney(t, tt.expected, st.Balances["Roth"])
			assertMoney(t, tt.expected, st.RothBasis["Roth"].TotalBasis)
			assertMoney(t, tt.ytd+tt.expected, mc.year.ordinaryIncome)
		})
	}
}

func TestRothConversionFixedAmount(t *testing.T) {
	fixed := domain.RothConversion{Name: "Fixed", FromAccount: "IRA", ToAccount: "Roth", AnnualAmount: decPtr(12000), StartDate: "2026-03", EndDate: "end"}
	e, err := NewCashFlowEngine(rothPlan(fixed))
	require.NoError(t, err)

	st := NewSimulationState(e.plan)
	before := newTestMonth(st, "2026-02", yearsOld(56))
	require.NoError(t, e.applyRothConversions(st, before))
	assert.True(t, before.month.RothConversions.IsZero())

	mc := newTestMonth(st, "2026-03", yearsOld(56))
	require.NoError(t, e.applyRothConversions(st, mc))
	assertMoney(t, 1000, mc.month.RothConversions)
	assertMoney(t, 49000, st.Balances["IRA"])
}

func TestRothConversionsSeePriorConversions(t *testing.T) {
	first := domain.RothConversion{Name: "Fixed", FromAccount: "IRA", ToAccount: "Roth", AnnualAmount: decPtr(24000), StartDate: "start", EndDate: "end"}
	fill := domain.RothConversion{Name: "Fill", FromAccount: "IRA", ToAccount: "Roth", StartDate: "start", EndDate: "end", FillToBracket: "22"}
	e, err := NewCashFlowEngine(rothPlan(first, fill))
	require.NoError(t, err)

	st := NewSimulationState(e.plan)
	mc := newTestMonth(st, "2026-12", yearsOld(56))
	mc.year.ordinaryIncome = dec(100000)

	require.NoError(t, e.applyRothConversions(st, mc))
	assertMoney(t, 3350, mc.month.RothConversions, "fill room shrinks by the fixed conversion")
}

func TestFillToBracketAmount(t *testing.T) {
	assertMoney(t, 3350, FillToBracketAmount(dec(103350), dec(100000)))
	assert.True(t, FillToBracketAmount(dec(103350), dec(200000)).IsZero())
}
