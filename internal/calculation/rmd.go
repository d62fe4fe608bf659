package calculation

import (
	"github.com/rpgo/household-planner/pkg/money"
	"github.com/shopspring/decimal"
)

// UniformLifetimeDivisor returns the IRS Uniform Lifetime Table divisor for a whole age.
// Ages past the end of the table use its last divisor; ok is false below the first age.
func UniformLifetimeDivisor(age int) (divisor decimal.Decimal, ok bool) {
	if age < uniformLifetimeMinAge {
		return decimal.Zero, false
	}
	idx := age - uniformLifetimeMinAge
	if idx >= len(uniformLifetimeDivisors) {
		idx = len(uniformLifetimeDivisors) - 1
	}
	return decimal.NewFromFloat(uniformLifetimeDivisors[idx]), true
}

// RequiredMinimumDistribution is the prior year-end balance divided by the age's divisor
func RequiredMinimumDistribution(priorYearEndBalance decimal.Decimal, ageYears float64) decimal.Decimal {
	divisor, ok := UniformLifetimeDivisor(int(ageYears))
	if !ok || priorYearEndBalance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return money.Cents(priorYearEndBalance.Div(divisor))
}

// applyRMDs withdraws each configured account's requirement into the destination account
func (e *CashFlowEngine) applyRMDs(st *SimulationState, mc *monthContext) {
	settings := e.plan.RMDs
	if !settings.Enabled {
		return
	}
	dest := settings.DestinationAccount
	if dest == "" {
		dest = e.cashAccount
	}
	for _, name := range settings.Accounts {
		acct, ok := e.accounts[name]
		if !ok || !acct.Type.IsPreTax() {
			continue
		}
		age := mc.ages.Years(acct.Owner)
		if age < float64(settings.RMDStartAge) {
			continue
		}
		required := RequiredMinimumDistribution(st.PriorYearEnd[name], age)
		amount := money.Min(required, money.NonNegative(st.Balances[name]))
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		mc.move(st, name, dest, amount)
		e.addBasis(st, dest, amount)
		mc.year.ordinaryIncome = mc.year.ordinaryIncome.Add(amount)
		mc.month.RMDWithdrawals = mc.month.RMDWithdrawals.Add(amount)
		e.logger.Debugf("RMD %d from %s: %s", mc.at.Year, name, amount.StringFixed(2))
	}
}
