package calculation

import (
	"fmt"

	"github.com/rpgo/household-planner/pkg/money"
	"github.com/shopspring/decimal"
)

func (e *CashFlowEngine) yearSummary(y *yearLedger, itemized decimal.Decimal) YearIncomeSummary {
	return YearIncomeSummary{
		Year:                   y.annual.Year,
		FilingStatus:           e.plan.FilingStatus,
		State:                  e.plan.HomeState(),
		OrdinaryIncome:         y.ordinaryIncome,
		CapitalGains:           y.capitalGains,
		QualifiedDividends:     y.qualifiedDividends,
		InvestmentIncome:       money.Sum(y.capitalGains, y.qualifiedDividends, y.ordinaryDividends),
		ItemizedDeductions:     itemized,
		WithheldTax:            y.withheld,
		EarlyWithdrawalPenalty: y.penalty,
	}
}

// itemizedDeductions totals the itemizable amounts; stateTax feeds the capped SALT deduction
func (e *CashFlowEngine) itemizedDeductions(mortgageInterest, stateTax decimal.Decimal) decimal.Decimal {
	id := e.plan.TaxSettings.ItemizedDeductions
	total := money.Min(money.NonNegative(id.SALTCap), money.NonNegative(stateTax)).
		Add(money.NonNegative(id.CharitableContributions))
	if id.MortgageInterestDeductible {
		total = total.Add(money.NonNegative(mortgageInterest))
	}
	return total
}

// payEstimatedTax pays the month's installment of the projected annual liability. The
// projection annualizes year-to-date totals in a single pass and leaves SALT out of the
// itemized estimate; December settlement is authoritative.
func (e *CashFlowEngine) payEstimatedTax(st *SimulationState, mc *monthContext) error {
	y := mc.year
	n := mc.at.Month
	projected := e.yearSummary(y, e.itemizedDeductions(money.Annualize(y.mortgageInterest, n), decimal.Zero))
	projected.OrdinaryIncome = money.Annualize(y.ordinaryIncome, n)
	projected.CapitalGains = money.Annualize(y.capitalGains, n)
	projected.QualifiedDividends = money.Annualize(y.qualifiedDividends, n)
	projected.InvestmentIncome = money.Annualize(projected.InvestmentIncome, n)
	projected.EarlyWithdrawalPenalty = money.Annualize(y.penalty, n)
	projected.WithheldTax = money.Annualize(y.withheld, n)

	res, err := e.taxes.Calculate(projected)
	if err != nil {
		return fmt.Errorf("failed to project estimated tax: %w", err)
	}
	target := money.NonNegative(res.TotalTax.Sub(projected.WithheldTax)).
		Mul(decimal.NewFromInt(int64(n))).Div(money.Twelve())
	due := money.Cents(money.NonNegative(target.Sub(y.estimatedPaid)))
	if due.IsZero() {
		return nil
	}

	if shortfall := due.Sub(st.Balances[e.cashAccount]); shortfall.GreaterThan(decimal.Zero) {
		e.fund(st, mc, shortfall)
	}
	pay := money.Cents(money.Min(due, money.NonNegative(st.Balances[e.cashAccount])))
	if pay.LessThan(due) {
		mc.insolvent = true
	}
	if pay.IsZero() {
		return nil
	}
	mc.debit(st, e.cashAccount, pay)
	y.estimatedPaid = y.estimatedPaid.Add(pay)
	mc.month.EstimatedTaxPaid = mc.month.EstimatedTaxPaid.Add(pay)
	return nil
}

// settleYear reconciles the year's liability against withholding and estimates. Funding a
// balance due can add ordinary income and penalties, so the liability is recomputed until
// nothing further is due, funding runs out, or MaxSettlementIterations is reached.
func (e *CashFlowEngine) settleYear(st *SimulationState, mc *monthContext) error {
	y := mc.year
	paid := decimal.Zero
	stateTax := decimal.Zero
	settled := false
	rounds := 0

	var res TaxResult
	for rounds < MaxSettlementIterations {
		rounds++
		var err error
		res, err = e.taxes.Calculate(e.yearSummary(y, e.itemizedDeductions(y.mortgageInterest, stateTax)))
		if err != nil {
			return fmt.Errorf("failed to calculate %d tax: %w", y.annual.Year, err)
		}
		stateTax = res.StateIncomeTax

		due := money.Cents(res.TotalTax.Sub(money.Sum(y.withheld, y.estimatedPaid, paid)))
		e.logger.Debugf("settlement %d round %d: total %s, due %s", y.annual.Year, rounds,
			res.TotalTax.StringFixed(2), due.StringFixed(2))
		if due.LessThanOrEqual(decimal.Zero) {
			settled = true
			break
		}

		if shortfall := due.Sub(st.Balances[e.cashAccount]); shortfall.GreaterThan(decimal.Zero) {
			e.fund(st, mc, shortfall)
		}
		pay := money.Cents(money.Min(due, money.NonNegative(st.Balances[e.cashAccount])))
		if pay.GreaterThan(decimal.Zero) {
			mc.debit(st, e.cashAccount, pay)
			paid = paid.Add(pay)
		}
		if pay.LessThan(due) {
			mc.insolvent = true
			break
		}
	}
	if !settled && !mc.insolvent {
		e.logger.Warnf("tax settlement for %d did not converge after %d rounds", y.annual.Year, rounds)
	}

	refund := decimal.Zero
	if net := res.TotalTax.Sub(money.Sum(y.withheld, y.estimatedPaid, paid)); net.LessThan(decimal.Zero) {
		refund = money.Cents(net.Neg())
		mc.credit(st, e.cashAccount, refund)
	}

	a := &y.annual
	a.TaxFederal = res.FederalIncomeTax
	a.TaxCapitalGains = res.CapitalGainsTax
	a.TaxState = res.StateIncomeTax
	a.TaxNIIT = res.NIITTax
	a.TaxAMT = res.AMTTax
	a.TaxPenalties = res.EarlyWithdrawalPenalty
	a.TaxTotal = res.TotalTax
	a.DeductionUsed = res.DeductionUsed
	a.TaxableOrdinaryIncome = res.TaxableOrdinaryIncome
	a.InvestmentIncome = money.Cents(money.Sum(y.capitalGains, y.qualifiedDividends, y.ordinaryDividends))
	a.MAGI = res.AGI
	a.TaxPayment = paid
	a.TaxRefund = refund
	a.SettlementRounds = rounds
	a.SettlementSettled = settled
	mc.month.TaxSettlement = paid.Sub(refund)

	st.MAGIHistory[a.Year] = res.AGI
	return nil
}
