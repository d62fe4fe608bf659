package calculation

import (
	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/pkg/dateutil"
	"github.com/rpgo/household-planner/pkg/money"
	"github.com/shopspring/decimal"
)

var (
	primaryResidenceExclusionJoint  = decimal.NewFromInt(500000)
	primaryResidenceExclusionSingle = decimal.NewFromInt(250000)
)

// RealAssetState is the running value and loan balance of one real asset
type RealAssetState struct {
	Asset           domain.RealAsset
	Value           decimal.Decimal
	MortgageBalance decimal.Decimal
	Sold            bool
}

// NewRealAssetState starts an asset at its current value
func NewRealAssetState(asset domain.RealAsset) *RealAssetState {
	ra := &RealAssetState{Asset: asset, Value: asset.CurrentValue}
	if asset.Mortgage != nil {
		ra.MortgageBalance = money.NonNegative(asset.Mortgage.RemainingBalance)
	}
	return ra
}

// Appreciate grows the value by one month of the asset's change rate
func (ra *RealAssetState) Appreciate(inflation decimal.Decimal) decimal.Decimal {
	annual := AnnualChangeRate(ra.Asset.ChangeOverTime, ra.Asset.ChangeRate, inflation)
	growth := ra.Value.Mul(money.MonthlyRate(annual))
	ra.Value = ra.Value.Add(growth)
	return growth
}

// PropertyTax is one month of property tax on the current value
func (ra *RealAssetState) PropertyTax() decimal.Decimal {
	return money.NonNegative(ra.Value.Mul(ra.Asset.PropertyTaxRate).Div(money.Twelve()))
}

// MortgagePayment is one month's payment split into principal and interest
type MortgagePayment struct {
	Principal decimal.Decimal
	Interest  decimal.Decimal
}

// Total is the cash paid
func (p MortgagePayment) Total() decimal.Decimal { return p.Principal.Add(p.Interest) }

// PayMortgage applies one month's payment. Payments stop once the balance is zero or
// the mortgage end date has passed.
func (ra *RealAssetState) PayMortgage(at dateutil.YearMonth) MortgagePayment {
	m := ra.Asset.Mortgage
	if m == nil || ra.MortgageBalance.LessThanOrEqual(decimal.Zero) {
		return MortgagePayment{}
	}
	if m.EndDate != "" {
		if end, err := dateutil.ParseYearMonth(m.EndDate); err == nil && at.After(end) {
			return MortgagePayment{}
		}
	}
	interest := ra.MortgageBalance.Mul(m.InterestRate).Div(money.Twelve())
	principal := money.Min(ra.MortgageBalance, money.NonNegative(m.Payment.Sub(interest)))
	ra.MortgageBalance = ra.MortgageBalance.Sub(principal)
	return MortgagePayment{Principal: principal, Interest: interest}
}

// SaleResult is the outcome of selling a real asset
type SaleResult struct {
	Proceeds       decimal.Decimal
	MortgagePayoff decimal.Decimal
	NetCash        decimal.Decimal
	Gain           decimal.Decimal
}

// Sell removes the asset from the household, repays its loan and computes the taxable gain
func (ra *RealAssetState) Sell(amount, fees decimal.Decimal, fs domain.FilingStatus) SaleResult {
	proceeds := money.NonNegative(amount.Sub(fees))
	payoff := money.Min(proceeds, ra.MortgageBalance)
	ra.MortgageBalance = ra.MortgageBalance.Sub(payoff)
	ra.Sold = true
	ra.Value = decimal.Zero
	return SaleResult{
		Proceeds:       proceeds,
		MortgagePayoff: payoff,
		NetCash:        proceeds.Sub(payoff),
		Gain:           SaleGain(proceeds, ra.Asset.PurchasePrice, ra.Asset.PrimaryResidence, fs),
	}
}

// SaleGain is max(0, proceeds - purchase price - exclusion); the exclusion applies to a
// primary residence only.
func SaleGain(proceeds, purchasePrice decimal.Decimal, primaryResidence bool, fs domain.FilingStatus) decimal.Decimal {
	gain := proceeds.Sub(purchasePrice)
	if primaryResidence {
		exclusion := primaryResidenceExclusionSingle
		if fs == domain.FilingMarriedJointly {
			exclusion = primaryResidenceExclusionJoint
		}
		gain = gain.Sub(exclusion)
	}
	return money.NonNegative(gain)
}

// advanceRealAssets applies appreciation, property tax, mortgage and maintenance for the month
func (e *CashFlowEngine) advanceRealAssets(st *SimulationState, mc *monthContext) {
	for _, ra := range st.RealAssets {
		if ra.Sold {
			continue
		}
		ra.Appreciate(e.timeline.InflationRate)
		expense := ra.PropertyTax()

		payment := ra.PayMortgage(mc.at)
		expense = expense.Add(payment.Total())
		mc.year.mortgageInterest = mc.year.mortgageInterest.Add(payment.Interest)

		for _, maint := range ra.Asset.MaintenanceExpenses {
			w := Window{Start: e.timeline.Start, End: e.timeline.End, Frequency: maint.Frequency}
			if ok, frac := w.Occurrence(mc.at); ok {
				expense = expense.Add(maint.Amount.Mul(frac))
			}
		}
		mc.month.RealAssetExpenses = mc.month.RealAssetExpenses.Add(money.Cents(expense))
	}
}
