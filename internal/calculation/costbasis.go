package calculation

import (
	"github.com/rpgo/household-planner/pkg/money"
	"github.com/shopspring/decimal"
)

// CostBasisTracker tracks average-cost basis for one account
type CostBasisTracker struct {
	TotalBasis decimal.Decimal
}

// NewCostBasisTracker starts tracking with an opening basis
func NewCostBasisTracker(basis decimal.Decimal) *CostBasisTracker {
	return &CostBasisTracker{TotalBasis: money.NonNegative(basis)}
}

// AddBasis records a deposit or reinvested dividend
func (c *CostBasisTracker) AddBasis(amount decimal.Decimal) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return
	}
	c.TotalBasis = c.TotalBasis.Add(amount)
}

// Withdraw removes basis proportionally and returns the realized gain
func (c *CostBasisTracker) Withdraw(amount, balanceBefore decimal.Decimal) decimal.Decimal {
	if amount.LessThanOrEqual(decimal.Zero) || balanceBefore.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	ratio := money.Min(decimal.NewFromInt(1), c.TotalBasis.Div(balanceBefore))
	reduction := amount.Mul(ratio)
	c.TotalBasis = money.NonNegative(c.TotalBasis.Sub(reduction))
	return money.NonNegative(amount.Sub(reduction))
}

// WithdrawBasisFirst removes contributions before earnings and returns the earnings portion.
// Roth accounts are tracked this way.
func (c *CostBasisTracker) WithdrawBasisFirst(amount decimal.Decimal) decimal.Decimal {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	fromBasis := money.Min(amount, c.TotalBasis)
	c.TotalBasis = c.TotalBasis.Sub(fromBasis)
	return amount.Sub(fromBasis)
}
