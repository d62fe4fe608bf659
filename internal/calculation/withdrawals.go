package calculation

import (
	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/pkg/money"
	"github.com/shopspring/decimal"
)

// PenaltyFreeAgeMonths is age 59½ in months
const PenaltyFreeAgeMonths = 59*12 + 6

// WithdrawalEvent is one draw made by the waterfall
type WithdrawalEvent struct {
	Account         string
	Type            domain.AccountType
	Amount          decimal.Decimal
	RealizedGain    decimal.Decimal // taxable brokerage only
	PenaltyEligible bool
}

// WithdrawalOutcome is the result of covering one shortfall
type WithdrawalOutcome struct {
	Remaining     decimal.Decimal
	Events        []WithdrawalEvent
	RealizedGains decimal.Decimal
}

// Withdrawn is the total moved into cash
func (o WithdrawalOutcome) Withdrawn() decimal.Decimal {
	total := decimal.Zero
	for _, ev := range o.Events {
		total = total.Add(ev.Amount)
	}
	return total
}

// WithdrawalWaterfall covers cash shortfalls by drawing accounts in strategy order
type WithdrawalWaterfall struct {
	order       []domain.Account
	cashAccount string
}

// NewWithdrawalWaterfall fixes the draw order for a plan: the account-specific list when one is
// given, else the configured type order, then every remaining account in declaration order.
// Cash and accounts that disallow withdrawals never appear in the order.
func NewWithdrawalWaterfall(plan *domain.Plan, cashAccount string) *WithdrawalWaterfall {
	ww := &WithdrawalWaterfall{cashAccount: cashAccount}
	seen := make(map[string]bool, len(plan.Accounts))
	add := func(a domain.Account) {
		if seen[a.Name] || a.Name == cashAccount || a.Type == domain.AccountCash || !a.WithdrawalsAllowed() {
			return
		}
		seen[a.Name] = true
		ww.order = append(ww.order, a)
	}

	ws := plan.WithdrawalStrategy
	if ws.UseAccountSpecific && len(ws.AccountSpecificOrder) > 0 {
		for _, name := range ws.AccountSpecificOrder {
			if a, ok := plan.AccountByName(name); ok {
				add(a)
			}
		}
	} else {
		for _, t := range ws.Order {
			for _, a := range plan.Accounts {
				if a.Type == t {
					add(a)
				}
			}
		}
	}
	for _, a := range plan.Accounts {
		add(a)
	}
	return ww
}

// Order returns the account names in draw order
func (ww *WithdrawalWaterfall) Order() []string {
	names := make([]string, 0, len(ww.order))
	for _, a := range ww.order {
		names = append(names, a.Name)
	}
	return names
}

func penaltyEligible(a domain.Account, ages OwnerAges) bool {
	switch a.Type {
	case domain.Account401k, domain.AccountTraditionalIRA, domain.AccountRothIRA:
		return ages.Months(a.Owner) < PenaltyFreeAgeMonths
	default:
		return false
	}
}

// Cover draws up to shortfall into cash. Accounts that would incur an early-withdrawal
// penalty are drawn only after every penalty-free account is exhausted.
func (ww *WithdrawalWaterfall) Cover(st *SimulationState, mc *monthContext, shortfall decimal.Decimal) WithdrawalOutcome {
	out := WithdrawalOutcome{Remaining: money.NonNegative(shortfall), RealizedGains: decimal.Zero}
	if out.Remaining.IsZero() {
		return out
	}
	ww.drain(st, mc, &out, func(a domain.Account) bool { return penaltyEligible(a, mc.ages) })
	ww.drain(st, mc, &out, func(a domain.Account) bool { return !penaltyEligible(a, mc.ages) })
	return out
}

func (ww *WithdrawalWaterfall) drain(st *SimulationState, mc *monthContext, out *WithdrawalOutcome, skip func(domain.Account) bool) {
	for _, a := range ww.order {
		if out.Remaining.LessThanOrEqual(decimal.Zero) {
			return
		}
		if skip(a) {
			continue
		}
		available := money.NonNegative(st.Balances[a.Name])
		if available.IsZero() {
			continue
		}
		amount := money.Min(available, out.Remaining)

		gain := decimal.Zero
		if tracker, ok := st.CostBasis[a.Name]; ok && a.Type == domain.AccountTaxableBrokerage {
			gain = tracker.Withdraw(amount, st.Balances[a.Name])
		}
		mc.move(st, a.Name, ww.cashAccount, amount)

		out.Remaining = out.Remaining.Sub(amount)
		out.RealizedGains = out.RealizedGains.Add(gain)
		out.Events = append(out.Events, WithdrawalEvent{
			Account:         a.Name,
			Type:            a.Type,
			Amount:          amount,
			RealizedGain:    gain,
			PenaltyEligible: penaltyEligible(a, mc.ages),
		})
	}
}
