package calculation

import (
	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/pkg/dateutil"
	"github.com/rpgo/household-planner/pkg/money"
	"github.com/shopspring/decimal"
)

// SimulationState is the mutable working set of one engine run. The plan is never mutated;
// every balance, basis and history value lives here.
type SimulationState struct {
	Balances     map[string]decimal.Decimal
	CostBasis    map[string]*CostBasisTracker // taxable brokerage accounts
	RothBasis    map[string]*CostBasisTracker // roth accounts, contributions first
	PriorYearEnd map[string]decimal.Decimal
	RealAssets   []*RealAssetState
	MAGIHistory  map[int]decimal.Decimal

	accountOrder []string
}

// NewSimulationState seeds balances, basis and real assets from the plan
func NewSimulationState(plan *domain.Plan) *SimulationState {
	st := &SimulationState{
		Balances:     make(map[string]decimal.Decimal, len(plan.Accounts)),
		CostBasis:    make(map[string]*CostBasisTracker),
		RothBasis:    make(map[string]*CostBasisTracker),
		PriorYearEnd: make(map[string]decimal.Decimal, len(plan.Accounts)),
		MAGIHistory:  make(map[int]decimal.Decimal),
	}
	for _, a := range plan.Accounts {
		st.accountOrder = append(st.accountOrder, a.Name)
		st.Balances[a.Name] = a.Balance
		st.PriorYearEnd[a.Name] = a.Balance
		switch a.Type {
		case domain.AccountTaxableBrokerage:
			basis := decimal.Zero
			if a.CostBasis != nil {
				basis = *a.CostBasis
			}
			st.CostBasis[a.Name] = NewCostBasisTracker(basis)
		case domain.AccountRothIRA:
			basis := money.NonNegative(a.Balance)
			if a.CostBasis != nil {
				basis = *a.CostBasis
			}
			st.RothBasis[a.Name] = NewCostBasisTracker(basis)
		}
	}
	for _, ra := range plan.RealAssets {
		st.RealAssets = append(st.RealAssets, NewRealAssetState(ra))
	}
	return st
}

func (s *SimulationState) move(from, to string, amount decimal.Decimal) {
	s.Balances[from] = s.Balances[from].Sub(amount)
	s.Balances[to] = s.Balances[to].Add(amount)
}

// NetWorth sums non-negative account balances and held real-asset values
func (s *SimulationState) NetWorth() decimal.Decimal {
	total := decimal.Zero
	for _, name := range s.accountOrder {
		total = total.Add(money.NonNegative(s.Balances[name]))
	}
	for _, ra := range s.RealAssets {
		if !ra.Sold {
			total = total.Add(money.NonNegative(ra.Value))
		}
	}
	return money.Cents(total)
}

func (s *SimulationState) balanceSnapshot() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(s.accountOrder))
	for _, name := range s.accountOrder {
		out[name] = money.Cents(s.Balances[name])
	}
	return out
}

func (s *SimulationState) assetSnapshot() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(s.RealAssets))
	for _, ra := range s.RealAssets {
		if !ra.Sold {
			out[ra.Asset.Name] = money.Cents(ra.Value)
		}
	}
	return out
}

func (s *SimulationState) realAsset(name string) *RealAssetState {
	for _, ra := range s.RealAssets {
		if ra.Asset.Name == name && !ra.Sold {
			return ra
		}
	}
	return nil
}

// yearLedger accumulates one calendar year's totals and tax inputs
type yearLedger struct {
	annual domain.AnnualResult

	ordinaryIncome     decimal.Decimal
	capitalGains       decimal.Decimal
	qualifiedDividends decimal.Decimal
	ordinaryDividends  decimal.Decimal
	withheld           decimal.Decimal
	estimatedPaid      decimal.Decimal
	penalty            decimal.Decimal
	mortgageInterest   decimal.Decimal
	householdWages     decimal.Decimal
	wagesByOwner       map[string]decimal.Decimal

	details map[string]*domain.AccountYearDetail
	sources map[string]decimal.Decimal
}

func newYearLedger(year int, st *SimulationState) *yearLedger {
	y := &yearLedger{
		annual:       domain.AnnualResult{Year: year},
		wagesByOwner: make(map[string]decimal.Decimal),
		details:      make(map[string]*domain.AccountYearDetail, len(st.accountOrder)),
		sources:      make(map[string]decimal.Decimal),
	}
	for _, name := range st.accountOrder {
		y.details[name] = &domain.AccountYearDetail{Account: name, Year: year, StartBalance: money.Cents(st.Balances[name])}
	}
	return y
}

func (y *yearLedger) detail(name string) *domain.AccountYearDetail {
	d, ok := y.details[name]
	if !ok {
		d = &domain.AccountYearDetail{Account: name, Year: y.annual.Year}
		y.details[name] = d
	}
	return d
}

// addMonth rolls a finalized month into the annual totals
func (y *yearLedger) addMonth(m domain.MonthResult) {
	a := &y.annual
	a.Income = a.Income.Add(m.Income)
	a.SocialSecurityIncome = a.SocialSecurityIncome.Add(m.SocialSecurityIncome)
	a.TaxWithheld = a.TaxWithheld.Add(m.TaxWithheld)
	a.FICATax = a.FICATax.Add(m.FICATax)
	a.Contributions = a.Contributions.Add(m.Contributions)
	a.EmployerMatch = a.EmployerMatch.Add(m.EmployerMatch)
	a.Transfers = a.Transfers.Add(m.Transfers)
	a.RMDWithdrawals = a.RMDWithdrawals.Add(m.RMDWithdrawals)
	a.RothConversions = a.RothConversions.Add(m.RothConversions)
	a.EssentialExpenses = a.EssentialExpenses.Add(m.EssentialExpenses)
	a.DiscretionaryExpenses = a.DiscretionaryExpenses.Add(m.DiscretionaryExpenses)
	a.HealthcareExpenses = a.HealthcareExpenses.Add(m.HealthcareExpenses)
	a.IRMAASurcharge = a.IRMAASurcharge.Add(m.IRMAASurcharge)
	a.RealAssetExpenses = a.RealAssetExpenses.Add(m.RealAssetExpenses)
	a.Withdrawals = a.Withdrawals.Add(m.Withdrawals)
	a.RealizedCapitalGains = a.RealizedCapitalGains.Add(m.RealizedCapitalGains)
	a.EarlyWithdrawalPenalty = a.EarlyWithdrawalPenalty.Add(m.EarlyWithdrawalPenalty)
	a.Growth = a.Growth.Add(m.Growth)
	a.Dividends = a.Dividends.Add(m.Dividends)
	a.Fees = a.Fees.Add(m.Fees)
	a.EstimatedTaxPaid = a.EstimatedTaxPaid.Add(m.EstimatedTaxPaid)
	a.NetWorthEnd = m.NetWorthEnd
	a.Insolvent = a.Insolvent || m.Insolvent
}

// monthContext carries the accumulators of the month being simulated
type monthContext struct {
	at        dateutil.YearMonth
	ages      OwnerAges
	month     *domain.MonthResult
	year      *yearLedger
	paid      map[string]decimal.Decimal // income paid this month by item name
	insolvent bool
}

func (mc *monthContext) credit(st *SimulationState, name string, amount decimal.Decimal) {
	st.Balances[name] = st.Balances[name].Add(amount)
	d := mc.year.detail(name)
	d.Deposits = d.Deposits.Add(amount)
}

func (mc *monthContext) debit(st *SimulationState, name string, amount decimal.Decimal) {
	st.Balances[name] = st.Balances[name].Sub(amount)
	d := mc.year.detail(name)
	d.Withdrawals = d.Withdrawals.Add(amount)
}

func (mc *monthContext) move(st *SimulationState, from, to string, amount decimal.Decimal) {
	mc.debit(st, from, amount)
	mc.credit(st, to, amount)
}
