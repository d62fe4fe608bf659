package calculation

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/pkg/dateutil"
	"github.com/rpgo/household-planner/pkg/money"
	"github.com/shopspring/decimal"
)

// ErrNoCashAccount is returned when a plan has nowhere to post income and pay expenses
var ErrNoCashAccount = errors.New("plan has no cash account")

// MaxSettlementIterations bounds the December tax settlement loop
const MaxSettlementIterations = 8

type scheduledIncome struct {
	item   domain.Income
	window Window
}

type scheduledExpense struct {
	item   domain.Expense
	window Window
}

type scheduledContribution struct {
	item   domain.Contribution
	window Window
}

type scheduledTransfer struct {
	item   domain.Transfer
	window Window
}

type scheduledTransaction struct {
	item domain.Transaction
	at   dateutil.YearMonth
}

// CashFlowEngine simulates a plan month by month. An engine holds only the compiled,
// read-only view of its plan; every Run starts from a fresh SimulationState, so one engine
// may be run concurrently with different return paths.
type CashFlowEngine struct {
	plan        *domain.Plan
	taxes       *TaxCalculator
	timeline    Timeline
	logger      Logger
	cashAccount string
	accounts    map[string]domain.Account

	primaryBirth dateutil.YearMonth
	spouseBirth  dateutil.YearMonth
	hasSpouse    bool

	incomes       []scheduledIncome
	expenses      []scheduledExpense
	contributions []scheduledContribution
	transfers     []scheduledTransfer
	transactions  []scheduledTransaction
	roth          []rothSchedule
	healthcare    *HealthcareModel
	waterfall     *WithdrawalWaterfall
}

// NewCashFlowEngine compiles a validated plan. It fails only on structurally unusable plans.
func NewCashFlowEngine(plan *domain.Plan) (*CashFlowEngine, error) {
	if plan == nil {
		return nil, fmt.Errorf("plan is required")
	}
	if err := ValidateFilingStatus(plan.FilingStatus); err != nil {
		return nil, err
	}

	e := &CashFlowEngine{
		plan:     plan,
		taxes:    NewTaxCalculator(plan.TaxSettings, plan.PlanSettings.InflationRate),
		logger:   NopLogger{},
		accounts: make(map[string]domain.Account, len(plan.Accounts)),
	}
	for _, a := range plan.Accounts {
		e.accounts[a.Name] = a
		if e.cashAccount == "" && a.Type == domain.AccountCash {
			e.cashAccount = a.Name
		}
	}
	if e.cashAccount == "" {
		return nil, ErrNoCashAccount
	}

	tl, err := NewTimeline(plan.PlanSettings)
	if err != nil {
		return nil, err
	}
	e.timeline = tl

	if e.primaryBirth, err = dateutil.ParseYearMonth(plan.People.Primary.Birthday); err != nil {
		return nil, fmt.Errorf("failed to parse primary birthday: %w", err)
	}
	if plan.People.Spouse != nil {
		if e.spouseBirth, err = dateutil.ParseYearMonth(plan.People.Spouse.Birthday); err != nil {
			return nil, fmt.Errorf("failed to parse spouse birthday: %w", err)
		}
		e.hasSpouse = true
	}

	if err := e.compileSchedules(); err != nil {
		return nil, err
	}
	if e.roth, err = compileRothConversions(tl, plan.RothConversions); err != nil {
		return nil, err
	}
	if e.healthcare, err = NewHealthcareModel(plan.Healthcare, tl); err != nil {
		return nil, err
	}
	e.waterfall = NewWithdrawalWaterfall(plan, e.cashAccount)
	return e, nil
}

func (e *CashFlowEngine) compileSchedules() error {
	tl := e.timeline
	for _, it := range e.plan.Income {
		w, err := tl.ResolveSchedule(it.Schedule)
		if err != nil {
			return fmt.Errorf("income %q: %w", it.Name, err)
		}
		w.ProrateAnnual = true
		e.incomes = append(e.incomes, scheduledIncome{item: it, window: w})
	}
	for _, it := range e.plan.Expenses {
		w, err := tl.ResolveSchedule(it.Schedule)
		if err != nil {
			return fmt.Errorf("expense %q: %w", it.Name, err)
		}
		e.expenses = append(e.expenses, scheduledExpense{item: it, window: w})
	}
	for _, it := range e.plan.Contributions {
		w, err := tl.ResolveSchedule(it.Schedule)
		if err != nil {
			return fmt.Errorf("contribution %q: %w", it.Name, err)
		}
		e.contributions = append(e.contributions, scheduledContribution{item: it, window: w})
	}
	for _, it := range e.plan.Transfers {
		w, err := tl.ResolveSchedule(it.Schedule)
		if err != nil {
			return fmt.Errorf("transfer %q: %w", it.Name, err)
		}
		e.transfers = append(e.transfers, scheduledTransfer{item: it, window: w})
	}
	for _, it := range e.plan.Transactions {
		at, err := dateutil.Resolve(it.Date, tl.Start, tl.End, tl.Start)
		if err != nil {
			return fmt.Errorf("transaction %q: %w", it.Name, err)
		}
		e.transactions = append(e.transactions, scheduledTransaction{item: it, at: at})
	}
	return nil
}

// SetLogger sets the logger for the engine. If nil is provided, a no-op logger is used.
func (e *CashFlowEngine) SetLogger(l Logger) {
	if l == nil {
		e.logger = NopLogger{}
		return
	}
	e.logger = l
}

// CashAccount is the account that receives income and pays expenses
func (e *CashFlowEngine) CashAccount() string { return e.cashAccount }

// Timeline returns the plan bounds the engine simulates
func (e *CashFlowEngine) Timeline() Timeline { return e.timeline }

// Run simulates every month of the plan. overrides, when non-nil, replaces static growth
// rates with per-year stock and bond returns. Underfunding never fails a run.
func (e *CashFlowEngine) Run(ctx context.Context, overrides domain.ReturnPath) (*domain.EngineResult, error) {
	st := NewSimulationState(e.plan)
	result := &domain.EngineResult{
		PerAccountAnnualDetail:  make(map[string][]domain.AccountYearDetail, len(e.plan.Accounts)),
		WithdrawalSourcesByYear: make(map[int]map[string]decimal.Decimal),
	}
	months := e.timeline.Months()
	result.Monthly = make([]domain.MonthResult, 0, len(months))
	e.logger.Infof("simulating %d months from %s to %s", len(months), e.timeline.Start, e.timeline.End)

	var ledger *yearLedger
	wasInsolvent := false
	for i, at := range months {
		if ledger == nil {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			ledger = newYearLedger(at.Year, st)
		}
		last := i == len(months)-1

		month, err := e.simulateMonth(st, ledger, at, overrides, last)
		if err != nil {
			return nil, fmt.Errorf("failed to simulate %s: %w", at, err)
		}
		if month.Insolvent && !wasInsolvent {
			e.logger.Warnf("plan became insolvent in %s", at)
		}
		wasInsolvent = month.Insolvent

		ledger.addMonth(month)
		result.Monthly = append(result.Monthly, month)

		if at.Month == 12 || last {
			e.closeYear(st, ledger, result)
			ledger = nil
		}
	}

	e.logger.Infof("simulation complete: final net worth %s, %d insolvent years",
		money.Format(result.FinalNetWorth()), len(result.InsolvencyYears))
	return result, nil
}

func (e *CashFlowEngine) ownerAges(at dateutil.YearMonth) OwnerAges {
	ages := OwnerAges{PrimaryMonths: dateutil.AgeMonthsAt(e.primaryBirth, at), HasSpouse: e.hasSpouse}
	if e.hasSpouse {
		ages.SpouseMonths = dateutil.AgeMonthsAt(e.spouseBirth, at)
	}
	return ages
}

// simulateMonth runs the fixed per-month step order. Later steps consume the cash and
// income totals the earlier ones produce.
func (e *CashFlowEngine) simulateMonth(st *SimulationState, ledger *yearLedger, at dateutil.YearMonth, overrides domain.ReturnPath, lastMonth bool) (domain.MonthResult, error) {
	mc := &monthContext{
		at:    at,
		ages:  e.ownerAges(at),
		month: &domain.MonthResult{Year: at.Year, Month: at.Month},
		year:  ledger,
		paid:  make(map[string]decimal.Decimal),
	}

	if err := e.postIncome(st, mc); err != nil {
		return domain.MonthResult{}, err
	}
	e.postSocialSecurity(st, mc)
	e.applyContributions(st, mc)
	e.applyTransfers(st, mc)

	december := at.Month == 12
	if december && e.plan.WithdrawalStrategy.RMDSatisfiedFirst {
		e.applyRMDs(st, mc)
	}
	if err := e.applyRothConversions(st, mc); err != nil {
		return domain.MonthResult{}, err
	}
	if december && !e.plan.WithdrawalStrategy.RMDSatisfiedFirst {
		e.applyRMDs(st, mc)
	}

	e.applyMarket(st, mc, overrides)
	e.advanceRealAssets(st, mc)
	e.applyTransactions(st, mc)

	if err := e.collectExpenses(st, mc); err != nil {
		return domain.MonthResult{}, err
	}
	e.payExpenses(st, mc)

	if err := e.payEstimatedTax(st, mc); err != nil {
		return domain.MonthResult{}, err
	}
	if december || lastMonth {
		if err := e.settleYear(st, mc); err != nil {
			return domain.MonthResult{}, err
		}
	}

	if st.Balances[e.cashAccount].LessThan(decimal.Zero) {
		mc.insolvent = true
	}
	m := mc.month
	m.AccountBalancesEnd = st.balanceSnapshot()
	m.RealAssetValuesEnd = st.assetSnapshot()
	m.NetWorthEnd = st.NetWorth()
	m.Insolvent = mc.insolvent
	return *m, nil
}

// postIncome pays active income into cash, withholding FICA and flat income tax
func (e *CashFlowEngine) postIncome(st *SimulationState, mc *monthContext) error {
	for _, si := range e.incomes {
		it := si.item
		ok, frac := si.window.Occurrence(mc.at)
		if !ok {
			continue
		}
		amount := money.Cents(e.timeline.AmountAt(it.Amount, it.ChangeOverTime, it.ChangeRate, mc.at).Mul(frac))
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		mc.credit(st, e.cashAccount, amount)
		mc.month.Income = mc.month.Income.Add(amount)
		mc.paid[it.Name] = mc.paid[it.Name].Add(amount)

		if it.TaxHandling == domain.TaxHandlingTaxExempt {
			continue
		}
		mc.year.ordinaryIncome = mc.year.ordinaryIncome.Add(amount)

		if it.WithholdPercent != nil {
			withheld := money.Cents(amount.Mul(money.NonNegative(*it.WithholdPercent)))
			mc.debit(st, e.cashAccount, withheld)
			mc.month.TaxWithheld = mc.month.TaxWithheld.Add(withheld)
			mc.year.withheld = mc.year.withheld.Add(withheld)
		}

		if it.FICAExempt {
			continue
		}
		owner := it.Owner
		fica, err := e.taxes.FICA(amount, mc.year.wagesByOwner[owner], mc.year.householdWages, e.plan.FilingStatus, mc.at.Year)
		if err != nil {
			return fmt.Errorf("failed to calculate FICA for %q: %w", it.Name, err)
		}
		payroll := money.Cents(fica.Total())
		mc.debit(st, e.cashAccount, payroll)
		mc.month.FICATax = mc.month.FICATax.Add(payroll)
		mc.year.wagesByOwner[owner] = mc.year.wagesByOwner[owner].Add(amount)
		mc.year.householdWages = mc.year.householdWages.Add(amount)
	}
	return nil
}

func (e *CashFlowEngine) postSocialSecurity(st *SimulationState, mc *monthContext) {
	if len(e.plan.SocialSecurity) == 0 {
		return
	}
	b := MonthlySocialSecurity(e.plan.SocialSecurity, mc.ages, e.timeline.InflationRate)
	if b.Total.LessThanOrEqual(decimal.Zero) {
		return
	}
	mc.credit(st, e.cashAccount, b.Total)
	mc.month.SocialSecurityIncome = b.Total
	mc.year.ordinaryIncome = mc.year.ordinaryIncome.Add(money.Cents(b.TaxablePortion()))
}

// withdrawFrom debits an account-sourced movement, capped at the available balance, and
// returns the amount moved. Taxable brokerage sources realize gains.
func (e *CashFlowEngine) withdrawFrom(st *SimulationState, mc *monthContext, from, to string, amount decimal.Decimal) decimal.Decimal {
	amount = money.Cents(money.Min(amount, money.NonNegative(st.Balances[from])))
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if tracker, ok := st.CostBasis[from]; ok {
		gain := money.Cents(tracker.Withdraw(amount, st.Balances[from]))
		mc.year.capitalGains = mc.year.capitalGains.Add(gain)
		mc.month.RealizedCapitalGains = mc.month.RealizedCapitalGains.Add(gain)
	}
	if tracker, ok := st.RothBasis[from]; ok {
		tracker.WithdrawBasisFirst(amount)
	}
	mc.move(st, from, to, amount)
	e.addBasis(st, to, amount)
	return amount
}

// addBasis records a deposit against the destination's basis tracker
func (e *CashFlowEngine) addBasis(st *SimulationState, name string, amount decimal.Decimal) {
	if tracker, ok := st.CostBasis[name]; ok {
		tracker.AddBasis(amount)
	}
	if tracker, ok := st.RothBasis[name]; ok {
		tracker.AddBasis(amount)
	}
}

// applyContributions handles payroll deductions, account-to-account contributions and
// capped employer matches
func (e *CashFlowEngine) applyContributions(st *SimulationState, mc *monthContext) {
	for _, sc := range e.contributions {
		c := sc.item
		ok, frac := sc.window.Occurrence(mc.at)
		if !ok {
			continue
		}
		amount := money.Cents(e.timeline.AmountAt(c.Amount, c.ChangeOverTime, c.ChangeRate, mc.at).Mul(frac))
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		dest := e.accounts[c.DestinationAccount]

		if c.SourceAccount == domain.SourceIncome {
			mc.move(st, e.cashAccount, dest.Name, amount)
			e.addBasis(st, dest.Name, amount)
			if dest.Type.IsPreTax() || dest.Type == domain.AccountHSA {
				mc.year.ordinaryIncome = mc.year.ordinaryIncome.Sub(amount)
			}
		} else {
			amount = e.withdrawFrom(st, mc, c.SourceAccount, dest.Name, amount)
			if amount.IsZero() {
				continue
			}
		}
		mc.month.Contributions = mc.month.Contributions.Add(amount)

		if m := c.EmployerMatch; m != nil {
			limit := mc.paid[m.SalaryReference].Mul(money.NonNegative(m.UpToPercentOfSalary))
			match := money.Cents(money.Min(amount, limit).Mul(money.NonNegative(m.MatchPercent)))
			if match.GreaterThan(decimal.Zero) {
				mc.credit(st, dest.Name, match)
				e.addBasis(st, dest.Name, match)
				mc.month.EmployerMatch = mc.month.EmployerMatch.Add(match)
			}
		}
	}
}

func (e *CashFlowEngine) applyTransfers(st *SimulationState, mc *monthContext) {
	for _, stx := range e.transfers {
		t := stx.item
		ok, frac := stx.window.Occurrence(mc.at)
		if !ok {
			continue
		}
		amount := money.Cents(e.timeline.AmountAt(t.Amount, t.ChangeOverTime, t.ChangeRate, mc.at).Mul(frac))
		moved := e.withdrawFrom(st, mc, t.FromAccount, t.ToAccount, amount)
		if moved.IsZero() {
			continue
		}
		// brokerage sources are taxed on realized gains only
		if _, realized := st.CostBasis[t.FromAccount]; !realized && t.TaxTreatment == domain.TaxAsIncome {
			mc.year.ordinaryIncome = mc.year.ordinaryIncome.Add(moved)
		}
		mc.month.Transfers = mc.month.Transfers.Add(moved)
	}
}

// annualReturn is the growth rate for an account this year
func (e *CashFlowEngine) annualReturn(a domain.Account, year int, overrides domain.ReturnPath) decimal.Decimal {
	if a.Type == domain.AccountCash || overrides == nil {
		return a.GrowthRate
	}
	r, ok := overrides[year]
	if !ok {
		return a.GrowthRate
	}
	bond := money.FromPercent(a.BondAllocationPercent)
	bond = money.Min(decimal.NewFromInt(1), money.NonNegative(bond))
	return r.Stock.Mul(decimal.NewFromInt(1).Sub(bond)).Add(r.Bond.Mul(bond))
}

func sheltered(t domain.AccountType) bool {
	switch t {
	case domain.Account401k, domain.AccountTraditionalIRA, domain.AccountRothIRA, domain.AccountHSA, domain.Account529:
		return true
	default:
		return false
	}
}

// applyMarket applies growth, then dividends, then fees to every account
func (e *CashFlowEngine) applyMarket(st *SimulationState, mc *monthContext, overrides domain.ReturnPath) {
	for _, a := range e.plan.Accounts {
		d := mc.year.detail(a.Name)

		rate := money.MonthlyRate(e.annualReturn(a, mc.at.Year, overrides))
		growth := money.Cents(money.NonNegative(st.Balances[a.Name]).Mul(rate))
		if !growth.IsZero() {
			st.Balances[a.Name] = st.Balances[a.Name].Add(growth)
			d.Growth = d.Growth.Add(growth)
			mc.month.Growth = mc.month.Growth.Add(growth)
		}

		dividend := money.Cents(money.NonNegative(st.Balances[a.Name]).Mul(money.MonthlyRate(a.DividendYield)))
		if dividend.GreaterThan(decimal.Zero) {
			d.Dividends = d.Dividends.Add(dividend)
			mc.month.Dividends = mc.month.Dividends.Add(dividend)
			e.taxDividend(a, mc, dividend)
			if a.ReinvestDividends {
				st.Balances[a.Name] = st.Balances[a.Name].Add(dividend)
				if tracker, ok := st.CostBasis[a.Name]; ok {
					tracker.AddBasis(dividend)
				}
			} else {
				mc.credit(st, e.cashAccount, dividend)
			}
		}

		fee := money.Cents(money.NonNegative(st.Balances[a.Name]).Mul(money.MonthlyRate(a.YearlyFees)))
		if fee.GreaterThan(decimal.Zero) {
			st.Balances[a.Name] = st.Balances[a.Name].Sub(fee)
			d.Fees = d.Fees.Add(fee)
			mc.month.Fees = mc.month.Fees.Add(fee)
		}
	}
}

func (e *CashFlowEngine) taxDividend(a domain.Account, mc *monthContext, dividend decimal.Decimal) {
	if sheltered(a.Type) {
		return
	}
	treatment := a.DividendTaxTreatment
	if treatment == "" || treatment == domain.DividendPlanDefault {
		treatment = e.plan.PlanSettings.DefaultDividendTaxTreatment
	}
	switch treatment {
	case domain.DividendIncome:
		mc.year.ordinaryIncome = mc.year.ordinaryIncome.Add(dividend)
		mc.year.ordinaryDividends = mc.year.ordinaryDividends.Add(dividend)
	case domain.DividendCapitalGains:
		mc.year.qualifiedDividends = mc.year.qualifiedDividends.Add(dividend)
	}
}

// applyTransactions executes one-time transactions dated this month
func (e *CashFlowEngine) applyTransactions(st *SimulationState, mc *monthContext) {
	for _, stx := range e.transactions {
		if stx.at != mc.at {
			continue
		}
		t := stx.item
		dest := t.DepositToAccount
		if dest == "" {
			dest = e.cashAccount
		}

		switch t.Type {
		case domain.TransactionSellAsset:
			ra := st.realAsset(t.LinkedAsset)
			if ra == nil {
				e.logger.Warnf("transaction %q: asset %q not held in %s", t.Name, t.LinkedAsset, mc.at)
				continue
			}
			sale := ra.Sell(t.Amount, t.Fees, e.plan.FilingStatus)
			gain := money.Cents(sale.Gain)
			switch t.TaxTreatment {
			case domain.TaxAsCapitalGains:
				mc.year.capitalGains = mc.year.capitalGains.Add(gain)
				mc.month.RealizedCapitalGains = mc.month.RealizedCapitalGains.Add(gain)
			case domain.TaxAsIncome:
				mc.year.ordinaryIncome = mc.year.ordinaryIncome.Add(gain)
			}
			net := money.Cents(sale.NetCash)
			mc.credit(st, dest, net)
			e.addBasis(st, dest, net)
			e.logger.Debugf("sold %s in %s: net %s, taxable gain %s", t.LinkedAsset, mc.at, net.StringFixed(2), gain.StringFixed(2))
		case domain.TransactionBuyAsset:
			mc.debit(st, e.cashAccount, money.Cents(t.Amount.Add(t.Fees)))
		default:
			net := money.Cents(t.Amount.Sub(t.Fees))
			if net.GreaterThanOrEqual(decimal.Zero) {
				mc.credit(st, dest, net)
				e.addBasis(st, dest, net)
			} else {
				mc.debit(st, dest, net.Neg())
			}
		}
	}
}

// collectExpenses prices the month's healthcare and spending
func (e *CashFlowEngine) collectExpenses(st *SimulationState, mc *monthContext) error {
	hc, err := e.healthcare.MonthlyCost(mc.at, mc.ages, e.plan.FilingStatus, e.taxes, st.MAGIHistory)
	if err != nil {
		return fmt.Errorf("failed to price healthcare: %w", err)
	}
	mc.month.HealthcareExpenses = hc.Total
	mc.month.IRMAASurcharge = hc.IRMAA

	for _, se := range e.expenses {
		x := se.item
		ok, frac := se.window.Occurrence(mc.at)
		if !ok {
			continue
		}
		amount := money.Cents(e.timeline.AmountAt(x.Amount, x.ChangeOverTime, x.ChangeRate, mc.at).Mul(frac))
		if x.SpendingType == domain.SpendingDiscretionary {
			mc.month.DiscretionaryExpenses = mc.month.DiscretionaryExpenses.Add(amount)
		} else {
			mc.month.EssentialExpenses = mc.month.EssentialExpenses.Add(amount)
		}
	}
	return nil
}

// payExpenses covers any cash shortfall through the waterfall, then debits the month's expenses
func (e *CashFlowEngine) payExpenses(st *SimulationState, mc *monthContext) {
	total := mc.month.TotalExpenses()
	if shortfall := total.Sub(st.Balances[e.cashAccount]); shortfall.GreaterThan(decimal.Zero) {
		if !e.fund(st, mc, shortfall) {
			mc.insolvent = true
		}
	}
	mc.debit(st, e.cashAccount, total)
	if st.Balances[e.cashAccount].LessThan(decimal.Zero) {
		mc.insolvent = true
	}
}

// fund draws shortfall into cash and recognizes the tax consequences. It reports whether the
// whole shortfall was covered.
func (e *CashFlowEngine) fund(st *SimulationState, mc *monthContext, shortfall decimal.Decimal) bool {
	out := e.waterfall.Cover(st, mc, money.Cents(shortfall))
	e.recognizeWithdrawals(st, mc, out)
	return out.Remaining.LessThanOrEqual(decimal.Zero)
}

func (e *CashFlowEngine) recognizeWithdrawals(st *SimulationState, mc *monthContext, out WithdrawalOutcome) {
	for _, ev := range out.Events {
		mc.month.Withdrawals = mc.month.Withdrawals.Add(ev.Amount)
		mc.year.sources[ev.Account] = mc.year.sources[ev.Account].Add(ev.Amount)

		penalty := decimal.Zero
		switch {
		case ev.Type.IsPreTax():
			mc.year.ordinaryIncome = mc.year.ordinaryIncome.Add(ev.Amount)
			if ev.PenaltyEligible {
				penalty = EarlyWithdrawalPenalty(ev.Amount)
			}
		case ev.Type == domain.AccountRothIRA:
			earnings := ev.Amount
			if tracker, ok := st.RothBasis[ev.Account]; ok {
				earnings = tracker.WithdrawBasisFirst(ev.Amount)
			}
			if ev.PenaltyEligible {
				penalty = EarlyWithdrawalPenalty(earnings)
			}
		case ev.Type == domain.AccountTaxableBrokerage:
			gain := money.Cents(ev.RealizedGain)
			mc.year.capitalGains = mc.year.capitalGains.Add(gain)
			mc.month.RealizedCapitalGains = mc.month.RealizedCapitalGains.Add(gain)
		}
		if penalty.GreaterThan(decimal.Zero) {
			penalty = money.Cents(penalty)
			mc.year.penalty = mc.year.penalty.Add(penalty)
			mc.month.EarlyWithdrawalPenalty = mc.month.EarlyWithdrawalPenalty.Add(penalty)
		}
	}
}

// closeYear finalizes the annual row, per-account detail and RMD baselines
func (e *CashFlowEngine) closeYear(st *SimulationState, ledger *yearLedger, result *domain.EngineResult) {
	a := ledger.annual
	a.MortgageInterest = money.Cents(ledger.mortgageInterest)
	a.QualifiedDividends = money.Cents(ledger.qualifiedDividends)
	a.EstimatedTaxPaid = money.Cents(ledger.estimatedPaid)

	result.Annual = append(result.Annual, a)
	if a.Insolvent {
		result.InsolvencyYears = append(result.InsolvencyYears, a.Year)
	}

	for _, name := range st.accountOrder {
		d := ledger.detail(name)
		d.EndBalance = money.Cents(st.Balances[name])
		result.PerAccountAnnualDetail[name] = append(result.PerAccountAnnualDetail[name], *d)
		st.PriorYearEnd[name] = st.Balances[name]
	}
	if len(ledger.sources) > 0 {
		sources := make(map[string]decimal.Decimal, len(ledger.sources))
		for name, v := range ledger.sources {
			sources[name] = money.Cents(v)
		}
		result.WithdrawalSourcesByYear[a.Year] = sources
	}
}
