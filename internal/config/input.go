package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rpgo/household-planner/internal/calculation"
	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/pkg/dateutil"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrInvalidPlan is returned when a plan fails validation
var ErrInvalidPlan = errors.New("invalid plan")

// PlanLoader parses plan files
type PlanLoader struct {
	// Strict rejects unknown keys
	Strict bool
}

// NewPlanLoader creates a strict plan loader
func NewPlanLoader() *PlanLoader {
	return &PlanLoader{Strict: true}
}

// LoadFromFile loads and validates a plan from a YAML or JSON file
func (pl *PlanLoader) LoadFromFile(filename string) (*domain.Plan, error) {
	plan, err := pl.DecodeFile(filename)
	if err != nil {
		return nil, err
	}
	if err := Validate(plan).Err(); err != nil {
		return nil, fmt.Errorf("plan %s: %w", filename, err)
	}
	return plan, nil
}

// DecodeFile reads a plan without validating it
func (pl *PlanLoader) DecodeFile(filename string) (*domain.Plan, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return pl.Decode(data)
}

// Decode parses plan bytes with defaults applied. JSON is accepted as YAML flow syntax.
func (pl *PlanLoader) Decode(data []byte) (*domain.Plan, error) {
	plan := DefaultPlan()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(pl.Strict)
	if err := dec.Decode(plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	applyDefaults(plan)
	return plan, nil
}

// DefaultPlan is the zero plan with every documented default filled in. Decoding on top of it keeps
// defaults for absent keys.
func DefaultPlan() *domain.Plan {
	return &domain.Plan{
		Healthcare: domain.Healthcare{
			IRMAA: domain.IRMAASettings{Enabled: true, LookbackYears: 2},
		},
		WithdrawalStrategy: domain.WithdrawalStrategy{RMDSatisfiedFirst: true},
		RMDs:               domain.RMDSettings{RMDStartAge: 73},
		TaxSettings: domain.TaxSettings{
			UseCurrentBrackets: true,
			BracketYear:        2026,
			ItemizedDeductions: domain.ItemizedDeductions{
				SALTCap:                    decimal.NewFromInt(10000),
				MortgageInterestDeductible: true,
			},
			NIITEnabled: true,
			AMTEnabled:  true,
		},
		PlanSettings: domain.PlanSettings{
			DefaultDividendTaxTreatment: domain.DividendCapitalGains,
		},
		SimulationSettings: domain.SimulationSettings{
			Mode: domain.ModeDeterministic,
			MonteCarlo: domain.MonteCarloSettings{
				NumSimulations:  1000,
				StockMeanReturn: 0.10,
				StockStdDev:     0.18,
				BondMeanReturn:  0.04,
				BondStdDev:      0.06,
				Correlation:     0.2,
			},
			Historical: domain.HistoricalSettings{
				StartYear:         calculation.HistoricalFirstYear,
				EndYear:           calculation.HistoricalLastYear,
				UseRollingPeriods: true,
			},
		},
	}
}

// applyDefaults fills per-item defaults that cannot be pre-seeded on list elements
func applyDefaults(plan *domain.Plan) {
	for i := range plan.Expenses {
		if plan.Expenses[i].SpendingType == "" {
			plan.Expenses[i].SpendingType = domain.SpendingEssential
		}
		if plan.Expenses[i].Owner == "" {
			plan.Expenses[i].Owner = domain.OwnerJoint
		}
	}
	for i := range plan.Accounts {
		if plan.Accounts[i].Owner == "" {
			plan.Accounts[i].Owner = domain.OwnerPrimary
		}
		if plan.Accounts[i].DividendTaxTreatment == "" {
			plan.Accounts[i].DividendTaxTreatment = domain.DividendPlanDefault
		}
	}
	for i := range plan.Income {
		if plan.Income[i].Owner == "" {
			plan.Income[i].Owner = domain.OwnerPrimary
		}
	}
	if plan.PlanSettings.DefaultDividendTaxTreatment == "" {
		plan.PlanSettings.DefaultDividendTaxTreatment = domain.DividendCapitalGains
	}
}

// ValidationResult collects every problem found in a plan
type ValidationResult struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Valid reports whether no errors were found
func (vr ValidationResult) Valid() bool { return len(vr.Errors) == 0 }

// Err joins the errors under ErrInvalidPlan, or returns nil
func (vr ValidationResult) Err() error {
	if vr.Valid() {
		return nil
	}
	errs := make([]error, 0, len(vr.Errors)+1)
	errs = append(errs, ErrInvalidPlan)
	for _, msg := range vr.Errors {
		errs = append(errs, errors.New(msg))
	}
	return errors.Join(errs...)
}

func (vr *ValidationResult) errorf(format string, args ...any) {
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

func (vr *ValidationResult) warnf(format string, args ...any) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// validator carries the cross-reference context of one plan
type validator struct {
	plan      *domain.Plan
	result    ValidationResult
	spouse    bool
	accounts  map[string]domain.Account
	assets    map[string]domain.RealAsset
	incomes   map[string]bool
	planStart dateutil.YearMonth
	planEnd   dateutil.YearMonth
	bounds    bool
}

// Validate checks enums, owners, dates, and cross references
func Validate(plan *domain.Plan) ValidationResult {
	v := &validator{
		plan:     plan,
		spouse:   plan.HasSpouse(),
		accounts: make(map[string]domain.Account, len(plan.Accounts)),
		assets:   make(map[string]domain.RealAsset, len(plan.RealAssets)),
		incomes:  make(map[string]bool, len(plan.Income)),
	}
	v.validatePeople()
	v.validatePlanSettings()
	v.validateAccounts()
	v.validateIncome()
	v.validateContributions()
	v.validateExpenses()
	v.validateSocialSecurity()
	v.validateHealthcare()
	v.validateRealAssets()
	v.validateTransactions()
	v.validateTransfers()
	v.validateRothConversions()
	v.validateWithdrawalStrategy()
	v.validateRMDs()
	v.validateTaxSettings()
	v.validateSimulation()
	return v.result
}

func enumString[T ~string](allowed []T) string {
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func checkEnum[T ~string](v *validator, path string, value T, optional bool, allowed ...T) {
	if value == "" && optional {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.result.errorf("%s: '%s' is not valid; expected one of [%s]", path, value, enumString(allowed))
}

func (v *validator) checkOwner(path, owner string, allowJoint bool) {
	allowed := []string{domain.OwnerPrimary, domain.OwnerSpouse}
	if allowJoint {
		allowed = append(allowed, domain.OwnerJoint)
	}
	checkEnum(v, path, owner, false, allowed...)
	if owner == domain.OwnerSpouse && !v.spouse {
		v.result.errorf("%s: references spouse, but people.spouse is missing", path)
	}
}

func (v *validator) checkDate(path, value string, required bool) {
	if value == "" {
		if required {
			v.result.errorf("%s: date is required", path)
		}
		return
	}
	if !dateutil.IsDateToken(value) {
		v.result.errorf("%s: '%s' is not valid; expected YYYY-MM or start/end", path, value)
	}
}

func (v *validator) checkRange(base, start, end string) {
	if !v.bounds || !dateutil.IsDateToken(start) || !dateutil.IsDateToken(end) {
		return
	}
	s, _ := dateutil.Resolve(start, v.planStart, v.planEnd, v.planStart)
	e, _ := dateutil.Resolve(end, v.planStart, v.planEnd, v.planEnd)
	if s.After(e) {
		v.result.errorf("%s.start_date/%s.end_date: start_date must be <= end_date", base, base)
	}
}

func (v *validator) checkSchedule(base string, s domain.Schedule, frequencies ...domain.Frequency) {
	checkEnum(v, base+".frequency", s.Frequency, true, frequencies...)
	v.checkChange(base, s.ChangeOverTime, s.ChangeRate)
	v.checkDate(base+".start_date", s.StartDate, true)
	v.checkDate(base+".end_date", s.EndDate, true)
	v.checkRange(base, s.StartDate, s.EndDate)
}

var changeOverTime = []domain.ChangeOverTime{
	domain.ChangeFixed, domain.ChangeIncrease, domain.ChangeDecrease,
	domain.ChangeMatchInflation, domain.ChangeInflationPlus, domain.ChangeInflationMinus,
}

func (v *validator) checkChange(base string, cot domain.ChangeOverTime, rate *decimal.Decimal) {
	checkEnum(v, base+".change_over_time", cot, true, changeOverTime...)
	if cot.NeedsRate() && rate == nil {
		v.result.errorf("%s.change_rate: required when change_over_time is '%s'", base, cot)
	}
}

func (v *validator) checkAccountRef(path, name string) (domain.Account, bool) {
	a, ok := v.accounts[name]
	if !ok {
		v.result.errorf("%s: '%s' does not match any account name", path, name)
	}
	return a, ok
}

func (v *validator) validatePeople() {
	v.checkPerson("people.primary", v.plan.People.Primary)
	if v.plan.People.Spouse != nil {
		v.checkPerson("people.spouse", *v.plan.People.Spouse)
	}

	fs := v.plan.FilingStatus
	checkEnum(v, "filing_status", fs, false, domain.FilingStatuses...)
	if (fs.RequiresSpouse() || fs == domain.FilingQualifyingSurvivingSpouse) && !v.spouse {
		v.result.errorf("filing_status: '%s' requires people.spouse", fs)
	}
	if (fs == domain.FilingSingle || fs == domain.FilingHeadOfHousehold) && v.spouse {
		v.result.warnf("filing_status: '%s' with people.spouse present is unusual but allowed", fs)
	}
}

func (v *validator) checkPerson(path string, p domain.Person) {
	if p.Birthday == "" {
		v.result.errorf("%s.birthday: required", path)
		return
	}
	if _, err := dateutil.ParseYearMonth(p.Birthday); err != nil {
		v.result.errorf("%s.birthday: '%s' is not valid; expected YYYY-MM", path, p.Birthday)
	}
}

func (v *validator) validatePlanSettings() {
	ps := v.plan.PlanSettings
	start, errStart := dateutil.ParseYearMonth(ps.PlanStart)
	end, errEnd := dateutil.ParseYearMonth(ps.PlanEnd)
	if errStart != nil {
		v.result.errorf("plan_settings.plan_start: '%s' is not valid; expected YYYY-MM", ps.PlanStart)
	}
	if errEnd != nil {
		v.result.errorf("plan_settings.plan_end: '%s' is not valid; expected YYYY-MM", ps.PlanEnd)
	}
	if errStart == nil && errEnd == nil {
		if start.After(end) {
			v.result.errorf("plan_settings.plan_start/plan_settings.plan_end: plan_start must be <= plan_end")
		} else {
			v.planStart, v.planEnd, v.bounds = start, end, true
		}
	}
	checkEnum(v, "plan_settings.default_dividend_tax_treatment", ps.DefaultDividendTaxTreatment, false,
		domain.DividendIncome, domain.DividendCapitalGains, domain.DividendTaxFree)
}

func (v *validator) validateAccounts() {
	hasCash := false
	for i, a := range v.plan.Accounts {
		base := fmt.Sprintf("accounts[%d]", i)
		if a.Name == "" {
			v.result.errorf("%s.name: required", base)
		}
		if _, dup := v.accounts[a.Name]; dup {
			v.result.errorf("%s.name: duplicate account name '%s'", base, a.Name)
		}
		v.accounts[a.Name] = a

		checkEnum(v, base+".type", a.Type, false, domain.AccountTypes...)
		v.checkOwner(base+".owner", a.Owner, true)
		checkEnum(v, base+".dividend_tax_treatment", a.DividendTaxTreatment, true,
			domain.DividendIncome, domain.DividendCapitalGains, domain.DividendTaxFree, domain.DividendPlanDefault)
		if a.Type == domain.AccountTaxableBrokerage && a.CostBasis == nil {
			v.result.errorf("%s.cost_basis: required for taxable_brokerage accounts", base)
		}
		if a.Balance.IsNegative() {
			v.result.errorf("%s.balance: cannot be negative", base)
		}
		if a.BondAllocationPercent.IsNegative() || a.BondAllocationPercent.GreaterThan(decimal.NewFromInt(100)) {
			v.result.errorf("%s.bond_allocation_percent: must be between 0 and 100", base)
		}
		if a.Type == domain.AccountCash {
			hasCash = true
		}
	}
	if !hasCash {
		v.result.errorf("accounts: at least one cash account is required")
	}
}

func (v *validator) validateIncome() {
	for i, it := range v.plan.Income {
		base := fmt.Sprintf("income[%d]", i)
		v.incomes[it.Name] = true
		v.checkOwner(base+".owner", it.Owner, false)
		v.checkSchedule(base, it.Schedule, domain.FrequencyMonthly, domain.FrequencyAnnual, domain.FrequencyOneTime)
		checkEnum(v, base+".tax_handling", it.TaxHandling, true, domain.TaxHandlingWithhold, domain.TaxHandlingTaxExempt)
		if it.TaxHandling == domain.TaxHandlingWithhold && it.WithholdPercent == nil {
			v.result.errorf("%s.withhold_percent: required when tax_handling is 'withhold'", base)
		}
	}
}

func (v *validator) validateContributions() {
	for i, c := range v.plan.Contributions {
		base := fmt.Sprintf("contributions[%d]", i)
		if c.SourceAccount != domain.SourceIncome {
			v.checkAccountRef(base+".source_account", c.SourceAccount)
		}
		v.checkAccountRef(base+".destination_account", c.DestinationAccount)
		v.checkSchedule(base, c.Schedule, domain.FrequencyMonthly, domain.FrequencyAnnual)
		if c.EmployerMatch != nil && !v.incomes[c.EmployerMatch.SalaryReference] {
			v.result.errorf("%s.employer_match.salary_reference: '%s' does not match any income name",
				base, c.EmployerMatch.SalaryReference)
		}
	}
}

func (v *validator) validateExpenses() {
	for i, e := range v.plan.Expenses {
		base := fmt.Sprintf("expenses[%d]", i)
		v.checkOwner(base+".owner", e.Owner, true)
		v.checkSchedule(base, e.Schedule, domain.FrequencyMonthly, domain.FrequencyAnnual, domain.FrequencyOneTime)
		checkEnum(v, base+".spending_type", e.SpendingType, true, domain.SpendingEssential, domain.SpendingDiscretionary)
	}
}

func (v *validator) validateSocialSecurity() {
	for i, s := range v.plan.SocialSecurity {
		base := fmt.Sprintf("social_security[%d]", i)
		v.checkOwner(base+".owner", s.Owner, false)
		checkEnum(v, base+".cola_assumption", s.COLAAssumption, true,
			domain.COLAFixed, domain.COLAMatchInflation, domain.COLAInflationPlus, domain.COLAInflationMinus)
		if s.COLAAssumption != domain.COLAMatchInflation && s.COLAAssumption != "" && s.COLARate == nil {
			v.result.errorf("%s.cola_rate: required when cola_assumption is '%s'", base, s.COLAAssumption)
		}
		if s.ClaimMonths() < 62*12 || s.ClaimMonths() > 70*12 {
			v.result.errorf("%s: claiming age must be between 62 and 70", base)
		}
		if s.FRAAgeMonths < 0 || s.FRAAgeMonths > 11 || s.ClaimingAgeMonths < 0 || s.ClaimingAgeMonths > 11 {
			v.result.errorf("%s: age months must be between 0 and 11", base)
		}
	}
}

func (v *validator) validateHealthcare() {
	hc := v.plan.Healthcare
	for i, c := range hc.PreMedicare {
		base := fmt.Sprintf("healthcare.pre_medicare[%d]", i)
		v.checkOwner(base+".owner", c.Owner, false)
		v.checkChange(base, c.ChangeOverTime, c.ChangeRate)
		v.checkDate(base+".start_date", c.StartDate, false)
		v.checkDate(base+".end_date", c.EndDate, false)
	}
	for i, c := range hc.PostMedicare {
		base := fmt.Sprintf("healthcare.post_medicare[%d]", i)
		v.checkOwner(base+".owner", c.Owner, false)
		v.checkChange(base, c.ChangeOverTime, c.ChangeRate)
		v.checkDate(base+".medicare_start_date", c.MedicareStartDate, false)
	}
	if hc.IRMAA.Enabled && hc.IRMAA.LookbackYears < 0 {
		v.result.errorf("healthcare.irmaa.lookback_years: cannot be negative")
	}
}

func (v *validator) validateRealAssets() {
	for i, a := range v.plan.RealAssets {
		base := fmt.Sprintf("real_assets[%d]", i)
		if _, dup := v.assets[a.Name]; dup {
			v.result.errorf("%s.name: duplicate real asset name '%s'", base, a.Name)
		}
		v.assets[a.Name] = a
		v.checkChange(base, a.ChangeOverTime, a.ChangeRate)
		if a.Mortgage != nil {
			v.checkDate(base+".mortgage.end_date", a.Mortgage.EndDate, false)
		}
		for j, m := range a.MaintenanceExpenses {
			checkEnum(v, fmt.Sprintf("%s.maintenance_expenses[%d].frequency", base, j), m.Frequency, true,
				domain.FrequencyMonthly, domain.FrequencyAnnual)
		}
	}
}

func (v *validator) validateTransactions() {
	for i, t := range v.plan.Transactions {
		base := fmt.Sprintf("transactions[%d]", i)
		v.checkDate(base+".date", t.Date, true)
		checkEnum(v, base+".type", t.Type, false,
			domain.TransactionSellAsset, domain.TransactionBuyAsset, domain.TransactionTransfer, domain.TransactionOther)
		checkEnum(v, base+".tax_treatment", t.TaxTreatment, true, domain.TaxAsCapitalGains, domain.TaxAsIncome, domain.TaxFree)
		if t.LinkedAsset != "" {
			if _, ok := v.assets[t.LinkedAsset]; !ok {
				v.result.errorf("%s.linked_asset: '%s' does not match any real asset name", base, t.LinkedAsset)
			}
		}
		if t.Type == domain.TransactionSellAsset && t.LinkedAsset == "" {
			v.result.errorf("%s.linked_asset: required for sell_asset transactions", base)
		}
		if t.DepositToAccount != "" {
			v.checkAccountRef(base+".deposit_to_account", t.DepositToAccount)
		}
	}
}

func (v *validator) validateTransfers() {
	for i, t := range v.plan.Transfers {
		base := fmt.Sprintf("transfers[%d]", i)
		v.checkAccountRef(base+".from_account", t.FromAccount)
		v.checkAccountRef(base+".to_account", t.ToAccount)
		v.checkSchedule(base, t.Schedule, domain.FrequencyMonthly, domain.FrequencyAnnual, domain.FrequencyOneTime)
		checkEnum(v, base+".tax_treatment", t.TaxTreatment, true, domain.TaxAsCapitalGains, domain.TaxAsIncome, domain.TaxFree)
	}
}

func (v *validator) validateRothConversions() {
	for i, c := range v.plan.RothConversions {
		base := fmt.Sprintf("roth_conversions[%d]", i)
		v.checkDate(base+".start_date", c.StartDate, true)
		v.checkDate(base+".end_date", c.EndDate, true)
		v.checkRange(base, c.StartDate, c.EndDate)
		if src, ok := v.checkAccountRef(base+".from_account", c.FromAccount); ok && !src.Type.IsPreTax() {
			v.result.errorf("%s.from_account: must be traditional_ira or 401k", base)
		}
		if dst, ok := v.checkAccountRef(base+".to_account", c.ToAccount); ok && dst.Type != domain.AccountRothIRA {
			v.result.errorf("%s.to_account: must be roth_ira", base)
		}
		switch {
		case c.FillToBracket != "":
			if _, err := calculation.ParseBracketRate(c.FillToBracket); err != nil {
				v.result.errorf("%s.fill_to_bracket: %v", base, err)
			}
		case c.AnnualAmount == nil:
			v.result.errorf("%s: annual_amount or fill_to_bracket is required", base)
		}
	}
}

func (v *validator) validateWithdrawalStrategy() {
	ws := v.plan.WithdrawalStrategy
	if ws.UseAccountSpecific {
		for i, name := range ws.AccountSpecificOrder {
			v.checkAccountRef(fmt.Sprintf("withdrawal_strategy.account_specific_order[%d]", i), name)
		}
		return
	}
	for i, t := range ws.Order {
		checkEnum(v, fmt.Sprintf("withdrawal_strategy.order[%d]", i), t, false, domain.AccountTypes...)
	}
}

func (v *validator) validateRMDs() {
	r := v.plan.RMDs
	if !r.Enabled {
		return
	}
	for i, name := range r.Accounts {
		if a, ok := v.checkAccountRef(fmt.Sprintf("rmds.accounts[%d]", i), name); ok && !a.Type.IsPreTax() {
			v.result.errorf("rmds.accounts[%d]: account must be 401k or traditional_ira", i)
		}
	}
	if r.DestinationAccount != "" {
		v.checkAccountRef("rmds.destination_account", r.DestinationAccount)
	}
	if r.RMDStartAge < 72 || r.RMDStartAge > 75 {
		v.result.warnf("rmds.rmd_start_age: %d is outside the usual 72-75 range", r.RMDStartAge)
	}
}

func (v *validator) validateTaxSettings() {
	ts := v.plan.TaxSettings
	overrides := []struct {
		name string
		rate *decimal.Decimal
	}{
		{"federal_effective_rate_override", ts.FederalEffectiveRateOverride},
		{"state_effective_rate_override", ts.StateEffectiveRateOverride},
		{"capital_gains_rate_override", ts.CapitalGainsRateOverride},
	}
	for _, o := range overrides {
		if o.rate != nil && (o.rate.IsNegative() || o.rate.GreaterThan(decimal.NewFromInt(1))) {
			v.result.errorf("tax_settings.%s: must be a fraction between 0 and 1", o.name)
		}
	}
	if ts.ItemizedDeductions.SALTCap.IsNegative() {
		v.result.errorf("tax_settings.itemized_deductions.salt_cap: cannot be negative")
	}
}

func (v *validator) validateSimulation() {
	ss := v.plan.SimulationSettings
	checkEnum(v, "simulation_settings.mode", ss.Mode, false,
		domain.ModeDeterministic, domain.ModeMonteCarlo, domain.ModeHistorical)
	mc := ss.MonteCarlo
	if ss.Mode == domain.ModeMonteCarlo && mc.NumSimulations <= 0 {
		v.result.errorf("simulation_settings.monte_carlo.num_simulations: must be positive")
	}
	if mc.Correlation < -1 || mc.Correlation > 1 {
		v.result.errorf("simulation_settings.monte_carlo.correlation: must be between -1 and 1")
	}
	if mc.StockStdDev < 0 || mc.BondStdDev < 0 {
		v.result.errorf("simulation_settings.monte_carlo: standard deviations cannot be negative")
	}
	h := ss.Historical
	if h.StartYear > h.EndYear {
		v.result.errorf("simulation_settings.historical: start_year must be <= end_year")
	}
	if h.DataFile == "" && (h.StartYear < calculation.HistoricalFirstYear || h.EndYear > calculation.HistoricalLastYear) {
		v.result.errorf("simulation_settings.historical: built-in data covers %d-%d",
			calculation.HistoricalFirstYear, calculation.HistoricalLastYear)
	}
}
