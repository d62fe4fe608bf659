package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType classifies an account for tax and withdrawal treatment
type AccountType string

const (
	AccountCash             AccountType = "cash"
	AccountTaxableBrokerage AccountType = "taxable_brokerage"
	Account401k             AccountType = "401k"
	AccountTraditionalIRA   AccountType = "traditional_ira"
	AccountRothIRA          AccountType = "roth_ira"
	AccountHSA              AccountType = "hsa"
	Account529              AccountType = "529"
	AccountOther            AccountType = "other"
)

// AccountTypes lists every recognized account type
var AccountTypes = []AccountType{
	AccountCash, AccountTaxableBrokerage, Account401k, AccountTraditionalIRA,
	AccountRothIRA, AccountHSA, Account529, AccountOther,
}

// IsPreTax reports whether withdrawals are taxed as ordinary income
func (t AccountType) IsPreTax() bool {
	return t == Account401k || t == AccountTraditionalIRA
}

// FilingStatus is the federal filing status
type FilingStatus string

const (
	FilingSingle                    FilingStatus = "single"
	FilingMarriedJointly            FilingStatus = "married_filing_jointly"
	FilingMarriedSeparately         FilingStatus = "married_filing_separately"
	FilingHeadOfHousehold           FilingStatus = "head_of_household"
	FilingQualifyingSurvivingSpouse FilingStatus = "qualifying_surviving_spouse"
)

// FilingStatuses lists every recognized filing status
var FilingStatuses = []FilingStatus{
	FilingSingle, FilingMarriedJointly, FilingMarriedSeparately,
	FilingHeadOfHousehold, FilingQualifyingSurvivingSpouse,
}

// IsJoint reports whether the status uses joint thresholds
func (fs FilingStatus) IsJoint() bool {
	return fs == FilingMarriedJointly || fs == FilingQualifyingSurvivingSpouse
}

// RequiresSpouse reports whether the status implies a married household
func (fs FilingStatus) RequiresSpouse() bool {
	return fs == FilingMarriedJointly || fs == FilingMarriedSeparately
}

// Frequency controls when a recurring item fires
type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyAnnual  Frequency = "annual"
	FrequencyOneTime Frequency = "one_time"
)

// ChangeOverTime controls how an amount evolves across plan years
type ChangeOverTime string

const (
	ChangeFixed          ChangeOverTime = "fixed"
	ChangeIncrease       ChangeOverTime = "increase"
	ChangeDecrease       ChangeOverTime = "decrease"
	ChangeMatchInflation ChangeOverTime = "match_inflation"
	ChangeInflationPlus  ChangeOverTime = "inflation_plus"
	ChangeInflationMinus ChangeOverTime = "inflation_minus"
)

// NeedsRate reports whether change_rate must be supplied
func (c ChangeOverTime) NeedsRate() bool {
	return c == ChangeIncrease || c == ChangeDecrease || c == ChangeInflationPlus || c == ChangeInflationMinus
}

// DividendTreatment is how dividends are taxed
type DividendTreatment string

const (
	DividendIncome       DividendTreatment = "income"
	DividendCapitalGains DividendTreatment = "capital_gains"
	DividendTaxFree      DividendTreatment = "tax_free"
	DividendPlanDefault  DividendTreatment = "plan_settings"
)

// TaxTreatment is how a transfer or transaction is taxed
type TaxTreatment string

const (
	TaxAsCapitalGains TaxTreatment = "capital_gains"
	TaxAsIncome       TaxTreatment = "income"
	TaxFree           TaxTreatment = "tax_free"
)

// TaxHandling is how an income stream is taxed
type TaxHandling string

const (
	TaxHandlingWithhold  TaxHandling = "withhold"
	TaxHandlingTaxExempt TaxHandling = "tax_exempt"
)

// SpendingType categorizes expenses
type SpendingType string

const (
	SpendingEssential     SpendingType = "essential"
	SpendingDiscretionary SpendingType = "discretionary"
)

// COLAAssumption controls Social Security cost-of-living adjustments
type COLAAssumption string

const (
	COLAFixed          COLAAssumption = "fixed"
	COLAMatchInflation COLAAssumption = "match_inflation"
	COLAInflationPlus  COLAAssumption = "inflation_plus"
	COLAInflationMinus COLAAssumption = "inflation_minus"
)

// TransactionType is the kind of one-time transaction
type TransactionType string

const (
	TransactionSellAsset TransactionType = "sell_asset"
	TransactionBuyAsset  TransactionType = "buy_asset"
	TransactionTransfer  TransactionType = "transfer"
	TransactionOther     TransactionType = "other"
)

// SimulationMode selects how the engine is replayed
type SimulationMode string

const (
	ModeDeterministic SimulationMode = "deterministic"
	ModeMonteCarlo    SimulationMode = "monte_carlo"
	ModeHistorical    SimulationMode = "historical"
)

// Owner keys
const (
	OwnerPrimary = "primary"
	OwnerSpouse  = "spouse"
	OwnerJoint   = "joint"
)

// SourceIncome marks a contribution funded from the paycheck rather than an account
const SourceIncome = "income"

// Person is a household member
type Person struct {
	Name     string `yaml:"name" json:"name"`
	Birthday string `yaml:"birthday" json:"birthday"` // YYYY-MM
	State    string `yaml:"state,omitempty" json:"state,omitempty"`
}

// People is the household
type People struct {
	Primary Person  `yaml:"primary" json:"primary"`
	Spouse  *Person `yaml:"spouse,omitempty" json:"spouse,omitempty"`
}

// Account is a static account definition
type Account struct {
	Name                  string            `yaml:"name" json:"name"`
	Type                  AccountType       `yaml:"type" json:"type"`
	Owner                 string            `yaml:"owner" json:"owner"`
	Balance               decimal.Decimal   `yaml:"balance" json:"balance"`
	CostBasis             *decimal.Decimal  `yaml:"cost_basis,omitempty" json:"cost_basis,omitempty"`
	GrowthRate            decimal.Decimal   `yaml:"growth_rate" json:"growth_rate"`
	DividendYield         decimal.Decimal   `yaml:"dividend_yield" json:"dividend_yield"`
	DividendTaxTreatment  DividendTreatment `yaml:"dividend_tax_treatment" json:"dividend_tax_treatment"`
	ReinvestDividends     bool              `yaml:"reinvest_dividends" json:"reinvest_dividends"`
	BondAllocationPercent decimal.Decimal   `yaml:"bond_allocation_percent" json:"bond_allocation_percent"`
	YearlyFees            decimal.Decimal   `yaml:"yearly_fees" json:"yearly_fees"`
	AllowWithdrawals      *bool             `yaml:"allow_withdrawals,omitempty" json:"allow_withdrawals,omitempty"`
}

// WithdrawalsAllowed reports whether the waterfall may draw on the account (default true)
func (a Account) WithdrawalsAllowed() bool {
	return a.AllowWithdrawals == nil || *a.AllowWithdrawals
}

// EmployerMatch caps a match at a percent of a referenced salary stream
type EmployerMatch struct {
	MatchPercent        decimal.Decimal `yaml:"match_percent" json:"match_percent"`
	UpToPercentOfSalary decimal.Decimal `yaml:"up_to_percent_of_salary" json:"up_to_percent_of_salary"`
	SalaryReference     string          `yaml:"salary_reference" json:"salary_reference"`
}

// Schedule is the shared activity window of recurring items
type Schedule struct {
	Frequency      Frequency        `yaml:"frequency" json:"frequency"`
	StartDate      string           `yaml:"start_date" json:"start_date"`
	EndDate        string           `yaml:"end_date" json:"end_date"`
	ChangeOverTime ChangeOverTime   `yaml:"change_over_time,omitempty" json:"change_over_time,omitempty"`
	ChangeRate     *decimal.Decimal `yaml:"change_rate,omitempty" json:"change_rate,omitempty"`
}

// Contribution moves money into an account on a schedule
type Contribution struct {
	Name               string          `yaml:"name" json:"name"`
	SourceAccount      string          `yaml:"source_account" json:"source_account"`
	DestinationAccount string          `yaml:"destination_account" json:"destination_account"`
	Amount             decimal.Decimal `yaml:"amount" json:"amount"`
	Schedule           `yaml:",inline"`
	EmployerMatch      *EmployerMatch `yaml:"employer_match,omitempty" json:"employer_match,omitempty"`
}

// Income is an income stream paid into cash
type Income struct {
	Name            string           `yaml:"name" json:"name"`
	Owner           string           `yaml:"owner" json:"owner"`
	Amount          decimal.Decimal  `yaml:"amount" json:"amount"`
	Schedule        `yaml:",inline"`
	TaxHandling     TaxHandling      `yaml:"tax_handling" json:"tax_handling"`
	WithholdPercent *decimal.Decimal `yaml:"withhold_percent,omitempty" json:"withhold_percent,omitempty"`
	FICAExempt      bool             `yaml:"fica_exempt,omitempty" json:"fica_exempt,omitempty"`
}

// Expense is a spending stream paid from cash
type Expense struct {
	Name         string          `yaml:"name" json:"name"`
	Owner        string          `yaml:"owner" json:"owner"`
	Amount       decimal.Decimal `yaml:"amount" json:"amount"`
	Schedule     `yaml:",inline"`
	SpendingType SpendingType `yaml:"spending_type" json:"spending_type"`
}

// SocialSecurity describes one owner's benefit election
type SocialSecurity struct {
	Owner             string           `yaml:"owner" json:"owner"`
	PIAAtFRA          decimal.Decimal  `yaml:"pia_at_fra" json:"pia_at_fra"`
	FRAAgeYears       int              `yaml:"fra_age_years" json:"fra_age_years"`
	FRAAgeMonths      int              `yaml:"fra_age_months" json:"fra_age_months"`
	ClaimingAgeYears  int              `yaml:"claiming_age_years" json:"claiming_age_years"`
	ClaimingAgeMonths int              `yaml:"claiming_age_months" json:"claiming_age_months"`
	COLAAssumption    COLAAssumption   `yaml:"cola_assumption" json:"cola_assumption"`
	COLARate          *decimal.Decimal `yaml:"cola_rate,omitempty" json:"cola_rate,omitempty"`
}

// ClaimMonths is the claiming age in months
func (s SocialSecurity) ClaimMonths() int { return s.ClaimingAgeYears*12 + s.ClaimingAgeMonths }

// FRAMonths is the full retirement age in months
func (s SocialSecurity) FRAMonths() int { return s.FRAAgeYears*12 + s.FRAAgeMonths }

// PreMedicareCoverage is health coverage before age 65
type PreMedicareCoverage struct {
	Owner             string           `yaml:"owner" json:"owner"`
	MonthlyPremium    decimal.Decimal  `yaml:"monthly_premium" json:"monthly_premium"`
	AnnualOutOfPocket decimal.Decimal  `yaml:"annual_out_of_pocket" json:"annual_out_of_pocket"`
	StartDate         string           `yaml:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate           string           `yaml:"end_date,omitempty" json:"end_date,omitempty"`
	ChangeOverTime    ChangeOverTime   `yaml:"change_over_time,omitempty" json:"change_over_time,omitempty"`
	ChangeRate        *decimal.Decimal `yaml:"change_rate,omitempty" json:"change_rate,omitempty"`
}

// PostMedicareCoverage is Medicare coverage from age 65
type PostMedicareCoverage struct {
	Owner                    string           `yaml:"owner" json:"owner"`
	MedicareStartDate        string           `yaml:"medicare_start_date,omitempty" json:"medicare_start_date,omitempty"`
	PartBMonthlyPremium      decimal.Decimal  `yaml:"part_b_monthly_premium" json:"part_b_monthly_premium"`
	SupplementMonthlyPremium decimal.Decimal  `yaml:"supplement_monthly_premium" json:"supplement_monthly_premium"`
	PartDMonthlyPremium      decimal.Decimal  `yaml:"part_d_monthly_premium" json:"part_d_monthly_premium"`
	AnnualOutOfPocket        decimal.Decimal  `yaml:"annual_out_of_pocket" json:"annual_out_of_pocket"`
	ChangeOverTime           ChangeOverTime   `yaml:"change_over_time,omitempty" json:"change_over_time,omitempty"`
	ChangeRate               *decimal.Decimal `yaml:"change_rate,omitempty" json:"change_rate,omitempty"`
}

// IRMAASettings controls the Medicare income surcharge
type IRMAASettings struct {
	Enabled       bool `yaml:"enabled" json:"enabled"`
	LookbackYears int  `yaml:"lookback_years" json:"lookback_years"`
}

// Healthcare groups coverage models
type Healthcare struct {
	PreMedicare  []PreMedicareCoverage  `yaml:"pre_medicare,omitempty" json:"pre_medicare,omitempty"`
	PostMedicare []PostMedicareCoverage `yaml:"post_medicare,omitempty" json:"post_medicare,omitempty"`
	IRMAA        IRMAASettings          `yaml:"irmaa" json:"irmaa"`
}

// Mortgage is a loan secured by a real asset
type Mortgage struct {
	Payment          decimal.Decimal `yaml:"payment" json:"payment"`
	RemainingBalance decimal.Decimal `yaml:"remaining_balance" json:"remaining_balance"`
	InterestRate     decimal.Decimal `yaml:"interest_rate" json:"interest_rate"`
	EndDate          string          `yaml:"end_date,omitempty" json:"end_date,omitempty"`
}

// MaintenanceExpense is an upkeep cost of a real asset
type MaintenanceExpense struct {
	Name      string          `yaml:"name" json:"name"`
	Amount    decimal.Decimal `yaml:"amount" json:"amount"`
	Frequency Frequency       `yaml:"frequency" json:"frequency"`
}

// RealAsset is a non-financial asset such as a home
type RealAsset struct {
	Name                string               `yaml:"name" json:"name"`
	CurrentValue        decimal.Decimal      `yaml:"current_value" json:"current_value"`
	PurchasePrice       decimal.Decimal      `yaml:"purchase_price" json:"purchase_price"`
	PrimaryResidence    bool                 `yaml:"primary_residence" json:"primary_residence"`
	ChangeOverTime      ChangeOverTime       `yaml:"change_over_time,omitempty" json:"change_over_time,omitempty"`
	ChangeRate          *decimal.Decimal     `yaml:"change_rate,omitempty" json:"change_rate,omitempty"`
	PropertyTaxRate     decimal.Decimal      `yaml:"property_tax_rate" json:"property_tax_rate"`
	Mortgage            *Mortgage            `yaml:"mortgage,omitempty" json:"mortgage,omitempty"`
	MaintenanceExpenses []MaintenanceExpense `yaml:"maintenance_expenses,omitempty" json:"maintenance_expenses,omitempty"`
}

// Transaction is a dated one-time event
type Transaction struct {
	Name             string          `yaml:"name" json:"name"`
	Date             string          `yaml:"date" json:"date"`
	Type             TransactionType `yaml:"type" json:"type"`
	Amount           decimal.Decimal `yaml:"amount" json:"amount"`
	Fees             decimal.Decimal `yaml:"fees" json:"fees"`
	TaxTreatment     TaxTreatment    `yaml:"tax_treatment" json:"tax_treatment"`
	LinkedAsset      string          `yaml:"linked_asset,omitempty" json:"linked_asset,omitempty"`
	DepositToAccount string          `yaml:"deposit_to_account,omitempty" json:"deposit_to_account,omitempty"`
}

// Transfer is a recurring movement between accounts
type Transfer struct {
	Name         string          `yaml:"name" json:"name"`
	FromAccount  string          `yaml:"from_account" json:"from_account"`
	ToAccount    string          `yaml:"to_account" json:"to_account"`
	Amount       decimal.Decimal `yaml:"amount" json:"amount"`
	Schedule     `yaml:",inline"`
	TaxTreatment TaxTreatment `yaml:"tax_treatment,omitempty" json:"tax_treatment,omitempty"`
}

// WithdrawalStrategy controls the shortfall waterfall and December ordering
type WithdrawalStrategy struct {
	Order                []AccountType `yaml:"order,omitempty" json:"order,omitempty"`
	AccountSpecificOrder []string      `yaml:"account_specific_order,omitempty" json:"account_specific_order,omitempty"`
	UseAccountSpecific   bool          `yaml:"use_account_specific" json:"use_account_specific"`
	RMDSatisfiedFirst    bool          `yaml:"rmd_satisfied_first" json:"rmd_satisfied_first"`
}

// RothConversion moves pre-tax money into a Roth account
type RothConversion struct {
	Name          string           `yaml:"name" json:"name"`
	FromAccount   string           `yaml:"from_account" json:"from_account"`
	ToAccount     string           `yaml:"to_account" json:"to_account"`
	AnnualAmount  *decimal.Decimal `yaml:"annual_amount,omitempty" json:"annual_amount,omitempty"`
	StartDate     string           `yaml:"start_date" json:"start_date"`
	EndDate       string           `yaml:"end_date" json:"end_date"`
	FillToBracket string           `yaml:"fill_to_bracket,omitempty" json:"fill_to_bracket,omitempty"`
}

// RMDSettings controls required minimum distributions
type RMDSettings struct {
	Enabled            bool     `yaml:"enabled" json:"enabled"`
	RMDStartAge        int      `yaml:"rmd_start_age" json:"rmd_start_age"`
	Accounts           []string `yaml:"accounts,omitempty" json:"accounts,omitempty"`
	DestinationAccount string   `yaml:"destination_account" json:"destination_account"`
}

// ItemizedDeductions are the itemizable expenses
type ItemizedDeductions struct {
	SALTCap                    decimal.Decimal `yaml:"salt_cap" json:"salt_cap"`
	MortgageInterestDeductible bool            `yaml:"mortgage_interest_deductible" json:"mortgage_interest_deductible"`
	CharitableContributions    decimal.Decimal `yaml:"charitable_contributions" json:"charitable_contributions"`
}

// TaxSettings selects bracket years and overrides
type TaxSettings struct {
	UseCurrentBrackets           bool               `yaml:"use_current_brackets" json:"use_current_brackets"`
	BracketYear                  int                `yaml:"bracket_year" json:"bracket_year"`
	FederalEffectiveRateOverride *decimal.Decimal   `yaml:"federal_effective_rate_override,omitempty" json:"federal_effective_rate_override,omitempty"`
	StateEffectiveRateOverride   *decimal.Decimal   `yaml:"state_effective_rate_override,omitempty" json:"state_effective_rate_override,omitempty"`
	CapitalGainsRateOverride     *decimal.Decimal   `yaml:"capital_gains_rate_override,omitempty" json:"capital_gains_rate_override,omitempty"`
	StandardDeductionOverride    *decimal.Decimal   `yaml:"standard_deduction_override,omitempty" json:"standard_deduction_override,omitempty"`
	ItemizedDeductions           ItemizedDeductions `yaml:"itemized_deductions" json:"itemized_deductions"`
	NIITEnabled                  bool               `yaml:"niit_enabled" json:"niit_enabled"`
	AMTEnabled                   bool               `yaml:"amt_enabled" json:"amt_enabled"`
}

// PlanSettings bounds the projection
type PlanSettings struct {
	PlanStart                   string            `yaml:"plan_start" json:"plan_start"`
	PlanEnd                     string            `yaml:"plan_end" json:"plan_end"`
	InflationRate               decimal.Decimal   `yaml:"inflation_rate" json:"inflation_rate"`
	DefaultDividendTaxTreatment DividendTreatment `yaml:"default_dividend_tax_treatment" json:"default_dividend_tax_treatment"`
}

// MonteCarloSettings parameterizes return sampling
type MonteCarloSettings struct {
	NumSimulations  int     `yaml:"num_simulations" json:"num_simulations"`
	StockMeanReturn float64 `yaml:"stock_mean_return" json:"stock_mean_return"`
	StockStdDev     float64 `yaml:"stock_std_dev" json:"stock_std_dev"`
	BondMeanReturn  float64 `yaml:"bond_mean_return" json:"bond_mean_return"`
	BondStdDev      float64 `yaml:"bond_std_dev" json:"bond_std_dev"`
	Correlation     float64 `yaml:"correlation" json:"correlation"`
}

// HistoricalSettings parameterizes historical replay
type HistoricalSettings struct {
	StartYear         int    `yaml:"start_year" json:"start_year"`
	EndYear           int    `yaml:"end_year" json:"end_year"`
	UseRollingPeriods bool   `yaml:"use_rolling_periods" json:"use_rolling_periods"`
	DataFile          string `yaml:"data_file,omitempty" json:"data_file,omitempty"`
}

// SimulationSettings selects the replay mode
type SimulationSettings struct {
	Mode       SimulationMode     `yaml:"mode" json:"mode"`
	MonteCarlo MonteCarloSettings `yaml:"monte_carlo" json:"monte_carlo"`
	Historical HistoricalSettings `yaml:"historical" json:"historical"`
}

// Plan is the complete, validated household plan. The engine never mutates it.
type Plan struct {
	Name               string             `yaml:"name,omitempty" json:"name,omitempty"`
	People             People             `yaml:"people" json:"people"`
	FilingStatus       FilingStatus       `yaml:"filing_status" json:"filing_status"`
	Accounts           []Account          `yaml:"accounts" json:"accounts"`
	Contributions      []Contribution     `yaml:"contributions,omitempty" json:"contributions,omitempty"`
	Income             []Income           `yaml:"income,omitempty" json:"income,omitempty"`
	Expenses           []Expense          `yaml:"expenses,omitempty" json:"expenses,omitempty"`
	SocialSecurity     []SocialSecurity   `yaml:"social_security,omitempty" json:"social_security,omitempty"`
	Healthcare         Healthcare         `yaml:"healthcare" json:"healthcare"`
	RealAssets         []RealAsset        `yaml:"real_assets,omitempty" json:"real_assets,omitempty"`
	Transactions       []Transaction      `yaml:"transactions,omitempty" json:"transactions,omitempty"`
	Transfers          []Transfer         `yaml:"transfers,omitempty" json:"transfers,omitempty"`
	WithdrawalStrategy WithdrawalStrategy `yaml:"withdrawal_strategy" json:"withdrawal_strategy"`
	RothConversions    []RothConversion   `yaml:"roth_conversions,omitempty" json:"roth_conversions,omitempty"`
	RMDs               RMDSettings        `yaml:"rmds" json:"rmds"`
	TaxSettings        TaxSettings        `yaml:"tax_settings" json:"tax_settings"`
	PlanSettings       PlanSettings       `yaml:"plan_settings" json:"plan_settings"`
	SimulationSettings SimulationSettings `yaml:"simulation_settings" json:"simulation_settings"`
}

// AccountByName returns the named account
func (p *Plan) AccountByName(name string) (Account, bool) {
	for _, a := range p.Accounts {
		if a.Name == name {
			return a, true
		}
	}
	return Account{}, false
}

// HasSpouse reports whether the household has a second person
func (p *Plan) HasSpouse() bool {
	return p.People.Spouse != nil
}

// DefaultHomeState taxes a household whose primary person names no state
const DefaultHomeState = "CA"

// HomeState is the primary person's state of residence, DefaultHomeState when unset
func (p *Plan) HomeState() string {
	if p.People.Primary.State == "" {
		return DefaultHomeState
	}
	return p.People.Primary.State
}
