package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthResult is the finalized record of one simulated month
type MonthResult struct {
	Year  int `json:"year"`
	Month int `json:"month"`

	Income               decimal.Decimal `json:"income"`
	SocialSecurityIncome decimal.Decimal `json:"social_security_income"`
	TaxWithheld          decimal.Decimal `json:"tax_withheld"`
	FICATax              decimal.Decimal `json:"fica_tax"`
	Contributions        decimal.Decimal `json:"contributions"`
	EmployerMatch        decimal.Decimal `json:"employer_match"`
	Transfers            decimal.Decimal `json:"transfers"`
	RMDWithdrawals       decimal.Decimal `json:"rmd_withdrawals"`
	RothConversions      decimal.Decimal `json:"roth_conversions"`

	EssentialExpenses     decimal.Decimal `json:"essential_expenses"`
	DiscretionaryExpenses decimal.Decimal `json:"discretionary_expenses"`
	HealthcareExpenses    decimal.Decimal `json:"healthcare_expenses"`
	IRMAASurcharge        decimal.Decimal `json:"irmaa_surcharge"`
	RealAssetExpenses     decimal.Decimal `json:"real_asset_expenses"`

	Withdrawals            decimal.Decimal `json:"withdrawals"`
	RealizedCapitalGains   decimal.Decimal `json:"realized_capital_gains"`
	EarlyWithdrawalPenalty decimal.Decimal `json:"early_withdrawal_penalty"`
	Growth                 decimal.Decimal `json:"growth"`
	Dividends              decimal.Decimal `json:"dividends"`
	Fees                   decimal.Decimal `json:"fees"`
	EstimatedTaxPaid       decimal.Decimal `json:"estimated_tax_paid"`
	TaxSettlement          decimal.Decimal `json:"tax_settlement"` // positive payment, negative refund

	AccountBalancesEnd map[string]decimal.Decimal `json:"account_balances_end"`
	RealAssetValuesEnd map[string]decimal.Decimal `json:"real_asset_values_end"`
	NetWorthEnd        decimal.Decimal            `json:"net_worth_end"`
	Insolvent          bool                       `json:"insolvent"`
}

// TotalExpenses sums every expense category of the month
func (m MonthResult) TotalExpenses() decimal.Decimal {
	return m.EssentialExpenses.Add(m.DiscretionaryExpenses).Add(m.HealthcareExpenses).Add(m.RealAssetExpenses)
}

// AnnualResult rolls up a calendar year and carries the December tax settlement
type AnnualResult struct {
	Year int `json:"year"`

	Income                 decimal.Decimal `json:"income"`
	SocialSecurityIncome   decimal.Decimal `json:"social_security_income"`
	TaxWithheld            decimal.Decimal `json:"tax_withheld"`
	FICATax                decimal.Decimal `json:"fica_tax"`
	Contributions          decimal.Decimal `json:"contributions"`
	EmployerMatch          decimal.Decimal `json:"employer_match"`
	Transfers              decimal.Decimal `json:"transfers"`
	RMDWithdrawals         decimal.Decimal `json:"rmd_withdrawals"`
	RothConversions        decimal.Decimal `json:"roth_conversions"`
	EssentialExpenses      decimal.Decimal `json:"essential_expenses"`
	DiscretionaryExpenses  decimal.Decimal `json:"discretionary_expenses"`
	HealthcareExpenses     decimal.Decimal `json:"healthcare_expenses"`
	IRMAASurcharge         decimal.Decimal `json:"irmaa_surcharge"`
	RealAssetExpenses      decimal.Decimal `json:"real_asset_expenses"`
	MortgageInterest       decimal.Decimal `json:"mortgage_interest"`
	Withdrawals            decimal.Decimal `json:"withdrawals"`
	RealizedCapitalGains   decimal.Decimal `json:"realized_capital_gains"`
	EarlyWithdrawalPenalty decimal.Decimal `json:"early_withdrawal_penalty"`
	Growth                 decimal.Decimal `json:"growth"`
	Dividends              decimal.Decimal `json:"dividends"`
	Fees                   decimal.Decimal `json:"fees"`

	TaxableOrdinaryIncome decimal.Decimal `json:"taxable_ordinary_income"`
	QualifiedDividends    decimal.Decimal `json:"qualified_dividends"`
	InvestmentIncome      decimal.Decimal `json:"investment_income"`
	MAGI                  decimal.Decimal `json:"magi"`

	TaxFederal        decimal.Decimal `json:"tax_federal"`
	TaxCapitalGains   decimal.Decimal `json:"tax_capital_gains"`
	TaxState          decimal.Decimal `json:"tax_state"`
	TaxNIIT           decimal.Decimal `json:"tax_niit"`
	TaxAMT            decimal.Decimal `json:"tax_amt"`
	TaxPenalties      decimal.Decimal `json:"tax_penalties"`
	TaxTotal          decimal.Decimal `json:"tax_total"`
	DeductionUsed     decimal.Decimal `json:"deduction_used"`
	EstimatedTaxPaid  decimal.Decimal `json:"estimated_tax_paid"`
	TaxPayment        decimal.Decimal `json:"tax_payment"`
	TaxRefund         decimal.Decimal `json:"tax_refund"`
	SettlementRounds  int             `json:"settlement_rounds"`
	SettlementSettled bool            `json:"settlement_settled"`

	NetWorthEnd decimal.Decimal `json:"net_worth_end"`
	Insolvent   bool            `json:"insolvent"`
}

// TotalExpenses sums every expense category of the year
func (a AnnualResult) TotalExpenses() decimal.Decimal {
	return a.EssentialExpenses.Add(a.DiscretionaryExpenses).Add(a.HealthcareExpenses).Add(a.RealAssetExpenses)
}

// AccountYearDetail tracks one account's flows for one year
type AccountYearDetail struct {
	Account      string          `json:"account"`
	Year         int             `json:"year"`
	StartBalance decimal.Decimal `json:"start_balance"`
	Deposits     decimal.Decimal `json:"deposits"`
	Withdrawals  decimal.Decimal `json:"withdrawals"`
	Growth       decimal.Decimal `json:"growth"`
	Dividends    decimal.Decimal `json:"dividends"`
	Fees         decimal.Decimal `json:"fees"`
	EndBalance   decimal.Decimal `json:"end_balance"`
}

// EngineResult is the complete output of one engine run
type EngineResult struct {
	Monthly                 []MonthResult                      `json:"monthly"`
	Annual                  []AnnualResult                     `json:"annual"`
	InsolvencyYears         []int                              `json:"insolvency_years"`
	PerAccountAnnualDetail  map[string][]AccountYearDetail     `json:"per_account_annual_detail"`
	WithdrawalSourcesByYear map[int]map[string]decimal.Decimal `json:"withdrawal_sources_by_year"`
}

// FinalNetWorth is the net worth at the end of the last month
func (r *EngineResult) FinalNetWorth() decimal.Decimal {
	if len(r.Monthly) == 0 {
		return decimal.Zero
	}
	return r.Monthly[len(r.Monthly)-1].NetWorthEnd
}

// Solvent reports whether no year was insolvent
func (r *EngineResult) Solvent() bool {
	return len(r.InsolvencyYears) == 0
}

// AnnualFor returns the annual row for a year
func (r *EngineResult) AnnualFor(year int) (AnnualResult, bool) {
	for _, a := range r.Annual {
		if a.Year == year {
			return a, true
		}
	}
	return AnnualResult{}, false
}

// ReturnPath is a per-year (stock, bond) return scenario
type ReturnPath map[int]YearReturns

// YearReturns are the annual market returns applied to every account in a year
type YearReturns struct {
	Stock decimal.Decimal `json:"stock"`
	Bond  decimal.Decimal `json:"bond"`
}

// ScenarioOutcome summarizes one replay of the engine
type ScenarioOutcome struct {
	Index           int                     `json:"index"`
	ID              string                  `json:"id"`
	Label           string                  `json:"label"`
	EndingNetWorth  decimal.Decimal         `json:"ending_net_worth"`
	InsolvencyYears []int                   `json:"insolvency_years"`
	Success         bool                    `json:"success"`
	NetWorthByYear  map[int]decimal.Decimal `json:"net_worth_by_year"`
}

// Percentiles holds distribution cut points
type Percentiles struct {
	P10 decimal.Decimal `json:"p10"`
	P25 decimal.Decimal `json:"p25"`
	P50 decimal.Decimal `json:"p50"`
	P75 decimal.Decimal `json:"p75"`
	P90 decimal.Decimal `json:"p90"`
}

// YearBand is a per-year net worth band across scenarios
type YearBand struct {
	Year int             `json:"year"`
	P10  decimal.Decimal `json:"p10"`
	P50  decimal.Decimal `json:"p50"`
	P90  decimal.Decimal `json:"p90"`
}

// SimulationSummary aggregates every scenario of a run
type SimulationSummary struct {
	Mode                 SimulationMode    `json:"mode"`
	Seed                 int64             `json:"seed"`
	NumScenarios         int               `json:"num_scenarios"`
	SuccessRate          decimal.Decimal   `json:"success_rate"`
	MedianEndingNetWorth decimal.Decimal   `json:"median_ending_net_worth"`
	EndingNetWorth       Percentiles       `json:"ending_net_worth"`
	NetWorthBands        []YearBand        `json:"net_worth_bands"`
	InsolvencyHistogram  map[int]int       `json:"insolvency_histogram"`
	Scenarios            []ScenarioOutcome `json:"scenarios"`
}

// RunReport is what formatters and storage consume
type RunReport struct {
	PlanName      string             `json:"plan_name"`
	Mode          SimulationMode     `json:"mode"`
	GeneratedAt   time.Time          `json:"generated_at"`
	Assumptions   []string           `json:"assumptions,omitempty"`
	Deterministic *EngineResult      `json:"deterministic,omitempty"`
	Simulation    *SimulationSummary `json:"simulation,omitempty"`
}
