package calculation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/pkg/money"
	"github.com/shopspring/decimal"
)

// ErrUnknownFilingStatus is returned when a filing status has no tax tables
var ErrUnknownFilingStatus = errors.New("unknown filing status")

// YearIncomeSummary is the tax-relevant income of one household year
type YearIncomeSummary struct {
	Year                   int
	FilingStatus           domain.FilingStatus
	State                  string
	OrdinaryIncome         decimal.Decimal
	CapitalGains           decimal.Decimal
	QualifiedDividends     decimal.Decimal
	InvestmentIncome       decimal.Decimal
	ItemizedDeductions     decimal.Decimal
	WithheldTax            decimal.Decimal
	EarlyWithdrawalPenalty decimal.Decimal
}

// TaxResult is the complete liability for one year
type TaxResult struct {
	FederalIncomeTax       decimal.Decimal `json:"federal_income_tax"`
	CapitalGainsTax        decimal.Decimal `json:"capital_gains_tax"`
	NIITTax                decimal.Decimal `json:"niit_tax"`
	AMTTax                 decimal.Decimal `json:"amt_tax"`
	StateIncomeTax         decimal.Decimal `json:"state_income_tax"`
	EarlyWithdrawalPenalty decimal.Decimal `json:"early_withdrawal_penalty"`
	TotalTax               decimal.Decimal `json:"total_tax"`
	DeductionUsed          decimal.Decimal `json:"deduction_used"`
	TaxableOrdinaryIncome  decimal.Decimal `json:"taxable_ordinary_income"`
	AGI                    decimal.Decimal `json:"agi"`
}

// FICAResult is the payroll tax on one paycheck
type FICAResult struct {
	SocialSecurity     decimal.Decimal
	Medicare           decimal.Decimal
	AdditionalMedicare decimal.Decimal
}

// Total is the combined payroll tax
func (f FICAResult) Total() decimal.Decimal {
	return f.SocialSecurity.Add(f.Medicare).Add(f.AdditionalMedicare)
}

// TaxCalculator computes every tax component for a year. It holds no per-call state.
type TaxCalculator struct {
	Settings      domain.TaxSettings
	InflationRate decimal.Decimal
}

// NewTaxCalculator creates a calculator indexing tables by the given inflation rate
func NewTaxCalculator(settings domain.TaxSettings, inflationRate decimal.Decimal) *TaxCalculator {
	return &TaxCalculator{Settings: settings, InflationRate: inflationRate}
}

// ValidateFilingStatus reports ErrUnknownFilingStatus for statuses without tables
func ValidateFilingStatus(fs domain.FilingStatus) error {
	if _, ok := federalBrackets[fs]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFilingStatus, fs)
	}
	return nil
}

// IndexFactor is the inflation multiplier applied to base-year thresholds
func (tc *TaxCalculator) IndexFactor(year int) decimal.Decimal {
	if tc.Settings.UseCurrentBrackets && tc.Settings.BracketYear > 0 {
		year = tc.Settings.BracketYear
	}
	return money.Compound(tc.InflationRate, year-BaseTaxYear)
}

// FederalBrackets returns the indexed ordinary-income schedule
func (tc *TaxCalculator) FederalBrackets(fs domain.FilingStatus, year int) ([]TaxBracket, error) {
	base, ok := federalBrackets[fs]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilingStatus, fs)
	}
	return scaleBrackets(base, tc.IndexFactor(year)), nil
}

// StandardDeduction returns the indexed standard deduction, or the configured override
func (tc *TaxCalculator) StandardDeduction(fs domain.FilingStatus, year int) (decimal.Decimal, error) {
	base, ok := standardDeductions[fs]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownFilingStatus, fs)
	}
	if tc.Settings.StandardDeductionOverride != nil {
		return money.NonNegative(*tc.Settings.StandardDeductionOverride), nil
	}
	return base.Mul(tc.IndexFactor(year)), nil
}

// BracketCeiling returns the indexed upper bound of the bracket taxed at rate.
// ok is false when no bracket has that rate or the bracket is unbounded.
func (tc *TaxCalculator) BracketCeiling(fs domain.FilingStatus, year int, rate decimal.Decimal) (ceiling decimal.Decimal, ok bool, err error) {
	brackets, err := tc.FederalBrackets(fs, year)
	if err != nil {
		return decimal.Zero, false, err
	}
	for _, b := range brackets {
		if b.Rate.Equal(rate) {
			if b.Unbounded {
				return decimal.Zero, false, nil
			}
			return b.Max, true, nil
		}
	}
	return decimal.Zero, false, nil
}

// ParseBracketRate converts "22%" or "22" into 0.22
func ParseBracketRate(value string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "%"))
	if raw == "" {
		return decimal.Zero, fmt.Errorf("empty bracket rate")
	}
	pct, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid bracket rate %q: %w", value, err)
	}
	return money.FromPercent(pct), nil
}

// FederalIncomeTax calculates progressive tax on taxable ordinary income
func (tc *TaxCalculator) FederalIncomeTax(taxable decimal.Decimal, fs domain.FilingStatus, year int) (decimal.Decimal, error) {
	brackets, err := tc.FederalBrackets(fs, year)
	if err != nil {
		return decimal.Zero, err
	}
	return progressiveTax(taxable, brackets), nil
}

// CapitalGainsTax taxes gains stacked on top of ordinary taxable income
func (tc *TaxCalculator) CapitalGainsTax(gains, ordinaryTaxable decimal.Decimal, fs domain.FilingStatus, year int) (decimal.Decimal, error) {
	base, ok := capitalGainsBrackets[fs]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownFilingStatus, fs)
	}
	if gains.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, nil
	}
	brackets := scaleBrackets(base, tc.IndexFactor(year))
	low := money.NonNegative(ordinaryTaxable)
	high := low.Add(gains)

	// tax each band on its overlap with [low, high)
	tax := decimal.Zero
	for _, b := range brackets {
		start := money.Max(low, b.Min)
		end := high
		if !b.Unbounded {
			end = money.Min(high, b.Max)
		}
		if end.GreaterThan(start) {
			tax = tax.Add(end.Sub(start).Mul(b.Rate))
		}
	}
	return tax, nil
}

// NIIT is 3.8% of the lesser of investment income and AGI above the threshold
func (tc *TaxCalculator) NIIT(investmentIncome, agi decimal.Decimal, fs domain.FilingStatus, year int) (decimal.Decimal, error) {
	threshold, ok := niitThresholds[fs]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownFilingStatus, fs)
	}
	if investmentIncome.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, nil
	}
	excess := money.NonNegative(agi.Sub(threshold.Mul(tc.IndexFactor(year))))
	return money.Min(investmentIncome, excess).Mul(niitRate), nil
}

// TentativeMinimumTax applies the AMT schedule after the phased-out exemption
func (tc *TaxCalculator) TentativeMinimumTax(income, deduction decimal.Decimal, fs domain.FilingStatus, year int) (decimal.Decimal, error) {
	ex, ok := amtExemptions[fs]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownFilingStatus, fs)
	}
	factor := tc.IndexFactor(year)
	exemption := ex.Exemption.Mul(factor)
	phaseOutStart := ex.PhaseOutStart.Mul(factor)

	amtIncome := money.NonNegative(income.Sub(money.NonNegative(deduction)))
	if amtIncome.GreaterThan(phaseOutStart) {
		exemption = money.NonNegative(exemption.Sub(amtIncome.Sub(phaseOutStart).Mul(amtPhaseOutRate)))
	}
	return progressiveTax(money.NonNegative(amtIncome.Sub(exemption)), scaleBrackets(amtBrackets, factor)), nil
}

// StateIncomeTax taxes ordinary taxable income at the state's schedule
func (tc *TaxCalculator) StateIncomeTax(taxable decimal.Decimal, state string, fs domain.FilingStatus, year int) decimal.Decimal {
	taxable = money.NonNegative(taxable)
	code := strings.ToUpper(strings.TrimSpace(state))
	if brackets, ok := progressiveStateBrackets[code]; ok {
		factor := tc.IndexFactor(year)
		if fs.IsJoint() {
			factor = factor.Mul(decimal.NewFromInt(2))
		}
		return progressiveTax(taxable, scaleBrackets(brackets, factor))
	}
	rate, ok := flatStateRates[code]
	if !ok {
		return decimal.Zero
	}
	return taxable.Mul(decimal.NewFromFloat(rate))
}

// FICA computes payroll tax on wages given the owner's and household's wages already
// taxed this year. The wage base applies per owner; Additional Medicare uses household wages.
func (tc *TaxCalculator) FICA(wages, ownerYTDWages, householdYTDWages decimal.Decimal, fs domain.FilingStatus, year int) (FICAResult, error) {
	threshold, ok := additionalMedicareThresholds[fs]
	if !ok {
		return FICAResult{}, fmt.Errorf("%w: %q", ErrUnknownFilingStatus, fs)
	}
	if wages.LessThanOrEqual(decimal.Zero) {
		return FICAResult{}, nil
	}
	factor := tc.IndexFactor(year)
	wageBase := ficaSocialSecurityWageMax.Mul(factor)
	threshold = threshold.Mul(factor)

	ssTaxable := money.Min(wages, money.NonNegative(wageBase.Sub(money.NonNegative(ownerYTDWages))))

	prior := money.NonNegative(householdYTDWages)
	additionalTaxable := money.NonNegative(prior.Add(wages).Sub(threshold)).Sub(money.NonNegative(prior.Sub(threshold)))

	return FICAResult{
		SocialSecurity:     ssTaxable.Mul(ficaSocialSecurityRate),
		Medicare:           wages.Mul(ficaMedicareRate),
		AdditionalMedicare: money.NonNegative(additionalTaxable).Mul(ficaAdditionalRate),
	}, nil
}

// IRMAASurcharge returns the monthly Part B and Part D surcharge for a MAGI
func (tc *TaxCalculator) IRMAASurcharge(magi decimal.Decimal, fs domain.FilingStatus, year int) (partB, partD decimal.Decimal, err error) {
	tiers, ok := irmaaSchedules[fs]
	if !ok {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownFilingStatus, fs)
	}
	factor := tc.IndexFactor(year)
	magi = money.NonNegative(magi)
	for _, t := range tiers {
		if t.Unbounded || magi.LessThanOrEqual(t.MaxMAGI.Mul(factor)) {
			return t.PartB.Mul(factor), t.PartD.Mul(factor), nil
		}
	}
	return decimal.Zero, decimal.Zero, nil
}

// EarlyWithdrawalPenalty is the additional tax on a penalized distribution
func EarlyWithdrawalPenalty(amount decimal.Decimal) decimal.Decimal {
	return money.NonNegative(amount).Mul(earlyPenaltyRate)
}

// Calculate computes the full liability for one year
func (tc *TaxCalculator) Calculate(s YearIncomeSummary) (TaxResult, error) {
	if err := ValidateFilingStatus(s.FilingStatus); err != nil {
		return TaxResult{}, err
	}
	ordinary := money.NonNegative(s.OrdinaryIncome)
	gains := money.NonNegative(s.CapitalGains)
	qualified := money.NonNegative(s.QualifiedDividends)
	investment := money.NonNegative(s.InvestmentIncome)
	penalty := money.NonNegative(s.EarlyWithdrawalPenalty)

	standard, err := tc.StandardDeduction(s.FilingStatus, s.Year)
	if err != nil {
		return TaxResult{}, err
	}
	deduction := money.Max(standard, money.NonNegative(s.ItemizedDeductions))
	taxableOrdinary := money.NonNegative(ordinary.Sub(deduction))

	var federal decimal.Decimal
	if o := tc.Settings.FederalEffectiveRateOverride; o != nil {
		federal = taxableOrdinary.Mul(money.NonNegative(*o))
	} else if federal, err = tc.FederalIncomeTax(taxableOrdinary, s.FilingStatus, s.Year); err != nil {
		return TaxResult{}, err
	}

	grossLTCG := gains.Add(qualified)
	var capGains decimal.Decimal
	if o := tc.Settings.CapitalGainsRateOverride; o != nil {
		capGains = grossLTCG.Mul(money.NonNegative(*o))
	} else if capGains, err = tc.CapitalGainsTax(grossLTCG, taxableOrdinary, s.FilingStatus, s.Year); err != nil {
		return TaxResult{}, err
	}

	agi := ordinary.Add(grossLTCG)

	niit := decimal.Zero
	if tc.Settings.NIITEnabled {
		if niit, err = tc.NIIT(money.Max(investment, grossLTCG), agi, s.FilingStatus, s.Year); err != nil {
			return TaxResult{}, err
		}
	}

	amt := decimal.Zero
	if tc.Settings.AMTEnabled {
		tmt, err := tc.TentativeMinimumTax(agi, deduction, s.FilingStatus, s.Year)
		if err != nil {
			return TaxResult{}, err
		}
		amt = money.NonNegative(tmt.Sub(federal.Add(capGains)))
	}

	var state decimal.Decimal
	if o := tc.Settings.StateEffectiveRateOverride; o != nil {
		state = money.NonNegative(taxableOrdinary.Mul(*o))
	} else {
		state = tc.StateIncomeTax(taxableOrdinary, s.State, s.FilingStatus, s.Year)
	}

	total := money.Sum(federal, capGains, niit, amt, state, penalty)
	return TaxResult{
		FederalIncomeTax:       money.Cents(federal),
		CapitalGainsTax:        money.Cents(capGains),
		NIITTax:                money.Cents(niit),
		AMTTax:                 money.Cents(amt),
		StateIncomeTax:         money.Cents(state),
		EarlyWithdrawalPenalty: money.Cents(penalty),
		TotalTax:               money.Cents(total),
		DeductionUsed:          money.Cents(deduction),
		TaxableOrdinaryIncome:  money.Cents(taxableOrdinary),
		AGI:                    money.Cents(agi),
	}, nil
}
