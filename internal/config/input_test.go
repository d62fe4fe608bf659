package config

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rpgo/household-planner/internal/calculation"
	"github.com/rpgo/household-planner/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile_Household(t *testing.T) {
	plan, err := NewPlanLoader().LoadFromFile("testdata/household.yaml")
	require.NoError(t, err)

	assert.Equal(t, "Rivera household", plan.Name)
	assert.True(t, plan.HasSpouse())
	assert.Len(t, plan.Accounts, 4)
	assert.Equal(t, "180000", plan.Accounts[1].CostBasis.String())
	assert.Equal(t, domain.OwnerJoint, plan.Expenses[1].Owner, "owner defaults to joint")
	assert.Equal(t, domain.ModeMonteCarlo, plan.SimulationSettings.Mode)
	assert.Equal(t, 500, plan.SimulationSettings.MonteCarlo.NumSimulations)
	assert.Equal(t, 1926, plan.SimulationSettings.Historical.StartYear, "historical keeps its default")
	assert.True(t, plan.TaxSettings.NIITEnabled)

	res := Validate(plan)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestLoadFromFile_HouseholdRuns(t *testing.T) {
	plan, err := NewPlanLoader().LoadFromFile("testdata/household.yaml")
	require.NoError(t, err)

	e, err := calculation.NewCashFlowEngine(plan)
	require.NoError(t, err)
	res, err := e.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, res.Annual, 35)
}

func TestLoadFromFile_JSONDefaults(t *testing.T) {
	plan, err := NewPlanLoader().LoadFromFile("testdata/minimal.json")
	require.NoError(t, err)

	assert.True(t, plan.Healthcare.IRMAA.Enabled)
	assert.Equal(t, 2, plan.Healthcare.IRMAA.LookbackYears)
	assert.Equal(t, 73, plan.RMDs.RMDStartAge)
	assert.Equal(t, 2026, plan.TaxSettings.BracketYear)
	assert.Equal(t, "10000", plan.TaxSettings.ItemizedDeductions.SALTCap.String())
	assert.Equal(t, domain.DividendCapitalGains, plan.PlanSettings.DefaultDividendTaxTreatment)
	assert.Equal(t, domain.ModeDeterministic, plan.SimulationSettings.Mode)
	assert.Equal(t, 1000, plan.SimulationSettings.MonteCarlo.NumSimulations)
	assert.True(t, plan.WithdrawalStrategy.RMDSatisfiedFirst)
	assert.True(t, plan.Accounts[0].WithdrawalsAllowed())
	assert.Equal(t, domain.DefaultHomeState, plan.HomeState(), "no state taxes as the default state")
}

func TestLoadFromFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		contains string
		invalid  bool
	}{
		{"missing file", "testdata/nope.yaml", "failed to read file", false},
		{"unknown field", "testdata/unknown_field.yaml", "failed to parse plan", false},
		{"invalid plan", "testdata/invalid.yaml", "invalid plan", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := NewPlanLoader().LoadFromFile(tt.file)
			require.Error(t, err)
			assert.Nil(t, plan)
			assert.Contains(t, err.Error(), tt.contains)
			assert.Equal(t, tt.invalid, errors.Is(err, ErrInvalidPlan))
		})
	}
}

func TestDecode_LenientLoaderIgnoresUnknownFields(t *testing.T) {
	loader := &PlanLoader{}
	plan, err := loader.DecodeFile("testdata/unknown_field.yaml")
	require.NoError(t, err)
	assert.Empty(t, plan.Accounts)
}

func TestValidate_InvalidFixture(t *testing.T) {
	plan, err := NewPlanLoader().DecodeFile("testdata/invalid.yaml")
	require.NoError(t, err)

	res := Validate(plan)
	assert.False(t, res.Valid())
	expected := []string{
		"people.primary.birthday",
		"filing_status: 'married_filing_jointly' requires people.spouse",
		"accounts[0].owner: references spouse",
		"accounts[0].cost_basis: required",
		"accounts: at least one cash account is required",
		"expenses[0].frequency: 'weekly' is not valid",
		"expenses[0].start_date/expenses[0].end_date",
	}
	joined := strings.Join(res.Errors, "\n")
	for _, msg := range expected {
		assert.Contains(t, joined, msg)
	}
}

// validPlan is the smallest plan that passes validation
func validPlan() *domain.Plan {
	plan := DefaultPlan()
	plan.People.Primary = domain.Person{Name: "Pat", Birthday: "1980-02"}
	plan.FilingStatus = domain.FilingSingle
	plan.Accounts = []domain.Account{
		{Name: "Cash", Type: domain.AccountCash, Owner: domain.OwnerPrimary, Balance: decimal.NewFromInt(1000)},
		{Name: "IRA", Type: domain.AccountTraditionalIRA, Owner: domain.OwnerPrimary},
		{Name: "Roth", Type: domain.AccountRothIRA, Owner: domain.OwnerPrimary},
	}
	plan.PlanSettings.PlanStart = "2026-01"
	plan.PlanSettings.PlanEnd = "2040-12"
	return plan
}

func TestValidate_Rules(t *testing.T) {
	amount := decimal.NewFromInt(12000)

	tests := []struct {
		name     string
		mutate   func(p *domain.Plan)
		contains string
	}{
		{
			name:     "unknown filing status",
			mutate:   func(p *domain.Plan) { p.FilingStatus = "joint" },
			contains: "filing_status: 'joint' is not valid",
		},
		{
			name: "duplicate account",
			mutate: func(p *domain.Plan) {
				p.Accounts = append(p.Accounts, domain.Account{Name: "Cash", Type: domain.AccountCash, Owner: domain.OwnerPrimary})
			},
			contains: "duplicate account name 'Cash'",
		},
		{
			name: "change rate required",
			mutate: func(p *domain.Plan) {
				p.Expenses = []domain.Expense{{Name: "Rent", Owner: domain.OwnerJoint, Schedule: domain.Schedule{
					StartDate: "start", EndDate: "end", ChangeOverTime: domain.ChangeIncrease,
				}}}
			},
			contains: "expenses[0].change_rate: required",
		},
		{
			name: "withhold percent required",
			mutate: func(p *domain.Plan) {
				p.Income = []domain.Income{{Name: "Pay", Owner: domain.OwnerPrimary, TaxHandling: domain.TaxHandlingWithhold,
					Schedule: domain.Schedule{StartDate: "start", EndDate: "end"}}}
			},
			contains: "income[0].withhold_percent: required",
		},
		{
			name: "roth conversion source must be pre-tax",
			mutate: func(p *domain.Plan) {
				p.RothConversions = []domain.RothConversion{{Name: "c", FromAccount: "Cash", ToAccount: "Roth",
					StartDate: "start", EndDate: "end", AnnualAmount: &amount}}
			},
			contains: "roth_conversions[0].from_account: must be traditional_ira or 401k",
		},
		{
			name: "roth conversion target must be roth",
			mutate: func(p *domain.Plan) {
				p.RothConversions = []domain.RothConversion{{Name: "c", FromAccount: "IRA", ToAccount: "IRA",
					StartDate: "start", EndDate: "end", FillToBracket: "22%"}}
			},
			contains: "roth_conversions[0].to_account: must be roth_ira",
		},
		{
			name: "rmd account type",
			mutate: func(p *domain.Plan) {
				p.RMDs = domain.RMDSettings{Enabled: true, RMDStartAge: 73, Accounts: []string{"Roth"}, DestinationAccount: "Cash"}
			},
			contains: "rmds.accounts[0]: account must be 401k or traditional_ira",
		},
		{
			name: "rmd destination resolves",
			mutate: func(p *domain.Plan) {
				p.RMDs = domain.RMDSettings{Enabled: true, RMDStartAge: 73, Accounts: []string{"IRA"}, DestinationAccount: "Vault"}
			},
			contains: "rmds.destination_account: 'Vault' does not match any account name",
		},
		{
			name: "employer match salary reference",
			mutate: func(p *domain.Plan) {
				p.Contributions = []domain.Contribution{{Name: "401k", SourceAccount: domain.SourceIncome, DestinationAccount: "IRA",
					Schedule:      domain.Schedule{StartDate: "start", EndDate: "end"},
					EmployerMatch: &domain.EmployerMatch{SalaryReference: "Salary"}}}
			},
			contains: "employer_match.salary_reference: 'Salary' does not match any income name",
		},
		{
			name: "account specific order",
			mutate: func(p *domain.Plan) {
				p.WithdrawalStrategy = domain.WithdrawalStrategy{UseAccountSpecific: true, AccountSpecificOrder: []string{"IRA", "HSA"}}
			},
			contains: "withdrawal_strategy.account_specific_order[1]: 'HSA' does not match",
		},
		{
			name:     "simulation mode",
			mutate:   func(p *domain.Plan) { p.SimulationSettings.Mode = "bootstrap" },
			contains: "simulation_settings.mode: 'bootstrap' is not valid",
		},
		{
			name: "linked asset resolves",
			mutate: func(p *domain.Plan) {
				p.Transactions = []domain.Transaction{{Name: "sale", Date: "2030-01", Type: domain.TransactionSellAsset, LinkedAsset: "Cabin"}}
			},
			contains: "transactions[0].linked_asset: 'Cabin' does not match any real asset name",
		},
	}

	base := Validate(validPlan())
	require.True(t, base.Valid(), "fixture must be valid: %v", base.Errors)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := validPlan()
			tt.mutate(plan)
			res := Validate(plan)
			assert.Contains(t, strings.Join(res.Errors, "\n"), tt.contains)
		})
	}
}

func TestValidate_SingleWithSpouseWarns(t *testing.T) {
	plan := validPlan()
	plan.People.Spouse = &domain.Person{Name: "Lee", Birthday: "1982-05"}

	res := Validate(plan)
	assert.True(t, res.Valid())
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "unusual but allowed")
}

func TestValidationResultErr(t *testing.T) {
	assert.NoError(t, ValidationResult{}.Err())

	err := ValidationResult{Errors: []string{"a: bad", "b: worse"}}.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPlan)
	assert.Contains(t, err.Error(), "b: worse")
}

func TestExamplePlan(t *testing.T) {
	plan, err := ExamplePlan()
	require.NoError(t, err)
	assert.Equal(t, "Example household", plan.Name)
	assert.Equal(t, domain.ModeDeterministic, plan.SimulationSettings.Mode)
}
