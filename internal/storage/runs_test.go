package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

// fixedClock returns successive minutes starting at 2026-01-01
func fixedClock() func() time.Time {
	current := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

func deterministicReport() *domain.RunReport {
	return &domain.RunReport{
		PlanName: "household",
		Mode:     domain.ModeDeterministic,
		Deterministic: &domain.EngineResult{
			Annual: []domain.AnnualResult{
				{Year: 2026, Income: decimal.NewFromInt(120000), EssentialExpenses: decimal.NewFromInt(60000),
					TaxTotal: decimal.RequireFromString("18250.40"), NetWorthEnd: decimal.NewFromInt(500000)},
				{Year: 2027, Income: decimal.NewFromInt(20000), EssentialExpenses: decimal.NewFromInt(70000),
					Withdrawals: decimal.NewFromInt(50000), NetWorthEnd: decimal.NewFromInt(0), Insolvent: true},
			},
			InsolvencyYears: []int{2027},
		},
	}
}

func simulationReport() *domain.RunReport {
	return &domain.RunReport{
		PlanName: "household",
		Mode:     domain.ModeMonteCarlo,
		Simulation: &domain.SimulationSummary{
			Mode:                 domain.ModeMonteCarlo,
			Seed:                 42,
			NumScenarios:         2,
			SuccessRate:          decimal.RequireFromString("0.5"),
			MedianEndingNetWorth: decimal.NewFromInt(310000),
			Scenarios: []domain.ScenarioOutcome{
				{Index: 0, Label: "mc-0000", EndingNetWorth: decimal.NewFromInt(310000), Success: true},
				{Index: 1, Label: "mc-0001", EndingNetWorth: decimal.Zero, InsolvencyYears: []int{2040, 2041}},
			},
		},
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Migrate(ctx))
	version, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestSaveAndGetDeterministicRun(t *testing.T) {
	s := createTestStore(t)
	s.now = fixedClock()
	ctx := context.Background()

	id, err := s.SaveRun(ctx, deterministicReport())
	require.NoError(t, err)
	require.Len(t, id, 36)

	rec, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "household", rec.PlanName)
	assert.Equal(t, domain.ModeDeterministic, rec.Mode)
	assert.False(t, rec.SuccessRate.Valid)
	require.Len(t, rec.Annual, 2)
	assert.Equal(t, "18250.4", rec.Annual[0].TaxTotal.String())
	assert.Equal(t, "60000", rec.Annual[0].Expenses.String())
	assert.True(t, rec.Annual[1].Insolvent)
	assert.Empty(t, rec.Scenarios)

	require.NotNil(t, rec.Report)
	require.NotNil(t, rec.Report.Deterministic)
	assert.Equal(t, []int{2027}, rec.Report.Deterministic.InsolvencyYears)
}

func TestSaveAndGetSimulationRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.SaveRun(ctx, simulationReport())
	require.NoError(t, err)

	rec, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(42), rec.Seed)
	require.True(t, rec.SuccessRate.Valid)
	assert.Equal(t, "0.5", rec.SuccessRate.Decimal.String())
	require.Len(t, rec.Scenarios, 2)
	assert.Equal(t, "mc-0001", rec.Scenarios[1].Label)
	assert.Equal(t, 2, rec.Scenarios[1].InsolventYears)
}

func TestGetRunNotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, s.DeleteRun(context.Background(), "missing"), ErrRunNotFound)
}

func TestListRunsNewestFirst(t *testing.T) {
	s := createTestStore(t)
	s.now = fixedClock()
	ctx := context.Background()

	first, err := s.SaveRun(ctx, deterministicReport())
	require.NoError(t, err)
	second, err := s.SaveRun(ctx, simulationReport())
	require.NoError(t, err)
	third, err := s.SaveRun(ctx, deterministicReport())
	require.NoError(t, err)

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{third, second, first}, []string{all[0].ID, all[1].ID, all[2].ID})

	limited, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
	assert.Equal(t, domain.ModeMonteCarlo, limited[1].Mode)
}

func TestDeleteRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.SaveRun(ctx, deterministicReport())
	require.NoError(t, err)
	require.NoError(t, s.DeleteRun(ctx, id))

	_, err = s.GetRun(ctx, id)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSaveRunRejectsNil(t *testing.T) {
	s := createTestStore(t)
	_, err := s.SaveRun(context.Background(), nil)
	assert.Error(t, err)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)

	mem, err := Open(MemoryPath)
	require.NoError(t, err)
	defer mem.Close()
	assert.NoError(t, mem.Migrate(context.Background()))
}
