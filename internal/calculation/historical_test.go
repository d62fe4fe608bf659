package calculation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticHistoricalDataset(t *testing.T) {
	d := SyntheticHistoricalDataset()

	assert.Equal(t, 1926, d.MinYear)
	assert.Equal(t, 2024, d.MaxYear)
	assert.Len(t, d.Returns, 99)
	assert.Equal(t, 99, d.Statistics.Count)
	assert.Empty(t, d.Statistics.MissingYear)

	first := d.Returns[1926]
	assert.InDelta(t, 0.149605, first.Stock.InexactFloat64(), 1e-6)
	assert.InDelta(t, 0.062548, first.Bond.InexactFloat64(), 1e-6)

	for year, r := range d.Returns {
		assert.GreaterOrEqual(t, r.Stock.InexactFloat64(), -0.45, "stock floor in %d", year)
		assert.GreaterOrEqual(t, r.Bond.InexactFloat64(), -0.20, "bond floor in %d", year)
	}
	assert.Equal(t, d.Returns[1926].Stock.String(), d.Returns[1926+17*3].Stock.String(), "stock series repeats every 17 years")
}

func TestReadHistoricalCSV(t *testing.T) {
	input := "year,stock_return,bond_return\n2000,0.10,0.02\n2001, -0.05, 0.04\n2002,0.20,0.01\n"

	d, err := ReadHistoricalCSV(strings.NewReader(input), "test.csv")
	require.NoError(t, err)
	assert.Equal(t, 2000, d.MinYear)
	assert.Equal(t, 2002, d.MaxYear)
	assert.Equal(t, "-0.05", d.Returns[2001].Stock.String())
	assert.InDelta(t, 0.083333, d.Statistics.StockMean.InexactFloat64(), 1e-6)
}

func TestReadHistoricalCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad stock return", "2000,abc,0.02\n"},
		{"bad bond return", "2000,0.10,x\n"},
		{"too few columns", "2000,0.10\n"},
		{"header only", "year,stock_return,bond_return\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadHistoricalCSV(strings.NewReader(tt.input), "bad.csv")
			assert.Error(t, err)
		})
	}
}

func TestLoadHistoricalCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "returns.csv")
	require.NoError(t, os.WriteFile(path, []byte("1990,0.05,0.03\n1991,0.30,0.15\n"), 0o644))

	d, err := LoadHistoricalCSV(path)
	require.NoError(t, err)
	assert.Len(t, d.Returns, 2)

	_, err = LoadHistoricalCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func threeYearDataset(t *testing.T) *HistoricalDataset {
	t.Helper()
	d, err := ReadHistoricalCSV(strings.NewReader("2000,0.10,0.01\n2001,0.20,0.02\n2002,0.30,0.03\n"), "three")
	require.NoError(t, err)
	return d
}

func TestHistoricalScenariosWrapCyclically(t *testing.T) {
	d := threeYearDataset(t)
	settings := domain.HistoricalSettings{StartYear: 2000, EndYear: 2002, UseRollingPeriods: true}

	scenarios, err := d.HistoricalScenarios(settings, 2026, 2030)
	require.NoError(t, err)
	require.Len(t, scenarios, 3)

	sc := scenarios[1]
	assert.Equal(t, 2001, sc.StartYear)
	expected := map[int]string{2026: "0.2", 2027: "0.3", 2028: "0.1", 2029: "0.2", 2030: "0.3"}
	for year, stock := range expected {
		assert.Equal(t, stock, sc.Path[year].Stock.String(), "plan year %d", year)
	}
}

func TestHistoricalScenariosSingleStart(t *testing.T) {
	d := threeYearDataset(t)

	scenarios, err := d.HistoricalScenarios(domain.HistoricalSettings{StartYear: 2001, EndYear: 2002}, 2026, 2028)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "0.2", scenarios[0].Path[2026].Stock.String())
	assert.Equal(t, "0.3", scenarios[0].Path[2027].Stock.String())
	assert.Equal(t, "0.2", scenarios[0].Path[2028].Stock.String(), "wraps within the window, not the dataset")
}

func TestHistoricalWindowErrors(t *testing.T) {
	d := threeYearDataset(t)

	_, _, err := d.Window(2002, 2000)
	assert.Error(t, err)

	_, _, err = d.Window(1999, 2002)
	assert.Error(t, err, "years outside the dataset")

	start, end, err := d.Window(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2000, start)
	assert.Equal(t, 2002, end)
}
