package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCompound(t *testing.T) {
	tests := []struct {
		name     string
		rate     decimal.Decimal
		years    int
		expected decimal.Decimal
	}{
		{"zero years", decimal.NewFromFloat(0.05), 0, decimal.NewFromInt(1)},
		{"negative years", decimal.NewFromFloat(0.05), -3, decimal.NewFromInt(1)},
		{"two years at 2.5%", decimal.NewFromFloat(0.025), 2, decimal.RequireFromString("1.050625")},
		{"decline", decimal.NewFromFloat(-0.1), 2, decimal.RequireFromString("0.81")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Compound(tt.rate, tt.years).Equal(tt.expected), "got %s", Compound(tt.rate, tt.years))
		})
	}
}

func TestMonthlyRate(t *testing.T) {
	monthly := MonthlyRate(decimal.NewFromFloat(0.12))
	// twelve months of compounding returns the annual rate
	annual := Compound(monthly, 12).Sub(decimal.NewFromInt(1))
	assert.True(t, ApproxEqual(annual, decimal.NewFromFloat(0.12), decimal.NewFromFloat(0.0000001)), "got %s", annual)

	for _, annual := range []float64{-1, -1.5, -25} {
		r := MonthlyRate(decimal.NewFromFloat(annual))
		assert.True(t, r.GreaterThan(decimal.NewFromInt(-1)), "annual %v gave %s", annual, r)
		assert.True(t, r.Equal(MonthlyRate(decimal.NewFromFloat(MinAnnualRate))))
	}
	assert.True(t, MonthlyRate(decimal.Zero).IsZero())
}

func TestAnnualize(t *testing.T) {
	assert.True(t, Annualize(decimal.NewFromInt(30000), 3).Equal(decimal.NewFromInt(120000)))
	assert.True(t, Annualize(decimal.NewFromInt(30000), 0).IsZero())
}

func TestClampsAndFormatting(t *testing.T) {
	assert.True(t, NonNegative(decimal.NewFromInt(-5)).IsZero())
	assert.True(t, NonNegative(decimal.NewFromInt(5)).Equal(decimal.NewFromInt(5)))
	assert.True(t, Min(decimal.NewFromInt(1), decimal.NewFromInt(2)).Equal(decimal.NewFromInt(1)))
	assert.True(t, Max(decimal.NewFromInt(1), decimal.NewFromInt(2)).Equal(decimal.NewFromInt(2)))
	assert.True(t, Sum(decimal.NewFromInt(1), decimal.NewFromInt(2), decimal.NewFromInt(3)).Equal(decimal.NewFromInt(6)))
	assert.Equal(t, "$1234.57", Format(decimal.NewFromFloat(1234.567)))
	assert.Equal(t, "-$10.00", Format(decimal.NewFromInt(-10)))
	assert.Equal(t, "25.00%", FormatPercent(decimal.NewFromFloat(0.25)))
	assert.True(t, FromPercent(decimal.NewFromInt(22)).Equal(decimal.NewFromFloat(0.22)))
}
