package output

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"currency rounds", FormatCurrency(decimal.NewFromFloat(1234.567)), "$1234.57"},
		{"negative currency", FormatCurrency(decimal.NewFromInt(-50)), "-$50.00"},
		{"percentage", FormatPercentage(decimal.NewFromFloat(12.3456)), "12.35%"},
		{"rate", FormatRate(decimal.RequireFromString("0.875")), "87.50%"},
		{"int", intToString(42), "42"},
		{"bool", boolToString(false), "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}
