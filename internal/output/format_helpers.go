package output

import (
	"strconv"

	"github.com/shopspring/decimal"
)

var decimalHundred = decimal.NewFromInt(100)

// FormatCurrency formats a decimal as USD currency with 2 decimals.
func FormatCurrency(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Neg().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats a decimal as a percentage with 2 decimals.
func FormatPercentage(amount decimal.Decimal) string { return amount.StringFixed(2) + "%" }

// FormatRate formats a fraction (0.05) as a percentage (5.00%).
func FormatRate(rate decimal.Decimal) string { return FormatPercentage(rate.Mul(decimalHundred)) }

func intToString(v int) string { return strconv.Itoa(v) }

func boolToString(v bool) string { return strconv.FormatBool(v) }

func fixed(d decimal.Decimal) string { return d.StringFixed(2) }
