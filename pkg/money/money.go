package money

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// Twelve is the number of months in a year as a decimal
func Twelve() decimal.Decimal { return twelve }

// Cents rounds an amount to cents
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// NonNegative floors an amount at zero
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Min returns the smaller of two amounts
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the larger of two amounts
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Sum adds any number of amounts
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Monthly converts an annual amount to a monthly amount
func Monthly(annual decimal.Decimal) decimal.Decimal {
	return annual.Div(twelve)
}

// Annualize scales a year-to-date amount covering monthsElapsed months to a full year
func Annualize(ytd decimal.Decimal, monthsElapsed int) decimal.Decimal {
	if monthsElapsed <= 0 {
		return decimal.Zero
	}
	return ytd.Mul(twelve).Div(decimal.NewFromInt(int64(monthsElapsed)))
}

// Compound returns (1+rate)^years for whole years; years <= 0 yields 1
func Compound(rate decimal.Decimal, years int) decimal.Decimal {
	factor := decimal.NewFromInt(1)
	if years <= 0 {
		return factor
	}
	base := decimal.NewFromInt(1).Add(rate)
	for i := 0; i < years; i++ {
		factor = factor.Mul(base)
	}
	return factor.Round(12)
}

// MinAnnualRate floors annual growth so a monthly rate stays above -100%
const MinAnnualRate = -0.9999

// MonthlyRate converts an annual rate to the equivalent compounded monthly rate. Annual rates
// below MinAnnualRate are floored, so the result is always greater than -1.
func MonthlyRate(annual decimal.Decimal) decimal.Decimal {
	a := math.Max(annual.InexactFloat64(), MinAnnualRate)
	return decimal.NewFromFloat(math.Pow(1+a, 1.0/12.0) - 1)
}

// FromPercent converts a whole-number percentage (22 for 22%) to a fraction
func FromPercent(p decimal.Decimal) decimal.Decimal {
	return p.Div(hundred)
}

// ApproxEqual reports whether two amounts differ by no more than tolerance
func ApproxEqual(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

// Format formats an amount as dollars with two decimals
func Format(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if d.IsNegative() {
		return "-$" + s[1:]
	}
	return "$" + s
}

// FormatPercent formats a fraction (0.25) as a percentage string (25.00%)
func FormatPercent(d decimal.Decimal) string {
	return d.Mul(hundred).StringFixed(2) + "%"
}
