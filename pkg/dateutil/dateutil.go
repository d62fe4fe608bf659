package dateutil

import (
	"fmt"
	"strconv"
	"strings"
)

// Sentinel date tokens resolved against plan bounds
const (
	StartToken = "start"
	EndToken   = "end"
)

// YearMonth is a calendar month with no day component
type YearMonth struct {
	Year  int
	Month int
}

// ParseYearMonth parses a "YYYY-MM" string
func ParseYearMonth(value string) (YearMonth, error) {
	parts := strings.Split(strings.TrimSpace(value), "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return YearMonth{}, fmt.Errorf("invalid year-month %q: expected YYYY-MM", value)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid year in %q: %w", value, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid month in %q: %w", value, err)
	}
	if month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("invalid month in %q: must be 01-12", value)
	}
	return YearMonth{Year: year, Month: month}, nil
}

// MustParseYearMonth is ParseYearMonth for literals known to be valid
func MustParseYearMonth(value string) YearMonth {
	ym, err := ParseYearMonth(value)
	if err != nil {
		panic(err)
	}
	return ym
}

// IsDateToken reports whether value is YYYY-MM or a start/end sentinel
func IsDateToken(value string) bool {
	if value == StartToken || value == EndToken {
		return true
	}
	_, err := ParseYearMonth(value)
	return err == nil
}

// Resolve maps a date token to a concrete month. An empty token resolves to fallback.
func Resolve(token string, planStart, planEnd YearMonth, fallback YearMonth) (YearMonth, error) {
	switch token {
	case "":
		return fallback, nil
	case StartToken:
		return planStart, nil
	case EndToken:
		return planEnd, nil
	default:
		return ParseYearMonth(token)
	}
}

// FromIndex converts a month index back to a YearMonth
func FromIndex(index int) YearMonth {
	year := (index - 1) / 12
	month := index - year*12
	return YearMonth{Year: year, Month: month}
}

// Index returns a monotonically increasing month number (year*12 + month)
func (ym YearMonth) Index() int {
	return ym.Year*12 + ym.Month
}

// AddMonths returns the month n months later (or earlier for negative n)
func (ym YearMonth) AddMonths(n int) YearMonth {
	return FromIndex(ym.Index() + n)
}

// Before reports whether ym is strictly before other
func (ym YearMonth) Before(other YearMonth) bool { return ym.Index() < other.Index() }

// After reports whether ym is strictly after other
func (ym YearMonth) After(other YearMonth) bool { return ym.Index() > other.Index() }

// IsZero reports whether ym is unset
func (ym YearMonth) IsZero() bool { return ym.Year == 0 && ym.Month == 0 }

// String formats as YYYY-MM
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// MonthsBetween returns the signed number of months from a to b
func MonthsBetween(a, b YearMonth) int {
	return b.Index() - a.Index()
}

// AgeAt returns the fractional age in years at a month, floored at zero
func AgeAt(birth, at YearMonth) float64 {
	months := MonthsBetween(birth, at)
	if months < 0 {
		return 0
	}
	return float64(months) / 12.0
}

// AgeMonthsAt returns the whole number of months of age at a month, floored at zero
func AgeMonthsAt(birth, at YearMonth) int {
	months := MonthsBetween(birth, at)
	if months < 0 {
		return 0
	}
	return months
}

// Months lists every month from start to end inclusive
func Months(start, end YearMonth) []YearMonth {
	if end.Before(start) {
		return nil
	}
	out := make([]YearMonth, 0, MonthsBetween(start, end)+1)
	for idx := start.Index(); idx <= end.Index(); idx++ {
		out = append(out, FromIndex(idx))
	}
	return out
}
