package dateutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYearMonth(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    YearMonth
		expectError bool
	}{
		{name: "valid", input: "2026-01", expected: YearMonth{2026, 1}},
		{name: "december", input: "2055-12", expected: YearMonth{2055, 12}},
		{name: "trims whitespace", input: " 2030-06 ", expected: YearMonth{2030, 6}},
		{name: "month out of range", input: "2026-13", expectError: true},
		{name: "missing month", input: "2026", expectError: true},
		{name: "full date", input: "2026-01-15", expectError: true},
		{name: "single digit month", input: "2026-1", expectError: true},
		{name: "non numeric", input: "abcd-ef", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseYearMonth(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestIndexRoundTrip(t *testing.T) {
	for _, ym := range []YearMonth{{2026, 1}, {2026, 12}, {1999, 6}} {
		assert.Equal(t, ym, FromIndex(ym.Index()), "round trip for %s", ym)
	}
	assert.Equal(t, YearMonth{2027, 2}, YearMonth{2026, 11}.AddMonths(3))
	assert.Equal(t, YearMonth{2025, 12}, YearMonth{2026, 1}.AddMonths(-1))
}

func TestResolve(t *testing.T) {
	start := YearMonth{2026, 1}
	end := YearMonth{2060, 12}

	got, err := Resolve(StartToken, start, end, end)
	require.NoError(t, err)
	assert.Equal(t, start, got)

	got, err = Resolve(EndToken, start, end, start)
	require.NoError(t, err)
	assert.Equal(t, end, got)

	got, err = Resolve("", start, end, end)
	require.NoError(t, err)
	assert.Equal(t, end, got)

	got, err = Resolve("2030-07", start, end, end)
	require.NoError(t, err)
	assert.Equal(t, YearMonth{2030, 7}, got)

	_, err = Resolve("July", start, end, end)
	assert.Error(t, err)
}

func TestAgeAt(t *testing.T) {
	birth := MustParseYearMonth("1960-07")
	assert.InDelta(t, 65.5, AgeAt(birth, MustParseYearMonth("2026-01")), 1e-9)
	assert.Equal(t, 0.0, AgeAt(birth, MustParseYearMonth("1950-01")))
	assert.Equal(t, 786, AgeMonthsAt(birth, MustParseYearMonth("2026-01")))
}

func TestMonths(t *testing.T) {
	months := Months(YearMonth{2026, 11}, YearMonth{2027, 2})
	require.Len(t, months, 4)
	assert.Equal(t, "2026-11", months[0].String())
	assert.Equal(t, "2027-02", months[3].String())
	assert.Nil(t, Months(YearMonth{2027, 1}, YearMonth{2026, 1}))
	assert.True(t, IsDateToken("start"))
	assert.True(t, IsDateToken("2026-05"))
	assert.False(t, IsDateToken("soon"))
}
