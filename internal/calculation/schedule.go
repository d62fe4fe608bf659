package calculation

import (
	"fmt"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/pkg/dateutil"
	"github.com/rpgo/household-planner/pkg/money"
	"github.com/shopspring/decimal"
)

// Timeline resolves plan-relative dates and inflation for recurring items
type Timeline struct {
	Start         dateutil.YearMonth
	End           dateutil.YearMonth
	InflationRate decimal.Decimal
}

// NewTimeline parses the plan bounds
func NewTimeline(settings domain.PlanSettings) (Timeline, error) {
	start, err := dateutil.ParseYearMonth(settings.PlanStart)
	if err != nil {
		return Timeline{}, fmt.Errorf("failed to parse plan_start: %w", err)
	}
	end, err := dateutil.ParseYearMonth(settings.PlanEnd)
	if err != nil {
		return Timeline{}, fmt.Errorf("failed to parse plan_end: %w", err)
	}
	if end.Before(start) {
		return Timeline{}, fmt.Errorf("plan_end %s is before plan_start %s", end, start)
	}
	return Timeline{Start: start, End: end, InflationRate: settings.InflationRate}, nil
}

// Months lists every simulated month
func (tl Timeline) Months() []dateutil.YearMonth {
	return dateutil.Months(tl.Start, tl.End)
}

// YearsElapsed is the number of whole calendar years since the plan started
func (tl Timeline) YearsElapsed(at dateutil.YearMonth) int {
	if at.Year < tl.Start.Year {
		return 0
	}
	return at.Year - tl.Start.Year
}

// Window is a resolved, inclusive activity interval
type Window struct {
	Start     dateutil.YearMonth
	End       dateutil.YearMonth
	Frequency domain.Frequency
	// ProrateAnnual spreads annual amounts over every active month instead of the anniversary month
	ProrateAnnual bool
}

// Resolve turns start/end tokens into a Window; empty tokens default to the plan bounds
func (tl Timeline) Resolve(startToken, endToken string, freq domain.Frequency) (Window, error) {
	start, err := dateutil.Resolve(startToken, tl.Start, tl.End, tl.Start)
	if err != nil {
		return Window{}, fmt.Errorf("failed to resolve start date: %w", err)
	}
	end, err := dateutil.Resolve(endToken, tl.Start, tl.End, tl.End)
	if err != nil {
		return Window{}, fmt.Errorf("failed to resolve end date: %w", err)
	}
	if freq == "" {
		freq = domain.FrequencyMonthly
	}
	return Window{Start: start, End: end, Frequency: freq}, nil
}

// ResolveSchedule resolves an item's shared schedule fields
func (tl Timeline) ResolveSchedule(s domain.Schedule) (Window, error) {
	return tl.Resolve(s.StartDate, s.EndDate, s.Frequency)
}

// Active reports whether at falls inside the window
func (w Window) Active(at dateutil.YearMonth) bool {
	return !at.Before(w.Start) && !at.After(w.End)
}

// Occurrence reports whether the item fires at a month and the fraction of its amount that is due
func (w Window) Occurrence(at dateutil.YearMonth) (bool, decimal.Decimal) {
	if !w.Active(at) {
		return false, decimal.Zero
	}
	one := decimal.NewFromInt(1)
	switch w.Frequency {
	case domain.FrequencyMonthly:
		return true, one
	case domain.FrequencyAnnual:
		if w.ProrateAnnual {
			return true, one.Div(money.Twelve())
		}
		return fires(at.Month == w.Start.Month)
	case domain.FrequencyOneTime:
		return fires(at == w.Start)
	default:
		return false, decimal.Zero
	}
}

func fires(ok bool) (bool, decimal.Decimal) {
	if !ok {
		return false, decimal.Zero
	}
	return true, decimal.NewFromInt(1)
}

// AnnualChangeRate is the yearly growth rate implied by a change_over_time setting
func AnnualChangeRate(cot domain.ChangeOverTime, rate *decimal.Decimal, inflation decimal.Decimal) decimal.Decimal {
	r := decimal.Zero
	if rate != nil {
		r = *rate
	}
	switch cot {
	case domain.ChangeIncrease:
		return r
	case domain.ChangeDecrease:
		return r.Neg()
	case domain.ChangeMatchInflation:
		return inflation
	case domain.ChangeInflationPlus:
		return inflation.Add(r)
	case domain.ChangeInflationMinus:
		return inflation.Sub(r)
	default:
		return decimal.Zero
	}
}

// ChangeMultiplier compounds the change rate over whole elapsed years
func ChangeMultiplier(cot domain.ChangeOverTime, rate *decimal.Decimal, inflation decimal.Decimal, years int) decimal.Decimal {
	return money.Compound(AnnualChangeRate(cot, rate, inflation), years)
}

// AmountAt scales a base amount by the change multiplier for at
func (tl Timeline) AmountAt(base decimal.Decimal, cot domain.ChangeOverTime, rate *decimal.Decimal, at dateutil.YearMonth) decimal.Decimal {
	return base.Mul(ChangeMultiplier(cot, rate, tl.InflationRate, tl.YearsElapsed(at)))
}

// OwnerAges holds each household member's age in whole months for one month
type OwnerAges struct {
	PrimaryMonths int
	SpouseMonths  int
	HasSpouse     bool
}

// Months returns the age in months of an owner; joint and unknown owners use the primary
func (a OwnerAges) Months(owner string) int {
	if owner == domain.OwnerSpouse && a.HasSpouse {
		return a.SpouseMonths
	}
	return a.PrimaryMonths
}

// Years returns the fractional age of an owner
func (a OwnerAges) Years(owner string) float64 {
	return float64(a.Months(owner)) / 12.0
}
