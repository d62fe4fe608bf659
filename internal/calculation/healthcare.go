package calculation

import (
	"fmt"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/pkg/dateutil"
	"github.com/rpgo/household-planner/pkg/money"
	"github.com/shopspring/decimal"
)

// MedicareEligibilityMonths is age 65 in months
const MedicareEligibilityMonths = 65 * 12

// HealthcareModel prices each owner's coverage for a month
type HealthcareModel struct {
	timeline Timeline
	pre      []preMedicarePlan
	post     []postMedicarePlan
	irmaa    domain.IRMAASettings
}

type preMedicarePlan struct {
	coverage domain.PreMedicareCoverage
	window   Window
}

type postMedicarePlan struct {
	coverage domain.PostMedicareCoverage
	start    dateutil.YearMonth
}

// HealthcareCost is one month of premiums and out-of-pocket costs
type HealthcareCost struct {
	Total decimal.Decimal // includes IRMAA
	IRMAA decimal.Decimal
}

// NewHealthcareModel resolves coverage windows against the timeline
func NewHealthcareModel(hc domain.Healthcare, tl Timeline) (*HealthcareModel, error) {
	hm := &HealthcareModel{timeline: tl, irmaa: hc.IRMAA}
	for _, c := range hc.PreMedicare {
		w, err := tl.Resolve(c.StartDate, c.EndDate, domain.FrequencyMonthly)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve pre-Medicare coverage for %s: %w", c.Owner, err)
		}
		hm.pre = append(hm.pre, preMedicarePlan{coverage: c, window: w})
	}
	for _, c := range hc.PostMedicare {
		start, err := dateutil.Resolve(c.MedicareStartDate, tl.Start, tl.End, tl.Start)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve medicare_start_date for %s: %w", c.Owner, err)
		}
		hm.post = append(hm.post, postMedicarePlan{coverage: c, start: start})
	}
	return hm, nil
}

// MonthlyCost switches each owner between the pre- and post-Medicare model at 65 and adds
// the IRMAA surcharge keyed to MAGI from the lookback year
func (hm *HealthcareModel) MonthlyCost(at dateutil.YearMonth, ages OwnerAges, fs domain.FilingStatus, taxes *TaxCalculator, magiHistory map[int]decimal.Decimal) (HealthcareCost, error) {
	years := hm.timeline.YearsElapsed(at)
	inflation := hm.timeline.InflationRate
	total := decimal.Zero
	irmaa := decimal.Zero

	for _, p := range hm.pre {
		c := p.coverage
		if !p.window.Active(at) || ages.Months(c.Owner) >= MedicareEligibilityMonths {
			continue
		}
		monthly := c.MonthlyPremium.Add(money.Monthly(c.AnnualOutOfPocket))
		total = total.Add(monthly.Mul(ChangeMultiplier(c.ChangeOverTime, c.ChangeRate, inflation, years)))
	}

	for _, p := range hm.post {
		c := p.coverage
		if at.Before(p.start) || at.After(hm.timeline.End) || ages.Months(c.Owner) < MedicareEligibilityMonths {
			continue
		}
		monthly := money.Sum(c.PartBMonthlyPremium, c.SupplementMonthlyPremium, c.PartDMonthlyPremium, money.Monthly(c.AnnualOutOfPocket))
		total = total.Add(monthly.Mul(ChangeMultiplier(c.ChangeOverTime, c.ChangeRate, inflation, years)))

		if !hm.irmaa.Enabled {
			continue
		}
		magi := magiHistory[at.Year-hm.irmaa.LookbackYears]
		partB, partD, err := taxes.IRMAASurcharge(magi, fs, at.Year)
		if err != nil {
			return HealthcareCost{}, err
		}
		irmaa = irmaa.Add(partB).Add(partD)
	}

	irmaa = money.Cents(irmaa)
	return HealthcareCost{Total: money.Cents(total).Add(irmaa), IRMAA: irmaa}, nil
}
