package calculation

import (
	"fmt"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/pkg/money"
	"github.com/shopspring/decimal"
)

// rothSchedule is a conversion with its window and target bracket resolved
type rothSchedule struct {
	conversion domain.RothConversion
	window     Window
	fillRate   decimal.Decimal
	fill       bool
}

func compileRothConversions(tl Timeline, conversions []domain.RothConversion) ([]rothSchedule, error) {
	out := make([]rothSchedule, 0, len(conversions))
	for _, c := range conversions {
		w, err := tl.Resolve(c.StartDate, c.EndDate, domain.FrequencyMonthly)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve roth conversion %q: %w", c.Name, err)
		}
		rs := rothSchedule{conversion: c, window: w}
		if c.FillToBracket != "" {
			rate, err := ParseBracketRate(c.FillToBracket)
			if err != nil {
				return nil, fmt.Errorf("failed to parse fill_to_bracket for %q: %w", c.Name, err)
			}
			rs.fillRate = rate
			rs.fill = true
		}
		out = append(out, rs)
	}
	return out, nil
}

// FillToBracketAmount is the room left under a bracket ceiling given year-to-date ordinary income
func FillToBracketAmount(ceiling, ytdOrdinaryIncome decimal.Decimal) decimal.Decimal {
	return money.NonNegative(ceiling.Sub(money.NonNegative(ytdOrdinaryIncome)))
}

// applyRothConversions converts pre-tax money to Roth. Fixed amounts convert one twelfth per
// active month; fill-to-bracket conversions run as a December lump sum. Each conversion sees
// the ordinary income added by the ones before it.
func (e *CashFlowEngine) applyRothConversions(st *SimulationState, mc *monthContext) error {
	for _, rs := range e.roth {
		if !rs.window.Active(mc.at) {
			continue
		}
		c := rs.conversion
		available := money.NonNegative(st.Balances[c.FromAccount])
		if available.IsZero() {
			continue
		}

		amount := decimal.Zero
		switch {
		case rs.fill:
			if mc.at.Month != 12 {
				continue
			}
			ceiling, ok, err := e.taxes.BracketCeiling(e.plan.FilingStatus, mc.at.Year, rs.fillRate)
			if err != nil {
				return fmt.Errorf("failed to size roth conversion %q: %w", c.Name, err)
			}
			if !ok {
				continue
			}
			amount = FillToBracketAmount(ceiling, mc.year.ordinaryIncome)
		case c.AnnualAmount != nil:
			amount = money.Monthly(money.NonNegative(*c.AnnualAmount))
		}
		amount = money.Cents(money.Min(amount, available))
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		mc.move(st, c.FromAccount, c.ToAccount, amount)
		if tracker, ok := st.RothBasis[c.ToAccount]; ok {
			tracker.AddBasis(amount)
		}
		mc.year.ordinaryIncome = mc.year.ordinaryIncome.Add(amount)
		mc.month.RothConversions = mc.month.RothConversions.Add(amount)
		e.logger.Debugf("roth conversion %q %s: %s", c.Name, mc.at, amount.StringFixed(2))
	}
	return nil
}
