package output

import (
	"fmt"

	"github.com/rpgo/household-planner/internal/domain"
)

// GenerateAssumptions lists the plan-level modeling assumptions rendered in console output
func GenerateAssumptions(plan *domain.Plan) []string {
	if plan == nil {
		return nil
	}
	out := []string{
		fmt.Sprintf("Inflation: %s annually", FormatRate(plan.PlanSettings.InflationRate)),
		fmt.Sprintf("Plan horizon: %s to %s", plan.PlanSettings.PlanStart, plan.PlanSettings.PlanEnd),
		fmt.Sprintf("Filing status: %s", plan.FilingStatus),
	}

	ts := plan.TaxSettings
	switch {
	case ts.FederalEffectiveRateOverride != nil:
		out = append(out, fmt.Sprintf("Federal tax: flat %s effective rate", FormatRate(*ts.FederalEffectiveRateOverride)))
	case ts.UseCurrentBrackets:
		out = append(out, fmt.Sprintf("Tax brackets: %d levels held constant", ts.BracketYear))
	default:
		out = append(out, fmt.Sprintf("Tax brackets: %d levels indexed to inflation", ts.BracketYear))
	}

	if plan.RMDs.Enabled {
		out = append(out, fmt.Sprintf("RMDs begin at age %d", plan.RMDs.RMDStartAge))
	}
	if plan.Healthcare.IRMAA.Enabled {
		out = append(out, fmt.Sprintf("IRMAA uses MAGI from %d years prior", plan.Healthcare.IRMAA.LookbackYears))
	}

	sim := plan.SimulationSettings
	switch sim.Mode {
	case domain.ModeMonteCarlo:
		mc := sim.MonteCarlo
		out = append(out, fmt.Sprintf("Monte Carlo: stocks %.1f%% ± %.1f%%, bonds %.1f%% ± %.1f%%, correlation %.2f",
			mc.StockMeanReturn*100, mc.StockStdDev*100, mc.BondMeanReturn*100, mc.BondStdDev*100, mc.Correlation))
	case domain.ModeHistorical:
		h := sim.Historical
		period := "single start year"
		if h.UseRollingPeriods {
			period = "rolling start years"
		}
		out = append(out, fmt.Sprintf("Historical replay: %d to %d, %s", h.StartYear, h.EndYear, period))
	}
	return out
}
