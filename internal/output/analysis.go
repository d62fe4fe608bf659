package output

import (
	"sort"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// Highlights picks out the extreme scenarios of a simulation
type Highlights struct {
	Best                 domain.ScenarioOutcome
	Worst                domain.ScenarioOutcome
	EarliestInsolvency   int // zero when every scenario stays solvent
	EarliestInsolventRun string
	FailedScenarios      int
	MeanEndingNetWorth   decimal.Decimal
	ScenariosConsidered  int
}

// AnalyzeScenarios ranks outcomes by ending net worth. Ties keep index order.
func AnalyzeScenarios(summary *domain.SimulationSummary) Highlights {
	if summary == nil || len(summary.Scenarios) == 0 {
		return Highlights{}
	}
	ranked := append([]domain.ScenarioOutcome(nil), summary.Scenarios...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].EndingNetWorth.GreaterThan(ranked[j].EndingNetWorth)
	})

	h := Highlights{
		Best:                ranked[0],
		Worst:               ranked[len(ranked)-1],
		ScenariosConsidered: len(ranked),
	}
	total := decimal.Zero
	for _, o := range summary.Scenarios {
		total = total.Add(o.EndingNetWorth)
		if len(o.InsolvencyYears) == 0 {
			continue
		}
		h.FailedScenarios++
		if first := o.InsolvencyYears[0]; h.EarliestInsolvency == 0 || first < h.EarliestInsolvency {
			h.EarliestInsolvency = first
			h.EarliestInsolventRun = o.Label
		}
	}
	h.MeanEndingNetWorth = total.Div(decimal.NewFromInt(int64(len(summary.Scenarios)))).Round(2)
	return h
}
