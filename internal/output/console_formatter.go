package output

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rpgo/household-planner/internal/domain"
)

// ConsoleFormatter renders a styled summary with an annual or percentile table.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *domain.RunReport) ([]byte, error) {
	if report == nil {
		return nil, ErrMissingResults
	}
	var buf bytes.Buffer

	name := report.PlanName
	if name == "" {
		name = "Household plan"
	}
	fmt.Fprintln(&buf, TitleStyle.Render(strings.ToUpper(name)))
	sub := fmt.Sprintf("mode: %s", report.Mode)
	if !report.GeneratedAt.IsZero() {
		sub += "  generated: " + report.GeneratedAt.Format("2006-01-02 15:04")
	}
	fmt.Fprintln(&buf, SubtitleStyle.Render(sub))
	fmt.Fprintln(&buf)

	if len(report.Assumptions) > 0 {
		fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
		for _, a := range report.Assumptions {
			fmt.Fprintf(&buf, "• %s\n", a)
		}
		fmt.Fprintln(&buf)
	}

	switch {
	case report.Deterministic != nil:
		writeDeterministic(&buf, report.Deterministic)
	case report.Simulation != nil:
		writeSimulation(&buf, report.Simulation)
	default:
		return nil, ErrMissingResults
	}
	return buf.Bytes(), nil
}

func writeDeterministic(buf *bytes.Buffer, res *domain.EngineResult) {
	headers := []string{"Year", "Income", "Expenses", "Taxes", "Withdrawals", "Net Worth", "Status"}
	rows := make([][]string, 0, len(res.Annual))
	for _, a := range res.Annual {
		status := "ok"
		if a.Insolvent {
			status = "INSOLVENT"
		}
		rows = append(rows, []string{
			intToString(a.Year),
			FormatCurrency(a.Income.Add(a.SocialSecurityIncome)),
			FormatCurrency(a.TotalExpenses()),
			FormatCurrency(a.TaxTotal),
			FormatCurrency(a.Withdrawals),
			FormatCurrency(a.NetWorthEnd),
			status,
		})
	}
	fmt.Fprintln(buf, renderTable(headers, rows))
	fmt.Fprintln(buf)

	fmt.Fprintf(buf, "Final net worth: %s\n", FormatCurrency(res.FinalNetWorth()))
	if res.Solvent() {
		last := 0
		if n := len(res.Annual); n > 0 {
			last = res.Annual[n-1].Year
		}
		fmt.Fprintln(buf, formatSuccess(fmt.Sprintf("Plan stays solvent through %d", last)))
		return
	}
	years := make([]string, len(res.InsolvencyYears))
	for i, y := range res.InsolvencyYears {
		years[i] = intToString(y)
	}
	fmt.Fprintln(buf, formatWarning("Insolvent in: "+strings.Join(years, ", ")))
}

func writeSimulation(buf *bytes.Buffer, sum *domain.SimulationSummary) {
	p := sum.EndingNetWorth
	summary := strings.Join([]string{
		fmt.Sprintf("Scenarios:           %d", sum.NumScenarios),
		fmt.Sprintf("Seed:                %d", sum.Seed),
		fmt.Sprintf("Success rate:        %s", FormatRate(sum.SuccessRate)),
		fmt.Sprintf("Median ending worth: %s", FormatCurrency(sum.MedianEndingNetWorth)),
		fmt.Sprintf("P10 / P25:           %s / %s", FormatCurrency(p.P10), FormatCurrency(p.P25)),
		fmt.Sprintf("P75 / P90:           %s / %s", FormatCurrency(p.P75), FormatCurrency(p.P90)),
	}, "\n")
	fmt.Fprintln(buf, BoxStyle.Render(summary))
	fmt.Fprintln(buf)

	h := AnalyzeScenarios(sum)
	if h.ScenariosConsidered > 0 {
		fmt.Fprintf(buf, "Best scenario:  %s (%s)\n", h.Best.Label, FormatCurrency(h.Best.EndingNetWorth))
		fmt.Fprintf(buf, "Worst scenario: %s (%s)\n", h.Worst.Label, FormatCurrency(h.Worst.EndingNetWorth))
		fmt.Fprintf(buf, "Mean ending net worth: %s\n", FormatCurrency(h.MeanEndingNetWorth))
		if h.FailedScenarios == 0 {
			fmt.Fprintln(buf, formatSuccess("Every scenario stays solvent"))
		} else {
			fmt.Fprintln(buf, formatWarning(fmt.Sprintf("%d of %d scenarios run out of money; earliest in %d (%s)",
				h.FailedScenarios, h.ScenariosConsidered, h.EarliestInsolvency, h.EarliestInsolventRun)))
		}
		fmt.Fprintln(buf)
	}

	if len(sum.NetWorthBands) > 0 {
		rows := make([][]string, 0, len(sum.NetWorthBands))
		for _, b := range sum.NetWorthBands {
			rows = append(rows, []string{intToString(b.Year), FormatCurrency(b.P10), FormatCurrency(b.P50), FormatCurrency(b.P90)})
		}
		fmt.Fprintln(buf, renderTable([]string{"Year", "P10", "P50", "P90"}, rows))
		fmt.Fprintln(buf)
	}

	if len(sum.InsolvencyHistogram) > 0 {
		years := make([]int, 0, len(sum.InsolvencyHistogram))
		for y := range sum.InsolvencyHistogram {
			years = append(years, y)
		}
		sort.Ints(years)
		fmt.Fprintln(buf, "INSOLVENT SCENARIOS BY YEAR:")
		for _, y := range years {
			fmt.Fprintf(buf, "  %d: %d\n", y, sum.InsolvencyHistogram[y])
		}
	}
}

// renderTable right-aligns every column except the first and styles the header row
func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i, cell := range r {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			if i == 0 {
				parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
			} else {
				parts[i] = fmt.Sprintf("%*s", widths[i], cell)
			}
		}
		return strings.Join(parts, "  ")
	}

	var sb strings.Builder
	sb.WriteString(TableHeaderStyle.Render(line(headers)))
	for _, r := range rows {
		sb.WriteString("\n")
		sb.WriteString(line(r))
	}
	return sb.String()
}
