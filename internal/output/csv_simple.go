package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/household-planner/internal/domain"
)

// AnnualCSV writes one row per plan year. Simulation reports write the per-year net worth bands.
type AnnualCSV struct{}

func (c AnnualCSV) Name() string { return "csv" }

func (c AnnualCSV) Format(report *domain.RunReport) ([]byte, error) {
	switch {
	case report == nil:
		return nil, ErrMissingResults
	case report.Deterministic != nil:
		return annualRows(report.Deterministic)
	case report.Simulation != nil:
		return bandRows(report.Simulation)
	default:
		return nil, ErrMissingResults
	}
}

func annualRows(res *domain.EngineResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Year", "Income", "SocialSecurity", "EssentialExpenses", "DiscretionaryExpenses",
		"HealthcareExpenses", "IRMAASurcharge", "RealAssetExpenses", "Contributions", "Withdrawals",
		"RMDWithdrawals", "RothConversions", "RealizedCapitalGains", "MAGI", "TaxFederal", "TaxCapitalGains",
		"TaxState", "TaxNIIT", "TaxAMT", "TaxPenalties", "TaxTotal", "TaxPayment", "TaxRefund",
		"NetWorthEnd", "Insolvent"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, a := range res.Annual {
		row := []string{
			intToString(a.Year),
			fixed(a.Income),
			fixed(a.SocialSecurityIncome),
			fixed(a.EssentialExpenses),
			fixed(a.DiscretionaryExpenses),
			fixed(a.HealthcareExpenses),
			fixed(a.IRMAASurcharge),
			fixed(a.RealAssetExpenses),
			fixed(a.Contributions),
			fixed(a.Withdrawals),
			fixed(a.RMDWithdrawals),
			fixed(a.RothConversions),
			fixed(a.RealizedCapitalGains),
			fixed(a.MAGI),
			fixed(a.TaxFederal),
			fixed(a.TaxCapitalGains),
			fixed(a.TaxState),
			fixed(a.TaxNIIT),
			fixed(a.TaxAMT),
			fixed(a.TaxPenalties),
			fixed(a.TaxTotal),
			fixed(a.TaxPayment),
			fixed(a.TaxRefund),
			fixed(a.NetWorthEnd),
			boolToString(a.Insolvent),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func bandRows(sum *domain.SimulationSummary) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"Year", "P10", "P50", "P90", "InsolventScenarios"}); err != nil {
		return nil, err
	}
	for _, b := range sum.NetWorthBands {
		row := []string{intToString(b.Year), fixed(b.P10), fixed(b.P50), fixed(b.P90), intToString(sum.InsolvencyHistogram[b.Year])}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
