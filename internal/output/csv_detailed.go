package output

import (
	"bytes"
	"encoding/csv"
	"sort"

	"github.com/rpgo/household-planner/internal/domain"
)

// MonthlyCSV provides raw monthly detail with one balance column per account.
type MonthlyCSV struct{}

func (c MonthlyCSV) Name() string { return "detailed-csv" }

func (c MonthlyCSV) Format(report *domain.RunReport) ([]byte, error) {
	if report == nil || report.Deterministic == nil {
		return nil, ErrMissingResults
	}
	months := report.Deterministic.Monthly

	seen := map[string]bool{}
	var accounts []string
	for _, m := range months {
		for name := range m.AccountBalancesEnd {
			if !seen[name] {
				seen[name] = true
				accounts = append(accounts, name)
			}
		}
	}
	sort.Strings(accounts)

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Year", "Month", "Income", "SocialSecurity", "Expenses", "IRMAASurcharge", "Contributions",
		"Transfers", "Withdrawals", "RMDWithdrawals", "RothConversions", "Growth", "Dividends", "Fees",
		"TaxWithheld", "FICATax", "EstimatedTaxPaid", "TaxSettlement", "NetWorthEnd", "Insolvent"}
	for _, a := range accounts {
		header = append(header, "Balance:"+a)
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, m := range months {
		row := []string{
			intToString(m.Year),
			intToString(m.Month),
			fixed(m.Income),
			fixed(m.SocialSecurityIncome),
			fixed(m.TotalExpenses()),
			fixed(m.IRMAASurcharge),
			fixed(m.Contributions),
			fixed(m.Transfers),
			fixed(m.Withdrawals),
			fixed(m.RMDWithdrawals),
			fixed(m.RothConversions),
			fixed(m.Growth),
			fixed(m.Dividends),
			fixed(m.Fees),
			fixed(m.TaxWithheld),
			fixed(m.FICATax),
			fixed(m.EstimatedTaxPaid),
			fixed(m.TaxSettlement),
			fixed(m.NetWorthEnd),
			boolToString(m.Insolvent),
		}
		for _, a := range accounts {
			row = append(row, fixed(m.AccountBalancesEnd[a]))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
