package output

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/rpgo/household-planner/internal/domain"
)

// ScenariosCSV writes one row per simulated scenario
type ScenariosCSV struct{}

func (s ScenariosCSV) Name() string { return "scenarios-csv" }

func (s ScenariosCSV) Format(report *domain.RunReport) ([]byte, error) {
	if report == nil || report.Simulation == nil {
		return nil, ErrMissingResults
	}
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Index", "ID", "Label", "EndingNetWorth", "Success", "InsolventYears", "FirstInsolventYear", "Years"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, o := range report.Simulation.Scenarios {
		first := ""
		years := make([]string, len(o.InsolvencyYears))
		for i, y := range o.InsolvencyYears {
			years[i] = intToString(y)
		}
		if len(years) > 0 {
			first = years[0]
		}
		row := []string{
			intToString(o.Index),
			o.ID,
			o.Label,
			fixed(o.EndingNetWorth),
			boolToString(o.Success),
			intToString(len(o.InsolvencyYears)),
			first,
			strings.Join(years, ";"),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
