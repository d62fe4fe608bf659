package output

import (
	"fmt"
	"io"
	"os"

	"github.com/rpgo/household-planner/internal/domain"
	"gopkg.in/yaml.v3"
)

// GenerateReport formats report with the named formatter and writes it to w.
func GenerateReport(w io.Writer, report *domain.RunReport, format string) error {
	f, err := GetFormatterByName(format)
	if err != nil {
		return err
	}
	data, err := f.Format(report)
	if err != nil {
		return fmt.Errorf("failed to format %s report: %w", f.Name(), err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// SavePlan writes plan as YAML, e.g. to materialize the built-in example
func SavePlan(plan *domain.Plan, filename string) error {
	b, err := yaml.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return os.WriteFile(filename, b, 0644)
}
