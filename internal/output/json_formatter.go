package output

import (
	"encoding/json"

	"github.com/rpgo/household-planner/internal/domain"
)

// JSONFormatter serializes the run report as pretty-printed JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(report *domain.RunReport) ([]byte, error) {
	if report == nil {
		return nil, ErrMissingResults
	}
	return json.MarshalIndent(report, "", "  ")
}
