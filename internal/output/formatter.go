package output

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rpgo/household-planner/internal/domain"
)

// ErrUnsupportedFormat is returned for a format name with no registered formatter
var ErrUnsupportedFormat = errors.New("unsupported report format")

// ErrMissingResults is returned when a report lacks the section a formatter renders
var ErrMissingResults = errors.New("report has no results for this format")

// Formatter defines a pluggable output formatter that returns a byte slice.
// Implementations should be pure (no side effects besides deterministic formatting).
type Formatter interface {
	Format(report *domain.RunReport) ([]byte, error)
	// Name returns a short identifier for logging / debugging.
	Name() string
}

// FormatterFunc adapter to allow ordinary functions to act as a Formatter.
type FormatterFunc struct {
	ID string
	F  func(*domain.RunReport) ([]byte, error)
}

func (ff FormatterFunc) Format(r *domain.RunReport) ([]byte, error) { return ff.F(r) }
func (ff FormatterFunc) Name() string                               { return ff.ID }

// WriteFormatted runs a formatter and writes the output to path. An empty path
// writes a timestamped file in the working directory. The written path is returned.
func WriteFormatted(f Formatter, report *domain.RunReport, path string) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", err
	}
	if path == "" {
		path = fmt.Sprintf("plan_report_%s.%s", time.Now().Format("20060102_150405"), Extension(f.Name()))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// builtInFormatters stores available formatters.
var builtInFormatters = []Formatter{
	ConsoleFormatter{},
	AnnualCSV{},
	MonthlyCSV{},
	JSONFormatter{},
	ScenariosCSV{},
}

// GetFormatterByName fetches a registered formatter by name or alias.
func GetFormatterByName(name string) (Formatter, error) {
	n := NormalizeFormatName(name)
	for _, f := range builtInFormatters {
		if f.Name() == n {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, name,
		strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
}

// aliasMap provides user-friendly synonyms for format names.
var aliasMap = map[string]string{
	"text":          "console",
	"table":         "console",
	"annual-csv":    "csv",
	"csv-summary":   "csv",
	"csv-detailed":  "detailed-csv",
	"monthly-csv":   "detailed-csv",
	"json-pretty":   "json",
	"csv-scenarios": "scenarios-csv",
	"monte-carlo":   "scenarios-csv",
}

// NormalizeFormatName lowers and resolves aliases.
func NormalizeFormatName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if mapped, ok := aliasMap[n]; ok {
		return mapped
	}
	return n
}

// Extension is the file extension used for a formatter's output
func Extension(name string) string {
	n := NormalizeFormatName(name)
	switch {
	case strings.Contains(n, "csv"):
		return "csv"
	case n == "json":
		return "json"
	default:
		return "txt"
	}
}

// AvailableFormatterNames returns the canonical formatter names.
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(builtInFormatters))
	for _, f := range builtInFormatters {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases returns the supported alias keys.
func AvailableFormatAliases() []string {
	keys := make([]string, 0, len(aliasMap))
	for k := range aliasMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
