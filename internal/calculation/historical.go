package calculation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// Built-in dataset bounds
const (
	HistoricalFirstYear = 1926
	HistoricalLastYear  = 2024
)

// HistoricalStatistics summarizes a dataset's return series
type HistoricalStatistics struct {
	StockMean   decimal.Decimal `json:"stock_mean"`
	StockStdDev decimal.Decimal `json:"stock_std_dev"`
	BondMean    decimal.Decimal `json:"bond_mean"`
	BondStdDev  decimal.Decimal `json:"bond_std_dev"`
	Count       int             `json:"count"`
	MissingYear []int           `json:"missing_years"`
}

// HistoricalDataset holds annual (stock, bond) returns keyed by year
type HistoricalDataset struct {
	Name       string                     `json:"name"`
	Source     string                     `json:"source"`
	Returns    map[int]domain.YearReturns `json:"returns"`
	MinYear    int                        `json:"min_year"`
	MaxYear    int                        `json:"max_year"`
	Statistics HistoricalStatistics       `json:"statistics"`
}

// seriesValue is a bounded two-harmonic wave used by the built-in dataset
func seriesValue(year int, center, amplitude float64, period int) float64 {
	phase := (year - HistoricalFirstYear) % period
	x := float64(phase) / float64(period) * 2 * math.Pi
	return center + amplitude*(0.65*math.Sin(x)+0.35*math.Sin(2*x+0.7))
}

// SyntheticHistoricalDataset builds the deterministic 1926-2024 series bundled with the planner
func SyntheticHistoricalDataset() *HistoricalDataset {
	returns := make(map[int]domain.YearReturns, HistoricalLastYear-HistoricalFirstYear+1)
	for year := HistoricalFirstYear; year <= HistoricalLastYear; year++ {
		stock := math.Max(-0.45, seriesValue(year, 0.10, 0.22, 17))
		bond := math.Max(-0.20, seriesValue(year, 0.04, 0.10, 11))
		returns[year] = domain.YearReturns{
			Stock: decimal.NewFromFloat(stock).Round(6),
			Bond:  decimal.NewFromFloat(bond).Round(6),
		}
	}
	return newHistoricalDataset("synthetic", "built-in", returns)
}

// LoadHistoricalCSV reads a year,stock_return,bond_return file
func LoadHistoricalCSV(path string) (*HistoricalDataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()
	return ReadHistoricalCSV(file, path)
}

// ReadHistoricalCSV parses historical returns from r. A header row is optional; rows with an
// unparseable year are skipped, while bad return values are errors.
func ReadHistoricalCSV(r io.Reader, source string) (*HistoricalDataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	returns := make(map[int]domain.YearReturns)
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read data row: %w", err)
		}
		line++
		if len(record) < 3 {
			return nil, fmt.Errorf("line %d: expected year,stock_return,bond_return", line)
		}
		year, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			continue
		}
		stock, err := decimal.NewFromString(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid stock return %q: %w", line, record[1], err)
		}
		bond, err := decimal.NewFromString(strings.TrimSpace(record[2]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid bond return %q: %w", line, record[2], err)
		}
		returns[year] = domain.YearReturns{Stock: stock, Bond: bond}
	}
	if len(returns) == 0 {
		return nil, fmt.Errorf("no valid data points found in %s", source)
	}
	return newHistoricalDataset(source, source, returns), nil
}

func newHistoricalDataset(name, source string, returns map[int]domain.YearReturns) *HistoricalDataset {
	d := &HistoricalDataset{Name: name, Source: source, Returns: returns}
	first := true
	for year := range returns {
		if first || year < d.MinYear {
			d.MinYear = year
		}
		if first || year > d.MaxYear {
			d.MaxYear = year
		}
		first = false
	}
	d.Statistics = d.calculateStatistics()
	return d
}

func (d *HistoricalDataset) calculateStatistics() HistoricalStatistics {
	stats := HistoricalStatistics{Count: len(d.Returns)}
	if stats.Count == 0 {
		return stats
	}
	var stocks, bonds []float64
	for year := d.MinYear; year <= d.MaxYear; year++ {
		r, ok := d.Returns[year]
		if !ok {
			stats.MissingYear = append(stats.MissingYear, year)
			continue
		}
		stocks = append(stocks, r.Stock.InexactFloat64())
		bonds = append(bonds, r.Bond.InexactFloat64())
	}
	meanStd := func(values []float64) (decimal.Decimal, decimal.Decimal) {
		var sum float64
		for _, v := range values {
			sum += v
		}
		mean := sum / float64(len(values))
		var variance float64
		for _, v := range values {
			variance += (v - mean) * (v - mean)
		}
		std := math.Sqrt(variance / float64(len(values)))
		return decimal.NewFromFloat(mean).Round(6), decimal.NewFromFloat(std).Round(6)
	}
	stats.StockMean, stats.StockStdDev = meanStd(stocks)
	stats.BondMean, stats.BondStdDev = meanStd(bonds)
	return stats
}

// Window restricts replay to [startYear, endYear]; zero bounds use the dataset's range
func (d *HistoricalDataset) Window(startYear, endYear int) (int, int, error) {
	if startYear == 0 {
		startYear = d.MinYear
	}
	if endYear == 0 {
		endYear = d.MaxYear
	}
	if startYear > endYear {
		return 0, 0, fmt.Errorf("historical start_year %d is after end_year %d", startYear, endYear)
	}
	for year := startYear; year <= endYear; year++ {
		if _, ok := d.Returns[year]; !ok {
			return 0, 0, fmt.Errorf("historical dataset %s has no returns for %d", d.Name, year)
		}
	}
	return startYear, endYear, nil
}

// ReturnPath maps consecutive plan years onto dataset years beginning at fromYear, wrapping
// back to windowStart after windowEnd
func (d *HistoricalDataset) ReturnPath(planStartYear, planEndYear, fromYear, windowStart, windowEnd int) domain.ReturnPath {
	span := windowEnd - windowStart + 1
	path := make(domain.ReturnPath, planEndYear-planStartYear+1)
	for i := 0; planStartYear+i <= planEndYear; i++ {
		offset := (fromYear - windowStart + i) % span
		path[planStartYear+i] = d.Returns[windowStart+offset]
	}
	return path
}

// HistoricalScenario is one replay of history starting at StartYear
type HistoricalScenario struct {
	StartYear int
	Path      domain.ReturnPath
}

// HistoricalScenarios builds one scenario per window start year when rolling, otherwise a single
// scenario from the window start
func (d *HistoricalDataset) HistoricalScenarios(settings domain.HistoricalSettings, planStartYear, planEndYear int) ([]HistoricalScenario, error) {
	start, end, err := d.Window(settings.StartYear, settings.EndYear)
	if err != nil {
		return nil, err
	}
	last := start
	if settings.UseRollingPeriods {
		last = end
	}
	out := make([]HistoricalScenario, 0, last-start+1)
	for from := start; from <= last; from++ {
		out = append(out, HistoricalScenario{
			StartYear: from,
			Path:      d.ReturnPath(planStartYear, planEndYear, from, start, end),
		})
	}
	return out, nil
}
