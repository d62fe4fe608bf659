package calculation

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rpgo/household-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultWorkers bounds concurrent scenario runs when no worker count is given
const DefaultWorkers = 10

// scenarioNamespace scopes deterministic scenario ids
var scenarioNamespace = uuid.MustParse("6f1c2a3e-8d4b-4c7a-9e15-2b7f0d9c4a61")

// SimulationOptions override the plan's simulation settings for one run
type SimulationOptions struct {
	Mode    domain.SimulationMode
	Runs    int
	Seed    int64
	Workers int
	// Dataset replaces the built-in series for historical mode
	Dataset *HistoricalDataset
	// Progress is called after each finished scenario; calls are serialized
	Progress func(done, total int)
}

// SimulationRunner replays one engine across return scenarios
type SimulationRunner struct {
	plan   *domain.Plan
	engine *CashFlowEngine
	logger Logger
}

// NewSimulationRunner compiles plan once for every scenario
func NewSimulationRunner(plan *domain.Plan) (*SimulationRunner, error) {
	engine, err := NewCashFlowEngine(plan)
	if err != nil {
		return nil, err
	}
	return &SimulationRunner{plan: plan, engine: engine, logger: NopLogger{}}, nil
}

// SetLogger sets the logger for the runner and its engine. If nil is provided, a no-op logger is used.
func (r *SimulationRunner) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	r.logger = l
	r.engine.SetLogger(l)
}

type scenarioJob struct {
	label string
	path  func() domain.ReturnPath
}

// Run executes the selected mode. Deterministic mode fills RunReport.Deterministic; the other modes
// fill RunReport.Simulation.
func (r *SimulationRunner) Run(ctx context.Context, opts SimulationOptions) (*domain.RunReport, error) {
	mode := opts.Mode
	if mode == "" {
		mode = r.plan.SimulationSettings.Mode
	}
	if mode == "" {
		mode = domain.ModeDeterministic
	}
	report := &domain.RunReport{PlanName: r.plan.Name, Mode: mode, GeneratedAt: nowFunc()}

	tl := r.engine.Timeline()
	var (
		jobs []scenarioJob
		seed int64
	)
	switch mode {
	case domain.ModeDeterministic:
		result, err := r.engine.Run(ctx, nil)
		if err != nil {
			return nil, err
		}
		report.Deterministic = result
		return report, nil

	case domain.ModeMonteCarlo:
		runs := opts.Runs
		if runs == 0 {
			runs = r.plan.SimulationSettings.MonteCarlo.NumSimulations
		}
		if runs <= 0 {
			return nil, fmt.Errorf("monte carlo requires a positive number of simulations, got %d", runs)
		}
		gen, err := NewMonteCarloGenerator(r.plan.SimulationSettings.MonteCarlo, opts.Seed)
		if err != nil {
			return nil, fmt.Errorf("failed to configure monte carlo: %w", err)
		}
		seed = gen.Seed()
		jobs = make([]scenarioJob, runs)
		for i := range jobs {
			idx := i
			jobs[i] = scenarioJob{
				label: fmt.Sprintf("mc-%04d", idx),
				path:  func() domain.ReturnPath { return gen.ReturnPath(idx, tl.Start.Year, tl.End.Year) },
			}
		}

	case domain.ModeHistorical:
		dataset, err := r.historicalDataset(opts)
		if err != nil {
			return nil, err
		}
		scenarios, err := dataset.HistoricalScenarios(r.plan.SimulationSettings.Historical, tl.Start.Year, tl.End.Year)
		if err != nil {
			return nil, fmt.Errorf("failed to build historical scenarios: %w", err)
		}
		jobs = make([]scenarioJob, len(scenarios))
		for i, sc := range scenarios {
			path := sc.Path
			jobs[i] = scenarioJob{
				label: fmt.Sprintf("history-%d", sc.StartYear),
				path:  func() domain.ReturnPath { return path },
			}
		}

	default:
		return nil, fmt.Errorf("unknown simulation mode %q", mode)
	}

	r.logger.Infof("running %d %s scenarios", len(jobs), mode)
	outcomes, err := r.runScenarios(ctx, jobs, seed, opts)
	if err != nil {
		return nil, err
	}
	summary := Aggregate(mode, seed, outcomes)
	r.logger.Infof("%s complete: success rate %s", mode, summary.SuccessRate.StringFixed(4))
	report.Simulation = summary
	return report, nil
}

func (r *SimulationRunner) historicalDataset(opts SimulationOptions) (*HistoricalDataset, error) {
	if opts.Dataset != nil {
		return opts.Dataset, nil
	}
	if file := r.plan.SimulationSettings.Historical.DataFile; file != "" {
		d, err := LoadHistoricalCSV(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load historical data: %w", err)
		}
		return d, nil
	}
	return SyntheticHistoricalDataset(), nil
}

// runScenarios fans jobs out over a bounded set of goroutines and collects outcomes by index
func (r *SimulationRunner) runScenarios(ctx context.Context, jobs []scenarioJob, seed int64, opts SimulationOptions) ([]domain.ScenarioOutcome, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]domain.ScenarioOutcome, len(jobs))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		done     int
		firstErr error
	)
	semaphore := make(chan struct{}, workers)

	for i := range jobs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if ctx.Err() != nil {
				return
			}
			job := jobs[idx]
			res, err := r.engine.Run(ctx, job.path())

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("scenario %s: %w", job.label, err)
				}
				return
			}
			results[idx] = newScenarioOutcome(idx, seed, job.label, res)
			done++
			if opts.Progress != nil {
				opts.Progress(done, len(jobs))
			}
		}(i)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func newScenarioOutcome(idx int, seed int64, label string, res *domain.EngineResult) domain.ScenarioOutcome {
	byYear := make(map[int]decimal.Decimal, len(res.Annual))
	for _, a := range res.Annual {
		byYear[a.Year] = a.NetWorthEnd
	}
	return domain.ScenarioOutcome{
		Index:           idx,
		ID:              uuid.NewSHA1(scenarioNamespace, []byte(fmt.Sprintf("%d/%s", seed, label))).String(),
		Label:           label,
		EndingNetWorth:  res.FinalNetWorth(),
		InsolvencyYears: append([]int(nil), res.InsolvencyYears...),
		Success:         res.Solvent(),
		NetWorthByYear:  byYear,
	}
}

// Aggregate summarizes scenario outcomes. Percentiles use the nearest-rank index k*n/100 of the
// ascending ending net worths.
func Aggregate(mode domain.SimulationMode, seed int64, outcomes []domain.ScenarioOutcome) *domain.SimulationSummary {
	summary := &domain.SimulationSummary{
		Mode:                mode,
		Seed:                seed,
		NumScenarios:        len(outcomes),
		SuccessRate:         decimal.Zero,
		InsolvencyHistogram: make(map[int]int),
		Scenarios:           outcomes,
	}
	n := len(outcomes)
	if n == 0 {
		return summary
	}

	successes := 0
	ending := make([]decimal.Decimal, n)
	yearValues := make(map[int][]decimal.Decimal)
	for i, o := range outcomes {
		if o.Success {
			successes++
		}
		ending[i] = o.EndingNetWorth
		for _, y := range o.InsolvencyYears {
			summary.InsolvencyHistogram[y]++
		}
		for y, v := range o.NetWorthByYear {
			yearValues[y] = append(yearValues[y], v)
		}
	}
	summary.SuccessRate = decimal.NewFromInt(int64(successes)).Div(decimal.NewFromInt(int64(n)))

	sortDecimals(ending)
	summary.EndingNetWorth = domain.Percentiles{
		P10: percentile(ending, 10),
		P25: percentile(ending, 25),
		P50: percentile(ending, 50),
		P75: percentile(ending, 75),
		P90: percentile(ending, 90),
	}
	summary.MedianEndingNetWorth = summary.EndingNetWorth.P50

	years := make([]int, 0, len(yearValues))
	for y := range yearValues {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		values := yearValues[y]
		sortDecimals(values)
		summary.NetWorthBands = append(summary.NetWorthBands, domain.YearBand{
			Year: y,
			P10:  percentile(values, 10),
			P50:  percentile(values, 50),
			P90:  percentile(values, 90),
		})
	}
	return summary
}

func sortDecimals(values []decimal.Decimal) {
	sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })
}

// percentile expects sorted values
func percentile(sorted []decimal.Decimal, k int) decimal.Decimal {
	if len(sorted) == 0 {
		return decimal.Zero
	}
	idx := k * len(sorted) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
