package main

import (
	"fmt"

	"github.com/rpgo/household-planner/internal/calculation"
	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/internal/output"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func (a *app) simulateCmd() *cobra.Command {
	var (
		flags      reportFlags
		mode       string
		runs       int
		seed       int64
		workers    int
		dataFile   string
		noProgress bool
	)
	cmd := &cobra.Command{
		Use:   "simulate <plan>",
		Short: "Replay the plan across Monte Carlo or historical return scenarios",
		Long: `Run the plan once per return scenario and summarize the outcomes: success
rate, ending net worth percentiles, per-year bands and insolvency years.

The mode defaults to the plan's simulation_settings.mode, or monte_carlo when
the plan is deterministic. The same --seed always reproduces the same summary.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan(args[0])
			if err != nil {
				return err
			}

			opts := calculation.SimulationOptions{
				Mode:    domain.SimulationMode(mode),
				Runs:    runs,
				Seed:    seed,
				Workers: workers,
			}
			if opts.Mode == "" {
				opts.Mode = plan.SimulationSettings.Mode
			}
			switch opts.Mode {
			case domain.ModeMonteCarlo, domain.ModeHistorical:
			case "", domain.ModeDeterministic:
				opts.Mode = domain.ModeMonteCarlo
			default:
				return fmt.Errorf("invalid --mode %q (monte_carlo, historical)", mode)
			}
			if !cmd.Flags().Changed("seed") {
				opts.Seed = a.settings.Simulation.Seed
			}
			if !cmd.Flags().Changed("workers") {
				opts.Workers = a.settings.Simulation.Workers
			}
			if dataFile != "" {
				ds, err := calculation.LoadHistoricalCSV(dataFile)
				if err != nil {
					return err
				}
				opts.Dataset = ds
			}

			var bar *progressbar.ProgressBar
			if !noProgress {
				opts.Progress = func(done, total int) {
					if bar == nil {
						bar = newProgressBar(cmd, total, opts.Mode)
					}
					if err := bar.Set(done); err != nil {
						a.logger.Warn("Failed to update progress bar", "error", err)
					}
				}
			}

			runner, err := a.newRunner(plan)
			if err != nil {
				return err
			}
			report, err := runner.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			report.Assumptions = output.GenerateAssumptions(plan)
			return a.emit(cmd, report, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&mode, "mode", "", "simulation mode (monte_carlo, historical)")
	cmd.Flags().IntVar(&runs, "runs", 0, "number of Monte Carlo scenarios (default: plan num_simulations)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed; 0 picks one and reports it")
	cmd.Flags().IntVar(&workers, "workers", calculation.DefaultWorkers, "scenarios run in parallel")
	cmd.Flags().StringVar(&dataFile, "data-file", "", "historical returns CSV (year,stock_return,bond_return)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "hide the progress bar")
	return cmd
}

func newProgressBar(cmd *cobra.Command, total int, mode domain.SimulationMode) *progressbar.ProgressBar {
	w := cmd.ErrOrStderr()
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan][bold]Running %s scenarios...[reset]", mode)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}
