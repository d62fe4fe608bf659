package main

import (
	"context"
	"fmt"

	"github.com/rpgo/household-planner/internal/calculation"
	"github.com/rpgo/household-planner/internal/config"
	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/internal/output"
	"github.com/rpgo/household-planner/internal/storage"
	"github.com/spf13/cobra"
)

// reportFlags are shared by run and simulate
type reportFlags struct {
	format string
	output string
	save   bool
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format (console, csv, detailed-csv, json, scenarios-csv)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write the report to this file instead of stdout")
	cmd.Flags().BoolVar(&f.save, "save", false, "store the run in the history database")
}

// openStore opens and migrates the history database from settings
func (a *app) openStore(ctx context.Context) (*storage.SQLiteStore, error) {
	path := a.settings.Storage.Path
	store, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	store.SetLogger(a.logger)
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

func (a *app) newRunner(plan *domain.Plan) (*calculation.SimulationRunner, error) {
	runner, err := calculation.NewSimulationRunner(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare plan: %w", err)
	}
	runner.SetLogger(calculation.NewSlogLogger(a.logger))
	return runner, nil
}

func loadPlan(path string) (*domain.Plan, error) {
	return config.NewPlanLoader().LoadFromFile(path)
}

// emit writes the report and optionally records it in history
func (a *app) emit(cmd *cobra.Command, report *domain.RunReport, flags reportFlags) error {
	format := flags.format
	if format == "" {
		format = a.settings.Output.Format
	}

	if flags.output != "" {
		f, err := output.GetFormatterByName(format)
		if err != nil {
			return err
		}
		path, err := output.WriteFormatted(f, report, flags.output)
		if err != nil {
			return err
		}
		a.logger.Info("Report written", "path", path, "format", f.Name())
	} else if err := output.GenerateReport(cmd.OutOrStdout(), report, format); err != nil {
		return err
	}

	if !flags.save {
		return nil
	}
	store, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	id, err := store.SaveRun(cmd.Context(), report)
	if err != nil {
		return err
	}
	a.logger.Info("Run saved", "id", id, "database", store.Path())
	return nil
}
