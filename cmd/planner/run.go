package main

import (
	"github.com/rpgo/household-planner/internal/calculation"
	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/internal/output"
	"github.com/spf13/cobra"
)

func (a *app) runCmd() *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "run <plan>",
		Short: "Run a deterministic projection",
		Long: `Project the plan once with each account's configured growth rate and print
the annual results.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan(args[0])
			if err != nil {
				return err
			}
			runner, err := a.newRunner(plan)
			if err != nil {
				return err
			}

			report, err := runner.Run(cmd.Context(), calculation.SimulationOptions{Mode: domain.ModeDeterministic})
			if err != nil {
				return err
			}
			report.Assumptions = output.GenerateAssumptions(plan)
			return a.emit(cmd, report, flags)
		},
	}
	flags.register(cmd)
	return cmd
}
