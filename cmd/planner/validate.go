package main

import (
	"fmt"

	"github.com/rpgo/household-planner/internal/config"
	"github.com/spf13/cobra"
)

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <plan>",
		Short: "Check a plan file for errors",
		Long: `Decode a plan file and report every validation problem.

Errors make the command exit non-zero. Warnings are printed but allowed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := config.NewPlanLoader().DecodeFile(args[0])
			if err != nil {
				return err
			}

			res := config.Validate(plan)
			w := cmd.OutOrStdout()
			for _, msg := range res.Errors {
				fmt.Fprintf(w, "error: %s\n", msg)
			}
			for _, msg := range res.Warnings {
				fmt.Fprintf(w, "warning: %s\n", msg)
			}
			if !res.Valid() {
				return fmt.Errorf("%s: %d error(s): %w", args[0], len(res.Errors), config.ErrInvalidPlan)
			}
			fmt.Fprintf(w, "%s is valid (%d warning(s))\n", args[0], len(res.Warnings))
			return nil
		},
	}
}
