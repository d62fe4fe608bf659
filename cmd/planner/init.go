package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rpgo/household-planner/internal/config"
	"github.com/rpgo/household-planner/internal/output"
	"github.com/spf13/cobra"
)

func (a *app) initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init <file>",
		Short: "Write an example plan to start from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to check %s: %w", path, err)
			}

			plan, err := config.ExamplePlan()
			if err != nil {
				return err
			}
			if err := output.SavePlan(plan, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote example plan to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
