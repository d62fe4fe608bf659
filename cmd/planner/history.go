package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/rpgo/household-planner/internal/output"
	"github.com/spf13/cobra"
)

func (a *app) historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved runs")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tPLAN\tMODE\tSEED\tSUCCESS\tMEDIAN ENDING")
			for _, r := range runs {
				success, median := "-", "-"
				if r.SuccessRate.Valid {
					success = output.FormatRate(r.SuccessRate.Decimal)
				}
				if r.MedianEndingNetWorth.Valid {
					median = output.FormatCurrency(r.MedianEndingNetWorth.Decimal)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n", r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"),
					r.PlanName, r.Mode, r.Seed, success, median)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to list (0 lists all)")

	cmd.AddCommand(a.historyShowCmd())
	cmd.AddCommand(a.historyDeleteCmd())
	return cmd
}

func (a *app) historyShowCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rec, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if rec.Report == nil {
				return fmt.Errorf("run %s has no stored report", rec.ID)
			}
			if format == "" {
				format = a.settings.Output.Format
			}
			return output.GenerateReport(cmd.OutOrStdout(), rec.Report, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format")
	return cmd
}

func (a *app) historyDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteRun(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
			return nil
		},
	}
}
