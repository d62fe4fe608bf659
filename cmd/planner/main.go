package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rpgo/household-planner/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// app carries state shared by every command once PersistentPreRunE has run
type app struct {
	cfgFile  string
	v        *viper.Viper
	settings *config.Settings
	logger   *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	rootCmd := &cobra.Command{
		Use:   "planner",
		Short: "Household financial planning engine",
		Long: `planner projects a household's finances month by month: income, spending,
taxes, account growth, required distributions and Roth conversions.

Plans are YAML or JSON files. Runs can be deterministic or replayed across
Monte Carlo and historical return scenarios.`,
		Version: version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:      true,
		PersistentPreRunE: a.initConfig,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/planner/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("db", "", "run history database (default: $HOME/.local/share/planner/runs.db)")

	_ = a.v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = a.v.BindPFlag("storage.path", rootCmd.PersistentFlags().Lookup("db"))

	rootCmd.AddCommand(a.validateCmd())
	rootCmd.AddCommand(a.runCmd())
	rootCmd.AddCommand(a.simulateCmd())
	rootCmd.AddCommand(a.historyCmd())
	rootCmd.AddCommand(a.initCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	settings, err := config.LoadSettings(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(settings.Logging.Level, settings.Logging.Format, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	slog.SetDefault(logger)
	a.settings = settings
	a.logger = logger
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "planner %s\n", version)
		},
	}
}
