package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/example/finance-tracker/internal/cli"
	"github.com/example/finance-tracker/internal/common"
	"github.com/example/finance-tracker/internal/config"
	"github.com/example/finance-tracker/internal/diagnostic"
	"github.com/example/finance-tracker/internal/entry"
	"github.com/example/finance-tracker/internal/pipeline"
	"github.com/example/finance-tracker/internal/report"
	"github.com/example/finance-tracker/internal/store"
	"github.com/example/finance-tracker/internal/wise"
)

var version = "dev"

// app carries the configuration shared by every command.
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	cfgFile string
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
		fmt.Fprintln(os.Stderr, cli.FormatError(userMessage(err)))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "finance-tracker",
		Short: "Track Wise transactions and report on spending",
		Long: `Finance Tracker pulls transactions from the Wise API into a local CSV table,
then prints category, top-expense, recent-period, average and net-worth reports.
Optionally it records one manual transaction, diverting part of any salary into a savings jar.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.run,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "TOML config file (default: defaults plus environment)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("table", "", "transaction table path (default transactions.csv)")
	rootCmd.Flags().Bool("no-prompt", false, "skip the manual entry dialogue")

	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", flags.Lookup("log-format"))

	rootCmd.AddCommand(generateCmd(a))
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if table, _ := cmd.Flags().GetString("table"); table != "" {
		a.v.Set("table_path", table)
	}
	if noPrompt, _ := cmd.Flags().GetBool("no-prompt"); noPrompt {
		a.v.Set("interactive", false)
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	if err := common.SetupLogger(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr()); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	a.cfg = cfg
	return nil
}

func (a *app) run(cmd *cobra.Command, _ []string) error {
	cfg := a.cfg
	out := cmd.OutOrStdout()

	client, err := wise.NewClient(wise.Config{
		BaseURL:     cfg.APIBaseURL,
		Token:       cfg.APIToken,
		ProfileType: cfg.ProfileType,
		Timeout:     cfg.HTTP.Timeout,
		Retries:     cfg.HTTP.Retries,
	}, diagnostic.New(cfg.DebugLogPath))
	if err != nil {
		return err
	}
	if cfg.APIToken == "" {
		slog.Warn("No API token configured, remote calls will be rejected", "env", "WISE_API_TOKEN")
	}

	table := store.New(cfg.TablePath)

	var collector pipeline.Collector
	if cfg.Interactive {
		collector = entry.NewCollector(cmd.InOrStdin(), out, table, entry.Rules{
			SavingsRate:    cfg.SavingsRate,
			SalaryCategory: cfg.SalaryCategory,
		})
	}

	p := pipeline.New(client, table, collector, out, report.NewRenderer(out, cfg.Currency), pipeline.Options{
		From:          cfg.Range.From,
		To:            cfg.Range.To,
		TopN:          cfg.TopN,
		ExpenseLimit:  cfg.ExpenseLimit,
		DiagnosticLog: cfg.DebugLogPath,
	})

	summary, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}
	slog.Debug("Run complete",
		"fetched", summary.Fetched,
		"appended", summary.Appended,
		"skipped", summary.Skipped,
		"loaded", summary.Loaded,
		"saved", summary.Saved.String())
	return nil
}

func userMessage(err error) string {
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Printing the version never needs configuration.
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "finance-tracker %s\n", version)
		},
	}
}
