package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/example/finance-tracker/internal/cli"
	"github.com/example/finance-tracker/internal/sample"
	"github.com/example/finance-tracker/internal/store"
)

// Notice printed once the sample rows are written.
const generatedNotice = "transactions are added!"

func generateCmd(a *app) *cobra.Command {
	var (
		rows int
		seed uint64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Append random sample transactions to the table",
		Long: `Generate appends random income and expense rows dated between 2020-01-01 and
2025-12-31, so the reports have something to show without a Wise account.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rows < 0 {
				return fmt.Errorf("--rows must not be negative, got %d", rows)
			}
			if !cmd.Flags().Changed("seed") {
				seed = uint64(time.Now().UnixNano())
			}

			bar := progressbar.NewOptions(rows,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Generating transactions..."),
				progressbar.OptionClearOnFinish(),
			)
			generated := sample.NewGenerator(seed, sample.DefaultOptions()).Generate(rows, func() {
				if err := bar.Add(1); err != nil {
					slog.Warn("Failed to update progress bar", "error", err)
				}
			})
			_ = bar.Finish()

			table := store.New(a.cfg.TablePath)
			if err := table.Append(generated); err != nil {
				return fmt.Errorf("failed to save sample transactions: %w", err)
			}

			slog.Info("Generated sample transactions", "rows", len(generated), "seed", seed, "path", table.Path())
			_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(generatedNotice))
			return err
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 100, "number of rows to generate")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (default: time based)")
	return cmd
}
