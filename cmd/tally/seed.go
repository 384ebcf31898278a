package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallyflow/tally/internal/cli"
	"github.com/tallyflow/tally/internal/demo"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with sample data",
		Long: `Seed the database with a realistic sample dataset: categories, a credit
card, transactions including an installment purchase, bills, receivables,
budgets, and a savings goal. Useful for exploring the tool before
importing real statements.`,
		RunE: runSeed,
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	bar := cli.NewProgressBar(demo.Steps, "Seeding sample data...", os.Stderr)
	stats, err := demo.Seed(ctx, store, time.Now().UTC(), func(string) {
		_ = bar.Add(1)
	})
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	fmt.Println() //nolint:forbidigo // User-facing output

	message := fmt.Sprintf("Seeded %d categories, %d cards, %d entries, %d bills, %d receivables, %d budgets, %d goals",
		stats.Categories, stats.Cards, stats.Transactions,
		stats.Bills, stats.Receivables, stats.Budgets, stats.Goals)
	fmt.Println(cli.FormatSuccess(message)) //nolint:forbidigo // User-facing output
	return nil
}
