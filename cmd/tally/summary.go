package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallyflow/tally/internal/cli"
	"github.com/tallyflow/tally/internal/engine"
)

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize income and expenses for a period",
		Long: `Total income, expenses, and balance for the trailing week, the current
month, or the current year, with optional comparison against the previous
period and a per-category breakdown.`,
		RunE: runSummary,
	}

	cmd.Flags().StringP("scope", "s", "", "book to summarize (personal, business)")
	cmd.Flags().StringP("period", "p", "month", "period (week, month, year)")
	cmd.Flags().Bool("compare", false, "compare against the previous period")
	cmd.Flags().Bool("breakdown", false, "show per-category totals")

	return cmd
}

func runSummary(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	scopeFlag, _ := cmd.Flags().GetString("scope")
	scope, err := parseScope(scopeFlag)
	if err != nil {
		return err
	}
	periodFlag, _ := cmd.Flags().GetString("period")
	period := engine.Period(periodFlag)
	compare, _ := cmd.Flags().GetBool("compare")
	breakdown, _ := cmd.Flags().GetBool("breakdown")

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Summary (%s, %s)", scope, period))) //nolint:forbidigo // User-facing output
	fmt.Println()                                                                //nolint:forbidigo // User-facing output

	if compare {
		comparison, cmpErr := eng.Compare(ctx, scope, period)
		if cmpErr != nil {
			return cmpErr
		}
		printSummaryLine("Income", comparison.Current.Income, &comparison.IncomeChange)
		printSummaryLine("Expenses", comparison.Current.Expense, &comparison.ExpenseChange)
		printSummaryLine("Balance", comparison.Current.Balance, nil)
	} else {
		summary, sumErr := eng.Summarize(ctx, scope, period)
		if sumErr != nil {
			return sumErr
		}
		printSummaryLine("Income", summary.Income, nil)
		printSummaryLine("Expenses", summary.Expense, nil)
		printSummaryLine("Balance", summary.Balance, nil)
	}

	if !breakdown {
		return nil
	}

	totals, err := eng.CategoryBreakdown(ctx, scope, period)
	if err != nil {
		return err
	}
	if len(totals) == 0 {
		return nil
	}

	fmt.Println()                                     //nolint:forbidigo // User-facing output
	fmt.Println(cli.BoldStyle.Render("By category:")) //nolint:forbidigo // User-facing output
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\n",
		cli.HeaderStyle.Render("Category"),
		cli.HeaderStyle.Render("Type"),
		cli.HeaderStyle.Render("Total"))
	fmt.Fprintf(w, "%s\t%s\t%s\n",
		strings.Repeat("─", 16), strings.Repeat("─", 7), strings.Repeat("─", 10))
	for _, total := range totals {
		fmt.Fprintf(w, "%s\t%s\t%s\n", total.Name, total.Type, formatAmount(total.Total))
	}
	if flushErr := w.Flush(); flushErr != nil {
		slog.Error("failed to flush table writer", "error", flushErr)
	}
	return nil
}

func printSummaryLine(label string, amount decimal.Decimal, change *decimal.Decimal) {
	line := fmt.Sprintf("  %-10s %12s", label, formatAmount(amount))
	if change != nil {
		sign := ""
		if !change.IsNegative() {
			sign = "+"
		}
		line += cli.SubtleStyle.Render(fmt.Sprintf(" (%s%s%% vs previous)", sign, change.StringFixed(1)))
	}
	fmt.Println(line) //nolint:forbidigo // User-facing output
}
