package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tallyflow/tally/internal/cli"
	"github.com/tallyflow/tally/internal/model"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage monthly category budgets",
		Long: `Budgets cap spending per category per month. Actual spend is recomputed
from the ledger on every report; the usage ratio is not capped at 100%
so overshoot stays visible.`,
	}
	cmd.AddCommand(budgetSetCmd())
	cmd.AddCommand(budgetListCmd())
	cmd.AddCommand(budgetCopyCmd())
	return cmd
}

func budgetSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <category>",
		Short: "Set or replace a category's monthly limit",
		Args:  cobra.ExactArgs(1),
		RunE:  runBudgetSet,
	}
	cmd.Flags().StringP("amount", "a", "", "monthly limit (required)")
	cmd.Flags().StringP("month", "m", "", "target month as YYYY-MM (default current)")
	cmd.Flags().StringP("scope", "s", "", "book (personal, business)")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func runBudgetSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	scopeFlag, _ := cmd.Flags().GetString("scope")
	scope, err := parseScope(scopeFlag)
	if err != nil {
		return err
	}
	amountFlag, _ := cmd.Flags().GetString("amount")
	amount, err := parseAmount(amountFlag)
	if err != nil {
		return err
	}
	monthFlag, _ := cmd.Flags().GetString("month")
	month, err := parseMonthFlag(monthFlag)
	if err != nil {
		return err
	}

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	categoryID, err := resolveCategory(ctx, store, scope, args[0])
	if err != nil {
		return err
	}
	if _, err := eng.SetBudget(ctx, categoryID, month, scope, amount); err != nil {
		return err
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Budget for %q set to %s for %s", args[0], formatAmount(amount), month))) //nolint:forbidigo // User-facing output
	return nil
}

func budgetListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show budget usage for a month",
		RunE:  runBudgetList,
	}
	cmd.Flags().StringP("month", "m", "", "month as YYYY-MM (default current)")
	cmd.Flags().StringP("scope", "s", "", "book (personal, business)")
	return cmd
}

func runBudgetList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	scopeFlag, _ := cmd.Flags().GetString("scope")
	scope, err := parseScope(scopeFlag)
	if err != nil {
		return err
	}
	monthFlag, _ := cmd.Flags().GetString("month")
	month, err := parseMonthFlag(monthFlag)
	if err != nil {
		return err
	}

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	usages, err := eng.BudgetReport(ctx, month, scope)
	if err != nil {
		return err
	}
	if len(usages) == 0 {
		fmt.Println(cli.InfoStyle.Render("No budgets for this month. Use 'tally budget set' or 'tally budget copy'.")) //nolint:forbidigo // User-facing output
		return nil
	}

	categories, err := store.GetCategories(ctx, scope)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("%s Budgets for %s (%s)", cli.ChartIcon, month, scope))) //nolint:forbidigo // User-facing output
	fmt.Println()                                                                                   //nolint:forbidigo // User-facing output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("Category"),
		cli.HeaderStyle.Render("Limit"),
		cli.HeaderStyle.Render("Spent"),
		cli.HeaderStyle.Render("Used"),
		cli.HeaderStyle.Render("Status"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 16), strings.Repeat("─", 10), strings.Repeat("─", 10),
		strings.Repeat("─", 7), strings.Repeat("─", 6))
	for _, usage := range usages {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s%%\t%s\n",
			names[usage.Budget.CategoryID],
			formatAmount(usage.Budget.Amount),
			formatAmount(usage.ActualSpent),
			usage.Ratio.StringFixed(0),
			renderBudgetStatus(usage.Status))
	}
	if flushErr := w.Flush(); flushErr != nil {
		slog.Error("failed to flush table writer", "error", flushErr)
	}
	return nil
}

func budgetCopyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy last month's budgets into a month",
		Long: `Copy every budget of the previous calendar month into the target month.
Categories that already have a budget there are left untouched, so the
command is safe to run repeatedly.`,
		RunE: runBudgetCopy,
	}
	cmd.Flags().StringP("month", "m", "", "target month as YYYY-MM (default current)")
	cmd.Flags().StringP("scope", "s", "", "book (personal, business)")
	return cmd
}

func runBudgetCopy(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	scopeFlag, _ := cmd.Flags().GetString("scope")
	scope, err := parseScope(scopeFlag)
	if err != nil {
		return err
	}
	monthFlag, _ := cmd.Flags().GetString("month")
	month, err := parseMonthFlag(monthFlag)
	if err != nil {
		return err
	}

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	copied, err := eng.CopyPreviousBudgets(ctx, month, scope)
	if err != nil {
		return err
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Copied %d budgets into %s", copied, month))) //nolint:forbidigo // User-facing output
	return nil
}

func renderBudgetStatus(status model.BudgetStatus) string {
	switch status {
	case model.BudgetOver:
		return cli.ErrorStyle.Render(string(status))
	case model.BudgetNear:
		return cli.WarningStyle.Render(string(status))
	default:
		return cli.SuccessStyle.Render(string(status))
	}
}
