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
	"github.com/tallyflow/tally/internal/service"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger entries",
		Long: `Display ledger entries for one book, oldest first, with optional date,
category, and payment filters.`,
		RunE: runList,
	}

	cmd.Flags().StringP("scope", "s", "", "book to list (personal, business)")
	cmd.Flags().String("from", "", "start date as YYYY-MM-DD")
	cmd.Flags().String("to", "", "end date as YYYY-MM-DD")
	cmd.Flags().StringP("category", "c", "", "filter by category id or name")
	cmd.Flags().StringP("payment", "p", "", "filter by payment method")
	cmd.Flags().StringP("type", "t", "", "filter by entry type (income, expense)")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	scopeFlag, _ := cmd.Flags().GetString("scope")
	scope, err := parseScope(scopeFlag)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	filter := service.TransactionFilter{Scope: scope}
	if from, _ := cmd.Flags().GetString("from"); from != "" {
		start, parseErr := parseDate(from)
		if parseErr != nil {
			return parseErr
		}
		filter.StartDate = &start
	}
	if to, _ := cmd.Flags().GetString("to"); to != "" {
		end, parseErr := parseDate(to)
		if parseErr != nil {
			return parseErr
		}
		filter.EndDate = &end
	}
	if category, _ := cmd.Flags().GetString("category"); category != "" {
		categoryID, resolveErr := resolveCategory(ctx, store, scope, category)
		if resolveErr != nil {
			return resolveErr
		}
		filter.CategoryID = categoryID
	}
	if payment, _ := cmd.Flags().GetString("payment"); payment != "" {
		filter.Payment = model.PaymentMethod(payment)
	}
	if entryType, _ := cmd.Flags().GetString("type"); entryType != "" {
		filter.Type = model.TransactionType(entryType)
	}

	transactions, err := store.ListTransactions(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}

	if len(transactions) == 0 {
		fmt.Println(cli.InfoStyle.Render("No entries found. Use 'tally add' to record one.")) //nolint:forbidigo // User-facing output
		return nil
	}

	categories, err := store.GetCategories(ctx, scope)
	if err != nil {
		return err
	}
	categoryNames := make(map[string]string, len(categories))
	for _, cat := range categories {
		categoryNames[cat.ID] = cat.Name
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Ledger (%s)", scope))) //nolint:forbidigo // User-facing output
	fmt.Println()                                                  //nolint:forbidigo // User-facing output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() {
		if flushErr := w.Flush(); flushErr != nil {
			slog.Error("failed to flush table writer", "error", flushErr)
		}
	}()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("Date"),
		cli.HeaderStyle.Render("Description"),
		cli.HeaderStyle.Render("Category"),
		cli.HeaderStyle.Render("Payment"),
		cli.HeaderStyle.Render("Type"),
		cli.HeaderStyle.Render("Amount"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 10),
		strings.Repeat("─", 24),
		strings.Repeat("─", 14),
		strings.Repeat("─", 11),
		strings.Repeat("─", 7),
		strings.Repeat("─", 10))

	for _, txn := range transactions {
		amount := formatAmount(txn.Amount)
		if txn.Type == model.TypeExpense {
			amount = cli.NegativeStyle.Render("-" + amount)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			txn.Date.Format(dateLayout),
			txn.Description,
			categoryNames[txn.CategoryID],
			txn.Payment,
			txn.Type,
			amount)
	}
	return nil
}
