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

func receivableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "receivable",
		Aliases: []string{"owed"},
		Short:   "Manage money owed to you",
		Long: `Receivables track money a counterparty owes you. Collecting one writes an
income entry into the ledger and, for recurring receivables, schedules the
next occurrence automatically.`,
	}
	cmd.AddCommand(receivableAddCmd())
	cmd.AddCommand(receivableListCmd())
	cmd.AddCommand(receivableReceiveCmd())
	return cmd
}

func receivableAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Register a receivable",
		Args:  cobra.ExactArgs(1),
		RunE:  runReceivableAdd,
	}
	cmd.Flags().StringP("amount", "a", "", "expected amount (required)")
	cmd.Flags().StringP("category", "c", "", "category id or name (required)")
	cmd.Flags().StringP("expected", "e", "", "expected date as YYYY-MM-DD (required)")
	cmd.Flags().String("payer", "", "who owes the money")
	cmd.Flags().StringP("recurrence", "r", "once", "recurrence (once, weekly, monthly, yearly)")
	cmd.Flags().StringP("scope", "s", "", "book (personal, business)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("expected")
	return cmd
}

func runReceivableAdd(cmd *cobra.Command, args []string) error {
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
	expectedFlag, _ := cmd.Flags().GetString("expected")
	expected, err := parseDate(expectedFlag)
	if err != nil {
		return err
	}
	payer, _ := cmd.Flags().GetString("payer")
	recurrence, _ := cmd.Flags().GetString("recurrence")
	categoryFlag, _ := cmd.Flags().GetString("category")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	categoryID, err := resolveCategory(ctx, store, scope, categoryFlag)
	if err != nil {
		return err
	}

	id, err := store.CreateReceivable(ctx, &model.Receivable{
		Description:  args[0],
		Payer:        payer,
		Amount:       amount,
		CategoryID:   categoryID,
		ExpectedDate: expected,
		Status:       model.ObligationPending,
		Recurrence:   model.Recurrence(recurrence),
		Scope:        scope,
	})
	if err != nil {
		return err
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Registered receivable %q expected %s (%s)", args[0], expected.Format(dateLayout), id))) //nolint:forbidigo // User-facing output
	return nil
}

func receivableListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending receivables by urgency",
		RunE:  runReceivableList,
	}
	cmd.Flags().StringP("scope", "s", "", "book (personal, business)")
	return cmd
}

func runReceivableList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	scopeFlag, _ := cmd.Flags().GetString("scope")
	scope, err := parseScope(scopeFlag)
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

	scheduled, err := eng.ReceivableSchedule(ctx, scope)
	if err != nil {
		return err
	}
	if len(scheduled) == 0 {
		fmt.Println(cli.InfoStyle.Render("No pending receivables.")) //nolint:forbidigo // User-facing output
		return nil
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Receivables (%s)", scope))) //nolint:forbidigo // User-facing output
	fmt.Println()                                                       //nolint:forbidigo // User-facing output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("ID"),
		cli.HeaderStyle.Render("Description"),
		cli.HeaderStyle.Render("Payer"),
		cli.HeaderStyle.Render("Amount"),
		cli.HeaderStyle.Render("Expected"),
		cli.HeaderStyle.Render("Days"),
		cli.HeaderStyle.Render("Urgency"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 36), strings.Repeat("─", 20), strings.Repeat("─", 12),
		strings.Repeat("─", 10), strings.Repeat("─", 10), strings.Repeat("─", 5),
		strings.Repeat("─", 9))
	for _, item := range scheduled {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			item.Receivable.ID,
			item.Receivable.Description,
			item.Receivable.Payer,
			formatAmount(item.Receivable.Amount),
			item.Receivable.ExpectedDate.Format(dateLayout),
			item.DaysUntil,
			renderUrgency(item.Urgency))
	}
	if flushErr := w.Flush(); flushErr != nil {
		slog.Error("failed to flush table writer", "error", flushErr)
	}
	return nil
}

func receivableReceiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "receive <receivable-id>",
		Short: "Collect a receivable, writing the income into the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Error("failed to close storage", "error", closeErr)
				}
			}()

			receivable, txn, err := eng.ReceiveReceivable(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Collected %q: income %s recorded", receivable.Description, formatAmount(txn.Amount)))) //nolint:forbidigo // User-facing output
			if receivable.Recurrence != model.RecurrenceOnce {
				fmt.Println(cli.InfoStyle.Render("Next occurrence scheduled.")) //nolint:forbidigo // User-facing output
			}
			return nil
		},
	}
}
