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

func billCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bill",
		Short: "Manage bills to pay",
		Long: `Bills are obligations with a due date. Paying a bill writes one expense
entry into the ledger and, for recurring bills, schedules the next
occurrence automatically.`,
	}
	cmd.AddCommand(billAddCmd())
	cmd.AddCommand(billListCmd())
	cmd.AddCommand(billPayCmd())
	return cmd
}

func billAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Register a bill",
		Args:  cobra.ExactArgs(1),
		RunE:  runBillAdd,
	}
	cmd.Flags().StringP("amount", "a", "", "bill amount (required)")
	cmd.Flags().StringP("category", "c", "", "category id or name (required)")
	cmd.Flags().StringP("due", "d", "", "due date as YYYY-MM-DD (required)")
	cmd.Flags().StringP("recurrence", "r", "once", "recurrence (once, weekly, monthly, yearly)")
	cmd.Flags().StringP("scope", "s", "", "book (personal, business)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func runBillAdd(cmd *cobra.Command, args []string) error {
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
	dueFlag, _ := cmd.Flags().GetString("due")
	due, err := parseDate(dueFlag)
	if err != nil {
		return err
	}
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

	id, err := store.CreateBill(ctx, &model.Bill{
		Description: args[0],
		Amount:      amount,
		CategoryID:  categoryID,
		DueDate:     due,
		Status:      model.ObligationPending,
		Recurrence:  model.Recurrence(recurrence),
		Scope:       scope,
	})
	if err != nil {
		return err
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Registered bill %q due %s (%s)", args[0], due.Format(dateLayout), id))) //nolint:forbidigo // User-facing output
	return nil
}

func billListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending bills by urgency",
		RunE:  runBillList,
	}
	cmd.Flags().StringP("scope", "s", "", "book (personal, business)")
	return cmd
}

func runBillList(cmd *cobra.Command, _ []string) error {
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

	scheduled, err := eng.BillSchedule(ctx, scope)
	if err != nil {
		return err
	}
	if len(scheduled) == 0 {
		fmt.Println(cli.InfoStyle.Render("No pending bills.")) //nolint:forbidigo // User-facing output
		return nil
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("%s Bills (%s)", cli.BellIcon, scope))) //nolint:forbidigo // User-facing output
	fmt.Println()                                                                  //nolint:forbidigo // User-facing output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("ID"),
		cli.HeaderStyle.Render("Description"),
		cli.HeaderStyle.Render("Amount"),
		cli.HeaderStyle.Render("Due"),
		cli.HeaderStyle.Render("Days"),
		cli.HeaderStyle.Render("Urgency"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 36), strings.Repeat("─", 20), strings.Repeat("─", 10),
		strings.Repeat("─", 10), strings.Repeat("─", 5), strings.Repeat("─", 9))
	for _, item := range scheduled {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			item.Bill.ID,
			item.Bill.Description,
			formatAmount(item.Bill.Amount),
			item.Bill.DueDate.Format(dateLayout),
			item.DaysUntil,
			renderUrgency(item.Urgency))
	}
	if flushErr := w.Flush(); flushErr != nil {
		slog.Error("failed to flush table writer", "error", flushErr)
	}
	return nil
}

func billPayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <bill-id>",
		Short: "Pay a bill, writing the expense into the ledger",
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

			bill, txn, err := eng.PayBill(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Paid %q: expense %s recorded", bill.Description, formatAmount(txn.Amount)))) //nolint:forbidigo // User-facing output
			if bill.Recurrence != model.RecurrenceOnce {
				fmt.Println(cli.InfoStyle.Render("Next occurrence scheduled.")) //nolint:forbidigo // User-facing output
			}
			return nil
		},
	}
}

func renderUrgency(urgency model.Urgency) string {
	switch urgency {
	case model.UrgencyOverdue:
		return cli.ErrorStyle.Render(string(urgency))
	case model.UrgencyDueSoon:
		return cli.WarningStyle.Render(string(urgency))
	default:
		return cli.SubtleStyle.Render(string(urgency))
	}
}
