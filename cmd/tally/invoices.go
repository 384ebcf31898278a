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

func invoicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invoices <card-id>",
		Short: "Show a card's rolling monthly invoices",
		Long: `Derive the last three monthly invoices of a credit card from the ledger.
The current month is open, the previous one closed, the oldest paid.
Invoices are projections; they are recomputed on every call.`,
		Args: cobra.ExactArgs(1),
		RunE: runInvoices,
	}
}

func runInvoices(cmd *cobra.Command, args []string) error {
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

	card, err := store.GetCardByID(ctx, args[0])
	if err != nil {
		return err
	}

	invoices, err := eng.InvoiceCycle(ctx, card.ID)
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("%s Invoices for %s (•••• %s)", cli.CardIcon, card.Name, card.LastDigits))) //nolint:forbidigo // User-facing output
	fmt.Println()                                                                                                       //nolint:forbidigo // User-facing output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("Month"),
		cli.HeaderStyle.Render("Status"),
		cli.HeaderStyle.Render("Due"),
		cli.HeaderStyle.Render("Entries"),
		cli.HeaderStyle.Render("Total"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 8), strings.Repeat("─", 7), strings.Repeat("─", 10),
		strings.Repeat("─", 7), strings.Repeat("─", 10))
	for _, invoice := range invoices {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			invoice.Month,
			renderInvoiceStatus(invoice.Status),
			invoice.DueDate.Format(dateLayout),
			len(invoice.TransactionIDs),
			formatAmount(invoice.Total))
	}
	if flushErr := w.Flush(); flushErr != nil {
		slog.Error("failed to flush table writer", "error", flushErr)
	}
	return nil
}

func renderInvoiceStatus(status model.InvoiceStatus) string {
	switch status {
	case model.InvoiceOpen:
		return cli.WarningStyle.Render(string(status))
	case model.InvoiceClosed:
		return cli.InfoStyle.Render(string(status))
	default:
		return cli.SuccessStyle.Render(string(status))
	}
}
