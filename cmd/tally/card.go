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
	"github.com/tallyflow/tally/internal/model"
)

func cardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage credit cards",
		Long: `Register credit cards and inspect their limits. Card purchases roll into
monthly invoices; see 'tally invoices'.`,
	}
	cmd.AddCommand(cardAddCmd())
	cmd.AddCommand(cardListCmd())
	return cmd
}

func cardAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a credit card",
		Args:  cobra.ExactArgs(1),
		RunE:  runCardAdd,
	}
	cmd.Flags().String("digits", "", "last four digits")
	cmd.Flags().String("brand", "", "card brand (visa, mastercard, ...)")
	cmd.Flags().String("limit", "0", "credit limit")
	cmd.Flags().Int("due-day", 10, "invoice due day of month (1-31)")
	cmd.Flags().Int("closing-day", 1, "statement closing day of month (1-31)")
	cmd.Flags().StringP("scope", "s", "", "book the card belongs to (personal, business)")
	return cmd
}

func runCardAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	scopeFlag, _ := cmd.Flags().GetString("scope")
	scope, err := parseScope(scopeFlag)
	if err != nil {
		return err
	}
	limitFlag, _ := cmd.Flags().GetString("limit")
	limit, err := decimal.NewFromString(limitFlag)
	if err != nil || limit.IsNegative() {
		return fmt.Errorf("invalid credit limit %q", limitFlag)
	}
	digits, _ := cmd.Flags().GetString("digits")
	brand, _ := cmd.Flags().GetString("brand")
	dueDay, _ := cmd.Flags().GetInt("due-day")
	closingDay, _ := cmd.Flags().GetInt("closing-day")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	id, err := store.CreateCard(ctx, &model.CreditCard{
		Name:       args[0],
		LastDigits: digits,
		Brand:      brand,
		Limit:      limit,
		DueDay:     dueDay,
		ClosingDay: closingDay,
		Scope:      scope,
	})
	if err != nil {
		return err
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s Registered card %q (%s)", cli.CardIcon, args[0], id))) //nolint:forbidigo // User-facing output
	return nil
}

func cardListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered cards",
		RunE:  runCardList,
	}
	cmd.Flags().StringP("scope", "s", "", "book to list (personal, business)")
	return cmd
}

func runCardList(cmd *cobra.Command, _ []string) error {
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

	cards, err := store.GetCards(ctx, scope)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		fmt.Println(cli.InfoStyle.Render("No cards registered. Use 'tally card add' to register one.")) //nolint:forbidigo // User-facing output
		return nil
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Cards (%s)", scope))) //nolint:forbidigo // User-facing output
	fmt.Println()                                                 //nolint:forbidigo // User-facing output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("ID"),
		cli.HeaderStyle.Render("Name"),
		cli.HeaderStyle.Render("Brand"),
		cli.HeaderStyle.Render("Digits"),
		cli.HeaderStyle.Render("Limit"),
		cli.HeaderStyle.Render("Used"),
		cli.HeaderStyle.Render("Due day"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 36), strings.Repeat("─", 14), strings.Repeat("─", 10),
		strings.Repeat("─", 6), strings.Repeat("─", 10), strings.Repeat("─", 10),
		strings.Repeat("─", 7))
	for _, card := range cards {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			card.ID, card.Name, card.Brand, card.LastDigits,
			formatAmount(card.Limit), formatAmount(card.UsedLimit), card.DueDay)
	}
	if flushErr := w.Flush(); flushErr != nil {
		slog.Error("failed to flush table writer", "error", flushErr)
	}
	return nil
}
