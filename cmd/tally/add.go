package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tallyflow/tally/internal/cli"
	"github.com/tallyflow/tally/internal/engine"
	"github.com/tallyflow/tally/internal/model"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Record an income or expense entry",
		Long: `Record a ledger entry. Credit-card purchases may be split into monthly
installments; the split amounts always sum back to the original total.

Examples:
  # A simple debit expense
  tally add "Groceries" --amount 84.37 --category Groceries

  # Income on the business book
  tally add "Invoice #42" --amount 2500 --type income --category Consulting --scope business

  # A credit-card purchase in 3 installments
  tally add "Laptop" --amount 2399 --category Electronics --payment credit_card --card <card-id> --installments 3`,
		Args: cobra.ExactArgs(1),
		RunE: runAdd,
	}

	cmd.Flags().StringP("amount", "a", "", "entry amount (required)")
	cmd.Flags().StringP("category", "c", "", "category id or name (required)")
	cmd.Flags().StringP("type", "t", "expense", "entry type (income, expense)")
	cmd.Flags().StringP("scope", "s", "", "book to record on (personal, business)")
	cmd.Flags().StringP("payment", "p", "debit", "payment method (cash, debit, transfer, credit_card)")
	cmd.Flags().String("card", "", "card id (required for credit_card payments)")
	cmd.Flags().IntP("installments", "n", 1, "number of monthly installments (credit_card only)")
	cmd.Flags().StringP("date", "d", "", "entry date as YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	description := args[0]

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
	dateFlag, _ := cmd.Flags().GetString("date")
	date, err := parseDate(dateFlag)
	if err != nil {
		return err
	}
	entryType, _ := cmd.Flags().GetString("type")
	payment, _ := cmd.Flags().GetString("payment")
	cardID, _ := cmd.Flags().GetString("card")
	installments, _ := cmd.Flags().GetInt("installments")
	categoryFlag, _ := cmd.Flags().GetString("category")

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
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

	// Income entries bypass the purchase path; they never split.
	if model.TransactionType(entryType) == model.TypeIncome {
		txn := &model.Transaction{
			Date:        date,
			Description: description,
			Amount:      amount,
			Type:        model.TypeIncome,
			CategoryID:  categoryID,
			Scope:       scope,
			Payment:     model.PaymentMethod(payment),
			CardID:      cardID,
		}
		if _, err := store.AddTransaction(ctx, txn); err != nil {
			return err
		}
		fmt.Println(cli.FormatSuccess(fmt.Sprintf("Recorded income %s for %q", formatAmount(amount), description))) //nolint:forbidigo // User-facing output
		return nil
	}

	entries, err := eng.RecordPurchase(ctx, engine.Purchase{
		Date:         date,
		Description:  description,
		Amount:       amount,
		CategoryID:   categoryID,
		Scope:        scope,
		Payment:      model.PaymentMethod(payment),
		CardID:       cardID,
		Installments: installments,
	})
	if err != nil {
		return err
	}

	if len(entries) == 1 {
		fmt.Println(cli.FormatSuccess(fmt.Sprintf("Recorded expense %s for %q", formatAmount(amount), description))) //nolint:forbidigo // User-facing output
		return nil
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Split %s into %d installments:", formatAmount(amount), len(entries)))) //nolint:forbidigo // User-facing output
	for _, entry := range entries {
		fmt.Printf("  %s  %s  %s\n", entry.Date.Format(dateLayout), formatAmount(entry.Amount), entry.Description) //nolint:forbidigo // User-facing output
	}
	return nil
}
