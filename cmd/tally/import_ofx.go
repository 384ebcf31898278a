package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tallyflow/tally/internal/cli"
	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/ofx"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import entries from OFX/QFX statement files",
		Long: `Import ledger entries from OFX or QFX files exported from your bank.
Each statement line carries a content hash, so re-importing the same file
skips entries that already exist.

Examples:
  # Import a single statement
  tally import ~/Downloads/checking_jan.ofx --category Groceries

  # Import card statements onto a registered card
  tally import ~/Downloads/card_*.qfx --category Electronics --card <card-id>`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().StringP("scope", "s", "", "book to import into (personal, business)")
	cmd.Flags().StringP("category", "c", "", "category for imported entries (required)")
	cmd.Flags().String("card", "", "card id for credit-card statements")
	cmd.Flags().BoolP("dry-run", "d", false, "preview import without saving")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	scopeFlag, _ := cmd.Flags().GetString("scope")
	scope, err := parseScope(scopeFlag)
	if err != nil {
		return err
	}
	cardID, _ := cmd.Flags().GetString("card")
	categoryFlag, _ := cmd.Flags().GetString("category")

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, globErr := filepath.Glob(pattern)
		if globErr != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, globErr)
		}
		if len(matches) == 0 {
			if _, statErr := os.Stat(pattern); statErr == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}
	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
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

	categoryID, err := resolveCategory(ctx, store, scope, categoryFlag)
	if err != nil {
		return err
	}
	opts := ofx.Options{Scope: scope, CategoryID: categoryID, CardID: cardID}

	// Parse everything up front so the progress bar covers writes only.
	parser := ofx.NewParser()
	var all []model.Transaction
	for _, filePath := range allFiles {
		f, openErr := os.Open(filePath)
		if openErr != nil {
			slog.Error("Failed to open file", "file", filePath, "error", openErr)
			continue
		}
		transactions, parseErr := parser.ParseFile(ctx, f, opts)
		_ = f.Close()
		if parseErr != nil {
			slog.Error("Failed to parse OFX file", "file", filePath, "error", parseErr)
			continue
		}
		slog.Info("Parsed statement", "file", filepath.Base(filePath), "entries", len(transactions))
		all = append(all, transactions...)
	}
	if len(all) == 0 {
		slog.Warn("No entries found in any file")
		return nil
	}

	if dryRun {
		fmt.Println(cli.FormatInfo(fmt.Sprintf("Dry run: %d entries would be imported", len(all)))) //nolint:forbidigo // User-facing output
		for _, txn := range all {
			fmt.Printf("  %s  %-9s %10s  %s\n", //nolint:forbidigo // User-facing output
				txn.Date.Format(dateLayout), txn.Type, formatAmount(txn.Amount), txn.Description)
		}
		return nil
	}

	bar := cli.NewProgressBar(len(all), "Importing entries...", os.Stderr)
	imported, duplicates := 0, 0
	for i := range all {
		_, addErr := store.AddTransaction(ctx, &all[i])
		switch {
		case addErr == nil:
			imported++
		case errors.Is(addErr, common.ErrDuplicateEntry):
			duplicates++
		default:
			return fmt.Errorf("failed to import %q: %w", all[i].Description, addErr)
		}
		_ = bar.Add(1)
	}
	fmt.Println() //nolint:forbidigo // User-facing output

	message := fmt.Sprintf("Imported %d entries (%d duplicates skipped)", imported, duplicates)
	fmt.Println(cli.FormatSuccess(message)) //nolint:forbidigo // User-facing output
	return nil
}
