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

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
		Long: `Categories classify ledger entries. Each belongs to the personal book,
the business book, or both. A category that is referenced by entries,
budgets, bills, or receivables cannot be deleted.`,
	}

	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())
	cmd.AddCommand(categoriesDeleteCmd())
	return cmd
}

func categoriesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories visible from a book",
		RunE:  runCategoriesList,
	}
	cmd.Flags().StringP("scope", "s", "", "book to list (personal, business)")
	return cmd
}

func runCategoriesList(cmd *cobra.Command, _ []string) error {
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

	categories, err := store.GetCategories(ctx, scope)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		fmt.Println(cli.InfoStyle.Render("No categories yet. Use 'tally categories add' to create one.")) //nolint:forbidigo // User-facing output
		return nil
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Categories (%s)", scope))) //nolint:forbidigo // User-facing output
	fmt.Println()                                                      //nolint:forbidigo // User-facing output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("ID"),
		cli.HeaderStyle.Render("Name"),
		cli.HeaderStyle.Render("Type"),
		cli.HeaderStyle.Render("Scope"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 36), strings.Repeat("─", 18),
		strings.Repeat("─", 7), strings.Repeat("─", 8))
	for _, cat := range categories {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cat.ID, cat.Name, cat.Type, cat.Scope)
	}
	if flushErr := w.Flush(); flushErr != nil {
		slog.Error("failed to flush table writer", "error", flushErr)
	}
	return nil
}

func categoriesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE:  runCategoriesAdd,
	}
	cmd.Flags().StringP("type", "t", "expense", "category type (income, expense)")
	cmd.Flags().StringP("scope", "s", "both", "visibility (personal, business, both)")
	return cmd
}

func runCategoriesAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := args[0]
	ctype, _ := cmd.Flags().GetString("type")
	scope, _ := cmd.Flags().GetString("scope")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	id, err := store.CreateCategory(ctx, &model.Category{
		Name:          name,
		Type:          model.CategoryType(ctype),
		Scope:         model.CategoryScope(scope),
		IsUserDefined: true,
	})
	if err != nil {
		return err
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created category %q (%s)", name, id))) //nolint:forbidigo // User-facing output
	return nil
}

func categoriesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an unused user-defined category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if err := store.DeleteCategory(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("Category deleted")) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}
