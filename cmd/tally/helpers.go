package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/tallyflow/tally/internal/config"
	"github.com/tallyflow/tally/internal/engine"
	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
	"github.com/tallyflow/tally/internal/storage"
)

const dateLayout = "2006-01-02"

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)
	if err := config.EnsureParentDir(dbPath); err != nil {
		return nil, err
	}

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initEngine opens storage and wraps it in the ledger engine.
func initEngine(ctx context.Context) (*engine.Engine, service.Storage, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return engine.New(store), store, nil
}

// parseScope reads a --scope flag value; the default book is personal.
func parseScope(value string) (model.Scope, error) {
	if value == "" {
		value = viper.GetString("defaults.scope")
	}
	if value == "" {
		value = string(model.ScopePersonal)
	}
	scope := model.Scope(strings.ToLower(value))
	if !scope.Valid() {
		return "", fmt.Errorf("unknown scope %q (want personal or business)", value)
	}
	return scope, nil
}

// parseAmount parses a positive decimal flag value.
func parseAmount(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive, got %s", amount)
	}
	return amount, nil
}

// parseDate parses a --date flag value, defaulting to today.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", value, err)
	}
	return t, nil
}

// parseMonthFlag parses a --month flag value, defaulting to the current month.
func parseMonthFlag(value string) (model.Month, error) {
	if value == "" {
		return model.MonthOf(time.Now().UTC()), nil
	}
	return model.ParseMonth(value)
}

// resolveCategory accepts either a category id or a name visible from the
// scope and returns the id.
func resolveCategory(ctx context.Context, store service.Storage, scope model.Scope, ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("category is required")
	}
	if cat, err := store.GetCategoryByID(ctx, ref); err == nil {
		return cat.ID, nil
	}

	categories, err := store.GetCategories(ctx, scope)
	if err != nil {
		return "", err
	}
	for _, cat := range categories {
		if strings.EqualFold(cat.Name, ref) {
			return cat.ID, nil
		}
	}
	return "", fmt.Errorf("no category %q visible from scope %s", ref, scope)
}

// formatAmount renders a decimal with two places for tables.
func formatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
