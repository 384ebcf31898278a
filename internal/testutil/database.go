// Package testutil provides shared test helpers for exercising storage
// backends with realistic fixture data.
package testutil

import (
	"context"
	"testing"

	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
	"github.com/tallyflow/tally/internal/storage"
)

// TestDB bundles a migrated storage backend with the fixture categories
// seeded into it, keyed by category name.
type TestDB struct {
	Storage    service.Storage
	Categories map[string]model.Category
	t          *testing.T
}

// SetupTestDB creates an in-memory SQLite database, runs migrations, and
// seeds the default fixture categories. Cleanup is registered on t.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	db := &TestDB{
		Storage:    store,
		Categories: make(map[string]model.Category),
		t:          t,
	}
	db.seedCategories(ctx, DefaultCategories())
	return db
}

// SetupMemoryDB mirrors SetupTestDB on the in-memory map-backed store, for
// tests that exercise backend interchangeability.
func SetupMemoryDB(t *testing.T) *TestDB {
	t.Helper()

	store := storage.NewMemoryStorage()
	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to init memory storage: %v", err)
	}

	db := &TestDB{
		Storage:    store,
		Categories: make(map[string]model.Category),
		t:          t,
	}
	db.seedCategories(ctx, DefaultCategories())
	return db
}

// DefaultCategories returns the fixture categories used across tests.
func DefaultCategories() []model.Category {
	return []model.Category{
		{Name: "Groceries", Type: model.CategoryTypeExpense, Scope: model.CategoryScopeBoth, IsUserDefined: true},
		{Name: "Rent", Type: model.CategoryTypeExpense, Scope: model.CategoryScopePersonal, IsUserDefined: true},
		{Name: "Electronics", Type: model.CategoryTypeExpense, Scope: model.CategoryScopePersonal, IsUserDefined: true},
		{Name: "Salary", Type: model.CategoryTypeIncome, Scope: model.CategoryScopePersonal, IsUserDefined: true},
		{Name: "Consulting", Type: model.CategoryTypeIncome, Scope: model.CategoryScopeBusiness, IsUserDefined: true},
		{Name: "Office Supplies", Type: model.CategoryTypeExpense, Scope: model.CategoryScopeBusiness, IsUserDefined: true},
	}
}

// CategoryID returns the seeded id for a fixture category name, failing the
// test if the name is unknown.
func (db *TestDB) CategoryID(name string) string {
	db.t.Helper()
	cat, ok := db.Categories[name]
	if !ok {
		db.t.Fatalf("unknown fixture category %q", name)
	}
	return cat.ID
}

func (db *TestDB) seedCategories(ctx context.Context, cats []model.Category) {
	db.t.Helper()
	for i := range cats {
		cat := cats[i]
		id, err := db.Storage.CreateCategory(ctx, &cat)
		if err != nil {
			db.t.Fatalf("failed to seed category %q: %v", cat.Name, err)
		}
		cat.ID = id
		db.Categories[cat.Name] = cat
	}
}
