package engine

import (
	"context"
	"testing"
	"time"

	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
	"github.com/tallyflow/tally/internal/storage"
)

// newTestEngine returns an engine over a migrated in-memory SQLite store
// with a fixed clock, plus the seeded fixture category ids by name.
func newTestEngine(t *testing.T, now time.Time) (*Engine, service.Storage, map[string]string) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test storage: %v", err)
	}
	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	cats := map[string]string{}
	for _, cat := range []model.Category{
		{Name: "Groceries", Type: model.CategoryTypeExpense, Scope: model.CategoryScopeBoth, IsUserDefined: true},
		{Name: "Electronics", Type: model.CategoryTypeExpense, Scope: model.CategoryScopePersonal, IsUserDefined: true},
		{Name: "Salary", Type: model.CategoryTypeIncome, Scope: model.CategoryScopePersonal, IsUserDefined: true},
		{Name: "Consulting", Type: model.CategoryTypeIncome, Scope: model.CategoryScopeBusiness, IsUserDefined: true},
	} {
		c := cat
		id, err := store.CreateCategory(ctx, &c)
		if err != nil {
			t.Fatalf("failed to seed category %q: %v", cat.Name, err)
		}
		cats[cat.Name] = id
	}

	eng := New(store, WithClock(func() time.Time { return now }))
	return eng, store, cats
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
