package demo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyflow/tally/internal/engine"
	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/storage"
)

func TestSeed(t *testing.T) {
	store := storage.NewMemoryStorage()
	ctx := context.Background()
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

	var stages []string
	stats, err := Seed(ctx, store, now, func(stage string) {
		stages = append(stages, stage)
	})
	require.NoError(t, err)

	assert.Equal(t, 8, stats.Categories)
	assert.Equal(t, 1, stats.Cards)
	assert.Equal(t, 9, stats.Transactions)
	assert.Equal(t, 3, stats.Bills)
	assert.Equal(t, 2, stats.Receivables)
	assert.Equal(t, 3, stats.Budgets)
	assert.Equal(t, 1, stats.Goals)
	assert.Len(t, stages, Steps)

	// Seeded data should surface in the month-to-date summary and the
	// upcoming bill schedule without further setup.
	eng := engine.New(store, engine.WithClock(func() time.Time { return now }))

	summary, err := eng.Summarize(ctx, model.ScopePersonal, engine.PeriodMonth)
	require.NoError(t, err)
	assert.True(t, summary.Income.IsPositive())
	assert.True(t, summary.Expense.IsPositive())

	schedule, err := eng.BillSchedule(ctx, model.ScopePersonal)
	require.NoError(t, err)
	assert.Len(t, schedule, 2)

	budgets, err := eng.BudgetReport(ctx, model.MonthOf(now), model.ScopePersonal)
	require.NoError(t, err)
	assert.Len(t, budgets, 3)
}

func TestSeed_NilProgress(t *testing.T) {
	store := storage.NewMemoryStorage()
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

	_, err := Seed(context.Background(), store, now, nil)
	require.NoError(t, err)
}
