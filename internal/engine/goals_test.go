package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
)

func createTestGoal(t *testing.T, store service.Storage, target string) string {
	t.Helper()
	id, err := store.CreateGoal(context.Background(), &model.Goal{
		Title:        "Vacation",
		TargetAmount: decimal.RequireFromString(target),
	})
	require.NoError(t, err)
	return id
}

func TestDeposit_Accumulates(t *testing.T) {
	eng, store, _ := newTestEngine(t, date(2024, time.May, 15))
	ctx := context.Background()
	id := createTestGoal(t, store, "1000.00")

	_, err := eng.Deposit(ctx, id, decimal.RequireFromString("200.00"))
	require.NoError(t, err)
	goal, err := eng.Deposit(ctx, id, decimal.RequireFromString("150.00"))
	require.NoError(t, err)

	assert.True(t, goal.CurrentAmount.Equal(decimal.RequireFromString("350.00")))
	assert.False(t, goal.Completed)
	assert.Nil(t, goal.CompletedAt)
	assert.True(t, goal.Progress().Equal(decimal.RequireFromString("35")), "got %s", goal.Progress())
}

func TestDeposit_CompletesAtTarget(t *testing.T) {
	now := date(2024, time.May, 15)
	eng, store, _ := newTestEngine(t, now)
	ctx := context.Background()
	id := createTestGoal(t, store, "500.00")

	goal, err := eng.Deposit(ctx, id, decimal.RequireFromString("500.00"))
	require.NoError(t, err)

	assert.True(t, goal.Completed)
	require.NotNil(t, goal.CompletedAt)
	assert.Equal(t, now, *goal.CompletedAt)
}

func TestDeposit_CompletionIsMonotonic(t *testing.T) {
	firstNow := date(2024, time.May, 15)
	eng, store, _ := newTestEngine(t, firstNow)
	ctx := context.Background()
	id := createTestGoal(t, store, "500.00")

	goal, err := eng.Deposit(ctx, id, decimal.RequireFromString("600.00"))
	require.NoError(t, err)
	require.True(t, goal.Completed)
	completedAt := *goal.CompletedAt

	// A later deposit keeps accumulating but never revises completion.
	later := New(store, WithClock(func() time.Time { return date(2024, time.July, 1) }))
	goal, err = later.Deposit(ctx, id, decimal.RequireFromString("100.00"))
	require.NoError(t, err)

	assert.True(t, goal.Completed)
	require.NotNil(t, goal.CompletedAt)
	assert.Equal(t, completedAt, *goal.CompletedAt)
	assert.True(t, goal.CurrentAmount.Equal(decimal.RequireFromString("700.00")))
	// Progress display stays capped at 100.
	assert.True(t, goal.Progress().Equal(decimal.NewFromInt(100)))
}

func TestDeposit_RejectsNonPositive(t *testing.T) {
	eng, store, _ := newTestEngine(t, date(2024, time.May, 15))
	id := createTestGoal(t, store, "500.00")

	_, err := eng.Deposit(context.Background(), id, decimal.Zero)
	assert.Error(t, err)
	_, err = eng.Deposit(context.Background(), id, decimal.RequireFromString("-5"))
	assert.Error(t, err)
}

func TestMarkGoalComplete(t *testing.T) {
	now := date(2024, time.May, 15)
	eng, store, _ := newTestEngine(t, now)
	ctx := context.Background()
	id := createTestGoal(t, store, "1000.00")

	goal, err := eng.MarkGoalComplete(ctx, id)
	require.NoError(t, err)

	assert.True(t, goal.Completed)
	assert.True(t, goal.CurrentAmount.Equal(goal.TargetAmount))
	require.NotNil(t, goal.CompletedAt)
	assert.Equal(t, now, *goal.CompletedAt)

	stored, err := store.GetGoalByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.Completed)
}

func TestDeposit_WritesNoLedgerEntry(t *testing.T) {
	eng, store, _ := newTestEngine(t, date(2024, time.May, 15))
	ctx := context.Background()
	id := createTestGoal(t, store, "500.00")

	_, err := eng.Deposit(ctx, id, decimal.RequireFromString("100.00"))
	require.NoError(t, err)

	for _, scope := range []model.Scope{model.ScopePersonal, model.ScopeBusiness} {
		txns, err := store.ListTransactions(ctx, service.TransactionFilter{Scope: scope})
		require.NoError(t, err)
		assert.Empty(t, txns)
	}
}
