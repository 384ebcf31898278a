package engine

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
)

// Deposit adds to a goal's accumulated amount and applies the completion
// transition when the target is reached. Deposits are an isolated
// accumulator: no ledger entry is written. Completion is monotonic;
// once set, CompletedAt never moves and Completed never flips back, no
// matter how many further deposits arrive.
func (e *Engine) Deposit(ctx context.Context, goalID string, amount decimal.Decimal) (*model.Goal, error) {
	if !amount.IsPositive() {
		return nil, common.NewValidationError("amount", "must be positive")
	}

	goal, err := e.storage.GetGoalByID(ctx, goalID)
	if err != nil {
		return nil, err
	}

	goal.CurrentAmount = goal.CurrentAmount.Add(amount)
	e.completeIfReached(goal)

	if err := e.write(ctx, func() error { return e.storage.UpdateGoal(ctx, goal) }); err != nil {
		return nil, err
	}

	slog.Debug("goal deposit", "goal", goal.ID, "amount", amount, "completed", goal.Completed)
	return goal, nil
}

// MarkGoalComplete forces a goal to its target and runs the same
// completion transition a deposit would.
func (e *Engine) MarkGoalComplete(ctx context.Context, goalID string) (*model.Goal, error) {
	goal, err := e.storage.GetGoalByID(ctx, goalID)
	if err != nil {
		return nil, err
	}

	goal.CurrentAmount = goal.TargetAmount
	e.completeIfReached(goal)

	if err := e.write(ctx, func() error { return e.storage.UpdateGoal(ctx, goal) }); err != nil {
		return nil, err
	}
	return goal, nil
}

func (e *Engine) completeIfReached(goal *model.Goal) {
	if goal.Completed {
		return
	}
	if goal.CurrentAmount.GreaterThanOrEqual(goal.TargetAmount) {
		now := e.now()
		goal.Completed = true
		goal.CompletedAt = &now
	}
}
