package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
)

// Budget status thresholds as percentages of the configured limit.
var (
	budgetNearThreshold = decimal.NewFromInt(80)
	budgetOverThreshold = decimal.NewFromInt(100)
)

// SetBudget creates or replaces the budget for (category, month, scope).
func (e *Engine) SetBudget(ctx context.Context, categoryID string, month model.Month, scope model.Scope, amount decimal.Decimal) (*model.Budget, error) {
	budget := &model.Budget{
		CategoryID: categoryID,
		Month:      month,
		Amount:     amount,
		Scope:      scope,
	}
	if err := e.write(ctx, func() error {
		_, werr := e.storage.UpsertBudget(ctx, budget)
		return werr
	}); err != nil {
		return nil, err
	}
	return budget, nil
}

// BudgetReport derives usage for every budget of the month: actual spend
// is recomputed from the ledger on each call, never cached. The usage
// ratio is unclamped so callers can alert on overshoot past 100%.
func (e *Engine) BudgetReport(ctx context.Context, month model.Month, scope model.Scope) ([]model.BudgetUsage, error) {
	budgets, err := e.storage.GetBudgets(ctx, month, scope)
	if err != nil {
		return nil, err
	}

	usages := make([]model.BudgetUsage, 0, len(budgets))
	for _, budget := range budgets {
		spent, err := e.actualSpent(ctx, budget)
		if err != nil {
			return nil, err
		}

		ratio := decimal.Zero
		if !budget.Amount.IsZero() {
			ratio = spent.Div(budget.Amount).Mul(decimal.NewFromInt(100))
		}

		usages = append(usages, model.BudgetUsage{
			Budget:      budget,
			ActualSpent: spent,
			Ratio:       ratio,
			Status:      budgetStatus(ratio),
		})
	}
	return usages, nil
}

// CopyPreviousBudgets duplicates every budget row from the prior calendar
// month into the target month, skipping categories that already have a
// row there. Calling it twice is a no-op the second time; existing rows
// are never overwritten. Returns the number of rows created.
func (e *Engine) CopyPreviousBudgets(ctx context.Context, month model.Month, scope model.Scope) (int, error) {
	previous, err := e.storage.GetBudgets(ctx, month.Prev(), scope)
	if err != nil {
		return 0, err
	}
	existing, err := e.storage.GetBudgets(ctx, month, scope)
	if err != nil {
		return 0, err
	}

	taken := make(map[string]struct{}, len(existing))
	for _, budget := range existing {
		taken[budget.CategoryID] = struct{}{}
	}

	copied := 0
	for _, budget := range previous {
		if _, ok := taken[budget.CategoryID]; ok {
			continue
		}
		fresh := &model.Budget{
			CategoryID: budget.CategoryID,
			Month:      month,
			Amount:     budget.Amount,
			Scope:      scope,
		}
		if err := e.write(ctx, func() error {
			_, werr := e.storage.UpsertBudget(ctx, fresh)
			return werr
		}); err != nil {
			return copied, err
		}
		copied++
	}

	slog.Debug("copied budgets forward", "month", month, "copied", copied, "skipped", len(previous)-copied)
	return copied, nil
}

// actualSpent sums the expense entries of the budget's category inside
// its month and scope.
func (e *Engine) actualSpent(ctx context.Context, budget model.Budget) (decimal.Decimal, error) {
	start := budget.Month.Start()
	end := budget.Month.End().Add(-time.Nanosecond)

	transactions, err := e.storage.ListTransactions(ctx, service.TransactionFilter{
		Scope:      budget.Scope,
		StartDate:  &start,
		EndDate:    &end,
		CategoryID: budget.CategoryID,
		Type:       model.TypeExpense,
	})
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, txn := range transactions {
		total = total.Add(txn.Amount)
	}
	return total, nil
}

func budgetStatus(ratio decimal.Decimal) model.BudgetStatus {
	switch {
	case ratio.GreaterThanOrEqual(budgetOverThreshold):
		return model.BudgetOver
	case ratio.GreaterThanOrEqual(budgetNearThreshold):
		return model.BudgetNear
	default:
		return model.BudgetUnder
	}
}
