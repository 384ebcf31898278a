package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
)

// UpsertBudget creates or replaces the single budget row for the budget's
// (category, month, scope) key and returns its id. There is never more
// than one row per key.
func (s *SQLiteStorage) UpsertBudget(ctx context.Context, budget *model.Budget) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateBudget(budget); err != nil {
		return "", err
	}
	if err := s.checkCategoryVisible(ctx, budget.CategoryID, budget.Scope); err != nil {
		return "", err
	}

	var existingID string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM budgets
		WHERE category_id = ? AND month = ? AND scope = ?`,
		budget.CategoryID, budget.Month.String(), string(budget.Scope)).Scan(&existingID)

	switch {
	case err == sql.ErrNoRows:
		if budget.ID == "" {
			budget.ID = uuid.NewString()
		}
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO budgets (id, category_id, month, amount, scope)
			VALUES (?, ?, ?, ?, ?)`,
			budget.ID,
			budget.CategoryID,
			budget.Month.String(),
			budget.Amount.String(),
			string(budget.Scope),
		); err != nil {
			return "", wrapSQLiteErr("insert budget", err)
		}
		return budget.ID, nil
	case err != nil:
		return "", wrapSQLiteErr("query budget", err)
	default:
		if _, err := s.db.ExecContext(ctx,
			`UPDATE budgets SET amount = ? WHERE id = ?`,
			budget.Amount.String(), existingID); err != nil {
			return "", wrapSQLiteErr("update budget", err)
		}
		budget.ID = existingID
		return existingID, nil
	}
}

// GetBudgets returns the budget rows for one month and scope.
func (s *SQLiteStorage) GetBudgets(ctx context.Context, month model.Month, scope model.Scope) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !scope.Valid() {
		return nil, common.NewValidationError("scope", fmt.Sprintf("unknown scope %q", scope))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category_id, month, amount, scope
		FROM budgets WHERE month = ? AND scope = ?
		ORDER BY category_id`, month.String(), string(scope))
	if err != nil {
		return nil, wrapSQLiteErr("query budgets", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		var (
			budget   model.Budget
			monthKey string
			amount   string
		)
		if err := rows.Scan(
			&budget.ID, &budget.CategoryID, &monthKey, &amount,
			(*string)(&budget.Scope),
		); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		if budget.Month, err = model.ParseMonth(monthKey); err != nil {
			return nil, fmt.Errorf("corrupt month %q: %w", monthKey, err)
		}
		if budget.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount %q: %w", amount, err)
		}
		budgets = append(budgets, budget)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	return budgets, nil
}
