package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
)

// CreateGoal inserts a savings goal and returns its id.
func (s *SQLiteStorage) CreateGoal(ctx context.Context, goal *model.Goal) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateGoal(goal); err != nil {
		return "", err
	}

	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (id, title, target_amount, current_amount, deadline, completed, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		goal.ID,
		goal.Title,
		goal.TargetAmount.String(),
		goal.CurrentAmount.String(),
		nullTime(goal.Deadline),
		goal.Completed,
		nullTime(goal.CompletedAt),
	)
	if err != nil {
		return "", wrapSQLiteErr("insert goal", err)
	}
	return goal.ID, nil
}

// GetGoalByID retrieves one goal.
func (s *SQLiteStorage) GetGoalByID(ctx context.Context, id string) (*model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, target_amount, current_amount, deadline, completed, completed_at
		FROM goals WHERE id = ?`, id)

	goal, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return nil, common.NewNotFoundError("goal", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query goal: %w", err)
	}
	return goal, nil
}

// GetGoals returns every goal. Goals are not scoped: savings targets
// belong to the account as a whole.
func (s *SQLiteStorage) GetGoals(ctx context.Context) ([]model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, target_amount, current_amount, deadline, completed, completed_at
		FROM goals ORDER BY title`)
	if err != nil {
		return nil, wrapSQLiteErr("query goals", err)
	}
	defer func() { _ = rows.Close() }()

	var goals []model.Goal
	for rows.Next() {
		goal, scanErr := scanGoal(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", scanErr)
		}
		goals = append(goals, *goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}
	return goals, nil
}

// UpdateGoal replaces the stored row for goal.ID.
func (s *SQLiteStorage) UpdateGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(goal.ID, "id"); err != nil {
		return err
	}
	if err := validateGoal(goal); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE goals
		SET title = ?, target_amount = ?, current_amount = ?, deadline = ?,
			completed = ?, completed_at = ?
		WHERE id = ?`,
		goal.Title,
		goal.TargetAmount.String(),
		goal.CurrentAmount.String(),
		nullTime(goal.Deadline),
		goal.Completed,
		nullTime(goal.CompletedAt),
		goal.ID,
	)
	if err != nil {
		return wrapSQLiteErr("update goal", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return common.NewNotFoundError("goal", goal.ID)
	}
	return nil
}

// DeleteGoal removes a goal. Deleting a completed goal is permitted and
// has no effect on the ledger.
func (s *SQLiteStorage) DeleteGoal(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return wrapSQLiteErr("delete goal", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return common.NewNotFoundError("goal", id)
	}
	return nil
}

func scanGoal(row rowScanner) (*model.Goal, error) {
	var (
		goal        model.Goal
		target      string
		current     string
		deadline    sql.NullTime
		completedAt sql.NullTime
	)
	if err := row.Scan(
		&goal.ID, &goal.Title, &target, &current,
		&deadline, &goal.Completed, &completedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if goal.TargetAmount, err = decimal.NewFromString(target); err != nil {
		return nil, fmt.Errorf("corrupt target amount %q: %w", target, err)
	}
	if goal.CurrentAmount, err = decimal.NewFromString(current); err != nil {
		return nil, fmt.Errorf("corrupt current amount %q: %w", current, err)
	}
	if deadline.Valid {
		t := deadline.Time.UTC()
		goal.Deadline = &t
	}
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		goal.CompletedAt = &t
	}
	return &goal, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
