package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
)

// CreateCategory inserts a category and returns its id.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateCategory(category); err != nil {
		return "", err
	}

	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, type, scope, user_defined, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		category.ID,
		category.Name,
		string(category.Type),
		string(category.Scope),
		category.IsUserDefined,
		category.CreatedAt,
	)
	if err != nil {
		return "", wrapSQLiteErr("insert category", err)
	}

	slog.Debug("created category", "id", category.ID, "name", category.Name)
	return category.ID, nil
}

// GetCategoryByID retrieves one category.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var cat model.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, scope, user_defined, created_at
		FROM categories WHERE id = ?`, id).Scan(
		&cat.ID, &cat.Name, (*string)(&cat.Type), (*string)(&cat.Scope),
		&cat.IsUserDefined, &cat.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, common.NewNotFoundError("category", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &cat, nil
}

// GetCategories returns the categories visible from a scope, sorted by
// name.
func (s *SQLiteStorage) GetCategories(ctx context.Context, scope model.Scope) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !scope.Valid() {
		return nil, common.NewValidationError("scope", fmt.Sprintf("unknown scope %q", scope))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, scope, user_defined, created_at
		FROM categories
		WHERE scope = ? OR scope = 'both'
		ORDER BY name`, string(scope))
	if err != nil {
		return nil, wrapSQLiteErr("query categories", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(
			&cat.ID, &cat.Name, (*string)(&cat.Type), (*string)(&cat.Scope),
			&cat.IsUserDefined, &cat.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// DeleteCategory removes a user-defined category. Built-in categories and
// categories still referenced by a ledger entry, budget, bill, or
// receivable are protected.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	cat, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}
	if !cat.IsUserDefined {
		return common.NewValidationError("category", "built-in categories cannot be deleted")
	}

	var refs int
	err = s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM transactions WHERE category_id = ?) +
			(SELECT COUNT(*) FROM budgets WHERE category_id = ?) +
			(SELECT COUNT(*) FROM bills WHERE category_id = ?) +
			(SELECT COUNT(*) FROM receivables WHERE category_id = ?)`,
		id, id, id, id).Scan(&refs)
	if err != nil {
		return wrapSQLiteErr("count category references", err)
	}
	if refs > 0 {
		return common.NewValidationError("category",
			fmt.Sprintf("category %q is referenced by %d records", id, refs))
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return wrapSQLiteErr("delete category", err)
	}
	return nil
}
