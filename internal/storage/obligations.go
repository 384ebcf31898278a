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

// CreateBill inserts a bill and returns its id. New bills start pending.
func (s *SQLiteStorage) CreateBill(ctx context.Context, bill *model.Bill) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateBill(bill); err != nil {
		return "", err
	}
	if err := s.checkCategoryVisible(ctx, bill.CategoryID, bill.Scope); err != nil {
		return "", err
	}

	if bill.ID == "" {
		bill.ID = uuid.NewString()
	}
	if bill.Status == "" {
		bill.Status = model.ObligationPending
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bills (id, description, amount, due_date, category_id, status, recurrence, scope)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID,
		bill.Description,
		bill.Amount.String(),
		bill.DueDate.UTC(),
		bill.CategoryID,
		string(bill.Status),
		string(bill.Recurrence),
		string(bill.Scope),
	)
	if err != nil {
		return "", wrapSQLiteErr("insert bill", err)
	}
	return bill.ID, nil
}

// GetBillByID retrieves one bill.
func (s *SQLiteStorage) GetBillByID(ctx context.Context, id string) (*model.Bill, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, description, amount, due_date, category_id, status, recurrence, scope
		FROM bills WHERE id = ?`, id)

	bill, err := scanBill(row)
	if err == sql.ErrNoRows {
		return nil, common.NewNotFoundError("bill", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query bill: %w", err)
	}
	return bill, nil
}

// GetBills returns all bills in a scope, soonest due first.
func (s *SQLiteStorage) GetBills(ctx context.Context, scope model.Scope) ([]model.Bill, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !scope.Valid() {
		return nil, common.NewValidationError("scope", fmt.Sprintf("unknown scope %q", scope))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description, amount, due_date, category_id, status, recurrence, scope
		FROM bills WHERE scope = ? ORDER BY due_date, id`, string(scope))
	if err != nil {
		return nil, wrapSQLiteErr("query bills", err)
	}
	defer func() { _ = rows.Close() }()

	var bills []model.Bill
	for rows.Next() {
		bill, scanErr := scanBill(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", scanErr)
		}
		bills = append(bills, *bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bills: %w", err)
	}
	return bills, nil
}

// UpdateBill replaces the stored row for bill.ID.
func (s *SQLiteStorage) UpdateBill(ctx context.Context, bill *model.Bill) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(bill.ID, "id"); err != nil {
		return err
	}
	if err := validateBill(bill); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE bills
		SET description = ?, amount = ?, due_date = ?, category_id = ?,
			status = ?, recurrence = ?, scope = ?
		WHERE id = ?`,
		bill.Description,
		bill.Amount.String(),
		bill.DueDate.UTC(),
		bill.CategoryID,
		string(bill.Status),
		string(bill.Recurrence),
		string(bill.Scope),
		bill.ID,
	)
	if err != nil {
		return wrapSQLiteErr("update bill", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return common.NewNotFoundError("bill", bill.ID)
	}
	return nil
}

// CreateReceivable inserts a receivable and returns its id.
func (s *SQLiteStorage) CreateReceivable(ctx context.Context, receivable *model.Receivable) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateReceivable(receivable); err != nil {
		return "", err
	}
	if err := s.checkCategoryVisible(ctx, receivable.CategoryID, receivable.Scope); err != nil {
		return "", err
	}

	if receivable.ID == "" {
		receivable.ID = uuid.NewString()
	}
	if receivable.Status == "" {
		receivable.Status = model.ObligationPending
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO receivables (id, description, amount, expected_date, category_id, status, recurrence, scope, payer)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		receivable.ID,
		receivable.Description,
		receivable.Amount.String(),
		receivable.ExpectedDate.UTC(),
		receivable.CategoryID,
		string(receivable.Status),
		string(receivable.Recurrence),
		string(receivable.Scope),
		receivable.Payer,
	)
	if err != nil {
		return "", wrapSQLiteErr("insert receivable", err)
	}
	return receivable.ID, nil
}

// GetReceivableByID retrieves one receivable.
func (s *SQLiteStorage) GetReceivableByID(ctx context.Context, id string) (*model.Receivable, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, description, amount, expected_date, category_id, status, recurrence, scope, payer
		FROM receivables WHERE id = ?`, id)

	receivable, err := scanReceivable(row)
	if err == sql.ErrNoRows {
		return nil, common.NewNotFoundError("receivable", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query receivable: %w", err)
	}
	return receivable, nil
}

// GetReceivables returns all receivables in a scope, soonest expected
// first.
func (s *SQLiteStorage) GetReceivables(ctx context.Context, scope model.Scope) ([]model.Receivable, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !scope.Valid() {
		return nil, common.NewValidationError("scope", fmt.Sprintf("unknown scope %q", scope))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description, amount, expected_date, category_id, status, recurrence, scope, payer
		FROM receivables WHERE scope = ? ORDER BY expected_date, id`, string(scope))
	if err != nil {
		return nil, wrapSQLiteErr("query receivables", err)
	}
	defer func() { _ = rows.Close() }()

	var receivables []model.Receivable
	for rows.Next() {
		receivable, scanErr := scanReceivable(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan receivable: %w", scanErr)
		}
		receivables = append(receivables, *receivable)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receivables: %w", err)
	}
	return receivables, nil
}

// UpdateReceivable replaces the stored row for receivable.ID.
func (s *SQLiteStorage) UpdateReceivable(ctx context.Context, receivable *model.Receivable) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(receivable.ID, "id"); err != nil {
		return err
	}
	if err := validateReceivable(receivable); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE receivables
		SET description = ?, amount = ?, expected_date = ?, category_id = ?,
			status = ?, recurrence = ?, scope = ?, payer = ?
		WHERE id = ?`,
		receivable.Description,
		receivable.Amount.String(),
		receivable.ExpectedDate.UTC(),
		receivable.CategoryID,
		string(receivable.Status),
		string(receivable.Recurrence),
		string(receivable.Scope),
		receivable.Payer,
		receivable.ID,
	)
	if err != nil {
		return wrapSQLiteErr("update receivable", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return common.NewNotFoundError("receivable", receivable.ID)
	}
	return nil
}

func scanBill(row rowScanner) (*model.Bill, error) {
	var (
		bill   model.Bill
		amount string
	)
	if err := row.Scan(
		&bill.ID, &bill.Description, &amount, &bill.DueDate,
		&bill.CategoryID, (*string)(&bill.Status),
		(*string)(&bill.Recurrence), (*string)(&bill.Scope),
	); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount %q: %w", amount, err)
	}
	bill.Amount = parsed
	bill.DueDate = bill.DueDate.UTC()
	return &bill, nil
}

func scanReceivable(row rowScanner) (*model.Receivable, error) {
	var (
		receivable model.Receivable
		amount     string
	)
	if err := row.Scan(
		&receivable.ID, &receivable.Description, &amount, &receivable.ExpectedDate,
		&receivable.CategoryID, (*string)(&receivable.Status),
		(*string)(&receivable.Recurrence), (*string)(&receivable.Scope),
		&receivable.Payer,
	); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount %q: %w", amount, err)
	}
	receivable.Amount = parsed
	receivable.ExpectedDate = receivable.ExpectedDate.UTC()
	return &receivable, nil
}
