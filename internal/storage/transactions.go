package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
)

const transactionColumns = `id, hash, date, description, amount, type, category_id,
	scope, payment, card_id, installment_count, installment_index, group_id`

// AddTransaction validates and inserts one ledger entry, returning its id.
// The entry is rejected wholesale on any validation failure; nothing is
// written in that case.
func (s *SQLiteStorage) AddTransaction(ctx context.Context, txn *model.Transaction) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateTransaction(txn); err != nil {
		return "", err
	}
	if err := s.checkCategoryVisible(ctx, txn.CategoryID, txn.Scope); err != nil {
		return "", err
	}

	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	// Importers set a content hash for dedup; manual entries fall back
	// to the row id so identical same-day purchases don't collide.
	if txn.Hash == "" {
		txn.Hash = txn.ID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.Hash,
		txn.Date.UTC(),
		txn.Description,
		txn.Amount.String(),
		string(txn.Type),
		txn.CategoryID,
		string(txn.Scope),
		string(txn.Payment),
		nullString(txn.CardID),
		txn.InstallmentCount,
		txn.InstallmentIndex,
		nullString(txn.GroupID),
	)
	if err != nil {
		return "", wrapSQLiteErr("insert transaction", err)
	}

	slog.Debug("added ledger entry", "id", txn.ID, "amount", txn.Amount, "type", txn.Type)
	return txn.ID, nil
}

// UpdateTransaction replaces the stored row for txn.ID.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(txn.ID, "id"); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	if err := s.checkCategoryVisible(ctx, txn.CategoryID, txn.Scope); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET date = ?, description = ?, amount = ?, type = ?, category_id = ?,
			scope = ?, payment = ?, card_id = ?,
			installment_count = ?, installment_index = ?, group_id = ?
		WHERE id = ?`,
		txn.Date.UTC(),
		txn.Description,
		txn.Amount.String(),
		string(txn.Type),
		txn.CategoryID,
		string(txn.Scope),
		string(txn.Payment),
		nullString(txn.CardID),
		txn.InstallmentCount,
		txn.InstallmentIndex,
		nullString(txn.GroupID),
		txn.ID,
	)
	if err != nil {
		return wrapSQLiteErr("update transaction", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return common.NewNotFoundError("transaction", txn.ID)
	}
	return nil
}

// RemoveTransaction deletes one entry. An entry inside an installment
// group is removed alone; the rest of the group is left untouched.
func (s *SQLiteStorage) RemoveTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return wrapSQLiteErr("delete transaction", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return common.NewNotFoundError("transaction", id)
	}
	return nil
}

// GetTransactionByID retrieves a single entry by id.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions WHERE id = ?`, id)

	txn, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, common.NewNotFoundError("transaction", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return txn, nil
}

// ListTransactions returns entries matching the filter, oldest first.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !filter.Scope.Valid() {
		return nil, common.NewValidationError("scope", fmt.Sprintf("unknown scope %q", filter.Scope))
	}

	conditions := []string{"scope = ?"}
	args := []any{string(filter.Scope)}

	if filter.StartDate != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, filter.EndDate.UTC())
	}
	if filter.CategoryID != "" {
		conditions = append(conditions, "category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.CardID != "" {
		conditions = append(conditions, "card_id = ?")
		args = append(args, filter.CardID)
	}
	if filter.Payment != "" {
		conditions = append(conditions, "payment = ?")
		args = append(args, string(filter.Payment))
	}
	if filter.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.GroupID != "" {
		conditions = append(conditions, "group_id = ?")
		args = append(args, filter.GroupID)
	}

	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY date, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapSQLiteErr("query transactions", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", scanErr)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	slog.Debug("listed ledger entries", "count", len(transactions), "scope", filter.Scope)
	return transactions, nil
}

// checkCategoryVisible verifies the category exists and is visible from
// the entry's scope.
func (s *SQLiteStorage) checkCategoryVisible(ctx context.Context, categoryID string, scope model.Scope) error {
	var catScope string
	err := s.db.QueryRowContext(ctx,
		`SELECT scope FROM categories WHERE id = ?`, categoryID).Scan(&catScope)
	if err == sql.ErrNoRows {
		return common.NewValidationError("categoryId", fmt.Sprintf("unknown category %q", categoryID))
	}
	if err != nil {
		return wrapSQLiteErr("query category", err)
	}
	if !model.CategoryScope(catScope).Matches(scope) {
		return common.NewValidationError("categoryId",
			fmt.Sprintf("category %q is not visible from scope %q", categoryID, scope))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn     model.Transaction
		date    time.Time
		amount  string
		cardID  sql.NullString
		groupID sql.NullString
	)
	if err := row.Scan(
		&txn.ID, &txn.Hash, &date, &txn.Description, &amount,
		(*string)(&txn.Type), &txn.CategoryID, (*string)(&txn.Scope),
		(*string)(&txn.Payment), &cardID,
		&txn.InstallmentCount, &txn.InstallmentIndex, &groupID,
	); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount %q: %w", amount, err)
	}
	txn.Date = date.UTC()
	txn.Amount = parsed
	txn.CardID = cardID.String
	txn.GroupID = groupID.String
	return &txn, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
