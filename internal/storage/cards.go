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

// CreateCard registers a credit card and returns its id.
func (s *SQLiteStorage) CreateCard(ctx context.Context, card *model.CreditCard) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateCard(card); err != nil {
		return "", err
	}

	if card.ID == "" {
		card.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credit_cards (id, name, last_digits, brand, credit_limit, used_limit, due_day, closing_day, scope)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		card.ID,
		card.Name,
		card.LastDigits,
		card.Brand,
		card.Limit.String(),
		card.UsedLimit.String(),
		card.DueDay,
		card.ClosingDay,
		string(card.Scope),
	)
	if err != nil {
		return "", wrapSQLiteErr("insert card", err)
	}
	return card.ID, nil
}

// GetCardByID retrieves one card.
func (s *SQLiteStorage) GetCardByID(ctx context.Context, id string) (*model.CreditCard, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, last_digits, brand, credit_limit, used_limit, due_day, closing_day, scope
		FROM credit_cards WHERE id = ?`, id)

	card, err := scanCard(row)
	if err == sql.ErrNoRows {
		return nil, common.NewNotFoundError("card", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query card: %w", err)
	}
	return card, nil
}

// GetCards returns all cards in a scope.
func (s *SQLiteStorage) GetCards(ctx context.Context, scope model.Scope) ([]model.CreditCard, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !scope.Valid() {
		return nil, common.NewValidationError("scope", fmt.Sprintf("unknown scope %q", scope))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, last_digits, brand, credit_limit, used_limit, due_day, closing_day, scope
		FROM credit_cards WHERE scope = ? ORDER BY name`, string(scope))
	if err != nil {
		return nil, wrapSQLiteErr("query cards", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []model.CreditCard
	for rows.Next() {
		card, scanErr := scanCard(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan card: %w", scanErr)
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}
	return cards, nil
}

// IncrementCardUsedLimit grows a card's cached outstanding total. The
// engine calls this exactly once per purchase, with the purchase total,
// regardless of how many installment entries the purchase produced.
func (s *SQLiteStorage) IncrementCardUsedLimit(ctx context.Context, id string, amount decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return common.NewValidationError("amount", "must be positive")
	}

	card, err := s.GetCardByID(ctx, id)
	if err != nil {
		return err
	}

	newUsed := card.UsedLimit.Add(amount)
	if _, err := s.db.ExecContext(ctx,
		`UPDATE credit_cards SET used_limit = ? WHERE id = ?`,
		newUsed.String(), id); err != nil {
		return wrapSQLiteErr("update card used limit", err)
	}
	return nil
}

func scanCard(row rowScanner) (*model.CreditCard, error) {
	var (
		card      model.CreditCard
		limit     string
		usedLimit string
	)
	if err := row.Scan(
		&card.ID, &card.Name, &card.LastDigits, &card.Brand,
		&limit, &usedLimit, &card.DueDay, &card.ClosingDay,
		(*string)(&card.Scope),
	); err != nil {
		return nil, err
	}

	var err error
	if card.Limit, err = decimal.NewFromString(limit); err != nil {
		return nil, fmt.Errorf("corrupt limit %q: %w", limit, err)
	}
	if card.UsedLimit, err = decimal.NewFromString(usedLimit); err != nil {
		return nil, fmt.Errorf("corrupt used limit %q: %w", usedLimit, err)
	}
	return &card, nil
}
