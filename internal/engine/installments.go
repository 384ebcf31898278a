package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
)

// Purchase describes one purchase to record, possibly split into monthly
// installments.
type Purchase struct {
	Date         time.Time
	Description  string
	Amount       decimal.Decimal
	CategoryID   string
	Scope        model.Scope
	Payment      model.PaymentMethod
	CardID       string
	Installments int
}

// InstallmentWriteError reports a split that was only partially applied.
// Writes are not transactional across the store: entries before
// FailedIndex were applied and remain in the ledger; the caller must
// retry the remainder or remove the applied entries.
type InstallmentWriteError struct {
	Err         error
	GroupID     string
	AppliedIDs  []string
	FailedIndex int
	Total       int
}

func (e *InstallmentWriteError) Error() string {
	return fmt.Sprintf("installment %d/%d failed (%d entries already applied, group %s): %v",
		e.FailedIndex, e.Total, len(e.AppliedIDs), e.GroupID, e.Err)
}

func (e *InstallmentWriteError) Unwrap() error {
	return e.Err
}

// RecordPurchase writes a purchase into the ledger. With Installments <= 1
// it emits a single entry. Otherwise it expands the purchase into N
// monthly entries sharing a fresh group id: per-installment amounts sum
// back to the original exactly (remainder cents go to the first
// installment), dates step one calendar month with end-of-month clamping,
// and descriptions carry an " (i/n)" suffix.
//
// For credit-card purchases the owning card's used limit grows once, by
// the original total, regardless of the number of entries written.
func (e *Engine) RecordPurchase(ctx context.Context, p Purchase) ([]model.Transaction, error) {
	if p.Installments < 1 {
		p.Installments = 1
	}
	if p.Installments > 1 && p.Payment != model.PaymentCreditCard {
		return nil, common.NewValidationError("installments", "only credit_card purchases can be split")
	}
	if !p.Amount.IsPositive() {
		return nil, common.NewValidationError("amount", "must be positive")
	}

	entries := splitPurchase(p)

	var (
		applied []model.Transaction
		ids     []string
	)
	for i := range entries {
		var id string
		err := e.write(ctx, func() error {
			var werr error
			id, werr = e.storage.AddTransaction(ctx, &entries[i])
			return werr
		})
		if err != nil {
			if len(ids) == 0 {
				return nil, err
			}
			return applied, &InstallmentWriteError{
				Err:         err,
				GroupID:     entries[i].GroupID,
				AppliedIDs:  ids,
				FailedIndex: i + 1,
				Total:       len(entries),
			}
		}
		ids = append(ids, id)
		applied = append(applied, entries[i])
	}

	if p.Payment == model.PaymentCreditCard {
		err := e.write(ctx, func() error {
			return e.storage.IncrementCardUsedLimit(ctx, p.CardID, p.Amount)
		})
		if err != nil {
			return applied, fmt.Errorf("entries applied but card limit not updated: %w", err)
		}
	}

	slog.Debug("recorded purchase",
		"entries", len(applied),
		"amount", p.Amount,
		"installments", p.Installments)
	return applied, nil
}

// splitPurchase expands a purchase into its ledger entries without
// touching storage.
func splitPurchase(p Purchase) []model.Transaction {
	base := model.Transaction{
		Date:        p.Date,
		Description: p.Description,
		Amount:      p.Amount,
		Type:        model.TypeExpense,
		CategoryID:  p.CategoryID,
		Scope:       p.Scope,
		Payment:     p.Payment,
		CardID:      p.CardID,
	}
	if p.Installments == 1 {
		return []model.Transaction{base}
	}

	n := int64(p.Installments)
	part := p.Amount.Div(decimal.NewFromInt(n)).RoundDown(2)
	// Rounding drift lands on the first installment so the group sums
	// back to the purchase amount exactly.
	first := p.Amount.Sub(part.Mul(decimal.NewFromInt(n - 1)))

	groupID := uuid.NewString()
	entries := make([]model.Transaction, 0, p.Installments)
	for i := 1; i <= p.Installments; i++ {
		entry := base
		entry.Amount = part
		if i == 1 {
			entry.Amount = first
		}
		entry.Date = addMonthsClamped(p.Date, i-1)
		entry.Description = fmt.Sprintf("%s (%d/%d)", p.Description, i, p.Installments)
		entry.InstallmentCount = p.Installments
		entry.InstallmentIndex = i
		entry.GroupID = groupID
		entries = append(entries, entry)
	}
	return entries
}
