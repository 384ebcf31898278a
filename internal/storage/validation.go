package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransaction checks everything about a ledger entry that does
// not require a store lookup. Category existence is checked by the store.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if strings.TrimSpace(txn.Description) == "" {
		return common.NewValidationError("description", "cannot be empty")
	}
	if txn.Date.IsZero() {
		return common.NewValidationError("date", "cannot be zero")
	}
	if !txn.Amount.IsPositive() {
		return common.NewValidationError("amount", "must be positive")
	}
	if txn.Type != model.TypeIncome && txn.Type != model.TypeExpense {
		return common.NewValidationError("type", fmt.Sprintf("unknown type %q", txn.Type))
	}
	if !txn.Scope.Valid() {
		return common.NewValidationError("scope", fmt.Sprintf("unknown scope %q", txn.Scope))
	}
	if txn.CategoryID == "" {
		return common.NewValidationError("categoryId", "cannot be empty")
	}
	switch txn.Payment {
	case model.PaymentCash, model.PaymentDebit, model.PaymentTransfer:
	case model.PaymentCreditCard:
		if txn.CardID == "" {
			return common.NewValidationError("cardId", "required for credit_card payment")
		}
	default:
		return common.NewValidationError("paymentMethod", fmt.Sprintf("unknown method %q", txn.Payment))
	}
	if txn.GroupID != "" {
		if txn.InstallmentCount < 2 {
			return common.NewValidationError("installmentCount", "must be at least 2 in a group")
		}
		if txn.InstallmentIndex < 1 || txn.InstallmentIndex > txn.InstallmentCount {
			return common.NewValidationError("installmentIndex",
				fmt.Sprintf("index %d outside [1, %d]", txn.InstallmentIndex, txn.InstallmentCount))
		}
	} else if txn.InstallmentCount != 0 || txn.InstallmentIndex != 0 {
		return common.NewValidationError("installmentGroupId", "required when installment fields are set")
	}
	return nil
}

func validateCategory(category *model.Category) error {
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if strings.TrimSpace(category.Name) == "" {
		return common.NewValidationError("name", "cannot be empty")
	}
	if category.Type != model.CategoryTypeIncome && category.Type != model.CategoryTypeExpense {
		return common.NewValidationError("type", fmt.Sprintf("unknown type %q", category.Type))
	}
	switch category.Scope {
	case model.CategoryScopePersonal, model.CategoryScopeBusiness, model.CategoryScopeBoth:
	default:
		return common.NewValidationError("scope", fmt.Sprintf("unknown scope %q", category.Scope))
	}
	return nil
}

func validateCard(card *model.CreditCard) error {
	if card == nil {
		return fmt.Errorf("%w: card", ErrNilParameter)
	}
	if strings.TrimSpace(card.Name) == "" {
		return common.NewValidationError("name", "cannot be empty")
	}
	if !card.Limit.IsPositive() {
		return common.NewValidationError("limit", "must be positive")
	}
	if card.UsedLimit.IsNegative() {
		return common.NewValidationError("usedLimit", "cannot be negative")
	}
	if card.DueDay < 1 || card.DueDay > 31 {
		return common.NewValidationError("dueDay", "must be in [1, 31]")
	}
	if card.ClosingDay < 1 || card.ClosingDay > 31 {
		return common.NewValidationError("closingDay", "must be in [1, 31]")
	}
	if !card.Scope.Valid() {
		return common.NewValidationError("scope", fmt.Sprintf("unknown scope %q", card.Scope))
	}
	return nil
}

func validateBill(bill *model.Bill) error {
	if bill == nil {
		return fmt.Errorf("%w: bill", ErrNilParameter)
	}
	if strings.TrimSpace(bill.Description) == "" {
		return common.NewValidationError("description", "cannot be empty")
	}
	if !bill.Amount.IsPositive() {
		return common.NewValidationError("amount", "must be positive")
	}
	if bill.DueDate.IsZero() {
		return common.NewValidationError("dueDate", "cannot be zero")
	}
	if bill.CategoryID == "" {
		return common.NewValidationError("categoryId", "cannot be empty")
	}
	if !bill.Recurrence.Valid() {
		return common.NewValidationError("recurrence", fmt.Sprintf("unknown recurrence %q", bill.Recurrence))
	}
	if !bill.Scope.Valid() {
		return common.NewValidationError("scope", fmt.Sprintf("unknown scope %q", bill.Scope))
	}
	return nil
}

func validateReceivable(receivable *model.Receivable) error {
	if receivable == nil {
		return fmt.Errorf("%w: receivable", ErrNilParameter)
	}
	if strings.TrimSpace(receivable.Description) == "" {
		return common.NewValidationError("description", "cannot be empty")
	}
	if !receivable.Amount.IsPositive() {
		return common.NewValidationError("amount", "must be positive")
	}
	if receivable.ExpectedDate.IsZero() {
		return common.NewValidationError("expectedDate", "cannot be zero")
	}
	if receivable.CategoryID == "" {
		return common.NewValidationError("categoryId", "cannot be empty")
	}
	if !receivable.Recurrence.Valid() {
		return common.NewValidationError("recurrence", fmt.Sprintf("unknown recurrence %q", receivable.Recurrence))
	}
	if !receivable.Scope.Valid() {
		return common.NewValidationError("scope", fmt.Sprintf("unknown scope %q", receivable.Scope))
	}
	return nil
}

func validateBudget(budget *model.Budget) error {
	if budget == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}
	if budget.CategoryID == "" {
		return common.NewValidationError("categoryId", "cannot be empty")
	}
	if !budget.Amount.IsPositive() {
		return common.NewValidationError("amount", "must be positive")
	}
	if budget.Month.Year == 0 {
		return common.NewValidationError("month", "cannot be zero")
	}
	if !budget.Scope.Valid() {
		return common.NewValidationError("scope", fmt.Sprintf("unknown scope %q", budget.Scope))
	}
	return nil
}

func validateGoal(goal *model.Goal) error {
	if goal == nil {
		return fmt.Errorf("%w: goal", ErrNilParameter)
	}
	if strings.TrimSpace(goal.Title) == "" {
		return common.NewValidationError("title", "cannot be empty")
	}
	if !goal.TargetAmount.IsPositive() {
		return common.NewValidationError("targetAmount", "must be positive")
	}
	if goal.CurrentAmount.IsNegative() {
		return common.NewValidationError("currentAmount", "cannot be negative")
	}
	return nil
}
