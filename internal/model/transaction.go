package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType gives a ledger entry its direction. Amounts are always
// positive; income adds to the balance, expense subtracts.
type TransactionType string

const (
	// TypeIncome marks an entry that adds to the balance.
	TypeIncome TransactionType = "income"
	// TypeExpense marks an entry that subtracts from the balance.
	TypeExpense TransactionType = "expense"
)

// PaymentMethod records how an entry was settled. Credit-card entries feed
// the card's invoice cycle.
type PaymentMethod string

const (
	// PaymentCash covers cash and anything without a tracked instrument.
	PaymentCash PaymentMethod = "cash"
	// PaymentDebit covers debit-card and direct account payments.
	PaymentDebit PaymentMethod = "debit"
	// PaymentTransfer covers bank transfers.
	PaymentTransfer PaymentMethod = "transfer"
	// PaymentCreditCard covers purchases billed to a registered card.
	PaymentCreditCard PaymentMethod = "credit_card"
)

// Transaction is one dated monetary event in the ledger.
type Transaction struct {
	Date        time.Time
	ID          string
	Description string
	Hash        string
	Amount      decimal.Decimal
	Type        TransactionType
	CategoryID  string
	Scope       Scope
	Payment     PaymentMethod

	// Card fields, set only when Payment is PaymentCreditCard.
	CardID string

	// Installment fields, set only on entries produced by splitting a
	// purchase. Index runs 1..Count within a group; the group shares
	// GroupID and Count.
	InstallmentCount int
	InstallmentIndex int
	GroupID          string
}

// IsInstallment reports whether the entry belongs to an installment group.
func (t *Transaction) IsInstallment() bool {
	return t.GroupID != ""
}

// GenerateHash creates a content hash for duplicate detection on import.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount.StringFixed(2),
		t.Description,
		t.Scope,
		t.CardID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Signed returns the amount with its direction applied: positive for
// income, negative for expense.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Type == TypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}
