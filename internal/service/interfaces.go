// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyflow/tally/internal/model"
)

// TransactionFilter defines filtering options for ledger queries. Scope is
// mandatory: every read is partitioned into the personal or business
// ledger.
type TransactionFilter struct {
	Scope      model.Scope
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID string
	CardID     string
	Payment    model.PaymentMethod
	Type       model.TransactionType
	GroupID    string
}

// Storage defines the contract for our persistence layer. SQLite and the
// in-memory demo store both implement it; the engine is constructed
// against the interface and never branches on which one it got.
type Storage interface {
	// Ledger entries
	AddTransaction(ctx context.Context, txn *model.Transaction) (string, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	RemoveTransaction(ctx context.Context, id string) error
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)

	// Categories
	CreateCategory(ctx context.Context, category *model.Category) (string, error)
	GetCategoryByID(ctx context.Context, id string) (*model.Category, error)
	GetCategories(ctx context.Context, scope model.Scope) ([]model.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	// Credit cards
	CreateCard(ctx context.Context, card *model.CreditCard) (string, error)
	GetCardByID(ctx context.Context, id string) (*model.CreditCard, error)
	GetCards(ctx context.Context, scope model.Scope) ([]model.CreditCard, error)
	IncrementCardUsedLimit(ctx context.Context, id string, amount decimal.Decimal) error

	// Bills and receivables
	CreateBill(ctx context.Context, bill *model.Bill) (string, error)
	GetBillByID(ctx context.Context, id string) (*model.Bill, error)
	GetBills(ctx context.Context, scope model.Scope) ([]model.Bill, error)
	UpdateBill(ctx context.Context, bill *model.Bill) error
	CreateReceivable(ctx context.Context, receivable *model.Receivable) (string, error)
	GetReceivableByID(ctx context.Context, id string) (*model.Receivable, error)
	GetReceivables(ctx context.Context, scope model.Scope) ([]model.Receivable, error)
	UpdateReceivable(ctx context.Context, receivable *model.Receivable) error

	// Budgets
	UpsertBudget(ctx context.Context, budget *model.Budget) (string, error)
	GetBudgets(ctx context.Context, month model.Month, scope model.Scope) ([]model.Budget, error)

	// Goals
	CreateGoal(ctx context.Context, goal *model.Goal) (string, error)
	GetGoalByID(ctx context.Context, id string) (*model.Goal, error)
	GetGoals(ctx context.Context) ([]model.Goal, error)
	UpdateGoal(ctx context.Context, goal *model.Goal) error
	DeleteGoal(ctx context.Context, id string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
