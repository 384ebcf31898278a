// Package demo seeds a storage backend with a realistic sample dataset so
// every command has something to show on a fresh install.
package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyflow/tally/internal/engine"
	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
)

// Stats reports what Seed wrote.
type Stats struct {
	Categories   int
	Cards        int
	Transactions int
	Bills        int
	Receivables  int
	Budgets      int
	Goals        int
}

// Steps is the number of progress units Seed reports, for callers driving a
// progress bar.
const Steps = 7

// ProgressFunc is invoked after each seeding stage completes.
type ProgressFunc func(stage string)

// Seed populates store with sample categories, a credit card, transactions
// (including an installment purchase), bills, receivables, budgets, and a
// savings goal. Dates are anchored to now so summaries and schedules have
// data in their current windows. onProgress may be nil.
func Seed(ctx context.Context, store service.Storage, now time.Time, onProgress ProgressFunc) (*Stats, error) {
	progress := func(stage string) {
		if onProgress != nil {
			onProgress(stage)
		}
	}
	eng := engine.New(store, engine.WithClock(func() time.Time { return now }))
	stats := &Stats{}

	cats, err := seedCategories(ctx, store, stats)
	if err != nil {
		return nil, err
	}
	progress("categories")

	cardID, err := seedCard(ctx, store, stats)
	if err != nil {
		return nil, err
	}
	progress("cards")

	if err := seedTransactions(ctx, store, eng, cats, cardID, now, stats); err != nil {
		return nil, err
	}
	progress("transactions")

	if err := seedBills(ctx, store, cats, now, stats); err != nil {
		return nil, err
	}
	progress("bills")

	if err := seedReceivables(ctx, store, cats, now, stats); err != nil {
		return nil, err
	}
	progress("receivables")

	if err := seedBudgets(ctx, eng, cats, now, stats); err != nil {
		return nil, err
	}
	progress("budgets")

	if err := seedGoals(ctx, store, eng, stats); err != nil {
		return nil, err
	}
	progress("goals")

	return stats, nil
}

func seedCategories(ctx context.Context, store service.Storage, stats *Stats) (map[string]string, error) {
	defs := []model.Category{
		{Name: "Groceries", Type: model.CategoryTypeExpense, Scope: model.CategoryScopeBoth, IsUserDefined: true},
		{Name: "Rent", Type: model.CategoryTypeExpense, Scope: model.CategoryScopePersonal, IsUserDefined: true},
		{Name: "Utilities", Type: model.CategoryTypeExpense, Scope: model.CategoryScopeBoth, IsUserDefined: true},
		{Name: "Electronics", Type: model.CategoryTypeExpense, Scope: model.CategoryScopePersonal, IsUserDefined: true},
		{Name: "Dining Out", Type: model.CategoryTypeExpense, Scope: model.CategoryScopePersonal, IsUserDefined: true},
		{Name: "Salary", Type: model.CategoryTypeIncome, Scope: model.CategoryScopePersonal, IsUserDefined: true},
		{Name: "Consulting", Type: model.CategoryTypeIncome, Scope: model.CategoryScopeBusiness, IsUserDefined: true},
		{Name: "Office Supplies", Type: model.CategoryTypeExpense, Scope: model.CategoryScopeBusiness, IsUserDefined: true},
	}

	ids := make(map[string]string, len(defs))
	for i := range defs {
		id, err := store.CreateCategory(ctx, &defs[i])
		if err != nil {
			return nil, fmt.Errorf("seeding category %q: %w", defs[i].Name, err)
		}
		ids[defs[i].Name] = id
		stats.Categories++
	}
	return ids, nil
}

func seedCard(ctx context.Context, store service.Storage, stats *Stats) (string, error) {
	card := &model.CreditCard{
		Name:       "Everyday Card",
		LastDigits: "4821",
		Brand:      "visa",
		Limit:      decimal.RequireFromString("5000"),
		DueDay:     10,
		ClosingDay: 3,
		Scope:      model.ScopePersonal,
	}
	id, err := store.CreateCard(ctx, card)
	if err != nil {
		return "", fmt.Errorf("seeding card: %w", err)
	}
	stats.Cards++
	return id, nil
}

func seedTransactions(ctx context.Context, store service.Storage, eng *engine.Engine, cats map[string]string, cardID string, now time.Time, stats *Stats) error {
	plain := []model.Transaction{
		{
			Date:        now.AddDate(0, 0, -2),
			Description: "Weekly groceries",
			Amount:      decimal.RequireFromString("84.37"),
			Type:        model.TypeExpense,
			CategoryID:  cats["Groceries"],
			Scope:       model.ScopePersonal,
			Payment:     model.PaymentDebit,
		},
		{
			Date:        now.AddDate(0, 0, -5),
			Description: "Monthly salary",
			Amount:      decimal.RequireFromString("4200.00"),
			Type:        model.TypeIncome,
			CategoryID:  cats["Salary"],
			Scope:       model.ScopePersonal,
			Payment:     model.PaymentTransfer,
		},
		{
			Date:        now.AddDate(0, -1, 0),
			Description: "Last month rent",
			Amount:      decimal.RequireFromString("1450.00"),
			Type:        model.TypeExpense,
			CategoryID:  cats["Rent"],
			Scope:       model.ScopePersonal,
			Payment:     model.PaymentTransfer,
		},
		{
			Date:        now.AddDate(0, 0, -3),
			Description: "Client retainer",
			Amount:      decimal.RequireFromString("1800.00"),
			Type:        model.TypeIncome,
			CategoryID:  cats["Consulting"],
			Scope:       model.ScopeBusiness,
			Payment:     model.PaymentTransfer,
		},
		{
			Date:        now.AddDate(0, 0, -1),
			Description: "Printer paper",
			Amount:      decimal.RequireFromString("23.90"),
			Type:        model.TypeExpense,
			CategoryID:  cats["Office Supplies"],
			Scope:       model.ScopeBusiness,
			Payment:     model.PaymentDebit,
		},
	}
	for i := range plain {
		if _, err := store.AddTransaction(ctx, &plain[i]); err != nil {
			return fmt.Errorf("seeding transaction %q: %w", plain[i].Description, err)
		}
		stats.Transactions++
	}

	// Installment purchase spread over three card invoices.
	entries, err := eng.RecordPurchase(ctx, engine.Purchase{
		Date:         now.AddDate(0, -1, 0),
		Description:  "Laptop",
		Amount:       decimal.RequireFromString("2399.00"),
		CategoryID:   cats["Electronics"],
		Scope:        model.ScopePersonal,
		Payment:      model.PaymentCreditCard,
		CardID:       cardID,
		Installments: 3,
	})
	if err != nil {
		return fmt.Errorf("seeding installment purchase: %w", err)
	}
	stats.Transactions += len(entries)

	dinner, err := eng.RecordPurchase(ctx, engine.Purchase{
		Date:         now.AddDate(0, 0, -4),
		Description:  "Team dinner",
		Amount:       decimal.RequireFromString("112.80"),
		CategoryID:   cats["Dining Out"],
		Scope:        model.ScopePersonal,
		Payment:      model.PaymentCreditCard,
		CardID:       cardID,
		Installments: 1,
	})
	if err != nil {
		return fmt.Errorf("seeding card purchase: %w", err)
	}
	stats.Transactions += len(dinner)
	return nil
}

func seedBills(ctx context.Context, store service.Storage, cats map[string]string, now time.Time, stats *Stats) error {
	bills := []model.Bill{
		{
			Description: "Rent",
			Amount:      decimal.RequireFromString("1450.00"),
			CategoryID:  cats["Rent"],
			DueDate:     now.AddDate(0, 0, 2),
			Status:      model.ObligationPending,
			Recurrence:  model.RecurrenceMonthly,
			Scope:       model.ScopePersonal,
		},
		{
			Description: "Electric bill",
			Amount:      decimal.RequireFromString("96.40"),
			CategoryID:  cats["Utilities"],
			DueDate:     now.AddDate(0, 0, -1),
			Status:      model.ObligationPending,
			Recurrence:  model.RecurrenceMonthly,
			Scope:       model.ScopePersonal,
		},
		{
			Description: "Domain renewal",
			Amount:      decimal.RequireFromString("14.99"),
			CategoryID:  cats["Office Supplies"],
			DueDate:     now.AddDate(0, 0, 20),
			Status:      model.ObligationPending,
			Recurrence:  model.RecurrenceYearly,
			Scope:       model.ScopeBusiness,
		},
	}
	for i := range bills {
		if _, err := store.CreateBill(ctx, &bills[i]); err != nil {
			return fmt.Errorf("seeding bill %q: %w", bills[i].Description, err)
		}
		stats.Bills++
	}
	return nil
}

func seedReceivables(ctx context.Context, store service.Storage, cats map[string]string, now time.Time, stats *Stats) error {
	receivables := []model.Receivable{
		{
			Description:  "Consulting invoice #42",
			Payer:        "Acme Corp",
			Amount:       decimal.RequireFromString("2500.00"),
			CategoryID:   cats["Consulting"],
			ExpectedDate: now.AddDate(0, 0, 5),
			Status:       model.ObligationPending,
			Recurrence:   model.RecurrenceOnce,
			Scope:        model.ScopeBusiness,
		},
		{
			Description:  "Monthly retainer",
			Payer:        "Globex",
			Amount:       decimal.RequireFromString("1800.00"),
			CategoryID:   cats["Consulting"],
			ExpectedDate: now.AddDate(0, 0, 12),
			Status:       model.ObligationPending,
			Recurrence:   model.RecurrenceMonthly,
			Scope:        model.ScopeBusiness,
		},
	}
	for i := range receivables {
		if _, err := store.CreateReceivable(ctx, &receivables[i]); err != nil {
			return fmt.Errorf("seeding receivable %q: %w", receivables[i].Description, err)
		}
		stats.Receivables++
	}
	return nil
}

func seedBudgets(ctx context.Context, eng *engine.Engine, cats map[string]string, now time.Time, stats *Stats) error {
	month := model.MonthOf(now)
	limits := map[string]string{
		"Groceries":  "500.00",
		"Dining Out": "200.00",
		"Utilities":  "150.00",
	}
	for name, limit := range limits {
		if _, err := eng.SetBudget(ctx, cats[name], month, model.ScopePersonal, decimal.RequireFromString(limit)); err != nil {
			return fmt.Errorf("seeding budget for %q: %w", name, err)
		}
		stats.Budgets++
	}
	return nil
}

func seedGoals(ctx context.Context, store service.Storage, eng *engine.Engine, stats *Stats) error {
	goal := &model.Goal{
		Title:        "Emergency fund",
		TargetAmount: decimal.RequireFromString("10000.00"),
	}
	id, err := store.CreateGoal(ctx, goal)
	if err != nil {
		return fmt.Errorf("seeding goal: %w", err)
	}
	if _, err := eng.Deposit(ctx, id, decimal.RequireFromString("3250.00")); err != nil {
		return fmt.Errorf("seeding goal deposit: %w", err)
	}
	stats.Goals++
	return nil
}
