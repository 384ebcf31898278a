package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
)

// forEachBackend runs a subtest against every storage implementation so
// backends stay interchangeable.
func forEachBackend(t *testing.T, fn func(t *testing.T, store service.Storage)) {
	t.Helper()

	t.Run("sqlite", func(t *testing.T) {
		store, err := NewSQLiteStorage(":memory:")
		require.NoError(t, err)
		require.NoError(t, store.Migrate(context.Background()))
		t.Cleanup(func() { _ = store.Close() })
		fn(t, store)
	})

	t.Run("memory", func(t *testing.T) {
		store := NewMemoryStorage()
		require.NoError(t, store.Migrate(context.Background()))
		fn(t, store)
	})
}

func seedCategory(t *testing.T, store service.Storage, name string, ctype model.CategoryType, scope model.CategoryScope) string {
	t.Helper()
	id, err := store.CreateCategory(context.Background(), &model.Category{
		Name:          name,
		Type:          ctype,
		Scope:         scope,
		IsUserDefined: true,
	})
	require.NoError(t, err)
	return id
}

func testDate(day int) time.Time {
	return time.Date(2024, time.May, day, 0, 0, 0, 0, time.UTC)
}

func TestTransactionLifecycle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store service.Storage) {
		ctx := context.Background()
		catID := seedCategory(t, store, "Groceries", model.CategoryTypeExpense, model.CategoryScopeBoth)

		txn := &model.Transaction{
			Date:        testDate(10),
			Description: "Weekly shop",
			Amount:      decimal.RequireFromString("84.37"),
			Type:        model.TypeExpense,
			CategoryID:  catID,
			Scope:       model.ScopePersonal,
			Payment:     model.PaymentDebit,
		}
		id, err := store.AddTransaction(ctx, txn)
		require.NoError(t, err)
		require.NotEmpty(t, id)

		got, err := store.GetTransactionByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Weekly shop", got.Description)
		assert.True(t, got.Amount.Equal(decimal.RequireFromString("84.37")))
		assert.Equal(t, model.ScopePersonal, got.Scope)

		got.Description = "Groceries run"
		got.Amount = decimal.RequireFromString("90.00")
		require.NoError(t, store.UpdateTransaction(ctx, got))

		updated, err := store.GetTransactionByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Groceries run", updated.Description)
		assert.True(t, updated.Amount.Equal(decimal.RequireFromString("90.00")))

		require.NoError(t, store.RemoveTransaction(ctx, id))

		_, err = store.GetTransactionByID(ctx, id)
		var notFound *common.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestTransactionNotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store service.Storage) {
		ctx := context.Background()

		_, err := store.GetTransactionByID(ctx, "missing")
		assert.ErrorIs(t, err, common.ErrNotFound)

		err = store.RemoveTransaction(ctx, "missing")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestTransactionValidation(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store service.Storage) {
		ctx := context.Background()
		catID := seedCategory(t, store, "Groceries", model.CategoryTypeExpense, model.CategoryScopeBoth)

		base := model.Transaction{
			Date:        testDate(10),
			Description: "Shop",
			Amount:      decimal.RequireFromString("10.00"),
			Type:        model.TypeExpense,
			CategoryID:  catID,
			Scope:       model.ScopePersonal,
			Payment:     model.PaymentDebit,
		}

		var validationErr *common.ValidationError

		negative := base
		negative.Amount = decimal.RequireFromString("-5.00")
		_, err := store.AddTransaction(ctx, &negative)
		assert.ErrorAs(t, err, &validationErr)

		badScope := base
		badScope.Scope = model.Scope("household")
		_, err = store.AddTransaction(ctx, &badScope)
		assert.ErrorAs(t, err, &validationErr)

		cardless := base
		cardless.Payment = model.PaymentCreditCard
		_, err = store.AddTransaction(ctx, &cardless)
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestTransactionHashDeduplication(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store service.Storage) {
		ctx := context.Background()
		catID := seedCategory(t, store, "Groceries", model.CategoryTypeExpense, model.CategoryScopeBoth)

		imported := model.Transaction{
			Date:        testDate(10),
			Description: "STARBUCKS",
			Amount:      decimal.RequireFromString("5.75"),
			Type:        model.TypeExpense,
			CategoryID:  catID,
			Scope:       model.ScopePersonal,
			Payment:     model.PaymentDebit,
		}
		imported.Hash = imported.GenerateHash()

		_, err := store.AddTransaction(ctx, &imported)
		require.NoError(t, err)

		// Re-importing the same statement line collides on the hash.
		again := imported
		again.ID = ""
		_, err = store.AddTransaction(ctx, &again)
		assert.ErrorIs(t, err, common.ErrDuplicateEntry)
	})
}

func TestTransactionManualDuplicatesAllowed(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store service.Storage) {
		ctx := context.Background()
		catID := seedCategory(t, store, "Groceries", model.CategoryTypeExpense, model.CategoryScopeBoth)

		// Two identical manual entries on the same day both land.
		for i := 0; i < 2; i++ {
			txn := model.Transaction{
				Date:        testDate(10),
				Description: "Coffee",
				Amount:      decimal.RequireFromString("4.50"),
				Type:        model.TypeExpense,
				CategoryID:  catID,
				Scope:       model.ScopePersonal,
				Payment:     model.PaymentCash,
			}
			_, err := store.AddTransaction(ctx, &txn)
			require.NoError(t, err)
		}

		txns, err := store.ListTransactions(ctx, service.TransactionFilter{Scope: model.ScopePersonal})
		require.NoError(t, err)
		assert.Len(t, txns, 2)
	})
}

func TestListTransactionsFilters(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store service.Storage) {
		ctx := context.Background()
		groceries := seedCategory(t, store, "Groceries", model.CategoryTypeExpense, model.CategoryScopeBoth)
		salary := seedCategory(t, store, "Salary", model.CategoryTypeIncome, model.CategoryScopePersonal)

		entries := []model.Transaction{
			{Date: testDate(5), Description: "Shop A", Amount: decimal.RequireFromString("20.00"),
				Type: model.TypeExpense, CategoryID: groceries, Scope: model.ScopePersonal, Payment: model.PaymentDebit},
			{Date: testDate(12), Description: "Shop B", Amount: decimal.RequireFromString("30.00"),
				Type: model.TypeExpense, CategoryID: groceries, Scope: model.ScopePersonal, Payment: model.PaymentCash},
			{Date: testDate(20), Description: "Paycheck", Amount: decimal.RequireFromString("4000.00"),
				Type: model.TypeIncome, CategoryID: salary, Scope: model.ScopePersonal, Payment: model.PaymentTransfer},
			{Date: testDate(8), Description: "Supplies", Amount: decimal.RequireFromString("15.00"),
				Type: model.TypeExpense, CategoryID: groceries, Scope: model.ScopeBusiness, Payment: model.PaymentDebit},
		}
		for i := range entries {
			_, err := store.AddTransaction(ctx, &entries[i])
			require.NoError(t, err)
		}

		personal, err := store.ListTransactions(ctx, service.TransactionFilter{Scope: model.ScopePersonal})
		require.NoError(t, err)
		require.Len(t, personal, 3)
		// Oldest first.
		assert.Equal(t, "Shop A", personal[0].Description)
		assert.Equal(t, "Paycheck", personal[2].Description)

		start, end := testDate(10), testDate(15)
		windowed, err := store.ListTransactions(ctx, service.TransactionFilter{
			Scope: model.ScopePersonal, StartDate: &start, EndDate: &end,
		})
		require.NoError(t, err)
		require.Len(t, windowed, 1)
		assert.Equal(t, "Shop B", windowed[0].Description)

		incomes, err := store.ListTransactions(ctx, service.TransactionFilter{
			Scope: model.ScopePersonal, Type: model.TypeIncome,
		})
		require.NoError(t, err)
		require.Len(t, incomes, 1)

		cash, err := store.ListTransactions(ctx, service.TransactionFilter{
			Scope: model.ScopePersonal, Payment: model.PaymentCash,
		})
		require.NoError(t, err)
		require.Len(t, cash, 1)

		_, err = store.ListTransactions(ctx, service.TransactionFilter{})
		var validationErr *common.ValidationError
		assert.ErrorAs(t, err, &validationErr, "scope is mandatory")
	})
}

func TestCategoryScopeVisibility(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store service.Storage) {
		ctx := context.Background()
		seedCategory(t, store, "Groceries", model.CategoryTypeExpense, model.CategoryScopeBoth)
		seedCategory(t, store, "Salary", model.CategoryTypeIncome, model.CategoryScopePersonal)
		consulting := seedCategory(t, store, "Consulting", model.CategoryTypeIncome, model.CategoryScopeBusiness)

		personal, err := store.GetCategories(ctx, model.ScopePersonal)
		require.NoError(t, err)
		require.Len(t, personal, 2)

		business, err := store.GetCategories(ctx, model.ScopeBusiness)
		require.NoError(t, err)
		require.Len(t, business, 2)

		// A business-only category rejects personal entries.
		txn := model.Transaction{
			Date:        testDate(10),
			Description: "Misfiled",
			Amount:      decimal.RequireFromString("10.00"),
			Type:        model.TypeIncome,
			CategoryID:  consulting,
			Scope:       model.ScopePersonal,
			Payment:     model.PaymentCash,
		}
		_, err = store.AddTransaction(ctx, &txn)
		assert.Error(t, err)
	})
}

func TestDeleteCategoryGuards(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store service.Storage) {
		ctx := context.Background()
		used := seedCategory(t, store, "Groceries", model.CategoryTypeExpense, model.CategoryScopeBoth)
		unused := seedCategory(t, store, "Hobbies", model.CategoryTypeExpense, model.CategoryScopePersonal)

		builtinID, err := store.CreateCategory(ctx, &model.Category{
			Name:  "Uncategorized",
			Type:  model.CategoryTypeExpense,
			Scope: model.CategoryScopeBoth,
		})
		require.NoError(t, err)

		txn := model.Transaction{
			Date:        testDate(10),
			Description: "Shop",
			Amount:      decimal.RequireFromString("10.00"),
			Type:        model.TypeExpense,
			CategoryID:  used,
			Scope:       model.ScopePersonal,
			Payment:     model.PaymentCash,
		}
		_, err = store.AddTransaction(ctx, &txn)
		require.NoError(t, err)

		// Referenced and built-in categories cannot be deleted.
		assert.Error(t, store.DeleteCategory(ctx, used))
		assert.Error(t, store.DeleteCategory(ctx, builtinID))

		require.NoError(t, store.DeleteCategory(ctx, unused))
		_, err = store.GetCategoryByID(ctx, unused)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestCardUsedLimit(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store service.Storage) {
		ctx := context.Background()

		id, err := store.CreateCard(ctx, &model.CreditCard{
			Name:       "Everyday",
			LastDigits: "4821",
			Brand:      "visa",
			Limit:      decimal.RequireFromString("5000"),
			DueDay:     10,
			ClosingDay: 3,
			Scope:      model.ScopePersonal,
		})
		require.NoError(t, err)

		require.NoError(t, store.IncrementCardUsedLimit(ctx, id, decimal.RequireFromString("150.25")))
		require.NoError(t, store.IncrementCardUsedLimit(ctx, id, decimal.RequireFromString("49.75")))

		card, err := store.GetCardByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, card.UsedLimit.Equal(decimal.RequireFromString("200.00")), "got %s", card.UsedLimit)

		err = store.IncrementCardUsedLimit(ctx, "missing", decimal.RequireFromString("1.00"))
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestBillLifecycle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store service.Storage) {
		ctx := context.Background()
		catID := seedCategory(t, store, "Utilities", model.CategoryTypeExpense, model.CategoryScopeBoth)

		id, err := store.CreateBill(ctx, &model.Bill{
			Description: "Electric",
			Amount:      decimal.RequireFromString("96.40"),
			CategoryID:  catID,
			DueDate:     testDate(20),
			Status:      model.ObligationPending,
			Recurrence:  model.RecurrenceMonthly,
			Scope:       model.ScopePersonal,
		})
		require.NoError(t, err)

		bill, err := store.GetBillByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.ObligationPending, bill.Status)

		bill.Status = model.ObligationPaid
		require.NoError(t, store.UpdateBill(ctx, bill))

		bills, err := store.GetBills(ctx, model.ScopePersonal)
		require.NoError(t, err)
		require.Len(t, bills, 1)
		assert.Equal(t, model.ObligationPaid, bills[0].Status)
	})
}

func TestBillsOrderedByDueDate(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store service.Storage) {
		ctx := context.Background()
		catID := seedCategory(t, store, "Utilities", model.CategoryTypeExpense, model.CategoryScopeBoth)

		for _, day := range []int{25, 5, 15} {
			_, err := store.CreateBill(ctx, &model.Bill{
				Description: "Bill",
				Amount:      decimal.RequireFromString("10.00"),
				CategoryID:  catID,
				DueDate:     testDate(day),
				Status:      model.ObligationPending,
				Recurrence:  model.RecurrenceOnce,
				Scope:       model.ScopePersonal,
			})
			require.NoError(t, err)
		}

		bills, err := store.GetBills(ctx, model.ScopePersonal)
		require.NoError(t, err)
		require.Len(t, bills, 3)
		assert.True(t, bills[0].DueDate.Before(bills[1].DueDate))
		assert.True(t, bills[1].DueDate.Before(bills[2].DueDate))
	})
}

func TestReceivableLifecycle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store service.Storage) {
		ctx := context.Background()
		catID := seedCategory(t, store, "Consulting", model.CategoryTypeIncome, model.CategoryScopeBusiness)

		id, err := store.CreateReceivable(ctx, &model.Receivable{
			Description:  "Invoice #42",
			Payer:        "Acme Corp",
			Amount:       decimal.RequireFromString("2500.00"),
			CategoryID:   catID,
			ExpectedDate: testDate(25),
			Status:       model.ObligationPending,
			Recurrence:   model.RecurrenceOnce,
			Scope:        model.ScopeBusiness,
		})
		require.NoError(t, err)

		receivable, err := store.GetReceivableByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Acme Corp", receivable.Payer)

		receivable.Status = model.ObligationReceived
		require.NoError(t, store.UpdateReceivable(ctx, receivable))

		receivables, err := store.GetReceivables(ctx, model.ScopeBusiness)
		require.NoError(t, err)
		require.Len(t, receivables, 1)
		assert.Equal(t, model.ObligationReceived, receivables[0].Status)
	})
}

func TestBudgetUpsert(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store service.Storage) {
		ctx := context.Background()
		catID := seedCategory(t, store, "Groceries", model.CategoryTypeExpense, model.CategoryScopeBoth)
		month := model.Month{Year: 2024, Month: time.May}

		_, err := store.UpsertBudget(ctx, &model.Budget{
			CategoryID: catID, Month: month, Scope: model.ScopePersonal,
			Amount: decimal.RequireFromString("200.00"),
		})
		require.NoError(t, err)

		// Same key replaces the amount instead of adding a row.
		_, err = store.UpsertBudget(ctx, &model.Budget{
			CategoryID: catID, Month: month, Scope: model.ScopePersonal,
			Amount: decimal.RequireFromString("350.00"),
		})
		require.NoError(t, err)

		budgets, err := store.GetBudgets(ctx, month, model.ScopePersonal)
		require.NoError(t, err)
		require.Len(t, budgets, 1)
		assert.True(t, budgets[0].Amount.Equal(decimal.RequireFromString("350.00")))

		// A different scope is a separate budget.
		_, err = store.UpsertBudget(ctx, &model.Budget{
			CategoryID: catID, Month: month, Scope: model.ScopeBusiness,
			Amount: decimal.RequireFromString("100.00"),
		})
		require.NoError(t, err)

		business, err := store.GetBudgets(ctx, month, model.ScopeBusiness)
		require.NoError(t, err)
		assert.Len(t, business, 1)
	})
}

func TestGoalLifecycle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store service.Storage) {
		ctx := context.Background()

		deadline := testDate(31)
		id, err := store.CreateGoal(ctx, &model.Goal{
			Title:        "Emergency fund",
			TargetAmount: decimal.RequireFromString("10000.00"),
			Deadline:     &deadline,
		})
		require.NoError(t, err)

		goal, err := store.GetGoalByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, goal.Deadline)
		assert.True(t, goal.CurrentAmount.IsZero())

		goal.CurrentAmount = decimal.RequireFromString("500.00")
		require.NoError(t, store.UpdateGoal(ctx, goal))

		goals, err := store.GetGoals(ctx)
		require.NoError(t, err)
		require.Len(t, goals, 1)
		assert.True(t, goals[0].CurrentAmount.Equal(decimal.RequireFromString("500.00")))

		require.NoError(t, store.DeleteGoal(ctx, id))
		_, err = store.GetGoalByID(ctx, id)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestDuplicateCategoryName(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store service.Storage) {
		ctx := context.Background()
		seedCategory(t, store, "Groceries", model.CategoryTypeExpense, model.CategoryScopeBoth)

		_, err := store.CreateCategory(ctx, &model.Category{
			Name:          "Groceries",
			Type:          model.CategoryTypeExpense,
			Scope:         model.CategoryScopeBoth,
			IsUserDefined: true,
		})
		assert.ErrorIs(t, err, common.ErrDuplicateEntry)
	})
}
