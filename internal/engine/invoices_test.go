package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyflow/tally/internal/model"
)

func TestInvoiceCycle_StatusByRecency(t *testing.T) {
	now := date(2024, time.May, 15)
	eng, store, cats := newTestEngine(t, now)
	ctx := context.Background()
	cardID := createTestCard(t, store)

	// One card expense per month across the window.
	for _, d := range []time.Time{
		date(2024, time.May, 5),
		date(2024, time.April, 20),
		date(2024, time.March, 2),
	} {
		_, err := store.AddTransaction(ctx, &model.Transaction{
			Date:        d,
			Description: "Card spend",
			Amount:      decimal.RequireFromString("100.00"),
			Type:        model.TypeExpense,
			CategoryID:  cats["Groceries"],
			Scope:       model.ScopePersonal,
			Payment:     model.PaymentCreditCard,
			CardID:      cardID,
		})
		require.NoError(t, err)
	}

	invoices, err := eng.InvoiceCycle(ctx, cardID)
	require.NoError(t, err)
	require.Len(t, invoices, 3)

	assert.Equal(t, model.Month{Year: 2024, Month: time.May}, invoices[0].Month)
	assert.Equal(t, model.InvoiceOpen, invoices[0].Status)
	assert.Equal(t, model.Month{Year: 2024, Month: time.April}, invoices[1].Month)
	assert.Equal(t, model.InvoiceClosed, invoices[1].Status)
	assert.Equal(t, model.Month{Year: 2024, Month: time.March}, invoices[2].Month)
	assert.Equal(t, model.InvoicePaid, invoices[2].Status)

	for _, inv := range invoices {
		assert.True(t, inv.Total.Equal(decimal.RequireFromString("100.00")), "month %s total %s", inv.Month, inv.Total)
		assert.Len(t, inv.TransactionIDs, 1)
		// Card's due day is 10.
		assert.Equal(t, dayInMonth(inv.Month, 10), inv.DueDate)
	}
}

func TestInvoiceCycle_OnlyCardExpensesCount(t *testing.T) {
	now := date(2024, time.May, 15)
	eng, store, cats := newTestEngine(t, now)
	ctx := context.Background()
	cardID := createTestCard(t, store)

	// Debit expense and income in the same month must not appear.
	_, err := store.AddTransaction(ctx, &model.Transaction{
		Date:        date(2024, time.May, 3),
		Description: "Groceries by debit",
		Amount:      decimal.RequireFromString("50.00"),
		Type:        model.TypeExpense,
		CategoryID:  cats["Groceries"],
		Scope:       model.ScopePersonal,
		Payment:     model.PaymentDebit,
	})
	require.NoError(t, err)
	_, err = store.AddTransaction(ctx, &model.Transaction{
		Date:        date(2024, time.May, 4),
		Description: "Paycheck",
		Amount:      decimal.RequireFromString("4000.00"),
		Type:        model.TypeIncome,
		CategoryID:  cats["Salary"],
		Scope:       model.ScopePersonal,
		Payment:     model.PaymentTransfer,
	})
	require.NoError(t, err)
	_, err = store.AddTransaction(ctx, &model.Transaction{
		Date:        date(2024, time.May, 6),
		Description: "Card spend",
		Amount:      decimal.RequireFromString("75.25"),
		Type:        model.TypeExpense,
		CategoryID:  cats["Groceries"],
		Scope:       model.ScopePersonal,
		Payment:     model.PaymentCreditCard,
		CardID:      cardID,
	})
	require.NoError(t, err)

	invoices, err := eng.InvoiceCycle(ctx, cardID)
	require.NoError(t, err)
	require.Len(t, invoices, 3)

	assert.True(t, invoices[0].Total.Equal(decimal.RequireFromString("75.25")), "got %s", invoices[0].Total)
	assert.True(t, invoices[1].Total.IsZero())
	assert.True(t, invoices[2].Total.IsZero())
}

func TestInvoiceCycle_DueDayClampsInShortMonths(t *testing.T) {
	now := date(2024, time.April, 10)
	eng, store, _ := newTestEngine(t, now)
	ctx := context.Background()

	cardID, err := store.CreateCard(ctx, &model.CreditCard{
		Name:       "Late Card",
		LastDigits: "9999",
		Brand:      "mastercard",
		Limit:      decimal.RequireFromString("3000"),
		DueDay:     31,
		ClosingDay: 25,
		Scope:      model.ScopePersonal,
	})
	require.NoError(t, err)

	invoices, err := eng.InvoiceCycle(ctx, cardID)
	require.NoError(t, err)
	require.Len(t, invoices, 3)

	assert.Equal(t, date(2024, time.April, 30), invoices[0].DueDate)
	assert.Equal(t, date(2024, time.March, 31), invoices[1].DueDate)
	assert.Equal(t, date(2024, time.February, 29), invoices[2].DueDate)
}

func TestInvoiceCycle_InstallmentsLandOnSeparateInvoices(t *testing.T) {
	now := date(2024, time.March, 20)
	eng, store, cats := newTestEngine(t, now)
	ctx := context.Background()
	cardID := createTestCard(t, store)

	_, err := eng.RecordPurchase(ctx, Purchase{
		Date:         date(2024, time.January, 15),
		Description:  "Washer",
		Amount:       decimal.RequireFromString("300.00"),
		CategoryID:   cats["Electronics"],
		Scope:        model.ScopePersonal,
		Payment:      model.PaymentCreditCard,
		CardID:       cardID,
		Installments: 3,
	})
	require.NoError(t, err)

	invoices, err := eng.InvoiceCycle(ctx, cardID)
	require.NoError(t, err)
	require.Len(t, invoices, 3)

	// March, February, January; each month carries one 100.00 slice.
	for _, inv := range invoices {
		assert.True(t, inv.Total.Equal(decimal.RequireFromString("100.00")),
			"month %s total %s", inv.Month, inv.Total)
	}
}

func TestInvoiceCycle_UnknownCard(t *testing.T) {
	eng, _, _ := newTestEngine(t, date(2024, time.May, 15))

	_, err := eng.InvoiceCycle(context.Background(), "missing")
	assert.Error(t, err)
}
