package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
)

func createTestCard(t *testing.T, store service.Storage) string {
	t.Helper()
	id, err := store.CreateCard(context.Background(), &model.CreditCard{
		Name:       "Test Card",
		LastDigits: "1234",
		Brand:      "visa",
		Limit:      decimal.RequireFromString("5000"),
		DueDay:     10,
		ClosingDay: 3,
		Scope:      model.ScopePersonal,
	})
	require.NoError(t, err)
	return id
}

func TestSplitPurchase_RemainderOnFirstInstallment(t *testing.T) {
	entries := splitPurchase(Purchase{
		Date:         date(2024, time.January, 15),
		Description:  "TV",
		Amount:       decimal.RequireFromString("100.00"),
		Payment:      model.PaymentCreditCard,
		Installments: 3,
	})
	require.Len(t, entries, 3)

	assert.True(t, entries[0].Amount.Equal(decimal.RequireFromString("33.34")), "got %s", entries[0].Amount)
	assert.True(t, entries[1].Amount.Equal(decimal.RequireFromString("33.33")), "got %s", entries[1].Amount)
	assert.True(t, entries[2].Amount.Equal(decimal.RequireFromString("33.33")), "got %s", entries[2].Amount)
}

func TestSplitPurchase_SumMatchesOriginal(t *testing.T) {
	amounts := []string{"100.00", "2399.00", "0.05", "999.99", "10.00"}
	for _, a := range amounts {
		for n := 2; n <= 12; n++ {
			t.Run(fmt.Sprintf("%s_x%d", a, n), func(t *testing.T) {
				amount := decimal.RequireFromString(a)
				entries := splitPurchase(Purchase{
					Date:         date(2024, time.March, 1),
					Amount:       amount,
					Payment:      model.PaymentCreditCard,
					Installments: n,
				})
				require.Len(t, entries, n)

				sum := decimal.Zero
				for i, entry := range entries {
					sum = sum.Add(entry.Amount)
					// Rounding drift lands on the first entry only.
					if i > 1 {
						assert.True(t, entry.Amount.Equal(entries[1].Amount))
					}
					assert.True(t, entries[0].Amount.GreaterThanOrEqual(entry.Amount))
				}
				assert.True(t, sum.Equal(amount), "sum %s != original %s", sum, amount)
			})
		}
	}
}

func TestSplitPurchase_DatesClampAtMonthEnd(t *testing.T) {
	entries := splitPurchase(Purchase{
		Date:         date(2024, time.January, 31),
		Amount:       decimal.RequireFromString("300.00"),
		Payment:      model.PaymentCreditCard,
		Installments: 3,
	})
	require.Len(t, entries, 3)

	assert.Equal(t, date(2024, time.January, 31), entries[0].Date)
	assert.Equal(t, date(2024, time.February, 29), entries[1].Date)
	assert.Equal(t, date(2024, time.March, 31), entries[2].Date)
}

func TestSplitPurchase_Metadata(t *testing.T) {
	entries := splitPurchase(Purchase{
		Date:         date(2024, time.June, 10),
		Description:  "Sofa",
		Amount:       decimal.RequireFromString("900.00"),
		Payment:      model.PaymentCreditCard,
		Installments: 3,
	})
	require.Len(t, entries, 3)

	groupID := entries[0].GroupID
	require.NotEmpty(t, groupID)
	for i, entry := range entries {
		assert.Equal(t, groupID, entry.GroupID)
		assert.Equal(t, 3, entry.InstallmentCount)
		assert.Equal(t, i+1, entry.InstallmentIndex)
		assert.Equal(t, fmt.Sprintf("Sofa (%d/3)", i+1), entry.Description)
		assert.Equal(t, model.TypeExpense, entry.Type)
	}
}

func TestRecordPurchase_SingleEntry(t *testing.T) {
	now := date(2024, time.May, 15)
	eng, store, cats := newTestEngine(t, now)
	ctx := context.Background()

	entries, err := eng.RecordPurchase(ctx, Purchase{
		Date:        now,
		Description: "Weekly shop",
		Amount:      decimal.RequireFromString("54.20"),
		CategoryID:  cats["Groceries"],
		Scope:       model.ScopePersonal,
		Payment:     model.PaymentDebit,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].GroupID)
	assert.False(t, entries[0].IsInstallment())

	stored, err := store.ListTransactions(ctx, service.TransactionFilter{Scope: model.ScopePersonal})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestRecordPurchase_InstallmentsRequireCreditCard(t *testing.T) {
	eng, _, cats := newTestEngine(t, date(2024, time.May, 15))

	_, err := eng.RecordPurchase(context.Background(), Purchase{
		Date:         date(2024, time.May, 15),
		Description:  "TV",
		Amount:       decimal.RequireFromString("600.00"),
		CategoryID:   cats["Electronics"],
		Scope:        model.ScopePersonal,
		Payment:      model.PaymentDebit,
		Installments: 3,
	})
	require.Error(t, err)

	var validationErr *common.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestRecordPurchase_CreditCardUpdatesUsedLimitOnce(t *testing.T) {
	now := date(2024, time.May, 15)
	eng, store, cats := newTestEngine(t, now)
	ctx := context.Background()
	cardID := createTestCard(t, store)

	_, err := eng.RecordPurchase(ctx, Purchase{
		Date:         now,
		Description:  "Laptop",
		Amount:       decimal.RequireFromString("2399.00"),
		CategoryID:   cats["Electronics"],
		Scope:        model.ScopePersonal,
		Payment:      model.PaymentCreditCard,
		CardID:       cardID,
		Installments: 3,
	})
	require.NoError(t, err)

	card, err := store.GetCardByID(ctx, cardID)
	require.NoError(t, err)
	assert.True(t, card.UsedLimit.Equal(decimal.RequireFromString("2399.00")),
		"used limit grew by %s, want the original total once", card.UsedLimit)
}

func TestRecordPurchase_EndToEndInstallments(t *testing.T) {
	now := date(2024, time.January, 15)
	eng, store, cats := newTestEngine(t, now)
	ctx := context.Background()
	cardID := createTestCard(t, store)

	entries, err := eng.RecordPurchase(ctx, Purchase{
		Date:         now,
		Description:  "Washer",
		Amount:       decimal.RequireFromString("300.00"),
		CategoryID:   cats["Electronics"],
		Scope:        model.ScopePersonal,
		Payment:      model.PaymentCreditCard,
		CardID:       cardID,
		Installments: 3,
	})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Group filter retrieves the whole split.
	stored, err := store.ListTransactions(ctx, service.TransactionFilter{
		Scope:   model.ScopePersonal,
		GroupID: entries[0].GroupID,
	})
	require.NoError(t, err)
	require.Len(t, stored, 3)

	sum := decimal.Zero
	for _, txn := range stored {
		sum = sum.Add(txn.Amount)
	}
	assert.True(t, sum.Equal(decimal.RequireFromString("300.00")))

	assert.Equal(t, date(2024, time.January, 15), stored[0].Date)
	assert.Equal(t, date(2024, time.February, 15), stored[1].Date)
	assert.Equal(t, date(2024, time.March, 15), stored[2].Date)
}

func TestRecordPurchase_RejectsNonPositiveAmount(t *testing.T) {
	eng, _, cats := newTestEngine(t, date(2024, time.May, 15))

	_, err := eng.RecordPurchase(context.Background(), Purchase{
		Date:        date(2024, time.May, 15),
		Description: "Refund",
		Amount:      decimal.Zero,
		CategoryID:  cats["Groceries"],
		Scope:       model.ScopePersonal,
		Payment:     model.PaymentCash,
	})
	assert.Error(t, err)
}
