package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
)

// invoiceWindow is the fixed number of billing periods InvoiceCycle
// returns: the current month plus the two before it.
const invoiceWindow = 3

// InvoiceCycle derives a card's rolling invoices for the last three
// billing months, newest first. Each invoice collects the card's
// credit_card expense entries dated inside its calendar month; the due
// date is the card's due day within that month, clamped to shorter
// months. Status follows recency rank: the current month is open, the
// previous one closed, anything older paid. Invoices are projections and
// are never stored.
func (e *Engine) InvoiceCycle(ctx context.Context, cardID string) ([]model.CardInvoice, error) {
	card, err := e.storage.GetCardByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	invoices := make([]model.CardInvoice, 0, invoiceWindow)

	month := model.MonthOf(now)
	for i := 0; i < invoiceWindow; i++ {
		invoice, err := e.buildInvoice(ctx, card, month, i)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
		month = month.Prev()
	}
	return invoices, nil
}

func (e *Engine) buildInvoice(ctx context.Context, card *model.CreditCard, month model.Month, offset int) (model.CardInvoice, error) {
	start := month.Start()
	end := month.End().Add(-time.Nanosecond)

	transactions, err := e.storage.ListTransactions(ctx, service.TransactionFilter{
		Scope:     card.Scope,
		StartDate: &start,
		EndDate:   &end,
		CardID:    card.ID,
		Payment:   model.PaymentCreditCard,
		Type:      model.TypeExpense,
	})
	if err != nil {
		return model.CardInvoice{}, err
	}

	total := decimal.Zero
	ids := make([]string, 0, len(transactions))
	for _, txn := range transactions {
		total = total.Add(txn.Amount)
		ids = append(ids, txn.ID)
	}

	status := model.InvoicePaid
	switch offset {
	case 0:
		status = model.InvoiceOpen
	case 1:
		status = model.InvoiceClosed
	}

	return model.CardInvoice{
		CardID:         card.ID,
		Month:          month,
		Total:          total,
		DueDate:        dayInMonth(month, card.DueDay),
		Status:         status,
		TransactionIDs: ids,
	}, nil
}
