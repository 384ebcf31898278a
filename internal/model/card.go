package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditCard is a registered card whose expense entries roll into monthly
// invoices. UsedLimit is a cached view of outstanding credit_card entries;
// it grows when purchases are recorded and is never decremented by the
// engine (settling an invoice is an external accounting action).
type CreditCard struct {
	ID         string
	Name       string
	LastDigits string
	Brand      string
	Limit      decimal.Decimal
	UsedLimit  decimal.Decimal
	DueDay     int // 1..31, clamped to shorter months
	ClosingDay int // 1..31
	Scope      Scope
}

// InvoiceStatus is the lifecycle of a derived monthly invoice.
type InvoiceStatus string

const (
	// InvoiceOpen is the current, still-accumulating invoice.
	InvoiceOpen InvoiceStatus = "open"
	// InvoiceClosed is the most recent completed invoice.
	InvoiceClosed InvoiceStatus = "closed"
	// InvoicePaid marks invoices older than the closed one.
	InvoicePaid InvoiceStatus = "paid"
)

// CardInvoice is one month of a card's billing cycle. It is recomputed from
// the ledger on every read and never persisted.
type CardInvoice struct {
	CardID         string
	Month          Month
	Total          decimal.Decimal
	DueDate        time.Time
	Status         InvoiceStatus
	TransactionIDs []string
}
