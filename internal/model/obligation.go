package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recurrence is how often an obligation repeats. Settling a recurring
// obligation spawns the next occurrence; a "once" obligation does not.
type Recurrence string

const (
	// RecurrenceOnce is a non-repeating obligation.
	RecurrenceOnce Recurrence = "once"
	// RecurrenceWeekly repeats every 7 days.
	RecurrenceWeekly Recurrence = "weekly"
	// RecurrenceMonthly repeats every calendar month, day clamped.
	RecurrenceMonthly Recurrence = "monthly"
	// RecurrenceYearly repeats every calendar year, day clamped.
	RecurrenceYearly Recurrence = "yearly"
)

// Valid reports whether r is a known recurrence.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceOnce, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// ObligationStatus is the settlement state of a bill or receivable.
type ObligationStatus string

const (
	// ObligationPending means not yet settled.
	ObligationPending ObligationStatus = "pending"
	// ObligationPaid means a bill was paid.
	ObligationPaid ObligationStatus = "paid"
	// ObligationReceived means a receivable was collected.
	ObligationReceived ObligationStatus = "received"
	// ObligationOverdue means the due date passed while still pending.
	ObligationOverdue ObligationStatus = "overdue"
)

// Urgency classifies a pending obligation relative to today.
type Urgency string

const (
	// UrgencyOverdue means the due date is in the past.
	UrgencyOverdue Urgency = "overdue"
	// UrgencyDueSoon means the due date is within the next 3 days.
	UrgencyDueSoon Urgency = "due_soon"
	// UrgencyUpcoming means the due date is more than 3 days out.
	UrgencyUpcoming Urgency = "upcoming"
)

// Bill is money the user owes with a due date.
type Bill struct {
	DueDate     time.Time
	ID          string
	Description string
	Amount      decimal.Decimal
	CategoryID  string
	Status      ObligationStatus
	Recurrence  Recurrence
	Scope       Scope
}

// Receivable is money owed to the user with an expected date. Payer is the
// counterparty the money is expected from.
type Receivable struct {
	ExpectedDate time.Time
	ID           string
	Description  string
	Amount       decimal.Decimal
	CategoryID   string
	Status       ObligationStatus
	Recurrence   Recurrence
	Scope        Scope
	Payer        string
}
