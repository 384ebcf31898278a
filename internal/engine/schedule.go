package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
)

// dueSoonDays is the horizon within which a pending obligation counts as
// due soon.
const dueSoonDays = 3

// ScheduledBill pairs a bill with its urgency relative to now.
type ScheduledBill struct {
	Bill      model.Bill
	Urgency   model.Urgency
	DaysUntil int
}

// ScheduledReceivable pairs a receivable with its urgency relative to
// now.
type ScheduledReceivable struct {
	Receivable model.Receivable
	Urgency    model.Urgency
	DaysUntil  int
}

// DaysUntil counts whole days from today's midnight to the date's
// midnight. Today is 0, yesterday is -1.
func DaysUntil(now, date time.Time) int {
	return int(midnight(date).Sub(midnight(now)).Hours() / 24)
}

// ClassifyDue buckets a pending obligation: past due dates are overdue,
// anything due today through the next 3 days is due soon, the rest is
// upcoming. An obligation due exactly today is due soon, not overdue.
func ClassifyDue(now, date time.Time) model.Urgency {
	days := DaysUntil(now, date)
	switch {
	case days < 0:
		return model.UrgencyOverdue
	case days <= dueSoonDays:
		return model.UrgencyDueSoon
	default:
		return model.UrgencyUpcoming
	}
}

// BillSchedule returns the scope's pending bills classified by urgency,
// soonest due first. Settled bills are excluded; an external notifier
// reads this to decide what to remind about.
func (e *Engine) BillSchedule(ctx context.Context, scope model.Scope) ([]ScheduledBill, error) {
	bills, err := e.storage.GetBills(ctx, scope)
	if err != nil {
		return nil, err
	}

	now := e.now()
	scheduled := make([]ScheduledBill, 0, len(bills))
	for _, bill := range bills {
		if bill.Status != model.ObligationPending && bill.Status != model.ObligationOverdue {
			continue
		}
		scheduled = append(scheduled, ScheduledBill{
			Bill:      bill,
			Urgency:   ClassifyDue(now, bill.DueDate),
			DaysUntil: DaysUntil(now, bill.DueDate),
		})
	}
	return scheduled, nil
}

// ReceivableSchedule mirrors BillSchedule for money owed to the user.
func (e *Engine) ReceivableSchedule(ctx context.Context, scope model.Scope) ([]ScheduledReceivable, error) {
	receivables, err := e.storage.GetReceivables(ctx, scope)
	if err != nil {
		return nil, err
	}

	now := e.now()
	scheduled := make([]ScheduledReceivable, 0, len(receivables))
	for _, receivable := range receivables {
		if receivable.Status != model.ObligationPending && receivable.Status != model.ObligationOverdue {
			continue
		}
		scheduled = append(scheduled, ScheduledReceivable{
			Receivable: receivable,
			Urgency:    ClassifyDue(now, receivable.ExpectedDate),
			DaysUntil:  DaysUntil(now, receivable.ExpectedDate),
		})
	}
	return scheduled, nil
}

// PayBill settles a bill: it materializes exactly one expense entry dated
// now with the bill's amount, category, and scope, then marks the bill
// paid. If the bill recurs, the next occurrence is created as a fresh
// pending bill with the due date advanced by one week, month, or year
// (day clamped). The steps are not transactional; if the status update
// fails after the entry was written, the caller sees the error and the
// ledger keeps the entry.
func (e *Engine) PayBill(ctx context.Context, id string) (*model.Bill, *model.Transaction, error) {
	bill, err := e.storage.GetBillByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if bill.Status == model.ObligationPaid {
		return nil, nil, common.NewValidationError("status", fmt.Sprintf("bill %q is already paid", id))
	}

	txn := &model.Transaction{
		Date:        e.now(),
		Description: bill.Description,
		Amount:      bill.Amount,
		Type:        model.TypeExpense,
		CategoryID:  bill.CategoryID,
		Scope:       bill.Scope,
		Payment:     model.PaymentCash,
	}
	if err := e.write(ctx, func() error {
		_, werr := e.storage.AddTransaction(ctx, txn)
		return werr
	}); err != nil {
		return nil, nil, err
	}

	bill.Status = model.ObligationPaid
	if err := e.write(ctx, func() error { return e.storage.UpdateBill(ctx, bill) }); err != nil {
		return nil, txn, fmt.Errorf("entry written but bill not settled: %w", err)
	}

	if bill.Recurrence != model.RecurrenceOnce {
		next := *bill
		next.ID = ""
		next.Status = model.ObligationPending
		next.DueDate = nextOccurrence(bill.DueDate, bill.Recurrence)
		if err := e.write(ctx, func() error {
			_, werr := e.storage.CreateBill(ctx, &next)
			return werr
		}); err != nil {
			return bill, txn, fmt.Errorf("bill settled but next occurrence not created: %w", err)
		}
		slog.Debug("spawned recurring bill", "bill", bill.ID, "next_due", next.DueDate)
	}

	return bill, txn, nil
}

// ReceiveReceivable settles a receivable the same way PayBill settles a
// bill, materializing one income entry dated now.
func (e *Engine) ReceiveReceivable(ctx context.Context, id string) (*model.Receivable, *model.Transaction, error) {
	receivable, err := e.storage.GetReceivableByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if receivable.Status == model.ObligationReceived {
		return nil, nil, common.NewValidationError("status", fmt.Sprintf("receivable %q is already received", id))
	}

	txn := &model.Transaction{
		Date:        e.now(),
		Description: receivable.Description,
		Amount:      receivable.Amount,
		Type:        model.TypeIncome,
		CategoryID:  receivable.CategoryID,
		Scope:       receivable.Scope,
		Payment:     model.PaymentCash,
	}
	if err := e.write(ctx, func() error {
		_, werr := e.storage.AddTransaction(ctx, txn)
		return werr
	}); err != nil {
		return nil, nil, err
	}

	receivable.Status = model.ObligationReceived
	if err := e.write(ctx, func() error { return e.storage.UpdateReceivable(ctx, receivable) }); err != nil {
		return nil, txn, fmt.Errorf("entry written but receivable not settled: %w", err)
	}

	if receivable.Recurrence != model.RecurrenceOnce {
		next := *receivable
		next.ID = ""
		next.Status = model.ObligationPending
		next.ExpectedDate = nextOccurrence(receivable.ExpectedDate, receivable.Recurrence)
		if err := e.write(ctx, func() error {
			_, werr := e.storage.CreateReceivable(ctx, &next)
			return werr
		}); err != nil {
			return receivable, txn, fmt.Errorf("receivable settled but next occurrence not created: %w", err)
		}
	}

	return receivable, txn, nil
}

// nextOccurrence advances a due date by one recurrence step.
func nextOccurrence(date time.Time, recurrence model.Recurrence) time.Time {
	switch recurrence {
	case model.RecurrenceWeekly:
		return date.AddDate(0, 0, 7)
	case model.RecurrenceMonthly:
		return addMonthsClamped(date, 1)
	case model.RecurrenceYearly:
		return addYearsClamped(date, 1)
	default:
		return date
	}
}
