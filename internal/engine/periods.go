package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
)

// Period selects the aggregation window ending at "now".
type Period string

const (
	// PeriodWeek covers the trailing 7 days.
	PeriodWeek Period = "week"
	// PeriodMonth covers the current calendar month up to now.
	PeriodMonth Period = "month"
	// PeriodYear covers the current calendar year up to now.
	PeriodYear Period = "year"
)

// Summary holds the income/expense/balance totals for one window.
type Summary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// Comparison pairs the current window with the immediately preceding one
// and the period-over-period percentage changes.
type Comparison struct {
	Current       Summary
	Previous      Summary
	IncomeChange  decimal.Decimal
	ExpenseChange decimal.Decimal
}

// CategoryTotal is the spend or income attributed to one category inside
// a window. Consumers format it however they like; the engine only
// supplies the numbers.
type CategoryTotal struct {
	CategoryID string
	Name       string
	Type       model.CategoryType
	Total      decimal.Decimal
}

// Summarize totals the entries of one scope inside the period ending at
// the engine clock's current instant.
func (e *Engine) Summarize(ctx context.Context, scope model.Scope, period Period) (Summary, error) {
	now := e.now()
	start, end, err := window(period, now)
	if err != nil {
		return Summary{}, err
	}
	return e.summarizeWindow(ctx, scope, start, end)
}

// Compare computes the current window, the immediately preceding window
// of the same kind, and the percentage change of income and expense.
// A change from zero to a non-zero value reports 100%; zero to zero
// reports 0%.
func (e *Engine) Compare(ctx context.Context, scope model.Scope, period Period) (Comparison, error) {
	now := e.now()
	start, end, err := window(period, now)
	if err != nil {
		return Comparison{}, err
	}
	prevStart, prevEnd, err := previousWindow(period, now)
	if err != nil {
		return Comparison{}, err
	}

	current, err := e.summarizeWindow(ctx, scope, start, end)
	if err != nil {
		return Comparison{}, err
	}
	previous, err := e.summarizeWindow(ctx, scope, prevStart, prevEnd)
	if err != nil {
		return Comparison{}, err
	}

	return Comparison{
		Current:       current,
		Previous:      previous,
		IncomeChange:  percentChange(previous.Income, current.Income),
		ExpenseChange: percentChange(previous.Expense, current.Expense),
	}, nil
}

// CategoryBreakdown totals the window per category, largest expense
// first.
func (e *Engine) CategoryBreakdown(ctx context.Context, scope model.Scope, period Period) ([]CategoryTotal, error) {
	now := e.now()
	start, end, err := window(period, now)
	if err != nil {
		return nil, err
	}

	transactions, err := e.storage.ListTransactions(ctx, service.TransactionFilter{
		Scope:     scope,
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return nil, err
	}

	categories, err := e.storage.GetCategories(ctx, scope)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	for _, txn := range transactions {
		totals[txn.CategoryID] = totals[txn.CategoryID].Add(txn.Amount)
	}

	breakdown := make([]CategoryTotal, 0, len(totals))
	for _, cat := range categories {
		total, ok := totals[cat.ID]
		if !ok {
			continue
		}
		breakdown = append(breakdown, CategoryTotal{
			CategoryID: cat.ID,
			Name:       cat.Name,
			Type:       cat.Type,
			Total:      total,
		})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].Total.GreaterThan(breakdown[j].Total)
	})
	return breakdown, nil
}

func (e *Engine) summarizeWindow(ctx context.Context, scope model.Scope, start, end time.Time) (Summary, error) {
	transactions, err := e.storage.ListTransactions(ctx, service.TransactionFilter{
		Scope:     scope,
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, txn := range transactions {
		if txn.Type == model.TypeIncome {
			summary.Income = summary.Income.Add(txn.Amount)
		} else {
			summary.Expense = summary.Expense.Add(txn.Amount)
		}
	}
	summary.Balance = summary.Income.Sub(summary.Expense)
	return summary, nil
}

// window returns the inclusive [start, end] bounds of the period ending
// at now: trailing 7 days for week, month-to-date for month, year-to-date
// for year.
func window(period Period, now time.Time) (time.Time, time.Time, error) {
	switch period {
	case PeriodWeek:
		return now.AddDate(0, 0, -7), now, nil
	case PeriodMonth:
		return model.MonthOf(now).Start(), now, nil
	case PeriodYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), now, nil
	default:
		return time.Time{}, time.Time{}, common.NewValidationError("period", fmt.Sprintf("unknown period %q", period))
	}
}

// previousWindow returns the window immediately before the current one:
// the 7 days before the trailing week, the full prior calendar month, or
// the full prior calendar year.
func previousWindow(period Period, now time.Time) (time.Time, time.Time, error) {
	switch period {
	case PeriodWeek:
		// End just before the current week's start so a midnight entry on
		// the boundary is not counted in both windows.
		return now.AddDate(0, 0, -14), now.AddDate(0, 0, -7).Add(-time.Nanosecond), nil
	case PeriodMonth:
		prev := model.MonthOf(now).Prev()
		return prev.Start(), prev.End().Add(-time.Nanosecond), nil
	case PeriodYear:
		start := time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
		return start, end, nil
	default:
		return time.Time{}, time.Time{}, common.NewValidationError("period", fmt.Sprintf("unknown period %q", period))
	}
}

// percentChange reports the period-over-period change. A zero prior value
// maps to 100% when the current value is non-zero and 0% when both are
// zero.
func percentChange(previous, current decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsZero() {
			return decimal.Zero
		}
		return decimal.NewFromInt(100)
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100))
}
