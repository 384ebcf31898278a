package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a savings target with an accumulating balance. Deposits are an
// isolated accumulator and never create ledger entries. Completion is
// monotonic: once Completed is set, further deposits never revise
// CompletedAt or flip Completed back.
type Goal struct {
	ID            string
	Title         string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Deadline      *time.Time
	Completed     bool
	CompletedAt   *time.Time
}

// Progress returns current/target as a percentage, capped at 100.
func (g *Goal) Progress() decimal.Decimal {
	if g.TargetAmount.IsZero() {
		return decimal.Zero
	}
	p := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100))
	hundred := decimal.NewFromInt(100)
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}
