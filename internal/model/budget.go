package model

import "github.com/shopspring/decimal"

// BudgetStatus classifies how much of a budget's limit has been spent.
type BudgetStatus string

const (
	// BudgetUnder means spend is below 80% of the limit.
	BudgetUnder BudgetStatus = "under"
	// BudgetNear means spend is at or above 80% but below the limit.
	BudgetNear BudgetStatus = "near"
	// BudgetOver means spend reached or passed the limit.
	BudgetOver BudgetStatus = "over"
)

// Budget is a per-category spending limit for one month and scope. Exactly
// one budget exists per (category, month, scope); writes are upserts.
type Budget struct {
	ID         string
	CategoryID string
	Month      Month
	Amount     decimal.Decimal
	Scope      Scope
}

// BudgetUsage pairs a budget with its derived actual spend. Ratio is
// actual/limit as a percentage and is deliberately unclamped so alerting
// can see overshoot past 100.
type BudgetUsage struct {
	Budget      Budget
	ActualSpent decimal.Decimal
	Ratio       decimal.Decimal
	Status      BudgetStatus
}
