package model

import "time"

// CategoryType indicates whether a category classifies income or expense
// entries.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
)

// Category is a classification bucket for ledger entries. Built-in
// categories are immutable; user-defined ones may be deleted only while
// nothing references them.
type Category struct {
	CreatedAt     time.Time
	ID            string
	Name          string
	Type          CategoryType
	Scope         CategoryScope
	IsUserDefined bool
}
