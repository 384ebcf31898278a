package model

// Scope partitions every entity and query into the personal or business
// ledger. Reads must always name a scope; there is no unscoped query.
type Scope string

const (
	// ScopePersonal selects the personal ledger.
	ScopePersonal Scope = "personal"
	// ScopeBusiness selects the business ledger.
	ScopeBusiness Scope = "business"
)

// CategoryScope is the scope a category is visible in. Unlike Scope it
// admits "both": shared categories usable from either ledger.
type CategoryScope string

const (
	// CategoryScopePersonal restricts a category to the personal ledger.
	CategoryScopePersonal CategoryScope = "personal"
	// CategoryScopeBusiness restricts a category to the business ledger.
	CategoryScopeBusiness CategoryScope = "business"
	// CategoryScopeBoth makes a category visible from both ledgers.
	CategoryScopeBoth CategoryScope = "both"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	return s == ScopePersonal || s == ScopeBusiness
}

// Matches reports whether a category with scope cs is visible from s.
func (cs CategoryScope) Matches(s Scope) bool {
	return cs == CategoryScopeBoth || string(cs) == string(s)
}
