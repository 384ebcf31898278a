package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyflow/tally/internal/common"
	"github.com/tallyflow/tally/internal/model"
	"github.com/tallyflow/tally/internal/service"
)

// MemoryStorage implements the Storage interface entirely in memory. It
// backs trial/demo sessions: same contract and validation as SQLite, but
// writes are local-only and vanish with the process.
type MemoryStorage struct {
	mu           sync.RWMutex
	transactions map[string]model.Transaction
	categories   map[string]model.Category
	cards        map[string]model.CreditCard
	bills        map[string]model.Bill
	receivables  map[string]model.Receivable
	budgets      map[string]model.Budget
	goals        map[string]model.Goal
	hashes       map[string]struct{}
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		transactions: make(map[string]model.Transaction),
		categories:   make(map[string]model.Category),
		cards:        make(map[string]model.CreditCard),
		bills:        make(map[string]model.Bill),
		receivables:  make(map[string]model.Receivable),
		budgets:      make(map[string]model.Budget),
		goals:        make(map[string]model.Goal),
		hashes:       make(map[string]struct{}),
	}
}

// Migrate is a no-op; memory storage has no schema.
func (m *MemoryStorage) Migrate(_ context.Context) error { return nil }

// Close is a no-op.
func (m *MemoryStorage) Close() error { return nil }

func (m *MemoryStorage) categoryVisible(categoryID string, scope model.Scope) error {
	cat, ok := m.categories[categoryID]
	if !ok {
		return common.NewValidationError("categoryId", fmt.Sprintf("unknown category %q", categoryID))
	}
	if !cat.Scope.Matches(scope) {
		return common.NewValidationError("categoryId",
			fmt.Sprintf("category %q is not visible from scope %q", categoryID, scope))
	}
	return nil
}

// AddTransaction validates and stores one ledger entry.
func (m *MemoryStorage) AddTransaction(ctx context.Context, txn *model.Transaction) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateTransaction(txn); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.categoryVisible(txn.CategoryID, txn.Scope); err != nil {
		return "", err
	}
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	// Importers set a content hash for dedup; manual entries fall back
	// to the row id so identical same-day purchases don't collide.
	if txn.Hash == "" {
		txn.Hash = txn.ID
	}
	if _, dup := m.hashes[txn.Hash]; dup {
		return "", fmt.Errorf("insert transaction: %w", common.ErrDuplicateEntry)
	}

	m.transactions[txn.ID] = *txn
	m.hashes[txn.Hash] = struct{}{}
	return txn.ID, nil
}

// UpdateTransaction replaces the stored entry for txn.ID.
func (m *MemoryStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(txn.ID, "id"); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.transactions[txn.ID]
	if !ok {
		return common.NewNotFoundError("transaction", txn.ID)
	}
	if err := m.categoryVisible(txn.CategoryID, txn.Scope); err != nil {
		return err
	}
	if txn.Hash == "" {
		txn.Hash = old.Hash
	}
	m.transactions[txn.ID] = *txn
	return nil
}

// RemoveTransaction deletes one entry; installment siblings stay.
func (m *MemoryStorage) RemoveTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	txn, ok := m.transactions[id]
	if !ok {
		return common.NewNotFoundError("transaction", id)
	}
	delete(m.transactions, id)
	delete(m.hashes, txn.Hash)
	return nil
}

// GetTransactionByID retrieves one entry.
func (m *MemoryStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	txn, ok := m.transactions[id]
	if !ok {
		return nil, common.NewNotFoundError("transaction", id)
	}
	return &txn, nil
}

// ListTransactions returns entries matching the filter, oldest first.
func (m *MemoryStorage) ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !filter.Scope.Valid() {
		return nil, common.NewValidationError("scope", fmt.Sprintf("unknown scope %q", filter.Scope))
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var transactions []model.Transaction
	for _, txn := range m.transactions {
		if txn.Scope != filter.Scope {
			continue
		}
		if filter.StartDate != nil && txn.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && txn.Date.After(*filter.EndDate) {
			continue
		}
		if filter.CategoryID != "" && txn.CategoryID != filter.CategoryID {
			continue
		}
		if filter.CardID != "" && txn.CardID != filter.CardID {
			continue
		}
		if filter.Payment != "" && txn.Payment != filter.Payment {
			continue
		}
		if filter.Type != "" && txn.Type != filter.Type {
			continue
		}
		if filter.GroupID != "" && txn.GroupID != filter.GroupID {
			continue
		}
		transactions = append(transactions, txn)
	}

	sort.Slice(transactions, func(i, j int) bool {
		if transactions[i].Date.Equal(transactions[j].Date) {
			return transactions[i].ID < transactions[j].ID
		}
		return transactions[i].Date.Before(transactions[j].Date)
	})
	return transactions, nil
}

// CreateCategory stores a category.
func (m *MemoryStorage) CreateCategory(ctx context.Context, category *model.Category) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateCategory(category); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.categories {
		if existing.Name == category.Name && existing.Scope == category.Scope {
			return "", fmt.Errorf("insert category: %w", common.ErrDuplicateEntry)
		}
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	m.categories[category.ID] = *category
	return category.ID, nil
}

// GetCategoryByID retrieves one category.
func (m *MemoryStorage) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	cat, ok := m.categories[id]
	if !ok {
		return nil, common.NewNotFoundError("category", id)
	}
	return &cat, nil
}

// GetCategories returns categories visible from a scope, sorted by name.
func (m *MemoryStorage) GetCategories(ctx context.Context, scope model.Scope) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !scope.Valid() {
		return nil, common.NewValidationError("scope", fmt.Sprintf("unknown scope %q", scope))
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var categories []model.Category
	for _, cat := range m.categories {
		if cat.Scope.Matches(scope) {
			categories = append(categories, cat)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

// DeleteCategory removes an unreferenced user-defined category.
func (m *MemoryStorage) DeleteCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cat, ok := m.categories[id]
	if !ok {
		return common.NewNotFoundError("category", id)
	}
	if !cat.IsUserDefined {
		return common.NewValidationError("category", "built-in categories cannot be deleted")
	}

	refs := 0
	for _, txn := range m.transactions {
		if txn.CategoryID == id {
			refs++
		}
	}
	for _, budget := range m.budgets {
		if budget.CategoryID == id {
			refs++
		}
	}
	for _, bill := range m.bills {
		if bill.CategoryID == id {
			refs++
		}
	}
	for _, receivable := range m.receivables {
		if receivable.CategoryID == id {
			refs++
		}
	}
	if refs > 0 {
		return common.NewValidationError("category",
			fmt.Sprintf("category %q is referenced by %d records", id, refs))
	}

	delete(m.categories, id)
	return nil
}

// CreateCard registers a card.
func (m *MemoryStorage) CreateCard(ctx context.Context, card *model.CreditCard) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateCard(card); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	m.cards[card.ID] = *card
	return card.ID, nil
}

// GetCardByID retrieves one card.
func (m *MemoryStorage) GetCardByID(ctx context.Context, id string) (*model.CreditCard, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	card, ok := m.cards[id]
	if !ok {
		return nil, common.NewNotFoundError("card", id)
	}
	return &card, nil
}

// GetCards returns all cards in a scope.
func (m *MemoryStorage) GetCards(ctx context.Context, scope model.Scope) ([]model.CreditCard, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !scope.Valid() {
		return nil, common.NewValidationError("scope", fmt.Sprintf("unknown scope %q", scope))
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var cards []model.CreditCard
	for _, card := range m.cards {
		if card.Scope == scope {
			cards = append(cards, card)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Name < cards[j].Name })
	return cards, nil
}

// IncrementCardUsedLimit grows a card's cached outstanding total.
func (m *MemoryStorage) IncrementCardUsedLimit(ctx context.Context, id string, amount decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return common.NewValidationError("amount", "must be positive")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	card, ok := m.cards[id]
	if !ok {
		return common.NewNotFoundError("card", id)
	}
	card.UsedLimit = card.UsedLimit.Add(amount)
	m.cards[id] = card
	return nil
}

// CreateBill stores a bill.
func (m *MemoryStorage) CreateBill(ctx context.Context, bill *model.Bill) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateBill(bill); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.categoryVisible(bill.CategoryID, bill.Scope); err != nil {
		return "", err
	}
	if bill.ID == "" {
		bill.ID = uuid.NewString()
	}
	if bill.Status == "" {
		bill.Status = model.ObligationPending
	}
	m.bills[bill.ID] = *bill
	return bill.ID, nil
}

// GetBillByID retrieves one bill.
func (m *MemoryStorage) GetBillByID(ctx context.Context, id string) (*model.Bill, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	bill, ok := m.bills[id]
	if !ok {
		return nil, common.NewNotFoundError("bill", id)
	}
	return &bill, nil
}

// GetBills returns all bills in a scope, soonest due first.
func (m *MemoryStorage) GetBills(ctx context.Context, scope model.Scope) ([]model.Bill, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !scope.Valid() {
		return nil, common.NewValidationError("scope", fmt.Sprintf("unknown scope %q", scope))
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var bills []model.Bill
	for _, bill := range m.bills {
		if bill.Scope == scope {
			bills = append(bills, bill)
		}
	}
	sort.Slice(bills, func(i, j int) bool {
		if bills[i].DueDate.Equal(bills[j].DueDate) {
			return bills[i].ID < bills[j].ID
		}
		return bills[i].DueDate.Before(bills[j].DueDate)
	})
	return bills, nil
}

// UpdateBill replaces the stored bill.
func (m *MemoryStorage) UpdateBill(ctx context.Context, bill *model.Bill) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(bill.ID, "id"); err != nil {
		return err
	}
	if err := validateBill(bill); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bills[bill.ID]; !ok {
		return common.NewNotFoundError("bill", bill.ID)
	}
	m.bills[bill.ID] = *bill
	return nil
}

// CreateReceivable stores a receivable.
func (m *MemoryStorage) CreateReceivable(ctx context.Context, receivable *model.Receivable) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateReceivable(receivable); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.categoryVisible(receivable.CategoryID, receivable.Scope); err != nil {
		return "", err
	}
	if receivable.ID == "" {
		receivable.ID = uuid.NewString()
	}
	if receivable.Status == "" {
		receivable.Status = model.ObligationPending
	}
	m.receivables[receivable.ID] = *receivable
	return receivable.ID, nil
}

// GetReceivableByID retrieves one receivable.
func (m *MemoryStorage) GetReceivableByID(ctx context.Context, id string) (*model.Receivable, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	receivable, ok := m.receivables[id]
	if !ok {
		return nil, common.NewNotFoundError("receivable", id)
	}
	return &receivable, nil
}

// GetReceivables returns all receivables in a scope, soonest expected
// first.
func (m *MemoryStorage) GetReceivables(ctx context.Context, scope model.Scope) ([]model.Receivable, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !scope.Valid() {
		return nil, common.NewValidationError("scope", fmt.Sprintf("unknown scope %q", scope))
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var receivables []model.Receivable
	for _, receivable := range m.receivables {
		if receivable.Scope == scope {
			receivables = append(receivables, receivable)
		}
	}
	sort.Slice(receivables, func(i, j int) bool {
		if receivables[i].ExpectedDate.Equal(receivables[j].ExpectedDate) {
			return receivables[i].ID < receivables[j].ID
		}
		return receivables[i].ExpectedDate.Before(receivables[j].ExpectedDate)
	})
	return receivables, nil
}

// UpdateReceivable replaces the stored receivable.
func (m *MemoryStorage) UpdateReceivable(ctx context.Context, receivable *model.Receivable) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(receivable.ID, "id"); err != nil {
		return err
	}
	if err := validateReceivable(receivable); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.receivables[receivable.ID]; !ok {
		return common.NewNotFoundError("receivable", receivable.ID)
	}
	m.receivables[receivable.ID] = *receivable
	return nil
}

// UpsertBudget creates or replaces the single budget row for the
// (category, month, scope) key.
func (m *MemoryStorage) UpsertBudget(ctx context.Context, budget *model.Budget) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateBudget(budget); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.categoryVisible(budget.CategoryID, budget.Scope); err != nil {
		return "", err
	}

	for id, existing := range m.budgets {
		if existing.CategoryID == budget.CategoryID &&
			existing.Month == budget.Month &&
			existing.Scope == budget.Scope {
			existing.Amount = budget.Amount
			m.budgets[id] = existing
			budget.ID = id
			return id, nil
		}
	}

	if budget.ID == "" {
		budget.ID = uuid.NewString()
	}
	m.budgets[budget.ID] = *budget
	return budget.ID, nil
}

// GetBudgets returns the budget rows for one month and scope.
func (m *MemoryStorage) GetBudgets(ctx context.Context, month model.Month, scope model.Scope) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !scope.Valid() {
		return nil, common.NewValidationError("scope", fmt.Sprintf("unknown scope %q", scope))
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var budgets []model.Budget
	for _, budget := range m.budgets {
		if budget.Month == month && budget.Scope == scope {
			budgets = append(budgets, budget)
		}
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].CategoryID < budgets[j].CategoryID })
	return budgets, nil
}

// CreateGoal stores a goal.
func (m *MemoryStorage) CreateGoal(ctx context.Context, goal *model.Goal) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateGoal(goal); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	m.goals[goal.ID] = *goal
	return goal.ID, nil
}

// GetGoalByID retrieves one goal.
func (m *MemoryStorage) GetGoalByID(ctx context.Context, id string) (*model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	goal, ok := m.goals[id]
	if !ok {
		return nil, common.NewNotFoundError("goal", id)
	}
	return &goal, nil
}

// GetGoals returns every goal.
func (m *MemoryStorage) GetGoals(ctx context.Context) ([]model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var goals []model.Goal
	for _, goal := range m.goals {
		goals = append(goals, goal)
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].Title < goals[j].Title })
	return goals, nil
}

// UpdateGoal replaces the stored goal.
func (m *MemoryStorage) UpdateGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(goal.ID, "id"); err != nil {
		return err
	}
	if err := validateGoal(goal); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.goals[goal.ID]; !ok {
		return common.NewNotFoundError("goal", goal.ID)
	}
	m.goals[goal.ID] = *goal
	return nil
}

// DeleteGoal removes a goal.
func (m *MemoryStorage) DeleteGoal(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.goals[id]; !ok {
		return common.NewNotFoundError("goal", id)
	}
	delete(m.goals, id)
	return nil
}
