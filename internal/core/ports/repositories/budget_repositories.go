package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BudgetReader defines read operations for budgets
type BudgetReader interface {
	FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)

	// FindBudget looks a budget up by its natural key.
	FindBudget(ctx context.Context, ownerID, category string, month, year int) (*domain.Budget, error)

	// ListBudgetsByPeriod retrieves the budgets of every owner for a month.
	ListBudgetsByPeriod(ctx context.Context, month, year int) ([]domain.Budget, error)

	// ListBudgetsByOwnerPeriod retrieves one owner's budgets for a month.
	ListBudgetsByOwnerPeriod(ctx context.Context, ownerID string, month, year int) ([]domain.Budget, error)
}

// BudgetWriter defines write operations for budgets
type BudgetWriter interface {
	// SaveBudget inserts a budget. A clash on (owner, category, month, year) returns ErrDuplicate.
	SaveBudget(ctx context.Context, budget domain.Budget) error

	// UpdateBudgetSpent refreshes the cached spent amount.
	UpdateBudgetSpent(ctx context.Context, budgetID string, spent decimal.Decimal, now time.Time) error
}

// BudgetRepositoryFacade combines all budget repository interfaces
type BudgetRepositoryFacade interface {
	BudgetReader
	BudgetWriter
}
