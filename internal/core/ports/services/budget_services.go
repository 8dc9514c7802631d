package services

import (
	"context"
	"time"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/SscSPs/finance_ledger/internal/dto"
)

// BudgetReaderSvc defines budget queries
type BudgetReaderSvc interface {
	// Evaluate recomputes spending for budget and derives its alert level.
	Evaluate(ctx context.Context, budget domain.Budget) (*domain.BudgetEvaluation, error)

	// EvaluateByID loads a budget owned by userID and evaluates it.
	EvaluateByID(ctx context.Context, budgetID string, userID string) (*domain.BudgetEvaluation, error)

	GetBudgetSummary(ctx context.Context, userID string, month, year int) (*domain.BudgetSummary, error)
}

// BudgetWriterSvc defines budget mutations
type BudgetWriterSvc interface {
	CreateBudget(ctx context.Context, req dto.CreateBudgetRequest, userID string) (*domain.Budget, error)

	// RolloverBudgets carries the unspent remainder of rollover budgets into next month.
	RolloverBudgets(ctx context.Context, userID string, month, year int) ([]domain.Budget, error)
}

// BudgetAlerter raises budget alerts without re-alerting the same budget twice a day.
type BudgetAlerter interface {
	// CheckBudgetAlerts evaluates every budget of asOf's month and returns how many alerts were sent.
	CheckBudgetAlerts(ctx context.Context, asOf time.Time) (int, error)

	// OnExpenseRecorded checks the budget matching an expense's owner, category and month.
	OnExpenseRecorded(ctx context.Context, txn domain.Transaction)
}

// BudgetSvcFacade combines all budget service interfaces
type BudgetSvcFacade interface {
	BudgetReaderSvc
	BudgetWriterSvc
	BudgetAlerter
}
