package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

var _ portsrepo.BudgetRepositoryFacade = (*Store)(nil)

func (s *Store) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[budgetID]
	if !ok {
		return nil, notFound("budget", budgetID)
	}
	return &b, nil
}

func (s *Store) FindBudget(ctx context.Context, ownerID, category string, month, year int) (*domain.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.budgets {
		if b.OwnerID == ownerID && b.Category == category && b.Month == month && b.Year == year {
			return &b, nil
		}
	}
	return nil, notFound("budget", category)
}

func (s *Store) ListBudgetsByPeriod(ctx context.Context, month, year int) ([]domain.Budget, error) {
	return s.listBudgets(func(b domain.Budget) bool { return b.Month == month && b.Year == year }), nil
}

func (s *Store) ListBudgetsByOwnerPeriod(ctx context.Context, ownerID string, month, year int) ([]domain.Budget, error) {
	return s.listBudgets(func(b domain.Budget) bool {
		return b.OwnerID == ownerID && b.Month == month && b.Year == year
	}), nil
}

func (s *Store) listBudgets(match func(domain.Budget) bool) []domain.Budget {
	s.mu.RLock()
	budgets := make([]domain.Budget, 0)
	for _, b := range s.budgets {
		if match(b) {
			budgets = append(budgets, b)
		}
	}
	s.mu.RUnlock()
	sort.Slice(budgets, func(i, j int) bool {
		if budgets[i].OwnerID != budgets[j].OwnerID {
			return budgets[i].OwnerID < budgets[j].OwnerID
		}
		return budgets[i].Category < budgets[j].Category
	})
	return budgets
}

func (s *Store) SaveBudget(ctx context.Context, budget domain.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.budgets {
		if b.BudgetID == budget.BudgetID ||
			(b.OwnerID == budget.OwnerID && b.Category == budget.Category && b.Month == budget.Month && b.Year == budget.Year) {
			return duplicate("budget", budget.Category)
		}
	}
	s.budgets[budget.BudgetID] = budget
	return nil
}

func (s *Store) UpdateBudgetSpent(ctx context.Context, budgetID string, spent decimal.Decimal, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[budgetID]
	if !ok {
		return notFound("budget", budgetID)
	}
	b.SpentAmount = spent
	b.LastUpdatedAt = now
	s.budgets[budgetID] = b
	return nil
}
