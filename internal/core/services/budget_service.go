package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_ledger/internal/core/ports/services"
	"github.com/SscSPs/finance_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type budgetService struct {
	BaseService
	budgetRepo       portsrepo.BudgetRepositoryFacade
	txnRepo          portsrepo.TransactionReader
	notificationRepo portsrepo.NotificationReader
	notifier         portssvc.NotificationSink
	audit            portssvc.AuditRecorder
}

// BudgetOption is a functional option for configuring the budget service
type BudgetOption func(*budgetService)

// WithBudgetNotifier enables alerts. Without it evaluations never notify.
func WithBudgetNotifier(notifier portssvc.NotificationSink, notificationRepo portsrepo.NotificationReader) BudgetOption {
	return func(s *budgetService) {
		s.notifier = notifier
		s.notificationRepo = notificationRepo
	}
}

// WithBudgetAuditRecorder adds the audit trail dependency
func WithBudgetAuditRecorder(audit portssvc.AuditRecorder) BudgetOption {
	return func(s *budgetService) {
		s.audit = audit
	}
}

// WithBudgetClock overrides the time source
func WithBudgetClock(clock Clock) BudgetOption {
	return func(s *budgetService) {
		s.clock = clock
	}
}

// NewBudgetService creates the budget service.
func NewBudgetService(budgetRepo portsrepo.BudgetRepositoryFacade, txnRepo portsrepo.TransactionReader, options ...BudgetOption) portssvc.BudgetSvcFacade {
	svc := &budgetService{budgetRepo: budgetRepo, txnRepo: txnRepo}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

func (s *budgetService) CreateBudget(ctx context.Context, req dto.CreateBudgetRequest, userID string) (*domain.Budget, error) {
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", apperrors.ErrValidation)
	}
	if req.Month < 1 || req.Month > 12 {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", apperrors.ErrValidation)
	}
	if err := domain.ValidatePositiveAmount(req.Amount); err != nil {
		return nil, err
	}

	now := s.Now()
	budget := domain.Budget{
		BudgetID:        uuid.NewString(),
		OwnerID:         userID,
		Category:        category,
		Month:           req.Month,
		Year:            req.Year,
		Amount:          req.Amount,
		CurrencyCode:    strings.ToUpper(req.CurrencyCode),
		RolloverEnabled: req.RolloverEnabled,
		SpentAmount:     decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.budgetRepo.SaveBudget(ctx, budget); err != nil {
		s.logOutcome(ctx, err, "Failed to save budget", slog.String("category", category))
		return nil, err
	}
	if s.audit != nil {
		s.audit.Record(ctx, userID, "budgets", budget.BudgetID, domain.AuditCreate, nil, budget)
	}
	return &budget, nil
}

// Evaluate sums the month's expenses for the budget's category and refreshes the spent cache.
func (s *budgetService) Evaluate(ctx context.Context, budget domain.Budget) (*domain.BudgetEvaluation, error) {
	spent, err := s.txnRepo.SumExpensesByCategory(ctx, budget.OwnerID, budget.Category, budget.Month, budget.Year)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum expenses for budget", slog.String("budget_id", budget.BudgetID))
		return nil, err
	}
	if !spent.Equal(budget.SpentAmount) {
		if err := s.budgetRepo.UpdateBudgetSpent(ctx, budget.BudgetID, spent, s.Now()); err != nil {
			s.LogWarn(ctx, err, "Failed to refresh budget spent cache", slog.String("budget_id", budget.BudgetID))
		} else {
			budget.SpentAmount = spent
		}
	}
	ev := domain.EvaluateBudget(budget, spent)
	return &ev, nil
}

func (s *budgetService) EvaluateByID(ctx context.Context, budgetID string, userID string) (*domain.BudgetEvaluation, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if budget.OwnerID != userID {
		return nil, fmt.Errorf("%w: budget %s", apperrors.ErrNotFound, budgetID)
	}
	return s.Evaluate(ctx, *budget)
}

func (s *budgetService) GetBudgetSummary(ctx context.Context, userID string, month, year int) (*domain.BudgetSummary, error) {
	budgets, err := s.budgetRepo.ListBudgetsByOwnerPeriod(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}
	summary := &domain.BudgetSummary{
		Month:          month,
		Year:           year,
		TotalBudgeted:  decimal.Zero,
		TotalSpent:     decimal.Zero,
		TotalRemaining: decimal.Zero,
		Budgets:        make([]domain.BudgetEvaluation, 0, len(budgets)),
	}
	for _, b := range budgets {
		ev, err := s.Evaluate(ctx, b)
		if err != nil {
			return nil, err
		}
		summary.TotalBudgeted = summary.TotalBudgeted.Add(b.Amount)
		summary.TotalSpent = summary.TotalSpent.Add(ev.Spent)
		summary.Budgets = append(summary.Budgets, *ev)
	}
	summary.TotalRemaining = summary.TotalBudgeted.Sub(summary.TotalSpent)
	return summary, nil
}

// RolloverBudgets creates next month's budget for every rollover-enabled budget with money left.
// A budget that already exists for next month is returned untouched.
func (s *budgetService) RolloverBudgets(ctx context.Context, userID string, month, year int) ([]domain.Budget, error) {
	budgets, err := s.budgetRepo.ListBudgetsByOwnerPeriod(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}
	rolled := make([]domain.Budget, 0)
	for _, b := range budgets {
		if !b.RolloverEnabled {
			continue
		}
		ev, err := s.Evaluate(ctx, b)
		if err != nil {
			return nil, err
		}
		if !ev.Remaining.IsPositive() {
			continue
		}
		next, err := s.getOrCreateNext(ctx, b, ev.Remaining, userID)
		if err != nil {
			return nil, err
		}
		rolled = append(rolled, *next)
	}
	return rolled, nil
}

func (s *budgetService) getOrCreateNext(ctx context.Context, b domain.Budget, amount decimal.Decimal, userID string) (*domain.Budget, error) {
	month, year := b.NextPeriod()
	existing, err := s.budgetRepo.FindBudget(ctx, b.OwnerID, b.Category, month, year)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := s.Now()
	next := domain.Budget{
		BudgetID:        uuid.NewString(),
		OwnerID:         b.OwnerID,
		Category:        b.Category,
		Month:           month,
		Year:            year,
		Amount:          amount.Round(domain.MoneyScale),
		CurrencyCode:    b.CurrencyCode,
		RolloverEnabled: b.RolloverEnabled,
		SpentAmount:     decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.budgetRepo.SaveBudget(ctx, next); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return s.budgetRepo.FindBudget(ctx, b.OwnerID, b.Category, month, year)
		}
		return nil, err
	}
	s.LogInfo(ctx, "Budget rolled over",
		slog.String("from_budget_id", b.BudgetID),
		slog.String("to_budget_id", next.BudgetID),
		slog.String("amount", next.Amount.String()))
	return &next, nil
}

func (s *budgetService) CheckBudgetAlerts(ctx context.Context, asOf time.Time) (int, error) {
	budgets, err := s.budgetRepo.ListBudgetsByPeriod(ctx, int(asOf.Month()), asOf.Year())
	if err != nil {
		s.LogError(ctx, err, "Failed to list budgets for alert check")
		return 0, err
	}
	sent := 0
	for _, b := range budgets {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		alerted, err := s.alertIfNeeded(ctx, b, asOf)
		if err != nil {
			s.LogWarn(ctx, err, "Budget alert check failed", slog.String("budget_id", b.BudgetID))
			continue
		}
		if alerted {
			sent++
		}
	}
	s.LogInfo(ctx, "Budget alert check finished", slog.Int("budgets", len(budgets)), slog.Int("alerts", sent))
	return sent, nil
}

func (s *budgetService) OnExpenseRecorded(ctx context.Context, txn domain.Transaction) {
	date := txn.TransactionDate
	budget, err := s.budgetRepo.FindBudget(ctx, txn.OwnerID, txn.Category, int(date.Month()), date.Year())
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogWarn(ctx, err, "Failed to load budget for expense", slog.String("transaction_id", txn.TransactionID))
		}
		return
	}
	if _, err := s.alertIfNeeded(ctx, *budget, s.Now()); err != nil {
		s.LogWarn(ctx, err, "Budget alert check failed", slog.String("budget_id", budget.BudgetID))
	}
}

// alertIfNeeded evaluates b and sends at most one alert per budget per calendar day.
func (s *budgetService) alertIfNeeded(ctx context.Context, b domain.Budget, today time.Time) (bool, error) {
	ev, err := s.Evaluate(ctx, b)
	if err != nil {
		return false, err
	}
	if ev.Alert == domain.AlertNone || s.notifier == nil {
		return false, nil
	}
	if s.notificationRepo != nil {
		exists, err := s.notificationRepo.ExistsNotificationForRelatedOn(ctx, b.BudgetID, today)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
	}

	_, err = s.notifier.Notify(ctx, domain.NotificationRequest{
		OwnerID:   b.OwnerID,
		Type:      ev.NotificationType(),
		Message:   ev.Message(),
		RelatedID: b.BudgetID,
		Email: domain.BudgetEmail{
			BudgetID:   b.BudgetID,
			Category:   b.Category,
			Spent:      ev.Spent,
			Limit:      b.Amount,
			Remaining:  ev.Remaining,
			Percentage: ev.Percentage,
			Currency:   b.CurrencyCode,
			Headline:   ev.Subject(),
		},
	})
	if err != nil {
		return false, err
	}
	s.LogInfo(ctx, "Budget alert sent",
		slog.String("budget_id", b.BudgetID),
		slog.String("alert", string(ev.Alert)))
	return true, nil
}
