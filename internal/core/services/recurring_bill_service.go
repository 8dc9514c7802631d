package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_ledger/internal/core/ports/services"
	"github.com/SscSPs/finance_ledger/internal/dto"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultSweepConcurrency = 4

// recurringBillService schedules bills and turns due ones into ledger transactions.
type recurringBillService struct {
	BaseService
	txManager        portsrepo.TransactionManager
	billRepo         portsrepo.RecurringBillRepositoryFacade
	accountRepo      portsrepo.AccountReader
	ledger           portssvc.LedgerPoster
	notifier         portssvc.NotificationSink
	audit            portssvc.AuditRecorder
	sweepConcurrency int
	retryAttempts    int
}

// RecurringBillOption is a functional option for configuring the recurring bill service
type RecurringBillOption func(*recurringBillService)

// WithBillNotifier adds the notification sink used after a bill is processed
func WithBillNotifier(notifier portssvc.NotificationSink) RecurringBillOption {
	return func(s *recurringBillService) {
		s.notifier = notifier
	}
}

// WithBillAuditRecorder adds the audit trail dependency
func WithBillAuditRecorder(audit portssvc.AuditRecorder) RecurringBillOption {
	return func(s *recurringBillService) {
		s.audit = audit
	}
}

// WithSweepConcurrency bounds how many bills a sweep processes at once
func WithSweepConcurrency(n int) RecurringBillOption {
	return func(s *recurringBillService) {
		if n > 0 {
			s.sweepConcurrency = n
		}
	}
}

// WithBillRetryAttempts sets how many times a conflicting unit of work is attempted
func WithBillRetryAttempts(attempts int) RecurringBillOption {
	return func(s *recurringBillService) {
		s.retryAttempts = attempts
	}
}

// WithBillClock overrides the time source
func WithBillClock(clock Clock) RecurringBillOption {
	return func(s *recurringBillService) {
		s.clock = clock
	}
}

// NewRecurringBillService creates the recurring bill service.
func NewRecurringBillService(
	txManager portsrepo.TransactionManager,
	billRepo portsrepo.RecurringBillRepositoryFacade,
	accountRepo portsrepo.AccountReader,
	ledger portssvc.LedgerPoster,
	options ...RecurringBillOption,
) portssvc.RecurringBillSvcFacade {
	svc := &recurringBillService{
		txManager:        txManager,
		billRepo:         billRepo,
		accountRepo:      accountRepo,
		ledger:           ledger,
		sweepConcurrency: defaultSweepConcurrency,
		retryAttempts:    defaultRetryAttempts,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.RecurringBillSvcFacade = (*recurringBillService)(nil)

func (s *recurringBillService) CreateRecurringBill(ctx context.Context, req dto.CreateRecurringBillRequest, userID string) (*domain.RecurringBill, error) {
	if req.TransactionType != domain.Income && req.TransactionType != domain.Expense {
		return nil, fmt.Errorf("%w: recurring bills must be INCOME or EXPENSE", apperrors.ErrValidation)
	}
	if !req.Frequency.Valid() {
		return nil, fmt.Errorf("%w: unknown frequency %q", apperrors.ErrValidation, string(req.Frequency))
	}
	if err := domain.ValidatePositiveAmount(req.Amount); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	start := domain.DateOf(req.StartDate)
	var end *time.Time
	if req.EndDate != nil {
		e := domain.DateOf(*req.EndDate)
		if e.Before(start) {
			return nil, fmt.Errorf("%w: end date is before start date", apperrors.ErrValidation)
		}
		end = &e
	}

	account, err := s.accountRepo.FindAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account.OwnerID != userID || account.IsDeleted {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, req.AccountID)
	}
	if !account.Usable() {
		return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrInvalidAccountState, req.AccountID)
	}

	now := s.Now()
	bill := domain.RecurringBill{
		BillID:          uuid.NewString(),
		OwnerID:         userID,
		AccountID:       account.AccountID,
		Category:        strings.TrimSpace(req.Category),
		Name:            name,
		Amount:          req.Amount,
		CurrencyCode:    account.CurrencyCode,
		TransactionType: req.TransactionType,
		Frequency:       req.Frequency,
		StartDate:       start,
		NextDueDate:     start,
		EndDate:         end,
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.billRepo.SaveRecurringBill(ctx, bill); err != nil {
		s.LogError(ctx, err, "Failed to save recurring bill", slog.String("bill_id", bill.BillID))
		return nil, err
	}
	s.record(ctx, userID, bill.BillID, domain.AuditCreate, nil, bill)
	return &bill, nil
}

func (s *recurringBillService) GetRecurringBill(ctx context.Context, billID string, userID string) (*domain.RecurringBill, error) {
	bill, err := s.billRepo.FindRecurringBillByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.OwnerID != userID || bill.IsDeleted {
		return nil, fmt.Errorf("%w: recurring bill %s", apperrors.ErrNotFound, billID)
	}
	return bill, nil
}

func (s *recurringBillService) ListRecurringBills(ctx context.Context, userID string) ([]domain.RecurringBill, error) {
	return s.billRepo.ListRecurringBillsByOwner(ctx, userID)
}

func (s *recurringBillService) ListUpcomingBills(ctx context.Context, userID string, days int) ([]domain.RecurringBill, error) {
	bills, err := s.billRepo.ListRecurringBillsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := domain.DateOf(s.Now())
	horizon := today.AddDate(0, 0, days)
	upcoming := make([]domain.RecurringBill, 0, len(bills))
	for _, b := range bills {
		due := domain.DateOf(b.NextDueDate)
		if b.IsActive && !b.IsPaid && !due.Before(today) && !due.After(horizon) {
			upcoming = append(upcoming, b)
		}
	}
	return upcoming, nil
}

func (s *recurringBillService) ListOverdueBills(ctx context.Context, userID string) ([]domain.RecurringBill, error) {
	bills, err := s.billRepo.ListRecurringBillsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := s.Now()
	overdue := make([]domain.RecurringBill, 0)
	for _, b := range bills {
		if b.Overdue(today) {
			overdue = append(overdue, b)
		}
	}
	return overdue, nil
}

func (s *recurringBillService) DeactivateRecurringBill(ctx context.Context, billID string, userID string) error {
	bill, err := s.GetRecurringBill(ctx, billID, userID)
	if err != nil {
		return err
	}
	if err := s.billRepo.SetRecurringBillActive(ctx, billID, false, userID, s.Now()); err != nil {
		return err
	}
	updated := *bill
	updated.IsActive = false
	s.record(ctx, userID, billID, domain.AuditUpdate, bill, updated)
	return nil
}

func (s *recurringBillService) DeleteRecurringBill(ctx context.Context, billID string, userID string) error {
	bill, err := s.GetRecurringBill(ctx, billID, userID)
	if err != nil {
		return err
	}
	if err := s.billRepo.SoftDeleteRecurringBill(ctx, billID, userID, s.Now()); err != nil {
		return err
	}
	s.record(ctx, userID, billID, domain.AuditDelete, bill, nil)
	return nil
}

// PayBill posts a payment for the bill's current period and marks it paid in one unit of work.
func (s *recurringBillService) PayBill(ctx context.Context, billID string, userID string) (*domain.Transaction, error) {
	var posted *domain.Transaction
	var before, after domain.RecurringBill
	err := retryOnConflict(ctx, s.retryAttempts, func() error {
		return s.txManager.WithinTransaction(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
			bill, err := tx.FindRecurringBillByIDForUpdate(ctx, billID)
			if err != nil {
				return err
			}
			if bill.OwnerID != userID || bill.IsDeleted {
				return fmt.Errorf("%w: recurring bill %s", apperrors.ErrNotFound, billID)
			}
			if bill.IsPaid {
				return fmt.Errorf("%w: bill %s is already paid", apperrors.ErrValidation, bill.Name)
			}
			before = *bill

			today := domain.DateOf(s.Now())
			txn, err := s.ledger.PostInTx(ctx, tx, domain.Transaction{
				OwnerID:         bill.OwnerID,
				AccountID:       bill.AccountID,
				Category:        bill.Category,
				TransactionType: bill.TransactionType,
				Amount:          bill.Amount,
				CurrencyCode:    bill.CurrencyCode,
				Description:     "Payment for " + bill.Name,
				TransactionDate: today,
				RecurringBillID: bill.BillID,
				AuditFields:     domain.AuditFields{CreatedBy: userID},
			})
			if err != nil {
				return err
			}

			bill.IsPaid = true
			bill.LastGeneratedDate = &today
			bill.LastUpdatedAt = s.Now()
			bill.LastUpdatedBy = userID
			if err := tx.UpdateRecurringBillSchedule(ctx, *bill); err != nil {
				return err
			}
			posted = txn
			after = *bill
			return nil
		})
	})
	if err != nil {
		s.logOutcome(ctx, err, "Failed to pay bill", slog.String("bill_id", billID))
		return nil, err
	}

	s.ledger.AfterPost(ctx, *posted)
	s.record(ctx, userID, billID, domain.AuditUpdate, before, after)
	return posted, nil
}

// SweepDueBills runs GenerateOne semantics for every bill due on or before asOf.
// Each bill is its own unit of work, so one failure never affects the others and an
// interrupted sweep leaves unprocessed bills untouched.
func (s *recurringBillService) SweepDueBills(ctx context.Context, asOf time.Time) (*domain.SweepReport, error) {
	asOf = domain.DateOf(asOf)
	ids, err := s.billRepo.ListDueRecurringBillIDs(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to select due bills", slog.Time("as_of", asOf))
		return nil, err
	}

	report := &domain.SweepReport{AsOf: asOf, Selected: len(ids)}
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(s.sweepConcurrency)

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		billID := id
		g.Go(func() error {
			result, err := s.generate(ctx, billID, asOf)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed++
			case result.Outcome == domain.OutcomeGenerated:
				report.Generated++
			case result.Outcome == domain.OutcomeAdvanced:
				report.Advanced++
			default:
				report.Skipped++
			}
			return nil
		})
	}
	_ = g.Wait()

	s.LogInfo(ctx, "Recurring bill sweep finished",
		slog.Time("as_of", asOf),
		slog.Int("selected", report.Selected),
		slog.Int("generated", report.Generated),
		slog.Int("advanced", report.Advanced),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed))
	return report, ctx.Err()
}

func (s *recurringBillService) GenerateOne(ctx context.Context, billID string) (*domain.GenerationResult, error) {
	return s.generate(ctx, billID, s.Now())
}

// generate locks the bill, re-checks that it is due as of asOf, posts the transaction
// and advances the schedule in a single unit of work.
func (s *recurringBillService) generate(ctx context.Context, billID string, asOf time.Time) (*domain.GenerationResult, error) {
	var (
		result *domain.GenerationResult
		posted *domain.Transaction
		bill   domain.RecurringBill
	)
	err := retryOnConflict(ctx, s.retryAttempts, func() error {
		posted = nil
		return s.txManager.WithinTransaction(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
			locked, err := tx.FindRecurringBillByIDForUpdate(ctx, billID)
			if err != nil {
				return err
			}
			if !locked.DueOn(asOf) {
				result = &domain.GenerationResult{BillID: billID, Outcome: domain.OutcomeSkipped, NextDueDate: locked.NextDueDate}
				return nil
			}

			dueDate := domain.DateOf(locked.NextDueDate)
			next, err := domain.Advance(locked.Frequency, dueDate)
			if err != nil {
				return err
			}

			outcome := domain.OutcomeAdvanced
			if !locked.IsPaid {
				txn, err := s.ledger.PostInTx(ctx, tx, domain.Transaction{
					OwnerID:         locked.OwnerID,
					AccountID:       locked.AccountID,
					Category:        locked.Category,
					TransactionType: locked.TransactionType,
					Amount:          locked.Amount,
					CurrencyCode:    locked.CurrencyCode,
					Description:     "[Auto] " + locked.Name,
					TransactionDate: dueDate,
					IsRecurring:     true,
					RecurringBillID: locked.BillID,
					AuditFields:     domain.AuditFields{CreatedBy: SystemActor},
				})
				if err != nil {
					return err
				}
				posted = txn
				outcome = domain.OutcomeGenerated
			}

			locked.LastGeneratedDate = &dueDate
			locked.NextDueDate = next
			locked.IsPaid = false
			locked.LastUpdatedAt = s.Now()
			locked.LastUpdatedBy = SystemActor
			if err := tx.UpdateRecurringBillSchedule(ctx, *locked); err != nil {
				return err
			}

			bill = *locked
			result = &domain.GenerationResult{BillID: billID, Outcome: outcome, NextDueDate: next}
			if posted != nil {
				result.TransactionID = posted.TransactionID
			}
			return nil
		})
	})
	if err != nil {
		s.logOutcome(ctx, err, "Failed to generate recurring bill", slog.String("bill_id", billID))
		return nil, err
	}

	if posted != nil {
		s.LogInfo(ctx, "Recurring bill generated",
			slog.String("bill_id", billID),
			slog.String("transaction_id", posted.TransactionID),
			slog.Time("next_due_date", bill.NextDueDate))
		s.ledger.AfterPost(ctx, *posted)
		s.notifyGenerated(ctx, bill, *posted)
	}
	return result, nil
}

func (s *recurringBillService) notifyGenerated(ctx context.Context, bill domain.RecurringBill, txn domain.Transaction) {
	if s.notifier == nil {
		return
	}
	amount := domain.NewMoney(txn.Amount, txn.CurrencyCode)
	_, err := s.notifier.Notify(ctx, domain.NotificationRequest{
		OwnerID:   bill.OwnerID,
		Type:      domain.NotificationRecurringBill,
		Message:   fmt.Sprintf("Recurring bill '%s' of %s has been processed.", bill.Name, amount.String()),
		RelatedID: bill.BillID,
		Email: domain.BillEmail{
			BillID:        bill.BillID,
			BillName:      bill.Name,
			Amount:        txn.Amount,
			Currency:      txn.CurrencyCode,
			DueDate:       txn.TransactionDate,
			TransactionID: txn.TransactionID,
		},
	})
	if err != nil {
		s.LogWarn(ctx, err, "Failed to notify about generated bill", slog.String("bill_id", bill.BillID))
	}
}

func (s *recurringBillService) record(ctx context.Context, userID, billID string, action domain.AuditAction, oldData, newData any) {
	if s.audit != nil {
		s.audit.Record(ctx, userID, "recurring_bills", billID, action, oldData, newData)
	}
}
