package services

import (
	"context"
	"time"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/SscSPs/finance_ledger/internal/dto"
)

// RecurringBillReaderSvc defines read operations for recurring bills
type RecurringBillReaderSvc interface {
	GetRecurringBill(ctx context.Context, billID string, userID string) (*domain.RecurringBill, error)
	ListRecurringBills(ctx context.Context, userID string) ([]domain.RecurringBill, error)

	// ListUpcomingBills returns active unpaid bills due within the next `days` days.
	ListUpcomingBills(ctx context.Context, userID string, days int) ([]domain.RecurringBill, error)

	// ListOverdueBills returns active unpaid bills whose due date has passed.
	ListOverdueBills(ctx context.Context, userID string) ([]domain.RecurringBill, error)
}

// RecurringBillWriterSvc defines user-driven bill mutations
type RecurringBillWriterSvc interface {
	CreateRecurringBill(ctx context.Context, req dto.CreateRecurringBillRequest, userID string) (*domain.RecurringBill, error)
	DeactivateRecurringBill(ctx context.Context, billID string, userID string) error
	DeleteRecurringBill(ctx context.Context, billID string, userID string) error

	// PayBill records a payment for the bill now and marks it paid.
	PayBill(ctx context.Context, billID string, userID string) (*domain.Transaction, error)
}

// RecurringBillEngineSvc materialises due bills into transactions
type RecurringBillEngineSvc interface {
	// SweepDueBills generates one transaction for every bill due on or before asOf.
	// Individual failures are counted, not returned.
	SweepDueBills(ctx context.Context, asOf time.Time) (*domain.SweepReport, error)

	// GenerateOne generates the next occurrence of a bill if it is still due today.
	GenerateOne(ctx context.Context, billID string) (*domain.GenerationResult, error)
}

// RecurringBillSvcFacade combines all recurring bill service interfaces
type RecurringBillSvcFacade interface {
	RecurringBillReaderSvc
	RecurringBillWriterSvc
	RecurringBillEngineSvc
}
