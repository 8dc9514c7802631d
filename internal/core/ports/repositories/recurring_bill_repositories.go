package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
)

// RecurringBillReader defines read operations for recurring bills
type RecurringBillReader interface {
	// FindRecurringBillByID retrieves a bill by id.
	FindRecurringBillByID(ctx context.Context, billID string) (*domain.RecurringBill, error)

	// ListRecurringBillsByOwner retrieves every non-deleted bill of an owner ordered by next due date.
	ListRecurringBillsByOwner(ctx context.Context, ownerID string) ([]domain.RecurringBill, error)

	// ListDueRecurringBillIDs returns ids of active, non-deleted bills with
	// next_due_date <= asOf and not past their end date.
	ListDueRecurringBillIDs(ctx context.Context, asOf time.Time) ([]string, error)
}

// RecurringBillWriter defines write operations for recurring bills
type RecurringBillWriter interface {
	// SaveRecurringBill persists a new bill.
	SaveRecurringBill(ctx context.Context, bill domain.RecurringBill) error

	// SetRecurringBillActive toggles the active flag.
	SetRecurringBillActive(ctx context.Context, billID string, active bool, userID string, now time.Time) error

	// SoftDeleteRecurringBill marks a bill deleted.
	SoftDeleteRecurringBill(ctx context.Context, billID string, userID string, now time.Time) error
}

// RecurringBillTxSupport defines bill operations that run inside a unit of work
type RecurringBillTxSupport interface {
	// FindRecurringBillByIDForUpdate selects and locks a bill row.
	FindRecurringBillByIDForUpdate(ctx context.Context, billID string) (*domain.RecurringBill, error)

	// UpdateRecurringBillSchedule writes next_due_date, last_generated_date and is_paid.
	UpdateRecurringBillSchedule(ctx context.Context, bill domain.RecurringBill) error
}

// RecurringBillRepositoryFacade combines all recurring bill repository interfaces
type RecurringBillRepositoryFacade interface {
	RecurringBillReader
	RecurringBillWriter
}
