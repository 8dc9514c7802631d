package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/finance_ledger/internal/models"
	"github.com/SscSPs/finance_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const billColumns = `bill_id, owner_id, account_id, category, name, amount, currency_code, transaction_type,
	frequency, start_date, next_due_date, end_date, last_generated_date, is_active, is_paid, is_deleted,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxRecurringBillRepository struct {
	pool *pgxpool.Pool
}

func newPgxRecurringBillRepository(pool *pgxpool.Pool) *PgxRecurringBillRepository {
	return &PgxRecurringBillRepository{pool: pool}
}

var _ portsrepo.RecurringBillRepositoryFacade = (*PgxRecurringBillRepository)(nil)

func (r *PgxRecurringBillRepository) SaveRecurringBill(ctx context.Context, bill domain.RecurringBill) error {
	m := mapping.ToModelRecurringBill(bill)
	query := `
		INSERT INTO recurring_bills (` + billColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err := r.pool.Exec(ctx, query,
		m.BillID,
		m.OwnerID,
		m.AccountID,
		m.Category,
		m.Name,
		m.Amount,
		m.CurrencyCode,
		m.TransactionType,
		m.Frequency,
		m.StartDate,
		m.NextDueDate,
		m.EndDate,
		m.LastGeneratedDate,
		m.IsActive,
		m.IsPaid,
		m.IsDeleted,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	return mapPgError(err, "failed to save recurring bill %s", m.BillID)
}

func (r *PgxRecurringBillRepository) FindRecurringBillByID(ctx context.Context, billID string) (*domain.RecurringBill, error) {
	return findBill(ctx, r.pool, billID, false)
}

func (r *PgxRecurringBillRepository) ListRecurringBillsByOwner(ctx context.Context, ownerID string) ([]domain.RecurringBill, error) {
	query := `
		SELECT ` + billColumns + `
		FROM recurring_bills
		WHERE owner_id = $1 AND NOT is_deleted
		ORDER BY next_due_date ASC, bill_id ASC;
	`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, mapPgError(err, "failed to list recurring bills for owner %s", ownerID)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.RecurringBill])
	if err != nil {
		return nil, mapPgError(err, "failed to scan recurring bills for owner %s", ownerID)
	}
	return mapping.ToDomainRecurringBillSlice(ms), nil
}

// ListDueRecurringBillIDs selects ids only; each bill is re-read under lock before generation.
func (r *PgxRecurringBillRepository) ListDueRecurringBillIDs(ctx context.Context, asOf time.Time) ([]string, error) {
	query := `
		SELECT bill_id::text
		FROM recurring_bills
		WHERE is_active AND NOT is_deleted
		  AND next_due_date <= $1
		  AND (end_date IS NULL OR next_due_date <= end_date)
		ORDER BY next_due_date ASC, bill_id ASC;
	`
	rows, err := r.pool.Query(ctx, query, domain.DateOf(asOf))
	if err != nil {
		return nil, mapPgError(err, "failed to select due recurring bills")
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapPgError(err, "failed to scan due recurring bills")
	}
	return ids, nil
}

func (r *PgxRecurringBillRepository) SetRecurringBillActive(ctx context.Context, billID string, active bool, userID string, now time.Time) error {
	query := `
		UPDATE recurring_bills
		SET is_active = $2, last_updated_at = $3, last_updated_by = $4
		WHERE bill_id = $1 AND NOT is_deleted;
	`
	ct, err := r.pool.Exec(ctx, query, billID, active, now, userID)
	if err != nil {
		return mapPgError(err, "failed to update recurring bill %s", billID)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: recurring bill %s", apperrors.ErrNotFound, billID)
	}
	return nil
}

func (r *PgxRecurringBillRepository) SoftDeleteRecurringBill(ctx context.Context, billID string, userID string, now time.Time) error {
	query := `
		UPDATE recurring_bills
		SET is_deleted = TRUE, is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE bill_id = $1 AND NOT is_deleted;
	`
	ct, err := r.pool.Exec(ctx, query, billID, now, userID)
	if err != nil {
		return mapPgError(err, "failed to delete recurring bill %s", billID)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: recurring bill %s", apperrors.ErrNotFound, billID)
	}
	return nil
}

func findBill(ctx context.Context, q querier, billID string, forUpdate bool) (*domain.RecurringBill, error) {
	query := `SELECT ` + billColumns + ` FROM recurring_bills WHERE bill_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := q.Query(ctx, query, billID)
	if err != nil {
		return nil, mapPgError(err, "failed to find recurring bill %s", billID)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.RecurringBill])
	if err != nil {
		return nil, mapPgError(err, "recurring bill %s", billID)
	}
	bill := mapping.ToDomainRecurringBill(m)
	return &bill, nil
}

func (t *ledgerTx) FindRecurringBillByIDForUpdate(ctx context.Context, billID string) (*domain.RecurringBill, error) {
	return findBill(ctx, t.tx, billID, true)
}

func (t *ledgerTx) UpdateRecurringBillSchedule(ctx context.Context, bill domain.RecurringBill) error {
	query := `
		UPDATE recurring_bills
		SET next_due_date = $2, last_generated_date = $3, is_paid = $4, last_updated_at = $5, last_updated_by = $6
		WHERE bill_id = $1;
	`
	ct, err := t.tx.Exec(ctx, query,
		bill.BillID,
		bill.NextDueDate,
		bill.LastGeneratedDate,
		bill.IsPaid,
		bill.LastUpdatedAt,
		bill.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "failed to update schedule of recurring bill %s", bill.BillID)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: recurring bill %s", apperrors.ErrNotFound, bill.BillID)
	}
	return nil
}
