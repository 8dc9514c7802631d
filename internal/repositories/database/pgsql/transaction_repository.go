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
	"github.com/SscSPs/finance_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const transactionColumns = `transaction_id, owner_id, account_id, target_account_id, category, transaction_type,
	amount, currency_code, description, transaction_date, is_recurring, recurring_bill_id, is_deleted,
	created_at, created_by, last_updated_at, last_updated_by`

const splitColumns = `split_id, transaction_id, category, amount, created_at, created_by`

type PgxTransactionRepository struct {
	pool *pgxpool.Pool
}

func newPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{pool: pool}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return findTransaction(ctx, r.pool, transactionID, false)
}

// ListTransactionsByAccount returns one page of an account's transactions, newest first.
// It reads limit+1 rows to know whether another page exists.
func (r *PgxTransactionRepository) ListTransactionsByAccount(ctx context.Context, ownerID, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := []any{ownerID, accountID}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE owner_id = $1 AND NOT is_deleted
		  AND (account_id = $2 OR target_account_id = $2)`

	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
		}
		query += ` AND (transaction_date, created_at, transaction_id) < ($3::date, $4::timestamptz, $5::uuid)`
		args = append(args, cursor.Date, cursor.CreatedAt, cursor.ID)
	}
	query += ` ORDER BY transaction_date DESC, created_at DESC, transaction_id DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit+1)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, mapPgError(err, "failed to list transactions for account %s", accountID)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Transaction])
	if err != nil {
		return nil, nil, mapPgError(err, "failed to scan transactions for account %s", accountID)
	}

	txns := mapping.ToDomainTransactionSlice(ms)
	if limit <= 0 || len(txns) <= limit {
		return txns, nil, nil
	}
	page := txns[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(pagination.Cursor{Date: last.TransactionDate, CreatedAt: last.CreatedAt, ID: last.TransactionID})
	return page, &token, nil
}

func (r *PgxTransactionRepository) ListSplitsByTransaction(ctx context.Context, transactionID string) ([]domain.TransactionSplit, error) {
	query := `SELECT ` + splitColumns + ` FROM transaction_splits WHERE transaction_id = $1 ORDER BY category;`
	rows, err := r.pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, mapPgError(err, "failed to list splits for transaction %s", transactionID)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.TransactionSplit])
	if err != nil {
		return nil, mapPgError(err, "failed to scan splits for transaction %s", transactionID)
	}
	splits := make([]domain.TransactionSplit, len(ms))
	for i, m := range ms {
		splits[i] = mapping.ToDomainSplit(m)
	}
	return splits, nil
}

func (r *PgxTransactionRepository) SumExpensesByCategory(ctx context.Context, ownerID, category string, month, year int) (decimal.Decimal, error) {
	start, end := domain.MonthBounds(month, year)
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE owner_id = $1 AND category = $2 AND transaction_type = 'EXPENSE' AND NOT is_deleted
		  AND transaction_date >= $3 AND transaction_date < $4;
	`
	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, ownerID, category, start, end).Scan(&total); err != nil {
		return decimal.Zero, mapPgError(err, "failed to sum expenses for %s", category)
	}
	return total, nil
}

func findTransaction(ctx context.Context, q querier, transactionID string, forUpdate bool) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := q.Query(ctx, query, transactionID)
	if err != nil {
		return nil, mapPgError(err, "failed to find transaction %s", transactionID)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Transaction])
	if err != nil {
		return nil, mapPgError(err, "transaction %s", transactionID)
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

func (t *ledgerTx) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := t.tx.Exec(ctx, query,
		m.TransactionID,
		m.OwnerID,
		m.AccountID,
		m.TargetAccountID,
		m.Category,
		m.TransactionType,
		m.Amount,
		m.CurrencyCode,
		m.Description,
		m.TransactionDate,
		m.IsRecurring,
		m.RecurringBillID,
		m.IsDeleted,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	return mapPgError(err, "failed to insert transaction %s", m.TransactionID)
}

func (t *ledgerTx) FindTransactionByIDForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return findTransaction(ctx, t.tx, transactionID, true)
}

func (t *ledgerTx) MarkTransactionDeleted(ctx context.Context, transactionID string, userID string, now time.Time) error {
	query := `
		UPDATE transactions
		SET is_deleted = TRUE, last_updated_at = $2, last_updated_by = $3
		WHERE transaction_id = $1 AND NOT is_deleted;
	`
	ct, err := t.tx.Exec(ctx, query, transactionID, now, userID)
	if err != nil {
		return mapPgError(err, "failed to delete transaction %s", transactionID)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	return nil
}

func (t *ledgerTx) SumSplits(ctx context.Context, transactionID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := t.tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM transaction_splits WHERE transaction_id = $1;`, transactionID).Scan(&total)
	if err != nil {
		return decimal.Zero, mapPgError(err, "failed to sum splits for transaction %s", transactionID)
	}
	return total, nil
}

func (t *ledgerTx) SaveSplit(ctx context.Context, split domain.TransactionSplit) error {
	m := mapping.ToModelSplit(split)
	query := `INSERT INTO transaction_splits (` + splitColumns + `) VALUES ($1, $2, $3, $4, $5, $6);`
	_, err := t.tx.Exec(ctx, query, m.SplitID, m.TransactionID, m.Category, m.Amount, m.CreatedAt, m.CreatedBy)
	return mapPgError(err, "failed to insert split %s for transaction %s", m.Category, m.TransactionID)
}
