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
	"github.com/shopspring/decimal"
)

const budgetColumns = `budget_id, owner_id, category, month, year, amount, currency_code, rollover_enabled, spent_amount,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxBudgetRepository struct {
	pool *pgxpool.Pool
}

func newPgxBudgetRepository(pool *pgxpool.Pool) *PgxBudgetRepository {
	return &PgxBudgetRepository{pool: pool}
}

var _ portsrepo.BudgetRepositoryFacade = (*PgxBudgetRepository)(nil)

// SaveBudget inserts a budget. A second budget for the same owner, category and period is ErrDuplicate.
func (r *PgxBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	m := mapping.ToModelBudget(budget)
	query := `
		INSERT INTO budgets (` + budgetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.pool.Exec(ctx, query,
		m.BudgetID,
		m.OwnerID,
		m.Category,
		m.Month,
		m.Year,
		m.Amount,
		m.CurrencyCode,
		m.RolloverEnabled,
		m.SpentAmount,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	return mapPgError(err, "failed to save budget for %s %02d/%d", m.Category, m.Month, m.Year)
}

func (r *PgxBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	return r.findOne(ctx, `budget_id = $1`, budgetID)
}

func (r *PgxBudgetRepository) FindBudget(ctx context.Context, ownerID, category string, month, year int) (*domain.Budget, error) {
	return r.findOne(ctx, `owner_id = $1 AND category = $2 AND month = $3 AND year = $4`, ownerID, category, month, year)
}

func (r *PgxBudgetRepository) findOne(ctx context.Context, where string, args ...any) (*domain.Budget, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE `+where, args...)
	if err != nil {
		return nil, mapPgError(err, "failed to find budget")
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Budget])
	if err != nil {
		return nil, mapPgError(err, "budget")
	}
	b := mapping.ToDomainBudget(m)
	return &b, nil
}

func (r *PgxBudgetRepository) ListBudgetsByPeriod(ctx context.Context, month, year int) ([]domain.Budget, error) {
	return r.list(ctx, `month = $1 AND year = $2`, month, year)
}

func (r *PgxBudgetRepository) ListBudgetsByOwnerPeriod(ctx context.Context, ownerID string, month, year int) ([]domain.Budget, error) {
	return r.list(ctx, `owner_id = $1 AND month = $2 AND year = $3`, ownerID, month, year)
}

func (r *PgxBudgetRepository) list(ctx context.Context, where string, args ...any) ([]domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE ` + where + ` ORDER BY owner_id, category;`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "failed to list budgets")
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Budget])
	if err != nil {
		return nil, mapPgError(err, "failed to scan budgets")
	}
	return mapping.ToDomainBudgetSlice(ms), nil
}

// UpdateBudgetSpent refreshes the cached spent amount; it is not the source of truth.
func (r *PgxBudgetRepository) UpdateBudgetSpent(ctx context.Context, budgetID string, spent decimal.Decimal, now time.Time) error {
	ct, err := r.pool.Exec(ctx, `UPDATE budgets SET spent_amount = $2, last_updated_at = $3 WHERE budget_id = $1;`, budgetID, spent, now)
	if err != nil {
		return mapPgError(err, "failed to update spent amount of budget %s", budgetID)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: budget %s", apperrors.ErrNotFound, budgetID)
	}
	return nil
}
