package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/finance_ledger/internal/models"
	"github.com/SscSPs/finance_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const currencyColumns = `currency_code, symbol, name, is_active, created_at, created_by, last_updated_at, last_updated_by`

const exchangeRateColumns = `exchange_rate_id, from_currency, to_currency, rate, rate_date, source, last_fetched_at,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxCurrencyRepository stores currencies, their daily exchange rates and the audit log.
type PgxCurrencyRepository struct {
	pool *pgxpool.Pool
}

func newPgxCurrencyRepository(pool *pgxpool.Pool) *PgxCurrencyRepository {
	return &PgxCurrencyRepository{pool: pool}
}

var (
	_ portsrepo.CurrencyRepositoryFacade     = (*PgxCurrencyRepository)(nil)
	_ portsrepo.ExchangeRateRepositoryFacade = (*PgxCurrencyRepository)(nil)
	_ portsrepo.AuditWriter                  = (*PgxCurrencyRepository)(nil)
)

func (r *PgxCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	m := mapping.ToModelCurrency(currency)
	query := `INSERT INTO currencies (` + currencyColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	_, err := r.pool.Exec(ctx, query,
		m.CurrencyCode,
		m.Symbol,
		m.Name,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	return mapPgError(err, "failed to save currency %s", m.CurrencyCode)
}

func (r *PgxCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+currencyColumns+` FROM currencies WHERE currency_code = $1;`, currencyCode)
	if err != nil {
		return nil, mapPgError(err, "failed to find currency %s", currencyCode)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Currency])
	if err != nil {
		return nil, mapPgError(err, "currency %s", currencyCode)
	}
	c := mapping.ToDomainCurrency(m)
	return &c, nil
}

func (r *PgxCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+currencyColumns+` FROM currencies ORDER BY currency_code;`)
	if err != nil {
		return nil, mapPgError(err, "failed to list currencies")
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Currency])
	if err != nil {
		return nil, mapPgError(err, "failed to scan currencies")
	}
	return mapping.ToDomainCurrencySlice(ms), nil
}

// FindLatestExchangeRate returns the newest stored rate dated on or before onOrBefore.
func (r *PgxCurrencyRepository) FindLatestExchangeRate(ctx context.Context, fromCurrency, toCurrency string, onOrBefore time.Time) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE from_currency = $1 AND to_currency = $2 AND rate_date <= $3
		ORDER BY rate_date DESC
		LIMIT 1;
	`
	rows, err := r.pool.Query(ctx, query, fromCurrency, toCurrency, domain.DateOf(onOrBefore))
	if err != nil {
		return nil, mapPgError(err, "failed to find exchange rate %s->%s", fromCurrency, toCurrency)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.ExchangeRate])
	if err != nil {
		return nil, mapPgError(err, "exchange rate %s->%s", fromCurrency, toCurrency)
	}
	rate := mapping.ToDomainExchangeRate(m)
	return &rate, nil
}

// UpsertExchangeRate keeps one rate per pair and day; a refetch overwrites the rate and its source.
func (r *PgxCurrencyRepository) UpsertExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	m := mapping.ToModelExchangeRate(rate)
	query := `
		INSERT INTO exchange_rates (` + exchangeRateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (from_currency, to_currency, rate_date) DO UPDATE
		SET rate = EXCLUDED.rate,
		    source = EXCLUDED.source,
		    last_fetched_at = EXCLUDED.last_fetched_at,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.pool.Exec(ctx, query,
		m.ExchangeRateID,
		m.FromCurrency,
		m.ToCurrency,
		m.Rate,
		m.RateDate,
		m.Source,
		m.LastFetchedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	return mapPgError(err, "failed to upsert exchange rate %s->%s", m.FromCurrency, m.ToCurrency)
}

func (r *PgxCurrencyRepository) SaveAuditEntry(ctx context.Context, entry domain.AuditEntry) error {
	m := mapping.ToModelAuditEntry(entry)
	query := `
		INSERT INTO audit_log (audit_id, user_id, table_name, record_id, action, old_data, new_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.pool.Exec(ctx, query, m.AuditID, m.UserID, m.TableName, m.RecordID, m.Action, m.OldData, m.NewData, m.CreatedAt)
	return mapPgError(err, "failed to write audit entry for %s %s", m.TableName, m.RecordID)
}
