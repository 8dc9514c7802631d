package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate stores the conversion rate between two currencies for a specific date.
// (from_currency, to_currency, rate_date) is unique.
type ExchangeRate struct {
	ExchangeRateID string          `db:"exchange_rate_id"`
	FromCurrency   string          `db:"from_currency"`
	ToCurrency     string          `db:"to_currency"`
	Rate           decimal.Decimal `db:"rate"`
	RateDate       time.Time       `db:"rate_date"`
	Source         string          `db:"source"`
	LastFetchedAt  time.Time       `db:"last_fetched_at"`
	AuditFields
}
