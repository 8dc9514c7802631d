package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is the value of one unit of FromCurrency in ToCurrency on RateDate.
// (FromCurrency, ToCurrency, RateDate) is unique; refetching overwrites Rate and LastFetchedAt.
type ExchangeRate struct {
	ExchangeRateID string          `json:"exchangeRateID"`
	FromCurrency   string          `json:"fromCurrency"`
	ToCurrency     string          `json:"toCurrency"`
	Rate           decimal.Decimal `json:"rate"`
	RateDate       time.Time       `json:"rateDate"`
	Source         string          `json:"source"`
	LastFetchedAt  time.Time       `json:"lastFetchedAt"`
	AuditFields
}

// Conversion is the auditable result of converting an amount between currencies.
type Conversion struct {
	Amount       decimal.Decimal `json:"amount"`
	FromCurrency string          `json:"fromCurrency"`
	ToCurrency   string          `json:"toCurrency"`
	Converted    decimal.Decimal `json:"converted"`
	Rate         decimal.Decimal `json:"rate"`
	RateDate     time.Time       `json:"rateDate"`
	Source       string          `json:"source"`
}

// FetchedRates is a batch of latest rates returned by a provider for one base currency.
type FetchedRates struct {
	Base   string
	Date   time.Time
	Rates  map[string]decimal.Decimal
	Source string
}
