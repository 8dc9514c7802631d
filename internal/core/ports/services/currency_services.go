package services

import (
	"context"
	"time"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/SscSPs/finance_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// CurrencyReaderSvc defines read operations for currency data
type CurrencyReaderSvc interface {
	// GetCurrencyByCode retrieves a specific currency by its code.
	GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies retrieves all available currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// CurrencyWriterSvc defines write operations for currency data
type CurrencyWriterSvc interface {
	// CreateCurrency persists a new currency.
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error)
}

// CurrencySvcFacade combines all currency-related service interfaces
type CurrencySvcFacade interface {
	CurrencyReaderSvc
	CurrencyWriterSvc
}

// ExchangeRateReaderSvc defines conversion operations
type ExchangeRateReaderSvc interface {
	// Convert converts amount using the latest rate on or before date (today when nil).
	Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string, date *time.Time) (*domain.Conversion, error)
}

// ExchangeRateWriterSvc defines rate ingestion
type ExchangeRateWriterSvc interface {
	// FetchAndStoreRates pulls the latest rates for base from the provider and upserts them.
	FetchAndStoreRates(ctx context.Context, base string, targets []string) (int, error)
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateWriterSvc
}

// RateProvider is an external market-data source.
type RateProvider interface {
	// LookupRate returns the rate base -> target for a date.
	LookupRate(ctx context.Context, base, target string, date time.Time) (decimal.Decimal, error)

	// FetchLatest returns the latest rates for base against each target.
	FetchLatest(ctx context.Context, base string, targets []string) (*domain.FetchedRates, error)

	// Name identifies the provider in stored rates.
	Name() string
}
