package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_ledger/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const identitySource = "identity"

// exchangeRateService converts amounts using stored rates, falling back to an external provider.
type exchangeRateService struct {
	BaseService
	rateRepo portsrepo.ExchangeRateRepositoryFacade
	provider portssvc.RateProvider
}

// ExchangeRateOption is a functional option for configuring the exchange rate service
type ExchangeRateOption func(*exchangeRateService)

// WithRateProvider sets the market-data provider used on a cache miss and for refreshes
func WithRateProvider(provider portssvc.RateProvider) ExchangeRateOption {
	return func(s *exchangeRateService) {
		s.provider = provider
	}
}

// WithExchangeRateClock overrides the time source
func WithExchangeRateClock(clock Clock) ExchangeRateOption {
	return func(s *exchangeRateService) {
		s.clock = clock
	}
}

// NewExchangeRateService creates a new exchange rate service.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade, options ...ExchangeRateOption) portssvc.ExchangeRateSvcFacade {
	svc := &exchangeRateService{rateRepo: rateRepo}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

func (s *exchangeRateService) Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string, date *time.Time) (*domain.Conversion, error) {
	fromCode = strings.ToUpper(fromCode)
	toCode = strings.ToUpper(toCode)
	if len(fromCode) != 3 || len(toCode) != 3 {
		return nil, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount cannot be negative", apperrors.ErrValidation)
	}

	on := domain.DateOf(s.Now())
	if date != nil {
		on = domain.DateOf(*date)
	}

	if fromCode == toCode {
		return &domain.Conversion{
			Amount:       amount,
			FromCurrency: fromCode,
			ToCurrency:   toCode,
			Converted:    amount.Round(domain.MoneyScale),
			Rate:         decimal.NewFromInt(1),
			RateDate:     on,
			Source:       identitySource,
		}, nil
	}

	rate, err := s.findRate(ctx, fromCode, toCode, on)
	if err != nil {
		s.logOutcome(ctx, err, "Failed to resolve exchange rate",
			slog.String("from", fromCode), slog.String("to", toCode), slog.Time("date", on))
		return nil, err
	}

	return &domain.Conversion{
		Amount:       amount,
		FromCurrency: fromCode,
		ToCurrency:   toCode,
		Converted:    amount.Mul(rate.Rate).Round(domain.MoneyScale),
		Rate:         rate.Rate,
		RateDate:     rate.RateDate,
		Source:       rate.Source,
	}, nil
}

// findRate returns the newest stored rate on or before `on`. On a miss it asks the
// provider for that date and stores the answer for next time.
func (s *exchangeRateService) findRate(ctx context.Context, fromCode, toCode string, on time.Time) (*domain.ExchangeRate, error) {
	rate, err := s.rateRepo.FindLatestExchangeRate(ctx, fromCode, toCode, on)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if s.provider == nil {
		return nil, fmt.Errorf("%w: no rate %s->%s on or before %s", apperrors.ErrRateNotFound, fromCode, toCode, on.Format(time.DateOnly))
	}

	value, perr := s.provider.LookupRate(ctx, fromCode, toCode, on)
	if perr != nil {
		return nil, fmt.Errorf("%w: no rate %s->%s on or before %s (%w)", apperrors.ErrRateNotFound, fromCode, toCode, on.Format(time.DateOnly), perr)
	}

	fetched := s.newRate(fromCode, toCode, value, on, s.provider.Name())
	if err := s.rateRepo.UpsertExchangeRate(ctx, fetched); err != nil {
		s.LogWarn(ctx, err, "Failed to store looked up exchange rate",
			slog.String("from", fromCode), slog.String("to", toCode))
	}
	return &fetched, nil
}

func (s *exchangeRateService) FetchAndStoreRates(ctx context.Context, base string, targets []string) (int, error) {
	if s.provider == nil {
		return 0, fmt.Errorf("%w: no rate provider configured", apperrors.ErrExternalServiceUnavailable)
	}
	base = strings.ToUpper(base)
	fetched, err := s.provider.FetchLatest(ctx, base, targets)
	if err != nil {
		s.LogError(ctx, err, "Rate provider failed", slog.String("provider", s.provider.Name()), slog.String("base", base))
		if errors.Is(err, apperrors.ErrExternalServiceUnavailable) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %s: %w", apperrors.ErrExternalServiceUnavailable, s.provider.Name(), err)
	}

	source := fetched.Source
	if source == "" {
		source = s.provider.Name()
	}
	date := domain.DateOf(fetched.Date)
	if fetched.Date.IsZero() {
		date = domain.DateOf(s.Now())
	}

	stored := 0
	var errs []error
	for code, value := range fetched.Rates {
		code = strings.ToUpper(code)
		if code == base || !value.IsPositive() {
			continue
		}
		rate := s.newRate(base, code, value, date, source)
		if err := s.rateRepo.UpsertExchangeRate(ctx, rate); err != nil {
			errs = append(errs, fmt.Errorf("store %s->%s: %w", base, code, err))
			continue
		}
		stored++
	}

	s.LogInfo(ctx, "Exchange rates refreshed",
		slog.String("base", base),
		slog.Int("stored", stored),
		slog.Int("failed", len(errs)))
	return stored, errors.Join(errs...)
}

func (s *exchangeRateService) newRate(from, to string, value decimal.Decimal, date time.Time, source string) domain.ExchangeRate {
	now := s.Now()
	return domain.ExchangeRate{
		ExchangeRateID: uuid.NewString(),
		FromCurrency:   from,
		ToCurrency:     to,
		Rate:           value.Round(domain.RateScale),
		RateDate:       date,
		Source:         source,
		LastFetchedAt:  now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     SystemActor,
			LastUpdatedAt: now,
			LastUpdatedBy: SystemActor,
		},
	}
}
