package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
)

var (
	_ portsrepo.CurrencyRepositoryFacade     = (*Store)(nil)
	_ portsrepo.ExchangeRateRepositoryFacade = (*Store)(nil)
	_ portsrepo.AuditWriter                  = (*Store)(nil)
)

func (s *Store) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.currencies[currencyCode]
	if !ok {
		return nil, notFound("currency", currencyCode)
	}
	return &c, nil
}

func (s *Store) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	s.mu.RLock()
	list := make([]domain.Currency, 0, len(s.currencies))
	for _, c := range s.currencies {
		list = append(list, c)
	}
	s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].CurrencyCode < list[j].CurrencyCode })
	return list, nil
}

func (s *Store) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.currencies[currency.CurrencyCode]; ok {
		return duplicate("currency", currency.CurrencyCode)
	}
	s.currencies[currency.CurrencyCode] = currency
	return nil
}

func rateKey(from, to string, date time.Time) string {
	return from + "|" + to + "|" + domain.DateOf(date).Format(time.DateOnly)
}

func (s *Store) FindLatestExchangeRate(ctx context.Context, fromCurrency, toCurrency string, onOrBefore time.Time) (*domain.ExchangeRate, error) {
	limit := domain.DateOf(onOrBefore)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *domain.ExchangeRate
	for _, r := range s.rates {
		if r.FromCurrency != fromCurrency || r.ToCurrency != toCurrency || r.RateDate.After(limit) {
			continue
		}
		if best == nil || r.RateDate.After(best.RateDate) {
			r := r
			best = &r
		}
	}
	if best == nil {
		return nil, notFound("exchange rate", fromCurrency+"->"+toCurrency)
	}
	return best, nil
}

func (s *Store) UpsertExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	rate.RateDate = domain.DateOf(rate.RateDate)
	key := rateKey(rate.FromCurrency, rate.ToCurrency, rate.RateDate)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.rates[key]; ok {
		existing.Rate = rate.Rate
		existing.Source = rate.Source
		existing.LastFetchedAt = rate.LastFetchedAt
		existing.LastUpdatedAt = rate.LastUpdatedAt
		existing.LastUpdatedBy = rate.LastUpdatedBy
		s.rates[key] = existing
		return nil
	}
	s.rates[key] = rate
	return nil
}

func (s *Store) SaveAuditEntry(ctx context.Context, entry domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, entry)
	return nil
}

// AuditEntries returns a copy of the audit trail in insertion order.
func (s *Store) AuditEntries() []domain.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.AuditEntry(nil), s.audit...)
}
