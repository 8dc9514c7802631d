package mapping

import (
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/SscSPs/finance_ledger/internal/models"
)

// ToModelExchangeRate converts a domain ExchangeRate to a model ExchangeRate
func ToModelExchangeRate(d domain.ExchangeRate) models.ExchangeRate {
	return models.ExchangeRate{
		ExchangeRateID: d.ExchangeRateID,
		FromCurrency:   d.FromCurrency,
		ToCurrency:     d.ToCurrency,
		Rate:           d.Rate,
		RateDate:       domain.DateOf(d.RateDate),
		Source:         d.Source,
		LastFetchedAt:  d.LastFetchedAt,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainExchangeRate converts a model ExchangeRate to a domain ExchangeRate
func ToDomainExchangeRate(m models.ExchangeRate) domain.ExchangeRate {
	return domain.ExchangeRate{
		ExchangeRateID: m.ExchangeRateID,
		FromCurrency:   m.FromCurrency,
		ToCurrency:     m.ToCurrency,
		Rate:           m.Rate,
		RateDate:       domain.DateOf(m.RateDate),
		Source:         m.Source,
		LastFetchedAt:  m.LastFetchedAt,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}
