package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConvertParams defines query parameters for a currency conversion.
type ConvertParams struct {
	Amount string `form:"amount" binding:"required"`
	From   string `form:"from" binding:"required,currency_code"`
	To     string `form:"to" binding:"required,currency_code"`
	Date   string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// ConversionResponse reports a conversion with the rate used.
type ConversionResponse struct {
	Amount       decimal.Decimal `json:"amount"`
	FromCurrency string          `json:"fromCurrency"`
	ToCurrency   string          `json:"toCurrency"`
	Converted    decimal.Decimal `json:"converted"`
	Rate         decimal.Decimal `json:"rate"`
	RateDate     time.Time       `json:"rateDate"`
	Source       string          `json:"source,omitempty"`
}

// FetchRatesRequest triggers a provider refresh.
type FetchRatesRequest struct {
	Base    string   `json:"base" binding:"required,currency_code"`
	Targets []string `json:"targets" binding:"required,min=1,dive,currency_code"`
}

// FetchRatesResponse reports how many rates were stored.
type FetchRatesResponse struct {
	Stored int `json:"stored"`
}
