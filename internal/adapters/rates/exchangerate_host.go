package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/finance_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

const providerName = "ExchangeRate.host"

type ratesResponse struct {
	Success bool                       `json:"success"`
	Base    string                     `json:"base"`
	Date    string                     `json:"date"`
	Rates   map[string]decimal.Decimal `json:"rates"`
	Error   *struct {
		Code int    `json:"code"`
		Info string `json:"info"`
	} `json:"error,omitempty"`
}

// ExchangeRateHost reads rates from an exchangerate.host compatible API
// (also served by Fixer): /latest and /YYYY-MM-DD with base and symbols.
type ExchangeRateHost struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ portssvc.RateProvider = (*ExchangeRateHost)(nil)

func NewExchangeRateHost(baseURL, apiKey string, timeout time.Duration) *ExchangeRateHost {
	return &ExchangeRateHost{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *ExchangeRateHost) Name() string { return providerName }

// LookupRate returns base -> target for date.
func (p *ExchangeRateHost) LookupRate(ctx context.Context, base, target string, date time.Time) (decimal.Decimal, error) {
	resp, err := p.get(ctx, date.Format(time.DateOnly), base, []string{target})
	if err != nil {
		return decimal.Zero, err
	}
	rate, ok := resp.Rates[strings.ToUpper(target)]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s has no %s/%s rate for %s", apperrors.ErrRateNotFound, providerName, base, target, date.Format(time.DateOnly))
	}
	return rate, nil
}

// FetchLatest returns the latest rates for base against each target. Targets
// the provider does not quote are left out.
func (p *ExchangeRateHost) FetchLatest(ctx context.Context, base string, targets []string) (*domain.FetchedRates, error) {
	resp, err := p.get(ctx, "latest", base, targets)
	if err != nil {
		return nil, err
	}

	date, err := time.Parse(time.DateOnly, resp.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %s returned date %q", apperrors.ErrExternalServiceUnavailable, providerName, resp.Date)
	}

	out := &domain.FetchedRates{
		Base:   strings.ToUpper(base),
		Date:   date,
		Rates:  make(map[string]decimal.Decimal, len(targets)),
		Source: providerName,
	}
	for _, t := range targets {
		code := strings.ToUpper(t)
		if rate, ok := resp.Rates[code]; ok && rate.IsPositive() {
			out.Rates[code] = rate
		}
	}
	return out, nil
}

func (p *ExchangeRateHost) get(ctx context.Context, path, base string, symbols []string) (*ratesResponse, error) {
	q := url.Values{}
	q.Set("base", strings.ToUpper(base))
	q.Set("symbols", strings.ToUpper(strings.Join(symbols, ",")))
	if p.apiKey != "" {
		q.Set("access_key", p.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/"+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	httpResp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrExternalServiceUnavailable, providerName, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s status %d", apperrors.ErrExternalServiceUnavailable, providerName, httpResp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode %s response: %v", apperrors.ErrExternalServiceUnavailable, providerName, err)
	}
	if !body.Success {
		info := "unsuccessful response"
		if body.Error != nil {
			info = fmt.Sprintf("error %d: %s", body.Error.Code, body.Error.Info)
		}
		return nil, fmt.Errorf("%w: %s %s", apperrors.ErrExternalServiceUnavailable, providerName, info)
	}
	return &body, nil
}
