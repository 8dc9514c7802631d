package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/finance_ledger/internal/core/ports/services"
	"github.com/SscSPs/finance_ledger/internal/dto"
	"github.com/SscSPs/finance_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type exchangeRateHandler struct {
	rateService portssvc.ExchangeRateSvcFacade
}

// RegisterExchangeRateRoutes registers conversion and rate refresh routes.
func RegisterExchangeRateRoutes(rg *gin.RouterGroup, rateService portssvc.ExchangeRateSvcFacade) {
	h := &exchangeRateHandler{rateService: rateService}

	rates := rg.Group("/exchange-rates")
	{
		rates.GET("/convert", h.convert)
		rates.POST("/fetch", h.fetch)
	}
}

// convert godoc
// @Summary Convert an amount between currencies
// @Description Uses the newest stored rate on or before date, fetching from the provider on a miss
// @Tags exchange-rates
// @Produce  json
// @Param   amount query string true "Amount to convert"
// @Param   from query string true "Source currency code"
// @Param   to query string true "Target currency code"
// @Param   date query string false "Rate date (YYYY-MM-DD), default today"
// @Success 200 {object} dto.ConversionResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No rate available"
// @Failure 500 {object} map[string]string "Failed to convert amount"
// @Security BearerAuth
// @Router /exchange-rates/convert [get]
func (h *exchangeRateHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ConvertParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for Convert", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	amount, err := decimal.NewFromString(params.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount: " + params.Amount})
		return
	}

	var date *time.Time
	if params.Date != "" {
		d, err := time.Parse(time.DateOnly, params.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date: " + params.Date})
			return
		}
		date = &d
	}

	conv, err := h.rateService.Convert(c.Request.Context(), amount, params.From, params.To, date)
	if err != nil {
		respondWithError(c, logger.With(slog.String("from", params.From), slog.String("to", params.To)), err, "convert amount")
		return
	}

	c.JSON(http.StatusOK, dto.ConversionResponse{
		Amount:       conv.Amount,
		FromCurrency: conv.FromCurrency,
		ToCurrency:   conv.ToCurrency,
		Converted:    conv.Converted,
		Rate:         conv.Rate,
		RateDate:     conv.RateDate,
		Source:       conv.Source,
	})
}

// fetch godoc
// @Summary Refresh exchange rates from the provider
// @Tags exchange-rates
// @Accept  json
// @Produce  json
// @Param   request body dto.FetchRatesRequest true "Base and target currencies"
// @Success 200 {object} dto.FetchRatesResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 503 {object} map[string]string "Rate provider unavailable"
// @Failure 500 {object} map[string]string "Failed to fetch exchange rates"
// @Security BearerAuth
// @Router /exchange-rates/fetch [post]
func (h *exchangeRateHandler) fetch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.FetchRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for FetchRates", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	stored, err := h.rateService.FetchAndStoreRates(c.Request.Context(), req.Base, req.Targets)
	if err != nil {
		respondWithError(c, logger, err, "fetch exchange rates")
		return
	}

	logger.Info("Exchange rates refreshed", slog.String("base", req.Base), slog.Int("stored", stored))
	c.JSON(http.StatusOK, dto.FetchRatesResponse{Stored: stored})
}
