package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/finance_ledger/internal/core/ports/services"
	"github.com/SscSPs/finance_ledger/internal/dto"
	"github.com/SscSPs/finance_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type recurringBillHandler struct {
	billService portssvc.RecurringBillSvcFacade
	now         func() time.Time
}

// RegisterRecurringBillRoutes registers the recurring bill routes.
func RegisterRecurringBillRoutes(rg *gin.RouterGroup, billService portssvc.RecurringBillSvcFacade) {
	h := &recurringBillHandler{billService: billService, now: time.Now}

	bills := rg.Group("/recurring-bills")
	{
		bills.POST("", h.createBill)
		bills.GET("", h.listBills)
		bills.GET("/upcoming", h.listUpcoming)
		bills.GET("/overdue", h.listOverdue)
		bills.POST("/sweep", h.sweep)
		bills.GET("/:id", h.getBill)
		bills.DELETE("/:id", h.deleteBill)
		bills.POST("/:id/deactivate", h.deactivateBill)
		bills.POST("/:id/generate", h.generate)
		bills.POST("/:id/pay", h.pay)
	}
}

// createBill godoc
// @Summary Schedule a recurring bill
// @Tags recurring-bills
// @Accept  json
// @Produce  json
// @Param   bill body dto.CreateRecurringBillRequest true "Bill details"
// @Success 201 {object} dto.RecurringBillResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to create recurring bill"
// @Security BearerAuth
// @Router /recurring-bills [post]
func (h *recurringBillHandler) createBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateRecurringBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateRecurringBill", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	bill, err := h.billService.CreateRecurringBill(c.Request.Context(), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "create recurring bill")
		return
	}

	logger.Info("Recurring bill created", slog.String("bill_id", bill.BillID), slog.String("frequency", string(bill.Frequency)))
	c.JSON(http.StatusCreated, dto.ToRecurringBillResponse(bill))
}

// listBills godoc
// @Summary List the user's recurring bills
// @Tags recurring-bills
// @Produce  json
// @Success 200 {array} dto.RecurringBillResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list recurring bills"
// @Security BearerAuth
// @Router /recurring-bills [get]
func (h *recurringBillHandler) listBills(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	bills, err := h.billService.ListRecurringBills(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, logger, err, "list recurring bills")
		return
	}
	c.JSON(http.StatusOK, dto.ToRecurringBillResponses(bills))
}

// listUpcoming godoc
// @Summary List unpaid bills due soon
// @Tags recurring-bills
// @Produce  json
// @Param   days query int false "Look-ahead window in days" default(7)
// @Success 200 {array} dto.RecurringBillResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list upcoming bills"
// @Security BearerAuth
// @Router /recurring-bills/upcoming [get]
func (h *recurringBillHandler) listUpcoming(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var params dto.ListBillsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListUpcomingBills", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	bills, err := h.billService.ListUpcomingBills(c.Request.Context(), userID, params.Days)
	if err != nil {
		respondWithError(c, logger, err, "list upcoming bills")
		return
	}
	c.JSON(http.StatusOK, dto.ToRecurringBillResponses(bills))
}

// listOverdue godoc
// @Summary List unpaid bills past their due date
// @Tags recurring-bills
// @Produce  json
// @Success 200 {array} dto.RecurringBillResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list overdue bills"
// @Security BearerAuth
// @Router /recurring-bills/overdue [get]
func (h *recurringBillHandler) listOverdue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	bills, err := h.billService.ListOverdueBills(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, logger, err, "list overdue bills")
		return
	}
	c.JSON(http.StatusOK, dto.ToRecurringBillResponses(bills))
}

// getBill godoc
// @Summary Get a recurring bill
// @Tags recurring-bills
// @Produce  json
// @Param   id path string true "Bill ID"
// @Success 200 {object} dto.RecurringBillResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Bill not found"
// @Failure 500 {object} map[string]string "Failed to retrieve recurring bill"
// @Security BearerAuth
// @Router /recurring-bills/{id} [get]
func (h *recurringBillHandler) getBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	bill, err := h.billService.GetRecurringBill(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondWithError(c, logger, err, "retrieve recurring bill")
		return
	}
	c.JSON(http.StatusOK, dto.ToRecurringBillResponse(bill))
}

// deleteBill godoc
// @Summary Delete a recurring bill
// @Description Stops future generation. Already generated transactions are kept.
// @Tags recurring-bills
// @Param   id path string true "Bill ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Bill not found"
// @Failure 500 {object} map[string]string "Failed to delete recurring bill"
// @Security BearerAuth
// @Router /recurring-bills/{id} [delete]
func (h *recurringBillHandler) deleteBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	billID := c.Param("id")
	if err := h.billService.DeleteRecurringBill(c.Request.Context(), billID, userID); err != nil {
		respondWithError(c, logger.With(slog.String("bill_id", billID)), err, "delete recurring bill")
		return
	}
	c.Status(http.StatusNoContent)
}

// deactivateBill godoc
// @Summary Pause a recurring bill
// @Tags recurring-bills
// @Param   id path string true "Bill ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Bill not found"
// @Failure 500 {object} map[string]string "Failed to deactivate recurring bill"
// @Security BearerAuth
// @Router /recurring-bills/{id}/deactivate [post]
func (h *recurringBillHandler) deactivateBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	billID := c.Param("id")
	if err := h.billService.DeactivateRecurringBill(c.Request.Context(), billID, userID); err != nil {
		respondWithError(c, logger.With(slog.String("bill_id", billID)), err, "deactivate recurring bill")
		return
	}
	c.Status(http.StatusNoContent)
}

// generate godoc
// @Summary Generate the next occurrence of a bill
// @Description Posts the bill's transaction if it is due today or earlier and advances the schedule
// @Tags recurring-bills
// @Produce  json
// @Param   id path string true "Bill ID"
// @Success 200 {object} domain.GenerationResult
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Bill not found"
// @Failure 409 {object} map[string]string "Concurrent update, retry"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Failure 500 {object} map[string]string "Failed to generate bill transaction"
// @Security BearerAuth
// @Router /recurring-bills/{id}/generate [post]
func (h *recurringBillHandler) generate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	billID := c.Param("id")
	logger = logger.With(slog.String("bill_id", billID))

	// GenerateOne is owner-agnostic; check ownership first.
	if _, err := h.billService.GetRecurringBill(c.Request.Context(), billID, userID); err != nil {
		respondWithError(c, logger, err, "generate bill transaction")
		return
	}

	result, err := h.billService.GenerateOne(c.Request.Context(), billID)
	if err != nil {
		respondWithError(c, logger, err, "generate bill transaction")
		return
	}

	logger.Info("Bill generation finished", slog.String("outcome", string(result.Outcome)))
	c.JSON(http.StatusOK, result)
}

// pay godoc
// @Summary Pay a bill now
// @Description Records the bill's transaction today and marks the bill paid
// @Tags recurring-bills
// @Produce  json
// @Param   id path string true "Bill ID"
// @Success 201 {object} dto.TransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Bill not found"
// @Failure 409 {object} map[string]string "Concurrent update, retry"
// @Failure 422 {object} map[string]string "Insufficient funds or bill inactive"
// @Failure 500 {object} map[string]string "Failed to pay bill"
// @Security BearerAuth
// @Router /recurring-bills/{id}/pay [post]
func (h *recurringBillHandler) pay(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	billID := c.Param("id")
	txn, err := h.billService.PayBill(c.Request.Context(), billID, userID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("bill_id", billID)), err, "pay bill")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// sweep godoc
// @Summary Run the due-bill sweep now
// @Description Generates every bill due on or before asOf (default today). Failures are counted, not returned.
// @Tags recurring-bills
// @Accept  json
// @Produce  json
// @Param   request body dto.SweepRequest false "Sweep options"
// @Success 200 {object} domain.SweepReport
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to sweep due bills"
// @Security BearerAuth
// @Router /recurring-bills/sweep [post]
func (h *recurringBillHandler) sweep(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUserID(c, logger); !ok {
		return
	}

	var req dto.SweepRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for SweepDueBills", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}
	asOf := h.now()
	if req.AsOf != nil {
		asOf = *req.AsOf
	}

	report, err := h.billService.SweepDueBills(c.Request.Context(), asOf)
	if err != nil {
		respondWithError(c, logger, err, "sweep due bills")
		return
	}
	c.JSON(http.StatusOK, report)
}
