package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/finance_ledger/internal/core/ports/services"
	"github.com/SscSPs/finance_ledger/internal/dto"
	"github.com/SscSPs/finance_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type budgetHandler struct {
	budgetService portssvc.BudgetSvcFacade
}

// RegisterBudgetRoutes registers the budget routes.
func RegisterBudgetRoutes(rg *gin.RouterGroup, budgetService portssvc.BudgetSvcFacade) {
	h := &budgetHandler{budgetService: budgetService}

	budgets := rg.Group("/budgets")
	{
		budgets.POST("", h.createBudget)
		budgets.GET("", h.getSummary)
		budgets.POST("/rollover", h.rollover)
		budgets.GET("/:id/evaluation", h.evaluate)
	}
}

// createBudget godoc
// @Summary Create a monthly category budget
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budget body dto.CreateBudgetRequest true "Budget details"
// @Success 201 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "A budget already exists for this category and month"
// @Failure 500 {object} map[string]string "Failed to create budget"
// @Security BearerAuth
// @Router /budgets [post]
func (h *budgetHandler) createBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateBudget", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	budget, err := h.budgetService.CreateBudget(c.Request.Context(), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "create budget")
		return
	}

	logger.Info("Budget created", slog.String("budget_id", budget.BudgetID), slog.String("category", budget.Category))
	c.JSON(http.StatusCreated, dto.ToBudgetResponse(budget))
}

// getSummary godoc
// @Summary Summarise a month of budgets
// @Tags budgets
// @Produce  json
// @Param   month query int true "Month (1-12)"
// @Param   year query int true "Year"
// @Success 200 {object} dto.BudgetSummaryResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to summarise budgets"
// @Security BearerAuth
// @Router /budgets [get]
func (h *budgetHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var params dto.BudgetPeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for BudgetSummary", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	summary, err := h.budgetService.GetBudgetSummary(c.Request.Context(), userID, params.Month, params.Year)
	if err != nil {
		respondWithError(c, logger, err, "summarise budgets")
		return
	}
	c.JSON(http.StatusOK, dto.ToBudgetSummaryResponse(summary))
}

// evaluate godoc
// @Summary Evaluate spending against a budget
// @Tags budgets
// @Produce  json
// @Param   id path string true "Budget ID"
// @Success 200 {object} dto.BudgetEvaluationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 500 {object} map[string]string "Failed to evaluate budget"
// @Security BearerAuth
// @Router /budgets/{id}/evaluation [get]
func (h *budgetHandler) evaluate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	budgetID := c.Param("id")
	ev, err := h.budgetService.EvaluateByID(c.Request.Context(), budgetID, userID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("budget_id", budgetID)), err, "evaluate budget")
		return
	}
	c.JSON(http.StatusOK, dto.ToBudgetEvaluationResponse(ev))
}

// rollover godoc
// @Summary Roll unspent budget into next month
// @Description For each rollover-enabled budget of the month, adds the unspent remainder to next month's budget
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   period body dto.BudgetPeriodParams true "Month to roll over"
// @Success 200 {array} dto.BudgetResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to roll over budgets"
// @Security BearerAuth
// @Router /budgets/rollover [post]
func (h *budgetHandler) rollover(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BudgetPeriodParams
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RolloverBudgets", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	budgets, err := h.budgetService.RolloverBudgets(c.Request.Context(), userID, req.Month, req.Year)
	if err != nil {
		respondWithError(c, logger, err, "roll over budgets")
		return
	}

	resp := make([]dto.BudgetResponse, len(budgets))
	for i := range budgets {
		resp[i] = dto.ToBudgetResponse(&budgets[i])
	}
	logger.Info("Budgets rolled over", slog.Int("count", len(resp)))
	c.JSON(http.StatusOK, resp)
}
