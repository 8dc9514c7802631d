package dto

import (
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBudgetRequest defines the data needed to create a monthly category budget.
type CreateBudgetRequest struct {
	Category        string          `json:"category" binding:"required,max=100"`
	Month           int             `json:"month" binding:"required,min=1,max=12"`
	Year            int             `json:"year" binding:"required,min=2000,max=2100"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode    string          `json:"currencyCode" binding:"required,currency_code"`
	RolloverEnabled bool            `json:"rolloverEnabled"`
}

// BudgetPeriodParams selects a budget month.
type BudgetPeriodParams struct {
	Month int `form:"month" json:"month" binding:"required,min=1,max=12"`
	Year  int `form:"year" json:"year" binding:"required,min=2000,max=2100"`
}

// BudgetResponse defines the data returned for a budget.
type BudgetResponse struct {
	BudgetID        string          `json:"budgetID"`
	Category        string          `json:"category"`
	Month           int             `json:"month"`
	Year            int             `json:"year"`
	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currencyCode"`
	RolloverEnabled bool            `json:"rolloverEnabled"`
	SpentAmount     decimal.Decimal `json:"spentAmount"`
}

// BudgetEvaluationResponse reports spending against a budget.
type BudgetEvaluationResponse struct {
	Budget     BudgetResponse    `json:"budget"`
	Spent      decimal.Decimal   `json:"spent"`
	Remaining  decimal.Decimal   `json:"remaining"`
	Percentage decimal.Decimal   `json:"percentage"`
	Alert      domain.AlertLevel `json:"alert,omitempty"`
}

// BudgetSummaryResponse rolls up a month of budgets.
type BudgetSummaryResponse struct {
	Month          int                        `json:"month"`
	Year           int                        `json:"year"`
	TotalBudgeted  decimal.Decimal            `json:"totalBudgeted"`
	TotalSpent     decimal.Decimal            `json:"totalSpent"`
	TotalRemaining decimal.Decimal            `json:"totalRemaining"`
	Budgets        []BudgetEvaluationResponse `json:"budgets"`
}

// ToBudgetResponse converts a domain budget.
func ToBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		BudgetID:        b.BudgetID,
		Category:        b.Category,
		Month:           b.Month,
		Year:            b.Year,
		Amount:          b.Amount,
		CurrencyCode:    b.CurrencyCode,
		RolloverEnabled: b.RolloverEnabled,
		SpentAmount:     b.SpentAmount,
	}
}

// ToBudgetEvaluationResponse converts an evaluation.
func ToBudgetEvaluationResponse(ev *domain.BudgetEvaluation) BudgetEvaluationResponse {
	return BudgetEvaluationResponse{
		Budget:     ToBudgetResponse(&ev.Budget),
		Spent:      ev.Spent,
		Remaining:  ev.Remaining,
		Percentage: ev.Percentage,
		Alert:      ev.Alert,
	}
}

// ToBudgetSummaryResponse converts a monthly summary.
func ToBudgetSummaryResponse(s *domain.BudgetSummary) BudgetSummaryResponse {
	resp := BudgetSummaryResponse{
		Month:          s.Month,
		Year:           s.Year,
		TotalBudgeted:  s.TotalBudgeted,
		TotalSpent:     s.TotalSpent,
		TotalRemaining: s.TotalRemaining,
		Budgets:        make([]BudgetEvaluationResponse, len(s.Budgets)),
	}
	for i := range s.Budgets {
		resp.Budgets[i] = ToBudgetEvaluationResponse(&s.Budgets[i])
	}
	return resp
}
