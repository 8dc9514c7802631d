package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Budget caps spending for one category in one calendar month.
type Budget struct {
	BudgetID        string          `json:"budgetID"`
	OwnerID         string          `json:"ownerID"`
	Category        string          `json:"category"`
	Month           int             `json:"month"` // 1-12
	Year            int             `json:"year"`
	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currencyCode"`
	RolloverEnabled bool            `json:"rolloverEnabled"`
	SpentAmount     decimal.Decimal `json:"spentAmount"` // cache, recomputed on every evaluation
	AuditFields
}

// NextPeriod returns the month and year following the budget's period.
func (b Budget) NextPeriod() (int, int) {
	if b.Month == 12 {
		return 1, b.Year + 1
	}
	return b.Month + 1, b.Year
}

// AlertLevel is the single alert an evaluation may raise.
type AlertLevel string

const (
	AlertNone     AlertLevel = ""
	AlertWarning  AlertLevel = "WARNING_75"
	AlertCritical AlertLevel = "CRITICAL_90"
	AlertExceeded AlertLevel = "EXCEEDED"
)

var (
	warningThreshold  = decimal.NewFromInt(75)
	criticalThreshold = decimal.NewFromInt(90)
	hundred           = decimal.NewFromInt(100)
)

// BudgetEvaluation is a point-in-time view of a budget against actual spending.
type BudgetEvaluation struct {
	Budget     Budget          `json:"budget"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage decimal.Decimal `json:"percentage"`
	Alert      AlertLevel      `json:"alert"`
}

// EvaluateBudget derives remaining, percentage and the alert level from spent.
// Exceeded wins over the percentage thresholds; a zero budget reports 0%.
func EvaluateBudget(b Budget, spent decimal.Decimal) BudgetEvaluation {
	ev := BudgetEvaluation{
		Budget:     b,
		Spent:      spent,
		Remaining:  b.Amount.Sub(spent),
		Percentage: decimal.Zero,
	}
	if !b.Amount.IsZero() {
		ev.Percentage = spent.Div(b.Amount).Mul(hundred).Round(MoneyScale)
	}
	switch {
	case ev.Remaining.IsNegative():
		ev.Alert = AlertExceeded
	case ev.Percentage.GreaterThanOrEqual(criticalThreshold):
		ev.Alert = AlertCritical
	case ev.Percentage.GreaterThanOrEqual(warningThreshold):
		ev.Alert = AlertWarning
	}
	return ev
}

// NotificationType maps the alert to the notification kind it is filed under.
func (e BudgetEvaluation) NotificationType() NotificationType {
	if e.Alert == AlertExceeded {
		return NotificationWarning
	}
	return NotificationBudget
}

// Subject is the short headline for the alert.
func (e BudgetEvaluation) Subject() string {
	if e.Alert == AlertExceeded {
		return fmt.Sprintf("Your %s budget has been exceeded", e.Budget.Category)
	}
	return fmt.Sprintf("Your %s budget is %s%% spent", e.Budget.Category, e.Percentage.StringFixed(0))
}

// Message is the body text for the alert.
func (e BudgetEvaluation) Message() string {
	spent := e.Spent.StringFixed(MoneyScale)
	limit := e.Budget.Amount.StringFixed(MoneyScale)
	if e.Alert == AlertExceeded {
		return fmt.Sprintf("You've spent %s of your %s %s budget.", spent, limit, e.Budget.CurrencyCode)
	}
	return fmt.Sprintf("You've spent %s of %s %s. Only %s remaining.", spent, limit, e.Budget.CurrencyCode, e.Remaining.StringFixed(MoneyScale))
}

// BudgetSummary rolls up every budget of one owner for one month.
type BudgetSummary struct {
	Month          int                `json:"month"`
	Year           int                `json:"year"`
	TotalBudgeted  decimal.Decimal    `json:"totalBudgeted"`
	TotalSpent     decimal.Decimal    `json:"totalSpent"`
	TotalRemaining decimal.Decimal    `json:"totalRemaining"`
	Budgets        []BudgetEvaluation `json:"budgets"`
}

// MonthBounds returns the first day of the month and the first day of the next one.
func MonthBounds(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
