package models

import "github.com/shopspring/decimal"

// Budget is a row of the budgets table. (owner_id, category, month, year) is unique.
type Budget struct {
	BudgetID        string          `db:"budget_id"`
	OwnerID         string          `db:"owner_id"`
	Category        string          `db:"category"`
	Month           int             `db:"month"`
	Year            int             `db:"year"`
	Amount          decimal.Decimal `db:"amount"`
	CurrencyCode    string          `db:"currency_code"`
	RolloverEnabled bool            `db:"rollover_enabled"`
	SpentAmount     decimal.Decimal `db:"spent_amount"`
	AuditFields
}
