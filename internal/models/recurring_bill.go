package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringBill is a row of the recurring_bills table.
type RecurringBill struct {
	BillID            string          `db:"bill_id"`
	OwnerID           string          `db:"owner_id"`
	AccountID         string          `db:"account_id"`
	Category          *string         `db:"category"`
	Name              string          `db:"name"`
	Amount            decimal.Decimal `db:"amount"`
	CurrencyCode      string          `db:"currency_code"`
	TransactionType   TransactionType `db:"transaction_type"`
	Frequency         string          `db:"frequency"`
	StartDate         time.Time       `db:"start_date"`
	NextDueDate       time.Time       `db:"next_due_date"`
	EndDate           *time.Time      `db:"end_date"`
	LastGeneratedDate *time.Time      `db:"last_generated_date"`
	IsActive          bool            `db:"is_active"`
	IsPaid            bool            `db:"is_paid"`
	IsDeleted         bool            `db:"is_deleted"`
	AuditFields
}
