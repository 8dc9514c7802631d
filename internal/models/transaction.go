package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType mirrors the transaction_type enum column.
type TransactionType string

// Transaction is a row of the transactions table. Nullable columns are pointers.
type Transaction struct {
	TransactionID   string          `db:"transaction_id"`
	OwnerID         string          `db:"owner_id"`
	AccountID       string          `db:"account_id"`
	TargetAccountID *string         `db:"target_account_id"`
	Category        *string         `db:"category"`
	TransactionType TransactionType `db:"transaction_type"`
	Amount          decimal.Decimal `db:"amount"`
	CurrencyCode    string          `db:"currency_code"`
	Description     string          `db:"description"`
	TransactionDate time.Time       `db:"transaction_date"`
	IsRecurring     bool            `db:"is_recurring"`
	RecurringBillID *string         `db:"recurring_bill_id"`
	IsDeleted       bool            `db:"is_deleted"`
	AuditFields
}

// TransactionSplit is a row of the transaction_splits table.
type TransactionSplit struct {
	SplitID       string          `db:"split_id"`
	TransactionID string          `db:"transaction_id"`
	Category      string          `db:"category"`
	Amount        decimal.Decimal `db:"amount"`
	CreatedAt     time.Time       `db:"created_at"`
	CreatedBy     string          `db:"created_by"`
}
