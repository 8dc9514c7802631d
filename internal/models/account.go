package models

import (
	"github.com/shopspring/decimal"
)

// AccountType mirrors the account_type enum column.
type AccountType string

// Account is a row of the accounts table.
type Account struct {
	AccountID    string          `db:"account_id"`
	OwnerID      string          `db:"owner_id"`
	Name         string          `db:"name"`
	AccountType  AccountType     `db:"account_type"`
	CurrencyCode string          `db:"currency_code"`
	Balance      decimal.Decimal `db:"balance"`
	IsActive     bool            `db:"is_active"`
	IsDeleted    bool            `db:"is_deleted"`
	AuditFields
}
