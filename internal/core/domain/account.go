package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType classifies what kind of real-world account is tracked.
type AccountType string

const (
	Bank       AccountType = "BANK"
	Savings    AccountType = "SAVINGS"
	CreditCard AccountType = "CREDIT_CARD"
	Loan       AccountType = "LOAN"
	Investment AccountType = "INVESTMENT"
	Cash       AccountType = "CASH"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case Bank, Savings, CreditCard, Loan, Investment, Cash:
		return true
	}
	return false
}

// Account represents a financial account within the core domain.
// Balance is always expressed in CurrencyCode and only the ledger mutates it.
type Account struct {
	AccountID    string          `json:"accountID"`    // Primary Key (UUID)
	OwnerID      string          `json:"ownerID"`      // FK -> users.user_id
	Name         string          `json:"name"`         // User-defined name
	AccountType  AccountType     `json:"accountType"`  // BANK, SAVINGS, etc.
	CurrencyCode string          `json:"currencyCode"` // FK -> currencies.currency_code
	Balance      decimal.Decimal `json:"balance"`
	IsActive     bool            `json:"isActive"`
	IsDeleted    bool            `json:"isDeleted"`
	AuditFields
}

// Usable reports whether the account may take part in new ledger activity.
func (a Account) Usable() bool {
	return a.IsActive && !a.IsDeleted
}
