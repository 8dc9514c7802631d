package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a ledger transaction.
type TransactionType string

const (
	Income   TransactionType = "INCOME"
	Expense  TransactionType = "EXPENSE"
	Transfer TransactionType = "TRANSFER"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

// Transaction is a single movement of money recorded against an account.
type Transaction struct {
	TransactionID   string          `json:"transactionID"`   // Primary Key (UUID)
	OwnerID         string          `json:"ownerID"`         // FK -> users.user_id
	AccountID       string          `json:"accountID"`       // Source account
	TargetAccountID string          `json:"targetAccountID"` // Set iff TransactionType is TRANSFER
	Category        string          `json:"category"`        // Optional
	TransactionType TransactionType `json:"transactionType"`
	Amount          decimal.Decimal `json:"amount"`       // Always positive
	CurrencyCode    string          `json:"currencyCode"` // Equals the source account currency
	Description     string          `json:"description"`
	TransactionDate time.Time       `json:"transactionDate"`
	IsRecurring     bool            `json:"isRecurring"`
	RecurringBillID string          `json:"recurringBillID"` // Bill that generated this transaction, if any
	IsDeleted       bool            `json:"isDeleted"`
	AuditFields
}

// ValidateShape checks the invariants that do not need account state.
func (t Transaction) ValidateShape() error {
	if !t.TransactionType.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, string(t.TransactionType))
	}
	if err := ValidatePositiveAmount(t.Amount); err != nil {
		return err
	}
	if t.AccountID == "" {
		return fmt.Errorf("%w: account is required", apperrors.ErrValidation)
	}
	if t.TransactionType == Transfer {
		if t.TargetAccountID == "" {
			return fmt.Errorf("%w: transfer requires a target account", apperrors.ErrValidation)
		}
		if t.TargetAccountID == t.AccountID {
			return fmt.Errorf("%w: cannot transfer to the same account", apperrors.ErrValidation)
		}
	} else if t.TargetAccountID != "" {
		return fmt.Errorf("%w: target account is only allowed for transfers", apperrors.ErrValidation)
	}
	return nil
}

// AccountIDs returns the accounts touched by t, source first.
func (t Transaction) AccountIDs() []string {
	if t.TargetAccountID != "" {
		return []string{t.AccountID, t.TargetAccountID}
	}
	return []string{t.AccountID}
}

// BalanceChanges returns the signed balance delta per account that applying t produces.
// The reversal of t is the negation of every delta.
func (t Transaction) BalanceChanges() map[string]decimal.Decimal {
	switch t.TransactionType {
	case Income:
		return map[string]decimal.Decimal{t.AccountID: t.Amount}
	case Expense:
		return map[string]decimal.Decimal{t.AccountID: t.Amount.Neg()}
	case Transfer:
		return map[string]decimal.Decimal{
			t.AccountID:       t.Amount.Neg(),
			t.TargetAccountID: t.Amount,
		}
	}
	return map[string]decimal.Decimal{}
}

// TransactionSplit allocates part of a transaction's amount to a category.
type TransactionSplit struct {
	SplitID       string          `json:"splitID"`
	TransactionID string          `json:"transactionID"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	AuditFields
}
