package dto

import (
	"time"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines the data needed to record a transaction.
type CreateTransactionRequest struct {
	AccountID       string                 `json:"accountID" binding:"required"`
	TargetAccountID string                 `json:"targetAccountID"` // Required for TRANSFER only
	Category        string                 `json:"category" binding:"max=100"`
	TransactionType domain.TransactionType `json:"transactionType" binding:"required,oneof=INCOME EXPENSE TRANSFER"`
	Amount          decimal.Decimal        `json:"amount" binding:"required"`
	TransactionDate time.Time              `json:"transactionDate" binding:"required"`
	Description     string                 `json:"description" binding:"max=255"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID   string                 `json:"transactionID"`
	AccountID       string                 `json:"accountID"`
	TargetAccountID string                 `json:"targetAccountID,omitempty"`
	Category        string                 `json:"category,omitempty"`
	TransactionType domain.TransactionType `json:"transactionType"`
	Amount          decimal.Decimal        `json:"amount"`
	CurrencyCode    string                 `json:"currencyCode"`
	Description     string                 `json:"description"`
	TransactionDate time.Time              `json:"transactionDate"`
	IsRecurring     bool                   `json:"isRecurring"`
	RecurringBillID string                 `json:"recurringBillID,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
}

// ListTransactionsParams defines query parameters for listing an account's transactions.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// CreateSplitRequest allocates part of a transaction to a category.
type CreateSplitRequest struct {
	Category string          `json:"category" binding:"required,max=100"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

// SplitResponse defines the data returned for a split.
type SplitResponse struct {
	SplitID       string          `json:"splitID"`
	TransactionID string          `json:"transactionID"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   txn.TransactionID,
		AccountID:       txn.AccountID,
		TargetAccountID: txn.TargetAccountID,
		Category:        txn.Category,
		TransactionType: txn.TransactionType,
		Amount:          txn.Amount,
		CurrencyCode:    txn.CurrencyCode,
		Description:     txn.Description,
		TransactionDate: txn.TransactionDate,
		IsRecurring:     txn.IsRecurring,
		RecurringBillID: txn.RecurringBillID,
		CreatedAt:       txn.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}

// ToSplitResponse converts a domain split.
func ToSplitResponse(s *domain.TransactionSplit) SplitResponse {
	return SplitResponse{
		SplitID:       s.SplitID,
		TransactionID: s.TransactionID,
		Category:      s.Category,
		Amount:        s.Amount,
		CreatedAt:     s.CreatedAt,
	}
}
