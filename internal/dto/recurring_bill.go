package dto

import (
	"time"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateRecurringBillRequest defines the data needed to schedule a recurring bill.
type CreateRecurringBillRequest struct {
	AccountID       string                 `json:"accountID" binding:"required"`
	Category        string                 `json:"category" binding:"max=100"`
	Name            string                 `json:"name" binding:"required,max=100"`
	Amount          decimal.Decimal        `json:"amount" binding:"required"`
	TransactionType domain.TransactionType `json:"transactionType" binding:"required,oneof=INCOME EXPENSE"`
	Frequency       domain.Frequency       `json:"frequency" binding:"required,frequency"`
	StartDate       time.Time              `json:"startDate" binding:"required"`
	EndDate         *time.Time             `json:"endDate"`
}

// RecurringBillResponse defines the data returned for a recurring bill.
type RecurringBillResponse struct {
	BillID            string                 `json:"billID"`
	AccountID         string                 `json:"accountID"`
	Category          string                 `json:"category,omitempty"`
	Name              string                 `json:"name"`
	Amount            decimal.Decimal        `json:"amount"`
	CurrencyCode      string                 `json:"currencyCode"`
	TransactionType   domain.TransactionType `json:"transactionType"`
	Frequency         domain.Frequency       `json:"frequency"`
	StartDate         time.Time              `json:"startDate"`
	NextDueDate       time.Time              `json:"nextDueDate"`
	EndDate           *time.Time             `json:"endDate,omitempty"`
	LastGeneratedDate *time.Time             `json:"lastGeneratedDate,omitempty"`
	IsActive          bool                   `json:"isActive"`
	IsPaid            bool                   `json:"isPaid"`
}

// ListBillsParams defines query parameters for bill queries.
type ListBillsParams struct {
	Days int `form:"days,default=7" binding:"omitempty,min=1,max=366"`
}

// SweepRequest triggers a due-bill sweep. AsOf defaults to today.
type SweepRequest struct {
	AsOf *time.Time `json:"asOf"`
}

// ToRecurringBillResponse converts a domain bill.
func ToRecurringBillResponse(b *domain.RecurringBill) RecurringBillResponse {
	return RecurringBillResponse{
		BillID:            b.BillID,
		AccountID:         b.AccountID,
		Category:          b.Category,
		Name:              b.Name,
		Amount:            b.Amount,
		CurrencyCode:      b.CurrencyCode,
		TransactionType:   b.TransactionType,
		Frequency:         b.Frequency,
		StartDate:         b.StartDate,
		NextDueDate:       b.NextDueDate,
		EndDate:           b.EndDate,
		LastGeneratedDate: b.LastGeneratedDate,
		IsActive:          b.IsActive,
		IsPaid:            b.IsPaid,
	}
}

// ToRecurringBillResponses converts a slice of bills.
func ToRecurringBillResponses(bills []domain.RecurringBill) []RecurringBillResponse {
	out := make([]RecurringBillResponse, len(bills))
	for i := range bills {
		out[i] = ToRecurringBillResponse(&bills[i])
	}
	return out
}
