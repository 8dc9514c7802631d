package mapping

import (
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/SscSPs/finance_ledger/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:   d.TransactionID,
		OwnerID:         d.OwnerID,
		AccountID:       d.AccountID,
		TargetAccountID: nullable(d.TargetAccountID),
		Category:        nullable(d.Category),
		TransactionType: models.TransactionType(d.TransactionType),
		Amount:          d.Amount,
		CurrencyCode:    d.CurrencyCode,
		Description:     d.Description,
		TransactionDate: d.TransactionDate,
		IsRecurring:     d.IsRecurring,
		RecurringBillID: nullable(d.RecurringBillID),
		IsDeleted:       d.IsDeleted,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:   m.TransactionID,
		OwnerID:         m.OwnerID,
		AccountID:       m.AccountID,
		TargetAccountID: deref(m.TargetAccountID),
		Category:        deref(m.Category),
		TransactionType: domain.TransactionType(m.TransactionType),
		Amount:          m.Amount,
		CurrencyCode:    m.CurrencyCode,
		Description:     m.Description,
		TransactionDate: m.TransactionDate,
		IsRecurring:     m.IsRecurring,
		RecurringBillID: deref(m.RecurringBillID),
		IsDeleted:       m.IsDeleted,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}

// ToModelSplit converts a domain TransactionSplit to a model TransactionSplit
func ToModelSplit(d domain.TransactionSplit) models.TransactionSplit {
	return models.TransactionSplit{
		SplitID:       d.SplitID,
		TransactionID: d.TransactionID,
		Category:      d.Category,
		Amount:        d.Amount,
		CreatedAt:     d.CreatedAt,
		CreatedBy:     d.CreatedBy,
	}
}

// ToDomainSplit converts a model TransactionSplit to a domain TransactionSplit.
// Splits are immutable so the last-updated fields repeat the creation fields.
func ToDomainSplit(m models.TransactionSplit) domain.TransactionSplit {
	return domain.TransactionSplit{
		SplitID:       m.SplitID,
		TransactionID: m.TransactionID,
		Category:      m.Category,
		Amount:        m.Amount,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.CreatedAt,
			LastUpdatedBy: m.CreatedBy,
		},
	}
}
