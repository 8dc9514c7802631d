package mapping

import (
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/SscSPs/finance_ledger/internal/models"
)

// ToModelRecurringBill converts a domain RecurringBill to a model RecurringBill
func ToModelRecurringBill(d domain.RecurringBill) models.RecurringBill {
	return models.RecurringBill{
		BillID:            d.BillID,
		OwnerID:           d.OwnerID,
		AccountID:         d.AccountID,
		Category:          nullable(d.Category),
		Name:              d.Name,
		Amount:            d.Amount,
		CurrencyCode:      d.CurrencyCode,
		TransactionType:   models.TransactionType(d.TransactionType),
		Frequency:         string(d.Frequency),
		StartDate:         d.StartDate,
		NextDueDate:       d.NextDueDate,
		EndDate:           d.EndDate,
		LastGeneratedDate: d.LastGeneratedDate,
		IsActive:          d.IsActive,
		IsPaid:            d.IsPaid,
		IsDeleted:         d.IsDeleted,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainRecurringBill converts a model RecurringBill to a domain RecurringBill.
// The frequency is passed through unchecked; the engine rejects unknown values.
func ToDomainRecurringBill(m models.RecurringBill) domain.RecurringBill {
	return domain.RecurringBill{
		BillID:            m.BillID,
		OwnerID:           m.OwnerID,
		AccountID:         m.AccountID,
		Category:          deref(m.Category),
		Name:              m.Name,
		Amount:            m.Amount,
		CurrencyCode:      m.CurrencyCode,
		TransactionType:   domain.TransactionType(m.TransactionType),
		Frequency:         domain.Frequency(m.Frequency),
		StartDate:         m.StartDate,
		NextDueDate:       m.NextDueDate,
		EndDate:           m.EndDate,
		LastGeneratedDate: m.LastGeneratedDate,
		IsActive:          m.IsActive,
		IsPaid:            m.IsPaid,
		IsDeleted:         m.IsDeleted,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainRecurringBillSlice converts a slice of model RecurringBills
func ToDomainRecurringBillSlice(ms []models.RecurringBill) []domain.RecurringBill {
	ds := make([]domain.RecurringBill, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainRecurringBill(m)
	}
	return ds
}
