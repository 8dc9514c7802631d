package mapping

import (
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/SscSPs/finance_ledger/internal/models"
)

// ToModelBudget converts a domain Budget to a model Budget
func ToModelBudget(d domain.Budget) models.Budget {
	return models.Budget{
		BudgetID:        d.BudgetID,
		OwnerID:         d.OwnerID,
		Category:        d.Category,
		Month:           d.Month,
		Year:            d.Year,
		Amount:          d.Amount,
		CurrencyCode:    d.CurrencyCode,
		RolloverEnabled: d.RolloverEnabled,
		SpentAmount:     d.SpentAmount,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBudget converts a model Budget to a domain Budget
func ToDomainBudget(m models.Budget) domain.Budget {
	return domain.Budget{
		BudgetID:        m.BudgetID,
		OwnerID:         m.OwnerID,
		Category:        m.Category,
		Month:           m.Month,
		Year:            m.Year,
		Amount:          m.Amount,
		CurrencyCode:    m.CurrencyCode,
		RolloverEnabled: m.RolloverEnabled,
		SpentAmount:     m.SpentAmount,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainBudgetSlice converts a slice of model Budgets
func ToDomainBudgetSlice(ms []models.Budget) []domain.Budget {
	ds := make([]domain.Budget, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainBudget(m)
	}
	return ds
}
