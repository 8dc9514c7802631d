package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringBill is a scheduled template that the bill engine materialises into transactions.
type RecurringBill struct {
	BillID            string          `json:"billID"`
	OwnerID           string          `json:"ownerID"`
	AccountID         string          `json:"accountID"`
	Category          string          `json:"category"`
	Name              string          `json:"name"`
	Amount            decimal.Decimal `json:"amount"`
	CurrencyCode      string          `json:"currencyCode"`
	TransactionType   TransactionType `json:"transactionType"` // INCOME or EXPENSE
	Frequency         Frequency       `json:"frequency"`
	StartDate         time.Time       `json:"startDate"`
	NextDueDate       time.Time       `json:"nextDueDate"`
	EndDate           *time.Time      `json:"endDate,omitempty"`
	LastGeneratedDate *time.Time      `json:"lastGeneratedDate,omitempty"`
	IsActive          bool            `json:"isActive"`
	IsPaid            bool            `json:"isPaid"`
	IsDeleted         bool            `json:"isDeleted"`
	AuditFields
}

// DueOn reports whether the bill should generate a transaction as of the given day.
func (b RecurringBill) DueOn(asOf time.Time) bool {
	if !b.IsActive || b.IsDeleted {
		return false
	}
	due := DateOf(b.NextDueDate)
	if due.After(DateOf(asOf)) {
		return false
	}
	if b.EndDate != nil && due.After(DateOf(*b.EndDate)) {
		return false
	}
	return true
}

// Overdue reports whether an unpaid bill has slipped past its due date.
func (b RecurringBill) Overdue(today time.Time) bool {
	return b.IsActive && !b.IsDeleted && !b.IsPaid && DateOf(b.NextDueDate).Before(DateOf(today))
}

// GenerationOutcome is the result of one attempt to materialise a bill.
type GenerationOutcome string

const (
	OutcomeGenerated GenerationOutcome = "GENERATED"
	OutcomeSkipped   GenerationOutcome = "SKIPPED"

	// OutcomeAdvanced means the period was already paid manually, so only the schedule moved.
	OutcomeAdvanced GenerationOutcome = "ADVANCED"
)

// GenerationResult reports what GenerateOne did.
type GenerationResult struct {
	BillID        string            `json:"billID"`
	Outcome       GenerationOutcome `json:"outcome"`
	TransactionID string            `json:"transactionID,omitempty"`
	NextDueDate   time.Time         `json:"nextDueDate"`
}

// SweepReport aggregates the outcome of one due-bill sweep.
type SweepReport struct {
	AsOf      time.Time `json:"asOf"`
	Selected  int       `json:"selected"`
	Generated int       `json:"generated"`
	Skipped   int       `json:"skipped"`
	Advanced  int       `json:"advanced"`
	Failed    int       `json:"failed"`
}
