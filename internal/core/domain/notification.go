package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationBudget        NotificationType = "BUDGET"
	NotificationBillDue       NotificationType = "BILL_DUE"
	NotificationWarning       NotificationType = "WARNING"
	NotificationInsight       NotificationType = "INSIGHT"
	NotificationRecurringBill NotificationType = "RECURRING_BILL"
)

// Notification is an append-only message to a user. Only IsRead and EmailSent change after creation.
type Notification struct {
	NotificationID   string           `json:"notificationID"`
	OwnerID          string           `json:"ownerID"`
	NotificationType NotificationType `json:"notificationType"`
	Message          string           `json:"message"`
	IsRead           bool             `json:"isRead"`
	SentAt           time.Time        `json:"sentAt"`
	RelatedID        string           `json:"relatedID"`
	EmailSent        bool             `json:"emailSent"`
}

// EmailKind tags the closed set of e-mail templates.
type EmailKind string

const (
	EmailBudget      EmailKind = "budget"
	EmailTransaction EmailKind = "transaction"
	EmailBill        EmailKind = "bill"
	EmailGeneral     EmailKind = "general"
)

// EmailTemplate is one of BudgetEmail, TransactionEmail, BillEmail or GeneralEmail.
type EmailTemplate interface {
	Kind() EmailKind
	Subject() string
	sealedEmail()
}

// BudgetEmail reports a budget threshold crossing.
type BudgetEmail struct {
	BudgetID   string          `json:"budgetID"`
	Category   string          `json:"category"`
	Spent      decimal.Decimal `json:"spent"`
	Limit      decimal.Decimal `json:"limit"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage decimal.Decimal `json:"percentage"`
	Currency   string          `json:"currency"`
	Headline   string          `json:"headline"`
}

func (BudgetEmail) Kind() EmailKind   { return EmailBudget }
func (e BudgetEmail) Subject() string { return e.Headline }
func (BudgetEmail) sealedEmail()      {}

// TransactionEmail reports a recorded transaction.
type TransactionEmail struct {
	TransactionID   string          `json:"transactionID"`
	TransactionType TransactionType `json:"transactionType"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Description     string          `json:"description"`
	Date            time.Time       `json:"date"`
}

func (TransactionEmail) Kind() EmailKind   { return EmailTransaction }
func (e TransactionEmail) Subject() string { return "New transaction: " + e.Description }
func (TransactionEmail) sealedEmail()      {}

// BillEmail reports a processed or upcoming recurring bill.
type BillEmail struct {
	BillID        string          `json:"billID"`
	BillName      string          `json:"billName"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	DueDate       time.Time       `json:"dueDate"`
	TransactionID string          `json:"transactionID"`
}

func (BillEmail) Kind() EmailKind   { return EmailBill }
func (e BillEmail) Subject() string { return "Recurring Bill Processed: " + e.BillName }
func (BillEmail) sealedEmail()      {}

// GeneralEmail carries free-form text.
type GeneralEmail struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (GeneralEmail) Kind() EmailKind   { return EmailGeneral }
func (e GeneralEmail) Subject() string { return e.Title }
func (GeneralEmail) sealedEmail()      {}

// NotificationRequest is the input to the notification sink.
type NotificationRequest struct {
	OwnerID   string
	Type      NotificationType
	Message   string
	RelatedID string
	Email     EmailTemplate // nil means in-app only
}

// UserContact is the addressing information needed to e-mail a user.
type UserContact struct {
	UserID string `json:"userID"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}
