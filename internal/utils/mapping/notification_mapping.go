package mapping

import (
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/SscSPs/finance_ledger/internal/models"
)

// ToModelNotification converts a domain Notification to a model Notification
func ToModelNotification(d domain.Notification) models.Notification {
	return models.Notification{
		NotificationID:   d.NotificationID,
		OwnerID:          d.OwnerID,
		NotificationType: string(d.NotificationType),
		Message:          d.Message,
		IsRead:           d.IsRead,
		SentAt:           d.SentAt,
		RelatedID:        nullable(d.RelatedID),
		EmailSent:        d.EmailSent,
	}
}

// ToDomainNotification converts a model Notification to a domain Notification
func ToDomainNotification(m models.Notification) domain.Notification {
	return domain.Notification{
		NotificationID:   m.NotificationID,
		OwnerID:          m.OwnerID,
		NotificationType: domain.NotificationType(m.NotificationType),
		Message:          m.Message,
		IsRead:           m.IsRead,
		SentAt:           m.SentAt,
		RelatedID:        deref(m.RelatedID),
		EmailSent:        m.EmailSent,
	}
}

// ToDomainNotificationSlice converts a slice of model Notifications
func ToDomainNotificationSlice(ms []models.Notification) []domain.Notification {
	ds := make([]domain.Notification, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainNotification(m)
	}
	return ds
}

// ToDomainUserContact converts a model UserContact
func ToDomainUserContact(m models.UserContact) domain.UserContact {
	return domain.UserContact{UserID: m.UserID, Email: m.Email, Name: m.Name}
}

// ToModelAuditEntry converts a domain AuditEntry to a model AuditEntry
func ToModelAuditEntry(d domain.AuditEntry) models.AuditEntry {
	return models.AuditEntry{
		AuditID:   d.AuditID,
		UserID:    d.UserID,
		TableName: d.TableName,
		RecordID:  d.RecordID,
		Action:    string(d.Action),
		OldData:   d.OldData,
		NewData:   d.NewData,
		CreatedAt: d.CreatedAt,
	}
}
