package models

import (
	"encoding/json"
	"time"
)

// Notification is a row of the notifications table.
type Notification struct {
	NotificationID   string    `db:"notification_id"`
	OwnerID          string    `db:"owner_id"`
	NotificationType string    `db:"notification_type"`
	Message          string    `db:"message"`
	IsRead           bool      `db:"is_read"`
	SentAt           time.Time `db:"sent_at"`
	RelatedID        *string   `db:"related_id"`
	EmailSent        bool      `db:"email_sent"`
}

// UserContact is the subset of the users table needed to send mail.
type UserContact struct {
	UserID string `db:"user_id"`
	Email  string `db:"email"`
	Name   string `db:"name"`
}

// AuditEntry is a row of the audit_log table.
type AuditEntry struct {
	AuditID   string          `db:"audit_id"`
	UserID    string          `db:"user_id"`
	TableName string          `db:"table_name"`
	RecordID  string          `db:"record_id"`
	Action    string          `db:"action"`
	OldData   json.RawMessage `db:"old_data"`
	NewData   json.RawMessage `db:"new_data"`
	CreatedAt time.Time       `db:"created_at"`
}
