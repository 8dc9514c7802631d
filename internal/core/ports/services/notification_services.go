package services

import (
	"context"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
)

// NotificationSink persists a notification and queues its e-mail.
type NotificationSink interface {
	Notify(ctx context.Context, req domain.NotificationRequest) (*domain.Notification, error)
}

// NotificationReaderSvc defines notification queries
type NotificationReaderSvc interface {
	ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// NotificationWriterSvc defines notification state changes
type NotificationWriterSvc interface {
	MarkRead(ctx context.Context, notificationID string, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
	MarkEmailSent(ctx context.Context, notificationID string) error
}

// NotificationSvcFacade combines all notification service interfaces
type NotificationSvcFacade interface {
	NotificationSink
	NotificationReaderSvc
	NotificationWriterSvc
}

// EmailPublisher hands an e-mail job to the asynchronous delivery pipeline.
type EmailPublisher interface {
	PublishEmail(ctx context.Context, n domain.Notification, tmpl domain.EmailTemplate) error
}

// EmailSender delivers a rendered e-mail.
type EmailSender interface {
	SendEmail(ctx context.Context, to domain.UserContact, tmpl domain.EmailTemplate, message string) error
}

// EmailDeliverySvc delivers one queued e-mail job and records the result.
type EmailDeliverySvc interface {
	Deliver(ctx context.Context, n domain.Notification, tmpl domain.EmailTemplate) error
}
