package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
)

// NotificationReader defines read operations for notifications
type NotificationReader interface {
	FindNotificationByID(ctx context.Context, notificationID string) (*domain.Notification, error)

	// ListNotificationsByOwner retrieves the newest notifications of an owner.
	ListNotificationsByOwner(ctx context.Context, ownerID string, unreadOnly bool, limit int) ([]domain.Notification, error)

	CountUnreadNotifications(ctx context.Context, ownerID string) (int, error)

	// ExistsNotificationForRelatedOn reports whether any notification about relatedID
	// was sent on the calendar day of `day`.
	ExistsNotificationForRelatedOn(ctx context.Context, relatedID string, day time.Time) (bool, error)
}

// NotificationWriter defines write operations for notifications
type NotificationWriter interface {
	SaveNotification(ctx context.Context, n domain.Notification) error

	// MarkNotificationRead sets is_read for one notification owned by ownerID.
	MarkNotificationRead(ctx context.Context, ownerID, notificationID string) error

	// MarkAllNotificationsRead sets is_read for every unread notification and returns how many changed.
	MarkAllNotificationsRead(ctx context.Context, ownerID string) (int, error)

	MarkNotificationEmailSent(ctx context.Context, notificationID string) error
}

// NotificationRepositoryFacade combines all notification repository interfaces
type NotificationRepositoryFacade interface {
	NotificationReader
	NotificationWriter
}

// UserContactReader resolves where to e-mail a user.
type UserContactReader interface {
	FindUserContact(ctx context.Context, userID string) (*domain.UserContact, error)
}
