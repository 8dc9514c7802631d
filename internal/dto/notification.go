package dto

import (
	"time"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
)

// ListNotificationsParams defines query parameters for listing notifications.
type ListNotificationsParams struct {
	UnreadOnly bool `form:"unreadOnly"`
	Limit      int  `form:"limit,default=50" binding:"omitempty,min=1,max=200"`
}

// NotificationResponse defines the data returned for a notification.
type NotificationResponse struct {
	NotificationID   string                  `json:"notificationID"`
	NotificationType domain.NotificationType `json:"notificationType"`
	Message          string                  `json:"message"`
	IsRead           bool                    `json:"isRead"`
	SentAt           time.Time               `json:"sentAt"`
	RelatedID        string                  `json:"relatedID,omitempty"`
	EmailSent        bool                    `json:"emailSent"`
}

// ListNotificationsResponse wraps notifications with the unread counter.
type ListNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int                    `json:"unreadCount"`
}

// ToNotificationResponse converts a domain notification.
func ToNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		NotificationID:   n.NotificationID,
		NotificationType: n.NotificationType,
		Message:          n.Message,
		IsRead:           n.IsRead,
		SentAt:           n.SentAt,
		RelatedID:        n.RelatedID,
		EmailSent:        n.EmailSent,
	}
}
