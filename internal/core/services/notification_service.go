package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_ledger/internal/core/ports/services"
	"github.com/google/uuid"
)

const defaultNotificationLimit = 50

type notificationService struct {
	BaseService
	repo      portsrepo.NotificationRepositoryFacade
	publisher portssvc.EmailPublisher
}

// NotificationOption is a functional option for configuring the notification service
type NotificationOption func(*notificationService)

// WithEmailPublisher queues e-mails for notifications that carry a template
func WithEmailPublisher(publisher portssvc.EmailPublisher) NotificationOption {
	return func(s *notificationService) {
		s.publisher = publisher
	}
}

// WithNotificationClock overrides the time source
func WithNotificationClock(clock Clock) NotificationOption {
	return func(s *notificationService) {
		s.clock = clock
	}
}

// NewNotificationService creates the notification service.
func NewNotificationService(repo portsrepo.NotificationRepositoryFacade, options ...NotificationOption) portssvc.NotificationSvcFacade {
	svc := &notificationService{repo: repo}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.NotificationSvcFacade = (*notificationService)(nil)

// Notify stores the notification first. A failure to queue the e-mail is logged and
// does not fail the call since the in-app notification already exists.
func (s *notificationService) Notify(ctx context.Context, req domain.NotificationRequest) (*domain.Notification, error) {
	if req.OwnerID == "" {
		return nil, fmt.Errorf("%w: notification owner is required", apperrors.ErrValidation)
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: notification message is required", apperrors.ErrValidation)
	}

	n := domain.Notification{
		NotificationID:   uuid.NewString(),
		OwnerID:          req.OwnerID,
		NotificationType: req.Type,
		Message:          message,
		SentAt:           s.Now(),
		RelatedID:        req.RelatedID,
	}
	if err := s.repo.SaveNotification(ctx, n); err != nil {
		s.LogError(ctx, err, "Failed to save notification",
			slog.String("owner_id", n.OwnerID),
			slog.String("type", string(n.NotificationType)))
		return nil, err
	}

	if req.Email != nil && s.publisher != nil {
		if err := s.publisher.PublishEmail(ctx, n, req.Email); err != nil {
			s.LogWarn(ctx, err, "Failed to queue notification e-mail",
				slog.String("notification_id", n.NotificationID),
				slog.String("kind", string(req.Email.Kind())))
		}
	}
	return &n, nil
}

func (s *notificationService) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	return s.repo.ListNotificationsByOwner(ctx, userID, unreadOnly, limit)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnreadNotifications(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID string, userID string) error {
	return s.repo.MarkNotificationRead(ctx, userID, notificationID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return s.repo.MarkAllNotificationsRead(ctx, userID)
}

func (s *notificationService) MarkEmailSent(ctx context.Context, notificationID string) error {
	return s.repo.MarkNotificationEmailSent(ctx, notificationID)
}
