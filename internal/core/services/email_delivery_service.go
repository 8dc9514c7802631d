package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_ledger/internal/core/ports/services"
)

// emailDeliveryService runs inside the notification worker.
type emailDeliveryService struct {
	BaseService
	contacts      portsrepo.UserContactReader
	sender        portssvc.EmailSender
	notifications portsrepo.NotificationWriter
}

// NewEmailDeliveryService creates the worker-side e-mail delivery service.
func NewEmailDeliveryService(contacts portsrepo.UserContactReader, sender portssvc.EmailSender, notifications portsrepo.NotificationWriter) portssvc.EmailDeliverySvc {
	return &emailDeliveryService{contacts: contacts, sender: sender, notifications: notifications}
}

func (s *emailDeliveryService) Deliver(ctx context.Context, n domain.Notification, tmpl domain.EmailTemplate) error {
	if tmpl == nil {
		return fmt.Errorf("%w: e-mail job for notification %s has no template", apperrors.ErrValidation, n.NotificationID)
	}
	contact, err := s.contacts.FindUserContact(ctx, n.OwnerID)
	if err != nil {
		return fmt.Errorf("resolve contact for %s: %w", n.OwnerID, err)
	}
	if contact.Email == "" {
		return fmt.Errorf("%w: user %s has no e-mail address", apperrors.ErrValidation, n.OwnerID)
	}

	if err := s.sender.SendEmail(ctx, *contact, tmpl, n.Message); err != nil {
		return err
	}
	if err := s.notifications.MarkNotificationEmailSent(ctx, n.NotificationID); err != nil {
		// The mail is already out; a redelivery would send it twice.
		s.LogWarn(ctx, err, "Failed to flag notification e-mail as sent", slog.String("notification_id", n.NotificationID))
	}
	s.LogInfo(ctx, "Notification e-mail sent",
		slog.String("notification_id", n.NotificationID),
		slog.String("kind", string(tmpl.Kind())))
	return nil
}
