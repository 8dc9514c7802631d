package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
)

var (
	_ portsrepo.NotificationRepositoryFacade = (*Store)(nil)
	_ portsrepo.UserContactReader            = (*Store)(nil)
)

func (s *Store) FindNotificationByID(ctx context.Context, notificationID string) (*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[notificationID]
	if !ok {
		return nil, notFound("notification", notificationID)
	}
	return &n, nil
}

func (s *Store) ListNotificationsByOwner(ctx context.Context, ownerID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	s.mu.RLock()
	list := make([]domain.Notification, 0)
	for _, n := range s.notifications {
		if n.OwnerID == ownerID && (!unreadOnly || !n.IsRead) {
			list = append(list, n)
		}
	}
	s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		if !list[i].SentAt.Equal(list[j].SentAt) {
			return list[i].SentAt.After(list[j].SentAt)
		}
		return list[i].NotificationID > list[j].NotificationID
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (s *Store) CountUnreadNotifications(ctx context.Context, ownerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.notifications {
		if n.OwnerID == ownerID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *Store) ExistsNotificationForRelatedOn(ctx context.Context, relatedID string, day time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.notifications {
		if n.RelatedID == relatedID && domain.SameDay(n.SentAt, day) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) SaveNotification(ctx context.Context, n domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[n.NotificationID]; ok {
		return duplicate("notification", n.NotificationID)
	}
	s.notifications[n.NotificationID] = n
	return nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, ownerID, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[notificationID]
	if !ok || n.OwnerID != ownerID {
		return notFound("notification", notificationID)
	}
	n.IsRead = true
	s.notifications[notificationID] = n
	return nil
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, ownerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	for id, n := range s.notifications {
		if n.OwnerID == ownerID && !n.IsRead {
			n.IsRead = true
			s.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}

func (s *Store) MarkNotificationEmailSent(ctx context.Context, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[notificationID]
	if !ok {
		return notFound("notification", notificationID)
	}
	n.EmailSent = true
	s.notifications[notificationID] = n
	return nil
}

// SaveUserContact registers where a user's e-mails go.
func (s *Store) SaveUserContact(ctx context.Context, contact domain.UserContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[contact.UserID] = contact
	return nil
}

func (s *Store) FindUserContact(ctx context.Context, userID string) (*domain.UserContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[userID]
	if !ok {
		return nil, notFound("user", userID)
	}
	return &c, nil
}
