package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/SscSPs/finance_ledger/internal/core/services"
	"github.com/SscSPs/finance_ledger/internal/repositories/database/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var notifyNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func TestNotify_PublishesEmailTemplate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	publisher := new(MockEmailPublisher)
	svc := services.NewNotificationService(store,
		services.WithEmailPublisher(publisher),
		services.WithNotificationClock(fixedClock(notifyNow)))

	tmpl := domain.GeneralEmail{Title: "Hello", Body: "World"}
	publisher.On("PublishEmail", ctx, mock.MatchedBy(func(n domain.Notification) bool {
		return n.OwnerID == owner && n.Message == "hi there"
	}), tmpl).Return(nil).Once()

	n, err := svc.Notify(ctx, domain.NotificationRequest{
		OwnerID: owner, Type: domain.NotificationInsight, Message: "  hi there ", Email: tmpl,
	})

	require.NoError(t, err)
	assert.Equal(t, "hi there", n.Message)
	assert.True(t, n.SentAt.Equal(notifyNow))
	publisher.AssertExpectations(t)

	count, err := svc.UnreadCount(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNotify_PublishFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	publisher := new(MockEmailPublisher)
	publisher.On("PublishEmail", ctx, mock.Anything, mock.Anything).Return(assert.AnError).Once()
	svc := services.NewNotificationService(store, services.WithEmailPublisher(publisher))

	n, err := svc.Notify(ctx, domain.NotificationRequest{
		OwnerID: owner, Type: domain.NotificationWarning, Message: "over budget", Email: domain.GeneralEmail{Title: "x"},
	})

	require.NoError(t, err)
	stored, err := store.FindNotificationByID(ctx, n.NotificationID)
	require.NoError(t, err)
	assert.False(t, stored.EmailSent)
	publisher.AssertExpectations(t)
}

func TestNotify_InAppOnlyDoesNotPublish(t *testing.T) {
	ctx := context.Background()
	publisher := new(MockEmailPublisher)
	svc := services.NewNotificationService(memory.NewStore(), services.WithEmailPublisher(publisher))

	_, err := svc.Notify(ctx, domain.NotificationRequest{OwnerID: owner, Type: domain.NotificationInsight, Message: "tip"})

	require.NoError(t, err)
	publisher.AssertNotCalled(t, "PublishEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotify_SaveErrorIsReturned(t *testing.T) {
	ctx := context.Background()
	publisher := new(MockEmailPublisher)
	repo := failingNotificationRepo{Store: memory.NewStore(), err: assert.AnError}
	svc := services.NewNotificationService(repo, services.WithEmailPublisher(publisher))

	n, err := svc.Notify(ctx, domain.NotificationRequest{
		OwnerID: owner, Type: domain.NotificationInsight, Message: "tip", Email: domain.GeneralEmail{Title: "x"},
	})

	assert.Nil(t, n)
	assert.ErrorIs(t, err, assert.AnError)
	publisher.AssertNotCalled(t, "PublishEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotify_Validation(t *testing.T) {
	svc := services.NewNotificationService(memory.NewStore())

	_, err := svc.Notify(context.Background(), domain.NotificationRequest{Message: "x"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Notify(context.Background(), domain.NotificationRequest{OwnerID: owner, Message: "   "})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	svc := services.NewNotificationService(memory.NewStore())
	first, err := svc.Notify(ctx, domain.NotificationRequest{OwnerID: owner, Type: domain.NotificationInsight, Message: "one"})
	require.NoError(t, err)
	_, err = svc.Notify(ctx, domain.NotificationRequest{OwnerID: owner, Type: domain.NotificationInsight, Message: "two"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.MarkRead(ctx, first.NotificationID, "user-2"), apperrors.ErrNotFound)
	require.NoError(t, svc.MarkRead(ctx, first.NotificationID, owner))

	unread, err := svc.ListNotifications(ctx, owner, true, 0)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "two", unread[0].Message)

	changed, err := svc.MarkAllRead(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
}
