package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/finance_ledger/internal/models"
	"github.com/SscSPs/finance_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notificationColumns = `notification_id, owner_id, notification_type, message, is_read, sent_at, related_id, email_sent`

type PgxNotificationRepository struct {
	pool *pgxpool.Pool
}

func newPgxNotificationRepository(pool *pgxpool.Pool) *PgxNotificationRepository {
	return &PgxNotificationRepository{pool: pool}
}

var (
	_ portsrepo.NotificationRepositoryFacade = (*PgxNotificationRepository)(nil)
	_ portsrepo.UserContactReader            = (*PgxNotificationRepository)(nil)
)

func (r *PgxNotificationRepository) SaveNotification(ctx context.Context, n domain.Notification) error {
	m := mapping.ToModelNotification(n)
	query := `INSERT INTO notifications (` + notificationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	_, err := r.pool.Exec(ctx, query,
		m.NotificationID,
		m.OwnerID,
		m.NotificationType,
		m.Message,
		m.IsRead,
		m.SentAt,
		m.RelatedID,
		m.EmailSent,
	)
	return mapPgError(err, "failed to save notification %s", m.NotificationID)
}

func (r *PgxNotificationRepository) FindNotificationByID(ctx context.Context, notificationID string) (*domain.Notification, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE notification_id = $1;`, notificationID)
	if err != nil {
		return nil, mapPgError(err, "failed to find notification %s", notificationID)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Notification])
	if err != nil {
		return nil, mapPgError(err, "notification %s", notificationID)
	}
	n := mapping.ToDomainNotification(m)
	return &n, nil
}

// ListNotificationsByOwner returns notifications newest first. A non-positive limit means no limit.
func (r *PgxNotificationRepository) ListNotificationsByOwner(ctx context.Context, ownerID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE owner_id = $1`
	if unreadOnly {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY sent_at DESC, notification_id DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, mapPgError(err, "failed to list notifications for %s", ownerID)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Notification])
	if err != nil {
		return nil, mapPgError(err, "failed to scan notifications for %s", ownerID)
	}
	return mapping.ToDomainNotificationSlice(ms), nil
}

func (r *PgxNotificationRepository) CountUnreadNotifications(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE owner_id = $1 AND NOT is_read;`, ownerID).Scan(&count)
	if err != nil {
		return 0, mapPgError(err, "failed to count unread notifications for %s", ownerID)
	}
	return count, nil
}

// ExistsNotificationForRelatedOn reports whether any notification about relatedID was sent on day (UTC).
func (r *PgxNotificationRepository) ExistsNotificationForRelatedOn(ctx context.Context, relatedID string, day time.Time) (bool, error) {
	start := domain.DateOf(day)
	query := `SELECT EXISTS (SELECT 1 FROM notifications WHERE related_id = $1 AND sent_at >= $2 AND sent_at < $3);`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, relatedID, start, start.AddDate(0, 0, 1)).Scan(&exists); err != nil {
		return false, mapPgError(err, "failed to check notifications for %s", relatedID)
	}
	return exists, nil
}

func (r *PgxNotificationRepository) MarkNotificationRead(ctx context.Context, ownerID, notificationID string) error {
	ct, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE notification_id = $1 AND owner_id = $2;`, notificationID, ownerID)
	if err != nil {
		return mapPgError(err, "failed to mark notification %s read", notificationID)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: notification %s", apperrors.ErrNotFound, notificationID)
	}
	return nil
}

func (r *PgxNotificationRepository) MarkAllNotificationsRead(ctx context.Context, ownerID string) (int, error) {
	ct, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE owner_id = $1 AND NOT is_read;`, ownerID)
	if err != nil {
		return 0, mapPgError(err, "failed to mark notifications read for %s", ownerID)
	}
	return int(ct.RowsAffected()), nil
}

func (r *PgxNotificationRepository) MarkNotificationEmailSent(ctx context.Context, notificationID string) error {
	ct, err := r.pool.Exec(ctx, `UPDATE notifications SET email_sent = TRUE WHERE notification_id = $1;`, notificationID)
	if err != nil {
		return mapPgError(err, "failed to flag e-mail for notification %s", notificationID)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: notification %s", apperrors.ErrNotFound, notificationID)
	}
	return nil
}

// FindUserContact reads the e-mail address of a user from the users table.
func (r *PgxNotificationRepository) FindUserContact(ctx context.Context, userID string) (*domain.UserContact, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, email, name FROM users WHERE user_id = $1;`, userID)
	if err != nil {
		return nil, mapPgError(err, "failed to find user %s", userID)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.UserContact])
	if err != nil {
		return nil, mapPgError(err, "user %s", userID)
	}
	c := mapping.ToDomainUserContact(m)
	return &c, nil
}
