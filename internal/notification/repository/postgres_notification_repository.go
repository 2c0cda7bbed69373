package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketrush/ticketrush/internal/notification/domain"
)

// PostgresNotificationRepository implements NotificationRepository using
// PostgreSQL with pgxpool
type PostgresNotificationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresNotificationRepository creates a new PostgresNotificationRepository
func NewPostgresNotificationRepository(pool *pgxpool.Pool) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{pool: pool}
}

const notificationColumns = `id, recipient_id, title, message, category, read, read_at, created_at`

// Create inserts a notification
func (r *PostgresNotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient_id, title, message, category, read, read_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		notification.ID,
		notification.RecipientID,
		notification.Title,
		notification.Message,
		notification.Category.String(),
		notification.Read,
		notification.ReadAt,
		notification.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// ListForUser returns the user's notifications plus broadcasts, newest first
func (r *PostgresNotificationRepository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_id = $1 OR recipient_id IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, nil
}

// UnreadCount counts the user's own unread notifications. Broadcasts carry
// no per-user read state and are excluded.
func (r *PostgresNotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read = false`

	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// MarkRead marks one of the user's notifications as read
func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	// COALESCE keeps the original timestamp when the row is already read
	query := `UPDATE notifications SET read = true, read_at = COALESCE(read_at, $3) WHERE id = $1 AND recipient_id = $2`

	tag, err := r.pool.Exec(ctx, query, id, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}

	return nil
}

// MarkAllRead marks all of the user's notifications as read
func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	query := `UPDATE notifications SET read = true, read_at = $2 WHERE recipient_id = $1 AND read = false`

	tag, err := r.pool.Exec(ctx, query, userID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// Delete removes one of the user's notifications
func (r *PostgresNotificationRepository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`

	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}

	return nil
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	notification := &domain.Notification{}
	var (
		category  string
		createdAt time.Time
	)

	err := row.Scan(
		&notification.ID,
		&notification.RecipientID,
		&notification.Title,
		&notification.Message,
		&category,
		&notification.Read,
		&notification.ReadAt,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	notification.Category = domain.Category(category)
	notification.CreatedAt = createdAt
	return notification, nil
}
