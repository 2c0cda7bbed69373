package repository

import (
	"context"

	"github.com/ticketrush/ticketrush/internal/notification/domain"
)

// NotificationRepository defines notification persistence operations.
// User-scoped operations treat broadcasts as visible to every user.
type NotificationRepository interface {
	// Create inserts a notification
	Create(ctx context.Context, notification *domain.Notification) error
	// ListForUser returns the user's notifications plus broadcasts,
	// newest first
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error)
	// UnreadCount counts the user's unread notifications
	UnreadCount(ctx context.Context, userID string) (int, error)
	// MarkRead marks one of the user's notifications as read
	MarkRead(ctx context.Context, id, userID string) error
	// MarkAllRead marks all of the user's notifications as read,
	// returning how many changed
	MarkAllRead(ctx context.Context, userID string) (int, error)
	// Delete removes one of the user's notifications
	Delete(ctx context.Context, id, userID string) error
}
