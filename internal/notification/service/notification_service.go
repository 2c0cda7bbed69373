package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ticketrush/ticketrush/internal/notification/domain"
	"github.com/ticketrush/ticketrush/internal/notification/repository"
	"github.com/ticketrush/ticketrush/pkg/logger"
	"github.com/ticketrush/ticketrush/pkg/messaging"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// NotificationService persists and serves notifications
type NotificationService interface {
	// Ingest renders a decoded message payload into a notification and
	// persists it. Returns (nil, nil) for payload types that do not
	// produce a notification.
	Ingest(ctx context.Context, payload interface{}) (*domain.Notification, error)
	// List returns the user's notifications plus broadcasts
	List(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error)
	// UnreadCount counts the user's unread notifications
	UnreadCount(ctx context.Context, userID string) (int, error)
	// MarkRead marks one notification as read
	MarkRead(ctx context.Context, id, userID string) error
	// MarkAllRead marks every unread notification as read
	MarkAllRead(ctx context.Context, userID string) (int, error)
	// Delete removes one notification
	Delete(ctx context.Context, id, userID string) error
}

type notificationService struct {
	repo repository.NotificationRepository
	log  *logger.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo repository.NotificationRepository, log *logger.Logger) NotificationService {
	return &notificationService{repo: repo, log: log}
}

func (s *notificationService) Ingest(ctx context.Context, payload interface{}) (*domain.Notification, error) {
	notification := render(payload)
	if notification == nil {
		return nil, nil
	}

	if notification.Title == "" || notification.Message == "" {
		return nil, domain.ErrInvalidNotification
	}

	notification.ID = uuid.New().String()
	notification.CreatedAt = time.Now().UTC()

	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}

	return notification, nil
}

// render maps each message payload to its notification text. Payload types
// that target other consumers map to nil.
func render(payload interface{}) *domain.Notification {
	switch p := payload.(type) {
	case *messaging.EventPublished:
		return &domain.Notification{
			Title:    "New event available",
			Message:  fmt.Sprintf("Tickets for %q are now on sale.", p.Title),
			Category: domain.CategoryEvent,
		}
	case *messaging.EventFinished:
		return &domain.Notification{
			Title:    "Event finished",
			Message:  fmt.Sprintf("The event %q has ended.", p.Title),
			Category: domain.CategoryEvent,
		}
	case *messaging.TicketPurchased:
		return &domain.Notification{
			RecipientID: &p.UserID,
			Title:       "Purchase confirmed",
			Message:     fmt.Sprintf("Your ticket %s has been confirmed.", p.TicketID),
			Category:    domain.CategoryTicket,
		}
	case *messaging.TicketCancelled:
		return &domain.Notification{
			RecipientID: &p.UserID,
			Title:       "Ticket cancelled",
			Message:     fmt.Sprintf("Your ticket %s has been cancelled.", p.TicketID),
			Category:    domain.CategoryTicket,
		}
	case *messaging.UserCreated:
		return &domain.Notification{
			RecipientID: &p.UserID,
			Title:       p.Title,
			Message:     p.Message,
			Category:    domain.CategoryUser,
		}
	case *messaging.Notification:
		return &domain.Notification{
			RecipientID: p.RecipientID,
			Title:       p.Title,
			Message:     p.Message,
			Category:    renderCategory(p.Category),
		}
	default:
		return nil
	}
}

func renderCategory(raw string) domain.Category {
	category := domain.Category(raw)
	if !category.IsValid() {
		return domain.CategorySystem
	}
	return category
}

func (s *notificationService) List(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListForUser(ctx, userID, limit, offset)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, id, userID string) error {
	return s.repo.Delete(ctx, id, userID)
}
