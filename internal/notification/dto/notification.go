package dto

import (
	"time"

	"github.com/ticketrush/ticketrush/internal/notification/domain"
)

// NotificationResponse is the API representation of a notification
type NotificationResponse struct {
	ID          string  `json:"id"`
	RecipientID *string `json:"recipient_id,omitempty"`
	Title       string  `json:"title"`
	Message     string  `json:"message"`
	Category    string  `json:"category"`
	Read        bool    `json:"read"`
	ReadAt      *string `json:"read_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// FromNotification converts a domain notification to a response
func FromNotification(n *domain.Notification) *NotificationResponse {
	resp := &NotificationResponse{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		Title:       n.Title,
		Message:     n.Message,
		Category:    n.Category.String(),
		Read:        n.Read,
		CreatedAt:   n.CreatedAt.Format(time.RFC3339),
	}
	if n.ReadAt != nil {
		readAt := n.ReadAt.Format(time.RFC3339)
		resp.ReadAt = &readAt
	}
	return resp
}

// FromNotifications converts a slice of domain notifications
func FromNotifications(notifications []*domain.Notification) []*NotificationResponse {
	out := make([]*NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, FromNotification(n))
	}
	return out
}

// UnreadCountResponse reports how many notifications are unread
type UnreadCountResponse struct {
	Unread int `json:"unread"`
}
