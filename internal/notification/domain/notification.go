package domain

import "time"

// Category classifies what a notification is about
type Category string

const (
	CategoryEvent  Category = "event"
	CategoryTicket Category = "ticket"
	CategoryUser   Category = "user"
	CategorySystem Category = "system"
)

// IsValid checks if the category is a known Category
func (c Category) IsValid() bool {
	switch c {
	case CategoryEvent, CategoryTicket, CategoryUser, CategorySystem:
		return true
	}
	return false
}

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// Notification is one message delivered to a user or to everyone.
// A nil RecipientID means broadcast. ReadAt is set when Read becomes true.
type Notification struct {
	ID          string     `json:"id"`
	RecipientID *string    `json:"recipient_id,omitempty"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	Category    Category   `json:"category"`
	Read        bool       `json:"read"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsBroadcast reports whether the notification targets everyone
func (n *Notification) IsBroadcast() bool {
	return n.RecipientID == nil
}
