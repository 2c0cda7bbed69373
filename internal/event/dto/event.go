package dto

import (
	"time"

	"github.com/ticketrush/ticketrush/internal/event/domain"
)

// CreateEventRequest is the payload for creating a draft event
type CreateEventRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Capacity    int     `json:"capacity" binding:"min=0"`
	Price       float64 `json:"price" binding:"min=0"`
}

// UpdateEventRequest updates administrative metadata. Capacity and price are
// frozen once the event leaves draft, so they are only applied in draft.
type UpdateEventRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Capacity    *int     `json:"capacity,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

// EventListFilter filters and paginates event listings
type EventListFilter struct {
	State  string `form:"state"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// SetDefaults applies default pagination
func (f *EventListFilter) SetDefaults() {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// EventResponse is the API representation of an event
type EventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Capacity    int       `json:"capacity"`
	Price       float64   `json:"price"`
	State       string    `json:"state"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FromEvent maps a domain event to its API representation
func FromEvent(e *domain.Event) *EventResponse {
	return &EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Capacity:    e.Capacity,
		Price:       e.Price,
		State:       e.State.String(),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
