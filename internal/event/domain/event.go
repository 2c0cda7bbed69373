package domain

import "time"

// EventState represents the lifecycle state of an event
type EventState string

const (
	EventStateDraft     EventState = "draft"
	EventStatePublished EventState = "published"
	EventStateFinished  EventState = "finished"
	EventStateCancelled EventState = "cancelled"
)

// IsValid checks if the state is a valid EventState
func (s EventState) IsValid() bool {
	switch s {
	case EventStateDraft, EventStatePublished, EventStateFinished, EventStateCancelled:
		return true
	}
	return false
}

// String returns the string representation of EventState
func (s EventState) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are allowed
func (s EventState) IsTerminal() bool {
	return s == EventStateFinished || s == EventStateCancelled
}

// Event is a sellable occasion with a fixed capacity.
// Once finished or cancelled only administrative metadata may change.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Capacity    int        `json:"capacity"`
	Price       float64    `json:"price"`
	State       EventState `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CanPublish reports whether the event may transition to published
func (e *Event) CanPublish() bool {
	return e.State == EventStateDraft
}

// CanCancel reports whether the event may transition to cancelled
func (e *Event) CanCancel() bool {
	return e.State == EventStateDraft || e.State == EventStatePublished
}

// CanFinish reports whether the event may transition to finished
func (e *Event) CanFinish() bool {
	return e.State == EventStatePublished
}

// Validate checks the event's field invariants
func (e *Event) Validate() error {
	if e.Title == "" {
		return ErrInvalidTitle
	}
	if e.Capacity < 0 {
		return ErrInvalidCapacity
	}
	if e.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}
