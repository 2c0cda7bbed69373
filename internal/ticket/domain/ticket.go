package domain

import "time"

// TicketState represents the allocation state of a ticket
type TicketState string

const (
	TicketStateAvailable TicketState = "available"
	TicketStateSold      TicketState = "sold"
	TicketStateReserved  TicketState = "reserved"
	TicketStateCancelled TicketState = "cancelled"
)

// IsValid checks if the state is a valid TicketState
func (s TicketState) IsValid() bool {
	switch s {
	case TicketStateAvailable, TicketStateSold, TicketStateReserved, TicketStateCancelled:
		return true
	}
	return false
}

// String returns the string representation of TicketState
func (s TicketState) String() string {
	return string(s)
}

// IsHeld reports whether the state implies an assigned holder
func (s TicketState) IsHeld() bool {
	return s == TicketStateSold || s == TicketStateReserved
}

// Ticket is one sellable unit of admission to an event.
// Invariant: HolderID is set exactly when the state is sold or reserved.
// LastHolderID preserves holder history across forced cancellations.
type Ticket struct {
	ID           string      `json:"id"`
	Code         string      `json:"code"`
	EventID      string      `json:"event_id"`
	HolderID     *string     `json:"holder_id,omitempty"`
	LastHolderID *string     `json:"last_holder_id,omitempty"`
	Price        float64     `json:"price"`
	State        TicketState `json:"state"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// HeldBy reports whether userID currently holds the ticket
func (t *Ticket) HeldBy(userID string) bool {
	return t.HolderID != nil && *t.HolderID == userID && t.State.IsHeld()
}

// SalesSummary aggregates sold and reserved tickets for one event
type SalesSummary struct {
	EventID     string  `json:"event_id"`
	TicketsSold int     `json:"tickets_sold"`
	Revenue     float64 `json:"revenue"`
}
