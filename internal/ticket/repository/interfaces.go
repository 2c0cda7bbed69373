package repository

import (
	"context"

	"github.com/ticketrush/ticketrush/internal/ticket/domain"
)

// HeldTicket identifies a ticket that had a holder when its event was retired
type HeldTicket struct {
	TicketID string
	HolderID string
}

// TicketRepository defines ticket persistence operations.
// The claim operations are conditional writes: they succeed only when the
// row is still in the expected state, so concurrent buyers race safely.
type TicketRepository interface {
	// CreateBatch inserts tickets in bulk
	CreateBatch(ctx context.Context, tickets []*domain.Ticket) error
	// ExistsForEvent reports whether any tickets exist for the event
	ExistsForEvent(ctx context.Context, eventID string) (bool, error)
	// GetByID returns a ticket or (nil, nil) when it does not exist
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// ClaimSpecific marks one ticket sold for userID if it is still available
	ClaimSpecific(ctx context.Context, ticketID, userID string) (*domain.Ticket, error)
	// ClaimAny marks any one available ticket of the event sold for userID
	ClaimAny(ctx context.Context, eventID, userID string) (*domain.Ticket, error)
	// ClaimBatch marks quantity tickets sold in a single transaction,
	// claiming none at all when fewer than quantity remain available
	ClaimBatch(ctx context.Context, eventID, userID string, quantity int) ([]*domain.Ticket, error)
	// ReleaseHeld cancels a held ticket if userID is the current holder
	ReleaseHeld(ctx context.Context, ticketID, userID string) (*domain.Ticket, error)
	// RetireByEvent cancels every non-cancelled ticket of the event,
	// returning the tickets that were held at the time
	RetireByEvent(ctx context.Context, eventID string) ([]HeldTicket, error)
	// ListByHolder returns tickets currently held by userID
	ListByHolder(ctx context.Context, userID string) ([]*domain.Ticket, error)
	// ListByEvent returns all tickets of an event
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Ticket, error)
	// SalesSummary aggregates held (sold or reserved) tickets and revenue
	// for the event
	SalesSummary(ctx context.Context, eventID string) (*domain.SalesSummary, error)
	// SalesSummaryAll aggregates held tickets and revenue grouped by event
	SalesSummaryAll(ctx context.Context) ([]*domain.SalesSummary, error)
}
