package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ticketrush/ticketrush/internal/event/domain"
)

// EventFilter filters event listings
type EventFilter struct {
	State  string
	Limit  int
	Offset int
}

// EventRepository persists events. Missing rows are reported as (nil, nil);
// callers decide whether that is an error.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, filter *EventFilter) ([]*domain.Event, int, error)
	Update(ctx context.Context, event *domain.Event) error

	// GetForUpdateTx locks the event row for the duration of the transaction
	GetForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (*domain.Event, error)
	// UpdateStateTx transitions the event state inside the transaction
	UpdateStateTx(ctx context.Context, tx pgx.Tx, id string, state domain.EventState) error
}

// OutboxRepository persists outbox messages alongside the state changes that
// produced them
type OutboxRepository interface {
	// SaveTx inserts messages in the caller's transaction
	SaveTx(ctx context.Context, tx pgx.Tx, msgs ...*domain.OutboxMessage) error
	// FetchPending claims up to limit pending messages for publishing
	FetchPending(ctx context.Context, limit int) ([]*domain.OutboxMessage, error)
	MarkPublished(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}
