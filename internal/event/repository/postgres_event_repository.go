package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketrush/ticketrush/internal/event/domain"
)

// PostgresEventRepository implements EventRepository using PostgreSQL with pgxpool
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

const eventColumns = `id, title, description, capacity, price, state, created_at, updated_at`

// Create inserts a new event record
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (id, title, description, capacity, price, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.Capacity,
		event.Price,
		event.State.String(),
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

// GetByID retrieves an event by its ID. Returns (nil, nil) when absent.
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

// List retrieves events with filters and pagination
func (r *PostgresEventRepository) List(ctx context.Context, filter *EventFilter) ([]*domain.Event, int, error) {
	where := ""
	args := []interface{}{}
	if filter.State != "" {
		where = " WHERE state = $1"
		args = append(args, filter.State)
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM events"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT "+eventColumns+" FROM events%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate events: %w", err)
	}

	return events, total, nil
}

// Update persists administrative metadata changes
func (r *PostgresEventRepository) Update(ctx context.Context, event *domain.Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, capacity = $4, price = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.Capacity,
		event.Price,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}

	return nil
}

// GetForUpdateTx locks the event row until the transaction ends
func (r *PostgresEventRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`

	event, err := scanEvent(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock event: %w", err)
	}

	return event, nil
}

// UpdateStateTx transitions the event state inside the transaction
func (r *PostgresEventRepository) UpdateStateTx(ctx context.Context, tx pgx.Tx, id string, state domain.EventState) error {
	query := `UPDATE events SET state = $2, updated_at = $3 WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id, state.String(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update event state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}

	return nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	event := &domain.Event{}
	var state string

	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Capacity,
		&event.Price,
		&state,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.State = domain.EventState(state)
	return event, nil
}
