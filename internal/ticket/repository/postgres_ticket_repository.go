package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketrush/ticketrush/internal/ticket/domain"
)

// PostgresTicketRepository implements TicketRepository using PostgreSQL with pgxpool
type PostgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository creates a new PostgresTicketRepository
func NewPostgresTicketRepository(pool *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{pool: pool}
}

const ticketColumns = `id, code, event_id, holder_id, last_holder_id, price, state, created_at, updated_at`

// CreateBatch inserts tickets in bulk using COPY
func (r *PostgresTicketRepository) CreateBatch(ctx context.Context, tickets []*domain.Ticket) error {
	rows := make([][]interface{}, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, []interface{}{
			t.ID, t.Code, t.EventID, t.HolderID, t.LastHolderID,
			t.Price, t.State.String(), t.CreatedAt, t.UpdatedAt,
		})
	}

	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"tickets"},
		[]string{"id", "code", "event_id", "holder_id", "last_holder_id", "price", "state", "created_at", "updated_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to create tickets: %w", err)
	}

	return nil
}

// ExistsForEvent reports whether any tickets exist for the event
func (r *PostgresTicketRepository) ExistsForEvent(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM tickets WHERE event_id = $1)`

	if err := r.pool.QueryRow(ctx, query, eventID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check ticket inventory: %w", err)
	}

	return exists, nil
}

// GetByID retrieves a ticket by its ID. Returns (nil, nil) when absent.
func (r *PostgresTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return ticket, nil
}

// ClaimSpecific marks one ticket sold for userID if it is still available.
// The state predicate makes the write a compare-and-swap: of any number of
// concurrent buyers exactly one sees RowsAffected = 1.
func (r *PostgresTicketRepository) ClaimSpecific(ctx context.Context, ticketID, userID string) (*domain.Ticket, error) {
	query := `
		UPDATE tickets
		SET state = 'sold', holder_id = $2, last_holder_id = $2, updated_at = $3
		WHERE id = $1 AND state = 'available' AND holder_id IS NULL
		RETURNING ` + ticketColumns

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, ticketID, userID, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyClaimMiss(ctx, ticketID)
		}
		return nil, fmt.Errorf("failed to claim ticket: %w", err)
	}

	return ticket, nil
}

// classifyClaimMiss distinguishes a missing ticket from a lost race
func (r *PostgresTicketRepository) classifyClaimMiss(ctx context.Context, ticketID string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE id = $1)`, ticketID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check ticket: %w", err)
	}
	if !exists {
		return domain.ErrTicketNotFound
	}
	return domain.ErrTicketNotAvailable
}

// ClaimAny marks any one available ticket of the event sold for userID.
// SKIP LOCKED keeps concurrent buyers from queueing on the same row.
func (r *PostgresTicketRepository) ClaimAny(ctx context.Context, eventID, userID string) (*domain.Ticket, error) {
	query := `
		UPDATE tickets
		SET state = 'sold', holder_id = $2, last_holder_id = $2, updated_at = $3
		WHERE id = (
			SELECT id FROM tickets
			WHERE event_id = $1 AND state = 'available'
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + ticketColumns

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, eventID, userID, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoInventory
		}
		return nil, fmt.Errorf("failed to claim ticket: %w", err)
	}

	return ticket, nil
}

// ClaimBatch marks quantity tickets sold in a single transaction.
// When fewer than quantity rows can be locked the transaction rolls back
// and no ticket changes state.
func (r *PostgresTicketRepository) ClaimBatch(ctx context.Context, eventID, userID string, quantity int) ([]*domain.Ticket, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE tickets
		SET state = 'sold', holder_id = $2, last_holder_id = $2, updated_at = $3
		WHERE id IN (
			SELECT id FROM tickets
			WHERE event_id = $1 AND state = 'available'
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + ticketColumns

	rows, err := tx.Query(ctx, query, eventID, userID, time.Now().UTC(), quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to claim tickets: %w", err)
	}

	var tickets []*domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}

	if len(tickets) < quantity {
		// rollback via defer, nothing is claimed
		return nil, domain.ErrInsufficientInventory
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit batch claim: %w", err)
	}

	return tickets, nil
}

// ReleaseHeld cancels a held ticket if userID is the current holder.
// The holder stays recorded in last_holder_id.
func (r *PostgresTicketRepository) ReleaseHeld(ctx context.Context, ticketID, userID string) (*domain.Ticket, error) {
	query := `
		UPDATE tickets
		SET state = 'cancelled', holder_id = NULL, updated_at = $3
		WHERE id = $1 AND holder_id = $2 AND state IN ('sold', 'reserved')
		RETURNING ` + ticketColumns

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, ticketID, userID, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if missErr := r.classifyReleaseMiss(ctx, ticketID); missErr != nil {
				return nil, missErr
			}
			return nil, domain.ErrNotHolder
		}
		return nil, fmt.Errorf("failed to cancel ticket: %w", err)
	}

	return ticket, nil
}

func (r *PostgresTicketRepository) classifyReleaseMiss(ctx context.Context, ticketID string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE id = $1)`, ticketID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check ticket: %w", err)
	}
	if !exists {
		return domain.ErrTicketNotFound
	}
	return nil
}

// RetireByEvent cancels every non-cancelled ticket of the event,
// returning the tickets that were held at the time
func (r *PostgresTicketRepository) RetireByEvent(ctx context.Context, eventID string) ([]HeldTicket, error) {
	// RETURNING sees the updated row, so the old holder_id is gone by then.
	// last_holder_id survives the update and, because cancelled tickets never
	// return to available, it is set exactly for the rows that were held.
	query := `
		UPDATE tickets
		SET state = 'cancelled', holder_id = NULL, updated_at = $2
		WHERE event_id = $1 AND state != 'cancelled'
		RETURNING id, last_holder_id
	`

	rows, err := r.pool.Query(ctx, query, eventID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to retire tickets: %w", err)
	}
	defer rows.Close()

	var held []HeldTicket
	for rows.Next() {
		var (
			id       string
			holderID *string
		)
		if err := rows.Scan(&id, &holderID); err != nil {
			return nil, fmt.Errorf("failed to scan retired ticket: %w", err)
		}
		if holderID != nil {
			held = append(held, HeldTicket{TicketID: id, HolderID: *holderID})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate retired tickets: %w", err)
	}

	return held, nil
}

// ListByHolder returns tickets currently held by userID
func (r *PostgresTicketRepository) ListByHolder(ctx context.Context, userID string) ([]*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE holder_id = $1 ORDER BY updated_at DESC`
	return r.queryTickets(ctx, query, userID)
}

// ListByEvent returns all tickets of an event
func (r *PostgresTicketRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE event_id = $1 ORDER BY created_at`
	return r.queryTickets(ctx, query, eventID)
}

// SalesSummary aggregates held ticket count and revenue for the event
func (r *PostgresTicketRepository) SalesSummary(ctx context.Context, eventID string) (*domain.SalesSummary, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(price), 0)
		FROM tickets
		WHERE event_id = $1 AND state IN ('sold', 'reserved')
	`

	summary := &domain.SalesSummary{EventID: eventID}
	if err := r.pool.QueryRow(ctx, query, eventID).Scan(&summary.TicketsSold, &summary.Revenue); err != nil {
		return nil, fmt.Errorf("failed to summarize sales: %w", err)
	}

	return summary, nil
}

// SalesSummaryAll aggregates held ticket count and revenue per event
func (r *PostgresTicketRepository) SalesSummaryAll(ctx context.Context) ([]*domain.SalesSummary, error) {
	query := `
		SELECT event_id, COUNT(*), COALESCE(SUM(price), 0)
		FROM tickets
		WHERE state IN ('sold', 'reserved')
		GROUP BY event_id
		ORDER BY event_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize sales: %w", err)
	}
	defer rows.Close()

	var summaries []*domain.SalesSummary
	for rows.Next() {
		summary := &domain.SalesSummary{}
		if err := rows.Scan(&summary.EventID, &summary.TicketsSold, &summary.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan sales summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sales summaries: %w", err)
	}

	return summaries, nil
}

func (r *PostgresTicketRepository) queryTickets(ctx context.Context, query string, args ...interface{}) ([]*domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}

	return tickets, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	ticket := &domain.Ticket{}
	var state string

	err := row.Scan(
		&ticket.ID,
		&ticket.Code,
		&ticket.EventID,
		&ticket.HolderID,
		&ticket.LastHolderID,
		&ticket.Price,
		&state,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	ticket.State = domain.TicketState(state)
	return ticket, nil
}
