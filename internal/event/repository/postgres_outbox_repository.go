package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketrush/ticketrush/internal/event/domain"
)

// PostgresOutboxRepository implements OutboxRepository using PostgreSQL
type PostgresOutboxRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresOutboxRepository creates a new PostgresOutboxRepository
func NewPostgresOutboxRepository(pool *pgxpool.Pool) *PostgresOutboxRepository {
	return &PostgresOutboxRepository{pool: pool}
}

// SaveTx inserts outbox messages in the caller's transaction so they commit
// or roll back together with the state change that produced them
func (r *PostgresOutboxRepository) SaveTx(ctx context.Context, tx pgx.Tx, msgs ...*domain.OutboxMessage) error {
	query := `
		INSERT INTO outbox (id, queue, kind, payload, status, retry_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, msg := range msgs {
		if msg.ID == "" {
			msg.ID = uuid.New().String()
		}
		if _, err := tx.Exec(ctx, query,
			msg.ID,
			msg.Queue,
			msg.Kind,
			msg.Payload,
			msg.Status.String(),
			msg.RetryCount,
			msg.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to save outbox message: %w", err)
		}
	}

	return nil
}

// FetchPending returns up to limit pending messages. SKIP LOCKED only
// covers the statement itself: locks are released before the caller
// publishes, so concurrent workers may still pick up the same row.
// Consumers tolerate the duplicate under the at-least-once contract.
func (r *PostgresOutboxRepository) FetchPending(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	query := `
		SELECT id, queue, kind, payload, status, retry_count, COALESCE(last_error, ''), created_at, published_at
		FROM outbox
		WHERE status = 'pending'
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending outbox messages: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.OutboxMessage
	for rows.Next() {
		msg := &domain.OutboxMessage{}
		var status string
		if err := rows.Scan(
			&msg.ID,
			&msg.Queue,
			&msg.Kind,
			&msg.Payload,
			&status,
			&msg.RetryCount,
			&msg.LastError,
			&msg.CreatedAt,
			&msg.PublishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		msg.Status = domain.OutboxStatus(status)
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outbox messages: %w", err)
	}

	return msgs, nil
}

// MarkPublished records a successful publish
func (r *PostgresOutboxRepository) MarkPublished(ctx context.Context, id string) error {
	query := `UPDATE outbox SET status = 'published', published_at = $2 WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark outbox message published: %w", err)
	}
	return nil
}

// MarkFailed records a publish failure and keeps the row pending for retry.
// After maxOutboxRetries the row is parked as failed for operator attention.
func (r *PostgresOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	query := `
		UPDATE outbox
		SET retry_count = retry_count + 1,
		    last_error = $2,
		    status = CASE WHEN retry_count + 1 >= $3 THEN 'failed' ELSE 'pending' END
		WHERE id = $1
	`

	if _, err := r.pool.Exec(ctx, query, id, reason, maxOutboxRetries); err != nil {
		return fmt.Errorf("failed to mark outbox message failed: %w", err)
	}
	return nil
}

const maxOutboxRetries = 10
