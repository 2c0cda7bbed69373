package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ticketrush/ticketrush/internal/event/repository"
	"github.com/ticketrush/ticketrush/pkg/logger"
)

// Publisher sends a message body to a named durable queue
type Publisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

// OutboxWorkerConfig contains configuration for the outbox worker
type OutboxWorkerConfig struct {
	// PollInterval is the interval between polls for pending messages
	PollInterval time.Duration
	// BatchSize is the number of messages to fetch per poll
	BatchSize int
}

// DefaultOutboxWorkerConfig returns default configuration
func DefaultOutboxWorkerConfig() *OutboxWorkerConfig {
	return &OutboxWorkerConfig{
		PollInterval: 200 * time.Millisecond,
		BatchSize:    100,
	}
}

// OutboxWorker drains pending outbox rows to the broker. Lifecycle messages
// survive broker outages in the outbox table until a publish succeeds.
type OutboxWorker struct {
	outboxRepo repository.OutboxRepository
	publisher  Publisher
	config     *OutboxWorkerConfig
	log        *logger.Logger
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

// NewOutboxWorker creates a new outbox worker
func NewOutboxWorker(outboxRepo repository.OutboxRepository, publisher Publisher, config *OutboxWorkerConfig, log *logger.Logger) *OutboxWorker {
	if config == nil {
		config = DefaultOutboxWorkerConfig()
	}
	if log == nil {
		log = logger.Get()
	}

	return &OutboxWorker{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		config:     config,
		log:        log,
		stopCh:     make(chan struct{}),
	}
}

// Start starts the outbox worker
func (w *OutboxWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Infow("starting outbox worker", "poll_interval", w.config.PollInterval)

	w.wg.Add(1)
	go w.pollLoop(ctx)

	return nil
}

// Stop stops the outbox worker and waits for the poll loop to exit
func (w *OutboxWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	w.wg.Wait()
}

func (w *OutboxWorker) pollLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.drainPending(ctx)
		}
	}
}

// drainPending publishes one batch of pending messages
func (w *OutboxWorker) drainPending(ctx context.Context) {
	msgs, err := w.outboxRepo.FetchPending(ctx, w.config.BatchSize)
	if err != nil {
		w.log.Errorw("failed to fetch pending outbox messages", "error", err)
		return
	}

	for _, msg := range msgs {
		if err := w.publisher.Publish(ctx, msg.Queue, msg.Payload); err != nil {
			// Transport errors stall propagation, they never fail the
			// request that produced the row
			w.log.Warnw("failed to publish outbox message",
				"id", msg.ID, "queue", msg.Queue, "kind", msg.Kind, "error", err)
			if markErr := w.outboxRepo.MarkFailed(ctx, msg.ID, err.Error()); markErr != nil {
				w.log.Errorw("failed to mark outbox message failed", "id", msg.ID, "error", markErr)
			}
			continue
		}

		if err := w.outboxRepo.MarkPublished(ctx, msg.ID); err != nil {
			// The message was published; if this mark fails it may be
			// published again, which consumers tolerate (at-least-once)
			w.log.Errorw("failed to mark outbox message published", "id", msg.ID, "error", err)
		}
	}
}
