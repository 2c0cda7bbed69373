package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketrush/ticketrush/internal/event/domain"
)

// memoryOutboxRepository is a mutex-guarded in-memory outbox
type memoryOutboxRepository struct {
	mu   sync.Mutex
	msgs map[string]*domain.OutboxMessage
}

func newMemoryOutboxRepository() *memoryOutboxRepository {
	return &memoryOutboxRepository{msgs: make(map[string]*domain.OutboxMessage)}
}

func (m *memoryOutboxRepository) add(id, queue string, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs[id] = &domain.OutboxMessage{
		ID:      id,
		Queue:   queue,
		Kind:    "published",
		Payload: payload,
		Status:  domain.OutboxStatusPending,
	}
}

func (m *memoryOutboxRepository) SaveTx(ctx context.Context, tx pgx.Tx, msgs ...*domain.OutboxMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range msgs {
		m.msgs[msg.ID] = msg
	}
	return nil
}

func (m *memoryOutboxRepository) FetchPending(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []*domain.OutboxMessage
	for _, msg := range m.msgs {
		if msg.Status == domain.OutboxStatusPending && len(pending) < limit {
			pending = append(pending, msg)
		}
	}
	return pending, nil
}

func (m *memoryOutboxRepository) MarkPublished(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs[id].Status = domain.OutboxStatusPublished
	return nil
}

func (m *memoryOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs[id].RetryCount++
	m.msgs[id].LastError = reason
	return nil
}

func (m *memoryOutboxRepository) status(id string) domain.OutboxStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.msgs[id].Status
}

func (m *memoryOutboxRepository) retries(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.msgs[id].RetryCount
}

// recordingPublisher captures published bodies per queue
type recordingPublisher struct {
	mu        sync.Mutex
	published map[string][][]byte
	failWith  error
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{published: make(map[string][][]byte)}
}

func (p *recordingPublisher) Publish(ctx context.Context, queue string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return p.failWith
	}
	p.published[queue] = append(p.published[queue], body)
	return nil
}

func (p *recordingPublisher) count(queue string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published[queue])
}

func (p *recordingPublisher) setError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failWith = err
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestOutboxWorkerDrainsPending(t *testing.T) {
	repo := newMemoryOutboxRepository()
	pub := newRecordingPublisher()
	repo.add("m1", "ticket.lifecycle", []byte(`{"kind":"published"}`))
	repo.add("m2", "notification.events", []byte(`{"kind":"published"}`))

	w := NewOutboxWorker(repo, pub, &OutboxWorkerConfig{PollInterval: 10 * time.Millisecond, BatchSize: 10}, nil)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	waitFor(t, func() bool {
		return repo.status("m1") == domain.OutboxStatusPublished &&
			repo.status("m2") == domain.OutboxStatusPublished
	})

	assert.Equal(t, 1, pub.count("ticket.lifecycle"))
	assert.Equal(t, 1, pub.count("notification.events"))
}

func TestOutboxWorkerKeepsRowOnPublishFailure(t *testing.T) {
	repo := newMemoryOutboxRepository()
	pub := newRecordingPublisher()
	pub.setError(errors.New("broker down"))
	repo.add("m1", "ticket.lifecycle", []byte(`{}`))

	w := NewOutboxWorker(repo, pub, &OutboxWorkerConfig{PollInterval: 10 * time.Millisecond, BatchSize: 10}, nil)
	require.NoError(t, w.Start(context.Background()))

	waitFor(t, func() bool { return repo.retries("m1") >= 2 })
	assert.Equal(t, domain.OutboxStatusPending, repo.status("m1"))

	// Broker recovers, the row drains
	pub.setError(nil)
	waitFor(t, func() bool { return repo.status("m1") == domain.OutboxStatusPublished })

	w.Stop()
}

func TestOutboxWorkerStartTwice(t *testing.T) {
	repo := newMemoryOutboxRepository()
	w := NewOutboxWorker(repo, newRecordingPublisher(), nil, nil)

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()))
	w.Stop()
}
