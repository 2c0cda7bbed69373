package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketrush/ticketrush/internal/event/domain"
	"github.com/ticketrush/ticketrush/internal/event/dto"
	"github.com/ticketrush/ticketrush/internal/event/repository"
	"github.com/ticketrush/ticketrush/pkg/messaging"
)

// MockEventRepository is a map-backed EventRepository
type MockEventRepository struct {
	events map[string]*domain.Event
}

func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{events: make(map[string]*domain.Event)}
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	copied := *event
	m.events[event.ID] = &copied
	return nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, nil
	}
	copied := *event
	return &copied, nil
}

func (m *MockEventRepository) List(ctx context.Context, filter *repository.EventFilter) ([]*domain.Event, int, error) {
	var events []*domain.Event
	for _, e := range m.events {
		if filter.State != "" && e.State.String() != filter.State {
			continue
		}
		copied := *e
		events = append(events, &copied)
	}
	return events, len(events), nil
}

func (m *MockEventRepository) Update(ctx context.Context, event *domain.Event) error {
	if _, ok := m.events[event.ID]; !ok {
		return domain.ErrEventNotFound
	}
	copied := *event
	m.events[event.ID] = &copied
	return nil
}

func (m *MockEventRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (*domain.Event, error) {
	return m.GetByID(ctx, id)
}

func (m *MockEventRepository) UpdateStateTx(ctx context.Context, tx pgx.Tx, id string, state domain.EventState) error {
	event, ok := m.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	event.State = state
	return nil
}

// MockOutboxRepository records saved messages
type MockOutboxRepository struct {
	saved []*domain.OutboxMessage
}

func (m *MockOutboxRepository) SaveTx(ctx context.Context, tx pgx.Tx, msgs ...*domain.OutboxMessage) error {
	m.saved = append(m.saved, msgs...)
	return nil
}

func (m *MockOutboxRepository) FetchPending(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	return nil, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string) error { return nil }

func (m *MockOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

func (m *MockOutboxRepository) queuesFor(kind string) []string {
	var queues []string
	for _, msg := range m.saved {
		if msg.Kind == kind {
			queues = append(queues, msg.Queue)
		}
	}
	return queues
}

// mockTxRunner runs the function directly; the mocks ignore the tx handle
type mockTxRunner struct{}

func (mockTxRunner) WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

var testQueues = Queues{Ticket: "ticket.lifecycle", Notification: "notification.events"}

func newTestService() (EventService, *MockEventRepository, *MockOutboxRepository) {
	eventRepo := NewMockEventRepository()
	outboxRepo := &MockOutboxRepository{}
	svc := NewEventService(eventRepo, outboxRepo, mockTxRunner{}, testQueues)
	return svc, eventRepo, outboxRepo
}

func createDraft(t *testing.T, svc EventService) *domain.Event {
	t.Helper()
	event, err := svc.Create(context.Background(), &dto.CreateEventRequest{
		Title:    "Go Conference",
		Capacity: 50,
		Price:    25,
	})
	require.NoError(t, err)
	return event
}

func TestEventServiceCreate(t *testing.T) {
	svc, _, _ := newTestService()

	event := createDraft(t, svc)
	assert.Equal(t, domain.EventStateDraft, event.State)
	assert.NotEmpty(t, event.ID)

	_, err := svc.Create(context.Background(), &dto.CreateEventRequest{Capacity: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)
}

func TestEventServiceGetMissing(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestEventServicePublish(t *testing.T) {
	svc, _, outbox := newTestService()
	event := createDraft(t, svc)

	published, err := svc.Publish(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatePublished, published.State)

	// Fan-out to both queues in one transaction
	queues := outbox.queuesFor(messaging.KindEventPublished.String())
	assert.ElementsMatch(t, []string{testQueues.Ticket, testQueues.Notification}, queues)
}

func TestEventServicePublishIdempotent(t *testing.T) {
	svc, _, outbox := newTestService()
	event := createDraft(t, svc)

	_, err := svc.Publish(context.Background(), event.ID)
	require.NoError(t, err)
	firstCount := len(outbox.saved)

	again, err := svc.Publish(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatePublished, again.State)
	assert.Len(t, outbox.saved, firstCount, "re-publishing must not emit again")
}

func TestEventServicePublishFromTerminalState(t *testing.T) {
	svc, _, _ := newTestService()
	event := createDraft(t, svc)

	_, err := svc.Publish(context.Background(), event.ID)
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), event.ID)
	require.NoError(t, err)

	_, err = svc.Publish(context.Background(), event.ID)
	assert.ErrorIs(t, err, domain.ErrNotPublishable)
}

func TestEventServiceCancel(t *testing.T) {
	svc, _, outbox := newTestService()
	event := createDraft(t, svc)

	cancelled, err := svc.Cancel(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStateCancelled, cancelled.State)

	// Retirement goes to the ticket queue only
	queues := outbox.queuesFor(messaging.KindEventCancelled.String())
	assert.Equal(t, []string{testQueues.Ticket}, queues)

	_, err = svc.Cancel(context.Background(), event.ID)
	assert.ErrorIs(t, err, domain.ErrNotCancellable)
}

func TestEventServiceFinish(t *testing.T) {
	svc, _, outbox := newTestService()
	event := createDraft(t, svc)

	// Finishing a draft is a conflict
	_, err := svc.Finish(context.Background(), event.ID)
	assert.ErrorIs(t, err, domain.ErrNotFinishable)

	_, err = svc.Publish(context.Background(), event.ID)
	require.NoError(t, err)

	finished, err := svc.Finish(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStateFinished, finished.State)

	// Announcement goes to the notification queue only
	queues := outbox.queuesFor(messaging.KindEventFinished.String())
	assert.Equal(t, []string{testQueues.Notification}, queues)
}

func TestEventServiceUpdateFreezesCapacityAndPrice(t *testing.T) {
	svc, _, _ := newTestService()
	event := createDraft(t, svc)

	newCapacity := 80
	updated, err := svc.Update(context.Background(), event.ID, &dto.UpdateEventRequest{Capacity: &newCapacity})
	require.NoError(t, err)
	assert.Equal(t, 80, updated.Capacity)

	_, err = svc.Publish(context.Background(), event.ID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), event.ID, &dto.UpdateEventRequest{Capacity: &newCapacity})
	assert.ErrorIs(t, err, domain.ErrEventImmutable)

	// Title edits stay allowed after publish
	title := "Renamed"
	updated, err = svc.Update(context.Background(), event.ID, &dto.UpdateEventRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}
