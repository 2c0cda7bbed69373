package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ticketrush/ticketrush/internal/event/domain"
	"github.com/ticketrush/ticketrush/internal/event/dto"
	"github.com/ticketrush/ticketrush/internal/event/repository"
	"github.com/ticketrush/ticketrush/pkg/messaging"
)

// TxRunner runs a function inside a database transaction
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Queues names the destinations for lifecycle messages
type Queues struct {
	Ticket       string
	Notification string
}

// EventService owns the event lifecycle state machine
type EventService interface {
	Create(ctx context.Context, req *dto.CreateEventRequest) (*domain.Event, error)
	Get(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, filter *dto.EventListFilter) ([]*domain.Event, int, error)
	Update(ctx context.Context, id string, req *dto.UpdateEventRequest) (*domain.Event, error)

	Publish(ctx context.Context, id string) (*domain.Event, error)
	Cancel(ctx context.Context, id string) (*domain.Event, error)
	Finish(ctx context.Context, id string) (*domain.Event, error)
}

type eventService struct {
	eventRepo  repository.EventRepository
	outboxRepo repository.OutboxRepository
	tx         TxRunner
	queues     Queues
}

// NewEventService creates a new EventService
func NewEventService(eventRepo repository.EventRepository, outboxRepo repository.OutboxRepository, tx TxRunner, queues Queues) EventService {
	return &eventService{
		eventRepo:  eventRepo,
		outboxRepo: outboxRepo,
		tx:         tx,
		queues:     queues,
	}
}

// Create creates a new draft event
func (s *eventService) Create(ctx context.Context, req *dto.CreateEventRequest) (*domain.Event, error) {
	now := time.Now().UTC()
	event := &domain.Event{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Capacity:    req.Capacity,
		Price:       req.Price,
		State:       domain.EventStateDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

// Get retrieves an event by ID
func (s *eventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}
	return event, nil
}

// List lists events with filters and pagination
func (s *eventService) List(ctx context.Context, filter *dto.EventListFilter) ([]*domain.Event, int, error) {
	filter.SetDefaults()

	return s.eventRepo.List(ctx, &repository.EventFilter{
		State:  filter.State,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// Update applies metadata changes. Capacity and price are frozen once the
// event leaves draft; terminal events accept title/description only.
func (s *eventService) Update(ctx context.Context, id string, req *dto.UpdateEventRequest) (*domain.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Capacity != nil || req.Price != nil {
		if event.State != domain.EventStateDraft {
			return nil, domain.ErrEventImmutable
		}
		if req.Capacity != nil {
			event.Capacity = *req.Capacity
		}
		if req.Price != nil {
			event.Price = *req.Price
		}
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

// Publish transitions draft → published and enqueues the lifecycle fan-out:
// inventory creation for the ticket service and a broadcast announcement for
// the notification service. Re-publishing an already published event returns
// it unchanged; any other origin state is a state conflict.
func (s *eventService) Publish(ctx context.Context, id string) (*domain.Event, error) {
	var result *domain.Event

	err := s.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		event, err := s.eventRepo.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrEventNotFound
		}

		if event.State == domain.EventStatePublished {
			// Idempotent: the caller sees the event as-is, nothing is re-emitted
			result = event
			return nil
		}
		if !event.CanPublish() {
			return domain.ErrNotPublishable
		}

		if err := s.eventRepo.UpdateStateTx(ctx, tx, event.ID, domain.EventStatePublished); err != nil {
			return err
		}
		event.State = domain.EventStatePublished

		payload := &messaging.EventPublished{
			EventID:  event.ID,
			Capacity: event.Capacity,
			Title:    event.Title,
			Price:    event.Price,
		}

		msgs, err := s.outboxMessages(messaging.KindEventPublished, payload, s.queues.Ticket, s.queues.Notification)
		if err != nil {
			return err
		}
		if err := s.outboxRepo.SaveTx(ctx, tx, msgs...); err != nil {
			return err
		}

		result = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Cancel transitions draft|published → cancelled and enqueues inventory
// retirement for the ticket service
func (s *eventService) Cancel(ctx context.Context, id string) (*domain.Event, error) {
	var result *domain.Event

	err := s.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		event, err := s.eventRepo.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrEventNotFound
		}

		if !event.CanCancel() {
			return domain.ErrNotCancellable
		}

		if err := s.eventRepo.UpdateStateTx(ctx, tx, event.ID, domain.EventStateCancelled); err != nil {
			return err
		}
		event.State = domain.EventStateCancelled

		payload := &messaging.EventCancelled{EventID: event.ID}
		msgs, err := s.outboxMessages(messaging.KindEventCancelled, payload, s.queues.Ticket)
		if err != nil {
			return err
		}
		if err := s.outboxRepo.SaveTx(ctx, tx, msgs...); err != nil {
			return err
		}

		result = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Finish transitions published → finished. Notification-only: inventory is
// left untouched.
func (s *eventService) Finish(ctx context.Context, id string) (*domain.Event, error) {
	var result *domain.Event

	err := s.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		event, err := s.eventRepo.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrEventNotFound
		}

		if !event.CanFinish() {
			return domain.ErrNotFinishable
		}

		if err := s.eventRepo.UpdateStateTx(ctx, tx, event.ID, domain.EventStateFinished); err != nil {
			return err
		}
		event.State = domain.EventStateFinished

		payload := &messaging.EventFinished{Title: event.Title}
		msgs, err := s.outboxMessages(messaging.KindEventFinished, payload, s.queues.Notification)
		if err != nil {
			return err
		}
		if err := s.outboxRepo.SaveTx(ctx, tx, msgs...); err != nil {
			return err
		}

		result = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *eventService) outboxMessages(kind messaging.Kind, payload interface{}, queues ...string) ([]*domain.OutboxMessage, error) {
	body, err := messaging.Encode(kind, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s message: %w", kind, err)
	}

	msgs := make([]*domain.OutboxMessage, 0, len(queues))
	for _, queue := range queues {
		msg, err := domain.NewOutboxMessage(queue, kind.String(), body)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}

	return msgs, nil
}
