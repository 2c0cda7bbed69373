package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ticketrush/ticketrush/internal/ticket/domain"
	"github.com/ticketrush/ticketrush/internal/ticket/repository"
	"github.com/ticketrush/ticketrush/pkg/logger"
	"github.com/ticketrush/ticketrush/pkg/messaging"
)

// Publisher sends a message body to a named queue
type Publisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

// TicketService defines ticket inventory and allocation operations
type TicketService interface {
	// CreateInventory mints capacity tickets for the event. Creation is
	// idempotent: if the event already has tickets nothing is added.
	CreateInventory(ctx context.Context, eventID string, capacity int, price float64) (int, error)
	// RetireInventory cancels all remaining tickets of an event
	RetireInventory(ctx context.Context, eventID string) error
	// PurchaseSpecific sells one named ticket to userID
	PurchaseSpecific(ctx context.Context, ticketID, userID string) (*domain.Ticket, error)
	// PurchaseAny sells any one available ticket of the event to userID
	PurchaseAny(ctx context.Context, eventID, userID string) (*domain.Ticket, error)
	// PurchaseBatch sells quantity tickets to userID, all or nothing
	PurchaseBatch(ctx context.Context, eventID, userID string, quantity int) ([]*domain.Ticket, error)
	// Cancel releases a ticket held by userID
	Cancel(ctx context.Context, ticketID, userID string) (*domain.Ticket, error)
	// MyTickets returns tickets currently held by userID
	MyTickets(ctx context.Context, userID string) ([]*domain.Ticket, error)
	// TicketsByEvent returns all tickets of an event
	TicketsByEvent(ctx context.Context, eventID string) ([]*domain.Ticket, error)
	// SalesSummary reports held ticket count and revenue for the event
	SalesSummary(ctx context.Context, eventID string) (*domain.SalesSummary, error)
	// SalesSummaryAll reports held ticket count and revenue per event
	SalesSummaryAll(ctx context.Context) ([]*domain.SalesSummary, error)
}

type ticketService struct {
	repo              repository.TicketRepository
	publisher         Publisher
	notificationQueue string
	log               *logger.Logger
}

// NewTicketService creates a new ticket service
func NewTicketService(repo repository.TicketRepository, publisher Publisher, notificationQueue string, log *logger.Logger) TicketService {
	return &ticketService{
		repo:              repo,
		publisher:         publisher,
		notificationQueue: notificationQueue,
		log:               log,
	}
}

func (s *ticketService) CreateInventory(ctx context.Context, eventID string, capacity int, price float64) (int, error) {
	if eventID == "" {
		return 0, domain.ErrInvalidEventID
	}

	exists, err := s.repo.ExistsForEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if exists {
		s.log.Infow("inventory already exists, skipping", "event_id", eventID)
		return 0, nil
	}

	now := time.Now().UTC()
	tickets := make([]*domain.Ticket, 0, capacity)
	for i := 0; i < capacity; i++ {
		tickets = append(tickets, &domain.Ticket{
			ID:        uuid.New().String(),
			Code:      uuid.New().String(),
			EventID:   eventID,
			Price:     price,
			State:     domain.TicketStateAvailable,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := s.repo.CreateBatch(ctx, tickets); err != nil {
		return 0, err
	}

	s.log.Infow("inventory created", "event_id", eventID, "tickets", capacity)
	return capacity, nil
}

func (s *ticketService) RetireInventory(ctx context.Context, eventID string) error {
	if eventID == "" {
		return domain.ErrInvalidEventID
	}

	held, err := s.repo.RetireByEvent(ctx, eventID)
	if err != nil {
		return err
	}

	s.log.Infow("inventory retired", "event_id", eventID, "held_tickets", len(held))

	for _, h := range held {
		s.notifyCancelled(ctx, h.TicketID, h.HolderID)
	}

	return nil
}

func (s *ticketService) PurchaseSpecific(ctx context.Context, ticketID, userID string) (*domain.Ticket, error) {
	if ticketID == "" {
		return nil, domain.ErrInvalidTicketID
	}

	ticket, err := s.repo.ClaimSpecific(ctx, ticketID, userID)
	if err != nil {
		return nil, err
	}

	s.notifyPurchased(ctx, ticket.ID, userID)
	return ticket, nil
}

func (s *ticketService) PurchaseAny(ctx context.Context, eventID, userID string) (*domain.Ticket, error) {
	if eventID == "" {
		return nil, domain.ErrInvalidEventID
	}

	ticket, err := s.repo.ClaimAny(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	s.notifyPurchased(ctx, ticket.ID, userID)
	return ticket, nil
}

func (s *ticketService) PurchaseBatch(ctx context.Context, eventID, userID string, quantity int) ([]*domain.Ticket, error) {
	if eventID == "" {
		return nil, domain.ErrInvalidEventID
	}
	if quantity < 1 || quantity > 100 {
		return nil, domain.ErrInvalidQuantity
	}

	tickets, err := s.repo.ClaimBatch(ctx, eventID, userID, quantity)
	if err != nil {
		return nil, err
	}

	for _, t := range tickets {
		s.notifyPurchased(ctx, t.ID, userID)
	}

	return tickets, nil
}

func (s *ticketService) Cancel(ctx context.Context, ticketID, userID string) (*domain.Ticket, error) {
	if ticketID == "" {
		return nil, domain.ErrInvalidTicketID
	}

	ticket, err := s.repo.ReleaseHeld(ctx, ticketID, userID)
	if err != nil {
		return nil, err
	}

	s.notifyCancelled(ctx, ticket.ID, userID)
	return ticket, nil
}

func (s *ticketService) MyTickets(ctx context.Context, userID string) ([]*domain.Ticket, error) {
	return s.repo.ListByHolder(ctx, userID)
}

func (s *ticketService) TicketsByEvent(ctx context.Context, eventID string) ([]*domain.Ticket, error) {
	if eventID == "" {
		return nil, domain.ErrInvalidEventID
	}
	return s.repo.ListByEvent(ctx, eventID)
}

func (s *ticketService) SalesSummary(ctx context.Context, eventID string) (*domain.SalesSummary, error) {
	if eventID == "" {
		return nil, domain.ErrInvalidEventID
	}
	return s.repo.SalesSummary(ctx, eventID)
}

func (s *ticketService) SalesSummaryAll(ctx context.Context) ([]*domain.SalesSummary, error) {
	return s.repo.SalesSummaryAll(ctx)
}

// notifyPurchased emits a purchase message. Transport failures are logged
// and never fail the purchase itself: the sale is already committed.
func (s *ticketService) notifyPurchased(ctx context.Context, ticketID, userID string) {
	body, err := messaging.Encode(messaging.KindTicketPurchased, messaging.TicketPurchased{
		TicketID: ticketID,
		UserID:   userID,
	})
	if err != nil {
		s.log.Errorw("failed to encode purchase message", "ticket_id", ticketID, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, s.notificationQueue, body); err != nil {
		s.log.Errorw("failed to publish purchase message", "ticket_id", ticketID, "error", err)
	}
}

func (s *ticketService) notifyCancelled(ctx context.Context, ticketID, userID string) {
	body, err := messaging.Encode(messaging.KindTicketCancelled, messaging.TicketCancelled{
		TicketID: ticketID,
		UserID:   userID,
	})
	if err != nil {
		s.log.Errorw("failed to encode cancellation message", "ticket_id", ticketID, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, s.notificationQueue, body); err != nil {
		s.log.Errorw("failed to publish cancellation message", "ticket_id", ticketID, "error", err)
	}
}
