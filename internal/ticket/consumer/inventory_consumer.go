package consumer

import (
	"context"
	"errors"

	"github.com/ticketrush/ticketrush/internal/ticket/service"
	"github.com/ticketrush/ticketrush/pkg/logger"
	"github.com/ticketrush/ticketrush/pkg/messaging"
)

// InventoryConsumer reacts to event lifecycle messages by creating and
// retiring ticket inventory
type InventoryConsumer struct {
	service service.TicketService
	log     *logger.Logger
}

// NewInventoryConsumer creates a new InventoryConsumer
func NewInventoryConsumer(svc service.TicketService, log *logger.Logger) *InventoryConsumer {
	return &InventoryConsumer{service: svc, log: log}
}

// Handle processes one lifecycle message. A nil return acknowledges the
// message; an error triggers the transport's redelivery policy, so only
// retryable failures are surfaced.
func (c *InventoryConsumer) Handle(ctx context.Context, body []byte) error {
	envelope, err := messaging.Decode(body)
	if err != nil {
		// malformed payloads never become deliverable, drop them
		c.log.Warnw("dropping undecodable message", "error", err)
		return nil
	}

	payload, err := envelope.DecodePayload()
	if err != nil {
		var unknown *messaging.UnknownKindError
		if errors.As(err, &unknown) {
			c.log.Warnw("dropping message of unknown kind", "kind", unknown.Kind)
			return nil
		}
		c.log.Warnw("dropping message with malformed payload", "kind", envelope.Kind, "error", err)
		return nil
	}

	switch p := payload.(type) {
	case *messaging.EventPublished:
		created, err := c.service.CreateInventory(ctx, p.EventID, p.Capacity, p.Price)
		if err != nil {
			return err
		}
		c.log.Infow("processed event publication", "event_id", p.EventID, "tickets_created", created)
		return nil

	case *messaging.EventCancelled:
		if err := c.service.RetireInventory(ctx, p.EventID); err != nil {
			return err
		}
		c.log.Infow("processed event cancellation", "event_id", p.EventID)
		return nil

	default:
		// kinds addressed to other consumers, acknowledge without action
		c.log.Debugw("ignoring message kind", "kind", envelope.Kind)
		return nil
	}
}
