package consumer

import (
	"context"
	"errors"

	"github.com/ticketrush/ticketrush/internal/notification/domain"
	"github.com/ticketrush/ticketrush/internal/notification/service"
	"github.com/ticketrush/ticketrush/pkg/logger"
	"github.com/ticketrush/ticketrush/pkg/messaging"
)

// Dispatcher pushes a persisted notification to live subscribers
type Dispatcher interface {
	Dispatch(notification *domain.Notification)
}

// NotificationConsumer turns queue messages into stored notifications and
// hands them to the live stream hub
type NotificationConsumer struct {
	service    service.NotificationService
	dispatcher Dispatcher
	log        *logger.Logger
}

// NewNotificationConsumer creates a new NotificationConsumer
func NewNotificationConsumer(svc service.NotificationService, dispatcher Dispatcher, log *logger.Logger) *NotificationConsumer {
	return &NotificationConsumer{service: svc, dispatcher: dispatcher, log: log}
}

// Handle processes one message. The notification is persisted before it is
// dispatched, so a crash between the two loses a live push but never the
// stored record.
func (c *NotificationConsumer) Handle(ctx context.Context, body []byte) error {
	envelope, err := messaging.Decode(body)
	if err != nil {
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

	notification, err := c.service.Ingest(ctx, payload)
	if err != nil {
		if domain.IsValidationError(err) {
			c.log.Warnw("dropping unrenderable message", "kind", envelope.Kind, "error", err)
			return nil
		}
		return err
	}
	if notification == nil {
		c.log.Debugw("ignoring message kind", "kind", envelope.Kind)
		return nil
	}

	c.dispatcher.Dispatch(notification)
	c.log.Infow("notification stored",
		"id", notification.ID,
		"kind", envelope.Kind,
		"broadcast", notification.IsBroadcast(),
	)
	return nil
}
