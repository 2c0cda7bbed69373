package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketrush/ticketrush/internal/notification/domain"
	"github.com/ticketrush/ticketrush/pkg/logger"
	"github.com/ticketrush/ticketrush/pkg/messaging"
)

// stubNotificationService controls what Ingest returns
type stubNotificationService struct {
	ingested  []interface{}
	returns   *domain.Notification
	ingestErr error
}

func (s *stubNotificationService) Ingest(ctx context.Context, payload interface{}) (*domain.Notification, error) {
	if s.ingestErr != nil {
		return nil, s.ingestErr
	}
	s.ingested = append(s.ingested, payload)
	return s.returns, nil
}

func (s *stubNotificationService) List(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	return nil, nil
}

func (s *stubNotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

func (s *stubNotificationService) MarkRead(ctx context.Context, id, userID string) error { return nil }

func (s *stubNotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

func (s *stubNotificationService) Delete(ctx context.Context, id, userID string) error { return nil }

// recordingDispatcher captures dispatched notifications
type recordingDispatcher struct {
	dispatched []*domain.Notification
}

func (d *recordingDispatcher) Dispatch(n *domain.Notification) {
	d.dispatched = append(d.dispatched, n)
}

func TestHandlePersistsThenDispatches(t *testing.T) {
	stored := &domain.Notification{ID: "n1", Title: "x", Message: "y"}
	svc := &stubNotificationService{returns: stored}
	disp := &recordingDispatcher{}
	c := NewNotificationConsumer(svc, disp, logger.Get())

	body, err := messaging.Encode(messaging.KindTicketPurchased, messaging.TicketPurchased{TicketID: "t1", UserID: "u1"})
	require.NoError(t, err)

	require.NoError(t, c.Handle(context.Background(), body))
	require.Len(t, svc.ingested, 1)
	require.Len(t, disp.dispatched, 1)
	assert.Equal(t, "n1", disp.dispatched[0].ID)
}

func TestHandleNilNotificationSkipsDispatch(t *testing.T) {
	svc := &stubNotificationService{returns: nil}
	disp := &recordingDispatcher{}
	c := NewNotificationConsumer(svc, disp, logger.Get())

	body, err := messaging.Encode(messaging.KindEventCancelled, messaging.EventCancelled{EventID: "e1"})
	require.NoError(t, err)

	require.NoError(t, c.Handle(context.Background(), body))
	assert.Empty(t, disp.dispatched)
}

func TestHandleUnknownKindIsAcked(t *testing.T) {
	svc := &stubNotificationService{}
	disp := &recordingDispatcher{}
	c := NewNotificationConsumer(svc, disp, logger.Get())

	assert.NoError(t, c.Handle(context.Background(), []byte(`{"kind":"mystery","payload":{}}`)))
	assert.Empty(t, svc.ingested)
	assert.Empty(t, disp.dispatched)
}

func TestHandleMalformedBodyIsAcked(t *testing.T) {
	c := NewNotificationConsumer(&stubNotificationService{}, &recordingDispatcher{}, logger.Get())
	assert.NoError(t, c.Handle(context.Background(), []byte(`{{`)))
}

func TestHandleStorageErrorIsRetried(t *testing.T) {
	svc := &stubNotificationService{ingestErr: errors.New("db down")}
	c := NewNotificationConsumer(svc, &recordingDispatcher{}, logger.Get())

	body, err := messaging.Encode(messaging.KindTicketPurchased, messaging.TicketPurchased{TicketID: "t1", UserID: "u1"})
	require.NoError(t, err)

	assert.Error(t, c.Handle(context.Background(), body))
}

func TestHandleUnrenderableIsAcked(t *testing.T) {
	svc := &stubNotificationService{ingestErr: domain.ErrInvalidNotification}
	c := NewNotificationConsumer(svc, &recordingDispatcher{}, logger.Get())

	body, err := messaging.Encode(messaging.KindNotification, messaging.Notification{})
	require.NoError(t, err)

	// A message that can never render must not loop through redelivery
	assert.NoError(t, c.Handle(context.Background(), body))
}
