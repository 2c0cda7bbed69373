package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketrush/ticketrush/internal/notification/domain"
	"github.com/ticketrush/ticketrush/pkg/logger"
	"github.com/ticketrush/ticketrush/pkg/messaging"
)

// MockNotificationRepository is a map-backed NotificationRepository
type MockNotificationRepository struct {
	notifications map[string]*domain.Notification
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{notifications: make(map[string]*domain.Notification)}
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	copied := *n
	m.notifications[n.ID] = &copied
	return nil
}

func (m *MockNotificationRepository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	var out []*domain.Notification
	for _, n := range m.notifications {
		if n.RecipientID == nil || *n.RecipientID == userID {
			copied := *n
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *MockNotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, n := range m.notifications {
		if n.RecipientID != nil && *n.RecipientID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	n, ok := m.notifications[id]
	if !ok || n.RecipientID == nil || *n.RecipientID != userID {
		return domain.ErrNotificationNotFound
	}
	n.Read = true
	if n.ReadAt == nil {
		now := time.Now().UTC()
		n.ReadAt = &now
	}
	return nil
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	updated := 0
	now := time.Now().UTC()
	for _, n := range m.notifications {
		if n.RecipientID != nil && *n.RecipientID == userID && !n.Read {
			n.Read = true
			n.ReadAt = &now
			updated++
		}
	}
	return updated, nil
}

func (m *MockNotificationRepository) Delete(ctx context.Context, id, userID string) error {
	n, ok := m.notifications[id]
	if !ok || n.RecipientID == nil || *n.RecipientID != userID {
		return domain.ErrNotificationNotFound
	}
	delete(m.notifications, id)
	return nil
}

func newTestService() (NotificationService, *MockNotificationRepository) {
	repo := NewMockNotificationRepository()
	return NewNotificationService(repo, logger.Get()), repo
}

func TestIngestEventPublishedBroadcasts(t *testing.T) {
	svc, _ := newTestService()

	n, err := svc.Ingest(context.Background(), &messaging.EventPublished{Title: "Go Conference"})
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.True(t, n.IsBroadcast())
	assert.Equal(t, domain.CategoryEvent, n.Category)
	assert.Contains(t, n.Message, "Go Conference")
	assert.NotEmpty(t, n.ID)
}

func TestIngestTicketPurchasedTargetsBuyer(t *testing.T) {
	svc, _ := newTestService()

	n, err := svc.Ingest(context.Background(), &messaging.TicketPurchased{TicketID: "t1", UserID: "u1"})
	require.NoError(t, err)
	require.NotNil(t, n)
	require.NotNil(t, n.RecipientID)
	assert.Equal(t, "u1", *n.RecipientID)
	assert.Equal(t, domain.CategoryTicket, n.Category)
}

func TestIngestEveryRenderableKind(t *testing.T) {
	svc, _ := newTestService()
	recipient := "u1"

	payloads := []interface{}{
		&messaging.EventPublished{Title: "a"},
		&messaging.EventFinished{Title: "a"},
		&messaging.TicketPurchased{TicketID: "t1", UserID: "u1"},
		&messaging.TicketCancelled{TicketID: "t1", UserID: "u1"},
		&messaging.UserCreated{UserID: "u1", Title: "Welcome", Message: "hello"},
		&messaging.Notification{RecipientID: &recipient, Title: "x", Message: "y", Category: "system"},
	}

	for _, p := range payloads {
		n, err := svc.Ingest(context.Background(), p)
		require.NoError(t, err)
		assert.NotNil(t, n)
	}
}

func TestIngestNonRenderableKind(t *testing.T) {
	svc, repo := newTestService()

	// Lifecycle kinds addressed to the ticket consumer store nothing
	n, err := svc.Ingest(context.Background(), &messaging.EventCancelled{EventID: "e1"})
	require.NoError(t, err)
	assert.Nil(t, n)
	assert.Empty(t, repo.notifications)
}

func TestIngestRejectsEmptyRendering(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Ingest(context.Background(), &messaging.Notification{Title: "", Message: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidNotification)
}

func TestIngestUnknownCategoryFallsBack(t *testing.T) {
	svc, _ := newTestService()

	n, err := svc.Ingest(context.Background(), &messaging.Notification{Title: "x", Message: "y", Category: "weird"})
	require.NoError(t, err)
	assert.Equal(t, domain.CategorySystem, n.Category)
}

func TestListIncludesBroadcasts(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Ingest(ctx, &messaging.EventPublished{Title: "Go Conference"})
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, &messaging.TicketPurchased{TicketID: "t1", UserID: "u1"})
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, &messaging.TicketPurchased{TicketID: "t2", UserID: "u2"})
	require.NoError(t, err)

	list, err := svc.List(ctx, "u1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2, "own notification plus the broadcast")
}

func TestReadStateLifecycle(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	n1, err := svc.Ingest(ctx, &messaging.TicketPurchased{TicketID: "t1", UserID: "u1"})
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, &messaging.TicketPurchased{TicketID: "t2", UserID: "u1"})
	require.NoError(t, err)

	unread, err := svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, unread)
	assert.Nil(t, repo.notifications[n1.ID].ReadAt)

	require.NoError(t, svc.MarkRead(ctx, n1.ID, "u1"))
	unread, err = svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	firstReadAt := repo.notifications[n1.ID].ReadAt
	require.NotNil(t, firstReadAt)

	// Re-marking keeps the original timestamp
	require.NoError(t, svc.MarkRead(ctx, n1.ID, "u1"))
	assert.Equal(t, firstReadAt, repo.notifications[n1.ID].ReadAt)

	// Another user cannot touch it
	assert.ErrorIs(t, svc.MarkRead(ctx, n1.ID, "u2"), domain.ErrNotificationNotFound)

	updated, err := svc.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	require.NoError(t, svc.Delete(ctx, n1.ID, "u1"))
	assert.ErrorIs(t, svc.Delete(ctx, n1.ID, "u1"), domain.ErrNotificationNotFound)
}
