package hub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketrush/ticketrush/internal/notification/domain"
	"github.com/ticketrush/ticketrush/pkg/logger"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(logger.Get())
	go h.Run()
	t.Cleanup(h.Stop)
	return h
}

func receive(t *testing.T, conn *Connection) *domain.Notification {
	t.Helper()
	select {
	case n, ok := <-conn.Receive():
		require.True(t, ok, "connection closed unexpectedly")
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return nil
	}
}

func assertNothingDelivered(t *testing.T, conn *Connection) {
	t.Helper()
	select {
	case n, ok := <-conn.Receive():
		if ok {
			t.Fatalf("unexpected delivery: %+v", n)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func targeted(userID, title string) *domain.Notification {
	return &domain.Notification{ID: title, RecipientID: &userID, Title: title, Message: "m"}
}

func TestHubDeliversToRecipient(t *testing.T) {
	h := startHub(t)

	conn := h.Register("u1")
	require.NotNil(t, conn)
	other := h.Register("u2")
	require.NotNil(t, other)

	h.Dispatch(targeted("u1", "hello"))

	got := receive(t, conn)
	assert.Equal(t, "hello", got.Title)
	assertNothingDelivered(t, other)
}

func TestHubBroadcastReachesEveryConnection(t *testing.T) {
	h := startHub(t)

	conns := []*Connection{h.Register("u1"), h.Register("u1"), h.Register("u2")}
	h.Dispatch(&domain.Notification{ID: "b1", Title: "announcement", Message: "m"})

	for _, conn := range conns {
		got := receive(t, conn)
		assert.Equal(t, "announcement", got.Title)
	}
}

func TestHubMultipleConnectionsPerUser(t *testing.T) {
	h := startHub(t)

	first := h.Register("u1")
	second := h.Register("u1")

	h.Dispatch(targeted("u1", "both"))

	assert.Equal(t, "both", receive(t, first).Title)
	assert.Equal(t, "both", receive(t, second).Title)
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	h := startHub(t)

	conn := h.Register("u1")
	h.Unregister(conn)

	// The send channel closes once the run loop processes the unregister
	select {
	case _, ok := <-conn.Receive():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("connection was not closed")
	}

	// Dispatching afterwards must not panic or block
	h.Dispatch(targeted("u1", "late"))
}

func TestHubPrunesStalledConnection(t *testing.T) {
	h := startHub(t)

	stalled := h.Register("u1")
	healthy := h.Register("u1")

	// Fill the stalled connection's buffer without reading
	for i := 0; i <= sendBuffer; i++ {
		h.Dispatch(targeted("u1", "flood"))
		receive(t, healthy)
	}
	// One more delivery finds the buffer full and drops the connection
	h.Dispatch(targeted("u1", "overflow"))
	receive(t, healthy)

	// Drain what was buffered; the channel must then be closed
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-stalled.Receive():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("stalled connection was never pruned")
		}
	}
}

func TestHubStopClosesConnections(t *testing.T) {
	h := NewHub(logger.Get())
	go h.Run()

	conn := h.Register("u1")
	h.Stop()

	select {
	case _, ok := <-conn.Receive():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("connection not closed on stop")
	}

	// After stop, registry calls return without blocking
	assert.Nil(t, h.Register("u2"))
	h.Unregister(conn)
	h.Dispatch(targeted("u1", "late"))
}
