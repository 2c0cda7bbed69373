// Package hub maintains the set of live notification streams. All registry
// state is owned by a single run loop; callers interact with it only through
// channels, so no lock guards the connection maps.
package hub

import (
	"sync"

	"github.com/ticketrush/ticketrush/internal/notification/domain"
	"github.com/ticketrush/ticketrush/pkg/logger"
)

// sendBuffer is the per-connection queue depth. A client that falls this
// far behind is pruned rather than allowed to stall the run loop.
const sendBuffer = 16

// Connection is one subscriber's live stream
type Connection struct {
	UserID string
	send   chan *domain.Notification
}

// Receive exposes the connection's delivery channel. It is closed when the
// hub prunes or unregisters the connection.
func (c *Connection) Receive() <-chan *domain.Notification {
	return c.send
}

type delivery struct {
	notification *domain.Notification
}

// Hub routes notifications to registered connections
type Hub struct {
	register   chan *Connection
	unregister chan *Connection
	deliveries chan delivery

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}

	log *logger.Logger
}

// NewHub creates a new Hub. Call Run before using it.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		deliveries: make(chan delivery, 64),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the connection registry until Stop is called. It is the only
// goroutine that touches the maps.
func (h *Hub) Run() {
	byUser := make(map[string]map[*Connection]struct{})
	all := make(map[*Connection]struct{})

	defer func() {
		for conn := range all {
			close(conn.send)
		}
		close(h.done)
	}()

	for {
		select {
		case conn := <-h.register:
			all[conn] = struct{}{}
			userConns, ok := byUser[conn.UserID]
			if !ok {
				userConns = make(map[*Connection]struct{})
				byUser[conn.UserID] = userConns
			}
			userConns[conn] = struct{}{}
			h.log.Infow("connection registered", "user_id", conn.UserID, "connections", len(all))

		case conn := <-h.unregister:
			h.drop(byUser, all, conn)

		case d := <-h.deliveries:
			if d.notification.IsBroadcast() {
				for conn := range all {
					h.push(byUser, all, conn, d.notification)
				}
				continue
			}
			for conn := range byUser[*d.notification.RecipientID] {
				h.push(byUser, all, conn, d.notification)
			}

		case <-h.stop:
			return
		}
	}
}

// push hands a notification to one connection without blocking. A full
// buffer means the client stopped reading, so the connection is dropped.
func (h *Hub) push(byUser map[string]map[*Connection]struct{}, all map[*Connection]struct{}, conn *Connection, n *domain.Notification) {
	select {
	case conn.send <- n:
	default:
		h.log.Warnw("dropping stalled connection", "user_id", conn.UserID)
		h.drop(byUser, all, conn)
	}
}

func (h *Hub) drop(byUser map[string]map[*Connection]struct{}, all map[*Connection]struct{}, conn *Connection) {
	if _, ok := all[conn]; !ok {
		return
	}
	delete(all, conn)
	if userConns, ok := byUser[conn.UserID]; ok {
		delete(userConns, conn)
		if len(userConns) == 0 {
			delete(byUser, conn.UserID)
		}
	}
	close(conn.send)
	h.log.Infow("connection removed", "user_id", conn.UserID, "connections", len(all))
}

// Register attaches a new stream for userID. Returns nil after Stop.
func (h *Hub) Register(userID string) *Connection {
	conn := &Connection{
		UserID: userID,
		send:   make(chan *domain.Notification, sendBuffer),
	}
	select {
	case h.register <- conn:
		return conn
	case <-h.done:
		return nil
	}
}

// Unregister detaches a stream. Safe to call for already-pruned connections.
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Dispatch routes a notification to its recipient's connections, or to every
// connection when it is a broadcast. Never blocks past the hub's queue.
func (h *Hub) Dispatch(notification *domain.Notification) {
	select {
	case h.deliveries <- delivery{notification: notification}:
	case <-h.done:
	}
}

// Stop shuts the run loop down and closes every connection
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
	<-h.done
}
