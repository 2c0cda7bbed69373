// Package messaging defines the wire contract shared by every queue in the
// system: a JSON envelope with a kind discriminator and a kind-specific
// payload. The set of kinds is closed; decoding an unknown kind yields a
// distinct error so consumers can log and drop it without crashing.
package messaging

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the payload type of an envelope
type Kind string

const (
	KindEventPublished  Kind = "published"
	KindEventCancelled  Kind = "cancelled"
	KindEventFinished   Kind = "finished"
	KindTicketPurchased Kind = "ticket_purchased"
	KindTicketCancelled Kind = "ticket_cancelled"
	KindUserCreated     Kind = "user_created"
	KindNotification    Kind = "notification"
)

// IsValid reports whether k is a known kind
func (k Kind) IsValid() bool {
	switch k {
	case KindEventPublished, KindEventCancelled, KindEventFinished,
		KindTicketPurchased, KindTicketCancelled, KindUserCreated, KindNotification:
		return true
	}
	return false
}

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// Envelope is the message as it travels through the broker.
// Never mutated after publish; consumed at-least-once.
type Envelope struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// EventPublished announces that an event went live and its inventory
// must be materialized.
type EventPublished struct {
	EventID  string  `json:"event_id"`
	Capacity int     `json:"capacity"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
}

// EventCancelled announces that an event was cancelled and its inventory
// must be retired.
type EventCancelled struct {
	EventID string `json:"event_id"`
}

// EventFinished announces that an event ended. Notification-only.
type EventFinished struct {
	Title string `json:"title"`
}

// TicketPurchased announces a completed purchase.
type TicketPurchased struct {
	TicketID string `json:"ticket_id"`
	UserID   string `json:"user_id"`
}

// TicketCancelled announces a holder-initiated cancellation.
type TicketCancelled struct {
	TicketID string `json:"ticket_id"`
	UserID   string `json:"user_id"`
}

// UserCreated announces a new user registered with the external user service.
type UserCreated struct {
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notification is a pre-rendered notification. A nil RecipientID means broadcast.
type Notification struct {
	RecipientID *string `json:"recipient_id,omitempty"`
	Title       string  `json:"title"`
	Message     string  `json:"message"`
	Category    string  `json:"category"`
}

// UnknownKindError is returned when decoding an envelope whose kind is not
// part of the closed union. Consumers log it and drop the message.
type UnknownKindError struct {
	Kind Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown message kind: %q", string(e.Kind))
}

// Encode builds an envelope around payload and marshals it for publishing
func Encode(kind Kind, payload interface{}) ([]byte, error) {
	if !kind.IsValid() {
		return nil, &UnknownKindError{Kind: kind}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for kind %s: %w", kind, err)
	}

	data, err := json.Marshal(Envelope{Kind: kind, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	return data, nil
}

// Decode unmarshals the outer envelope without touching the payload
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	if env.Kind == "" {
		return nil, fmt.Errorf("envelope has no kind discriminator")
	}
	return &env, nil
}

// DecodePayload exhaustively maps the envelope to its typed payload.
// The returned value is one of the payload struct pointers above.
func (e *Envelope) DecodePayload() (interface{}, error) {
	switch e.Kind {
	case KindEventPublished:
		return decodeAs[EventPublished](e)
	case KindEventCancelled:
		return decodeAs[EventCancelled](e)
	case KindEventFinished:
		return decodeAs[EventFinished](e)
	case KindTicketPurchased:
		return decodeAs[TicketPurchased](e)
	case KindTicketCancelled:
		return decodeAs[TicketCancelled](e)
	case KindUserCreated:
		return decodeAs[UserCreated](e)
	case KindNotification:
		return decodeAs[Notification](e)
	default:
		return nil, &UnknownKindError{Kind: e.Kind}
	}
}

func decodeAs[T any](e *Envelope) (*T, error) {
	var payload T
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s payload: %w", e.Kind, err)
	}
	return &payload, nil
}
