package domain

import (
	"encoding/json"
	"time"
)

// OutboxStatus represents the status of an outbox message
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// IsValid checks if the status is a valid OutboxStatus
func (s OutboxStatus) IsValid() bool {
	switch s {
	case OutboxStatusPending, OutboxStatusPublished, OutboxStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of OutboxStatus
func (s OutboxStatus) String() string {
	return string(s)
}

// OutboxMessage is a broker message stored in the same transaction as the
// state change that produced it. A background worker drains pending rows,
// so a broker outage never loses a lifecycle transition.
type OutboxMessage struct {
	ID          string       `json:"id"`
	Queue       string       `json:"queue"`
	Kind        string       `json:"kind"`
	Payload     []byte       `json:"payload"`
	Status      OutboxStatus `json:"status"`
	RetryCount  int          `json:"retry_count"`
	LastError   string       `json:"last_error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	PublishedAt *time.Time   `json:"published_at,omitempty"`
}

// NewOutboxMessage creates a pending outbox message for a queue
func NewOutboxMessage(queue, kind string, payload interface{}) (*OutboxMessage, error) {
	body, ok := payload.([]byte)
	if !ok {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}

	return &OutboxMessage{
		Queue:     queue,
		Kind:      kind,
		Payload:   body,
		Status:    OutboxStatusPending,
		CreatedAt: time.Now().UTC(),
	}, nil
}
