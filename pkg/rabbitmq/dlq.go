package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DLQMessage wraps a failed delivery with enough context to replay it later
type DLQMessage struct {
	// OriginalQueue is the queue the message was consumed from
	OriginalQueue string `json:"original_queue"`
	// Payload is the original message body
	Payload json.RawMessage `json:"payload"`
	// Error is the handler error that caused the move
	Error string `json:"error"`
	// MovedToDLQAt is when the message was dead-lettered
	MovedToDLQAt time.Time `json:"moved_to_dlq_at"`
}

// DLQName returns the dead-letter queue name for a queue
func DLQName(queue string) string {
	return queue + ".dlq"
}

func (c *Client) publishToDLQ(ctx context.Context, queue string, body []byte, handlerErr error) error {
	msg := DLQMessage{
		OriginalQueue: queue,
		Payload:       body,
		Error:         handlerErr.Error(),
		MovedToDLQAt:  time.Now().UTC(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ message: %w", err)
	}

	return c.Publish(ctx, DLQName(queue), data)
}
