package amqp

import (
	"context"
	"log/slog"
	"time"
)

// Publisher emits record change events without blocking mutations. A nil
// Publisher is valid and publishes nothing, so the broker stays optional.
type Publisher struct {
	client *Client
}

func NewPublisher(client *Client) *Publisher {
	if client == nil {
		return nil
	}
	return &Publisher{client: client}
}

// Publish sends one change event in the background. Broker failures are
// logged; they never fail the mutation that triggered them.
func (p *Publisher) Publish(username, op string, recordID int64, count int) {
	if p == nil || p.client == nil {
		return
	}

	msg := NewRecordChangeMessage(username, op, recordID, count)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.client.PublishRecordChange(ctx, msg); err != nil {
			slog.Warn("Failed to publish record change",
				"username", username, "op", op, "error", err)
		}
	}()
}
