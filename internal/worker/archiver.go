// Package worker consumes the record change stream and archives every event
// into the SQLite audit log, giving a durable trail of mutations independent
// of the active data backend.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pokerledger/internal/amqp"
)

// AuditSink receives archived change events. *storage.SQLiteRepository
// implements it.
type AuditSink interface {
	AppendChangeEvent(ctx context.Context, username, op string, recordID int64, count int, occurredAt time.Time) error
}

// Archiver writes change-stream messages into an audit sink.
type Archiver struct {
	sink AuditSink
}

func NewArchiver(sink AuditSink) *Archiver {
	return &Archiver{sink: sink}
}

// HandleChangeMessage archives one message. Returning an error requeues it.
func (a *Archiver) HandleChangeMessage(ctx context.Context, msg *amqp.RecordChangeMessage) error {
	if msg.Username == "" || msg.Op == "" {
		return fmt.Errorf("malformed change message: username=%q op=%q", msg.Username, msg.Op)
	}

	occurredAt := msg.Timestamp
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	if err := a.sink.AppendChangeEvent(ctx, msg.Username, msg.Op, msg.RecordID, msg.Count, occurredAt); err != nil {
		return fmt.Errorf("archive change event: %w", err)
	}

	slog.InfoContext(ctx, "Archived change event",
		"username", msg.Username,
		"op", msg.Op,
		"record_id", msg.RecordID,
		"count", msg.Count)

	return nil
}

// Run consumes change messages until the context is cancelled.
func (a *Archiver) Run(ctx context.Context, client *amqp.Client) error {
	return client.ConsumeRecordChanges(ctx, func(msg *amqp.RecordChangeMessage) error {
		return a.HandleChangeMessage(ctx, msg)
	})
}
