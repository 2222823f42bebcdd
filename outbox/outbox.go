// Package outbox implements the transactional outbox the delivery layer
// drains to notify users of state changes. Writers enqueue inside the
// caller's transaction so a message exists iff the state change committed.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Topics published by the core.
const (
	TopicRequestCreated = "request.created"
	TopicRequestDeleted = "request.deleted"
	TopicBidPlaced      = "bid.placed"
	TopicBidAccepted    = "bid.accepted"
)

// Writer appends messages to the outbox table.
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

// Enqueue inserts a message inside the active transaction.
func (w *Writer) Enqueue(ctx context.Context, tx pgx.Tx, topic string, payload map[string]any) error {
	if topic == "" {
		return fmt.Errorf("outbox: empty topic")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("outbox: marshal payload: %w", err)
	}

	const q = `INSERT INTO outbox (topic, payload) VALUES ($1, $2::jsonb)`
	if _, err := tx.Exec(ctx, q, topic, body); err != nil {
		return fmt.Errorf("outbox: enqueue %s: %w", topic, err)
	}
	return nil
}
