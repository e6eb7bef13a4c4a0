package port_persistence

import "context"

type OutboxMessage struct {
	MessageID     string
	EventType     string
	AggregateType string
	AggregateID   string
	Payload       []byte
}

// OutboxRepository exposes the events appended by the ledger to the relay.
// Enqueueing happens inside the ledger writes.
type OutboxRepository interface {
	DequeueBatch(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkPublished(ctx context.Context, messageID string) error
}
