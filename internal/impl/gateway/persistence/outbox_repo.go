package impl_persistence

import (
	"context"
	"fmt"

	port_persistence "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/persistence"
	port_platform "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/platform"

	"gorm.io/gorm"
)

// OutboxRepository reads the messages appended by TransferLedger. It assumes a
// single relay per database; concurrent relays may publish a message twice.
type OutboxRepository struct {
	db    *gorm.DB
	clock port_platform.Clock
}

func NewOutboxRepository(db *gorm.DB, clock port_platform.Clock) *OutboxRepository {
	return &OutboxRepository{db: db, clock: clock}
}

var _ port_persistence.OutboxRepository = (*OutboxRepository)(nil)

func (r *OutboxRepository) DequeueBatch(ctx context.Context, limit int) ([]port_persistence.OutboxMessage, error) {
	if limit <= 0 {
		return nil, nil
	}

	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("seq ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("dequeue outbox batch: %w", err)
	}

	out := make([]port_persistence.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, port_persistence.OutboxMessage{
			MessageID:     row.MessageID,
			EventType:     row.EventType,
			AggregateType: row.AggregateType,
			AggregateID:   row.AggregateID,
			Payload:       row.Payload,
		})
	}

	return out, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, messageID string) error {
	res := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("message_id = ? AND published_at IS NULL", messageID).
		Update("published_at", r.clock.Now())
	if res.Error != nil {
		return fmt.Errorf("mark outbox message %s published: %w", messageID, res.Error)
	}
	if res.RowsAffected == 0 {
		return port_persistence.ErrNotFound
	}
	return nil
}
