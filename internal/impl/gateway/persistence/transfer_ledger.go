package impl_persistence

import (
	"context"
	"errors"
	"fmt"

	domain_transfer "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/domain/transfer"
	port_persistence "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/persistence"
	port_platform "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/platform"

	"gorm.io/gorm"
)

var errUnexpectedStatus = errors.New("persistence: transfer is not in the expected status")

type TransferLedger struct {
	db       *gorm.DB
	ids      port_platform.IDGenerator
	clock    port_platform.Clock
	producer string
}

func NewTransferLedger(db *gorm.DB, ids port_platform.IDGenerator, clock port_platform.Clock, producer string) *TransferLedger {
	return &TransferLedger{db: db, ids: ids, clock: clock, producer: producer}
}

var _ port_persistence.TransferLedger = (*TransferLedger)(nil)

func (l *TransferLedger) CreatePending(ctx context.Context, t *domain_transfer.Transfer, requestHash string) error {
	if t.Status() != domain_transfer.StatusPending {
		return errUnexpectedStatus
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var latest transferModel
		res := tx.Where("idempotency_key = ?", t.IdempotencyKey()).
			Order("attempt DESC").
			Limit(1).
			Find(&latest)
		if res.Error != nil {
			return fmt.Errorf("find latest attempt: %w", res.Error)
		}

		attempt := 1
		if res.RowsAffected > 0 {
			// Only a failure that moved no money frees the key for a new attempt.
			if latest.Status != string(domain_transfer.StatusFailed) || latest.NeedsReconciliation {
				return port_persistence.ErrDuplicateIdempotencyKey
			}
			attempt = latest.Attempt + 1
		}

		if err := t.AssignID(l.ids.NewUUID(), attempt); err != nil {
			return err
		}

		row := toModel(t, requestHash)
		if err := tx.Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return port_persistence.ErrDuplicateIdempotencyKey
			}
			return fmt.Errorf("insert transfer: %w", err)
		}

		return l.appendEvents(tx, t)
	})
	if err != nil {
		return err
	}

	t.PullEvents()
	return nil
}

func (l *TransferLedger) MarkCompleted(ctx context.Context, t *domain_transfer.Transfer) error {
	return l.transition(ctx, t, domain_transfer.StatusCompleted)
}

func (l *TransferLedger) MarkFailed(ctx context.Context, t *domain_transfer.Transfer) error {
	return l.transition(ctx, t, domain_transfer.StatusFailed)
}

func (l *TransferLedger) MarkCompensated(ctx context.Context, t *domain_transfer.Transfer) error {
	return l.transition(ctx, t, domain_transfer.StatusCompensated)
}

// transition moves a PENDING row to the entity's terminal state. The update is
// conditional on the stored status so a terminal row is never rewritten.
func (l *TransferLedger) transition(ctx context.Context, t *domain_transfer.Transfer, want domain_transfer.Status) error {
	if t.Status() != want {
		return errUnexpectedStatus
	}

	id := t.ID().String()

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&transferModel{}).
			Where("id = ? AND status = ?", id, string(domain_transfer.StatusPending)).
			Updates(map[string]any{
				"status":               string(t.Status()),
				"converted_amount":     t.ConvertedAmount(),
				"source_currency":      t.SourceCurrency(),
				"destination_currency": t.DestinationCurrency(),
				"rate":                 t.Rate(),
				"failure_code":         t.FailureCode(),
				"failure_reason":       t.FailureReason(),
				"needs_reconciliation": t.NeedsReconciliation(),
				"updated_at":           t.UpdatedAt(),
				"completed_at":         timePtr(t.CompletedAt()),
			})
		if res.Error != nil {
			return fmt.Errorf("update transfer %s: %w", id, res.Error)
		}

		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&transferModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return fmt.Errorf("count transfer %s: %w", id, err)
			}
			if count == 0 {
				return port_persistence.ErrNotFound
			}
			return port_persistence.ErrNotPending
		}

		return l.appendEvents(tx, t)
	})
	if err != nil {
		return err
	}

	t.PullEvents()
	return nil
}

func (l *TransferLedger) appendEvents(tx *gorm.DB, t *domain_transfer.Transfer) error {
	events := t.Events()
	if len(events) == 0 {
		return nil
	}

	rows := make([]outboxModel, 0, len(events))
	for _, ev := range events {
		messageID := l.ids.NewUUID().String()

		payload, err := encodeEvent(messageID, l.producer, ev)
		if err != nil {
			return fmt.Errorf("encode %s: %w", ev.EventName(), err)
		}

		rows = append(rows, outboxModel{
			MessageID:     messageID,
			EventType:     ev.EventName(),
			AggregateType: aggregateType,
			AggregateID:   ev.AggregateID().String(),
			Payload:       payload,
			CreatedAt:     l.clock.Now(),
		})
	}

	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("enqueue outbox messages: %w", err)
	}

	return nil
}

func (l *TransferLedger) GetByIdempotencyKey(ctx context.Context, key string) (*port_persistence.StoredTransfer, error) {
	var row transferModel
	res := l.db.WithContext(ctx).
		Where("idempotency_key = ?", key).
		Order("attempt DESC").
		Limit(1).
		Find(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("find transfer by idempotency key: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, port_persistence.ErrNotFound
	}

	return toStored(row)
}

func (l *TransferLedger) GetByID(ctx context.Context, transferID string) (*port_persistence.StoredTransfer, error) {
	var row transferModel
	res := l.db.WithContext(ctx).Where("id = ?", transferID).Limit(1).Find(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("find transfer %s: %w", transferID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, port_persistence.ErrNotFound
	}

	return toStored(row)
}

func (l *TransferLedger) FindByAccount(ctx context.Context, accountID string) ([]*domain_transfer.Transfer, error) {
	var rows []transferModel
	err := l.db.WithContext(ctx).
		Where("source_account_id = ? OR destination_account_id = ?", accountID, accountID).
		Order("created_at DESC").
		Order("attempt DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find transfers for account %s: %w", accountID, err)
	}

	return toDomainList(rows)
}

func (l *TransferLedger) FindAll(ctx context.Context) ([]*domain_transfer.Transfer, error) {
	var rows []transferModel
	err := l.db.WithContext(ctx).
		Order("created_at DESC").
		Order("attempt DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find transfers: %w", err)
	}

	return toDomainList(rows)
}

func toStored(row transferModel) (*port_persistence.StoredTransfer, error) {
	t, err := row.toDomain()
	if err != nil {
		return nil, fmt.Errorf("restore transfer %s: %w", row.ID, err)
	}
	return &port_persistence.StoredTransfer{Transfer: t, RequestHash: row.RequestHash}, nil
}

func toDomainList(rows []transferModel) ([]*domain_transfer.Transfer, error) {
	out := make([]*domain_transfer.Transfer, 0, len(rows))
	for _, row := range rows {
		t, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("restore transfer %s: %w", row.ID, err)
		}
		out = append(out, t)
	}
	return out, nil
}
