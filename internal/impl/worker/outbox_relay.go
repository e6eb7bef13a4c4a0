package impl_worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/messaging"
	port_persistence "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/persistence"

	"go.uber.org/zap"
)

type OutboxRelayConfig struct {
	Topic        string
	BatchSize    int
	PollInterval time.Duration
}

// OutboxRelay publishes ledger events in enqueue order. Delivery is
// at-least-once: a crash between publish and mark republishes the message.
type OutboxRelay struct {
	outbox    port_persistence.OutboxRepository
	publisher messaging.Publisher
	cfg       OutboxRelayConfig
	logger    *zap.Logger
}

func NewOutboxRelay(outbox port_persistence.OutboxRepository, publisher messaging.Publisher, cfg OutboxRelayConfig, logger *zap.Logger) *OutboxRelay {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxRelay{outbox: outbox, publisher: publisher, cfg: cfg, logger: logger}
}

// Run relays until ctx is cancelled. Batch errors are logged and retried on
// the next tick.
func (r *OutboxRelay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	r.logger.Info("outbox relay started",
		zap.String("topic", r.cfg.Topic),
		zap.Int("batch_size", r.cfg.BatchSize),
		zap.Duration("poll_interval", r.cfg.PollInterval),
	)

	for {
		for {
			n, err := r.RelayOnce(ctx)
			if err != nil {
				if ctx.Err() == nil {
					r.logger.Warn("outbox relay batch failed", zap.Error(err))
				}
				break
			}
			// A full batch usually means more are waiting.
			if n < r.cfg.BatchSize {
				break
			}
		}

		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RelayOnce publishes one batch and returns how many messages were marked
// published. It stops at the first publish failure to keep per-transfer order.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	msgs, err := r.outbox.DequeueBatch(ctx, r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("dequeue outbox: %w", err)
	}

	published := 0
	for _, msg := range msgs {
		headers := map[string]string{
			"message_id":     msg.MessageID,
			"event_type":     msg.EventType,
			"aggregate_type": msg.AggregateType,
			"aggregate_id":   msg.AggregateID,
		}

		if err := r.publisher.Publish(ctx, r.cfg.Topic, msg.AggregateID, msg.Payload, headers); err != nil {
			return published, fmt.Errorf("publish %s: %w", msg.MessageID, err)
		}

		if err := r.outbox.MarkPublished(ctx, msg.MessageID); err != nil && !errors.Is(err, port_persistence.ErrNotFound) {
			return published, fmt.Errorf("mark %s published: %w", msg.MessageID, err)
		}

		published++
	}

	if published > 0 {
		r.logger.Debug("outbox batch relayed", zap.Int("count", published))
	}

	return published, nil
}
