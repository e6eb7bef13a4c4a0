package port_persistence

import (
	"context"
	"errors"

	domain_transfer "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/domain/transfer"
)

var (
	ErrNotFound                = errors.New("persistence: not found")
	ErrDuplicateIdempotencyKey = errors.New("persistence: idempotency key already claimed")
	ErrNotPending              = errors.New("persistence: transfer is not pending")
)

type StoredTransfer struct {
	Transfer    *domain_transfer.Transfer
	RequestHash string
}

// TransferLedger is the durable, append-only record of transfer attempts.
// Every write drains the entity's pending domain events into the outbox in the
// same database transaction.
type TransferLedger interface {
	// CreatePending atomically claims the idempotency key, assigns the transfer
	// id and stores the PENDING record. It fails with ErrDuplicateIdempotencyKey
	// when another attempt already owns the key.
	CreatePending(ctx context.Context, t *domain_transfer.Transfer, requestHash string) error
	MarkCompleted(ctx context.Context, t *domain_transfer.Transfer) error
	MarkFailed(ctx context.Context, t *domain_transfer.Transfer) error
	MarkCompensated(ctx context.Context, t *domain_transfer.Transfer) error

	// GetByIdempotencyKey returns the latest attempt for the key.
	GetByIdempotencyKey(ctx context.Context, key string) (*StoredTransfer, error)
	GetByID(ctx context.Context, transferID string) (*StoredTransfer, error)
	FindByAccount(ctx context.Context, accountID string) ([]*domain_transfer.Transfer, error)
	FindAll(ctx context.Context) ([]*domain_transfer.Transfer, error)
}
