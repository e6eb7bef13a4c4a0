package impl_transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain_transfer "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/domain/transfer"
	port_persistence "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/persistence"
	port_transfer "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/usecase/transfer"
)

// QueryTransfersUsecaseImpl exposes the ledger for operational inspection.
// Unlike Execute it returns PENDING records as they are.
type QueryTransfersUsecaseImpl struct {
	ledger port_persistence.TransferLedger
}

func NewQueryTransfersUsecaseImpl(ledger port_persistence.TransferLedger) *QueryTransfersUsecaseImpl {
	return &QueryTransfersUsecaseImpl{ledger: ledger}
}

func (u *QueryTransfersUsecaseImpl) Get(ctx context.Context, transferID string) (port_transfer.TransferOutput, error) {
	id := strings.TrimSpace(transferID)
	if id == "" {
		return port_transfer.TransferOutput{}, ErrInvalidInput
	}

	stored, err := u.ledger.GetByID(ctx, id)
	if errors.Is(err, port_persistence.ErrNotFound) {
		return port_transfer.TransferOutput{}, ErrTransferNotFound
	}
	if err != nil {
		return port_transfer.TransferOutput{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return toOutput(stored.Transfer), nil
}

func (u *QueryTransfersUsecaseImpl) ListAll(ctx context.Context) ([]port_transfer.TransferOutput, error) {
	transfers, err := u.ledger.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return toOutputs(transfers), nil
}

func (u *QueryTransfersUsecaseImpl) ListByAccount(ctx context.Context, accountID string) ([]port_transfer.TransferOutput, error) {
	id := strings.TrimSpace(accountID)
	if id == "" {
		return nil, ErrInvalidInput
	}

	transfers, err := u.ledger.FindByAccount(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return toOutputs(transfers), nil
}

func toOutputs(transfers []*domain_transfer.Transfer) []port_transfer.TransferOutput {
	out := make([]port_transfer.TransferOutput, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, toOutput(t))
	}
	return out
}
