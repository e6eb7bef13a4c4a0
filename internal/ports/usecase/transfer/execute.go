package port_transfer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ExecuteTransferInput struct {
	SourceAccountID      string
	DestinationAccountID string
	Amount               decimal.Decimal
	// IdempotencyKey is optional; one is generated when empty.
	IdempotencyKey string
}

type TransferOutput struct {
	TransferID           string
	Status               string
	SourceAccountID      string
	DestinationAccountID string
	RequestedAmount      decimal.Decimal
	ConvertedAmount      decimal.Decimal
	SourceCurrency       string
	DestinationCurrency  string
	Rate                 decimal.Decimal
	IdempotencyKey       string
	Attempt              int
	FailureCode          string
	FailureReason        string
	NeedsReconciliation  bool
	CreatedAt            time.Time
	CompletedAt          time.Time
}

type ExecuteTransferUseCase interface {
	Execute(ctx context.Context, input ExecuteTransferInput) (TransferOutput, error)
}
