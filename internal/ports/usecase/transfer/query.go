package port_transfer

import "context"

type QueryTransfersUseCase interface {
	Get(ctx context.Context, transferID string) (TransferOutput, error)
	ListAll(ctx context.Context) ([]TransferOutput, error)
	ListByAccount(ctx context.Context, accountID string) ([]TransferOutput, error)
}
