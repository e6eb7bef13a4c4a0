// Package mocks provides mock implementations of the use case ports.
package mocks

//go:generate mockgen -destination=mock_transfer.go -package=mocks github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/usecase/transfer ExecuteTransferUseCase,QueryTransfersUseCase
