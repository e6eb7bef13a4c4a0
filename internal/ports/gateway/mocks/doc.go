// Package mocks provides mock implementations for testing purposes.
package mocks

//go:generate mockgen -destination=mock_accounts.go -package=mocks -mock_names=Client=MockAccountClient github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/accounts Client
//go:generate mockgen -destination=mock_rates.go -package=mocks -mock_names=Client=MockRateClient github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/rates Client
//go:generate mockgen -destination=mock_persistence.go -package=mocks github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/persistence TransferLedger,OutboxRepository
//go:generate mockgen -destination=mock_messaging.go -package=mocks github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/messaging Publisher
//go:generate mockgen -destination=mock_platform.go -package=mocks github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/platform Clock,IDGenerator,TransferMetrics
