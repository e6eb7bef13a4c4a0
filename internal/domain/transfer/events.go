package domain_transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
}

type TransferRequested struct {
	At         time.Time
	TransferID uuid.UUID

	SourceAccountID      string
	DestinationAccountID string
	RequestedAmount      decimal.Decimal
	IdempotencyKey       string
}

func (e TransferRequested) EventName() string { return "transfer.requested" }

func (e TransferRequested) OccurredAt() time.Time { return e.At }

func (e TransferRequested) AggregateID() uuid.UUID { return e.TransferID }

type TransferCompleted struct {
	At         time.Time
	TransferID uuid.UUID

	SourceAccountID      string
	DestinationAccountID string
	RequestedAmount      decimal.Decimal
	ConvertedAmount      decimal.Decimal
	SourceCurrency       string
	DestinationCurrency  string
	Rate                 decimal.Decimal
}

func (e TransferCompleted) EventName() string { return "transfer.completed" }

func (e TransferCompleted) OccurredAt() time.Time { return e.At }

func (e TransferCompleted) AggregateID() uuid.UUID { return e.TransferID }

type TransferFailed struct {
	At         time.Time
	TransferID uuid.UUID

	Code                string
	Reason              string
	NeedsReconciliation bool
}

func (e TransferFailed) EventName() string { return "transfer.failed" }

func (e TransferFailed) OccurredAt() time.Time { return e.At }

func (e TransferFailed) AggregateID() uuid.UUID { return e.TransferID }

type TransferCompensated struct {
	At         time.Time
	TransferID uuid.UUID

	SourceAccountID string
	RefundedAmount  decimal.Decimal
	Code            string
	Reason          string
}

func (e TransferCompensated) EventName() string { return "transfer.compensated" }

func (e TransferCompensated) OccurredAt() time.Time { return e.At }

func (e TransferCompensated) AggregateID() uuid.UUID { return e.TransferID }
