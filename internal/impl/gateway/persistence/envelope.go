package impl_persistence

import (
	"encoding/json"
	"fmt"
	"time"

	domain_transfer "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/domain/transfer"
	"github.com/shopspring/decimal"
)

const (
	schemaVersion = 1
	aggregateType = "transfer"
)

type envelope struct {
	Meta envelopeMeta `json:"meta"`
	Data any          `json:"data"`
}

type envelopeMeta struct {
	SchemaVersion int       `json:"schema_version"`
	MessageID     string    `json:"message_id"`
	EventType     string    `json:"event_type"`
	Producer      string    `json:"producer"`
	AggregateID   string    `json:"aggregate_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type requestedData struct {
	TransferID           string          `json:"transfer_id"`
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	RequestedAmount      decimal.Decimal `json:"requested_amount"`
	IdempotencyKey       string          `json:"idempotency_key"`
}

type completedData struct {
	TransferID           string          `json:"transfer_id"`
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	RequestedAmount      decimal.Decimal `json:"requested_amount"`
	ConvertedAmount      decimal.Decimal `json:"converted_amount"`
	SourceCurrency       string          `json:"source_currency"`
	DestinationCurrency  string          `json:"destination_currency"`
	Rate                 decimal.Decimal `json:"rate"`
}

type failedData struct {
	TransferID          string `json:"transfer_id"`
	Code                string `json:"code"`
	Reason              string `json:"reason"`
	NeedsReconciliation bool   `json:"needs_reconciliation"`
}

type compensatedData struct {
	TransferID      string          `json:"transfer_id"`
	SourceAccountID string          `json:"source_account_id"`
	RefundedAmount  decimal.Decimal `json:"refunded_amount"`
	Code            string          `json:"code"`
	Reason          string          `json:"reason"`
}

func eventData(ev domain_transfer.DomainEvent) (any, error) {
	switch e := ev.(type) {
	case domain_transfer.TransferRequested:
		return requestedData{
			TransferID:           e.TransferID.String(),
			SourceAccountID:      e.SourceAccountID,
			DestinationAccountID: e.DestinationAccountID,
			RequestedAmount:      e.RequestedAmount,
			IdempotencyKey:       e.IdempotencyKey,
		}, nil
	case domain_transfer.TransferCompleted:
		return completedData{
			TransferID:           e.TransferID.String(),
			SourceAccountID:      e.SourceAccountID,
			DestinationAccountID: e.DestinationAccountID,
			RequestedAmount:      e.RequestedAmount,
			ConvertedAmount:      e.ConvertedAmount,
			SourceCurrency:       e.SourceCurrency,
			DestinationCurrency:  e.DestinationCurrency,
			Rate:                 e.Rate,
		}, nil
	case domain_transfer.TransferFailed:
		return failedData{
			TransferID:          e.TransferID.String(),
			Code:                e.Code,
			Reason:              e.Reason,
			NeedsReconciliation: e.NeedsReconciliation,
		}, nil
	case domain_transfer.TransferCompensated:
		return compensatedData{
			TransferID:      e.TransferID.String(),
			SourceAccountID: e.SourceAccountID,
			RefundedAmount:  e.RefundedAmount,
			Code:            e.Code,
			Reason:          e.Reason,
		}, nil
	default:
		return nil, fmt.Errorf("persistence: unknown event %T", ev)
	}
}

func encodeEvent(messageID, producer string, ev domain_transfer.DomainEvent) ([]byte, error) {
	data, err := eventData(ev)
	if err != nil {
		return nil, err
	}

	return json.Marshal(envelope{
		Meta: envelopeMeta{
			SchemaVersion: schemaVersion,
			MessageID:     messageID,
			EventType:     ev.EventName(),
			Producer:      producer,
			AggregateID:   ev.AggregateID().String(),
			OccurredAt:    ev.OccurredAt().UTC(),
		},
		Data: data,
	})
}
