package impl_httpapi

import (
	"reflect"
	"strings"
	"time"

	port_transfer "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/usecase/transfer"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type createTransferRequest struct {
	SourceAccountID      string           `json:"source_account_id" validate:"required,max=64"`
	DestinationAccountID string           `json:"destination_account_id" validate:"required,max=64"`
	Amount               *decimal.Decimal `json:"amount" validate:"required"`
	IdempotencyKey       string           `json:"idempotency_key" validate:"omitempty,max=255"`
}

type transferResponse struct {
	TransferID           string          `json:"transfer_id"`
	Status               string          `json:"status"`
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	RequestedAmount      decimal.Decimal `json:"requested_amount"`
	ConvertedAmount      decimal.Decimal `json:"converted_amount"`
	SourceCurrency       string          `json:"source_currency,omitempty"`
	DestinationCurrency  string          `json:"destination_currency,omitempty"`
	Rate                 decimal.Decimal `json:"rate"`
	IdempotencyKey       string          `json:"idempotency_key"`
	Attempt              int             `json:"attempt"`
	FailureCode          string          `json:"failure_code,omitempty"`
	FailureReason        string          `json:"failure_reason,omitempty"`
	NeedsReconciliation  bool            `json:"needs_reconciliation"`
	CreatedAt            time.Time       `json:"created_at"`
	CompletedAt          *time.Time      `json:"completed_at,omitempty"`
}

type errorResponse struct {
	Kind     string            `json:"kind"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
	Transfer *transferResponse `json:"transfer,omitempty"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func toResponse(out port_transfer.TransferOutput) transferResponse {
	resp := transferResponse{
		TransferID:           out.TransferID,
		Status:               out.Status,
		SourceAccountID:      out.SourceAccountID,
		DestinationAccountID: out.DestinationAccountID,
		RequestedAmount:      out.RequestedAmount,
		ConvertedAmount:      out.ConvertedAmount,
		SourceCurrency:       out.SourceCurrency,
		DestinationCurrency:  out.DestinationCurrency,
		Rate:                 out.Rate,
		IdempotencyKey:       out.IdempotencyKey,
		Attempt:              out.Attempt,
		FailureCode:          out.FailureCode,
		FailureReason:        out.FailureReason,
		NeedsReconciliation:  out.NeedsReconciliation,
		CreatedAt:            out.CreatedAt,
	}
	if !out.CompletedAt.IsZero() {
		completedAt := out.CompletedAt
		resp.CompletedAt = &completedAt
	}
	return resp
}

func toResponses(outs []port_transfer.TransferOutput) []transferResponse {
	resp := make([]transferResponse, 0, len(outs))
	for _, out := range outs {
		resp = append(resp, toResponse(out))
	}
	return resp
}
