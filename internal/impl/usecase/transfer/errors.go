package impl_transfer

import (
	"errors"
	"fmt"

	port_transfer "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/usecase/transfer"
)

type Kind string

const (
	KindInvalidRequest         Kind = "InvalidRequest"
	KindInvalidAmount          Kind = "InvalidAmount"
	KindSameAccount            Kind = "SameAccount"
	KindInsufficientFunds      Kind = "InsufficientFunds"
	KindAccountNotFound        Kind = "AccountNotFound"
	KindRateUnavailable        Kind = "RateUnavailable"
	KindUnavailable            Kind = "Unavailable"
	KindConflict               Kind = "Conflict"
	KindReconciliationRequired Kind = "ReconciliationRequired"
	KindTransferNotFound       Kind = "TransferNotFound"
)

var (
	ErrInvalidInput           = errors.New("invalid input data")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrSameAccount            = errors.New("source and destination accounts must differ")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrAccountNotFound        = errors.New("account not found")
	ErrRateUnavailable        = errors.New("exchange rate unavailable")
	ErrUnavailable            = errors.New("dependency unavailable")
	ErrConflict               = errors.New("concurrent modification")
	ErrIdempotencyConflict    = errors.New("idempotency key conflict: different payload for same key")
	ErrReconciliationRequired = errors.New("transfer requires manual reconciliation")
	ErrTransferNotFound       = errors.New("transfer not found")
)

var kindErrors = map[Kind]error{
	KindInvalidRequest:         ErrInvalidInput,
	KindInvalidAmount:          ErrInvalidAmount,
	KindSameAccount:            ErrSameAccount,
	KindInsufficientFunds:      ErrInsufficientFunds,
	KindAccountNotFound:        ErrAccountNotFound,
	KindRateUnavailable:        ErrRateUnavailable,
	KindUnavailable:            ErrUnavailable,
	KindConflict:               ErrConflict,
	KindReconciliationRequired: ErrReconciliationRequired,
	KindTransferNotFound:       ErrTransferNotFound,
}

// FailureError is returned once a transfer record exists. Transfer holds the
// terminal record when there is one.
type FailureError struct {
	Kind     error
	Transfer *port_transfer.TransferOutput
	Cause    error
}

func (e *FailureError) Error() string {
	if e.Cause == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *FailureError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// KindOf classifies any error returned by the transfer use cases.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrReconciliationRequired):
		return KindReconciliationRequired
	case errors.Is(err, ErrIdempotencyConflict), errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInvalidAmount):
		return KindInvalidAmount
	case errors.Is(err, ErrSameAccount):
		return KindSameAccount
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidRequest
	case errors.Is(err, ErrInsufficientFunds):
		return KindInsufficientFunds
	case errors.Is(err, ErrAccountNotFound):
		return KindAccountNotFound
	case errors.Is(err, ErrRateUnavailable):
		return KindRateUnavailable
	case errors.Is(err, ErrTransferNotFound):
		return KindTransferNotFound
	default:
		return KindUnavailable
	}
}

// TransferOf returns the record attached to a failure, if any.
func TransferOf(err error) (port_transfer.TransferOutput, bool) {
	var fe *FailureError
	if errors.As(err, &fe) && fe.Transfer != nil {
		return *fe.Transfer, true
	}
	return port_transfer.TransferOutput{}, false
}

func kindError(code string) error {
	if err, ok := kindErrors[Kind(code)]; ok {
		return err
	}
	return ErrUnavailable
}
