package impl_httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	impl_transfer "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/impl/usecase/transfer"

	"github.com/go-playground/validator/v10"
)

var statusByKind = map[impl_transfer.Kind]int{
	impl_transfer.KindInvalidRequest:         http.StatusBadRequest,
	impl_transfer.KindInvalidAmount:          http.StatusBadRequest,
	impl_transfer.KindSameAccount:            http.StatusBadRequest,
	impl_transfer.KindInsufficientFunds:      http.StatusUnprocessableEntity,
	impl_transfer.KindAccountNotFound:        http.StatusNotFound,
	impl_transfer.KindTransferNotFound:       http.StatusNotFound,
	impl_transfer.KindConflict:               http.StatusConflict,
	impl_transfer.KindRateUnavailable:        http.StatusServiceUnavailable,
	impl_transfer.KindUnavailable:            http.StatusServiceUnavailable,
	impl_transfer.KindReconciliationRequired: http.StatusInternalServerError,
}

func statusFor(kind impl_transfer.Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeUsecaseError renders any use case error, attaching the terminal record
// when the failure produced one.
func writeUsecaseError(w http.ResponseWriter, err error) {
	kind := impl_transfer.KindOf(err)

	body := errorResponse{Kind: string(kind), Message: err.Error()}
	if out, ok := impl_transfer.TransferOf(err); ok {
		resp := toResponse(out)
		body.Transfer = &resp
	}

	writeJSON(w, statusFor(kind), body)
}

func writeValidationError(w http.ResponseWriter, err error) {
	body := errorResponse{
		Kind:    string(impl_transfer.KindInvalidRequest),
		Message: "invalid request body",
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		body.Fields = make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			body.Fields[fe.Field()] = fe.Tag()
		}
	} else {
		body.Message = err.Error()
	}

	writeJSON(w, http.StatusBadRequest, body)
}
