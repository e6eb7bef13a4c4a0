package impl_httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	port_transfer "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/usecase/transfer"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	idempotencyHeader = "Idempotency-Key"
	maxBodyBytes      = 1 << 16
)

var errIdempotencyKeyMismatch = errors.New("idempotency_key differs from the Idempotency-Key header")

type TransferHandler struct {
	execute  port_transfer.ExecuteTransferUseCase
	query    port_transfer.QueryTransfersUseCase
	validate *validator.Validate
	logger   *zap.Logger
}

func NewTransferHandler(execute port_transfer.ExecuteTransferUseCase, query port_transfer.QueryTransfersUseCase, logger *zap.Logger) *TransferHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferHandler{
		execute:  execute,
		query:    query,
		validate: newValidator(),
		logger:   logger,
	}
}

func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTransferRequest

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	headerKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
	switch {
	case key == "":
		key = headerKey
	case headerKey != "" && headerKey != key:
		writeValidationError(w, errIdempotencyKeyMismatch)
		return
	}

	out, err := h.execute.Execute(r.Context(), port_transfer.ExecuteTransferInput{
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		Amount:               *req.Amount,
		IdempotencyKey:       key,
	})
	if err != nil {
		h.logger.Debug("transfer request failed", zap.String("idempotency_key", key), zap.Error(err))
		writeUsecaseError(w, err)
		return
	}

	w.Header().Set(idempotencyHeader, out.IdempotencyKey)
	writeJSON(w, http.StatusCreated, toResponse(out))
}

func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	out, err := h.query.Get(r.Context(), chi.URLParam(r, "transferId"))
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(out))
}

func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	outs, err := h.query.ListAll(r.Context())
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(outs))
}

func (h *TransferHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	outs, err := h.query.ListByAccount(r.Context(), chi.URLParam(r, "accountId"))
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(outs))
}
