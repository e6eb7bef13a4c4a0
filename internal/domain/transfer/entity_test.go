package domain_transfer_test

import (
	"errors"
	"testing"
	"time"

	domain_transfer "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/domain/transfer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newPending(t *testing.T, now time.Time) *domain_transfer.Transfer {
	t.Helper()

	transfer, err := domain_transfer.New(domain_transfer.NewParams{
		SourceAccountID:      "1",
		DestinationAccountID: "2",
		Amount:               decimal.NewFromInt(20),
		IdempotencyKey:       "idempotency_key",
		Now:                  now,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := transfer.AssignID(uuid.New(), 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	transfer.PullEvents()

	return transfer
}

func TestNew(t *testing.T) {
	now := time.Now().UTC()

	t.Run("creates pending transfer with valid parameters", func(t *testing.T) {
		transfer, err := domain_transfer.New(domain_transfer.NewParams{
			SourceAccountID:      " 1 ",
			DestinationAccountID: "2",
			Amount:               decimal.NewFromInt(20),
			IdempotencyKey:       "idempotency_key",
			Now:                  now,
		})

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if transfer.ID() != uuid.Nil {
			t.Errorf("expected no id before the ledger assigns one, got %v", transfer.ID())
		}

		if transfer.SourceAccountID() != "1" {
			t.Errorf("expected source account id 1, got %s", transfer.SourceAccountID())
		}

		if transfer.DestinationAccountID() != "2" {
			t.Errorf("expected destination account id 2, got %s", transfer.DestinationAccountID())
		}

		if !transfer.RequestedAmount().Equal(decimal.NewFromInt(20)) {
			t.Errorf("expected amount 20, got %s", transfer.RequestedAmount())
		}

		if transfer.Status() != domain_transfer.StatusPending {
			t.Errorf("expected status pending, got %v", transfer.Status())
		}

		if transfer.Attempt() != 1 {
			t.Errorf("expected attempt 1, got %d", transfer.Attempt())
		}

		if !transfer.CreatedAt().Equal(now) {
			t.Errorf("expected created at %v, got %v", now, transfer.CreatedAt())
		}

		if len(transfer.PullEvents()) != 0 {
			t.Error("expected no events before an id is assigned")
		}
	})

	t.Run("uses current time when Now is zero", func(t *testing.T) {
		transfer, err := domain_transfer.New(domain_transfer.NewParams{
			SourceAccountID:      "1",
			DestinationAccountID: "2",
			Amount:               decimal.NewFromInt(20),
			IdempotencyKey:       "idempotency_key",
		})

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if transfer.CreatedAt().IsZero() {
			t.Error("expected created at to be set, got zero time")
		}
	})

	errorTests := []struct {
		name      string
		params    domain_transfer.NewParams
		wantError error
	}{
		{
			name: "returns error when source account id is empty",
			params: domain_transfer.NewParams{
				SourceAccountID:      "  ",
				DestinationAccountID: "2",
				Amount:               decimal.NewFromInt(20),
				IdempotencyKey:       "idempotency_key",
			},
			wantError: domain_transfer.ErrInvalidAccountID,
		},
		{
			name: "returns error when source equals destination",
			params: domain_transfer.NewParams{
				SourceAccountID:      "1",
				DestinationAccountID: "1",
				Amount:               decimal.NewFromInt(20),
				IdempotencyKey:       "idempotency_key",
			},
			wantError: domain_transfer.ErrSameAccount,
		},
		{
			name: "returns error when amount is zero",
			params: domain_transfer.NewParams{
				SourceAccountID:      "1",
				DestinationAccountID: "2",
				Amount:               decimal.Zero,
				IdempotencyKey:       "idempotency_key",
			},
			wantError: domain_transfer.ErrInvalidAmount,
		},
		{
			name: "returns error when amount is negative",
			params: domain_transfer.NewParams{
				SourceAccountID:      "1",
				DestinationAccountID: "2",
				Amount:               decimal.NewFromInt(-5),
				IdempotencyKey:       "idempotency_key",
			},
			wantError: domain_transfer.ErrInvalidAmount,
		},
		{
			name: "returns error when idempotency key is empty",
			params: domain_transfer.NewParams{
				SourceAccountID:      "1",
				DestinationAccountID: "2",
				Amount:               decimal.NewFromInt(20),
			},
			wantError: domain_transfer.ErrMissingIdempotencyKey,
		},
	}

	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain_transfer.New(tt.params)

			if !errors.Is(err, tt.wantError) {
				t.Errorf("expected error %v, got %v", tt.wantError, err)
			}
		})
	}
}

func TestTransfer_AssignID(t *testing.T) {
	now := time.Now().UTC()
	id := uuid.New()

	transfer, _ := domain_transfer.New(domain_transfer.NewParams{
		SourceAccountID:      "1",
		DestinationAccountID: "2",
		Amount:               decimal.NewFromInt(20),
		IdempotencyKey:       "idempotency_key",
		Now:                  now,
	})

	if err := transfer.AssignID(uuid.Nil, 1); !errors.Is(err, domain_transfer.ErrInvalidTransferID) {
		t.Fatalf("expected ErrInvalidTransferID, got %v", err)
	}

	if err := transfer.AssignID(id, 2); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if transfer.ID() != id || transfer.Attempt() != 2 {
		t.Errorf("expected id %v attempt 2, got %v attempt %d", id, transfer.ID(), transfer.Attempt())
	}

	events := transfer.PullEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	event, ok := events[0].(domain_transfer.TransferRequested)
	if !ok {
		t.Fatalf("expected TransferRequested event, got %T", events[0])
	}

	if event.TransferID != id || event.IdempotencyKey != "idempotency_key" {
		t.Errorf("unexpected event data %+v", event)
	}

	if !event.At.Equal(now) {
		t.Errorf("expected event occurred at %v, got %v", now, event.At)
	}

	if err := transfer.AssignID(uuid.New(), 1); !errors.Is(err, domain_transfer.ErrTransferIDAssigned) {
		t.Errorf("expected ErrTransferIDAssigned, got %v", err)
	}
}

func TestTransfer_Complete(t *testing.T) {
	now := time.Now().UTC()
	laterTime := now.Add(time.Minute)

	t.Run("completes quoted transfer", func(t *testing.T) {
		transfer := newPending(t, now)

		if err := transfer.Quote("usd", "eur", decimal.RequireFromString("0.9"), decimal.NewFromInt(18)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if err := transfer.Complete(laterTime); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if transfer.Status() != domain_transfer.StatusCompleted {
			t.Errorf("expected status completed, got %v", transfer.Status())
		}

		if transfer.SourceCurrency() != "USD" || transfer.DestinationCurrency() != "EUR" {
			t.Errorf("expected normalized currencies, got %s -> %s", transfer.SourceCurrency(), transfer.DestinationCurrency())
		}

		if !transfer.CompletedAt().Equal(laterTime) {
			t.Errorf("expected completed at %v, got %v", laterTime, transfer.CompletedAt())
		}

		events := transfer.PullEvents()
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}

		event, ok := events[0].(domain_transfer.TransferCompleted)
		if !ok {
			t.Fatalf("expected TransferCompleted event, got %T", events[0])
		}

		if !event.ConvertedAmount.Equal(decimal.NewFromInt(18)) {
			t.Errorf("expected converted amount 18, got %s", event.ConvertedAmount)
		}
	})

	t.Run("returns error when conversion was not quoted", func(t *testing.T) {
		transfer := newPending(t, now)

		err := transfer.Complete(laterTime)

		if !errors.Is(err, domain_transfer.ErrNotQuoted) {
			t.Errorf("expected error %v, got %v", domain_transfer.ErrNotQuoted, err)
		}

		if transfer.Status() != domain_transfer.StatusPending {
			t.Errorf("expected status to remain pending, got %v", transfer.Status())
		}
	})

	t.Run("returns error when transfer already failed", func(t *testing.T) {
		transfer := newPending(t, now)
		transfer.Fail("InsufficientFunds", "insufficient funds", laterTime)

		err := transfer.Complete(laterTime)

		if !errors.Is(err, domain_transfer.ErrAlreadyFinalized) {
			t.Errorf("expected error %v, got %v", domain_transfer.ErrAlreadyFinalized, err)
		}
	})
}

func TestTransfer_Quote(t *testing.T) {
	now := time.Now().UTC()

	quoteTests := []struct {
		name      string
		src       string
		dst       string
		rate      decimal.Decimal
		converted decimal.Decimal
		wantError error
	}{
		{name: "rejects bad source currency", src: "US", dst: "EUR", rate: decimal.NewFromInt(1), converted: decimal.NewFromInt(1), wantError: domain_transfer.ErrInvalidCurrency},
		{name: "rejects bad destination currency", src: "USD", dst: "", rate: decimal.NewFromInt(1), converted: decimal.NewFromInt(1), wantError: domain_transfer.ErrInvalidCurrency},
		{name: "rejects zero rate", src: "USD", dst: "EUR", rate: decimal.Zero, converted: decimal.NewFromInt(1), wantError: domain_transfer.ErrInvalidRate},
		{name: "rejects zero converted amount", src: "USD", dst: "EUR", rate: decimal.NewFromInt(1), converted: decimal.Zero, wantError: domain_transfer.ErrInvalidAmount},
	}

	for _, tt := range quoteTests {
		t.Run(tt.name, func(t *testing.T) {
			transfer := newPending(t, now)

			err := transfer.Quote(tt.src, tt.dst, tt.rate, tt.converted)

			if !errors.Is(err, tt.wantError) {
				t.Errorf("expected error %v, got %v", tt.wantError, err)
			}
		})
	}
}

func TestTransfer_Fail(t *testing.T) {
	now := time.Now().UTC()
	laterTime := now.Add(time.Minute)

	t.Run("fails transfer with trimmed reason", func(t *testing.T) {
		transfer := newPending(t, now)

		if err := transfer.Fail("RateUnavailable", "  rate lookup failed  ", laterTime); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if transfer.Status() != domain_transfer.StatusFailed {
			t.Errorf("expected status failed, got %v", transfer.Status())
		}

		if transfer.FailureReason() != "rate lookup failed" {
			t.Errorf("expected trimmed failure reason, got %q", transfer.FailureReason())
		}

		if transfer.FailureCode() != "RateUnavailable" {
			t.Errorf("expected failure code RateUnavailable, got %s", transfer.FailureCode())
		}

		if transfer.NeedsReconciliation() {
			t.Error("expected plain failure not to need reconciliation")
		}

		events := transfer.PullEvents()
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}

		if _, ok := events[0].(domain_transfer.TransferFailed); !ok {
			t.Fatalf("expected TransferFailed event, got %T", events[0])
		}
	})

	t.Run("flags reconciliation", func(t *testing.T) {
		transfer := newPending(t, now)

		if err := transfer.FailForReconciliation("Unavailable", "compensation failed, manual reconciliation required", laterTime); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !transfer.NeedsReconciliation() {
			t.Error("expected transfer to need reconciliation")
		}

		event := transfer.PullEvents()[0].(domain_transfer.TransferFailed)
		if !event.NeedsReconciliation {
			t.Error("expected event to carry the reconciliation flag")
		}
	})

	t.Run("returns error when failure reason is only whitespace", func(t *testing.T) {
		transfer := newPending(t, now)

		err := transfer.Fail("Unavailable", "   ", laterTime)

		if !errors.Is(err, domain_transfer.ErrMissingFailureReason) {
			t.Errorf("expected error %v, got %v", domain_transfer.ErrMissingFailureReason, err)
		}

		if transfer.Status() != domain_transfer.StatusPending {
			t.Errorf("expected status to remain pending, got %v", transfer.Status())
		}
	})

	t.Run("returns error when transfer is already failed", func(t *testing.T) {
		transfer := newPending(t, now)
		transfer.Fail("Unavailable", "first failure", laterTime)

		err := transfer.Fail("Unavailable", "second failure", laterTime)

		if !errors.Is(err, domain_transfer.ErrAlreadyFinalized) {
			t.Errorf("expected error %v, got %v", domain_transfer.ErrAlreadyFinalized, err)
		}

		if transfer.FailureReason() != "first failure" {
			t.Errorf("expected failure reason to remain 'first failure', got %s", transfer.FailureReason())
		}
	})
}

func TestTransfer_Compensate(t *testing.T) {
	now := time.Now().UTC()
	laterTime := now.Add(time.Minute)

	transfer := newPending(t, now)

	if err := transfer.Compensate("Conflict", "credit rejected", laterTime); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if transfer.Status() != domain_transfer.StatusCompensated {
		t.Errorf("expected status compensated, got %v", transfer.Status())
	}

	if !transfer.Status().IsFinal() {
		t.Error("expected compensated to be final")
	}

	event, ok := transfer.PullEvents()[0].(domain_transfer.TransferCompensated)
	if !ok {
		t.Fatal("expected TransferCompensated event")
	}

	if !event.RefundedAmount.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected refunded amount 20, got %s", event.RefundedAmount)
	}

	if err := transfer.Complete(laterTime); !errors.Is(err, domain_transfer.ErrAlreadyFinalized) {
		t.Errorf("expected error %v, got %v", domain_transfer.ErrAlreadyFinalized, err)
	}
}

func TestRestore(t *testing.T) {
	if _, err := domain_transfer.Restore(domain_transfer.RestoreParams{Status: domain_transfer.StatusPending}); !errors.Is(err, domain_transfer.ErrInvalidTransferID) {
		t.Errorf("expected ErrInvalidTransferID, got %v", err)
	}

	if _, err := domain_transfer.Restore(domain_transfer.RestoreParams{ID: uuid.New(), Status: "UNKNOWN"}); !errors.Is(err, domain_transfer.ErrInvalidStateTransition) {
		t.Errorf("expected ErrInvalidStateTransition, got %v", err)
	}

	restored, err := domain_transfer.Restore(domain_transfer.RestoreParams{ID: uuid.New(), Status: domain_transfer.StatusCompleted})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(restored.PullEvents()) != 0 {
		t.Error("expected restore to raise no events")
	}
}
