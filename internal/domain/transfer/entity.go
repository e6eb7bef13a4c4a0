package domain_transfer

import (
	"strings"
	"time"

	domain_money "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/domain/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Transfer struct {
	id uuid.UUID

	sourceAccountID      string
	destinationAccountID string
	requestedAmount      decimal.Decimal
	convertedAmount      decimal.Decimal
	sourceCurrency       string
	destinationCurrency  string
	rate                 decimal.Decimal

	status              Status
	idempotencyKey      string
	attempt             int
	failureCode         string
	failureReason       string
	needsReconciliation bool

	createdAt   time.Time
	updatedAt   time.Time
	completedAt time.Time

	pendingEvents []DomainEvent
}

type NewParams struct {
	SourceAccountID      string
	DestinationAccountID string
	Amount               decimal.Decimal
	IdempotencyKey       string
	Now                  time.Time
}

// New builds a PENDING transfer without an id; the ledger assigns one on the
// first durable write.
func New(p NewParams) (*Transfer, error) {
	src := strings.TrimSpace(p.SourceAccountID)
	dst := strings.TrimSpace(p.DestinationAccountID)
	if src == "" || dst == "" {
		return nil, ErrInvalidAccountID
	}

	if src == dst {
		return nil, ErrSameAccount
	}

	if !p.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	key := strings.TrimSpace(p.IdempotencyKey)
	if key == "" {
		return nil, ErrMissingIdempotencyKey
	}

	if p.Now.IsZero() {
		p.Now = time.Now().UTC()
	}

	return &Transfer{
		sourceAccountID:      src,
		destinationAccountID: dst,
		requestedAmount:      p.Amount,
		status:               StatusPending,
		idempotencyKey:       key,
		attempt:              1,
		createdAt:            p.Now,
		updatedAt:            p.Now,
	}, nil
}

type RestoreParams struct {
	ID                   uuid.UUID
	SourceAccountID      string
	DestinationAccountID string
	RequestedAmount      decimal.Decimal
	ConvertedAmount      decimal.Decimal
	SourceCurrency       string
	DestinationCurrency  string
	Rate                 decimal.Decimal
	Status               Status
	IdempotencyKey       string
	Attempt              int
	FailureCode          string
	FailureReason        string
	NeedsReconciliation  bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
	CompletedAt          time.Time
}

// Restore rebuilds a stored transfer. It raises no events.
func Restore(p RestoreParams) (*Transfer, error) {
	if p.ID == uuid.Nil {
		return nil, ErrInvalidTransferID
	}

	if !p.Status.Valid() {
		return nil, ErrInvalidStateTransition
	}

	return &Transfer{
		id:                   p.ID,
		sourceAccountID:      p.SourceAccountID,
		destinationAccountID: p.DestinationAccountID,
		requestedAmount:      p.RequestedAmount,
		convertedAmount:      p.ConvertedAmount,
		sourceCurrency:       p.SourceCurrency,
		destinationCurrency:  p.DestinationCurrency,
		rate:                 p.Rate,
		status:               p.Status,
		idempotencyKey:       p.IdempotencyKey,
		attempt:              p.Attempt,
		failureCode:          p.FailureCode,
		failureReason:        p.FailureReason,
		needsReconciliation:  p.NeedsReconciliation,
		createdAt:            p.CreatedAt,
		updatedAt:            p.UpdatedAt,
		completedAt:          p.CompletedAt,
	}, nil
}

// AssignID records the identity handed out by the ledger and raises
// TransferRequested.
func (t *Transfer) AssignID(id uuid.UUID, attempt int) error {
	if id == uuid.Nil {
		return ErrInvalidTransferID
	}

	if t.id != uuid.Nil {
		return ErrTransferIDAssigned
	}

	if attempt < 1 {
		attempt = 1
	}

	t.id = id
	t.attempt = attempt

	t.raise(TransferRequested{
		At:                   t.createdAt,
		TransferID:           t.id,
		SourceAccountID:      t.sourceAccountID,
		DestinationAccountID: t.destinationAccountID,
		RequestedAmount:      t.requestedAmount,
		IdempotencyKey:       t.idempotencyKey,
	})

	return nil
}

// Quote fixes the currencies, rate and credited amount of a pending transfer.
func (t *Transfer) Quote(sourceCurrency, destinationCurrency string, rate, converted decimal.Decimal) error {
	if t.status != StatusPending {
		return ErrAlreadyFinalized
	}

	src, err := domain_money.NormalizeCurrency(sourceCurrency)
	if err != nil {
		return ErrInvalidCurrency
	}

	dst, err := domain_money.NormalizeCurrency(destinationCurrency)
	if err != nil {
		return ErrInvalidCurrency
	}

	if !rate.IsPositive() {
		return ErrInvalidRate
	}

	if !converted.IsPositive() {
		return ErrInvalidAmount
	}

	t.sourceCurrency = src
	t.destinationCurrency = dst
	t.rate = rate
	t.convertedAmount = converted

	return nil
}

func (t *Transfer) Complete(now time.Time) error {
	if t.status.IsFinal() {
		return ErrAlreadyFinalized
	}

	if t.status != StatusPending {
		return ErrInvalidStateTransition
	}

	if !t.IsQuoted() {
		return ErrNotQuoted
	}

	if now.IsZero() {
		now = time.Now().UTC()
	}

	t.status = StatusCompleted
	t.updatedAt = now
	t.completedAt = now

	t.raise(TransferCompleted{
		At:                   now,
		TransferID:           t.id,
		SourceAccountID:      t.sourceAccountID,
		DestinationAccountID: t.destinationAccountID,
		RequestedAmount:      t.requestedAmount,
		ConvertedAmount:      t.convertedAmount,
		SourceCurrency:       t.sourceCurrency,
		DestinationCurrency:  t.destinationCurrency,
		Rate:                 t.rate,
	})

	return nil
}

// Fail marks a transfer that left both balances untouched.
func (t *Transfer) Fail(code, failureReason string, now time.Time) error {
	return t.fail(code, failureReason, false, now)
}

// FailForReconciliation marks a transfer whose remote effects are unknown or
// left unbalanced. It is never re-executed.
func (t *Transfer) FailForReconciliation(code, failureReason string, now time.Time) error {
	return t.fail(code, failureReason, true, now)
}

func (t *Transfer) fail(code, failureReason string, reconcile bool, now time.Time) error {
	if t.status.IsFinal() {
		return ErrAlreadyFinalized
	}

	if t.status != StatusPending {
		return ErrInvalidStateTransition
	}

	failureReason = strings.TrimSpace(failureReason)
	if failureReason == "" {
		return ErrMissingFailureReason
	}

	if now.IsZero() {
		now = time.Now().UTC()
	}

	t.status = StatusFailed
	t.failureCode = strings.TrimSpace(code)
	t.failureReason = failureReason
	t.needsReconciliation = reconcile
	t.updatedAt = now
	t.completedAt = now

	t.raise(TransferFailed{
		At:                  now,
		TransferID:          t.id,
		Code:                t.failureCode,
		Reason:              failureReason,
		NeedsReconciliation: reconcile,
	})

	return nil
}

// Compensate marks a transfer whose debit was reversed after a later step
// failed.
func (t *Transfer) Compensate(code, failureReason string, now time.Time) error {
	if t.status.IsFinal() {
		return ErrAlreadyFinalized
	}

	if t.status != StatusPending {
		return ErrInvalidStateTransition
	}

	failureReason = strings.TrimSpace(failureReason)
	if failureReason == "" {
		return ErrMissingFailureReason
	}

	if now.IsZero() {
		now = time.Now().UTC()
	}

	t.status = StatusCompensated
	t.failureCode = strings.TrimSpace(code)
	t.failureReason = failureReason
	t.updatedAt = now
	t.completedAt = now

	t.raise(TransferCompensated{
		At:              now,
		TransferID:      t.id,
		SourceAccountID: t.sourceAccountID,
		RefundedAmount:  t.requestedAmount,
		Code:            t.failureCode,
		Reason:          failureReason,
	})

	return nil
}

func (t *Transfer) PullEvents() []DomainEvent {
	if len(t.pendingEvents) == 0 {
		return nil
	}

	ev := make([]DomainEvent, len(t.pendingEvents))
	copy(ev, t.pendingEvents)

	t.pendingEvents = t.pendingEvents[:0]

	return ev
}

// Events returns the pending events without draining them.
func (t *Transfer) Events() []DomainEvent {
	ev := make([]DomainEvent, len(t.pendingEvents))
	copy(ev, t.pendingEvents)
	return ev
}

func (t *Transfer) raise(event DomainEvent) {
	t.pendingEvents = append(t.pendingEvents, event)
}

func (t *Transfer) IsQuoted() bool { return t.rate.IsPositive() }

func (t *Transfer) ID() uuid.UUID { return t.id }

func (t *Transfer) SourceAccountID() string { return t.sourceAccountID }

func (t *Transfer) DestinationAccountID() string { return t.destinationAccountID }

func (t *Transfer) RequestedAmount() decimal.Decimal { return t.requestedAmount }

func (t *Transfer) ConvertedAmount() decimal.Decimal { return t.convertedAmount }

func (t *Transfer) SourceCurrency() string { return t.sourceCurrency }

func (t *Transfer) DestinationCurrency() string { return t.destinationCurrency }

func (t *Transfer) Rate() decimal.Decimal { return t.rate }

func (t *Transfer) Status() Status { return t.status }

func (t *Transfer) IdempotencyKey() string { return t.idempotencyKey }

func (t *Transfer) Attempt() int { return t.attempt }

func (t *Transfer) FailureCode() string { return t.failureCode }

func (t *Transfer) FailureReason() string { return t.failureReason }

func (t *Transfer) NeedsReconciliation() bool { return t.needsReconciliation }

func (t *Transfer) CreatedAt() time.Time { return t.createdAt }

func (t *Transfer) UpdatedAt() time.Time { return t.updatedAt }

func (t *Transfer) CompletedAt() time.Time { return t.completedAt }
