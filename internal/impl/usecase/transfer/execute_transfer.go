package impl_transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	domain_money "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/domain/money"
	domain_transfer "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/domain/transfer"
	port_accounts "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/accounts"
	port_persistence "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/persistence"
	port_platform "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/platform"
	port_rates "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/rates"
	port_transfer "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/usecase/transfer"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Options struct {
	// CallTimeout bounds every remote call and ledger write. Expiry counts as
	// Unavailable.
	CallTimeout time.Duration
	// ReplayWait bounds how long a replay waits for a PENDING record owned by
	// another attempt to reach a terminal state.
	ReplayWait         time.Duration
	ReplayPollInterval time.Duration
	// CompensationAttempts bounds the re-read and refund cycles after a
	// rejected credit.
	CompensationAttempts int
	LedgerWriteAttempts  int
	RetryBackoff         time.Duration
}

func DefaultOptions() Options {
	return Options{
		CallTimeout:          3 * time.Second,
		ReplayWait:           5 * time.Second,
		ReplayPollInterval:   100 * time.Millisecond,
		CompensationAttempts: 3,
		LedgerWriteAttempts:  3,
		RetryBackoff:         50 * time.Millisecond,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.CallTimeout <= 0 {
		o.CallTimeout = d.CallTimeout
	}
	if o.ReplayWait <= 0 {
		o.ReplayWait = d.ReplayWait
	}
	if o.ReplayPollInterval <= 0 {
		o.ReplayPollInterval = d.ReplayPollInterval
	}
	if o.CompensationAttempts <= 0 {
		o.CompensationAttempts = d.CompensationAttempts
	}
	if o.LedgerWriteAttempts <= 0 {
		o.LedgerWriteAttempts = d.LedgerWriteAttempts
	}
	if o.RetryBackoff < 0 {
		o.RetryBackoff = 0
	}
	return o
}

type ExecuteTransferUsecaseImpl struct {
	accounts port_accounts.Client
	rates    port_rates.Client
	ledger   port_persistence.TransferLedger
	clock    port_platform.Clock
	ids      port_platform.IDGenerator
	metrics  port_platform.TransferMetrics
	logger   *zap.Logger
	opts     Options

	inflight singleflight.Group
	mu       sync.Mutex
	flights  map[string]*flight
}

// flight is the context of one in-process execution shared by every caller
// joined on it. It is cancelled only once all of them have gone away.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	callers int
}

func NewExecuteTransferUsecaseImpl(
	accounts port_accounts.Client,
	rates port_rates.Client,
	ledger port_persistence.TransferLedger,
	clock port_platform.Clock,
	ids port_platform.IDGenerator,
	metrics port_platform.TransferMetrics,
	logger *zap.Logger,
	opts Options,
) *ExecuteTransferUsecaseImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecuteTransferUsecaseImpl{
		accounts: accounts,
		rates:    rates,
		ledger:   ledger,
		clock:    clock,
		ids:      ids,
		metrics:  metrics,
		logger:   logger,
		opts:     opts.withDefaults(),
		flights:  make(map[string]*flight),
	}
}

func (u *ExecuteTransferUsecaseImpl) Execute(ctx context.Context, in port_transfer.ExecuteTransferInput) (port_transfer.TransferOutput, error) {
	start := time.Now()

	out, err := u.execute(ctx, in)

	status := out.Status
	if status == "" {
		status = "REJECTED"
	}
	u.metrics.ObserveTransfer(status, string(KindOf(err)), time.Since(start))

	return out, err
}

func (u *ExecuteTransferUsecaseImpl) execute(ctx context.Context, in port_transfer.ExecuteTransferInput) (port_transfer.TransferOutput, error) {
	if !in.Amount.IsPositive() {
		return port_transfer.TransferOutput{}, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}

	if !domain_money.FitsPrecision(in.Amount, domain_money.MaxMinorUnits) {
		return port_transfer.TransferOutput{}, fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, in.Amount, domain_money.MaxMinorUnits)
	}

	src := strings.TrimSpace(in.SourceAccountID)
	dst := strings.TrimSpace(in.DestinationAccountID)
	if src == "" || dst == "" {
		return port_transfer.TransferOutput{}, fmt.Errorf("%w: source and destination account ids are required", ErrInvalidInput)
	}

	if src == dst {
		return port_transfer.TransferOutput{}, ErrSameAccount
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" {
		key = u.ids.NewUUID().String()
	}

	hash := HashExecuteTransferInput(src, dst, in.Amount)

	// Concurrent callers with the same key and payload in this process share
	// one execution; across processes the ledger claim decides.
	flightKey := key + "|" + hash
	flightCtx, leave := u.join(ctx, flightKey)
	defer leave()

	v, err, _ := u.inflight.Do(flightKey, func() (any, error) {
		return u.claimAndRun(flightCtx, src, dst, in.Amount, key, hash)
	})
	out, _ := v.(port_transfer.TransferOutput)

	return out, err
}

// join registers ctx on the flight for key and returns the flight's context.
// A caller leaves when its own context ends or when leave is called. When the
// last caller leaves the flight is cancelled and forgotten, so a later caller
// starts a fresh execution instead of inheriting a cancelled one.
func (u *ExecuteTransferUsecaseImpl) join(ctx context.Context, key string) (context.Context, func()) {
	u.mu.Lock()
	f, ok := u.flights[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		u.flights[key] = f
	}
	f.callers++
	u.mu.Unlock()

	var once sync.Once
	depart := func() {
		once.Do(func() {
			u.mu.Lock()
			defer u.mu.Unlock()

			f.callers--
			if f.callers > 0 {
				return
			}
			f.cancel()
			if u.flights[key] == f {
				delete(u.flights, key)
				u.inflight.Forget(key)
			}
		})
	}

	stop := context.AfterFunc(ctx, depart)
	return f.ctx, func() {
		stop()
		depart()
	}
}

func (u *ExecuteTransferUsecaseImpl) claimAndRun(
	ctx context.Context,
	src, dst string,
	amount decimal.Decimal,
	key, hash string,
) (port_transfer.TransferOutput, error) {
	stored, err := u.lookupKey(ctx, key)
	switch {
	case err == nil:
		out, rerun, err := u.replay(ctx, stored, hash)
		if !rerun {
			return out, err
		}
	case errors.Is(err, port_persistence.ErrNotFound):
	default:
		return port_transfer.TransferOutput{}, &FailureError{Kind: ErrUnavailable, Cause: err}
	}

	if err := ctx.Err(); err != nil {
		return port_transfer.TransferOutput{}, &FailureError{Kind: ErrUnavailable, Cause: err}
	}

	t, err := domain_transfer.New(domain_transfer.NewParams{
		SourceAccountID:      src,
		DestinationAccountID: dst,
		Amount:               amount,
		IdempotencyKey:       key,
		Now:                  u.clock.Now(),
	})
	if err != nil {
		return port_transfer.TransferOutput{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	err = u.withTimeout(ctx, func(ctx context.Context) error {
		return u.ledger.CreatePending(ctx, t, hash)
	})
	if errors.Is(err, port_persistence.ErrDuplicateIdempotencyKey) {
		// Lost the claim to a concurrent attempt: report its outcome.
		stored, err := u.lookupKey(ctx, key)
		if err != nil {
			return port_transfer.TransferOutput{}, &FailureError{Kind: ErrUnavailable, Cause: err}
		}
		out, _, err := u.replay(ctx, stored, hash)
		return out, err
	}
	if err != nil {
		return port_transfer.TransferOutput{}, &FailureError{Kind: ErrUnavailable, Cause: fmt.Errorf("create pending transfer: %w", err)}
	}

	return u.runSaga(ctx, t)
}

func (u *ExecuteTransferUsecaseImpl) lookupKey(ctx context.Context, key string) (*port_persistence.StoredTransfer, error) {
	var stored *port_persistence.StoredTransfer
	err := u.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		stored, err = u.ledger.GetByIdempotencyKey(ctx, key)
		return err
	})
	return stored, err
}

// replay reports the outcome of an existing attempt for the same key. rerun is
// true when that attempt failed without touching any balance, in which case
// the caller may execute a new attempt.
func (u *ExecuteTransferUsecaseImpl) replay(
	ctx context.Context,
	stored *port_persistence.StoredTransfer,
	hash string,
) (out port_transfer.TransferOutput, rerun bool, err error) {
	if stored.RequestHash != hash {
		return port_transfer.TransferOutput{}, false, ErrIdempotencyConflict
	}

	t := stored.Transfer
	if t.Status() == domain_transfer.StatusPending {
		t, err = u.awaitTerminal(ctx, t)
		if err != nil {
			return port_transfer.TransferOutput{}, false, err
		}
	}

	out = toOutput(t)
	cause := errors.New(t.FailureReason())

	switch {
	case t.Status() == domain_transfer.StatusCompleted:
		return out, false, nil
	case t.Status() == domain_transfer.StatusCompensated:
		return out, false, &FailureError{Kind: kindError(t.FailureCode()), Transfer: &out, Cause: cause}
	case t.NeedsReconciliation():
		return out, false, &FailureError{Kind: ErrReconciliationRequired, Transfer: &out, Cause: cause}
	default:
		return out, true, &FailureError{Kind: kindError(t.FailureCode()), Transfer: &out, Cause: cause}
	}
}

func (u *ExecuteTransferUsecaseImpl) awaitTerminal(ctx context.Context, t *domain_transfer.Transfer) (*domain_transfer.Transfer, error) {
	waitCtx, cancel := context.WithTimeout(ctx, u.opts.ReplayWait)
	defer cancel()

	ticker := time.NewTicker(u.opts.ReplayPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			return nil, &FailureError{
				Kind:  ErrUnavailable,
				Cause: fmt.Errorf("transfer %s is still in progress: %w", t.ID(), waitCtx.Err()),
			}
		case <-ticker.C:
		}

		stored, err := u.ledger.GetByID(waitCtx, t.ID().String())
		if err != nil {
			u.logger.Debug("polling pending transfer failed", zap.String("transfer_id", t.ID().String()), zap.Error(err))
			continue
		}

		if stored.Transfer.Status().IsFinal() {
			return stored.Transfer, nil
		}
	}
}

func (u *ExecuteTransferUsecaseImpl) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, u.opts.CallTimeout)
	defer cancel()
	return fn(callCtx)
}

func (u *ExecuteTransferUsecaseImpl) pause() {
	if u.opts.RetryBackoff > 0 {
		time.Sleep(u.opts.RetryBackoff)
	}
}

func toOutput(t *domain_transfer.Transfer) port_transfer.TransferOutput {
	return port_transfer.TransferOutput{
		TransferID:           t.ID().String(),
		Status:               string(t.Status()),
		SourceAccountID:      t.SourceAccountID(),
		DestinationAccountID: t.DestinationAccountID(),
		RequestedAmount:      t.RequestedAmount(),
		ConvertedAmount:      t.ConvertedAmount(),
		SourceCurrency:       t.SourceCurrency(),
		DestinationCurrency:  t.DestinationCurrency(),
		Rate:                 t.Rate(),
		IdempotencyKey:       t.IdempotencyKey(),
		Attempt:              t.Attempt(),
		FailureCode:          t.FailureCode(),
		FailureReason:        t.FailureReason(),
		NeedsReconciliation:  t.NeedsReconciliation(),
		CreatedAt:            t.CreatedAt(),
		CompletedAt:          t.CompletedAt(),
	}
}
