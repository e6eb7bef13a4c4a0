package impl_transfer

import (
	"context"
	"errors"
	"fmt"

	domain_money "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/domain/money"
	domain_transfer "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/domain/transfer"
	port_accounts "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/accounts"
	port_persistence "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/persistence"
	port_rates "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/rates"
	port_transfer "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/usecase/transfer"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const reasonCompensationFailed = "compensation failed, manual reconciliation required"

// runSaga drives a PENDING transfer to a terminal state. Reads and the rate
// lookup happen before any mutation; once the debit is attempted the saga no
// longer observes caller cancellation.
func (u *ExecuteTransferUsecaseImpl) runSaga(ctx context.Context, t *domain_transfer.Transfer) (port_transfer.TransferOutput, error) {
	if err := ctx.Err(); err != nil {
		return u.abandon(ctx, t, ErrUnavailable, "cancelled before any mutation", err)
	}

	source, destination, err := u.readAccounts(ctx, t)
	if err != nil {
		return u.abandon(ctx, t, accountFailureKind(err), "account read failed", err)
	}

	if !domain_money.FitsMinorUnits(t.RequestedAmount(), source.Currency) {
		return u.abandon(ctx, t, ErrInvalidAmount, "amount precision",
			fmt.Errorf("amount %s has more decimals than %s allows", t.RequestedAmount(), source.Currency))
	}

	if source.Balance.LessThan(t.RequestedAmount()) {
		return u.abandon(ctx, t, ErrInsufficientFunds, "insufficient funds",
			fmt.Errorf("balance %s is below requested %s", source.Balance, t.RequestedAmount()))
	}

	rate, converted, kind, err := u.quote(ctx, source.Currency, destination.Currency, t.RequestedAmount())
	if err != nil {
		return u.abandon(ctx, t, kind, "conversion failed", err)
	}

	if err := t.Quote(source.Currency, destination.Currency, rate, converted); err != nil {
		kind := ErrUnavailable
		if errors.Is(err, domain_transfer.ErrInvalidAmount) {
			kind = ErrInvalidAmount
		}
		return u.abandon(ctx, t, kind, "conversion rejected", err)
	}

	if err := ctx.Err(); err != nil {
		return u.abandon(ctx, t, ErrUnavailable, "cancelled before any mutation", err)
	}

	sagaCtx := context.WithoutCancel(ctx)

	debit := port_accounts.UpdateFrom(source, source.Balance.Sub(t.RequestedAmount()))
	if _, err := u.updateAccount(sagaCtx, t.SourceAccountID(), debit); err != nil {
		if !isDefinitive(err) {
			return u.escalate(sagaCtx, t, "debit outcome unknown, manual reconciliation required", err)
		}
		return u.abandon(sagaCtx, t, accountFailureKind(err), "debit rejected", err)
	}

	credit := port_accounts.UpdateFrom(destination, destination.Balance.Add(converted))
	if _, err := u.updateAccount(sagaCtx, t.DestinationAccountID(), credit); err != nil {
		// An unknown-outcome credit may have landed; refunding the debit could
		// create value, so it is left for reconciliation.
		if !isDefinitive(err) {
			return u.escalate(sagaCtx, t, "credit outcome unknown after debit, manual reconciliation required", err)
		}

		kind := accountFailureKind(err)
		if cerr := u.compensate(sagaCtx, t); cerr != nil {
			return u.escalate(sagaCtx, t, reasonCompensationFailed, errors.Join(err, cerr))
		}
		return u.compensated(sagaCtx, t, kind, err)
	}

	return u.complete(sagaCtx, t)
}

func (u *ExecuteTransferUsecaseImpl) readAccounts(ctx context.Context, t *domain_transfer.Transfer) (source, destination port_accounts.Account, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		acc, err := u.getAccount(gctx, t.SourceAccountID())
		if err != nil {
			return fmt.Errorf("read source account %s: %w", t.SourceAccountID(), err)
		}
		source = acc
		return nil
	})

	g.Go(func() error {
		acc, err := u.getAccount(gctx, t.DestinationAccountID())
		if err != nil {
			return fmt.Errorf("read destination account %s: %w", t.DestinationAccountID(), err)
		}
		destination = acc
		return nil
	})

	err = g.Wait()
	return source, destination, err
}

// quote returns the rate and the credited amount. Equal currencies never reach
// the rate provider.
func (u *ExecuteTransferUsecaseImpl) quote(
	ctx context.Context,
	sourceCurrency, destinationCurrency string,
	amount decimal.Decimal,
) (rate, converted decimal.Decimal, kind error, err error) {
	from, err := domain_money.NormalizeCurrency(sourceCurrency)
	if err != nil {
		return decimal.Zero, decimal.Zero, ErrUnavailable, fmt.Errorf("source account currency %q: %w", sourceCurrency, err)
	}

	to, err := domain_money.NormalizeCurrency(destinationCurrency)
	if err != nil {
		return decimal.Zero, decimal.Zero, ErrUnavailable, fmt.Errorf("destination account currency %q: %w", destinationCurrency, err)
	}

	if from == to {
		return decimal.NewFromInt(1), amount, nil, nil
	}

	var quoted port_rates.ExchangeRate
	err = u.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		quoted, err = u.rates.GetRate(ctx, from, to)
		return asUnavailable(err, port_rates.ErrUnavailable)
	})
	if err != nil {
		return decimal.Zero, decimal.Zero, ErrRateUnavailable, fmt.Errorf("rate %s->%s: %w", from, to, err)
	}

	converted, err = domain_money.Convert(amount, quoted.Rate, to)
	if err != nil {
		return decimal.Zero, decimal.Zero, ErrRateUnavailable, fmt.Errorf("rate %s->%s: %w", from, to, err)
	}

	return quoted.Rate, converted, nil, nil
}

// compensate refunds the debit. It re-reads the source every attempt and only
// retries when the previous write definitely did not apply.
func (u *ExecuteTransferUsecaseImpl) compensate(ctx context.Context, t *domain_transfer.Transfer) error {
	var lastErr error

	for attempt := 1; attempt <= u.opts.CompensationAttempts; attempt++ {
		if attempt > 1 {
			u.pause()
		}

		current, err := u.getAccount(ctx, t.SourceAccountID())
		if err != nil {
			lastErr = err
			if errors.Is(err, port_accounts.ErrNotFound) {
				return err
			}
			continue
		}

		refund := port_accounts.UpdateFrom(current, current.Balance.Add(t.RequestedAmount()))

		_, err = u.updateAccount(ctx, t.SourceAccountID(), refund)
		if err == nil {
			return nil
		}

		lastErr = err
		if !errors.Is(err, port_accounts.ErrConflict) {
			return err
		}

		u.logger.Warn("compensation write conflicted, retrying",
			zap.String("transfer_id", t.ID().String()),
			zap.Int("attempt", attempt),
		)
	}

	return lastErr
}

func (u *ExecuteTransferUsecaseImpl) complete(ctx context.Context, t *domain_transfer.Transfer) (port_transfer.TransferOutput, error) {
	if err := t.Complete(u.clock.Now()); err != nil {
		return port_transfer.TransferOutput{}, &FailureError{Kind: ErrReconciliationRequired, Cause: err}
	}

	if err := u.persist(ctx, u.ledger.MarkCompleted, t); err != nil {
		return u.unrecorded(t, domain_transfer.StatusCompleted, err)
	}

	u.logger.Info("transfer completed",
		zap.String("transfer_id", t.ID().String()),
		zap.String("idempotency_key", t.IdempotencyKey()),
		zap.String("requested_amount", t.RequestedAmount().String()),
		zap.String("converted_amount", t.ConvertedAmount().String()),
		zap.String("rate", t.Rate().String()),
	)

	return toOutput(t), nil
}

// abandon fails a transfer that left both balances untouched.
func (u *ExecuteTransferUsecaseImpl) abandon(
	ctx context.Context,
	t *domain_transfer.Transfer,
	kind error,
	reason string,
	cause error,
) (port_transfer.TransferOutput, error) {
	ctx = context.WithoutCancel(ctx)

	if err := t.Fail(string(KindOf(kind)), fmt.Sprintf("%s: %v", reason, cause), u.clock.Now()); err != nil {
		return port_transfer.TransferOutput{}, &FailureError{Kind: kind, Cause: errors.Join(cause, err)}
	}

	if err := u.persist(ctx, u.ledger.MarkFailed, t); err != nil {
		return u.unrecorded(t, domain_transfer.StatusFailed, errors.Join(cause, err))
	}

	u.logger.Warn("transfer failed",
		zap.String("transfer_id", t.ID().String()),
		zap.String("idempotency_key", t.IdempotencyKey()),
		zap.String("kind", string(KindOf(kind))),
		zap.Error(cause),
	)

	out := toOutput(t)
	return out, &FailureError{Kind: kind, Transfer: &out, Cause: cause}
}

func (u *ExecuteTransferUsecaseImpl) compensated(
	ctx context.Context,
	t *domain_transfer.Transfer,
	kind error,
	cause error,
) (port_transfer.TransferOutput, error) {
	reason := fmt.Sprintf("credit failed, debit reversed: %v", cause)
	if err := t.Compensate(string(KindOf(kind)), reason, u.clock.Now()); err != nil {
		return port_transfer.TransferOutput{}, &FailureError{Kind: ErrReconciliationRequired, Cause: errors.Join(cause, err)}
	}

	if err := u.persist(ctx, u.ledger.MarkCompensated, t); err != nil {
		return u.unrecorded(t, domain_transfer.StatusCompensated, errors.Join(cause, err))
	}

	u.logger.Warn("transfer compensated",
		zap.String("transfer_id", t.ID().String()),
		zap.String("idempotency_key", t.IdempotencyKey()),
		zap.String("kind", string(KindOf(kind))),
		zap.Error(cause),
	)

	out := toOutput(t)
	return out, &FailureError{Kind: kind, Transfer: &out, Cause: cause}
}

// escalate records a transfer whose remote state is unknown or unbalanced.
// It is surfaced to the caller and never retried automatically.
func (u *ExecuteTransferUsecaseImpl) escalate(
	ctx context.Context,
	t *domain_transfer.Transfer,
	reason string,
	cause error,
) (port_transfer.TransferOutput, error) {
	if err := t.FailForReconciliation(string(KindReconciliationRequired), reason, u.clock.Now()); err != nil {
		return port_transfer.TransferOutput{}, &FailureError{Kind: ErrReconciliationRequired, Cause: errors.Join(cause, err)}
	}

	if err := u.persist(ctx, u.ledger.MarkFailed, t); err != nil {
		return u.unrecorded(t, domain_transfer.StatusFailed, errors.Join(cause, err))
	}

	u.logger.Error("transfer requires manual reconciliation",
		zap.String("transfer_id", t.ID().String()),
		zap.String("idempotency_key", t.IdempotencyKey()),
		zap.String("source_account_id", t.SourceAccountID()),
		zap.String("destination_account_id", t.DestinationAccountID()),
		zap.String("requested_amount", t.RequestedAmount().String()),
		zap.String("reason", reason),
		zap.Error(cause),
	)

	out := toOutput(t)
	return out, &FailureError{Kind: ErrReconciliationRequired, Transfer: &out, Cause: cause}
}

// unrecorded reports a terminal outcome the ledger could not store. The row
// stays PENDING, so the caller gets no record and the key stays claimed until
// the transfer is reconciled.
func (u *ExecuteTransferUsecaseImpl) unrecorded(
	t *domain_transfer.Transfer,
	outcome domain_transfer.Status,
	cause error,
) (port_transfer.TransferOutput, error) {
	u.logger.Error("transfer outcome was not recorded",
		zap.String("transfer_id", t.ID().String()),
		zap.String("idempotency_key", t.IdempotencyKey()),
		zap.String("outcome", string(outcome)),
		zap.Error(cause),
	)

	return port_transfer.TransferOutput{}, &FailureError{
		Kind:  ErrReconciliationRequired,
		Cause: fmt.Errorf("transfer %s: record %s: %w", t.ID(), outcome, cause),
	}
}

// persist retries a ledger transition. Transitions are conditional on the
// record still being PENDING, so a retry after a lost acknowledgement reports
// ErrNotPending instead of applying twice.
func (u *ExecuteTransferUsecaseImpl) persist(
	ctx context.Context,
	write func(context.Context, *domain_transfer.Transfer) error,
	t *domain_transfer.Transfer,
) error {
	var err error

	for attempt := 1; attempt <= u.opts.LedgerWriteAttempts; attempt++ {
		if attempt > 1 {
			u.pause()
		}

		err = u.withTimeout(ctx, func(ctx context.Context) error {
			return write(ctx, t)
		})
		if err == nil {
			return nil
		}

		if errors.Is(err, port_persistence.ErrNotPending) {
			if attempt > 1 {
				return nil
			}
			return err
		}
	}

	return err
}

func (u *ExecuteTransferUsecaseImpl) getAccount(ctx context.Context, id string) (port_accounts.Account, error) {
	var acc port_accounts.Account
	err := u.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		acc, err = u.accounts.GetAccount(ctx, id)
		return asUnavailable(err, port_accounts.ErrUnavailable)
	})
	return acc, err
}

func (u *ExecuteTransferUsecaseImpl) updateAccount(ctx context.Context, id string, update port_accounts.Update) (port_accounts.Account, error) {
	var acc port_accounts.Account
	err := u.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		acc, err = u.accounts.UpdateAccount(ctx, id, update)
		return asUnavailable(err, port_accounts.ErrUnavailable)
	})
	return acc, err
}

// asUnavailable folds context expiry into the port's Unavailable error.
func asUnavailable(err error, unavailable error) error {
	if err == nil || errors.Is(err, unavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", unavailable, err)
	}
	return err
}

// isDefinitive reports whether a failed account call is known not to have
// applied anything.
func isDefinitive(err error) bool {
	return errors.Is(err, port_accounts.ErrNotFound) ||
		errors.Is(err, port_accounts.ErrConflict) ||
		errors.Is(err, port_accounts.ErrRejected)
}

func accountFailureKind(err error) error {
	switch {
	case errors.Is(err, port_accounts.ErrNotFound):
		return ErrAccountNotFound
	case errors.Is(err, port_accounts.ErrConflict), errors.Is(err, port_accounts.ErrRejected):
		return ErrConflict
	default:
		return ErrUnavailable
	}
}
