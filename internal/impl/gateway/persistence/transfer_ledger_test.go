package impl_persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	domain_transfer "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/domain/transfer"
	impl_platform "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/impl/gateway/platform"
	port_persistence "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/ports/gateway/persistence"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

var ledgerNow = time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:ledger_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := Open(DBConfig{Driver: "sqlite", DSN: dsn, LogLevel: gormlogger.Silent})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func newLedger(t *testing.T) (*TransferLedger, *OutboxRepository) {
	t.Helper()

	db := newTestDB(t)
	clock := impl_platform.FixedClock{At: ledgerNow}
	return NewTransferLedger(db, impl_platform.UUIDGenerator{}, clock, "fx-transfers"), NewOutboxRepository(db, clock)
}

func newPending(t *testing.T, key, src, dst string, amount string, now time.Time) *domain_transfer.Transfer {
	t.Helper()

	tr, err := domain_transfer.New(domain_transfer.NewParams{
		SourceAccountID:      src,
		DestinationAccountID: dst,
		Amount:               decimal.RequireFromString(amount),
		IdempotencyKey:       key,
		Now:                  now,
	})
	require.NoError(t, err)
	return tr
}

func TestTransferLedger_CreatePendingAssignsIdentity(t *testing.T) {
	ctx := context.Background()
	ledger, outbox := newLedger(t)

	tr := newPending(t, "key-1", "1", "2", "20", ledgerNow)
	require.NoError(t, ledger.CreatePending(ctx, tr, "hash-1"))

	require.NotEmpty(t, tr.ID().String())
	require.Equal(t, 1, tr.Attempt())
	require.Empty(t, tr.Events(), "events must be drained after commit")

	stored, err := ledger.GetByIdempotencyKey(ctx, "key-1")
	require.NoError(t, err)
	require.Equal(t, tr.ID(), stored.Transfer.ID())
	require.Equal(t, "hash-1", stored.RequestHash)
	require.Equal(t, domain_transfer.StatusPending, stored.Transfer.Status())
	require.True(t, stored.Transfer.RequestedAmount().Equal(decimal.NewFromInt(20)))

	msgs, err := outbox.DequeueBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "transfer.requested", msgs[0].EventType)
	require.Equal(t, tr.ID().String(), msgs[0].AggregateID)

	var env struct {
		Meta struct {
			SchemaVersion int    `json:"schema_version"`
			MessageID     string `json:"message_id"`
			EventType     string `json:"event_type"`
			Producer      string `json:"producer"`
			AggregateID   string `json:"aggregate_id"`
		} `json:"meta"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &env))
	require.Equal(t, 1, env.Meta.SchemaVersion)
	require.Equal(t, msgs[0].MessageID, env.Meta.MessageID)
	require.Equal(t, "fx-transfers", env.Meta.Producer)
	require.Equal(t, "20", env.Data["requested_amount"])
	require.Equal(t, "key-1", env.Data["idempotency_key"])
}

func TestTransferLedger_ClaimIsExclusive(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(t)

	first := newPending(t, "key-1", "1", "2", "20", ledgerNow)
	require.NoError(t, ledger.CreatePending(ctx, first, "hash-1"))

	second := newPending(t, "key-1", "1", "2", "20", ledgerNow)
	err := ledger.CreatePending(ctx, second, "hash-1")
	require.ErrorIs(t, err, port_persistence.ErrDuplicateIdempotencyKey)
}

func TestTransferLedger_FailedKeyAllowsNextAttempt(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(t)

	first := newPending(t, "key-1", "1", "2", "20", ledgerNow)
	require.NoError(t, ledger.CreatePending(ctx, first, "hash-1"))
	require.NoError(t, first.Fail("RateUnavailable", "conversion failed", ledgerNow))
	require.NoError(t, ledger.MarkFailed(ctx, first))

	retry := newPending(t, "key-1", "1", "2", "20", ledgerNow.Add(time.Second))
	require.NoError(t, ledger.CreatePending(ctx, retry, "hash-1"))
	require.Equal(t, 2, retry.Attempt())

	stored, err := ledger.GetByIdempotencyKey(ctx, "key-1")
	require.NoError(t, err)
	require.Equal(t, retry.ID(), stored.Transfer.ID())
	require.Equal(t, 2, stored.Transfer.Attempt())
}

func TestTransferLedger_ReconciliationKeyStaysClaimed(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(t)

	first := newPending(t, "key-1", "1", "2", "20", ledgerNow)
	require.NoError(t, ledger.CreatePending(ctx, first, "hash-1"))
	require.NoError(t, first.FailForReconciliation("ReconciliationRequired", "debit outcome unknown", ledgerNow))
	require.NoError(t, ledger.MarkFailed(ctx, first))

	retry := newPending(t, "key-1", "1", "2", "20", ledgerNow)
	require.ErrorIs(t, ledger.CreatePending(ctx, retry, "hash-1"), port_persistence.ErrDuplicateIdempotencyKey)
}

func TestTransferLedger_TransitionsAreTerminal(t *testing.T) {
	ctx := context.Background()
	ledger, outbox := newLedger(t)

	tr := newPending(t, "key-1", "1", "2", "20", ledgerNow)
	require.NoError(t, ledger.CreatePending(ctx, tr, "hash-1"))

	require.NoError(t, tr.Quote("USD", "EUR", decimal.RequireFromString("0.9"), decimal.RequireFromString("18")))
	require.NoError(t, tr.Complete(ledgerNow.Add(time.Second)))
	require.NoError(t, ledger.MarkCompleted(ctx, tr))

	stored, err := ledger.GetByID(ctx, tr.ID().String())
	require.NoError(t, err)
	got := stored.Transfer
	require.Equal(t, domain_transfer.StatusCompleted, got.Status())
	require.Equal(t, "EUR", got.DestinationCurrency())
	require.True(t, got.ConvertedAmount().Equal(decimal.NewFromInt(18)))
	require.True(t, got.Rate().Equal(decimal.RequireFromString("0.9")))
	require.False(t, got.CompletedAt().IsZero())

	// A second transition on a terminal row is refused.
	require.ErrorIs(t, ledger.MarkCompleted(ctx, tr), port_persistence.ErrNotPending)

	msgs, err := outbox.DequeueBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "transfer.requested", msgs[0].EventType)
	require.Equal(t, "transfer.completed", msgs[1].EventType)
}

func TestTransferLedger_TransitionGuards(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(t)

	t.Run("status mismatch", func(t *testing.T) {
		tr := newPending(t, "key-guard", "1", "2", "20", ledgerNow)
		require.NoError(t, ledger.CreatePending(ctx, tr, "hash"))
		require.ErrorIs(t, ledger.MarkCompleted(ctx, tr), errUnexpectedStatus)
	})

	t.Run("unknown transfer", func(t *testing.T) {
		ghost := newPending(t, "key-ghost", "1", "2", "20", ledgerNow)
		require.NoError(t, ghost.AssignID(impl_platform.UUIDGenerator{}.NewUUID(), 1))
		require.NoError(t, ghost.Fail("Unavailable", "boom", ledgerNow))
		require.ErrorIs(t, ledger.MarkFailed(ctx, ghost), port_persistence.ErrNotFound)
	})
}

func TestTransferLedger_Queries(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(t)

	a := newPending(t, "key-a", "1", "2", "10", ledgerNow)
	b := newPending(t, "key-b", "3", "1", "5", ledgerNow.Add(time.Minute))
	c := newPending(t, "key-c", "3", "4", "7", ledgerNow.Add(2*time.Minute))
	for _, tr := range []*domain_transfer.Transfer{a, b, c} {
		require.NoError(t, ledger.CreatePending(ctx, tr, "hash"))
	}

	all, err := ledger.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, c.ID(), all[0].ID(), "newest first")

	byAccount, err := ledger.FindByAccount(ctx, "1")
	require.NoError(t, err)
	require.Len(t, byAccount, 2)
	require.Equal(t, b.ID(), byAccount[0].ID())
	require.Equal(t, a.ID(), byAccount[1].ID())

	none, err := ledger.FindByAccount(ctx, "99")
	require.NoError(t, err)
	require.Empty(t, none)

	_, err = ledger.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, port_persistence.ErrNotFound)

	_, err = ledger.GetByIdempotencyKey(ctx, "missing")
	require.ErrorIs(t, err, port_persistence.ErrNotFound)
}

func TestOutboxRepository_MarkPublished(t *testing.T) {
	ctx := context.Background()
	ledger, outbox := newLedger(t)

	tr := newPending(t, "key-1", "1", "2", "20", ledgerNow)
	require.NoError(t, ledger.CreatePending(ctx, tr, "hash"))

	msgs, err := outbox.DequeueBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	require.NoError(t, outbox.MarkPublished(ctx, msgs[0].MessageID))
	require.ErrorIs(t, outbox.MarkPublished(ctx, msgs[0].MessageID), port_persistence.ErrNotFound)

	msgs, err = outbox.DequeueBatch(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, msgs)

	msgs, err = outbox.DequeueBatch(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	_, err := Open(DBConfig{Driver: "mysql", DSN: "x"})
	require.ErrorIs(t, err, ErrUnsupportedDriver)
}
