package impl_persistence

import (
	"time"

	domain_transfer "github.com/PedroCamargo-dev/core-bank-fx-transfers/internal/domain/transfer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// transferModel is one attempt for an idempotency key. A key owns several rows
// only when earlier attempts failed without moving money.
type transferModel struct {
	ID                   string          `gorm:"type:varchar(36);primaryKey"`
	IdempotencyKey       string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_transfers_key_attempt,priority:1"`
	Attempt              int             `gorm:"not null;uniqueIndex:idx_transfers_key_attempt,priority:2"`
	RequestHash          string          `gorm:"type:varchar(64);not null"`
	SourceAccountID      string          `gorm:"type:varchar(64);not null;index"`
	DestinationAccountID string          `gorm:"type:varchar(64);not null;index"`
	RequestedAmount      decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	ConvertedAmount      decimal.Decimal `gorm:"type:numeric(38,18)"`
	SourceCurrency       string          `gorm:"type:varchar(3)"`
	DestinationCurrency  string          `gorm:"type:varchar(3)"`
	Rate                 decimal.Decimal `gorm:"type:numeric(38,18)"`
	Status               string          `gorm:"type:varchar(16);not null;index"`
	FailureCode          string          `gorm:"type:varchar(64)"`
	FailureReason        string          `gorm:"type:text"`
	NeedsReconciliation  bool            `gorm:"not null;default:false"`
	CreatedAt            time.Time       `gorm:"not null"`
	UpdatedAt            time.Time       `gorm:"not null"`
	CompletedAt          *time.Time
}

func (transferModel) TableName() string { return "transfers" }

type outboxModel struct {
	Seq           uint64     `gorm:"primaryKey;autoIncrement"`
	MessageID     string     `gorm:"type:varchar(36);not null;uniqueIndex"`
	EventType     string     `gorm:"type:varchar(64);not null"`
	AggregateType string     `gorm:"type:varchar(32);not null"`
	AggregateID   string     `gorm:"type:varchar(36);not null;index"`
	Payload       []byte     `gorm:"not null"`
	CreatedAt     time.Time  `gorm:"not null"`
	PublishedAt   *time.Time `gorm:"index"`
}

func (outboxModel) TableName() string { return "outbox_messages" }

func toModel(t *domain_transfer.Transfer, requestHash string) transferModel {
	return transferModel{
		ID:                   t.ID().String(),
		IdempotencyKey:       t.IdempotencyKey(),
		Attempt:              t.Attempt(),
		RequestHash:          requestHash,
		SourceAccountID:      t.SourceAccountID(),
		DestinationAccountID: t.DestinationAccountID(),
		RequestedAmount:      t.RequestedAmount(),
		ConvertedAmount:      t.ConvertedAmount(),
		SourceCurrency:       t.SourceCurrency(),
		DestinationCurrency:  t.DestinationCurrency(),
		Rate:                 t.Rate(),
		Status:               string(t.Status()),
		FailureCode:          t.FailureCode(),
		FailureReason:        t.FailureReason(),
		NeedsReconciliation:  t.NeedsReconciliation(),
		CreatedAt:            t.CreatedAt(),
		UpdatedAt:            t.UpdatedAt(),
		CompletedAt:          timePtr(t.CompletedAt()),
	}
}

func (m transferModel) toDomain() (*domain_transfer.Transfer, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, domain_transfer.ErrInvalidTransferID
	}

	var completedAt time.Time
	if m.CompletedAt != nil {
		completedAt = *m.CompletedAt
	}

	return domain_transfer.Restore(domain_transfer.RestoreParams{
		ID:                   id,
		SourceAccountID:      m.SourceAccountID,
		DestinationAccountID: m.DestinationAccountID,
		RequestedAmount:      m.RequestedAmount,
		ConvertedAmount:      m.ConvertedAmount,
		SourceCurrency:       m.SourceCurrency,
		DestinationCurrency:  m.DestinationCurrency,
		Rate:                 m.Rate,
		Status:               domain_transfer.Status(m.Status),
		IdempotencyKey:       m.IdempotencyKey,
		Attempt:              m.Attempt,
		FailureCode:          m.FailureCode,
		FailureReason:        m.FailureReason,
		NeedsReconciliation:  m.NeedsReconciliation,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
		CompletedAt:          completedAt,
	})
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
