package port_accounts

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrUnavailable covers transport failures and timeouts. On a write the
// outcome is unknown: the update may or may not have been applied.
var (
	ErrNotFound    = errors.New("accounts: account not found")
	ErrConflict    = errors.New("accounts: concurrent modification")
	ErrRejected    = errors.New("accounts: request rejected")
	ErrUnavailable = errors.New("accounts: account service unavailable")
)

// Account is a snapshot of a remote account. Version is the store's opaque
// revision tag, empty when the store does not issue one.
type Account struct {
	ID       string
	Currency string
	Balance  decimal.Decimal
	Version  string
}

// Update sets Balance only if the account still holds ExpectedBalance, and
// still carries Version when one is set. Otherwise the store answers with
// ErrConflict and nothing is applied.
type Update struct {
	Currency        string
	Balance         decimal.Decimal
	ExpectedBalance decimal.Decimal
	Version         string
}

// UpdateFrom builds the conditional write that moves read to balance.
func UpdateFrom(read Account, balance decimal.Decimal) Update {
	return Update{
		Currency:        read.Currency,
		Balance:         balance,
		ExpectedBalance: read.Balance,
		Version:         read.Version,
	}
}

// Client performs exactly one remote call per invocation and never retries.
type Client interface {
	GetAccount(ctx context.Context, id string) (Account, error)
	UpdateAccount(ctx context.Context, id string, update Update) (Account, error)
}
