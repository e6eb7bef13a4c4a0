package port_rates

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPair = errors.New("rates: invalid currency pair")
	ErrUnavailable = errors.New("rates: rate provider unavailable")
)

// ExchangeRate converts an amount in From into an amount in To.
type ExchangeRate struct {
	From string
	To   string
	Rate decimal.Decimal
}

type Client interface {
	GetRate(ctx context.Context, from, to string) (ExchangeRate, error)
}
