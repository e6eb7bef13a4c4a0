package domain_money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCurrency = errors.New("money: currency must be a 3-letter code")
	ErrInvalidRate     = errors.New("money: rate must be > 0")
)

const defaultMinorUnits int32 = 2

// MaxMinorUnits is the finest precision of any currency in the table.
const MaxMinorUnits int32 = 4

// minorUnits lists ISO 4217 currencies whose minor unit is not two digits.
var minorUnits = map[string]int32{
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0, "KMF": 0,
	"KRW": 0, "PYG": 0, "RWF": 0, "UGX": 0, "VND": 0, "VUV": 0, "XAF": 0,
	"XOF": 0, "XPF": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
	"CLF": 4, "UYW": 4,
}

func NormalizeCurrency(code string) (string, error) {
	cur := strings.ToUpper(strings.TrimSpace(code))
	if len(cur) != 3 {
		return "", ErrInvalidCurrency
	}
	for _, r := range cur {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidCurrency
		}
	}
	return cur, nil
}

// MinorUnits returns the number of fractional digits of the currency.
func MinorUnits(currency string) int32 {
	if units, ok := minorUnits[strings.ToUpper(currency)]; ok {
		return units
	}
	return defaultMinorUnits
}

// FitsMinorUnits reports whether amount needs no more fractional digits than
// the currency has.
func FitsMinorUnits(amount decimal.Decimal, currency string) bool {
	return FitsPrecision(amount, MinorUnits(currency))
}

func FitsPrecision(amount decimal.Decimal, places int32) bool {
	return amount.Equal(amount.Truncate(places))
}

func SameCurrency(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Convert multiplies amount by rate and rounds the product once, half to even,
// to the minor units of the destination currency.
func Convert(amount, rate decimal.Decimal, destinationCurrency string) (decimal.Decimal, error) {
	if !rate.IsPositive() {
		return decimal.Zero, ErrInvalidRate
	}
	return amount.Mul(rate).RoundBank(MinorUnits(destinationCurrency)), nil
}
