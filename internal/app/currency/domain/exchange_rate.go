package domain

import (
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

var (
	ErrRateNotFound    = errors.New("exchange rate not found")
	ErrMalformedRate   = errors.New("exchange rate must be positive")
	ErrInvalidCurrency = errors.New("currency code must be three letters")
	ErrInvalidNominal  = errors.New("exchange rate nominal must be positive")
)

// ExchangeRate is the published rate of a currency on a date.
// One unit of the native currency buys Nominal/Rate units of the foreign one.
type ExchangeRate struct {
	ID           string
	CurrencyCode string
	Date         civil.Date
	Nominal      decimal.Decimal
	OfficialRate decimal.Decimal
	Rate         decimal.Decimal
}

// NormalizeCode upper-cases and validates an ISO 4217 code.
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
		}
	}
	return code, nil
}

// Validate checks the rate can be stored.
func (r *ExchangeRate) Validate() error {
	if _, err := NormalizeCode(r.CurrencyCode); err != nil {
		return err
	}
	if !r.Nominal.IsPositive() {
		return ErrInvalidNominal
	}
	if !r.Rate.IsPositive() && !r.OfficialRate.IsPositive() {
		return ErrMalformedRate
	}
	return nil
}

// Divisor picks the official or the commercial rate.
func (r *ExchangeRate) Divisor(official bool) (decimal.Decimal, error) {
	d := r.Rate
	if official {
		d = r.OfficialRate
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s on %s", ErrMalformedRate, r.CurrencyCode, r.Date)
	}
	return d, nil
}

// Convert returns amount * nominal / rate truncated to places.
func (r *ExchangeRate) Convert(amount decimal.Decimal, official bool, places int32) (decimal.Decimal, error) {
	divisor, err := r.Divisor(official)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(r.Nominal).Div(divisor).Truncate(places), nil
}
