package convert

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/roomrate-service/internal/app/currency/domain"
	"github.com/light-bringer/roomrate-service/internal/pkg/clock"
)

type fakeRates struct {
	rates map[string]*domain.ExchangeRate
	err   error
	asked civil.Date
}

func (f *fakeRates) LatestRate(_ context.Context, code string, day civil.Date) (*domain.ExchangeRate, error) {
	f.asked = day
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.rates[code]
	if !ok {
		return nil, domain.ErrRateNotFound
	}
	return r, nil
}

func (f *fakeRates) AddRate(context.Context, *domain.ExchangeRate) error { return nil }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var now = time.Date(2024, time.March, 5, 23, 30, 0, 0, time.UTC)

func newRates() *fakeRates {
	return &fakeRates{rates: map[string]*domain.ExchangeRate{
		"USD": {CurrencyCode: "USD", Nominal: dec("1"), OfficialRate: dec("90.5"), Rate: dec("91")},
		"KZT": {CurrencyCode: "KZT", Nominal: dec("100"), OfficialRate: dec("19.8"), Rate: dec("20")},
		"EUR": {CurrencyCode: "EUR", Nominal: dec("1"), OfficialRate: dec("99")},
	}}
}

func TestQuery_Execute(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		amount    string
		code      string
		want      string
		converted bool
	}{
		{"commercial rate truncates to whole units", Options{BaseCurrency: "RUB"}, "1000", "USD", "10", true},
		{"official rate", Options{BaseCurrency: "RUB", OfficialRate: true}, "1000", "usd", "11", true},
		{"nominal scales the rate", Options{BaseCurrency: "RUB"}, "1000", "KZT", "5000", true},
		{"places keep cents", Options{BaseCurrency: "RUB", Places: 2}, "1000", "USD", "10.98", true},
		{"base currency is returned as is", Options{BaseCurrency: "RUB"}, "16.85", "RUB", "16", false},
		{"unknown currency falls back", Options{BaseCurrency: "RUB"}, "1000", "GBP", "1000", false},
		{"invalid code falls back", Options{BaseCurrency: "RUB"}, "1000", "dollars", "1000", false},
		{"missing commercial rate falls back", Options{BaseCurrency: "RUB"}, "1000", "EUR", "1000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuery(newRates(), clock.NewMockClock(now), tt.opts, nil)

			res, err := q.Execute(context.Background(), &Request{Amount: dec(tt.amount), CurrencyCode: tt.code})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Amount.String())
			assert.Equal(t, tt.converted, res.Converted)
			if tt.converted {
				assert.NotNil(t, res.Rate)
			} else {
				assert.Equal(t, "RUB", res.CurrencyCode)
			}
		})
	}
}

func TestQuery_Execute_AsksForToday(t *testing.T) {
	rates := newRates()
	q := NewQuery(rates, clock.NewMockClock(now), Options{BaseCurrency: "RUB"}, nil)

	_, err := q.Execute(context.Background(), &Request{Amount: dec("1"), CurrencyCode: "USD"})
	require.NoError(t, err)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.March, Day: 5}, rates.asked)
}

func TestQuery_Execute_StoreFailure(t *testing.T) {
	rates := newRates()
	rates.err = errors.New("connection refused")
	q := NewQuery(rates, clock.NewMockClock(now), Options{BaseCurrency: "RUB"}, nil)

	res, err := q.Execute(context.Background(), &Request{Amount: dec("1000"), CurrencyCode: "USD"})
	require.NoError(t, err)
	assert.False(t, res.Converted)
	assert.Equal(t, "1000", res.Amount.String())
}

func TestQuery_Execute_Canceled(t *testing.T) {
	rates := newRates()
	rates.err = context.Canceled
	q := NewQuery(rates, clock.NewMockClock(now), Options{BaseCurrency: "RUB"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Execute(ctx, &Request{Amount: dec("1000"), CurrencyCode: "USD"})
	assert.ErrorIs(t, err, context.Canceled)
}
