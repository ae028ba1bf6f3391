package contracts

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/light-bringer/roomrate-service/internal/app/currency/domain"
)

// RateStore serves exchange rates.
type RateStore interface {
	// LatestRate returns the most recent rate for code dated on or before day.
	// Returns domain.ErrRateNotFound when there is none.
	LatestRate(ctx context.Context, code string, day civil.Date) (*domain.ExchangeRate, error)

	// AddRate stores a rate.
	AddRate(ctx context.Context, rate *domain.ExchangeRate) error
}
