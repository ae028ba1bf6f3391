package convert

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/light-bringer/roomrate-service/internal/app/currency/contracts"
	"github.com/light-bringer/roomrate-service/internal/app/currency/domain"
	"github.com/light-bringer/roomrate-service/internal/pkg/clock"
)

// Request asks for an amount in the native currency to be shown in another one.
type Request struct {
	Amount       decimal.Decimal
	CurrencyCode string
}

// Result is the converted amount. Converted is false when the amount was returned unchanged.
type Result struct {
	Amount       decimal.Decimal
	CurrencyCode string
	Converted    bool
	Rate         *domain.ExchangeRate
}

// Options configure conversion.
type Options struct {
	// BaseCurrency is the native currency prices are stored in. Requests for it skip the lookup.
	BaseCurrency string
	// OfficialRate selects ExchangeRate.OfficialRate instead of ExchangeRate.Rate.
	OfficialRate bool
	// Places is the number of decimal places kept; 0 yields whole units.
	Places int32
}

// Query converts priced amounts for display.
type Query struct {
	rates  contracts.RateStore
	clock  clock.Clock
	opts   Options
	logger *slog.Logger
}

// NewQuery creates a new convert query.
func NewQuery(rates contracts.RateStore, clk clock.Clock, opts Options, logger *slog.Logger) *Query {
	if logger == nil {
		logger = slog.Default()
	}
	return &Query{
		rates:  rates,
		clock:  clk,
		opts:   opts,
		logger: logger,
	}
}

// Execute converts req.Amount with the latest rate dated today or earlier.
// A missing or malformed rate degrades to the unconverted amount; only context errors are returned.
func (q *Query) Execute(ctx context.Context, req *Request) (*Result, error) {
	unchanged := &Result{
		Amount:       req.Amount.Truncate(q.opts.Places),
		CurrencyCode: q.opts.BaseCurrency,
	}

	code, err := domain.NormalizeCode(req.CurrencyCode)
	if err != nil {
		q.logger.Warn("conversion skipped", "currency", req.CurrencyCode, "error", err)
		return unchanged, nil
	}
	if code == q.opts.BaseCurrency {
		return unchanged, nil
	}

	today := civil.DateOf(q.clock.Now())
	rate, err := q.rates.LatestRate(ctx, code, today)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		level := slog.LevelError
		if errors.Is(err, domain.ErrRateNotFound) {
			level = slog.LevelWarn
		}
		q.logger.Log(ctx, level, "conversion skipped", "currency", code, "day", today.String(), "error", err)
		return unchanged, nil
	}

	amount, err := rate.Convert(req.Amount, q.opts.OfficialRate, q.opts.Places)
	if err != nil {
		q.logger.Warn("conversion skipped", "currency", code, "error", err)
		return unchanged, nil
	}

	return &Result{
		Amount:       amount,
		CurrencyCode: code,
		Converted:    true,
		Rate:         rate,
	}, nil
}
