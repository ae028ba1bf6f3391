package get_price

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/light-bringer/roomrate-service/internal/app/pricing/contracts"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/domain"
	"github.com/light-bringer/roomrate-service/internal/pkg/metrics"
)

const name = "get_price"

// Request asks for the undiscounted price of a stay.
type Request struct {
	RoomID string
	Stay   domain.Stay
	Guests int
}

// Result is the base price of the stay. Available is false when the room cannot host
// the guests or a night has no price; Reason then says why.
type Result struct {
	RoomID         string        `json:"room_id"`
	Stay           domain.Stay   `json:"stay"`
	Guests         int           `json:"guests"`
	Available      bool          `json:"available"`
	Reason         string        `json:"reason,omitempty"`
	SettlementID   string        `json:"settlement_id,omitempty"`
	Capacity       int           `json:"capacity,omitempty"`
	Total          *domain.Money `json:"total,omitempty"`
	AverageNightly *domain.Money `json:"average_nightly,omitempty"`
}

// Query handles the base price lookup.
type Query struct {
	store   contracts.PriceStore
	calc    *domain.PricingCalculator
	cache   contracts.QuoteCache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewQuery creates a new get price query. cache and m may be nil.
func NewQuery(store contracts.PriceStore, cache contracts.QuoteCache, m *metrics.Metrics, logger *slog.Logger) *Query {
	if logger == nil {
		logger = slog.Default()
	}
	return &Query{
		store:   store,
		calc:    domain.NewPricingCalculator(),
		cache:   cache,
		metrics: m,
		logger:  logger,
	}
}

// Execute sums the base prices of every night of the stay for the smallest settlement
// variant that fits the guests.
func (q *Query) Execute(ctx context.Context, req *Request) (res *Result, err error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		q.metrics.ObserveQuote(name, outcome(res, err), time.Since(start))
	}()

	key := contracts.QuoteKey(name, req.RoomID, req.Stay, req.Guests)
	if cached, ok := q.fromCache(ctx, key); ok {
		return cached, nil
	}

	res, err = q.compute(ctx, req)
	if err != nil {
		return nil, err
	}

	if res.Available {
		q.logger.Debug("base price computed",
			"room_id", req.RoomID, "stay", req.Stay.String(), "guests", req.Guests, "total", res.Total.String())
	} else {
		q.logger.Info("base price unavailable",
			"room_id", req.RoomID, "stay", req.Stay.String(), "guests", req.Guests, "reason", res.Reason)
	}

	q.toCache(ctx, key, res)
	return res, nil
}

func (q *Query) compute(ctx context.Context, req *Request) (*Result, error) {
	res := &Result{RoomID: req.RoomID, Stay: req.Stay, Guests: req.Guests}

	variants, err := q.store.SettlementVariantsFor(ctx, req.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settlement variants: %w", err)
	}
	if len(variants) == 0 {
		res.Reason = fmt.Errorf("%w: %s", domain.ErrRoomNotFound, req.RoomID).Error()
		return res, nil
	}

	stl, err := domain.ResolveSettlement(variants, req.Guests)
	if domain.IsUnavailable(err) {
		res.Reason = err.Error()
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	res.SettlementID = stl.ID
	res.Capacity = stl.Capacity

	prices, err := q.store.BasePricesFor(ctx, stl.ID, req.Stay)
	if err != nil {
		return nil, fmt.Errorf("failed to load base prices: %w", err)
	}

	total, err := q.calc.BaseTotal(req.Stay, prices)
	if domain.IsUnavailable(err) {
		res.Reason = err.Error()
		return res, nil
	}
	if err != nil {
		return nil, err
	}

	res.Available = true
	res.Total = total
	res.AverageNightly, _ = total.Divide(domain.MoneyFromInt(int64(req.Stay.Len())))
	return res, nil
}

func (q *Query) fromCache(ctx context.Context, key string) (*Result, bool) {
	if q.cache == nil {
		return nil, false
	}
	var res Result
	found, err := q.cache.Get(ctx, key, &res)
	if err != nil {
		q.logger.Warn("quote cache read failed", "key", key, "error", err)
		return nil, false
	}
	q.metrics.CacheLookup(found)
	return &res, found
}

func (q *Query) toCache(ctx context.Context, key string, res *Result) {
	if q.cache == nil {
		return
	}
	if err := q.cache.Set(ctx, key, res); err != nil {
		q.logger.Warn("quote cache write failed", "key", key, "error", err)
	}
}

func validate(req *Request) error {
	if req.RoomID == "" {
		return domain.ErrEmptyRoomID
	}
	if req.Guests < 1 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidGuests, req.Guests)
	}
	if req.Stay.Len() < 1 {
		return domain.ErrInvalidStay
	}
	return nil
}

func outcome(res *Result, err error) string {
	switch {
	case err != nil:
		return metrics.OutcomeError
	case !res.Available:
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeOK
	}
}
