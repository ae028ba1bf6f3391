package get_price_discount

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/light-bringer/roomrate-service/internal/app/pricing/contracts"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/domain"
	"github.com/light-bringer/roomrate-service/internal/pkg/metrics"
)

const name = "get_price_discount"

// Request asks for the discounted totals of a stay.
type Request struct {
	RoomID string
	Stay   domain.Stay
	Guests int
}

// Result carries one total per stacking policy, in policy order.
type Result struct {
	RoomID       string               `json:"room_id"`
	Stay         domain.Stay          `json:"stay"`
	Guests       int                  `json:"guests"`
	Available    bool                 `json:"available"`
	Reason       string               `json:"reason,omitempty"`
	SettlementID string               `json:"settlement_id,omitempty"`
	Capacity     int                  `json:"capacity,omitempty"`
	Base         *domain.Money        `json:"base,omitempty"`
	Policies     []domain.PolicyQuote `json:"policies,omitempty"`
}

// Total returns the total of the named policy.
func (r *Result) Total(p domain.Policy) (*domain.Money, bool) {
	for _, pq := range r.Policies {
		if pq.Policy == p {
			return pq.Total, true
		}
	}
	return nil, false
}

// Query handles discount resolution.
type Query struct {
	store   contracts.PriceStore
	calc    *domain.PricingCalculator
	variant []string
	cache   contracts.QuoteCache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewQuery creates a new get price discount query. cache and m may be nil.
func NewQuery(
	store contracts.PriceStore,
	calc *domain.PricingCalculator,
	cache contracts.QuoteCache,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Query {
	if calc == nil {
		calc = domain.NewPricingCalculator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Query{
		store:   store,
		calc:    calc,
		variant: contracts.PolicyVariant(calc.Policies()),
		cache:   cache,
		metrics: m,
		logger:  logger,
	}
}

// Execute prices the stay under every configured policy.
func (q *Query) Execute(ctx context.Context, req *Request) (res *Result, err error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		q.metrics.ObserveQuote(name, outcome(res, err), time.Since(start))
	}()

	key := contracts.QuoteKey(name, req.RoomID, req.Stay, req.Guests, q.variant...)
	if cached, ok := q.fromCache(ctx, key); ok {
		return cached, nil
	}

	res, err = q.compute(ctx, req)
	if err != nil {
		return nil, err
	}

	if res.Available {
		attrs := []any{"room_id", req.RoomID, "stay", req.Stay.String(), "guests", req.Guests, "base", res.Base.String()}
		for _, pq := range res.Policies {
			attrs = append(attrs, string(pq.Policy), pq.Total.String())
		}
		q.logger.Debug("discounted price computed", attrs...)
	} else {
		q.logger.Info("discounted price unavailable",
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
	// Skip the discount read when the calendar already has a hole.
	if len(prices) < req.Stay.Len() {
		res.Reason = domain.ErrIncompleteCalendar.Error()
		return res, nil
	}

	discounts, err := q.store.DiscountsFor(ctx, req.RoomID, req.Stay)
	if err != nil {
		return nil, fmt.Errorf("failed to load discounts: %w", err)
	}

	quote, err := q.calc.Quote(domain.QuoteInput{
		Stay:       req.Stay,
		Settlement: stl,
		Prices:     prices,
		Discounts:  discounts,
	})
	if domain.IsUnavailable(err) {
		res.Reason = err.Error()
		return res, nil
	}
	if err != nil {
		return nil, err
	}

	res.Available = true
	res.Base = quote.Base
	res.Policies = quote.Policies
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
