package services

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/spanner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	curcontracts "github.com/light-bringer/roomrate-service/internal/app/currency/contracts"
	"github.com/light-bringer/roomrate-service/internal/app/currency/queries/convert"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/contracts"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/queries/get_price"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/queries/get_price_discount"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/repo"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/usecases/add_base_price"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/usecases/import_calendar"
	"github.com/light-bringer/roomrate-service/internal/config"
	"github.com/light-bringer/roomrate-service/internal/pkg/cache"
	"github.com/light-bringer/roomrate-service/internal/pkg/clock"
	"github.com/light-bringer/roomrate-service/internal/pkg/metrics"
	"github.com/light-bringer/roomrate-service/internal/transport/grpc/quote"
)

// Backend is a store serving the calendar and the exchange rates.
type Backend interface {
	contracts.Store
	curcontracts.RateStore
}

// ServiceOptions holds all dependencies for the application.
type ServiceOptions struct {
	Store    Backend
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	GetPrice         *get_price.Query
	GetPriceDiscount *get_price_discount.Query
	Convert          *convert.Query
	AddBasePrice     *add_base_price.Interactor
	ImportCalendar   *import_calendar.Interactor

	QuoteHandler *quote.Handler

	redis *cache.RedisCache
}

// NewServiceOptions creates and wires up all application dependencies.
func NewServiceOptions(ctx context.Context, cfg config.Config, logger *slog.Logger) (*ServiceOptions, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// 1. Storage backend
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	clk := clock.NewRealClock()
	opts := &ServiceOptions{Store: store}

	// 2. Quote cache
	var quoteCache contracts.QuoteCache
	switch cfg.Cache.Driver {
	case config.CacheMemory:
		quoteCache = cache.NewMemoryCache(clk, cfg.Cache.TTL)
	case config.CacheRedis:
		rc := cache.NewRedisCache(cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB), cfg.Cache.TTL)
		if err := rc.Ping(ctx); err != nil {
			// The queries treat cache failures as misses, so a down Redis only costs latency.
			logger.Warn("redis is unreachable", "addr", cfg.Redis.Addr, "error", err)
		}
		opts.redis = rc
		quoteCache = rc
	}

	// 3. Metrics
	if cfg.Metrics.Enabled {
		opts.Registry = prometheus.NewRegistry()
		opts.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts.Metrics = metrics.New(opts.Registry)
	}

	// 4. Queries and use cases
	opts.GetPrice = get_price.NewQuery(store, quoteCache, opts.Metrics, logger)
	opts.GetPriceDiscount = get_price_discount.NewQuery(store, nil, quoteCache, opts.Metrics, logger)
	opts.Convert = convert.NewQuery(store, clk, convert.Options{
		BaseCurrency: cfg.Currency.Base,
		OfficialRate: cfg.Currency.OfficialRate,
		Places:       cfg.Currency.Places,
	}, logger)
	opts.AddBasePrice = add_base_price.NewInteractor(store, logger)
	opts.ImportCalendar = import_calendar.NewInteractor(store, logger)

	// 5. gRPC handler
	opts.QuoteHandler = quote.NewHandler(opts.GetPrice, opts.GetPriceDiscount, opts.Convert, logger)

	return opts, nil
}

// OpenStore opens the backend selected by cfg.Store.Driver.
func OpenStore(ctx context.Context, cfg config.Config) (Backend, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		return repo.NewMemoryStore(), nil
	case config.StoreSQLite:
		store, err := repo.NewSQLiteStore(cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite store: %w", err)
		}
		return store, nil
	case config.StoreSpanner:
		client, err := spanner.NewClient(ctx, cfg.Spanner.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to create Spanner client: %w", err)
		}
		return repo.NewSpannerStore(client), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// Gatherer returns the metrics registry, or nil when metrics are disabled.
func (s *ServiceOptions) Gatherer() prometheus.Gatherer {
	if s.Registry == nil {
		return nil
	}
	return s.Registry
}

// Close closes all resources.
func (s *ServiceOptions) Close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.Store != nil {
		_ = s.Store.Close()
	}
}
