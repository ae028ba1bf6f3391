// Package config loads service settings from an optional YAML file, a local .env file
// and ROOMRATE_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreMemory  = "memory"
	StoreSQLite  = "sqlite"
	StoreSpanner = "spanner"
)

// Cache drivers.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	App struct {
		Env string
	} `mapstructure:"app"`

	Log struct {
		Level string
	} `mapstructure:"log"`

	Store struct {
		Driver     string
		SQLitePath string `mapstructure:"sqlite_path"`
	} `mapstructure:"store"`

	Spanner struct {
		Database string
	} `mapstructure:"spanner"`

	GRPC struct {
		Port int
	} `mapstructure:"grpc"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Cache struct {
		Driver string
		TTL    time.Duration
	} `mapstructure:"cache"`

	Redis struct {
		Addr     string
		Password string
		DB       int
	} `mapstructure:"redis"`

	Currency struct {
		Base         string
		OfficialRate bool  `mapstructure:"official_rate"`
		Places       int32 `mapstructure:"places"`
	} `mapstructure:"currency"`
}

var defaults = map[string]any{
	"app.env":                "dev",
	"log.level":              "info",
	"store.driver":           StoreSQLite,
	"store.sqlite_path":      "./data/roomrate.db",
	"spanner.database":       "projects/test-project/instances/dev-instance/databases/roomrate-db",
	"grpc.port":              50051,
	"http.addr":              ":8080",
	"metrics.enabled":        true,
	"cache.driver":           CacheNone,
	"cache.ttl":              "5m",
	"redis.addr":             "localhost:6379",
	"redis.password":         "",
	"redis.db":               0,
	"currency.base":          "RUB",
	"currency.official_rate": false,
	"currency.places":        0,
}

// Load reads path when it is not empty. A .env file in the working directory is applied
// to the process environment first; variables already set win.
func Load(path string) (Config, error) {
	var c Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return c, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("ROOMRATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("failed to decode config: %w", err)
	}
	return c, c.Validate()
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory, StoreSQLite, StoreSpanner:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Cache.Driver {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}
	if c.Cache.Driver != CacheNone && c.Cache.TTL <= 0 {
		return errors.New("cache.ttl must be positive")
	}
	if c.Currency.Places < 0 {
		return errors.New("currency.places cannot be negative")
	}
	return nil
}
