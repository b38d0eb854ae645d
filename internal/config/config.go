// Package config defines the top-level configuration for the sneaky scanner
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by SNEAKY_* environment variables.
type Config struct {
	Data     DataConfig             `toml:"data"`
	Venues   map[string]VenueConfig `toml:"venues"`
	Fees     map[string]FeeConfig   `toml:"fees"`
	Strategy StrategyConfig         `toml:"strategy"`
	FX       FXConfig               `toml:"fx"`
	Postgres PostgresConfig         `toml:"postgres"`
	Redis    RedisConfig            `toml:"redis"`
	S3       S3Config               `toml:"s3"`
	Notify   NotifyConfig           `toml:"notify"`
	Mode     string                 `toml:"mode"`
	LogLevel string                 `toml:"log_level"`
}

// DataConfig holds local filesystem locations.
type DataConfig struct {
	// SnapshotDir contains the per-venue catalog documents written by the
	// fetch layer, one <venue>.json per venue.
	SnapshotDir string `toml:"snapshot_dir"`
	// TimeseriesDir is the root of the per-(style, size) history store.
	TimeseriesDir string `toml:"timeseries_dir"`
}

// VenueConfig describes one marketplace.
type VenueConfig struct {
	// SizeSystem is "us" or "eu"; eu venues go through brand/gender chart
	// inference before matching.
	SizeSystem string `toml:"size_system"`
	Currency   string `toml:"currency"`
	SellSide   bool   `toml:"sell_side"`
	Snapshot   string `toml:"snapshot"`
}

// FeeConfig holds one venue's fee constants. Percentages are of the sale
// price; fixed fees are in the venue's own currency.
type FeeConfig struct {
	CommissionPercent  float64 `toml:"commission_percent"`
	TechServicePercent float64 `toml:"tech_service_percent"`
	TransferPercent    float64 `toml:"transfer_percent"`
	FixedSellFees      float64 `toml:"fixed_sell_fees"`
	FixedBuyFee        float64 `toml:"fixed_buy_fee"`
	Tick               float64 `toml:"tick"`
}

// StrategyConfig selects venues, scorer, and pipeline parallelism.
type StrategyConfig struct {
	BuyVenue   string   `toml:"buy_venue"`
	SellVenues []string `toml:"sell_venues"`
	Scorer     string   `toml:"scorer"`
	// Concurrency bounds the number of pairs priced in parallel.
	Concurrency int `toml:"concurrency"`
	// TopN is how many ranked items are reported and notified.
	TopN int `toml:"top_n"`
}

// FXConfig holds currency conversion parameters.
type FXConfig struct {
	// StaticRates maps "FROM/TO" pairs to fixed multipliers, used when no
	// live source is wired. Example: { "CNY/USD" = 0.14 }.
	StaticRates map[string]float64 `toml:"static_rates"`
	// CacheTTLMinutes controls how long fetched rates live in Redis.
	CacheTTLMinutes int `toml:"cache_ttl_minutes"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
	// Enabled gates result persistence; scans run fine without a database.
	Enabled bool `toml:"enabled"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
	Enabled    bool   `toml:"enabled"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	Enabled        bool   `toml:"enabled"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string `toml:"telegram_token"`
	TelegramChatID    string `toml:"telegram_chat_id"`
	DiscordWebhookURL string `toml:"discord_webhook_url"`
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Data: DataConfig{
			SnapshotDir:   "data/snapshots",
			TimeseriesDir: "data/timeseries",
		},
		Venues: map[string]VenueConfig{
			"stockx":     {SizeSystem: "us", Currency: "USD", Snapshot: "stockx.json"},
			"du":         {SizeSystem: "eu", Currency: "CNY", SellSide: true, Snapshot: "du.json"},
			"flightclub": {SizeSystem: "us", Currency: "USD", SellSide: true, Snapshot: "flightclub.json"},
		},
		Fees: map[string]FeeConfig{
			"stockx":     {FixedBuyFee: 13.95},
			"du":         {TechServicePercent: 5.0, TransferPercent: 1.0, CommissionPercent: 1.0, FixedSellFees: 33.0, Tick: 1.0},
			"flightclub": {CommissionPercent: 20.0, FixedSellFees: 5.0, Tick: 1.0},
		},
		Strategy: StrategyConfig{
			BuyVenue:    "stockx",
			SellVenues:  []string{"du", "flightclub"},
			Scorer:      "multi",
			Concurrency: 8,
			TopN:        20,
		},
		FX: FXConfig{
			StaticRates:     map[string]float64{"CNY/USD": 0.14},
			CacheTTLMinutes: 60,
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "sneaky",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
			Enabled:       false,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			Enabled:    false,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "sneaky-data",
			UseSSL:         false,
			ForcePathStyle: true,
			Enabled:        false,
		},
		Mode:     "scan",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":    true,
	"archive": true,
	"report":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, archive, report)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Data
	if c.Data.SnapshotDir == "" {
		errs = append(errs, "data: snapshot_dir must not be empty")
	}
	if c.Data.TimeseriesDir == "" {
		errs = append(errs, "data: timeseries_dir must not be empty")
	}

	// Venues
	if len(c.Venues) == 0 {
		errs = append(errs, "venues: at least one venue must be configured")
	}
	for name, v := range c.Venues {
		if v.SizeSystem != "us" && v.SizeSystem != "eu" {
			errs = append(errs, fmt.Sprintf("venues.%s: size_system must be \"us\" or \"eu\", got %q", name, v.SizeSystem))
		}
		if v.Currency == "" {
			errs = append(errs, fmt.Sprintf("venues.%s: currency must not be empty", name))
		}
		if v.Snapshot == "" {
			errs = append(errs, fmt.Sprintf("venues.%s: snapshot must not be empty", name))
		}
		if _, ok := c.Fees[name]; !ok {
			errs = append(errs, fmt.Sprintf("fees: missing fee schedule for venue %q", name))
		}
	}

	// Strategy
	if _, ok := c.Venues[c.Strategy.BuyVenue]; !ok {
		errs = append(errs, fmt.Sprintf("strategy: buy_venue %q is not a configured venue", c.Strategy.BuyVenue))
	}
	if len(c.Strategy.SellVenues) == 0 {
		errs = append(errs, "strategy: sell_venues must not be empty")
	}
	for _, name := range c.Strategy.SellVenues {
		v, ok := c.Venues[name]
		if !ok {
			errs = append(errs, fmt.Sprintf("strategy: sell venue %q is not a configured venue", name))
			continue
		}
		if !v.SellSide {
			errs = append(errs, fmt.Sprintf("strategy: venue %q is not marked sell_side", name))
		}
	}
	if c.Strategy.Scorer != "naive" && c.Strategy.Scorer != "multi" {
		errs = append(errs, fmt.Sprintf("strategy: scorer must be \"naive\" or \"multi\", got %q", c.Strategy.Scorer))
	}
	if c.Strategy.Concurrency < 1 {
		errs = append(errs, "strategy: concurrency must be >= 1")
	}
	if c.Strategy.TopN < 1 {
		errs = append(errs, "strategy: top_n must be >= 1")
	}

	// Postgres
	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
	}

	// FX
	if c.FX.CacheTTLMinutes < 0 {
		errs = append(errs, "fx: cache_ttl_minutes must be >= 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
