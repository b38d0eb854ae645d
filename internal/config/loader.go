package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SNEAKY_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SNEAKY_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Data ──
	setStr(&cfg.Data.SnapshotDir, "SNEAKY_DATA_SNAPSHOT_DIR")
	setStr(&cfg.Data.TimeseriesDir, "SNEAKY_DATA_TIMESERIES_DIR")

	// ── Strategy ──
	setStr(&cfg.Strategy.BuyVenue, "SNEAKY_STRATEGY_BUY_VENUE")
	setStringSlice(&cfg.Strategy.SellVenues, "SNEAKY_STRATEGY_SELL_VENUES")
	setStr(&cfg.Strategy.Scorer, "SNEAKY_STRATEGY_SCORER")
	setInt(&cfg.Strategy.Concurrency, "SNEAKY_STRATEGY_CONCURRENCY")
	setInt(&cfg.Strategy.TopN, "SNEAKY_STRATEGY_TOP_N")

	// ── FX ──
	setInt(&cfg.FX.CacheTTLMinutes, "SNEAKY_FX_CACHE_TTL_MINUTES")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "SNEAKY_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "SNEAKY_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "SNEAKY_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "SNEAKY_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "SNEAKY_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "SNEAKY_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "SNEAKY_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "SNEAKY_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "SNEAKY_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "SNEAKY_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "SNEAKY_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "SNEAKY_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "SNEAKY_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SNEAKY_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SNEAKY_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SNEAKY_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SNEAKY_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SNEAKY_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "SNEAKY_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "SNEAKY_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SNEAKY_S3_REGION")
	setStr(&cfg.S3.Bucket, "SNEAKY_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SNEAKY_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SNEAKY_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SNEAKY_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SNEAKY_S3_FORCE_PATH_STYLE")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "SNEAKY_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SNEAKY_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SNEAKY_NOTIFY_DISCORD_WEBHOOK_URL")

	// ── Top-level ──
	setStr(&cfg.Mode, "SNEAKY_MODE")
	setStr(&cfg.LogLevel, "SNEAKY_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
