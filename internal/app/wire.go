package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	s3blob "github.com/zhehaowang/sneaky/internal/blob/s3"
	"github.com/zhehaowang/sneaky/internal/cache/redis"
	"github.com/zhehaowang/sneaky/internal/config"
	"github.com/zhehaowang/sneaky/internal/domain"
	"github.com/zhehaowang/sneaky/internal/fees"
	"github.com/zhehaowang/sneaky/internal/fx"
	"github.com/zhehaowang/sneaky/internal/margin"
	"github.com/zhehaowang/sneaky/internal/match"
	"github.com/zhehaowang/sneaky/internal/notify"
	"github.com/zhehaowang/sneaky/internal/pipeline"
	"github.com/zhehaowang/sneaky/internal/score"
	"github.com/zhehaowang/sneaky/internal/size"
	"github.com/zhehaowang/sneaky/internal/snapshot"
	"github.com/zhehaowang/sneaky/internal/store/postgres"
	"github.com/zhehaowang/sneaky/internal/timeseries"
)

// Dependencies bundles everything the application modes need to operate. It
// is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Traits   map[domain.Venue]domain.VenueTraits
	Loader   *snapshot.Loader
	Series   *timeseries.Store
	Pipeline *pipeline.Pipeline

	// Results is nil when postgres is disabled; scans still run.
	Results domain.ResultStore

	// Archiver is nil when s3 is disabled.
	Archiver *s3blob.Archiver

	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Venue traits and fee schedule from config ---
	deps.Traits = make(map[domain.Venue]domain.VenueTraits, len(cfg.Venues))
	venueFees := make(map[domain.Venue]fees.VenueFees, len(cfg.Fees))
	for name, v := range cfg.Venues {
		venue := domain.Venue(name)
		deps.Traits[venue] = domain.VenueTraits{
			Venue:      venue,
			SizeSystem: v.SizeSystem,
			Currency:   v.Currency,
			SellSide:   v.SellSide,
		}
		f := cfg.Fees[name]
		venueFees[venue] = fees.VenueFees{
			CommissionPercent:  f.CommissionPercent,
			TechServicePercent: f.TechServicePercent,
			TransferPercent:    f.TransferPercent,
			FixedSellFees:      f.FixedSellFees,
			FixedBuyFee:        f.FixedBuyFee,
			Currency:           v.Currency,
			Tick:               f.Tick,
		}
	}

	// --- FX chain: static source, optional Redis cache, per-run memo ---
	var fxSource domain.FXSource = fx.Static(cfg.FX.StaticRates)
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		ttl := time.Duration(cfg.FX.CacheTTLMinutes) * time.Minute
		fxSource = fx.NewCached(fxSource, redis.NewRateCache(redisClient, ttl))
	}
	schedule := fees.NewSchedule(venueFees, fx.NewMemo(fxSource))

	// --- PostgreSQL (optional result persistence) ---
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}
		deps.Results = postgres.NewResultStore(pgClient.Pool())
	}

	// --- Local stores ---
	deps.Series = timeseries.NewStore(cfg.Data.TimeseriesDir, logger)
	deps.Loader = snapshot.NewLoader(deps.Traits, logger)

	// --- S3 blob storage (optional archival) ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client), deps.Series)
	}

	// --- Scan stages ---
	buyVenue := domain.Venue(cfg.Strategy.BuyVenue)
	sellVenues := make([]domain.Venue, len(cfg.Strategy.SellVenues))
	for i, name := range cfg.Strategy.SellVenues {
		sellVenues[i] = domain.Venue(name)
	}

	conv := size.NewConverter(size.DefaultCharts(), logger)
	matcher := match.NewMatcher(conv, deps.Traits, logger)
	engine := margin.NewEngine(buyVenue, sellVenues, schedule, logger)

	registry := score.NewRegistry()
	registry.Register(score.NewNaive())
	registry.Register(score.NewMulti(score.DefaultMultiConfig(), deps.Series, buyVenue, logger))
	scorer, err := registry.Get(cfg.Strategy.Scorer)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: %w", err)
	}

	deps.Pipeline = pipeline.New(
		matcher, engine, scorer,
		deps.Series, deps.Results,
		cfg.Strategy.Concurrency, logger,
	)

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, logger)

	return deps, cleanup, nil
}
