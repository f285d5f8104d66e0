package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	s3blob "github.com/swipebet/swipebet/internal/blob/s3"
	"github.com/swipebet/swipebet/internal/cache/redis"
	"github.com/swipebet/swipebet/internal/config"
	"github.com/swipebet/swipebet/internal/domain"
	"github.com/swipebet/swipebet/internal/feed"
	"github.com/swipebet/swipebet/internal/metrics"
	"github.com/swipebet/swipebet/internal/notify"
	"github.com/swipebet/swipebet/internal/pipeline"
	"github.com/swipebet/swipebet/internal/platform/kalshi"
	"github.com/swipebet/swipebet/internal/platform/pond"
	"github.com/swipebet/swipebet/internal/server/ws"
	"github.com/swipebet/swipebet/internal/service"
	"github.com/swipebet/swipebet/internal/swipe"
)

// Dependencies bundles everything the application modes need. Optional
// components (Redis, S3, swipe tracking, pond) are nil when disabled.
type Dependencies struct {
	Metrics *metrics.FeedMetrics
	Store   *feed.Store
	Tokens  *feed.TokenCache
	Tracker *swipe.Tracker
	Service *service.FeedService

	Hub         *ws.Hub
	Archiver    *pipeline.Archiver
	RateLimiter domain.RateLimiter
	Notifier    *notify.Notifier
}

// Wire constructs all concrete dependencies from the configuration and
// returns them with a cleanup function releasing resources on shutdown.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Metrics: metrics.New(),
	}

	// Exchange listing client.
	kalshiClient := kalshi.NewClient(cfg.Kalshi.BaseURL)
	if cfg.Kalshi.ApiKey != "" {
		pem, err := os.ReadFile(cfg.Kalshi.RsaPrivateKeyPath)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: read kalshi key: %w", err)
		}
		if err := kalshiClient.SetAPIKey(cfg.Kalshi.ApiKey, pem); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: kalshi key: %w", err)
		}
	}
	kalshiSource := feed.NewKalshiSource(kalshiClient)

	// Market cache store.
	deps.Store = feed.NewStore(feed.StoreConfig{
		TTL:              cfg.Feed.TTL.Duration,
		ColdStartTimeout: cfg.Feed.ColdStartTimeout.Duration,
		PageSize:         cfg.Feed.PageSize,
		MaxPages:         cfg.Feed.MaxPages,
		MaxRetries:       cfg.Feed.MaxRetries,
		BackoffBase:      cfg.Feed.BackoffBase.Duration,
		PagesPerSecond:   cfg.Feed.PagesPerSecond,
		Diversify: feed.DiversifyOptions{
			Strict:          true,
			MinVolume:       cfg.Feed.MinVolume,
			EventCooldown:   cfg.Feed.EventCooldown,
			EventMinSpacing: cfg.Feed.EventMinSpacing,
		},
	}, kalshiSource, deps.Metrics, logger)
	deps.Store.SetFallback(kalshiSource)

	// Settlement metadata + token resolution.
	if cfg.Pond.Enabled {
		pondSource := feed.NewPondSource(pond.NewClient(cfg.Pond.BaseURL, cfg.Pond.ApiKey))
		deps.Store.SetSettlementSource(pondSource)
		deps.Tokens = feed.NewTokenCache(feed.TokenCacheConfig{
			TTL:         cfg.Tokens.TTL.Duration,
			MaxAttempts: cfg.Tokens.MaxAttempts,
			BackoffBase: cfg.Tokens.BackoffBase.Duration,
		}, pondSource, deps.Metrics, logger)
	}

	// Redis: warm-start snapshots and API rate limiting.
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

		deps.Store.SetSnapshotStore(redis.NewSnapshotStore(redisClient, cfg.Redis.SnapshotTTL.Duration))
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
	}

	// S3: snapshot archival.
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

		sink := s3blob.NewSnapshotArchiver(s3blob.NewWriter(s3Client), cfg.S3.Prefix)
		deps.Archiver = pipeline.NewArchiver(sink, logger)
		deps.Store.Subscribe(deps.Archiver.Enqueue)
	}

	// Operator alerts.
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) > 0 {
		deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, cfg.Notify.Cooldown.Duration, logger)
		deps.Store.SetAlerter(deps.Notifier)
		if deps.Tokens != nil {
			deps.Tokens.SetAlerter(deps.Notifier)
		}
	}

	// WebSocket hub pushes generation changes to clients.
	deps.Hub = ws.NewHub(logger)
	deps.Store.Subscribe(func(snap domain.FeedSnapshot) {
		deps.Hub.BroadcastRefresh(snap.CacheTimestamp, len(snap.Markets))
	})

	// Swipe history.
	if cfg.Swipes.Enabled {
		deps.Tracker = swipe.NewTracker(swipe.TrackerConfig{
			SwipesBeforeReturn: cfg.Swipes.SwipesBeforeReturn,
			ClientTTL:          cfg.Swipes.ClientTTL.Duration,
		})
	}

	// Read gateway.
	deps.Service = service.NewFeedService(deps.Store, deps.Tokens, logger)
	if deps.Tracker != nil {
		deps.Service.SetSwipeHistory(deps.Tracker)
	}

	return deps, cleanup, nil
}

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 15 * time.Second
