package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/swipebet/swipebet/internal/domain"
	"github.com/swipebet/swipebet/internal/metrics"
)

// TokenFetcher resolves on-chain token metadata for one market. Satisfied by
// pond.Client via PondSource.
type TokenFetcher interface {
	FetchTokens(ctx context.Context, marketID string) (domain.MarketTokenInfo, error)
}

// TokenCacheConfig tunes the token cache. Zero fields take defaults.
type TokenCacheConfig struct {
	TTL         time.Duration
	MaxAttempts int
	BackoffBase time.Duration
}

func (c *TokenCacheConfig) withDefaults() {
	if c.TTL <= 0 {
		c.TTL = 30 * time.Minute
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = 500 * time.Millisecond
	}
}

// TokenCache memoizes token lookups per market. Fresh entries are served
// from memory; misses and expired entries go upstream with bounded retries,
// and an expired entry is preferred over an error when upstream stays down.
type TokenCache struct {
	cfg     TokenCacheConfig
	fetcher TokenFetcher
	metrics *metrics.FeedMetrics
	logger  *slog.Logger
	alerter Alerter
	sleep   func(ctx context.Context, d time.Duration) error
	now     func() time.Time

	mu      sync.RWMutex
	entries map[string]domain.MarketTokenInfo
}

// NewTokenCache creates a TokenCache backed by fetcher.
func NewTokenCache(cfg TokenCacheConfig, fetcher TokenFetcher, m *metrics.FeedMetrics, logger *slog.Logger) *TokenCache {
	cfg.withDefaults()
	return &TokenCache{
		cfg:     cfg,
		fetcher: fetcher,
		metrics: m,
		logger:  logger.With(slog.String("component", "token_cache")),
		sleep:   sleepCtx,
		now:     time.Now,
		entries: make(map[string]domain.MarketTokenInfo),
	}
}

// SetAlerter installs the operator alert sink.
func (c *TokenCache) SetAlerter(a Alerter) { c.alerter = a }

// Get returns token info for marketID, from cache when fresh. A not-found
// from upstream is returned as-is and never cached; transient upstream
// failures fall back to an expired entry when one exists.
func (c *TokenCache) Get(ctx context.Context, marketID string) (domain.MarketTokenInfo, error) {
	c.mu.RLock()
	cached, ok := c.entries[marketID]
	c.mu.RUnlock()

	if ok && c.now().UnixMilli()-cached.CachedAt < c.cfg.TTL.Milliseconds() {
		c.metrics.TokenLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}

	info, err := c.fetch(ctx, marketID)
	if err == nil {
		info.CachedAt = c.now().UnixMilli()
		c.mu.Lock()
		c.entries[marketID] = info
		c.mu.Unlock()
		c.metrics.TokenLookups.WithLabelValues("miss").Inc()
		return info, nil
	}

	if ok && !errors.Is(err, domain.ErrNotFound) {
		age := time.Duration(c.now().UnixMilli()-cached.CachedAt) * time.Millisecond
		c.logger.Warn("serving expired token entry",
			slog.String("market_id", marketID),
			slog.Duration("age", age),
			slog.String("error", err.Error()),
		)
		c.metrics.TokenLookups.WithLabelValues("stale").Inc()
		c.alert("token_stale", "Token upstream unavailable",
			fmt.Sprintf("serving expired token entry for %s (age %s)", marketID, age))
		return cached, nil
	}

	c.metrics.TokenLookups.WithLabelValues("error").Inc()
	return domain.MarketTokenInfo{}, err
}

// fetch calls upstream with exponential backoff. Only server-side failures
// retry; not-found and bad requests surface immediately.
func (c *TokenCache) fetch(ctx context.Context, marketID string) (domain.MarketTokenInfo, error) {
	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.cfg.BackoffBase * (1 << (attempt - 1))
			if err := c.sleep(ctx, delay); err != nil {
				return domain.MarketTokenInfo{}, err
			}
		}

		info, err := c.fetcher.FetchTokens(ctx, marketID)
		if err == nil {
			return info, nil
		}
		if !errors.Is(err, domain.ErrUpstreamUnavailable) {
			return domain.MarketTokenInfo{}, err
		}
		lastErr = err
	}
	return domain.MarketTokenInfo{}, fmt.Errorf("feed: token fetch for %s: %w", marketID, lastErr)
}

func (c *TokenCache) alert(event, title, message string) {
	if c.alerter == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = c.alerter.Notify(ctx, event, title, message)
	}()
}

// Prune drops entries older than maxAge. Called periodically by the
// orchestrator to bound memory.
func (c *TokenCache) Prune(maxAge time.Duration) int {
	cutoff := c.now().Add(-maxAge).UnixMilli()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for id, e := range c.entries {
		if e.CachedAt < cutoff {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// Len reports how many entries are cached, fresh or not.
func (c *TokenCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
