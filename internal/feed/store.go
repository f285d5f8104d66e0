// Package feed implements the market feed pipeline: the process-wide market
// cache with stale-while-revalidate refresh, the diversification engine, the
// token cache, and search over the cached pool.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/swipebet/swipebet/internal/domain"
	"github.com/swipebet/swipebet/internal/metrics"
)

// Alerter receives operator alerts from the pipeline. Satisfied by
// notify.Notifier.
type Alerter interface {
	Notify(ctx context.Context, event, title, message string) error
}

// StoreConfig tunes the market cache store. Zero fields take defaults.
type StoreConfig struct {
	// TTL is the cache generation lifetime. Expired generations are still
	// served while a background refresh runs.
	TTL time.Duration
	// ColdStartTimeout bounds how long a cold read waits for the first
	// refresh before falling back to snapshot/mock data.
	ColdStartTimeout time.Duration
	// PageSize and MaxPages bound one listing crawl.
	PageSize int
	MaxPages int
	// MaxRetries caps backoff retries after a 429 within one crawl.
	MaxRetries int
	// BackoffBase is the first backoff delay; doubled per attempt.
	BackoffBase time.Duration
	// PagesPerSecond paces the sequential page loop.
	PagesPerSecond float64
	// Diversify configures the strict ranking cached per generation.
	Diversify DiversifyOptions
}

func (c *StoreConfig) withDefaults() {
	if c.TTL <= 0 {
		c.TTL = 15 * time.Minute
	}
	if c.ColdStartTimeout <= 0 {
		c.ColdStartTimeout = 10 * time.Second
	}
	if c.PageSize <= 0 {
		c.PageSize = 200
	}
	if c.MaxPages <= 0 {
		c.MaxPages = 30
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	if c.PagesPerSecond <= 0 {
		c.PagesPerSecond = 10
	}
	if c.Diversify.EventCooldown == 0 {
		c.Diversify = DefaultDiversifyOptions(true)
	}
}

// Store is the process-wide market cache. Reads never block on upstream once
// a generation exists: expired data is served immediately while at most one
// background refresh pass runs. Generations are replaced wholesale; partial
// results only appear when every retry tier has been exhausted.
type Store struct {
	cfg        StoreConfig
	primary    ListingSource
	settlement ListingSource
	fallback   EventSource
	snapshots  domain.SnapshotStore
	alerter    Alerter
	limiter    *rate.Limiter
	metrics    *metrics.FeedMetrics
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error

	mu             sync.Mutex
	markets        []domain.Market
	ranked         []domain.Market
	relaxed        []domain.Market // computed on first browse read per generation
	cacheTimestamp int64
	refreshDone    chan struct{} // non-nil while a refresh pass is in flight

	subsMu sync.Mutex
	subs   []func(domain.FeedSnapshot)
}

// NewStore creates a Store reading from the given primary listing source.
func NewStore(cfg StoreConfig, primary ListingSource, m *metrics.FeedMetrics, logger *slog.Logger) *Store {
	cfg.withDefaults()
	return &Store{
		cfg:     cfg,
		primary: primary,
		limiter: rate.NewLimiter(rate.Limit(cfg.PagesPerSecond), 1),
		metrics: m,
		logger:  logger.With(slog.String("component", "feed_store")),
		sleep:   sleepCtx,
	}
}

// SetFallback installs the event-nested listing used when the primary yields
// zero markets.
func (s *Store) SetFallback(src EventSource) { s.fallback = src }

// SetSettlementSource installs the settlement-metadata listing merged over
// the primary crawl for initialization flags.
func (s *Store) SetSettlementSource(src ListingSource) { s.settlement = src }

// SetSnapshotStore installs the warm-start snapshot tier.
func (s *Store) SetSnapshotStore(ss domain.SnapshotStore) { s.snapshots = ss }

// SetAlerter installs the operator alert sink.
func (s *Store) SetAlerter(a Alerter) { s.alerter = a }

// Subscribe registers fn to run after each successful generation swap. Used
// by the websocket hub and the snapshot archiver.
func (s *Store) Subscribe(fn func(domain.FeedSnapshot)) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	s.subs = append(s.subs, fn)
}

// Feed returns the diversified ordering and the generation timestamp. Strict
// is the swipe feed; relaxed is the discovery browse. A populated cache is
// always served immediately, stale or not; only a fully cold store waits.
func (s *Store) Feed(ctx context.Context, strict bool) ([]domain.Market, int64) {
	if ms, ts, ok := s.cachedFeed(strict); ok {
		return ms, ts
	}
	return s.coldStart(ctx, strict)
}

// Pool returns the full normalized market set (pre-diversification) and the
// generation timestamp, for search and event lookups.
func (s *Store) Pool(ctx context.Context) ([]domain.Market, int64) {
	s.mu.Lock()
	if len(s.markets) > 0 {
		ms, ts := s.markets, s.cacheTimestamp
		stale := s.isStaleLocked()
		s.mu.Unlock()
		if stale {
			s.metrics.StaleServes.Inc()
			s.kickRefresh()
		}
		return ms, ts
	}
	s.mu.Unlock()

	ms, ts := s.coldStart(ctx, false)
	return ms, ts
}

// IsStale reports whether the current generation has outlived the TTL.
func (s *Store) IsStale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.markets) == 0 || s.isStaleLocked()
}

// isStaleLocked requires s.mu held.
func (s *Store) isStaleLocked() bool {
	return time.Now().UnixMilli()-s.cacheTimestamp > s.cfg.TTL.Milliseconds()
}

func (s *Store) cachedFeed(strict bool) ([]domain.Market, int64, bool) {
	s.mu.Lock()
	if len(s.markets) == 0 {
		s.mu.Unlock()
		return nil, 0, false
	}

	var out []domain.Market
	if strict {
		out = s.ranked
	} else {
		if s.relaxed == nil {
			opts := s.cfg.Diversify
			opts.Strict = false
			s.relaxed = Diversify(s.markets, opts)
		}
		out = s.relaxed
	}
	ts := s.cacheTimestamp
	stale := s.isStaleLocked()
	s.mu.Unlock()

	if stale {
		s.metrics.StaleServes.Inc()
		s.kickRefresh()
	}
	return out, ts, true
}

// coldStart handles the empty-cache read: start (or join) the first refresh,
// wait for it within the cold-start bound, then fall through the snapshot
// and mock tiers. The feed never errors and never comes back empty.
func (s *Store) coldStart(ctx context.Context, strict bool) ([]domain.Market, int64) {
	done, started := s.beginRefresh()
	if started {
		go s.runRefresh(done)
	}

	timer := time.NewTimer(s.cfg.ColdStartTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
	case <-ctx.Done():
	}

	if ms, ts, ok := s.cachedFeed(strict); ok {
		return ms, ts
	}

	if s.snapshots != nil {
		if snap, err := s.snapshots.Load(ctx); err == nil && len(snap.Markets) > 0 {
			s.logger.Info("warm-starting from snapshot",
				slog.Int("markets", len(snap.Markets)),
				slog.Int64("snapshot_ts", snap.CacheTimestamp),
			)
			s.installGeneration(snap.Markets, snap.CacheTimestamp, false)
			if ms, ts, ok := s.cachedFeed(strict); ok {
				return ms, ts
			}
		}
	}

	s.metrics.MockFallbacks.Inc()
	s.alert("mock_fallback", "Feed serving mock data",
		"cold start exhausted upstream, cache, and snapshot tiers")
	opts := s.cfg.Diversify
	opts.Strict = strict
	return Diversify(MockMarkets(), opts), 0
}

// Refresh runs one refresh pass, or waits for the in-flight pass when one is
// already running. Used by the background ticker loop and tests.
func (s *Store) Refresh(ctx context.Context) error {
	done, started := s.beginRefresh()
	if !started {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	defer s.endRefresh(done)
	return s.refreshPass(ctx)
}

// beginRefresh claims the single-flight slot. The returned channel closes
// when the pass (whoever runs it) finishes; started reports whether the
// caller owns the pass.
func (s *Store) beginRefresh() (chan struct{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refreshDone != nil {
		return s.refreshDone, false
	}
	s.refreshDone = make(chan struct{})
	return s.refreshDone, true
}

func (s *Store) endRefresh(done chan struct{}) {
	s.mu.Lock()
	s.refreshDone = nil
	s.mu.Unlock()
	close(done)
}

// kickRefresh starts a background refresh unless one is already in flight.
func (s *Store) kickRefresh() {
	done, started := s.beginRefresh()
	if !started {
		return
	}
	go s.runRefresh(done)
}

func (s *Store) runRefresh(done chan struct{}) {
	defer s.endRefresh(done)
	if err := s.refreshPass(context.Background()); err != nil {
		s.logger.Error("refresh failed", slog.String("error", err.Error()))
	}
}

// refreshPass crawls upstream, normalizes and merges the result, recomputes
// the strict ranking, and atomically swaps in the new generation. The old
// generation survives any failure.
func (s *Store) refreshPass(ctx context.Context) error {
	start := time.Now()

	markets := s.crawl(ctx, s.primary.Name(), s.primary.ListMarkets)

	if len(markets) == 0 && s.fallback != nil {
		s.logger.Warn("primary listing empty, crawling events",
			slog.String("fallback", s.fallback.Name()),
		)
		markets = s.crawl(ctx, s.fallback.Name(), s.fallback.ListEventMarkets)
	}

	if len(markets) == 0 {
		s.metrics.RefreshTotal.WithLabelValues("failure").Inc()
		s.alert("refresh_failed", "Feed refresh failed",
			"all listing sources returned zero markets")
		return fmt.Errorf("feed: refresh: no markets from any source: %w", domain.ErrUpstreamUnavailable)
	}

	markets = dedupeByID(markets)

	if s.settlement != nil {
		meta := s.crawl(ctx, s.settlement.Name(), s.settlement.ListMarkets)
		markets = mergeSettlement(markets, meta)
	}

	ts := time.Now().UnixMilli()
	s.installGeneration(markets, ts, true)

	s.metrics.RefreshTotal.WithLabelValues("success").Inc()
	s.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	s.metrics.CachedMarkets.Set(float64(len(markets)))

	s.logger.Info("cache generation swapped",
		slog.Int("markets", len(markets)),
		slog.Int64("cache_timestamp", ts),
		slog.Duration("duration", time.Since(start)),
	)

	return nil
}

// installGeneration swaps the cache contents. When publish is set the
// snapshot store and subscribers are informed (skipped when re-installing a
// loaded snapshot).
func (s *Store) installGeneration(markets []domain.Market, ts int64, publish bool) {
	stampPercentages(markets)
	ranked := Diversify(markets, s.cfg.Diversify)

	s.mu.Lock()
	s.markets = markets
	s.ranked = ranked
	s.relaxed = nil
	s.cacheTimestamp = ts
	s.mu.Unlock()

	if !publish {
		return
	}

	snap := domain.FeedSnapshot{Markets: markets, CacheTimestamp: ts}

	if s.snapshots != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.snapshots.Save(ctx, snap); err != nil {
				s.logger.Warn("snapshot save failed", slog.String("error", err.Error()))
			}
		}()
	}

	s.subsMu.Lock()
	subs := make([]func(domain.FeedSnapshot), len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()
	for _, fn := range subs {
		go fn(snap)
	}
}

// crawl pages through one listing source sequentially, pacing pages and
// backing off on 429. On retry exhaustion or a malformed page it returns
// whatever accumulated instead of failing the pass.
func (s *Store) crawl(
	ctx context.Context,
	name string,
	fetch func(ctx context.Context, limit int, cursor string) ([]domain.Market, string, error),
) []domain.Market {
	var out []domain.Market
	cursor := ""
	pages := 0
	attempt := 0

	for pages < s.cfg.MaxPages {
		if err := s.limiter.Wait(ctx); err != nil {
			break
		}

		batch, next, err := fetch(ctx, s.cfg.PageSize, cursor)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrRateLimited):
				s.metrics.UpstreamErrors.WithLabelValues(name, "rate_limited").Inc()
				if attempt >= s.cfg.MaxRetries {
					s.logger.Warn("crawl rate-limit retries exhausted",
						slog.String("source", name),
						slog.Int("accumulated", len(out)),
					)
					return out
				}
				delay := s.cfg.BackoffBase * (1 << attempt)
				attempt++
				if s.sleep(ctx, delay) != nil {
					return out
				}
				continue
			case errors.Is(err, domain.ErrMalformedRecord):
				s.metrics.UpstreamErrors.WithLabelValues(name, "malformed").Inc()
				s.logger.Warn("crawl aborted on unparseable page",
					slog.String("source", name),
					slog.Int("page", pages),
					slog.Int("accumulated", len(out)),
				)
				return out
			default:
				s.metrics.UpstreamErrors.WithLabelValues(name, "unavailable").Inc()
				s.logger.Warn("crawl stopped on upstream error",
					slog.String("source", name),
					slog.String("error", err.Error()),
					slog.Int("accumulated", len(out)),
				)
				return out
			}
		}

		attempt = 0
		out = append(out, batch...)
		pages++

		if next == "" || len(batch) == 0 {
			break
		}
		cursor = next
	}

	return out
}

// mergeSettlement overlays settlement metadata onto the primary crawl:
// existing ids gain the initialization flag, unseen ids join the pool.
func mergeSettlement(markets, meta []domain.Market) []domain.Market {
	index := make(map[string]int, len(markets))
	for i := range markets {
		index[markets[i].ID] = i
	}

	for _, m := range meta {
		if i, ok := index[m.ID]; ok {
			if m.IsInitialized != nil {
				markets[i].IsInitialized = m.IsInitialized
			}
			continue
		}
		index[m.ID] = len(markets)
		markets = append(markets, m)
	}
	return markets
}

func (s *Store) alert(event, title, message string) {
	if s.alerter == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.alerter.Notify(ctx, event, title, message)
	}()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
