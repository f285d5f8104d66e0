// Package pipeline runs the background loops: periodic cache refresh, cache
// pruning, and snapshot archival.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/swipebet/swipebet/internal/feed"
	"github.com/swipebet/swipebet/internal/swipe"
)

// Refresher keeps the market cache warm ahead of TTL expiry and prunes the
// token cache and swipe histories. A failed refresh is logged and retried on
// the next tick; readers keep being served from the previous generation.
type Refresher struct {
	store         *feed.Store
	tokens        *feed.TokenCache
	tracker       *swipe.Tracker
	interval      time.Duration
	pruneInterval time.Duration
	logger        *slog.Logger
}

// NewRefresher creates a Refresher. tokens and tracker may be nil.
func NewRefresher(store *feed.Store, tokens *feed.TokenCache, tracker *swipe.Tracker, interval time.Duration, logger *slog.Logger) *Refresher {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Refresher{
		store:         store,
		tokens:        tokens,
		tracker:       tracker,
		interval:      interval,
		pruneInterval: time.Hour,
		logger:        logger.With(slog.String("component", "refresher")),
	}
}

// Run loops until the context is cancelled. The first refresh fires
// immediately so a fresh process does not wait a full interval.
func (r *Refresher) Run(ctx context.Context) error {
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	prune := time.NewTicker(r.pruneInterval)
	defer prune.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.refresh(ctx)
		case <-prune.C:
			r.prune()
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	if err := r.store.Refresh(ctx); err != nil {
		r.logger.Error("scheduled refresh failed",
			slog.String("error", err.Error()),
		)
	}
}

func (r *Refresher) prune() {
	if r.tokens != nil {
		// Expired entries stay usable as a stale fallback for two hours,
		// then get dropped outright.
		if n := r.tokens.Prune(2 * time.Hour); n > 0 {
			r.logger.Info("pruned token cache", slog.Int("removed", n))
		}
	}
	if r.tracker != nil {
		if n := r.tracker.Prune(); n > 0 {
			r.logger.Info("pruned swipe histories", slog.Int("removed", n))
		}
	}
}
