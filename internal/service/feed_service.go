// Package service holds the application services between the HTTP surface
// and the feed pipeline.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/swipebet/swipebet/internal/domain"
	"github.com/swipebet/swipebet/internal/feed"
)

const (
	// DefaultFeedLimit is the page size when the client sends none.
	DefaultFeedLimit = 50
	// MaxFeedLimit caps any requested page size.
	MaxFeedLimit = 500
)

// SwipeHistory yields the per-client exclusion set scoped to one cache
// generation. Satisfied by swipe.Tracker.
type SwipeHistory interface {
	Exclusions(clientID string, cacheTimestamp int64) map[string]struct{}
}

// FeedService is the read gateway over the market cache: pagination,
// per-request exclusion, search, event grouping, and token lookups.
type FeedService struct {
	store   *feed.Store
	tokens  *feed.TokenCache
	history SwipeHistory
	logger  *slog.Logger
}

// NewFeedService creates a FeedService over the given store and token cache.
func NewFeedService(store *feed.Store, tokens *feed.TokenCache, logger *slog.Logger) *FeedService {
	return &FeedService{
		store:  store,
		tokens: tokens,
		logger: logger.With(slog.String("component", "feed_service")),
	}
}

// SetSwipeHistory installs the server-side swipe tracker consulted when a
// FeedQuery names a client.
func (s *FeedService) SetSwipeHistory(h SwipeHistory) { s.history = h }

// GetFeed returns one page of the diversified feed. Exclusions are applied
// to the full ordering before slicing, so a page is never short-changed by
// markets the client has already swiped. Total counts the ordering before
// exclusion; HasMore is relative to what remains after it.
func (s *FeedService) GetFeed(ctx context.Context, q domain.FeedQuery, strict bool) domain.FeedPage {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	ordered, ts := s.store.Feed(ctx, strict)

	exclude := q.ExcludeIDs
	if s.history != nil && q.ClientID != "" {
		if held := s.history.Exclusions(q.ClientID, ts); len(held) > 0 {
			merged := make(map[string]struct{}, len(exclude)+len(held))
			for id := range exclude {
				merged[id] = struct{}{}
			}
			for id := range held {
				merged[id] = struct{}{}
			}
			exclude = merged
		}
	}

	eligible := ordered
	if len(exclude) > 0 {
		eligible = make([]domain.Market, 0, len(ordered))
		for _, m := range ordered {
			if _, skip := exclude[m.ID]; skip {
				continue
			}
			eligible = append(eligible, m)
		}
	}

	page := domain.FeedPage{
		Markets:        []domain.Market{},
		CacheTimestamp: ts,
		Total:          len(ordered),
		HasMore:        false,
	}
	if offset < len(eligible) {
		end := offset + limit
		if end > len(eligible) {
			end = len(eligible)
		}
		page.Markets = eligible[offset:end]
		page.HasMore = end < len(eligible)
	}
	return page
}

// SearchMarkets runs a case-insensitive substring search over the cached
// pool. An empty query returns no results.
func (s *FeedService) SearchMarkets(ctx context.Context, query string) ([]domain.Market, int64) {
	pool, ts := s.store.Pool(ctx)
	return feed.Search(pool, query), ts
}

// GetEventMarkets returns all cached markets under one event ticker, priced
// highest yes first. Unknown tickers return ErrNotFound.
func (s *FeedService) GetEventMarkets(ctx context.Context, eventTicker string) ([]domain.Market, int64, error) {
	pool, ts := s.store.Pool(ctx)
	markets := feed.EventMarkets(pool, eventTicker)
	if len(markets) == 0 {
		return nil, 0, fmt.Errorf("service: event %s: %w", eventTicker, domain.ErrNotFound)
	}
	return markets, ts, nil
}

// GetMarketTokens resolves the outcome-token mints for one market. When the
// settlement upstream is disabled every lookup is a not-found.
func (s *FeedService) GetMarketTokens(ctx context.Context, marketID string) (domain.MarketTokenInfo, error) {
	if s.tokens == nil {
		return domain.MarketTokenInfo{}, fmt.Errorf("service: token resolution disabled: %w", domain.ErrNotFound)
	}
	return s.tokens.Get(ctx, marketID)
}

// CacheStale reports whether the current feed generation is past its TTL.
// Surfaced by the health endpoint.
func (s *FeedService) CacheStale() bool {
	return s.store.IsStale()
}
