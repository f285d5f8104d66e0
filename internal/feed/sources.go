package feed

import (
	"context"
	"strconv"

	"github.com/swipebet/swipebet/internal/domain"
	"github.com/swipebet/swipebet/internal/platform/kalshi"
	"github.com/swipebet/swipebet/internal/platform/pond"
)

// ListingSource is one page-at-a-time upstream market listing. The cursor is
// opaque to the store: cursor-native upstreams pass theirs through, offset
// paginated upstreams encode the next offset. An empty returned cursor ends
// the crawl.
type ListingSource interface {
	Name() string
	ListMarkets(ctx context.Context, limit int, cursor string) ([]domain.Market, string, error)
}

// EventSource lists markets nested under events. Used as the fallback crawl
// when the direct listing yields nothing.
type EventSource interface {
	Name() string
	ListEventMarkets(ctx context.Context, limit int, cursor string) ([]domain.Market, string, error)
}

// ---------------------------------------------------------------------------
// Exchange source
// ---------------------------------------------------------------------------

// KalshiSource adapts the exchange client into the store's listing
// interfaces. Parlays are dropped at the adapter boundary so they can never
// enter the cache.
type KalshiSource struct {
	client *kalshi.Client
}

// NewKalshiSource wraps an exchange client.
func NewKalshiSource(c *kalshi.Client) *KalshiSource {
	return &KalshiSource{client: c}
}

func (s *KalshiSource) Name() string { return "kalshi" }

func (s *KalshiSource) ListMarkets(ctx context.Context, limit int, cursor string) ([]domain.Market, string, error) {
	raw, next, err := s.client.GetMarkets(ctx, limit, cursor)
	if err != nil {
		return nil, "", err
	}
	return normalizeKalshi(raw), next, nil
}

func (s *KalshiSource) ListEventMarkets(ctx context.Context, limit int, cursor string) ([]domain.Market, string, error) {
	events, next, err := s.client.GetEvents(ctx, limit, cursor)
	if err != nil {
		return nil, "", err
	}

	var out []domain.Market
	for i := range events {
		out = append(out, normalizeKalshi(events[i].Markets)...)
	}
	return out, next, nil
}

func normalizeKalshi(raw []kalshi.APIMarket) []domain.Market {
	out := make([]domain.Market, 0, len(raw))
	for i := range raw {
		if raw[i].IsParlay() {
			continue
		}
		m := raw[i].ToDomainMarket()
		if m.Status != domain.MarketStatusActive {
			continue
		}
		out = append(out, m)
	}
	return out
}

// ---------------------------------------------------------------------------
// Settlement-metadata source
// ---------------------------------------------------------------------------

// PondSource adapts the settlement-metadata client. Its listing carries the
// on-chain initialization flag the exchange listing lacks; the store merges
// it over exchange records by market id.
type PondSource struct {
	client *pond.Client
}

// NewPondSource wraps a settlement-metadata client.
func NewPondSource(c *pond.Client) *PondSource {
	return &PondSource{client: c}
}

func (s *PondSource) Name() string { return "pond" }

func (s *PondSource) ListMarkets(ctx context.Context, limit int, cursor string) ([]domain.Market, string, error) {
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err == nil && n > 0 {
			offset = n
		}
	}

	raw, err := s.client.GetMarkets(ctx, limit, offset)
	if err != nil {
		return nil, "", err
	}

	out := make([]domain.Market, 0, len(raw))
	for i := range raw {
		if raw[i].IsParlay() {
			continue
		}
		m := raw[i].ToDomainMarket()
		if m.Status != domain.MarketStatusActive {
			continue
		}
		out = append(out, m)
	}

	next := ""
	if len(raw) == limit {
		next = strconv.Itoa(offset + limit)
	}
	return out, next, nil
}

// FetchTokens resolves the outcome-token mints for one market.
func (s *PondSource) FetchTokens(ctx context.Context, marketID string) (domain.MarketTokenInfo, error) {
	return s.client.GetMarketTokens(ctx, marketID)
}
