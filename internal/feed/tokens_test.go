package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/swipebet/swipebet/internal/domain"
	"github.com/swipebet/swipebet/internal/metrics"
)

type scriptedFetcher struct {
	mu    sync.Mutex
	calls int
	fetch func(call int, marketID string) (domain.MarketTokenInfo, error)
}

func (f *scriptedFetcher) FetchTokens(_ context.Context, marketID string) (domain.MarketTokenInfo, error) {
	f.mu.Lock()
	call := f.calls
	f.calls++
	f.mu.Unlock()
	return f.fetch(call, marketID)
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func tokenInfo(marketID string) domain.MarketTokenInfo {
	return domain.MarketTokenInfo{
		MarketID:      marketID,
		YesMint:       "mint-yes-" + marketID,
		NoMint:        "mint-no-" + marketID,
		IsInitialized: true,
	}
}

func newTestTokenCache(cfg TokenCacheConfig, fetcher TokenFetcher) *TokenCache {
	c := NewTokenCache(cfg, fetcher, metrics.New(), slog.New(slog.DiscardHandler))
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestTokenCacheServesFreshEntry(t *testing.T) {
	fetcher := &scriptedFetcher{fetch: func(call int, id string) (domain.MarketTokenInfo, error) {
		return tokenInfo(id), nil
	}}
	c := newTestTokenCache(TokenCacheConfig{}, fetcher)

	first, err := c.Get(context.Background(), "mkt-1")
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	if first.CachedAt == 0 {
		t.Error("cached entry missing timestamp")
	}

	second, err := c.Get(context.Background(), "mkt-1")
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if second.YesMint != first.YesMint {
		t.Errorf("cache returned different mint %s", second.YesMint)
	}
	if got := fetcher.callCount(); got != 1 {
		t.Errorf("fetcher called %d times, want 1", got)
	}
}

func TestTokenCacheRetriesTransientFailures(t *testing.T) {
	fetcher := &scriptedFetcher{fetch: func(call int, id string) (domain.MarketTokenInfo, error) {
		if call < 2 {
			return domain.MarketTokenInfo{}, domain.ErrUpstreamUnavailable
		}
		return tokenInfo(id), nil
	}}
	c := newTestTokenCache(TokenCacheConfig{MaxAttempts: 3, BackoffBase: 500 * time.Millisecond}, fetcher)

	var delays []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	info, err := c.Get(context.Background(), "mkt-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if info.MarketID != "mkt-1" {
		t.Errorf("got market %s", info.MarketID)
	}
	if len(delays) != 2 || delays[0] != 500*time.Millisecond || delays[1] != time.Second {
		t.Errorf("backoff delays = %v, want [500ms 1s]", delays)
	}
}

func TestTokenCacheDoesNotRetryNotFound(t *testing.T) {
	fetcher := &scriptedFetcher{fetch: func(call int, id string) (domain.MarketTokenInfo, error) {
		return domain.MarketTokenInfo{}, domain.ErrNotFound
	}}
	c := newTestTokenCache(TokenCacheConfig{}, fetcher)

	_, err := c.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if got := fetcher.callCount(); got != 1 {
		t.Errorf("fetcher called %d times, want 1", got)
	}
	if c.Len() != 0 {
		t.Error("not-found result was cached")
	}
}

func TestTokenCacheServesExpiredEntryThroughOutage(t *testing.T) {
	fetcher := &scriptedFetcher{fetch: func(call int, id string) (domain.MarketTokenInfo, error) {
		if call == 0 {
			return tokenInfo(id), nil
		}
		return domain.MarketTokenInfo{}, domain.ErrUpstreamUnavailable
	}}
	c := newTestTokenCache(TokenCacheConfig{TTL: 30 * time.Minute, MaxAttempts: 2}, fetcher)

	now := time.Now()
	c.now = func() time.Time { return now }

	if _, err := c.Get(context.Background(), "mkt-1"); err != nil {
		t.Fatalf("warm get: %v", err)
	}

	// Entry expires, upstream is down: the expired entry wins over the error.
	c.now = func() time.Time { return now.Add(time.Hour) }
	info, err := c.Get(context.Background(), "mkt-1")
	if err != nil {
		t.Fatalf("stale get: %v", err)
	}
	if info.YesMint != "mint-yes-mkt-1" {
		t.Errorf("stale entry not served, got %s", info.YesMint)
	}
}

type channelAlerter struct {
	events chan string
}

func (a *channelAlerter) Notify(ctx context.Context, event, title, message string) error {
	a.events <- event
	return nil
}

func TestTokenCacheAlertsOnStaleServe(t *testing.T) {
	fetcher := &scriptedFetcher{fetch: func(call int, id string) (domain.MarketTokenInfo, error) {
		if call == 0 {
			return tokenInfo(id), nil
		}
		return domain.MarketTokenInfo{}, domain.ErrUpstreamUnavailable
	}}
	c := newTestTokenCache(TokenCacheConfig{TTL: 30 * time.Minute, MaxAttempts: 2}, fetcher)

	alerter := &channelAlerter{events: make(chan string, 1)}
	c.SetAlerter(alerter)

	now := time.Now()
	c.now = func() time.Time { return now }
	if _, err := c.Get(context.Background(), "mkt-1"); err != nil {
		t.Fatalf("warm get: %v", err)
	}

	c.now = func() time.Time { return now.Add(time.Hour) }
	if _, err := c.Get(context.Background(), "mkt-1"); err != nil {
		t.Fatalf("stale get: %v", err)
	}

	select {
	case event := <-alerter.events:
		if event != "token_stale" {
			t.Errorf("alert event = %q, want token_stale", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stale serve raised no alert")
	}
}

func TestTokenCacheExpiredEntryLosesToNotFound(t *testing.T) {
	fetcher := &scriptedFetcher{fetch: func(call int, id string) (domain.MarketTokenInfo, error) {
		if call == 0 {
			return tokenInfo(id), nil
		}
		return domain.MarketTokenInfo{}, domain.ErrNotFound
	}}
	c := newTestTokenCache(TokenCacheConfig{TTL: 30 * time.Minute}, fetcher)

	now := time.Now()
	c.now = func() time.Time { return now }
	if _, err := c.Get(context.Background(), "mkt-1"); err != nil {
		t.Fatalf("warm get: %v", err)
	}

	c.now = func() time.Time { return now.Add(time.Hour) }
	_, err := c.Get(context.Background(), "mkt-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound (delisted markets must not serve stale)", err)
	}
}

func TestTokenCacheRetryExhaustionWrapsLastError(t *testing.T) {
	fetcher := &scriptedFetcher{fetch: func(call int, id string) (domain.MarketTokenInfo, error) {
		return domain.MarketTokenInfo{}, domain.ErrUpstreamUnavailable
	}}
	c := newTestTokenCache(TokenCacheConfig{MaxAttempts: 3}, fetcher)

	_, err := c.Get(context.Background(), "mkt-1")
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want wrapped ErrUpstreamUnavailable", err)
	}
	if got := fetcher.callCount(); got != 3 {
		t.Errorf("fetcher called %d times, want 3", got)
	}
}

func TestTokenCachePrune(t *testing.T) {
	fetcher := &scriptedFetcher{fetch: func(call int, id string) (domain.MarketTokenInfo, error) {
		return tokenInfo(id), nil
	}}
	c := newTestTokenCache(TokenCacheConfig{}, fetcher)

	now := time.Now()
	c.now = func() time.Time { return now }
	if _, err := c.Get(context.Background(), "old"); err != nil {
		t.Fatalf("get: %v", err)
	}

	c.now = func() time.Time { return now.Add(3 * time.Hour) }
	if _, err := c.Get(context.Background(), "recent"); err != nil {
		t.Fatalf("get: %v", err)
	}

	if removed := c.Prune(2 * time.Hour); removed != 1 {
		t.Errorf("pruned %d entries, want 1", removed)
	}
	if c.Len() != 1 {
		t.Errorf("cache holds %d entries, want 1", c.Len())
	}
}
