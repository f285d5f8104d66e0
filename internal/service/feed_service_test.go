package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/swipebet/swipebet/internal/domain"
	"github.com/swipebet/swipebet/internal/feed"
	"github.com/swipebet/swipebet/internal/metrics"
)

// staticSource serves a fixed market set as a single page.
type staticSource struct {
	markets []domain.Market
}

func (s *staticSource) Name() string { return "static" }

func (s *staticSource) ListMarkets(_ context.Context, _ int, cursor string) ([]domain.Market, string, error) {
	if cursor != "" {
		return nil, "", nil
	}
	return s.markets, "", nil
}

type stubHistory struct {
	gotClient string
	gotTS     int64
	held      map[string]struct{}
}

func (h *stubHistory) Exclusions(clientID string, cacheTimestamp int64) map[string]struct{} {
	h.gotClient = clientID
	h.gotTS = cacheTimestamp
	return h.held
}

// feedMarkets builds n markets ordered by descending recent volume, all in
// one category with unique events, so the diversified order is m000, m001...
func feedMarkets(n int) []domain.Market {
	yes := true
	out := make([]domain.Market, n)
	for i := range out {
		id := fmt.Sprintf("m%03d", i)
		out[i] = domain.Market{
			ID:            id,
			Title:         "Will market " + id + " resolve yes?",
			Category:      domain.CategoryCrypto,
			YesPrice:      0.5,
			NoPrice:       0.5,
			Volume:        50000,
			Volume24h:     float64(100000 - i),
			Status:        domain.MarketStatusActive,
			IsInitialized: &yes,
		}
	}
	return out
}

func newTestService(t *testing.T, markets []domain.Market) *FeedService {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	store := feed.NewStore(feed.StoreConfig{PagesPerSecond: 10000}, &staticSource{markets: markets}, metrics.New(), logger)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("priming refresh: %v", err)
	}
	return NewFeedService(store, nil, logger)
}

func pageIDs(page domain.FeedPage) []string {
	out := make([]string, len(page.Markets))
	for i, m := range page.Markets {
		out[i] = m.ID
	}
	return out
}

func TestGetFeedDefaultsLimit(t *testing.T) {
	svc := newTestService(t, feedMarkets(60))

	page := svc.GetFeed(context.Background(), domain.FeedQuery{}, true)

	if len(page.Markets) != DefaultFeedLimit {
		t.Errorf("got %d markets, want default %d", len(page.Markets), DefaultFeedLimit)
	}
	if page.Total != 60 {
		t.Errorf("Total = %d, want 60", page.Total)
	}
	if !page.HasMore {
		t.Error("HasMore = false with markets remaining")
	}
	if page.CacheTimestamp == 0 {
		t.Error("CacheTimestamp not set")
	}
}

func TestGetFeedClampsOversizedLimit(t *testing.T) {
	svc := newTestService(t, feedMarkets(510))

	page := svc.GetFeed(context.Background(), domain.FeedQuery{Limit: 10000}, true)

	if len(page.Markets) != MaxFeedLimit {
		t.Errorf("got %d markets, want cap %d", len(page.Markets), MaxFeedLimit)
	}
	if !page.HasMore {
		t.Error("HasMore = false with markets beyond the cap")
	}
}

func TestGetFeedOffsetWindow(t *testing.T) {
	svc := newTestService(t, feedMarkets(10))

	page := svc.GetFeed(context.Background(), domain.FeedQuery{Limit: 3, Offset: 8}, true)

	got := pageIDs(page)
	if len(got) != 2 || got[0] != "m008" || got[1] != "m009" {
		t.Errorf("page = %v, want [m008 m009]", got)
	}
	if page.HasMore {
		t.Error("HasMore = true at the end of the feed")
	}
}

func TestGetFeedOffsetPastEnd(t *testing.T) {
	svc := newTestService(t, feedMarkets(10))

	page := svc.GetFeed(context.Background(), domain.FeedQuery{Offset: 50}, true)

	if page.Markets == nil {
		t.Fatal("Markets is nil, want empty slice")
	}
	if len(page.Markets) != 0 || page.HasMore {
		t.Errorf("got %d markets hasMore=%v, want empty final page", len(page.Markets), page.HasMore)
	}
	if page.Total != 10 {
		t.Errorf("Total = %d, want 10", page.Total)
	}
}

func TestGetFeedExcludesBeforeSlicing(t *testing.T) {
	svc := newTestService(t, feedMarkets(10))

	q := domain.FeedQuery{
		Limit:      4,
		ExcludeIDs: map[string]struct{}{"m000": {}, "m002": {}},
	}
	page := svc.GetFeed(context.Background(), q, true)

	got := pageIDs(page)
	want := []string{"m001", "m003", "m004", "m005"}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("page = %v, want %v", got, want)
		}
	}
	// Total reflects the ordering before exclusion so clients can detect a
	// generation's true size; HasMore reflects what is left to swipe.
	if page.Total != 10 {
		t.Errorf("Total = %d, want 10", page.Total)
	}
	if !page.HasMore {
		t.Error("HasMore = false with unswiped markets remaining")
	}
}

func TestGetFeedMergesClientHistory(t *testing.T) {
	svc := newTestService(t, feedMarkets(5))
	history := &stubHistory{held: map[string]struct{}{"m001": {}}}
	svc.SetSwipeHistory(history)

	q := domain.FeedQuery{ClientID: "client-a", ExcludeIDs: map[string]struct{}{"m000": {}}}
	page := svc.GetFeed(context.Background(), q, true)

	got := pageIDs(page)
	want := []string{"m002", "m003", "m004"}
	if len(got) != len(want) {
		t.Fatalf("page = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("page = %v, want %v", got, want)
		}
	}
	if history.gotClient != "client-a" {
		t.Errorf("history queried for %q", history.gotClient)
	}
	if history.gotTS != page.CacheTimestamp {
		t.Errorf("history queried with ts %d, served generation is %d", history.gotTS, page.CacheTimestamp)
	}
}

func TestSearchMarkets(t *testing.T) {
	markets := feedMarkets(3)
	markets[1].Title = "Will the runoff election flip the seat?"
	svc := newTestService(t, markets)

	results, ts := svc.SearchMarkets(context.Background(), "runoff election")
	if len(results) != 1 || results[0].ID != "m001" {
		t.Fatalf("results = %v", pageIDs(domain.FeedPage{Markets: results}))
	}
	if ts == 0 {
		t.Error("search did not report the cache generation")
	}

	if results, _ := svc.SearchMarkets(context.Background(), "   "); results != nil {
		t.Error("blank query returned results")
	}
}

func TestGetEventMarkets(t *testing.T) {
	markets := feedMarkets(3)
	markets[0].EventTicker = "KXEVT"
	markets[0].YesPrice = 0.3
	markets[2].EventTicker = "KXEVT"
	markets[2].YesPrice = 0.7
	svc := newTestService(t, markets)

	siblings, _, err := svc.GetEventMarkets(context.Background(), "KXEVT")
	if err != nil {
		t.Fatalf("GetEventMarkets: %v", err)
	}
	if len(siblings) != 2 || siblings[0].ID != "m002" || siblings[1].ID != "m000" {
		t.Errorf("siblings not sorted by yes price: %v", pageIDs(domain.FeedPage{Markets: siblings}))
	}

	_, _, err = svc.GetEventMarkets(context.Background(), "KXNOPE")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown event err = %v, want ErrNotFound", err)
	}
}

func TestGetMarketTokensDisabled(t *testing.T) {
	svc := newTestService(t, feedMarkets(1))

	_, err := svc.GetMarketTokens(context.Background(), "m000")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound when resolution is disabled", err)
	}
}
