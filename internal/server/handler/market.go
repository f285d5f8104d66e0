package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/swipebet/swipebet/internal/domain"
)

// FeedService defines the methods the market handler requires from the
// service layer. It is declared locally so the handler package does not
// depend on the concrete service implementation.
type FeedService interface {
	GetFeed(ctx context.Context, q domain.FeedQuery, strict bool) domain.FeedPage
	SearchMarkets(ctx context.Context, query string) ([]domain.Market, int64)
}

// SwipeRecorder records client swipe history.
type SwipeRecorder interface {
	RecordSwipes(clientID string, marketIDs []string, cacheTimestamp int64)
}

// MarketHandler serves the feed, search, and swipe endpoints.
type MarketHandler struct {
	feed   FeedService
	swipes SwipeRecorder
	logger *slog.Logger
}

// NewMarketHandler creates a MarketHandler. swipes may be nil, disabling
// server-side swipe recording.
func NewMarketHandler(feed FeedService, swipes SwipeRecorder, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		feed:   feed,
		swipes: swipes,
		logger: logger,
	}
}

// ListMarkets returns one diversified feed page. The default ordering is the
// strict swipe feed; mode=discover relaxes the eligibility band.
// GET /api/markets?limit=50&offset=0&excludeIds=a,b&mode=discover&clientId=x
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	q := parseFeedQuery(r)
	q.ClientID = clientID(r)
	strict := !strings.EqualFold(r.URL.Query().Get("mode"), "discover")

	writeJSON(w, http.StatusOK, h.feed.GetFeed(r.Context(), q, strict))
}

// searchResponse wraps the search endpoint output.
type searchResponse struct {
	Markets        []domain.Market `json:"markets"`
	Total          int             `json:"total"`
	CacheTimestamp int64           `json:"cacheTimestamp"`
}

// SearchMarkets searches the cached pool by substring.
// GET /api/markets/search?q=bitcoin
func (h *MarketHandler) SearchMarkets(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, r, http.StatusBadRequest, "missing search query")
		return
	}

	markets, ts := h.feed.SearchMarkets(r.Context(), query)
	writeJSON(w, http.StatusOK, searchResponse{
		Markets:        markets,
		Total:          len(markets),
		CacheTimestamp: ts,
	})
}

// swipeRequest is the body for recording swipes. CacheTimestamp scopes the
// history to the generation the client was browsing.
type swipeRequest struct {
	ClientID       string   `json:"clientId"`
	MarketIDs      []string `json:"marketIds"`
	CacheTimestamp int64    `json:"cacheTimestamp"`
}

// RecordSwipes notes markets a client has swiped so they are held back from
// that client's subsequent feed pages.
// POST /api/swipes
func (h *MarketHandler) RecordSwipes(w http.ResponseWriter, r *http.Request) {
	if h.swipes == nil {
		writeError(w, r, http.StatusNotFound, "swipe tracking disabled")
		return
	}

	var req swipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ClientID == "" {
		req.ClientID = clientID(r)
	}
	if req.ClientID == "" {
		writeError(w, r, http.StatusBadRequest, "missing client id")
		return
	}
	if len(req.MarketIDs) == 0 {
		writeError(w, r, http.StatusBadRequest, "missing market ids")
		return
	}

	h.swipes.RecordSwipes(req.ClientID, req.MarketIDs, req.CacheTimestamp)
	w.WriteHeader(http.StatusNoContent)
}

// clientID identifies the caller for swipe tracking, from header or query.
func clientID(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-Client-ID")); v != "" {
		return v
	}
	return strings.TrimSpace(r.URL.Query().Get("clientId"))
}
