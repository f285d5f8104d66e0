package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/swipebet/swipebet/internal/domain"
)

// EventService resolves sibling outcomes under one event ticker.
type EventService interface {
	GetEventMarkets(ctx context.Context, eventTicker string) ([]domain.Market, int64, error)
}

// EventHandler serves event-grouping endpoints.
type EventHandler struct {
	events EventService
	logger *slog.Logger
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(events EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		events: events,
		logger: logger,
	}
}

// eventMarketsResponse wraps the event endpoint output.
type eventMarketsResponse struct {
	EventTicker    string          `json:"eventTicker"`
	Markets        []domain.Market `json:"markets"`
	CacheTimestamp int64           `json:"cacheTimestamp"`
}

// ListEventMarkets returns all cached markets under an event, highest yes
// price first.
// GET /api/events/{eventTicker}/markets
func (h *EventHandler) ListEventMarkets(w http.ResponseWriter, r *http.Request) {
	ticker := pathParam(r, "eventTicker")
	if ticker == "" {
		writeError(w, r, http.StatusBadRequest, "missing event ticker")
		return
	}

	markets, ts, err := h.events.GetEventMarkets(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "event not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: list event markets failed",
			slog.String("event_ticker", ticker),
			slog.String("error", err.Error()),
		)
		writeError(w, r, http.StatusInternalServerError, "failed to list event markets")
		return
	}

	writeJSON(w, http.StatusOK, eventMarketsResponse{
		EventTicker:    ticker,
		Markets:        markets,
		CacheTimestamp: ts,
	})
}
