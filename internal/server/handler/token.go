package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/swipebet/swipebet/internal/domain"
)

// TokenService resolves outcome-token mints for a market.
type TokenService interface {
	GetMarketTokens(ctx context.Context, marketID string) (domain.MarketTokenInfo, error)
}

// TokenHandler serves on-chain token lookups.
type TokenHandler struct {
	tokens TokenService
	logger *slog.Logger
}

// NewTokenHandler creates a TokenHandler.
func NewTokenHandler(tokens TokenService, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		tokens: tokens,
		logger: logger,
	}
}

// GetMarketTokens returns the yes/no mint addresses and initialization state
// for one market. This is the one endpoint that surfaces upstream failure:
// a market without resolvable tokens is a hard 404.
// GET /api/pond/market/{marketId}/tokens
func (h *TokenHandler) GetMarketTokens(w http.ResponseWriter, r *http.Request) {
	marketID := pathParam(r, "marketId")
	if marketID == "" {
		writeError(w, r, http.StatusBadRequest, "missing market id")
		return
	}

	info, err := h.tokens.GetMarketTokens(r.Context(), marketID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrMalformedRecord) {
			writeError(w, r, http.StatusNotFound, "market tokens not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get market tokens failed",
			slog.String("market_id", marketID),
			slog.String("error", err.Error()),
		)
		writeError(w, r, http.StatusBadGateway, "token upstream unavailable")
		return
	}

	writeJSON(w, http.StatusOK, info)
}
