package feed

import (
	"sort"
	"strings"

	"github.com/swipebet/swipebet/internal/classify"
	"github.com/swipebet/swipebet/internal/domain"
)

// Search runs a case-insensitive substring match over the full cached pool
// (not the diversified ordering): title, subtitle, id, and both outcome
// labels. Results are ordered title matches first, then 24h volume
// descending. Parlays never surface, mirroring the feed exclusion.
func Search(pool []domain.Market, query string) []domain.Market {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	type hit struct {
		market     domain.Market
		titleMatch bool
	}

	var hits []hit
	for _, m := range pool {
		if m.Status != domain.MarketStatusActive {
			continue
		}
		if classify.IsParlay(m.Title, m.EventTicker, false) {
			continue
		}

		titleMatch := strings.Contains(strings.ToLower(m.Title), q)
		if titleMatch ||
			strings.Contains(strings.ToLower(m.Subtitle), q) ||
			strings.Contains(strings.ToLower(m.ID), q) ||
			strings.Contains(strings.ToLower(m.YesLabel), q) ||
			strings.Contains(strings.ToLower(m.NoLabel), q) {
			hits = append(hits, hit{market: m, titleMatch: titleMatch})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].titleMatch != hits[j].titleMatch {
			return hits[i].titleMatch
		}
		return hits[i].market.Volume24h > hits[j].market.Volume24h
	})

	out := make([]domain.Market, len(hits))
	for i, h := range hits {
		out[i] = h.market
	}
	return out
}

// EventMarkets returns every sibling outcome of one event, sorted by yes
// price descending, for the expandable multi-outcome card.
func EventMarkets(pool []domain.Market, eventTicker string) []domain.Market {
	var out []domain.Market
	for _, m := range pool {
		if m.EventTicker == eventTicker && m.Status == domain.MarketStatusActive {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].YesPrice > out[j].YesPrice
	})
	return out
}
