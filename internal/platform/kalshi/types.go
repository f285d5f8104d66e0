package kalshi

import (
	"time"

	"github.com/swipebet/swipebet/internal/classify"
	"github.com/swipebet/swipebet/internal/domain"
)

// APIMarket represents a market as returned by the exchange REST API. Prices
// are integer cents with separate bid/ask per side.
type APIMarket struct {
	Ticker             string `json:"ticker"`
	EventTicker        string `json:"event_ticker"`
	Title              string `json:"title"`
	Subtitle           string `json:"subtitle"`
	YesSubTitle        string `json:"yes_sub_title"`
	NoSubTitle         string `json:"no_sub_title"`
	Status             string `json:"status"` // "active", "open", "closed", "settled"
	YesBid             int64  `json:"yes_bid"`
	YesAsk             int64  `json:"yes_ask"`
	NoBid              int64  `json:"no_bid"`
	NoAsk              int64  `json:"no_ask"`
	LastPrice          int64  `json:"last_price"`
	Volume             int64  `json:"volume"`
	Volume24H          int64  `json:"volume_24h"`
	Category           string `json:"category"`
	ExpirationTime     string `json:"expiration_time"`
	CloseTime          string `json:"close_time"`
	MultiVariableEvent bool   `json:"is_multivariate"`
	MutuallyExclusive  bool   `json:"mutually_exclusive"`
}

// APIEvent is an event with nested markets, used by the secondary crawl when
// the direct listing yields nothing.
type APIEvent struct {
	EventTicker  string      `json:"event_ticker"`
	SeriesTicker string      `json:"series_ticker"`
	Title        string      `json:"title"`
	Category     string      `json:"category"`
	Markets      []APIMarket `json:"markets"`
}

// APIError is the exchange's error envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// IsParlay reports whether this market is a multi-leg parlay that must never
// reach the feed.
func (m *APIMarket) IsParlay() bool {
	return classify.IsParlay(m.Title, m.EventTicker, m.MultiVariableEvent)
}

// ToDomainMarket normalizes an exchange market into the canonical shape.
// Field access never fails: malformed prices default to 0.5, a missing
// category falls through the classifier, and a missing expiration defaults to
// the current time.
func (m *APIMarket) ToDomainMarket() domain.Market {
	yes := normalizeCentsPrice(m.YesBid, m.YesAsk, m.LastPrice)

	yesLabel := m.YesSubTitle
	if yesLabel == "" {
		yesLabel = "Yes"
	}
	noLabel := m.NoSubTitle
	if noLabel == "" {
		noLabel = "No"
	}

	endDate := parseEndDate(m.ExpirationTime, m.CloseTime)

	return domain.Market{
		ID:          m.Ticker,
		Title:       m.Title,
		Subtitle:    m.Subtitle,
		Category:    classify.Categorize(m.Category, m.Ticker, m.Title),
		YesPrice:    yes,
		NoPrice:     1 - yes,
		YesLabel:    yesLabel,
		NoLabel:     noLabel,
		Volume:      float64(m.Volume),
		Volume24h:   float64(m.Volume24H),
		EndDate:     endDate,
		Status:      normalizeStatus(m.Status),
		EventTicker: m.EventTicker,
		ImageURL:    classify.ImageURL(m.EventTicker),
	}
}

// normalizeCentsPrice converts integer-cent bid/ask into a [0,1] yes
// probability: average both sides when present, use whichever side exists,
// fall back to the last trade, and finally default to even odds.
func normalizeCentsPrice(bid, ask, last int64) float64 {
	switch {
	case bid > 0 && ask > 0:
		return float64(bid+ask) / 2 / 100
	case ask > 0:
		return float64(ask) / 100
	case bid > 0:
		return float64(bid) / 100
	case last > 0:
		return float64(last) / 100
	default:
		return 0.5
	}
}

// normalizeStatus maps the exchange's status vocabulary onto ours. The
// exchange reports tradeable markets as either "active" or "open".
func normalizeStatus(s string) domain.MarketStatus {
	switch s {
	case "active", "open":
		return domain.MarketStatusActive
	case "settled", "finalized":
		return domain.MarketStatusSettled
	default:
		return domain.MarketStatusClosed
	}
}

// parseEndDate normalizes the expiration to an ISO-8601 string, preferring
// expiration_time over close_time, defaulting to now for malformed records.
func parseEndDate(expiration, closeTime string) string {
	for _, raw := range []string{expiration, closeTime} {
		if raw == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}
