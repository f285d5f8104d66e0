package pond

import (
	"sort"
	"strconv"
	"time"

	"github.com/swipebet/swipebet/internal/classify"
	"github.com/swipebet/swipebet/internal/domain"
)

// usdcMint is the canonical USDC settlement mint. Token resolution prefers
// the USDC-settled ledger when a market is listed under several settlement
// currencies.
const usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

// APIMarket represents a market as returned by the settlement-metadata API.
// Prices are numeric strings already in [0,1].
type APIMarket struct {
	Ticker        string  `json:"ticker"`
	EventTicker   string  `json:"eventTicker"`
	Title         string  `json:"title"`
	Subtitle      string  `json:"subtitle"`
	Category      string  `json:"category"`
	Status        string  `json:"status"`
	YesBid        string  `json:"yesBid"`
	YesAsk        string  `json:"yesAsk"`
	LastPrice     string  `json:"lastPrice"`
	Volume        float64 `json:"volume"`
	Volume24h     float64 `json:"volume24h"`
	CloseTime     string  `json:"closeTime"`
	IsInitialized *bool   `json:"isInitialized"`
	MultiLeg      bool    `json:"isMultiLeg"`
	YesSubTitle   string  `json:"yesSubTitle"`
	NoSubTitle    string  `json:"noSubTitle"`
}

// APIEvent groups sibling markets under one real-world question.
type APIEvent struct {
	EventTicker string      `json:"eventTicker"`
	Title       string      `json:"title"`
	Category    string      `json:"category"`
	Markets     []APIMarket `json:"markets"`
}

// MarketLedger is one settlement-currency ledger of a market: the outcome
// token pair denominated in that currency.
type MarketLedger struct {
	YesMint       string `json:"yesMint"`
	NoMint        string `json:"noMint"`
	IsInitialized bool   `json:"isInitialized"`
}

// MarketTokenResponse is the token-lookup payload. Ledgers are keyed by
// settlement-currency mint address.
type MarketTokenResponse struct {
	Ticker  string                  `json:"ticker"`
	Ledgers map[string]MarketLedger `json:"ledgers"`
}

// ResolveTokens picks the ledger to trade against: the USDC-settled ledger
// when present, otherwise the first structurally complete entry by sorted
// mint key (deterministic stand-in for upstream's unspecified tie-break).
// Returns false when no ledger carries both mints.
func (r *MarketTokenResponse) ResolveTokens() (domain.MarketTokenInfo, bool) {
	if ledger, ok := r.Ledgers[usdcMint]; ok && ledger.YesMint != "" && ledger.NoMint != "" {
		return r.tokenInfo(ledger), true
	}

	keys := make([]string, 0, len(r.Ledgers))
	for k := range r.Ledgers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		ledger := r.Ledgers[k]
		if ledger.YesMint != "" && ledger.NoMint != "" {
			return r.tokenInfo(ledger), true
		}
	}
	return domain.MarketTokenInfo{}, false
}

func (r *MarketTokenResponse) tokenInfo(l MarketLedger) domain.MarketTokenInfo {
	return domain.MarketTokenInfo{
		MarketID:      r.Ticker,
		YesMint:       l.YesMint,
		NoMint:        l.NoMint,
		IsInitialized: l.IsInitialized,
		CachedAt:      time.Now().UnixMilli(),
	}
}

// IsParlay reports whether this market is a multi-leg parlay.
func (m *APIMarket) IsParlay() bool {
	return classify.IsParlay(m.Title, m.EventTicker, m.MultiLeg)
}

// ToDomainMarket normalizes a settlement-metadata market into the canonical
// shape. Same averaging rule as the exchange adapter, without the cents
// conversion, with the same field-by-field safe defaults.
func (m *APIMarket) ToDomainMarket() domain.Market {
	yes := normalizeUnitPrice(m.YesBid, m.YesAsk, m.LastPrice)

	yesLabel := m.YesSubTitle
	if yesLabel == "" {
		yesLabel = "Yes"
	}
	noLabel := m.NoSubTitle
	if noLabel == "" {
		noLabel = "No"
	}

	endDate := m.CloseTime
	if _, err := time.Parse(time.RFC3339, endDate); err != nil {
		endDate = time.Now().UTC().Format(time.RFC3339)
	}

	return domain.Market{
		ID:            m.Ticker,
		Title:         m.Title,
		Subtitle:      m.Subtitle,
		Category:      classify.Categorize(m.Category, m.Ticker, m.Title),
		YesPrice:      yes,
		NoPrice:       1 - yes,
		YesLabel:      yesLabel,
		NoLabel:       noLabel,
		Volume:        m.Volume,
		Volume24h:     m.Volume24h,
		EndDate:       endDate,
		Status:        normalizeStatus(m.Status),
		EventTicker:   m.EventTicker,
		IsInitialized: m.IsInitialized,
		ImageURL:      classify.ImageURL(m.EventTicker),
	}
}

// normalizeUnitPrice averages string-encoded [0,1] bid/ask, using whichever
// side parses when only one is usable, then last trade, then even odds.
func normalizeUnitPrice(bid, ask, last string) float64 {
	b, bOK := parseUnit(bid)
	a, aOK := parseUnit(ask)

	switch {
	case bOK && aOK:
		return (b + a) / 2
	case aOK:
		return a
	case bOK:
		return b
	}
	if l, ok := parseUnit(last); ok {
		return l
	}
	return 0.5
}

func parseUnit(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 || v >= 1 {
		return 0, false
	}
	return v, true
}

func normalizeStatus(s string) domain.MarketStatus {
	switch s {
	case "active", "open", "trading":
		return domain.MarketStatusActive
	case "settled":
		return domain.MarketStatusSettled
	default:
		return domain.MarketStatusClosed
	}
}
