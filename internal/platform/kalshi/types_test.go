package kalshi

import (
	"testing"
	"time"

	"github.com/swipebet/swipebet/internal/domain"
)

func TestNormalizeCentsPrice(t *testing.T) {
	tests := []struct {
		name           string
		bid, ask, last int64
		want           float64
	}{
		{"both sides", 40, 60, 0, 0.5},
		{"ask only", 0, 70, 0, 0.7},
		{"bid only", 30, 0, 0, 0.3},
		{"last trade fallback", 0, 0, 55, 0.55},
		{"no prices defaults even", 0, 0, 0, 0.5},
		{"both sides ignore last", 20, 40, 90, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeCentsPrice(tt.bid, tt.ask, tt.last); got != tt.want {
				t.Errorf("normalizeCentsPrice(%d, %d, %d) = %v, want %v",
					tt.bid, tt.ask, tt.last, got, tt.want)
			}
		})
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.MarketStatus
	}{
		{"active", domain.MarketStatusActive},
		{"open", domain.MarketStatusActive},
		{"settled", domain.MarketStatusSettled},
		{"finalized", domain.MarketStatusSettled},
		{"closed", domain.MarketStatusClosed},
		{"paused", domain.MarketStatusClosed},
		{"", domain.MarketStatusClosed},
	}

	for _, tt := range tests {
		if got := normalizeStatus(tt.raw); got != tt.want {
			t.Errorf("normalizeStatus(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestToDomainMarket(t *testing.T) {
	api := APIMarket{
		Ticker:         "KXBTC-25DEC31",
		EventTicker:    "KXBTC-25DEC",
		Title:          "Will Bitcoin close above $100,000?",
		Status:         "open",
		YesBid:         60,
		YesAsk:         64,
		Volume:         250000,
		Volume24H:      42000,
		ExpirationTime: "2025-12-31T23:59:00Z",
	}

	m := api.ToDomainMarket()

	if m.ID != "KXBTC-25DEC31" {
		t.Errorf("ID = %s", m.ID)
	}
	if m.YesPrice != 0.62 || m.NoPrice != 0.38 {
		t.Errorf("prices = %v/%v, want 0.62/0.38", m.YesPrice, m.NoPrice)
	}
	if m.YesLabel != "Yes" || m.NoLabel != "No" {
		t.Errorf("labels = %q/%q, want defaults", m.YesLabel, m.NoLabel)
	}
	if m.Category != domain.CategoryCrypto {
		t.Errorf("category = %s, want %s", m.Category, domain.CategoryCrypto)
	}
	if m.Status != domain.MarketStatusActive {
		t.Errorf("status = %v", m.Status)
	}
	if m.EndDate != "2025-12-31T23:59:00Z" {
		t.Errorf("end date = %s", m.EndDate)
	}
	if m.Volume != 250000 || m.Volume24h != 42000 {
		t.Errorf("volumes = %v/%v", m.Volume, m.Volume24h)
	}
	if m.ImageURL == "" {
		t.Error("image url not derived")
	}
}

func TestToDomainMarketKeepsOutcomeLabels(t *testing.T) {
	api := APIMarket{
		Ticker:      "KXPRES-28-D",
		Title:       "Will the Democrat win the presidency?",
		YesSubTitle: "Democrat",
		NoSubTitle:  "Any other party",
		Status:      "active",
	}

	m := api.ToDomainMarket()
	if m.YesLabel != "Democrat" || m.NoLabel != "Any other party" {
		t.Errorf("labels = %q/%q", m.YesLabel, m.NoLabel)
	}
}

func TestParseEndDate(t *testing.T) {
	if got := parseEndDate("2026-06-01T00:00:00Z", "2026-05-01T00:00:00Z"); got != "2026-06-01T00:00:00Z" {
		t.Errorf("expiration not preferred: %s", got)
	}
	if got := parseEndDate("", "2026-05-01T00:00:00Z"); got != "2026-05-01T00:00:00Z" {
		t.Errorf("close time not used: %s", got)
	}

	// Malformed dates fall back to a valid timestamp instead of erroring.
	got := parseEndDate("not-a-date", "also bad")
	if _, err := time.Parse(time.RFC3339, got); err != nil {
		t.Errorf("fallback end date %q is not RFC3339: %v", got, err)
	}
}

func TestAPIMarketIsParlay(t *testing.T) {
	parlay := APIMarket{Title: "Combo slip", EventTicker: "KXPARLAYNFL-26"}
	if !parlay.IsParlay() {
		t.Error("parlay ticker not flagged")
	}

	flagged := APIMarket{Title: "Will X happen?", MultiVariableEvent: true}
	if !flagged.IsParlay() {
		t.Error("multi-variable event not flagged")
	}

	plain := APIMarket{Title: "Will Bitcoin hit 100k?", EventTicker: "KXBTC-25DEC"}
	if plain.IsParlay() {
		t.Error("plain market flagged as parlay")
	}
}
