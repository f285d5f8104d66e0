package pond

import (
	"testing"

	"github.com/swipebet/swipebet/internal/domain"
)

func TestNormalizeUnitPrice(t *testing.T) {
	tests := []struct {
		name           string
		bid, ask, last string
		want           float64
	}{
		{"both sides", "0.4", "0.6", "", 0.5},
		{"ask only", "", "0.7", "", 0.7},
		{"bid only", "0.3", "", "", 0.3},
		{"last trade fallback", "", "", "0.55", 0.55},
		{"empty defaults even", "", "", "", 0.5},
		{"garbage defaults even", "abc", "-1", "2.5", 0.5},
		{"out of range side skipped", "0", "0.8", "", 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeUnitPrice(tt.bid, tt.ask, tt.last); got != tt.want {
				t.Errorf("normalizeUnitPrice(%q, %q, %q) = %v, want %v",
					tt.bid, tt.ask, tt.last, got, tt.want)
			}
		})
	}
}

func TestResolveTokensPrefersUSDC(t *testing.T) {
	resp := MarketTokenResponse{
		Ticker: "mkt-1",
		Ledgers: map[string]MarketLedger{
			"AaaOtherMint": {YesMint: "other-yes", NoMint: "other-no", IsInitialized: true},
			usdcMint:       {YesMint: "usdc-yes", NoMint: "usdc-no", IsInitialized: true},
		},
	}

	info, ok := resp.ResolveTokens()
	if !ok {
		t.Fatal("resolution failed")
	}
	if info.YesMint != "usdc-yes" || info.NoMint != "usdc-no" {
		t.Errorf("mints = %s/%s, want the USDC ledger", info.YesMint, info.NoMint)
	}
	if info.MarketID != "mkt-1" {
		t.Errorf("market id = %s", info.MarketID)
	}
	if info.CachedAt == 0 {
		t.Error("cached-at not stamped")
	}
}

func TestResolveTokensSortedKeyFallback(t *testing.T) {
	resp := MarketTokenResponse{
		Ticker: "mkt-1",
		Ledgers: map[string]MarketLedger{
			"Bbb": {YesMint: "b-yes", NoMint: "b-no"},
			"Aaa": {YesMint: "a-yes", NoMint: "a-no"},
		},
	}

	info, ok := resp.ResolveTokens()
	if !ok {
		t.Fatal("resolution failed")
	}
	if info.YesMint != "a-yes" {
		t.Errorf("yes mint = %s, want the lowest sorted key's ledger", info.YesMint)
	}
}

func TestResolveTokensSkipsIncompleteLedgers(t *testing.T) {
	resp := MarketTokenResponse{
		Ticker: "mkt-1",
		Ledgers: map[string]MarketLedger{
			"Aaa":    {YesMint: "a-yes"},
			"Bbb":    {YesMint: "b-yes", NoMint: "b-no"},
			usdcMint: {NoMint: "usdc-no"},
		},
	}

	info, ok := resp.ResolveTokens()
	if !ok {
		t.Fatal("resolution failed")
	}
	if info.YesMint != "b-yes" {
		t.Errorf("yes mint = %s, want the complete ledger", info.YesMint)
	}
}

func TestResolveTokensNoCompleteLedger(t *testing.T) {
	resp := MarketTokenResponse{
		Ticker:  "mkt-1",
		Ledgers: map[string]MarketLedger{"Aaa": {YesMint: "a-yes"}},
	}
	if _, ok := resp.ResolveTokens(); ok {
		t.Error("incomplete ledgers resolved")
	}

	empty := MarketTokenResponse{Ticker: "mkt-2"}
	if _, ok := empty.ResolveTokens(); ok {
		t.Error("empty ledger map resolved")
	}
}

func TestPondToDomainMarket(t *testing.T) {
	init := true
	api := APIMarket{
		Ticker:        "KXAI-26-AGI",
		EventTicker:   "KXAI-26",
		Title:         "Will AGI be declared this year?",
		Status:        "trading",
		YesBid:        "0.25",
		YesAsk:        "0.75",
		Volume:        90000,
		Volume24h:     12000,
		CloseTime:     "2026-12-31T23:59:00Z",
		IsInitialized: &init,
	}

	m := api.ToDomainMarket()

	if m.YesPrice != 0.5 {
		t.Errorf("yes price = %v, want 0.5", m.YesPrice)
	}
	if m.Category != domain.CategoryAI {
		t.Errorf("category = %s, want %s", m.Category, domain.CategoryAI)
	}
	if m.Status != domain.MarketStatusActive {
		t.Errorf("status = %v", m.Status)
	}
	if m.EndDate != "2026-12-31T23:59:00Z" {
		t.Errorf("end date = %s", m.EndDate)
	}
	if m.IsInitialized == nil || !*m.IsInitialized {
		t.Error("initialization flag lost")
	}
}

func TestPondToDomainMarketMalformedCloseTime(t *testing.T) {
	api := APIMarket{Ticker: "KXBTC-26", Title: "Will it close up?", CloseTime: "soon"}
	m := api.ToDomainMarket()
	if m.EndDate == "soon" || m.EndDate == "" {
		t.Errorf("malformed close time not replaced: %q", m.EndDate)
	}
}
