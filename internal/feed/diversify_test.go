package feed

import (
	"fmt"
	"testing"

	"github.com/swipebet/swipebet/internal/domain"
)

func activeMarket(id, category string, yesPrice, volume, volume24h float64) domain.Market {
	t := true
	return domain.Market{
		ID:            id,
		Title:         "Will market " + id + " resolve yes?",
		Category:      category,
		YesPrice:      yesPrice,
		NoPrice:       1 - yesPrice,
		Volume:        volume,
		Volume24h:     volume24h,
		Status:        domain.MarketStatusActive,
		IsInitialized: &t,
	}
}

func TestDiversifyStrictEligibility(t *testing.T) {
	f := false
	closed := activeMarket("closed", domain.CategoryCrypto, 0.5, 50000, 1000)
	closed.Status = domain.MarketStatusClosed
	uninitialized := activeMarket("uninit", domain.CategoryCrypto, 0.5, 50000, 1000)
	uninitialized.IsInitialized = &f
	parlay := activeMarket("parlay", domain.CategorySports, 0.5, 50000, 1000)
	parlay.EventTicker = "KXPARLAYNBA-25"
	nonBinary := activeMarket("nonbinary", domain.CategorySports, 0.5, 50000, 1000)
	nonBinary.Title = "Who will win the NBA Finals?"

	pool := []domain.Market{
		activeMarket("keep", domain.CategoryCrypto, 0.5, 50000, 1000),
		activeMarket("longshot", domain.CategoryCrypto, 0.05, 50000, 1000),
		activeMarket("lock", domain.CategoryCrypto, 0.95, 50000, 1000),
		activeMarket("thin", domain.CategoryCrypto, 0.5, 500, 1000),
		closed,
		uninitialized,
		parlay,
		nonBinary,
	}

	got := Diversify(pool, DefaultDiversifyOptions(true))
	if len(got) != 1 || got[0].ID != "keep" {
		ids := make([]string, 0, len(got))
		for _, m := range got {
			ids = append(ids, m.ID)
		}
		t.Fatalf("strict Diversify kept %v, want [keep]", ids)
	}
}

func TestDiversifyRelaxedBand(t *testing.T) {
	pool := []domain.Market{
		activeMarket("longshot", domain.CategoryCrypto, 0.05, 500, 10),
		activeMarket("extreme", domain.CategoryCrypto, 0.995, 500, 10),
		activeMarket("floor", domain.CategoryCrypto, 0.01, 500, 10),
	}

	got := Diversify(pool, DefaultDiversifyOptions(false))
	if len(got) != 1 || got[0].ID != "longshot" {
		t.Fatalf("relaxed Diversify kept %d markets, want only the 5%% longshot", len(got))
	}
}

func TestDiversifyDedupesByID(t *testing.T) {
	a := activeMarket("dup", domain.CategoryCrypto, 0.5, 50000, 2000)
	b := activeMarket("dup", domain.CategoryCrypto, 0.5, 50000, 1000)

	got := Diversify([]domain.Market{a, b}, DefaultDiversifyOptions(true))
	if len(got) != 1 {
		t.Fatalf("got %d markets, want 1 after dedup", len(got))
	}
}

func TestDiversifyInterleavesCategories(t *testing.T) {
	var pool []domain.Market
	// Three high-score crypto markets would own the top of a volume sort.
	pool = append(pool,
		activeMarket("c1", domain.CategoryCrypto, 0.5, 50000, 9000),
		activeMarket("c2", domain.CategoryCrypto, 0.5, 50000, 8000),
		activeMarket("c3", domain.CategoryCrypto, 0.5, 50000, 7000),
		activeMarket("s1", domain.CategorySports, 0.5, 50000, 100),
		activeMarket("e1", domain.CategoryEconomics, 0.5, 50000, 50),
	)
	for i := range pool {
		pool[i].EventTicker = "EV-" + pool[i].ID
	}

	got := Diversify(pool, DefaultDiversifyOptions(true))
	if len(got) != 5 {
		t.Fatalf("got %d markets, want 5", len(got))
	}

	// One market per represented category before any category repeats.
	seen := map[string]bool{}
	for i, m := range got[:3] {
		if seen[m.Category] {
			t.Fatalf("category %s repeated at position %d before rotation completed", m.Category, i)
		}
		seen[m.Category] = true
	}
}

func TestDiversifyCoversCategoriesAtScale(t *testing.T) {
	// Eight markets in each non-General category; 24h volume skewed so a
	// plain score sort would put all of Entertainment first.
	var pool []domain.Market
	for ci, category := range domain.FeedCategories[:8] {
		for i := 0; i < 8; i++ {
			id := fmt.Sprintf("m%d-%d", ci, i)
			m := activeMarket(id, category, 0.5, 50000, float64(80000-ci*10000-i))
			m.EventTicker = "EV-" + id
			pool = append(pool, m)
		}
	}

	got := Diversify(pool, DefaultDiversifyOptions(true))
	if len(got) != 64 {
		t.Fatalf("got %d markets, want 64", len(got))
	}

	distinct := map[string]bool{}
	for _, m := range got[:40] {
		distinct[m.Category] = true
	}
	if len(distinct) < 6 {
		t.Errorf("first 40 cards span %d categories, want at least 6", len(distinct))
	}
}

func TestDiversifySpacesEventSiblings(t *testing.T) {
	var pool []domain.Market
	for _, id := range []string{"a1", "a2"} {
		m := activeMarket(id, domain.CategoryPolitics, 0.5, 50000, 5000)
		m.EventTicker = "SHARED-EVENT"
		pool = append(pool, m)
	}
	for i, id := range []string{"x1", "x2", "x3", "x4", "x5", "x6"} {
		m := activeMarket(id, domain.CategorySports, 0.5, 50000, float64(1000-i))
		m.EventTicker = "EV-" + id
		pool = append(pool, m)
	}

	got := Diversify(pool, DefaultDiversifyOptions(true))
	if len(got) != 8 {
		t.Fatalf("got %d markets, want 8", len(got))
	}

	positions := []int{}
	for i, m := range got {
		if m.EventTicker == "SHARED-EVENT" {
			positions = append(positions, i)
		}
	}
	if len(positions) != 2 {
		t.Fatalf("expected both shared-event markets in output, got %v", positions)
	}
	if gap := positions[1] - positions[0]; gap < DefaultEventMinSpacing {
		t.Errorf("shared-event markets %d apart, want at least %d", gap, DefaultEventMinSpacing)
	}
}

func TestDiversifySpacingDegradesGracefully(t *testing.T) {
	// Every market shares one event, so spacing cannot be satisfied; the
	// engine must emit all of them anyway.
	var pool []domain.Market
	for _, id := range []string{"m1", "m2", "m3"} {
		m := activeMarket(id, domain.CategoryPolitics, 0.5, 50000, 1000)
		m.EventTicker = "ONLY-EVENT"
		pool = append(pool, m)
	}

	got := Diversify(pool, DefaultDiversifyOptions(true))
	if len(got) != 3 {
		t.Fatalf("got %d markets, want all 3 despite impossible spacing", len(got))
	}
}

func TestDiversifyReclassifiesGeneral(t *testing.T) {
	m := activeMarket("oscars", domain.CategoryGeneral, 0.5, 50000, 1000)
	m.Title = "Will the best picture award go to a sequel movie?"

	got := Diversify([]domain.Market{m}, DefaultDiversifyOptions(true))
	if len(got) != 1 {
		t.Fatalf("got %d markets, want 1", len(got))
	}
	if got[0].Category != domain.CategoryEntertainment {
		t.Errorf("category = %s, want %s", got[0].Category, domain.CategoryEntertainment)
	}
}

func TestDiversifyEmptyInput(t *testing.T) {
	if got := Diversify(nil, DefaultDiversifyOptions(true)); len(got) != 0 {
		t.Fatalf("got %d markets from empty pool", len(got))
	}
}
