package classify

import (
	"testing"

	"github.com/swipebet/swipebet/internal/domain"
)

func TestCategorizeTiers(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		ticker   string
		title    string
		want     string
	}{
		{"declared wins", "Politics", "KXBTC-25DEC", "Will bitcoin hit 200k?", domain.CategoryPolitics},
		{"declared case insensitive", "CRYPTO", "", "", domain.CategoryCrypto},
		{"ticker prefix", "", "KXFED-26MAR", "Will rates change?", domain.CategoryEconomics},
		{"longest prefix wins", "", "KXFEDCHAIR-26", "", domain.CategoryEconomics},
		{"ticker sports", "", "kxnba-26-lal", "", domain.CategorySports},
		{"keyword fallback", "", "", "Will Bitcoin close above 100k this year?", domain.CategoryCrypto},
		{"keyword entertainment", "", "", "Will the movie win an Oscar?", domain.CategoryEntertainment},
		{"unknown is general", "", "", "Will something unusual happen?", domain.CategoryGeneral},
		{"unknown declared falls through", "Whatever", "", "Will inflation exceed 3%?", domain.CategoryEconomics},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Categorize(tt.declared, tt.ticker, tt.title); got != tt.want {
				t.Errorf("Categorize(%q, %q, %q) = %s, want %s",
					tt.declared, tt.ticker, tt.title, got, tt.want)
			}
		})
	}
}

func TestCategorizeAIWordBoundary(t *testing.T) {
	// "ai" must match as a standalone word only, never inside another word.
	if got := Categorize("", "", "Will Said Air Group gain again this week?"); got == domain.CategoryAI {
		t.Errorf("embedded 'ai' matched AI category")
	}
	if got := Categorize("", "", "Will AI pass the bar exam?"); got != domain.CategoryAI {
		t.Errorf("standalone AI = %s, want %s", got, domain.CategoryAI)
	}
}

func TestReclassifyGeneral(t *testing.T) {
	tests := []struct {
		name                       string
		title, subtitle, eventTick string
		want                       string
	}{
		{"entertainment from title", "Will the film gross 1B?", "", "", domain.CategoryEntertainment},
		{"tech from subtitle", "Will it ship this year?", "Apple hardware", "", domain.CategoryTech},
		{"entertainment beats tech order", "Will the Netflix rocket documentary stream?", "", "", domain.CategoryEntertainment},
		{"politics", "Will the tariff take effect?", "", "", domain.CategoryPolitics},
		{"weather", "Highest temperature in NYC", "", "", domain.CategoryWeather},
		{"no match stays general", "Will the bridge be finished?", "", "", domain.CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReclassifyGeneral(tt.title, tt.subtitle, tt.eventTick); got != tt.want {
				t.Errorf("ReclassifyGeneral(%q, %q, %q) = %s, want %s",
					tt.title, tt.subtitle, tt.eventTick, got, tt.want)
			}
		})
	}
}

func TestIsParlay(t *testing.T) {
	tests := []struct {
		name          string
		title         string
		eventTicker   string
		multiVariable bool
		want          bool
	}{
		{"flagged upstream", "Will X happen?", "KXNBA-26", true, true},
		{"parlay prefix", "Chiefs and Eagles both win", "KXPARLAYNFL-26", false, true},
		{"season marker", "Team wins 50 games", "KXNBASZN-26-LAL", false, true},
		{"leg list title", "Yes Chiefs, Yes Eagles win Sunday", "", false, true},
		{"no leg list", "Will the Chiefs win on Sunday?", "KXNFL-26", false, false},
		{"plain market", "Will bitcoin hit 100k?", "KXBTC-25DEC", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsParlay(tt.title, tt.eventTicker, tt.multiVariable); got != tt.want {
				t.Errorf("IsParlay(%q, %q, %v) = %v, want %v",
					tt.title, tt.eventTicker, tt.multiVariable, got, tt.want)
			}
		})
	}
}

func TestIsBinaryQuestion(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"Will bitcoin close above 100k?", true},
		{"Which team will win the Finals?", false},
		{"Who will win the election?", false},
		{"How many hurricanes will there be this season?", false},
		{"How many rate cuts in 2026?", false},
		{"What will the Fed rate be in June?", false},
		{"Will the winner be decided by Tuesday?", true},
	}

	for _, tt := range tests {
		if got := IsBinaryQuestion(tt.title); got != tt.want {
			t.Errorf("IsBinaryQuestion(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}

func TestImageURL(t *testing.T) {
	tests := []struct {
		ticker string
		want   string
	}{
		{"KXBTC-25DEC31", "https://cdn.swipebet.app/series/kxbtc.png"},
		{"KXNBA", "https://cdn.swipebet.app/series/kxnba.png"},
		{"", "https://cdn.swipebet.app/series/default.png"},
	}

	for _, tt := range tests {
		if got := ImageURL(tt.ticker); got != tt.want {
			t.Errorf("ImageURL(%q) = %s, want %s", tt.ticker, got, tt.want)
		}
	}
}
