package feed

import (
	"time"

	"github.com/swipebet/swipebet/internal/domain"
)

// boolPtr is a convenience for the mock set.
func boolPtr(b bool) *bool { return &b }

// MockMarkets is the last fallback tier: when a cold start cannot reach
// upstream and no snapshot exists, the feed serves this built-in set instead
// of an error. Ids use a reserved MOCK prefix so they can never collide with
// real tickers.
func MockMarkets() []domain.Market {
	end := time.Now().UTC().Add(30 * 24 * time.Hour).Format(time.RFC3339)

	markets := []domain.Market{
		{
			ID: "MOCKBTC-100K", Title: "Will Bitcoin close above $100,000 this month?",
			Category: domain.CategoryCrypto, YesPrice: 0.62, NoPrice: 0.38,
			YesLabel: "Yes", NoLabel: "No", Volume: 250000, Volume24h: 42000,
			EndDate: end, Status: domain.MarketStatusActive, EventTicker: "MOCKBTC",
			IsInitialized: boolPtr(true),
		},
		{
			ID: "MOCKFED-CUT", Title: "Will the Fed cut rates at the next meeting?",
			Category: domain.CategoryEconomics, YesPrice: 0.45, NoPrice: 0.55,
			YesLabel: "Yes", NoLabel: "No", Volume: 180000, Volume24h: 30000,
			EndDate: end, Status: domain.MarketStatusActive, EventTicker: "MOCKFED",
			IsInitialized: boolPtr(true),
		},
		{
			ID: "MOCKOSCAR-PICTURE", Title: "Will the favorite win Best Picture?",
			Category: domain.CategoryEntertainment, YesPrice: 0.71, NoPrice: 0.29,
			YesLabel: "Yes", NoLabel: "No", Volume: 95000, Volume24h: 12000,
			EndDate: end, Status: domain.MarketStatusActive, EventTicker: "MOCKOSCAR",
			IsInitialized: boolPtr(true),
		},
		{
			ID: "MOCKAI-RELEASE", Title: "Will a frontier AI model ship this quarter?",
			Category: domain.CategoryAI, YesPrice: 0.55, NoPrice: 0.45,
			YesLabel: "Yes", NoLabel: "No", Volume: 120000, Volume24h: 22000,
			EndDate: end, Status: domain.MarketStatusActive, EventTicker: "MOCKAI",
			IsInitialized: boolPtr(true),
		},
		{
			ID: "MOCKNBA-FINALS", Title: "Will the top seed reach the finals?",
			Category: domain.CategorySports, YesPrice: 0.58, NoPrice: 0.42,
			YesLabel: "Yes", NoLabel: "No", Volume: 300000, Volume24h: 51000,
			EndDate: end, Status: domain.MarketStatusActive, EventTicker: "MOCKNBA",
			IsInitialized: boolPtr(true),
		},
		{
			ID: "MOCKPRES-APPROVE", Title: "Will presidential approval stay above 45%?",
			Category: domain.CategoryPolitics, YesPrice: 0.39, NoPrice: 0.61,
			YesLabel: "Yes", NoLabel: "No", Volume: 210000, Volume24h: 28000,
			EndDate: end, Status: domain.MarketStatusActive, EventTicker: "MOCKPRES",
			IsInitialized: boolPtr(true),
		},
		{
			ID: "MOCKTEMP-NYC", Title: "Will NYC hit 90F this week?",
			Category: domain.CategoryWeather, YesPrice: 0.33, NoPrice: 0.67,
			YesLabel: "Yes", NoLabel: "No", Volume: 45000, Volume24h: 9000,
			EndDate: end, Status: domain.MarketStatusActive, EventTicker: "MOCKTEMP",
			IsInitialized: boolPtr(true),
		},
		{
			ID: "MOCKLAUNCH-Q3", Title: "Will the next orbital launch succeed?",
			Category: domain.CategoryTech, YesPrice: 0.81, NoPrice: 0.19,
			YesLabel: "Yes", NoLabel: "No", Volume: 60000, Volume24h: 15000,
			EndDate: end, Status: domain.MarketStatusActive, EventTicker: "MOCKLAUNCH",
			IsInitialized: boolPtr(true),
		},
	}
	stampPercentages(markets)
	return markets
}
