package domain

// MarketStatus represents the lifecycle state of a market.
type MarketStatus string

const (
	MarketStatusActive  MarketStatus = "active"
	MarketStatusClosed  MarketStatus = "closed"
	MarketStatusSettled MarketStatus = "settled"
)

// Feed categories, in the priority order the diversification engine walks
// them. CategoryGeneral is the overflow bucket for anything unclassified.
const (
	CategoryEntertainment = "Entertainment"
	CategoryTech          = "Tech"
	CategoryAI            = "AI"
	CategoryCrypto        = "Crypto"
	CategoryEconomics     = "Economics"
	CategoryWeather       = "Weather"
	CategoryPolitics      = "Politics"
	CategorySports        = "Sports"
	CategoryGeneral       = "General"
)

// FeedCategories is the fixed category rotation used by the diversification
// engine. General always comes last as the overflow bucket.
var FeedCategories = []string{
	CategoryEntertainment,
	CategoryTech,
	CategoryAI,
	CategoryCrypto,
	CategoryEconomics,
	CategoryWeather,
	CategoryPolitics,
	CategorySports,
	CategoryGeneral,
}

// Market is the normalized, read-only snapshot of a binary prediction market
// as served in the swipe feed. Markets are replaced wholesale on each cache
// refresh; they are never mutated in place.
type Market struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Subtitle    string       `json:"subtitle,omitempty"`
	Category    string       `json:"category"`
	YesPrice    float64      `json:"yesPrice"`
	NoPrice     float64      `json:"noPrice"`
	YesPercent  int          `json:"yesPercent"`
	NoPercent   int          `json:"noPercent"`
	YesLabel    string       `json:"yesLabel"`
	NoLabel     string       `json:"noLabel"`
	Volume      float64      `json:"volume"`
	Volume24h   float64      `json:"volume24h"`
	EndDate     string       `json:"endDate"`
	Status      MarketStatus `json:"status"`
	EventTicker string       `json:"eventTicker,omitempty"`
	// IsInitialized reports whether the market's on-chain settlement accounts
	// exist. Nil means the settlement API has not told us; explicitly false
	// markets may appear in relaxed browse contexts but never in the strict
	// swipe feed.
	IsInitialized *bool  `json:"isInitialized,omitempty"`
	ImageURL      string `json:"imageUrl,omitempty"`
}

// EventKey returns the identity used for event-spacing: the event ticker when
// present, otherwise the market's own id.
func (m Market) EventKey() string {
	if m.EventTicker != "" {
		return m.EventTicker
	}
	return m.ID
}

// MarketTokenInfo maps a market to its on-chain outcome token pair. Token
// identities change far less often than prices, so they are cached with a
// longer TTL than the market list and served stale through upstream outages.
type MarketTokenInfo struct {
	MarketID      string `json:"marketId"`
	YesMint       string `json:"yesMint"`
	NoMint        string `json:"noMint"`
	IsInitialized bool   `json:"isInitialized"`
	CachedAt      int64  `json:"cachedAt"`
}

// FeedQuery carries pagination parameters for the swipe feed endpoint.
// ExcludeIDs holds ids the client has already seen this session; they are
// filtered out before the offset/limit window is applied.
type FeedQuery struct {
	Limit      int
	Offset     int
	ExcludeIDs map[string]struct{}
	// ClientID, when set, merges that client's server-side swipe history
	// into the exclusion set.
	ClientID string
}

// FeedPage is one page of the diversified feed. CacheTimestamp identifies the
// cache generation the page was served from; clients reset their local swipe
// history when it changes.
type FeedPage struct {
	Markets        []Market `json:"markets"`
	CacheTimestamp int64    `json:"cacheTimestamp"`
	Total          int      `json:"total"`
	HasMore        bool     `json:"hasMore"`
}

// FeedSnapshot is the full cached market set plus its generation timestamp,
// as persisted to the warm-start snapshot store and the archive.
type FeedSnapshot struct {
	Markets        []Market `json:"markets"`
	CacheTimestamp int64    `json:"cacheTimestamp"`
}
