// Package classify assigns feed categories to markets and screens out market
// shapes the swipe UI cannot represent (multi-leg parlays, non-binary
// questions). Both upstream adapters normalize through this package so a
// market lands in the same category regardless of which source produced it.
package classify

import (
	"regexp"
	"sort"
	"strings"

	"github.com/swipebet/swipebet/internal/domain"
)

// declaredCategories maps upstream-declared category strings (lowercased) to
// feed categories. This is the highest-priority tier.
var declaredCategories = map[string]string{
	"politics":               domain.CategoryPolitics,
	"elections":              domain.CategoryPolitics,
	"world":                  domain.CategoryPolitics,
	"economics":              domain.CategoryEconomics,
	"economy":                domain.CategoryEconomics,
	"financials":             domain.CategoryEconomics,
	"companies":              domain.CategoryTech,
	"science and technology": domain.CategoryTech,
	"tech":                   domain.CategoryTech,
	"crypto":                 domain.CategoryCrypto,
	"cryptocurrency":         domain.CategoryCrypto,
	"climate and weather":    domain.CategoryWeather,
	"weather":                domain.CategoryWeather,
	"entertainment":          domain.CategoryEntertainment,
	"media":                  domain.CategoryEntertainment,
	"sports":                 domain.CategorySports,
}

// tickerPrefixes maps series-ticker prefixes to categories. Checked after the
// declared category, longest prefix first, so KXBTCUSD wins over KXBTC.
var tickerPrefixes = map[string]string{
	"KXFED":      domain.CategoryEconomics,
	"KXFEDCHAIR": domain.CategoryEconomics,
	"KXCPI":      domain.CategoryEconomics,
	"KXGDP":      domain.CategoryEconomics,
	"KXPAYROLL":  domain.CategoryEconomics,
	"KXRECESS":   domain.CategoryEconomics,
	"KXBTC":      domain.CategoryCrypto,
	"KXETH":      domain.CategoryCrypto,
	"KXSOL":      domain.CategoryCrypto,
	"KXDOGE":     domain.CategoryCrypto,
	"KXCRYPTO":   domain.CategoryCrypto,
	"KXAI":       domain.CategoryAI,
	"KXOPENAI":   domain.CategoryAI,
	"KXGPT":      domain.CategoryAI,
	"KXPRES":     domain.CategoryPolitics,
	"KXSENATE":   domain.CategoryPolitics,
	"KXHOUSE":    domain.CategoryPolitics,
	"KXGOV":      domain.CategoryPolitics,
	"KXCABINET":  domain.CategoryPolitics,
	"KXNBA":      domain.CategorySports,
	"KXNFL":      domain.CategorySports,
	"KXMLB":      domain.CategorySports,
	"KXNHL":      domain.CategorySports,
	"KXUFC":      domain.CategorySports,
	"KXUCL":      domain.CategorySports,
	"KXHIGH":     domain.CategoryWeather,
	"KXTEMP":     domain.CategoryWeather,
	"KXRAIN":     domain.CategoryWeather,
	"KXSNOW":     domain.CategoryWeather,
	"KXOSCAR":    domain.CategoryEntertainment,
	"KXGRAMMY":   domain.CategoryEntertainment,
	"KXEMMY":     domain.CategoryEntertainment,
	"KXBOXOFF":   domain.CategoryEntertainment,
	"KXROTTEN":   domain.CategoryEntertainment,
	"KXAAPL":     domain.CategoryTech,
	"KXTSLA":     domain.CategoryTech,
	"KXNVDA":     domain.CategoryTech,
	"KXLAUNCH":   domain.CategoryTech,
}

// sortedPrefixes caches tickerPrefixes keys ordered longest first so the most
// specific prefix always wins.
var sortedPrefixes = func() []string {
	keys := make([]string, 0, len(tickerPrefixes))
	for k := range tickerPrefixes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// keywordRule matches a category from title text. Short, ambiguous tokens set
// boundary so "AI" cannot match inside "said" or "again".
type keywordRule struct {
	category string
	token    string
	boundary bool
}

var keywordRules = []keywordRule{
	{domain.CategoryAI, "ai", true},
	{domain.CategoryAI, "openai", false},
	{domain.CategoryAI, "chatgpt", false},
	{domain.CategoryAI, "artificial intelligence", false},
	{domain.CategoryCrypto, "bitcoin", false},
	{domain.CategoryCrypto, "btc", true},
	{domain.CategoryCrypto, "ethereum", false},
	{domain.CategoryCrypto, "eth", true},
	{domain.CategoryCrypto, "solana", false},
	{domain.CategoryCrypto, "stablecoin", false},
	{domain.CategoryEconomics, "fed", true},
	{domain.CategoryEconomics, "interest rate", false},
	{domain.CategoryEconomics, "inflation", false},
	{domain.CategoryEconomics, "recession", false},
	{domain.CategoryEconomics, "gdp", true},
	{domain.CategoryPolitics, "president", false},
	{domain.CategoryPolitics, "election", false},
	{domain.CategoryPolitics, "senate", false},
	{domain.CategoryPolitics, "congress", false},
	{domain.CategoryPolitics, "supreme court", false},
	{domain.CategorySports, "super bowl", false},
	{domain.CategorySports, "nba", true},
	{domain.CategorySports, "nfl", true},
	{domain.CategorySports, "world cup", false},
	{domain.CategorySports, "championship", false},
	{domain.CategoryWeather, "temperature", false},
	{domain.CategoryWeather, "hurricane", false},
	{domain.CategoryWeather, "snowfall", false},
	{domain.CategoryWeather, "rainfall", false},
	{domain.CategoryEntertainment, "oscar", false},
	{domain.CategoryEntertainment, "grammy", false},
	{domain.CategoryEntertainment, "box office", false},
	{domain.CategoryEntertainment, "album", false},
	{domain.CategoryTech, "iphone", false},
	{domain.CategoryTech, "spacex", false},
	{domain.CategoryTech, "tesla", false},
	{domain.CategoryTech, "nvidia", false},
}

// boundaryPatterns caches compiled word-boundary regexps per token.
var boundaryPatterns = func() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp)
	for _, r := range keywordRules {
		if r.boundary {
			out[r.token] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(r.token) + `\b`)
		}
	}
	return out
}()

// Categorize resolves a market's feed category in three tiers: the
// upstream-declared category, the series-ticker prefix, and finally a keyword
// scan over the title. Unresolved markets get General.
func Categorize(declared, ticker, title string) string {
	if declared != "" {
		if cat, ok := declaredCategories[strings.ToLower(strings.TrimSpace(declared))]; ok {
			return cat
		}
	}

	upper := strings.ToUpper(ticker)
	for _, prefix := range sortedPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return tickerPrefixes[prefix]
		}
	}

	if cat := matchKeywords(title); cat != "" {
		return cat
	}
	return domain.CategoryGeneral
}

func matchKeywords(text string) string {
	lower := strings.ToLower(text)
	for _, r := range keywordRules {
		if r.boundary {
			if boundaryPatterns[r.token].MatchString(text) {
				return r.category
			}
			continue
		}
		if strings.Contains(lower, r.token) {
			return r.category
		}
	}
	return ""
}

// reclassifyFamilies are the topical regex families re-scanned over
// title+subtitle+eventTicker for markets still in General after adapter-time
// categorization. Order matters: first family to match wins.
var reclassifyFamilies = []struct {
	category string
	pattern  *regexp.Regexp
}{
	{domain.CategoryEntertainment, regexp.MustCompile(`(?i)\b(movie|film|song|album|taylor swift|netflix|streaming|celebrity|awards?)\b`)},
	{domain.CategoryTech, regexp.MustCompile(`(?i)\b(apple|google|microsoft|amazon|meta|iphone|semiconductor|chip|launch|rocket|starship)\b`)},
	{domain.CategoryAI, regexp.MustCompile(`(?i)\b(ai|agi|llm|openai|anthropic|gemini|model release)\b`)},
	{domain.CategoryPolitics, regexp.MustCompile(`(?i)\b(trump|congress|governor|parliament|prime minister|tariff|executive order|impeach)\b`)},
	{domain.CategoryWeather, regexp.MustCompile(`(?i)\b(temperature|degrees|rain|snow|storm|heat wave|hurricane)\b`)},
}

// ReclassifyGeneral gives a General market a second chance at a real
// category using broader patterns than adapter-time keyword matching.
// Returns General when nothing matches.
func ReclassifyGeneral(title, subtitle, eventTicker string) string {
	text := title + " " + subtitle + " " + eventTicker
	for _, f := range reclassifyFamilies {
		if f.pattern.MatchString(text) {
			return f.category
		}
	}
	return domain.CategoryGeneral
}
