package feed

import (
	"sort"

	"github.com/swipebet/swipebet/internal/classify"
	"github.com/swipebet/swipebet/internal/domain"
)

// Diversification defaults. The round-robin cooldown and the positional
// spacing window were tuned separately; they are deliberately independent
// knobs and neither subsumes the other.
const (
	DefaultEventCooldown   = 10
	DefaultEventMinSpacing = 5
	DefaultStrictMinVolume = 10000
)

// Probability bands. Strict mode is the swipe feed; relaxed mode is the
// discovery browse surface.
const (
	strictMinProb  = 0.10
	strictMaxProb  = 0.90
	relaxedMinProb = 0.01
	relaxedMaxProb = 0.99
)

// DiversifyOptions controls the ranking engine. The zero value is not
// usable; call DefaultDiversifyOptions and override.
type DiversifyOptions struct {
	// Strict selects the swipe-feed filters: tighter probability band,
	// initialized-only, and a volume floor.
	Strict bool
	// MinVolume is the strict-mode volume floor.
	MinVolume float64
	// EventCooldown is how many consecutive picks must pass before the
	// round-robin may pick another market from the same event.
	EventCooldown int
	// EventMinSpacing is the positional window enforced by the final
	// spacing pass across category boundaries.
	EventMinSpacing int
}

// DefaultDiversifyOptions returns the production engine configuration.
func DefaultDiversifyOptions(strict bool) DiversifyOptions {
	return DiversifyOptions{
		Strict:          strict,
		MinVolume:       DefaultStrictMinVolume,
		EventCooldown:   DefaultEventCooldown,
		EventMinSpacing: DefaultEventMinSpacing,
	}
}

// Diversify filters, scores, and reorders the market pool into the sequence
// served to swiping users. A pure volume sort lets two or three viral
// categories and sibling markets of one event dominate the first screens;
// the category round-robin plus the event-spacing pass trade a little
// ranking purity for perceived variety.
func Diversify(markets []domain.Market, opts DiversifyOptions) []domain.Market {
	eligible := filterEligible(markets, opts)
	eligible = dedupeByID(eligible)
	sortByScore(eligible)

	interleaved := interleaveCategories(eligible, opts.EventCooldown)
	return enforceEventSpacing(interleaved, opts.EventMinSpacing)
}

// filterEligible applies the eligibility rules: active status, probability
// band, parlay and non-binary screens, and in strict mode the initialized
// and volume floors. General markets get a reclassification pass here so
// the interleave sees their real category.
func filterEligible(markets []domain.Market, opts DiversifyOptions) []domain.Market {
	out := make([]domain.Market, 0, len(markets))
	for _, m := range markets {
		if m.Status != domain.MarketStatusActive {
			continue
		}
		if classify.IsParlay(m.Title, m.EventTicker, false) {
			continue
		}
		if !classify.IsBinaryQuestion(m.Title) {
			continue
		}
		if opts.Strict {
			if m.YesPrice < strictMinProb || m.YesPrice > strictMaxProb {
				continue
			}
			if m.IsInitialized != nil && !*m.IsInitialized {
				continue
			}
			if m.Volume < opts.MinVolume {
				continue
			}
		} else {
			if m.YesPrice <= relaxedMinProb || m.YesPrice >= relaxedMaxProb {
				continue
			}
		}
		if m.Category == domain.CategoryGeneral {
			m.Category = classify.ReclassifyGeneral(m.Title, m.Subtitle, m.EventTicker)
		}
		out = append(out, m)
	}
	return out
}

// dedupeByID drops repeated ids, first seen wins.
func dedupeByID(markets []domain.Market) []domain.Market {
	seen := make(map[string]struct{}, len(markets))
	out := markets[:0]
	for _, m := range markets {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}

// score is the display-quality pre-ordering: recent activity dominates, with
// lifetime volume as a weak tie-breaker. Not the final order.
func score(m domain.Market) float64 {
	return m.Volume24h*0.7 + m.Volume*0.0003
}

func sortByScore(markets []domain.Market) {
	sort.SliceStable(markets, func(i, j int) bool {
		return score(markets[i]) > score(markets[j])
	})
}

// interleaveCategories walks the fixed category order cyclically, popping the
// first market from each category queue whose event is off cooldown. A
// category whose every candidate is cooling down is skipped for the cycle;
// when every category has gone quiet for long enough the loop bails and the
// stragglers are appended queue by queue.
func interleaveCategories(markets []domain.Market, cooldown int) []domain.Market {
	if cooldown <= 0 {
		cooldown = DefaultEventCooldown
	}

	queues := make(map[string][]domain.Market, len(domain.FeedCategories))
	for _, m := range markets {
		cat := m.Category
		if !isFeedCategory(cat) {
			cat = domain.CategoryGeneral
		}
		queues[cat] = append(queues[cat], m)
	}

	out := make([]domain.Market, 0, len(markets))
	recent := make([]string, 0, cooldown)
	maxEmptyRounds := 2 * len(domain.FeedCategories)
	emptyRounds := 0

	for len(out) < len(markets) && emptyRounds < maxEmptyRounds {
		for _, cat := range domain.FeedCategories {
			q := queues[cat]
			if len(q) == 0 {
				continue
			}

			idx := -1
			for i := range q {
				if !containsKey(recent, q[i].EventKey()) {
					idx = i
					break
				}
			}
			if idx == -1 {
				// Whole queue is cooling down; empty round for this category.
				emptyRounds++
				continue
			}

			m := q[idx]
			queues[cat] = append(q[:idx:idx], q[idx+1:]...)
			out = append(out, m)
			emptyRounds = 0

			recent = append(recent, m.EventKey())
			if len(recent) > cooldown {
				recent = recent[1:]
			}
		}
	}

	// Anything still queued after the empty-round guard tripped goes in
	// queue order, category by category.
	for _, cat := range domain.FeedCategories {
		out = append(out, queues[cat]...)
	}

	return out
}

// enforceEventSpacing re-walks the interleaved list and keeps markets of the
// same event at least minSpacing positions apart. The round-robin only
// respects its own per-pick cooldown, not positions across category
// boundaries. When no pending market can be placed without a violation the
// next pending one is placed anyway rather than stalling the feed.
func enforceEventSpacing(markets []domain.Market, minSpacing int) []domain.Market {
	if minSpacing <= 1 || len(markets) < 2 {
		return markets
	}

	pending := append([]domain.Market(nil), markets...)
	out := make([]domain.Market, 0, len(markets))

	for len(pending) > 0 {
		placed := false
		for i := range pending {
			if !violatesSpacing(out, pending[i].EventKey(), minSpacing) {
				out = append(out, pending[i])
				pending = append(pending[:i], pending[i+1:]...)
				placed = true
				break
			}
		}
		if !placed {
			out = append(out, pending[0])
			pending = pending[1:]
		}
	}

	return out
}

// violatesSpacing reports whether key appears within the last minSpacing
// entries of out.
func violatesSpacing(out []domain.Market, key string, minSpacing int) bool {
	start := len(out) - minSpacing
	if start < 0 {
		start = 0
	}
	for _, m := range out[start:] {
		if m.EventKey() == key {
			return true
		}
	}
	return false
}

func isFeedCategory(cat string) bool {
	for _, c := range domain.FeedCategories {
		if c == cat {
			return true
		}
	}
	return false
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
