package feed

import (
	"math"

	"github.com/swipebet/swipebet/internal/domain"
)

// BalancedPercentages converts a yes/no price pair into integer display
// percentages that always sum to exactly 100, even when upstream prices are
// stale or inconsistent. Callers must use this instead of multiplying raw
// prices by 100.
//
// Degenerate pairs (non-finite or near-zero sum) render as even odds. Pairs
// that already sum to ~1 take the cheap path: round yes and derive no. Other
// pairs are renormalized by their sum, rounded independently, and any ±1
// rounding drift is absorbed by the larger side.
func BalancedPercentages(yesPrice, noPrice float64) (yesPercent, noPercent int) {
	sum := yesPrice + noPrice
	if math.IsNaN(sum) || math.IsInf(sum, 0) || sum < 0.01 {
		return 50, 50
	}

	if math.Abs(sum-1.0) <= 0.01 {
		yes := int(math.Round(yesPrice * 100))
		if yes < 0 {
			yes = 0
		}
		if yes > 100 {
			yes = 100
		}
		return yes, 100 - yes
	}

	yes := int(math.Round(yesPrice / sum * 100))
	no := int(math.Round(noPrice / sum * 100))

	if drift := yes + no - 100; drift != 0 {
		if yes >= no {
			yes -= drift
		} else {
			no -= drift
		}
	}

	return yes, no
}

// stampPercentages fills the display percentage pair on every market in
// place. Runs once per cache generation so serving paths never recompute.
func stampPercentages(markets []domain.Market) {
	for i := range markets {
		markets[i].YesPercent, markets[i].NoPercent =
			BalancedPercentages(markets[i].YesPrice, markets[i].NoPrice)
	}
}
