package classify

import (
	"regexp"
	"strings"
)

// Ticker markers for compound markets. Parlay events carry a reserved series
// prefix; team-season props carry a season suffix in the event ticker.
const (
	parlayPrefix = "KXPARLAY"
	seasonMarker = "SZN"
)

// parlayTitle matches comma-separated "yes/no <option>" leg lists, e.g.
// "Yes Chiefs, Yes Eagles, No Cowboys".
var parlayTitle = regexp.MustCompile(`(?i)^(yes|no)\s.+,`)

// IsParlay reports whether a market is a multi-leg parlay. multiVariable is
// the upstream's explicit multi-variable-event flag; the ticker and title
// checks catch parlays the upstream does not flag.
func IsParlay(title, eventTicker string, multiVariable bool) bool {
	if multiVariable {
		return true
	}
	upper := strings.ToUpper(eventTicker)
	if strings.HasPrefix(upper, parlayPrefix) || strings.Contains(upper, seasonMarker) {
		return true
	}
	return parlayTitle.MatchString(title)
}

// nonBinaryPatterns match question forms the swipe UI cannot render as a
// yes/no card.
var nonBinaryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^which\b.*\bwill\b.*\bwin`),
	regexp.MustCompile(`(?i)\bhow many\b.*\bwill there be\b`),
	regexp.MustCompile(`(?i)^how many\b`),
	regexp.MustCompile(`(?i)^who will win\b`),
	regexp.MustCompile(`(?i)^what will\b.*\bbe\b`),
}

// IsBinaryQuestion reports whether a title reads as a yes/no question rather
// than a multiple-choice or numeric one.
func IsBinaryQuestion(title string) bool {
	for _, p := range nonBinaryPatterns {
		if p.MatchString(title) {
			return false
		}
	}
	return true
}
