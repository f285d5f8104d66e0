// Package swipe tracks per-client swipe history so the feed can hold back
// recently seen markets.
package swipe

import (
	"sync"
	"time"
)

const (
	// DefaultSwipesBeforeReturn is how many further swipes must pass before
	// a swiped market may reappear in that client's feed.
	DefaultSwipesBeforeReturn = 100
	// DefaultClientTTL is how long an idle client's history is kept.
	DefaultClientTTL = 24 * time.Hour
)

// TrackerConfig tunes the tracker. Zero fields take defaults.
type TrackerConfig struct {
	SwipesBeforeReturn int
	ClientTTL          time.Duration
}

func (c *TrackerConfig) withDefaults() {
	if c.SwipesBeforeReturn <= 0 {
		c.SwipesBeforeReturn = DefaultSwipesBeforeReturn
	}
	if c.ClientTTL <= 0 {
		c.ClientTTL = DefaultClientTTL
	}
}

type clientHistory struct {
	counter        int
	swiped         map[string]int // market id -> counter value when swiped
	cacheTimestamp int64
	lastSeen       time.Time
}

// Tracker remembers which markets each client swiped and for how long they
// stay excluded. History is scoped to a cache generation: a new generation
// wipes it, since positions in the reshuffled feed no longer correspond.
type Tracker struct {
	cfg TrackerConfig
	now func() time.Time

	mu      sync.Mutex
	clients map[string]*clientHistory
}

// NewTracker creates a Tracker.
func NewTracker(cfg TrackerConfig) *Tracker {
	cfg.withDefaults()
	return &Tracker{
		cfg:     cfg,
		now:     time.Now,
		clients: make(map[string]*clientHistory),
	}
}

// RecordSwipes notes that clientID swiped the given markets, in order,
// against the given cache generation. Duplicate ids refresh the exclusion
// window rather than double-count.
func (t *Tracker) RecordSwipes(clientID string, marketIDs []string, cacheTimestamp int64) {
	if clientID == "" || len(marketIDs) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.history(clientID, cacheTimestamp)
	for _, id := range marketIDs {
		if id == "" {
			continue
		}
		h.counter++
		h.swiped[id] = h.counter
	}
	h.lastSeen = t.now()
}

// Exclusions returns the set of market ids still held back for clientID
// under the given cache generation. Entries past the return window are
// dropped as a side effect.
func (t *Tracker) Exclusions(clientID string, cacheTimestamp int64) map[string]struct{} {
	if clientID == "" {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.clients[clientID]
	if !ok || h.cacheTimestamp != cacheTimestamp {
		return nil
	}

	out := make(map[string]struct{}, len(h.swiped))
	for id, at := range h.swiped {
		if h.counter-at < t.cfg.SwipesBeforeReturn {
			out[id] = struct{}{}
		} else {
			delete(h.swiped, id)
		}
	}
	h.lastSeen = t.now()
	if len(out) == 0 {
		return nil
	}
	return out
}

// Reset drops all history for clientID.
func (t *Tracker) Reset(clientID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.clients, clientID)
}

// Prune drops clients idle longer than the configured TTL and returns how
// many were removed.
func (t *Tracker) Prune() int {
	cutoff := t.now().Add(-t.cfg.ClientTTL)
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for id, h := range t.clients {
		if h.lastSeen.Before(cutoff) {
			delete(t.clients, id)
			removed++
		}
	}
	return removed
}

// Clients reports how many client histories are held.
func (t *Tracker) Clients() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.clients)
}

// history returns the client record for the given generation, creating or
// resetting it as needed. Requires t.mu held.
func (t *Tracker) history(clientID string, cacheTimestamp int64) *clientHistory {
	h, ok := t.clients[clientID]
	if !ok || h.cacheTimestamp != cacheTimestamp {
		h = &clientHistory{
			swiped:         make(map[string]int),
			cacheTimestamp: cacheTimestamp,
			lastSeen:       t.now(),
		}
		t.clients[clientID] = h
	}
	return h
}
