package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/swipebet/swipebet/internal/domain"
)

const snapshotKey = "feed:snapshot"

// defaultSnapshotTTL bounds how old a warm-start snapshot may be. A restart
// after a long outage should fall through to mock data, not serve a feed of
// long-expired markets.
const defaultSnapshotTTL = 24 * time.Hour

// SnapshotStore persists the last good feed generation in Redis so a
// restarted process can warm-start without reaching upstream.
type SnapshotStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSnapshotStore creates a SnapshotStore. ttl <= 0 takes the default.
func NewSnapshotStore(c *Client, ttl time.Duration) *SnapshotStore {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &SnapshotStore{
		rdb: c.Underlying(),
		ttl: ttl,
	}
}

// Save stores the snapshot, replacing any previous one.
func (s *SnapshotStore) Save(ctx context.Context, snap domain.FeedSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: marshal snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, snapshotKey, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis: save snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or domain.ErrNotFound when none exists.
func (s *SnapshotStore) Load(ctx context.Context) (domain.FeedSnapshot, error) {
	data, err := s.rdb.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.FeedSnapshot{}, fmt.Errorf("redis: load snapshot: %w", domain.ErrNotFound)
		}
		return domain.FeedSnapshot{}, fmt.Errorf("redis: load snapshot: %w", err)
	}

	var snap domain.FeedSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.FeedSnapshot{}, fmt.Errorf("redis: decode snapshot: %w", err)
	}
	return snap, nil
}

// Compile-time interface check.
var _ domain.SnapshotStore = (*SnapshotStore)(nil)
