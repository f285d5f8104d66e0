package domain

import "context"

// SnapshotStore persists the last good feed snapshot so a restarted process
// can warm-start without reaching upstream. Implementations must tolerate a
// missing snapshot by returning ErrNotFound from Load.
type SnapshotStore interface {
	Save(ctx context.Context, snap FeedSnapshot) error
	Load(ctx context.Context) (FeedSnapshot, error)
}

// SnapshotArchiver writes a feed snapshot to long-term storage for offline
// analysis. Archival failures are never fatal to the feed pipeline.
type SnapshotArchiver interface {
	Archive(ctx context.Context, snap FeedSnapshot) error
}

// RateLimiter gates requests per key within a sliding window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, windowSeconds int) (bool, error)
}
