package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/swipebet/swipebet/internal/domain"
)

// SnapshotArchiver persists feed generations to object storage for offline
// analysis of market churn and ranking behaviour. One object per generation,
// keyed by capture time.
type SnapshotArchiver struct {
	writer *Writer
	prefix string
}

// NewSnapshotArchiver creates a SnapshotArchiver writing under prefix
// (default "snapshots").
func NewSnapshotArchiver(writer *Writer, prefix string) *SnapshotArchiver {
	if prefix == "" {
		prefix = "snapshots"
	}
	return &SnapshotArchiver{
		writer: writer,
		prefix: prefix,
	}
}

// Archive serializes the snapshot and uploads it to
// <prefix>/YYYY/MM/DD/<cacheTimestamp>.json.
func (a *SnapshotArchiver) Archive(ctx context.Context, snap domain.FeedSnapshot) error {
	if len(snap.Markets) == 0 {
		return nil
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("s3blob: marshal snapshot: %w", err)
	}

	captured := time.UnixMilli(snap.CacheTimestamp).UTC()
	key := fmt.Sprintf("%s/%s/%d.json", a.prefix, captured.Format("2006/01/02"), snap.CacheTimestamp)

	if int64(len(data)) > minPartSize {
		if err := a.writer.PutMultipart(ctx, key, bytes.NewReader(data), "application/json", minPartSize); err != nil {
			return fmt.Errorf("s3blob: archive snapshot %s: %w", key, err)
		}
		return nil
	}

	if err := a.writer.Put(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("s3blob: archive snapshot %s: %w", key, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SnapshotArchiver = (*SnapshotArchiver)(nil)
