package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/swipebet/swipebet/internal/domain"
)

// Archiver drains cache generations into long-term storage. Generations
// arrive via Enqueue (wired to the store's subscriber hook); the queue is
// bounded and drops the oldest pending snapshot under pressure, since a
// newer generation supersedes it anyway.
type Archiver struct {
	sink   domain.SnapshotArchiver
	queue  chan domain.FeedSnapshot
	logger *slog.Logger
}

// NewArchiver creates an Archiver writing to sink.
func NewArchiver(sink domain.SnapshotArchiver, logger *slog.Logger) *Archiver {
	return &Archiver{
		sink:   sink,
		queue:  make(chan domain.FeedSnapshot, 4),
		logger: logger.With(slog.String("component", "archiver")),
	}
}

// Enqueue queues a snapshot for archival. Never blocks.
func (a *Archiver) Enqueue(snap domain.FeedSnapshot) {
	for {
		select {
		case a.queue <- snap:
			return
		default:
		}
		select {
		case dropped := <-a.queue:
			a.logger.Warn("dropping superseded snapshot",
				slog.Int64("cache_timestamp", dropped.CacheTimestamp),
			)
		default:
		}
	}
}

// ArchiveNow uploads one snapshot synchronously, bypassing the queue. Used
// by the one-shot snapshot mode, where there is no consumer loop to drain it.
func (a *Archiver) ArchiveNow(ctx context.Context, snap domain.FeedSnapshot) error {
	return a.sink.Archive(ctx, snap)
}

// Run consumes the queue until the context is cancelled.
func (a *Archiver) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap := <-a.queue:
			a.archive(ctx, snap)
		}
	}
}

func (a *Archiver) archive(ctx context.Context, snap domain.FeedSnapshot) {
	archiveCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := a.sink.Archive(archiveCtx, snap); err != nil {
		a.logger.Error("snapshot archive failed",
			slog.Int64("cache_timestamp", snap.CacheTimestamp),
			slog.String("error", err.Error()),
		)
		return
	}
	a.logger.Info("snapshot archived",
		slog.Int64("cache_timestamp", snap.CacheTimestamp),
		slog.Int("markets", len(snap.Markets)),
	)
}
