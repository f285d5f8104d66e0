package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/swipebet/swipebet/internal/domain"
	"github.com/swipebet/swipebet/internal/pipeline"
	"github.com/swipebet/swipebet/internal/server"
	"github.com/swipebet/swipebet/internal/server/handler"
)

// ServeMode runs the HTTP API with the background refresh loops. This is the
// normal production mode.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	srv := a.buildServer(deps)

	orch := pipeline.NewOrchestrator(a.logger)
	orch.Add("refresher", pipeline.NewRefresher(
		deps.Store,
		deps.Tokens,
		deps.Tracker,
		a.cfg.Feed.RefreshInterval.Duration,
		a.logger,
	))
	orch.Add("ws_hub", deps.Hub)
	if deps.Archiver != nil {
		orch.Add("archiver", deps.Archiver)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return orch.Run(ctx)
	})

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if ctx.Err() != nil {
		return context.Canceled
	}
	return err
}

// SnapshotMode performs one refresh pass, archives the resulting generation,
// and exits. Intended for cron-style capture of the market universe.
func (a *App) SnapshotMode(ctx context.Context, deps *Dependencies) error {
	a.logger.Info("running one-shot snapshot")

	if err := deps.Store.Refresh(ctx); err != nil {
		return fmt.Errorf("app: snapshot refresh: %w", err)
	}

	if deps.Archiver != nil {
		markets, ts := deps.Store.Pool(ctx)
		snap := domain.FeedSnapshot{Markets: markets, CacheTimestamp: ts}
		if err := deps.Archiver.ArchiveNow(ctx, snap); err != nil {
			return fmt.Errorf("app: snapshot archive: %w", err)
		}
	}

	a.logger.Info("snapshot complete")
	return nil
}

// FullMode runs an immediate snapshot pass and then serves. Useful for
// single-instance deployments that want an archived generation on boot.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	if err := deps.Store.Refresh(ctx); err != nil {
		// Serving can still proceed on the snapshot/mock tiers.
		a.logger.Warn("initial refresh failed, serving will rely on fallbacks",
			slog.String("error", err.Error()),
		)
	}
	return a.ServeMode(ctx, deps)
}

func (a *App) buildServer(deps *Dependencies) *server.Server {
	handlers := server.Handlers{
		Health:  handler.NewHealthHandler(deps.Service),
		Markets: handler.NewMarketHandler(deps.Service, trackerOrNil(deps), a.logger),
		Events:  handler.NewEventHandler(deps.Service, a.logger),
		Tokens:  handler.NewTokenHandler(deps.Service, a.logger),
		Metrics: deps.Metrics.Handler(),
	}

	return server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  a.cfg.Server.RateWindow.Duration,
	}, handlers, deps.Hub, deps.RateLimiter, a.logger)
}

// trackerOrNil avoids a typed-nil interface when swipe tracking is disabled.
func trackerOrNil(deps *Dependencies) handler.SwipeRecorder {
	if deps.Tracker == nil {
		return nil
	}
	return deps.Tracker
}
