package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Runner is a background loop that blocks until its context is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// namedRunner pairs a Runner with a label for error wrapping and logs.
type namedRunner struct {
	name   string
	runner Runner
}

// Orchestrator supervises the background loops (refresher, archiver,
// websocket hub) under one errgroup. Context cancellation is a clean stop;
// any other failure tears the group down.
type Orchestrator struct {
	runners []namedRunner
	logger  *slog.Logger
}

// NewOrchestrator creates an empty Orchestrator.
func NewOrchestrator(logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		logger: logger.With(slog.String("component", "orchestrator")),
	}
}

// Add registers a named background loop. Nil runners are ignored so callers
// can wire optional components unconditionally.
func (o *Orchestrator) Add(name string, r Runner) {
	if r == nil {
		return
	}
	o.runners = append(o.runners, namedRunner{name: name, runner: r})
}

// Run starts every registered loop and blocks until all have stopped.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("starting background loops", slog.Int("count", len(o.runners)))

	g, ctx := errgroup.WithContext(ctx)
	for _, nr := range o.runners {
		g.Go(func() error {
			o.logger.Info("loop started", slog.String("loop", nr.name))
			err := nr.runner.Run(ctx)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("pipeline: %s: %w", nr.name, err)
		})
	}

	if err := g.Wait(); err != nil {
		o.logger.Error("background loops stopped with error", slog.String("error", err.Error()))
		return err
	}
	o.logger.Info("background loops stopped cleanly")
	return nil
}
