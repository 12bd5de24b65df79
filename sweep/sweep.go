// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package sweep periodically closes elections whose end has passed. Reads
// close elections on their own; the sweep only keeps stored flags and audit
// entries current for elections nobody reads.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Closer closes every due election and reports how many it closed.
type Closer interface {
	SweepClosed(ctx context.Context) (int, error)
}

type Sweeper struct {
	cron   *cron.Cron
	closer Closer
	ctx    context.Context
	cancel context.CancelFunc
}

// New schedules the sweep on a cron spec such as "@every 1m" or "*/5 * * * *".
func New(spec string, closer Closer) (*Sweeper, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Sweeper{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		closer: closer,
		ctx:    ctx,
		cancel: cancel,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(s.ctx) }); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid close sweep schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Sweeper) Start() {
	slog.Info("close sweep started")
	s.cron.Start()
}

// Stop cancels a running pass and waits for it to return.
func (s *Sweeper) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	slog.Info("close sweep stopped")
}

// RunOnce performs a single pass.
func (s *Sweeper) RunOnce(ctx context.Context) {
	start := time.Now()
	n, err := s.closer.SweepClosed(ctx)
	if err != nil {
		slog.Error("close sweep failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("close sweep completed",
			"closed", n,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
