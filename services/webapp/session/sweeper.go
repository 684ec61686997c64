// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// SweeperConfig configures a Sweeper.
type SweeperConfig struct {
	// Interval between sweeps. Default: 1 minute
	Interval time.Duration

	// IdleTimeout is how long a session may go unused. Default: 30 minutes
	IdleTimeout time.Duration
}

// DefaultSweeperConfig returns the default sweep cadence.
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval:    time.Minute,
		IdleTimeout: 30 * time.Minute,
	}
}

// SweepResult summarizes one sweep.
type SweepResult struct {
	StartTime time.Time
	EndTime   time.Time
	Live      int
	Evicted   int
}

// Duration returns how long the sweep took.
func (r SweepResult) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Sweeper periodically evicts idle sessions from a Registry.
//
// # Description
//
// Start launches a ticker goroutine that sweeps once immediately and then
// every Interval. Stop or cancelling the Start context ends it. RunNow
// performs a synchronous sweep and works whether or not the loop runs.
//
// # Thread Safety
//
// Safe for concurrent use. Start may be called again after Stop.
type Sweeper struct {
	registry *Registry
	config   SweeperConfig

	mu      sync.Mutex
	running bool
	done    chan struct{}
	stopped chan struct{}
}

// NewSweeper creates a Sweeper for registry. Zero config fields take
// their defaults.
func NewSweeper(registry *Registry, config SweeperConfig) *Sweeper {
	defaults := DefaultSweeperConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = defaults.IdleTimeout
	}
	return &Sweeper{
		registry: registry,
		config:   config,
	}
}

// Start begins sweeping in the background.
//
// # Outputs
//
//   - error: Non-nil if the sweeper is already running.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("sweeper is already running")
	}
	s.running = true
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})

	slog.Info("Session sweeper starting",
		"interval", s.config.Interval.String(),
		"idle_timeout", s.config.IdleTimeout.String(),
	)

	go s.runLoop(ctx, s.done, s.stopped)
	return nil
}

// Stop ends the background loop and waits for it to exit. Stopping a
// sweeper that is not running is a no-op.
func (s *Sweeper) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.done)
	stopped := s.stopped
	s.mu.Unlock()

	<-stopped
	slog.Info("Session sweeper stopped")
	return nil
}

// Running reports whether the background loop is active.
func (s *Sweeper) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunNow performs one sweep synchronously.
func (s *Sweeper) RunNow(ctx context.Context) SweepResult {
	result := SweepResult{StartTime: s.registry.opts.Now()}
	if ctx.Err() == nil {
		result.Evicted = s.registry.Sweep(result.StartTime, s.config.IdleTimeout)
	}
	result.Live = s.registry.Len()
	result.EndTime = s.registry.opts.Now()
	return result
}

func (s *Sweeper) runLoop(ctx context.Context, done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			slog.Info("Session sweeper stopped (context cancelled)")
			return
		case <-done:
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	ctx, span := startSweepSpan(ctx)
	defer span.End()

	result := s.RunNow(ctx)
	setSweepSpanResult(span, result)
	recordSweepMetrics(ctx, result)
	if result.Evicted > 0 {
		slog.Info("Session sweep completed",
			"evicted", result.Evicted,
			"live", result.Live,
			"duration_ms", result.Duration().Milliseconds(),
		)
		return
	}
	slog.Debug("Session sweep completed (no idle sessions)", "live", result.Live)
}
