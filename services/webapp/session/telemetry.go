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
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for sweeps.
var (
	tracer = otel.Tracer("streamlit.session")
	meter  = otel.Meter("streamlit.session")
)

var (
	sweepLatency metric.Float64Histogram
	sweepTotal   metric.Int64Counter
	sweepEvicted metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the sweep instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		sweepLatency, err = meter.Float64Histogram(
			"streamlit_session_sweep_duration_seconds",
			metric.WithDescription("Duration of idle session sweeps"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		sweepTotal, err = meter.Int64Counter(
			"streamlit_session_sweeps",
			metric.WithDescription("Total number of idle session sweeps"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		sweepEvicted, err = meter.Int64Counter(
			"streamlit_session_sweep_evicted",
			metric.WithDescription("Sessions evicted by sweeps"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

func startSweepSpan(ctx context.Context) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Sweeper.Sweep")
}

func setSweepSpanResult(span trace.Span, result SweepResult) {
	span.SetAttributes(
		attribute.Int("session.evicted", result.Evicted),
		attribute.Int("session.live", result.Live),
	)
}

func recordSweepMetrics(ctx context.Context, result SweepResult) {
	if err := initMetrics(); err != nil {
		return
	}
	sweepLatency.Record(ctx, result.Duration().Seconds())
	sweepTotal.Add(ctx, 1)
	sweepEvicted.Add(ctx, int64(result.Evicted))
}
