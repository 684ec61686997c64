// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the webapp.
//
// # Description
//
// Metrics cover:
//   - State store operations (by op and outcome)
//   - Session scopes (active gauge, opened/evicted counters)
//   - HTTP requests (counter and latency histogram by route and status)
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"strconv"
	"time"

	"github.com/AleutianAI/StreamlitLike/pkg/state"
	"github.com/AleutianAI/StreamlitLike/services/webapp/session"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "streamlit"

// Metrics holds the webapp's Prometheus collectors.
//
// # Fields
//
//   - StateOpsTotal: state operations by op (get, set, clear, remove) and
//     outcome (hit, default, stored, ignored, done)
//   - ActiveSessions: currently registered session scopes
//   - SessionsOpenedTotal: session scopes created
//   - SessionsEvictedTotal: session scopes removed, by reason (idle, explicit)
//   - HTTPRequestsTotal: requests by route, method and status
//   - HTTPRequestDuration: request latency by route and method
type Metrics struct {
	StateOpsTotal        *prometheus.CounterVec
	ActiveSessions       prometheus.Gauge
	SessionsOpenedTotal  prometheus.Counter
	SessionsEvictedTotal *prometheus.CounterVec
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
//
// # Inputs
//
//   - reg: Registerer to use. Tests pass a fresh prometheus.NewRegistry();
//     production passes prometheus.DefaultRegisterer.
//
// # Outputs
//
//   - *Metrics: Registered collectors.
//
// # Limitations
//
//   - Panics on duplicate registration against the same registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StateOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "state",
				Name:      "operations_total",
				Help:      "State store operations by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: "session",
				Name:      "active",
				Help:      "Number of live session scopes",
			},
		),
		SessionsOpenedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "session",
				Name:      "opened_total",
				Help:      "Total session scopes created",
			},
		),
		SessionsEvictedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "session",
				Name:      "evicted_total",
				Help:      "Total session scopes removed by reason",
			},
			[]string{"reason"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"route", "method"},
		),
	}

	reg.MustRegister(
		m.StateOpsTotal,
		m.ActiveSessions,
		m.SessionsOpenedTotal,
		m.SessionsEvictedTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// RecordStateOp implements state.Recorder.
func (m *Metrics) RecordStateOp(op state.Op, outcome state.Outcome) {
	m.StateOpsTotal.WithLabelValues(string(op), string(outcome)).Inc()
}

// SessionOpened records a new scope.
func (m *Metrics) SessionOpened() {
	m.SessionsOpenedTotal.Inc()
	m.ActiveSessions.Inc()
}

// SessionEvicted records a removed scope.
func (m *Metrics) SessionEvicted(reason session.EvictReason) {
	m.SessionsEvictedTotal.WithLabelValues(string(reason)).Inc()
	m.ActiveSessions.Dec()
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

var (
	_ state.Recorder   = (*Metrics)(nil)
	_ session.Observer = (*Metrics)(nil)
)
