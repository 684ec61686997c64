// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package observability

import (
	"testing"
	"time"

	"github.com/AleutianAI/StreamlitLike/pkg/state"
	"github.com/AleutianAI/StreamlitLike/services/webapp/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewMetrics(reg), reg
}

func TestNewMetrics_RegistersCollectors(t *testing.T) {
	m, reg := newTestMetrics(t)
	m.SessionOpened()
	m.RecordStateOp(state.OpGet, state.OutcomeHit)
	m.ObserveRequest("/health", "GET", 200, time.Millisecond)
	m.SessionEvicted(session.EvictIdle)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"streamlit_state_operations_total",
		"streamlit_session_active",
		"streamlit_session_opened_total",
		"streamlit_session_evicted_total",
		"streamlit_http_requests_total",
		"streamlit_http_request_duration_seconds",
	} {
		assert.True(t, names[want], "missing metric %s", want)
	}
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
}

func TestRecordStateOp(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordStateOp(state.OpSet, state.OutcomeStored)
	m.RecordStateOp(state.OpSet, state.OutcomeStored)
	m.RecordStateOp(state.OpGet, state.OutcomeDefault)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StateOpsTotal.WithLabelValues("set", "stored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StateOpsTotal.WithLabelValues("get", "default")))
}

func TestRecordStateOp_ThroughService(t *testing.T) {
	m, _ := newTestMetrics(t)
	svc := state.NewService(m)

	state.SetState(svc, "userName", "Alice")
	_ = state.GetState(svc, "userName", "")
	_ = state.GetState(svc, "userAge", 25.0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StateOpsTotal.WithLabelValues("set", "stored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StateOpsTotal.WithLabelValues("get", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StateOpsTotal.WithLabelValues("get", "default")))
}

func TestSessionGauge(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.SessionOpened()
	m.SessionOpened()
	m.SessionEvicted(session.EvictExplicit)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveSessions))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsOpenedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsEvictedTotal.WithLabelValues("explicit")))
}

func TestObserveRequest(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.ObserveRequest("/v1/demo", "GET", 200, 3*time.Millisecond)
	m.ObserveRequest("", "GET", 404, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/v1/demo", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("unmatched", "GET", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.HTTPRequestDuration))
}
