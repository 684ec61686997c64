// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package webapp

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AleutianAI/StreamlitLike/services/webapp/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Setup
// =============================================================================

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.GinMode = "test"
	cfg.Telemetry.TraceExporter = "none"
	cfg.Telemetry.MetricExporter = "none"
	return cfg
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

// =============================================================================
// Constructor Tests
// =============================================================================

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Port = 0

	_, err := New(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestNew_MountsRoutes(t *testing.T) {
	svc, err := New(testConfig(), nil)
	require.NoError(t, err)

	paths := make(map[string]bool)
	for _, r := range svc.Router().Routes() {
		paths[r.Method+" "+r.Path] = true
	}
	assert.True(t, paths["GET /health"])
	assert.True(t, paths["GET /metrics"])
	assert.True(t, paths["POST /v1/demo/user"])
}

func TestNew_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.EnableMetrics = false
	cfg.Telemetry.MetricExporter = "prometheus"

	svc, err := New(cfg, nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	svc.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// =============================================================================
// Request Flow Tests
// =============================================================================

func TestRouter_SessionStateFlow(t *testing.T) {
	svc, err := New(testConfig(), nil)
	require.NoError(t, err)
	router := svc.Router()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/demo/user",
		strings.NewReader(`{"user_name":"Alice","user_age":30,"favorite_color":"Purple"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/state/userAge", nil)
	req.AddCookie(cookies[0])
	router.ServeHTTP(w, req)
	assert.JSONEq(t, `{"key":"userAge","present":true,"value":30}`, w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/v1/session", nil)
	req.AddCookie(cookies[0])
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, svc.Registry().Len())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, `streamlit_state_operations_total{op="set",outcome="stored"} 3`)
	assert.Contains(t, body, `streamlit_session_evicted_total{reason="explicit"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestRouter_RateLimitPerSession(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.RPS = 0.001
	cfg.RateLimit.Burst = 2

	svc, err := New(cfg, nil)
	require.NoError(t, err)
	router := svc.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/demo", nil))
	cookie := w.Result().Cookies()[0]

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/demo", nil)
		req.AddCookie(cookie)
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code, "health is not rate limited")
}

func TestRouter_CookielessRequestsAreBounded(t *testing.T) {
	cfg := testConfig()
	cfg.Session.MaxSessions = 25

	svc, err := New(cfg, nil)
	require.NoError(t, err)
	router := svc.Router()

	unavailable := 0
	for i := 0; i < 500; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/home", nil))
		if w.Code == http.StatusServiceUnavailable {
			unavailable++
		}
	}

	assert.Equal(t, 25, svc.Registry().Len())
	assert.Equal(t, 475, unavailable)
}

func TestNew_RejectsZeroBurst(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Burst = 0

	_, err := New(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

// =============================================================================
// Lifecycle Tests
// =============================================================================

func TestRun_ServesUntilCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.Port = freePort(t)
	svc, err := New(cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_PortInUse(t *testing.T) {
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer l.Close()

	cfg := testConfig()
	cfg.Port = l.Addr().(*net.TCPAddr).Port
	svc, err := New(cfg, nil)
	require.NoError(t, err)

	err = svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server")
}
