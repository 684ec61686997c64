// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides gin middleware for the webapp.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AleutianAI/StreamlitLike/services/webapp/session"
	"github.com/gin-gonic/gin"
)

// sessionKey is the gin context key for the bound *session.Session.
const sessionKey = "streamlit_session"

// SessionOptions configures SessionMiddleware.
type SessionOptions struct {
	// CookieName carries the session ID.
	CookieName string

	// MaxAge is the cookie lifetime in seconds. 0 makes a browser-session cookie.
	MaxAge int

	// Secure sets the cookie's Secure attribute.
	Secure bool
}

// SetSession stores s in the gin context.
func SetSession(c *gin.Context, s *session.Session) {
	c.Set(sessionKey, s)
}

// GetSession returns the session bound by SessionMiddleware, or nil.
func GetSession(c *gin.Context) *session.Session {
	if v, exists := c.Get(sessionKey); exists {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	return nil
}

// SessionMiddleware binds every request to a session scope.
//
// # Description
//
// Reads the session cookie, opens (or creates) the session in registry,
// refreshes the cookie, and enforces the session's rate limit. Requests
// over the limit are aborted with 429. When the registry is at capacity,
// requests that would need a new session are aborted with 503.
func SessionMiddleware(registry *session.Registry, opts SessionOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(opts.CookieName)

		s, created, err := registry.Open(id)
		if errors.Is(err, session.ErrRegistryFull) {
			slog.Warn("Session registry full", "live", registry.Len(), "request_id", GetRequestID(c))
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "too many active sessions",
			})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to open session"})
			return
		}
		if created {
			slog.Debug("Opened session", "session_id", s.ID, "request_id", GetRequestID(c))
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(opts.CookieName, s.ID, opts.MaxAge, "/", "", opts.Secure, true)
		SetSession(c, s)

		if !s.Allow() {
			slog.Warn("Session rate limited", "session_id", s.ID, "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
