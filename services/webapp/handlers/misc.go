// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the webapp's gin handlers.
package handlers

import (
	"net/http"

	"github.com/AleutianAI/StreamlitLike/services/webapp/middleware"
	"github.com/AleutianAI/StreamlitLike/services/webapp/session"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("streamlit.webapp.handlers")

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// NotFound answers unmatched routes with the request ID so a failure can
// be found in the access log.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":      "not found",
		"path":       c.Request.URL.Path,
		"request_id": middleware.GetRequestID(c),
	})
}

// requireSession returns the bound session or aborts with 500. Routes
// using it must be mounted behind middleware.SessionMiddleware.
func requireSession(c *gin.Context) (*session.Session, bool) {
	s := middleware.GetSession(c)
	if s == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "no session bound to request"})
		return nil, false
	}
	return s, true
}
