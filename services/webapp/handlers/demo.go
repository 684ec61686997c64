// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/AleutianAI/StreamlitLike/services/webapp/datatypes"
	"github.com/AleutianAI/StreamlitLike/services/webapp/demo"
	"github.com/AleutianAI/StreamlitLike/services/webapp/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetHome returns the landing page model.
func GetHome(c *gin.Context) {
	c.JSON(http.StatusOK, demo.HomeView())
}

// GetPrivacy returns the privacy page model.
func GetPrivacy(c *gin.Context) {
	c.JSON(http.StatusOK, demo.PrivacyView())
}

// GetDemo returns the demo page model built from the session's state.
func GetDemo(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, demo.BuildDemoView(s.Service()))
}

// SubmitUserData saves the user form into the session's state.
//
// Accepts JSON or form-encoded bodies. Omitted fields keep their stored
// values.
func SubmitUserData(c *gin.Context) {
	_, span := tracer.Start(c.Request.Context(), "SubmitUserData")
	defer span.End()

	s, ok := requireSession(c)
	if !ok {
		return
	}

	var req datatypes.UserDataRequest
	if err := c.ShouldBind(&req); err != nil {
		slog.Warn("Invalid user data body", "error", err, "request_id", middleware.GetRequestID(c))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("User data failed validation", "error", err, "request_id", middleware.GetRequestID(c))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := demo.ApplyUserData(s.Service(), req)
	span.SetAttributes(attribute.Int("state.keys", s.Service().State().Len()))
	slog.Info("Saved user data", "session_id", s.ID, "keys", s.Service().State().Keys())
	c.JSON(http.StatusOK, resp)
}

// Calculate evaluates a calculator submission.
func Calculate(c *gin.Context) {
	var req datatypes.CalculateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, demo.Calculate(req.FirstNumber, req.SecondNumber, req.Operation))
}
