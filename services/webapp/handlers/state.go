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

	"github.com/AleutianAI/StreamlitLike/pkg/validation"
	"github.com/AleutianAI/StreamlitLike/services/webapp/session"
	"github.com/gin-gonic/gin"
)

// GetState returns every key and value in the session's state.
func GetState(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snapshotOf(s))
}

// GetStateKey reports whether :key is present and its value.
// A missing key is not an error.
func GetStateKey(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	key, ok := stateKeyParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, entryOf(s.Service(), key))
}

// DeleteStateKey removes :key. Removing an absent key succeeds.
func DeleteStateKey(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	key, ok := stateKeyParam(c)
	if !ok {
		return
	}
	s.Service().RemoveState(key)
	c.JSON(http.StatusOK, gin.H{"status": "success", "removed_key": key})
}

// ClearState removes every key from the session's state.
func ClearState(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	s.Service().ClearState()
	slog.Info("Cleared session state", "session_id", s.ID)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// EndSession drops the session scope and its state.
func EndSession(registry *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := requireSession(c)
		if !ok {
			return
		}
		registry.Delete(s.ID)
		slog.Info("Ended session", "session_id", s.ID)
		c.JSON(http.StatusOK, gin.H{"status": "success", "deleted_session_id": s.ID})
	}
}

// stateKeyParam returns the validated :key path parameter or responds 400.
func stateKeyParam(c *gin.Context) (string, bool) {
	key := c.Param("key")
	if err := validation.ValidateStateKey(key); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return key, true
}
