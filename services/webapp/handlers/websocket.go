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
	"sort"

	"github.com/AleutianAI/StreamlitLike/pkg/state"
	"github.com/AleutianAI/StreamlitLike/pkg/validation"
	"github.com/AleutianAI/StreamlitLike/services/webapp/datatypes"
	"github.com/AleutianAI/StreamlitLike/services/webapp/session"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// maxStateMessageBytes bounds a single client message.
const maxStateMessageBytes = 64 * 1024

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

func sendJSON(ws *websocket.Conn, v any) error {
	err := ws.WriteJSON(v)
	if err != nil {
		slog.Warn("Failed to write WebSocket JSON", "error", err)
	}
	return err
}

// HandleStateWebSocket serves an interactive channel onto the session's
// state.
//
// # Description
//
// The session is bound by the upgrade request's cookie. The server sends a
// "snapshot" event on connect, then answers each StateCommand with one
// StateEvent: "value" for get and set, "removed", "cleared", "snapshot",
// or "error". Every command counts against the session's rate limit.
func HandleStateWebSocket(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("failed to upgrade the websocket", "error", err)
		return
	}
	defer ws.Close()
	ws.SetReadLimit(maxStateMessageBytes)
	slog.Info("State websocket connected", "session_id", s.ID)

	if err := sendJSON(ws, datatypes.StateEvent{
		Action:   datatypes.StateActionSnapshot,
		Snapshot: snapshotOf(s),
	}); err != nil {
		return
	}

	for {
		var cmd datatypes.StateCommand
		if err := ws.ReadJSON(&cmd); err != nil {
			slog.Info("State websocket disconnected", "session_id", s.ID, "error", err.Error())
			return
		}
		if err := sendJSON(ws, applyStateCommand(s, cmd)); err != nil {
			return
		}
	}
}

func applyStateCommand(s *session.Session, cmd datatypes.StateCommand) datatypes.StateEvent {
	if !s.Allow() {
		return datatypes.StateEvent{Action: "error", Error: "rate limit exceeded"}
	}

	svc := s.Service()
	switch cmd.Action {
	case datatypes.StateActionSnapshot:
		return datatypes.StateEvent{Action: datatypes.StateActionSnapshot, Snapshot: snapshotOf(s)}

	case datatypes.StateActionClear:
		svc.ClearState()
		return datatypes.StateEvent{Action: "cleared"}

	case datatypes.StateActionGet, datatypes.StateActionSet, datatypes.StateActionRemove:
		if err := validation.ValidateStateKey(cmd.Key); err != nil {
			return datatypes.StateEvent{Action: "error", Error: err.Error()}
		}

	default:
		return datatypes.StateEvent{Action: "error", Error: "unknown action: " + cmd.Action}
	}

	switch cmd.Action {
	case datatypes.StateActionSet:
		state.SetState(svc, cmd.Key, cmd.Value)
	case datatypes.StateActionRemove:
		svc.RemoveState(cmd.Key)
		return datatypes.StateEvent{Action: "removed", Entry: &datatypes.StateEntry{Key: cmd.Key}}
	}
	return datatypes.StateEvent{Action: "value", Entry: entryOf(svc, cmd.Key)}
}

func entryOf(svc *state.Service, key string) *datatypes.StateEntry {
	entry := &datatypes.StateEntry{Key: key}
	if v := state.GetState[any](svc, key, nil); v != nil {
		entry.Present = true
		entry.Value = v
	}
	return entry
}

// snapshotOf derives Keys from a single Snapshot so both fields describe
// the same moment.
func snapshotOf(s *session.Session) *datatypes.StateSnapshot {
	values := s.Service().State().Snapshot()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &datatypes.StateSnapshot{
		SessionID: s.ID,
		Keys:      keys,
		Values:    values,
	}
}
