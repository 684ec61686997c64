// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

// StateEntry describes a single key in a session's state.
type StateEntry struct {
	Key     string `json:"key"`
	Present bool   `json:"present"`
	Value   any    `json:"value,omitempty"`
}

// StateSnapshot is a session's full state.
type StateSnapshot struct {
	SessionID string         `json:"session_id"`
	Keys      []string       `json:"keys"`
	Values    map[string]any `json:"values"`
}

// State channel actions sent by the client.
const (
	StateActionGet      = "get"
	StateActionSet      = "set"
	StateActionRemove   = "remove"
	StateActionClear    = "clear"
	StateActionSnapshot = "snapshot"
)

// StateCommand is one client message on the state websocket.
//
// Value is decoded from JSON, so numbers arrive as float64 and objects as
// map[string]any. A null or missing Value on "set" is ignored like any
// other nil write.
type StateCommand struct {
	Action string `json:"action"`
	Key    string `json:"key,omitempty"`
	Value  any    `json:"value,omitempty"`
}

// StateEvent is one server message on the state websocket.
type StateEvent struct {
	Action   string         `json:"action"`
	Entry    *StateEntry    `json:"entry,omitempty"`
	Snapshot *StateSnapshot `json:"snapshot,omitempty"`
	Error    string         `json:"error,omitempty"`
}
