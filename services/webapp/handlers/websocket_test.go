// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/AleutianAI/StreamlitLike/pkg/state"
	"github.com/AleutianAI/StreamlitLike/services/webapp/datatypes"
	"github.com/AleutianAI/StreamlitLike/services/webapp/session"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func dialState(t *testing.T, app *testApp) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(app.router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/state"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func roundTrip(t *testing.T, ws *websocket.Conn, cmd datatypes.StateCommand) datatypes.StateEvent {
	t.Helper()
	require.NoError(t, ws.WriteJSON(cmd))
	var ev datatypes.StateEvent
	require.NoError(t, ws.ReadJSON(&ev))
	return ev
}

func TestStateWebSocket_InitialSnapshot(t *testing.T) {
	app := newTestApp(t)
	state.SetState(app.session.Service(), "userName", "Alice")

	ws := dialState(t, app)

	var ev datatypes.StateEvent
	require.NoError(t, ws.ReadJSON(&ev))
	assert.Equal(t, datatypes.StateActionSnapshot, ev.Action)
	require.NotNil(t, ev.Snapshot)
	assert.Equal(t, app.session.ID, ev.Snapshot.SessionID)
	assert.Equal(t, "Alice", ev.Snapshot.Values["userName"])
}

func TestStateWebSocket_Commands(t *testing.T) {
	app := newTestApp(t)
	ws := dialState(t, app)
	var initial datatypes.StateEvent
	require.NoError(t, ws.ReadJSON(&initial))

	ev := roundTrip(t, ws, datatypes.StateCommand{Action: "set", Key: "userAge", Value: 30})
	assert.Equal(t, "value", ev.Action)
	require.NotNil(t, ev.Entry)
	assert.True(t, ev.Entry.Present)
	assert.Equal(t, 30.0, ev.Entry.Value)

	// JSON numbers land as float64, so the typed page accessor sees them.
	assert.Equal(t, 30.0, state.GetState(app.session.Service(), "userAge", 25.0))

	ev = roundTrip(t, ws, datatypes.StateCommand{Action: "set", Key: "userAge"})
	assert.Equal(t, 30.0, ev.Entry.Value, "null value leaves the key untouched")

	ev = roundTrip(t, ws, datatypes.StateCommand{Action: "get", Key: "missing"})
	assert.False(t, ev.Entry.Present)

	ev = roundTrip(t, ws, datatypes.StateCommand{Action: "remove", Key: "userAge"})
	assert.Equal(t, "removed", ev.Action)
	assert.False(t, app.session.Service().State().ContainsKey("userAge"))

	state.SetState(app.session.Service(), "a", "b")
	ev = roundTrip(t, ws, datatypes.StateCommand{Action: "clear"})
	assert.Equal(t, "cleared", ev.Action)
	assert.Equal(t, 0, app.session.Service().State().Len())

	ev = roundTrip(t, ws, datatypes.StateCommand{Action: "snapshot"})
	require.NotNil(t, ev.Snapshot)
	assert.Empty(t, ev.Snapshot.Keys)
}

func TestStateWebSocket_Errors(t *testing.T) {
	app := newTestApp(t)
	ws := dialState(t, app)
	var initial datatypes.StateEvent
	require.NoError(t, ws.ReadJSON(&initial))

	ev := roundTrip(t, ws, datatypes.StateCommand{Action: "explode"})
	assert.Equal(t, "error", ev.Action)
	assert.Contains(t, ev.Error, "unknown action")

	ev = roundTrip(t, ws, datatypes.StateCommand{Action: "set", Key: "bad key", Value: "x"})
	assert.Equal(t, "error", ev.Action)
	assert.False(t, app.session.Service().State().ContainsKey("bad key"))
}

func TestApplyStateCommand_RateLimited(t *testing.T) {
	registry := session.NewRegistry(session.Options{RateLimit: rate.Limit(0.001), Burst: 1})
	s, _, _ := registry.Open("")

	first := applyStateCommand(s, datatypes.StateCommand{Action: "get", Key: "k"})
	second := applyStateCommand(s, datatypes.StateCommand{Action: "get", Key: "k"})

	assert.Equal(t, "value", first.Action)
	assert.Equal(t, "error", second.Action)
	assert.Equal(t, "rate limit exceeded", second.Error)
}

func TestSnapshotOf_KeysMatchValuesUnderWrites(t *testing.T) {
	registry := session.NewRegistry(session.Options{})
	s, _, _ := registry.Open("")
	svc := s.Service()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			key := fmt.Sprintf("k%d", i%64)
			if i%3 == 0 {
				svc.RemoveState(key)
				continue
			}
			state.SetState(svc, key, i)
		}
	}()

	for i := 0; i < 500; i++ {
		snap := snapshotOf(s)
		require.Len(t, snap.Keys, len(snap.Values))
		for _, k := range snap.Keys {
			_, ok := snap.Values[k]
			require.True(t, ok, "key %s missing from values", k)
		}
	}
	close(stop)
	wg.Wait()
}
