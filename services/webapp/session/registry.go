// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package session manages the scopes that own state stores.
//
// # Description
//
// Every browser session gets exactly one state.Service. The Registry maps
// session IDs to their Session and drops a Session (and its state) when it
// is deleted explicitly or swept after sitting idle. Individual state keys
// never expire; only whole scopes go away.
//
// # Thread Safety
//
// Registry and Sweeper are safe for concurrent use.
package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/AleutianAI/StreamlitLike/pkg/state"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// EvictReason labels why a Session was removed.
type EvictReason string

const (
	EvictIdle     EvictReason = "idle"
	EvictExplicit EvictReason = "explicit"
)

// ErrRegistryFull is returned by Open when MaxSessions sessions are live.
var ErrRegistryFull = errors.New("session registry is full")

// Observer is notified of scope lifecycle events. Implementations must be
// safe for concurrent use.
type Observer interface {
	SessionOpened()
	SessionEvicted(reason EvictReason)
}

// Session is one owning scope.
type Session struct {
	ID        string
	CreatedAt time.Time

	service  *state.Service
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// Service returns the session's state service.
func (s *Session) Service() *state.Service {
	return s.service
}

// LastSeen returns the last time the session was opened.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Allow reports whether the session may make another request now.
// Sessions without a limiter are always allowed.
func (s *Session) Allow() bool {
	if s.limiter == nil {
		return true
	}
	return s.limiter.Allow()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// Options configures a Registry.
type Options struct {
	// Recorder receives state operation reports for every session. May be nil.
	Recorder state.Recorder

	// Observer receives lifecycle events. May be nil.
	Observer Observer

	// RateLimit and Burst configure a per-session token bucket.
	// A zero RateLimit disables limiting.
	RateLimit rate.Limit
	Burst     int

	// MaxSessions caps live sessions. Open refuses new sessions at the cap.
	// Zero means unlimited.
	MaxSessions int

	// Now overrides the clock. Default: time.Now
	Now func() time.Time
}

// Registry maps session IDs to Sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     Options
}

// NewRegistry returns an empty Registry.
func NewRegistry(opts Options) *Registry {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		sessions: make(map[string]*Session),
		opts:     opts,
	}
}

// Open returns the Session for id, creating one when id is unknown.
//
// # Description
//
// A known id is touched and returned. Anything else (empty, malformed,
// expired or never issued) gets a fresh Session under a new random ID;
// client-chosen IDs are never adopted. Existing sessions are always
// reopened, even at the MaxSessions cap.
//
// # Outputs
//
//   - *Session: The live session. Nil on error.
//   - bool: True when the session was created by this call.
//   - error: ErrRegistryFull when a new session would exceed MaxSessions.
func (r *Registry) Open(id string) (*Session, bool, error) {
	now := r.opts.Now()

	if s, ok := r.reopen(id, now); ok {
		return s, false, nil
	}

	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		lastSeen:  now,
		service:   state.NewService(r.opts.Recorder),
	}
	if r.opts.RateLimit > 0 {
		s.limiter = rate.NewLimiter(r.opts.RateLimit, r.opts.Burst)
	}

	r.mu.Lock()
	if r.opts.MaxSessions > 0 && len(r.sessions) >= r.opts.MaxSessions {
		r.mu.Unlock()
		return nil, false, ErrRegistryFull
	}
	r.sessions[s.ID] = s
	r.mu.Unlock()

	if r.opts.Observer != nil {
		r.opts.Observer.SessionOpened()
	}
	return s, true, nil
}

// reopen touches a live session while holding the read lock, so a
// concurrent Sweep either sees the new LastSeen or has already removed it.
func (r *Registry) reopen(id string, now time.Time) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if ok {
		s.touch(now)
	}
	return s, ok
}

// Lookup returns the Session for id without touching it.
func (r *Registry) Lookup(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Delete removes the Session for id. It reports whether one was removed.
func (r *Registry) Delete(id string) bool {
	return r.remove(id, EvictExplicit, nil)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Expired returns the IDs of sessions idle for longer than idle at now,
// sorted for stable output.
func (r *Registry) Expired(now time.Time, idle time.Duration) []string {
	r.mu.RLock()
	var ids []string
	for id, s := range r.sessions {
		if now.Sub(s.LastSeen()) > idle {
			ids = append(ids, id)
		}
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Sweep removes sessions idle for longer than idle and returns how many
// were removed.
func (r *Registry) Sweep(now time.Time, idle time.Duration) int {
	stillIdle := func(s *Session) bool {
		return now.Sub(s.LastSeen()) > idle
	}
	removed := 0
	for _, id := range r.Expired(now, idle) {
		if r.remove(id, EvictIdle, stillIdle) {
			removed++
		}
	}
	return removed
}

// remove deletes id when it is live and cond (if set) holds. cond runs
// under the write lock, so no Open can touch the session in between.
func (r *Registry) remove(id string, reason EvictReason, cond func(*Session) bool) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok && cond != nil && !cond(s) {
		ok = false
	}
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	s.service.ClearState()
	if r.opts.Observer != nil {
		r.opts.Observer.SessionEvicted(reason)
	}
	return true
}
