// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package state provides the keyed component state used by widget pages.
//
// A Store holds transient named values for the lifetime of one owning
// scope (typically one browser session). Values are recovered by type at
// read time:
//
//	s := state.NewStore()
//	state.Set(s, "userName", "Alice")
//	name := state.Get(s, "userName", "")     // "Alice"
//	age := state.Get(s, "userName", 25.0)    // 25.0, stored value is not a float64
//
// # Fallback Semantics
//
// Every operation is total. A missing key, a cleared key and a key holding
// a value of another type all read back as the caller's default. Setting
// a nil value leaves the key untouched; it does not delete.
//
// # Thread Safety
//
// Store is safe for concurrent use. Each scope should still own its own
// Store; sharing one across scopes mixes their values under last-write-wins.
package state

import (
	"reflect"
	"sort"
	"sync"
)

// Store is a string-keyed map of dynamically typed values.
//
// The zero value is not usable; construct with NewStore.
type Store struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{data: make(map[string]any)}
}

// Get returns the value stored under key when it is present and holds a T.
//
// # Description
//
// The stored value is matched with a type assertion, so an interface T
// matches any stored value implementing it. On absence or mismatch def is
// returned. No signal distinguishes the two cases.
//
// # Inputs
//
//   - s: Store to read from.
//   - key: Key to look up. Not validated.
//   - def: Value returned on miss or type mismatch.
//
// # Outputs
//
//   - T: The stored value or def.
//
// # Examples
//
//	state.Set(s, "k", "hello")
//	state.Get(s, "k", 42)   // 42
//	state.Get(s, "k", "")   // "hello"
func Get[T any](s *Store, key string, def T) T {
	v, ok := s.lookup(key)
	if !ok {
		return def
	}
	typed, ok := v.(T)
	if !ok {
		return def
	}
	return typed
}

// Set stores value under key, replacing any previous value.
//
// A nil value (untyped nil or a nil pointer, map, slice, func, chan or
// interface) is ignored: an existing value stays, an absent key stays absent.
func Set[T any](s *Store, key string, value T) {
	if isAbsent(value) {
		return
	}
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
}

// Clear removes every key.
func (s *Store) Clear() {
	s.mu.Lock()
	clear(s.data)
	s.mu.Unlock()
}

// ContainsKey reports whether key currently holds a value.
func (s *Store) ContainsKey(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok
}

// Remove deletes key. Removing an absent key is a no-op.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Snapshot returns a shallow copy of the stored values.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[string]any, len(s.data))
	for k, v := range s.data {
		snap[k] = v
	}
	return snap
}

// isAbsent reports whether v is the nil sentinel for its type.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
