// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package state

// Op names a state operation for reporting.
type Op string

const (
	OpGet    Op = "get"
	OpSet    Op = "set"
	OpClear  Op = "clear"
	OpRemove Op = "remove"
)

// Outcome describes how an operation resolved.
type Outcome string

const (
	// OutcomeHit means Get returned the stored value.
	OutcomeHit Outcome = "hit"
	// OutcomeDefault means Get fell back to the caller's default.
	OutcomeDefault Outcome = "default"
	// OutcomeStored means Set wrote a value.
	OutcomeStored Outcome = "stored"
	// OutcomeIgnored means Set received a nil value and did nothing.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeDone is used for Clear and Remove.
	OutcomeDone Outcome = "done"
)

// Recorder observes state operations. Implementations must be safe for
// concurrent use.
type Recorder interface {
	RecordStateOp(op Op, outcome Outcome)
}

// Service owns one Store and exposes the page-facing state accessors.
//
// # Description
//
// Service is what request handlers hold. It wraps a Store with the
// GetState/SetState/ClearState vocabulary used by widget pages and, when
// a Recorder is attached, reports each call.
//
// # Thread Safety
//
// Safe for concurrent use; all state lives in the Store.
type Service struct {
	store    *Store
	recorder Recorder
}

// NewService returns a Service with an empty Store. recorder may be nil.
func NewService(recorder Recorder) *Service {
	return &Service{
		store:    NewStore(),
		recorder: recorder,
	}
}

// State returns the underlying Store.
func (svc *Service) State() *Store {
	return svc.store
}

// GetState reads key from the service's Store, falling back to def.
func GetState[T any](svc *Service, key string, def T) T {
	v, ok := svc.store.lookup(key)
	if ok {
		if typed, match := v.(T); match {
			svc.record(OpGet, OutcomeHit)
			return typed
		}
	}
	svc.record(OpGet, OutcomeDefault)
	return def
}

// SetState writes value under key. Nil values are ignored.
func SetState[T any](svc *Service, key string, value T) {
	if isAbsent(value) {
		svc.record(OpSet, OutcomeIgnored)
		return
	}
	Set(svc.store, key, value)
	svc.record(OpSet, OutcomeStored)
}

// RemoveState deletes key if present.
func (svc *Service) RemoveState(key string) {
	svc.store.Remove(key)
	svc.record(OpRemove, OutcomeDone)
}

// ClearState removes every key.
func (svc *Service) ClearState() {
	svc.store.Clear()
	svc.record(OpClear, OutcomeDone)
}

func (svc *Service) record(op Op, outcome Outcome) {
	if svc.recorder != nil {
		svc.recorder.RecordStateOp(op, outcome)
	}
}

// lookup returns the raw stored value.
func (s *Store) lookup(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}
