// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package ratelimit implements a per-key fixed-window request counter.
//
// Each key gets an independent window anchored at its first request.
// Within a window at most MaxRequests calls succeed; a rejected call does
// not consume a slot in the current or the next window. Keys are opaque
// strings and are not normalized; callers encode action and subject into
// the key (e.g. "create-quiz:42") to get per-action-per-subject isolation.
package ratelimit

import (
	"sync"
	"time"
)

const (
	// Window is the fixed window duration.
	Window = 60 * time.Second
	// MaxRequests is the number of allowed requests per key per window.
	MaxRequests = 10
)

type entry struct {
	count       int
	windowStart time.Time
}

// Limiter is a process-wide fixed-window counter. Entries persist for the
// lifetime of the Limiter; there is no eviction.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// New creates an empty Limiter.
func New() *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// NewWithClock creates a Limiter with an injected clock, for tests.
func NewWithClock(now func() time.Time) *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		now:     now,
	}
}

// Allow reports whether the current attempt for key is within the limit.
// The check and the counter update happen under one lock so two concurrent
// attempts on the same key cannot both slip past the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	e, ok := l.entries[key]
	if !ok || now.Sub(e.windowStart) > Window {
		l.entries[key] = &entry{count: 1, windowStart: now}
		return true
	}

	if e.count >= MaxRequests {
		return false
	}

	e.count++
	return true
}
