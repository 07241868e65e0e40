// Package ratelimit provides fixed-window request limiting keyed by
// caller+route. The Limiter interface is injected so single-instance
// deployments can use the in-memory store while multi-instance deployments
// share state through Redis.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Result reports the outcome of one limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

type memoryEntry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a fixed-window limiter backed by a process-local map.
// Suitable only for single-instance deployments.
type MemoryLimiter struct {
	mu          sync.Mutex
	entries     map[string]*memoryEntry
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

func NewMemoryLimiter(maxRequests int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		entries:     make(map[string]*memoryEntry),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	entry, ok := l.entries[key]
	if !ok || now.After(entry.resetAt) {
		entry = &memoryEntry{count: 0, resetAt: now.Add(l.window)}
		l.entries[key] = entry
	}

	if entry.count >= l.maxRequests {
		return Result{Allowed: false, Remaining: 0, ResetAt: entry.resetAt}, nil
	}
	entry.count++
	return Result{
		Allowed:   true,
		Remaining: l.maxRequests - entry.count,
		ResetAt:   entry.resetAt,
	}, nil
}

func (l *MemoryLimiter) sweep(now time.Time) {
	for key, entry := range l.entries {
		if now.After(entry.resetAt) {
			delete(l.entries, key)
		}
	}
}
