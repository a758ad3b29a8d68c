// Package ratelimit provides a best-effort fixed-window request throttle for
// sensitive endpoints. It is a guard rail, not a security control of last
// resort: counters are per backing store and, for the in-memory backend, per
// process instance.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Class identifies the operation being throttled. Each class carries its own
// quota; login and user creation are tighter than generic traffic.
type Class string

const (
	ClassLogin      Class = "login"
	ClassCreateUser Class = "create_user"
	ClassSearch     Class = "search"
	ClassDefault    Class = "default"
)

// Result reports the outcome of a quota check, with the values needed to
// populate the X-RateLimit-* response headers.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds the wait up to whole seconds for the 429 body.
func (r Result) RetryAfterSeconds() int {
	return int(math.Ceil(r.RetryAfter.Seconds()))
}

// Limiter is the quota-check contract. Implementations must be safe for
// concurrent use.
type Limiter interface {
	Check(key string, class Class) Result
}

// Limits maps operation classes to their per-window maximums.
type Limits map[Class]int

// Max returns the quota for a class, falling back to the default class.
func (l Limits) Max(class Class) int {
	if max, ok := l[class]; ok && max > 0 {
		return max
	}
	if max, ok := l[ClassDefault]; ok && max > 0 {
		return max
	}
	return 100
}

type bucket struct {
	count   int
	resetAt time.Time
}

// Memory is the in-process fixed-window limiter. Buckets are keyed by
// (client address, operation class) and swept lazily: every call deletes any
// bucket whose window has fully elapsed, so no background task is needed.
type Memory struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limits  Limits
	window  time.Duration
	now     func() time.Time
}

// NewMemory builds an in-memory limiter.
func NewMemory(limits Limits, window time.Duration) *Memory {
	if window <= 0 {
		window = time.Minute
	}
	return &Memory{
		buckets: make(map[string]*bucket),
		limits:  limits,
		window:  window,
		now:     time.Now,
	}
}

// Check consumes one unit of quota for the key if available.
func (m *Memory) Check(key string, class Class) Result {
	max := m.limits.Max(class)
	bucketKey := key + ":" + string(class)

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	b, ok := m.buckets[bucketKey]
	if !ok || now.After(b.resetAt) {
		b = &bucket{resetAt: now.Add(m.window)}
		m.buckets[bucketKey] = b
	}

	if b.count >= max {
		return Result{
			Allowed:    false,
			Limit:      max,
			Remaining:  0,
			RetryAfter: b.resetAt.Sub(now),
		}
	}

	b.count++
	return Result{
		Allowed:   true,
		Limit:     max,
		Remaining: max - b.count,
	}
}

// sweep drops expired buckets. Caller holds the mutex.
func (m *Memory) sweep(now time.Time) {
	for key, b := range m.buckets {
		if now.After(b.resetAt) {
			delete(m.buckets, key)
		}
	}
}
