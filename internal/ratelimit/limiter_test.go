package ratelimit

import (
	"testing"
	"time"
)

func testLimits() Limits {
	return Limits{
		ClassLogin:      5,
		ClassCreateUser: 3,
		ClassSearch:     30,
		ClassDefault:    100,
	}
}

func TestMemory_WindowExhaustionAndReset(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(testLimits(), time.Minute)
	m.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		res := m.Check("1.2.3.4", ClassLogin)
		if !res.Allowed {
			t.Fatalf("call %d denied within quota", i+1)
		}
		if res.Remaining != 5-(i+1) {
			t.Fatalf("call %d remaining = %d, want %d", i+1, res.Remaining, 5-(i+1))
		}
	}

	res := m.Check("1.2.3.4", ClassLogin)
	if res.Allowed {
		t.Fatal("6th call allowed beyond quota")
	}
	if got := res.RetryAfterSeconds(); got != 60 {
		t.Fatalf("retryAfter = %d, want 60", got)
	}

	// Past the window the bucket is recreated with a fresh count.
	now = now.Add(time.Minute + time.Second)
	res = m.Check("1.2.3.4", ClassLogin)
	if !res.Allowed {
		t.Fatal("call after window reset denied")
	}
	if res.Remaining != 4 {
		t.Fatalf("fresh window remaining = %d, want 4", res.Remaining)
	}
}

func TestMemory_KeysAndClassesAreIndependent(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(testLimits(), time.Minute)
	m.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		m.Check("1.2.3.4", ClassLogin)
	}
	if m.Check("1.2.3.4", ClassLogin).Allowed {
		t.Fatal("exhausted bucket allowed")
	}
	if !m.Check("5.6.7.8", ClassLogin).Allowed {
		t.Fatal("different client address shares the exhausted bucket")
	}
	if !m.Check("1.2.3.4", ClassSearch).Allowed {
		t.Fatal("different operation class shares the exhausted bucket")
	}
}

func TestMemory_SweepDropsExpiredBuckets(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(testLimits(), time.Minute)
	m.now = func() time.Time { return now }

	m.Check("1.2.3.4", ClassLogin)
	m.Check("5.6.7.8", ClassSearch)
	if len(m.buckets) != 2 {
		t.Fatalf("bucket count = %d, want 2", len(m.buckets))
	}

	// Any later call sweeps buckets whose window has fully elapsed.
	now = now.Add(2 * time.Minute)
	m.Check("9.9.9.9", ClassDefault)
	if len(m.buckets) != 1 {
		t.Fatalf("bucket count after sweep = %d, want 1", len(m.buckets))
	}
}

func TestLimits_MaxFallsBackToDefault(t *testing.T) {
	t.Parallel()

	limits := Limits{ClassDefault: 10}
	if got := limits.Max(ClassLogin); got != 10 {
		t.Fatalf("Max(login) = %d, want default 10", got)
	}

	limits = Limits{}
	if got := limits.Max(ClassLogin); got != 100 {
		t.Fatalf("Max with empty limits = %d, want 100", got)
	}
}
