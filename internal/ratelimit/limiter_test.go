package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestLimiter(cfg Config) *Limiter {
	return New(cfg, zap.NewNop())
}

func TestAdmitUpToMinuteLimit(t *testing.T) {
	l := newTestLimiter(DefaultConfig())

	for i := 0; i < 10; i++ {
		d := l.admitAt("client", base.Add(time.Duration(i)*time.Second))
		if !d.Allowed {
			t.Fatalf("request %d should be admitted", i+1)
		}
	}

	d := l.admitAt("client", base.Add(10*time.Second))
	if d.Allowed {
		t.Fatal("11th request within a minute should be denied")
	}
	if d.RetryAfterSeconds != 60 {
		t.Errorf("expected retry after 60s, got %d", d.RetryAfterSeconds)
	}
}

func TestMinuteWindowSlides(t *testing.T) {
	l := newTestLimiter(DefaultConfig())

	for i := 0; i < 10; i++ {
		l.admitAt("client", base.Add(time.Duration(i)*time.Second))
	}
	if d := l.admitAt("client", base.Add(10*time.Second)); d.Allowed {
		t.Fatal("expected denial while window is full")
	}

	// A minute after the oldest stamp, one slot has opened.
	if d := l.admitAt("client", base.Add(61*time.Second)); !d.Allowed {
		t.Fatalf("expected admission after window slides, got retry %d", d.RetryAfterSeconds)
	}
}

func TestHourLimit(t *testing.T) {
	l := newTestLimiter(DefaultConfig())

	// Spaced past the minute window so only the hour cap is in play.
	for i := 0; i < 50; i++ {
		d := l.admitAt("client", base.Add(time.Duration(i)*65*time.Second))
		if !d.Allowed {
			t.Fatalf("request %d should be admitted", i+1)
		}
	}

	d := l.admitAt("client", base.Add(50*65*time.Second))
	if d.Allowed {
		t.Fatal("51st request within the hour should be denied")
	}
	if d.RetryAfterSeconds != 3600 {
		t.Errorf("expected retry after 3600s, got %d", d.RetryAfterSeconds)
	}
}

func TestHourWindowSlides(t *testing.T) {
	l := newTestLimiter(Config{PerMinute: 10, PerHour: 5})

	for i := 0; i < 5; i++ {
		l.admitAt("client", base.Add(time.Duration(i)*2*time.Minute))
	}
	if d := l.admitAt("client", base.Add(10*time.Minute)); d.Allowed {
		t.Fatal("expected denial while hour window is full")
	}

	// An hour past the oldest stamp it is purged and a slot opens.
	if d := l.admitAt("client", base.Add(61*time.Minute)); !d.Allowed {
		t.Fatalf("expected admission after hour window slides, got retry %d", d.RetryAfterSeconds)
	}
}

func TestMinuteDenialTakesPrecedence(t *testing.T) {
	l := newTestLimiter(Config{PerMinute: 2, PerHour: 2})

	l.admitAt("client", base)
	l.admitAt("client", base.Add(time.Second))

	// Both windows are at capacity; the shorter retry hint wins.
	d := l.admitAt("client", base.Add(2*time.Second))
	if d.Allowed {
		t.Fatal("expected denial")
	}
	if d.RetryAfterSeconds != 60 {
		t.Errorf("expected minute retry hint 60, got %d", d.RetryAfterSeconds)
	}
}

func TestDeniedRequestsAreNotRecorded(t *testing.T) {
	l := newTestLimiter(Config{PerMinute: 1, PerHour: 50})

	l.admitAt("client", base)
	for i := 1; i <= 5; i++ {
		if d := l.admitAt("client", base.Add(time.Duration(i)*time.Second)); d.Allowed {
			t.Fatalf("request at +%ds should be denied", i)
		}
	}

	// Only the single admitted stamp counts against the window.
	if d := l.admitAt("client", base.Add(61*time.Second)); !d.Allowed {
		t.Fatal("denied requests must not consume window capacity")
	}
}

func TestClientsAreIsolated(t *testing.T) {
	l := newTestLimiter(Config{PerMinute: 1, PerHour: 50})

	if d := l.admitAt("client-a", base); !d.Allowed {
		t.Fatal("first request for client-a should be admitted")
	}
	if d := l.admitAt("client-a", base.Add(time.Second)); d.Allowed {
		t.Fatal("second request for client-a should be denied")
	}
	if d := l.admitAt("client-b", base.Add(time.Second)); !d.Allowed {
		t.Fatal("client-b must not be affected by client-a's window")
	}
}

func TestEvictIdle(t *testing.T) {
	l := newTestLimiter(DefaultConfig())

	l.admitAt("stale", base)
	l.admitAt("fresh", base.Add(90*time.Minute))

	removed := l.EvictIdle(base.Add(time.Hour))
	if removed != 1 {
		t.Fatalf("expected 1 eviction, got %d", removed)
	}

	l.mu.RLock()
	_, staleOK := l.clients["stale"]
	_, freshOK := l.clients["fresh"]
	l.mu.RUnlock()

	if staleOK {
		t.Error("stale client record should be gone")
	}
	if !freshOK {
		t.Error("fresh client record should survive")
	}
}

func TestEvictedClientStartsFresh(t *testing.T) {
	l := newTestLimiter(Config{PerMinute: 1, PerHour: 1})

	l.admitAt("client", base)
	l.EvictIdle(base.Add(2 * time.Hour))

	if d := l.admitAt("client", base.Add(2*time.Hour)); !d.Allowed {
		t.Fatal("evicted client should be admitted again")
	}
}

func TestManyClientsConcurrently(t *testing.T) {
	l := newTestLimiter(DefaultConfig())

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			id := fmt.Sprintf("client-%d", i)
			for j := 0; j < 10; j++ {
				if d := l.Admit(id); !d.Allowed {
					t.Errorf("client %s request %d unexpectedly denied", id, j+1)
					return
				}
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
