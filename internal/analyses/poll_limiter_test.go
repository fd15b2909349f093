package analyses

import (
	"testing"
	"time"
)

func TestPollLimiterWindow(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := newPollLimiter(time.Second, func() time.Time { return now })

	if !l.Allow("s", "d") {
		t.Fatalf("expected first poll allowed")
	}
	if l.Allow("s", "d") {
		t.Fatalf("expected second poll inside window rejected")
	}
	if !l.Allow("s", "other") {
		t.Fatalf("expected other document unaffected")
	}
	now = now.Add(time.Second)
	if !l.Allow("s", "d") {
		t.Fatalf("expected poll after window allowed")
	}
}

func TestPollLimiterForget(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := newPollLimiter(time.Second, func() time.Time { return now })

	l.Allow("s", "d")
	l.Forget("s", "d")
	if !l.Allow("s", "d") {
		t.Fatalf("expected poll allowed after forget")
	}
}

func TestPollLimiterSweepsStaleEntries(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := newPollLimiter(time.Second, func() time.Time { return now })
	for i := 0; i < pollSweepSize; i++ {
		l.Allow("s", time.Duration(i).String())
	}
	now = now.Add(2 * time.Second)
	l.Allow("s", "fresh")
	if len(l.lastHit) != 1 {
		t.Fatalf("expected stale entries swept, got %d", len(l.lastHit))
	}
}

func TestPollLimiterRetryAfter(t *testing.T) {
	if got := newPollLimiter(1500*time.Millisecond, nil).RetryAfterSeconds(); got != 2 {
		t.Fatalf("expected 2s, got %d", got)
	}
	var l *pollLimiter
	if got := l.RetryAfterSeconds(); got != 1 {
		t.Fatalf("expected default 1s, got %d", got)
	}
}
