package analyses

import (
	"math"
	"sync"
	"time"
)

const (
	pollLimitWindow = 1 * time.Second
	pollSweepSize   = 1024
)

// pollLimiter allows one poll per window for each processing analysis.
type pollLimiter struct {
	mu      sync.Mutex
	lastHit map[recordKey]time.Time
	now     func() time.Time
	window  time.Duration
}

func newPollLimiter(window time.Duration, now func() time.Time) *pollLimiter {
	if now == nil {
		now = time.Now
	}
	if window <= 0 {
		window = pollLimitWindow
	}
	return &pollLimiter{
		lastHit: make(map[recordKey]time.Time),
		now:     now,
		window:  window,
	}
}

// Allow records a poll and reports whether it came at least one window after the previous one.
func (l *pollLimiter) Allow(sessionID, documentID string) bool {
	if l == nil {
		return true
	}
	key := recordKey{sessionID: sessionID, documentID: documentID}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.lastHit[key]; ok && now.Sub(last) < l.window {
		return false
	}
	if len(l.lastHit) >= pollSweepSize {
		l.sweep(now)
	}
	l.lastHit[key] = now
	return true
}

// Forget drops the entry once the analysis is no longer processing.
func (l *pollLimiter) Forget(sessionID, documentID string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	delete(l.lastHit, recordKey{sessionID: sessionID, documentID: documentID})
	l.mu.Unlock()
}

func (l *pollLimiter) sweep(now time.Time) {
	for key, last := range l.lastHit {
		if now.Sub(last) >= l.window {
			delete(l.lastHit, key)
		}
	}
}

func (l *pollLimiter) RetryAfterSeconds() int {
	window := pollLimitWindow
	if l != nil {
		window = l.window
	}
	return int(math.Max(1, math.Ceil(window.Seconds())))
}
