package gmail

import (
	"sync"
	"time"
)

// throttle spaces Gmail API calls to stay under the per-user quota.
type throttle struct {
	mu       sync.Mutex
	next     time.Time
	interval time.Duration
}

func newThrottle(perSecond int) *throttle {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &throttle{interval: time.Second / time.Duration(perSecond)}
}

// reserve books the next slot and returns how long the caller has to wait for it.
func (t *throttle) reserve(now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	slot := now
	if t.next.After(now) {
		slot = t.next
	}
	t.next = slot.Add(t.interval)
	return slot.Sub(now)
}

func (t *throttle) wait() {
	if d := t.reserve(time.Now()); d > 0 {
		time.Sleep(d)
	}
}
