package alerting

import (
	"sync"
	"time"
)

// AlertKey identifies an alert stream for cooldown purposes.
type AlertKey struct {
	Model    string
	Endpoint string
}

// CooldownTracker enforces a minimum interval between alerts per key.
// Entries are never evicted; the key space is bounded by configured deployments.
type CooldownTracker struct {
	window time.Duration

	mu   sync.Mutex
	last map[AlertKey]time.Time
}

// NewCooldownTracker creates a tracker with the given window.
func NewCooldownTracker(window time.Duration) *CooldownTracker {
	return &CooldownTracker{
		window: window,
		last:   make(map[AlertKey]time.Time),
	}
}

// Window returns the configured cooldown.
func (c *CooldownTracker) Window() time.Duration {
	return c.window
}

// ShouldAlert reports whether key has no prior alert or its last alert is at
// least one window before now.
func (c *CooldownTracker) ShouldAlert(key AlertKey, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shouldAlertLocked(key, now)
}

// Record stores now as the last alert time for key.
func (c *CooldownTracker) Record(key AlertKey, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[key] = now
}

// Acquire checks and records in one step. Exactly one of several concurrent
// callers for the same key within a window gets true.
func (c *CooldownTracker) Acquire(key AlertKey, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.shouldAlertLocked(key, now) {
		return false
	}
	c.last[key] = now
	return true
}

// Last returns the last alert time for key.
func (c *CooldownTracker) Last(key AlertKey) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.last[key]
	return t, ok
}

// Len returns the number of tracked keys.
func (c *CooldownTracker) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.last)
}

func (c *CooldownTracker) shouldAlertLocked(key AlertKey, now time.Time) bool {
	last, ok := c.last[key]
	if !ok {
		return true
	}
	return now.Sub(last) >= c.window
}
