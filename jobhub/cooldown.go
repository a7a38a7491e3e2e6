package jobhub

import (
	"sync"
	"time"
)

// CooldownTracker records the last verification attempt time per user
// and answers how long until the user may attempt again.
//
// Entries are never evicted: the map grows with distinct users for the
// process lifetime, which is acceptable for the in-memory,
// non-persistent design.
type CooldownTracker struct {
	mu          sync.Mutex
	window      time.Duration
	lastAttempt map[string]time.Time

	// now is replaceable in tests for a deterministic clock
	now func() time.Time
}

func NewCooldownTracker(window time.Duration) *CooldownTracker {
	return &CooldownTracker{
		window:      window,
		lastAttempt: map[string]time.Time{},
		now:         time.Now,
	}
}

// RecordAttempt stamps the current time as the user's last verification
// attempt, overwriting any prior value.
func (c *CooldownTracker) RecordAttempt(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastAttempt[userID] = c.now()
}

// Remaining returns how long until the user may attempt again, or 0 if
// the window has elapsed or no attempt was recorded.
func (c *CooldownTracker) Remaining(userID string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	last, ok := c.lastAttempt[userID]
	if !ok {
		return 0
	}
	remaining := c.window - c.now().Sub(last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// WaitMinutes returns Remaining rounded up to whole minutes, for
// user-facing wait messages.
func (c *CooldownTracker) WaitMinutes(userID string) int {
	remaining := c.Remaining(userID)
	if remaining <= 0 {
		return 0
	}
	minutes := int(remaining / time.Minute)
	if remaining%time.Minute > 0 {
		minutes++
	}
	return minutes
}

// Len returns the number of users with a recorded attempt.
func (c *CooldownTracker) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lastAttempt)
}
