package discord

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const cooldownPruneThreshold = 1024

type cooldownEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// cooldowns allows one command per user per interval.
type cooldowns struct {
	mu       sync.Mutex
	interval time.Duration
	users    map[string]*cooldownEntry
}

func newCooldowns(interval time.Duration) *cooldowns {
	return &cooldowns{
		interval: interval,
		users:    make(map[string]*cooldownEntry),
	}
}

// Allow reports whether userID may run a command at now.
func (c *cooldowns) Allow(userID string, now time.Time) bool {
	if c == nil || c.interval <= 0 {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.users[userID]
	if !ok {
		if len(c.users) >= cooldownPruneThreshold {
			c.pruneLocked(now)
		}
		entry = &cooldownEntry{limiter: rate.NewLimiter(rate.Every(c.interval), 1)}
		c.users[userID] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (c *cooldowns) pruneLocked(now time.Time) {
	for id, entry := range c.users {
		if now.Sub(entry.lastSeen) > c.interval {
			delete(c.users, id)
		}
	}
}
