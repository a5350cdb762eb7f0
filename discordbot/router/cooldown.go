package router

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const cooldownPruneSize = 1024

// Cooldown limits invocations per user
type Cooldown struct {
	uses    int
	per     time.Duration
	m       sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewCooldown allows uses invocations per given duration for every user
func NewCooldown(uses int, per time.Duration) *Cooldown {
	if uses < 1 {
		uses = 1
	}

	return &Cooldown{
		uses:    uses,
		per:     per,
		buckets: make(map[string]*rate.Limiter),
	}
}

// Allow consumes one use of user bucket, returning retry delay when exhausted
func (c *Cooldown) Allow(userID string) (time.Duration, bool) {
	c.m.Lock()
	defer c.m.Unlock()

	now := time.Now()

	lim, ok := c.buckets[userID]
	if !ok {
		c.prune(now)

		lim = rate.NewLimiter(rate.Every(c.per/time.Duration(c.uses)), c.uses)
		c.buckets[userID] = lim
	}

	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return c.per, false
	}

	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)

		return delay, false
	}

	return 0, true
}

// Reset forgets user bucket
func (c *Cooldown) Reset(userID string) {
	c.m.Lock()
	defer c.m.Unlock()

	delete(c.buckets, userID)
}

func (c *Cooldown) prune(now time.Time) {
	if len(c.buckets) < cooldownPruneSize {
		return
	}

	for k, lim := range c.buckets {
		if lim.TokensAt(now) >= float64(c.uses) {
			delete(c.buckets, k)
		}
	}
}
