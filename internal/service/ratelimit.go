package service

import (
	"sync"
	"time"

	"github.com/catsflats/backend/internal/obs"
)

const (
	activityTTL             = 10 * time.Minute
	activityCleanupInterval = time.Minute
	activityMaxTracked      = 5000
)

// ActivityLimiter throttles bot callers to one action per minimum interval.
// Excess actions are dropped silently; error replies to a chat would only
// spam the user.
type ActivityLimiter struct {
	mu            sync.Mutex
	minInterval   time.Duration
	lastActivity  map[int64]time.Time
	order         []int64
	lastCleanupAt time.Time
	nowFn         func() time.Time
}

func NewActivityLimiter(minInterval time.Duration) *ActivityLimiter {
	if minInterval <= 0 {
		minInterval = 500 * time.Millisecond
	}
	return &ActivityLimiter{
		minInterval:  minInterval,
		lastActivity: make(map[int64]time.Time),
		nowFn:        time.Now,
	}
}

// Admit reports whether an action from userID may proceed. A second action
// within the minimum interval returns false; callers drop the action rather
// than erroring.
func (l *ActivityLimiter) Admit(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	l.prune(now)

	if last, ok := l.lastActivity[userID]; ok && now.Sub(last) < l.minInterval {
		obs.RateLimitDrops.WithLabelValues("bot").Inc()
		return false
	}

	if _, exists := l.lastActivity[userID]; !exists {
		l.order = append(l.order, userID)
	}
	l.lastActivity[userID] = now
	return true
}

// prune drops users inactive past the TTL, then trims overflow oldest-first.
// Gated by a cooldown; callers must hold l.mu.
func (l *ActivityLimiter) prune(now time.Time) {
	if now.Sub(l.lastCleanupAt) < activityCleanupInterval {
		return
	}
	l.lastCleanupAt = now

	kept := l.order[:0]
	for _, userID := range l.order {
		last, ok := l.lastActivity[userID]
		if !ok {
			continue
		}
		if now.Sub(last) > activityTTL {
			delete(l.lastActivity, userID)
			continue
		}
		kept = append(kept, userID)
	}
	l.order = kept

	overflow := len(l.lastActivity) - activityMaxTracked
	for i := 0; i < overflow && len(l.order) > 0; i++ {
		delete(l.lastActivity, l.order[0])
		l.order = l.order[1:]
	}
}
