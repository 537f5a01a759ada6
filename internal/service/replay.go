package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/catsflats/backend/internal/apperr"
	"github.com/catsflats/backend/internal/obs"
)

const (
	replayTTL             = 5 * time.Minute
	replayCleanupInterval = time.Minute
	replayMaxEntries      = 25000
)

// ReplayGuard tracks consumed init data payloads so a signed payload is
// accepted at most once within its validity window. State is in-memory only;
// a restart clears the history, which is safe because payload age limiting
// still bounds exposure.
type ReplayGuard struct {
	mu            sync.Mutex
	seen          map[string]time.Time
	order         []string
	lastCleanupAt time.Time
	nowFn         func() time.Time
}

func NewReplayGuard() *ReplayGuard {
	return &ReplayGuard{
		seen:  make(map[string]time.Time),
		nowFn: time.Now,
	}
}

// Consume records (userID, hash) as used. It fails with Forbidden when the
// same pair was already consumed within the TTL window. An empty hash is a
// no-op; the verifier never passes one, but the guard must not reject on it.
func (g *ReplayGuard) Consume(userID int64, hash string) error {
	if hash == "" {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.nowFn()
	g.prune(now)

	key := fmt.Sprintf("%d:%s", userID, hash)
	if seenAt, ok := g.seen[key]; ok && now.Sub(seenAt) < replayTTL {
		obs.ReplayRejections.Inc()
		return apperr.Forbidden("init data has already been used, request a new session")
	}

	if _, exists := g.seen[key]; !exists {
		g.order = append(g.order, key)
	}
	g.seen[key] = now
	return nil
}

// prune drops stale entries, then trims overflow oldest-first. The TTL pass
// must run before the size pass so recent entries are never evicted ahead of
// stale ones. Gated by a cooldown; callers must hold g.mu.
func (g *ReplayGuard) prune(now time.Time) {
	if now.Sub(g.lastCleanupAt) < replayCleanupInterval {
		return
	}
	g.lastCleanupAt = now

	kept := g.order[:0]
	for _, key := range g.order {
		seenAt, ok := g.seen[key]
		if !ok {
			continue
		}
		if now.Sub(seenAt) > replayTTL {
			delete(g.seen, key)
			continue
		}
		kept = append(kept, key)
	}
	g.order = kept

	overflow := len(g.seen) - replayMaxEntries
	for i := 0; i < overflow && len(g.order) > 0; i++ {
		delete(g.seen, g.order[0])
		g.order = g.order[1:]
	}
}
