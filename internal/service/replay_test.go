package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/catsflats/backend/internal/apperr"
)

func TestReplayGuardRejectsSecondUse(t *testing.T) {
	guard := NewReplayGuard()

	if err := guard.Consume(42, "abc123"); err != nil {
		t.Fatalf("first Consume() = %v", err)
	}
	err := guard.Consume(42, "abc123")
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("second Consume() = %v, want forbidden", err)
	}
}

func TestReplayGuardScopesByUser(t *testing.T) {
	guard := NewReplayGuard()

	if err := guard.Consume(1, "samehash"); err != nil {
		t.Fatalf("Consume(user 1) = %v", err)
	}
	// A different user presenting the same hash is a distinct payload.
	if err := guard.Consume(2, "samehash"); err != nil {
		t.Fatalf("Consume(user 2) = %v", err)
	}
	if err := guard.Consume(1, "otherhash"); err != nil {
		t.Fatalf("Consume(user 1, new hash) = %v", err)
	}
}

func TestReplayGuardEmptyHashIsNoOp(t *testing.T) {
	guard := NewReplayGuard()
	for i := 0; i < 3; i++ {
		if err := guard.Consume(7, ""); err != nil {
			t.Fatalf("Consume(empty hash) = %v", err)
		}
	}
}

func TestReplayGuardExpiresAfterTTL(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	guard := NewReplayGuard()
	guard.nowFn = func() time.Time { return now }

	if err := guard.Consume(42, "abc123"); err != nil {
		t.Fatalf("first Consume() = %v", err)
	}

	now = now.Add(replayTTL + time.Second)
	if err := guard.Consume(42, "abc123"); err != nil {
		t.Fatalf("Consume() after TTL = %v, want accepted again", err)
	}
}

func TestReplayGuardPruneCooldown(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	guard := NewReplayGuard()
	guard.nowFn = func() time.Time { return now }

	guard.Consume(1, "h1")

	// Inside the cleanup cooldown the stale entry stays in the map, but the
	// direct TTL check on the key itself still lets the payload through.
	now = now.Add(30 * time.Second)
	guard.Consume(2, "h2")
	if len(guard.seen) != 2 {
		t.Fatalf("len(seen) = %d, want 2", len(guard.seen))
	}

	// Past the cooldown and the TTL both entries get swept.
	now = now.Add(replayTTL + time.Minute)
	guard.Consume(3, "h3")
	if len(guard.seen) != 1 {
		t.Fatalf("len(seen) after sweep = %d, want 1", len(guard.seen))
	}
}

func TestReplayGuardEvictsOldestWhenFull(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	guard := NewReplayGuard()
	guard.nowFn = func() time.Time { return now }

	for i := 0; i < replayMaxEntries+10; i++ {
		guard.Consume(int64(i), fmt.Sprintf("hash-%d", i))
	}

	// Force a sweep past the cooldown; entries are fresh so only the size
	// pass trims, dropping the oldest insertions.
	now = now.Add(replayCleanupInterval + time.Second)
	guard.Consume(-1, "trigger")

	// Pruning runs before the triggering insert, so the map holds at most the
	// cap plus the entry just recorded.
	if len(guard.seen) > replayMaxEntries+1 {
		t.Fatalf("len(seen) = %d, want at most %d", len(guard.seen), replayMaxEntries+1)
	}
	if _, ok := guard.seen["0:hash-0"]; ok {
		t.Fatal("oldest entry survived size eviction")
	}
	if _, ok := guard.seen[fmt.Sprintf("%d:hash-%d", replayMaxEntries+9, replayMaxEntries+9)]; !ok {
		t.Fatal("newest entry was evicted")
	}
}
