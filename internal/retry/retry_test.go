package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/catsflats/backend/internal/apperr"
)

// fastOpts keeps test backoff delays negligible.
var fastOpts = Options{
	InitialDelay: time.Millisecond,
	MaxDelay:     2 * time.Millisecond,
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), "test.flaky", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", apperr.Dependency("upstream hiccup", nil)
		}
		return "ok", nil
	}, fastOpts)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got != "ok" {
		t.Fatalf("Do() = %q, want %q", got, "ok")
	}
	if calls != 3 {
		t.Fatalf("fn called %d times, want 3", calls)
	}
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), "test.invalid", func(ctx context.Context) (int, error) {
		calls++
		return 0, apperr.Validation("bad input")
	}, fastOpts)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("Do() error = %v, want validation kind", err)
	}
	if calls != 1 {
		t.Fatalf("fn called %d times, want 1", calls)
	}
}

func TestDoExhaustsAttemptBudget(t *testing.T) {
	calls := 0
	wantErr := apperr.Dependency("always down", errors.New("connection refused"))
	_, err := Do(context.Background(), "test.down", func(ctx context.Context) (int, error) {
		calls++
		return 0, wantErr
	}, fastOpts)
	if !errors.Is(err, wantErr) {
		t.Fatalf("Do() error = %v, want last attempt error", err)
	}
	if calls != 3 {
		t.Fatalf("fn called %d times, want default max of 3", calls)
	}
}

func TestDoHonorsRetryAfterHint(t *testing.T) {
	start := time.Now()
	calls := 0
	_, err := Do(context.Background(), "test.limited", func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, apperr.RateLimited("slow down", 20*time.Millisecond)
		}
		return 1, nil
	}, fastOpts)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("retried after %s, expected the advertised 20ms cooldown", elapsed)
	}
}

func TestDoReturnsContextErrorWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Do(ctx, "test.cancelled", func(ctx context.Context) (int, error) {
		return 0, apperr.Dependency("upstream hiccup", nil)
	}, Options{InitialDelay: time.Minute})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do() error = %v, want context.Canceled", err)
	}
}

func TestBackoffDelayCapped(t *testing.T) {
	opts := defaults(Options{InitialDelay: time.Second, MaxDelay: 3 * time.Second})
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 3 * time.Second},
		{6, 3 * time.Second},
	}
	for _, tt := range tests {
		if got := backoffDelay(opts, tt.attempt); got != tt.want {
			t.Errorf("backoffDelay(attempt=%d) = %s, want %s", tt.attempt, got, tt.want)
		}
	}
}
