package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func TestDoVal_SuccessOnFirstAttempt(t *testing.T) {
	var calls int
	v, err := DoVal(context.Background(), fastRetry(3), func(_ context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "ok" || calls != 1 {
		t.Errorf("got %q after %d calls", v, calls)
	}
}

func TestDoVal_RetriesTransient(t *testing.T) {
	var calls int
	v, err := DoVal(context.Background(), fastRetry(3), func(_ context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, NewTransientError(errors.New("unavailable"), 503)
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 || calls != 3 {
		t.Errorf("got %d after %d calls", v, calls)
	}
}

func TestDoVal_DefaultIsSingleAttempt(t *testing.T) {
	var calls int
	_, err := DoVal(context.Background(), RetryConfig{}, func(_ context.Context) (int, error) {
		calls++
		return 0, NewTransientError(errors.New("unavailable"), 503)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoVal_StopsOnPermanentError(t *testing.T) {
	var calls int
	_, err := DoVal(context.Background(), fastRetry(5), func(_ context.Context) (int, error) {
		calls++
		return 0, errors.New("forbidden")
	})
	if err == nil || calls != 1 {
		t.Errorf("expected one failing call, got %d calls err=%v", calls, err)
	}
}

func TestDoVal_OnRetryCalled(t *testing.T) {
	var retries []int
	cfg := fastRetry(3)
	cfg.OnRetry = func(attempt int, _ error) { retries = append(retries, attempt) }

	_, _ = DoVal(context.Background(), cfg, func(_ context.Context) (int, error) {
		return 0, NewTransientError(errors.New("unavailable"), 503)
	})
	if len(retries) != 2 || retries[0] != 1 || retries[1] != 2 {
		t.Errorf("unexpected retries: %v", retries)
	}
}

func TestDoVal_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int
	_, err := DoVal(ctx, fastRetry(5), func(_ context.Context) (int, error) {
		calls++
		return 0, NewTransientError(errors.New("unavailable"), 503)
	})
	if err == nil || calls != 1 {
		t.Errorf("expected a single call on canceled context, got %d", calls)
	}
}

func TestBackoff_Capped(t *testing.T) {
	cfg := applyDefaults(RetryConfig{InitialBackoff: time.Second, MaxBackoff: 2 * time.Second})
	if d := backoff(10, cfg); d != 2*time.Second {
		t.Errorf("expected capped backoff, got %v", d)
	}
}
