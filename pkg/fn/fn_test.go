package fn

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestThen_ShortCircuits(t *testing.T) {
	boom := errors.New("boom")
	first := func(_ context.Context, n int) Result[int] { return Err[int](boom) }
	called := false
	second := func(_ context.Context, n int) Result[string] {
		called = true
		return Ok("x")
	}

	r := Then(first, second)(context.Background(), 1)
	if !r.IsErr() {
		t.Fatal("expected error")
	}
	if called {
		t.Error("second stage must not run after a failure")
	}
	if _, err := r.Unwrap(); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestThen_PassesValue(t *testing.T) {
	double := func(_ context.Context, n int) Result[int] { return Ok(n * 2) }
	show := func(_ context.Context, n int) Result[int] { return Ok(n + 1) }
	r := Then(double, show)(context.Background(), 20)
	if v, _ := r.Unwrap(); v != 41 {
		t.Errorf("expected 41, got %d", v)
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	opts := RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond}
	r := Retry(context.Background(), opts, func(_ context.Context) Result[int] {
		attempts++
		if attempts < 3 {
			return Err[int](errors.New("transient"))
		}
		return Ok(7)
	})
	if v, err := r.Unwrap(); err != nil || v != 7 {
		t.Fatalf("expected 7, got %d err=%v", v, err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	opts := RetryOpts{MaxAttempts: 2, InitialWait: time.Millisecond}
	r := Retry(context.Background(), opts, func(_ context.Context) Result[int] {
		attempts++
		return Err[int](errors.New("always"))
	})
	if !r.IsErr() {
		t.Fatal("expected error")
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := RetryOpts{MaxAttempts: 5, InitialWait: time.Minute}
	r := Retry(ctx, opts, func(_ context.Context) Result[int] {
		return Err[int](errors.New("transient"))
	})
	if _, err := r.Unwrap(); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestTap_PassesValueThrough(t *testing.T) {
	var seen int
	tap := Tap(func(_ context.Context, n int) { seen = n })
	r := tap(context.Background(), 9)
	if v, err := r.Unwrap(); err != nil || v != 9 {
		t.Fatalf("expected 9, got %d err=%v", v, err)
	}
	if seen != 9 {
		t.Errorf("side effect saw %d, want 9", seen)
	}
}

func TestRetryStage(t *testing.T) {
	attempts := 0
	stage := func(_ context.Context, n int) Result[int] {
		attempts++
		if attempts < 2 {
			return Err[int](errors.New("transient"))
		}
		return Ok(n * 2)
	}
	opts := RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond}
	r := RetryStage(opts, stage)(context.Background(), 21)
	if v, err := r.Unwrap(); err != nil || v != 42 {
		t.Fatalf("expected 42, got %d err=%v", v, err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestUnwrapOr(t *testing.T) {
	if v := Ok(5).UnwrapOr(1); v != 5 {
		t.Errorf("expected 5, got %d", v)
	}
	if v := Err[int](errors.New("e")).UnwrapOr(1); v != 1 {
		t.Errorf("expected fallback 1, got %d", v)
	}
}

func TestFromPair(t *testing.T) {
	if r := FromPair(3, nil); r.IsErr() {
		t.Error("expected ok")
	}
	if r := FromPair(0, errors.New("e")); r.IsOk() {
		t.Error("expected err")
	}
}
