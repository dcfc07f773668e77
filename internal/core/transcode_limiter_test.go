package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestTranscodeLimiter_AcquireRelease(t *testing.T) {
	limiter := NewTranscodeLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("initial ActiveCount = %d, want 0", got)
	}

	for i := 0; i < 2; i++ {
		if err := limiter.Acquire(ctx); err != nil {
			t.Fatalf("Acquire %d failed: %v", i, err)
		}
	}
	if got := limiter.Status(); got.Active != 2 || got.Available != 0 {
		t.Errorf("Status = %+v, want Active=2 Available=0", got)
	}

	limiter.Release()
	limiter.Release()

	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("final ActiveCount = %d, want 0", got)
	}
}

func TestTranscodeLimiter_RejectsWhenFull(t *testing.T) {
	limiter := NewTranscodeLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	err := limiter.Acquire(ctx)
	if !errors.Is(err, ErrTooManyTranscodes) {
		t.Fatalf("expected ErrTooManyTranscodes, got %v", err)
	}
	if KindOf(err) != KindUnavailable {
		t.Errorf("KindOf = %v, want %v", KindOf(err), KindUnavailable)
	}
}

func TestTranscodeLimiter_ContextCancellation(t *testing.T) {
	limiter := NewTranscodeLimiter(1, 5*time.Second)

	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- limiter.Acquire(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after cancellation")
	}
}

func TestTranscodeLimiter_NeverExceedsMax(t *testing.T) {
	const maxConcurrent = 3
	limiter := NewTranscodeLimiter(maxConcurrent, time.Second)

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		maxObserved int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := limiter.run(context.Background(), func() error {
				mu.Lock()
				if n := limiter.ActiveCount(); n > maxObserved {
					maxObserved = n
				}
				mu.Unlock()
				time.Sleep(5 * time.Millisecond)
				return nil
			})
			if err != nil {
				t.Errorf("run failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxObserved > maxConcurrent {
		t.Errorf("observed %d concurrent, max %d", maxObserved, maxConcurrent)
	}
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("final ActiveCount = %d, want 0", got)
	}
}

func TestTranscodeLimiter_WaitForDrain(t *testing.T) {
	limiter := NewTranscodeLimiter(1, time.Second)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- limiter.WaitForDrain(context.Background()) }()

	select {
	case <-done:
		t.Fatal("WaitForDrain returned while a conversion was active")
	case <-time.After(30 * time.Millisecond):
	}

	limiter.Release()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitForDrain error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForDrain did not return after release")
	}
}

func TestTranscodeLimiter_Defaults(t *testing.T) {
	limiter := NewTranscodeLimiter(0, 0)
	if got := limiter.MaxConcurrent(); got != DefaultMaxConcurrentTranscodes {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentTranscodes)
	}
}
