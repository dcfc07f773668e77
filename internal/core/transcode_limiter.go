package core

// transcode_limiter.go bounds concurrent workbook encoding and decoding.
//
// Building or parsing an xlsx holds the whole workbook in memory, so the
// service runs at most maxConcurrent conversions at once. When every slot is
// taken a caller waits up to maxWait, then fails with ErrTooManyTranscodes.
// WaitForDrain lets shutdown finish in-flight conversions first.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyTranscodes is returned when no conversion slot frees up in time.
var ErrTooManyTranscodes = errors.New("too many concurrent spreadsheet conversions, please try again later")

// DefaultMaxConcurrentTranscodes is the default limit for parallel conversions.
const DefaultMaxConcurrentTranscodes = 4

// DefaultTranscodeWait is how long to wait for a slot before rejecting.
const DefaultTranscodeWait = 10 * time.Second

// TranscodeLimiter is a semaphore over workbook conversions.
type TranscodeLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewTranscodeLimiter creates a limiter allowing maxConcurrent conversions.
// Non-positive arguments fall back to the defaults.
func NewTranscodeLimiter(maxConcurrent int, maxWait time.Duration) *TranscodeLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentTranscodes
	}
	if maxWait <= 0 {
		maxWait = DefaultTranscodeWait
	}
	return &TranscodeLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire takes a slot, waiting at most maxWait.
// The caller must call Release once the conversion is done.
func (l *TranscodeLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyTranscodes
	}
}

// Release returns a slot taken by Acquire.
func (l *TranscodeLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.semaphore
}

// ActiveCount returns the number of conversions in flight.
func (l *TranscodeLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// MaxConcurrent returns the slot count.
func (l *TranscodeLimiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

// WaitForDrain blocks until no conversion is in flight or ctx is done.
func (l *TranscodeLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// TranscodeLimiterStatus is a snapshot of the limiter for monitoring.
type TranscodeLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state.
func (l *TranscodeLimiter) Status() TranscodeLimiterStatus {
	active := l.ActiveCount()
	return TranscodeLimiterStatus{
		Active:        active,
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}

// run executes fn while holding a slot.
func (l *TranscodeLimiter) run(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}
