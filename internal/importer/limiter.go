package importer

// limiter.go bounds how many uploads run at once.
//
// Each Orchestrator owns a single-slot limiter so its uploads are strictly
// sequential. The dashboard service owns a wider one shared by every
// session, which keeps a burst of confirmations from flooding the backend
// and lets shutdown wait for in-flight uploads via WaitForDrain.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyUploads is returned when no slot frees up within the wait time.
var ErrTooManyUploads = errors.New("too many concurrent uploads, please try again later")

// DefaultMaxWaitTime is how long Acquire waits for a slot by default.
const DefaultMaxWaitTime = 30 * time.Second

// UploadLimiter is a counting semaphore for upload slots.
type UploadLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.RWMutex
	active int
}

// LimiterStatus is a snapshot of limiter usage.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// NewUploadLimiter allows at most maxConcurrent uploads; Acquire gives up
// after maxWait.
func NewUploadLimiter(maxConcurrent int, maxWait time.Duration) *UploadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &UploadLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire blocks until a slot is free, ctx is done, or the wait time
// expires (ErrTooManyUploads). Every successful Acquire needs one Release.
func (l *UploadLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.inc(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyUploads
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *UploadLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.inc(1)
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *UploadLimiter) Release() {
	l.inc(-1)
	<-l.slots
}

func (l *UploadLimiter) inc(n int) {
	l.mu.Lock()
	l.active += n
	l.mu.Unlock()
}

// ActiveCount returns the number of held slots.
func (l *UploadLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// Available returns the number of free slots.
func (l *UploadLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// WaitForDrain blocks until no slot is held or ctx is done.
func (l *UploadLimiter) WaitForDrain(ctx context.Context) error {
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

// Status returns current usage.
func (l *UploadLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: cap(l.slots),
	}
}
