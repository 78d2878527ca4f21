package core

// transfer_limiter.go bounds how many clipboard transfers run at once.
//
// Every transfer holds a slot while it reads rows, talks to the clipboard and
// writes the updated field. When all slots are taken new requests wait up to
// maxWait and then fail with ErrTooManyTransfers. WaitForDrain lets shutdown
// wait for in-flight transfers.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyTransfers is returned when no transfer slot frees up in time.
var ErrTooManyTransfers = errors.New("too many transfers in progress, please try again later")

// DefaultMaxConcurrentTransfers is the default limit for parallel transfers.
const DefaultMaxConcurrentTransfers = 16

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 5 * time.Second

// TransferLimiter is a semaphore over transfer slots.
type TransferLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewTransferLimiter allows at most maxConcurrent simultaneous transfers.
func NewTransferLimiter(maxConcurrent int, maxWait time.Duration) *TransferLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentTransfers
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &TransferLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a slot. The caller must Release it afterwards.
func (l *TransferLimiter) Acquire(ctx context.Context) error {
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
		return ErrTooManyTransfers
	}
}

// TryAcquire takes a slot without blocking.
func (l *TransferLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *TransferLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.semaphore
}

// ActiveCount returns the number of transfers holding a slot.
func (l *TransferLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

func (l *TransferLimiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

func (l *TransferLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until no transfer holds a slot or ctx is done.
func (l *TransferLimiter) WaitForDrain(ctx context.Context) error {
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

// TransferLimiterStatus is a snapshot of the limiter.
type TransferLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

func (l *TransferLimiter) Status() TransferLimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return TransferLimiterStatus{
		Active:        active,
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}
