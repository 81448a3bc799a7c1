package core

// limiter.go bounds how many cleaning jobs run at once.
//
// Each job holds one slot of a buffered channel for its whole run. When all
// slots are taken, Acquire waits up to maxWait and then fails with
// ErrTooManyJobs. WaitForDrain blocks until every running job has released
// its slot, for graceful shutdown.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyJobs is returned when all job slots are occupied and the wait
// timeout expires.
var ErrTooManyJobs = errors.New("too many concurrent jobs, please try again later")

// DefaultMaxConcurrentJobs is the default limit for parallel cleaning jobs.
const DefaultMaxConcurrentJobs = 4

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// JobLimiter controls concurrent cleaning jobs using a semaphore.
type JobLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewJobLimiter creates a limiter that allows at most maxConcurrent
// simultaneous jobs. Non-positive arguments fall back to the defaults.
func NewJobLimiter(maxConcurrent int, maxWait time.Duration) *JobLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentJobs
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &JobLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire takes a job slot, waiting up to the limiter's max wait.
// The caller must call Release when the job completes.
func (l *JobLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-timer.C:
		return ErrTooManyJobs

	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot without blocking and reports whether it did.
func (l *JobLimiter) TryAcquire() bool {
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
func (l *JobLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of running jobs.
func (l *JobLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// MaxConcurrent returns the maximum allowed concurrent jobs.
func (l *JobLimiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

// Available returns the number of free slots.
func (l *JobLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until all running jobs complete or ctx is done.
func (l *JobLimiter) WaitForDrain(ctx context.Context) error {
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

// LimiterStatus is a snapshot of the limiter's state.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for the health endpoint.
func (l *JobLimiter) Status() LimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return LimiterStatus{
		Active:        active,
		Available:     l.Available(),
		MaxConcurrent: cap(l.semaphore),
	}
}
