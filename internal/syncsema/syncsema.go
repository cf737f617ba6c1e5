// Package syncsema provides a goroutine-blocking reference semaphore
// used only as a test oracle: its acquire/release sequence is fed the
// same inputs as [github.com/arnevik/asyncq.Semaphore] in randomized
// tests, and the two are checked for matching permit bookkeeping.
//
// This plays the role original_source's SyncAsyncSemaphore.java plays
// in the Java test suite — a synchronous semaphore kept around purely
// to cross-check the async implementation, never exposed as part of the
// public API. spec.md §1 names a synchronous test-double semaphore as
// out of scope as a production type; that exclusion does not reach this
// package, which exists solely as test tooling.
package syncsema

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Semaphore blocks the calling goroutine on Acquire, unlike its async
// counterpart. It is built on [golang.org/x/sync/semaphore.Weighted],
// which already provides the FIFO fairness the oracle needs to match
// against.
type Semaphore struct {
	w *semaphore.Weighted

	mu        sync.Mutex
	available int64

	queued atomic.Int64
}

// New creates a Semaphore with n initial permits.
func New(n int64) *Semaphore {
	return &Semaphore{w: semaphore.NewWeighted(n), available: n}
}

// Acquire blocks until n permits are available.
func (s *Semaphore) Acquire(n int64) {
	if n < 0 {
		panic("syncsema: negative permit count")
	}
	s.queued.Add(1)
	_ = s.w.Acquire(context.Background(), n)
	s.queued.Add(-1)

	s.mu.Lock()
	s.available -= n
	s.mu.Unlock()
}

// Release returns n permits.
func (s *Semaphore) Release(n int64) {
	if n < 0 {
		panic("syncsema: negative permit count")
	}
	s.mu.Lock()
	s.available += n
	s.mu.Unlock()
	s.w.Release(n)
}

// TryAcquire attempts to acquire n permits without blocking.
func (s *Semaphore) TryAcquire(n int64) bool {
	if n < 0 {
		panic("syncsema: negative permit count")
	}
	if !s.w.TryAcquire(n) {
		return false
	}
	s.mu.Lock()
	s.available -= n
	s.mu.Unlock()
	return true
}

// DrainPermits takes and returns every currently available permit.
func (s *Semaphore) DrainPermits() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.available
	if n > 0 {
		s.w.TryAcquire(n)
		s.available = 0
	}
	return n
}

// AvailablePermits reports the current permit count.
func (s *Semaphore) AvailablePermits() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

// QueueLength reports the approximate number of goroutines currently
// blocked in Acquire.
func (s *Semaphore) QueueLength() int {
	return int(s.queued.Load())
}
