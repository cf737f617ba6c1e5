package async

import "sync"

// Semaphore is a fair, multi-permit counting semaphore whose Acquire
// returns a [Future] rather than blocking the calling goroutine.
//
// Unlike the teacher's single-threaded Semaphore type, which is scoped to
// one [Executor] and serialized by its caller's run loop, an asyncq
// Semaphore is safe to Acquire and Release from any number of
// goroutines concurrently: permits and waiters share one mutex-protected
// critical section instead of relying on single-threaded execution.
//
// Admission is strict FIFO: a multi-permit waiter at the head of the
// queue blocks every waiter behind it, even ones requesting fewer
// permits than are currently available. There is no unfair fast path.
type Semaphore struct {
	mu        sync.Mutex
	available int64
	waiters   list[*semaWaiter]
}

type semaWaiter struct {
	n      int64
	future *Future[Permit]
}

// Permit is the receipt returned by a granted [Semaphore.Acquire]. It is
// a convenience over calling Release(n) directly: Permit.Release is
// idempotent and releases exactly the weight it was granted with.
type Permit struct {
	n        int64
	sema     *Semaphore
	released bool
}

// Release returns p's permits to its semaphore. Calling Release more
// than once, or on a zero Permit, is a no-op.
func (p *Permit) Release() {
	if p == nil || p.released || p.sema == nil {
		return
	}
	p.released = true
	p.sema.Release(p.n)
}

// N reports how many permits p holds.
func (p Permit) N() int64 { return p.n }

// NewSemaphore creates a [Semaphore] with n initial permits.
func NewSemaphore(n int64) *Semaphore {
	if n < 0 {
		invalidArgument("negative initial permit count")
	}
	return &Semaphore{available: n}
}

// Acquire returns a [Future] that settles with a [Permit] once n permits
// have been reserved. If n permits are immediately available and no
// other waiter is queued, the Future is already settled. n must be
// non-negative; a negative n panics synchronously.
func (s *Semaphore) Acquire(n int64) *Future[Permit] {
	if n < 0 {
		invalidArgument("negative permit count")
	}

	s.mu.Lock()
	if s.waiters.empty() && s.available >= n {
		s.available -= n
		s.mu.Unlock()
		return Settled(Permit{n: n, sema: s})
	}

	w := &semaWaiter{n: n, future: newFuture[Permit]()}
	wn := s.waiters.pushBack(w)
	s.mu.Unlock()

	w.future.setCancelHook(func() { s.removeWaiter(wn) })

	return w.future
}

// Release returns n permits to s, then grants as many queued waiters, in
// FIFO order, as the ledger now allows. n must be non-negative.
//
// The behaviour when cumulative released permits exceed the semaphore's
// original size is intentionally unbounded: Release never clamps
// available, so a caller that over-releases simply grows the permit pool.
// See DESIGN.md's Open Decisions for why this, rather than a panic or
// saturation, was chosen.
func (s *Semaphore) Release(n int64) {
	if n < 0 {
		invalidArgument("negative permit count")
	}

	s.mu.Lock()
	s.available += n
	s.mu.Unlock()

	s.drain()
}

// drain grants permits to as many head waiters as the ledger allows. If
// granting a waiter loses its settle race to a concurrent Cancel, the
// permits it would have held are returned to the ledger and granting is
// retried — a cancelled acquire must never leak the permits it would
// otherwise have consumed.
func (s *Semaphore) drain() {
	for {
		var granted []*semaWaiter

		s.mu.Lock()
		for {
			n := s.waiters.peek()
			if n == nil || s.available < n.value.n {
				break
			}
			s.waiters.remove(n)
			s.available -= n.value.n
			granted = append(granted, n.value)
		}
		s.mu.Unlock()

		if len(granted) == 0 {
			return
		}

		var refunded int64
		for _, w := range granted {
			if !w.future.Settle(Permit{n: w.n, sema: s}) {
				refunded += w.n
			}
		}

		if refunded == 0 {
			return
		}

		s.mu.Lock()
		s.available += refunded
		s.mu.Unlock()
	}
}

func (s *Semaphore) removeWaiter(n *node[*semaWaiter]) {
	s.mu.Lock()
	s.waiters.remove(n)
	s.mu.Unlock()
}

// TryAcquire attempts to acquire n permits without ever queuing. It
// succeeds only if n permits are available and no other waiter is
// already queued — granting it anyway, if waiters were in line, would
// let a non-blocking caller barge ahead of waiters and break fairness.
func (s *Semaphore) TryAcquire(n int64) bool {
	if n < 0 {
		invalidArgument("negative permit count")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.waiters.empty() && s.available >= n {
		s.available -= n
		return true
	}
	return false
}

// DrainPermits atomically takes and returns every currently available
// permit, leaving zero available. It never queues and is intended for
// shutdown paths that want to prevent any further immediate acquire.
func (s *Semaphore) DrainPermits() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.available
	s.available = 0
	return n
}

// AvailablePermits reports the current permit count.
func (s *Semaphore) AvailablePermits() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

// QueueLength reports the number of waiters currently queued.
func (s *Semaphore) QueueLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiters.len()
}
