package async

import "sync"

// BoundedAsyncQueue is a multi-producer single-consumer value queue with
// backpressure: at most capacity accepted-but-unconsumed items exist at
// any instant. It is composed from an unbounded [AsyncQueue] as the value
// channel and a [Semaphore] as the send-side gate, exactly as spec.md
// describes — the semaphore's fairness among producers carries over
// directly to fairness among blocked Sends.
type BoundedAsyncQueue[T any] struct {
	inner    *AsyncQueue[T]
	gate     *Semaphore
	capacity int64

	mu              sync.Mutex
	terminated      bool
	innerTerminated bool
	pending         int64 // Sends whose call was accepted, not yet resolved
	accepted        int64
	consumed        int64
	termFuture      *Future[struct{}]
}

// NewBoundedQueue creates a [BoundedAsyncQueue] with the given capacity.
// capacity must be positive; a non-positive capacity panics synchronously.
func NewBoundedQueue[T any](capacity int64) *BoundedAsyncQueue[T] {
	if capacity <= 0 {
		invalidArgument("non-positive capacity")
	}
	return &BoundedAsyncQueue[T]{
		inner:    NewQueue[T](),
		gate:     NewSemaphore(capacity),
		capacity: capacity,
	}
}

// Send returns a [Future] that settles to true once v has been accepted
// and linked into the queue for delivery, or to false if the queue was
// already terminated before this call to Send was made.
//
// A Send that is still waiting on its permit (backpressured) at the
// moment Terminate is called still completes once that permit is
// granted: only a Send whose call happens after Terminate is rejected.
// This matches the ground-truth behaviour of a bounded queue closing
// while producers are still draining into it — values already accepted
// for sending are not silently dropped by a termination that merely
// raced their permit grant.
func (q *BoundedAsyncQueue[T]) Send(v T) *Future[bool] {
	q.mu.Lock()
	if q.terminated {
		q.mu.Unlock()
		return Settled(false)
	}
	q.pending++
	q.mu.Unlock()

	result := newFuture[bool]()

	acquire := q.gate.Acquire(1)
	result.setCancelHook(func() { acquire.Cancel() })

	acquire.Then(func(p Permit, err error) {
		if err != nil {
			// The permit acquisition itself was cancelled; nothing was
			// ever reserved, so there is nothing to release.
			q.mu.Lock()
			q.pending--
			q.mu.Unlock()
			q.maybeFinishTermination()
			result.Settle(false)
			return
		}

		// This call was accepted before q.terminated could have been
		// set (the check above holds q.mu), so it completes regardless
		// of q.terminated's current value — maybeFinishTermination
		// defers both the inner queue's termination and the
		// termination Future's settlement until q.pending reaches zero,
		// exactly so this Send has a chance to finish.
		q.mu.Lock()
		q.accepted++
		q.mu.Unlock()

		// Deliberately outside the lock: inner.Send may synchronously
		// settle a waiting consumer's NextStage Future, whose
		// continuation may call back into this type (releaseAfterConsume).
		q.inner.Send(v)

		q.mu.Lock()
		q.pending--
		q.mu.Unlock()
		q.maybeFinishTermination()

		result.Settle(true)
	})

	return result
}

// NextStage returns a [Future] that settles to the next [Item], exactly
// as [AsyncQueue.NextStage] does. Once a value (not the end sentinel) is
// delivered, one permit is released back to the send-side gate — after
// the value is handed to the consumer, never before, so capacity never
// appears to exceed K to a producer racing to send the next item.
func (q *BoundedAsyncQueue[T]) NextStage() *Future[Item[T]] {
	result := newFuture[Item[T]]()

	next := q.inner.NextStage()
	result.setCancelHook(func() { next.Cancel() })

	next.Then(func(item Item[T], err error) {
		if err != nil {
			result.SettleError(err)
			return
		}
		if !item.End {
			q.releaseAfterConsume()
		}
		result.Settle(item)
	})

	return result
}

// Poll is the non-blocking counterpart of NextStage, sharing its
// single-consumer contract and its permit-release-after-delivery rule.
func (q *BoundedAsyncQueue[T]) Poll() (T, bool) {
	v, ok := q.inner.Poll()
	if ok {
		q.releaseAfterConsume()
	}
	return v, ok
}

func (q *BoundedAsyncQueue[T]) releaseAfterConsume() {
	q.gate.Release(1)

	q.mu.Lock()
	q.consumed++
	q.mu.Unlock()

	q.maybeFinishTermination()
}

// Terminate sets the sticky termination flag, then returns a [Future]
// that settles once every Send whose call was made before termination —
// including ones still waiting on a backpressured permit at that
// moment — has been both linked into the inner queue and observed by
// the consumer. Idempotent: later calls return the same Future.
//
// The inner queue's own Terminate is deferred until every such pending
// send has finished linking its value in — otherwise a send that had
// already been accepted (or was still waiting on its permit) could lose
// a race against the inner queue's termination and have its value
// dropped.
func (q *BoundedAsyncQueue[T]) Terminate() *Future[struct{}] {
	q.mu.Lock()
	if q.terminated {
		f := q.termFuture
		q.mu.Unlock()
		return f
	}

	q.terminated = true
	q.termFuture = newFuture[struct{}]()
	f := q.termFuture
	q.mu.Unlock()

	q.maybeFinishTermination()

	return f
}

// maybeFinishTermination terminates the inner queue once no send made
// before Terminate is still pending (waiting on its permit, or linking
// its value in), and settles the termination Future once every accepted
// send has also been consumed. Both actions are idempotent and safe to
// call from any of Send, releaseAfterConsume, or Terminate after a state
// change that might have made one of them newly true. It never runs
// with q.mu held.
func (q *BoundedAsyncQueue[T]) maybeFinishTermination() {
	q.mu.Lock()
	terminateInner := q.terminated && q.pending == 0 && !q.innerTerminated
	if terminateInner {
		q.innerTerminated = true
	}
	settleNow := q.terminated && q.pending == 0 && q.consumed >= q.accepted
	f := q.termFuture
	q.mu.Unlock()

	if terminateInner {
		q.inner.Terminate()
	}
	if settleNow && f != nil {
		f.Settle(struct{}{})
	}
}

// Cap returns the queue's capacity.
func (q *BoundedAsyncQueue[T]) Cap() int64 {
	return q.capacity
}
