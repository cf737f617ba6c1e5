package async

import "sync"

// queueRequester is a consumer waiting on [AsyncQueue.NextStage].
type queueRequester[T any] struct {
	future *Future[Item[T]]
}

// waiterQueue is the dual requester/fulfillment FIFO that backs
// [AsyncQueue]'s send/NextStage pair. At most one of requesters and
// fulfillments is non-empty at any instant: Send either hands a value
// straight to the oldest waiting requester or buffers it; NextStage
// either takes a buffered value or becomes a new requester.
//
// This is the component the spec calls the waiter queue (§4.A):
// grounded on the teacher's semaphore.go waiters slice (there a flat
// slice with O(n) removal; here an intrusive doubly-linked list for O(1)
// cancellation) and on the requester/fulfiller dual-queue skeleton
// described as the generalizable core shared with lock and semaphore
// variants.
//
// requesters and fulfillments are mutually exclusive by construction
// (offerFulfillment always tries the other list first), so there is no
// separate mode tag to keep in sync — occupancy of the two lists is the
// only state that matters, and each method below reads it directly.
type waiterQueue[T any] struct {
	mu           sync.Mutex
	requesters   list[*queueRequester[T]]
	fulfillments list[T]
	terminated   bool
}

// offerFulfillment implements Send's half of the protocol: deliver v to
// the oldest pending requester, or buffer it if there is none. It loops
// past any requester whose Future was concurrently cancelled rather than
// losing v, per the cancellation-ordering rule: the producer that loses
// a settle race to a cancel must return the fulfillment to the queue.
func (q *waiterQueue[T]) offerFulfillment(v T) bool {
	for {
		q.mu.Lock()
		if q.terminated {
			q.mu.Unlock()
			return false
		}

		n, ok := q.requesters.popFront()
		if !ok {
			q.fulfillments.pushBack(v)
			q.mu.Unlock()
			return true
		}
		q.mu.Unlock()

		if n.value.future.Settle(Item[T]{Value: v}) {
			return true
		}
		// n.value's Future was cancelled concurrently; it already
		// observed ErrCancelled and consumed nothing. Try the next
		// requester, or buffer v if there is none.
	}
}

// takeOrEnqueue implements NextStage's half of the protocol: take a
// buffered fulfillment if one is available, otherwise become a new
// requester (or, if the queue is terminated and drained, settle
// immediately with end-of-iteration).
func (q *waiterQueue[T]) takeOrEnqueue() *Future[Item[T]] {
	q.mu.Lock()

	if n, ok := q.fulfillments.popFront(); ok {
		q.mu.Unlock()
		return Settled(Item[T]{Value: n.value})
	}

	if q.terminated {
		q.mu.Unlock()
		return Settled(Item[T]{End: true})
	}

	w := &queueRequester[T]{future: newFuture[Item[T]]()}
	wn := q.requesters.pushBack(w)
	q.mu.Unlock()

	w.future.setCancelHook(func() { q.removeRequester(wn) })

	return w.future
}

// tryTake implements Poll: a non-blocking, single-consumer attempt to
// take a buffered fulfillment.
func (q *waiterQueue[T]) tryTake() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n, ok := q.fulfillments.popFront()
	if !ok {
		var zero T
		return zero, false
	}
	return n.value, true
}

func (q *waiterQueue[T]) removeRequester(n *node[*queueRequester[T]]) {
	q.mu.Lock()
	q.requesters.remove(n)
	q.mu.Unlock()
}

// terminate sets the sticky termination flag and settles every pending
// requester with end-of-iteration. It is idempotent: a second call is a
// no-op. Buffered fulfillments are left untouched — they remain
// consumable until drained, per the spec's termination semantics.
func (q *waiterQueue[T]) terminate() {
	q.mu.Lock()
	if q.terminated {
		q.mu.Unlock()
		return
	}
	q.terminated = true

	var pending []*queueRequester[T]
	for {
		n, ok := q.requesters.popFront()
		if !ok {
			break
		}
		pending = append(pending, n.value)
	}
	q.mu.Unlock()

	for _, w := range pending {
		w.future.Settle(Item[T]{End: true})
	}
}

func (q *waiterQueue[T]) bufferedLen() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.fulfillments.len()
}
