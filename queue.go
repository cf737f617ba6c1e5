package async

// Item is the value a consumer gets out of [AsyncQueue.NextStage]: either
// a delivered Value, or the End sentinel marking that the queue has
// terminated and drained. When End is true, Value is the zero value.
type Item[T any] struct {
	Value T
	End   bool
}

// AsyncQueue is an unbounded multi-producer single-consumer value queue.
// Send never blocks and never fails except after termination; NextStage
// is the single-consumer, deferred-completion read side.
//
// AsyncQueue has no capacity limit: a producer that outruns its consumer
// grows the buffered-fulfillment list without bound. Callers wanting
// backpressure should use [BoundedAsyncQueue] instead.
type AsyncQueue[T any] struct {
	q waiterQueue[T]
}

// NewQueue creates an empty, unterminated [AsyncQueue].
func NewQueue[T any]() *AsyncQueue[T] {
	return new(AsyncQueue[T])
}

// Send enqueues v for the consumer. It reports false, without enqueuing
// anything, iff the queue has already been terminated.
func (q *AsyncQueue[T]) Send(v T) bool {
	return q.q.offerFulfillment(v)
}

// NextStage returns a [Future] that settles to the next [Item]: a
// delivered value, or end-of-iteration once the queue is terminated and
// drained. Calls to NextStage must not overlap — the queue has a
// single-consumer contract on this side.
func (q *AsyncQueue[T]) NextStage() *Future[Item[T]] {
	return q.q.takeOrEnqueue()
}

// Poll takes a value that is immediately available, without waiting. It
// reports false if nothing is buffered right now — which is
// indistinguishable from "terminated and drained"; use NextStage to
// observe termination. Poll shares NextStage's single-consumer contract.
func (q *AsyncQueue[T]) Poll() (T, bool) {
	return q.q.tryTake()
}

// Terminate sets the sticky termination flag. Idempotent: subsequent
// calls are no-ops. Future Sends report false; any consumer waiter
// already pending on NextStage settles immediately with end-of-iteration.
// Values already buffered before Terminate remain consumable; NextStage
// only yields end-of-iteration once they are drained.
func (q *AsyncQueue[T]) Terminate() {
	q.q.terminate()
}

// Len reports the number of values currently buffered, waiting for a
// consumer. It is 0 whenever there is a pending consumer waiter instead.
func (q *AsyncQueue[T]) Len() int {
	return q.q.bufferedLen()
}
