// Package async provides the waiter-queue machinery shared by a fair
// multi-permit semaphore, an unbounded MPSC value queue, and a bounded
// MPSC queue with backpressure — three non-blocking coordination
// primitives whose acquire/consume operations return a [Future] instead
// of parking a goroutine.
//
// # Completion Handles
//
// Every operation that might need to wait — [Semaphore.Acquire],
// [AsyncQueue.NextStage], [BoundedAsyncQueue.Send],
// [BoundedAsyncQueue.Terminate] — returns a [Future] rather than
// blocking. A Future settles exactly once, with either a value or an
// error, and callers observe that settlement with [Future.Then] (attach
// a continuation), [Future.Wait] (block the calling goroutine), or a
// select on [Future.Done]. Continuations run inline on whichever
// goroutine performs the settlement unless an [Executor] is supplied.
//
// # The Shared Waiter Queue
//
// [Semaphore], [AsyncQueue] and [BoundedAsyncQueue] are all built on the
// same protocol: requesters (callers waiting for a permit or a value)
// and fulfillments (permits or buffered values with no requester yet)
// are mutually exclusive. A release or a send either satisfies the
// oldest requester directly or buffers; an acquire or a NextStage either
// consumes a buffered fulfillment or becomes a new requester. The
// intrusive doubly-linked list type is shared: waiterqueue.go keeps a
// requester FIFO and a buffered-value FIFO on it for [AsyncQueue], and
// the semaphore keeps its own waiter FIFO on it, with a permit counter
// in place of a fulfillment FIFO.
//
// # Fairness
//
// [Semaphore] admits strictly in FIFO order: a multi-permit waiter at
// the head of the queue blocks every later waiter regardless of how
// many permits they request, and [Semaphore.TryAcquire] never barges
// ahead of a queued waiter. [BoundedAsyncQueue] inherits this fairness
// among blocked producers by using a Semaphore as its send-side gate.
//
// # Termination
//
// Both queue types expose a sticky, idempotent Terminate. After
// termination, producers are rejected ([AsyncQueue.Send] returns false;
// [BoundedAsyncQueue.Send]'s Future settles to false) but values already
// buffered before termination remain consumable — [AsyncQueue.NextStage]
// only yields the end-of-iteration [Item] once the buffer is drained.
// [BoundedAsyncQueue.Terminate]'s returned Future settles once every
// Send accepted before termination has been observed by the consumer.
//
// # Cancellation
//
// Cancelling a pending [Future] via [Future.Cancel] unlinks its waiter
// from whichever queue it is parked in and settles it with
// [ErrCancelled]. A cancelled acquire never consumes the permits or
// buffered value it was contending for; if a producer's settle loses
// the race to a concurrent cancel, the producer returns the fulfillment
// (or the permits) to the queue rather than losing it.
//
// # Out of Scope
//
// Iterator combinators beyond [AsyncQueue.ForEach] and
// [AsyncQueue.Collect], asynchronous read-write/stamped locks (built on
// the same waiter-queue skeleton with richer admission predicates, left
// for a future package), and thread-pool/executor selection policy are
// not provided here.
package async
