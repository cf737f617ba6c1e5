package async

import "errors"

// ErrCancelled is the error a [Future] settles with when its waiter is
// cancelled. It is distinct from end-of-iteration: a cancelled consumer
// waiter never receives a value and never consumes a buffered item or a
// permit that hadn't already been granted to it.
var ErrCancelled = errors.New("asyncq: cancelled")

// ErrTerminated is returned by callers composing around [AsyncQueue] and
// [BoundedAsyncQueue] that want an error value for "the queue has been
// terminated", even though Send itself reports termination as a plain
// false rather than as an error value (queue-terminated is an ordinary
// sentinel to consumers, not a failure).
var ErrTerminated = errors.New("asyncq: queue terminated")

func invalidArgument(msg string) {
	panic("asyncq: " + msg)
}
