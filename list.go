package async

// node is an element of an intrusive doubly-linked list. A node knows
// which list it currently belongs to, so removing it is O(1) and a no-op
// if it has already been unlinked (by a prior pop or a concurrent cancel).
type node[T any] struct {
	list       *list[T]
	prev, next *node[T]
	value      T
}

// list is the FIFO intrusive doubly-linked list used to hold the
// requester and fulfillment sides of a waiter queue. It is not safe for
// concurrent use on its own; callers (waiterQueue, Semaphore) protect it
// with their own mutex.
type list[T any] struct {
	head, tail *node[T]
	size       int
}

func (l *list[T]) empty() bool { return l.size == 0 }

func (l *list[T]) len() int { return l.size }

// pushBack appends v and returns the node so that the caller may later
// remove it directly, without a search, from a context other than the
// one popping the list's front (cancellation from the waiter's side).
func (l *list[T]) pushBack(v T) *node[T] {
	n := &node[T]{list: l, value: v}
	if l.tail == nil {
		l.head = n
	} else {
		l.tail.next = n
		n.prev = l.tail
	}
	l.tail = n
	l.size++
	return n
}

// peek returns the head node without removing it, or nil if empty.
func (l *list[T]) peek() *node[T] {
	return l.head
}

// popFront removes and returns the head node, or (nil, false) if empty.
func (l *list[T]) popFront() (*node[T], bool) {
	n := l.head
	if n == nil {
		return nil, false
	}
	l.remove(n)
	return n, true
}

// remove unlinks n from l. It is a no-op if n is nil or not currently
// linked into l, which makes cancellation safe to race against a pop of
// the same node from another goroutine.
func (l *list[T]) remove(n *node[T]) {
	if n == nil || n.list != l {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next, n.list = nil, nil, nil
	l.size--
}
