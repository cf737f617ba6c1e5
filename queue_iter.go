package async

import "context"

// ForEach calls f with every value sent to q, in order, until q
// terminates and drains, or until ctx is done, or until f returns an
// error. If ctx ends the loop early, ForEach cancels its pending
// NextStage waiter before returning ctx.Err().
//
// This is a thin sequential loop over NextStage, not an iterator
// combinator: the spec places map/forEach/collect combinators out of
// scope as pure transformations over deferred-completion sequences, but
// this single-step drain is exactly the iteration primitive those
// combinators would be built on, and the original Java source exposes
// an equivalent forEach helper directly on its queue type.
func (q *AsyncQueue[T]) ForEach(ctx context.Context, f func(T) error) error {
	for {
		item, err := awaitNext(ctx, q.NextStage())
		if err != nil {
			return err
		}
		if item.End {
			return nil
		}
		if err := f(item.Value); err != nil {
			return err
		}
	}
}

// Collect drains q into a slice, in order, until termination or ctx is
// done.
func (q *AsyncQueue[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	err := q.ForEach(ctx, func(v T) error {
		out = append(out, v)
		return nil
	})
	return out, err
}

func awaitNext[T any](ctx context.Context, fut *Future[Item[T]]) (Item[T], error) {
	select {
	case <-fut.Done():
		return fut.Wait()
	case <-ctx.Done():
		if fut.Cancel() {
			var zero Item[T]
			return zero, ctx.Err()
		}
		// Lost the race: fut was already settled by a producer or by
		// termination before the cancel landed. Honor that value.
		return fut.Wait()
	}
}
