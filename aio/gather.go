// File: aio/gather.go
// Author: momentics <momentics@gmail.com>
//
// Re-exports task's eager-start future and gather combinators under the
// composed front's own namespace, per spec.md §6 listing `gather` and
// `gather-void` alongside connect/open/slurp as part of one API surface.

package aio

import (
	"context"
	"time"

	"github.com/czkz/async2/task"
	"github.com/czkz/async2/transport"
)

// Go starts fn immediately and returns a handle that must be awaited
// exactly once.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *task.Task[T] {
	return task.Go(ctx, fn)
}

// Gather2 awaits a and b in order, returning the first error encountered
// while still awaiting whichever of the two has not yet completed.
func Gather2[A, B any](ctx context.Context, a *task.Task[A], b *task.Task[B]) (A, B, error) {
	return task.Gather2(ctx, a, b)
}

// Gather3 is Gather2 for three tasks.
func Gather3[A, B, C any](ctx context.Context, a *task.Task[A], b *task.Task[B], c *task.Task[C]) (A, B, C, error) {
	return task.Gather3(ctx, a, b, c)
}

// GatherSlice awaits every task in tasks, in order, returning their
// results and the first error encountered.
func GatherSlice[T any](ctx context.Context, tasks ...*task.Task[T]) ([]T, error) {
	return task.GatherSlice(ctx, tasks...)
}

// GatherVoid is GatherSlice for tasks with no result value.
func GatherVoid(ctx context.Context, tasks ...*task.Task[struct{}]) error {
	return task.GatherVoid(ctx, tasks...)
}

// Sleep suspends until d elapses or ctx is done, the composed front's
// `sleep(ms)` operation. It parks on a timerfd registered with the same
// reactor every other wait in this repo goes through, rather than a
// stdlib timer outside the readiness-polling loop.
func (e *Env) Sleep(ctx context.Context, d time.Duration) error {
	t, err := transport.NewTimer(e.Reactor, d)
	if err != nil {
		return err
	}
	defer t.Close()
	return t.Wait(ctx)
}
