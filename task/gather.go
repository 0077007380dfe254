// File: task/gather.go
// Author: momentics <momentics@gmail.com>
//
// Gather-style combinators: await every sub-task in argument order,
// carrying the first failure while still awaiting the rest (no
// cancellation — matches spec invariant 8 and §4.1's gather contract).
// Go lacks variadic generic tuples, so the fixed-arity Gather2/Gather3 and
// the homogeneous GatherSlice cover the source's single variadic gather.

package task

import "context"

// Gather2 awaits a and b in order, returning both values or the first
// failure encountered (the other task is still awaited to completion).
func Gather2[A, B any](ctx context.Context, a *Task[A], b *Task[B]) (A, B, error) {
	av, aerr := a.Await(ctx)
	bv, berr := b.Await(ctx)
	if aerr != nil {
		return av, bv, aerr
	}
	return av, bv, berr
}

// Gather3 is Gather2 for three sub-tasks.
func Gather3[A, B, C any](ctx context.Context, a *Task[A], b *Task[B], c *Task[C]) (A, B, C, error) {
	av, aerr := a.Await(ctx)
	bv, berr := b.Await(ctx)
	cv, cerr := c.Await(ctx)
	if aerr != nil {
		return av, bv, cv, aerr
	}
	if berr != nil {
		return av, bv, cv, berr
	}
	return av, bv, cv, cerr
}

// GatherSlice awaits every task in order, returning their values in the
// same order, or the first failure encountered (every task is still
// awaited).
func GatherSlice[T any](ctx context.Context, tasks ...*Task[T]) ([]T, error) {
	vals := make([]T, len(tasks))
	var firstErr error
	for i, t := range tasks {
		v, err := t.Await(ctx)
		vals[i] = v
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return vals, firstErr
}

// GatherVoid awaits every task, discarding values, and returns the first
// failure encountered.
func GatherVoid(ctx context.Context, tasks ...*Task[struct{}]) error {
	_, err := GatherSlice(ctx, tasks...)
	return err
}
