// File: task/task.go
// Author: momentics <momentics@gmail.com>
//
// Task is a one-shot, eagerly-started deferred computation. Go's own
// goroutines are the stackless-coroutine primitive here — per DESIGN.md,
// "Go has already done a great job in bringing green/virtual threads into
// life" (the async library in the example pack makes exactly this
// argument), so a suspending function body is simply a goroutine and
// suspension is an ordinary blocking channel receive inside that
// goroutine (typically a reactor.Wait call several frames down).

package task

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// OnLeak is invoked when a Task is garbage collected without ever having
// been awaited — the Go realization of "destroying an unawaited task is a
// fatal programming error". The default terminates the process via
// logrus.Fatal, matching the source's abort-on-violation behavior.
var OnLeak = func(msg string) {
	logrus.StandardLogger().Fatal(msg)
}

type selfKey struct{}

// result is the task's single-write completion slot.
type result[T any] struct {
	val T
	err error
}

// Task is a deferred computation returning T or failing with an error.
// Construct with Go. A Task must be awaited exactly once (additional
// Await calls are harmless and return the same stored result); leaving
// one unawaited is a fatal programming error, enforced at garbage
// collection via a finalizer.
type Task[T any] struct {
	done    chan struct{}
	res     result[T]
	awaited atomic.Bool
}

// Go starts fn immediately in a new goroutine (eager start) and returns a
// Task that will carry its result. fn observes ctx and can retrieve its
// own Task via Self.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	runtime.SetFinalizer(t, func(t *Task[T]) {
		if !t.awaited.Load() {
			OnLeak("task destroyed without being awaited")
		}
	})

	go func() {
		defer close(t.done)
		innerCtx := context.WithValue(ctx, selfKey{}, any(t))
		t.res.val, t.res.err = fn(innerCtx)
	}()

	return t
}

// Self retrieves the Task running the current suspending function body,
// analogous to the source's this-task-handle primitive. It returns nil if
// called outside a task started with Go.
func Self[T any](ctx context.Context) *Task[T] {
	v, _ := ctx.Value(selfKey{}).(*Task[T])
	return v
}

// Await blocks until t completes (or ctx is done) and returns its result.
// Calling Await more than once, or after completion, is fine: it always
// returns the same stored value/error.
func (t *Task[T]) Await(ctx context.Context) (T, error) {
	t.awaited.Store(true)
	select {
	case <-t.done:
		return t.res.val, t.res.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done reports whether t has completed without blocking.
func (t *Task[T]) Done() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// PeekError returns t's failure without consuming or blocking, for the
// top-level driver to inspect a completed void task (mirrors the source's
// helper for peeking at a void task's failure).
func (t *Task[T]) PeekError() error {
	if !t.Done() {
		return nil
	}
	return t.res.err
}
