// File: task/task_test.go
// Author: momentics <momentics@gmail.com>

package task

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoEagerStart(t *testing.T) {
	started := make(chan struct{})
	tsk := Go(context.Background(), func(ctx context.Context) (int, error) {
		close(started)
		return 42, nil
	})
	defer tsk.Await(context.Background())

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("task body did not start eagerly")
	}
}

func TestAwaitReturnsValue(t *testing.T) {
	tsk := Go(context.Background(), func(ctx context.Context) (string, error) {
		return "hello", nil
	})
	v, err := tsk.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestAwaitReturnsError(t *testing.T) {
	wantErr := errors.New("boom")
	tsk := Go(context.Background(), func(ctx context.Context) (int, error) {
		return 0, wantErr
	})
	_, err := tsk.Await(context.Background())
	assert.ErrorIs(t, err, wantErr)
}

func TestAwaitMultipleTimesReturnsSameResult(t *testing.T) {
	tsk := Go(context.Background(), func(ctx context.Context) (int, error) {
		return 7, nil
	})
	v1, err1 := tsk.Await(context.Background())
	v2, err2 := tsk.Await(context.Background())
	assert.Equal(t, v1, v2)
	assert.Equal(t, err1, err2)
}

func TestAwaitRespectsContextCancellation(t *testing.T) {
	release := make(chan struct{})
	tsk := Go(context.Background(), func(ctx context.Context) (int, error) {
		<-release
		return 0, nil
	})
	defer func() {
		close(release)
		tsk.Await(context.Background())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := tsk.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoneReportsCompletionWithoutBlocking(t *testing.T) {
	tsk := Go(context.Background(), func(ctx context.Context) (int, error) {
		return 1, nil
	})
	tsk.Await(context.Background())
	assert.True(t, tsk.Done())
}

func TestSelfRetrievesOwnTask(t *testing.T) {
	var gotSelf *Task[int]
	tsk := Go(context.Background(), func(ctx context.Context) (int, error) {
		gotSelf = Self[int](ctx)
		return 0, nil
	})
	tsk.Await(context.Background())
	assert.Same(t, tsk, gotSelf)
}

func TestPeekErrorOnIncompleteTaskReturnsNil(t *testing.T) {
	release := make(chan struct{})
	tsk := Go(context.Background(), func(ctx context.Context) (struct{}, error) {
		<-release
		return struct{}{}, nil
	})
	assert.Nil(t, tsk.PeekError())
	close(release)
	tsk.Await(context.Background())
}

func TestPeekErrorOnCompletedTask(t *testing.T) {
	wantErr := errors.New("failed")
	tsk := Go(context.Background(), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, wantErr
	})
	tsk.Await(context.Background())
	assert.ErrorIs(t, tsk.PeekError(), wantErr)
}

func TestDroppingAnUnawaitedTaskTriggersOnLeak(t *testing.T) {
	origOnLeak := OnLeak
	var leaked atomic.Bool
	OnLeak = func(msg string) { leaked.Store(true) }
	defer func() { OnLeak = origOnLeak }()

	func() {
		done := make(chan struct{})
		tsk := Go(context.Background(), func(ctx context.Context) (int, error) {
			return 1, nil
		})
		// Wait for the body to finish so the task's own goroutine drops its
		// closure reference to tsk before this scope ends, leaving no
		// reachable reference once it goes out of scope unawaited.
		go func() { <-tsk.done; close(done) }()
		<-done
	}()

	for i := 0; i < 50 && !leaked.Load(); i++ {
		runtime.GC()
		time.Sleep(20 * time.Millisecond)
	}
	assert.True(t, leaked.Load(), "OnLeak was not invoked for an unawaited, collected task")
}
