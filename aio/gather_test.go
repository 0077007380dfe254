// File: aio/gather_test.go
// Author: momentics <momentics@gmail.com>

package aio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSleepReturnsAfterDuration(t *testing.T) {
	env, ctx := newTestEnv(t)
	start := time.Now()
	err := env.Sleep(ctx, 20*time.Millisecond)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestSleepReturnsContextErrorOnCancel(t *testing.T) {
	env, ctx := newTestEnv(t)
	cancelCtx, cancel := context.WithCancel(ctx)
	cancel()
	err := env.Sleep(cancelCtx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGoAndGatherSliceCollectResultsInOrder(t *testing.T) {
	ctx := context.Background()
	a := Go(ctx, func(context.Context) (int, error) { return 1, nil })
	b := Go(ctx, func(context.Context) (int, error) { return 2, nil })

	results, err := GatherSlice(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, results)
}

func TestGather2ReturnsBothValues(t *testing.T) {
	ctx := context.Background()
	a := Go(ctx, func(context.Context) (int, error) { return 10, nil })
	b := Go(ctx, func(context.Context) (string, error) { return "ok", nil })

	av, bv, err := Gather2(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, 10, av)
	assert.Equal(t, "ok", bv)
}
