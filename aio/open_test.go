// File: aio/open_test.go
// Author: momentics <momentics@gmail.com>

package aio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/czkz/async2/reactor"
)

func newTestEnv(t *testing.T) (*Env, context.Context) {
	t.Helper()
	re, err := reactor.New()
	require.NoError(t, err)
	t.Cleanup(func() { re.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	go re.Run(ctx)

	return NewEnv(re, nil), ctx
}

func TestOpenReadReadsFileContents(t *testing.T) {
	env, ctx := newTestEnv(t)

	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	conn, err := env.OpenRead(path)
	require.NoError(t, err)
	defer conn.Close()

	data, err := conn.ReadUntilEOF(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestOpenWriteCreatesAndTruncatesFile(t *testing.T) {
	env, ctx := newTestEnv(t)

	path := filepath.Join(t.TempDir(), "out.txt")
	conn, err := env.OpenWrite(path, false, true)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, []byte("first")))
	require.NoError(t, conn.Close())

	conn2, err := env.OpenWrite(path, false, true)
	require.NoError(t, err)
	require.NoError(t, conn2.Write(ctx, []byte("second")))
	require.NoError(t, conn2.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestOpenWriteAppendsWithoutTruncating(t *testing.T) {
	env, ctx := newTestEnv(t)

	path := filepath.Join(t.TempDir(), "append.txt")
	require.NoError(t, os.WriteFile(path, []byte("start-"), 0o644))

	conn, err := env.OpenWrite(path, true, false)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, []byte("end")))
	require.NoError(t, conn.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "start-end", string(data))
}

func TestOpenRWReadsAndWritesDistinctPaths(t *testing.T) {
	env, ctx := newTestEnv(t)

	dir := t.TempDir()
	readPath := filepath.Join(dir, "in.txt")
	writePath := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(readPath, []byte("input"), 0o644))

	conn, err := env.OpenRW(readPath, writePath, false, true)
	require.NoError(t, err)

	data, err := conn.ReadUntilEOF(ctx)
	require.NoError(t, err)
	assert.Equal(t, "input", string(data))

	require.NoError(t, conn.Write(ctx, []byte("output")))
	require.NoError(t, conn.Close())

	out, err := os.ReadFile(writePath)
	require.NoError(t, err)
	assert.Equal(t, "output", string(out))
}
