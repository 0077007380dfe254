// File: transport/file_test.go
// Author: momentics <momentics@gmail.com>

package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/czkz/async2/errs"
	"github.com/czkz/async2/fdutil"
	"github.com/czkz/async2/reactor"
)

func newTestReactor(t *testing.T) (*reactor.Reactor, context.Context) {
	t.Helper()
	re, err := reactor.New()
	require.NoError(t, err)
	t.Cleanup(func() { re.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	go re.Run(ctx)
	return re, ctx
}

func pipePairFDs(t *testing.T) (*fdutil.FD, *fdutil.FD) {
	t.Helper()
	var p [2]int
	require.NoError(t, unix.Pipe2(p[:], unix.O_NONBLOCK))
	return fdutil.New(p[0]), fdutil.New(p[1])
}

func TestFilePairWritesAndReadsThroughPipe(t *testing.T) {
	re, ctx := newTestReactor(t)
	rfd, wfd := pipePairFDs(t)

	fp := NewFilePair(re, rfd, wfd)
	defer fp.Close()

	n, err := fp.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	require.NoError(t, fp.WaitRead(ctx))
	buf := make([]byte, 16)
	n, err = fp.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestFileReadReturnsEOFAfterWriterCloses(t *testing.T) {
	re, ctx := newTestReactor(t)
	rfd, wfd := pipePairFDs(t)

	readSide := NewFile(re, rfd)
	defer readSide.Close()

	_, _, err := fdutil.Write(wfd, []byte("x"))
	require.NoError(t, err)
	require.NoError(t, wfd.Close())

	require.NoError(t, readSide.WaitRead(ctx))
	buf := make([]byte, 16)
	n, err := readSide.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "x", string(buf[:n]))

	require.NoError(t, readSide.WaitRead(ctx))
	_, err = readSide.Read(buf)
	assert.ErrorIs(t, err, errs.EOF)
}

func TestFileAvailableReportsLookahead(t *testing.T) {
	re, _ := newTestReactor(t)
	rfd, wfd := pipePairFDs(t)
	defer wfd.Close()

	readSide := NewFile(re, rfd)
	defer readSide.Close()

	_, _, err := fdutil.Write(wfd, []byte("abcd"))
	require.NoError(t, err)

	n, ok := readSide.Available()
	assert.True(t, ok)
	assert.Equal(t, 4, n)
}
