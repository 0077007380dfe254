// File: fdutil/syscalls_test.go
// Author: momentics <momentics@gmail.com>

package fdutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestIsWouldBlockRecognizesEAGAINAndEWOULDBLOCK(t *testing.T) {
	assert.True(t, IsWouldBlock(unix.EAGAIN))
	assert.True(t, IsWouldBlock(unix.EWOULDBLOCK))
	assert.False(t, IsWouldBlock(unix.EINVAL))
}

func TestReadOnEmptyNonBlockingPipeReportsWouldBlock(t *testing.T) {
	var p [2]int
	require.NoError(t, unix.Pipe2(p[:], unix.O_NONBLOCK))
	rd := New(p[0])
	defer rd.Close()
	defer unix.Close(p[1])

	buf := make([]byte, 16)
	n, ok, err := Read(rd, buf)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, n)
}

func TestWriteThenReadRoundTripsThroughPipe(t *testing.T) {
	var p [2]int
	require.NoError(t, unix.Pipe2(p[:], unix.O_NONBLOCK))
	rd := New(p[0])
	wr := New(p[1])
	defer rd.Close()
	defer wr.Close()

	n, ok, err := Write(wr, []byte("hello"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, n)

	buf := make([]byte, 16)
	n, ok, err = Read(rd, buf)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestAvailableReportsPendingByteCount(t *testing.T) {
	var p [2]int
	require.NoError(t, unix.Pipe2(p[:], unix.O_NONBLOCK))
	rd := New(p[0])
	wr := New(p[1])
	defer rd.Close()
	defer wr.Close()

	_, _, err := Write(wr, []byte("abc"))
	require.NoError(t, err)

	n, ok := Available(rd)
	assert.True(t, ok)
	assert.Equal(t, 3, n)
}
