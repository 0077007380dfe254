// File: transport/tcp_test.go
// Author: momentics <momentics@gmail.com>

package transport

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/czkz/async2/errs"
)

// listenerPort reads back the ephemeral port the kernel assigned a
// Listener bound with port 0.
func listenerPort(t *testing.T, ln *Listener) int {
	t.Helper()
	sa, err := unix.Getsockname(ln.fd.Int())
	require.NoError(t, err)
	v4, ok := sa.(*unix.SockaddrInet4)
	require.True(t, ok)
	return v4.Port
}

func TestTCPClientServerRoundTrip(t *testing.T) {
	re, ctx := newTestReactor(t)

	ln, err := ListenTCP(net.IPv4(127, 0, 0, 1), 0, 8, re)
	require.NoError(t, err)
	defer ln.Close()

	port := listenerPort(t, ln)

	serverConnCh := make(chan *TCP, 1)
	go func() {
		conn, err := ln.Accept(ctx)
		require.NoError(t, err)
		serverConnCh <- conn
	}()

	client, err := DialTCP(ctx, re, net.IPv4(127, 0, 0, 1), port)
	require.NoError(t, err)
	defer client.Close()

	server := <-serverConnCh
	defer server.Close()

	n, err := client.Write([]byte("ping"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	require.NoError(t, client.Flush())

	require.NoError(t, server.WaitRead(ctx))
	buf := make([]byte, 16)
	n, err = server.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:n]))
}

func TestTCPReadReturnsEOFAfterPeerCloses(t *testing.T) {
	re, ctx := newTestReactor(t)

	ln, err := ListenTCP(net.IPv4(127, 0, 0, 1), 0, 8, re)
	require.NoError(t, err)
	defer ln.Close()
	port := listenerPort(t, ln)

	serverConnCh := make(chan *TCP, 1)
	go func() {
		conn, err := ln.Accept(ctx)
		require.NoError(t, err)
		serverConnCh <- conn
	}()

	client, err := DialTCP(ctx, re, net.IPv4(127, 0, 0, 1), port)
	require.NoError(t, err)
	server := <-serverConnCh

	require.NoError(t, client.Close())

	require.NoError(t, server.WaitRead(ctx))
	buf := make([]byte, 16)
	_, err = server.Read(buf)
	assert.ErrorIs(t, err, errs.EOF)

	server.Close()
}

func TestTCPCorkingTogglesAroundFlush(t *testing.T) {
	re, ctx := newTestReactor(t)

	ln, err := ListenTCP(net.IPv4(127, 0, 0, 1), 0, 8, re)
	require.NoError(t, err)
	defer ln.Close()
	port := listenerPort(t, ln)

	go func() { ln.Accept(ctx) }()

	client, err := DialTCP(ctx, re, net.IPv4(127, 0, 0, 1), port)
	require.NoError(t, err)
	defer client.Close()

	assert.True(t, client.corked)
	require.NoError(t, client.Flush())
	assert.False(t, client.corked)

	_, err = client.Write([]byte("x"))
	require.NoError(t, err)
	assert.True(t, client.corked)
}
