// File: transport/udp_test.go
// Author: momentics <momentics@gmail.com>

package transport

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestUDPConnectedSocketRoundTrip(t *testing.T) {
	re, ctx := newTestReactor(t)

	serverFD, err := fdutilSocket(t)
	require.NoError(t, err)
	defer unix.Close(serverFD)

	var sa unix.SockaddrInet4
	sa.Addr = [4]byte{127, 0, 0, 1}
	require.NoError(t, unix.Bind(serverFD, &sa))
	bound, err := unix.Getsockname(serverFD)
	require.NoError(t, err)
	port := bound.(*unix.SockaddrInet4).Port

	client, err := DialUDP(ctx, re, net.IPv4(127, 0, 0, 1), port)
	require.NoError(t, err)
	defer client.Close()

	n, err := client.WriteTo([]byte("ping"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	buf := make([]byte, 64)
	n, _, err = unix.Recvfrom(serverFD, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:n]))
}

func TestUDPMaxSizesAreSymmetric(t *testing.T) {
	re, ctx := newTestReactor(t)
	client, err := DialUDP(ctx, re, net.IPv4(127, 0, 0, 1), 9999)
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, maxDatagram, client.MaxIncoming())
	assert.Equal(t, maxDatagram, client.MaxOutgoing())
}

// fdutilSocket opens a plain blocking UDP socket for the test's fake
// server side, bypassing the non-blocking fdutil.Socket wrapper since the
// test just needs a synchronous Recvfrom.
func fdutilSocket(t *testing.T) (int, error) {
	t.Helper()
	return unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
}
