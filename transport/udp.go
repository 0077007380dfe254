// File: transport/udp.go
// Author: momentics <momentics@gmail.com>
//
// UDP implements stream.DatagramTransport over a connected UDP socket:
// one syscall per Read/Write, 65536-byte frames in either direction,
// exactly the source's datagram contract (spec.md §4.4).

package transport

import (
	"context"
	"net"

	"golang.org/x/sys/unix"

	"github.com/czkz/async2/fdutil"
	"github.com/czkz/async2/reactor"
)

// maxDatagram is the largest UDP payload this repo will ever send or
// receive; it is above the 16-bit UDP length field's maximum, so any
// payload the kernel can deliver fits.
const maxDatagram = 65536

// UDP is a DatagramTransport over a connected UDP socket.
type UDP struct {
	fd *fdutil.FD
	r  *reactor.Reactor
}

// DialUDP connects a UDP socket to ip:port. UDP "connect" does not
// perform a handshake; it only fixes the peer address for subsequent
// reads and writes and lets the kernel deliver ECONNREFUSED/ICMP errors
// back to this socket instead of a wildcard one.
func DialUDP(ctx context.Context, r *reactor.Reactor, ip net.IP, port int) (*UDP, error) {
	sa, domain, err := toSockaddr(ip, port)
	if err != nil {
		return nil, err
	}
	fd, err := fdutil.Socket(domain, unix.SOCK_DGRAM, 0)
	if err != nil {
		return nil, err
	}
	if _, err := fdutil.Connect(fd, sa); err != nil {
		fd.Close()
		return nil, err
	}
	r.Logger().WithField("fd", fd.Int()).WithField("addr", ip.String()).Debug("transport: udp connected")
	return &UDP{fd: fd, r: r}, nil
}

func (u *UDP) WaitRead(ctx context.Context) error {
	_, err := u.r.Wait(ctx, u.fd.Fd(), reactor.Read)
	return err
}

func (u *UDP) WaitWrite(ctx context.Context) error {
	_, err := u.r.Wait(ctx, u.fd.Fd(), reactor.Write)
	return err
}

func (u *UDP) ReadFrom(p []byte) (int, error) {
	n, ok, err := fdutil.ReadFrom(u.fd, p)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return n, nil
}

func (u *UDP) WriteTo(p []byte) (int, error) {
	n, ok, err := fdutil.WriteTo(u.fd, p)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return n, nil
}

func (u *UDP) MaxIncoming() int { return maxDatagram }
func (u *UDP) MaxOutgoing() int { return maxDatagram }

func (u *UDP) Close() error { return u.fd.Close() }
