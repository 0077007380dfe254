// File: transport/tcp.go
// Author: momentics <momentics@gmail.com>
//
// TCP client and Listener, grounded on the teacher's
// internal/transport/transport_linux.go non-blocking connect/accept
// sequence and TCP_NODELAY toggling, generalized to the spec's corking
// vocabulary: a freshly connected socket corks (Nagle enabled,
// TCP_NODELAY=0); Flush disables corking to force pending bytes out and
// leaves it disabled until the next Write re-enables it.

package transport

import (
	"context"
	"net"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/czkz/async2/errs"
	"github.com/czkz/async2/fdutil"
	"github.com/czkz/async2/reactor"
)

// TCP is a ByteTransport over a connected TCP socket.
type TCP struct {
	fd     *fdutil.FD
	r      *reactor.Reactor
	eof    bool
	corked bool
}

// DialTCP performs the spec's connect algorithm: create a non-blocking
// socket, issue connect(), and if it returns EINPROGRESS wait for
// writability before checking SO_ERROR.
func DialTCP(ctx context.Context, r *reactor.Reactor, ip net.IP, port int) (*TCP, error) {
	sa, domain, err := toSockaddr(ip, port)
	if err != nil {
		return nil, err
	}

	fd, err := fdutil.Socket(domain, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}

	inProgress, err := fdutil.Connect(fd, sa)
	if err != nil {
		fd.Close()
		return nil, err
	}
	if inProgress {
		if _, err := r.Wait(ctx, fd.Fd(), reactor.Write); err != nil {
			fd.Close()
			return nil, err
		}
		if err := fdutil.SockError(fd); err != nil {
			fd.Close()
			return nil, err
		}
	}

	t := &TCP{fd: fd, r: r, corked: true}
	if err := fdutil.SetTCPNoDelay(fd, false); err != nil {
		fd.Close()
		return nil, err
	}
	r.Logger().WithField("fd", fd.Int()).WithField("addr", ip.String()).Debug("transport: tcp connected")
	return t, nil
}

// newAcceptedTCP wraps a socket returned by accept4, corked by default to
// match a freshly dialed client's initial state.
func newAcceptedTCP(r *reactor.Reactor, fd *fdutil.FD) *TCP {
	_ = fdutil.SetTCPNoDelay(fd, false)
	return &TCP{fd: fd, r: r, corked: true}
}

func (t *TCP) WaitRead(ctx context.Context) error {
	if t.eof {
		return nil
	}
	_, err := t.r.Wait(ctx, t.fd.Fd(), reactor.Read)
	return err
}

func (t *TCP) WaitWrite(ctx context.Context) error {
	_, err := t.r.Wait(ctx, t.fd.Fd(), reactor.Write)
	return err
}

func (t *TCP) Read(p []byte) (int, error) {
	if t.eof {
		return 0, errs.EOF
	}
	n, ok, err := fdutil.Read(t.fd, p)
	if err != nil {
		if errors.Is(err, unix.ECONNRESET) {
			t.eof = true
			t.r.Logger().WithField("fd", t.fd.Int()).Debug("transport: tcp connection reset")
			return 0, errs.EOF
		}
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	if n == 0 {
		t.eof = true
		t.r.Logger().WithField("fd", t.fd.Int()).Debug("transport: tcp reached eof")
		return 0, errs.EOF
	}
	return n, nil
}

func (t *TCP) Write(p []byte) (int, error) {
	if !t.corked {
		if err := fdutil.SetTCPNoDelay(t.fd, false); err != nil {
			return 0, err
		}
		t.corked = true
	}
	n, ok, err := fdutil.Write(t.fd, p)
	if err != nil {
		if errors.Is(err, unix.EPIPE) {
			return 0, errs.EOF
		}
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return n, nil
}

// Flush forces any corked bytes out immediately by disabling Nagle's
// algorithm; the next Write re-corks.
func (t *TCP) Flush() error {
	if !t.corked {
		return nil
	}
	if err := fdutil.SetTCPNoDelay(t.fd, true); err != nil {
		return err
	}
	t.corked = false
	return nil
}

// Available reports the FIONREAD lookahead count.
func (t *TCP) Available() (int, bool) {
	if t.eof {
		return 0, false
	}
	return fdutil.Available(t.fd)
}

func (t *TCP) Close() error { return t.fd.Close() }

// Listener accepts incoming TCP connections.
type Listener struct {
	fd *fdutil.FD
	r  *reactor.Reactor
}

// ListenTCP binds and listens on ip:port.
func ListenTCP(ip net.IP, port int, backlog int, r *reactor.Reactor) (*Listener, error) {
	sa, domain, err := toSockaddr(ip, port)
	if err != nil {
		return nil, err
	}
	fd, err := fdutil.Socket(domain, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	if err := fdutil.Bind(fd, sa); err != nil {
		fd.Close()
		return nil, err
	}
	if err := fdutil.Listen(fd, backlog); err != nil {
		fd.Close()
		return nil, err
	}
	r.Logger().WithField("fd", fd.Int()).WithField("addr", ip.String()).Debug("transport: tcp listening")
	return &Listener{fd: fd, r: r}, nil
}

// Accept waits for and returns the next inbound connection.
func (l *Listener) Accept(ctx context.Context) (*TCP, error) {
	for {
		client, ok, err := fdutil.Accept(l.fd)
		if err != nil {
			return nil, err
		}
		if ok {
			l.r.Logger().WithField("fd", client.Int()).Debug("transport: tcp accepted")
			return newAcceptedTCP(l.r, client), nil
		}
		if _, err := l.r.Wait(ctx, l.fd.Fd(), reactor.Read); err != nil {
			return nil, err
		}
	}
}

func (l *Listener) Close() error { return l.fd.Close() }

// Port reports the locally bound port, useful when ListenTCP was called
// with port 0 and the kernel picked one.
func (l *Listener) Port() (int, error) {
	sa, err := unix.Getsockname(l.fd.Int())
	if err != nil {
		return 0, err
	}
	v4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return 0, errors.New("listener socket is not ipv4")
	}
	return v4.Port, nil
}

// toSockaddr builds an AF_INET unix.Sockaddr for an IP/port pair. IPv6 is
// out of scope (the source binds to AF_INET only).
func toSockaddr(ip net.IP, port int) (unix.Sockaddr, int, error) {
	v4 := ip.To4()
	if v4 == nil {
		return nil, 0, errors.Errorf("not an ipv4 address: %v", ip)
	}
	var addr [4]byte
	copy(addr[:], v4)
	return &unix.SockaddrInet4{Port: port, Addr: addr}, unix.AF_INET, nil
}
