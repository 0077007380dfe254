// File: fdutil/syscalls.go
// Author: momentics <momentics@gmail.com>
//
// Thin wrappers around golang.org/x/sys/unix that map OS error codes onto
// the error taxonomy used by the rest of this repository. A would-block
// condition (EAGAIN/EWOULDBLOCK/EINPROGRESS where applicable) is reported
// as (0, false, nil) rather than an error — callers are expected to wait
// for readiness via the reactor and retry.
//
// Grounded on the non-blocking socket construction and errno handling in
// the teacher's internal/transport/transport_linux.go (SendmsgBuffers /
// RecvmsgBuffers against MSG_DONTWAIT, EAGAIN mapped to "no data").

package fdutil

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// IsWouldBlock reports whether err is a non-blocking "try again" signal.
func IsWouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}

// Socket creates a non-blocking socket of the given domain/type/protocol.
func Socket(domain, typ, proto int) (*FD, error) {
	fd, err := unix.Socket(domain, typ|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, proto)
	if err != nil {
		return nil, errors.Wrap(err, "socket")
	}
	return New(fd), nil
}

// SetTCPNoDelay sets TCP_NODELAY: noDelay=true turns Nagle batching off so
// pending bytes go out at once, noDelay=false turns it back on, which is
// the "corked" state in this repo's vocabulary (see transport.TCP for the
// flush dance).
func SetTCPNoDelay(fd *FD, noDelay bool) error {
	v := 0
	if noDelay {
		v = 1
	}
	return errors.Wrap(unix.SetsockoptInt(fd.Int(), unix.IPPROTO_TCP, unix.TCP_NODELAY, v), "setsockopt TCP_NODELAY")
}

// Connect issues a non-blocking connect. inProgress is true when the
// caller must wait for writability before checking SockError.
func Connect(fd *FD, sa unix.Sockaddr) (inProgress bool, err error) {
	err = unix.Connect(fd.Int(), sa)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, unix.EINPROGRESS) {
		return true, nil
	}
	return false, errors.Wrap(err, "connect")
}

// SockError reads SO_ERROR: nil means the pending connect succeeded.
func SockError(fd *FD) error {
	errno, err := unix.GetsockoptInt(fd.Int(), unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return errors.Wrap(err, "getsockopt SO_ERROR")
	}
	if errno != 0 {
		return errors.Wrap(unix.Errno(errno), "connect")
	}
	return nil
}

// Open opens path with the given flags/perm, forcing O_NONBLOCK and
// O_CLOEXEC the way Socket does for sockets.
func Open(path string, flags int, perm uint32) (*FD, error) {
	fd, err := unix.Open(path, flags|unix.O_NONBLOCK|unix.O_CLOEXEC, perm)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	return New(fd), nil
}

// Bind binds fd to sa.
func Bind(fd *FD, sa unix.Sockaddr) error {
	return errors.Wrap(unix.Bind(fd.Int(), sa), "bind")
}

// Listen marks fd as a listening socket.
func Listen(fd *FD, backlog int) error {
	return errors.Wrap(unix.Listen(fd.Int(), backlog), "listen")
}

// Accept accepts one pending connection as a non-blocking socket.
// ok is false (with nil error) on EAGAIN/EWOULDBLOCK.
func Accept(fd *FD) (client *FD, ok bool, err error) {
	cfd, _, err := unix.Accept4(fd.Int(), unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		if IsWouldBlock(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "accept4")
	}
	return New(cfd), true, nil
}

// Read performs one non-blocking read. ok is false (n==0, err==nil) on a
// would-block condition; callers must wait for readability and retry.
func Read(fd *FD, buf []byte) (n int, ok bool, err error) {
	n, err = unix.Read(fd.Int(), buf)
	if err != nil {
		if IsWouldBlock(err) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, "read")
	}
	return n, true, nil
}

// Write performs one non-blocking write. ok is false (n==0, err==nil) on a
// would-block condition.
func Write(fd *FD, buf []byte) (n int, ok bool, err error) {
	n, err = unix.Write(fd.Int(), buf)
	if err != nil {
		if IsWouldBlock(err) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, "write")
	}
	return n, true, nil
}

// ReadFrom/WriteTo are the datagram-oriented equivalents of Read/Write.
func ReadFrom(fd *FD, buf []byte) (n int, ok bool, err error) {
	n, _, err = unix.Recvfrom(fd.Int(), buf, 0)
	if err != nil {
		if IsWouldBlock(err) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, "recvfrom")
	}
	return n, true, nil
}

func WriteTo(fd *FD, buf []byte) (n int, ok bool, err error) {
	err = unix.Sendto(fd.Int(), buf, 0, nil)
	if err != nil {
		if IsWouldBlock(err) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, "sendto")
	}
	return len(buf), true, nil
}

// Available returns the number of bytes immediately readable (FIONREAD),
// and whether the platform-specific lookahead probe succeeded.
func Available(fd *FD) (int, bool) {
	n, err := unix.IoctlGetInt(fd.Int(), unix.SIOCINQ)
	if err != nil {
		return 0, false
	}
	return n, true
}
