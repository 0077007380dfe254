//go:build windows

// File: reactor/backend_windows.go
// Author: momentics <momentics@gmail.com>
//
// The spec's transports bind AF_INET raw sockets directly (see spec.md
// Non-goals and transport/tcp.go) and this repository does not target
// Windows; grounded on the teacher's own reactor/reactor_stub.go pattern
// for unsupported platforms.

package reactor

import "errors"

func newBackend() (backend, error) {
	return nil, errors.New("reactor: windows is not supported")
}

func pollOnce(fd uintptr, events EventMask) (EventMask, bool) {
	return 0, false
}
