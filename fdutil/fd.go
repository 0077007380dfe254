// File: fdutil/fd.go
// Author: momentics <momentics@gmail.com>
//
// FD is a scoped, single-owner wrapper around an OS file descriptor.

package fdutil

import (
	"sync"

	"golang.org/x/sys/unix"
)

// FD owns exactly one live OS descriptor. The zero value is not usable;
// construct with New. Close is idempotent. Release transfers ownership to
// the caller without closing the underlying descriptor.
type FD struct {
	mu       sync.Mutex
	fd       int
	released bool
	closed   bool
}

// New wraps fd for exclusive ownership.
func New(fd int) *FD {
	return &FD{fd: fd}
}

// Fd returns the raw descriptor. The returned value is only valid while
// the FD has not been closed or released.
func (f *FD) Fd() uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uintptr(f.fd)
}

// Int returns the raw descriptor as an int, for syscalls that want one.
func (f *FD) Int() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fd
}

// Release transfers ownership of the descriptor to the caller: Close
// becomes a no-op afterwards, and the raw fd is returned.
func (f *FD) Release() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = true
	return f.fd
}

// Close releases the descriptor unless ownership was already transferred
// via Release. Safe to call more than once.
func (f *FD) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.released || f.closed {
		return nil
	}
	f.closed = true
	return unix.Close(f.fd)
}
