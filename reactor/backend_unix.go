//go:build !linux && !windows

// File: reactor/backend_unix.go
// Author: momentics <momentics@gmail.com>
//
// Portable poll(2)-based backend for non-Linux unix targets, grounded on
// the same "register (fd, events), one poll call wakes everything ready"
// contract the Linux epoll backend implements, traded for O(n) rescans
// since poll(2) carries no persistent kernel-side interest set.

package reactor

import (
	"sync"

	"golang.org/x/sys/unix"
)

func newBackend() (backend, error) {
	r, w, err := pipe2()
	if err != nil {
		return nil, err
	}
	return &pollBackend{wakeR: r, wakeW: w, masks: make(map[uintptr]EventMask)}, nil
}

type pollBackend struct {
	mu    sync.Mutex
	masks map[uintptr]EventMask
	wakeR int
	wakeW int
}

func (b *pollBackend) register(fd uintptr, events EventMask) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.masks[fd] = events
	return nil
}

func (b *pollBackend) modify(fd uintptr, events EventMask) error {
	return b.register(fd, events)
}

func (b *pollBackend) unregister(fd uintptr) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.masks, fd)
	return nil
}

func (b *pollBackend) poll(out []readyFD) (int, error) {
	b.mu.Lock()
	fds := make([]unix.PollFd, 0, len(b.masks)+1)
	fds = append(fds, unix.PollFd{Fd: int32(b.wakeR), Events: unix.POLLIN})
	order := make([]uintptr, 0, len(b.masks))
	for fd, m := range b.masks {
		var want int16
		if m&Read != 0 {
			want |= unix.POLLIN
		}
		if m&Write != 0 {
			want |= unix.POLLOUT
		}
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: want})
		order = append(order, fd)
	}
	b.mu.Unlock()

	_, err := unix.Poll(fds, -1)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}

	count := 0
	if fds[0].Revents&unix.POLLIN != 0 {
		var buf [64]byte
		_, _ = unix.Read(b.wakeR, buf[:])
	}
	for i, fd := range order {
		rev := fds[i+1].Revents
		var got EventMask
		if rev&unix.POLLIN != 0 {
			got |= Read
		}
		if rev&unix.POLLOUT != 0 {
			got |= Write
		}
		if rev&(unix.POLLERR|unix.POLLHUP) != 0 {
			got |= Read | Write
		}
		if got != 0 && count < len(out) {
			out[count] = readyFD{fd: fd, events: got}
			count++
		}
	}
	return count, nil
}

func (b *pollBackend) wake() error {
	_, err := unix.Write(b.wakeW, []byte{0})
	if err == unix.EAGAIN {
		return nil
	}
	return err
}

func (b *pollBackend) close() error {
	_ = unix.Close(b.wakeR)
	_ = unix.Close(b.wakeW)
	return nil
}
