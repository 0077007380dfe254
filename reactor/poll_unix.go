//go:build !windows

// File: reactor/poll_unix.go
// Author: momentics <momentics@gmail.com>
//
// pollOnce performs the spec's zero-timeout "ready check" on a single fd.

package reactor

import "golang.org/x/sys/unix"

// pipe2 creates a non-blocking, close-on-exec pipe used by every unix
// backend as a self-pipe to interrupt a blocked poll/epoll_wait call.
func pipe2() (r, w int, err error) {
	var fds [2]int
	if err = unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return 0, 0, err
	}
	return fds[0], fds[1], nil
}

func pollOnce(fd uintptr, events EventMask) (EventMask, bool) {
	var want int16
	if events&Read != 0 {
		want |= unix.POLLIN
	}
	if events&Write != 0 {
		want |= unix.POLLOUT
	}
	fds := []unix.PollFd{{Fd: int32(fd), Events: want}}
	n, err := unix.Poll(fds, 0)
	if err != nil || n == 0 {
		return 0, false
	}
	var got EventMask
	if fds[0].Revents&unix.POLLIN != 0 {
		got |= Read
	}
	if fds[0].Revents&unix.POLLOUT != 0 {
		got |= Write
	}
	if fds[0].Revents&(unix.POLLERR|unix.POLLHUP) != 0 {
		got |= Read | Write
	}
	if got == 0 {
		return 0, false
	}
	return got, true
}
