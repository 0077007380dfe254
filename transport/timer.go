// File: transport/timer.go
// Author: momentics <momentics@gmail.com>
//
// Timer is a single-shot software timer realized as a timerfd
// (CLOCK_MONOTONIC), so a sleep competes for reactor readiness exactly
// like any other descriptor instead of parking on a stdlib time.Timer
// outside the readiness-polling loop.

package transport

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/czkz/async2/fdutil"
	"github.com/czkz/async2/reactor"
)

// Timer is a one-shot, reactor-tracked timer descriptor.
type Timer struct {
	fd *fdutil.FD
	r  *reactor.Reactor
}

// NewTimer creates an armed, non-blocking timerfd that becomes readable
// once after d elapses. A non-positive d still arms for the smallest
// representable duration: unix.ItimerSpec.Value all-zero disarms the
// timer rather than firing it immediately, so d is floored at 1ns.
func NewTimer(r *reactor.Reactor, d time.Duration) (*Timer, error) {
	if d <= 0 {
		d = time.Nanosecond
	}
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	if err != nil {
		return nil, errors.Wrap(err, "timerfd_create")
	}
	spec := unix.ItimerSpec{
		Value: unix.NsecToTimespec(d.Nanoseconds()),
	}
	if err := unix.TimerfdSettime(fd, 0, &spec, nil); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "timerfd_settime")
	}
	r.Logger().WithField("fd", fd).WithField("duration", d).Debug("transport: timer armed")
	return &Timer{fd: fdutil.New(fd), r: r}, nil
}

// Wait blocks until the timer fires or ctx is done.
func (t *Timer) Wait(ctx context.Context) error {
	if _, err := t.r.Wait(ctx, t.fd.Fd(), reactor.Read); err != nil {
		return err
	}
	return t.drain()
}

// drain consumes the 8-byte expiration counter timerfd_read delivers,
// without which the fd would stay perpetually readable.
func (t *Timer) drain() error {
	var buf [8]byte
	_, _, err := fdutil.Read(t.fd, buf[:])
	return err
}

// Close releases the timerfd.
func (t *Timer) Close() error { return t.fd.Close() }
