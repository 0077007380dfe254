// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Reactor multiplexes readiness across file descriptors and resumes
// whichever goroutines registered interest in a descriptor that fired.
// Grounded on the teacher's epoll-based reactor (reactor/reactor_linux.go)
// but generalized from a fixed EPOLLIN|EPOLLOUT mask to the caller-chosen
// EventMask the spec requires, and from a lock-free sync.Map to an
// explicit mutex-guarded map plus an eapache/queue.Queue for the
// per-tick ready-dispatch order (the teacher declares eapache/queue in
// go.mod but never imports it; this is where it earns its place).

package reactor

import (
	"context"
	"sync"

	"github.com/eapache/queue"
	"github.com/sirupsen/logrus"
)

// EventMask selects the readiness conditions a caller wants to wait for.
type EventMask uint8

const (
	Read EventMask = 1 << iota
	Write
)

// waiter is one parked registration: the (fd, event-mask) pair plus the
// channel its owning goroutine blocks on. This is the Go realization of
// the spec's "suspension record".
type waiter struct {
	fd     uintptr
	events EventMask
	ready  chan EventMask
}

// Reactor is a readiness-polling event loop. It is not a global singleton:
// per DESIGN.md's resolution of the "thread-local" design note, callers
// create and own one Reactor per logical driver loop and thread it through
// every operation that needs to wait on a descriptor.
type Reactor struct {
	mu      sync.Mutex
	waiters map[uintptr][]*waiter
	queue   *queue.Queue
	log     *logrus.Logger

	backend backend
}

// backend is the platform-specific readiness multiplexer.
type backend interface {
	register(fd uintptr, events EventMask) error
	modify(fd uintptr, events EventMask) error
	unregister(fd uintptr) error
	poll(out []readyFD) (int, error)
	wake() error
	close() error
}

type readyFD struct {
	fd     uintptr
	events EventMask
}

// Option configures a Reactor.
type Option func(*Reactor)

// WithLogger overrides the default logger.
func WithLogger(l *logrus.Logger) Option {
	return func(r *Reactor) { r.log = l }
}

// New constructs a Reactor using the best available backend for the
// current platform.
func New(opts ...Option) (*Reactor, error) {
	b, err := newBackend()
	if err != nil {
		return nil, err
	}
	r := &Reactor{
		waiters: make(map[uintptr][]*waiter),
		queue:   queue.New(),
		log:     logrus.StandardLogger(),
		backend: b,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Logger returns the logger this Reactor was constructed with (the
// default or whatever WithLogger overrode it to), so packages that hold a
// Reactor reference can log through the same sink without threading a
// second logger of their own.
func (r *Reactor) Logger() *logrus.Logger {
	return r.log
}

// HasWaiters reports whether any continuation is currently parked.
func (r *Reactor) HasWaiters() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ws := range r.waiters {
		if len(ws) != 0 {
			return true
		}
	}
	return false
}

// Close releases the backend's resources.
func (r *Reactor) Close() error {
	return r.backend.close()
}

// Wait parks the calling goroutine until fd reports readiness for any bit
// in events, or ctx is done. It first performs a zero-timeout readiness
// probe (the spec's "ready check"); if fd is already ready, it returns
// without ever registering or suspending.
func (r *Reactor) Wait(ctx context.Context, fd uintptr, events EventMask) (EventMask, error) {
	if got, ok := r.probe(fd, events); ok {
		return got, nil
	}

	w := &waiter{fd: fd, events: events, ready: make(chan EventMask, 1)}
	if err := r.addWaiter(w); err != nil {
		return 0, err
	}

	select {
	case got := <-w.ready:
		return got, nil
	case <-ctx.Done():
		r.removeWaiter(w)
		return 0, ctx.Err()
	}
}

// probe does a zero-timeout readiness check without registering anything.
func (r *Reactor) probe(fd uintptr, events EventMask) (EventMask, bool) {
	return pollOnce(fd, events)
}

func (r *Reactor) addWaiter(w *waiter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.waiters[w.fd]
	mask := w.events
	for _, o := range existing {
		mask |= o.events
	}
	if len(existing) == 0 {
		if err := r.backend.register(w.fd, mask); err != nil {
			r.log.WithError(err).WithField("fd", w.fd).Warn("reactor: register failed")
			return err
		}
		r.log.WithField("fd", w.fd).WithField("events", mask).Debug("reactor: registered")
	} else if mask != unionMask(existing) {
		if err := r.backend.modify(w.fd, mask); err != nil {
			r.log.WithError(err).WithField("fd", w.fd).Warn("reactor: modify failed")
			return err
		}
		r.log.WithField("fd", w.fd).WithField("events", mask).Debug("reactor: modified")
	}
	r.waiters[w.fd] = append(existing, w)
	return nil
}

func unionMask(ws []*waiter) EventMask {
	var m EventMask
	for _, w := range ws {
		m |= w.events
	}
	return m
}

func (r *Reactor) removeWaiter(target *waiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws := r.waiters[target.fd]
	for i, w := range ws {
		if w == target {
			ws = append(ws[:i], ws[i+1:]...)
			break
		}
	}
	if len(ws) == 0 {
		delete(r.waiters, target.fd)
		if err := r.backend.unregister(target.fd); err != nil {
			r.log.WithError(err).WithField("fd", target.fd).Warn("reactor: unregister failed")
		} else {
			r.log.WithField("fd", target.fd).Debug("reactor: evicted")
		}
	} else {
		r.waiters[target.fd] = ws
		_ = r.backend.modify(target.fd, unionMask(ws))
	}
}

// Run is the driver loop: it blocks on the multiplexed readiness call and,
// for every fd that fired, wakes every waiter registered against it whose
// mask overlaps the returned events, in report order (the eapache/queue
// FIFO realizes "resume order is the order of appearance").
func (r *Reactor) Run(ctx context.Context) error {
	events := make([]readyFD, 64)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = r.backend.wake()
		case <-done:
		}
	}()
	defer close(done)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n, err := r.backend.poll(events)
		if err != nil {
			r.log.WithError(err).Error("reactor: poll failed")
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		r.mu.Lock()
		for i := 0; i < n; i++ {
			for _, w := range r.waiters[events[i].fd] {
				if w.events&events[i].events != 0 {
					r.queue.Add(dispatched{w: w, events: events[i].events & w.events})
				}
			}
		}
		for r.queue.Length() > 0 {
			d := r.queue.Remove().(dispatched)
			r.removeWaiterLocked(d.w)
			d.w.ready <- d.events
		}
		r.mu.Unlock()
	}
}

type dispatched struct {
	w      *waiter
	events EventMask
}

// removeWaiterLocked is removeWaiter's body, callable while r.mu is held.
func (r *Reactor) removeWaiterLocked(target *waiter) {
	ws := r.waiters[target.fd]
	for i, w := range ws {
		if w == target {
			ws = append(ws[:i], ws[i+1:]...)
			break
		}
	}
	if len(ws) == 0 {
		delete(r.waiters, target.fd)
		if err := r.backend.unregister(target.fd); err != nil {
			r.log.WithError(err).WithField("fd", target.fd).Warn("reactor: unregister failed")
		} else {
			r.log.WithField("fd", target.fd).Debug("reactor: evicted")
		}
	} else {
		r.waiters[target.fd] = ws
		_ = r.backend.modify(target.fd, unionMask(ws))
	}
}
