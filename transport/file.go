// File: transport/file.go
// Author: momentics <momentics@gmail.com>
//
// File and FilePair implement stream.ByteTransport directly over an fd
// pair with no socket-specific behavior: no corking, no connect dance,
// lookahead via FIONREAD. Grounded on the teacher's transport_linux.go fd
// ownership pattern, generalized from "always a socket" to "any readable
// or writable descriptor" so OpenRead/OpenWrite/OpenRW can front regular
// files and pipes the same way they front sockets.

package transport

import (
	"context"

	"github.com/czkz/async2/errs"
	"github.com/czkz/async2/fdutil"
	"github.com/czkz/async2/reactor"
)

// File is a ByteTransport over a single fd used for both directions
// (a regular file, or a character device such as a tty).
type File struct {
	fd  *fdutil.FD
	r   *reactor.Reactor
	eof bool
}

// NewFile wraps fd for reactor-driven non-blocking I/O. The File takes
// ownership of fd: Close closes it.
func NewFile(r *reactor.Reactor, fd *fdutil.FD) *File {
	return &File{fd: fd, r: r}
}

func (f *File) WaitRead(ctx context.Context) error {
	if f.eof {
		return nil
	}
	_, err := f.r.Wait(ctx, f.fd.Fd(), reactor.Read)
	return err
}

func (f *File) WaitWrite(ctx context.Context) error {
	_, err := f.r.Wait(ctx, f.fd.Fd(), reactor.Write)
	return err
}

func (f *File) Read(p []byte) (int, error) {
	if f.eof {
		return 0, errs.EOF
	}
	n, ok, err := fdutil.Read(f.fd, p)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	if n == 0 {
		f.eof = true
		f.r.Logger().WithField("fd", f.fd.Int()).Debug("transport: file reached eof")
		return 0, errs.EOF
	}
	return n, nil
}

func (f *File) Write(p []byte) (int, error) {
	n, ok, err := fdutil.Write(f.fd, p)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return n, nil
}

// Available reports the FIONREAD lookahead count, satisfying
// stream.Lookaheader.
func (f *File) Available() (int, bool) {
	if f.eof {
		return 0, false
	}
	return fdutil.Available(f.fd)
}

func (f *File) Close() error { return f.fd.Close() }

// FilePair is a ByteTransport split across two fds, one read-only and one
// write-only: the shape stdin/stdout take when wired together as a single
// stream, or either end of a pipe pair.
type FilePair struct {
	in  *File
	out *File
}

// NewFilePair wraps separate read and write fds sharing one reactor.
func NewFilePair(r *reactor.Reactor, readFD, writeFD *fdutil.FD) *FilePair {
	return &FilePair{in: NewFile(r, readFD), out: NewFile(r, writeFD)}
}

func (p *FilePair) WaitRead(ctx context.Context) error  { return p.in.WaitRead(ctx) }
func (p *FilePair) WaitWrite(ctx context.Context) error { return p.out.WaitWrite(ctx) }
func (p *FilePair) Read(b []byte) (int, error)           { return p.in.Read(b) }
func (p *FilePair) Write(b []byte) (int, error)          { return p.out.Write(b) }
func (p *FilePair) Available() (int, bool)               { return p.in.Available() }

// Close closes both descriptors, returning the write side's error if both
// fail (the read side has usually already seen eof by the time a caller
// closes a pair).
func (p *FilePair) Close() error {
	errIn := p.in.Close()
	errOut := p.out.Close()
	if errOut != nil {
		return errOut
	}
	return errIn
}
