// File: stream/stream.go
// Author: momentics <momentics@gmail.com>
//
// Reader implements the generic buffered byte-stream operations (§4.3)
// over any ByteTransport: read-some, read-n, read-until-delimiter,
// read-to-eof. Writer implements write-all (§4.3 write contract). Both
// are cancellation-free in the sense the spec requires: every suspension
// point only resumes on transport readiness or ctx cancellation, never on
// an external cancel of in-flight I/O.
//
// Grounded on the teacher's api.NetConn capability-interface split
// (api/transport.go, deleted from the workspace — see DESIGN.md) between
// a minimal required contract and optional capability interfaces checked
// via type assertion (Flush, lookahead), generalized here from "backed by
// net.Conn" to "backed by any non-blocking transport this repo owns".

package stream

import (
	"context"

	"github.com/czkz/async2/errs"
	"github.com/czkz/async2/pool"
)

// ByteTransport is the capability set a buffered stream needs from a
// pluggable transport: readiness waits plus non-blocking read/write.
type ByteTransport interface {
	WaitRead(ctx context.Context) error
	WaitWrite(ctx context.Context) error
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// Flusher is an optional capability: transports that need an explicit
// flush step (e.g. TCP corking) implement it; Writer checks for it via
// type assertion after a successful Write.
type Flusher interface {
	Flush() error
}

// Lookaheader is an optional capability reporting how many bytes are
// immediately available without blocking, used to size the chunk read in
// ReadSome instead of the fixed fallback chunk size.
type Lookaheader interface {
	Available() (int, bool)
}

const defaultChunkSize = 1024

// Reader is a buffered reader over a ByteTransport. The zero value is not
// usable; construct with NewReader.
type Reader struct {
	tr      ByteTransport
	buf     []byte
	start   int
	scratch *pool.BytePool
}

// NewReader wraps tr with a FIFO read-ahead buffer.
func NewReader(tr ByteTransport) *Reader {
	return &Reader{tr: tr, scratch: pool.NewBytePool(defaultChunkSize)}
}

// compact drops a fully-drained buffer back to empty.
func (r *Reader) compact() {
	if r.start >= len(r.buf) {
		r.buf = r.buf[:0]
		r.start = 0
	}
}

// unread pushes p back to the front of the buffer for a future read,
// used by ReadUntil to return bytes found past the delimiter.
func (r *Reader) unread(p []byte) {
	r.buf = append(r.buf[:0], p...)
	r.start = 0
}

// ReadSome returns whatever bytes are immediately available: the entire
// buffered tail if non-empty, otherwise one transport read after waiting
// for readability. Returns errs.EOF only when the buffer was empty and the
// transport observed end-of-stream.
func (r *Reader) ReadSome(ctx context.Context) ([]byte, error) {
	if r.start < len(r.buf) {
		out := r.buf[r.start:]
		r.buf = nil
		r.start = 0
		return out, nil
	}

	for {
		if err := r.tr.WaitRead(ctx); err != nil {
			return nil, err
		}

		var scratch []byte
		var pooled bool
		if la, ok := r.tr.(Lookaheader); ok {
			if n, ok2 := la.Available(); ok2 && n > 0 {
				scratch = make([]byte, n)
			}
		}
		if scratch == nil {
			scratch = r.scratch.Get()
			pooled = true
		}

		n, err := r.tr.Read(scratch)
		if pooled {
			r.scratch.Put(scratch)
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			// WaitRead reported readiness but the transport had nothing
			// to deliver and did not report eof: a transient false wake,
			// not end-of-stream. Wait again instead of reporting eof.
			continue
		}

		out := make([]byte, n)
		copy(out, scratch[:n])
		return out, nil
	}
}

// ReadN returns exactly n bytes, draining the buffer first and then
// looping on transport reads. On end-of-stream before n bytes are
// delivered, it returns the partial bytes gathered so far together with
// errs.EOF.
func (r *Reader) ReadN(ctx context.Context, n int) ([]byte, error) {
	out := make([]byte, 0, n)

	if r.start < len(r.buf) {
		avail := r.buf[r.start:]
		take := avail
		if len(take) > n {
			take = take[:n]
		}
		out = append(out, take...)
		r.start += len(take)
		r.compact()
	}

	for len(out) < n {
		if err := r.tr.WaitRead(ctx); err != nil {
			return out, err
		}
		tmp := make([]byte, n-len(out))
		read, err := r.tr.Read(tmp)
		if err != nil {
			return out, err
		}
		if read == 0 {
			// Transient false wake, not end-of-stream: real eof comes
			// back as errs.EOF from the transport, never as a silent 0.
			continue
		}
		out = append(out, tmp[:read]...)
	}
	return out, nil
}

// ReadUntilEOF drains the buffer then repeatedly reads until end-of-stream,
// swallowing the terminal EOF and returning everything accumulated.
func (r *Reader) ReadUntilEOF(ctx context.Context) ([]byte, error) {
	var out []byte
	for {
		chunk, err := r.ReadSome(ctx)
		if err != nil {
			if errs.Is(err, errs.EOF) {
				return out, nil
			}
			return out, err
		}
		out = append(out, chunk...)
	}
}

// ReadUntil reads until the first occurrence of delim, inclusive, leaving
// any bytes past the delimiter buffered for the next read. An empty
// delimiter is rejected (the source leaves this case unspecified).
func (r *Reader) ReadUntil(ctx context.Context, delim []byte) ([]byte, error) {
	if len(delim) == 0 {
		return nil, errs.ErrEmptyDelimiter
	}

	var acc []byte
	for {
		chunk, err := r.ReadSome(ctx)
		if err != nil {
			return acc, err
		}
		acc = append(acc, chunk...)

		if idx := indexOf(acc, delim); idx >= 0 {
			end := idx + len(delim)
			leftover := acc[end:]
			result := acc[:end:end]
			if len(leftover) > 0 {
				r.unread(leftover)
			}
			return result, nil
		}
	}
}

func indexOf(haystack, needle []byte) int {
	n := len(needle)
	if n == 0 || len(haystack) < n {
		return -1
	}
	for i := 0; i+n <= len(haystack); i++ {
		if string(haystack[i:i+n]) == string(needle) {
			return i
		}
	}
	return -1
}

// Writer performs write-all semantics over a ByteTransport: it loops on
// short non-blocking writes, waiting for writability between attempts,
// and flushes (if the transport supports it) once every byte has been
// accepted.
type Writer struct {
	tr ByteTransport
}

// NewWriter wraps tr for write-all semantics.
func NewWriter(tr ByteTransport) *Writer {
	return &Writer{tr: tr}
}

// Write delivers all of p to the transport, retrying short writes after
// waiting for writability, then flushes.
func (w *Writer) Write(ctx context.Context, p []byte) error {
	for len(p) > 0 {
		if err := w.tr.WaitWrite(ctx); err != nil {
			return err
		}
		n, err := w.tr.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	if f, ok := w.tr.(Flusher); ok {
		return f.Flush()
	}
	return nil
}
