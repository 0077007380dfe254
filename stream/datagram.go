// File: stream/datagram.go
// Author: momentics <momentics@gmail.com>
//
// Datagram implements message-framed operations (§4.4) over datagram
// transports: at most one read/write syscall per call, no cross-call
// buffering.

package stream

import (
	"context"

	"github.com/czkz/async2/errs"
)

// DatagramTransport is the capability set a datagram stream needs.
type DatagramTransport interface {
	WaitRead(ctx context.Context) error
	WaitWrite(ctx context.Context) error
	ReadFrom(p []byte) (int, error)
	WriteTo(p []byte) (int, error)
	MaxIncoming() int
	MaxOutgoing() int
	Close() error
}

// Datagram is a thin message-boundary-preserving wrapper over a
// DatagramTransport.
type Datagram struct {
	tr DatagramTransport
}

// NewDatagram wraps tr.
func NewDatagram(tr DatagramTransport) *Datagram {
	return &Datagram{tr: tr}
}

// Read waits for readability and performs exactly one read, sized to the
// transport's declared maximum incoming packet size, truncated to the
// bytes actually delivered.
func (d *Datagram) Read(ctx context.Context) ([]byte, error) {
	if err := d.tr.WaitRead(ctx); err != nil {
		return nil, err
	}
	buf := make([]byte, d.tr.MaxIncoming())
	n, err := d.tr.ReadFrom(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// Write fails locally (without touching the transport) if p exceeds the
// transport's maximum outgoing packet size; otherwise it waits for
// writability and performs exactly one write, asserting the full payload
// was accepted.
func (d *Datagram) Write(ctx context.Context, p []byte) error {
	if len(p) > d.tr.MaxOutgoing() {
		return errs.ErrDatagramTooLarge
	}
	if err := d.tr.WaitWrite(ctx); err != nil {
		return err
	}
	n, err := d.tr.WriteTo(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return errs.EOF
	}
	return nil
}

// Close releases the underlying transport.
func (d *Datagram) Close() error { return d.tr.Close() }
