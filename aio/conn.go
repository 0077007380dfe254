// File: aio/conn.go
// Author: momentics <momentics@gmail.com>
//
// Conn bundles a stream.Reader and stream.Writer over one ByteTransport,
// the shape every composed-front constructor (ConnectTCP, OpenRead, …)
// hands back. Grounded on the teacher's facade layer (deleted — see
// DESIGN.md), which bundled a connection's read and write sides behind
// one handle for its own callers.

package aio

import (
	"github.com/czkz/async2/stream"
)

// Conn is a readable, writable byte stream over any transport this repo
// knows how to construct: a file, a TCP connection, or a TLS session.
type Conn struct {
	*stream.Reader
	*stream.Writer
	tr stream.ByteTransport
}

func newConn(tr stream.ByteTransport) *Conn {
	return &Conn{
		Reader: stream.NewReader(tr),
		Writer: stream.NewWriter(tr),
		tr:     tr,
	}
}

// Close releases the underlying transport.
func (c *Conn) Close() error { return c.tr.Close() }
