// File: tlsadapter/adapter.go
// Author: momentics <momentics@gmail.com>
//
// Adapter bridges a non-blocking stream.ByteTransport to Go's standard
// crypto/tls, which is the only TLS stack the example pack carries in any
// form (see other_examples/mar1xlatino-utls__conn.go, a utls-derived
// single file, not a complete teacher-eligible repo) — resting on stdlib
// crypto/tls here is the required stdlib justification recorded in
// DESIGN.md. netConnAdapter makes the transport look like a blocking
// net.Conn from crypto/tls's point of view; Adapter exposes the outward
// ByteTransport contract crypto/tls's callers never see: WaitRead loops
// (via a buffered peek) until application bytes are decrypted and ready,
// WaitWrite drives the handshake to completion, Flush forces the
// transport's own flush, and failures translate onto the fixed kind table
// in errors.go.

package tlsadapter

import (
	"bufio"
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/czkz/async2/stream"
)

// netConnAdapter makes a stream.ByteTransport look like a blocking
// net.Conn: its Read/Write internally wait on the transport's readiness
// and loop past transient zero-byte results, exactly the way stream.Reader
// and stream.Writer already do for ordinary transports.
type netConnAdapter struct {
	tr  stream.ByteTransport
	ctx context.Context
}

func (n *netConnAdapter) Read(p []byte) (int, error) {
	for {
		if err := n.tr.WaitRead(n.ctx); err != nil {
			return 0, err
		}
		nr, err := n.tr.Read(p)
		if err != nil {
			return 0, translateTransportErr(err)
		}
		if nr == 0 {
			continue
		}
		return nr, nil
	}
}

func (n *netConnAdapter) Write(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		if err := n.tr.WaitWrite(n.ctx); err != nil {
			return total, err
		}
		nw, err := n.tr.Write(p[total:])
		if err != nil {
			return total, translateTransportErr(err)
		}
		total += nw
	}
	return total, nil
}

func (n *netConnAdapter) Close() error                       { return n.tr.Close() }
func (n *netConnAdapter) LocalAddr() net.Addr                { return adapterAddr{} }
func (n *netConnAdapter) RemoteAddr() net.Addr                { return adapterAddr{} }
func (n *netConnAdapter) SetDeadline(time.Time) error         { return nil }
func (n *netConnAdapter) SetReadDeadline(time.Time) error     { return nil }
func (n *netConnAdapter) SetWriteDeadline(time.Time) error    { return nil }

// adapterAddr is a placeholder net.Addr: the underlying transport has no
// addressing concept crypto/tls needs beyond satisfying the net.Conn
// interface shape.
type adapterAddr struct{}

func (adapterAddr) Network() string { return "tls-adapter" }
func (adapterAddr) String() string  { return "tls-adapter" }

// Adapter is a TLS client stream over a non-blocking transport, satisfying
// stream.ByteTransport plus the stream.Flusher and stream.Lookaheader
// capability interfaces.
type Adapter struct {
	conn       *tls.Conn
	nc         *netConnAdapter
	br         *bufio.Reader
	log        *logrus.Logger
	serverName string
	handshaken bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger overrides the default logger.
func WithLogger(l *logrus.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// New constructs a TLS client adapter for serverName over tr, validating
// the peer certificate against anchors. TLS 1.2 is the only negotiated
// version, matching the source's "minimal X.509 validator, full client
// suite" at a fixed protocol version.
func New(tr stream.ByteTransport, serverName string, anchors *x509.CertPool, opts ...Option) *Adapter {
	nc := &netConnAdapter{tr: tr, ctx: context.Background()}
	cfg := &tls.Config{
		ServerName: serverName,
		RootCAs:    anchors,
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS12,
	}
	conn := tls.Client(nc, cfg)
	a := &Adapter{
		conn:       conn,
		nc:         nc,
		br:         bufio.NewReader(conn),
		log:        logrus.StandardLogger(),
		serverName: serverName,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// WaitWrite drives the handshake to completion (the adapter's "ready when
// the engine reports SEND-APP") and otherwise returns immediately:
// crypto/tls buffers outbound application data locally and the actual
// record flush happens inside Write/Flush, so there is no separate
// SEND-APP readiness condition to probe once the handshake is done.
func (a *Adapter) WaitWrite(ctx context.Context) error {
	a.nc.ctx = ctx
	if err := a.conn.HandshakeContext(ctx); err != nil {
		a.log.WithError(err).WithField("server", a.serverName).Warn("tlsadapter: handshake failed")
		return translateHandshakeErr(err)
	}
	if !a.handshaken {
		a.handshaken = true
		a.log.WithField("server", a.serverName).Debug("tlsadapter: handshake complete")
	}
	return nil
}

// WaitRead loops (via a one-byte buffered peek, which itself drives the
// handshake and the record-layer read/flush loops through netConnAdapter)
// until application bytes are decrypted and available, or the connection
// or context ends.
func (a *Adapter) WaitRead(ctx context.Context) error {
	a.nc.ctx = ctx
	if _, err := a.br.Peek(1); err != nil {
		return translateHandshakeErr(err)
	}
	return nil
}

// Read copies already-decrypted application bytes into p.
func (a *Adapter) Read(p []byte) (int, error) {
	n, err := a.br.Read(p)
	if err != nil {
		return n, translateHandshakeErr(err)
	}
	return n, nil
}

// Write hands p to the engine for encryption and transmission.
func (a *Adapter) Write(p []byte) (int, error) {
	n, err := a.conn.Write(p)
	if err != nil {
		return n, translateHandshakeErr(err)
	}
	return n, nil
}

// Flush flushes the underlying transport if it supports it. crypto/tls
// already writes every record to the transport inside Write, so no
// plaintext is held back here.
func (a *Adapter) Flush() error {
	if f, ok := a.nc.tr.(stream.Flusher); ok {
		return f.Flush()
	}
	return nil
}

// Available reports how many decrypted application bytes are already
// buffered without requiring a transport read.
func (a *Adapter) Available() (int, bool) {
	n := a.br.Buffered()
	return n, n > 0
}

// Close force-flushes and tears down the session.
func (a *Adapter) Close() error {
	return a.conn.Close()
}
