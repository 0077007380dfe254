// File: aio/connect.go
// Author: momentics <momentics@gmail.com>
//
// Env assembles a reactor, a config, and a DNS resolver into the
// composed-front operations spec.md §6 lists: ConnectTCP, ConnectUDP,
// TLSConnect, Listen. Grounded on the teacher's server bootstrap
// (deleted highlevel/server wiring — see DESIGN.md) generalized from "one
// hardcoded WebSocket listener" to "whatever transport the caller asks
// for, resolved through one shared DNS resolver".

package aio

import (
	"context"
	"net"

	"github.com/pkg/errors"

	"github.com/czkz/async2/config"
	"github.com/czkz/async2/dns"
	"github.com/czkz/async2/reactor"
	"github.com/czkz/async2/stream"
	"github.com/czkz/async2/tlsadapter"
	"github.com/czkz/async2/transport"
)

// Env bundles the pieces every composed-front operation needs: the
// reactor driving all readiness waits, the config supplying file paths
// and defaults, and a DNS resolver built against that config.
type Env struct {
	Reactor  *reactor.Reactor
	Config   *config.Config
	Resolver *dns.Resolver
}

// NewEnv constructs an Env. A nil cfg uses config.New()'s real-host
// defaults.
func NewEnv(r *reactor.Reactor, cfg *config.Config) *Env {
	if cfg == nil {
		cfg = config.New()
	}
	return &Env{Reactor: r, Config: cfg, Resolver: dns.New(r, cfg)}
}

// resolve turns host into an IPv4 net.IP via the shared resolver.
func (e *Env) resolve(ctx context.Context, host string) (net.IP, error) {
	ipStr, err := e.Resolver.HostToIP(ctx, host)
	if err != nil {
		return nil, err
	}
	ip := net.ParseIP(ipStr)
	if ip == nil || ip.To4() == nil {
		return nil, errors.Errorf("aio: resolved non-ipv4 address %q for %q", ipStr, host)
	}
	return ip.To4(), nil
}

// ConnectTCP resolves host and connects a TCP stream to host:port.
func (e *Env) ConnectTCP(ctx context.Context, host string, port int) (*Conn, error) {
	ip, err := e.resolve(ctx, host)
	if err != nil {
		return nil, err
	}
	tcp, err := transport.DialTCP(ctx, e.Reactor, ip, port)
	if err != nil {
		return nil, err
	}
	return newConn(tcp), nil
}

// DatagramConn is a message-framed connection over a connected UDP
// socket.
type DatagramConn struct {
	*stream.Datagram
}

// ConnectUDP resolves host and connects a UDP datagram stream to
// host:port.
func (e *Env) ConnectUDP(ctx context.Context, host string, port int) (*DatagramConn, error) {
	ip, err := e.resolve(ctx, host)
	if err != nil {
		return nil, err
	}
	udp, err := transport.DialUDP(ctx, e.Reactor, ip, port)
	if err != nil {
		return nil, err
	}
	return &DatagramConn{Datagram: stream.NewDatagram(udp)}, nil
}

// TLSConnect resolves host, connects a TCP stream, and layers a TLS
// client session on top using the configured trust anchors. SNI is taken
// from host.
func (e *Env) TLSConnect(ctx context.Context, host string, port int) (*Conn, error) {
	ip, err := e.resolve(ctx, host)
	if err != nil {
		return nil, err
	}
	tcp, err := transport.DialTCP(ctx, e.Reactor, ip, port)
	if err != nil {
		return nil, err
	}

	anchors, err := tlsadapter.LoadTrustAnchors(e.Config.TrustAnchorPaths)
	if err != nil {
		tcp.Close()
		return nil, err
	}

	tls := tlsadapter.New(tcp, host, anchors)
	// Drive the handshake eagerly so a certificate/version failure
	// surfaces from TLSConnect itself, not from the caller's first read
	// or write.
	if err := tls.WaitWrite(ctx); err != nil {
		tls.Close()
		return nil, err
	}
	return newConn(tls), nil
}

// Server accepts inbound TCP connections.
type Server struct {
	l *transport.Listener
}

// Listen binds and listens on ip:port.
func (e *Env) Listen(ip net.IP, port int) (*Server, error) {
	l, err := transport.ListenTCP(ip, port, 128, e.Reactor)
	if err != nil {
		return nil, err
	}
	return &Server{l: l}, nil
}

// Accept waits for and returns the next inbound connection.
func (s *Server) Accept(ctx context.Context) (*Conn, error) {
	tcp, err := s.l.Accept(ctx)
	if err != nil {
		return nil, err
	}
	return newConn(tcp), nil
}

// Close stops accepting new connections.
func (s *Server) Close() error { return s.l.Close() }

// Port reports the locally bound port, useful when Listen was called with
// port 0 and the kernel picked one.
func (s *Server) Port() (int, error) { return s.l.Port() }
