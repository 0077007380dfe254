// File: dns/resolver.go
// Author: momentics <momentics@gmail.com>
//
// Resolver owns the per-instance (not thread-local — see DESIGN.md Open
// Question) host cache, /etc/hosts and /etc/resolv.conf bootstrap, and
// the forward/reverse query algorithms from spec.md §4.7. Grounded on the
// teacher's "own every layer" style (no DNS library import for the client
// itself) and on PhantomInTheWire-picodns__resolver.go's query-and-match
// loop shape (send once, read datagrams until a matching id/response
// arrives, no retransmission).

package dns

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/czkz/async2/config"
	"github.com/czkz/async2/reactor"
	"github.com/czkz/async2/stream"
	"github.com/czkz/async2/transport"
)

// RcodeError reports a non-zero response code returned by the resolver.
type RcodeError struct {
	Rcode int
	Name  string
}

func (e *RcodeError) Error() string {
	return fmt.Sprintf("dns: query for %q failed with rcode %d", e.Name, e.Rcode)
}

// ErrNotFound is returned by IPToHost when the resolver reports
// name-error for the reverse query.
var ErrNotFound = errors.New("dns: not found")

const dnsPort = 53

// Resolver is a per-instance DNS client with its own cache: callers own
// the instance and decide whether/how to share it, rather than relying on
// any global or thread-local singleton (see DESIGN.md).
type Resolver struct {
	r   *reactor.Reactor
	cfg *config.Config

	mu           sync.Mutex
	cache        map[string]string // lowercased hostname -> dotted-quad IPv4
	hostsLoaded  bool
	resolvLoaded bool
	resolverIP   string
}

// New constructs a Resolver bound to r for transport I/O, using cfg for
// file paths and the default-resolver fallback.
func New(r *reactor.Reactor, cfg *config.Config) *Resolver {
	return &Resolver{
		r:     r,
		cfg:   cfg,
		cache: make(map[string]string),
	}
}

// HostToIP resolves host to a dotted-quad IPv4 address string. A
// printable IPv4 literal short-circuits without touching the network.
func (res *Resolver) HostToIP(ctx context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil && ip.To4() != nil {
		return ip.To4().String(), nil
	}

	key := strings.ToLower(host)
	res.mu.Lock()
	if !res.hostsLoaded {
		res.loadHostsLocked()
	}
	if ip, ok := res.cache[key]; ok {
		res.mu.Unlock()
		res.cfg.Logger.WithField("name", host).Debug("dns: cache hit")
		return ip, nil
	}
	res.mu.Unlock()

	serverIP, err := res.resolverIPAddr()
	if err != nil {
		return "", err
	}

	msg, err := res.query(ctx, serverIP, host, TypeA)
	if err != nil {
		return "", err
	}
	if msg.Header.Rcode() != RcodeNoError {
		res.cfg.Logger.WithField("name", host).WithField("rcode", msg.Header.Rcode()).Warn("dns: query failed")
		return "", &RcodeError{Rcode: msg.Header.Rcode(), Name: host}
	}

	fqdn := strings.TrimSuffix(host, ".")
	for _, rr := range msg.Answers {
		if rr.Type != TypeA {
			continue
		}
		if !strings.EqualFold(strings.TrimSuffix(rr.Name, "."), fqdn) {
			continue
		}
		ip := net.IPv4(rr.A[0], rr.A[1], rr.A[2], rr.A[3]).String()
		res.mu.Lock()
		res.cache[key] = ip
		res.mu.Unlock()
		res.cfg.Logger.WithField("name", host).WithField("ip", ip).Debug("dns: resolved")
		return ip, nil
	}
	return "", errors.Errorf("dns: no A record for %q", host)
}

// IPToHost resolves a dotted-quad IPv4 address to its reverse DNS name.
func (res *Resolver) IPToHost(ctx context.Context, ipStr string) (string, error) {
	ip := net.ParseIP(ipStr)
	if ip == nil || ip.To4() == nil {
		return "", errors.Errorf("dns: %q is not an ipv4 address", ipStr)
	}

	serverIP, err := res.resolverIPAddr()
	if err != nil {
		return "", err
	}

	reverseName := reverseLookupName(ip.To4())
	msg, err := res.query(ctx, serverIP, reverseName, TypePTR)
	if err != nil {
		return "", err
	}
	if msg.Header.Rcode() == RcodeNameErr {
		return "", ErrNotFound
	}
	if msg.Header.Rcode() != RcodeNoError {
		return "", &RcodeError{Rcode: msg.Header.Rcode(), Name: reverseName}
	}

	for _, rr := range msg.Answers {
		if rr.Type != TypePTR {
			continue
		}
		if !strings.EqualFold(strings.TrimSuffix(rr.Name, "."), strings.TrimSuffix(reverseName, ".")) {
			continue
		}
		return rr.PTRName, nil
	}
	return "", ErrNotFound
}

// reverseLookupName transforms a.b.c.d into d.c.b.a.in-addr.arpa.
func reverseLookupName(v4 net.IP) string {
	return fmt.Sprintf("%d.%d.%d.%d.in-addr.arpa", v4[3], v4[2], v4[1], v4[0])
}

// query sends a standard query to serverIP:53 over UDP and reads
// datagrams until one matches the request id and carries the response
// bit, with no retransmission and no timeout beyond ctx.
func (res *Resolver) query(ctx context.Context, serverIP net.IP, name string, qtype uint16) (*Message, error) {
	id := uint16(rand.Intn(1 << 16))
	req := NewQuery(id, name, qtype)
	raw, err := Marshal(req)
	if err != nil {
		return nil, err
	}

	udp, err := transport.DialUDP(ctx, res.r, serverIP, dnsPort)
	if err != nil {
		return nil, err
	}
	defer udp.Close()

	dgram := stream.NewDatagram(udp)
	if err := dgram.Write(ctx, raw); err != nil {
		return nil, err
	}

	for {
		packet, err := dgram.Read(ctx)
		if err != nil {
			return nil, err
		}
		msg, err := Unmarshal(packet)
		if err != nil {
			continue
		}
		if !msg.Header.QR() || msg.Header.ID != id {
			continue
		}
		return msg, nil
	}
}

// resolverIPAddr returns the resolver's IP, bootstrapping
// /etc/resolv.conf on first use and falling back to the configured
// default when absent or empty.
func (res *Resolver) resolverIPAddr() (net.IP, error) {
	res.mu.Lock()
	defer res.mu.Unlock()
	if !res.resolvLoaded {
		res.loadResolvConfLocked()
	}
	ip := net.ParseIP(res.resolverIP)
	if ip == nil || ip.To4() == nil {
		return nil, errors.Errorf("dns: invalid resolver address %q", res.resolverIP)
	}
	return ip.To4(), nil
}

// loadResolvConfLocked parses cfg.ResolvConfPath for the first
// "nameserver <ip>" directive. Called with res.mu held.
func (res *Resolver) loadResolvConfLocked() {
	res.resolvLoaded = true
	res.resolverIP = res.cfg.DefaultResolver

	lines, err := readLines(res.cfg.ResolvConfPath)
	if err != nil {
		res.cfg.Logger.WithError(err).WithField("path", res.cfg.ResolvConfPath).Debug("dns: resolv.conf unavailable, using default resolver")
		return
	}
	for _, fields := range lines {
		if len(fields) >= 2 && fields[0] == "nameserver" {
			res.resolverIP = fields[1]
			res.cfg.Logger.WithField("resolver", res.resolverIP).Debug("dns: loaded resolv.conf")
			return
		}
	}
}

// loadHostsLocked parses cfg.HostsPath, mapping each lowercased name on a
// line to that line's first token (the IP). Malformed lines (fewer than 2
// tokens) are silently skipped. Called with res.mu held.
func (res *Resolver) loadHostsLocked() {
	res.hostsLoaded = true

	lines, err := readLines(res.cfg.HostsPath)
	if err != nil {
		res.cfg.Logger.WithError(err).WithField("path", res.cfg.HostsPath).Debug("dns: hosts file unavailable")
		return
	}
	for _, fields := range lines {
		if len(fields) < 2 {
			continue
		}
		ip := fields[0]
		for _, name := range fields[1:] {
			res.cache[strings.ToLower(name)] = ip
		}
	}
	res.cfg.Logger.WithField("path", res.cfg.HostsPath).WithField("entries", len(res.cache)).Debug("dns: loaded hosts file")
}

// readLines tokenizes path line-by-line: whitespace-separated words up to
// a '#' comment or end-of-line. Returns one []string per non-empty line.
func readLines(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out [][]string
	for _, line := range strings.Split(string(data), "\n") {
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		out = append(out, fields)
	}
	return out, nil
}
