// File: config/config.go
// Author: momentics <momentics@gmail.com>
//
// Config carries the file-system paths and defaults that the source
// hardcodes directly (/etc/hosts, /etc/resolv.conf, the default trust
// anchor locations, the 127.0.0.1 fallback resolver), plus the logger
// dns.Resolver logs through (reactor and tlsadapter take their own logger
// options and do not read this one). Grounded on the teacher's functional-option
// config pattern (control/config.go in the teacher, now adapted rather
// than carried verbatim — see DESIGN.md); needed here so the dns and
// tlsadapter test suites can point at fixture files instead of the real
// host's /etc paths.

package config

import "github.com/sirupsen/logrus"

// Config holds the paths and defaults threaded through dns.Resolver,
// tlsadapter, and the composed front.
type Config struct {
	HostsPath        string
	ResolvConfPath   string
	DefaultResolver  string
	TrustAnchorPaths []string
	Logger           *logrus.Logger
}

// Option mutates a Config under construction.
type Option func(*Config)

// WithHostsPath overrides the /etc/hosts location.
func WithHostsPath(path string) Option {
	return func(c *Config) { c.HostsPath = path }
}

// WithResolvConfPath overrides the /etc/resolv.conf location.
func WithResolvConfPath(path string) Option {
	return func(c *Config) { c.ResolvConfPath = path }
}

// WithDefaultResolver overrides the fallback resolver IP used when
// resolv.conf is absent or empty.
func WithDefaultResolver(ip string) Option {
	return func(c *Config) { c.DefaultResolver = ip }
}

// WithTrustAnchorPaths overrides the candidate trust anchor file paths,
// tried in order.
func WithTrustAnchorPaths(paths []string) Option {
	return func(c *Config) { c.TrustAnchorPaths = paths }
}

// WithLogger overrides the logger dns.Resolver logs through.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// New builds a Config from the real host's default paths, overridden by
// opts.
func New(opts ...Option) *Config {
	c := &Config{
		HostsPath:        "/etc/hosts",
		ResolvConfPath:   "/etc/resolv.conf",
		DefaultResolver:  "127.0.0.1",
		TrustAnchorPaths: []string{"/etc/ssl/cert.pem", "/etc/ssl/certs.pem"},
		Logger:           defaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// defaultLogger is a fresh logrus.Logger at WarnLevel, not the mutated
// process-wide logrus.StandardLogger(), so constructing a Config never has
// a side effect on other packages' logging.
func defaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}
