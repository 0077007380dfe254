// File: tlsadapter/trust.go
// Author: momentics <momentics@gmail.com>
//
// Trust anchor construction (spec.md §4.6 "Trust anchors"). No pack
// example ships a PEM codec, so block splitting goes through stdlib
// encoding/pem, documented as justified stdlib use in DESIGN.md.
// Certificate bytes themselves go through crypto/x509.ParseCertificate,
// since re-implementing ASN.1 X.509 parsing is explicitly out of scope.

package tlsadapter

import (
	"crypto/x509"
	"encoding/pem"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// certificateLabels are the PEM block types treated as certificates:
// "CERTIFICATE" is the common case, "X509 CERTIFICATE" and
// "X.509 CERTIFICATE" are older/alternate labels some bundles still use.
var certificateLabels = map[string]bool{
	"CERTIFICATE":       true,
	"X509 CERTIFICATE":  true,
	"X.509 CERTIFICATE": true,
}

// defaultAnchorPaths is tried in order; the first file that exists wins.
var defaultAnchorPaths = []string{"/etc/ssl/cert.pem", "/etc/ssl/certs.pem"}

// ParsePEMBundle splits data into certificate PEM blocks (any of
// certificateLabels), decodes each to DER, and parses it into an
// x509.CertPool. Non-certificate blocks are skipped rather than rejected,
// matching how real bundles sometimes interleave key or parameter blocks.
// A bundle with no certificate blocks is an error, matching "decoding
// failure is fatal".
func ParsePEMBundle(data []byte) (*x509.CertPool, error) {
	pool := x509.NewCertPool()
	count := 0

	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if !certificateLabels[block.Type] {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, errors.Wrap(err, "parse certificate")
		}
		pool.AddCert(cert)
		count++
	}
	if count == 0 {
		return nil, errors.New("pem bundle contains no certificates")
	}
	return pool, nil
}

// LoadTrustAnchors reads and parses the first existing path in paths.
// Callers supplying config.Config.TrustAnchorPaths get this every time;
// only the hardcoded-default path goes through the process-wide cache in
// DefaultTrustAnchors.
func LoadTrustAnchors(paths []string) (*x509.CertPool, error) {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return ParsePEMBundle(data)
	}
	return nil, errors.New("no trust anchor file found among configured paths")
}

var (
	defaultOnce sync.Once
	defaultPool *x509.CertPool
	defaultErr  error
)

// DefaultTrustAnchors lazily builds and caches, process-wide, the trust
// anchor list from the first existing default path. Subsequent calls
// return the cached pool (or cached error) without touching the
// filesystem again.
func DefaultTrustAnchors() (*x509.CertPool, error) {
	defaultOnce.Do(func() {
		defaultPool, defaultErr = LoadTrustAnchors(defaultAnchorPaths)
	})
	return defaultPool, defaultErr
}
