// File: tlsadapter/trust_test.go
// Author: momentics <momentics@gmail.com>

package tlsadapter

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selfSignedDER(t *testing.T) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test-anchor"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		IsCA:         true,
		KeyUsage:     x509.KeyUsageCertSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return der
}

func selfSignedPEM(t *testing.T) []byte {
	t.Helper()
	return pemEncode(t, "CERTIFICATE", selfSignedDER(t))
}

func pemEncode(t *testing.T, label string, der []byte) []byte {
	t.Helper()
	return pem.EncodeToMemory(&pem.Block{Type: label, Bytes: der})
}

func TestParsePEMBundleAcceptsSingleCertificate(t *testing.T) {
	pool, err := ParsePEMBundle(selfSignedPEM(t))
	require.NoError(t, err)
	assert.NotNil(t, pool)
}

func TestParsePEMBundleRejectsInputWithoutPEMBlocks(t *testing.T) {
	_, err := ParsePEMBundle([]byte("not a certificate\n"))
	assert.Error(t, err)
}

func TestParsePEMBundleRejectsBadBase64(t *testing.T) {
	data := "-----BEGIN CERTIFICATE-----\n" + "not-valid-base64!!!" + "\n-----END CERTIFICATE-----\n"
	_, err := ParsePEMBundle([]byte(data))
	assert.Error(t, err)
}

func TestParsePEMBundleAcceptsAlternateCertificateLabels(t *testing.T) {
	for _, label := range []string{"X509 CERTIFICATE", "X.509 CERTIFICATE"} {
		data := pemEncode(t, label, selfSignedDER(t))
		pool, err := ParsePEMBundle(data)
		require.NoError(t, err, "label %q", label)
		assert.NotNil(t, pool)
	}
}

func TestParsePEMBundleSkipsUnrelatedBlockTypes(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keyBlock := pemEncode(t, "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key))
	certBlock := selfSignedPEM(t)

	pool, err := ParsePEMBundle(append(keyBlock, certBlock...))
	require.NoError(t, err)
	assert.NotNil(t, pool)
}

func TestLoadTrustAnchorsSkipsMissingPathsAndUsesFirstHit(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "anchors.pem")
	require.NoError(t, os.WriteFile(good, selfSignedPEM(t), 0o644))

	pool, err := LoadTrustAnchors([]string{filepath.Join(dir, "missing.pem"), good})
	require.NoError(t, err)
	assert.NotNil(t, pool)
}

func TestLoadTrustAnchorsErrorsWhenNoPathExists(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadTrustAnchors([]string{filepath.Join(dir, "a"), filepath.Join(dir, "b")})
	assert.Error(t, err)
}
