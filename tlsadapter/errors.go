// File: tlsadapter/errors.go
// Author: momentics <momentics@gmail.com>
//
// Failure translation: crypto/tls and crypto/x509 surface their own error
// types; this maps them onto the fixed kind table the source's failure
// translation defines, recognizing stdlib's documented sentinel/typed
// errors (x509.CertificateInvalidError, x509.UnknownAuthorityError,
// tls.RecordHeaderError and plain io.EOF) rather than string-matching
// wherever a typed error exists; the protocol-version case has no typed
// error and is recognized by its message text.

package tlsadapter

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/czkz/async2/errs"
)

// FatalError is a non-recoverable TLS session failure. Code names the
// failure kind (1 not trusted, 2 expired, 3 version unsupported, 99 any
// other); it carries no wire meaning.
type FatalError struct {
	Code int
	Msg  string
}

func (e *FatalError) Error() string { return e.Msg }

func fatal(code int, msg string) error { return &FatalError{Code: code, Msg: msg} }

const (
	codeNotTrusted = 1
	codeExpired    = 2
	codeVersion    = 3
	codeOther      = 99
)

// translateTransportErr maps an error bubbled up from the underlying
// non-blocking transport (via netConnAdapter) before crypto/tls ever sees
// it: end-of-stream on the raw transport is a clean close.
func translateTransportErr(err error) error {
	if err == nil {
		return nil
	}
	if errs.Is(err, errs.EOF) {
		return io.EOF
	}
	return err
}

// translateHandshakeErr maps an error crypto/tls returned (from
// Handshake, Read, or Write) onto the source's five-kind failure table.
func translateHandshakeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		return errs.EOF
	}

	var certErr x509.CertificateInvalidError
	if errors.As(err, &certErr) {
		if certErr.Reason == x509.Expired {
			return fatal(codeExpired, "certificate expired")
		}
	}

	var unknownAuth x509.UnknownAuthorityError
	if errors.As(err, &unknownAuth) {
		return fatal(codeNotTrusted, "certificate not trusted")
	}
	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		return fatal(codeNotTrusted, "certificate not trusted")
	}

	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return fatal(codeOther, fmt.Sprintf("record-layer error (code %d)", codeOther))
	}

	if strings.Contains(err.Error(), "protocol version not supported") ||
		strings.Contains(err.Error(), "unsupported versions") {
		return fatal(codeVersion, "tls version unsupported")
	}

	return fatal(codeOther, fmt.Sprintf("record-layer error (code %d)", codeOther))
}
