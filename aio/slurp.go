// File: aio/slurp.go
// Author: momentics <momentics@gmail.com>
//
// Slurp is the composed "read these bytes, whatever the scheme" front
// from spec.md §4.8: file reads go through OpenRead, http/https go
// through a one-shot HTTP/1.0 GET with a bounded redirect chain. HTTP/1.0
// is used deliberately (no Host-relative chunked transfer to parse).

package aio

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/czkz/async2/errs"
)

const maxRedirectDepth = 16

// Slurp resolves uri to its full contents: file://<path> or a bare path
// reads the file directly; http(s):// issues an HTTP/1.0 GET, following
// redirects up to maxRedirectDepth and returning the body of the first
// non-redirect response, or a fatal error carrying the status code.
func (e *Env) Slurp(ctx context.Context, uri string) ([]byte, error) {
	return e.slurp(ctx, uri, 0)
}

func (e *Env) slurp(ctx context.Context, uri string, depth int) ([]byte, error) {
	if depth > maxRedirectDepth {
		return nil, errs.ErrRedirectTooDeep
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, errors.Wrap(err, "aio: malformed uri")
	}

	switch strings.ToLower(u.Scheme) {
	case "", "file":
		path := u.Path
		if path == "" {
			path = uri
		}
		conn, err := e.OpenRead(path)
		if err != nil {
			return nil, err
		}
		defer conn.Close()
		return conn.ReadUntilEOF(ctx)

	case "http":
		return e.slurpHTTP(ctx, u, 80, depth)

	case "https":
		return e.slurpHTTP(ctx, u, 443, depth)

	default:
		return nil, errs.ErrUnknownScheme
	}
}

func (e *Env) slurpHTTP(ctx context.Context, u *url.URL, defaultPort int, depth int) ([]byte, error) {
	host := u.Hostname()
	port := defaultPort
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, errors.Wrapf(err, "aio: malformed port %q", p)
		}
		port = n
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	var conn *Conn
	var err error
	if u.Scheme == "https" {
		conn, err = e.TLSConnect(ctx, host, port)
	} else {
		conn, err = e.ConnectTCP(ctx, host, port)
	}
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	req := fmt.Sprintf("GET %s HTTP/1.0\r\nHost: %s\r\n\r\n", path, host)
	if err := conn.Write(ctx, []byte(req)); err != nil {
		return nil, err
	}

	raw, err := conn.ReadUntilEOF(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := parseHTTPResponse(raw)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == 200:
		return resp.Body, nil
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		location, ok := resp.Header("location")
		if !ok {
			return nil, errors.Errorf("aio: redirect %d with no Location header", resp.StatusCode)
		}
		next, err := resolveRedirect(u, location)
		if err != nil {
			return nil, err
		}
		return e.slurp(ctx, next, depth+1)
	default:
		return nil, errors.Errorf("aio: http request failed with status %d", resp.StatusCode)
	}
}

// resolveRedirect resolves a Location header (absolute or relative)
// against the request it answered.
func resolveRedirect(base *url.URL, location string) (string, error) {
	loc, err := url.Parse(location)
	if err != nil {
		return "", errors.Wrapf(err, "aio: malformed redirect location %q", location)
	}
	return base.ResolveReference(loc).String(), nil
}
