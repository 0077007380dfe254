// File: aio/slurp_test.go
// Author: momentics <momentics@gmail.com>

package aio

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/czkz/async2/errs"
)

func TestSlurpReadsLocalFile(t *testing.T) {
	env, ctx := newTestEnv(t)

	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("file contents"), 0o644))

	data, err := env.Slurp(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "file contents", string(data))
}

func TestSlurpRejectsUnknownScheme(t *testing.T) {
	env, ctx := newTestEnv(t)
	_, err := env.Slurp(ctx, "gopher://example.com/")
	assert.ErrorIs(t, err, errs.ErrUnknownScheme)
}

func TestSlurpHTTPFetchesBodyOnDirectOK(t *testing.T) {
	env, ctx := newTestEnv(t)

	srv, err := env.Listen(net.IPv4(127, 0, 0, 1), 0)
	require.NoError(t, err)
	defer srv.Close()
	port, err := srv.Port()
	require.NoError(t, err)

	go func() {
		conn, err := srv.Accept(ctx)
		if err != nil {
			return
		}
		defer conn.Close()
		if _, err := conn.ReadUntil(ctx, []byte("\r\n\r\n")); err != nil {
			return
		}
		body := "hello from server"
		resp := fmt.Sprintf("HTTP/1.0 200 OK\r\nContent-Length: %d\r\n\r\n%s", len(body), body)
		conn.Write(ctx, []byte(resp))
	}()

	data, err := env.Slurp(ctx, fmt.Sprintf("http://127.0.0.1:%d/", port))
	require.NoError(t, err)
	assert.Equal(t, "hello from server", string(data))
}

func TestSlurpHTTPFollowsRedirectToSameHost(t *testing.T) {
	env, ctx := newTestEnv(t)

	srv, err := env.Listen(net.IPv4(127, 0, 0, 1), 0)
	require.NoError(t, err)
	defer srv.Close()
	port, err := srv.Port()
	require.NoError(t, err)

	requestCount := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2; i++ {
			conn, err := srv.Accept(ctx)
			if err != nil {
				return
			}
			if _, err := conn.ReadUntil(ctx, []byte("\r\n\r\n")); err != nil {
				conn.Close()
				return
			}
			requestCount++
			var resp string
			if requestCount == 1 {
				resp = "HTTP/1.0 301 Moved Permanently\r\nLocation: /next\r\n\r\n"
			} else {
				body := "final destination"
				resp = fmt.Sprintf("HTTP/1.0 200 OK\r\nContent-Length: %d\r\n\r\n%s", len(body), body)
			}
			conn.Write(ctx, []byte(resp))
			conn.Close()
		}
	}()

	data, err := env.Slurp(ctx, fmt.Sprintf("http://127.0.0.1:%d/start", port))
	require.NoError(t, err)
	assert.Equal(t, "final destination", string(data))
	<-done
	assert.Equal(t, 2, requestCount)
}
