// File: aio/httpview_test.go
// Author: momentics <momentics@gmail.com>

package aio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHTTPResponseExtractsStatusHeadersAndBody(t *testing.T) {
	raw := []byte("HTTP/1.0 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 5\r\n\r\nhello")
	resp, err := parseHTTPResponse(raw)
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	v, ok := resp.Header("content-type")
	assert.True(t, ok)
	assert.Equal(t, "text/plain", v)
	assert.Equal(t, "hello", string(resp.Body))
}

func TestHeaderLookupIsCaseInsensitive(t *testing.T) {
	resp, err := parseHTTPResponse([]byte("HTTP/1.0 200 OK\r\nLOCATION: /next\r\n\r\n"))
	require.NoError(t, err)
	v, ok := resp.Header("Location")
	assert.True(t, ok)
	assert.Equal(t, "/next", v)
}

func TestParseHTTPResponseWithNoBody(t *testing.T) {
	resp, err := parseHTTPResponse([]byte("HTTP/1.0 204 No Content\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
	assert.Empty(t, resp.Body)
}

func TestParseHTTPResponseRejectsMalformedStatusLine(t *testing.T) {
	_, err := parseHTTPResponse([]byte("garbage\r\n\r\n"))
	assert.Error(t, err)
}

func TestSplitHeadBodyWithNoDelimiterReturnsWholeInputAsHead(t *testing.T) {
	head, body := splitHeadBody([]byte("no delimiter here"))
	assert.Equal(t, "no delimiter here", head)
	assert.Nil(t, body)
}
