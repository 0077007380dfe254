// File: aio/httpview.go
// Author: momentics <momentics@gmail.com>
//
// httpResponse is the minimal response view Slurp needs: status code,
// case-insensitive header lookup, and a body. Per spec.md §1 the HTTP
// header parser is an external collaborator out of the core's scope; this
// is the narrow slice that drives Slurp, built on stdlib strings/strconv
// plus github.com/pkg/errors (no third-party HTTP parser appears anywhere
// in the pack for this need — justified stdlib use, recorded in DESIGN.md).

package aio

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// httpResponse is a parsed HTTP/1.0 response: status line plus headers
// indexed case-insensitively, plus everything after the blank line.
type httpResponse struct {
	StatusCode int
	headers    map[string]string
	Body       []byte
}

// Header looks up a header value case-insensitively.
func (r *httpResponse) Header(name string) (string, bool) {
	v, ok := r.headers[strings.ToLower(name)]
	return v, ok
}

// parseHTTPResponse splits raw on the first "\r\n\r\n", parses the status
// line and headers from the part before it, and keeps everything after it
// as Body verbatim.
func parseHTTPResponse(raw []byte) (*httpResponse, error) {
	head, body := splitHeadBody(raw)

	lines := strings.Split(head, "\r\n")
	if len(lines) == 0 {
		return nil, errors.New("aio: empty http response")
	}

	statusFields := strings.Fields(lines[0])
	if len(statusFields) < 2 {
		return nil, errors.Errorf("aio: malformed status line %q", lines[0])
	}
	code, err := strconv.Atoi(statusFields[1])
	if err != nil {
		return nil, errors.Wrapf(err, "aio: malformed status code %q", statusFields[1])
	}

	resp := &httpResponse{StatusCode: code, headers: make(map[string]string), Body: body}
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		val := strings.TrimSpace(line[idx+1:])
		resp.headers[key] = val
	}
	return resp, nil
}

// splitHeadBody splits raw on the first blank-line delimiter, tolerating
// the response ending exactly at the delimiter (empty body).
func splitHeadBody(raw []byte) (string, []byte) {
	const delim = "\r\n\r\n"
	s := string(raw)
	idx := strings.Index(s, delim)
	if idx < 0 {
		return s, nil
	}
	return s[:idx], raw[idx+len(delim):]
}
