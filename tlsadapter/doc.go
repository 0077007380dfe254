// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tlsadapter bridges a non-blocking stream.ByteTransport to Go's
// standard crypto/tls, exposing the same ByteTransport/Flusher/Lookaheader
// capability set ordinary transports do. See DESIGN.md for why crypto/tls
// is the required stdlib dependency here.
package tlsadapter
