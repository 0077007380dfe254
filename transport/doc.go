// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package transport implements the non-blocking fd-backed transports
// (File, FilePair, TCP, Listener, UDP) that satisfy the stream package's
// ByteTransport and DatagramTransport interfaces. See DESIGN.md for the
// teacher grounding of the connect/accept sequence and the TCP corking
// dance.
package transport
