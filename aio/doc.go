// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package aio is the composed front assembling transport, stream, dns,
// and tlsadapter into the user-facing operations spec.md §6 names:
// ConnectTCP, ConnectUDP, TLSConnect, OpenRead, OpenWrite, OpenRW, Slurp,
// Listen. See DESIGN.md for how this corresponds to the teacher's deleted
// facade/highlevel layers.
package aio
