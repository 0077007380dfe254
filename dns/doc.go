// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package dns implements a minimal RFC 1035 client: its own wire-format
// codec, /etc/hosts and /etc/resolv.conf bootstrap, and forward/reverse
// lookups over UDP with no retransmission. See DESIGN.md for why the
// cache lives on a per-instance Resolver rather than any thread-local or
// global singleton.
package dns
