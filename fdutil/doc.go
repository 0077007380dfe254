// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package fdutil owns descriptor lifetime and the non-blocking syscall
// façade every transport in this repository is built on: socket creation,
// connect, read, write and the errno-to-error-taxonomy mapping that turns
// EAGAIN/EWOULDBLOCK into "no data yet" rather than a failure.
package fdutil
