// File: errs/errors.go
// Author: momentics <momentics@gmail.com>
//
// Shared error taxonomy (spec.md §7), realized here as plain stdlib
// sentinel errors. The two typed errors that carry structured data live
// beside the code that raises them: dns.RcodeError (DNS rcode) and
// tlsadapter.FatalError (TLS fatal condition). Grounded on the teacher's
// api.Error/ErrorCode shape (api/errors.go in the teacher, now deleted —
// see DESIGN.md) but expressed as sentinel values, since callers wrap
// syscall-originated failures with github.com/pkg/errors and recover the
// underlying syscall.Errno with errors.Cause, which a closed ErrorCode
// enum cannot carry.

package errs

import "errors"

// EOF is the sticky end-of-stream condition: once observed on a
// transport, subsequent reads on that transport must also return EOF
// rather than blocking (spec.md §9 "End-of-stream stickiness").
var EOF = errors.New("eof")

// ErrNotAwaited is the fatal-by-convention condition surfaced by
// task.OnLeak's default hook; exported so callers that install a custom
// OnLeak hook can recognize it.
var ErrNotAwaited = errors.New("task destroyed without being awaited")

// ErrDatagramTooLarge is returned by a datagram stream write whose
// payload exceeds the transport's maximum outgoing packet size.
var ErrDatagramTooLarge = errors.New("datagram exceeds transport maximum size")

// ErrEmptyDelimiter rejects stream.Reader.ReadUntil with an empty
// delimiter, whose behavior the source leaves unspecified.
var ErrEmptyDelimiter = errors.New("read-until delimiter must not be empty")

// ErrRedirectTooDeep is returned by Slurp when an HTTP redirect chain
// exceeds the 16-hop cap.
var ErrRedirectTooDeep = errors.New("redirect recursion too deep")

// ErrUnknownScheme is returned by Slurp for a URI scheme other than
// file/http/https.
var ErrUnknownScheme = errors.New("unknown uri scheme")

// Is reports whether err matches target per the standard errors.Is
// semantics, re-exported so callers don't need a second import for the
// common case of checking err against one of this package's sentinels.
func Is(err, target error) bool { return errors.Is(err, target) }
