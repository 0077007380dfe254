// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package task implements the eagerly-started, single-award Task[T]
// primitive and its gather-style combinators. See DESIGN.md for why a
// goroutine-plus-channel future is the idiomatic Go rendition of the
// source's stackless-coroutine task.
package task
