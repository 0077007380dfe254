// File: aio/open.go
// Author: momentics <momentics@gmail.com>
//
// OpenRead/OpenWrite/OpenRW front transport.File/transport.FilePair the
// same way ConnectTCP fronts transport.TCP, per spec.md §6's composed API
// surface (`open-read`, `open-write`, `open-rw`).

package aio

import (
	"golang.org/x/sys/unix"

	"github.com/czkz/async2/fdutil"
	"github.com/czkz/async2/transport"
)

const openPerm = 0o644

// OpenRead opens path for reading.
func (e *Env) OpenRead(path string) (*Conn, error) {
	fd, err := fdutil.Open(path, unix.O_RDONLY, openPerm)
	if err != nil {
		return nil, err
	}
	return newConn(transport.NewFile(e.Reactor, fd)), nil
}

// OpenWrite opens path for writing. append controls O_APPEND vs
// truncate-on-open; create controls whether the file may be created if
// absent.
func (e *Env) OpenWrite(path string, appendFile, create bool) (*Conn, error) {
	flags := unix.O_WRONLY
	if appendFile {
		flags |= unix.O_APPEND
	} else {
		flags |= unix.O_TRUNC
	}
	if create {
		flags |= unix.O_CREAT
	}
	fd, err := fdutil.Open(path, flags, openPerm)
	if err != nil {
		return nil, err
	}
	return newConn(transport.NewFile(e.Reactor, fd)), nil
}

// OpenRW opens two independent paths, one for reading and one for
// writing, bundled as a single stream. This is the composed front's
// realization of stdin/stdout-shaped duplex access over two files that
// are not the same descriptor.
func (e *Env) OpenRW(readPath, writePath string, appendFile, create bool) (*Conn, error) {
	readFD, err := fdutil.Open(readPath, unix.O_RDONLY, openPerm)
	if err != nil {
		return nil, err
	}
	flags := unix.O_WRONLY
	if appendFile {
		flags |= unix.O_APPEND
	} else {
		flags |= unix.O_TRUNC
	}
	if create {
		flags |= unix.O_CREAT
	}
	writeFD, err := fdutil.Open(writePath, flags, openPerm)
	if err != nil {
		readFD.Close()
		return nil, err
	}
	return newConn(transport.NewFilePair(e.Reactor, readFD, writeFD)), nil
}
