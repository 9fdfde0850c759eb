// Package backend abstracts the sector-addressable storage a unixv6 image
// sits on: a flat file or a raw block device, accessed purely by byte
// offset. unixv6 never learns which one it has -- sector.go's readSector
// and writeSector only ever call ReadAt/WriteAt against a Storage.
package backend

import (
	"errors"
	"io"
	"io/fs"
	"os"
)

var (
	ErrIncorrectOpenMode = errors.New("disk file or device not open for write")
	ErrNotSuitable       = errors.New("backing file is not suitable")
)

// File is the minimal read side: byte-addressable, seekable, closeable.
type File interface {
	fs.File
	io.ReaderAt
	io.Seeker
	io.Closer
}

// WritableFile adds the write side, returned separately by
// Storage.Writable so that a read-only mount has no way to write a
// sector even if it holds a Storage value.
type WritableFile interface {
	File
	io.WriterAt
}

// Storage is what unixv6.Mount/Mkfs/readSector/writeSector operate on.
type Storage interface {
	File
	// Sys exposes the underlying *os.File when there is one, so that
	// unixv6.Mount can log the host image's own mtime (via
	// gopkg.in/djherbis/times.v1).
	Sys() (*os.File, error)
	// Writable returns a write-capable handle, or ErrIncorrectOpenMode
	// if the backing store was opened read-only -- the gate unixv6's
	// writeSector relies on to refuse writes to a read-only mount.
	Writable() (WritableFile, error)
}
