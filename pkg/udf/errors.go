package udf

import "errors"

var (
	// ErrNotFound is returned when a descriptor, the root or a path cannot be found.
	ErrNotFound = errors.New("udf: not found")
	// ErrBadTag is returned when a descriptor tag has the wrong id or checksum.
	ErrBadTag = errors.New("udf: invalid descriptor tag")
	// ErrUnsupportedAD is returned for allocation descriptor encodings the reader does not handle.
	ErrUnsupportedAD = errors.New("udf: unsupported allocation descriptor")
	// ErrNotDirectory is returned when descending into something that is not a directory.
	ErrNotDirectory = errors.New("udf: not a directory")
	// ErrIsDirectory is returned when reading file data from a directory.
	ErrIsDirectory = errors.New("udf: is a directory")
	// ErrParentLink is returned when descending through a parent entry.
	ErrParentLink = errors.New("udf: entry is a parent link")
	// ErrNoEntry is returned by entry operations on a handle that is not positioned on an entry.
	ErrNoEntry = errors.New("udf: no current entry")
	// ErrBlockSize is returned when the logical volume does not use 2048 byte blocks.
	ErrBlockSize = errors.New("udf: unsupported logical block size")
)
