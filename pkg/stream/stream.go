// Package stream provides the random-access byte sources that image backends
// and the UDF reader sit on: plain files, memory-mapped files, and caller
// supplied readers.
package stream

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/mmap"
)

// Stream is a sized, closable random-access byte source.
type Stream interface {
	io.ReaderAt
	io.Closer
	// Size returns the length of the stream in bytes.
	Size() (int64, error)
	// Name returns the path or label the stream was opened from.
	Name() string
}

// Open opens path as a Stream. When useMmap is set the file is mapped into memory.
func Open(path string, useMmap bool) (Stream, error) {
	if useMmap {
		r, err := mmap.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to map %s: %w", path, err)
		}
		return &mmapStream{r: r, name: path}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &fileStream{f: f}, nil
}

// NewReaderAt wraps an io.ReaderAt of known size. Closing the returned Stream
// closes r only if it implements io.Closer.
func NewReaderAt(r io.ReaderAt, size int64, name string) Stream {
	return &readerAtStream{r: r, size: size, name: name}
}

// ReadFull reads exactly len(p) bytes at off. An io.EOF that accompanies a
// complete read is not an error.
func ReadFull(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("short read at offset %d (%d of %d bytes): %w", off, n, len(p), err)
}

type fileStream struct {
	f *os.File
}

func (s *fileStream) ReadAt(p []byte, off int64) (int, error) {
	return s.f.ReadAt(p, off)
}

func (s *fileStream) Size() (int64, error) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (s *fileStream) Name() string {
	return s.f.Name()
}

func (s *fileStream) Close() error {
	return s.f.Close()
}

type mmapStream struct {
	r    *mmap.ReaderAt
	name string
}

func (s *mmapStream) ReadAt(p []byte, off int64) (int, error) {
	return s.r.ReadAt(p, off)
}

func (s *mmapStream) Size() (int64, error) {
	return int64(s.r.Len()), nil
}

func (s *mmapStream) Name() string {
	return s.name
}

func (s *mmapStream) Close() error {
	return s.r.Close()
}

type readerAtStream struct {
	r    io.ReaderAt
	size int64
	name string
}

func (s *readerAtStream) ReadAt(p []byte, off int64) (int, error) {
	return s.r.ReadAt(p, off)
}

func (s *readerAtStream) Size() (int64, error) {
	return s.size, nil
}

func (s *readerAtStream) Name() string {
	return s.name
}

func (s *readerAtStream) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
