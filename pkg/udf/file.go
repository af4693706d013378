package udf

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/bgrewell/disc-kit/pkg/consts"
	"github.com/bgrewell/disc-kit/pkg/encoding"
	"github.com/itchio/headway/counter"
)

type iterState int

const (
	// iterStart: the directory extent has not been read yet.
	iterStart iterState = iota
	// iterEntry: the cursor is on a valid File Identifier Descriptor.
	iterEntry
	// iterEnd: no more entries.
	iterEnd
)

// File is a directory handle and the entry its cursor is on. A fresh handle
// describes the directory itself; each successful Next moves it to the next
// entry of that directory.
type File struct {
	udf       *UDF
	name      string
	isDir     bool
	isParent  bool
	partStart uint32
	self      *entry

	dirStart uint32
	dirEnd   uint32
	dirLeft  int64
	hasData  bool

	buf    []byte
	cursor int
	fid    fid
	state  iterState
	err    error
}

func (u *UDF) newFile(e *entry, name string, isDir, isParent bool) (*File, error) {
	f := &File{
		udf:       u,
		name:      name,
		isDir:     isDir,
		isParent:  isParent,
		partStart: u.partitionStart,
		self:      e,
	}

	a, ok, err := e.extent()
	if err != nil {
		return nil, err
	}
	if ok {
		f.dirStart = a.Location
		f.dirEnd = a.end()
		f.dirLeft = int64(e.Size)
		f.hasData = a.Length > 0
	}
	return f, nil
}

// Name returns the name of the current entry, "/" for the root before the first Next.
func (f *File) Name() string {
	return f.name
}

func (f *File) IsDir() bool {
	return f.isDir
}

// IsParent reports whether the current entry links to the parent directory.
func (f *File) IsParent() bool {
	return f.isParent
}

// Err returns the read error that ended iteration, if any.
func (f *File) Err() error {
	return f.err
}

// Next moves to the next entry of the directory. It returns false at the end
// of the directory, when a record fails validation, or on a read error, which
// Err then reports.
func (f *File) Next() bool {
	if f.state == iterEnd {
		return false
	}
	if f.dirLeft <= 0 || !f.hasData {
		return f.end()
	}

	if f.state == iterEntry {
		f.cursor += f.fid.size()
	} else {
		if err := f.fill(); err != nil {
			f.err = err
			return f.end()
		}
		f.cursor = 0
	}
	if f.cursor >= len(f.buf) {
		return f.end()
	}

	rec, ok := viewFID(f.buf[f.cursor:])
	if !ok {
		f.udf.logger.Debug("directory iteration stopped at invalid record", "directory", f.dirStart, "offset", f.cursor)
		return f.end()
	}

	f.fid = rec
	f.state = iterEntry
	f.dirLeft -= int64(rec.size())
	chars := rec.characteristics()
	f.isDir = chars&CharDirectory != 0
	f.isParent = chars&CharParent != 0
	f.name = encoding.DecodeCS0(rec.identifier())
	if f.isParent && f.name == "" {
		f.name = ".."
	}
	return true
}

func (f *File) end() bool {
	f.fid = nil
	f.state = iterEnd
	return false
}

// fill reads the whole directory extent into the handle's buffer.
func (f *File) fill() error {
	if f.dirEnd < f.dirStart {
		return fmt.Errorf("directory extent %d-%d: %w", f.dirStart, f.dirEnd, ErrBadTag)
	}
	sectors := f.dirEnd - f.dirStart + 1
	if f.buf == nil {
		f.buf = make([]byte, int(sectors)*consts.UDF_BLOCKSIZE)
	}
	_, err := f.udf.ReadSectors(f.buf, f.partStart+f.dirStart, sectors)
	return err
}

// IsHidden reports whether the current entry carries the hidden characteristic.
func (f *File) IsHidden() bool {
	return f.state == iterEntry && f.fid.characteristics()&CharHidden != 0
}

// Sub descends into the directory the cursor is on. The new handle is named
// after that entry.
func (f *File) Sub() (*File, error) {
	if f.state != iterEntry {
		return nil, ErrNoEntry
	}
	if !f.isDir {
		return nil, fmt.Errorf("%s: %w", f.name, ErrNotDirectory)
	}
	if f.isParent {
		return nil, fmt.Errorf("%s: %w", f.name, ErrParentLink)
	}

	e, err := f.udf.readEntry(f.partStart + f.fid.icbLocation())
	if err != nil {
		return nil, err
	}
	if !e.isDir() {
		return nil, fmt.Errorf("%s: file type %d: %w", f.name, e.FileType, ErrNotDirectory)
	}
	f.udf.logger.Trace("descending", "name", f.name, "icb", f.fid.icbLocation(), "partition", f.fid.icbPartition())
	return f.udf.newFile(e, f.name, true, false)
}

// current returns the entry the cursor is on, or the handle's own entry before
// the first Next.
func (f *File) current() (*entry, error) {
	switch f.state {
	case iterStart:
		return f.self, nil
	case iterEntry:
		return f.udf.readEntry(f.partStart + f.fid.icbLocation())
	default:
		return nil, ErrNoEntry
	}
}

// Stat describes the current entry.
func (f *File) Stat() (fs.FileInfo, error) {
	e, err := f.current()
	if err != nil {
		return nil, err
	}
	return &FileInfo{name: f.name, e: e}, nil
}

// WriteTo copies the data of the current entry to w. Extents that are
// allocated but not recorded read as zeros.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	e, err := f.current()
	if err != nil {
		return 0, err
	}
	if e.isDir() {
		return 0, fmt.Errorf("%s: %w", f.name, ErrIsDirectory)
	}
	if e.adErr != nil {
		return 0, e.adErr
	}

	const chunkBlocks = 32
	var (
		total = int64(e.Size)
		cw    = counter.NewWriter(w)
		buf   = make([]byte, chunkBlocks*consts.UDF_BLOCKSIZE)
	)
	f.udf.progress(f.name, 0, total, 1, 1)

	for _, a := range e.Allocations {
		remaining := int64(a.Length)
		if left := total - cw.Count(); remaining > left {
			remaining = left
		}
		lsn := f.partStart + a.Location
		for remaining > 0 {
			n := int64(len(buf))
			if n > remaining {
				n = remaining
			}
			blocks := uint32((n + consts.UDF_BLOCKSIZE - 1) / consts.UDF_BLOCKSIZE)
			chunk := buf[:n]
			if a.Type == extentRecorded {
				if _, err := f.udf.ReadSectors(buf, lsn, blocks); err != nil {
					return cw.Count(), err
				}
			} else {
				clear(chunk)
			}
			if _, err := cw.Write(chunk); err != nil {
				return cw.Count(), err
			}
			remaining -= n
			lsn += blocks
			f.udf.progress(f.name, cw.Count(), total, 1, 1)
		}
		if cw.Count() >= total {
			break
		}
	}

	if written := cw.Count(); written < total {
		return written, fmt.Errorf("%s: allocations cover %d of %d bytes: %w", f.name, written, total, io.ErrUnexpectedEOF)
	}
	return cw.Count(), nil
}

// ReadAll returns the data of the current entry.
func (f *File) ReadAll() ([]byte, error) {
	var b bytes.Buffer
	if _, err := f.WriteTo(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Close drops the directory buffer. The handle cannot be iterated afterwards.
func (f *File) Close() error {
	f.buf = nil
	f.end()
	return nil
}

// FileInfo implements fs.FileInfo for a UDF entry.
type FileInfo struct {
	name string
	e    *entry
}

func (fi *FileInfo) Name() string       { return fi.name }
func (fi *FileInfo) Size() int64        { return int64(fi.e.Size) }
func (fi *FileInfo) Mode() fs.FileMode  { return fi.e.mode() }
func (fi *FileInfo) ModTime() time.Time { return fi.e.ModTime }
func (fi *FileInfo) IsDir() bool        { return fi.e.isDir() }
func (fi *FileInfo) Sys() any           { return nil }

// AccessTime returns the last access time recorded in the entry.
func (fi *FileInfo) AccessTime() time.Time { return fi.e.AccessTime }

// UniqueID returns the entry's unique id.
func (fi *FileInfo) UniqueID() uint64 { return fi.e.UniqueID }
