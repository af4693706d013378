package udf

import (
	"fmt"
	"io/fs"
	"time"
)

// entry is a File Entry or Extended File Entry reduced to what the reader uses.
type entry struct {
	FileType     uint8
	ADType       uint16
	Size         uint64
	UID          uint32
	GID          uint32
	Permissions  uint32
	LinkCount    uint16
	AccessTime   time.Time
	ModTime      time.Time
	UniqueID     uint64
	Allocations  []allocation
	// adErr is set when the allocation descriptors use an encoding the reader does not handle.
	adErr error
}

// parseEntry decodes the ICB in b, which must be a valid File Entry or
// Extended File Entry.
func parseEntry(b []byte) (*entry, error) {
	var (
		e          entry
		eaLen      uint32
		adLen      uint32
		headerSize int
	)

	switch {
	case CheckTag(b, TagFileEntry):
		fe := &FileEntry{}
		if err := unpack(b, fe); err != nil {
			return nil, err
		}
		e = entry{
			FileType:    fe.FileType,
			ADType:      fe.Flags & adMask,
			Size:        fe.InformationLength,
			UID:         fe.UID,
			GID:         fe.GID,
			Permissions: fe.Permissions,
			LinkCount:   fe.FileLinkCount,
			AccessTime:  timestamp(fe.AccessTime),
			ModTime:     timestamp(fe.ModificationTime),
			UniqueID:    fe.UniqueID,
		}
		eaLen, adLen, headerSize = fe.LengthOfExtendedAttributes, fe.LengthOfAllocDescriptors, fileEntrySize

	case CheckTag(b, TagExtendedFileEntry):
		efe := &ExtendedFileEntry{}
		if err := unpack(b, efe); err != nil {
			return nil, err
		}
		e = entry{
			FileType:    efe.FileType,
			ADType:      efe.Flags & adMask,
			Size:        efe.InformationLength,
			UID:         efe.UID,
			GID:         efe.GID,
			Permissions: efe.Permissions,
			LinkCount:   efe.FileLinkCount,
			AccessTime:  timestamp(efe.AccessTime),
			ModTime:     timestamp(efe.ModificationTime),
			UniqueID:    efe.UniqueID,
		}
		eaLen, adLen, headerSize = efe.LengthOfExtendedAttributes, efe.LengthOfAllocDescriptors, extendedFileEntrySize

	default:
		return nil, fmt.Errorf("file entry: %w", ErrBadTag)
	}

	start := headerSize + int(eaLen)
	stop := start + int(adLen)
	if start > len(b) || stop > len(b) || stop < start {
		return nil, fmt.Errorf("allocation descriptors at %d+%d overrun the block: %w", start, adLen, ErrBadTag)
	}

	e.Allocations, e.adErr = parseAllocations(e.ADType, b[start:stop])
	return &e, nil
}

// extent returns the entry's first allocation, which is where directory data
// lives. ok is false when the entry has no allocation at all.
func (e *entry) extent() (a allocation, ok bool, err error) {
	if e.adErr != nil {
		return allocation{}, false, e.adErr
	}
	if len(e.Allocations) == 0 {
		return allocation{}, false, nil
	}
	return e.Allocations[0], true, nil
}

func (e *entry) isDir() bool {
	return e.FileType == FileTypeDirectory
}

// mode maps the UDF owner, group and other permission groups onto fs.FileMode.
func (e *entry) mode() fs.FileMode {
	var m fs.FileMode
	// Each UDF group is five bits wide; the low three match unix rwx.
	for i, group := range []uint{0, 5, 10} {
		bits := (e.Permissions >> group) & 0x07
		m |= fs.FileMode(bits) << (3 * uint(i))
	}
	if e.isDir() {
		m |= fs.ModeDir
	}
	return m
}
