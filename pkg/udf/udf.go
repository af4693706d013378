// Package udf reads ECMA-167 (UDF) volumes from a byte stream or a disc source.
package udf

import (
	"fmt"
	"io"
	"strings"

	"github.com/bgrewell/disc-kit/pkg/consts"
	"github.com/bgrewell/disc-kit/pkg/encoding"
	"github.com/bgrewell/disc-kit/pkg/logging"
	"github.com/bgrewell/disc-kit/pkg/option"
	"github.com/bgrewell/disc-kit/pkg/source"
	"github.com/bgrewell/disc-kit/pkg/stream"
)

// Open opens the UDF volume at path. Paths a disc source driver claims are read
// through that driver, everything else is read as a plain image stream.
func Open(path string, opts ...option.OpenOption) (*UDF, error) {
	o := option.Apply(opts...)

	if source.IsDevice(path, source.DriverUnknown) {
		d, err := source.Open(path, source.DriverUnknown, opts...)
		if err != nil {
			return nil, err
		}
		u, err := newUDF(&discDevice{d: d, owned: true}, o)
		if err != nil {
			d.Close()
			return nil, err
		}
		return u, nil
	}

	s, err := stream.Open(path, o.UseMmap)
	if err != nil {
		return nil, err
	}
	u, err := newUDF(&streamDevice{s: s, owned: true}, o)
	if err != nil {
		s.Close()
		return nil, err
	}
	return u, nil
}

// OpenReader reads a volume from r. Closing the UDF does not close r.
func OpenReader(r io.ReaderAt, opts ...option.OpenOption) (*UDF, error) {
	return newUDF(&streamDevice{s: stream.NewReaderAt(r, 0, "reader")}, option.Apply(opts...))
}

// OpenStream reads a volume from s. Closing the UDF closes s.
func OpenStream(s stream.Stream, opts ...option.OpenOption) (*UDF, error) {
	return newUDF(&streamDevice{s: s, owned: true}, option.Apply(opts...))
}

// OpenDisc reads a volume through a disc source using form 1 sectors. Closing
// the UDF closes d.
func OpenDisc(d *source.Disc, opts ...option.OpenOption) (*UDF, error) {
	return newUDF(&discDevice{d: d, owned: true}, option.Apply(opts...))
}

// UDF is an open volume.
type UDF struct {
	dev    blockDevice
	logger *logging.Logger

	anchor    AnchorVolumeDescriptorPointer
	pvd       PrimaryVolumeDescriptor
	pvdSector uint32
	nsr       string

	// Filled in by Root.
	partitionNumber uint16
	partitionStart  uint32
	lvdSector       uint32
	fsdOffset       uint32
	fileSet         *FileSetDescriptor

	anyPartition bool
	partition    uint16
	progress     option.ExtractionProgressCallback
}

func newUDF(dev blockDevice, o *option.OpenOptions) (*UDF, error) {
	u := &UDF{
		dev:          dev,
		logger:       o.Logger.WithName("udf"),
		anyPartition: o.AnyPartition,
		partition:    o.Partition,
		progress:     o.ExtractionProgressCallback,
	}

	u.nsr = u.recognitionSequence()

	block := make([]byte, consts.UDF_BLOCKSIZE)
	if err := u.dev.readBlocks(block, consts.UDF_ANCHOR_SECTOR, 1); err != nil {
		return nil, fmt.Errorf("failed to read anchor volume descriptor pointer: %w", err)
	}
	if !CheckTag(block, TagAnchorVolume) {
		return nil, fmt.Errorf("anchor volume descriptor pointer at sector %d: %w", consts.UDF_ANCHOR_SECTOR, ErrBadTag)
	}
	if err := unpack(block, &u.anchor); err != nil {
		return nil, err
	}

	start, end := u.mainSequence()
	u.logger.Debug("main volume descriptor sequence", "start", start, "end", end)
	for lsn := start; lsn < end; lsn++ {
		if err := u.dev.readBlocks(block, lsn, 1); err != nil {
			return nil, fmt.Errorf("failed to read volume descriptor at sector %d: %w", lsn, err)
		}
		if CheckTag(block, TagPrimaryVolume) {
			if err := unpack(block, &u.pvd); err != nil {
				return nil, err
			}
			u.pvdSector = lsn
			u.logger.Debug("found primary volume descriptor", "sector", lsn, "volume", u.GetVolumeID())
			return u, nil
		}
	}

	return nil, fmt.Errorf("primary volume descriptor: %w", ErrNotFound)
}

// mainSequence returns the main volume descriptor sequence as [start, end).
func (u *UDF) mainSequence() (uint32, uint32) {
	start := u.anchor.MainVDSLocation
	if u.anchor.MainVDSLength == 0 {
		return start, start
	}
	return start, start + (u.anchor.MainVDSLength-1)/consts.UDF_BLOCKSIZE
}

// recognitionSequence looks for the NSR descriptor of the volume recognition
// sequence starting at sector 16. Its absence is logged, not fatal.
func (u *UDF) recognitionSequence() string {
	block := make([]byte, consts.UDF_BLOCKSIZE)
	for lsn := uint32(16); lsn < 32; lsn++ {
		if err := u.dev.readBlocks(block, lsn, 1); err != nil {
			break
		}
		id := string(block[1:6])
		switch id {
		case StandardIDBEA01:
			continue
		case StandardIDNSR02, StandardIDNSR03:
			u.logger.Trace("found volume recognition sequence", "sector", lsn, "identifier", id)
			return id
		}
		break
	}
	u.logger.Debug("no NSR descriptor in volume recognition sequence")
	return ""
}

// Close releases the backing stream or disc source if the UDF owns it.
func (u *UDF) Close() error {
	if u.dev == nil {
		return nil
	}
	err := u.dev.Close()
	u.dev = nil
	return err
}

// ReadSectors reads blocks logical blocks starting at lsn into buf and returns
// the number of blocks read.
func (u *UDF) ReadSectors(buf []byte, lsn uint32, blocks uint32) (int, error) {
	if u.dev == nil {
		return 0, fmt.Errorf("volume: %w", source.ErrClosed)
	}
	if len(buf) < int(blocks)*consts.UDF_BLOCKSIZE {
		return 0, fmt.Errorf("buffer of %d bytes too small for %d blocks", len(buf), blocks)
	}
	if err := u.dev.readBlocks(buf, lsn, blocks); err != nil {
		return 0, err
	}
	return int(blocks), nil
}

func (u *UDF) readBlock(lsn uint32) ([]byte, error) {
	block := make([]byte, consts.UDF_BLOCKSIZE)
	if _, err := u.ReadSectors(block, lsn, 1); err != nil {
		return nil, err
	}
	return block, nil
}

// readEntry reads and decodes the File Entry at the absolute sector lsn.
func (u *UDF) readEntry(lsn uint32) (*entry, error) {
	block, err := u.readBlock(lsn)
	if err != nil {
		return nil, err
	}
	e, err := parseEntry(block)
	if err != nil {
		return nil, fmt.Errorf("file entry at sector %d: %w", lsn, err)
	}
	return e, nil
}

// Root locates the partition and logical volume descriptors and returns the
// root directory. With anyPartition false only the partition numbered
// partition is accepted.
func (u *UDF) Root(anyPartition bool, partition uint16) (*File, error) {
	start, end := u.mainSequence()

	var (
		foundPartition bool
		foundLVD       bool
		badBlockSize   uint32
	)
	for lsn := start; lsn < end; lsn++ {
		block, err := u.readBlock(lsn)
		if err != nil {
			return nil, fmt.Errorf("failed to read volume descriptor at sector %d: %w", lsn, err)
		}

		switch {
		case CheckTag(block, TagPartition):
			pd := &PartitionDescriptor{}
			if err := unpack(block, pd); err != nil {
				return nil, err
			}
			if anyPartition || pd.Number == partition {
				u.partitionNumber = pd.Number
				u.partitionStart = pd.StartingLocation
				foundPartition = true
				u.logger.Trace("found partition descriptor", "sector", lsn, "number", pd.Number, "start", pd.StartingLocation)
			}
		case CheckTag(block, TagLogicalVolume):
			lvd := &LogicalVolumeDescriptor{}
			if err := unpack(block, lvd); err != nil {
				return nil, err
			}
			if lvd.LogicalBlockSize != consts.UDF_BLOCKSIZE {
				badBlockSize = lvd.LogicalBlockSize
				u.logger.Warn("ignoring logical volume descriptor", "sector", lsn, "blocksize", lvd.LogicalBlockSize)
				continue
			}
			u.lvdSector = lsn
			u.fsdOffset = lvd.FileSetLocation
			foundLVD = true
			u.logger.Trace("found logical volume descriptor", "sector", lsn, "fsd", lvd.FileSetLocation)
		}
		if foundPartition && foundLVD {
			break
		}
	}

	if !foundPartition {
		return nil, fmt.Errorf("partition descriptor: %w", ErrNotFound)
	}
	if !foundLVD {
		if badBlockSize != 0 {
			return nil, fmt.Errorf("logical volume descriptor with block size %d: %w: %w", badBlockSize, ErrBlockSize, ErrNotFound)
		}
		return nil, fmt.Errorf("logical volume descriptor: %w", ErrNotFound)
	}

	fsdSector := u.partitionStart + u.fsdOffset
	block, err := u.readBlock(fsdSector)
	if err != nil {
		return nil, fmt.Errorf("failed to read file set descriptor: %w", err)
	}
	if !CheckTag(block, TagFileSet) {
		return nil, fmt.Errorf("file set descriptor at sector %d: %w: %w", fsdSector, ErrBadTag, ErrNotFound)
	}
	fsd := &FileSetDescriptor{}
	if err := unpack(block, fsd); err != nil {
		return nil, err
	}
	u.fileSet = fsd

	rootSector := u.partitionStart + fsd.RootICBLocation
	root, err := u.readEntry(rootSector)
	if err != nil {
		return nil, fmt.Errorf("root directory: %w: %w", err, ErrNotFound)
	}
	return u.newFile(root, "/", true, false)
}

// DefaultRoot returns the root of the partition selected by the open options.
func (u *UDF) DefaultRoot() (*File, error) {
	return u.Root(u.anyPartition, u.partition)
}

// FindFile resolves path, split on '/' and '\', from the root. The returned
// handle is positioned on the matching entry. An empty path returns the root.
func (u *UDF) FindFile(path string, anyPartition bool, partition uint16) (*File, error) {
	root, err := u.Root(anyPartition, partition)
	if err != nil {
		return nil, err
	}

	tokens := strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' })
	if len(tokens) == 0 {
		return root, nil
	}

	found, err := u.traverse(root, tokens)
	if found != root {
		root.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return found, nil
}

// OpenDir resolves path like FindFile and returns a fresh handle on the
// directory it names, ready for iteration.
func (u *UDF) OpenDir(path string, anyPartition bool, partition uint16) (*File, error) {
	f, err := u.FindFile(path, anyPartition, partition)
	if err != nil {
		return nil, err
	}
	if f.state != iterEntry {
		return f, nil
	}
	defer f.Close()
	if !f.IsDir() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotDirectory)
	}
	return f.Sub()
}

func (u *UDF) traverse(dir *File, tokens []string) (*File, error) {
	for dir.Next() {
		if dir.Name() != tokens[0] {
			continue
		}
		if len(tokens) == 1 {
			return dir, nil
		}
		if !dir.IsDir() {
			continue
		}

		sub, err := dir.Sub()
		if err != nil {
			u.logger.Debug("cannot descend", "name", dir.Name(), "error", err.Error())
			continue
		}
		found, err := u.traverse(sub, tokens[1:])
		if found != sub {
			sub.Close()
		}
		return found, err
	}
	if err := dir.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNotFound
}

// GetVolumeID returns the volume identifier from the primary volume descriptor.
func (u *UDF) GetVolumeID() string {
	return encoding.DecodeDString(u.pvd.VolumeIdentifier[:])
}

// GetVolumeSetID returns the volume set identifier from the primary volume descriptor.
func (u *UDF) GetVolumeSetID() string {
	return encoding.DecodeDString(u.pvd.VolumeSetIdentifier[:])
}

// GetFileSetID returns the file set identifier. It is empty until Root has run.
func (u *UDF) GetFileSetID() string {
	if u.fileSet == nil {
		return ""
	}
	return encoding.DecodeDString(u.fileSet.FileSetIdentifier[:])
}

// GetLogicalVolumeID returns the logical volume identifier. It is empty until Root has run.
func (u *UDF) GetLogicalVolumeID() string {
	if u.fileSet == nil {
		return ""
	}
	return encoding.DecodeDString(u.fileSet.LogicalVolumeIdentifier[:])
}

// GetNSRIdentifier returns NSR02 or NSR03, or an empty string when the volume
// recognition sequence was not found.
func (u *UDF) GetNSRIdentifier() string {
	return u.nsr
}

func (u *UDF) PVDSector() uint32 {
	return u.pvdSector
}

func (u *UDF) PartitionNumber() uint16 {
	return u.partitionNumber
}

func (u *UDF) PartitionStart() uint32 {
	return u.partitionStart
}

func (u *UDF) SetLogger(logger *logging.Logger) {
	u.logger = logger
}

func (u *UDF) GetLogger() *logging.Logger {
	return u.logger
}
