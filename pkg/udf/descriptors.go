package udf

import (
	"time"

	"github.com/bgrewell/disc-kit/pkg/encoding"
)

// AnchorVolumeDescriptorPointer is found at sector 256.
type AnchorVolumeDescriptorPointer struct {
	TagData            [16]byte
	MainVDSLength      uint32 `struc:"little"`
	MainVDSLocation    uint32 `struc:"little"`
	ReserveVDSLength   uint32 `struc:"little"`
	ReserveVDSLocation uint32 `struc:"little"`
}

// PrimaryVolumeDescriptor carries the volume and volume set identifiers.
type PrimaryVolumeDescriptor struct {
	TagData                        [16]byte
	VolumeDescriptorSequenceNumber uint32 `struc:"little"`
	PrimaryVolumeDescriptorNumber  uint32 `struc:"little"`
	VolumeIdentifier               [32]byte
	VolumeSequenceNumber           uint16 `struc:"little"`
	MaximumVolumeSequenceNumber    uint16 `struc:"little"`
	InterchangeLevel               uint16 `struc:"little"`
	MaximumInterchangeLevel        uint16 `struc:"little"`
	CharacterSetList               uint32 `struc:"little"`
	MaximumCharacterSetList        uint32 `struc:"little"`
	VolumeSetIdentifier            [128]byte
	DescriptorCharacterSet         [64]byte
	ExplanatoryCharacterSet        [64]byte
	VolumeAbstract                 [8]byte
	VolumeCopyrightNotice          [8]byte
	ApplicationIdentifier          [32]byte
	RecordingDateAndTime           [12]byte
	ImplementationIdentifier       [32]byte
	ImplementationUse              [64]byte
	PredecessorVDSLocation         uint32 `struc:"little"`
	Flags                          uint16 `struc:"little"`
	Reserved                       [22]byte
}

// PartitionDescriptor locates a partition on the medium.
type PartitionDescriptor struct {
	TagData                        [16]byte
	VolumeDescriptorSequenceNumber uint32 `struc:"little"`
	Flags                          uint16 `struc:"little"`
	Number                         uint16 `struc:"little"`
	Contents                       [32]byte
	ContentsUse                    [128]byte
	AccessType                     uint32 `struc:"little"`
	StartingLocation               uint32 `struc:"little"`
	Length                         uint32 `struc:"little"`
	ImplementationIdentifier       [32]byte
	ImplementationUse              [128]byte
	Reserved                       [156]byte
}

// LogicalVolumeDescriptor points at the File Set Descriptor.
type LogicalVolumeDescriptor struct {
	TagData                        [16]byte
	VolumeDescriptorSequenceNumber uint32 `struc:"little"`
	DescriptorCharacterSet         [64]byte
	LogicalVolumeIdentifier        [128]byte
	LogicalBlockSize               uint32 `struc:"little"`
	DomainIdentifier               [32]byte
	FileSetLength                  uint32 `struc:"little"`
	FileSetLocation                uint32 `struc:"little"`
	FileSetPartition               uint16 `struc:"little"`
	FileSetImplementationUse       [6]byte
	MapTableLength                 uint32 `struc:"little"`
	NumberOfPartitionMaps          uint32 `struc:"little"`
	ImplementationIdentifier       [32]byte
	ImplementationUse              [128]byte
	IntegritySequenceExtent        [8]byte
}

// FileSetDescriptor points at the root directory ICB.
type FileSetDescriptor struct {
	TagData                   [16]byte
	RecordingDateAndTime      [12]byte
	InterchangeLevel          uint16 `struc:"little"`
	MaximumInterchangeLevel   uint16 `struc:"little"`
	CharacterSetList          uint32 `struc:"little"`
	MaximumCharacterSetList   uint32 `struc:"little"`
	FileSetNumber             uint32 `struc:"little"`
	FileSetDescriptorNumber   uint32 `struc:"little"`
	LogicalVolumeCharacterSet [64]byte
	LogicalVolumeIdentifier   [128]byte
	FileSetCharacterSet       [64]byte
	FileSetIdentifier         [32]byte
	CopyrightFileIdentifier   [32]byte
	AbstractFileIdentifier    [32]byte
	RootICBLength             uint32 `struc:"little"`
	RootICBLocation           uint32 `struc:"little"`
	RootICBPartition          uint16 `struc:"little"`
	RootICBImplementationUse  [6]byte
	DomainIdentifier          [32]byte
	NextExtent                [16]byte
	SystemStreamDirectoryICB  [16]byte
	Reserved                  [32]byte
}

// FileEntry is the fixed part of an ECMA-167 File Entry (tag 261).
type FileEntry struct {
	TagData                    [16]byte
	PriorRecordedEntries       uint32 `struc:"little"`
	StrategyType               uint16 `struc:"little"`
	StrategyParameter          [2]byte
	MaximumEntries             uint16 `struc:"little"`
	Reserved                   uint8
	FileType                   uint8
	ParentICBLocation          uint32 `struc:"little"`
	ParentICBPartition         uint16 `struc:"little"`
	Flags                      uint16 `struc:"little"`
	UID                        uint32 `struc:"little"`
	GID                        uint32 `struc:"little"`
	Permissions                uint32 `struc:"little"`
	FileLinkCount              uint16 `struc:"little"`
	RecordFormat               uint8
	RecordDisplayAttributes    uint8
	RecordLength               uint32 `struc:"little"`
	InformationLength          uint64 `struc:"little"`
	LogicalBlocksRecorded      uint64 `struc:"little"`
	AccessTime                 [12]byte
	ModificationTime           [12]byte
	AttributeTime              [12]byte
	Checkpoint                 uint32 `struc:"little"`
	ExtendedAttributeICB       [16]byte
	ImplementationIdentifier   [32]byte
	UniqueID                   uint64 `struc:"little"`
	LengthOfExtendedAttributes uint32 `struc:"little"`
	LengthOfAllocDescriptors   uint32 `struc:"little"`
}

// ExtendedFileEntry is the fixed part of an Extended File Entry (tag 266).
type ExtendedFileEntry struct {
	TagData                    [16]byte
	PriorRecordedEntries       uint32 `struc:"little"`
	StrategyType               uint16 `struc:"little"`
	StrategyParameter          [2]byte
	MaximumEntries             uint16 `struc:"little"`
	Reserved                   uint8
	FileType                   uint8
	ParentICBLocation          uint32 `struc:"little"`
	ParentICBPartition         uint16 `struc:"little"`
	Flags                      uint16 `struc:"little"`
	UID                        uint32 `struc:"little"`
	GID                        uint32 `struc:"little"`
	Permissions                uint32 `struc:"little"`
	FileLinkCount              uint16 `struc:"little"`
	RecordFormat               uint8
	RecordDisplayAttributes    uint8
	RecordLength               uint32 `struc:"little"`
	InformationLength          uint64 `struc:"little"`
	ObjectSize                 uint64 `struc:"little"`
	LogicalBlocksRecorded      uint64 `struc:"little"`
	AccessTime                 [12]byte
	ModificationTime           [12]byte
	CreationTime               [12]byte
	AttributeTime              [12]byte
	Checkpoint                 uint32 `struc:"little"`
	Reserved2                  uint32 `struc:"little"`
	ExtendedAttributeICB       [16]byte
	StreamDirectoryICB         [16]byte
	ImplementationIdentifier   [32]byte
	UniqueID                   uint64 `struc:"little"`
	LengthOfExtendedAttributes uint32 `struc:"little"`
	LengthOfAllocDescriptors   uint32 `struc:"little"`
}

const (
	fileEntrySize         = 176
	extendedFileEntrySize = 216
)

// timestamp decodes a fixed size timestamp field.
func timestamp(b [encoding.TimestampSize]byte) time.Time {
	t, _ := encoding.DecodeTimestamp(b[:])
	return t
}
