package udf

// Descriptor tag identifiers.
const (
	TagPrimaryVolume     = 1
	TagAnchorVolume      = 2
	TagPartition         = 5
	TagLogicalVolume     = 6
	TagTerminating       = 8
	TagFileSet           = 256
	TagFileIdentifier    = 257
	TagFileEntry         = 261
	TagExtendedFileEntry = 266
)

// File characteristics of a File Identifier Descriptor.
const (
	CharHidden    = 0x01
	CharDirectory = 0x02
	CharDeleted   = 0x04
	CharParent    = 0x08
)

// ICB file types.
const (
	FileTypeDirectory = 4
	FileTypeFile      = 5
)

// Allocation descriptor encodings, selected by the low bits of the ICB flags.
const (
	ADShort    = 0
	ADLong     = 1
	ADExtended = 2
	ADInICB    = 3

	adMask = 0x07
)

// Volume recognition identifiers.
const (
	StandardIDBEA01 = "BEA01"
	StandardIDNSR02 = "NSR02"
	StandardIDNSR03 = "NSR03"
	StandardIDTEA01 = "TEA01"
)
