package consts

const (
	// CD sync pattern size at the start of every raw sector.
	CD_SYNC_SIZE = 12

	// CD sector header size (MSF address + mode byte).
	CD_HEADER_SIZE = 4

	// Mode 2 XA subheader size (recorded twice, 4 bytes each).
	CD_SUBHEADER_SIZE = 8

	// Full raw sector size: sync + header + 2336 payload bytes.
	CD_RAW_SECTOR_SIZE = 2352

	// Mode 2 raw payload: subheader + form 2 data + EDC.
	M2RAW_SECTOR_SIZE = 2336

	// Mode 2 form 1 user data size.
	M2F1_SECTOR_SIZE = 2048

	// Mode 2 form 2 user data size.
	M2F2_SECTOR_SIZE = 2324

	// Number of sectors in the lead-in pregap. LBA = LSN + CD_PREGAP_SECTORS.
	CD_PREGAP_SECTORS = 150

	// Frames (sectors) per second of disc time.
	CD_FRAMES_PER_SEC = 75

	// Seconds per minute of disc time.
	CD_SECS_PER_MIN = 60

	// Highest track number a disc can carry.
	CD_MAX_TRACKS = 99

	// Default image name used by the bin/cue backend when no source is given.
	DEFAULT_BIN_DEVICE = "videocd.bin"

	// UDF logical block size. Only 2048 byte volumes are supported.
	UDF_BLOCKSIZE = 2048

	// Sector holding the first Anchor Volume Descriptor Pointer.
	UDF_ANCHOR_SECTOR = 256

	// Mask applied to extent lengths; the top two bits carry the extent type.
	UDF_LENGTH_MASK = 0x3fffffff

	// Size of a descriptor tag.
	UDF_TAG_SIZE = 16
)
