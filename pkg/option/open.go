package option

import (
	"github.com/bgrewell/disc-kit/pkg/logging"
)

type ExtractionProgressCallback func(
	currentFilename string,
	bytesTransferred int64,
	totalBytes int64,
	currentFileNumber int,
	totalFileCount int,
)

// OpenOptions holds the settings shared by every opener in the module. Each
// backend reads only the fields it understands.
type OpenOptions struct {
	// CueFile is the cue sheet paired with a bin image.
	CueFile string
	// SectorSize is the physical sector size of a bin image, 2336 or 2352.
	SectorSize int
	// UseMmap maps image files into memory instead of reading them through the file descriptor.
	UseMmap bool
	// AnyPartition lets UDF root discovery accept the first partition descriptor it finds.
	AnyPartition bool
	// Partition is the UDF partition number used when AnyPartition is false.
	Partition uint16
	// ExtractionProgressCallback receives progress while file data is copied out of an image.
	ExtractionProgressCallback ExtractionProgressCallback
	Logger                     *logging.Logger
}

type OpenOption func(*OpenOptions)

// DefaultOpenOptions returns the options every opener starts from.
func DefaultOpenOptions() *OpenOptions {
	return &OpenOptions{
		SectorSize:                 2352,
		AnyPartition:               true,
		ExtractionProgressCallback: func(string, int64, int64, int, int) {},
		Logger:                     logging.DefaultLogger(),
	}
}

// Apply builds OpenOptions from the defaults and the given options.
func Apply(opts ...OpenOption) *OpenOptions {
	o := DefaultOpenOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = logging.DefaultLogger()
	}
	if o.ExtractionProgressCallback == nil {
		o.ExtractionProgressCallback = func(string, int64, int64, int, int) {}
	}
	return o
}

// WithExtractionProgress sets a progress callback function that will be called with progress updates.
// Parameters:
// - currentFilename: The name of the file currently being processed.
// - bytesTransferred: The number of bytes transferred so far for the current file.
// - totalBytes: The total number of bytes to be transferred for the current file.
// - currentFileNumber: The index of the current file being processed.
// - totalFileCount: The total number of files to be processed.
func WithExtractionProgress(callback ExtractionProgressCallback) OpenOption {
	return func(o *OpenOptions) {
		o.ExtractionProgressCallback = callback
	}
}

func WithLogger(logger *logging.Logger) OpenOption {
	return func(o *OpenOptions) {
		o.Logger = logger
	}
}

// WithCueFile pairs a bin image with a cue sheet.
func WithCueFile(cue string) OpenOption {
	return func(o *OpenOptions) {
		o.CueFile = cue
	}
}

// WithSectorSize selects 2336 or 2352 byte physical sectors. Other values are
// rejected when the backend applies them.
func WithSectorSize(size int) OpenOption {
	return func(o *OpenOptions) {
		o.SectorSize = size
	}
}

func WithMmap(useMmap bool) OpenOption {
	return func(o *OpenOptions) {
		o.UseMmap = useMmap
	}
}

// WithPartition restricts UDF root discovery to one partition number.
func WithPartition(partition uint16) OpenOption {
	return func(o *OpenOptions) {
		o.AnyPartition = false
		o.Partition = partition
	}
}
