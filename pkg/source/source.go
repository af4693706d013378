// Package source defines the disc source contract: the set of operations every
// backend, image file or device, provides so that callers can read sectors and
// inspect the track layout without knowing what sits underneath.
package source

import (
	"errors"
	"fmt"

	"github.com/bgrewell/disc-kit/pkg/sector"
)

// Track is a 1-based track number.
type Track uint8

const (
	// InvalidTrack is returned by track queries that cannot be answered.
	InvalidTrack Track = 0xFF
	// LeadoutTrack selects the lead-out in TrackMSF.
	LeadoutTrack Track = 0xAA
)

// TrackFormat describes the sector layout of a track.
type TrackFormat int

const (
	FormatAudio TrackFormat = iota
	// FormatCDI covers mode 1 tracks.
	FormatCDI
	// FormatXA covers mode 2 XA tracks.
	FormatXA
	FormatError
)

func (f TrackFormat) String() string {
	switch f {
	case FormatAudio:
		return "audio"
	case FormatCDI:
		return "mode1"
	case FormatXA:
		return "mode2-xa"
	default:
		return "error"
	}
}

// Recognized argument keys. Backends may support a subset.
const (
	ArgSource = "source"
	ArgCue    = "cue"
	ArgSector = "sector"
)

var (
	// ErrNotSupported is returned by operations a backend cannot perform, such as ejecting an image.
	ErrNotSupported = errors.New("operation not supported by this driver")
	// ErrArgNotApplicable is returned by Arg for keys the backend does not know.
	ErrArgNotApplicable = errors.New("argument not applicable")
	// ErrUnknownArg is returned by SetArg for keys the backend does not know.
	ErrUnknownArg = errors.New("unknown argument")
	// ErrInvalidArgValue is returned by SetArg when a known key gets a value it cannot take.
	ErrInvalidArgValue = errors.New("invalid argument value")
	// ErrNoDriver is returned when no registered driver can open a path.
	ErrNoDriver = errors.New("no driver available")
	// ErrInvalidTrack is returned when a track number is outside the track table.
	ErrInvalidTrack = errors.New("invalid track number")
	// ErrClosed is returned by operations on a released handle.
	ErrClosed = errors.New("disc handle closed")
)

// ArgError describes a rejected SetArg call.
type ArgError struct {
	Key   string
	Value string
	Err   error
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("set %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *ArgError) Unwrap() error {
	return e.Err
}

// Driver is the capability table a backend implements. Track numbers are
// 1-based. Methods that cannot initialise the backend report InvalidTrack,
// FormatError or false rather than panicking.
type Driver interface {
	// ReadMode2Sector reads one sector. form2 selects the M2RAW_SECTOR_SIZE
	// payload, otherwise the 2048 byte form 1 user data is returned.
	ReadMode2Sector(buf []byte, lsn sector.LSN, form2 bool) error
	// ReadMode2Sectors reads count consecutive sectors into buf.
	ReadMode2Sectors(buf []byte, lsn sector.LSN, form2 bool, count uint) error
	// NumTracks returns the number of tracks, 1 when the backend has no track table.
	NumTracks() Track
	// FirstTrackNum returns the number of the first track.
	FirstTrackNum() Track
	TrackFormat(track Track) TrackFormat
	// TrackGreen reports whether the track's sectors carry their own sync, header and subheader.
	TrackGreen(track Track) bool
	// TrackMSF returns the start address of a track. LeadoutTrack resolves to the lead-out.
	TrackMSF(track Track) (sector.MSF, bool)
	Arg(key string) (string, error)
	SetArg(key, value string) error
	// StatSize returns the size of the medium in sectors.
	StatSize() (uint32, error)
	EjectMedia() error
	// Release frees every resource the backend owns. It is called once by the handle owner.
	Release() error
}
