package source

import (
	"fmt"
	"sync"

	"github.com/bgrewell/disc-kit/pkg/consts"
	"github.com/bgrewell/disc-kit/pkg/logging"
	"github.com/bgrewell/disc-kit/pkg/sector"
)

// Disc is the generic handle over a backend. It owns the Driver and releases it
// exactly once.
type Disc struct {
	driver   Driver
	driverID DriverID
	logger   *logging.Logger

	closeOnce sync.Once
	closeErr  error
	closed    bool
}

// New wraps a driver in a handle.
func New(id DriverID, d Driver, logger *logging.Logger) *Disc {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Disc{driver: d, driverID: id, logger: logger}
}

// DriverID returns the id of the backend behind the handle.
func (d *Disc) DriverID() DriverID {
	return d.driverID
}

// Driver exposes the backend for callers that need backend specific methods.
func (d *Disc) Driver() Driver {
	return d.driver
}

// Source returns the configured source argument, empty if the backend has none.
func (d *Disc) Source() string {
	s, err := d.Arg(ArgSource)
	if err != nil {
		return ""
	}
	return s
}

func (d *Disc) ReadMode2Sector(buf []byte, lsn sector.LSN, form2 bool) error {
	if d.closed {
		return ErrClosed
	}
	return d.driver.ReadMode2Sector(buf, lsn, form2)
}

func (d *Disc) ReadMode2Sectors(buf []byte, lsn sector.LSN, form2 bool, count uint) error {
	if d.closed {
		return ErrClosed
	}
	return d.driver.ReadMode2Sectors(buf, lsn, form2, count)
}

// ReadDataSectors reads count sectors of blockSize user data. 2048 selects
// form 1 reads; 2324 and 2336 select form 2 reads.
func (d *Disc) ReadDataSectors(buf []byte, lsn sector.LSN, blockSize int, count uint) error {
	if d.closed {
		return ErrClosed
	}
	switch blockSize {
	case consts.M2F1_SECTOR_SIZE:
		return d.driver.ReadMode2Sectors(buf, lsn, false, count)
	case consts.M2RAW_SECTOR_SIZE:
		return d.driver.ReadMode2Sectors(buf, lsn, true, count)
	case consts.M2F2_SECTOR_SIZE:
		raw := make([]byte, consts.M2RAW_SECTOR_SIZE)
		for i := uint(0); i < count; i++ {
			if err := d.driver.ReadMode2Sector(raw, lsn+sector.LSN(i), true); err != nil {
				return err
			}
			off := int(i) * consts.M2F2_SECTOR_SIZE
			copy(buf[off:off+consts.M2F2_SECTOR_SIZE], raw[consts.CD_SUBHEADER_SIZE:])
		}
		return nil
	default:
		return fmt.Errorf("unsupported data block size %d: %w", blockSize, ErrNotSupported)
	}
}

func (d *Disc) NumTracks() Track {
	if d.closed {
		return InvalidTrack
	}
	return d.driver.NumTracks()
}

func (d *Disc) FirstTrackNum() Track {
	if d.closed {
		return InvalidTrack
	}
	return d.driver.FirstTrackNum()
}

func (d *Disc) TrackFormat(track Track) TrackFormat {
	if d.closed {
		return FormatError
	}
	return d.driver.TrackFormat(track)
}

func (d *Disc) TrackGreen(track Track) bool {
	if d.closed {
		return false
	}
	return d.driver.TrackGreen(track)
}

func (d *Disc) TrackMSF(track Track) (sector.MSF, bool) {
	if d.closed {
		return sector.MSF{}, false
	}
	return d.driver.TrackMSF(track)
}

// TrackLSN converts a track start address to a logical sector number. Tracks
// outside the track table, lead-out aside, fail with ErrInvalidTrack.
func (d *Disc) TrackLSN(track Track) (sector.LSN, error) {
	if d.closed {
		return 0, ErrClosed
	}
	msf, ok := d.driver.TrackMSF(track)
	if !ok {
		return 0, fmt.Errorf("track %d: %w", track, ErrInvalidTrack)
	}
	return sector.MSFToLSN(msf), nil
}

func (d *Disc) Arg(key string) (string, error) {
	if d.closed {
		return "", ErrClosed
	}
	return d.driver.Arg(key)
}

func (d *Disc) SetArg(key, value string) error {
	if d.closed {
		return ErrClosed
	}
	return d.driver.SetArg(key, value)
}

func (d *Disc) StatSize() (uint32, error) {
	if d.closed {
		return 0, ErrClosed
	}
	return d.driver.StatSize()
}

func (d *Disc) EjectMedia() error {
	if d.closed {
		return ErrClosed
	}
	return d.driver.EjectMedia()
}

// Close releases the backend. Further calls return the result of the first.
func (d *Disc) Close() error {
	d.closeOnce.Do(func() {
		d.closed = true
		d.closeErr = d.driver.Release()
		d.logger.Debug("released disc handle", "driver", d.driverID)
	})
	return d.closeErr
}
