// Package bincue implements the disc source contract over a raw bin image and
// an optional cue sheet describing its tracks.
package bincue

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bgrewell/disc-kit/pkg/consts"
	"github.com/bgrewell/disc-kit/pkg/logging"
	"github.com/bgrewell/disc-kit/pkg/option"
	"github.com/bgrewell/disc-kit/pkg/sector"
	"github.com/bgrewell/disc-kit/pkg/source"
	"github.com/bgrewell/disc-kit/pkg/stream"
)

type initState int

const (
	stateUninitialized initState = iota
	stateInitializing
	stateReady
	stateFailed
)

var errReentrantInit = errors.New("bincue: initialization re-entered")

func init() {
	source.Register(source.DriverBinCue, source.Registration{
		Name:          "bincue",
		Description:   "CDRWIN bin/cue disc image",
		DefaultDevice: consts.DEFAULT_BIN_DEVICE,
		Claims:        Claims,
		Open: func(path string, opts ...option.OpenOption) (source.Driver, error) {
			if isCuePath(path) {
				return OpenCue(path, opts...)
			}
			return Open(path, opts...)
		},
	})
}

// Claims reports whether path looks like a bin image or a cue sheet.
func Claims(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".bin" || ext == ".cue"
}

func isCuePath(path string) bool {
	return strings.HasSuffix(path, "cue") || strings.HasSuffix(path, "CUE")
}

// Image is a bin/cue backed disc source. The track table is built lazily the
// first time any query needs it.
type Image struct {
	stream     stream.Stream
	source     string
	cue        string
	cueFile    string
	tracks     []TrackInfo
	leadout    sector.MSF
	firstTrack source.Track
	hasCue     bool
	sector2336 bool
	useMmap    bool

	state   initState
	initErr error
	logger  *logging.Logger
}

// Open returns an Image for binPath. An empty path selects the default device.
// Nothing is read until the first query.
func Open(binPath string, opts ...option.OpenOption) (*Image, error) {
	o := option.Apply(opts...)
	if binPath == "" {
		binPath = consts.DEFAULT_BIN_DEVICE
	}

	img := &Image{
		source:     binPath,
		firstTrack: 1,
		useMmap:    o.UseMmap,
		logger:     o.Logger.WithName("bincue"),
	}
	if o.CueFile != "" {
		img.cue = o.CueFile
	}
	if err := img.SetArg(source.ArgSector, strconv.Itoa(o.SectorSize)); err != nil {
		return nil, err
	}
	return img, nil
}

// OpenCue opens the image described by cuePath. The bin path is the cue path
// with its trailing "cue" replaced by "bin" (or "CUE" by "BIN"). The image is
// initialized before OpenCue returns.
func OpenCue(cuePath string, opts ...option.OpenOption) (*Image, error) {
	binPath, err := BinPathForCue(cuePath)
	if err != nil {
		return nil, err
	}

	img, err := Open(binPath, append(opts, option.WithCueFile(cuePath))...)
	if err != nil {
		return nil, err
	}
	if err := img.ensureInit(); err != nil {
		img.Release()
		return nil, err
	}
	return img, nil
}

// BinPathForCue derives the bin image name from a cue sheet name.
func BinPathForCue(cuePath string) (string, error) {
	switch {
	case strings.HasSuffix(cuePath, "cue"):
		return strings.TrimSuffix(cuePath, "cue") + "bin", nil
	case strings.HasSuffix(cuePath, "CUE"):
		return strings.TrimSuffix(cuePath, "CUE") + "BIN", nil
	default:
		return "", fmt.Errorf("%s does not end in cue or CUE: %w", cuePath, source.ErrInvalidArgValue)
	}
}

func (img *Image) ensureInit() error {
	switch img.state {
	case stateReady:
		return nil
	case stateFailed:
		return img.initErr
	case stateInitializing:
		return errReentrantInit
	}

	img.state = stateInitializing
	if err := img.initialize(); err != nil {
		img.state = stateFailed
		img.initErr = err
		img.logger.Error(err, "init failed", "source", img.source)
		return err
	}
	return nil
}

func (img *Image) initialize() error {
	if img.cue != "" {
		img.readCue()
	}

	if !img.hasCue {
		// One big track. Track 0 and 1 are the same and start at 00:04:00:
		// two seconds of pregap plus two for the cue information.
		fake := TrackInfo{
			Number:    1,
			BlockSize: img.blockSize(),
			StartMSF:  sector.NewMSF(0, 4, 0),
			Format:    source.FormatXA,
			Green:     true,
		}
		img.tracks = []TrackInfo{fake, fake}
		img.firstTrack = 1
	}

	s, err := stream.Open(img.source, img.useMmap)
	if err != nil {
		return err
	}
	img.stream = s

	// Ready must be set before statSize or the size query would come back here.
	img.state = stateReady

	size, err := img.statSize()
	if err != nil {
		return err
	}
	img.leadout = sector.LSNToMSF(sector.LSN(size))
	img.logger.Debug("image initialized", "source", img.source, "tracks", len(img.tracks), "sectors", size, "leadout", img.leadout.String())
	return nil
}

func (img *Image) readCue() {
	f, err := os.Open(img.cue)
	if err != nil {
		img.logger.Warn("unable to open cue sheet, using a single track", "cue", img.cue, "error", err.Error())
		return
	}
	defer f.Close()

	sheet, err := parseCue(f, img.logger)
	if err != nil {
		img.logger.Warn("unable to read cue sheet, using a single track", "cue", img.cue, "error", err.Error())
		return
	}
	img.cueFile = sheet.file
	img.tracks = sheet.tracks
	img.firstTrack = 1
	img.hasCue = len(sheet.tracks) != 0
}

func (img *Image) blockSize() int {
	if img.sector2336 {
		return consts.M2RAW_SECTOR_SIZE
	}
	return consts.CD_RAW_SECTOR_SIZE
}

// total is the number of real entries in the track table.
func (img *Image) total() int {
	return len(img.tracks)
}

func (img *Image) statSize() (uint32, error) {
	if img.stream == nil {
		return 0, fmt.Errorf("image %s is not open", img.source)
	}
	size, err := img.stream.Size()
	if err != nil {
		return 0, err
	}

	bs := int64(img.blockSize())
	if size%bs != 0 {
		img.logger.Warn("image file not multiple of blocksize", "blocksize", bs, "size", size)
		if size%consts.M2RAW_SECTOR_SIZE == 0 {
			img.logger.Warn("this may be a 2336-type disc image")
		} else if size%consts.CD_RAW_SECTOR_SIZE == 0 {
			img.logger.Warn("this may be a 2352-type disc image")
		}
	}
	return uint32(size / bs), nil
}

// StatSize returns the number of whole sectors in the image.
func (img *Image) StatSize() (uint32, error) {
	if err := img.ensureInit(); err != nil {
		return 0, err
	}
	return img.statSize()
}

func (img *Image) ReadMode2Sector(buf []byte, lsn sector.LSN, form2 bool) error {
	if err := img.ensureInit(); err != nil {
		return err
	}
	if img.stream == nil {
		return source.ErrClosed
	}

	want := consts.M2F1_SECTOR_SIZE
	if form2 {
		want = consts.M2RAW_SECTOR_SIZE
	}
	if len(buf) < want {
		return fmt.Errorf("buffer of %d bytes too small for sector of %d: %w", len(buf), want, source.ErrInvalidArgValue)
	}

	var raw [consts.CD_RAW_SECTOR_SIZE]byte
	bs := img.blockSize()
	target := raw[:bs]
	if img.sector2336 {
		target = raw[consts.CD_SYNC_SIZE+consts.CD_HEADER_SIZE:]
	}
	if err := stream.ReadFull(img.stream, target, int64(lsn)*int64(bs)); err != nil {
		return fmt.Errorf("read sector %d: %w", lsn, err)
	}

	payload := raw[consts.CD_SYNC_SIZE+consts.CD_HEADER_SIZE:]
	if form2 {
		copy(buf, payload[:consts.M2RAW_SECTOR_SIZE])
	} else {
		copy(buf, payload[consts.CD_SUBHEADER_SIZE:consts.CD_SUBHEADER_SIZE+consts.M2F1_SECTOR_SIZE])
	}
	img.logger.Trace("read sector", "lsn", lsn, "form2", form2)
	return nil
}

func (img *Image) ReadMode2Sectors(buf []byte, lsn sector.LSN, form2 bool, count uint) error {
	size := consts.M2F1_SECTOR_SIZE
	if form2 {
		size = consts.M2RAW_SECTOR_SIZE
	}
	if uint(len(buf)) < count*uint(size) {
		return fmt.Errorf("buffer of %d bytes too small for %d sectors: %w", len(buf), count, source.ErrInvalidArgValue)
	}
	for i := uint(0); i < count; i++ {
		off := int(i) * size
		if err := img.ReadMode2Sector(buf[off:off+size], lsn+sector.LSN(i), form2); err != nil {
			return err
		}
	}
	return nil
}

// NumTracks returns the number of tracks in the cue sheet, or 1 when the image
// has none.
func (img *Image) NumTracks() source.Track {
	if err := img.ensureInit(); err != nil {
		return source.InvalidTrack
	}
	if img.hasCue && img.total() > 0 {
		return source.Track(img.total())
	}
	return 1
}

func (img *Image) FirstTrackNum() source.Track {
	if err := img.ensureInit(); err != nil {
		return source.InvalidTrack
	}
	return img.firstTrack
}

func (img *Image) validTrack(track source.Track) bool {
	return track != 0 && int(track) <= img.total()
}

func (img *Image) TrackFormat(track source.Track) source.TrackFormat {
	if err := img.ensureInit(); err != nil {
		return source.FormatError
	}
	if !img.validTrack(track) {
		return source.FormatError
	}
	return img.tracks[track-1].Format
}

func (img *Image) TrackGreen(track source.Track) bool {
	if err := img.ensureInit(); err != nil {
		return false
	}
	if !img.validTrack(track) {
		return false
	}
	return img.tracks[track-1].Green
}

// TrackMSF returns the start of track. source.LeadoutTrack, or the number one
// past the last track, returns the lead-out.
func (img *Image) TrackMSF(track source.Track) (sector.MSF, bool) {
	if err := img.ensureInit(); err != nil {
		return sector.MSF{}, false
	}
	n := int(track)
	if track == source.LeadoutTrack {
		n = img.total() + 1
	}
	switch {
	case n == 0 || n > img.total()+1:
		return sector.MSF{}, false
	case n == img.total()+1:
		return img.leadout, true
	default:
		return img.tracks[n-1].StartMSF, true
	}
}

// TrackTable returns a copy of the track table.
func (img *Image) TrackTable() ([]TrackInfo, error) {
	if err := img.ensureInit(); err != nil {
		return nil, err
	}
	return append([]TrackInfo(nil), img.tracks...), nil
}

// Leadout returns the lead-out address computed from the image size.
func (img *Image) Leadout() (sector.MSF, error) {
	if err := img.ensureInit(); err != nil {
		return sector.MSF{}, err
	}
	return img.leadout, nil
}

// HasCue reports whether a cue sheet with at least one track was read.
func (img *Image) HasCue() bool {
	return img.ensureInit() == nil && img.hasCue
}

// CueImageFile returns the file name given by the cue sheet's FILE line. It is
// informational; the image read is always the configured source.
func (img *Image) CueImageFile() string {
	return img.cueFile
}

// Arg returns the source or cue argument.
func (img *Image) Arg(key string) (string, error) {
	switch key {
	case source.ArgSource:
		return img.source, nil
	case source.ArgCue:
		return img.cue, nil
	default:
		return "", fmt.Errorf("%s: %w", key, source.ErrArgNotApplicable)
	}
}

// SetArg sets source, cue or sector. sector takes "2336" or "2352" and applies
// to every following read.
func (img *Image) SetArg(key, value string) error {
	switch key {
	case source.ArgSource:
		if value == "" {
			return &source.ArgError{Key: key, Value: value, Err: source.ErrInvalidArgValue}
		}
		img.source = value
	case source.ArgCue:
		if value == "" {
			return &source.ArgError{Key: key, Value: value, Err: source.ErrInvalidArgValue}
		}
		img.cue = value
	case source.ArgSector:
		switch value {
		case "2336":
			img.sector2336 = true
		case "2352":
			img.sector2336 = false
		default:
			return &source.ArgError{Key: key, Value: value, Err: source.ErrInvalidArgValue}
		}
	default:
		return &source.ArgError{Key: key, Value: value, Err: source.ErrUnknownArg}
	}
	return nil
}

// EjectMedia does nothing for an image.
func (img *Image) EjectMedia() error {
	return source.ErrNotSupported
}

// Release closes the image stream.
func (img *Image) Release() error {
	if img.stream == nil {
		return nil
	}
	err := img.stream.Close()
	img.stream = nil
	return err
}

var _ source.Driver = (*Image)(nil)
