package bincue

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/bgrewell/disc-kit/pkg/consts"
	"github.com/bgrewell/disc-kit/pkg/logging"
	"github.com/bgrewell/disc-kit/pkg/sector"
	"github.com/bgrewell/disc-kit/pkg/source"
)

// TrackFlags are the sub-channel control bits a cue sheet can set with FLAGS.
type TrackFlags uint8

const (
	FlagPreEmphasis TrackFlags = 1 << iota
	FlagCopyPermitted
	FlagFourChannel
	FlagSCMS
)

func (f TrackFlags) String() string {
	var parts []string
	if f&FlagCopyPermitted != 0 {
		parts = append(parts, "DCP")
	}
	if f&FlagFourChannel != 0 {
		parts = append(parts, "4CH")
	}
	if f&FlagPreEmphasis != 0 {
		parts = append(parts, "PRE")
	}
	if f&FlagSCMS != 0 {
		parts = append(parts, "SCMS")
	}
	return strings.Join(parts, " ")
}

// TrackInfo is one entry of the track table.
type TrackInfo struct {
	Number     uint8              `json:"number"`
	BlockSize  int                `json:"block_size"`
	StartMSF   sector.MSF         `json:"start_msf"`
	StartIndex int                `json:"start_index"`
	NumIndices int                `json:"num_indices"`
	Flags      TrackFlags         `json:"flags"`
	Format     source.TrackFormat `json:"format"`
	Green      bool               `json:"green"`
}

type cueSheet struct {
	file   string
	tracks []TrackInfo
}

// parseCue reads a cue sheet. Each line is matched against FILE, TRACK MODE2,
// TRACK MODE1, TRACK AUDIO, INDEX and FLAGS in that order; anything else is
// skipped.
func parseCue(r io.Reader, logger *logging.Logger) (*cueSheet, error) {
	sheet := &cueSheet{}
	scanner := bufio.NewScanner(r)

	var (
		trackNum  int
		blockSize int
		seenIndex bool
		lineNo    int
	)

	addTrack := func(format source.TrackFormat, green bool) {
		if len(sheet.tracks) >= consts.CD_MAX_TRACKS {
			logger.Warn("too many tracks in cue sheet, ignoring", "line", lineNo, "track", trackNum)
			return
		}
		sheet.tracks = append(sheet.tracks, TrackInfo{
			Number:    uint8(trackNum),
			BlockSize: blockSize,
			Format:    format,
			Green:     green,
		})
		seenIndex = false
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimLeft(scanner.Text(), " \t\r\v\f")

		var (
			idx, min, sec, frame int
			size                 int
		)

		switch {
		case strings.HasPrefix(line, `FILE "`):
			if name, _, ok := strings.Cut(line[len(`FILE "`):], `"`); ok {
				sheet.file = name
				logger.Trace("cue sheet names image file", "file", name)
			}

		case scanf(line, "TRACK %d MODE2/%d", &trackNum, &size) == 2:
			blockSize = size
			addTrack(source.FormatXA, true)

		case scanf(line, "TRACK %d MODE1/%d", &trackNum, &size) == 2:
			blockSize = size
			addTrack(source.FormatCDI, false)

		case scanf(line, "TRACK %d AUDIO", &trackNum) == 1:
			if blockSize == 0 {
				blockSize = consts.CD_RAW_SECTOR_SIZE
			}
			addTrack(source.FormatAudio, false)

		case scanf(line, "INDEX %d %d:%d:%d", &idx, &min, &sec, &frame) == 4:
			if len(sheet.tracks) == 0 {
				logger.Debug("INDEX before first TRACK ignored", "line", lineNo)
				continue
			}
			t := &sheet.tracks[len(sheet.tracks)-1]
			if !seenIndex && idx != 0 {
				// Cue times omit the 150 sector pregap, add its two seconds back.
				t.StartIndex = idx
				t.StartMSF = sector.MSF{
					M: sector.ToBCD8(min),
					S: sector.ToBCD8(sec + 2),
					F: sector.ToBCD8(frame),
				}
				seenIndex = true
			}
			t.NumIndices++

		case strings.HasPrefix(line, "FLAGS"):
			if len(sheet.tracks) == 0 {
				continue
			}
			sheet.tracks[len(sheet.tracks)-1].Flags |= parseFlags(strings.Fields(line)[1:])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading cue sheet: %w", err)
	}

	return sheet, nil
}

// scanf returns how many operands of format were filled from line, or 0 when
// line does not match format.
func scanf(line, format string, args ...interface{}) int {
	n, err := fmt.Sscanf(line, format, args...)
	if err != nil {
		return 0
	}
	return n
}

func parseFlags(fields []string) TrackFlags {
	var flags TrackFlags
	for _, f := range fields {
		switch strings.ToUpper(f) {
		case "DCP":
			flags |= FlagCopyPermitted
		case "4CH":
			flags |= FlagFourChannel
		case "PRE":
			flags |= FlagPreEmphasis
		case "SCMS":
			flags |= FlagSCMS
		}
	}
	return flags
}
