// Package testing builds synthetic disc images for the module's tests.
package testing

import (
	"os"
	"path/filepath"

	"github.com/bgrewell/disc-kit/pkg/consts"
	"github.com/bgrewell/disc-kit/pkg/sector"
)

var syncPattern = [consts.CD_SYNC_SIZE]byte{0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00}

// DataByte is the value every form 1 user data byte of sector lsn holds in
// images built by RawSector.
func DataByte(lsn int) byte {
	return byte(lsn*7 + 1)
}

// RawSector builds a 2352 byte mode 2 form 1 sector. When data is nil the user
// data is filled with DataByte(lsn).
func RawSector(lsn int, data []byte) []byte {
	s := make([]byte, consts.CD_RAW_SECTOR_SIZE)
	copy(s, syncPattern[:])

	msf := sector.LSNToMSF(sector.LSN(lsn))
	s[12], s[13], s[14], s[15] = msf.M, msf.S, msf.F, 2

	// Subheader: file, channel, submode (data), coding; recorded twice.
	sub := []byte{0x00, 0x00, 0x08, 0x00}
	copy(s[16:], sub)
	copy(s[20:], sub)

	user := s[24 : 24+consts.M2F1_SECTOR_SIZE]
	if data == nil {
		for i := range user {
			user[i] = DataByte(lsn)
		}
	} else {
		copy(user, data)
	}
	return s
}

// BinImage returns count raw sectors. With sector2336 the sync and header are
// dropped from every sector.
func BinImage(count int, sector2336 bool) []byte {
	var out []byte
	for lsn := 0; lsn < count; lsn++ {
		s := RawSector(lsn, nil)
		if sector2336 {
			s = s[consts.CD_SYNC_SIZE+consts.CD_HEADER_SIZE:]
		}
		out = append(out, s...)
	}
	return out
}

// WrapBlocks turns a 2048 byte block image into 2352 byte raw sectors whose
// form 1 user data are the blocks.
func WrapBlocks(image []byte) []byte {
	var out []byte
	for lsn := 0; lsn*consts.M2F1_SECTOR_SIZE < len(image); lsn++ {
		end := (lsn + 1) * consts.M2F1_SECTOR_SIZE
		if end > len(image) {
			end = len(image)
		}
		out = append(out, RawSector(lsn, image[lsn*consts.M2F1_SECTOR_SIZE:end])...)
	}
	return out
}

// WriteFile writes data to name inside dir and returns the full path.
func WriteFile(dir, name string, data []byte) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
