package udf

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/bgrewell/disc-kit/pkg/consts"
	"github.com/lunixbochs/struc"
)

// Tag is the 16 byte header every UDF descriptor starts with.
type Tag struct {
	Identifier   uint16 `struc:"little"`
	Version      uint16 `struc:"little"`
	Checksum     uint8
	Reserved     uint8
	SerialNumber uint16 `struc:"little"`
	CRC          uint16 `struc:"little"`
	CRCLength    uint16 `struc:"little"`
	Location     uint32 `struc:"little"`
}

// TagChecksum sums the first 15 bytes of a tag, skipping the checksum byte itself.
func TagChecksum(b []byte) uint8 {
	var sum uint8
	for i := 0; i < 15; i++ {
		sum += b[i]
	}
	return sum - b[4]
}

// CheckTag reports whether b starts with a tag carrying id and a valid checksum.
func CheckTag(b []byte, id uint16) bool {
	if len(b) < consts.UDF_TAG_SIZE {
		return false
	}
	if binary.LittleEndian.Uint16(b) != id {
		return false
	}
	return TagChecksum(b) == b[4]
}

// DecodeTag parses the tag at the start of b without validating it.
func DecodeTag(b []byte) (*Tag, error) {
	t := &Tag{}
	if err := unpack(b, t); err != nil {
		return nil, err
	}
	return t, nil
}

func unpack(b []byte, v interface{}) error {
	if err := struc.UnpackWithOptions(bytes.NewReader(b), v, &struc.Options{Order: binary.LittleEndian}); err != nil {
		return fmt.Errorf("failed to decode %T: %w", v, err)
	}
	return nil
}
