// Package encoding converts the character and timestamp fields of ECMA-167
// descriptors.
package encoding

import (
	"encoding/binary"
	"io"
	"time"
)

const (
	// CompressionID8 marks a CS0 string stored one byte per character.
	CompressionID8 = 8
	// CompressionID16 marks a CS0 string stored two bytes per character, big endian.
	CompressionID16 = 16

	// TimestampSize is the encoded size of an ECMA-167 1/7.3 timestamp.
	TimestampSize = 12
)

// DecodeCS0 turns an OSTA compressed unicode string into a Go string. The
// first byte selects 8 or 16 bit characters; 16 bit characters keep only
// their low byte. Decoding stops at the first NUL character. An unknown
// compression id decodes to the empty string.
func DecodeCS0(data []byte) string {
	if len(data) == 0 || (data[0] != CompressionID8 && data[0] != CompressionID16) {
		return ""
	}
	step := 1
	if data[0] == CompressionID16 {
		step = 2
	}
	out := make([]byte, 0, len(data)/step)
	for p := step; p < len(data); p += step {
		if data[p] == 0 {
			break
		}
		out = append(out, data[p])
	}
	return string(out)
}

// EncodeCS0 encodes s with the given compression id. Characters above 0xFF
// do not fit either form and are replaced with '_'.
func EncodeCS0(s string, compressionID byte) []byte {
	if s == "" {
		return nil
	}
	out := []byte{compressionID}
	for _, r := range s {
		c := byte('_')
		if r <= 0xff {
			c = byte(r)
		}
		if compressionID == CompressionID16 {
			out = append(out, 0)
		}
		out = append(out, c)
	}
	return out
}

// DecodeDString decodes a fixed length dstring, whose last byte holds the
// number of bytes in use.
func DecodeDString(b []byte) string {
	if len(b) < 2 {
		return ""
	}
	n := int(b[len(b)-1])
	if n > len(b)-1 {
		n = len(b) - 1
	}
	return DecodeCS0(b[:n])
}

// PutDString writes s into the dstring field b as 8 bit CS0, truncating it
// to fit. An empty string leaves the field zeroed.
func PutDString(b []byte, s string) {
	clear(b)
	if s == "" || len(b) < 3 {
		return
	}
	enc := EncodeCS0(s, CompressionID8)
	n := copy(b[:len(b)-1], enc)
	b[len(b)-1] = byte(n)
}

// DecodeTimestamp converts an ECMA-167 timestamp. A zero year yields the zero
// time. Timestamps without a usable zone are read as UTC.
func DecodeTimestamp(b []byte) (time.Time, error) {
	if len(b) < TimestampSize {
		return time.Time{}, io.ErrUnexpectedEOF
	}
	typeAndZone := binary.LittleEndian.Uint16(b[0:])
	year := binary.LittleEndian.Uint16(b[2:])
	if year == 0 {
		return time.Time{}, nil
	}

	loc := time.UTC
	offset := int16(typeAndZone<<4) >> 4
	if typeAndZone>>12 == 1 && offset != -2047 {
		loc = time.FixedZone("", int(offset)*60)
	}
	nsec := int(b[9])*10_000_000 + int(b[10])*100_000 + int(b[11])*1_000
	return time.Date(int(year), time.Month(b[4]), int(b[5]), int(b[6]), int(b[7]), int(b[8]), nsec, loc), nil
}

// EncodeTimestamp converts t to an ECMA-167 timestamp in local time with its
// zone offset recorded.
func EncodeTimestamp(t time.Time) [TimestampSize]byte {
	var b [TimestampSize]byte
	if t.IsZero() {
		return b
	}
	_, offsetSeconds := t.Zone()
	zone := uint16(int16(offsetSeconds/60)) & 0x0fff
	binary.LittleEndian.PutUint16(b[0:], 1<<12|zone)
	binary.LittleEndian.PutUint16(b[2:], uint16(t.Year()))
	b[4] = byte(t.Month())
	b[5] = byte(t.Day())
	b[6] = byte(t.Hour())
	b[7] = byte(t.Minute())
	b[8] = byte(t.Second())
	ns := t.Nanosecond()
	b[9] = byte(ns / 10_000_000)
	b[10] = byte(ns / 100_000 % 100)
	b[11] = byte(ns / 1_000 % 100)
	return b
}
