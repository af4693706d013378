package encoding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeCS0(t *testing.T) {
	require.Equal(t, "abc", DecodeCS0([]byte{8, 'a', 'b', 'c'}))
	require.Equal(t, "abc", DecodeCS0([]byte{16, 0x01, 'a', 0x00, 'b', 0x30, 'c'}))
	require.Equal(t, "", DecodeCS0([]byte{7, 'a'}))
	require.Equal(t, "", DecodeCS0(nil))
	require.Equal(t, "ab", DecodeCS0([]byte{8, 'a', 'b', 0, 'c'}))
}

func TestEncodeCS0(t *testing.T) {
	require.Equal(t, []byte{8, 'h', 'i'}, EncodeCS0("hi", CompressionID8))
	require.Equal(t, []byte{16, 0, 'h', 0, 'i'}, EncodeCS0("hi", CompressionID16))
	require.Equal(t, []byte{8, 'x', '_'}, EncodeCS0("x世", CompressionID8))
	require.Nil(t, EncodeCS0("", CompressionID8))

	for _, id := range []byte{CompressionID8, CompressionID16} {
		require.Equal(t, "VIDEO_TS", DecodeCS0(EncodeCS0("VIDEO_TS", id)))
	}
}

func TestDString(t *testing.T) {
	field := make([]byte, 32)
	PutDString(field, "DVD_VOLUME")
	require.Equal(t, byte(8), field[0])
	require.Equal(t, byte(11), field[31])
	require.Equal(t, "DVD_VOLUME", DecodeDString(field))

	// Too long values are cut to the field.
	short := make([]byte, 6)
	PutDString(short, "LONGNAME")
	require.Equal(t, "LONG", DecodeDString(short))

	PutDString(field, "")
	require.Equal(t, "", DecodeDString(field))

	// A length byte larger than the field is clamped.
	bogus := []byte{8, 'o', 'k', 0xff}
	require.Equal(t, "ok", DecodeDString(bogus))
}

func TestTimestamp(t *testing.T) {
	zone := time.FixedZone("", -5*3600)
	in := time.Date(2004, time.March, 14, 15, 9, 26, 530_000_000, zone)
	b := EncodeTimestamp(in)

	out, err := DecodeTimestamp(b[:])
	require.NoError(t, err)
	require.True(t, in.Equal(out), "%s != %s", in, out)
	_, offset := out.Zone()
	require.Equal(t, -5*3600, offset)

	zero := EncodeTimestamp(time.Time{})
	out, err = DecodeTimestamp(zero[:])
	require.NoError(t, err)
	require.True(t, out.IsZero())

	_, err = DecodeTimestamp(b[:4])
	require.Error(t, err)
}

func TestTimestampWithoutZone(t *testing.T) {
	b := EncodeTimestamp(time.Date(1999, time.December, 31, 23, 59, 59, 0, time.UTC))
	// Type 1 with the "no zone" marker.
	b[0], b[1] = 0x01, 0x18
	out, err := DecodeTimestamp(b[:])
	require.NoError(t, err)
	require.Equal(t, time.UTC, out.Location())
	require.Equal(t, 1999, out.Year())
}
