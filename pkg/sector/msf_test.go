package sector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToBCD8(t *testing.T) {
	require.Equal(t, uint8(0x00), ToBCD8(0))
	require.Equal(t, uint8(0x09), ToBCD8(9))
	require.Equal(t, uint8(0x10), ToBCD8(10))
	require.Equal(t, uint8(0x59), ToBCD8(59))
	require.Equal(t, uint8(0x99), ToBCD8(99))

	// Out of range values truncate without panicking.
	require.NotPanics(t, func() { ToBCD8(100) })
	require.NotPanics(t, func() { ToBCD8(255) })
	require.Equal(t, uint8(0x00), ToBCD8(160))
}

func TestFromBCD8(t *testing.T) {
	for n := 0; n < 100; n++ {
		require.Equal(t, n, FromBCD8(ToBCD8(n)))
	}
}

func TestLSNToMSF(t *testing.T) {
	// LSN 0 sits right after the 2 second pregap.
	require.Equal(t, MSF{M: 0x00, S: 0x02, F: 0x00}, LSNToMSF(0))
	require.Equal(t, MSF{M: 0x00, S: 0x02, F: 0x01}, LSNToMSF(1))
	require.Equal(t, MSF{M: 0x00, S: 0x03, F: 0x00}, LSNToMSF(75))
	require.Equal(t, MSF{M: 0x01, S: 0x02, F: 0x00}, LSNToMSF(4500))
	require.Equal(t, "01:02:00", LSNToMSF(4500).String())
}

func TestMSFRoundTrip(t *testing.T) {
	// 99:59:74 is the largest address representable in two BCD digits.
	last := MSFToLSN(NewMSF(99, 59, 74))
	for lsn := LSN(0); lsn <= last; lsn += 37 {
		require.Equal(t, lsn, MSFToLSN(LSNToMSF(lsn)), "lsn %d", lsn)
	}
	require.Equal(t, last, MSFToLSN(LSNToMSF(last)))
}

func TestMSFFields(t *testing.T) {
	m := NewMSF(3, 2, 74)
	require.Equal(t, 3, m.Minutes())
	require.Equal(t, 2, m.Seconds())
	require.Equal(t, 74, m.Frames())
	require.Equal(t, LBA((3*60+2)*75+74), MSFToLBA(m))
}
