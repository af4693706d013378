// Package sector implements the address arithmetic used by optical media: zero based
// logical sector numbers, pregap adjusted block addresses and BCD encoded
// minute:second:frame addresses.
package sector

import (
	"fmt"

	"github.com/bgrewell/disc-kit/pkg/consts"
)

// LSN is a zero based logical sector number.
type LSN int32

// LBA is a logical block address. It differs from an LSN by the 150 sector pregap.
type LBA int32

// MSF is a minute:second:frame address. Every field is stored as packed BCD.
type MSF struct {
	M uint8 `json:"m"`
	S uint8 `json:"s"`
	F uint8 `json:"f"`
}

// String renders the address as MM:SS:FF.
func (m MSF) String() string {
	return fmt.Sprintf("%02x:%02x:%02x", m.M, m.S, m.F)
}

// Minutes returns the decoded minute field.
func (m MSF) Minutes() int { return FromBCD8(m.M) }

// Seconds returns the decoded second field.
func (m MSF) Seconds() int { return FromBCD8(m.S) }

// Frames returns the decoded frame field.
func (m MSF) Frames() int { return FromBCD8(m.F) }

// NewMSF builds an MSF from plain decimal values.
func NewMSF(minutes, seconds, frames int) MSF {
	return MSF{M: ToBCD8(minutes), S: ToBCD8(seconds), F: ToBCD8(frames)}
}

// ToBCD8 packs a 0-99 integer into one BCD byte. Larger values are truncated
// to what fits in two nibbles.
func ToBCD8(n int) uint8 {
	if n < 0 {
		n = -n
	}
	return uint8(((n/10)%16)<<4 | (n % 10))
}

// FromBCD8 unpacks a BCD byte.
func FromBCD8(b uint8) int {
	return int(b>>4)*10 + int(b&0x0f)
}

// LSNToLBA adds the pregap.
func LSNToLBA(lsn LSN) LBA {
	return LBA(lsn + consts.CD_PREGAP_SECTORS)
}

// LBAToLSN removes the pregap.
func LBAToLSN(lba LBA) LSN {
	return LSN(lba - consts.CD_PREGAP_SECTORS)
}

// LBAToMSF converts a block address to MSF.
func LBAToMSF(lba LBA) MSF {
	n := int(lba)
	if n < 0 {
		n = 0
	}
	frames := n % consts.CD_FRAMES_PER_SEC
	n /= consts.CD_FRAMES_PER_SEC
	seconds := n % consts.CD_SECS_PER_MIN
	minutes := n / consts.CD_SECS_PER_MIN
	return NewMSF(minutes, seconds, frames)
}

// MSFToLBA converts an MSF address to a block address.
func MSFToLBA(msf MSF) LBA {
	minutes := FromBCD8(msf.M)
	seconds := FromBCD8(msf.S)
	frames := FromBCD8(msf.F)
	return LBA((minutes*consts.CD_SECS_PER_MIN+seconds)*consts.CD_FRAMES_PER_SEC + frames)
}

// LSNToMSF converts a logical sector number to MSF, accounting for the pregap.
func LSNToMSF(lsn LSN) MSF {
	return LBAToMSF(LSNToLBA(lsn))
}

// MSFToLSN is the inverse of LSNToMSF.
func MSFToLSN(msf MSF) LSN {
	return LBAToLSN(MSFToLBA(msf))
}
