package udf

import (
	"encoding/binary"
	"fmt"

	"github.com/bgrewell/disc-kit/pkg/consts"
)

// Extent types stored in the top two bits of an allocation descriptor length.
const (
	extentRecorded          = 0
	extentAllocatedUnused   = 1
	extentUnallocated       = 2
	extentNextAllocationSeq = 3
)

// allocation is one decoded allocation descriptor. Location is partition relative.
type allocation struct {
	Location uint32
	Length   uint32
	Type     uint8
}

// end returns the last sector covered by the allocation.
func (a allocation) end() uint32 {
	if a.Length == 0 {
		return a.Location
	}
	return a.Location + (a.Length-1)/consts.UDF_BLOCKSIZE
}

func adSize(adType uint16) int {
	switch adType {
	case ADShort:
		return 8
	case ADLong:
		return 16
	case ADExtended:
		return 20
	default:
		return 0
	}
}

// parseAllocations decodes the allocation descriptors of an entry. The
// partition reference of long and extended descriptors is ignored.
func parseAllocations(adType uint16, ads []byte) ([]allocation, error) {
	size := adSize(adType)
	if size == 0 {
		return nil, fmt.Errorf("allocation descriptor type %d: %w", adType, ErrUnsupportedAD)
	}

	var out []allocation
	for off := 0; off+size <= len(ads); off += size {
		raw := binary.LittleEndian.Uint32(ads[off:])
		a := allocation{
			Length: raw & consts.UDF_LENGTH_MASK,
			Type:   uint8(raw >> 30),
		}
		switch adType {
		case ADShort, ADLong:
			a.Location = binary.LittleEndian.Uint32(ads[off+4:])
		case ADExtended:
			a.Location = binary.LittleEndian.Uint32(ads[off+12:])
		}
		if a.Length == 0 && a.Type == extentRecorded && len(out) > 0 {
			break
		}
		if a.Type == extentNextAllocationSeq {
			// Continuation extents are not followed.
			break
		}
		out = append(out, a)
	}
	return out, nil
}
