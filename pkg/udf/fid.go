package udf

import "encoding/binary"

const fidHeaderSize = 38

// fid is a File Identifier Descriptor viewed in place inside a directory buffer.
type fid []byte

func (f fid) characteristics() uint8 { return f[18] }

func (f fid) identifierLength() int { return int(f[19]) }

func (f fid) icbLocation() uint32 { return binary.LittleEndian.Uint32(f[24:]) }

func (f fid) icbPartition() uint16 { return binary.LittleEndian.Uint16(f[28:]) }

func (f fid) implementationUseLength() int { return int(binary.LittleEndian.Uint16(f[36:])) }

// size is the length of the record padded to a four byte boundary.
func (f fid) size() int {
	return 4 * ((fidHeaderSize + f.implementationUseLength() + f.identifierLength() + 3) / 4)
}

func (f fid) identifier() []byte {
	start := fidHeaderSize + f.implementationUseLength()
	return f[start : start+f.identifierLength()]
}

// viewFID returns the record at the start of b, or false when b does not hold
// a complete, valid one.
func viewFID(b []byte) (fid, bool) {
	if len(b) < fidHeaderSize || !CheckTag(b, TagFileIdentifier) {
		return nil, false
	}
	f := fid(b)
	if fidHeaderSize+f.implementationUseLength()+f.identifierLength() > len(b) {
		return nil, false
	}
	return f, true
}
