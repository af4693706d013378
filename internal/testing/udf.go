package testing

import (
	"encoding/binary"
	"path"
	"time"

	"github.com/bgrewell/disc-kit/pkg/encoding"
)

const (
	udfBlock          = 2048
	udfAnchorSector   = 256
	udfMainVDS        = 32
	udfMainVDSBlocks  = 16
	udfPartitionStart = 272

	tagPrimaryVolume     = 1
	tagAnchor            = 2
	tagPartition         = 5
	tagLogicalVolume     = 6
	tagTerminating       = 8
	tagFileSet           = 256
	tagFileIdentifier    = 257
	tagFileEntry         = 261
	tagExtendedFileEntry = 266
)

// UDFEntry describes one directory entry of a synthetic volume.
type UDFEntry struct {
	Name string
	Dir  bool
	// Parent makes this entry a link to the containing directory's parent. Name is ignored.
	Parent   bool
	Hidden   bool
	Wide     bool
	Data     []byte
	Children []UDFEntry
	ModTime  time.Time
	// Permissions defaults to owner/group/other read and execute.
	Permissions uint32
}

// UDFImage describes a synthetic single partition UDF volume.
type UDFImage struct {
	VolumeID        string
	VolumeSetID     string
	FileSetID       string
	PartitionNumber uint16
	// BlockSize is written to the logical volume descriptor; zero means 2048.
	BlockSize uint32
	// ADType selects short (0), long (1), extended (2) or embedded (3) allocation descriptors.
	ADType   uint16
	Extended bool
	NoPVD    bool
	NoVRS    bool
	Root     []UDFEntry
}

// Placement records where an entry landed, in absolute sectors.
type Placement struct {
	FileEntry uint32
	Data      uint32
	Length    int
}

// UDFLayout maps entry paths ("/", "/A", "/B/C") to their placement.
type UDFLayout struct {
	PartitionStart uint32
	Entries        map[string]Placement
}

type udfNode struct {
	entry    UDFEntry
	path     string
	fe       uint32
	data     uint32
	length   int
	parent   *udfNode
	children []*udfNode
}

// Build lays the volume out and returns the image and where everything went.
func (img UDFImage) Build() ([]byte, *UDFLayout) {
	next := uint32(1)
	var alloc func(e UDFEntry, p string, parent *udfNode) *udfNode
	alloc = func(e UDFEntry, p string, parent *udfNode) *udfNode {
		n := &udfNode{entry: e, path: p, parent: parent, fe: next}
		next++
		if e.Dir {
			for _, c := range e.Children {
				n.length += fidSize(c)
			}
		} else {
			n.length = len(e.Data)
		}
		if img.ADType != 3 {
			n.data = next
			next += blocksFor(n.length)
		}
		if e.Dir {
			for _, c := range e.Children {
				if c.Parent {
					n.children = append(n.children, &udfNode{entry: c, parent: n})
					continue
				}
				n.children = append(n.children, alloc(c, path.Join(p, c.Name), n))
			}
		}
		return n
	}
	root := alloc(UDFEntry{Dir: true, Children: img.Root}, "/", nil)

	partLen := next
	image := make([]byte, int(udfPartitionStart+partLen+1)*udfBlock)
	block := func(lsn uint32) []byte {
		return image[int(lsn)*udfBlock : int(lsn+1)*udfBlock]
	}

	if !img.NoVRS {
		for i, id := range []string{"BEA01", "NSR02", "TEA01"} {
			b := block(uint32(16 + i))
			copy(b[1:], id)
			b[6] = 1
		}
	}

	avdp := block(udfAnchorSector)
	binary.LittleEndian.PutUint32(avdp[16:], udfMainVDSBlocks*udfBlock)
	binary.LittleEndian.PutUint32(avdp[20:], udfMainVDS)
	putTag(avdp, tagAnchor, udfAnchorSector)

	if !img.NoPVD {
		pvd := block(udfMainVDS)
		encoding.PutDString(pvd[24:56], img.VolumeID)
		encoding.PutDString(pvd[72:200], img.VolumeSetID)
		putTag(pvd, tagPrimaryVolume, udfMainVDS)
	}

	pd := block(udfMainVDS + 1)
	binary.LittleEndian.PutUint16(pd[22:], img.PartitionNumber)
	copy(pd[25:], "+NSR02")
	binary.LittleEndian.PutUint32(pd[188:], udfPartitionStart)
	binary.LittleEndian.PutUint32(pd[192:], partLen)
	putTag(pd, tagPartition, udfMainVDS+1)

	lvd := block(udfMainVDS + 2)
	blockSize := img.BlockSize
	if blockSize == 0 {
		blockSize = udfBlock
	}
	encoding.PutDString(lvd[84:212], img.FileSetID)
	binary.LittleEndian.PutUint32(lvd[212:], blockSize)
	binary.LittleEndian.PutUint32(lvd[248:], udfBlock)
	binary.LittleEndian.PutUint32(lvd[252:], 0)
	binary.LittleEndian.PutUint16(lvd[256:], img.PartitionNumber)
	putTag(lvd, tagLogicalVolume, udfMainVDS+2)

	putTag(block(udfMainVDS+3), tagTerminating, udfMainVDS+3)

	fsd := block(udfPartitionStart)
	encoding.PutDString(fsd[112:240], img.FileSetID)
	encoding.PutDString(fsd[304:336], img.FileSetID)
	binary.LittleEndian.PutUint32(fsd[400:], udfBlock)
	binary.LittleEndian.PutUint32(fsd[404:], root.fe)
	binary.LittleEndian.PutUint16(fsd[408:], img.PartitionNumber)
	putTag(fsd, tagFileSet, 0)

	layout := &UDFLayout{PartitionStart: udfPartitionStart, Entries: map[string]Placement{}}

	var write func(n *udfNode)
	write = func(n *udfNode) {
		layout.Entries[n.path] = Placement{
			FileEntry: udfPartitionStart + n.fe,
			Data:      udfPartitionStart + n.data,
			Length:    n.length,
		}

		var content []byte
		if n.entry.Dir {
			for _, c := range n.children {
				target := c
				if c.entry.Parent {
					target = n.parent
					if target == nil {
						target = n
					}
				}
				content = append(content, img.fid(c.entry, target.fe, n.data)...)
			}
		} else {
			content = n.entry.Data
		}

		img.fileEntry(block(udfPartitionStart+n.fe), n, content)
		if img.ADType != 3 && len(content) > 0 {
			copy(image[int(udfPartitionStart+n.data)*udfBlock:], content)
		}
		for _, c := range n.children {
			if !c.entry.Parent {
				write(c)
			}
		}
	}
	write(root)

	return image, layout
}

func (img UDFImage) fileEntry(b []byte, n *udfNode, content []byte) {
	fileType := byte(5)
	if n.entry.Dir {
		fileType = 4
	}
	perms := n.entry.Permissions
	if perms == 0 {
		perms = 0x14a5 // r-x for owner, group and other
	}

	b[27] = fileType
	binary.LittleEndian.PutUint16(b[20:], 4)
	binary.LittleEndian.PutUint16(b[34:], img.ADType)
	binary.LittleEndian.PutUint32(b[44:], perms)
	binary.LittleEndian.PutUint16(b[48:], 1)
	binary.LittleEndian.PutUint64(b[56:], uint64(n.length))

	id := uint16(tagFileEntry)
	adStart := 176
	mtimeAt := 84
	if img.Extended {
		id = tagExtendedFileEntry
		adStart = 216
		mtimeAt = 92
		binary.LittleEndian.PutUint64(b[64:], uint64(n.length))
	}
	if !n.entry.ModTime.IsZero() {
		ts := encoding.EncodeTimestamp(n.entry.ModTime)
		copy(b[mtimeAt:], ts[:])
	}

	var ads []byte
	switch img.ADType {
	case 0:
		if n.length > 0 {
			ads = make([]byte, 8)
			binary.LittleEndian.PutUint32(ads[0:], uint32(n.length))
			binary.LittleEndian.PutUint32(ads[4:], n.data)
		}
	case 1:
		if n.length > 0 {
			ads = make([]byte, 16)
			binary.LittleEndian.PutUint32(ads[0:], uint32(n.length))
			binary.LittleEndian.PutUint32(ads[4:], n.data)
			binary.LittleEndian.PutUint16(ads[8:], img.PartitionNumber)
		}
	case 2:
		if n.length > 0 {
			ads = make([]byte, 20)
			binary.LittleEndian.PutUint32(ads[0:], uint32(n.length))
			binary.LittleEndian.PutUint32(ads[4:], uint32(n.length))
			binary.LittleEndian.PutUint32(ads[8:], uint32(n.length))
			binary.LittleEndian.PutUint32(ads[12:], n.data)
			binary.LittleEndian.PutUint16(ads[16:], img.PartitionNumber)
		}
	case 3:
		ads = content
	}
	binary.LittleEndian.PutUint32(b[adStart-4:], uint32(len(ads)))
	copy(b[adStart:], ads)
	putTag(b, id, n.fe)
}

func (img UDFImage) fid(e UDFEntry, icb uint32, dirBlock uint32) []byte {
	name := encodeName(e)
	rec := make([]byte, fidSize(e))

	var chars byte
	if e.Hidden {
		chars |= 0x01
	}
	if e.Dir || e.Parent {
		chars |= 0x02
	}
	if e.Parent {
		chars |= 0x08
	}

	binary.LittleEndian.PutUint16(rec[16:], 1)
	rec[18] = chars
	rec[19] = byte(len(name))
	binary.LittleEndian.PutUint32(rec[20:], udfBlock)
	binary.LittleEndian.PutUint32(rec[24:], icb)
	binary.LittleEndian.PutUint16(rec[28:], img.PartitionNumber)
	copy(rec[38:], name)
	putTag(rec, tagFileIdentifier, dirBlock)
	return rec
}

func encodeName(e UDFEntry) []byte {
	if e.Parent {
		return nil
	}
	if e.Wide {
		return encoding.EncodeCS0(e.Name, encoding.CompressionID16)
	}
	return encoding.EncodeCS0(e.Name, encoding.CompressionID8)
}

func fidSize(e UDFEntry) int {
	return 4 * ((38 + len(encodeName(e)) + 3) / 4)
}

func blocksFor(n int) uint32 {
	if n == 0 {
		return 1
	}
	return uint32((n + udfBlock - 1) / udfBlock)
}

// putTag fills in a descriptor tag at the start of b, checksum included.
func putTag(b []byte, id uint16, location uint32) {
	binary.LittleEndian.PutUint16(b[0:], id)
	binary.LittleEndian.PutUint16(b[2:], 2)
	binary.LittleEndian.PutUint32(b[12:], location)
	b[4] = 0
	b[4] = TagChecksum(b)
}

// TagChecksum computes a descriptor tag checksum the way readers verify it.
func TagChecksum(b []byte) byte {
	var sum byte
	for i := 0; i < 15; i++ {
		if i != 4 {
			sum += b[i]
		}
	}
	return sum
}
