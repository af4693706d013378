package udf

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	ktest "github.com/bgrewell/disc-kit/internal/testing"
	"github.com/bgrewell/disc-kit/pkg/bincue"
	"github.com/bgrewell/disc-kit/pkg/option"
	"github.com/bgrewell/disc-kit/pkg/source"
	"github.com/stretchr/testify/require"
)

var modTime = time.Date(2004, time.March, 14, 15, 9, 26, 0, time.UTC)

func sampleImage() ktest.UDFImage {
	return ktest.UDFImage{
		VolumeID:        "SAMPLE_VOL",
		VolumeSetID:     "SAMPLE_SET",
		FileSetID:       "SAMPLE_FS",
		PartitionNumber: 0,
		Root: []ktest.UDFEntry{
			{Name: "A", Data: []byte("hello, world"), ModTime: modTime},
			{Name: "B", Dir: true, Children: []ktest.UDFEntry{
				{Parent: true},
				{Name: "C", Dir: true, Children: []ktest.UDFEntry{
					{Parent: true},
					{Name: "deep.txt", Data: bytes.Repeat([]byte{'d'}, 5000)},
				}},
				{Name: "wide", Wide: true, Data: []byte("w")},
			}},
			{Parent: true},
		},
	}
}

func openImage(t *testing.T, img ktest.UDFImage, opts ...option.OpenOption) (*UDF, *ktest.UDFLayout, []byte) {
	t.Helper()
	data, layout := img.Build()
	u, err := OpenReader(bytes.NewReader(data), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { u.Close() })
	return u, layout, data
}

func TestTagChecksum(t *testing.T) {
	tag := make([]byte, 16)
	binary.LittleEndian.PutUint16(tag, TagAnchorVolume)
	binary.LittleEndian.PutUint16(tag[2:], 2)
	binary.LittleEndian.PutUint32(tag[12:], 256)
	tag[4] = TagChecksum(tag)
	require.True(t, CheckTag(tag, TagAnchorVolume))
	require.False(t, CheckTag(tag, TagPrimaryVolume))

	for i := 0; i < 15; i++ {
		if i == 4 {
			continue
		}
		corrupt := append([]byte(nil), tag...)
		corrupt[i] ^= 0x5a
		require.False(t, CheckTag(corrupt, TagAnchorVolume), "byte %d", i)
	}

	require.False(t, CheckTag(tag[:10], TagAnchorVolume))

	decoded, err := DecodeTag(tag)
	require.NoError(t, err)
	require.Equal(t, uint16(TagAnchorVolume), decoded.Identifier)
	require.Equal(t, uint16(2), decoded.Version)
	require.Equal(t, uint32(256), decoded.Location)
	require.Equal(t, tag[4], decoded.Checksum)
}

func TestOpenReadsVolume(t *testing.T) {
	u, _, _ := openImage(t, sampleImage())

	require.Equal(t, "SAMPLE_VOL", u.GetVolumeID())
	require.Equal(t, "SAMPLE_SET", u.GetVolumeSetID())
	require.Equal(t, uint32(32), u.PVDSector())
	require.Equal(t, StandardIDNSR02, u.GetNSRIdentifier())

	root, err := u.Root(true, 0)
	require.NoError(t, err)
	defer root.Close()
	require.Equal(t, "/", root.Name())
	require.True(t, root.IsDir())
	require.False(t, root.IsParent())
	require.Equal(t, uint32(272), u.PartitionStart())
	require.Equal(t, "SAMPLE_FS", u.GetFileSetID())
}

func TestOpenFailsWithoutAnchor(t *testing.T) {
	data, _ := sampleImage().Build()
	data[256*2048+5] ^= 0xff
	_, err := OpenReader(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrBadTag)

	_, err = OpenReader(bytes.NewReader(make([]byte, 100)))
	require.Error(t, err)
}

func TestOpenFailsWithoutPVD(t *testing.T) {
	img := sampleImage()
	img.NoPVD = true
	data, _ := img.Build()
	_, err := OpenReader(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMissingVRSIsNotFatal(t *testing.T) {
	img := sampleImage()
	img.NoVRS = true
	u, _, _ := openImage(t, img)
	require.Empty(t, u.GetNSRIdentifier())
}

func TestTraversal(t *testing.T) {
	u, _, _ := openImage(t, sampleImage())
	root, err := u.Root(true, 0)
	require.NoError(t, err)
	defer root.Close()

	require.True(t, root.Next())
	require.Equal(t, "A", root.Name())
	require.False(t, root.IsDir())
	require.False(t, root.IsParent())
	_, err = root.Sub()
	require.ErrorIs(t, err, ErrNotDirectory)

	require.True(t, root.Next())
	require.Equal(t, "B", root.Name())
	require.True(t, root.IsDir())
	require.False(t, root.IsParent())

	require.True(t, root.Next())
	require.Equal(t, "..", root.Name())
	require.True(t, root.IsParent())
	_, err = root.Sub()
	require.ErrorIs(t, err, ErrParentLink)

	require.False(t, root.Next())
	require.NoError(t, root.Err())
	require.False(t, root.Next())
	_, err = root.Sub()
	require.ErrorIs(t, err, ErrNoEntry)
}

func TestSubDirectory(t *testing.T) {
	u, _, _ := openImage(t, sampleImage())
	root, err := u.Root(true, 0)
	require.NoError(t, err)
	defer root.Close()

	require.True(t, root.Next())
	require.True(t, root.Next())
	require.Equal(t, "B", root.Name())

	b, err := root.Sub()
	require.NoError(t, err)
	defer b.Close()
	require.Equal(t, "B", b.Name())
	require.True(t, b.IsDir())
	require.False(t, b.IsParent())

	var names []string
	for b.Next() {
		names = append(names, b.Name())
	}
	require.NoError(t, b.Err())
	require.Equal(t, []string{"..", "C", "wide"}, names)
}

func TestFindFile(t *testing.T) {
	u, _, _ := openImage(t, sampleImage())

	f, err := u.FindFile("/B/C/deep.txt", true, 0)
	require.NoError(t, err)
	require.Equal(t, "deep.txt", f.Name())
	require.False(t, f.IsDir())
	data, err := f.ReadAll()
	require.NoError(t, err)
	require.Equal(t, bytes.Repeat([]byte{'d'}, 5000), data)
	f.Close()

	f, err = u.FindFile(`B\wide`, true, 0)
	require.NoError(t, err)
	require.Equal(t, "wide", f.Name())
	f.Close()

	f, err = u.FindFile("A", true, 0)
	require.NoError(t, err)
	require.Equal(t, "A", f.Name())
	f.Close()

	f, err = u.FindFile("/", true, 0)
	require.NoError(t, err)
	require.Equal(t, "/", f.Name())
	f.Close()

	_, err = u.FindFile("/B/missing", true, 0)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = u.FindFile("/A/below-a-file", true, 0)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpenDir(t *testing.T) {
	u, _, _ := openImage(t, sampleImage())

	d, err := u.OpenDir("/B/C", true, 0)
	require.NoError(t, err)
	var names []string
	for d.Next() {
		names = append(names, d.Name())
	}
	require.NoError(t, d.Err())
	require.Equal(t, []string{"..", "deep.txt"}, names)
	d.Close()

	d, err = u.OpenDir("", true, 0)
	require.NoError(t, err)
	require.True(t, d.Next())
	require.Equal(t, "A", d.Name())
	d.Close()

	_, err = u.OpenDir("/A", true, 0)
	require.ErrorIs(t, err, ErrNotDirectory)
}

func TestStatAndRead(t *testing.T) {
	var progressCalls int
	var last int64
	u, _, _ := openImage(t, sampleImage(), option.WithExtractionProgress(func(name string, done, total int64, _, _ int) {
		progressCalls++
		last = done
		require.Equal(t, "A", name)
		require.Equal(t, int64(12), total)
	}))

	f, err := u.FindFile("A", true, 0)
	require.NoError(t, err)
	defer f.Close()

	info, err := f.Stat()
	require.NoError(t, err)
	require.Equal(t, "A", info.Name())
	require.Equal(t, int64(12), info.Size())
	require.False(t, info.IsDir())
	require.True(t, info.ModTime().Equal(modTime))
	require.Equal(t, "-r-xr-xr-x", info.Mode().String())

	var out bytes.Buffer
	n, err := f.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(12), n)
	require.Equal(t, "hello, world", out.String())
	require.GreaterOrEqual(t, progressCalls, 2)
	require.Equal(t, int64(12), last)

	root, err := u.Root(true, 0)
	require.NoError(t, err)
	defer root.Close()
	info, err = root.Stat()
	require.NoError(t, err)
	require.True(t, info.IsDir())
	_, err = root.ReadAll()
	require.ErrorIs(t, err, ErrIsDirectory)
}

func TestAllocationDescriptorTypes(t *testing.T) {
	for _, tc := range []struct {
		name     string
		adType   uint16
		extended bool
	}{
		{"short", ADShort, false},
		{"long", ADLong, false},
		{"extended", ADExtended, false},
		{"extended file entries", ADLong, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			img := sampleImage()
			img.ADType = tc.adType
			img.Extended = tc.extended
			u, _, _ := openImage(t, img)

			f, err := u.FindFile("B/C/deep.txt", true, 0)
			require.NoError(t, err)
			defer f.Close()
			data, err := f.ReadAll()
			require.NoError(t, err)
			require.Len(t, data, 5000)
		})
	}
}

func TestEmbeddedAllocationUnsupported(t *testing.T) {
	img := sampleImage()
	img.ADType = ADInICB
	u, _, _ := openImage(t, img)

	_, err := u.Root(true, 0)
	require.ErrorIs(t, err, ErrUnsupportedAD)
}

func TestPartitionSelection(t *testing.T) {
	img := sampleImage()
	img.PartitionNumber = 3
	u, _, _ := openImage(t, img, option.WithPartition(3))

	root, err := u.DefaultRoot()
	require.NoError(t, err)
	root.Close()
	require.Equal(t, uint16(3), u.PartitionNumber())

	_, err = u.Root(false, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLogicalBlockSizeMismatch(t *testing.T) {
	img := sampleImage()
	img.BlockSize = 512
	u, _, _ := openImage(t, img)

	_, err := u.Root(true, 0)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, ErrBlockSize)
}

func TestCorruptRecordEndsIteration(t *testing.T) {
	data, layout := sampleImage().Build()
	// Break the checksum of the second record in the root directory.
	second := int(layout.Entries["/"].Data)*2048 + 40
	data[second+1] ^= 0xff

	u, err := OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer u.Close()

	root, err := u.Root(true, 0)
	require.NoError(t, err)
	require.True(t, root.Next())
	require.Equal(t, "A", root.Name())
	require.False(t, root.Next())
	require.NoError(t, root.Err())
}

func TestCorruptFileSetDescriptor(t *testing.T) {
	data, layout := sampleImage().Build()
	data[int(layout.PartitionStart)*2048] ^= 0xff

	u, err := OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer u.Close()

	_, err = u.Root(true, 0)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCountTree(t *testing.T) {
	u, _, _ := openImage(t, sampleImage())
	root, err := u.Root(true, 0)
	require.NoError(t, err)
	defer root.Close()

	folders, files, err := ktest.GetFileAndFolderCounts(root)
	require.NoError(t, err)
	require.Equal(t, 2, folders)
	require.Equal(t, 3, files)
}

func TestOpenThroughBinCue(t *testing.T) {
	data, _ := sampleImage().Build()
	dir := t.TempDir()
	bin, err := ktest.WriteFile(dir, "udf.bin", ktest.WrapBlocks(data))
	require.NoError(t, err)

	u, err := Open(bin)
	require.NoError(t, err)
	defer u.Close()
	require.Equal(t, "SAMPLE_VOL", u.GetVolumeID())

	f, err := u.FindFile("B/C/deep.txt", true, 0)
	require.NoError(t, err)
	defer f.Close()
	content, err := f.ReadAll()
	require.NoError(t, err)
	require.Len(t, content, 5000)

	img, err := bincue.Open(bin)
	require.NoError(t, err)
	u2, err := OpenDisc(source.New(source.DriverBinCue, img, nil))
	require.NoError(t, err)
	require.NoError(t, u2.Close())
}

func TestOpenPlainImage(t *testing.T) {
	data, _ := sampleImage().Build()
	dir := t.TempDir()
	iso, err := ktest.WriteFile(dir, "udf.img", data)
	require.NoError(t, err)

	u, err := Open(iso, option.WithMmap(true))
	require.NoError(t, err)
	require.Equal(t, "SAMPLE_SET", u.GetVolumeSetID())
	require.NoError(t, u.Close())
	require.NoError(t, u.Close())

	_, err = Open(dir + "/absent.img")
	require.Error(t, err)
}
