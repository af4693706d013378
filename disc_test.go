package disc

import (
	"path/filepath"
	"testing"

	ktest "github.com/bgrewell/disc-kit/internal/testing"
	"github.com/bgrewell/disc-kit/pkg/source"
	"github.com/stretchr/testify/require"
)

const cueSheet = `FILE "image.bin" BINARY
  TRACK 01 MODE2/2352
    INDEX 01 00:00:00
`

func TestOpenDispatchesToBinCue(t *testing.T) {
	dir := t.TempDir()
	bin, err := ktest.WriteFile(dir, "image.bin", ktest.BinImage(4, false))
	require.NoError(t, err)

	d, err := Open(bin)
	require.NoError(t, err)
	defer d.Close()

	require.Equal(t, source.DriverBinCue, d.DriverID())
	require.Equal(t, source.Track(1), d.NumTracks())

	buf := make([]byte, 2048)
	require.NoError(t, d.ReadDataSectors(buf, 2, 2048, 1))
	require.Equal(t, ktest.DataByte(2), buf[0])
}

func TestOpenCue(t *testing.T) {
	dir := t.TempDir()
	_, err := ktest.WriteFile(dir, "image.bin", ktest.BinImage(4, false))
	require.NoError(t, err)
	cue, err := ktest.WriteFile(dir, "image.cue", []byte(cueSheet))
	require.NoError(t, err)

	d, err := OpenCue(cue)
	require.NoError(t, err)
	defer d.Close()

	require.Equal(t, source.Track(1), d.NumTracks())
	msf, ok := d.TrackMSF(1)
	require.True(t, ok)
	require.Equal(t, "00:02:00", msf.String())
}

func TestOpenUnclaimedPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "image.iso"))
	require.ErrorIs(t, err, source.ErrNoDriver)
}

func TestOpenUDF(t *testing.T) {
	data, _ := ktest.UDFImage{
		VolumeID: "ROOTPKG",
		Root: []ktest.UDFEntry{
			{Name: "readme.txt", Data: []byte("disc-kit")},
		},
	}.Build()
	path, err := ktest.WriteFile(t.TempDir(), "volume.udf", data)
	require.NoError(t, err)

	u, err := OpenUDF(path)
	require.NoError(t, err)
	defer u.Close()
	require.Equal(t, "ROOTPKG", u.GetVolumeID())

	f, err := u.FindFile("readme.txt", true, 0)
	require.NoError(t, err)
	defer f.Close()
	content, err := f.ReadAll()
	require.NoError(t, err)
	require.Equal(t, "disc-kit", string(content))
}
