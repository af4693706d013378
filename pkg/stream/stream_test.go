package stream

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "image.bin")
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func TestOpenFileAndMmap(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB, 0xCD}, 2048)
	p := writeTemp(t, data)

	for _, useMmap := range []bool{false, true} {
		s, err := Open(p, useMmap)
		require.NoError(t, err)

		size, err := s.Size()
		require.NoError(t, err)
		require.Equal(t, int64(len(data)), size)
		require.Equal(t, p, s.Name())

		buf := make([]byte, 4)
		require.NoError(t, ReadFull(s, buf, 2))
		require.Equal(t, []byte{0xAB, 0xCD, 0xAB, 0xCD}, buf)

		require.NoError(t, s.Close())
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.bin"), false)
	require.Error(t, err)
	_, err = Open(filepath.Join(t.TempDir(), "missing.bin"), true)
	require.Error(t, err)
}

func TestReadFullShort(t *testing.T) {
	s := NewReaderAt(bytes.NewReader([]byte{1, 2, 3}), 3, "mem")
	buf := make([]byte, 4)
	err := ReadFull(s, buf, 0)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	// A read that ends exactly at the end of the data succeeds.
	require.NoError(t, ReadFull(s, buf[:3], 0))
	require.NoError(t, s.Close())
}
