package main

import (
	"bytes"
	"path/filepath"
	"testing"

	ktest "github.com/bgrewell/disc-kit/internal/testing"
	"github.com/bgrewell/disc-kit/pkg/source"
	"github.com/stretchr/testify/require"
)

func TestRunPrintsTrackTable(t *testing.T) {
	dir := t.TempDir()
	_, err := ktest.WriteFile(dir, "image.bin", ktest.BinImage(4, false))
	require.NoError(t, err)
	cue, err := ktest.WriteFile(dir, "image.cue", []byte("FILE \"image.bin\" BINARY\n  TRACK 01 MODE2/2352\n    INDEX 01 00:00:00\n"))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run(&out, cue))

	require.Contains(t, out.String(), "Sectors: 4")
	require.Contains(t, out.String(), "00:02:00")
	require.Contains(t, out.String(), "LO")
}

func TestRunReturnsOpenErrors(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, filepath.Join(t.TempDir(), "image.iso"))
	require.ErrorIs(t, err, source.ErrNoDriver)
	require.Empty(t, out.String())
}
