package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	c, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, 2352, c.SectorSize)
	require.True(t, c.UseMmap)
	require.Equal(t, -1, c.Partition)
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("DISCKIT_SECTOR_SIZE", "2336")
	t.Setenv("DISCKIT_PARTITION", "2")

	c, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, 2336, c.SectorSize)
	require.Equal(t, 2, c.Partition)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disctool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sector_size: 2336\nuse_mmap: false\n"), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 2336, c.SectorSize)
	require.False(t, c.UseMmap)
}

func TestLoadConfigRejectsSectorSize(t *testing.T) {
	t.Setenv("DISCKIT_SECTOR_SIZE", "2048")
	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
