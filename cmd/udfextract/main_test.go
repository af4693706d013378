package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	ktest "github.com/bgrewell/disc-kit/internal/testing"
	"github.com/bgrewell/disc-kit/pkg/logging"
	"github.com/bgrewell/disc-kit/pkg/udf"
	"github.com/stretchr/testify/require"
)

// hostileImage has a directory called ".." that is not marked as a parent
// link, a name with a separator and a hidden file next to one ordinary file.
func hostileImage() []byte {
	data, _ := ktest.UDFImage{
		VolumeID: "HOSTILE",
		Root: []ktest.UDFEntry{
			{Parent: true},
			{Name: "..", Dir: true, Children: []ktest.UDFEntry{
				{Parent: true},
				{Name: "escaped.txt", Data: []byte("outside")},
				{Name: "..", Dir: true, Children: []ktest.UDFEntry{
					{Parent: true},
					{Name: "escaped2.txt", Data: []byte("further outside")},
				}},
			}},
			{Name: "sub/dir.txt", Data: []byte("separator")},
			{Name: ".", Data: []byte("dot")},
			{Name: "secret.txt", Hidden: true, Data: []byte("hidden")},
			{Name: "ok.txt", Data: []byte("inside"), ModTime: time.Date(2020, time.May, 1, 12, 0, 0, 0, time.UTC)},
		},
	}.Build()
	return data
}

func openRoot(t *testing.T, data []byte) *udf.File {
	t.Helper()
	v, err := udf.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { v.Close() })
	root, err := v.DefaultRoot()
	require.NoError(t, err)
	t.Cleanup(func() { root.Close() })
	return root
}

func TestExtractStaysInsideOutputDir(t *testing.T) {
	base := t.TempDir()
	out := filepath.Join(base, "level1", "out")

	var logs bytes.Buffer
	logger := logging.NewLogger(logging.NewSimpleLogger(&logs, logging.LEVEL_INFO, false))
	x := newExtractor(out, false, logger, &progress{})

	require.NoError(t, x.extract(openRoot(t, hostileImage()), x.root))

	require.NoFileExists(t, filepath.Join(base, "level1", "escaped.txt"))
	require.NoFileExists(t, filepath.Join(base, "escaped2.txt"))
	require.NoFileExists(t, filepath.Join(out, "sub", "dir.txt"))
	require.NoFileExists(t, filepath.Join(out, "secret.txt"))

	content, err := os.ReadFile(filepath.Join(out, "ok.txt"))
	require.NoError(t, err)
	require.Equal(t, "inside", string(content))

	info, err := os.Stat(filepath.Join(out, "ok.txt"))
	require.NoError(t, err)
	require.True(t, info.ModTime().Equal(time.Date(2020, time.May, 1, 12, 0, 0, 0, time.UTC)))

	// Only ok.txt is written into the output directory.
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.Contains(t, logs.String(), "skipping entry with unusable name")
}

func TestTargetRejectsUnusableNames(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	x := newExtractor(out, false, logging.DefaultLogger(), &progress{})

	for _, name := range []string{"", ".", "..", "a/b", `a\b`, "nul\x00"} {
		_, ok := x.target(x.root, name)
		require.False(t, ok, "name %q", name)
	}

	target, ok := x.target(x.root, "file.txt")
	require.True(t, ok)
	require.Equal(t, filepath.Join(out, "file.txt"), target)

	// A parent path that already left the output directory is refused too.
	_, ok = x.target(filepath.Join(out, ".."), "file.txt")
	require.False(t, ok)
}

func TestCountFilesMatchesExtraction(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")

	x := newExtractor(out, false, logging.DefaultLogger(), &progress{})
	n, err := x.countFiles(openRoot(t, hostileImage()), x.root)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	x = newExtractor(out, true, logging.DefaultLogger(), &progress{})
	n, err = x.countFiles(openRoot(t, hostileImage()), x.root)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	p := &progress{total: 2}
	x = newExtractor(out, true, logging.DefaultLogger(), p)
	require.NoError(t, x.extract(openRoot(t, hostileImage()), x.root))
	require.Equal(t, p.total, p.current)
}

func TestRunClosesAndReportsErrors(t *testing.T) {
	dir := t.TempDir()
	err := run(config{image: filepath.Join(dir, "absent.udf"), outputDir: filepath.Join(dir, "out"), partition: -1}, nil)
	require.Error(t, err)

	img, err := ktest.WriteFile(dir, "volume.udf", hostileImage())
	require.NoError(t, err)
	out := filepath.Join(dir, "out")
	require.NoError(t, run(config{image: img, outputDir: out, partition: -1}, nil))
	require.FileExists(t, filepath.Join(out, "ok.txt"))
	require.NoFileExists(t, filepath.Join(dir, "escaped.txt"))
}
