// Package disc opens optical disc images. Source backends register themselves
// with the source package; importing this package links the bin/cue backend.
package disc

import (
	"fmt"

	"github.com/bgrewell/disc-kit/pkg/bincue"
	"github.com/bgrewell/disc-kit/pkg/option"
	"github.com/bgrewell/disc-kit/pkg/source"
	"github.com/bgrewell/disc-kit/pkg/udf"
)

// Open opens a disc image with the driver that claims path. An empty path
// opens the default device of the bin/cue driver.
func Open(path string, opts ...option.OpenOption) (*source.Disc, error) {
	id := source.DriverUnknown
	if path == "" {
		id = source.DriverBinCue
	}
	d, err := source.Open(path, id, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open disc: %w", err)
	}
	return d, nil
}

// OpenCue opens a bin/cue pair starting from the cue sheet.
func OpenCue(cuePath string, opts ...option.OpenOption) (*source.Disc, error) {
	img, err := bincue.OpenCue(cuePath, opts...)
	if err != nil {
		return nil, err
	}
	return source.New(source.DriverBinCue, img, option.Apply(opts...).Logger), nil
}

// OpenUDF opens a UDF file system. Paths claimed by a disc driver are read
// through it, anything else is treated as a plain 2048 byte sector image.
func OpenUDF(path string, opts ...option.OpenOption) (*udf.UDF, error) {
	return udf.Open(path, opts...)
}
