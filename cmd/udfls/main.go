package main

import (
	"fmt"
	"os"
	"path"

	"github.com/bgrewell/disc-kit"
	"github.com/bgrewell/disc-kit/pkg/logging"
	"github.com/bgrewell/disc-kit/pkg/option"
	"github.com/bgrewell/disc-kit/pkg/udf"
	"github.com/bgrewell/usage"
)

func main() {

	u := usage.NewUsage(
		usage.WithApplicationName("udfls"),
		usage.WithApplicationDescription("udfls lists the contents of a UDF volume stored in a plain image or a bin/cue disc image."),
	)
	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Print debug output", "", nil)
	recursive := u.AddBooleanOption("r", "recursive", false, "List subdirectories recursively", "", nil)
	hidden := u.AddBooleanOption("a", "all", false, "Include hidden entries", "", nil)
	image := u.AddArgument(1, "image", "Path to the image holding the UDF volume", "")
	dir := u.AddArgument(2, "directory", "Directory inside the volume to list", "/")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if image == nil || *image == "" {
		u.PrintError(fmt.Errorf("location of the image <image> must be provided"))
		os.Exit(1)
	}

	level := logging.LEVEL_INFO
	if *verbose {
		level = logging.LEVEL_DEBUG
	}
	logger := logging.NewLogger(logging.NewSimpleLogger(os.Stderr, level, true))

	start := "/"
	if dir != nil && *dir != "" {
		start = *dir
	}
	if err := run(*image, start, *recursive, *hidden, option.WithLogger(logger), option.WithMmap(true)); err != nil {
		u.PrintError(err)
		os.Exit(1)
	}
}

// run lists start inside the volume held by image. Every handle it opens is
// closed before it returns.
func run(image, start string, recursive, hidden bool, opts ...option.OpenOption) error {
	v, err := disc.OpenUDF(image, opts...)
	if err != nil {
		return err
	}
	defer v.Close()

	fmt.Printf("Volume: %s (%s)\n", v.GetVolumeID(), v.GetVolumeSetID())

	d, err := v.OpenDir(start, true, 0)
	if err != nil {
		return err
	}
	defer d.Close()

	return list(d, path.Clean("/"+start), recursive, hidden)
}

func list(dir *udf.File, prefix string, recursive, hidden bool) error {
	for dir.Next() {
		if dir.IsParent() || (dir.IsHidden() && !hidden) {
			continue
		}
		info, err := dir.Stat()
		if err != nil {
			return err
		}
		name := path.Join(prefix, dir.Name())
		fmt.Printf("%s %12d %s %s\n", info.Mode(), info.Size(), info.ModTime().Format("2006-01-02 15:04"), name)

		if recursive && dir.IsDir() {
			sub, err := dir.Sub()
			if err != nil {
				return err
			}
			err = list(sub, name, recursive, hidden)
			sub.Close()
			if err != nil {
				return err
			}
		}
	}
	return dir.Err()
}
