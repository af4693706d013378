package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bgrewell/disc-kit"
	"github.com/bgrewell/disc-kit/pkg/bincue"
	"github.com/bgrewell/disc-kit/pkg/logging"
	"github.com/bgrewell/disc-kit/pkg/option"
	"github.com/bgrewell/disc-kit/pkg/source"
	"github.com/bgrewell/usage"
)

var (
	version = "dev"
)

func main() {

	u := usage.NewUsage(
		usage.WithApplicationName("discinfo"),
		usage.WithApplicationDescription("discinfo prints the track table of a bin/cue disc image."),
	)
	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Print debug output", "", nil)
	short := u.AddBooleanOption("s", "sector-2336", false, "The image uses 2336 byte sectors", "", nil)
	path := u.AddArgument(1, "image", "Path to the .bin or .cue file", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		fmt.Println("discinfo v" + version)
		u.PrintUsage()
		os.Exit(0)
	}

	if path == nil || *path == "" {
		u.PrintError(fmt.Errorf("location of the disc image <image> must be provided"))
		os.Exit(1)
	}

	level := logging.LEVEL_INFO
	if *verbose {
		level = logging.LEVEL_DEBUG
	}
	opts := []option.OpenOption{
		option.WithLogger(logging.NewLogger(logging.NewSimpleLogger(os.Stderr, level, true))),
	}
	if *short {
		opts = append(opts, option.WithSectorSize(2336))
	}

	if err := run(os.Stdout, *path, opts...); err != nil {
		u.PrintError(err)
		os.Exit(1)
	}
}

// run prints the disc summary and track table of path to w. The disc is
// closed before it returns.
func run(w io.Writer, path string, opts ...option.OpenOption) error {
	d, err := disc.Open(path, opts...)
	if err != nil {
		return err
	}
	defer d.Close()

	fmt.Fprintf(w, "Source:  %s\n", d.Source())
	fmt.Fprintf(w, "Driver:  %s\n", d.DriverID())
	if cue, err := d.Arg(source.ArgCue); err == nil && cue != "" {
		fmt.Fprintf(w, "Cue:     %s\n", cue)
	}
	size, err := d.StatSize()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Sectors: %d\n\n", size)

	img, ok := d.Driver().(*bincue.Image)
	if !ok {
		printTracks(w, d)
		return nil
	}
	tracks, err := img.TrackTable()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%-5s %-8s %-6s %-9s %-7s %s\n", "TRACK", "FORMAT", "GREEN", "START", "BLOCK", "FLAGS")
	for _, t := range tracks {
		fmt.Fprintf(w, "%-5d %-8s %-6t %-9s %-7d %s\n", t.Number, t.Format, t.Green, t.StartMSF, t.BlockSize, t.Flags)
	}
	if leadout, err := img.Leadout(); err == nil {
		fmt.Fprintf(w, "%-5s %-8s %-6s %-9s\n", "LO", "", "", leadout)
	}
	return nil
}

// printTracks lists tracks through the generic disc interface.
func printTracks(w io.Writer, d *source.Disc) {
	first := d.FirstTrackNum()
	if first == source.InvalidTrack {
		return
	}
	last := first + d.NumTracks()
	for t := first; t <= last; t++ {
		msf, ok := d.TrackMSF(t)
		if !ok {
			continue
		}
		if t == last {
			fmt.Fprintf(w, "%-5s %-8s %-6s %-9s\n", "LO", "", "", msf)
			continue
		}
		fmt.Fprintf(w, "%-5d %-8s %-6t %-9s\n", t, d.TrackFormat(t), d.TrackGreen(t), msf)
	}
}
