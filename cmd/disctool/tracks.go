package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bgrewell/disc-kit"
	"github.com/bgrewell/disc-kit/pkg/bincue"
	"github.com/bgrewell/disc-kit/pkg/source"
	"github.com/spf13/cobra"
)

var tracksJSON bool

var tracksCmd = &cobra.Command{
	Use:   "tracks <image>",
	Short: "Show the track table of a disc image",
	Long: `Show the track table of a bin/cue image.

Examples:
  # Read the cue sheet next to the image
  disctool tracks game.cue

  # A bin image without a cue sheet is shown as one XA track
  disctool tracks videocd.bin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTracks(args[0])
	},
}

func init() {
	rootCmd.AddCommand(tracksCmd)
	tracksCmd.Flags().BoolVar(&tracksJSON, "json", false, "print the track table as JSON")
}

func runTracks(path string) error {
	d, err := disc.Open(path, openOptions()...)
	if err != nil {
		return err
	}
	defer d.Close()

	img, ok := d.Driver().(*bincue.Image)
	if !ok {
		return fmt.Errorf("%s is not a bin/cue image", path)
	}
	tracks, err := img.TrackTable()
	if err != nil {
		return err
	}
	leadout, err := img.Leadout()
	if err != nil {
		return err
	}

	if tracksJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Image   string             `json:"image"`
			Cue     string             `json:"cue,omitempty"`
			Tracks  []bincue.TrackInfo `json:"tracks"`
			Leadout string             `json:"leadout"`
		}{d.Source(), cueArg(img), tracks, leadout.String()})
	}

	fmt.Printf("%-5s %-8s %-6s %-9s %-7s %s\n", "TRACK", "FORMAT", "GREEN", "START", "BLOCK", "FLAGS")
	for _, t := range tracks {
		fmt.Printf("%-5d %-8s %-6t %-9s %-7d %s\n", t.Number, t.Format, t.Green, t.StartMSF, t.BlockSize, t.Flags)
	}
	fmt.Printf("%-5s %-8s %-6s %-9s\n", "LO", "", "", leadout)
	return nil
}

func cueArg(img *bincue.Image) string {
	cue, err := img.Arg(source.ArgCue)
	if err != nil {
		return ""
	}
	return cue
}
