package main

import (
	"fmt"
	"os"
	"path"

	"github.com/bgrewell/disc-kit"
	"github.com/bgrewell/disc-kit/pkg/udf"
	"github.com/spf13/cobra"
)

var (
	lsPath      string
	lsRecursive bool
	lsAll       bool
)

var lsCmd = &cobra.Command{
	Use:   "ls <image>",
	Short: "List a UDF volume",
	Long: `List the files of a UDF volume stored in a plain image or a bin/cue image.

Examples:
  # List the root directory
  disctool ls dvd.udf

  # List a directory tree recursively
  disctool ls dvd.bin --path /VIDEO_TS -r`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLs(args[0])
	},
}

var catCmd = &cobra.Command{
	Use:   "cat <image> <file>",
	Short: "Write a file from a UDF volume to stdout",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCat(args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(lsCmd, catCmd)
	lsCmd.Flags().StringVarP(&lsPath, "path", "p", "/", "directory to list")
	lsCmd.Flags().BoolVarP(&lsRecursive, "recursive", "r", false, "recursive listing")
	lsCmd.Flags().BoolVarP(&lsAll, "all", "a", false, "include hidden entries")
}

func openVolume(image string) (*udf.UDF, error) {
	v, err := disc.OpenUDF(image, openOptions()...)
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "volume %q set %q file set %q (%s)\n",
			v.GetVolumeID(), v.GetVolumeSetID(), v.GetFileSetID(), v.GetNSRIdentifier())
	}
	return v, nil
}

func runLs(image string) error {
	v, err := openVolume(image)
	if err != nil {
		return err
	}
	defer v.Close()

	dir, err := v.OpenDir(lsPath, cfg.Partition < 0, uint16(max(cfg.Partition, 0)))
	if err != nil {
		return err
	}
	defer dir.Close()
	return listDir(dir, path.Clean("/"+lsPath))
}

func listDir(dir *udf.File, prefix string) error {
	for dir.Next() {
		if dir.IsParent() || (dir.IsHidden() && !lsAll) {
			continue
		}
		info, err := dir.Stat()
		if err != nil {
			return err
		}
		name := path.Join(prefix, dir.Name())
		fmt.Printf("%s %12d %s %s\n", info.Mode(), info.Size(), info.ModTime().Format("2006-01-02 15:04"), name)

		if lsRecursive && dir.IsDir() {
			sub, err := dir.Sub()
			if err != nil {
				return err
			}
			err = listDir(sub, name)
			sub.Close()
			if err != nil {
				return err
			}
		}
	}
	return dir.Err()
}

func runCat(image, file string) error {
	v, err := openVolume(image)
	if err != nil {
		return err
	}
	defer v.Close()

	f, err := v.FindFile(file, cfg.Partition < 0, uint16(max(cfg.Partition, 0)))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(os.Stdout)
	return err
}
