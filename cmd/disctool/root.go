package main

import (
	"fmt"
	"os"

	"github.com/bgrewell/disc-kit/pkg/logging"
	"github.com/bgrewell/disc-kit/pkg/option"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configFile string
	cfg        *Config
)

var rootCmd = &cobra.Command{
	Use:   "disctool",
	Short: "Inspect bin/cue disc images and the UDF volumes stored on them",
	Long: `disctool is a read-only command-line tool for CD and DVD images.

It reads the track table of bin/cue images, dumps raw or mode 2 sectors and
lists or extracts files from UDF volumes found on them.

Commands:
  tracks      Show the track table of a disc image
  read        Hex dump sectors of a disc image
  ls          List a UDF volume
  cat         Write a file from a UDF volume to stdout`,
	Version: "0.1.0-dev",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := LoadConfig(configFile)
		if err != nil {
			return err
		}
		if verbose {
			c.Verbose = true
		}
		cfg = c
		return nil
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./disctool.yaml)")
}

// openOptions turns the loaded configuration into open options.
func openOptions() []option.OpenOption {
	level := logging.LEVEL_INFO
	if cfg.Verbose {
		level = logging.LEVEL_DEBUG
	}
	opts := []option.OpenOption{
		option.WithLogger(logging.NewLogger(logging.NewSimpleLogger(os.Stderr, level, cfg.Color))),
		option.WithSectorSize(cfg.SectorSize),
		option.WithMmap(cfg.UseMmap),
	}
	if cfg.Partition >= 0 {
		opts = append(opts, option.WithPartition(uint16(cfg.Partition)))
	}
	return opts
}
