package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/bgrewell/disc-kit"
	"github.com/bgrewell/disc-kit/pkg/consts"
	"github.com/bgrewell/disc-kit/pkg/sector"
	"github.com/spf13/cobra"
)

var (
	readLSN   uint32
	readCount uint
	readForm2 bool
	readRaw   bool
)

var readCmd = &cobra.Command{
	Use:   "read <image>",
	Short: "Hex dump sectors of a disc image",
	Long: `Hex dump mode 2 sectors of a disc image.

Examples:
  # Dump the primary volume descriptor of an ISO-9660 track
  disctool read videocd.bin --lsn 16

  # Dump two form 2 sectors
  disctool read videocd.cue --lsn 150 --count 2 --form2

  # Write the form 1 payload of the first 16 sectors to a file
  disctool read videocd.bin --count 16 --raw > head.bin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRead(args[0])
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().Uint32Var(&readLSN, "lsn", 0, "first logical sector to read")
	readCmd.Flags().UintVarP(&readCount, "count", "n", 1, "number of sectors to read")
	readCmd.Flags().BoolVar(&readForm2, "form2", false, "read 2336 byte form 2 payloads")
	readCmd.Flags().BoolVar(&readRaw, "raw", false, "write the payload without hex formatting")
}

func runRead(path string) error {
	d, err := disc.Open(path, openOptions()...)
	if err != nil {
		return err
	}
	defer d.Close()

	size := consts.M2F1_SECTOR_SIZE
	if readForm2 {
		size = consts.M2RAW_SECTOR_SIZE
	}

	buf := make([]byte, size)
	for i := uint(0); i < readCount; i++ {
		lsn := sector.LSN(readLSN) + sector.LSN(i)
		if err := d.ReadMode2Sector(buf, lsn, readForm2); err != nil {
			return fmt.Errorf("sector %d: %w", lsn, err)
		}
		if readRaw {
			if _, err := os.Stdout.Write(buf); err != nil {
				return err
			}
			continue
		}
		fmt.Printf("LSN %d (%s)\n", lsn, sector.LSNToMSF(lsn))
		fmt.Print(hex.Dump(buf))
	}
	return nil
}
