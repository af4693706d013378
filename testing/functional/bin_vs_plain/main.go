package main

import (
	"crypto/md5"
	"fmt"
	"os"
	"path"

	"github.com/bgrewell/disc-kit"
	"github.com/bgrewell/disc-kit/pkg/logging"
	"github.com/bgrewell/disc-kit/pkg/option"
	"github.com/bgrewell/disc-kit/pkg/sector"
	"github.com/bgrewell/disc-kit/pkg/udf"
	"github.com/bgrewell/usage"
)

// hashTree returns the md5 of every regular file below dir, keyed by path.
func hashTree(dir *udf.File, prefix string, sums map[string]string) error {
	for dir.Next() {
		if dir.IsParent() {
			continue
		}
		name := path.Join(prefix, dir.Name())
		if dir.IsDir() {
			sub, err := dir.Sub()
			if err != nil {
				return err
			}
			err = hashTree(sub, name, sums)
			sub.Close()
			if err != nil {
				return err
			}
			continue
		}
		hash := md5.New()
		if _, err := dir.WriteTo(hash); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		sums[name] = fmt.Sprintf("%x", hash.Sum(nil))
	}
	return dir.Err()
}

func volumeSums(image string, opts ...option.OpenOption) (map[string]string, error) {
	v, err := disc.OpenUDF(image, opts...)
	if err != nil {
		return nil, err
	}
	defer v.Close()

	root, err := v.DefaultRoot()
	if err != nil {
		return nil, err
	}
	defer root.Close()

	sums := map[string]string{}
	return sums, hashTree(root, "/", sums)
}

// unwrap copies the form 1 payload of every sector of a bin image into a plain image.
func unwrap(bin string, out *os.File, opts ...option.OpenOption) error {
	d, err := disc.Open(bin, opts...)
	if err != nil {
		return err
	}
	defer d.Close()

	size, err := d.StatSize()
	if err != nil {
		return err
	}
	buf := make([]byte, 2048)
	for lsn := sector.LSN(0); lsn < sector.LSN(size); lsn++ {
		if err := d.ReadDataSectors(buf, lsn, len(buf), 1); err != nil {
			return fmt.Errorf("sector %d: %w", lsn, err)
		}
		if _, err := out.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

func main() {

	u := usage.NewUsage(
		usage.WithApplicationName("bin_vs_plain"),
		usage.WithApplicationDescription("bin_vs_plain is a functional testing application that is part of disc-kit and is designed to verify that a UDF volume reads the same through the bin/cue driver as it does from a plain 2048 byte sector copy of the same image."),
	)
	help := u.AddBooleanOption("h", "help", false, "Display this help message", "", nil)
	rm := u.AddBooleanOption("rm", "remove-test-file", true, "Remove the test file after running the tests", "", nil)
	short := u.AddBooleanOption("s", "sector-2336", false, "The input image uses 2336 byte sectors", "", nil)
	input := u.AddArgument(1, "input", "The input bin file to run the tests against", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if input == nil || *input == "" {
		u.PrintError(fmt.Errorf("location of the input bin file <input> must be provided"))
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.NewSimpleLogger(os.Stderr, logging.LEVEL_DEBUG, true))
	opts := []option.OpenOption{option.WithLogger(logger)}
	if *short {
		opts = append(opts, option.WithSectorSize(2336))
	}

	o, err := os.CreateTemp("", "bin_vs_plain_test_*.udf")
	if err != nil {
		fmt.Printf("Failed to create temporary file: %s\n", err)
		os.Exit(1)
	}
	if *rm {
		defer os.Remove(o.Name())
	} else {
		fmt.Printf("Temporary file: %s\n", o.Name())
	}

	err = unwrap(*input, o, opts...)
	o.Close()
	if err != nil {
		fmt.Printf("Failed to unwrap bin image: %s\n", err)
		os.Exit(1)
	}

	binSums, err := volumeSums(*input, opts...)
	if err != nil {
		fmt.Printf("Failed to read UDF volume through the bin/cue driver: %s\n", err)
		os.Exit(1)
	}
	plainSums, err := volumeSums(o.Name(), option.WithLogger(logger), option.WithMmap(true))
	if err != nil {
		fmt.Printf("Failed to read UDF volume from the plain image: %s\n", err)
		os.Exit(1)
	}

	failed := len(binSums) != len(plainSums)
	for name, sum := range binSums {
		if plainSums[name] != sum {
			fmt.Printf("MD5 hash mismatch for %s:\n  Bin:   %s\n  Plain: %s\n", name, sum, plainSums[name])
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
	fmt.Printf("%d files match\n", len(binSums))
}
