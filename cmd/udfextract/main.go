package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bgrewell/disc-kit"
	"github.com/bgrewell/disc-kit/pkg/logging"
	"github.com/bgrewell/disc-kit/pkg/option"
	"github.com/bgrewell/disc-kit/pkg/udf"
	"github.com/theckman/yacspin"
	"golang.org/x/term"
)

var (
	version = "dev"
)

// truncateString truncates the input string to the specified max length.
// If truncation occurs, it prepends "..." to indicate the string has been shortened.
func truncateString(input string, maxLength int) string {
	if len(input) <= maxLength {
		return input
	}
	if maxLength <= 3 {
		return input[len(input)-maxLength:]
	}
	return "..." + input[len(input)-(maxLength-3):]
}

// progress tracks which file of the volume is being written.
type progress struct {
	current int
	total   int
}

// CreateProgressCallback returns a ProgressCallback that updates the spinner's message.
// The reader reports one file at a time so the file counters come from p.
func CreateProgressCallback(spinner *yacspin.Spinner, p *progress) option.ExtractionProgressCallback {
	return func(
		currentFilename string,
		bytesTransferred int64,
		totalBytes int64,
		_ int,
		_ int,
	) {
		if spinner == nil {
			return
		}

		width, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			width = 80
		}

		percent := 100.0
		if totalBytes > 0 {
			percent = float64(bytesTransferred) / float64(totalBytes) * 100
		}
		fixedPart := fmt.Sprintf(" [%d/%d] ", p.current, p.total)
		suffixPart := fmt.Sprintf(" - %.2f%%", percent)

		availableSpace := width - len(fixedPart) - len(suffixPart) - 6
		if availableSpace < 10 {
			availableSpace = 10
		}

		adjustedFilename := truncateString(currentFilename, availableSpace)
		spinner.Message(fmt.Sprintf(" [%d/%d] %s - %.2f%%", p.current, p.total, adjustedFilename, percent))
	}
}

// InitializeSpinner sets up and starts the yacspin spinner.
func InitializeSpinner() (*yacspin.Spinner, error) {
	settings := yacspin.Config{
		Frequency:         100 * time.Millisecond,
		ShowCursor:        false,
		SpinnerAtEnd:      false,
		CharSet:           yacspin.CharSets[14],
		Colors:            []string{"fgHiCyan"},
		StopColors:        []string{"fgHiGreen"},
		StopFailColors:    []string{"fgHiRed"},
		StopFailCharacter: "✗",
		StopCharacter:     "✓",
	}

	spinner, err := yacspin.New(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create spinner: %w", err)
	}

	if err := spinner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start spinner: %w", err)
	}

	return spinner, nil
}

// extractor copies a UDF directory tree below root.
type extractor struct {
	root   string
	hidden bool
	logger *logging.Logger
	p      *progress
}

func newExtractor(outputDir string, hidden bool, logger *logging.Logger, p *progress) *extractor {
	return &extractor{root: filepath.Clean(outputDir), hidden: hidden, logger: logger, p: p}
}

// skip reports whether the entry under the cursor stays out of the extraction.
func (x *extractor) skip(dir *udf.File) bool {
	return dir.IsParent() || (dir.IsHidden() && !x.hidden)
}

// target joins name to parent. Names that are not a single path element, or
// that would land outside the output directory, are rejected.
func (x *extractor) target(parent, name string) (string, bool) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return "", false
	}
	t := filepath.Join(parent, name)
	rel, err := filepath.Rel(x.root, t)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", false
	}
	return t, true
}

// countFiles returns the number of regular files below dir that extract writes.
func (x *extractor) countFiles(dir *udf.File, parent string) (int, error) {
	count := 0
	for dir.Next() {
		if x.skip(dir) {
			continue
		}
		target, ok := x.target(parent, dir.Name())
		if !ok {
			continue
		}
		if !dir.IsDir() {
			count++
			continue
		}
		sub, err := dir.Sub()
		if err != nil {
			return count, err
		}
		n, err := x.countFiles(sub, target)
		sub.Close()
		count += n
		if err != nil {
			return count, err
		}
	}
	return count, dir.Err()
}

// extract writes every entry below dir into outputDir.
func (x *extractor) extract(dir *udf.File, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	for dir.Next() {
		if x.skip(dir) {
			continue
		}
		target, ok := x.target(outputDir, dir.Name())
		if !ok {
			x.logger.Warn("skipping entry with unusable name", "directory", outputDir, "name", dir.Name())
			continue
		}

		if dir.IsDir() {
			sub, err := dir.Sub()
			if err != nil {
				return err
			}
			err = x.extract(sub, target)
			sub.Close()
			if err != nil {
				return err
			}
			continue
		}

		x.p.current++
		info, err := dir.Stat()
		if err != nil {
			return err
		}
		out, err := os.Create(target)
		if err != nil {
			return err
		}
		_, err = dir.WriteTo(out)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("failed to extract %s: %w", target, err)
		}
		if mtime := info.ModTime(); !mtime.IsZero() {
			if err := os.Chtimes(target, mtime, mtime); err != nil {
				x.logger.Warn("unable to set modification time", "file", target, "error", err.Error())
			}
		}
	}
	return dir.Err()
}

// config carries the parsed command line into run.
type config struct {
	image     string
	outputDir string
	hidden    bool
	short     bool
	partition int
	level     int
}

// run extracts the volume. Every handle it opens is closed before it returns.
func run(c config, spinner *yacspin.Spinner) error {
	logger := logging.NewLogger(logging.NewSimpleLogger(os.Stderr, c.level, true))

	p := &progress{}
	opts := []option.OpenOption{
		option.WithLogger(logger),
		option.WithMmap(true),
		option.WithExtractionProgress(CreateProgressCallback(spinner, p)),
	}
	if c.partition >= 0 {
		opts = append(opts, option.WithPartition(uint16(c.partition)))
	}
	if c.short {
		opts = append(opts, option.WithSectorSize(2336))
	}

	v, err := disc.OpenUDF(c.image, opts...)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer v.Close()

	x := newExtractor(c.outputDir, c.hidden, logger, p)

	root, err := v.DefaultRoot()
	if err != nil {
		return fmt.Errorf("failed to find root directory: %w", err)
	}
	p.total, err = x.countFiles(root, x.root)
	root.Close()
	if err != nil {
		return fmt.Errorf("failed to read directory tree: %w", err)
	}

	root, err = v.DefaultRoot()
	if err != nil {
		return fmt.Errorf("failed to find root directory: %w", err)
	}
	defer root.Close()

	if err := x.extract(root, x.root); err != nil {
		return fmt.Errorf("failed to extract image: %w", err)
	}
	return nil
}

func main() {
	// Logging level flags
	debug := flag.Bool("v", false, "Enable verbose (debug) logging")
	trace := flag.Bool("vv", false, "Enable trace logging")

	// Extraction options
	hidden := flag.Bool("hidden", false, "Extract entries marked hidden")
	partition := flag.Int("partition", -1, "Only accept this UDF partition number")
	short := flag.Bool("2336", false, "The bin image uses 2336 byte sectors")

	// Output directory
	outputDir := flag.String("o", "./extracted", "Output directory for extracted files")

	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("udfextract v" + version)
		fmt.Println("Usage: udfextract [options] <path-to-image>")
		fmt.Println("  -v               Enable verbose (debug) logging")
		fmt.Println("  -vv              Enable trace logging")
		fmt.Println("  -hidden          Extract entries marked hidden")
		fmt.Println("  -partition <n>   Only accept this UDF partition number")
		fmt.Println("  -2336            The bin image uses 2336 byte sectors")
		fmt.Println("  -o <directory>   Output directory (default './extracted')")
		os.Exit(1)
	}

	c := config{
		image:     flag.Arg(0),
		outputDir: *outputDir,
		hidden:    *hidden,
		short:     *short,
		partition: *partition,
		level:     logging.LEVEL_INFO,
	}
	if *debug {
		c.level = logging.LEVEL_DEBUG
	}
	if *trace {
		c.level = logging.LEVEL_TRACE
	}

	spinner, err := InitializeSpinner()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize spinner: %v\n", err)
		fmt.Fprintf(os.Stderr, "Progress updates will be disabled.\n")
	}

	if err := run(c, spinner); err != nil {
		if spinner != nil {
			spinner.StopFailMessage(fmt.Sprintf(" %v", err))
			spinner.StopFail()
		} else {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		os.Exit(1)
	}
	if spinner != nil {
		spinner.StopMessage(fmt.Sprintf(" All files extracted successfully to %s!", c.outputDir))
		spinner.Stop()
	}
}
