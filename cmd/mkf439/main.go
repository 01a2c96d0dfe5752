// mkf439 builds an F439 file system image from a list of files.
//
// Usage:
//
//	mkf439 [flags] [--] <image-path> <nBlocks> <file0> [file1 ...]
//
// Arguments after -- are never read as flags, which allows input files
// whose names start with a dash.
//
// Defaults for the flags can be stored one per file in the configuration
// directory ($F439_CONFIG_DIR, typically ~/.config/f439), e.g. a file
// named keep_partial containing "true".
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gokrazy/mkf439/f439"
	"github.com/gokrazy/mkf439/logger"
	"github.com/gokrazy/mkf439/progress"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

const usage = "usage: mkf439 [flags] [--] <image-path> <nBlocks> <file0> [file1 ...]"

func parseBlocks(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, &f439.Error{Kind: f439.ErrArgument, Err: errors.Errorf("nBlocks %q is not a positive 32-bit integer", s)}
	}
	if n == 0 {
		return 0, &f439.Error{Kind: f439.ErrArgument, Err: errors.New("nBlocks must be positive")}
	}
	return uint32(n), nil
}

func digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// flagError converts a flag parsing failure into an ErrArgument. pflag
// reads a negative block count such as -4 as a shorthand flag, so that
// case is reported as a bad nBlocks instead.
func flagError(args []string, err error) error {
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		if _, perr := strconv.ParseInt(arg, 10, 64); perr == nil {
			_, berr := parseBlocks(arg)
			return berr
		}
	}
	return &f439.Error{Kind: f439.ErrArgument, Err: err}
}

func run(args []string, stdout, stderr io.Writer) error {
	var fl flags
	fs := pflag.NewFlagSet("mkf439", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}
	fl.register(fs)

	var err error
	if perr := fs.Parse(args); perr == pflag.ErrHelp {
		return nil
	} else if perr != nil {
		err = flagError(args, perr)
	} else {
		err = build(fs, &fl, stdout, stderr)
	}
	if err == nil {
		return nil
	}
	if fl.verbose {
		fmt.Fprintf(stderr, "mkf439: %+v\n", err)
	} else {
		fmt.Fprintf(stderr, "mkf439: %v\n", err)
	}
	if errors.Is(err, f439.ErrArgument) {
		fs.Usage()
	}
	return err
}

func build(fs *pflag.FlagSet, fl *flags, stdout, stderr io.Writer) error {
	if fs.NArg() < 3 {
		return &f439.Error{Kind: f439.ErrArgument, Err: errors.New("expected an image path, a block count and at least one file")}
	}
	nBlocks, err := parseBlocks(fs.Arg(1))
	if err != nil {
		return err
	}

	level := zap.InfoLevel
	if fl.verbose {
		level = zap.DebugLevel
	}
	log := logger.New("mkf439", level, stderr)
	defer log.Sync()

	opts := f439.Options{
		Logger:      log,
		KeepPartial: fl.keepPartial,
	}
	if fl.progress {
		opts.Progress = progress.NewReporter(stdout)
	}
	imgPath := fs.Arg(0)
	if _, err := f439.Build(imgPath, nBlocks, fs.Args()[2:], opts); err != nil {
		return err
	}

	if fl.digest {
		sum, err := digest(imgPath)
		if err != nil {
			return errors.Wrap(err, "computing digest")
		}
		fmt.Fprintf(stdout, "%s  %s\n", sum, imgPath)
	}
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
