package main

import (
	"github.com/gokrazy/mkf439/config"
	"github.com/spf13/pflag"
)

type flags struct {
	verbose     bool
	keepPartial bool
	digest      bool
	progress    bool
}

func (f *flags) register(fs *pflag.FlagSet) {
	fs.BoolVarP(&f.verbose,
		"verbose",
		"v",
		config.Bool("verbose", false),
		`log every packed file and print stack traces on failure`)

	fs.BoolVar(&f.keepPartial,
		"keep_partial",
		config.Bool("keep_partial", false),
		`leave the image file on disk when the build fails`)

	fs.BoolVar(&f.digest,
		"digest",
		config.Bool("digest", false),
		`print the BLAKE2b-256 digest of the finished image`)

	fs.BoolVar(&f.progress,
		"progress",
		config.Bool("progress", false),
		`print a status line after every packed file`)
}
