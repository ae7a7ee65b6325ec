package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/wnxd/microbind/ctypes"
	"github.com/wnxd/microbind/decl"
	"github.com/wnxd/microbind/encoding"
	"github.com/wnxd/microbind/marshal"
	"go.uber.org/zap"
)

func main() {
	var opts options
	flag.StringVar(&opts.declFile, "decl", "", "Path to YAML declaration file")
	flag.IntVar(&opts.bits, "bits", 64, "Target width (32 or 64)")
	flag.StringVar(&opts.typeName, "type", "", "Type to print (default: all declared types)")
	flag.StringVar(&opts.image, "image", "", "Raw memory image to map")
	flag.Uint64Var(&opts.base, "base", 0, "Address the image is mapped at")
	flag.StringVar(&opts.load, "load", "", "Type to decode from the image")
	flag.Uint64Var(&opts.at, "at", 0, "Address to decode at")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if opts.declFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: ctlayout -decl <file.yaml> [-bits 32|64] [-type NAME]")
		fmt.Fprintln(os.Stderr, "       ctlayout -decl <file.yaml> -image <file> -base ADDR -load TYPE -at ADDR")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		ctypes.SetLogger(logger.Named("ctypes"))
		encoding.SetLogger(logger.Named("encoding"))
		marshal.SetLogger(logger.Named("marshal"))
		decl.SetLogger(logger.Named("decl"))
	}

	opts.bold = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
