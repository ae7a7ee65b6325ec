package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wnxd/microbind/ctypes"
	"github.com/wnxd/microbind/decl"
	"github.com/wnxd/microbind/emulator"
	"github.com/wnxd/microbind/internal/memory"
	"github.com/wnxd/microbind/marshal"
)

type options struct {
	declFile string
	bits     int
	typeName string
	image    string
	base     uint64
	load     string
	at       uint64
	bold     bool
}

func run(opts options, w io.Writer) error {
	var arch emulator.Arch
	switch opts.bits {
	case 32:
		arch = emulator.ARCH_X86
	case 64:
		arch = emulator.ARCH_X86_64
	default:
		return fmt.Errorf("%w: -bits %d", emulator.ErrArchUnsupported, opts.bits)
	}
	profile, err := ctypes.ProfileFor(arch)
	if err != nil {
		return err
	}
	set, err := decl.LoadFile(opts.declFile, profile)
	if err != nil {
		return err
	}
	if opts.image != "" || opts.load != "" {
		return decodeImage(opts, arch, set, w)
	}

	p := printer{w: w, bold: opts.bold}
	names := set.Types()
	if opts.typeName != "" {
		names = []string{opts.typeName}
	}
	for i, name := range names {
		t, err := set.Resolve(name)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		p.layout(name, t)
	}
	return p.err
}

func decodeImage(opts options, arch emulator.Arch, set *decl.Set, w io.Writer) error {
	if opts.image == "" || opts.load == "" {
		return errors.New("-image and -load must be given together")
	}
	t, err := set.Resolve(opts.load)
	if err != nil {
		return err
	}
	f, err := os.Open(opts.image)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat image: %w", err)
	}

	mem, err := memory.NewFlat(arch)
	if err != nil {
		return err
	}
	defer mem.Close()
	size := uint64(info.Size())
	err = mem.Load(memory.Region{Addr: opts.base, Size: size, Length: size, Prot: emulator.MEM_PROT_READ, ReaderAt: f})
	if err != nil {
		return fmt.Errorf("map image: %w", err)
	}
	inst, err := marshal.LoadFrom(mem, opts.at, t)
	if err != nil {
		return err
	}
	p := printer{w: w, bold: opts.bold}
	p.header("%s @ %#x", opts.load, opts.at)
	p.value("", opts.load, inst)
	return p.err
}
