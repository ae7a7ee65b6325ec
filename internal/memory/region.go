package memory

import (
	"io"

	"github.com/wnxd/microbind/emulator"
)

// Region is a span of an image to be placed in memory. The first Length
// bytes come from ReaderAt, the rest of Size is zero.
type Region struct {
	Addr, Size uint64
	Length     uint64
	Prot       emulator.MemProt
	io.ReaderAt
}
