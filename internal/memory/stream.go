package memory

import (
	"io"

	"github.com/wnxd/microbind/emulator"
	"github.com/wnxd/microbind/encoding"
)

type pointerStream struct {
	ptr emulator.Pointer
}

// PointerStream returns a stream that reads and writes target memory
// starting at ptr.
func PointerStream(ptr emulator.Pointer) encoding.Stream {
	return &pointerStream{ptr}
}

func (ps *pointerStream) Offset() uint64 {
	return ps.ptr.Address()
}

func (ps *pointerStream) Skip(n int) error {
	ps.ptr = ps.ptr.Add(uint64(n))
	return nil
}

func (ps *pointerStream) Read(b []byte) (int, error) {
	n, err := ps.ptr.ReadAt(b, 0)
	if err == nil && n < len(b) {
		err = io.ErrUnexpectedEOF
	}
	if err == nil {
		ps.Skip(n)
	}
	return n, err
}

func (ps *pointerStream) Write(b []byte) (int, error) {
	n, err := ps.ptr.WriteAt(b, 0)
	if err == nil {
		ps.Skip(n)
	}
	return n, err
}
