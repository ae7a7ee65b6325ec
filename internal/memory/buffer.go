package memory

import (
	"io"

	"github.com/wnxd/microbind/encoding"
)

type Buffer []byte

func (buf *Buffer) ReadAt(b []byte, off int64) (n int, err error) {
	if off < 0 || int(off) >= len(*buf) {
		if len(b) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n = copy(b, (*buf)[off:])
	if n < len(b) {
		err = io.EOF
	}
	return
}

func (buf *Buffer) WriteAt(b []byte, off int64) (n int, err error) {
	if end := len(b) + int(off); end > len(*buf) {
		*buf = append(*buf, make([]byte, end-len(*buf))...)
	}
	return copy((*buf)[off:], b), nil
}

type bufferStream struct {
	buf *Buffer
	off int64
}

// BufferStream returns a stream over buf starting at offset 0. Writes past
// the end grow the buffer.
func BufferStream(buf *Buffer) encoding.Stream {
	return &bufferStream{buf: buf}
}

func (bs *bufferStream) Offset() uint64 {
	return uint64(bs.off)
}

func (bs *bufferStream) Skip(n int) error {
	bs.off += int64(n)
	return nil
}

func (bs *bufferStream) Read(b []byte) (int, error) {
	n, err := bs.buf.ReadAt(b, bs.off)
	if err != nil {
		return n, io.ErrUnexpectedEOF
	}
	bs.off += int64(n)
	return n, nil
}

func (bs *bufferStream) Write(b []byte) (int, error) {
	n, err := bs.buf.WriteAt(b, bs.off)
	bs.off += int64(n)
	return n, err
}
