package emulator

import (
	"encoding/binary"
	"slices"
)

// Pointer is an address inside a Memory.
type Pointer struct {
	mem  Memory
	addr uint64
}

func ToPointer(mem Memory, addr uint64) Pointer {
	return Pointer{mem, addr}
}

func (p Pointer) IsNil() bool {
	return p.addr == 0
}

func (p Pointer) Address() uint64 {
	return p.addr
}

func (p Pointer) Memory() Memory {
	return p.mem
}

func (p Pointer) Add(offset uint64) Pointer {
	return Pointer{p.mem, p.addr + offset}
}

func (p Pointer) Sub(offset uint64) Pointer {
	return Pointer{p.mem, p.addr - offset}
}

func (p Pointer) MemRead(size uint64) ([]byte, error) {
	return p.mem.MemRead(p.addr, size)
}

func (p Pointer) MemWrite(data []byte) error {
	return p.mem.MemWrite(p.addr, data)
}

func (p Pointer) MemReadString() (string, error) {
	var data []byte
	const chunk = 0x10
	// chunks stay 16-byte aligned so a read never crosses into the next page
	for begin := p.addr; ; begin = (begin + chunk) &^ (chunk - 1) {
		buf, err := p.mem.MemRead(begin, chunk-begin&(chunk-1))
		if err != nil {
			return "", err
		}
		i := slices.Index(buf, 0)
		if i == -1 {
			data = append(data, buf...)
		} else {
			data = append(data, buf[:i]...)
			break
		}
	}
	return string(data), nil
}

// MemReadPointer reads a little-endian address of the given width (4 or 8).
func (p Pointer) MemReadPointer(size uint64) (ptr Pointer, err error) {
	if size != 4 && size != 8 {
		err = ErrArchUnsupported
		return
	}
	buf, err := p.mem.MemRead(p.addr, size)
	if err != nil {
		return
	}
	var addr uint64
	if size == 4 {
		addr = uint64(binary.LittleEndian.Uint32(buf))
	} else {
		addr = binary.LittleEndian.Uint64(buf)
	}
	ptr.mem, ptr.addr = p.mem, addr
	return
}

func (p Pointer) ReadAt(b []byte, off int64) (n int, err error) {
	data, err := p.mem.MemRead(p.addr+uint64(off), uint64(len(b)))
	if err != nil {
		return 0, err
	}
	return copy(b, data), nil
}

func (p Pointer) WriteAt(b []byte, off int64) (n int, err error) {
	err = p.mem.MemWrite(p.addr+uint64(off), b)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}
