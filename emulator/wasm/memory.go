// Package wasm adapts a wazero linear memory to emulator.Memory.
package wasm

import (
	"bytes"
	"fmt"
	"math"

	"github.com/tetratelabs/wazero/api"
	"github.com/wnxd/microbind/emulator"
)

// Memory addresses a 32-bit linear memory. Addresses are offsets into it.
type Memory struct {
	Mem api.Memory
}

var _ emulator.Memory = (*Memory)(nil)

func Wrap(mem api.Memory) *Memory {
	if mem == nil {
		return nil
	}
	return &Memory{Mem: mem}
}

// FromModule wraps the memory a module exports under name.
func FromModule(mod api.Module, name string) (*Memory, error) {
	mem := mod.ExportedMemory(name)
	if mem == nil {
		return nil, fmt.Errorf("module %s exports no memory %q", mod.Name(), name)
	}
	return Wrap(mem), nil
}

func (m *Memory) Size() uint64 {
	return uint64(m.Mem.Size())
}

func (m *Memory) MemRead(addr, size uint64) ([]byte, error) {
	if addr > math.MaxUint32 || size > math.MaxUint32 {
		return nil, fmt.Errorf("%w: offset=%d, length=%d", emulator.ErrUnmapped, addr, size)
	}
	data, ok := m.Mem.Read(uint32(addr), uint32(size))
	if !ok {
		return nil, fmt.Errorf("%w: read out of bounds: offset=%d, length=%d", emulator.ErrUnmapped, addr, size)
	}
	return bytes.Clone(data), nil
}

func (m *Memory) MemWrite(addr uint64, data []byte) error {
	if addr > math.MaxUint32 || uint64(len(data)) > math.MaxUint32 {
		return fmt.Errorf("%w: offset=%d, length=%d", emulator.ErrUnmapped, addr, len(data))
	}
	if !m.Mem.Write(uint32(addr), data) {
		return fmt.Errorf("%w: write out of bounds: offset=%d, length=%d", emulator.ErrUnmapped, addr, len(data))
	}
	return nil
}
