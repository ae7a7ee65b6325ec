// Package marshal moves ctypes values between host memory and a target
// address space.
package marshal

import (
	"fmt"

	"github.com/wnxd/microbind/ctypes"
	"github.com/wnxd/microbind/emulator"
	"github.com/wnxd/microbind/encoding"
	"github.com/wnxd/microbind/internal/memory"
	"go.uber.org/zap"
)

// SaveTo writes the bytes of inst at addr and returns the address just past
// them.
func SaveTo(mem emulator.Memory, addr uint64, inst *ctypes.Instance) (uint64, error) {
	stream := memory.PointerStream(emulator.ToPointer(mem, addr))
	if err := encoding.EncodeInstance(stream, inst); err != nil {
		return addr, accessError("write", addr, inst.Size(), err)
	}
	return stream.Offset(), nil
}

// LoadFrom reads a new instance of t from addr.
func LoadFrom(mem emulator.Memory, addr uint64, t ctypes.Type) (*ctypes.Instance, error) {
	if err := ctypes.Storable(t); err != nil {
		return nil, err
	}
	inst, err := encoding.DecodeInstance(memory.PointerStream(emulator.ToPointer(mem, addr)), t)
	if err != nil {
		return nil, accessError("read", addr, t.Size(), err)
	}
	return inst, nil
}

// Store encodes the Go value v in the layout of t at addr. Nothing is written
// if v cannot be bound to t.
func Store(mem emulator.Memory, addr uint64, t ctypes.Type, v any) (uint64, error) {
	b, err := Marshal(t, v)
	if err != nil {
		return addr, err
	}
	stream := memory.PointerStream(emulator.ToPointer(mem, addr))
	if _, err = stream.Write(b); err != nil {
		return addr, accessError("write", addr, len(b), err)
	}
	return stream.Offset(), nil
}

// Extract decodes a value of t at addr into v, which must be a pointer. v is
// left untouched if the read fails.
func Extract(mem emulator.Memory, addr uint64, t ctypes.Type, v any) error {
	if err := ctypes.Storable(t); err != nil {
		return err
	}
	b := make([]byte, t.Size())
	if _, err := memory.PointerStream(emulator.ToPointer(mem, addr)).Read(b); err != nil {
		return accessError("read", addr, len(b), err)
	}
	return Unmarshal(t, b, v)
}

// Marshal returns the bytes of v in the layout of t.
func Marshal(t ctypes.Type, v any) ([]byte, error) {
	buf := make(memory.Buffer, 0, ctypes.Sizeof(t))
	if err := encoding.Encode(memory.BufferStream(&buf), t, v); err != nil {
		return nil, err
	}
	return buf, nil
}

// Unmarshal decodes b, which must hold exactly one value of t, into v.
func Unmarshal(t ctypes.Type, b []byte, v any) error {
	if len(b) != ctypes.Sizeof(t) {
		return fmt.Errorf("%w: need %d bytes, got %d", ctypes.ErrSizeMismatch, ctypes.Sizeof(t), len(b))
	}
	buf := memory.Buffer(b)
	return encoding.Decode(memory.BufferStream(&buf), t, v)
}

func accessError(op string, addr uint64, size int, err error) error {
	Logger().Debug("memory access failed",
		zap.String("op", op),
		zap.Uint64("addr", addr),
		zap.Int("size", size),
		zap.Error(err))
	return &MemoryAccessError{op, addr, size, err}
}
