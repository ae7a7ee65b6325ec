package wasm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/wnxd/microbind/ctypes"
	"github.com/wnxd/microbind/emulator"
	"github.com/wnxd/microbind/emulator/wasm"
	"github.com/wnxd/microbind/marshal"
)

// memoryWASM is a minimal module with 1 page of memory exported as "memory"
var memoryWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 page, no max
	0x07, 0x0a, 0x01, // export section: 10 bytes, 1 export
	0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, // name: "memory"
	0x02, 0x00, // kind: memory, index 0
}

func instantiate(t *testing.T) api.Module {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { rt.Close(ctx) })

	compiled, err := rt.CompileModule(ctx, memoryWASM)
	if err != nil {
		t.Fatalf("failed to compile: %v", err)
	}
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		t.Fatalf("failed to instantiate: %v", err)
	}
	return mod
}

func TestWrap_Nil(t *testing.T) {
	if mem := wasm.Wrap(nil); mem != nil {
		t.Error("expected nil for nil memory")
	}
}

func TestFromModule(t *testing.T) {
	mod := instantiate(t)
	mem, err := wasm.FromModule(mod, "memory")
	if err != nil {
		t.Fatal(err)
	}
	if mem.Size() != 65536 {
		t.Errorf("expected one page, got %d bytes", mem.Size())
	}
	if _, err := wasm.FromModule(mod, "heap"); err == nil {
		t.Error("expected an error for a missing export")
	}
}

func TestMemory_ReadWrite(t *testing.T) {
	mem, _ := wasm.FromModule(instantiate(t), "memory")

	data := []byte{1, 2, 3, 4}
	if err := mem.MemWrite(0x100, data); err != nil {
		t.Fatalf("MemWrite failed: %v", err)
	}
	read, err := mem.MemRead(0x100, 4)
	if err != nil {
		t.Fatalf("MemRead failed: %v", err)
	}
	for i, b := range read {
		if b != data[i] {
			t.Errorf("byte %d: expected %d, got %d", i, data[i], b)
		}
	}

	// the result must not alias linear memory
	read[0] = 0xff
	if again, _ := mem.MemRead(0x100, 1); again[0] != 1 {
		t.Error("MemRead returned a view of linear memory")
	}
}

func TestMemory_OutOfBounds(t *testing.T) {
	mem, _ := wasm.FromModule(instantiate(t), "memory")
	tests := []struct {
		name string
		op   func() error
	}{
		{"read at boundary", func() error { _, err := mem.MemRead(65536, 1); return err }},
		{"read straddles", func() error { _, err := mem.MemRead(65534, 4); return err }},
		{"read above 4GiB", func() error { _, err := mem.MemRead(1<<32, 1); return err }},
		{"write at boundary", func() error { return mem.MemWrite(65536, []byte{1}) }},
		{"write above 4GiB", func() error { return mem.MemWrite(1<<32, []byte{1}) }},
	}
	for _, tt := range tests {
		if err := tt.op(); !errors.Is(err, emulator.ErrUnmapped) {
			t.Errorf("%s: expected ErrUnmapped, got %v", tt.name, err)
		}
	}
}

func TestMemory_Marshal(t *testing.T) {
	mem, _ := wasm.FromModule(instantiate(t), "memory")
	header := ctypes.MustStruct("EFI_TABLE_HEADER",
		ctypes.Field{Name: "Signature", Type: ctypes.UINT64},
		ctypes.Field{Name: "Revision", Type: ctypes.UINT32},
		ctypes.Field{Name: "HeaderSize", Type: ctypes.UINT32},
		ctypes.Field{Name: "CRC32", Type: ctypes.UINT32},
		ctypes.Field{Name: "Reserved", Type: ctypes.UINT32},
	)
	inst := ctypes.New(header)
	inst.SetUint("Signature", 0x5453595320494249)
	inst.SetUint("Revision", 0x00020046)
	inst.SetUint("HeaderSize", 0x78)

	next, err := marshal.SaveTo(mem, 0x40, inst)
	if err != nil {
		t.Fatal(err)
	}
	if next != 0x40+24 {
		t.Errorf("unexpected next address %#x", next)
	}
	raw, _ := mem.MemRead(0x40, 8)
	if string(raw) != "IBI SYST" {
		t.Errorf("unexpected signature bytes %q", raw)
	}
	got, err := marshal.LoadFrom(mem, 0x40, header)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(inst) {
		t.Errorf("round trip mismatch: % x", got.Bytes())
	}

	_, err = marshal.LoadFrom(mem, 65536-8, header)
	var mae *marshal.MemoryAccessError
	if !errors.As(err, &mae) || !errors.Is(err, emulator.ErrUnmapped) {
		t.Errorf("expected MemoryAccessError wrapping ErrUnmapped, got %v", err)
	}
}
