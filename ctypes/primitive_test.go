package ctypes

import (
	"slices"
	"testing"
)

func TestPrimitiveSizes(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		signed bool
	}{
		{"INT8", 1, true},
		{"INT16", 2, true},
		{"INT32", 4, true},
		{"INT64", 8, true},
		{"INTN", 8, true},
		{"UINT8", 1, false},
		{"UINT16", 2, false},
		{"UINT32", 4, false},
		{"UINT64", 8, false},
		{"UINTN", 8, false},
		{"BOOLEAN", 1, false},
		{"CHAR8", 1, false},
		{"CHAR16", 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := LookupPrimitive(tt.name)
			if !ok {
				t.Fatalf("LookupPrimitive(%q) not found", tt.name)
			}
			if p.Size() != tt.size {
				t.Errorf("expected size %d, got %d", tt.size, p.Size())
			}
			if p.Signed() != tt.signed {
				t.Errorf("expected signed %v, got %v", tt.signed, p.Signed())
			}
		})
	}
}

func TestPrimitiveAliases(t *testing.T) {
	if INTN != INT64 || UINTN != UINT64 {
		t.Error("native width aliases should resolve to the 64-bit primitives")
	}
	if BOOLEAN != UINT8 || CHAR8 != UINT8 || CHAR16 != UINT16 {
		t.Error("character aliases should share descriptors with unsigned primitives")
	}
	if p, ok := LookupPrimitive("uint32"); !ok || p != UINT32 {
		t.Error("lookup should be case-insensitive")
	}
	if _, ok := LookupPrimitive("FLOAT"); ok {
		t.Error("FLOAT is not a primitive")
	}
}

func TestPrimitiveNames(t *testing.T) {
	names := PrimitiveNames()
	if len(names) != 13 {
		t.Fatalf("expected 13 names, got %d: %v", len(names), names)
	}
	if !slices.IsSorted(names) {
		t.Errorf("names not sorted: %v", names)
	}
}

func TestPrimitiveCodec(t *testing.T) {
	b := make([]byte, 8)
	INT16.PutUint(b, 0xfffe)
	if got := INT16.Int(b); got != -2 {
		t.Errorf("INT16.Int: expected -2, got %d", got)
	}
	if got := INT16.Uint(b); got != 0xfffe {
		t.Errorf("INT16.Uint: expected 0xfffe, got %#x", got)
	}
	if b[2] != 0 {
		t.Error("PutUint wrote past the primitive width")
	}

	UINT32.PutUint(b, 0x1_2345_6789)
	if got := UINT32.Uint(b); got != 0x23456789 {
		t.Errorf("UINT32 should truncate, got %#x", got)
	}
	if b[0] != 0x89 || b[3] != 0x23 {
		t.Errorf("expected little-endian bytes, got % x", b[:4])
	}
}
