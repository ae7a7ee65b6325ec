package ctypes

import (
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPointerCacheIdempotent(t *testing.T) {
	c := NewPointerCache(8)
	a := c.PointerTo(UINT32)
	b := c.PointerTo(UINT32)
	if a != b {
		t.Fatal("expected the same descriptor for the same element type")
	}
	if a.Size() != 8 {
		t.Errorf("expected size 8, got %d", a.Size())
	}
	if a.Name() != "LP_8_UINT32" {
		t.Errorf("unexpected name %q", a.Name())
	}
	if a.Elem() != UINT32 {
		t.Error("Elem should be UINT32")
	}

	v1, v2 := c.PointerTo(VOID), c.PointerTo(VOID)
	if v1 != v2 {
		t.Error("void pointer should be cached")
	}
	if v1.Name() != "LP_8_c_void" || v1.Elem() != nil {
		t.Errorf("unexpected void pointer %q", v1.Name())
	}

	if c.PointerTo(UINT16) == a || c.PointerTo(UINT16) == v1 {
		t.Error("different element types must yield different descriptors")
	}
	if c.Len() != 3 {
		t.Errorf("expected 3 cached pointers, got %d", c.Len())
	}
}

func TestPointerCacheLookup(t *testing.T) {
	c := NewPointerCache(4)
	if _, ok := c.Lookup(INT8); ok {
		t.Fatal("empty cache should miss")
	}
	p := c.PointerTo(INT8)
	got, ok := c.Lookup(INT8)
	if !ok || got != p {
		t.Error("Lookup should return the cached descriptor")
	}
	if p.Size() != 4 || p.Name() != "LP_4_INT8" {
		t.Errorf("unexpected 32-bit pointer %s/%d", p.Name(), p.Size())
	}
}

func TestPointerCacheConcurrent(t *testing.T) {
	c := NewPointerCache(8)
	s := MustStruct("NODE", Field{"Value", UINT64})
	const n = 32
	ptrs := make([]*Pointer, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ptrs[i] = c.PointerTo(s)
		}(i)
	}
	wg.Wait()
	for _, p := range ptrs {
		if p != ptrs[0] {
			t.Fatal("concurrent callers observed different descriptors")
		}
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 cached pointer, got %d", c.Len())
	}
}

func TestPointerCacheLogsInsert(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	c := NewPointerCache(8)
	c.PointerTo(UINT8)
	c.PointerTo(UINT8)

	entries := logs.FilterMessage("pointer type created").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if name := entries[0].ContextMap()["name"]; name != "LP_8_UINT8" {
		t.Errorf("unexpected logged name %v", name)
	}
}

func TestDefaultProfilePointers(t *testing.T) {
	if PTR(UINT64) != Profile64.PTR(UINT64) {
		t.Error("PTR should use the 64-bit profile cache")
	}
	if Profile32.PTR(UINT64).Size() != 4 {
		t.Error("32-bit profile pointers are 4 bytes")
	}
	if Profile32.PTR(UINT64) == PTR(UINT64) {
		t.Error("profiles must not share pointer descriptors")
	}
}

func TestFuncPointer(t *testing.T) {
	c := NewPointerCache(8)
	fp := c.FuncPointer(UINTN, UINT32, c.PointerTo(VOID))
	if fp.Size() != 8 {
		t.Errorf("expected pointer width, got %d", fp.Size())
	}
	if fp != c.FuncPointer(UINTN, UINT32, c.PointerTo(VOID)) {
		t.Error("same signature should yield the same pointer")
	}
	if fp == c.FuncPointer(UINTN, UINT32) {
		t.Error("different signatures should not share a pointer")
	}
	sig, ok := fp.Elem().(*Signature)
	if !ok {
		t.Fatalf("expected signature element, got %T", fp.Elem())
	}
	if sig.Name() != "CFUNCTYPE_UINT64_UINT32_LP_8_c_void" {
		t.Errorf("unexpected signature name %q", sig.Name())
	}
	if sig.Returns() != UINT64 || len(sig.Args()) != 2 || sig.Kind() != KindFunction {
		t.Error("signature does not describe the declared call")
	}
	if FUNCPTR(nil).Elem().(*Signature).Returns() != nil {
		t.Error("void return should be nil")
	}
}
