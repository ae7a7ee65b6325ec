package encoding_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/wnxd/microbind/ctypes"
	"github.com/wnxd/microbind/encoding"
	"github.com/wnxd/microbind/internal/memory"
)

var (
	resetType = ctypes.MustEnum("EFI_RESET_TYPE", "EfiResetCold", "EfiResetWarm", "EfiResetShutdown")
	record    = ctypes.MustStruct("RECORD",
		ctypes.Field{Name: "Enabled", Type: ctypes.BOOLEAN},
		ctypes.Field{Name: "Delta", Type: ctypes.INT16},
		ctypes.Field{Name: "Reserved", Type: ctypes.ArrayOf(ctypes.UINT8, 3)},
		ctypes.Field{Name: "Count", Type: ctypes.UINT32},
		ctypes.Field{Name: "Reset", Type: resetType},
		ctypes.Field{Name: "Buffer", Type: ctypes.PTR(ctypes.VOID)},
		ctypes.Field{Name: "Words", Type: ctypes.ArrayOf(ctypes.UINT16, 2)},
		ctypes.Field{Name: "Tag", Type: ctypes.ArrayOf(ctypes.CHAR8, 4)},
		ctypes.Field{Name: "Guid", Type: ctypes.EFI_GUID},
	)
)

type goRecord struct {
	Enabled bool
	Delta   int
	Count   uint32
	Mode    int32 `encoding:"Reset"`
	Buffer  uintptr
	Words   [2]uint16
	Tag     [4]byte
	Guid    uuid.UUID
	Cache   string `encoding:"ignore"`
}

func encode(t *testing.T, typ ctypes.Type, v any) []byte {
	t.Helper()
	var buf memory.Buffer
	if err := encoding.Encode(memory.BufferStream(&buf), typ, v); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return buf
}

func TestEncodeStruct(t *testing.T) {
	id := uuid.MustParse("8be4df61-93ca-11d2-aa0d-00e098032b8c")
	in := goRecord{
		Enabled: true,
		Delta:   -2,
		Count:   0x01020304,
		Mode:    2,
		Buffer:  0x1000,
		Words:   [2]uint16{0xaabb, 0xccdd},
		Tag:     [4]byte{'T', 'E', 'S', 'T'},
		Guid:    id,
		Cache:   "not encoded",
	}
	b := encode(t, record, &in)
	if len(b) != record.Size() {
		t.Fatalf("expected %d bytes, got %d", record.Size(), len(b))
	}

	inst, err := ctypes.FromBytes(record, b)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := inst.Bool("Enabled"); !v {
		t.Error("Enabled should be true")
	}
	if v, _ := inst.Int("Delta"); v != -2 {
		t.Errorf("Delta: expected -2, got %d", v)
	}
	if r, _ := inst.Field("Reserved"); !bytes.Equal(r.Bytes(), []byte{0, 0, 0}) {
		t.Errorf("unbound fields should be zero, got % x", r.Bytes())
	}
	if v, _ := inst.Uint("Count"); v != 0x01020304 {
		t.Errorf("Count: got %#x", v)
	}
	if name, _ := inst.Enum("Reset"); name != "EfiResetShutdown" {
		t.Errorf("Reset: got %q", name)
	}
	if v, _ := inst.Uint("Buffer"); v != 0x1000 {
		t.Errorf("Buffer: got %#x", v)
	}
	if w, _ := inst.Field("Words"); !bytes.Equal(w.Bytes(), []byte{0xbb, 0xaa, 0xdd, 0xcc}) {
		t.Errorf("Words: got % x", w.Bytes())
	}
	if tag, _ := inst.Field("Tag"); string(tag.Bytes()) != "TEST" {
		t.Errorf("Tag: got %q", tag.Bytes())
	}
	if got, _ := inst.GUID("Guid"); got != id {
		t.Errorf("Guid: expected %s, got %s", id, got)
	}

	var out goRecord
	buf := memory.Buffer(b)
	if err := encoding.Decode(memory.BufferStream(&buf), record, &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	in.Cache = ""
	if out != in {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestEncodeValueAndPointer(t *testing.T) {
	a := encode(t, ctypes.UINT16, uint16(0x1234))
	v := uint16(0x1234)
	b := encode(t, ctypes.UINT16, &v)
	if !bytes.Equal(a, b) || !bytes.Equal(a, []byte{0x34, 0x12}) {
		t.Errorf("value and pointer encodings differ: % x vs % x", a, b)
	}
	if got := encode(t, ctypes.UINT8, 0x1ff); !bytes.Equal(got, []byte{0xff}) {
		t.Errorf("expected truncation, got % x", got)
	}
}

func TestDecodeSignExtends(t *testing.T) {
	buf := memory.Buffer{0xfe, 0xff}
	var v int64
	if err := encoding.Decode(memory.BufferStream(&buf), ctypes.INT16, &v); err != nil {
		t.Fatal(err)
	}
	if v != -2 {
		t.Errorf("expected -2, got %d", v)
	}
	buf = memory.Buffer{0xfe, 0xff}
	var u uint64
	if err := encoding.Decode(memory.BufferStream(&buf), ctypes.UINT16, &u); err != nil {
		t.Fatal(err)
	}
	if u != 0xfffe {
		t.Errorf("expected 0xfffe, got %#x", u)
	}
}

func TestEncodeRawStruct(t *testing.T) {
	header := ctypes.MustStruct("EFI_TABLE_HEADER",
		ctypes.Field{Name: "Signature", Type: ctypes.UINT64},
		ctypes.Field{Name: "Revision", Type: ctypes.UINT32},
		ctypes.Field{Name: "HeaderSize", Type: ctypes.UINT32},
		ctypes.Field{Name: "CRC32", Type: ctypes.UINT32},
		ctypes.Field{Name: "Reserved", Type: ctypes.UINT32},
	)
	type tableHeader struct {
		Signature  uint64
		Revision   uint32
		HeaderSize uint32
		CRC32      uint32
		Reserved   uint32
	}
	in := tableHeader{0x5453595320494249, 0x00020046, 24, 0xcafe, 0}
	b := encode(t, header, in)
	if string(b[:8]) != "IBI SYST" {
		t.Errorf("unexpected signature bytes %q", b[:8])
	}
	var out tableHeader
	buf := memory.Buffer(b)
	if err := encoding.Decode(memory.BufferStream(&buf), header, &out); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestEncodeUnionAndArrays(t *testing.T) {
	ip := ctypes.MustUnion("EFI_IP_ADDRESS",
		ctypes.Field{Name: "Addr", Type: ctypes.ArrayOf(ctypes.UINT32, 4)},
		ctypes.Field{Name: "v4", Type: ctypes.ArrayOf(ctypes.UINT8, 4)},
	)
	raw := [16]byte{192, 168, 0, 1}
	if got := encode(t, ip, raw); !bytes.Equal(got, raw[:]) {
		t.Errorf("union should copy raw bytes, got % x", got)
	}

	pair := ctypes.MustStruct("PAIR",
		ctypes.Field{Name: "Lo", Type: ctypes.UINT8},
		ctypes.Field{Name: "Hi", Type: ctypes.INT32},
	)
	type goPair struct {
		Lo uint8
		Hi int32
	}
	pairs := [2]goPair{{1, -1}, {2, 3}}
	want := []byte{1, 0xff, 0xff, 0xff, 0xff, 2, 3, 0, 0, 0}
	if got := encode(t, ctypes.ArrayOf(pair, 2), pairs); !bytes.Equal(got, want) {
		t.Errorf("expected % x, got % x", want, got)
	}
}

func TestEncodeInstance(t *testing.T) {
	inst := ctypes.New(record)
	inst.SetUint("Count", 7)
	b := encode(t, record, inst)
	if !bytes.Equal(b, inst.Bytes()) {
		t.Error("instance should be written verbatim")
	}
	var buf memory.Buffer
	err := encoding.Encode(memory.BufferStream(&buf), ctypes.UINT32, inst)
	if !errors.Is(err, encoding.ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}

	buf = memory.Buffer(b)
	stream := memory.BufferStream(&buf)
	got, err := encoding.DecodeInstance(stream, record)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(inst) {
		t.Error("decoded instance differs")
	}
	if _, err := encoding.DecodeInstance(stream, record); err == nil {
		t.Error("reading past the end should fail")
	}
}

func TestBindErrors(t *testing.T) {
	type extra struct {
		Count uint32
		Bogus int
	}
	type wrongKind struct {
		Count string
	}
	tests := []struct {
		name string
		typ  ctypes.Type
		v    any
	}{
		{"unmatched Go field", record, &extra{}},
		{"string field", record, &wrongKind{}},
		{"array length", ctypes.ArrayOf(ctypes.UINT8, 4), &[3]byte{}},
		{"union needs bytes", ctypes.MustUnion("U", ctypes.Field{Name: "A", Type: ctypes.UINT32}), &[4]uint16{}},
		{"void", ctypes.VOID, new(int)},
		{"nil", ctypes.UINT8, nil},
		{"struct into int", record, new(int)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf memory.Buffer
			err := encoding.Encode(memory.BufferStream(&buf), tt.typ, tt.v)
			var be *encoding.BindError
			if !errors.As(err, &be) {
				t.Fatalf("expected BindError, got %v", err)
			}
			if len(buf) != 0 {
				t.Error("nothing should be written on a bind error")
			}
		})
	}
}

func TestBindErrorPath(t *testing.T) {
	type inner struct {
		Count float64
	}
	var buf memory.Buffer
	err := encoding.Encode(memory.BufferStream(&buf), record, &inner{})
	var be *encoding.BindError
	if !errors.As(err, &be) {
		t.Fatalf("expected BindError, got %v", err)
	}
	if be.CType != "RECORD" || len(be.Path) != 1 || be.Path[0] != "Count" {
		t.Errorf("unexpected error %+v", be)
	}
	if want := "bind RECORD.Count to Go float64: not an integer"; be.Error() != want {
		t.Errorf("expected %q, got %q", want, be.Error())
	}
}

func TestDecodeNeedsPointer(t *testing.T) {
	buf := memory.Buffer{1, 2, 3, 4}
	var v uint32
	if err := encoding.Decode(memory.BufferStream(&buf), ctypes.UINT32, v); !errors.Is(err, encoding.ErrNotPointer) {
		t.Errorf("expected ErrNotPointer, got %v", err)
	}
	var p *uint32
	if err := encoding.Decode(memory.BufferStream(&buf), ctypes.UINT32, p); !errors.Is(err, encoding.ErrNotPointer) {
		t.Errorf("expected ErrNotPointer, got %v", err)
	}
}

func TestNilInstance(t *testing.T) {
	var inst *ctypes.Instance
	var buf memory.Buffer
	var be *encoding.BindError
	if err := encoding.Encode(memory.BufferStream(&buf), ctypes.UINT32, inst); !errors.As(err, &be) || be.Detail != "nil instance" {
		t.Errorf("encode: expected a nil instance BindError, got %v", err)
	}
	if len(buf) != 0 {
		t.Errorf("nothing should be written, got % x", buf)
	}
	src := memory.Buffer{1, 2, 3, 4}
	if err := encoding.Decode(memory.BufferStream(&src), ctypes.UINT32, inst); !errors.As(err, &be) || be.Detail != "nil instance" {
		t.Errorf("decode: expected a nil instance BindError, got %v", err)
	}
}
