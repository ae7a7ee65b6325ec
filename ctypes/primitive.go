package ctypes

import (
	"encoding/binary"
	"slices"
	"strings"

	"golang.org/x/exp/maps"
)

// Primitive is a fixed-width little-endian integer.
type Primitive struct {
	name   string
	size   int
	signed bool
}

var (
	INT8  = &Primitive{"INT8", 1, true}
	INT16 = &Primitive{"INT16", 2, true}
	INT32 = &Primitive{"INT32", 4, true}
	INT64 = &Primitive{"INT64", 8, true}
	INTN  = INT64

	UINT8  = &Primitive{"UINT8", 1, false}
	UINT16 = &Primitive{"UINT16", 2, false}
	UINT32 = &Primitive{"UINT32", 4, false}
	UINT64 = &Primitive{"UINT64", 8, false}
	UINTN  = UINT64

	BOOLEAN = UINT8
	CHAR8   = UINT8
	CHAR16  = UINT16
)

var primitives = map[string]*Primitive{
	"INT8":    INT8,
	"INT16":   INT16,
	"INT32":   INT32,
	"INT64":   INT64,
	"INTN":    INTN,
	"UINT8":   UINT8,
	"UINT16":  UINT16,
	"UINT32":  UINT32,
	"UINT64":  UINT64,
	"UINTN":   UINTN,
	"BOOLEAN": BOOLEAN,
	"CHAR8":   CHAR8,
	"CHAR16":  CHAR16,
}

// LookupPrimitive resolves a canonical primitive name for the default
// 64-bit profile.
func LookupPrimitive(name string) (*Primitive, bool) {
	p, ok := primitives[strings.ToUpper(name)]
	return p, ok
}

// PrimitiveNames returns the registered names in sorted order.
func PrimitiveNames() []string {
	names := maps.Keys(primitives)
	slices.Sort(names)
	return names
}

func (*Primitive) ctype() {}

func (p *Primitive) Name() string {
	return p.name
}

func (p *Primitive) Kind() Kind {
	if p.signed {
		return KindInt
	}
	return KindUint
}

func (p *Primitive) Size() int {
	return p.size
}

func (p *Primitive) Signed() bool {
	return p.signed
}

// Uint decodes the primitive from the start of b without sign extension.
func (p *Primitive) Uint(b []byte) uint64 {
	return getUint(b, p.size)
}

// Int decodes the primitive from the start of b, sign extending signed types.
func (p *Primitive) Int(b []byte) int64 {
	v := getUint(b, p.size)
	if p.signed {
		return signExtend(v, p.size)
	}
	return int64(v)
}

// PutUint encodes v into the start of b, truncated to the primitive width.
func (p *Primitive) PutUint(b []byte, v uint64) {
	putUint(b, p.size, v)
}

func getUint(b []byte, size int) uint64 {
	switch size {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	case 8:
		return binary.LittleEndian.Uint64(b)
	}
	var v uint64
	for i := size - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func putUint(b []byte, size int, v uint64) {
	switch size {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(b, v)
	default:
		for i := 0; i < size; i++ {
			b[i] = byte(v)
			v >>= 8
		}
	}
}

func signExtend(v uint64, size int) int64 {
	shift := 64 - uint(size)*8
	return int64(v<<shift) >> shift
}
