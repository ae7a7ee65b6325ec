package ctypes

import (
	"fmt"
	"strings"

	"github.com/wnxd/microbind/emulator"
	"golang.org/x/exp/constraints"
)

const (
	CPU_STACK_ALIGNMENT = 16
	PAGE_SIZE           = 0x1000
)

// Profile binds the width-dependent types of a target.
type Profile struct {
	Bits     int
	IntN     *Primitive
	UintN    *Primitive
	Pointers *PointerCache
}

var (
	Profile64 = mustProfile(64)
	Profile32 = mustProfile(32)
)

func NewProfile(bits int) (*Profile, error) {
	switch bits {
	case 32:
		return &Profile{bits, INT32, UINT32, NewPointerCache(4)}, nil
	case 64:
		return &Profile{bits, INT64, UINT64, NewPointerCache(8)}, nil
	}
	return nil, fmt.Errorf("%w: %d-bit profile", emulator.ErrArchUnsupported, bits)
}

func mustProfile(bits int) *Profile {
	p, err := NewProfile(bits)
	if err != nil {
		panic(err)
	}
	return p
}

// ProfileFor returns the shared profile matching the pointer width of arch.
func ProfileFor(arch emulator.Arch) (*Profile, error) {
	size, err := arch.PointerSize()
	if err != nil {
		return nil, err
	}
	if size == 4 {
		return Profile32, nil
	}
	return Profile64, nil
}

func (p *Profile) PointerSize() int {
	return p.Pointers.PointerSize()
}

// Lookup resolves a primitive name, binding INTN and UINTN to the profile.
// "VOID" resolves to the nil Type.
func (p *Profile) Lookup(name string) (Type, bool) {
	switch strings.ToUpper(name) {
	case "VOID":
		return VOID, true
	case "INTN":
		return p.IntN, true
	case "UINTN":
		return p.UintN, true
	}
	prim, ok := LookupPrimitive(name)
	if !ok {
		return nil, false
	}
	return prim, true
}

func (p *Profile) PTR(elem Type) *Pointer {
	return p.Pointers.PointerTo(elem)
}

func (p *Profile) FUNCPTR(ret Type, args ...Type) *Pointer {
	return p.Pointers.FuncPointer(ret, args...)
}

func Align[I constraints.Integer](a, b I) I {
	return (a + b - 1) &^ (b - 1)
}
