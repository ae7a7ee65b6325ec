package ctypes

import (
	"slices"
	"strings"
)

// Signature is the call signature of a function. It has no storage of its
// own and is only referenced through a pointer.
type Signature struct {
	name string
	ret  Type
	args []Type
}

func (*Signature) ctype() {}

func (s *Signature) Name() string {
	return s.name
}

func (s *Signature) Kind() Kind {
	return KindFunction
}

func (s *Signature) Size() int {
	return 0
}

// Returns returns the result type, nil for void.
func (s *Signature) Returns() Type {
	return s.ret
}

func (s *Signature) Args() []Type {
	return slices.Clone(s.args)
}

func signatureName(ret Type, args []Type) string {
	var b strings.Builder
	b.WriteString("CFUNCTYPE_")
	b.WriteString(typeName(ret))
	for _, arg := range args {
		b.WriteByte('_')
		b.WriteString(typeName(arg))
	}
	return b.String()
}

// Signature interns a call signature. Distinct types that share a name get
// distinct signatures.
func (c *PointerCache) Signature(ret Type, args ...Type) *Signature {
	name := signatureName(ret, args)
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sig := range c.sigs[name] {
		if sig.ret == ret && slices.Equal(sig.args, args) {
			return sig
		}
	}
	sig := &Signature{name, ret, slices.Clone(args)}
	c.sigs[name] = append(c.sigs[name], sig)
	return sig
}

// FuncPointer returns the pointer descriptor for a callable with the given
// signature. It is never invoked, only stored.
func (c *PointerCache) FuncPointer(ret Type, args ...Type) *Pointer {
	return c.PointerTo(c.Signature(ret, args...))
}

// FUNCPTR returns a function pointer for the default 64-bit profile.
func FUNCPTR(ret Type, args ...Type) *Pointer {
	return Profile64.Pointers.FuncPointer(ret, args...)
}
