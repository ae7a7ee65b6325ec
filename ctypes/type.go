// Package ctypes declares fixed-layout C ABI types: primitives, pointers,
// function pointers, packed structs, unions, enums and arrays.
//
// Layout rules are those of a packed little-endian C structure: fields are
// laid out in declaration order with no implicit padding. Filler must be
// declared explicitly, usually as a UINT8 array.
//
// Descriptors are immutable once declared and are meant to be shared. Values
// of a descriptor are held in an Instance.
package ctypes

// Type describes the binary layout of a value.
//
// The set of implementations is closed: *Primitive, *Pointer, *Signature,
// *Enum, *Array, *Struct and *Union. VOID is the nil Type.
type Type interface {
	Name() string
	Kind() Kind
	Size() int
	ctype()
}

// Composite is implemented by *Struct and *Union.
type Composite interface {
	Type
	NumField() int
	Field(i int) Field
	Offset(i int) int
	FieldByName(name string) (Field, int, error)
	Offsetof(name string) (int, error)
}

// VOID is the element type of an opaque pointer.
var VOID Type

// Sizeof returns the size of t in bytes. VOID has size 0.
func Sizeof(t Type) int {
	if t == nil {
		return 0
	}
	return t.Size()
}

// Offsetof returns the byte offset of a named field of a struct or union.
func Offsetof(t Type, field string) (int, error) {
	if c, ok := t.(Composite); ok {
		return c.Offsetof(field)
	}
	return 0, &UnknownFieldError{Type: typeName(t), Field: field}
}

func typeName(t Type) string {
	if t == nil {
		return "c_void"
	}
	return t.Name()
}
