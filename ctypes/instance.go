package ctypes

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
)

// Instance holds a value of a Type as exactly Size() bytes in target layout.
type Instance struct {
	typ Type
	buf []byte
}

// New returns a zeroed instance of t. It panics if t has no storage.
func New(t Type) *Instance {
	if err := Storable(t); err != nil {
		panic("ctypes: " + err.Error())
	}
	return &Instance{t, make([]byte, t.Size())}
}

// FromBytes returns an instance of t holding a copy of b.
func FromBytes(t Type, b []byte) (*Instance, error) {
	if err := Storable(t); err != nil {
		return nil, err
	} else if len(b) != t.Size() {
		return nil, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrSizeMismatch, t.Name(), t.Size(), len(b))
	}
	return &Instance{t, bytes.Clone(b)}, nil
}

func (inst *Instance) Type() Type {
	return inst.typ
}

func (inst *Instance) Size() int {
	return len(inst.buf)
}

// Bytes returns the backing storage, not a copy.
func (inst *Instance) Bytes() []byte {
	return inst.buf
}

func (inst *Instance) Clone() *Instance {
	return &Instance{inst.typ, bytes.Clone(inst.buf)}
}

func (inst *Instance) Equal(other *Instance) bool {
	return inst.typ == other.typ && bytes.Equal(inst.buf, other.buf)
}

// Field returns a view of a struct or union field that shares storage with
// inst. Nested fields are separated by dots; "" names inst itself.
func (inst *Instance) Field(path string) (*Instance, error) {
	t, b, err := inst.locate(path)
	if err != nil {
		return nil, err
	}
	return &Instance{t, b}, nil
}

// Index returns a view of element i of an array instance.
func (inst *Instance) Index(i int) (*Instance, error) {
	a, ok := inst.typ.(*Array)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %s, not array", ErrFieldKind, inst.typ.Name(), inst.typ.Kind())
	} else if i < 0 || i >= a.n {
		return nil, fmt.Errorf("%w: index %d, length %d", ErrOutOfRange, i, a.n)
	}
	size := a.elem.Size()
	off := i * size
	return &Instance{a.elem, inst.buf[off : off+size : off+size]}, nil
}

// Uint returns a scalar field without sign extension.
func (inst *Instance) Uint(path string) (uint64, error) {
	_, b, size, err := inst.scalar(path)
	if err != nil {
		return 0, err
	}
	return getUint(b, size), nil
}

// Int returns a scalar field, sign extended when its type is signed.
func (inst *Instance) Int(path string) (int64, error) {
	t, b, size, err := inst.scalar(path)
	if err != nil {
		return 0, err
	}
	v := getUint(b, size)
	if t.Kind() == KindInt || t.Kind() == KindEnum {
		return signExtend(v, size), nil
	}
	return int64(v), nil
}

// SetUint stores v truncated to the width of the field.
func (inst *Instance) SetUint(path string, v uint64) error {
	_, b, size, err := inst.scalar(path)
	if err != nil {
		return err
	}
	putUint(b, size, v)
	return nil
}

func (inst *Instance) SetInt(path string, v int64) error {
	return inst.SetUint(path, uint64(v))
}

func (inst *Instance) Bool(path string) (bool, error) {
	v, err := inst.Uint(path)
	return v != 0, err
}

func (inst *Instance) SetBool(path string, v bool) error {
	var u uint64
	if v {
		u = 1
	}
	return inst.SetUint(path, u)
}

// Enum returns the member name stored in an enum field.
func (inst *Instance) Enum(path string) (string, error) {
	e, v, err := inst.enum(path)
	if err != nil {
		return "", err
	}
	name, ok := e.NameOf(v)
	if !ok {
		return "", fmt.Errorf("%w: %s(%d)", ErrEnumValue, e.name, v)
	}
	return name, nil
}

func (inst *Instance) SetEnum(path, member string) error {
	t, _, err := inst.locate(path)
	if err != nil {
		return err
	}
	e, ok := t.(*Enum)
	if !ok {
		return kindError(inst, path, t, KindEnum)
	}
	v, err := e.ValueOf(member)
	if err != nil {
		return err
	}
	return inst.SetInt(path, v)
}

func (inst *Instance) enum(path string) (*Enum, int64, error) {
	t, _, err := inst.locate(path)
	if err != nil {
		return nil, 0, err
	}
	e, ok := t.(*Enum)
	if !ok {
		return nil, 0, kindError(inst, path, t, KindEnum)
	}
	v, err := inst.Int(path)
	return e, v, err
}

func (inst *Instance) scalar(path string) (Type, []byte, int, error) {
	t, b, err := inst.locate(path)
	if err != nil {
		return nil, nil, 0, err
	} else if !t.Kind().IsScalar() {
		return nil, nil, 0, fmt.Errorf("%w: %s is %s, not a scalar", ErrFieldKind, displayPath(inst, path), t.Kind())
	}
	return t, b, t.Size(), nil
}

func (inst *Instance) locate(path string) (Type, []byte, error) {
	t, b := inst.typ, inst.buf
	if path == "" {
		return t, b, nil
	}
	for _, name := range strings.Split(path, ".") {
		c, ok := t.(Composite)
		if !ok {
			return nil, nil, &UnknownFieldError{Type: t.Name(), Field: name}
		}
		f, off, err := c.FieldByName(name)
		if err != nil {
			return nil, nil, err
		}
		size := f.Type.Size()
		t, b = f.Type, b[off:off+size:off+size]
	}
	return t, b, nil
}

func displayPath(inst *Instance, path string) string {
	if path == "" {
		return inst.typ.Name()
	}
	return inst.typ.Name() + "." + path
}

func kindError(inst *Instance, path string, t Type, want Kind) error {
	return fmt.Errorf("%w: %s is %s, not %s", ErrFieldKind, displayPath(inst, path), t.Kind(), want)
}

// Get reads a scalar field as I.
func Get[I constraints.Integer](inst *Instance, path string) (I, error) {
	v, err := inst.Int(path)
	return I(v), err
}

// Set stores v into a scalar field, truncating to the field width.
func Set[I constraints.Integer](inst *Instance, path string, v I) error {
	return inst.SetUint(path, uint64(v))
}
