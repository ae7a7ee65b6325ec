package ctypes

import (
	"math"
	"slices"
)

type EnumMember struct {
	Name  string
	Value int64
}

// Enum is a set of named integer constants stored as a C int.
type Enum struct {
	name    string
	members []EnumMember
	values  map[string]int64
	names   map[int64]string
}

// NewEnum declares an enum whose members take the values 0, 1, 2, ... in order.
func NewEnum(name string, members ...string) (*Enum, error) {
	list := make([]EnumMember, len(members))
	for i, m := range members {
		list[i] = EnumMember{m, int64(i)}
	}
	return NewEnumValues(name, list...)
}

// NewEnumValues declares an enum with explicit values. Several names may
// share a value; NameOf reports the first one declared.
func NewEnumValues(name string, members ...EnumMember) (*Enum, error) {
	e := &Enum{
		name:    name,
		members: slices.Clone(members),
		values:  make(map[string]int64, len(members)),
		names:   make(map[int64]string, len(members)),
	}
	for _, m := range members {
		if m.Name == "" {
			return nil, declError(name, "member has no name")
		} else if _, ok := e.values[m.Name]; ok {
			return nil, declError(name, "duplicate member %q", m.Name)
		} else if m.Value < math.MinInt32 || m.Value > math.MaxInt32 {
			return nil, declError(name, "member %q value %d overflows %s", m.Name, m.Value, INT32.name)
		}
		e.values[m.Name] = m.Value
		if _, ok := e.names[m.Value]; !ok {
			e.names[m.Value] = m.Name
		}
	}
	return e, nil
}

func MustEnum(name string, members ...string) *Enum {
	e, err := NewEnum(name, members...)
	if err != nil {
		panic(err)
	}
	return e
}

func (*Enum) ctype() {}

func (e *Enum) Name() string {
	return e.name
}

func (e *Enum) Kind() Kind {
	return KindEnum
}

func (e *Enum) Size() int {
	return INT32.size
}

// Storage returns the primitive the enum is stored as.
func (e *Enum) Storage() *Primitive {
	return INT32
}

func (e *Enum) ValueOf(name string) (int64, error) {
	v, ok := e.values[name]
	if !ok {
		return 0, &UnknownEnumMemberError{Enum: e.name, Member: name}
	}
	return v, nil
}

func (e *Enum) NameOf(value int64) (string, bool) {
	name, ok := e.names[value]
	return name, ok
}

func (e *Enum) Members() []EnumMember {
	return slices.Clone(e.members)
}

func (e *Enum) Len() int {
	return len(e.members)
}
