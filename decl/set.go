package decl

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wnxd/microbind/ctypes"
	"go.uber.org/zap"
)

var ErrUnknownType = errors.New("unknown type")

// Set is a namespace of declared types on top of the built-in primitives of
// a profile.
type Set struct {
	profile *ctypes.Profile
	types   map[string]ctypes.Type
	order   []string
}

// NewSet returns an empty set. A nil profile selects ctypes.Profile64, whose
// pointer cache is shared by the whole process.
func NewSet(profile *ctypes.Profile) *Set {
	if profile == nil {
		profile = ctypes.Profile64
	}
	return &Set{
		profile: profile,
		types:   map[string]ctypes.Type{"EFI_GUID": ctypes.EFI_GUID},
	}
}

func (s *Set) Profile() *ctypes.Profile {
	return s.profile
}

// Lookup resolves a declared or built-in type name. VOID resolves to nil.
func (s *Set) Lookup(name string) (ctypes.Type, bool) {
	if t, ok := s.types[name]; ok {
		return t, true
	}
	return s.profile.Lookup(name)
}

// Types returns the declared names in declaration order.
func (s *Set) Types() []string {
	return append([]string(nil), s.order...)
}

// Add registers t under name.
func (s *Set) Add(name string, t ctypes.Type) error {
	if _, ok := s.Lookup(name); ok {
		return fmt.Errorf("%w: %s redeclared", ctypes.ErrInvalidDeclaration, name)
	}
	s.types[name] = t
	s.order = append(s.order, name)
	return nil
}

// Resolve parses a type expression: a type name, *T for a pointer to T
// (*VOID for an opaque pointer) or T[n] for an array. Suffixes bind first, so
// *T[n] is an array of pointers.
func (s *Set) Resolve(expr string) (ctypes.Type, error) {
	expr = strings.TrimSpace(expr)
	if strings.HasSuffix(expr, "]") {
		i := strings.LastIndexByte(expr, '[')
		if i <= 0 {
			return nil, fmt.Errorf("%w: malformed array %q", ctypes.ErrInvalidDeclaration, expr)
		}
		n, err := strconv.Atoi(strings.TrimSpace(expr[i+1 : len(expr)-1]))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: bad array length in %q", ctypes.ErrInvalidDeclaration, expr)
		}
		elem, err := s.Resolve(expr[:i])
		if err != nil {
			return nil, err
		} else if err = ctypes.Storable(elem); err != nil {
			return nil, fmt.Errorf("%w: array %q: %v", ctypes.ErrInvalidDeclaration, expr, err)
		} else if size := elem.Size(); size > 0 && n > math.MaxInt/size {
			return nil, fmt.Errorf("%w: array %q: size overflows int", ctypes.ErrInvalidDeclaration, expr)
		}
		return ctypes.ArrayOf(elem, n), nil
	}
	if rest, ok := strings.CutPrefix(expr, "*"); ok {
		elem, err := s.Resolve(rest)
		if err != nil {
			return nil, err
		}
		return s.profile.PTR(elem), nil
	}
	if t, ok := s.Lookup(expr); ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownType, expr)
}

func (s *Set) resolveStorable(expr string) (ctypes.Type, error) {
	t, err := s.Resolve(expr)
	if err != nil {
		return nil, err
	} else if err = ctypes.Storable(t); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ctypes.ErrInvalidDeclaration, expr, err)
	}
	return t, nil
}

func (s *Set) build(decls []Decl, path string) error {
	structs := make(map[int]*ctypes.Struct)
	for i := range decls {
		if decls[i].Struct == "" {
			continue
		}
		st := ctypes.DeclareStruct(decls[i].Struct)
		if err := s.Add(decls[i].Struct, st); err != nil {
			return fmt.Errorf("%s: types[%d] (struct %s): %w", path, i, decls[i].Struct, err)
		}
		structs[i] = st
	}
	for i := range decls {
		d := &decls[i]
		kind, name := d.Kind()
		t, err := s.declare(d, kind, name, structs[i])
		if err != nil {
			return fmt.Errorf("%s: types[%d] (%s %s): %w", path, i, kind, name, err)
		}
		Logger().Debug("type declared",
			zap.String("kind", kind),
			zap.String("name", name),
			zap.Int("size", ctypes.Sizeof(t)))
	}
	return nil
}

func (s *Set) declare(d *Decl, kind, name string, st *ctypes.Struct) (ctypes.Type, error) {
	var (
		t   ctypes.Type
		err error
	)
	switch kind {
	case "struct":
		fields, err := s.fields(d.Fields)
		if err != nil {
			return nil, err
		}
		return st, st.Define(fields...)
	case "union":
		var fields []ctypes.Field
		if fields, err = s.fields(d.Fields); err == nil {
			t, err = ctypes.NewUnion(name, fields...)
		}
	case "enum":
		if len(d.Values) > 0 {
			members := make([]ctypes.EnumMember, len(d.Values))
			for i, v := range d.Values {
				members[i] = ctypes.EnumMember{Name: v.Name, Value: v.Value}
			}
			t, err = ctypes.NewEnumValues(name, members...)
		} else {
			t, err = ctypes.NewEnum(name, d.Members...)
		}
	case "typedef":
		t, err = s.Resolve(d.Type)
	case "funcptr":
		t, err = s.funcPointer(d)
	}
	if err != nil {
		return nil, err
	}
	return t, s.Add(name, t)
}

func (s *Set) fields(decls []FieldDecl) ([]ctypes.Field, error) {
	fields := make([]ctypes.Field, len(decls))
	for i, f := range decls {
		t, err := s.resolveStorable(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		fields[i] = ctypes.Field{Name: f.Name, Type: t}
	}
	return fields, nil
}

func (s *Set) funcPointer(d *Decl) (ctypes.Type, error) {
	var ret ctypes.Type
	if d.Returns != "" {
		var err error
		if ret, err = s.Resolve(d.Returns); err != nil {
			return nil, fmt.Errorf("returns: %w", err)
		}
	}
	args := make([]ctypes.Type, len(d.Args))
	for i, expr := range d.Args {
		t, err := s.resolveStorable(expr)
		if err != nil {
			return nil, fmt.Errorf("args[%d]: %w", i, err)
		}
		args[i] = t
	}
	return s.profile.FUNCPTR(ret, args...), nil
}
