package ctypes

import (
	"iter"
	"math"
)

type Field struct {
	Name string
	Type Type
}

// fieldList is the layout shared by structs and unions.
type fieldList struct {
	name    string
	fields  []Field
	offsets []int
	index   map[string]int
	size    int
}

func newFieldList(name string, fields []Field, overlay bool) (fieldList, error) {
	fl := fieldList{
		name:    name,
		fields:  make([]Field, 0, len(fields)),
		offsets: make([]int, 0, len(fields)),
		index:   make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return fl, declError(name, "field %d has no name", len(fl.fields))
		} else if _, ok := fl.index[f.Name]; ok {
			return fl, declError(name, "duplicate field %q", f.Name)
		} else if err := Storable(f.Type); err != nil {
			return fl, declError(name, "field %q: %v", f.Name, err)
		}
		size := f.Type.Size()
		if !overlay && fl.size > math.MaxInt-size {
			return fl, declError(name, "field %q: size overflows int", f.Name)
		}
		fl.index[f.Name] = len(fl.fields)
		fl.fields = append(fl.fields, f)
		if overlay {
			fl.offsets = append(fl.offsets, 0)
			fl.size = max(fl.size, size)
		} else {
			fl.offsets = append(fl.offsets, fl.size)
			fl.size += size
		}
	}
	return fl, nil
}

// Storable reports whether values of t can be held in memory.
func Storable(t Type) error {
	switch t := t.(type) {
	case nil:
		return errVoidStorage
	case *Signature:
		return errFunctionStorage
	case *Struct:
		if !t.Complete() {
			return errIncompleteStorage
		}
	}
	return nil
}

func (fl *fieldList) Name() string {
	return fl.name
}

func (fl *fieldList) Size() int {
	return fl.size
}

func (fl *fieldList) NumField() int {
	return len(fl.fields)
}

func (fl *fieldList) Field(i int) Field {
	return fl.fields[i]
}

func (fl *fieldList) Offset(i int) int {
	return fl.offsets[i]
}

// Fields yields every field with its byte offset, in declaration order.
func (fl *fieldList) Fields() iter.Seq2[int, Field] {
	return func(yield func(int, Field) bool) {
		for i, f := range fl.fields {
			if !yield(fl.offsets[i], f) {
				break
			}
		}
	}
}

func (fl *fieldList) FieldByName(name string) (Field, int, error) {
	i, ok := fl.index[name]
	if !ok {
		return Field{}, 0, &UnknownFieldError{Type: fl.name, Field: name}
	}
	return fl.fields[i], fl.offsets[i], nil
}

func (fl *fieldList) Offsetof(name string) (int, error) {
	_, off, err := fl.FieldByName(name)
	return off, err
}
