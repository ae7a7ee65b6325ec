package ctypes

// Struct is a packed record: fields follow each other with no padding.
type Struct struct {
	fieldList
	defined bool
}

// DeclareStruct creates an incomplete struct. It can be pointed to before
// Define gives it fields, which allows self-referential records.
func DeclareStruct(name string) *Struct {
	return &Struct{fieldList: fieldList{name: name}}
}

func NewStruct(name string, fields ...Field) (*Struct, error) {
	s := DeclareStruct(name)
	if err := s.Define(fields...); err != nil {
		return nil, err
	}
	return s, nil
}

func MustStruct(name string, fields ...Field) *Struct {
	s, err := NewStruct(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Define sets the fields of a declared struct. It can be called once.
func (s *Struct) Define(fields ...Field) error {
	if s.defined {
		return declError(s.name, "already defined")
	}
	fl, err := newFieldList(s.name, fields, false)
	if err != nil {
		return err
	}
	s.fieldList = fl
	s.defined = true
	return nil
}

func (s *Struct) Complete() bool {
	return s.defined
}

func (*Struct) ctype() {}

func (s *Struct) Kind() Kind {
	return KindStruct
}
