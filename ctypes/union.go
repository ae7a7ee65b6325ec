package ctypes

// Union overlays all of its fields at offset 0.
type Union struct {
	fieldList
}

func NewUnion(name string, fields ...Field) (*Union, error) {
	fl, err := newFieldList(name, fields, true)
	if err != nil {
		return nil, err
	}
	return &Union{fl}, nil
}

func MustUnion(name string, fields ...Field) *Union {
	u, err := NewUnion(name, fields...)
	if err != nil {
		panic(err)
	}
	return u
}

func (*Union) ctype() {}

func (u *Union) Kind() Kind {
	return KindUnion
}
