package ctypes

type Kind uint8

const (
	KindInt Kind = iota
	KindUint
	KindPointer
	KindFunction
	KindEnum
	KindArray
	KindStruct
	KindUnion
)

var kindNames = [...]string{
	KindInt:      "int",
	KindUint:     "uint",
	KindPointer:  "pointer",
	KindFunction: "function",
	KindEnum:     "enum",
	KindArray:    "array",
	KindStruct:   "struct",
	KindUnion:    "union",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsScalar reports whether values of the kind are stored as a single integer.
func (k Kind) IsScalar() bool {
	switch k {
	case KindInt, KindUint, KindPointer, KindEnum:
		return true
	}
	return false
}
