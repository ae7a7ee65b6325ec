package ctypes

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDeclaration = errors.New("invalid declaration")
	ErrFieldKind          = errors.New("field kind mismatch")
	ErrEnumValue          = errors.New("undeclared enum value")
	ErrOutOfRange         = errors.New("index out of range")
	ErrSizeMismatch       = errors.New("size mismatch")
)

// UnknownFieldError is returned when a field name was not declared on a type.
type UnknownFieldError struct {
	Type  string
	Field string
}

// UnknownEnumMemberError is returned when a name was not declared on an enum.
type UnknownEnumMemberError struct {
	Enum   string
	Member string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s has no field %q", e.Type, e.Field)
}

func (e *UnknownEnumMemberError) Error() string {
	return fmt.Sprintf("%s has no member %q", e.Enum, e.Member)
}

func declError(name, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidDeclaration, name, fmt.Sprintf(format, args...))
}

var (
	errVoidStorage       = errors.New("void has no storage")
	errFunctionStorage   = errors.New("function type must be referenced through a pointer")
	errIncompleteStorage = errors.New("incomplete struct must be referenced through a pointer")
)
