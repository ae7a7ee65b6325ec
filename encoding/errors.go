package encoding

import (
	"errors"
	"strings"
)

var (
	ErrNotPointer   = errors.New("decode target must be a non-nil pointer")
	ErrTypeMismatch = errors.New("instance type mismatch")
)

// BindError reports a Go type that cannot carry a ctypes descriptor.
type BindError struct {
	CType  string
	GoType string
	Path   []string
	Detail string
}

func (e *BindError) Error() string {
	var b strings.Builder
	b.WriteString("bind ")
	b.WriteString(e.CType)
	if len(e.Path) > 0 {
		b.WriteByte('.')
		b.WriteString(strings.Join(e.Path, "."))
	}
	b.WriteString(" to Go ")
	b.WriteString(e.GoType)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}
