package encoding

import (
	"errors"
	"reflect"
	"unsafe"

	"github.com/google/uuid"
	"github.com/modern-go/reflect2"
	"github.com/wnxd/microbind/ctypes"
)

type bindKey struct {
	ctyp  ctypes.Type
	gotyp reflect.Type
}

type fieldBinding struct {
	ctyp     ctypes.Type
	name     string
	offset   int
	goField  reflect2.StructField
	goOffset uintptr
}

var uuidType = reflect2.TypeOf(uuid.UUID{})

// bindStruct pairs each descriptor field with a Go field matched by the
// encoding tag or the Go field name. Untagged unexported Go fields are
// skipped. Unpaired descriptor fields are filler.
func bindStruct(st *ctypes.Struct, gt reflect2.StructType, path []string) ([]fieldBinding, error) {
	goFields := make(map[string]reflect2.StructField, gt.NumField())
	order := make([]string, 0, gt.NumField())
	for i := 0; i < gt.NumField(); i++ {
		field := gt.Field(i)
		name := field.Name()
		switch tag := field.Tag().Get("encoding"); tag {
		case "ignore", "-":
			continue
		case "":
			if field.PkgPath() != "" {
				continue
			}
		default:
			name = tag
		}
		if _, ok := goFields[name]; ok {
			return nil, bindError(st, gt, append(path, name), "bound twice")
		}
		goFields[name] = field
		order = append(order, name)
	}
	bindings := make([]fieldBinding, 0, st.NumField())
	for off, f := range st.Fields() {
		b := fieldBinding{ctyp: f.Type, name: f.Name, offset: off}
		if field, ok := goFields[f.Name]; ok {
			b.goField = field
			b.goOffset = field.Offset()
			delete(goFields, f.Name)
		}
		bindings = append(bindings, b)
	}
	for _, name := range order {
		if _, ok := goFields[name]; ok {
			return nil, bindError(st, gt, append(path, name), "no such field, tag it `encoding:\"ignore\"` to skip")
		}
	}
	return bindings, nil
}

type scalarAccess struct {
	get func(unsafe.Pointer) uint64
	set func(unsafe.Pointer, uint64)
}

func goScalar(gt reflect2.Type) (scalarAccess, bool) {
	switch gt.Kind() {
	case reflect.Bool:
		return scalarAccess{
			func(p unsafe.Pointer) uint64 {
				if *(*bool)(p) {
					return 1
				}
				return 0
			},
			func(p unsafe.Pointer, v uint64) { *(*bool)(p) = v != 0 },
		}, true
	case reflect.Int8:
		return scalarAccess{
			func(p unsafe.Pointer) uint64 { return uint64(*(*int8)(p)) },
			func(p unsafe.Pointer, v uint64) { *(*int8)(p) = int8(v) },
		}, true
	case reflect.Int16:
		return scalarAccess{
			func(p unsafe.Pointer) uint64 { return uint64(*(*int16)(p)) },
			func(p unsafe.Pointer, v uint64) { *(*int16)(p) = int16(v) },
		}, true
	case reflect.Int32:
		return scalarAccess{
			func(p unsafe.Pointer) uint64 { return uint64(*(*int32)(p)) },
			func(p unsafe.Pointer, v uint64) { *(*int32)(p) = int32(v) },
		}, true
	case reflect.Int64:
		return scalarAccess{
			func(p unsafe.Pointer) uint64 { return uint64(*(*int64)(p)) },
			func(p unsafe.Pointer, v uint64) { *(*int64)(p) = int64(v) },
		}, true
	case reflect.Int:
		return scalarAccess{
			func(p unsafe.Pointer) uint64 { return uint64(*(*int)(p)) },
			func(p unsafe.Pointer, v uint64) { *(*int)(p) = int(v) },
		}, true
	case reflect.Uint8:
		return scalarAccess{
			func(p unsafe.Pointer) uint64 { return uint64(*(*uint8)(p)) },
			func(p unsafe.Pointer, v uint64) { *(*uint8)(p) = uint8(v) },
		}, true
	case reflect.Uint16:
		return scalarAccess{
			func(p unsafe.Pointer) uint64 { return uint64(*(*uint16)(p)) },
			func(p unsafe.Pointer, v uint64) { *(*uint16)(p) = uint16(v) },
		}, true
	case reflect.Uint32:
		return scalarAccess{
			func(p unsafe.Pointer) uint64 { return uint64(*(*uint32)(p)) },
			func(p unsafe.Pointer, v uint64) { *(*uint32)(p) = uint32(v) },
		}, true
	case reflect.Uint64:
		return scalarAccess{
			func(p unsafe.Pointer) uint64 { return *(*uint64)(p) },
			func(p unsafe.Pointer, v uint64) { *(*uint64)(p) = v },
		}, true
	case reflect.Uint:
		return scalarAccess{
			func(p unsafe.Pointer) uint64 { return uint64(*(*uint)(p)) },
			func(p unsafe.Pointer, v uint64) { *(*uint)(p) = uint(v) },
		}, true
	case reflect.Uintptr:
		return scalarAccess{
			func(p unsafe.Pointer) uint64 { return uint64(*(*uintptr)(p)) },
			func(p unsafe.Pointer, v uint64) { *(*uintptr)(p) = uintptr(v) },
		}, true
	}
	return scalarAccess{}, false
}

func isByteKind(k reflect.Kind) bool {
	return k == reflect.Uint8 || k == reflect.Int8
}

func isByteType(t ctypes.Type) bool {
	return t.Kind().IsScalar() && t.Size() == 1
}

func isSigned(t ctypes.Type) bool {
	return t.Kind() == ctypes.KindInt || t.Kind() == ctypes.KindEnum
}

// rootError reports a nested binding failure against the top-level type.
func rootError(t ctypes.Type, err error) error {
	var be *BindError
	if errors.As(err, &be) {
		be.CType = ctypesName(t)
	}
	return err
}

func bindError(ct ctypes.Type, gt reflect2.Type, path []string, detail string) *BindError {
	return &BindError{
		CType:  ct.Name(),
		GoType: gt.String(),
		Path:   append([]string(nil), path...),
		Detail: detail,
	}
}
