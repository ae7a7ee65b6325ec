package encoding

import (
	"encoding/binary"
	"reflect"
	"unsafe"

	"github.com/modern-go/reflect2"
	"github.com/wnxd/microbind/ctypes"
)

type structData struct {
	handler handler
	offset  uintptr
}

var hostLittleEndian = binary.NativeEndian.Uint16([]byte{1, 0}) == 1

func structFields(ct *ctypes.Struct, typ reflect2.Type, path []string) ([]fieldBinding, error) {
	if !ct.Complete() {
		return nil, bindError(ct, typ, path, "incomplete struct")
	}
	st, ok := typ.(reflect2.StructType)
	if !ok || typ.Kind() != reflect.Struct {
		return nil, bindError(ct, typ, path, "not a struct")
	}
	return bindStruct(ct, st, path)
}

// rawStruct reports whether the Go struct already has the packed
// little-endian layout of ct.
func rawStruct(ct *ctypes.Struct, typ reflect2.Type, bindings []fieldBinding) bool {
	if !hostLittleEndian || typ.Type1().Size() != uintptr(ct.Size()) {
		return false
	}
	for _, b := range bindings {
		if b.goField == nil || !b.ctyp.Kind().IsScalar() || b.goOffset != uintptr(b.offset) {
			return false
		}
		gt := b.goField.Type()
		if !isIntKind(gt.Kind()) || gt.Type1().Size() != uintptr(b.ctyp.Size()) {
			return false
		}
	}
	return true
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func encodeStruct(ct *ctypes.Struct, typ reflect2.Type, path []string) (handler, structSize, error) {
	bindings, err := structFields(ct, typ, path)
	if err != nil {
		return nil, nil, err
	}
	if rawStruct(ct, typ, bindings) {
		size := ct.Size()
		return func(stream Stream, ptr unsafe.Pointer) error {
			_, err := stream.Write(unsafe.Slice((*byte)(ptr), size))
			return err
		}, structSize{size}, nil
	}
	size := make(structSize, 0, len(bindings))
	fields := make([]*structData, 0, len(bindings))
	for _, b := range bindings {
		if b.goField == nil {
			n := b.ctyp.Size()
			fields = append(fields, &structData{encodePad(n), 0})
			size = append(size, n)
			continue
		}
		marshal, fieldSize, err := encode(b.ctyp, b.goField.Type(), append(path, b.name))
		if err != nil {
			return nil, nil, err
		}
		size = size.Add(fieldSize)
		fields = append(fields, &structData{marshal, b.goOffset})
	}
	return func(stream Stream, ptr unsafe.Pointer) error {
		for _, data := range fields {
			err := data.handler(stream, unsafe.Add(ptr, data.offset))
			if err != nil {
				return err
			}
		}
		return nil
	}, size, nil
}
