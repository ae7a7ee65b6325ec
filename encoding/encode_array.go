package encoding

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/modern-go/reflect2"
	"github.com/wnxd/microbind/ctypes"
)

func encodeArray(ct *ctypes.Array, typ reflect2.Type, path []string) (handler, structSize, error) {
	at, err := arrayOf(ct, typ, path, ct.Len())
	if err != nil {
		return nil, nil, err
	}
	count := ct.Len()
	elemType := at.Elem()
	if isByteType(ct.Elem()) && isByteKind(elemType.Kind()) {
		size := make(structSize, count)
		for i := range size {
			size[i] = 1
		}
		return func(stream Stream, ptr unsafe.Pointer) error {
			_, err := stream.Write(unsafe.Slice((*byte)(ptr), count))
			return err
		}, size, nil
	}
	marshal, elemSize, err := encode(ct.Elem(), elemType, append(path, "[]"))
	if err != nil {
		return nil, nil, err
	}
	size := make(structSize, 0, count*len(elemSize))
	for i := 0; i < count; i++ {
		size = size.Add(elemSize)
	}
	stride := elemType.Type1().Size()
	return func(stream Stream, ptr unsafe.Pointer) error {
		for i := 0; i < count; i++ {
			err := marshal(stream, unsafe.Add(ptr, uintptr(i)*stride))
			if err != nil {
				return err
			}
		}
		return nil
	}, size, nil
}

func encodeUnion(ct *ctypes.Union, typ reflect2.Type, path []string) (handler, structSize, error) {
	at, err := arrayOf(ct, typ, path, ct.Size())
	if err != nil || !isByteKind(at.Elem().Kind()) {
		return nil, nil, bindError(ct, typ, path, fmt.Sprintf("unions bind to [%d]byte", ct.Size()))
	}
	size := ct.Size()
	return func(stream Stream, ptr unsafe.Pointer) error {
		_, err := stream.Write(unsafe.Slice((*byte)(ptr), size))
		return err
	}, structSize{size}, nil
}

func arrayOf(ct ctypes.Type, typ reflect2.Type, path []string, n int) (reflect2.ArrayType, error) {
	at, ok := typ.(reflect2.ArrayType)
	if !ok || typ.Kind() != reflect.Array {
		return nil, bindError(ct, typ, path, "not an array")
	} else if at.Len() != n {
		return nil, bindError(ct, typ, path, fmt.Sprintf("length %d, want %d", at.Len(), n))
	}
	return at, nil
}
