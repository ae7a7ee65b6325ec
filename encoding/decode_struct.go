package encoding

import (
	"unsafe"

	"github.com/modern-go/reflect2"
	"github.com/wnxd/microbind/ctypes"
)

func decodeStruct(ct *ctypes.Struct, typ reflect2.Type, path []string) (handler, structSize, error) {
	bindings, err := structFields(ct, typ, path)
	if err != nil {
		return nil, nil, err
	}
	if rawStruct(ct, typ, bindings) {
		size := ct.Size()
		return func(stream Stream, ptr unsafe.Pointer) error {
			_, err := stream.Read(unsafe.Slice((*byte)(ptr), size))
			return err
		}, structSize{size}, nil
	}
	size := make(structSize, 0, len(bindings))
	fields := make([]*structData, 0, len(bindings))
	for _, b := range bindings {
		if b.goField == nil {
			n := b.ctyp.Size()
			fields = append(fields, &structData{decodePad(n), 0})
			size = append(size, n)
			continue
		}
		unmarshal, fieldSize, err := decode(b.ctyp, b.goField.Type(), append(path, b.name))
		if err != nil {
			return nil, nil, err
		}
		size = size.Add(fieldSize)
		fields = append(fields, &structData{unmarshal, b.goOffset})
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
