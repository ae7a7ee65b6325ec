package encoding

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/google/uuid"
	"github.com/modern-go/reflect2"
	"github.com/wnxd/microbind/ctypes"
	"go.uber.org/zap"
)

var decodeProcess sync.Map

// DecodeInstance reads a new instance of t.
func DecodeInstance(stream Stream, t ctypes.Type) (*ctypes.Instance, error) {
	buf := make([]byte, ctypes.Sizeof(t))
	if _, err := stream.Read(buf); err != nil {
		return nil, err
	}
	return ctypes.FromBytes(t, buf)
}

// Decode reads a value in the layout of t into val, which is an
// *ctypes.Instance of t or a non-nil pointer to a Go value.
func Decode(stream Stream, t ctypes.Type, val any) error {
	if inst, ok := val.(*ctypes.Instance); ok {
		if inst == nil {
			return &BindError{CType: ctypesName(t), GoType: "*ctypes.Instance", Detail: "nil instance"}
		} else if inst.Type() != t {
			return fmt.Errorf("%w: %s, want %s", ErrTypeMismatch, inst.Type().Name(), ctypesName(t))
		}
		_, err := stream.Read(inst.Bytes())
		return err
	} else if val == nil {
		return ErrNotPointer
	}
	typ := reflect2.TypeOf(val)
	ptr := reflect2.PtrOf(val)
	if typ.Kind() != reflect.Pointer || ptr == nil {
		return ErrNotPointer
	}
	typ = typ.(reflect2.PtrType).Elem()
	data, err := getUnmarshalData(t, typ)
	if err != nil {
		return err
	}
	return data.handler(stream, ptr)
}

func getUnmarshalData(t ctypes.Type, typ reflect2.Type) (*handlerData, error) {
	key := bindKey{t, typ.Type1()}
	var data *handlerData
	if v, ok := decodeProcess.Load(key); ok {
		data = v.(*handlerData)
	} else {
		unmarshal, size, err := decode(t, typ, nil)
		err = rootError(t, err)
		data = &handlerData{unmarshal, size.Size(), err}
		if err == nil && data.size != t.Size() {
			panic(fmt.Sprintf("encoding: %s decodes %d bytes, want %d", t.Name(), data.size, t.Size()))
		}
		decodeProcess.Store(key, data)
		Logger().Debug("decode handler compiled",
			zap.String("ctype", ctypesName(t)),
			zap.Stringer("gotype", typ.Type1()),
			zap.Error(err))
	}
	return data, data.err
}

func decode(ct ctypes.Type, typ reflect2.Type, path []string) (handler, structSize, error) {
	switch t := ct.(type) {
	case *ctypes.Primitive, *ctypes.Pointer, *ctypes.Enum:
		return decodeScalar(t, typ, path)
	case *ctypes.Array:
		return decodeArray(t, typ, path)
	case *ctypes.Union:
		return decodeUnion(t, typ, path)
	case *ctypes.Struct:
		if t == ctypes.EFI_GUID && typ.Type1() == uuidType.Type1() {
			return decodeGUID()
		}
		return decodeStruct(t, typ, path)
	case nil:
		return nil, nil, &BindError{CType: ctypesName(ct), GoType: typ.String(), Path: path, Detail: "void has no storage"}
	}
	return nil, nil, bindError(ct, typ, path, "type has no storage")
}

func decodeScalar(ct ctypes.Type, typ reflect2.Type, path []string) (handler, structSize, error) {
	access, ok := goScalar(typ)
	if !ok {
		return nil, nil, bindError(ct, typ, path, "not an integer")
	}
	size := ct.Size()
	signed := isSigned(ct)
	shift := 64 - uint(size)*8
	return func(stream Stream, ptr unsafe.Pointer) error {
		var buf [8]byte
		if _, err := stream.Read(buf[:size]); err != nil {
			return err
		}
		v := binary.LittleEndian.Uint64(buf[:])
		if signed {
			v = uint64(int64(v<<shift) >> shift)
		}
		access.set(ptr, v)
		return nil
	}, structSize{size}, nil
}

func decodeGUID() (handler, structSize, error) {
	return func(stream Stream, ptr unsafe.Pointer) error {
		var buf [16]byte
		if _, err := stream.Read(buf[:]); err != nil {
			return err
		}
		*(*uuid.UUID)(ptr) = ctypes.GUIDFrom(buf[:])
		return nil
	}, structSize{16}, nil
}

func decodePad(n int) handler {
	return func(stream Stream, _ unsafe.Pointer) error {
		return stream.Skip(n)
	}
}
