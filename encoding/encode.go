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

type handler = func(Stream, unsafe.Pointer) error

type handlerData struct {
	handler handler
	size    int
	err     error
}

var (
	encodeProcess sync.Map
	padNull       [64]byte
)

// EncodeInstance writes the bytes of inst.
func EncodeInstance(stream Stream, inst *ctypes.Instance) error {
	_, err := stream.Write(inst.Bytes())
	return err
}

// Encode writes val in the layout of t. val is an *ctypes.Instance of t, a Go
// value, or a pointer to one.
func Encode(stream Stream, t ctypes.Type, val any) error {
	if inst, ok := val.(*ctypes.Instance); ok {
		if inst == nil {
			return &BindError{CType: ctypesName(t), GoType: "*ctypes.Instance", Detail: "nil instance"}
		} else if inst.Type() != t {
			return fmt.Errorf("%w: %s, want %s", ErrTypeMismatch, inst.Type().Name(), ctypesName(t))
		}
		return EncodeInstance(stream, inst)
	} else if val == nil {
		return &BindError{CType: ctypesName(t), GoType: "nil", Detail: "nil value"}
	}
	typ := reflect2.TypeOf(val)
	ptr := reflect2.PtrOf(val)
	if typ.Kind() == reflect.Pointer {
		if ptr == nil {
			return &BindError{CType: ctypesName(t), GoType: typ.String(), Detail: "nil pointer"}
		}
		typ = typ.(reflect2.PtrType).Elem()
	}
	data, err := getMarshalData(t, typ)
	if err != nil {
		return err
	}
	return data.handler(stream, ptr)
}

func getMarshalData(t ctypes.Type, typ reflect2.Type) (*handlerData, error) {
	key := bindKey{t, typ.Type1()}
	var data *handlerData
	if v, ok := encodeProcess.Load(key); ok {
		data = v.(*handlerData)
	} else {
		marshal, size, err := encode(t, typ, nil)
		err = rootError(t, err)
		data = &handlerData{marshal, size.Size(), err}
		if err == nil && data.size != t.Size() {
			panic(fmt.Sprintf("encoding: %s encodes %d bytes, want %d", t.Name(), data.size, t.Size()))
		}
		encodeProcess.Store(key, data)
		Logger().Debug("encode handler compiled",
			zap.String("ctype", ctypesName(t)),
			zap.Stringer("gotype", typ.Type1()),
			zap.Error(err))
	}
	return data, data.err
}

func encode(ct ctypes.Type, typ reflect2.Type, path []string) (handler, structSize, error) {
	switch t := ct.(type) {
	case *ctypes.Primitive, *ctypes.Pointer, *ctypes.Enum:
		return encodeScalar(t, typ, path)
	case *ctypes.Array:
		return encodeArray(t, typ, path)
	case *ctypes.Union:
		return encodeUnion(t, typ, path)
	case *ctypes.Struct:
		if t == ctypes.EFI_GUID && typ.Type1() == uuidType.Type1() {
			return encodeGUID()
		}
		return encodeStruct(t, typ, path)
	case nil:
		return nil, nil, &BindError{CType: ctypesName(ct), GoType: typ.String(), Path: path, Detail: "void has no storage"}
	}
	return nil, nil, bindError(ct, typ, path, "type has no storage")
}

func encodeScalar(ct ctypes.Type, typ reflect2.Type, path []string) (handler, structSize, error) {
	access, ok := goScalar(typ)
	if !ok {
		return nil, nil, bindError(ct, typ, path, "not an integer")
	}
	size := ct.Size()
	return func(stream Stream, ptr unsafe.Pointer) error {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], access.get(ptr))
		_, err := stream.Write(buf[:size])
		return err
	}, structSize{size}, nil
}

func encodeGUID() (handler, structSize, error) {
	return func(stream Stream, ptr unsafe.Pointer) error {
		var buf [16]byte
		ctypes.PutGUID(buf[:], *(*uuid.UUID)(ptr))
		_, err := stream.Write(buf[:])
		return err
	}, structSize{16}, nil
}

func encodePad(n int) handler {
	return func(stream Stream, _ unsafe.Pointer) error {
		for left := n; left > 0; {
			chunk := min(left, len(padNull))
			if _, err := stream.Write(padNull[:chunk]); err != nil {
				return err
			}
			left -= chunk
		}
		return nil
	}
}

func ctypesName(t ctypes.Type) string {
	if t == nil {
		return "VOID"
	}
	return t.Name()
}
