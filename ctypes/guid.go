package ctypes

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// EFI_GUID stores its first three groups little-endian, unlike RFC 4122.
var EFI_GUID = MustStruct("EFI_GUID",
	Field{"Data1", UINT32},
	Field{"Data2", UINT16},
	Field{"Data3", UINT16},
	Field{"Data4", ArrayOf(UINT8, 8)},
)

// PutGUID writes id into b in EFI_GUID layout. b must hold 16 bytes.
func PutGUID(b []byte, id uuid.UUID) {
	_ = b[15]
	binary.LittleEndian.PutUint32(b[0:], binary.BigEndian.Uint32(id[0:]))
	binary.LittleEndian.PutUint16(b[4:], binary.BigEndian.Uint16(id[4:]))
	binary.LittleEndian.PutUint16(b[6:], binary.BigEndian.Uint16(id[6:]))
	copy(b[8:16], id[8:])
}

// GUIDFrom decodes 16 bytes in EFI_GUID layout.
func GUIDFrom(b []byte) (id uuid.UUID) {
	_ = b[15]
	binary.BigEndian.PutUint32(id[0:], binary.LittleEndian.Uint32(b[0:]))
	binary.BigEndian.PutUint16(id[4:], binary.LittleEndian.Uint16(b[4:]))
	binary.BigEndian.PutUint16(id[6:], binary.LittleEndian.Uint16(b[6:]))
	copy(id[8:], b[8:16])
	return
}

func (inst *Instance) GUID(path string) (uuid.UUID, error) {
	b, err := inst.guid(path)
	if err != nil {
		return uuid.Nil, err
	}
	return GUIDFrom(b), nil
}

func (inst *Instance) SetGUID(path string, id uuid.UUID) error {
	b, err := inst.guid(path)
	if err != nil {
		return err
	}
	PutGUID(b, id)
	return nil
}

func (inst *Instance) guid(path string) ([]byte, error) {
	t, b, err := inst.locate(path)
	if err != nil {
		return nil, err
	} else if t != EFI_GUID {
		return nil, fmt.Errorf("%w: %s is %s, not %s", ErrFieldKind, displayPath(inst, path), t.Name(), EFI_GUID.name)
	}
	return b, nil
}
