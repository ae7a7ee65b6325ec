package emulator

import "errors"

var (
	ErrArchUnsupported = errors.New("architecture unsupported")
	ErrUnmapped        = errors.New("memory unmapped")
	ErrProtection      = errors.New("memory protection violation")
	ErrMapped          = errors.New("memory already mapped")
	ErrArgumentInvalid = errors.New("argument invalid")
)
