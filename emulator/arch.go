package emulator

type Arch int

const (
	ARCH_UNKNOWN Arch = iota
	ARCH_ARM
	ARCH_ARM64
	ARCH_X86
	ARCH_X86_64
)

var archNames = [...]string{
	ARCH_UNKNOWN: "unknown",
	ARCH_ARM:     "arm",
	ARCH_ARM64:   "arm64",
	ARCH_X86:     "x86",
	ARCH_X86_64:  "x86_64",
}

func (a Arch) String() string {
	if a >= 0 && int(a) < len(archNames) {
		return archNames[a]
	}
	return archNames[ARCH_UNKNOWN]
}

// PointerSize returns the native pointer width of the architecture in bytes.
func (a Arch) PointerSize() (uint64, error) {
	switch a {
	case ARCH_ARM, ARCH_X86:
		return 4, nil
	case ARCH_ARM64, ARCH_X86_64:
		return 8, nil
	}
	return 0, ErrArchUnsupported
}
