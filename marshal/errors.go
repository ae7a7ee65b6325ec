package marshal

import "fmt"

// MemoryAccessError reports a failed read or write through the memory
// accessor. It wraps the accessor's error.
type MemoryAccessError struct {
	Op   string
	Addr uint64
	Size int
	Err  error
}

func (e *MemoryAccessError) Error() string {
	return fmt.Sprintf("%s %d bytes at %#x: %v", e.Op, e.Size, e.Addr, e.Err)
}

func (e *MemoryAccessError) Unwrap() error {
	return e.Err
}
