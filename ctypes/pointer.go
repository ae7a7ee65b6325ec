package ctypes

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Pointer is a pointer-sized address of a value of Elem.
type Pointer struct {
	name string
	elem Type
	size int
}

func (*Pointer) ctype() {}

func (p *Pointer) Name() string {
	return p.name
}

func (p *Pointer) Kind() Kind {
	return KindPointer
}

func (p *Pointer) Size() int {
	return p.size
}

// Elem returns the element type, nil for an opaque pointer.
func (p *Pointer) Elem() Type {
	return p.elem
}

// PointerCache hands out one pointer descriptor per element type.
type PointerCache struct {
	size int
	mu   sync.Mutex
	ptrs map[Type]*Pointer
	sigs map[string][]*Signature
}

func NewPointerCache(size int) *PointerCache {
	return &PointerCache{
		size: size,
		ptrs: make(map[Type]*Pointer),
		sigs: make(map[string][]*Signature),
	}
}

func (c *PointerCache) PointerSize() int {
	return c.size
}

func (c *PointerCache) Lookup(elem Type) (*Pointer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ptr, ok := c.ptrs[elem]
	return ptr, ok
}

// PointerTo returns the pointer descriptor for elem, creating it on first use.
// Pass VOID for an opaque pointer.
func (c *PointerCache) PointerTo(elem Type) *Pointer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ptr, ok := c.ptrs[elem]; ok {
		return ptr
	}
	ptr := &Pointer{
		name: fmt.Sprintf("LP_%d_%s", c.size, typeName(elem)),
		elem: elem,
		size: c.size,
	}
	c.ptrs[elem] = ptr
	Logger().Debug("pointer type created", zap.String("name", ptr.name), zap.Int("size", ptr.size))
	return ptr
}

func (c *PointerCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ptrs)
}

// PTR returns a pointer to elem for the default 64-bit profile.
func PTR(elem Type) *Pointer {
	return Profile64.Pointers.PointerTo(elem)
}
