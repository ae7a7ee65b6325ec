package memory

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"

	"github.com/wnxd/microbind/ctypes"
	"github.com/wnxd/microbind/emulator"
)

const MAP_BASE = 0x400000

type page struct {
	data []byte
	prot emulator.MemProt
}

// Flat is a sparse paged address space. Pages are allocated when mapped.
type Flat struct {
	arch    emulator.Arch
	mu      sync.RWMutex
	pages   map[uint64]*page
	mapAddr uint64
}

var _ emulator.Emulator = (*Flat)(nil)

func NewFlat(arch emulator.Arch) (*Flat, error) {
	if _, err := arch.PointerSize(); err != nil {
		return nil, err
	}
	return &Flat{arch: arch, pages: make(map[uint64]*page), mapAddr: MAP_BASE}, nil
}

func (f *Flat) Close() error {
	f.mu.Lock()
	clear(f.pages)
	f.mu.Unlock()
	return nil
}

func (f *Flat) Arch() emulator.Arch {
	return f.arch
}

func (f *Flat) ByteOrder() emulator.ByteOrder {
	return emulator.BO_LITTLE_ENDIAN
}

func (f *Flat) PageSize() uint64 {
	return ctypes.PAGE_SIZE
}

func pageSpan(addr, size uint64) (begin, end uint64, err error) {
	if size == 0 {
		return 0, 0, fmt.Errorf("%w: zero size at %#x", emulator.ErrArgumentInvalid, addr)
	}
	begin = addr &^ (ctypes.PAGE_SIZE - 1)
	end = ctypes.Align(addr+size, ctypes.PAGE_SIZE)
	if end <= begin {
		return 0, 0, fmt.Errorf("%w: %#x+%#x overflows", emulator.ErrArgumentInvalid, addr, size)
	}
	return
}

func (f *Flat) MemMap(addr, size uint64, prot emulator.MemProt) error {
	begin, end, err := pageSpan(addr, size)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mapLocked(begin, end, prot)
}

func (f *Flat) mapLocked(begin, end uint64, prot emulator.MemProt) error {
	for a := begin; a < end; a += ctypes.PAGE_SIZE {
		if _, ok := f.pages[a]; ok {
			return fmt.Errorf("%w: %#x", emulator.ErrMapped, a)
		}
	}
	for a := begin; a < end; a += ctypes.PAGE_SIZE {
		f.pages[a] = &page{make([]byte, ctypes.PAGE_SIZE), prot}
	}
	return nil
}

func (f *Flat) MemUnmap(addr, size uint64) error {
	begin, end, err := pageSpan(addr, size)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err = f.checkMapped(begin, end); err != nil {
		return err
	}
	for a := begin; a < end; a += ctypes.PAGE_SIZE {
		delete(f.pages, a)
	}
	return nil
}

func (f *Flat) MemProtect(addr, size uint64, prot emulator.MemProt) error {
	begin, end, err := pageSpan(addr, size)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err = f.checkMapped(begin, end); err != nil {
		return err
	}
	for a := begin; a < end; a += ctypes.PAGE_SIZE {
		f.pages[a].prot = prot
	}
	return nil
}

func (f *Flat) checkMapped(begin, end uint64) error {
	for a := begin; a < end; a += ctypes.PAGE_SIZE {
		if _, ok := f.pages[a]; !ok {
			return fmt.Errorf("%w: %#x", emulator.ErrUnmapped, a)
		}
	}
	return nil
}

// MemRegions returns the mapped ranges in address order, merging adjacent
// pages with the same protection.
func (f *Flat) MemRegions() ([]emulator.MemRegion, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var regions []emulator.MemRegion
	for _, a := range slices.Sorted(maps.Keys(f.pages)) {
		prot := f.pages[a].prot
		if n := len(regions); n > 0 && regions[n-1].End() == a && regions[n-1].Prot == prot {
			regions[n-1].Size += ctypes.PAGE_SIZE
			continue
		}
		regions = append(regions, emulator.MemRegion{Addr: a, Size: ctypes.PAGE_SIZE, Prot: prot})
	}
	return regions, nil
}

// MapAlloc maps size bytes at the next free address above MAP_BASE.
func (f *Flat) MapAlloc(size uint64, prot emulator.MemProt) (emulator.MemRegion, error) {
	if size == 0 {
		return emulator.MemRegion{}, emulator.ErrArgumentInvalid
	}
	size = ctypes.Align(size, ctypes.PAGE_SIZE)
	f.mu.Lock()
	defer f.mu.Unlock()
	addr := f.mapAddr
	for f.checkFree(addr, addr+size) != nil {
		addr += ctypes.PAGE_SIZE
	}
	if err := f.mapLocked(addr, addr+size, prot); err != nil {
		return emulator.MemRegion{}, err
	}
	f.mapAddr = addr + size
	return emulator.MemRegion{Addr: addr, Size: size, Prot: prot}, nil
}

func (f *Flat) checkFree(begin, end uint64) error {
	for a := begin; a < end; a += ctypes.PAGE_SIZE {
		if _, ok := f.pages[a]; ok {
			return emulator.ErrMapped
		}
	}
	return nil
}

func (f *Flat) MapFree(addr, size uint64) error {
	return f.MemUnmap(addr, size)
}

func (f *Flat) access(addr, size uint64, want emulator.MemProt) error {
	if addr+size < addr {
		return fmt.Errorf("%w: %#x+%#x overflows", emulator.ErrUnmapped, addr, size)
	}
	for a := addr &^ (ctypes.PAGE_SIZE - 1); a < addr+size; a += ctypes.PAGE_SIZE {
		p, ok := f.pages[a]
		if !ok {
			return fmt.Errorf("%w: %#x", emulator.ErrUnmapped, max(a, addr))
		} else if p.prot&want != want {
			return fmt.Errorf("%w: %#x", emulator.ErrProtection, max(a, addr))
		}
	}
	return nil
}

func (f *Flat) MemRead(addr, size uint64) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := f.access(addr, size, emulator.MEM_PROT_READ); err != nil {
		return nil, err
	}
	data := make([]byte, size)
	for off := uint64(0); off < size; {
		a := addr + off
		p := f.pages[a&^(ctypes.PAGE_SIZE-1)]
		off += uint64(copy(data[off:], p.data[a&(ctypes.PAGE_SIZE-1):]))
	}
	return data, nil
}

func (f *Flat) MemWrite(addr uint64, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.access(addr, uint64(len(data)), emulator.MEM_PROT_WRITE); err != nil {
		return err
	}
	f.writeLocked(addr, data)
	return nil
}

func (f *Flat) writeLocked(addr uint64, data []byte) {
	for off := 0; off < len(data); {
		a := addr + uint64(off)
		p := f.pages[a&^(ctypes.PAGE_SIZE-1)]
		off += copy(p.data[a&(ctypes.PAGE_SIZE-1):], data[off:])
	}
}

// Load maps r and fills it from its reader.
func (f *Flat) Load(r Region) error {
	if r.Length > r.Size {
		return fmt.Errorf("%w: region length %#x exceeds size %#x", emulator.ErrArgumentInvalid, r.Length, r.Size)
	}
	begin, end, err := pageSpan(r.Addr, r.Size)
	if err != nil {
		return err
	}
	data := make([]byte, r.Length)
	if r.Length > 0 {
		n, err := r.ReadAt(data, 0)
		if n < len(data) {
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
			return fmt.Errorf("load region %#x: %w", r.Addr, err)
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err = f.mapLocked(begin, end, r.Prot); err != nil {
		return err
	}
	f.writeLocked(r.Addr, data)
	return nil
}
