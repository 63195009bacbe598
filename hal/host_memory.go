//go:build !tinygo

package hal

import (
	"fmt"
	"sync"
	"unsafe"
)

const (
	conventionalBase = 0x00000
	conventionalSize = 0xA0000

	vramBase = 0xA0000
	vramSize = 0x10000

	// lfbBase is where the emulated adapter decodes its linear framebuffer.
	lfbBase = 0xE0000000
)

type memRegion struct {
	base uintptr
	buf  []byte
}

// hostMemory is a sparse physical address space made of fixed regions.
//
// bus is held for writing by Write and by the adapter while it clears video
// memory, and for reading while the adapter scans out.
type hostMemory struct {
	mu      sync.Mutex
	regions []memRegion

	bus sync.RWMutex
}

func newHostMemory() *hostMemory {
	return &hostMemory{}
}

func (m *hostMemory) add(base uintptr, size int) []byte {
	buf := make([]byte, size)
	m.mu.Lock()
	m.regions = append(m.regions, memRegion{base: base, buf: buf})
	m.mu.Unlock()
	return buf
}

func (m *hostMemory) Map(phys uintptr, size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("map %#x: negative size %d", phys, size)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.regions {
		if phys < r.base {
			continue
		}
		off := phys - r.base
		if off > uintptr(len(r.buf)) || uintptr(size) > uintptr(len(r.buf))-off {
			continue
		}
		return r.buf[off : off+uintptr(size) : off+uintptr(size)], nil
	}
	return nil, fmt.Errorf("map %#x+%d: %w", phys, size, ErrUnmapped)
}

func (m *hostMemory) Write(phys uintptr, src []byte) error {
	dst, err := m.Map(phys, len(src))
	if err != nil {
		return err
	}
	m.bus.Lock()
	copy(dst, src)
	m.bus.Unlock()
	return nil
}

// hostHeap is a byte-budgeted kernel heap.
type hostHeap struct {
	mu     sync.Mutex
	budget int
	used   int
	live   map[*byte]int
}

func newHostHeap(budget int) *hostHeap {
	return &hostHeap{budget: budget, live: make(map[*byte]int)}
}

func (h *hostHeap) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("alloc %d bytes: invalid size", size)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if size > h.budget-h.used {
		return nil, fmt.Errorf("alloc %d bytes (%d/%d in use): %w", size, h.used, h.budget, ErrNoMemory)
	}
	b := make([]byte, size)
	h.live[unsafe.SliceData(b)] = size
	h.used += size
	return b, nil
}

// Free returns a block obtained from Alloc. Unknown blocks are ignored.
func (h *hostHeap) Free(b []byte) {
	if cap(b) == 0 {
		return
	}
	key := unsafe.SliceData(b)
	h.mu.Lock()
	defer h.mu.Unlock()
	size, ok := h.live[key]
	if !ok {
		return
	}
	delete(h.live, key)
	h.used -= size
}

func (h *hostHeap) inUse() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.used
}
