package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var (
	ErrNotImplemented = errors.New("not implemented")
	ErrNoMemory       = errors.New("out of memory")
	ErrUnmapped       = errors.New("physical range not mapped")
)

// Regs16 is the register image handed to a real-mode interrupt.
type Regs16 struct {
	DI, SI, BP, SP uint16
	BX, DX, CX, AX uint16
	GS, FS, ES, DS uint16
	EFlags         uint16
}

// BIOS issues real-mode software interrupts.
//
// The register image is updated in place with the values the interrupt
// returned.
type BIOS interface {
	Int(n uint8, r *Regs16) error
}

const (
	// StatusPort is the VGA input status #1 register.
	StatusPort = 0x3DA
	// StatusRetrace is set while the beam is in vertical retrace.
	StatusRetrace = 1 << 3
)

// Ports reads legacy I/O ports.
type Ports interface {
	In8(port uint16) uint8
}

// Memory exposes physical address ranges as byte slices.
//
// A mapped slice aliases hardware memory: writes are visible to the device.
// Memory a device scans out concurrently must be written with Write, which
// holds the bus against the device's reads for the length of the copy.
type Memory interface {
	Map(phys uintptr, size int) ([]byte, error)
	Write(phys uintptr, src []byte) error
}

// Allocator is the kernel heap.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Free(b []byte)
}

// Time provides a base tick stream.
//
// One tick is one millisecond; higher-level timers live in the kernel.
type Time interface {
	Ticks() <-chan uint64
}

// Platform provides the only contact point between the display code and the
// machine.
type Platform interface {
	Logger() Logger
	BIOS() BIOS
	Ports() Ports
	Memory() Memory
	Allocator() Allocator
	Time() Time
}
