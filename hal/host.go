//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// DefaultHeapBytes is the emulated kernel heap size.
const DefaultHeapBytes = 8 << 20

// HostConfig controls the emulated machine.
type HostConfig struct {
	// HeapBytes caps the kernel heap; 0 selects DefaultHeapBytes.
	HeapBytes int
	// Serial names a serial device that mirrors the log (empty = none).
	Serial string
	// SerialBaud is the mirror baud rate; 0 selects 115200.
	SerialBaud int
	// Quiet suppresses stdout logging.
	Quiet bool
}

// Host is an emulated PC: VGA/VBE adapter, conventional memory, kernel heap
// and a millisecond tick stream.
type Host struct {
	logger *hostLogger
	video  *hostVideo
	mem    *hostMemory
	heap   *hostHeap
	t      *hostTime
	cons   *hostConsole
	serial io.Closer
}

// NewHost returns a host platform implementation.
func NewHost(cfg HostConfig) (*Host, error) {
	if cfg.HeapBytes <= 0 {
		cfg.HeapBytes = DefaultHeapBytes
	}

	mem := newHostMemory()
	cons := newHostConsole(consoleWidth, consoleHeight)
	logger := &hostLogger{}
	if !cfg.Quiet {
		logger.sinks = append(logger.sinks, os.Stdout)
	}
	logger.sinks = append(logger.sinks, cons)

	h := &Host{
		logger: logger,
		mem:    mem,
		heap:   newHostHeap(cfg.HeapBytes),
		t:      newHostTime(),
		cons:   cons,
	}
	h.video = newHostVideo(mem, cons)

	if cfg.Serial != "" {
		port, err := openSerialMirror(cfg.Serial, cfg.SerialBaud)
		if err != nil {
			return nil, fmt.Errorf("serial mirror %s: %w", cfg.Serial, err)
		}
		logger.sinks = append(logger.sinks, port)
		h.serial = port
	}
	return h, nil
}

func (h *Host) Logger() Logger       { return h.logger }
func (h *Host) BIOS() BIOS           { return h.video }
func (h *Host) Ports() Ports         { return h.video }
func (h *Host) Memory() Memory       { return h.mem }
func (h *Host) Allocator() Allocator { return h.heap }
func (h *Host) Time() Time           { return h.t }

// VideoMode reports the adapter's current BIOS mode number (0x03, 0x13, or a
// VBE mode).
func (h *Host) VideoMode() uint16 { return h.video.currentMode() }

// HeapInUse reports the number of live heap bytes.
func (h *Host) HeapInUse() int { return h.heap.inUse() }

// Close releases host resources.
func (h *Host) Close() error {
	if h.serial != nil {
		return h.serial.Close()
	}
	return nil
}

type hostLogger struct {
	mu    sync.Mutex
	sinks []io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range l.sinks {
		fmt.Fprintln(w, s)
	}
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.WriteLineString(string(b))
}
