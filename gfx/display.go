package gfx

import (
	"fmt"
	"sync"

	"ember/hal"
	"ember/kernel"
)

const (
	// VGAMemory is the legacy graphics window used by mode 13h.
	VGAMemory = 0xA0000

	IndexedWidth  = 320
	IndexedHeight = 200

	// DefaultRefreshPeriod is the flush cadence in ticks. It approximates a
	// 60 Hz refresh without tracking the real retrace.
	DefaultRefreshPeriod = 16

	// DefaultVBEMode is 1024x768, 24 bpp.
	DefaultVBEMode = 0x118

	// vbeScratch receives the VBE mode info block (ES:DI = 0800:0000).
	vbeScratch = 0x8000

	biosVideo = 0x10

	vbeOK        = 0x004F
	vbeLinearBit = 1 << 14
)

// Option configures a Display.
type Option func(*Display)

// WithVBEMode selects the VBE mode used by EnterLinearRGB.
func WithVBEMode(mode uint16) Option {
	return func(d *Display) { d.vbeMode = mode }
}

// WithRefreshPeriod overrides DefaultRefreshPeriod.
func WithRefreshPeriod(ticks uint64) Option {
	return func(d *Display) {
		if ticks > 0 {
			d.period = ticks
		}
	}
}

// Display is the process-wide display state: the platform it drives, the
// current mode and the single live Screen.
type Display struct {
	p      hal.Platform
	timers *kernel.Timers

	vbeMode uint16
	period  uint64

	mu   sync.Mutex
	mode Mode
	live *Screen

	depthOnce sync.Once
}

// NewDisplay returns a Display in text mode.
func NewDisplay(p hal.Platform, timers *kernel.Timers, opts ...Option) *Display {
	d := &Display{
		p:       p,
		timers:  timers,
		vbeMode: DefaultVBEMode,
		period:  DefaultRefreshPeriod,
		mode:    ModeText,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Mode returns the current display mode.
func (d *Display) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// Live returns the screen currently in graphics mode, or nil.
func (d *Display) Live() *Screen {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

// EnterIndexed switches to 320x200 with 8-bit palette indices and starts the
// periodic refresh.
func (d *Display) EnterIndexed() (*Screen, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.live != nil {
		return nil, ErrDisplayBusy
	}

	if err := d.int10(&hal.Regs16{AX: 0x0013}); err != nil {
		return nil, fmt.Errorf("%w: mode 0x13: %w", ErrModeSet, err)
	}
	d.mode = ModeIndexed

	s, err := d.attach(ModeIndexed, IndexedWidth, IndexedHeight, IndexedWidth, VGAMemory)
	if err != nil {
		d.abort()
		return nil, err
	}
	d.logf("gfx: mode 0x13 %dx%dx%d hw=%#x", s.width, s.height, s.Depth(), s.hwBase)
	return s, nil
}

// EnterLinearRGB switches to the configured VBE mode with a linear 24-bit
// framebuffer at the address the BIOS reports, and starts the periodic
// refresh.
func (d *Display) EnterLinearRGB() (*Screen, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.live != nil {
		return nil, ErrDisplayBusy
	}

	info, err := d.queryVBE(d.vbeMode)
	if err != nil {
		return nil, err
	}
	if info.Attributes&hal.VBEAttrLinear == 0 {
		return nil, fmt.Errorf("%w: vbe mode %#x has no linear framebuffer", ErrModeSet, d.vbeMode)
	}
	if info.BitsPerPixel != 24 {
		d.unsupportedDepth(int(info.BitsPerPixel))
		return nil, fmt.Errorf("%w: vbe mode %#x reports %d bpp", ErrUnsupportedDepth, d.vbeMode, info.BitsPerPixel)
	}

	regs := hal.Regs16{AX: 0x4F02, BX: d.vbeMode | vbeLinearBit}
	if err := d.int10(&regs); err != nil {
		return nil, fmt.Errorf("%w: vbe mode %#x: %w", ErrModeSet, d.vbeMode, err)
	}
	if regs.AX != vbeOK {
		return nil, fmt.Errorf("%w: vbe mode %#x: status %#04x", ErrModeSet, d.vbeMode, regs.AX)
	}
	d.mode = ModePackedRGB

	s, err := d.attach(ModePackedRGB, int(info.Width), int(info.Height), int(info.BytesPerScanLine), uintptr(info.PhysBase))
	if err != nil {
		d.abort()
		return nil, err
	}
	d.logf("gfx: vbe mode %#x %dx%dx%d hw=%#x", d.vbeMode, s.width, s.height, s.Depth(), s.hwBase)
	return s, nil
}

func (d *Display) queryVBE(mode uint16) (hal.VBEModeInfo, error) {
	regs := hal.Regs16{AX: 0x4F01, CX: mode, ES: vbeScratch >> 4, DI: vbeScratch & 0xF}
	if err := d.int10(&regs); err != nil {
		return hal.VBEModeInfo{}, fmt.Errorf("%w: vbe query %#x: %w", ErrModeSet, mode, err)
	}
	if regs.AX != vbeOK {
		return hal.VBEModeInfo{}, fmt.Errorf("%w: vbe query %#x: status %#04x", ErrModeSet, mode, regs.AX)
	}
	block, err := d.p.Memory().Map(vbeScratch, hal.VBEModeInfoSize)
	if err != nil {
		return hal.VBEModeInfo{}, fmt.Errorf("vbe query %#x: %w", mode, err)
	}
	info, ok := hal.DecodeVBEModeInfo(block)
	if !ok {
		return hal.VBEModeInfo{}, fmt.Errorf("%w: vbe query %#x: short mode info", ErrModeSet, mode)
	}
	return info, nil
}

// attach allocates the descriptor for a mode that was just set and
// registers its refresh. Called with d.mu held.
func (d *Display) attach(mode Mode, width, height, pitch int, hwBase uintptr) (*Screen, error) {
	format, ok := mode.Format()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDepth, mode)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %s reports %dx%d", ErrModeSet, mode, width, height)
	}
	row := width * format.BytesPerPixel()
	if pitch < row {
		pitch = row
	}

	back, err := d.p.Allocator().Alloc(width * height * format.BytesPerPixel())
	if err != nil {
		return nil, fmt.Errorf("%w: backbuffer %dx%dx%d: %w", ErrOutOfMemory, width, height, format.Depth(), err)
	}
	if _, err := d.p.Memory().Map(hwBase, pitch*(height-1)+row); err != nil {
		d.p.Allocator().Free(back)
		return nil, fmt.Errorf("map framebuffer %#x: %w", hwBase, err)
	}

	s := &Screen{
		width:  width,
		height: height,
		mode:   mode,
		format: format,
		hwBase: hwBase,
		pitch:  pitch,
		back:   back,
		mem:    d.p.Memory(),
		live:   true,
	}
	h, err := d.timers.Schedule(s.Flush, d.period, true)
	if err != nil {
		d.p.Allocator().Free(back)
		return nil, fmt.Errorf("start refresh: %w", err)
	}
	s.refresh = h
	d.live = s
	return s, nil
}

// abort returns the adapter to text mode after a failed switch.
func (d *Display) abort() {
	if err := d.int10(&hal.Regs16{AX: 0x0003}); err != nil {
		d.logf("gfx: abort to text mode: %v", err)
	}
	d.mode = ModeText
}

// Leave stops s's refresh and returns the adapter to text mode. The refresh
// is cancelled before the mode change, so no flush can run against the
// text-mode adapter. The backbuffer stays allocated until Release.
func (d *Display) Leave(s *Screen) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s == nil || d.live != s {
		return ErrScreenNotLive
	}

	d.timers.Cancel(s.RefreshHandle())

	s.mu.Lock()
	s.refresh = kernel.Handle{}
	s.live = false
	s.mu.Unlock()
	d.live = nil

	// The screen is gone either way; a failed switch leaves the adapter
	// state unknown and the next Enter sets a mode from scratch.
	d.mode = ModeText
	if err := d.int10(&hal.Regs16{AX: 0x0003}); err != nil {
		return fmt.Errorf("%w: mode 0x03: %w", ErrModeSet, err)
	}
	d.logf("gfx: text mode")
	return nil
}

// Release frees the backbuffer of a screen that has left graphics mode.
// Releasing twice is a no-op.
func (d *Display) Release(s *Screen) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	if s.live {
		s.mu.Unlock()
		return ErrScreenLive
	}
	back := s.back
	s.back = nil
	s.mem = nil
	s.mu.Unlock()

	if back != nil {
		d.p.Allocator().Free(back)
	}
	return nil
}

// WaitVSync spins until the start of the next vertical retrace: first while
// a retrace is in progress, then until one begins. It has no timeout.
func (d *Display) WaitVSync() {
	ports := d.p.Ports()
	for ports.In8(hal.StatusPort)&hal.StatusRetrace != 0 {
	}
	for ports.In8(hal.StatusPort)&hal.StatusRetrace == 0 {
	}
}

func (d *Display) int10(r *hal.Regs16) error {
	return d.p.BIOS().Int(biosVideo, r)
}

func (d *Display) unsupportedDepth(depth int) {
	d.depthOnce.Do(func() {
		d.logf("gfx: unsupported depth %d bpp", depth)
	})
}

func (d *Display) logf(format string, args ...any) {
	if l := d.p.Logger(); l != nil {
		l.WriteLineString(fmt.Sprintf(format, args...))
	}
}
