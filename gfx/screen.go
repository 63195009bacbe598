package gfx

import (
	"fmt"
	"sync"

	"ember/hal"
	"ember/kernel"
)

// Screen is a graphics-mode framebuffer descriptor: a heap-allocated
// backbuffer plus the hardware framebuffer it is flushed to.
//
// Drawing and Flush serialize on the screen lock, so the periodic refresh
// never copies a half-written batch. Flush writes the framebuffer through
// hal.Memory.Write so it never races the adapter's scan-out.
type Screen struct {
	width  int
	height int
	mode   Mode
	format Format

	hwBase uintptr
	pitch  int

	mu      sync.Mutex
	back    []byte
	mem     hal.Memory
	refresh kernel.Handle
	live    bool
}

func (s *Screen) Width() int      { return s.width }
func (s *Screen) Height() int     { return s.height }
func (s *Screen) Depth() int      { return s.format.Depth() }
func (s *Screen) Mode() Mode      { return s.mode }
func (s *Screen) Format() Format  { return s.format }
func (s *Screen) HWBase() uintptr { return s.hwBase }

// Live reports whether the screen still owns the display.
func (s *Screen) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// RefreshHandle returns the periodic flush registration; it is invalid once
// the screen has left graphics mode.
func (s *Screen) RefreshHandle() kernel.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

// Size returns the backbuffer size in bytes.
func (s *Screen) Size() int {
	return s.width * s.height * s.format.BytesPerPixel()
}

func (s *Screen) in(x, y int) bool {
	return x >= 0 && x < s.width && y >= 0 && y < s.height
}

// PutPixel writes one pixel into the backbuffer.
//
// Indexed screens store c&0xFF. Packed RGB screens store c as 0xRRGGBB in
// blue, green, red byte order.
func (s *Screen) PutPixel(x, y int, c uint32) error {
	if !s.in(x, y) {
		return fmt.Errorf("%w: (%d,%d) on %dx%d", ErrOutOfBounds, x, y, s.width, s.height)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.back == nil {
		return ErrReleased
	}
	s.format.put(s.back, (y*s.width+x)*s.format.BytesPerPixel(), c)
	return nil
}

// Fill sets every backbuffer byte to b.
//
// This is a byte fill, not a colour fill: on a packed RGB screen only greys
// whose three channels equal b can be produced (0 is black, 0xFF white).
func (s *Screen) Fill(b byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.back {
		s.back[i] = b
	}
}

// Flush copies the backbuffer to the hardware framebuffer. A released screen
// flushes nothing.
func (s *Screen) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.back == nil || s.mem == nil {
		return
	}
	// attach mapped the whole range, so Write cannot miss.
	row := s.width * s.format.BytesPerPixel()
	if s.pitch == row {
		_ = s.mem.Write(s.hwBase, s.back)
		return
	}
	for y := 0; y < s.height; y++ {
		_ = s.mem.Write(s.hwBase+uintptr(y*s.pitch), s.back[y*row:(y+1)*row])
	}
}

// Backbuffer returns a copy of the backbuffer.
func (s *Screen) Backbuffer() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.back == nil {
		return nil
	}
	out := make([]byte, len(s.back))
	copy(out, s.back)
	return out
}

// Draw runs fn with the screen locked. Use it for bulk drawing so a refresh
// tick cannot interleave with the batch.
func (s *Screen) Draw(fn func(c *Canvas)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.back == nil {
		return ErrReleased
	}
	c := Canvas{s: s}
	fn(&c)
	return nil
}

// Canvas is the unlocked view of a Screen handed to Draw callbacks. It must
// not be retained after the callback returns.
type Canvas struct {
	s *Screen
}

func (c *Canvas) Width() int  { return c.s.width }
func (c *Canvas) Height() int { return c.s.height }

// In reports whether (x, y) lies on the screen.
func (c *Canvas) In(x, y int) bool { return c.s.in(x, y) }

// SetPixel is the unchecked fast path: x is not clipped against the width,
// so an out-of-range x lands in a neighbouring row. Coordinates past the end
// of the buffer panic.
func (c *Canvas) SetPixel(x, y int, col uint32) {
	s := c.s
	s.format.put(s.back, (y*s.width+x)*s.format.BytesPerPixel(), col)
}

// FillRect fills the rectangle clipped to the screen.
func (c *Canvas) FillRect(x, y, w, h int, col uint32) {
	s := c.s
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, s.width), min(y+h, s.height)
	for yy := y0; yy < y1; yy++ {
		for xx := x0; xx < x1; xx++ {
			c.SetPixel(xx, yy, col)
		}
	}
}
