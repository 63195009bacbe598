package gfx

import (
	"image/color"

	"tinygo.org/x/drivers"
)

// Displayer adapts s to drivers.Displayer so tinyfont and other TinyGo
// drawing code can render into the backbuffer. Pixels off screen are
// dropped; Display flushes immediately.
func (s *Screen) Displayer() drivers.Displayer {
	return screenDisplayer{s: s}
}

type screenDisplayer struct {
	s *Screen
}

func (d screenDisplayer) Size() (x, y int16) {
	return int16(d.s.width), int16(d.s.height)
}

func (d screenDisplayer) SetPixel(x, y int16, c color.RGBA) {
	if !d.s.in(int(x), int(y)) {
		return
	}
	_ = d.s.PutPixel(int(x), int(y), d.s.format.Encode(c))
}

func (d screenDisplayer) Display() error {
	d.s.Flush()
	return nil
}
