//go:build !tinygo

package hal

import (
	"image"
	"image/color"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

const (
	consoleWidth  = 640
	consoleHeight = 400
)

// hostConsole stands in for the 80x25 text screen: log lines are rendered
// through tinyterm and shown whenever the adapter is in text mode.
type hostConsole struct {
	mu   sync.Mutex
	img  *image.RGBA
	term *tinyterm.Terminal
}

func newHostConsole(width, height int) *hostConsole {
	c := &hostConsole{img: image.NewRGBA(image.Rect(0, 0, width, height))}
	c.term = tinyterm.NewTerminal(consoleDisplay{c: c})
	c.term.Configure(&tinyterm.Config{
		Font:              &proggy.TinySZ8pt7b,
		FontHeight:        10,
		FontOffset:        6,
		UseSoftwareScroll: true,
	})
	return c
}

func (c *hostConsole) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.term.Write(p)
}

func (c *hostConsole) snapshot() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	img := image.NewRGBA(c.img.Rect)
	copy(img.Pix, c.img.Pix)
	return img
}

// consoleDisplay adapts the console image to tinyterm. Callers hold c.mu.
type consoleDisplay struct {
	c *hostConsole
}

func (d consoleDisplay) Size() (x, y int16) {
	b := d.c.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (d consoleDisplay) SetPixel(x, y int16, c color.RGBA) {
	img := d.c.img
	if !(image.Point{X: int(x), Y: int(y)}.In(img.Rect)) {
		return
	}
	img.SetRGBA(int(x), int(y), c)
}

func (d consoleDisplay) Display() error { return nil }

func (d consoleDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	img := d.c.img
	r := image.Rect(int(x), int(y), int(x)+int(width), int(y)+int(height)).Intersect(img.Rect)
	for yy := r.Min.Y; yy < r.Max.Y; yy++ {
		for xx := r.Min.X; xx < r.Max.X; xx++ {
			img.SetRGBA(xx, yy, c)
		}
	}
	return nil
}

func (d consoleDisplay) ScrollUp(lines int16, bg color.RGBA) error {
	img := d.c.img
	n := int(lines)
	h := img.Rect.Dy()
	if n <= 0 {
		return nil
	}
	if n >= h {
		return d.FillRectangle(0, 0, int16(img.Rect.Dx()), int16(h), bg)
	}
	copy(img.Pix, img.Pix[n*img.Stride:])
	return d.FillRectangle(0, int16(h-n), int16(img.Rect.Dx()), int16(n), bg)
}

func (d consoleDisplay) SetScroll(line int16) {}

func (d consoleDisplay) SetRotation(rotation drivers.Rotation) error {
	return ErrNotImplemented
}
