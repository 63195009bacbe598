package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime/debug"

	"ember/gfx"
	"ember/gfx/shapes"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// RainbowColors are the band colours, left to right.
var RainbowColors = [7]uint32{0xFF0000, 0xFF7000, 0xFFFF00, 0x00FF00, 0x0000FF, 0x4B0082, 0x9400D3}

const (
	triangleColor = 0x00FF00
	titleColor    = 255
	borderColor   = 0xFFFFFF
)

// RectFiller fills a rectangle with a 0xRRGGBB colour.
type RectFiller interface {
	FillRect(r image.Rectangle, col uint32) error
}

// Rainbow sweeps seven bands of width r.Dx()/7 across r, sleeping total/7
// ticks after each band.
func Rainbow(f RectFiller, r image.Rectangle, total uint64, sleep func(ticks uint64) error) error {
	n := len(RainbowColors)
	bw := r.Dx() / n
	step := total / uint64(n)
	for i, col := range RainbowColors {
		x := r.Min.X + bw*i
		if err := f.FillRect(image.Rect(x, r.Min.Y, x+bw, r.Max.Y), col); err != nil {
			return err
		}
		if err := sleep(step); err != nil {
			return err
		}
	}
	return nil
}

type screenFiller struct {
	s *gfx.Screen
}

func (f screenFiller) FillRect(r image.Rectangle, col uint32) error {
	c := encode(f.s, col)
	return f.s.Draw(func(cv *gfx.Canvas) {
		shapes.Rect(cv, r, c, shapes.Filled)
	})
}

// encode maps a 0xRRGGBB colour into the screen's pixel format.
func encode(s *gfx.Screen, col uint32) uint32 {
	return s.Format().Encode(gfx.RGB(col))
}

func (s *System) enter() (*gfx.Screen, error) {
	if s.cfg.Mode == ModeIndexed {
		return s.display.EnterIndexed()
	}
	return s.display.EnterLinearRGB()
}

// BootScreen draws the startup screen and plays the rainbow, then returns
// the display to text mode and frees the screen.
func (s *System) BootScreen(ctx context.Context) (err error) {
	scr, err := s.enter()
	if err != nil {
		return fmt.Errorf("boot screen: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			s.panicScreen(scr, r, debug.Stack())
			_ = s.sleep(ctx, s.cfg.Linger)
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
		if lerr := s.display.Leave(scr); lerr != nil {
			err = errors.Join(err, lerr)
		}
		if rerr := s.display.Release(scr); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()

	s.drawSplash(scr)

	if err := s.sleep(ctx, s.cfg.Hold); err != nil {
		return err
	}
	if err := Rainbow(screenFiller{s: scr}, rainbowRect(scr), s.cfg.Rainbow, func(t uint64) error {
		return s.sleep(ctx, t)
	}); err != nil {
		return err
	}
	return s.sleep(ctx, s.cfg.Linger)
}

func (s *System) drawSplash(scr *gfx.Screen) {
	w, h := scr.Width(), scr.Height()
	scr.Fill(0)

	_ = scr.Draw(func(c *gfx.Canvas) {
		apex := image.Pt(w/2, h/4)
		shapes.Triangle(c,
			apex,
			apex.Add(image.Pt(-100, 200)),
			apex.Add(image.Pt(100, 200)),
			encode(scr, triangleColor), 5)
	})

	tinyfont.WriteLine(scr.Displayer(), &proggy.TinySZ8pt7b,
		int16(w/2-35), int16(h*6/10), s.cfg.Title, gfx.RGB(titleColor))

	_ = scr.Draw(func(c *gfx.Canvas) {
		shapes.Rect(c, borderRect(scr), encode(scr, borderColor), 1)
	})
}

// borderRect is a third of the screen wide, centred, just above the bottom
// quarter.
func borderRect(scr *gfx.Screen) image.Rectangle {
	w, h := scr.Width(), scr.Height()
	rw := w / 3
	origin := image.Pt(w/2-rw/2, h/4*3-1)
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(rw, h/16+2))}
}

func rainbowRect(scr *gfx.Screen) image.Rectangle {
	b := borderRect(scr)
	origin := b.Min.Add(image.Pt(2, 2))
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(b.Dx()-3, b.Dy()-3))}
}

func (s *System) sleep(ctx context.Context, ticks uint64) error {
	return s.k.Timers().Sleep(ctx, ticks)
}
