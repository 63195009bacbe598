package shapes

import (
	"image"
	"testing"

	"ember/gfx"
	"ember/hal"
	"ember/kernel"
)

func newScreen(t *testing.T) *gfx.Screen {
	t.Helper()
	h, err := hal.NewHost(hal.HostConfig{Quiet: true})
	if err != nil {
		t.Fatalf("NewHost() err = %v", err)
	}
	s, err := gfx.NewDisplay(h, kernel.NewTimers()).EnterIndexed()
	if err != nil {
		t.Fatalf("EnterIndexed() err = %v", err)
	}
	return s
}

func draw(t *testing.T, s *gfx.Screen, fn func(c *gfx.Canvas)) []byte {
	t.Helper()
	if err := s.Draw(fn); err != nil {
		t.Fatalf("Draw() err = %v", err)
	}
	return s.Backbuffer()
}

func count(back []byte, v byte) int {
	n := 0
	for _, b := range back {
		if b == v {
			n++
		}
	}
	return n
}

func TestRectFilled(t *testing.T) {
	s := newScreen(t)
	back := draw(t, s, func(c *gfx.Canvas) {
		Rect(c, image.Rect(10, 10, 20, 15), 5, Filled)
	})
	if got := count(back, 5); got != 50 {
		t.Fatalf("filled pixels = %d, want 50", got)
	}
	if back[10*320+10] != 5 || back[14*320+19] != 5 || back[15*320+10] != 0 {
		t.Fatal("filled rect has wrong extent")
	}
}

func TestRectOutlineThickness(t *testing.T) {
	s := newScreen(t)
	back := draw(t, s, func(c *gfx.Canvas) {
		Rect(c, image.Rect(0, 0, 10, 10), 1, 1)
	})
	if got := count(back, 1); got != 36 {
		t.Fatalf("outline pixels = %d, want 36", got)
	}
	if back[5*320+5] != 0 {
		t.Fatal("thickness 1 outline filled the interior")
	}

	s.Fill(0)
	back = draw(t, s, func(c *gfx.Canvas) {
		Rect(c, image.Rect(0, 0, 10, 10), 2, 2)
	})
	if got := count(back, 2); got != 100-36 {
		t.Fatalf("thickness 2 pixels = %d, want %d", got, 100-36)
	}
}

func TestRectClips(t *testing.T) {
	s := newScreen(t)
	back := draw(t, s, func(c *gfx.Canvas) {
		Rect(c, image.Rect(310, 190, 330, 210), 9, Filled)
	})
	if got := count(back, 9); got != 100 {
		t.Fatalf("clipped pixels = %d, want 100", got)
	}
}

func TestLine(t *testing.T) {
	s := newScreen(t)
	back := draw(t, s, func(c *gfx.Canvas) {
		Line(c, image.Pt(0, 0), image.Pt(9, 9), 4, 1)
	})
	if got := count(back, 4); got != 10 {
		t.Fatalf("diagonal pixels = %d, want 10", got)
	}
	for i := 0; i < 10; i++ {
		if back[i*320+i] != 4 {
			t.Fatalf("pixel (%d,%d) not set", i, i)
		}
	}
}

func TestTriangleOutlineThickness(t *testing.T) {
	s := newScreen(t)
	a, b, p := image.Pt(160, 20), image.Pt(100, 120), image.Pt(220, 120)
	thin := draw(t, s, func(c *gfx.Canvas) { Triangle(c, a, b, p, 2, 1) })
	s.Fill(0)
	thick := draw(t, s, func(c *gfx.Canvas) { Triangle(c, a, b, p, 2, 5) })

	if count(thick, 2) <= count(thin, 2) {
		t.Fatalf("thickness 5 drew %d pixels, thickness 1 drew %d", count(thick, 2), count(thin, 2))
	}
	for _, v := range []image.Point{a, b, p} {
		if thin[v.Y*320+v.X] != 2 {
			t.Fatalf("vertex %v not drawn", v)
		}
	}
	if thick[80*320+160] != 0 {
		t.Fatal("outline filled the interior")
	}
}

func TestTriangleFilled(t *testing.T) {
	s := newScreen(t)
	back := draw(t, s, func(c *gfx.Canvas) {
		Triangle(c, image.Pt(0, 0), image.Pt(10, 0), image.Pt(0, 10), 6, Filled)
	})
	// Rows 0..10 span 11, 10, ..., 1 pixels.
	if got := count(back, 6); got != 66 {
		t.Fatalf("filled pixels = %d, want 66", got)
	}
}
