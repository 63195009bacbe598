package gfx

import (
	"bytes"
	"errors"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"

	"ember/hal"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

func TestPutPixelIndexed(t *testing.T) {
	d, _, _ := newDisplay(t)
	s, err := d.EnterIndexed()
	if err != nil {
		t.Fatalf("EnterIndexed() err = %v", err)
	}

	before := s.Backbuffer()
	if err := s.PutPixel(319, 199, 0x1234); err != nil {
		t.Fatalf("PutPixel() err = %v", err)
	}
	after := s.Backbuffer()

	off := 199*320 + 319
	if after[off] != 0x34 {
		t.Fatalf("back[%d] = %#x, want 0x34", off, after[off])
	}
	after[off] = before[off]
	if !bytes.Equal(before, after) {
		t.Fatal("PutPixel changed bytes outside the target pixel")
	}
}

func TestPutPixelPackedRGB(t *testing.T) {
	d, _, _ := newDisplay(t, WithVBEMode(0x112))
	s, err := d.EnterLinearRGB()
	if err != nil {
		t.Fatalf("EnterLinearRGB() err = %v", err)
	}

	before := s.Backbuffer()
	x, y := 17, 3
	if err := s.PutPixel(x, y, 0xAABBCC); err != nil {
		t.Fatalf("PutPixel() err = %v", err)
	}
	after := s.Backbuffer()

	off := 3 * (y*640 + x)
	if got := after[off : off+3]; !bytes.Equal(got, []byte{0xCC, 0xBB, 0xAA}) {
		t.Fatalf("pixel bytes = % x, want cc bb aa", got)
	}
	copy(after[off:off+3], before[off:off+3])
	if !bytes.Equal(before, after) {
		t.Fatal("PutPixel changed bytes outside the target pixel")
	}
}

func TestPutPixelOutOfBounds(t *testing.T) {
	d, _, _ := newDisplay(t)
	s, err := d.EnterIndexed()
	if err != nil {
		t.Fatalf("EnterIndexed() err = %v", err)
	}
	before := s.Backbuffer()

	for _, p := range [][2]int{{-1, 0}, {0, -1}, {320, 0}, {0, 200}, {400, 10}} {
		if err := s.PutPixel(p[0], p[1], 1); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("PutPixel(%d,%d) err = %v, want ErrOutOfBounds", p[0], p[1], err)
		}
	}
	if !bytes.Equal(before, s.Backbuffer()) {
		t.Fatal("out-of-bounds PutPixel modified the backbuffer")
	}
}

func TestFillSetsEveryByte(t *testing.T) {
	for _, tc := range []struct {
		name  string
		enter func(*Display) (*Screen, error)
		opts  []Option
	}{
		{name: "indexed", enter: (*Display).EnterIndexed},
		{name: "rgb", enter: (*Display).EnterLinearRGB, opts: []Option{WithVBEMode(0x112)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d, _, _ := newDisplay(t, tc.opts...)
			s, err := tc.enter(d)
			if err != nil {
				t.Fatalf("enter err = %v", err)
			}
			s.Fill(0x5A)
			back := s.Backbuffer()
			if len(back) != s.Size() {
				t.Fatalf("backbuffer len = %d, want %d", len(back), s.Size())
			}
			for i, b := range back {
				if b != 0x5A {
					t.Fatalf("back[%d] = %#x, want 0x5a", i, b)
				}
			}
		})
	}
}

func TestFlushIsPureCopy(t *testing.T) {
	d, h, _ := newDisplay(t, WithVBEMode(0x112))
	s, err := d.EnterLinearRGB()
	if err != nil {
		t.Fatalf("EnterLinearRGB() err = %v", err)
	}
	err = s.Draw(func(c *Canvas) {
		for y := 0; y < c.Height(); y += 7 {
			for x := 0; x < c.Width(); x += 5 {
				c.SetPixel(x, y, uint32(x*y)|0x010101)
			}
		}
	})
	if err != nil {
		t.Fatalf("Draw() err = %v", err)
	}
	before := s.Backbuffer()

	s.Flush()
	if !bytes.Equal(hwBytes(t, h, s), before) {
		t.Fatal("hardware framebuffer differs from backbuffer after Flush")
	}
	if !bytes.Equal(s.Backbuffer(), before) {
		t.Fatal("Flush modified the backbuffer")
	}
}

// flatMemory is one physical region starting at base.
type flatMemory struct {
	base   uintptr
	buf    []byte
	writes int
}

func (m *flatMemory) Map(phys uintptr, size int) ([]byte, error) {
	if phys < m.base || int(phys-m.base)+size > len(m.buf) {
		return nil, hal.ErrUnmapped
	}
	off := int(phys - m.base)
	return m.buf[off : off+size], nil
}

func (m *flatMemory) Write(phys uintptr, src []byte) error {
	dst, err := m.Map(phys, len(src))
	if err != nil {
		return err
	}
	m.writes++
	copy(dst, src)
	return nil
}

func TestFlushHonoursPitch(t *testing.T) {
	mem := &flatMemory{base: 0x1000, buf: make([]byte, 10)}
	s := &Screen{
		width:  2,
		height: 3,
		mode:   ModeIndexed,
		format: Indexed8{},
		hwBase: 0x1000,
		pitch:  4,
		back:   []byte{1, 2, 3, 4, 5, 6},
		mem:    mem,
	}
	s.Flush()
	want := []byte{1, 2, 0, 0, 3, 4, 0, 0, 5, 6}
	if !bytes.Equal(mem.buf, want) {
		t.Fatalf("hw = %v, want %v", mem.buf, want)
	}
	if mem.writes != 3 {
		t.Fatalf("writes = %d, want one per row", mem.writes)
	}
}

func TestFlushWritesThroughMemory(t *testing.T) {
	mem := &flatMemory{base: VGAMemory, buf: make([]byte, 6)}
	s := &Screen{
		width:  3,
		height: 2,
		mode:   ModeIndexed,
		format: Indexed8{},
		hwBase: VGAMemory,
		pitch:  3,
		back:   []byte{9, 8, 7, 6, 5, 4},
		mem:    mem,
	}
	s.Flush()
	if mem.writes != 1 || !bytes.Equal(mem.buf, s.back) {
		t.Fatalf("writes = %d, hw = %v", mem.writes, mem.buf)
	}

	s.back = nil
	s.Flush()
	if mem.writes != 1 {
		t.Fatal("released screen flushed")
	}
}

func TestCanvasFillRectClips(t *testing.T) {
	d, _, _ := newDisplay(t)
	s, err := d.EnterIndexed()
	if err != nil {
		t.Fatalf("EnterIndexed() err = %v", err)
	}
	err = s.Draw(func(c *Canvas) {
		c.FillRect(-5, -5, 10, 10, 3)
		c.FillRect(315, 195, 10, 10, 4)
	})
	if err != nil {
		t.Fatalf("Draw() err = %v", err)
	}
	back := s.Backbuffer()
	count := map[byte]int{}
	for _, b := range back {
		count[b]++
	}
	if count[3] != 25 || count[4] != 25 {
		t.Fatalf("filled pixels = %d/%d, want 25/25", count[3], count[4])
	}
	if back[4*320+4] != 3 || back[199*320+319] != 4 {
		t.Fatal("clipped rectangles landed in the wrong place")
	}
}

func TestDisplayerRendersText(t *testing.T) {
	d, h, _ := newDisplay(t)
	s, err := d.EnterIndexed()
	if err != nil {
		t.Fatalf("EnterIndexed() err = %v", err)
	}
	disp := s.Displayer()
	if w, hgt := disp.Size(); w != 320 || hgt != 200 {
		t.Fatalf("Size() = %dx%d, want 320x200", w, hgt)
	}

	disp.SetPixel(-1, 0, color.RGBA{R: 0xFF, A: 0xFF})
	disp.SetPixel(320, 0, color.RGBA{R: 0xFF, A: 0xFF})
	if !bytes.Equal(s.Backbuffer(), make([]byte, s.Size())) {
		t.Fatal("off-screen SetPixel reached the backbuffer")
	}

	tinyfont.WriteLine(disp, &proggy.TinySZ8pt7b, 10, 20, "EMBER", color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	lit := 0
	for _, b := range s.Backbuffer() {
		if b != 0 {
			lit++
		}
	}
	if lit == 0 {
		t.Fatal("WriteLine drew nothing")
	}

	if err := disp.Display(); err != nil {
		t.Fatalf("Display() err = %v", err)
	}
	if !bytes.Equal(hwBytes(t, h, s), s.Backbuffer()) {
		t.Fatal("Display() did not flush")
	}
}

func TestFormatForDepth(t *testing.T) {
	for _, depth := range []int{8, 24} {
		f, err := FormatForDepth(depth)
		if err != nil || f.Depth() != depth {
			t.Fatalf("FormatForDepth(%d) = %v, %v", depth, f, err)
		}
	}
	for _, depth := range []int{0, 4, 16, 32, 256} {
		if _, err := FormatForDepth(depth); !errors.Is(err, ErrUnsupportedDepth) {
			t.Fatalf("FormatForDepth(%d) err = %v, want ErrUnsupportedDepth", depth, err)
		}
	}
}

func TestPackedRGBEncode(t *testing.T) {
	c := color.RGBA{R: 0x94, G: 0x00, B: 0xD3, A: 0xFF}
	if got := (PackedRGB24{}).Encode(c); got != 0x9400D3 {
		t.Fatalf("Encode() = %#x, want 0x9400d3", got)
	}
	if got := RGB(0x9400D3); got != c {
		t.Fatalf("RGB() = %v, want %v", got, c)
	}
}

// Refresh ticks race with drawing and with the enter/leave/release cycle.
// After Leave returns, no flush may reach the hardware and Release must not
// free a buffer an in-flight flush is reading.
func TestRefreshRacesDrawingAndTeardown(t *testing.T) {
	d, h, timers := newDisplay(t, WithRefreshPeriod(1))

	var (
		wg   sync.WaitGroup
		stop atomic.Bool
		seq  atomic.Uint64
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for !stop.Load() {
			timers.TickTo(seq.Add(1))
		}
	}()

	for i := 0; i < 50; i++ {
		s, err := d.EnterIndexed()
		if err != nil {
			t.Fatalf("EnterIndexed() #%d err = %v", i, err)
		}

		var dwg sync.WaitGroup
		dwg.Add(1)
		go func() {
			defer dwg.Done()
			for j := 0; ; j++ {
				if err := s.PutPixel(j%320, (j/320)%200, uint32(j)); err != nil {
					return
				}
				if j > 2000 {
					return
				}
			}
		}()
		dwg.Wait()

		if err := d.Leave(s); err != nil {
			t.Fatalf("Leave() #%d err = %v", i, err)
		}
		hw := hwBytes(t, h, s)
		for k := range hw {
			hw[k] = 0xEE
		}
		mark := seq.Load()
		for seq.Load() < mark+20 {
		}
		for k, b := range hw {
			if b != 0xEE {
				t.Fatalf("cycle %d: hw[%d] = %#x written after Leave", i, k, b)
			}
		}
		if err := d.Release(s); err != nil {
			t.Fatalf("Release() #%d err = %v", i, err)
		}
	}

	stop.Store(true)
	wg.Wait()
	if got := h.HeapInUse(); got != 0 {
		t.Fatalf("HeapInUse() = %d after all releases, want 0", got)
	}
}
