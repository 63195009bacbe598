package hal

import (
	"image/color"
	"testing"
)

func TestNearestIndex(t *testing.T) {
	for _, tc := range []struct {
		c    color.RGBA
		want uint8
	}{
		{color.RGBA{A: 0xFF}, 0},
		{color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, 15},
		{color.RGBA{B: 0xFF, A: 0xFF}, 16 + 5},
		{color.RGBA{G: 0xFF, A: 0xFF}, 16 + 5*6},
		{color.RGBA{R: 0xFF, A: 0xFF}, 16 + 5*36},
	} {
		if got := NearestIndex(tc.c); got != tc.want {
			t.Errorf("NearestIndex(%v) = %d, want %d", tc.c, got, tc.want)
		}
		if DefaultPalette[tc.want] != tc.c {
			t.Errorf("DefaultPalette[%d] = %v, want %v", tc.want, DefaultPalette[tc.want], tc.c)
		}
	}
}

func TestDefaultPaletteGreyRamp(t *testing.T) {
	if got := DefaultPalette[232]; got != (color.RGBA{A: 0xFF}) {
		t.Fatalf("DefaultPalette[232] = %v, want black", got)
	}
	if got := DefaultPalette[255]; got != (color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}) {
		t.Fatalf("DefaultPalette[255] = %v, want white", got)
	}
	for i := 233; i < 256; i++ {
		if DefaultPalette[i].R <= DefaultPalette[i-1].R {
			t.Fatalf("grey ramp not increasing at %d", i)
		}
	}
}

func TestRGB888From565(t *testing.T) {
	for _, tc := range []struct {
		p       uint16
		r, g, b uint8
	}{
		{0x0000, 0, 0, 0},
		{0xFFFF, 0xFF, 0xFF, 0xFF},
		{0xF800, 0xFF, 0, 0},
		{0x07E0, 0, 0xFF, 0},
		{0x001F, 0, 0, 0xFF},
	} {
		r, g, b := rgb888From565(tc.p)
		if r != tc.r || g != tc.g || b != tc.b {
			t.Errorf("rgb888From565(%#04x) = %d,%d,%d, want %d,%d,%d", tc.p, r, g, b, tc.r, tc.g, tc.b)
		}
	}
}
