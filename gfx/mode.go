package gfx

import (
	"fmt"
	"image/color"

	"ember/hal"
)

// Mode is the adapter's display mode.
type Mode uint8

const (
	ModeText Mode = iota
	ModeIndexed
	ModePackedRGB
)

func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeIndexed:
		return "indexed"
	case ModePackedRGB:
		return "packed-rgb"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Format returns the pixel encoding of a graphics mode.
func (m Mode) Format() (Format, bool) {
	switch m {
	case ModeIndexed:
		return Indexed8{}, true
	case ModePackedRGB:
		return PackedRGB24{}, true
	default:
		return nil, false
	}
}

// Format is a pixel encoding. The set is closed: only Indexed8 and
// PackedRGB24 implement it.
type Format interface {
	Depth() int
	BytesPerPixel() int
	// Encode converts an RGBA colour into the value put stores.
	Encode(c color.RGBA) uint32

	put(buf []byte, off int, c uint32)
}

// FormatForDepth maps a bits-per-pixel value to its encoding.
func FormatForDepth(depth int) (Format, error) {
	switch depth {
	case 8:
		return Indexed8{}, nil
	case 24:
		return PackedRGB24{}, nil
	default:
		return nil, fmt.Errorf("%w: %d bpp", ErrUnsupportedDepth, depth)
	}
}

// Indexed8 stores one palette index per byte.
type Indexed8 struct{}

func (Indexed8) Depth() int         { return 8 }
func (Indexed8) BytesPerPixel() int { return 1 }

func (Indexed8) Encode(c color.RGBA) uint32 {
	return uint32(hal.NearestIndex(c))
}

func (Indexed8) put(buf []byte, off int, c uint32) {
	buf[off] = byte(c)
}

// PackedRGB24 stores blue, green, red in consecutive bytes.
type PackedRGB24 struct{}

func (PackedRGB24) Depth() int         { return 24 }
func (PackedRGB24) BytesPerPixel() int { return 3 }

func (PackedRGB24) Encode(c color.RGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func (PackedRGB24) put(buf []byte, off int, c uint32) {
	b := buf[off : off+3 : off+3]
	b[0] = byte(c)
	b[1] = byte(c >> 8)
	b[2] = byte(c >> 16)
}

// RGB unpacks a 0xRRGGBB value.
func RGB(c uint32) color.RGBA {
	return color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 0xFF}
}
