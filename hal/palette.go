package hal

import "image/color"

// DefaultPalette is the 256-entry DAC palette loaded on a mode 13h switch:
// the 16 EGA colours, a 6x6x6 colour cube and a 24-step grey ramp.
var DefaultPalette = buildDefaultPalette()

func buildDefaultPalette() [256]color.RGBA {
	var p [256]color.RGBA

	// 6-bit DAC values, as programmed by the BIOS.
	ega := [16][3]uint8{
		{0, 0, 0}, {0, 0, 42}, {0, 42, 0}, {0, 42, 42},
		{42, 0, 0}, {42, 0, 42}, {42, 21, 0}, {42, 42, 42},
		{21, 21, 21}, {21, 21, 63}, {21, 63, 21}, {21, 63, 63},
		{63, 21, 21}, {63, 21, 63}, {63, 63, 21}, {63, 63, 63},
	}
	for i, c := range ega {
		p[i] = dac(c[0], c[1], c[2])
	}

	idx := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p[idx] = dac(uint8(r*63/5), uint8(g*63/5), uint8(b*63/5))
				idx++
			}
		}
	}

	for i := 0; i < 24; i++ {
		v := uint8(i * 63 / 23)
		p[idx] = dac(v, v, v)
		idx++
	}
	return p
}

func dac(r, g, b uint8) color.RGBA {
	return color.RGBA{R: expand6(r), G: expand6(g), B: expand6(b), A: 0xFF}
}

func expand6(v uint8) uint8 {
	return (v << 2) | (v >> 4)
}

// NearestIndex returns the palette index closest to c.
func NearestIndex(c color.RGBA) uint8 {
	best := 0
	bestDist := int(^uint(0) >> 1)
	for i, p := range DefaultPalette {
		dr := int(p.R) - int(c.R)
		dg := int(p.G) - int(c.G)
		db := int(p.B) - int(c.B)
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			best, bestDist = i, d
			if d == 0 {
				break
			}
		}
	}
	return uint8(best)
}
