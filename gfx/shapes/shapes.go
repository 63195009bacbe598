// Package shapes rasterizes rectangles, lines and triangles onto a gfx
// Canvas. Every primitive clips to the canvas.
package shapes

import (
	"image"
	"math"
	"sort"

	"ember/gfx"
)

// Filled as a thickness fills the shape instead of outlining it.
const Filled = -1

func plot(c *gfx.Canvas, x, y int, col uint32) {
	if c.In(x, y) {
		c.SetPixel(x, y, col)
	}
}

// Rect draws r. A positive thickness draws that many nested outlines
// growing inwards; Filled fills r.
func Rect(c *gfx.Canvas, r image.Rectangle, col uint32, thickness int) {
	r = r.Canon()
	if r.Empty() {
		return
	}
	if thickness == Filled || 2*thickness >= min(r.Dx(), r.Dy()) {
		c.FillRect(r.Min.X, r.Min.Y, r.Dx(), r.Dy(), col)
		return
	}
	for i := 0; i < thickness; i++ {
		outline(c, r.Inset(i), col)
	}
}

func outline(c *gfx.Canvas, r image.Rectangle, col uint32) {
	w, h := r.Dx(), r.Dy()
	c.FillRect(r.Min.X, r.Min.Y, w, 1, col)
	c.FillRect(r.Min.X, r.Max.Y-1, w, 1, col)
	c.FillRect(r.Min.X, r.Min.Y, 1, h, col)
	c.FillRect(r.Max.X-1, r.Min.Y, 1, h, col)
}

// Line draws a Bresenham line from p0 to p1 inclusive. Thickness above one
// stamps a square brush centred on each point.
func Line(c *gfx.Canvas, p0, p1 image.Point, col uint32, thickness int) {
	x0, y0, x1, y1 := p0.X, p0.Y, p1.X, p1.Y
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		stamp(c, x0, y0, col, thickness)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func stamp(c *gfx.Canvas, x, y int, col uint32, thickness int) {
	if thickness <= 1 {
		plot(c, x, y, col)
		return
	}
	half := thickness / 2
	c.FillRect(x-half, y-half, thickness, thickness, col)
}

// Triangle outlines the triangle a, b, p with the given thickness, or fills
// it when thickness is Filled.
func Triangle(c *gfx.Canvas, a, b, p image.Point, col uint32, thickness int) {
	if thickness == Filled {
		fillTriangle(c, a, b, p, col)
		return
	}
	Line(c, a, b, col, thickness)
	Line(c, b, p, col, thickness)
	Line(c, p, a, col, thickness)
}

func fillTriangle(c *gfx.Canvas, a, b, p image.Point, col uint32) {
	pts := []image.Point{a, b, p}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Y < pts[j].Y })
	top, mid, bot := pts[0], pts[1], pts[2]
	if bot.Y == top.Y {
		x0 := min(top.X, mid.X, bot.X)
		x1 := max(top.X, mid.X, bot.X)
		c.FillRect(x0, top.Y, x1-x0+1, 1, col)
		return
	}
	for y := top.Y; y <= bot.Y; y++ {
		var xa float64
		if y < mid.Y {
			xa = edgeX(top, mid, y)
		} else {
			xa = edgeX(mid, bot, y)
		}
		xb := edgeX(top, bot, y)
		xs, xe := int(math.Round(xa)), int(math.Round(xb))
		if xs > xe {
			xs, xe = xe, xs
		}
		c.FillRect(xs, y, xe-xs+1, 1, col)
	}
}

func edgeX(a, b image.Point, y int) float64 {
	if b.Y == a.Y {
		return float64(a.X)
	}
	t := float64(y-a.Y) / float64(b.Y-a.Y)
	return float64(a.X) + t*float64(b.X-a.X)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
