package app

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
	"unicode/utf8"

	"ember/gfx"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// ErrPanic reports a panic recovered while the boot screen was live.
var ErrPanic = errors.New("boot screen panicked")

const (
	panicFontHeight = 10
	panicFontOffset = 6
)

// panicScreen logs v and its stack, then paints them black on white over
// the whole screen and flushes immediately.
func (s *System) panicScreen(scr *gfx.Screen, v any, stack []byte) {
	lines := []string{
		"ember panic:",
		fmt.Sprintf("panic: %v", v),
	}
	if len(stack) > 0 {
		lines = append(lines, "stack:")
		for _, line := range strings.Split(string(stack), "\n") {
			if line == "" {
				continue
			}
			lines = append(lines, line)
		}
	} else {
		lines = append(lines, "stack: unavailable")
	}
	for _, line := range lines {
		s.logf("%s", line)
	}

	scr.Fill(0xFF)
	drawPanicText(scr.Displayer(), lines)
	scr.Flush()
}

func drawPanicText(d drivers.Displayer, lines []string) {
	font := &proggy.TinySZ8pt7b
	_, outbox := tinyfont.LineWidth(font, "0")
	fontWidth := int16(outbox)
	if fontWidth <= 0 {
		return
	}
	maxW, maxH := d.Size()
	cols := maxW / fontWidth
	if cols <= 0 {
		cols = 1
	}
	fg := color.RGBA{A: 0xFF}

	y := int16(0)
	for _, line := range lines {
		for len(line) > 0 {
			if y+panicFontHeight > maxH {
				return
			}
			chunk, rest := takeRunes(line, cols)
			x := int16(0)
			for _, r := range chunk {
				tinyfont.DrawChar(d, font, x, y+panicFontOffset, r, fg)
				x += fontWidth
			}
			y += panicFontHeight
			line = strings.TrimLeft(rest, " ")
		}
	}
}

// takeRunes splits s after n runes.
func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if int64(len(s)) <= int64(n) {
		return s, ""
	}
	var i int
	var count int16
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}
