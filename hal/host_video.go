//go:build !tinygo

package hal

import (
	"encoding/binary"
	"fmt"
	"image"
	"sync"
	"time"
)

const (
	statusDisplayDisabled = 1 << 0

	frameInterval = time.Second / 60

	vbeOK     = 0x004F
	vbeFailed = 0x014F

	vbeLinearBit = 1 << 14
	vbeNoClear   = 1 << 15
)

type videoKind uint8

const (
	videoText videoKind = iota
	video13h
	videoVBE
)

type vbeMode struct {
	number uint16
	width  int
	height int
	bpp    int
}

func (m vbeMode) pitch() int { return m.width * m.bpp / 8 }

var hostVBEModes = []vbeMode{
	{number: 0x112, width: 640, height: 480, bpp: 24},
	{number: 0x115, width: 800, height: 600, bpp: 24},
	{number: 0x117, width: 1024, height: 768, bpp: 16},
	{number: 0x118, width: 1024, height: 768, bpp: 24},
}

func lookupVBEMode(n uint16) (vbeMode, bool) {
	for _, m := range hostVBEModes {
		if m.number == n {
			return m, true
		}
	}
	return vbeMode{}, false
}

// hostVideo emulates a VGA adapter with a VBE 2.0 BIOS.
type hostVideo struct {
	mu   sync.Mutex
	mem  *hostMemory
	cons *hostConsole

	kind videoKind
	mode uint16
	vbe  vbeMode

	vram []byte
	lfb  []byte

	epoch time.Time
	now   func() time.Time
}

func newHostVideo(mem *hostMemory, cons *hostConsole) *hostVideo {
	lfbSize := 0
	for _, m := range hostVBEModes {
		if n := m.pitch() * m.height; n > lfbSize {
			lfbSize = n
		}
	}
	mem.add(conventionalBase, conventionalSize)
	v := &hostVideo{
		mem:   mem,
		cons:  cons,
		kind:  videoText,
		mode:  0x03,
		vram:  mem.add(vramBase, vramSize),
		lfb:   mem.add(lfbBase, lfbSize),
		epoch: time.Now(),
		now:   time.Now,
	}
	return v
}

func (v *hostVideo) currentMode() uint16 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mode
}

// Int services the video BIOS (int 0x10). Other vectors are not emulated.
func (v *hostVideo) Int(n uint8, r *Regs16) error {
	if n != 0x10 {
		return fmt.Errorf("int %#02x: %w", n, ErrNotImplemented)
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	switch {
	case r.AX == 0x4F01:
		v.vbeModeInfo(r)
	case r.AX == 0x4F02:
		v.vbeSetMode(r)
	case r.AX == 0x4F03:
		r.BX = v.mode
		r.AX = vbeOK
	case r.AX>>8 == 0x00:
		return v.setLegacyMode(uint8(r.AX))
	case r.AX>>8 == 0x0F:
		cols := uint16(80)
		if v.kind == video13h {
			cols = 40
		}
		r.AX = cols<<8 | v.mode&0xFF
		r.BX &= 0x00FF
	default:
		return fmt.Errorf("int 0x10 ax=%#04x: %w", r.AX, ErrNotImplemented)
	}
	return nil
}

func (v *hostVideo) setLegacyMode(mode uint8) error {
	switch mode {
	case 0x03:
		v.kind = videoText
		v.mode = 0x03
	case 0x13:
		v.kind = video13h
		v.mode = 0x13
		v.mem.bus.Lock()
		clear(v.vram)
		v.mem.bus.Unlock()
	default:
		return fmt.Errorf("set mode %#02x: %w", mode, ErrNotImplemented)
	}
	return nil
}

func (v *hostVideo) vbeModeInfo(r *Regs16) {
	m, ok := lookupVBEMode(r.CX &^ (vbeLinearBit | vbeNoClear))
	if !ok {
		r.AX = vbeFailed
		return
	}
	phys := uintptr(r.ES)<<4 + uintptr(r.DI)
	buf, err := v.mem.Map(phys, VBEModeInfoSize)
	if err != nil {
		r.AX = vbeFailed
		return
	}
	EncodeVBEModeInfo(buf, VBEModeInfo{
		Attributes:       VBEAttrSupported | VBEAttrColor | VBEAttrGraphics | VBEAttrLinear,
		BytesPerScanLine: uint16(m.pitch()),
		Width:            uint16(m.width),
		Height:           uint16(m.height),
		BitsPerPixel:     uint8(m.bpp),
		MemoryModel:      VBEMemoryDirectColor,
		PhysBase:         lfbBase,
	})
	r.AX = vbeOK
}

func (v *hostVideo) vbeSetMode(r *Regs16) {
	n := r.BX &^ (vbeLinearBit | vbeNoClear)
	m, ok := lookupVBEMode(n)
	if !ok || r.BX&vbeLinearBit == 0 {
		// Banked access through 0xA0000 is not emulated.
		r.AX = vbeFailed
		return
	}
	v.kind = videoVBE
	v.mode = n
	v.vbe = m
	if r.BX&vbeNoClear == 0 {
		v.mem.bus.Lock()
		clear(v.lfb)
		v.mem.bus.Unlock()
	}
	r.AX = vbeOK
}

// In8 reads a port. Only the input status register is decoded.
func (v *hostVideo) In8(port uint16) uint8 {
	if port != StatusPort {
		return 0xFF
	}
	elapsed := v.now().Sub(v.epoch) % frameInterval
	if elapsed >= frameInterval*9/10 {
		return StatusRetrace | statusDisplayDisabled
	}
	return 0
}

// Snapshot renders what the adapter is scanning out.
func (h *Host) Snapshot() *image.RGBA {
	return h.video.snapshot()
}

func (v *hostVideo) snapshot() *image.RGBA {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.kind != videoText {
		v.mem.bus.RLock()
		defer v.mem.bus.RUnlock()
	}

	switch v.kind {
	case video13h:
		img := image.NewRGBA(image.Rect(0, 0, 320, 200))
		for i := 0; i < 320*200; i++ {
			c := DefaultPalette[v.vram[i]]
			img.Pix[i*4+0] = c.R
			img.Pix[i*4+1] = c.G
			img.Pix[i*4+2] = c.B
			img.Pix[i*4+3] = 0xFF
		}
		return img

	case videoVBE:
		m := v.vbe
		img := image.NewRGBA(image.Rect(0, 0, m.width, m.height))
		for y := 0; y < m.height; y++ {
			row := v.lfb[y*m.pitch():]
			for x := 0; x < m.width; x++ {
				var r, g, b uint8
				switch m.bpp {
				case 24:
					b, g, r = row[x*3], row[x*3+1], row[x*3+2]
				case 16:
					r, g, b = rgb888From565(binary.LittleEndian.Uint16(row[x*2:]))
				}
				j := img.PixOffset(x, y)
				img.Pix[j+0] = r
				img.Pix[j+1] = g
				img.Pix[j+2] = b
				img.Pix[j+3] = 0xFF
			}
		}
		return img

	default:
		return v.cons.snapshot()
	}
}
