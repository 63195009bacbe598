//go:build !tinygo && cgo

package hal

import (
	"context"
	"image"
	"time"

	"ember/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow starts a desktop window that shows what the emulated adapter
// scans out. It blocks until run returns or the window closes.
func RunWindow(cfg HostConfig, run RunFunc) error {
	h, err := NewHost(cfg)
	if err != nil {
		return err
	}
	defer h.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := &hostGame{h: h, done: make(chan struct{})}
	go func() {
		defer close(g.done)
		g.err = run(ctx, h)
	}()

	ebiten.SetWindowTitle(buildinfo.Banner())
	ebiten.SetWindowSize(consoleWidth*2, consoleHeight*2)
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(g); err != nil && err != ebiten.Termination {
		return err
	}
	cancel()
	<-g.done
	return g.err
}

type hostGame struct {
	h     *Host
	done  chan struct{}
	err   error
	img   *image.RGBA
	fbImg *ebiten.Image
}

func (g *hostGame) Update() error {
	g.h.t.advance(time.Now())
	select {
	case <-g.done:
		return ebiten.Termination
	default:
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	snap := g.h.Snapshot()
	if g.fbImg == nil || g.img == nil || g.img.Rect != snap.Rect {
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(snap.Rect.Dx(), snap.Rect.Dy())
	}
	g.img = snap
	g.fbImg.ReplacePixels(snap.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.img == nil {
		return consoleWidth, consoleHeight
	}
	return g.img.Rect.Dx(), g.img.Rect.Dy()
}
