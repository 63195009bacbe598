//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/sync/errgroup"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	// Hz is the rate at which wall-clock time is turned into ticks.
	Hz int
	// Screenshot names a BMP file that receives the last graphics frame.
	Screenshot string
	Host       HostConfig
}

// RunFunc is the OS body executed against the emulated machine.
type RunFunc func(ctx context.Context, h *Host) error

// RunHeadless runs the OS without opening a window. It returns when run
// returns or ctx is cancelled.
func RunHeadless(ctx context.Context, cfg HeadlessConfig, run RunFunc) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 250
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	h, err := NewHost(cfg.Host)
	if err != nil {
		return err
	}
	defer h.Close()

	done := make(chan struct{})
	var (
		last     *image.RGBA
		lastShot time.Time
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t := time.NewTicker(d)
		defer t.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-done:
				return nil
			case now := <-t.C:
				h.t.advance(now)
				if cfg.Screenshot != "" && h.VideoMode() != 0x03 && now.Sub(lastShot) >= frameInterval {
					last = h.Snapshot()
					lastShot = now
				}
			}
		}
	})
	g.Go(func() error {
		defer close(done)
		return run(gctx, h)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if cfg.Screenshot == "" {
		return nil
	}
	if last == nil {
		last = h.Snapshot()
	}
	return writeBMP(cfg.Screenshot, last)
}

func writeBMP(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return bmp.Encode(f, img)
}
