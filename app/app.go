package app

import (
	"context"
	"fmt"

	"ember/gfx"
	"ember/hal"
	"ember/internal/buildinfo"
	"ember/kernel"
)

const (
	ModeRGB     = "rgb"
	ModeIndexed = "indexed"
)

// Config selects what the boot screen shows and how long each phase lasts.
// Durations are in ticks (1ms).
type Config struct {
	// Mode is ModeRGB (default) or ModeIndexed.
	Mode string
	// VBEMode overrides gfx.DefaultVBEMode in ModeRGB.
	VBEMode uint16
	Title   string

	Hold    uint64
	Rainbow uint64
	Linger  uint64
}

func (c Config) withDefaults() Config {
	if c.Mode == "" {
		c.Mode = ModeRGB
	}
	if c.Title == "" {
		c.Title = "ember"
	}
	if c.Hold == 0 {
		c.Hold = 1000
	}
	if c.Rainbow == 0 {
		c.Rainbow = 500
	}
	if c.Linger == 0 {
		c.Linger = 250
	}
	return c
}

// System ties the kernel timer table to the display for one platform.
type System struct {
	h       hal.Platform
	k       *kernel.System
	display *gfx.Display
	cfg     Config
}

// NewSystem wires a display to a fresh kernel. Ticks are not delivered until
// Start.
func NewSystem(h hal.Platform, cfg Config) (*System, error) {
	cfg = cfg.withDefaults()
	if cfg.Mode != ModeRGB && cfg.Mode != ModeIndexed {
		return nil, fmt.Errorf("app: unknown mode %q", cfg.Mode)
	}
	k := kernel.NewSystem()
	var opts []gfx.Option
	if cfg.VBEMode != 0 {
		opts = append(opts, gfx.WithVBEMode(cfg.VBEMode))
	}
	return &System{
		h:       h,
		k:       k,
		display: gfx.NewDisplay(h, k.Timers(), opts...),
		cfg:     cfg,
	}, nil
}

func (s *System) Display() *gfx.Display { return s.display }
func (s *System) Kernel() *kernel.System { return s.k }

// Start forwards platform ticks into the kernel until ctx is done.
func (s *System) Start(ctx context.Context) <-chan struct{} {
	return s.k.StartTick(ctx, s.h.Time())
}

// Run boots on h and plays the boot screen. It returns once the display is
// back in text mode.
func Run(ctx context.Context, h hal.Platform, cfg Config) error {
	s, err := NewSystem(h, cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	done := s.Start(ctx)
	defer func() {
		cancel()
		<-done
	}()

	s.logf("%s: boot", buildinfo.Banner())
	if err := s.BootScreen(ctx); err != nil {
		s.logf("boot: %v", err)
		return err
	}
	s.logf("boot: done after %d ticks", s.k.Ticks())
	return nil
}

func (s *System) logf(format string, args ...any) {
	if l := s.h.Logger(); l != nil {
		l.WriteLineString(fmt.Sprintf(format, args...))
	}
}
