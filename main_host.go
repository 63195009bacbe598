//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"ember/app"
	"ember/hal"
)

func main() {
	var (
		cfg     hal.HeadlessConfig
		appCfg  app.Config
		vbeMode uint
	)
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&cfg.Hz, "hz", 1000, "Tick rate in headless mode.")
	flag.StringVar(&cfg.Screenshot, "screenshot", "", "Write the last graphics frame to this BMP file (headless only).")
	flag.IntVar(&cfg.Host.HeapBytes, "heap", hal.DefaultHeapBytes, "Kernel heap size in bytes.")
	flag.StringVar(&cfg.Host.Serial, "serial", "", "Mirror the log to this serial port.")
	flag.IntVar(&cfg.Host.SerialBaud, "baud", 115200, "Serial mirror baud rate.")
	flag.BoolVar(&cfg.Host.Quiet, "quiet", false, "Do not log to stdout.")
	flag.StringVar(&appCfg.Mode, "mode", app.ModeRGB, "Boot screen mode: rgb or indexed.")
	flag.UintVar(&vbeMode, "vbe-mode", 0x118, "VBE mode number for -mode=rgb.")
	flag.StringVar(&appCfg.Title, "title", "ember", "Boot screen title.")
	flag.Parse()

	if vbeMode > 0xFFFF {
		fmt.Fprintf(os.Stderr, "invalid -vbe-mode %#x\n", vbeMode)
		os.Exit(2)
	}
	appCfg.VBEMode = uint16(vbeMode)

	run := func(ctx context.Context, h *hal.Host) error {
		return app.Run(ctx, h, appCfg)
	}

	if cfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, cfg, run); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(cfg.Host, run); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
