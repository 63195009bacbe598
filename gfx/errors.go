package gfx

import "errors"

var (
	// ErrOutOfMemory means the kernel heap could not hold a backbuffer.
	ErrOutOfMemory = errors.New("gfx: out of memory")
	// ErrUnsupportedDepth means a mode reported a depth with no pixel encoding.
	ErrUnsupportedDepth = errors.New("gfx: unsupported depth")
	// ErrOutOfBounds means pixel coordinates fell outside the screen.
	ErrOutOfBounds = errors.New("gfx: coordinates out of bounds")
	// ErrModeSet means the video BIOS rejected a mode change.
	ErrModeSet = errors.New("gfx: mode set failed")

	ErrDisplayBusy   = errors.New("gfx: a graphics screen is already live")
	ErrScreenLive    = errors.New("gfx: screen is still live")
	ErrScreenNotLive = errors.New("gfx: screen is not live")
	ErrReleased      = errors.New("gfx: screen released")
)
