//go:build !tinygo

package hal

import (
	"bytes"
	"sync"

	"go.bug.st/serial"
)

// serialMirror copies log lines to a serial port, the way an early kernel
// console writes to COM1.
type serialMirror struct {
	mu   sync.Mutex
	port serial.Port
}

func openSerialMirror(dev string, baud int) (*serialMirror, error) {
	if baud <= 0 {
		baud = 115200
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(dev, mode)
	if err != nil {
		return nil, err
	}
	return &serialMirror{port: port}, nil
}

// Write translates LF to CRLF for terminal emulators on the other end.
func (s *serialMirror) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := bytes.ReplaceAll(p, []byte{'\n'}, []byte{'\r', '\n'})
	if _, err := s.port.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *serialMirror) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Close()
}
