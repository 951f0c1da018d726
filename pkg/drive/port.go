// Package drive sends movement and gripper commands to the chassis
// microcontroller over a point-to-point serial link. The firmware speaks a
// one-command-per-line ASCII protocol; each command is transmitted in full
// before the next is accepted.
package drive

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// Porter is the minimal interface needed for the command link.
// This abstraction enables unit testing without real serial hardware.
type Porter interface {
	io.Writer
	io.Closer
}

// Open opens the serial device at path with the given baud rate (8N1).
func Open(path string, baud int) (Porter, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", path, err)
	}
	return port, nil
}
