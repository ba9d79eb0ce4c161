package serialmux

import "io"

// SerialPorter is the minimal interface needed for a serial port. The
// abstraction keeps the mux testable without rangefinder hardware attached.
type SerialPorter interface {
	io.ReadWriter
	io.Closer
}
