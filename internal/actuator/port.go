// Package actuator drives Inspire linear actuators over a shared RS-485
// serial bus: register-level read/write, position control and periodic
// telemetry logging.
package actuator

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate is the bus rate the actuators ship configured with.
const DefaultBaudRate = 921600

// Porter is the minimal serial interface the controller needs. The
// abstraction keeps the protocol and controller testable without hardware.
type Porter interface {
	io.ReadWriter
	io.Closer
}

// serialPort wraps a go.bug.st/serial port with a fixed read timeout so a
// silent actuator cannot stall the controller.
type serialPort struct {
	serial.Port
}

// Open opens the serial port at path with the given baud rate, 8N1.
func Open(path string, baudRate int) (Porter, error) {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", path, err)
	}
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", path, err)
	}
	return &serialPort{Port: port}, nil
}
