// Package serial opens a Smart Port line on a host serial port.
//
// The S.Port signal is inverted; the port must sit behind an inverter
// (most USB adapters sold for S.Port include one).
package serial

import (
	"fmt"

	"go.bug.st/serial"

	"github.com/robotalks/sport/pkg/transport/stream"
)

// DefaultBaudRate is the Smart Port line speed.
const DefaultBaudRate = 57600

// Config defines how the serial port is opened.
type Config struct {
	// Port is the device path, e.g. /dev/ttyUSB0.
	Port string
	// BaudRate defaults to DefaultBaudRate.
	BaudRate int
	// RTSDirection drives the line direction with RTS (asserted while
	// transmitting), for adapters with an external tri-state driver.
	RTSDirection bool
	// InvertRTS deasserts RTS while transmitting.
	InvertRTS bool
	// EchoCancel drops the local echo of a single-wire line.
	EchoCancel bool
}

// Mode returns the serial mode: 8N1 at the configured baud rate.
func (c *Config) Mode() *serial.Mode {
	baud := c.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// Open opens the port and wraps it as a Transport.
func Open(c Config) (*stream.Transport, error) {
	if c.Port == "" {
		return nil, fmt.Errorf("serial port not specified")
	}
	port, err := serial.Open(c.Port, c.Mode())
	if err != nil {
		return nil, fmt.Errorf("open %s error: %v", c.Port, err)
	}
	t := stream.New(port)
	t.EchoCancel = c.EchoCancel
	if c.RTSDirection {
		if err = port.SetRTS(c.InvertRTS); err != nil {
			port.Close()
			return nil, fmt.Errorf("set RTS on %s error: %v", c.Port, err)
		}
		t.Direction = DirectionFunc(port, c.InvertRTS)
	}
	return t, nil
}

// RTSSetter is the part of serial.Port controlling RTS.
type RTSSetter interface {
	SetRTS(rts bool) error
}

// DirectionFunc creates a direction switch driving RTS.
func DirectionFunc(port RTSSetter, invert bool) func(bool) error {
	return func(transmit bool) error {
		return port.SetRTS(transmit != invert)
	}
}
