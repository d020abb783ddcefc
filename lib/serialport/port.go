// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

package serialport

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Port is the transport contract the monitor consumes.
//
// Read honors the timeout set by SetReadTimeout: an expired read
// returns (0, nil) rather than an error. Write does not guarantee the
// bytes have left the host; call Drain to block until the OS transmit
// buffer is empty.
type Port interface {
	io.ReadWriteCloser

	// Drain blocks until all written bytes have been transmitted.
	Drain() error

	// SetBaudRate reconfigures the line speed, leaving framing (8N1)
	// untouched.
	SetBaudRate(baud int) error

	// SetReadTimeout bounds how long a Read may block.
	SetReadTimeout(d time.Duration) error

	// SetDTR sets the Data Terminal Ready line.
	SetDTR(asserted bool) error

	// SetRTS sets the Request To Send line.
	SetRTS(asserted bool) error
}

// Open opens the serial device at 8N1 with no flow control and the
// given baud rate.
func Open(device string, baud int) (Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	inner, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", device, err)
	}
	return &bugstPort{inner: inner, mode: *mode}, nil
}

// bugstPort adapts a go.bug.st/serial port to the Port interface.
type bugstPort struct {
	inner serial.Port
	mode  serial.Mode
}

func (p *bugstPort) Read(buffer []byte) (int, error)  { return p.inner.Read(buffer) }
func (p *bugstPort) Write(buffer []byte) (int, error) { return p.inner.Write(buffer) }
func (p *bugstPort) Close() error                     { return p.inner.Close() }
func (p *bugstPort) Drain() error                     { return p.inner.Drain() }

func (p *bugstPort) SetBaudRate(baud int) error {
	p.mode.BaudRate = baud
	return p.inner.SetMode(&p.mode)
}

func (p *bugstPort) SetReadTimeout(d time.Duration) error { return p.inner.SetReadTimeout(d) }
func (p *bugstPort) SetDTR(asserted bool) error           { return p.inner.SetDTR(asserted) }
func (p *bugstPort) SetRTS(asserted bool) error           { return p.inner.SetRTS(asserted) }

// DetectPID returns the USB product ID of the adapter behind the given
// device path, or zero when the device is not a USB serial port (PCI
// UARTs, pseudo-terminals). Zero is not an error: the reset
// coordinator falls back to the classic signal pattern.
func DetectPID(device string) (uint16, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return 0, fmt.Errorf("enumerating serial ports: %w", err)
	}

	for _, port := range ports {
		if port.Name != device || !port.IsUSB {
			continue
		}
		return parsePID(port.PID)
	}
	return 0, nil
}

// parsePID parses the hex product ID string reported by the OS's USB
// enumeration ("1001", "ea60"). An empty string maps to zero.
func parsePID(hexPID string) (uint16, error) {
	if hexPID == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(hexPID, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("parsing USB product ID %q: %w", hexPID, err)
	}
	return uint16(value), nil
}
