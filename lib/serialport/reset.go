// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

package serialport

import (
	"fmt"
	"time"

	"github.com/gvaradarajan/espflash/lib/clock"
)

// USBSerialJTAGPID is the USB product ID of the ESP32-family built-in
// USB-Serial-JTAG peripheral. Devices behind it need a different reset
// signal pattern than external USB-UART bridges.
const USBSerialJTAGPID = 0x1001

const (
	// resetHold is how long the reset line is held asserted.
	resetHold = 100 * time.Millisecond

	// resetSettle is the post-release delay before the transport is
	// considered stable again.
	resetSettle = 50 * time.Millisecond
)

// Reset reboots the device into normal execution and waits for the
// transport to settle. The signal pattern is selected by the detected
// USB product ID. Used for the non-interactive startup reset and the
// interactive Ctrl+R chord; the port remains usable afterwards.
func Reset(port Port, pid uint16, clk clock.Clock) error {
	if pid == USBSerialJTAGPID {
		return usbJTAGSerialReset(port, clk)
	}
	return classicReset(port, clk)
}

// classicReset toggles the EN pin through an external USB-UART bridge:
// RTS is wired to EN (active low) and DTR to IO0. DTR stays released
// so the chip boots into normal execution, not the bootloader.
func classicReset(port Port, clk clock.Clock) error {
	if err := port.SetDTR(false); err != nil {
		return fmt.Errorf("releasing DTR: %w", err)
	}
	if err := port.SetRTS(true); err != nil {
		return fmt.Errorf("asserting reset: %w", err)
	}
	clk.Sleep(resetHold)
	if err := port.SetRTS(false); err != nil {
		return fmt.Errorf("releasing reset: %w", err)
	}
	clk.Sleep(resetSettle)
	return nil
}

// usbJTAGSerialReset drives the built-in USB-Serial-JTAG peripheral's
// reset state machine. The peripheral latches DTR/RTS edges rather
// than wiring them to pins, so both lines must be walked through the
// idle, arm, and strobe states in order; collapsing the sequence into
// a single RTS pulse does not reset the chip.
func usbJTAGSerialReset(port Port, clk clock.Clock) error {
	type transition struct {
		line     string
		set      func(bool) error
		asserted bool
		hold     time.Duration
	}

	steps := []transition{
		// Idle: both lines released.
		{"RTS", port.SetRTS, false, 0},
		{"DTR", port.SetDTR, false, resetHold},
		// Arm: DTR edge with RTS released.
		{"DTR", port.SetDTR, true, 0},
		{"RTS", port.SetRTS, false, resetHold},
		// Strobe: RTS edge latches the reset.
		{"RTS", port.SetRTS, true, 0},
		{"DTR", port.SetDTR, false, 0},
		{"RTS", port.SetRTS, true, resetHold},
		// Release both lines.
		{"DTR", port.SetDTR, false, 0},
		{"RTS", port.SetRTS, false, resetSettle},
	}

	for _, step := range steps {
		if err := step.set(step.asserted); err != nil {
			return fmt.Errorf("setting %s: %w", step.line, err)
		}
		if step.hold > 0 {
			clk.Sleep(step.hold)
		}
	}
	return nil
}
