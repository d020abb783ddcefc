// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

// Package serialport wraps the serial transport the monitor talks
// through and the out-of-band reset signaling for ESP-family devices.
//
// [Port] is the narrow interface the monitor consumes: bounded-time
// reads (a timeout yields zero bytes, not an error), write with drain,
// baud rate and read timeout control, and the DTR/RTS modem lines.
// [Open] provides the production implementation backed by
// go.bug.st/serial; tests substitute fakes.
//
// [Reset] reboots the target by toggling DTR/RTS. The signal pattern
// depends on the connected adapter: external USB-UART bridges wire RTS
// to the chip's EN pin and DTR to IO0, while the built-in
// USB-Serial-JTAG peripheral (USB product ID 0x1001) latches the lines
// through its own state machine and needs a different dance. [DetectPID]
// finds the product ID for a port via the OS's USB device enumeration.
package serialport
