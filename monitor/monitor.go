// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/gvaradarajan/espflash/lib/clock"
	"github.com/gvaradarajan/espflash/lib/firmware"
	"github.com/gvaradarajan/espflash/lib/serialport"
)

// serialReadTimeout bounds one serial poll so keyboard handling is
// never starved by a quiet device.
const serialReadTimeout = 5 * time.Millisecond

// Config carries everything a monitor session needs. Port is the only
// required field; Output, Keys, Logger, and Clock default to the
// process environment when nil.
type Config struct {
	// Port is the open serial connection to the device.
	Port serialport.Port

	// Image is the firmware currently on the device. Optional for
	// the serial format, required for trace decoding.
	Image *firmware.Image

	// PID is the USB product identifier of the connected adapter,
	// zero when unknown. Selects the reset sequence.
	PID uint16

	// Baud is applied to the port before polling begins.
	Baud int

	// Format selects the output decoder.
	Format LogFormat

	// LogPath, when non-empty, receives a timestamped transcript.
	LogPath string

	// Interactive enables raw mode and keyboard forwarding. When
	// false the session is a one-shot device reset.
	Interactive bool

	Output io.Writer
	Keys   KeySource
	Logger *slog.Logger
	Clock  clock.Clock

	// enterRawMode is swapped out by tests that run without a
	// controlling terminal.
	enterRawMode func() (*RawModeGuard, error)
}

func (c *Config) applyDefaults() {
	if c.Output == nil {
		c.Output = os.Stdout
	}
	if c.Keys == nil {
		c.Keys = StdinKeys()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Clock == nil {
		c.Clock = clock.Real()
	}
	if c.enterRawMode == nil {
		c.enterRawMode = EnterRawMode
	}
}

// Run drives a monitor session until the operator exits with Ctrl+C
// or the serial port fails. In non-interactive mode it resets the
// device and returns without touching terminal state.
func Run(cfg Config) error {
	cfg.applyDefaults()

	if !cfg.Interactive {
		return serialport.Reset(cfg.Port, cfg.PID, cfg.Clock)
	}

	parser, err := NewParser(cfg.Format, cfg.Image)
	if err != nil {
		return err
	}

	if err := cfg.Port.SetBaudRate(cfg.Baud); err != nil {
		return fmt.Errorf("setting baud rate: %w", err)
	}
	if err := cfg.Port.SetReadTimeout(serialReadTimeout); err != nil {
		return fmt.Errorf("setting read timeout: %w", err)
	}

	fmt.Fprintf(cfg.Output, "Commands:\n    CTRL+R    Reset chip\n    CTRL+C    Exit\n\n")

	guard, err := cfg.enterRawMode()
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	defer guard.Restore(cfg.Logger)

	var table *firmware.SymbolTable
	if cfg.Image != nil {
		table = cfg.Image.Symbols()
	}
	sink := NewResolvedSink(cfg.Output, table)

	sessionLog := OpenSessionLog(cfg.LogPath, cfg.Clock, cfg.Logger)
	defer sessionLog.Close()

	buf := make([]byte, 1024)
	for {
		n, err := cfg.Port.Read(buf)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("reading serial port: %w", err)
		}
		if n > 0 {
			if err := parser.Feed(buf[:n], sink); err != nil {
				return err
			}
			if err := sessionLog.Append(buf[:n]); err != nil {
				cfg.Logger.Warn("writing session log", "error", err)
			}
			if err := sink.Flush(); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
		}

		event, ok, err := cfg.Keys.Poll()
		if err != nil {
			return fmt.Errorf("reading keyboard: %w", err)
		}
		if !ok {
			continue
		}
		switch {
		case event.IsCtrl('c'):
			return nil
		case event.IsCtrl('r'):
			if err := serialport.Reset(cfg.Port, cfg.PID, cfg.Clock); err != nil {
				return fmt.Errorf("resetting device: %w", err)
			}
		default:
			seq, ok := Translate(event)
			if !ok {
				continue
			}
			if _, err := cfg.Port.Write(seq); err != nil {
				return fmt.Errorf("writing serial port: %w", err)
			}
			if err := cfg.Port.Drain(); err != nil {
				return fmt.Errorf("flushing serial port: %w", err)
			}
		}
	}
}
