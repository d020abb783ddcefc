// Copyright 2026 The Espflash Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"io/fs"

	"github.com/spf13/pflag"

	"github.com/gvaradarajan/espflash/cmd/espflash/cli"
	"github.com/gvaradarajan/espflash/lib/config"
	"github.com/gvaradarajan/espflash/lib/firmware"
	"github.com/gvaradarajan/espflash/lib/serialport"
	"github.com/gvaradarajan/espflash/monitor"
)

const defaultBaud = 115200

type monitorFlags struct {
	port           string
	baud           int
	elfPath        string
	logFormat      string
	logOutput      string
	nonInteractive bool
	configPath     string
}

func monitorCommand() *cli.Command {
	flags := &monitorFlags{}
	return &cli.Command{
		Name:    "monitor",
		Summary: "Open the serial monitor",
		Description: "Attach to the device's UART: decode and symbol-annotate its output,\n" +
			"forward keystrokes with control/escape encoding, and optionally keep a\n" +
			"timestamped transcript. Ctrl+R resets the device, Ctrl+C exits.",
		Usage: "espflash monitor [flags]",
		Examples: []cli.Example{
			{
				Description: "Monitor with backtrace annotation from the flashed image",
				Command:     "espflash monitor --port /dev/ttyUSB0 --elf build/app.elf",
			},
			{
				Description: "Decode structured trace frames instead of plain text",
				Command:     "espflash monitor --port /dev/ttyACM0 --elf build/app.elf --log-format trace",
			},
			{
				Description: "Reset the device without opening a session",
				Command:     "espflash monitor --port /dev/ttyUSB0 --non-interactive",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("monitor", pflag.ContinueOnError)
			flagSet.StringVar(&flags.port, "port", "", "serial device path")
			flagSet.IntVar(&flags.baud, "baud", 0, "baud rate (default 115200)")
			flagSet.StringVar(&flags.elfPath, "elf", "", "firmware image for symbol resolution")
			flagSet.StringVar(&flags.logFormat, "log-format", "", "output decoding: serial or trace (default serial)")
			flagSet.StringVar(&flags.logOutput, "log-output", "", "session transcript path")
			flagSet.BoolVar(&flags.nonInteractive, "non-interactive", false, "reset the device and exit")
			flagSet.StringVar(&flags.configPath, "config", "", "config file (default $"+config.EnvVar+")")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			return runMonitor(flags)
		},
	}
}

// monitorSettings are the effective session parameters after merging
// flags, the config file, and built-in defaults.
type monitorSettings struct {
	device  string
	baud    int
	format  monitor.LogFormat
	logPath string
}

// resolveMonitorSettings merges each setting with flag > config file >
// default precedence. The port has no default; a missing one is a
// validation error.
func resolveMonitorSettings(flags *monitorFlags, fileCfg *config.Config) (monitorSettings, error) {
	settings := monitorSettings{device: flags.port}
	if settings.device == "" {
		settings.device = fileCfg.Port
	}
	if settings.device == "" {
		return monitorSettings{}, cli.Validation("no serial port specified").
			WithHint("Pass --port </dev/...> or set port in the config file.")
	}

	settings.baud = flags.baud
	if settings.baud == 0 {
		settings.baud = fileCfg.Baud
	}
	if settings.baud == 0 {
		settings.baud = defaultBaud
	}

	formatName := flags.logFormat
	if formatName == "" {
		formatName = fileCfg.LogFormat
	}
	if formatName == "" {
		formatName = string(monitor.LogFormatSerial)
	}
	format, err := monitor.ParseLogFormat(formatName)
	if err != nil {
		return monitorSettings{}, cli.Validation("%v", err)
	}
	settings.format = format

	settings.logPath = flags.logOutput
	if settings.logPath == "" {
		settings.logPath = fileCfg.LogOutput
	}
	return settings, nil
}

// runMonitor resolves the effective settings, opens the collaborators,
// and hands off to monitor.Run.
func runMonitor(flags *monitorFlags) error {
	fileCfg, err := config.Load(flags.configPath)
	if err != nil {
		return cli.Validation("%v", err)
	}
	settings, err := resolveMonitorSettings(flags, fileCfg)
	if err != nil {
		return err
	}

	var image *firmware.Image
	if flags.elfPath != "" {
		image, err = firmware.LoadFile(flags.elfPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return cli.NotFound("firmware image %q not found", flags.elfPath)
			}
			return cli.Validation("%v", err)
		}
	}
	if settings.format == monitor.LogFormatTrace && image == nil {
		return cli.Validation("trace log format requires a firmware image").
			WithHint("Pass --elf <path> to the image flashed on the device.")
	}

	port, err := serialport.Open(settings.device, settings.baud)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cli.NotFound("serial device %q not found", settings.device)
		}
		return cli.Transient("%v", err)
	}
	defer port.Close()

	pid, err := serialport.DetectPID(settings.device)
	if err != nil {
		// Enumeration failure only degrades reset selection; the
		// classic sequence works for zero.
		pid = 0
	}

	logger := cli.NewCommandLogger().With("command", "monitor", "port", settings.device)

	err = monitor.Run(monitor.Config{
		Port:        port,
		Image:       image,
		PID:         pid,
		Baud:        settings.baud,
		Format:      settings.format,
		LogPath:     settings.logPath,
		Interactive: !flags.nonInteractive,
		Logger:      logger,
	})
	if err != nil {
		return cli.Internal("%v", err)
	}
	return nil
}
